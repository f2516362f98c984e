package command

import (
	"github.com/keshon/snapshot-bot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// InteractionSession is the part of *discordgo.Session commands use to answer
// interactions.
type InteractionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SlashInteractionContext is what the runtime passes as cmd.Invocation.Data
// when a slash command is executed.
type SlashInteractionContext struct {
	Session InteractionSession
	Event   *discordgo.InteractionCreate
}

// SlashProvider is implemented by commands that register as slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Register applies middlewares to c and adds it to the registry.
func Register(r *cmd.Registry, c cmd.Command, mws ...cmd.Middleware) {
	r.Register(cmd.Apply(c, mws...))
}

// Invocation builds a cmd.Invocation from a slash command event. Option
// values are kept in their string form.
func Invocation(s InteractionSession, i *discordgo.InteractionCreate) *cmd.Invocation {
	opts := make(map[string]string)
	for _, o := range i.ApplicationCommandData().Options {
		if o.Type == discordgo.ApplicationCommandOptionString {
			opts[o.Name] = o.StringValue()
		}
	}
	return &cmd.Invocation{
		Options: opts,
		Data:    &SlashInteractionContext{Session: s, Event: i},
	}
}

// User returns the invoking user, whether the command came from a guild or a
// direct message.
func User(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
