package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/keshon/snapshot-bot/internal/command"
	"github.com/keshon/snapshot-bot/internal/config"
	"github.com/keshon/snapshot-bot/internal/middleware"
	"github.com/keshon/snapshot-bot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCommandSession struct {
	appID, guildID string
	published      []*discordgo.ApplicationCommand
	calls          int
	err            error
}

func (f *fakeCommandSession) ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.calls++
	f.appID, f.guildID, f.published = appID, guildID, cmds
	return cmds, f.err
}

type fakeInteractionSession struct {
	responses []*discordgo.InteractionResponse
}

func (f *fakeInteractionSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeInteractionSession) InteractionResponseEdit(*discordgo.Interaction, *discordgo.WebhookEdit, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

type slashCommand struct {
	name string
	err  error
	got  *cmd.Invocation
}

func (c *slashCommand) Name() string        { return c.name }
func (c *slashCommand) Description() string { return "desc " + c.name }
func (c *slashCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	c.got = inv
	return c.err
}
func (c *slashCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.name, Description: c.Description()}
}

// plainCommand has no slash definition and must not be published.
type plainCommand struct{}

func (plainCommand) Name() string                               { return "plain" }
func (plainCommand) Description() string                        { return "" }
func (plainCommand) Run(context.Context, *cmd.Invocation) error { return nil }

func newTestBot(t *testing.T, r *cmd.Registry, cs CommandSession) *Bot {
	return &Bot{
		commands: cs,
		cfg:      &config.Config{ClientID: "111", GuildID: "222"},
		registry: r,
		log:      zaptest.NewLogger(t),
		ctx:      context.Background(),
	}
}

func TestRegisterCommands(t *testing.T) {
	r := cmd.NewRegistry()
	command.Register(r, &slashCommand{name: "snap"}, middleware.WithGuildOnly())
	r.Register(plainCommand{})
	cs := &fakeCommandSession{}

	require.NoError(t, newTestBot(t, r, cs).registerCommands())

	assert.Equal(t, 1, cs.calls)
	assert.Equal(t, "111", cs.appID)
	assert.Equal(t, "222", cs.guildID)
	require.Len(t, cs.published, 1)
	assert.Equal(t, "snap", cs.published[0].Name)
	assert.Equal(t, discordgo.ChatApplicationCommand, cs.published[0].Type)
}

func TestRegisterCommands_Error(t *testing.T) {
	r := cmd.NewRegistry()
	r.Register(&slashCommand{name: "snap"})
	cs := &fakeCommandSession{err: errors.New("401 Unauthorized")}

	err := newTestBot(t, r, cs).registerCommands()
	assert.Error(t, err)
	assert.Equal(t, 1, cs.calls)
}

func commandEvent(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "222",
		Data:    discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}}
}

func TestDispatch_RunsCommandWithOptions(t *testing.T) {
	snap := &slashCommand{name: "snap"}
	r := cmd.NewRegistry()
	r.Register(snap)
	s := &fakeInteractionSession{}

	newTestBot(t, r, nil).dispatch(context.Background(), s, commandEvent("snap",
		&discordgo.ApplicationCommandInteractionDataOption{Name: "policy_id", Type: discordgo.ApplicationCommandOptionString, Value: "abc123"}))

	require.NotNil(t, snap.got)
	v, ok := snap.got.Option("policy_id")
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)
	ctx, ok := snap.got.Data.(*command.SlashInteractionContext)
	require.True(t, ok)
	assert.Same(t, s, ctx.Session)
	assert.Empty(t, s.responses)
}

func TestDispatch_CommandErrorGetsEphemeralReply(t *testing.T) {
	r := cmd.NewRegistry()
	r.Register(&slashCommand{name: "snap", err: errors.New("boom")})
	s := &fakeInteractionSession{}

	newTestBot(t, r, nil).dispatch(context.Background(), s, commandEvent("snap"))

	require.Len(t, s.responses, 1)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, s.responses[0].Data.Flags)
	assert.Equal(t, commandErrorMessage, s.responses[0].Data.Embeds[0].Description)
	assert.Equal(t, command.EmbedColor, s.responses[0].Data.Embeds[0].Color)
}

func TestDispatch_IgnoresUnknownAndNonCommands(t *testing.T) {
	r := cmd.NewRegistry()
	s := &fakeInteractionSession{}
	b := newTestBot(t, r, nil)

	b.dispatch(context.Background(), s, commandEvent("missing"))
	b.dispatch(context.Background(), s, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Type: discordgo.InteractionPing}})

	assert.Empty(t, s.responses)
}
