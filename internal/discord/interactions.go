package discord

import (
	"context"

	"github.com/keshon/snapshot-bot/internal/command"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const commandErrorMessage = "Something went wrong while running this command."

// onInteractionCreate is called by discordgo on its own goroutine per event.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatch(b.ctx, s, i)
}

func (b *Bot) dispatch(ctx context.Context, s command.InteractionSession, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		b.log.Debug("Ignoring interaction", zap.String("type", i.Type.String()))
		return
	}

	name := i.ApplicationCommandData().Name
	c := b.registry.Get(name)
	if c == nil {
		b.log.Warn("Unknown command", zap.String("command", name))
		return
	}

	if err := c.Run(ctx, command.Invocation(s, i)); err != nil {
		b.log.Error("Error running slash command", zap.String("command", name), zap.Error(err))
		// Fails harmlessly when the command already acknowledged the interaction.
		if err := command.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{Description: commandErrorMessage}); err != nil {
			b.log.Debug("Could not send error response", zap.Error(err))
		}
	}
}
