package discord

import (
	"fmt"

	"github.com/keshon/snapshot-bot/internal/command"
	"github.com/keshon/snapshot-bot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// registerCommands replaces the guild's command set with every slash command
// in the registry, in one call.
func (b *Bot) registerCommands() error {
	defs := buildCommandDefinitions(b.registry)
	b.log.Info("Started refreshing application (/) commands.", zap.Int("commands", len(defs)))

	if _, err := b.commands.ApplicationCommandBulkOverwrite(b.cfg.ClientID, b.cfg.GuildID, defs); err != nil {
		return fmt.Errorf("bulk overwrite guild commands: %w", err)
	}

	b.log.Info("Successfully reloaded application (/) commands.", zap.String("guild_id", b.cfg.GuildID))
	return nil
}

// buildCommandDefinitions returns the slash definitions of all registered
// commands.
func buildCommandDefinitions(r *cmd.Registry) []*discordgo.ApplicationCommand {
	defs := []*discordgo.ApplicationCommand{}
	for _, c := range r.GetAll() {
		if def := commandDefinition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// commandDefinition extracts the definition from a registered command,
// walking through middleware wrappers via cmd.Root.
func commandDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.Root(c).(command.SlashProvider)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def == nil {
		return nil
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}
