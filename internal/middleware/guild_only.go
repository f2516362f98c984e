package middleware

import (
	"context"

	"github.com/keshon/snapshot-bot/internal/command"
	"github.com/keshon/snapshot-bot/pkg/cmd"
)

const guildOnlyMessage = "This command only works inside a server."

// WithGuildOnly wraps a command to refuse invocations from direct messages.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := inv.Data.(*command.SlashInteractionContext); ok && v.Event.GuildID == "" {
				return command.RespondEphemeral(v.Session, v.Event, guildOnlyMessage)
			}
			return c.Run(ctx, inv)
		})
	}
}
