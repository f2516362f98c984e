package middleware

import (
	"context"
	"time"

	"github.com/keshon/snapshot-bot/internal/command"
	"github.com/keshon/snapshot-bot/pkg/cmd"

	"go.uber.org/zap"
)

// WithCommandLogger wraps a command to log each execution.
func WithCommandLogger(log *zap.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			fields := []zap.Field{
				zap.String("command", c.Name()),
				zap.Duration("took", time.Since(start)),
			}
			if v, ok := inv.Data.(*command.SlashInteractionContext); ok {
				user := command.User(v.Event)
				fields = append(fields,
					zap.String("guild_id", v.Event.GuildID),
					zap.String("channel_id", v.Event.ChannelID),
					zap.String("user_id", user.ID),
					zap.String("username", user.Username))
			}

			if err != nil {
				log.Warn("Command failed", append(fields, zap.Error(err))...)
			} else {
				log.Info("Command executed", fields...)
			}
			return err
		})
	}
}
