package discord

import (
	"context"
	"fmt"

	"github.com/keshon/snapshot-bot/internal/config"
	"github.com/keshon/snapshot-bot/internal/logging"
	"github.com/keshon/snapshot-bot/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// CommandSession is the part of the session used to publish commands.
type CommandSession interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Bot is a Discord bot serving the commands of one registry in one guild.
type Bot struct {
	dg       *discordgo.Session
	commands CommandSession
	cfg      *config.Config
	registry *cmd.Registry
	log      *zap.Logger
	ctx      context.Context
}

// NewBot creates the session; nothing connects until Run.
func NewBot(cfg *config.Config, registry *cmd.Registry, log *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	dg.LogLevel = logging.DiscordgoLevel(cfg.LogLevel)

	return &Bot{
		dg:       dg,
		commands: dg,
		cfg:      cfg,
		registry: registry,
		log:      log.Named("discord"),
		ctx:      context.Background(),
	}, nil
}

// Run connects to the gateway, publishes the commands and blocks until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	// Registration failure leaves the bot connected; the command just won't
	// show up until the next start.
	if err := b.registerCommands(); err != nil {
		b.log.Error("Error registering slash commands", zap.String("guild_id", b.cfg.GuildID), zap.Error(err))
	}

	<-ctx.Done()
	b.log.Info("Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("Logged in", zap.String("user", r.User.String()), zap.Int("guilds", len(r.Guilds)))
}
