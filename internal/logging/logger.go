// Package logging builds the zap loggers used across the bot.
package logging

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// New builds a logger writing to stderr. format is "console" or "json".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeLevel = colorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncoderConfig.EncodeCaller = nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(colorCyan + "DEBUG" + colorReset)
	case zapcore.InfoLevel:
		enc.AppendString(colorGreen + "INFO" + colorReset)
	case zapcore.WarnLevel:
		enc.AppendString(colorYellow + "WARN" + colorReset)
	default:
		enc.AppendString(colorRed + level.CapitalString() + colorReset)
	}
}

// RouteDiscordgo sends discordgo's internal log output to logger. discordgo
// only exposes a package-level hook, so this affects every session.
func RouteDiscordgo(logger *zap.Logger) {
	l := logger.Named("discordgo").WithOptions(zap.AddCallerSkip(2))
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		msg := strings.TrimSpace(fmt.Sprintf(format, a...))
		switch msgL {
		case discordgo.LogError:
			l.Error(msg)
		case discordgo.LogWarning:
			l.Warn(msg)
		case discordgo.LogInformational:
			l.Info(msg)
		default:
			l.Debug(msg)
		}
	}
}

// DiscordgoLevel maps a zap level to discordgo's verbosity constants.
func DiscordgoLevel(level string) int {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return discordgo.LogWarning
	}
	switch {
	case lvl <= zapcore.DebugLevel:
		return discordgo.LogDebug
	case lvl == zapcore.InfoLevel:
		return discordgo.LogInformational
	case lvl == zapcore.WarnLevel:
		return discordgo.LogWarning
	default:
		return discordgo.LogError
	}
}
