package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/keshon/snapshot-bot/internal/config"
	"github.com/keshon/snapshot-bot/internal/holders"
	"github.com/keshon/snapshot-bot/internal/logging"
	"github.com/keshon/snapshot-bot/internal/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errSnapshotFailed = errors.New(snapshot.ErrorMessage)

func newSnapCmd() *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "snap <policy_id>",
		Short: "Take a snapshot of Cardano NFTs by policy ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client := holders.NewClient(holders.Options{
				BaseURL:         cfg.BaseURL,
				APIKey:          cfg.APIKey,
				Timeout:         cfg.HTTPTimeout,
				RateLimit:       cfg.APIRateLimit,
				MaxRateLimit:    cfg.APIMaxRateLimit,
				MaxResponseSize: cfg.MaxResponseSize,
				Logger:          log,
			})
			svc := snapshot.NewService(client, snapshot.Options{ReportDir: cfg.ReportDir, Logger: log})

			return runSnap(ctx, svc, args[0], &fileReplier{
				out:    out,
				stdout: c.OutOrStdout(),
				stderr: c.ErrOrStderr(),
				log:    log,
			})
		},
	}
	c.Flags().StringVarP(&out, "out", "o", "", `report destination: a file, a directory, or "-" for stdout (default: ./snapshot_<policy_id>.txt)`)
	return c
}

func runSnap(ctx context.Context, svc *snapshot.Service, policyID string, r *fileReplier) error {
	if err := svc.Handle(ctx, snapshot.Request{PolicyID: policyID}, r); err != nil {
		return err
	}
	if r.failed {
		return errSnapshotFailed
	}
	return nil
}

// fileReplier writes the report to disk or stdout instead of a chat reply.
type fileReplier struct {
	out    string
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger

	failed bool
}

func (r *fileReplier) ReplyReport(ctx context.Context, content string, file snapshot.Attachment) error {
	if r.out == "-" {
		_, err := io.Copy(r.stdout, file.Reader)
		return err
	}

	path := r.out
	if path == "" {
		path = file.Name
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, file.Name)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, file.Reader); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(r.stderr, "%s %s\n", content, path)
	r.log.Debug("Report written", zap.String("path", path))
	return nil
}

func (r *fileReplier) ReplyError(ctx context.Context, content string) error {
	r.failed = true
	_, err := fmt.Fprintln(r.stderr, content)
	return err
}
