package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"shoutdesk/internal/intake"
	"shoutdesk/internal/logging"
	"shoutdesk/internal/notifications"
	"shoutdesk/internal/pubsub"
	"shoutdesk/internal/server"
	"shoutdesk/internal/services/ffmpeg"
	"shoutdesk/internal/services/llm"
	"shoutdesk/internal/store"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and review dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			// One serving process per data root.
			lock := flock.New(filepath.Join(cfg.Paths.DataDir, "shoutdesk.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another shoutdesk server is already running for this data directory")
			}
			defer lock.Unlock() //nolint:errcheck

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			hub := pubsub.NewHub()
			notifier := notifications.NewService(cfg)
			encoder := ffmpeg.NewCLI(
				ffmpeg.WithBinary(cfg.Encoder.Binary),
				ffmpeg.WithBitrate(cfg.Encoder.Bitrate),
				ffmpeg.WithTimeout(time.Duration(cfg.Encoder.TimeoutSeconds)*time.Second),
			)
			in := intake.New(cfg.Paths.UploadsDir, encoder, st, hub, notifier, logger)
			suggester := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})

			srv, err := server.New(server.Options{
				Config:    cfg,
				Logger:    logger,
				Store:     st,
				Hub:       hub,
				Intake:    in,
				Suggester: suggester,
			})
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := srv.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			srv.Stop()
			return nil
		},
	}
}
