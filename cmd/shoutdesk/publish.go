package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"shoutdesk/internal/browser"
	"shoutdesk/internal/logging"
	"shoutdesk/internal/notifications"
	"shoutdesk/internal/workflow"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".webm": true,
}

func newPublishCommand(configFlag *string) *cobra.Command {
	var dirFlag string
	var targetFlag string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish downloaded shoutouts through the target site's upload form",
		Long: "Publish drives a browser through the target site's upload form for every " +
			"audio file in the given directory, one file at a time. The first failure " +
			"aborts the remaining batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			if targetFlag != "" {
				cfg.Publish.TargetURL = targetFlag
			}
			if strings.TrimSpace(cfg.Publish.TargetURL) == "" {
				return fmt.Errorf("no target URL configured (set publish.target_url or pass --target)")
			}

			dir := dirFlag
			if dir == "" {
				dir = cfg.Paths.UploadsDir
			}
			items, err := collectUploadItems(dir)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No audio files found in %s\n", dir)
				return nil
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			// One publish batch per data root; the target page cannot
			// tolerate two browsers driving it.
			if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			lock := flock.New(filepath.Join(cfg.Paths.DataDir, "publish.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire publish lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another publish batch is already running for this data directory")
			}
			defer lock.Unlock() //nolint:errcheck

			browserCtx, err := browser.NewContext(cmd.Context(), browser.Options{
				Headless: cfg.Publish.Headless,
				Logger:   logger,
				// Page waits get the same budget as upload polling.
				WaitTimeout: time.Duration(cfg.Publish.PollIntervalSeconds*cfg.Publish.PollAttempts) * time.Second,
			})
			if err != nil {
				return err
			}
			defer browserCtx.Close()

			notifier := notifications.NewService(cfg)
			wf := workflow.New(cfg, browserCtx.Page(), notifier, logger)
			result, runErr := wf.Run(cmd.Context(), items)

			fmt.Fprintln(cmd.OutOrStdout(), renderBatchSummary(items, result))
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %d file(s) in %s\n", len(result.Published), result.Duration.Round(100*time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Directory of audio files to publish (defaults to the uploads directory)")
	cmd.Flags().StringVar(&targetFlag, "target", "", "Target page URL override")
	return cmd
}

// collectUploadItems reads every audio file in dir, sorted by name so batches
// run in a stable order.
func collectUploadItems(dir string) ([]workflow.UploadItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	items := make([]workflow.UploadItem, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		items = append(items, workflow.NewUploadItem(name, content))
	}
	return items, nil
}

func renderBatchSummary(items []workflow.UploadItem, result *workflow.Result) string {
	published := make(map[string]bool, len(result.Published))
	for _, name := range result.Published {
		published[name] = true
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		outcome := "skipped"
		switch {
		case published[item.Name]:
			outcome = "published"
		case item.Name == result.FailedFile:
			outcome = "failed"
		}
		rows = append(rows, []string{item.Name, item.DerivedTitle, outcome})
	}
	return renderTable([]string{"File", "Title", "Outcome"}, rows, nil)
}
