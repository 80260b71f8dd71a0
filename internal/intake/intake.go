package intake

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"shoutdesk/internal/fileutil"
	"shoutdesk/internal/logging"
	"shoutdesk/internal/notifications"
	"shoutdesk/internal/pubsub"
	"shoutdesk/internal/services"
	"shoutdesk/internal/services/ffmpeg"
	"shoutdesk/internal/store"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Intake turns a raw uploaded audio file into a reviewed-ready submission:
// sanitize the name, pick a collision-free target, encode to MP3, record the
// submission, and broadcast the change.
type Intake struct {
	uploadsDir string
	encoder    ffmpeg.Client
	store      *store.Store
	hub        *pubsub.Hub
	notifier   notifications.Service
	logger     *slog.Logger
}

// New constructs an Intake with explicit dependencies.
func New(uploadsDir string, encoder ffmpeg.Client, st *store.Store, hub *pubsub.Hub, notifier notifications.Service, logger *slog.Logger) *Intake {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Intake{
		uploadsDir: uploadsDir,
		encoder:    encoder,
		store:      st,
		hub:        hub,
		notifier:   notifier,
		logger:     logging.WithComponent(logger, "intake"),
	}
}

// Process encodes the temporary upload at tempPath and records a submission.
// The temporary file is removed on every path. The returned submission carries
// the final collision-free filename.
func (i *Intake) Process(ctx context.Context, tempPath, firstName, postcode string) (*store.Submission, error) {
	defer func() {
		if err := fileutil.RemoveIfExists(tempPath); err != nil {
			i.logger.Warn("failed to remove temporary upload", logging.String("path", tempPath), logging.Error(err))
		}
	}()

	base := BaseName(firstName, postcode)
	outputPath, err := fileutil.UniquePath(i.uploadsDir, base, ".mp3")
	if err != nil {
		return nil, fmt.Errorf("pick output path: %w", err)
	}

	if err := i.encoder.Encode(ctx, tempPath, outputPath); err != nil {
		if removeErr := fileutil.RemoveIfExists(outputPath); removeErr != nil {
			i.logger.Warn("failed to remove partial encode output", logging.String("path", outputPath), logging.Error(removeErr))
		}
		return nil, services.Wrap(services.ErrExternalTool, "intake", "encode", "conversion failed", err)
	}

	filename := filepath.Base(outputPath)
	sub, err := i.store.InsertSubmission(ctx, filename)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "intake", "record submission", "", err)
	}

	i.hub.Publish(pubsub.EventSubmissionsChanged)
	if i.notifier != nil {
		if err := i.notifier.NotifySubmissionReceived(ctx, filename); err != nil {
			i.logger.Warn("submission notification failed", logging.Error(err))
		}
	}

	i.logger.Info("submission recorded", logging.String("filename", filename))
	return sub, nil
}

// BaseName derives the sanitized upload base name from the submitted fields.
// Only lowercase alphanumerics and hyphens survive; empty input falls back to
// "anonymous".
func BaseName(firstName, postcode string) string {
	parts := make([]string, 0, 2)
	if name := sanitize(firstName); name != "" {
		parts = append(parts, name)
	}
	if code := sanitize(postcode); code != "" {
		parts = append(parts, code)
	}
	if len(parts) == 0 {
		return "anonymous"
	}
	return strings.Join(parts, "-")
}

func sanitize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = nonAlphanumeric.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}
