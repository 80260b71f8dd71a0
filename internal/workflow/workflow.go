package workflow

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"shoutdesk/internal/config"
	"shoutdesk/internal/logging"
	"shoutdesk/internal/notifications"
	"shoutdesk/internal/services"
)

// Workflow publishes a batch of audio files through the target page's upload
// form, one file at a time. Any failure halts the remaining batch; the target
// page cannot tolerate being driven past a half-completed upload.
type Workflow struct {
	page      Page
	notifier  notifications.Service
	logger    *slog.Logger
	sleeper   Sleeper
	targetURL string
	interval  time.Duration
	attempts  int
	settle    time.Duration
}

// Option adjusts workflow construction.
type Option func(*Workflow)

// WithSleeper substitutes the wait implementation used for settle delays and
// poll intervals.
func WithSleeper(sleeper Sleeper) Option {
	return func(w *Workflow) {
		if sleeper != nil {
			w.sleeper = sleeper
		}
	}
}

// New builds a workflow over the given page using the publish settings from cfg.
func New(cfg *config.Config, page Page, notifier notifications.Service, logger *slog.Logger, opts ...Option) *Workflow {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Workflow{
		page:      page,
		notifier:  notifier,
		logger:    logging.WithComponent(logger, "workflow"),
		sleeper:   sleepWithContext,
		targetURL: cfg.Publish.TargetURL,
		interval:  time.Duration(cfg.Publish.PollIntervalSeconds) * time.Second,
		attempts:  cfg.Publish.PollAttempts,
		settle:    time.Duration(cfg.Publish.SettleSeconds) * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Result summarizes a batch run.
type Result struct {
	Published  []string
	FailedFile string
	Duration   time.Duration
}

// Run publishes the items strictly in order. The first failure aborts the
// batch: the failing file is recorded in the result, no later item is
// attempted, and the operator is alerted.
func (w *Workflow) Run(ctx context.Context, items []UploadItem) (*Result, error) {
	start := time.Now()
	result := &Result{}
	if len(items) == 0 {
		return result, nil
	}

	if w.notifier != nil {
		if err := w.notifier.NotifyPublishStarted(ctx, len(items)); err != nil {
			w.logger.Warn("publish-start notification failed", logging.Error(err))
		}
	}

	for _, item := range items {
		w.logger.Info("publishing file", logging.String("filename", item.Name))
		if err := w.publishOne(ctx, item); err != nil {
			result.FailedFile = item.Name
			result.Duration = time.Since(start)
			if w.notifier != nil {
				if notifyErr := w.notifier.NotifyPublishFailed(ctx, item.Name, err); notifyErr != nil {
					w.logger.Warn("failure notification failed", logging.Error(notifyErr))
				}
			}
			return result, fmt.Errorf("publish %s: %w", item.Name, err)
		}
		result.Published = append(result.Published, item.Name)
		if w.notifier != nil {
			if err := w.notifier.NotifyFilePublished(ctx, item.Name); err != nil {
				w.logger.Warn("file-published notification failed", logging.Error(err))
			}
		}
	}

	result.Duration = time.Since(start)
	if w.notifier != nil {
		if err := w.notifier.NotifyPublishCompleted(ctx, len(result.Published), result.Duration); err != nil {
			w.logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	w.logger.Info("batch complete",
		logging.Int("published", len(result.Published)),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// publishOne drives a single file through the form:
// navigate, attach, await upload, fill metadata, next, publish.
func (w *Workflow) publishOne(ctx context.Context, item UploadItem) error {
	if err := w.page.Navigate(ctx, w.targetURL); err != nil {
		return services.Wrap(services.ErrExternalTool, "workflow", "navigate", w.targetURL, err)
	}

	if err := w.page.AttachFile(ctx, fileInputSelector, item.Name, item.Content); err != nil {
		return services.Wrap(services.ErrExternalTool, "workflow", "attach file", item.Name, err)
	}

	if err := w.awaitUploadComplete(ctx); err != nil {
		return err
	}

	if err := w.fillMetadata(ctx, item); err != nil {
		return err
	}

	if err := w.submit(ctx, nextLabel); err != nil {
		return err
	}
	if err := w.awaitReview(ctx); err != nil {
		return err
	}
	if err := w.submit(ctx, publishLabel); err != nil {
		return err
	}
	return nil
}

// awaitUploadComplete waits for the title field to appear, which the target
// page only renders once the upload has been processed.
func (w *Workflow) awaitUploadComplete(ctx context.Context) error {
	return Poll(ctx, w.interval, w.attempts, w.sleeper, func(ctx context.Context) (bool, error) {
		return w.page.Visible(ctx, titleFieldSelector)
	})
}

// awaitReview waits for the review step to render its publish control.
func (w *Workflow) awaitReview(ctx context.Context) error {
	return Poll(ctx, w.interval, w.attempts, w.sleeper, func(ctx context.Context) (bool, error) {
		return w.page.LabelVisible(ctx, publishLabel)
	})
}

func (w *Workflow) fillMetadata(ctx context.Context, item UploadItem) error {
	if err := w.page.SetValue(ctx, titleFieldSelector, item.DerivedTitle); err != nil {
		return services.Wrap(services.ErrExternalTool, "workflow", "set title", item.Name, err)
	}
	if err := w.page.SetValue(ctx, descriptionSelector, item.DerivedTitle); err != nil {
		return services.Wrap(services.ErrExternalTool, "workflow", "set description", item.Name, err)
	}
	return nil
}

// submit clicks the labelled control and gives the page a fixed settle delay
// to process the action.
func (w *Workflow) submit(ctx context.Context, label string) error {
	if err := w.page.ClickLabel(ctx, label); err != nil {
		return services.Wrap(services.ErrExternalTool, "workflow", "click "+label, "", err)
	}
	return w.sleeper(ctx, w.settle)
}
