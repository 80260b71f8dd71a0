package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shoutdesk/internal/config"
)

const userAgent = "shoutdesk/0.1.0"

// Service defines the operator alert surface exposed to the workflow and server.
type Service interface {
	NotifySubmissionReceived(ctx context.Context, filename string) error
	NotifyPublishStarted(ctx context.Context, count int) error
	NotifyFilePublished(ctx context.Context, filename string) error
	NotifyPublishCompleted(ctx context.Context, published int, duration time.Duration) error
	NotifyPublishFailed(ctx context.Context, filename string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifySubmissionReceived(ctx context.Context, filename string) error {
	filename = strings.TrimSpace(filename)
	data := payload{
		title:   "Shoutdesk - New Submission",
		message: fmt.Sprintf("New shoutout awaiting review: %s", filename),
		tags:    []string{"shoutdesk", "submission", "received"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishStarted(ctx context.Context, count int) error {
	data := payload{
		title:   "Shoutdesk - Publish Started",
		message: fmt.Sprintf("Started publishing batch of %d files", count),
		tags:    []string{"shoutdesk", "publish", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFilePublished(ctx context.Context, filename string) error {
	filename = strings.TrimSpace(filename)
	data := payload{
		title:   "Shoutdesk - Published",
		message: fmt.Sprintf("Published: %s", filename),
		tags:    []string{"shoutdesk", "publish", "file"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishCompleted(ctx context.Context, published int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}
	data := payload{
		title:   "Shoutdesk - Publish Complete",
		message: fmt.Sprintf("Publish complete: %d files in %s", published, durationText),
		tags:    []string{"shoutdesk", "publish", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishFailed(ctx context.Context, filename string, err error) error {
	var builder strings.Builder
	builder.WriteString("Publish aborted")
	if filename = strings.TrimSpace(filename); filename != "" {
		builder.WriteString(" at ")
		builder.WriteString(filename)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	builder.WriteString("\nRemaining files were not attempted.")

	data := payload{
		title:    "Shoutdesk - Publish Failed",
		message:  builder.String(),
		tags:     []string{"shoutdesk", "publish", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Shoutdesk - Test",
		message:  "Notification system test",
		tags:     []string{"shoutdesk", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySubmissionReceived(context.Context, string) error           { return nil }
func (noopService) NotifyPublishStarted(context.Context, int) error                  { return nil }
func (noopService) NotifyFilePublished(context.Context, string) error                { return nil }
func (noopService) NotifyPublishCompleted(context.Context, int, time.Duration) error { return nil }
func (noopService) NotifyPublishFailed(context.Context, string, error) error         { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
