package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shoutdesk/internal/services"
	"shoutdesk/internal/testsupport"
	"shoutdesk/internal/workflow"
)

// fakePage scripts the target page. Upload completion is keyed per attached
// filename so individual files can be made to hang forever.
type fakePage struct {
	mu sync.Mutex

	neverCompletes map[string]bool
	missingInput   bool

	current   string
	navigated []string
	attached  []string
	titles    []string
	clicked   []string
	nextDone  bool
}

func (p *fakePage) Navigate(context.Context, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, p.current)
	p.current = ""
	p.nextDone = false
	return nil
}

func (p *fakePage) AttachFile(_ context.Context, _, name string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.missingInput {
		return errors.New("no file input on page")
	}
	p.current = name
	p.attached = append(p.attached, name)
	return nil
}

func (p *fakePage) Visible(context.Context, string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != "" && !p.neverCompletes[p.current], nil
}

func (p *fakePage) SetValue(_ context.Context, _, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, value)
	return nil
}

func (p *fakePage) LabelVisible(context.Context, string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextDone, nil
}

func (p *fakePage) ClickLabel(_ context.Context, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicked = append(p.clicked, label)
	if label == "Next" {
		p.nextDone = true
	}
	return nil
}

type failureRecorder struct {
	mu       sync.Mutex
	failed   []string
	finished []int
}

func (f *failureRecorder) NotifySubmissionReceived(context.Context, string) error { return nil }
func (f *failureRecorder) NotifyPublishStarted(context.Context, int) error        { return nil }
func (f *failureRecorder) NotifyFilePublished(context.Context, string) error      { return nil }
func (f *failureRecorder) NotifyPublishCompleted(_ context.Context, published int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, published)
	return nil
}
func (f *failureRecorder) NotifyPublishFailed(_ context.Context, filename string, _ error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, filename)
	return nil
}
func (f *failureRecorder) TestNotification(context.Context) error { return nil }

func instantSleeper(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newWorkflow(t *testing.T, page workflow.Page, notifier *failureRecorder) *workflow.Workflow {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Publish.TargetURL = "https://uploads.example.com/new"
	return workflow.New(cfg, page, notifier, nil, workflow.WithSleeper(instantSleeper))
}

func TestRunPublishesEveryFileInOrder(t *testing.T) {
	page := &fakePage{}
	notifier := &failureRecorder{}
	wf := newWorkflow(t, page, notifier)

	items := []workflow.UploadItem{
		workflow.NewUploadItem("a-1.mp3", []byte("a")),
		workflow.NewUploadItem("b-2.mp3", []byte("b")),
	}
	result, err := wf.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Published) != 2 {
		t.Fatalf("expected 2 published, got %v", result.Published)
	}
	if len(page.attached) != 2 || page.attached[0] != "a-1.mp3" || page.attached[1] != "b-2.mp3" {
		t.Fatalf("unexpected attach order: %v", page.attached)
	}
	// Title and description both carry the derived title, per file.
	wantTitles := []string{"A 1", "A 1", "B 2", "B 2"}
	if len(page.titles) != len(wantTitles) {
		t.Fatalf("unexpected field writes: %v", page.titles)
	}
	for i, want := range wantTitles {
		if page.titles[i] != want {
			t.Fatalf("field write %d: got %q, want %q", i, page.titles[i], want)
		}
	}
	if len(notifier.finished) != 1 || notifier.finished[0] != 2 {
		t.Fatalf("expected one completion notification for 2 files, got %v", notifier.finished)
	}
}

func TestRunHaltsBatchOnFirstTimeout(t *testing.T) {
	page := &fakePage{neverCompletes: map[string]bool{"b-2.mp3": true}}
	notifier := &failureRecorder{}
	wf := newWorkflow(t, page, notifier)

	items := []workflow.UploadItem{
		workflow.NewUploadItem("a-1.mp3", []byte("a")),
		workflow.NewUploadItem("b-2.mp3", []byte("b")),
		workflow.NewUploadItem("c-3.mp3", []byte("c")),
	}
	result, err := wf.Run(context.Background(), items)
	if err == nil {
		t.Fatal("expected batch failure")
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if len(result.Published) != 1 || result.Published[0] != "a-1.mp3" {
		t.Fatalf("expected only a-1.mp3 published, got %v", result.Published)
	}
	if result.FailedFile != "b-2.mp3" {
		t.Fatalf("expected b-2.mp3 to fail, got %q", result.FailedFile)
	}
	// The third file is never attempted.
	for _, name := range page.attached {
		if name == "c-3.mp3" {
			t.Fatal("third file must not be attached after a failure")
		}
	}
	if len(notifier.failed) != 1 || notifier.failed[0] != "b-2.mp3" {
		t.Fatalf("expected operator alert for b-2.mp3, got %v", notifier.failed)
	}
}

func TestRunFailsFatallyWithoutFileInput(t *testing.T) {
	page := &fakePage{missingInput: true}
	notifier := &failureRecorder{}
	wf := newWorkflow(t, page, notifier)

	result, err := wf.Run(context.Background(), []workflow.UploadItem{
		workflow.NewUploadItem("a-1.mp3", []byte("a")),
	})
	if err == nil {
		t.Fatal("expected failure when the file input is missing")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if len(result.Published) != 0 {
		t.Fatalf("expected nothing published, got %v", result.Published)
	}
}

func TestRunWithNoItems(t *testing.T) {
	page := &fakePage{}
	notifier := &failureRecorder{}
	wf := newWorkflow(t, page, notifier)

	result, err := wf.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Published) != 0 || len(notifier.finished) != 0 {
		t.Fatal("expected an empty no-op run")
	}
}
