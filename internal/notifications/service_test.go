package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shoutdesk/internal/config"
	"shoutdesk/internal/notifications"
	"shoutdesk/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPublishStarted(context.Background(), 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsHeadersAndBody(t *testing.T) {
	var gotTitle, gotTags, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	err := svc.NotifyPublishFailed(context.Background(), "b-2.mp3", errors.New("timed out waiting for title field"))
	if err != nil {
		t.Fatalf("NotifyPublishFailed failed: %v", err)
	}
	if gotTitle != "Shoutdesk - Publish Failed" {
		t.Fatalf("unexpected title: %q", gotTitle)
	}
	if gotTags != "shoutdesk,publish,alert" {
		t.Fatalf("unexpected tags: %q", gotTags)
	}
	if gotPriority != "high" {
		t.Fatalf("expected high priority, got %q", gotPriority)
	}
	if !strings.Contains(gotBody, "Publish aborted at b-2.mp3") {
		t.Fatalf("unexpected body: %q", gotBody)
	}
	if !strings.Contains(gotBody, "Remaining files were not attempted") {
		t.Fatalf("expected abort note in body: %q", gotBody)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	svc := notifications.NewService(cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
