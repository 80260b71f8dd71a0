package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shoutdesk/internal/workflow"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "shoutdesk "+version) {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestConfigInitWritesSampleOnce(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to name %s, got %q", target, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to refuse overwriting")
	}
}

func TestConfigValidateHonorsEnvSecret(t *testing.T) {
	base := t.TempDir()
	t.Setenv("SHOUTDESK_SESSION_SECRET", "test-secret-0123456789")
	t.Setenv("SHOUTDESK_DATA_DIR", filepath.Join(base, "data"))

	out, err := runCommand(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration OK") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestCollectUploadItemsFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b-2.mp3", "a-1.mp3", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.mp3"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	items, err := collectUploadItems(dir)
	if err != nil {
		t.Fatalf("collectUploadItems: %v", err)
	}
	if len(items) != 2 || items[0].Name != "a-1.mp3" || items[1].Name != "b-2.mp3" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].DerivedTitle != "A 1" {
		t.Fatalf("unexpected derived title: %q", items[0].DerivedTitle)
	}
}

func TestRenderBatchSummaryOutcomes(t *testing.T) {
	items := []workflow.UploadItem{
		workflow.NewUploadItem("a-1.mp3", nil),
		workflow.NewUploadItem("b-2.mp3", nil),
		workflow.NewUploadItem("c-3.mp3", nil),
	}
	result := &workflow.Result{Published: []string{"a-1.mp3"}, FailedFile: "b-2.mp3"}

	summary := renderBatchSummary(items, result)
	for _, want := range []string{"published", "failed", "skipped"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}
