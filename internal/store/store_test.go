package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"shoutdesk/internal/store"
	"shoutdesk/internal/testsupport"
)

func TestInsertAndGetSubmission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sub, err := st.InsertSubmission(ctx, "maggie-2000.mp3")
	if err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}
	if sub.Status != store.StatusNeedsReviewing {
		t.Fatalf("expected needs_reviewing, got %q", sub.Status)
	}
	if sub.SubmittedAt.IsZero() {
		t.Fatal("expected submitted_at to be set")
	}
	if sub.SentAt != nil {
		t.Fatal("expected sent_at to be unset")
	}

	fetched, err := st.GetSubmission(ctx, "maggie-2000.mp3")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if fetched == nil || fetched.Filename != "maggie-2000.mp3" {
		t.Fatalf("unexpected fetched submission: %#v", fetched)
	}

	missing, err := st.GetSubmission(ctx, "nope.mp3")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing filename, got %#v", missing)
	}
}

func TestInsertSubmissionRejectsDuplicateFilename(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewSubmission(t, st, "dup.mp3")
	if _, err := st.InsertSubmission(ctx, "dup.mp3"); err == nil {
		t.Fatal("expected error on duplicate filename")
	}
}

func TestSetStatusRecordsApproverOnlyWhenApproved(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewSubmission(t, st, "take.mp3")

	if err := st.SetStatus(ctx, "take.mp3", store.StatusApproved, "staff@example.com"); err != nil {
		t.Fatalf("SetStatus approved failed: %v", err)
	}
	sub, err := st.GetSubmission(ctx, "take.mp3")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if sub.Status != store.StatusApproved || sub.ApprovedBy != "staff@example.com" {
		t.Fatalf("expected approver recorded, got %#v", sub)
	}

	if err := st.SetStatus(ctx, "take.mp3", store.StatusRejected, "staff@example.com"); err != nil {
		t.Fatalf("SetStatus rejected failed: %v", err)
	}
	sub, err = st.GetSubmission(ctx, "take.mp3")
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if sub.Status != store.StatusRejected {
		t.Fatalf("expected rejected, got %q", sub.Status)
	}
	if sub.ApprovedBy != "" {
		t.Fatalf("expected approver cleared, got %q", sub.ApprovedBy)
	}
}

func TestSetStatusMissingRowReportsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.SetStatus(context.Background(), "ghost.mp3", store.StatusApproved, "staff@example.com")
	if !errors.Is(err, store.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.NewSubmission(t, st, "x.mp3")
	if err := st.SetStatus(context.Background(), "x.mp3", store.Status("published"), ""); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestAssignBulk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewSubmission(t, st, "a.mp3")
	testsupport.NewSubmission(t, st, "b.mp3")
	testsupport.NewSubmission(t, st, "c.mp3")

	if err := st.AssignBulk(ctx, nil, "staff@example.com"); err == nil {
		t.Fatal("expected error for empty filename set")
	}
	if err := st.AssignBulk(ctx, []string{"a.mp3"}, "  "); err == nil {
		t.Fatal("expected error for missing assignee")
	}

	if err := st.AssignBulk(ctx, []string{"a.mp3", "c.mp3"}, "staff@example.com"); err != nil {
		t.Fatalf("AssignBulk failed: %v", err)
	}
	for name, want := range map[string]string{"a.mp3": "staff@example.com", "b.mp3": "", "c.mp3": "staff@example.com"} {
		sub, err := st.GetSubmission(ctx, name)
		if err != nil {
			t.Fatalf("GetSubmission failed: %v", err)
		}
		if sub.AssigneeEmail != want {
			t.Fatalf("%s: expected assignee %q, got %q", name, want, sub.AssigneeEmail)
		}
	}
}

func TestMarkDownloadedStampsStatusAndTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewSubmission(t, st, "x.mp3")
	testsupport.NewSubmission(t, st, "missing.mp3")

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := st.MarkDownloaded(ctx, []string{"x.mp3", "missing.mp3"}, at); err != nil {
		t.Fatalf("MarkDownloaded failed: %v", err)
	}
	for _, name := range []string{"x.mp3", "missing.mp3"} {
		sub, err := st.GetSubmission(ctx, name)
		if err != nil {
			t.Fatalf("GetSubmission failed: %v", err)
		}
		if sub.Status != store.StatusDownloaded {
			t.Fatalf("%s: expected downloaded, got %q", name, sub.Status)
		}
		if sub.SentAt == nil || !sub.SentAt.Equal(at) {
			t.Fatalf("%s: unexpected sent_at %v", name, sub.SentAt)
		}
	}
}

func TestRemoveSubmissionReportsExistence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewSubmission(t, st, "gone.mp3")

	removed, err := st.RemoveSubmission(ctx, "gone.mp3")
	if err != nil {
		t.Fatalf("RemoveSubmission failed: %v", err)
	}
	if !removed {
		t.Fatal("expected first removal to report true")
	}
	removed, err = st.RemoveSubmission(ctx, "gone.mp3")
	if err != nil {
		t.Fatalf("RemoveSubmission failed: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to report false")
	}
}

func TestListSubmissionsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		testsupport.NewSubmission(t, st, fmt.Sprintf("clip-%d.mp3", i))
	}

	subs, err := st.ListSubmissions(ctx)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(subs))
	}
	for i := 1; i < len(subs); i++ {
		if subs[i-1].SubmittedAt.Before(subs[i].SubmittedAt) {
			t.Fatalf("expected descending submission time, got %v before %v", subs[i-1].SubmittedAt, subs[i].SubmittedAt)
		}
	}
	if subs[0].Filename != "clip-2.mp3" {
		t.Fatalf("expected newest first, got %q", subs[0].Filename)
	}
}

func TestListForAssigneeGroupsNeedsReviewingFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	// Oldest to newest: mine-1, other-1, mine-2, approved-1.
	testsupport.NewSubmission(t, st, "mine-1.mp3")
	testsupport.NewSubmission(t, st, "other-1.mp3")
	testsupport.NewSubmission(t, st, "mine-2.mp3")
	testsupport.NewSubmission(t, st, "approved-1.mp3")

	if err := st.AssignBulk(ctx, []string{"mine-1.mp3", "mine-2.mp3"}, "me@example.com"); err != nil {
		t.Fatalf("AssignBulk failed: %v", err)
	}
	if err := st.AssignBulk(ctx, []string{"other-1.mp3"}, "other@example.com"); err != nil {
		t.Fatalf("AssignBulk failed: %v", err)
	}
	if err := st.SetStatus(ctx, "approved-1.mp3", store.StatusApproved, "me@example.com"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	subs, err := st.ListForAssignee(ctx, "me@example.com")
	if err != nil {
		t.Fatalf("ListForAssignee failed: %v", err)
	}

	// My needs_reviewing items newest-first, then every non-needs_reviewing
	// item. other-1 stays out because it is another assignee's pending item.
	want := []string{"mine-2.mp3", "mine-1.mp3", "approved-1.mp3"}
	if len(subs) != len(want) {
		t.Fatalf("expected %d submissions, got %d", len(want), len(subs))
	}
	for i, name := range want {
		if subs[i].Filename != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, subs[i].Filename)
		}
	}
}

func TestUsersRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	user, err := st.CreateUser(ctx, "Staff@Example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected user ID to be assigned")
	}
	if user.Email != "staff@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}

	if _, err := st.CreateUser(ctx, "staff@example.com", "hash2"); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	fetched, err := st.GetUserByEmail(ctx, "STAFF@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if fetched == nil || fetched.ID != user.ID {
		t.Fatalf("unexpected fetched user: %#v", fetched)
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := store.ParseStatus(" Approved "); !ok || status != store.StatusApproved {
		t.Fatalf("unexpected parse result: %q %v", status, ok)
	}
	if _, ok := store.ParseStatus("published"); ok {
		t.Fatal("expected unknown status to fail parsing")
	}
	if _, ok := store.ParseStatus(""); ok {
		t.Fatal("expected empty status to fail parsing")
	}
}
