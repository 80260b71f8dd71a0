package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSubmissionNotFound is returned when a mutation addresses a filename with no row.
var ErrSubmissionNotFound = errors.New("submission not found")

const submissionColumns = "filename, status, approved_by, assignee_email, submitted_at, sent_at"

// InsertSubmission records a freshly encoded upload awaiting review.
func (s *Store) InsertSubmission(ctx context.Context, filename string) (*Submission, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, errors.New("filename required")
	}
	now := time.Now().UTC()

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO submissions (filename, status, submitted_at) VALUES (?, ?, ?)`,
		filename,
		StatusNeedsReviewing,
		now.Format(timestampFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return s.GetSubmission(ctx, filename)
}

// GetSubmission fetches one submission by filename, returning nil when absent.
func (s *Store) GetSubmission(ctx context.Context, filename string) (*Submission, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE filename = ?`,
		filename,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns every submission ordered by submission time, newest first.
func (s *Store) ListSubmissions(ctx context.Context) ([]*Submission, error) {
	return s.querySubmissions(
		ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY submitted_at DESC`,
	)
}

// ListForAssignee returns the assignee's items still needing review followed
// by every item in any other status. Two queries, concatenated: the dashboard
// depends on this exact grouping.
func (s *Store) ListForAssignee(ctx context.Context, assignee string) ([]*Submission, error) {
	mine, err := s.querySubmissions(
		ctx,
		`SELECT `+submissionColumns+` FROM submissions
         WHERE assignee_email = ? AND status = ?
         ORDER BY submitted_at DESC`,
		assignee,
		StatusNeedsReviewing,
	)
	if err != nil {
		return nil, err
	}
	rest, err := s.querySubmissions(
		ctx,
		`SELECT `+submissionColumns+` FROM submissions
         WHERE status != ?
         ORDER BY submitted_at DESC`,
		StatusNeedsReviewing,
	)
	if err != nil {
		return nil, err
	}
	return append(mine, rest...), nil
}

// SetStatus updates a submission's status. When the new status is approved the
// acting reviewer is recorded; any other status clears the approver.
func (s *Store) SetStatus(ctx context.Context, filename string, status Status, actor string) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	approver := any(nil)
	if status == StatusApproved {
		approver = nullableString(actor)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE submissions SET status = ?, approved_by = ? WHERE filename = ?`,
		status,
		approver,
		filename,
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSubmissionNotFound, filename)
	}
	return nil
}

// AssignBulk sets the assignee for every given filename in one statement.
func (s *Store) AssignBulk(ctx context.Context, filenames []string, assignee string) error {
	if len(filenames) == 0 {
		return errors.New("no filenames given")
	}
	if strings.TrimSpace(assignee) == "" {
		return errors.New("assignee required")
	}

	args := make([]any, 0, len(filenames)+1)
	args = append(args, assignee)
	for _, name := range filenames {
		args = append(args, name)
	}
	query := `UPDATE submissions SET assignee_email = ? WHERE filename IN (` + placeholders(len(filenames)) + `)`
	if _, err := s.execWithRetry(ctx, query, args...); err != nil {
		return fmt.Errorf("assign bulk: %w", err)
	}
	return nil
}

// MarkDownloaded stamps every given filename as downloaded at the given time.
func (s *Store) MarkDownloaded(ctx context.Context, filenames []string, at time.Time) error {
	if len(filenames) == 0 {
		return nil
	}
	args := make([]any, 0, len(filenames)+2)
	args = append(args, StatusDownloaded, nullableTime(&at))
	for _, name := range filenames {
		args = append(args, name)
	}
	query := `UPDATE submissions SET status = ?, sent_at = ? WHERE filename IN (` + placeholders(len(filenames)) + `)`
	if _, err := s.execWithRetry(ctx, query, args...); err != nil {
		return fmt.Errorf("mark downloaded: %w", err)
	}
	return nil
}

// RemoveSubmission deletes one row, reporting whether it existed.
func (s *Store) RemoveSubmission(ctx context.Context, filename string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM submissions WHERE filename = ?`, filename)
	if err != nil {
		return false, fmt.Errorf("remove submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]*Submission, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*Submission, error) {
	var (
		sub         Submission
		status      string
		approvedBy  sql.NullString
		assignee    sql.NullString
		submittedAt sql.NullString
		sentAt      sql.NullString
	)
	if err := row.Scan(&sub.Filename, &status, &approvedBy, &assignee, &submittedAt, &sentAt); err != nil {
		return nil, err
	}
	sub.Status = Status(status)
	sub.ApprovedBy = approvedBy.String
	sub.AssigneeEmail = assignee.String

	submitted, err := parseTimestamp(submittedAt)
	if err != nil {
		return nil, err
	}
	sub.SubmittedAt = submitted

	if sentAt.Valid && strings.TrimSpace(sentAt.String) != "" {
		sent, err := parseTimestamp(sentAt)
		if err != nil {
			return nil, err
		}
		sub.SentAt = &sent
	}
	return &sub, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
