package store

import (
	"strings"
	"time"
)

// Status represents the review lifecycle of a submission.
type Status string

const (
	StatusNeedsReviewing Status = "needs_reviewing"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusDownloaded     Status = "downloaded"
)

var allStatuses = []Status{
	StatusNeedsReviewing,
	StatusApproved,
	StatusRejected,
	StatusDownloaded,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Submission is one uploaded, encoded audio file awaiting or having received
// staff review. Filename is the unique key; every mutation is addressed by it.
type Submission struct {
	Filename      string
	Status        Status
	ApprovedBy    string
	AssigneeEmail string
	SubmittedAt   time.Time
	SentAt        *time.Time
}

// User is a staff account able to review submissions.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
