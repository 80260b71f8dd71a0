package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"shoutdesk/internal/logging"
	"shoutdesk/internal/services"
	"shoutdesk/internal/store"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a tagged service error onto the HTTP taxonomy and
// logs server-side failures.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

// decodeJSON parses the request body into dst and runs struct validation.
// Any failure is a validation error.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return services.Wrap(services.ErrValidation, "server", "decode request", "malformed JSON body", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return services.Wrap(services.ErrValidation, "server", "validate request", "invalid field "+fieldErrs[0].Field(), err)
		}
		return services.Wrap(services.ErrValidation, "server", "validate request", "", err)
	}
	return nil
}

type userPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type submissionPayload struct {
	Filename      string `json:"filename"`
	Status        string `json:"status"`
	ApprovedBy    string `json:"approvedBy,omitempty"`
	AssigneeEmail string `json:"assigneeEmail,omitempty"`
	SubmittedAt   string `json:"submittedAt"`
	SentAt        string `json:"sentAt,omitempty"`
}

func toSubmissionPayload(sub *store.Submission) submissionPayload {
	payload := submissionPayload{
		Filename:      sub.Filename,
		Status:        string(sub.Status),
		ApprovedBy:    sub.ApprovedBy,
		AssigneeEmail: sub.AssigneeEmail,
		SubmittedAt:   sub.SubmittedAt.UTC().Format(time.RFC3339),
	}
	if sub.SentAt != nil {
		payload.SentAt = sub.SentAt.UTC().Format(time.RFC3339)
	}
	return payload
}

func toSubmissionPayloads(subs []*store.Submission) []submissionPayload {
	out := make([]submissionPayload, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubmissionPayload(sub))
	}
	return out
}
