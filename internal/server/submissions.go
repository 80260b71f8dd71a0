package server

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shoutdesk/internal/fileutil"
	"shoutdesk/internal/logging"
	"shoutdesk/internal/pubsub"
	"shoutdesk/internal/services"
	"shoutdesk/internal/store"
)

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	assignee := normalizeEmail(r.URL.Query().Get("assignee"))

	var (
		subs []*store.Submission
		err  error
	)
	if assignee == "" || assignee == "all" {
		subs, err = s.store.ListSubmissions(r.Context())
	} else {
		subs, err = s.store.ListForAssignee(r.Context(), assignee)
	}
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "list submissions", "", err))
		return
	}
	s.writeJSON(w, http.StatusOK, toSubmissionPayloads(subs))
}

type statusRequest struct {
	Filename string `json:"filename" validate:"required"`
	Status   string `json:"status" validate:"required"`
}

func joinStatuses(statuses []store.Status) string {
	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = string(status)
	}
	return strings.Join(parts, ", ")
}

func (s *Server) handleSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	status, ok := store.ParseStatus(req.Status)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q (valid: %s)", req.Status, joinStatuses(store.AllStatuses())))
		return
	}

	actor := userFromContext(r.Context())
	if err := s.store.SetStatus(r.Context(), req.Filename, status, actor); err != nil {
		if errors.Is(err, store.ErrSubmissionNotFound) {
			s.writeServiceError(w, services.Wrap(services.ErrNotFound, "server", "update status", req.Filename, err))
			return
		}
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "update status", "", err))
		return
	}

	s.hub.Publish(pubsub.EventSubmissionsChanged)
	s.writeJSON(w, http.StatusOK, map[string]string{"filename": req.Filename, "status": string(status)})
}

type deleteRequest struct {
	Filename string `json:"filename" validate:"required"`
}

func (s *Server) handleSubmissionDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}

	// File removal is idempotent; a missing file is not an error.
	path := filepath.Join(s.cfg.Paths.UploadsDir, filepath.Base(req.Filename))
	if err := fileutil.RemoveIfExists(path); err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "remove file", req.Filename, err))
		return
	}

	removed, err := s.store.RemoveSubmission(r.Context(), req.Filename)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "remove submission", "", err))
		return
	}
	if !removed {
		s.writeServiceError(w, services.Wrap(services.ErrNotFound, "server", "remove submission", req.Filename, store.ErrSubmissionNotFound))
		return
	}

	s.hub.Publish(pubsub.EventSubmissionsChanged)
	s.writeJSON(w, http.StatusOK, map[string]string{"filename": req.Filename, "status": "deleted"})
}

type assignBulkRequest struct {
	Filenames     []string `json:"filenames" validate:"required,min=1,dive,required"`
	AssigneeEmail string   `json:"assigneeEmail" validate:"required,email"`
}

func (s *Server) handleAssignBulk(w http.ResponseWriter, r *http.Request) {
	var req assignBulkRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.store.AssignBulk(r.Context(), req.Filenames, normalizeEmail(req.AssigneeEmail)); err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "assign submissions", "", err))
		return
	}

	s.hub.Publish(pubsub.EventSubmissionsChanged)
	s.writeJSON(w, http.StatusOK, map[string]any{"assigned": len(req.Filenames)})
}

type downloadRequest struct {
	// Filenames arrives as a JSON-encoded array, either inline or wrapped in
	// a string. The dashboard sends the string form.
	Filenames json.RawMessage `json:"filenames"`
}

func decodeFilenames(raw json.RawMessage) ([]string, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, errors.New("filenames must be a JSON array")
	}
	if err := json.Unmarshal([]byte(encoded), &names); err != nil {
		return nil, errors.New("filenames must be a JSON array")
	}
	return names, nil
}

func (s *Server) handleDownloadApproved(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	names, err := decodeFilenames(req.Filenames)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(names) == 0 {
		s.writeError(w, http.StatusBadRequest, "no filenames requested")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "shoutouts-"+time.Now().UTC().Format("20060102-150405")+".zip"))
	w.WriteHeader(http.StatusOK)

	archive := zip.NewWriter(w)
	for _, name := range names {
		if err := s.appendToArchive(archive, name); err != nil {
			// Headers are gone; all we can do is log and abort the stream.
			s.logger.Error("archive stream failed", logging.String("filename", name), logging.Error(err))
			return
		}
	}
	if err := archive.Close(); err != nil {
		s.logger.Error("archive close failed", logging.Error(err))
		return
	}

	// Every requested name is marked downloaded, present on disk or not.
	if err := s.store.MarkDownloaded(r.Context(), names, time.Now().UTC()); err != nil {
		s.logger.Error("failed to mark submissions downloaded", logging.Error(err))
		return
	}
	s.hub.Publish(pubsub.EventSubmissionsChanged)
}

func (s *Server) appendToArchive(archive *zip.Writer, name string) error {
	path := filepath.Join(s.cfg.Paths.UploadsDir, filepath.Base(name))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("skipping missing file", logging.String("filename", name))
			return nil
		}
		return err
	}
	defer file.Close()

	entry, err := archive.Create(filepath.Base(name))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, file)
	return err
}
