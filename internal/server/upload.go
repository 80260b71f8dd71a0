package server

import (
	"io"
	"net/http"
	"os"

	"shoutdesk/internal/logging"
	"shoutdesk/internal/services"
)

const maxUploadBytes = 64 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.intake == nil {
		s.writeError(w, http.StatusServiceUnavailable, "uploads are not enabled")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	tempPath, err := s.spoolUpload(file)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "spool upload", "", err))
		return
	}

	sub, err := s.intake.Process(r.Context(), tempPath, r.FormValue("firstName"), r.FormValue("postcode"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSubmissionPayload(sub))
}

// spoolUpload copies the multipart part to a temporary file the encoder can
// read. The intake removes it when done.
func (s *Server) spoolUpload(file io.Reader) (string, error) {
	temp, err := os.CreateTemp(s.cfg.Paths.UploadsDir, ".upload-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(temp, file); err != nil {
		temp.Close()
		if removeErr := os.Remove(temp.Name()); removeErr != nil {
			s.logger.Warn("failed to remove spool file", logging.String("path", temp.Name()), logging.Error(removeErr))
		}
		return "", err
	}
	if err := temp.Close(); err != nil {
		return "", err
	}
	return temp.Name(), nil
}
