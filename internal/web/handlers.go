package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/coachdesk/swimmeet/internal/importer"
	"github.com/coachdesk/swimmeet/internal/logging"
	"github.com/coachdesk/swimmeet/internal/store"
)

// Multipart field names fixed by the upload contract.
const (
	entriesFileField = "meet-entries-file"
	resultsFileField = "meet-results-file"
)

// fileOutcome is the per-file element of an entries upload response.
type fileOutcome struct {
	File   string           `json:"file"`
	Report *importer.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// handleEntriesUpload imports one or more entries files from a multipart
// form. Files are processed sequentially; each gets its own import timeout
// and its own element in the response.
func (s *Server) handleEntriesUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	files := r.MultipartForm.File[entriesFileField]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no "+entriesFileField+" provided")
		return
	}

	logger := logging.FromContext(r.Context())
	outcomes := make([]fileOutcome, 0, len(files))
	failed := 0

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			logger.Error("failed opening uploaded file", "file", header.Filename, "error", err)
			outcomes = append(outcomes, fileOutcome{File: header.Filename, Error: "unreadable file"})
			failed++
			continue
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
		report, err := s.entries.Import(ctx, file)
		cancel()
		file.Close()

		outcome := fileOutcome{File: header.Filename, Report: report}
		if err != nil {
			outcome.Error = err.Error()
			failed++
		}
		outcomes = append(outcomes, outcome)
	}

	w.Header().Set("Content-Type", "application/json")
	if failed == len(files) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	writeJSON(w, outcomes)
}

// handleResultsUpload imports a single results document from a multipart form.
func (s *Server) handleResultsUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, _, err := r.FormFile(resultsFileField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no "+resultsFileField+" provided")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	report, err := s.results.Import(ctx, file)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, report)
}

// swimmerResponse is the JSON shape of one directory entry.
type swimmerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birthDate"`
}

// handleListSwimmers returns the full swimmer directory.
func (s *Server) handleListSwimmers(w http.ResponseWriter, r *http.Request) {
	swimmers, err := s.backend.ListSwimmers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed listing swimmers")
		return
	}

	resp := make([]swimmerResponse, 0, len(swimmers))
	for _, sw := range swimmers {
		resp = append(resp, swimmerResponse{
			ID:        sw.ID,
			FirstName: sw.FirstName,
			LastName:  sw.LastName,
			Gender:    sw.Gender,
			BirthDate: sw.BirthDate.Format("2006-01-02"),
		})
	}
	writeJSON(w, resp)
}

// handleListLoads returns the most recent entries load audit records.
func (s *Server) handleListLoads(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)

	loads, err := s.backend.ListEntriesLoads(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed listing loads")
		return
	}
	if loads == nil {
		loads = []store.EntriesLoad{}
	}
	writeJSON(w, loads)
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
