package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/arvo-app/importer/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleHealth reports service and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if s.history != nil {
		if err := s.history.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}

// schemaView is the public shape of a registered import schema.
type schemaView struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Fields []fieldView `json:"fields"`
}

type fieldView struct {
	Field    core.Field `json:"field"`
	Label    string     `json:"label"`
	Required bool       `json:"required"`
	Numeric  bool       `json:"numeric,omitempty"`
}

// handleListSchemas returns the registered import schemas.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := core.Schemas()
	views := make([]schemaView, 0, len(schemas))
	for _, sc := range schemas {
		v := schemaView{Key: sc.Key, Label: sc.Label}
		for _, f := range sc.Fields {
			v.Fields = append(v.Fields, fieldView{
				Field:    f.Field,
				Label:    f.Label,
				Required: f.Required,
				Numeric:  f.Numeric,
			})
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// handleStartImport accepts a multipart upload, parses it, and opens a
// wizard session seeded with the auto-mapped column suggestion.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	// Small allowance for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+64*1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, core.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	schemaKey := r.FormValue("schema")
	if schemaKey == "" {
		schemaKey = "inventory"
	}

	resp, err := s.service.StartSession(r.Context(), schemaKey, header.Filename,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetSession returns a snapshot of a wizard session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// mappingRequest is the body of a mapping confirmation.
type mappingRequest struct {
	Mapping core.FieldMapping `json:"mapping"`
}

// handleConfirmMapping applies the user-confirmed mapping and returns
// the review payload.
func (s *Server) handleConfirmMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid mapping format", "MAP001")
		return
	}

	resp, err := s.service.ConfirmMapping(r.Context(), chi.URLParam(r, "sessionID"), req.Mapping)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleReview re-reads the review payload without changing state.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Review(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSubmit posts the valid partition to the backend as one batch.
// A backend rejection still carries the terminal result so the client
// can show counts alongside the error.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if res != nil {
			// The batch reached the importing step and failed there
			writeJSON(w, http.StatusBadGateway, res)
			return
		}
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleResetSession returns a session to the upload step.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(chi.URLParam(r, "sessionID")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleListHistory returns recent import records.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "import history is not available", "ERR000")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleGetHistory returns one import record.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "import history is not available", "ERR000")
		return
	}

	rec, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}
