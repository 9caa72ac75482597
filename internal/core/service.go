package core

// service.go is the entry point for all wizard operations. A Service
// owns the session map, drives the pipeline (parse → auto-map → confirm
// → validate → submit), and hands terminal results to the recorder and
// notifier. Wizard sessions are in-memory only; nothing from a session
// survives a restart except the history record written on completion.

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/arvo-app/importer/internal/config"
	"github.com/arvo-app/importer/internal/logging"
	"github.com/google/uuid"
)

// Submitter posts one batch of projected items to the backend import
// endpoint and returns the accepted record count. Implementations apply
// their own timeout; they never retry.
type Submitter interface {
	SubmitBatch(ctx context.Context, schemaKey string, items []map[string]any) (int, error)
}

// Recorder persists terminal import results to the history store.
type Recorder interface {
	Record(ctx context.Context, res *ImportResult) error
}

// Service coordinates wizard sessions. Safe for concurrent use.
type Service struct {
	cfg       *config.Config
	submitter Submitter
	recorder  Recorder
	notifier  Notifier

	mu       sync.Mutex
	sessions map[string]*Wizard

	imports sync.WaitGroup
}

// NewService creates a Service. recorder may be nil (results are then
// only returned to the caller); notifier may be nil (defaults to the
// structured log).
func NewService(cfg *config.Config, submitter Submitter, recorder Recorder, notifier Notifier) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{
		cfg:       cfg,
		submitter: submitter,
		recorder:  recorder,
		notifier:  notifier,
		sessions:  make(map[string]*Wizard),
	}
}

// UploadResponse is returned when a file is parsed and a session opens.
type UploadResponse struct {
	SessionID string       `json:"sessionId"`
	Step      Step         `json:"step"`
	SchemaKey string       `json:"schema"`
	FileName  string       `json:"fileName"`
	SheetName string       `json:"sheetName,omitempty"`
	Headers   HeaderSet    `json:"headers"`
	RowCount  int          `json:"rowCount"`
	Mapping   FieldMapping `json:"mapping"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// ReviewSummary carries the partition counts shown on the review step.
type ReviewSummary struct {
	TotalRows   int `json:"totalRows"`
	ValidRows   int `json:"validRows"`
	InvalidRows int `json:"invalidRows"`
}

// ReviewResponse is returned when a mapping is confirmed. InvalidSamples
// holds at most MaxInvalidShown rows; the counts cover everything.
type ReviewResponse struct {
	SessionID      string        `json:"sessionId"`
	Step           Step          `json:"step"`
	Summary        ReviewSummary `json:"summary"`
	InvalidSamples []InvalidRow  `json:"invalidSamples,omitempty"`
}

// SessionView is a read-only snapshot of a wizard session.
type SessionView struct {
	SessionID string       `json:"sessionId"`
	SchemaKey string       `json:"schema"`
	Step      Step         `json:"step"`
	FileName  string       `json:"fileName,omitempty"`
	RowCount  int          `json:"rowCount"`
	Mapping   FieldMapping `json:"mapping,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// StartSession parses an uploaded file, runs the auto-mapper, and opens
// a wizard session in the Mapping step. The reader is consumed fully;
// nothing is retained on failure.
func (s *Service) StartSession(ctx context.Context, schemaKey, fileName, contentType string, r io.Reader) (*UploadResponse, error) {
	schema, ok := SchemaByKey(schemaKey)
	if !ok {
		return nil, fmt.Errorf("unknown schema: %q", schemaKey)
	}

	parsed, err := ParseFile(fileName, contentType, r, s.cfg.Import.MaxFileSize)
	if err != nil {
		return nil, err
	}

	if parsed.RowCount() == 0 {
		return nil, ErrNoDataRows
	}
	if parsed.RowCount() > s.cfg.Import.MaxRows {
		return nil, fmt.Errorf("%w: %d rows (limit %d)", ErrTooManyRows, parsed.RowCount(), s.cfg.Import.MaxRows)
	}

	suggestion := AutoMap(schema, parsed.Headers)
	w := newWizard(uuid.NewString(), schemaKey, fileName, parsed, suggestion)

	s.mu.Lock()
	s.sessions[w.ID] = w
	s.mu.Unlock()

	logging.FromContext(ctx).Info("import session opened",
		"session_id", w.ID,
		"schema", schemaKey,
		"file", fileName,
		"rows", parsed.RowCount(),
		"unmapped_warnings", len(suggestion.Warnings),
	)

	return &UploadResponse{
		SessionID: w.ID,
		Step:      w.Step,
		SchemaKey: schemaKey,
		FileName:  fileName,
		SheetName: parsed.SheetName,
		Headers:   parsed.Headers,
		RowCount:  parsed.RowCount(),
		Mapping:   suggestion.Mapping,
		Warnings:  suggestion.Warnings,
	}, nil
}

// Session returns a snapshot of a wizard session.
func (s *Service) Session(id string) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(w), nil
}

// ConfirmMapping applies the user's mapping, validates every row, and
// moves the session to Review.
func (s *Service) ConfirmMapping(ctx context.Context, id string, mapping FieldMapping) (*ReviewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	schema, ok := SchemaByKey(w.SchemaKey)
	if !ok {
		return nil, fmt.Errorf("unknown schema: %q", w.SchemaKey)
	}

	// Ignore mapping entries for fields the schema does not define
	clean := make(FieldMapping, len(schema.Fields))
	for _, spec := range schema.Fields {
		clean[spec.Field] = mapping[spec.Field]
	}

	if err := w.confirmMapping(schema, clean); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("mapping confirmed",
		"session_id", w.ID,
		"valid_rows", len(w.Outcome.Valid),
		"invalid_rows", len(w.Outcome.Invalid),
	)

	return reviewResponse(w), nil
}

// Review re-reads the current review payload without changing state.
func (s *Service) Review(id string) (*ReviewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if w.Step != StepReview {
		return nil, fmt.Errorf("session is on step %q, not review", w.Step)
	}
	return reviewResponse(w), nil
}

// Submit projects the valid partition onto the schema and posts it to
// the backend as one batch. The call blocks until the backend responds
// or the submitter's timeout fires; there is no retry. On either outcome
// the session returns to Upload and the result is recorded and notified.
func (s *Service) Submit(ctx context.Context, id string) (*ImportResult, error) {
	s.mu.Lock()
	w, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	schema, ok := SchemaByKey(w.SchemaKey)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("unknown schema: %q", w.SchemaKey)
	}

	if err := w.beginImport(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	// Capture everything needed for the submit before releasing the
	// lock; the wizard must not be touched concurrently afterwards.
	outcome := w.Outcome
	fileName := w.FileName
	items := ProjectRows(schema, outcome.Valid, w.Resolved)
	s.mu.Unlock()

	s.imports.Add(1)
	defer s.imports.Done()

	start := time.Now()
	log := logging.WithFields(ctx, "session_id", id, "schema", schema.Key)
	log.Info("import started", "items", len(items))

	count, err := s.submitter.SubmitBatch(ctx, schema.Key, items)

	res := &ImportResult{
		SessionID:   id,
		SchemaKey:   schema.Key,
		FileName:    fileName,
		Duration:    time.Since(start),
		CompletedAt: time.Now(),
	}

	if err != nil {
		// Hard failure: the whole batch is rejected, nothing partial is
		// retried. The backend's message is surfaced verbatim.
		res.Failed = true
		res.ErrorCount = outcome.Total()
		res.Summary = err.Error()
		log.Error("import failed", "error", err)
		s.notifier.ImportFailed(id, err.Error())
	} else {
		res.SuccessCount = count
		res.ErrorCount = len(outcome.Invalid)
		for _, inv := range outcome.Invalid {
			res.Errors = append(res.Errors, RowError{Row: inv.Number, Message: inv.Reason})
		}
		res.Summary = fmt.Sprintf("%d products imported. %d rows had errors.", count, len(outcome.Invalid))
		log.Info("import completed",
			"imported", count,
			"row_errors", len(outcome.Invalid),
			"duration", res.Duration,
		)
		s.notifier.ImportSucceeded(id, res.Summary)
	}

	s.record(res)

	s.mu.Lock()
	w.finish(res.Failed)
	s.mu.Unlock()

	if err != nil {
		return res, err
	}
	return res, nil
}

// Reset returns a session to the Upload step, discarding parsed state.
func (s *Service) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if w.Step == StepImporting {
		return ErrImportInProgress
	}
	w.reset()
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// WaitForImports blocks until all in-flight submissions finish or ctx
// expires. Used during graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.imports.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartSessionSweeper discards sessions idle longer than the configured
// TTL. Blocks until ctx is cancelled; run it in a goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Import.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepSessions()
		}
	}
}

func (s *Service) sweepSessions() {
	cutoff := time.Now().Add(-s.cfg.Import.SessionTTL)

	s.mu.Lock()
	var swept int
	for id, w := range s.sessions {
		if w.Step != StepImporting && w.Touched.Before(cutoff) {
			delete(s.sessions, id)
			swept++
		}
	}
	s.mu.Unlock()

	if swept > 0 {
		logging.FromContext(context.Background()).Debug("sessions swept", "count", swept)
	}
}

// record persists a terminal result, best effort. History must never
// block or fail an import that already completed.
func (s *Service) record(res *ImportResult) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.recorder.Record(ctx, res); err != nil {
		logging.FromContext(ctx).Warn("failed to record import history",
			"session_id", res.SessionID, "error", err)
	}
}

// ProjectRows projects valid rows onto the schema's field names for the
// wire payload. Numeric fields are sent as numbers; an empty optional
// numeric cell becomes 0. Every schema field is present in every item.
func ProjectRows(schema ImportSchema, rows []Row, resolved ResolvedMapping) []map[string]any {
	items := make([]map[string]any, 0, len(rows))

	for _, row := range rows {
		rv := RowView{row: row, resolved: resolved}
		item := make(map[string]any, len(schema.Fields))
		for _, spec := range schema.Fields {
			v, _ := rv.Cell(spec.Field)
			if spec.Numeric {
				item[string(spec.Field)] = ParseNumber(v)
			} else {
				item[string(spec.Field)] = v
			}
		}
		items = append(items, item)
	}

	return items
}

func snapshot(w *Wizard) *SessionView {
	view := &SessionView{
		SessionID: w.ID,
		SchemaKey: w.SchemaKey,
		Step:      w.Step,
		FileName:  w.FileName,
		CreatedAt: w.CreatedAt,
	}
	if w.Parsed != nil {
		view.RowCount = w.Parsed.RowCount()
	}
	if w.Mapping != nil {
		view.Mapping = w.Mapping
	}
	return view
}

func reviewResponse(w *Wizard) *ReviewResponse {
	resp := &ReviewResponse{
		SessionID: w.ID,
		Step:      w.Step,
		Summary: ReviewSummary{
			TotalRows:   w.Outcome.Total(),
			ValidRows:   len(w.Outcome.Valid),
			InvalidRows: len(w.Outcome.Invalid),
		},
	}

	for i, inv := range w.Outcome.Invalid {
		if i >= MaxInvalidShown {
			break
		}
		resp.InvalidSamples = append(resp.InvalidSamples, inv)
	}

	return resp
}
