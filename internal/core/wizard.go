package core

// wizard.go is the import wizard state machine:
//
//	Upload → Mapping → Review → Importing → (Done | Failed)
//
// Upload→Mapping happens on successful parse, Mapping→Review on explicit
// mapping confirmation, Review→Importing on submit, and the terminal
// states immediately return the session to Upload so another import can
// begin. All transitions are caller-triggered; there is no automatic
// retry and at most one submit is in flight per session.

import (
	"errors"
	"fmt"
	"time"
)

// Transition and guard errors. MapError gives each a support code.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoValidRows      = errors.New("no valid rows to import")
	ErrImportInProgress = errors.New("import already in progress")
	ErrTooManyRows      = errors.New("too many rows")
)

// Wizard holds the state of one import session. All fields are guarded
// by the owning Service's mutex; a Wizard is never shared outside it.
type Wizard struct {
	ID        string
	SchemaKey string
	Step      Step
	FileName  string

	Parsed     *ParsedFile
	Suggestion MappingSuggestion
	Mapping    FieldMapping
	Resolved   ResolvedMapping
	Outcome    *ValidationOutcome

	CreatedAt time.Time
	Touched   time.Time
}

// newWizard creates a session in the Mapping step, seeded with the
// auto-mapper's suggestion.
func newWizard(id, schemaKey, fileName string, parsed *ParsedFile, suggestion MappingSuggestion) *Wizard {
	now := time.Now()
	return &Wizard{
		ID:         id,
		SchemaKey:  schemaKey,
		Step:       StepMapping,
		FileName:   fileName,
		Parsed:     parsed,
		Suggestion: suggestion,
		Mapping:    suggestion.Mapping,
		CreatedAt:  now,
		Touched:    now,
	}
}

// confirmMapping applies the user's (possibly overridden) mapping and
// moves the wizard to Review. Re-confirming from Review is allowed so
// the user can adjust the mapping before submitting.
func (w *Wizard) confirmMapping(schema ImportSchema, mapping FieldMapping) error {
	switch w.Step {
	case StepMapping, StepReview:
	case StepImporting:
		return ErrImportInProgress
	default:
		return fmt.Errorf("cannot confirm mapping from step %q", w.Step)
	}

	resolved, err := ResolveMapping(schema, mapping, w.Parsed.Headers)
	if err != nil {
		return err
	}

	outcome := Partition(schema, w.Parsed.Rows, resolved)

	w.Mapping = mapping
	w.Resolved = resolved
	w.Outcome = &outcome
	w.Step = StepReview
	w.Touched = time.Now()
	return nil
}

// beginImport moves Review→Importing. Submission with zero valid rows is
// rejected, as is a second submit while one is pending.
func (w *Wizard) beginImport() error {
	switch w.Step {
	case StepImporting:
		return ErrImportInProgress
	case StepReview:
	default:
		return fmt.Errorf("cannot submit from step %q", w.Step)
	}

	if w.Outcome == nil || len(w.Outcome.Valid) == 0 {
		return ErrNoValidRows
	}

	w.Step = StepImporting
	w.Touched = time.Now()
	return nil
}

// finish records the terminal step and resets the wizard back to Upload,
// dropping all parsed state so the session can host another import. The
// result itself travels back to the caller and into the history store.
func (w *Wizard) finish(failed bool) {
	if failed {
		w.Step = StepFailed
	} else {
		w.Step = StepDone
	}
	w.reset()
}

// reset drops all per-file state and returns the session to Upload.
func (w *Wizard) reset() {
	w.Parsed = nil
	w.Suggestion = MappingSuggestion{}
	w.Mapping = nil
	w.Resolved = nil
	w.Outcome = nil
	w.FileName = ""
	w.Step = StepUpload
	w.Touched = time.Now()
}
