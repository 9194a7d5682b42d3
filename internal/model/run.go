package model

import "time"

// RunStatus represents the current state of a processing run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one invocation of the batch over an input folder.
type Run struct {
	ID         string      `json:"id"`
	InputDir   string      `json:"input_dir"`
	Status     RunStatus   `json:"status"`
	Summary    *RunSummary `json:"summary,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// RunSummary counts outcomes for a finished run.
type RunSummary struct {
	Total       int `json:"total"`
	Succeeded   int `json:"succeeded"`
	Unsupported int `json:"unsupported"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
}

// Add tallies one outcome.
func (s *RunSummary) Add(kind OutcomeKind) {
	s.Total++
	switch kind {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeUnsupported:
		s.Unsupported++
	case OutcomeError:
		s.Failed++
	}
}

// DocumentRecord is the journal entry for one processed document.
type DocumentRecord struct {
	ID          string           `json:"id"`
	RunID       string           `json:"run_id"`
	Path        string           `json:"path"`
	ContentHash string           `json:"content_hash"`
	Kind        OutcomeKind      `json:"kind"`
	DocType     DocumentType     `json:"doc_type"`
	Method      ExtractionMethod `json:"method,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
