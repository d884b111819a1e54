package domain

import "time"

type DocumentType string

const (
	DocumentHistopathology DocumentType = "Histopathology Report"
	DocumentPAPTest        DocumentType = "PAP Test Report"
	DocumentBloodTest      DocumentType = "Blood Test Report"
	DocumentGeneral        DocumentType = "General Medical Report"

	// DocumentUnreadable labels files whose text could not be extracted.
	DocumentUnreadable DocumentType = "Unreadable Document"
)

// Severity is the single-letter tier returned by the severity reviewer.
type Severity string

const (
	SeverityAbnormal Severity = "A"
	SeverityMild     Severity = "B"
	SeverityNormal   Severity = "C"
)

func (s Severity) Label() string {
	switch s {
	case SeverityAbnormal:
		return "Abnormal"
	case SeverityMild:
		return "Mild"
	case SeverityNormal:
		return "Normal"
	default:
		return "Unknown"
	}
}

// Outcome tells callers whether a result is genuine or was produced by a fallback path.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
	OutcomeFailed   Outcome = "failed"
)

// Worst returns the less healthy of two outcomes.
func (o Outcome) Worst(other Outcome) Outcome {
	rank := func(v Outcome) int {
		switch v {
		case OutcomeFailed:
			return 2
		case OutcomeDegraded:
			return 1
		default:
			return 0
		}
	}
	if rank(other) > rank(o) {
		return other
	}
	return o
}

// StoredFile is an upload persisted to the scratch directory for the duration of a request.
type StoredFile struct {
	Filename string
	MimeType string
	Key      string
	Path     string
	Size     int64
}

// Extraction is the OCR output for one file.
type Extraction struct {
	Text  string
	Pages int
}

type SeverityAssessment struct {
	Severity Severity
	Outcome  Outcome
	Raw      string
}

type Summary struct {
	HTML     string
	Severity Severity
	Outcome  Outcome
}

type DocumentResult struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	DocumentType DocumentType `json:"document_type"`
	SummaryHTML  string       `json:"summary_html"`
	Severity     Severity     `json:"severity,omitempty"`
	Outcome      Outcome      `json:"outcome"`
	Error        string       `json:"error,omitempty"`
}

// ReportProcessed is the audit event emitted once per processed file. It never carries report text.
type ReportProcessed struct {
	ID           string       `json:"id"`
	RequestID    string       `json:"request_id,omitempty"`
	Filename     string       `json:"filename"`
	DocumentType DocumentType `json:"document_type"`
	Severity     Severity     `json:"severity,omitempty"`
	Outcome      Outcome      `json:"outcome"`
	Pages        int          `json:"pages"`
	DurationMS   int64        `json:"duration_ms"`
	ProcessedAt  time.Time    `json:"processed_at"`
}
