package model

// OutcomeKind tags which ledger an Outcome belongs to.
type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeUnsupported OutcomeKind = "unsupported"
	OutcomeError       OutcomeKind = "error"
)

// Outcome is the single terminal result of processing one document.
// Fields, NetAmount and Method are set only for OutcomeSuccess; Reason is set
// for the other kinds.
type Outcome struct {
	Kind      OutcomeKind      `json:"kind"`
	Path      string           `json:"path"`
	DocType   DocumentType     `json:"doc_type,omitempty"`
	Fields    *FieldSet        `json:"fields,omitempty"`
	NetAmount float64          `json:"net_amount,omitempty"`
	Method    ExtractionMethod `json:"method,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	OCR       bool             `json:"ocr_applied"`
}

// SuccessOutcome builds an OutcomeSuccess.
func SuccessOutcome(path string, docType DocumentType, fields FieldSet, net float64, method ExtractionMethod) *Outcome {
	return &Outcome{
		Kind:      OutcomeSuccess,
		Path:      path,
		DocType:   docType,
		Fields:    &fields,
		NetAmount: net,
		Method:    method,
	}
}

// UnsupportedOutcome builds an OutcomeUnsupported.
func UnsupportedOutcome(path string, docType DocumentType, reason string) *Outcome {
	return &Outcome{Kind: OutcomeUnsupported, Path: path, DocType: docType, Reason: reason}
}

// ErrorOutcome builds an OutcomeError.
func ErrorOutcome(path string, docType DocumentType, reason string) *Outcome {
	return &Outcome{Kind: OutcomeError, Path: path, DocType: docType, Reason: reason}
}
