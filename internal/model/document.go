package model

// DocumentType is the classification assigned to a document before field
// extraction. Values are the labels written to the ledgers.
type DocumentType string

const (
	DocTypeInvoice DocumentType = "NOTA_FISCAL"
	DocTypeCheck   DocumentType = "CHEQUE"
	DocTypeUnknown DocumentType = "DESCONHECIDO"
)

// Document is the transient state of one PDF moving through the pipeline.
type Document struct {
	Path       string       `json:"path"`
	Text       string       `json:"-"`
	Type       DocumentType `json:"type"`
	OCRApplied bool         `json:"ocr_applied"`
}

// ExtractionMethod names the extractor that produced a FieldSet.
type ExtractionMethod string

const (
	MethodRemote  ExtractionMethod = "remote"
	MethodPattern ExtractionMethod = "pattern"
)
