package model

import "github.com/rotisserie/eris"

// Failure kinds raised while processing a document. Callers wrap these with
// eris and inspect them with errors.Is.
var (
	// ErrFileUnavailable: the file could not be opened for reading within the
	// configured wait attempts. Fatal for the document.
	ErrFileUnavailable = eris.New("file unavailable")
	// ErrRenderFailure: pages could not be rasterized for OCR. Non-fatal.
	ErrRenderFailure = eris.New("render failure")
	// ErrRecognitionFailure: OCR ran but produced no text. Non-fatal.
	ErrRecognitionFailure = eris.New("recognition failure")
	// ErrRemoteExtraction: the remote extractor could not produce fields.
	// Non-fatal, the pattern extractor takes over.
	ErrRemoteExtraction = eris.New("remote extraction failure")
	// ErrValidation: neither provider name nor invoice number was extracted.
	ErrValidation = eris.New("validation failure")
	// ErrUnsupportedDocument: the document is of a type that is not extracted.
	ErrUnsupportedDocument = eris.New("unsupported document")
)
