package model

import "strings"

// FieldSet is the flat record of invoice fields produced by an extractor.
// Every field is always present; numeric fields hold unparsed strings and
// default to "0".
type FieldSet struct {
	InvoiceNumber     string `json:"numero_nota"`
	ProviderName      string `json:"prestador"`
	ProviderTaxID     string `json:"cnpj"`
	PayerName         string `json:"pagador"`
	PayerTaxID        string `json:"cnpj_pagador"`
	PaymentMethod     string `json:"forma_pagamento"`
	TotalAmount       string `json:"valor_total"`
	WithheldTaxAmount string `json:"irrf"`
	IssueDate         string `json:"data_emissao"`
	OperationType     string `json:"operacao"`
	Notes             string `json:"observacoes"`
}

// Field keys as they appear in remote extractor responses.
const (
	KeyInvoiceNumber     = "numero_nota"
	KeyProviderName      = "prestador"
	KeyProviderTaxID     = "cnpj"
	KeyPayerName         = "pagador"
	KeyPayerTaxID        = "cnpj_pagador"
	KeyPaymentMethod     = "forma_pagamento"
	KeyTotalAmount       = "valor_total"
	KeyWithheldTaxAmount = "irrf"
	KeyIssueDate         = "data_emissao"
	KeyOperationType     = "operacao"
	KeyNotes             = "observacoes"
)

// NewFieldSet returns a FieldSet with numeric defaults applied.
func NewFieldSet() FieldSet {
	return FieldSet{TotalAmount: "0", WithheldTaxAmount: "0"}
}

// FieldSetFromMap builds a FieldSet from string values keyed by response key.
// Missing or blank numeric keys fall back to "0"; unknown keys are ignored.
func FieldSetFromMap(m map[string]string) FieldSet {
	fs := FieldSet{
		InvoiceNumber:     m[KeyInvoiceNumber],
		ProviderName:      m[KeyProviderName],
		ProviderTaxID:     m[KeyProviderTaxID],
		PayerName:         m[KeyPayerName],
		PayerTaxID:        m[KeyPayerTaxID],
		PaymentMethod:     m[KeyPaymentMethod],
		TotalAmount:       m[KeyTotalAmount],
		WithheldTaxAmount: m[KeyWithheldTaxAmount],
		IssueDate:         m[KeyIssueDate],
		OperationType:     m[KeyOperationType],
		Notes:             m[KeyNotes],
	}
	if strings.TrimSpace(fs.TotalAmount) == "" {
		fs.TotalAmount = "0"
	}
	if strings.TrimSpace(fs.WithheldTaxAmount) == "" {
		fs.WithheldTaxAmount = "0"
	}
	return fs
}

// Identified reports whether the set names a provider or an invoice number.
func (f FieldSet) Identified() bool {
	return strings.TrimSpace(f.ProviderName) != "" || strings.TrimSpace(f.InvoiceNumber) != ""
}
