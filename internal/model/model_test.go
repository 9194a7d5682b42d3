package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentTypeValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NOTA_FISCAL", string(DocTypeInvoice))
	assert.Equal(t, "CHEQUE", string(DocTypeCheck))
	assert.Equal(t, "DESCONHECIDO", string(DocTypeUnknown))
}

func TestFieldSetFromMap_Defaults(t *testing.T) {
	t.Parallel()

	fs := FieldSetFromMap(map[string]string{
		KeyProviderName: "ACME Serviços LTDA",
		KeyTotalAmount:  "  ",
		"unexpected":    "ignored",
	})

	assert.Equal(t, "ACME Serviços LTDA", fs.ProviderName)
	assert.Equal(t, "0", fs.TotalAmount)
	assert.Equal(t, "0", fs.WithheldTaxAmount)
	assert.Empty(t, fs.InvoiceNumber)
	assert.Empty(t, fs.Notes)
}

func TestNewFieldSet(t *testing.T) {
	t.Parallel()

	fs := NewFieldSet()
	assert.Equal(t, "0", fs.TotalAmount)
	assert.Equal(t, "0", fs.WithheldTaxAmount)
	assert.False(t, fs.Identified())
}

func TestFieldSet_Identified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields FieldSet
		want   bool
	}{
		{"both empty", FieldSet{}, false},
		{"whitespace only", FieldSet{ProviderName: " ", InvoiceNumber: "\t"}, false},
		{"provider only", FieldSet{ProviderName: "ACME"}, true},
		{"number only", FieldSet{InvoiceNumber: "12345678"}, true},
		{"both", FieldSet{ProviderName: "ACME", InvoiceNumber: "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.fields.Identified())
		})
	}
}

func TestRunSummary_Add(t *testing.T) {
	t.Parallel()

	var s RunSummary
	s.Add(OutcomeSuccess)
	s.Add(OutcomeSuccess)
	s.Add(OutcomeUnsupported)
	s.Add(OutcomeError)

	assert.Equal(t, RunSummary{Total: 4, Succeeded: 2, Unsupported: 1, Failed: 1}, s)
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	ok := SuccessOutcome("/in/a.pdf", DocTypeInvoice, FieldSet{ProviderName: "ACME"}, 10.5, MethodPattern)
	assert.Equal(t, OutcomeSuccess, ok.Kind)
	assert.Equal(t, "ACME", ok.Fields.ProviderName)
	assert.InDelta(t, 10.5, ok.NetAmount, 0.0001)

	un := UnsupportedOutcome("/in/b.pdf", DocTypeCheck, "cheque")
	assert.Equal(t, OutcomeUnsupported, un.Kind)
	assert.Nil(t, un.Fields)

	er := ErrorOutcome("/in/c.pdf", DocTypeUnknown, "boom")
	assert.Equal(t, OutcomeError, er.Kind)
	assert.Equal(t, "boom", er.Reason)
}
