package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/invoice-cli/internal/model"
)

// DocumentTypeRule assigns Type when any keyword occurs in the lower-cased text.
type DocumentTypeRule struct {
	Type     model.DocumentType
	Keywords []string
}

// DocumentTypeRules are evaluated in order and the first match wins. Checks
// come before invoices, so a document that mentions a bank account and
// "nota fiscal" is a check.
var DocumentTypeRules = []DocumentTypeRule{
	{
		Type:     model.DocTypeCheck,
		Keywords: []string{"cheque", "pague por este", "compensação", "banco", "agência", "conta corrente", "cheque n"},
	},
	{
		Type: model.DocTypeInvoice,
		Keywords: []string{
			"nota fiscal", "nf-e", "nfse", "danfe", "prestador", "tomador",
			"emitente", "valor total", "irrf", "município", "serviços",
		},
	},
}

// ClassifyDocument labels text using DocumentTypeRules; no match is unknown.
func ClassifyDocument(text string) model.DocumentType {
	// A Caser holds state, so one is built per call.
	lower := cases.Lower(language.BrazilianPortuguese).String(text)
	for _, rule := range DocumentTypeRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Type
			}
		}
	}
	return model.DocTypeUnknown
}
