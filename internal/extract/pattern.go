package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sells-group/invoice-cli/internal/model"
)

const cnpjPattern = `(\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})`

// sp matches any whitespace including no-break and other Unicode spaces,
// which text layers and OCR emit between labels and values.
const sp = `[\s\p{Zs}]`

var (
	// Eight digits at line start or after a wide gap, as printed in the
	// header box of most municipal NFS-e layouts.
	reInvoiceNumber = regexp.MustCompile(`(?:^|` + sp + `{2,})(\d{8})(?:` + sp + `|$)`)
	reProvider      = regexp.MustCompile(`(?i)(?:Prestador|Emitente).*?:` + sp + `*(.*)`)
	reProviderTaxID = regexp.MustCompile(`(?i)CNPJ[^\d]*` + cnpjPattern)
	rePayer         = regexp.MustCompile(`(?i)(?:Tomador|Cliente|Pagador).*?:` + sp + `*(.*?)(?:\n|CNPJ|$)`)
	rePayerTaxID    = regexp.MustCompile(`(?i)(?:Tomador|Cliente|Pagador).*?(?:CNPJ[^\d]*` + cnpjPattern + `)`)
	reTotal         = regexp.MustCompile(`(?i)(?:Total a pagar|Valor Total da Nota|Total do contrato)[:\s\p{Zs}]*R?\$?` + sp + `*([\d.,]+)`)
	reWithheldTax   = regexp.MustCompile(`(?i)IRRF[:\s\p{Zs}]*R?\$?` + sp + `*([\d.,]+)`)
)

// Pattern is the local, deterministic extractor. It never fails; a FieldSet
// with empty strings and "0" amounts is a valid result.
//
// IRRF is matched by label only, so a layout that prints another withholding
// next to the IRRF label can be misread.
type Pattern struct{}

// Extract applies the regular-expression rules to text. Issue date, operation
// and notes are never filled here.
func (Pattern) Extract(text string) model.FieldSet {
	fs := model.NewFieldSet()

	fs.InvoiceNumber = findInvoiceNumber(text)
	fs.ProviderName = trimSpaces(firstGroup(reProvider, text))
	fs.ProviderTaxID = firstGroup(reProviderTaxID, text)
	fs.PayerName = trimSpaces(firstGroup(rePayer, text))
	fs.PayerTaxID = firstGroup(rePayerTaxID, text)
	fs.PaymentMethod = DetectPaymentMethod(text)

	if v := firstGroup(reTotal, text); v != "" {
		fs.TotalAmount = v
	}
	if v := firstGroup(reWithheldTax, text); v != "" {
		fs.WithheldTaxAmount = v
	}
	return fs
}

// findInvoiceNumber scans line by line and returns the first eight-digit match.
func findInvoiceNumber(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := reInvoiceNumber.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// trimSpaces trims Unicode whitespace including no-break spaces.
func trimSpaces(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.In(r, unicode.Zs)
	})
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
