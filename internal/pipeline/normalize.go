package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sells-group/invoice-cli/internal/amount"
	"github.com/sells-group/invoice-cli/internal/extract"
	"github.com/sells-group/invoice-cli/internal/model"
)

var (
	reFileNF     = regexp.MustCompile(`(?i)NF\s*(\d+)`)
	reFileDigits = regexp.MustCompile(`(\d+)`)
	reIssueDate  = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)
)

// InvoiceNumberFromFilename returns the digits after "NF" in name, else the
// first run of digits, else "".
func InvoiceNumberFromFilename(name string) string {
	if m := reFileNF.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := reFileDigits.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}

// Normalize fills fallbacks on a validated field set and computes the net
// amount (total minus IRRF, rounded to cents). text is the full document text
// used for the payment-method and issue-date fallbacks.
func Normalize(fs model.FieldSet, path, text string) (model.FieldSet, float64) {
	fs.ProviderName = strings.TrimSpace(fs.ProviderName)
	fs.InvoiceNumber = strings.TrimSpace(fs.InvoiceNumber)
	fs.IssueDate = strings.TrimSpace(fs.IssueDate)
	fs.OperationType = strings.TrimSpace(fs.OperationType)
	fs.Notes = strings.TrimSpace(fs.Notes)
	fs.PaymentMethod = strings.TrimSpace(fs.PaymentMethod)

	if fs.InvoiceNumber == "" {
		fs.InvoiceNumber = InvoiceNumberFromFilename(filepath.Base(path))
	}

	net := amount.Net(amount.Parse(fs.TotalAmount), amount.Parse(fs.WithheldTaxAmount))

	if fs.PaymentMethod == "" {
		fs.PaymentMethod = extract.DetectPaymentMethod(text)
	}
	if fs.IssueDate == "" {
		if m := reIssueDate.FindStringSubmatch(text); m != nil {
			fs.IssueDate = m[1]
		}
	}
	return fs, net
}
