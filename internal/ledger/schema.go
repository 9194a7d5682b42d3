// Package ledger appends processing outcomes to the three CSV ledgers and
// exports the success ledger to XLSX.
package ledger

import (
	"github.com/sells-group/invoice-cli/internal/amount"
	"github.com/sells-group/invoice-cli/internal/model"
)

// Column headers, in order, for each ledger.
var (
	SuccessHeader = []string{
		"DATA EMISSÃO NF",
		"NOME FORNECEDOR",
		"NÚMERO NF",
		"OPERAÇÃO",
		"VALOR",
		"FORMA PAGAMENTO",
		"OBSERVAÇÕES",
		"Caminho do Arquivo",
	}
	ErrorHeader       = []string{"caminho_arquivo", "erro_detalhes", "tipo_documento"}
	UnsupportedHeader = []string{"caminho_arquivo", "tipo_documento", "detalhes"}
)

// Header returns the header for the ledger that receives kind.
func Header(kind model.OutcomeKind) []string {
	switch kind {
	case model.OutcomeSuccess:
		return SuccessHeader
	case model.OutcomeUnsupported:
		return UnsupportedHeader
	default:
		return ErrorHeader
	}
}

// Row flattens an outcome into the columns of its ledger.
func Row(out *model.Outcome) []string {
	switch out.Kind {
	case model.OutcomeSuccess:
		var fs model.FieldSet
		if out.Fields != nil {
			fs = *out.Fields
		}
		return []string{
			fs.IssueDate,
			fs.ProviderName,
			fs.InvoiceNumber,
			fs.OperationType,
			amount.Format(out.NetAmount),
			fs.PaymentMethod,
			fs.Notes,
			out.Path,
		}
	case model.OutcomeUnsupported:
		return []string{out.Path, string(out.DocType), out.Reason}
	default:
		return []string{out.Path, out.Reason, string(out.DocType)}
	}
}
