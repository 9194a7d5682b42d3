package pipeline

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/invoice-cli/internal/model"
)

// Ledger reasons. They are written verbatim into the error and unsupported
// ledgers, which are read by Portuguese-speaking operators.
const (
	reasonCheck           = "Documento identificado como cheque. Não suportado para extração de Nota Fiscal."
	reasonExtraction      = "Falha na extração de dados após todas as tentativas (%s). Tipo: %s."
	reasonFileUnavailable = "Arquivo não disponível após várias tentativas: %s"
	reasonUnexpected      = "Erro inesperado no processamento do arquivo: %v"
)

// Validate rejects a field set that names neither a provider nor an invoice
// number. The returned error wraps model.ErrValidation.
func Validate(fs model.FieldSet, method model.ExtractionMethod, docType model.DocumentType) error {
	if fs.Identified() {
		return nil
	}
	return eris.Wrapf(model.ErrValidation, "pipeline: no provider or invoice number (method=%s, type=%s)", method, docType)
}

func extractionFailureReason(method model.ExtractionMethod, docType model.DocumentType) string {
	return fmt.Sprintf(reasonExtraction, method, docType)
}
