package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleInvoice = `PREFEITURA MUNICIPAL DE SÃO PAULO
NOTA FISCAL ELETRÔNICA DE SERVIÇOS - NFS-e
Número da Nota          00012345
Data e Hora de Emissão 15/03/2024 10:22:01
PRESTADOR DE SERVIÇOS: ACME Consultoria Ltda
CNPJ: 12.345.678/0001-90
TOMADOR DE SERVIÇOS: Beta Industria SA CNPJ: 98.765.432/0001-10
Valor Total da Nota: R$ 1.234,56
IRRF: R$ 18,52
Pagamento via Banco Itaú agência 0001`

func TestPattern_Extract(t *testing.T) {
	fs := Pattern{}.Extract(sampleInvoice)

	assert.Equal(t, "00012345", fs.InvoiceNumber)
	assert.Equal(t, "ACME Consultoria Ltda", fs.ProviderName)
	assert.Equal(t, "12.345.678/0001-90", fs.ProviderTaxID)
	assert.Equal(t, "Beta Industria SA", fs.PayerName)
	assert.Equal(t, "98.765.432/0001-10", fs.PayerTaxID)
	assert.Equal(t, "B", fs.PaymentMethod)
	assert.Equal(t, "1.234,56", fs.TotalAmount)
	assert.Equal(t, "18,52", fs.WithheldTaxAmount)
	assert.Empty(t, fs.IssueDate)
	assert.Empty(t, fs.OperationType)
	assert.Empty(t, fs.Notes)
}

func TestPattern_EmptyText(t *testing.T) {
	fs := Pattern{}.Extract("")
	assert.Empty(t, fs.InvoiceNumber)
	assert.Empty(t, fs.ProviderName)
	assert.Empty(t, fs.PaymentMethod)
	assert.Equal(t, "0", fs.TotalAmount)
	assert.Equal(t, "0", fs.WithheldTaxAmount)
	assert.False(t, fs.Identified())
}

func TestFindInvoiceNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "line start", text: "12345678 serie A", want: "12345678"},
		{name: "whole line", text: "cabecalho\n87654321", want: "87654321"},
		{name: "after wide gap", text: "Numero\t  11223344", want: "11223344"},
		{name: "single space is not enough", text: "NF 12345678 emitida", want: ""},
		{name: "nine digits", text: "123456789", want: ""},
		{name: "first line wins", text: "00000001\n00000002", want: "00000001"},
		{name: "crlf", text: "topo\r\n55556666\r\n", want: "55556666"},
		{name: "none", text: "sem numero", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findInvoiceNumber(tt.text))
		})
	}
}

func TestPattern_PayerStopsAtNewline(t *testing.T) {
	fs := Pattern{}.Extract("Cliente: Loja Central\nEndereco: Rua A")
	assert.Equal(t, "Loja Central", fs.PayerName)
	assert.Empty(t, fs.PayerTaxID)
}

func TestPattern_TotalVariants(t *testing.T) {
	assert.Equal(t, "500,00", Pattern{}.Extract("TOTAL A PAGAR: 500,00").TotalAmount)
	assert.Equal(t, "12.000,00", Pattern{}.Extract("Total do contrato R$12.000,00").TotalAmount)
	assert.Equal(t, "0", Pattern{}.Extract("Subtotal 10,00").TotalAmount)
}

func TestDetectPaymentMethod(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Banco ITAU Unibanco", want: "B"},
		{text: "banco 341 agencia", want: "B"},
		{text: "Bradesco S.A.", want: "D"},
		{text: "CAIXA ECONOMICA", want: "D"},
		{text: "Banco Inter", want: "D"},
		{text: "Nubank", want: ""},
		{text: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectPaymentMethod(tt.text), tt.text)
	}
}

func TestPattern_NoBreakSpaces(t *testing.T) {
	text := "NF\u00a0\u00a012345678\u00a0\n" +
		"Prestador:\u00a0ACME Ltda\u00a0\n" +
		"Valor Total da Nota:\u00a0R$\u00a01.234,56\n" +
		"IRRF:\u00a0R$ 18,52"

	fs := Pattern{}.Extract(text)
	assert.Equal(t, "12345678", fs.InvoiceNumber)
	assert.Equal(t, "ACME Ltda", fs.ProviderName)
	assert.Equal(t, "1.234,56", fs.TotalAmount)
	assert.Equal(t, "18,52", fs.WithheldTaxAmount)
}
