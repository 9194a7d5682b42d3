package extract

import "strings"

// Payment method codes written to the FORMA PAGAMENTO column.
const (
	PaymentItau      = "B"
	PaymentOtherBank = "D"
)

var (
	itauMarkers      = []string{"itau", "itaú", "banco 341"}
	otherBankMarkers = []string{"banco", "bradesco", "santander", "bb", "banco do brasil", "caixa"}
)

// DetectPaymentMethod classifies the paying bank from keywords in text:
// Itaú is "B", any other listed bank is "D", anything else is "".
func DetectPaymentMethod(text string) string {
	lower := strings.ToLower(text)
	if containsAny(lower, itauMarkers) {
		return PaymentItau
	}
	if containsAny(lower, otherBankMarkers) {
		return PaymentOtherBank
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
