package extract

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Field is one extracted attribute with its provenance. Confidence is 0
// exactly when Value is nil.
type Field struct {
	Value      *string  `json:"value"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// BillExtraction holds the parsed fields of a scanned bill.
type BillExtraction struct {
	BillerName Field `json:"biller_name"`
	DueDate    Field `json:"due_date"`
	AmountDue  Field `json:"amount_due"`
	Currency   Field `json:"currency"`
}

// ReceiptExtraction holds the parsed fields of a scanned receipt. Items are
// only ever produced by the AI path; the regex fallback leaves them nil.
type ReceiptExtraction struct {
	StoreName   Field      `json:"store_name"`
	ReceiptDate Field      `json:"receipt_date"`
	TotalAmount Field      `json:"total_amount"`
	Currency    Field      `json:"currency"`
	Category    string     `json:"category,omitempty"`
	Items       []LineItem `json:"items,omitempty"`
}

// LineItem is a single purchased item on a receipt.
type LineItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func found(value string, confidence float64, evidence []string) Field {
	if evidence == nil {
		evidence = []string{}
	}
	return Field{Value: &value, Confidence: confidence, Evidence: evidence}
}

func missing() Field {
	return Field{Value: nil, Confidence: 0, Evidence: []string{}}
}

// RawTextLimit bounds the raw OCR text echoed back to clients. Display only;
// parsing always sees the full text.
const RawTextLimit = 2000

// TruncateRaw clips s to RawTextLimit runes.
func TruncateRaw(s string) string {
	return truncateRunes(s, RawTextLimit)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// lineEvidence returns the first line of text whose lowercase form contains
// needle, trimmed and clipped to 100 runes. Needle is expected lowercased.
func lineEvidence(text, needle string) []string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			return []string{truncateRunes(strings.TrimSpace(line), 100)}
		}
	}
	return []string{}
}
