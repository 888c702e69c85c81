package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ferhanaltun7/butce-tracker/internal/llm"
)

// Confidence assumed for AI-provided values when the model omits its own
// per-field score.
const aiConfidenceDefault = 0.85

// Extractor turns raw OCR text into typed, confidence-scored fields. The AI
// parser is the primary path when configured; the regex pipeline is the
// deterministic fallback, so extraction never fails outright.
type Extractor struct {
	parser llm.Parser
}

// NewExtractor creates an Extractor. A nil parser disables the AI path and
// every extraction runs the regex pipeline directly.
func NewExtractor(parser llm.Parser) *Extractor {
	return &Extractor{parser: parser}
}

// ExtractBill parses bill fields from OCR text. It never returns an error:
// the worst outcome is an all-empty result for empty input.
func (e *Extractor) ExtractBill(ctx context.Context, ocrText string) BillExtraction {
	if ocrText == "" {
		return emptyBill()
	}
	if e.parser != nil {
		res, err := e.parser.ParseBill(ctx, ocrText)
		if err == nil {
			return billFromAI(res)
		}
		slog.Warn("AI bill parse failed, using regex fallback", "error", err)
	}
	return fallbackBill(ocrText)
}

// ExtractReceipt parses receipt fields from OCR text. Same contract as
// ExtractBill.
func (e *Extractor) ExtractReceipt(ctx context.Context, ocrText string) ReceiptExtraction {
	if ocrText == "" {
		return emptyReceipt()
	}
	if e.parser != nil {
		res, err := e.parser.ParseReceipt(ctx, ocrText)
		if err == nil {
			return receiptFromAI(res, ocrText)
		}
		slog.Warn("AI receipt parse failed, using regex fallback", "error", err)
	}
	return fallbackReceipt(ocrText)
}

func billFromAI(res *llm.BillResult) BillExtraction {
	return BillExtraction{
		BillerName: aiField(res.BillerName, res.BillerConfidence, res.BillerEvidence),
		DueDate:    aiField(res.DueDate, res.DueDateConfidence, res.DueDateEvidence),
		AmountDue:  aiAmountField(res.Amount, res.AmountConfidence, res.AmountEvidence),
		Currency:   found(stringOr(res.Currency, "TRY"), currencyConfidence, []string{"TL detected"}),
	}
}

func receiptFromAI(res *llm.ReceiptResult, ocrText string) ReceiptExtraction {
	out := ReceiptExtraction{
		StoreName:   aiField(res.StoreName, res.StoreConfidence, res.StoreEvidence),
		ReceiptDate: aiField(res.ReceiptDate, res.DateConfidence, res.DateEvidence),
		TotalAmount: aiAmountField(res.Amount, res.AmountConfidence, res.AmountEvidence),
		Currency:    found(stringOr(res.Currency, "TRY"), currencyConfidence, []string{"TL detected"}),
		Items:       itemsFromAI(res.Items),
	}
	out.Category = stringOr(res.Category, "")
	if out.Category == "" {
		store := stringOr(res.StoreName, "")
		out.Category = DetectCategory(store, ocrText)
	}
	return out
}

// aiField maps one AI-reported value into a Field, wrapping the evidence
// snippet as a single-element sequence when provided. A missing or
// non-positive model confidence falls back to aiConfidenceDefault so the
// value=nil iff confidence=0 invariant holds.
func aiField(value *string, confidence *float64, evidence *string) Field {
	if value == nil || strings.TrimSpace(*value) == "" {
		return missing()
	}
	conf := aiConfidenceDefault
	if confidence != nil && *confidence > 0 {
		conf = *confidence
	}
	ev := []string{}
	if evidence != nil && *evidence != "" {
		ev = []string{*evidence}
	}
	return found(*value, conf, ev)
}

// aiAmountField stringifies a numeric amount from the model. Zero and
// unparseable amounts are treated as missing.
func aiAmountField(amount json.Number, confidence *float64, evidence *string) Field {
	s := strings.TrimSpace(amount.String())
	if s == "" {
		return missing()
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() {
		return missing()
	}
	v := amountString(d)
	return aiField(&v, confidence, evidence)
}

func itemsFromAI(items []llm.ReceiptItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(it.Price.String()))
		if err != nil {
			continue
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		out = append(out, LineItem{Name: name, Price: price, Quantity: qty})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
