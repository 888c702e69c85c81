package extract

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ferhanaltun7/butce-tracker/internal/llm"
)

// mockParser is a mock implementation of llm.Parser
type mockParser struct {
	billResult    *llm.BillResult
	receiptResult *llm.ReceiptResult
	billErr       error
	receiptErr    error
	billCalls     int
	receiptCalls  int
}

func (m *mockParser) ParseBill(ctx context.Context, ocrText string) (*llm.BillResult, error) {
	m.billCalls++
	if m.billErr != nil {
		return nil, m.billErr
	}
	return m.billResult, nil
}

func (m *mockParser) ParseReceipt(ctx context.Context, ocrText string) (*llm.ReceiptResult, error) {
	m.receiptCalls++
	if m.receiptErr != nil {
		return nil, m.receiptErr
	}
	return m.receiptResult, nil
}

func (m *mockParser) Close() error {
	return nil
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

const billText = "ENERJISA\nSON ÖDEME TARİHİ: 15.02.2025\nÖDENECEK TUTAR: 1.250,75 TL"
const receiptText = "MIGROS TİCARET A.Ş.\n28.01.2025\nTOPLAM *45,90 TL"

var _ = Describe("Extractor", func() {
	var (
		parser    *mockParser
		extractor *Extractor
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		parser = &mockParser{}
	})

	Describe("ExtractBill", func() {
		When("no parser is configured", func() {
			BeforeEach(func() {
				extractor = NewExtractor(nil)
			})

			It("should extract all fields from a Turkish bill", func() {
				result := extractor.ExtractBill(ctx, billText)
				Expect(*result.BillerName.Value).To(Equal("Enerjisa"))
				Expect(*result.DueDate.Value).To(Equal("2025-02-15"))
				Expect(*result.AmountDue.Value).To(Equal("1250.75"))
				Expect(*result.Currency.Value).To(Equal("TRY"))
			})

			It("should use the fixed fallback confidences", func() {
				result := extractor.ExtractBill(ctx, billText)
				Expect(result.BillerName.Confidence).To(Equal(0.6))
				Expect(result.DueDate.Confidence).To(Equal(0.5))
				Expect(result.AmountDue.Confidence).To(Equal(0.5))
				Expect(result.Currency.Confidence).To(Equal(0.95))
			})

			It("should return an all-empty result for empty text", func() {
				result := extractor.ExtractBill(ctx, "")
				for _, f := range []Field{result.BillerName, result.DueDate, result.AmountDue, result.Currency} {
					Expect(f.Value).To(BeNil())
					Expect(f.Confidence).To(BeZero())
					Expect(f.Evidence).To(BeEmpty())
					Expect(f.Evidence).NotTo(BeNil())
				}
			})

			It("should be deterministic for the same input", func() {
				first := extractor.ExtractBill(ctx, billText)
				second := extractor.ExtractBill(ctx, billText)
				Expect(second).To(Equal(first))
			})

			It("should leave missing fields empty without failing the rest", func() {
				result := extractor.ExtractBill(ctx, "ENERJISA\nbir açıklama satırı")
				Expect(*result.BillerName.Value).To(Equal("Enerjisa"))
				Expect(result.DueDate.Value).To(BeNil())
				Expect(result.AmountDue.Value).To(BeNil())
				Expect(result.AmountDue.Confidence).To(BeZero())
			})
		})

		When("the parser succeeds", func() {
			BeforeEach(func() {
				parser.billResult = &llm.BillResult{
					BillerName:       strPtr("Enerjisa"),
					BillerConfidence: floatPtr(0.95),
					BillerEvidence:   strPtr("ENERJISA A.Ş."),
					Amount:           json.Number("1250.75"),
					DueDate:          strPtr("2025-02-15"),
					Currency:         strPtr("TRY"),
				}
				extractor = NewExtractor(parser)
			})

			It("should use the AI values", func() {
				result := extractor.ExtractBill(ctx, billText)
				Expect(parser.billCalls).To(Equal(1))
				Expect(*result.BillerName.Value).To(Equal("Enerjisa"))
				Expect(result.BillerName.Confidence).To(Equal(0.95))
				Expect(result.BillerName.Evidence).To(ConsistOf("ENERJISA A.Ş."))
				Expect(*result.AmountDue.Value).To(Equal("1250.75"))
			})

			It("should default the confidence when the model omits it", func() {
				result := extractor.ExtractBill(ctx, billText)
				Expect(result.DueDate.Confidence).To(Equal(0.85))
				Expect(result.AmountDue.Confidence).To(Equal(0.85))
			})

			It("should treat a blank value as missing", func() {
				parser.billResult.DueDate = strPtr("  ")
				result := extractor.ExtractBill(ctx, billText)
				Expect(result.DueDate.Value).To(BeNil())
				Expect(result.DueDate.Confidence).To(BeZero())
			})

			It("should treat a zero amount as missing", func() {
				parser.billResult.Amount = json.Number("0")
				result := extractor.ExtractBill(ctx, billText)
				Expect(result.AmountDue.Value).To(BeNil())
			})

			It("should not call the parser for empty text", func() {
				result := extractor.ExtractBill(ctx, "")
				Expect(parser.billCalls).To(BeZero())
				Expect(result.BillerName.Value).To(BeNil())
			})
		})

		When("the parser fails", func() {
			BeforeEach(func() {
				parser.billErr = errors.New("model unavailable")
				extractor = NewExtractor(parser)
			})

			It("should fall back to the regex pipeline", func() {
				result := extractor.ExtractBill(ctx, billText)
				Expect(parser.billCalls).To(Equal(1))
				Expect(*result.BillerName.Value).To(Equal("Enerjisa"))
				Expect(result.BillerName.Confidence).To(Equal(0.6))
			})
		})
	})

	Describe("ExtractReceipt", func() {
		When("no parser is configured", func() {
			BeforeEach(func() {
				extractor = NewExtractor(nil)
			})

			It("should extract all fields from a Turkish receipt", func() {
				result := extractor.ExtractReceipt(ctx, receiptText)
				Expect(*result.StoreName.Value).To(Equal("Migros"))
				Expect(*result.ReceiptDate.Value).To(Equal("2025-01-28"))
				Expect(*result.TotalAmount.Value).To(Equal("45.90"))
				Expect(*result.Currency.Value).To(Equal("TRY"))
			})

			It("should classify the receipt", func() {
				result := extractor.ExtractReceipt(ctx, receiptText)
				Expect(result.Category).To(Equal("market"))
			})

			It("should never produce line items", func() {
				result := extractor.ExtractReceipt(ctx, receiptText)
				Expect(result.Items).To(BeNil())
			})
		})

		When("the parser succeeds", func() {
			BeforeEach(func() {
				parser.receiptResult = &llm.ReceiptResult{
					StoreName:       strPtr("Migros"),
					StoreConfidence: floatPtr(0.95),
					Amount:          json.Number("45.90"),
					ReceiptDate:     strPtr("2025-01-28"),
					Category:        strPtr("market"),
					Items: []llm.ReceiptItem{
						{Name: "Süt", Price: json.Number("25.90"), Quantity: 1},
						{Name: "Ekmek", Price: json.Number("12.50"), Quantity: 0},
						{Name: "", Price: json.Number("5.00"), Quantity: 1},
					},
					Currency: strPtr("TRY"),
				}
				extractor = NewExtractor(parser)
			})

			It("should map the AI fields", func() {
				result := extractor.ExtractReceipt(ctx, receiptText)
				Expect(parser.receiptCalls).To(Equal(1))
				Expect(*result.StoreName.Value).To(Equal("Migros"))
				Expect(*result.TotalAmount.Value).To(Equal("45.90"))
				Expect(result.Category).To(Equal("market"))
			})

			It("should keep valid line items, defaulting quantity to one", func() {
				result := extractor.ExtractReceipt(ctx, receiptText)
				Expect(result.Items).To(HaveLen(2))
				Expect(result.Items[0].Name).To(Equal("Süt"))
				Expect(result.Items[1].Name).To(Equal("Ekmek"))
				Expect(result.Items[1].Quantity).To(Equal(1))
			})

			It("should derive the category from the text when the model omits it", func() {
				parser.receiptResult.Category = nil
				result := extractor.ExtractReceipt(ctx, receiptText)
				Expect(result.Category).To(Equal("market"))
			})
		})

		When("the parser fails", func() {
			BeforeEach(func() {
				parser.receiptErr = errors.New("model unavailable")
				extractor = NewExtractor(parser)
			})

			It("should fall back to the regex pipeline", func() {
				result := extractor.ExtractReceipt(ctx, receiptText)
				Expect(*result.StoreName.Value).To(Equal("Migros"))
				Expect(result.StoreName.Confidence).To(Equal(0.6))
			})
		})
	})
})
