// Package llm sends OCR text to a language model under a strict-JSON
// contract and parses the response into typed field sets. Both providers are
// best effort: any failure surfaces as an error so the caller can fall back
// to deterministic extraction.
package llm

import (
	"context"
	"encoding/json"
)

// BillResult is the JSON contract for bill parsing. Every field is optional;
// the model is told to emit null rather than guess.
type BillResult struct {
	BillerName        *string     `json:"biller_name"`
	BillerConfidence  *float64    `json:"biller_confidence"`
	BillerEvidence    *string     `json:"biller_evidence"`
	Amount            json.Number `json:"amount"`
	AmountConfidence  *float64    `json:"amount_confidence"`
	AmountEvidence    *string     `json:"amount_evidence"`
	DueDate           *string     `json:"due_date"`
	DueDateConfidence *float64    `json:"due_date_confidence"`
	DueDateEvidence   *string     `json:"due_date_evidence"`
	Currency          *string     `json:"currency"`
}

// ReceiptResult is the JSON contract for receipt parsing.
type ReceiptResult struct {
	StoreName        *string       `json:"store_name"`
	StoreConfidence  *float64      `json:"store_confidence"`
	StoreEvidence    *string       `json:"store_evidence"`
	Amount           json.Number   `json:"amount"`
	AmountConfidence *float64      `json:"amount_confidence"`
	AmountEvidence   *string       `json:"amount_evidence"`
	ReceiptDate      *string       `json:"receipt_date"`
	DateConfidence   *float64      `json:"date_confidence"`
	DateEvidence     *string       `json:"date_evidence"`
	Category         *string       `json:"category"`
	Items            []ReceiptItem `json:"items"`
	Currency         *string       `json:"currency"`
}

// ReceiptItem is one line item as reported by the model.
type ReceiptItem struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

// Parser extracts structured bill/receipt fields from OCR text. Single-turn,
// no conversation state across calls.
type Parser interface {
	ParseBill(ctx context.Context, ocrText string) (*BillResult, error)
	ParseReceipt(ctx context.Context, ocrText string) (*ReceiptResult, error)
	Close() error
}

// promptBudget caps the OCR text handed to the model. This is the input
// budget, distinct from the smaller display truncation applied to responses.
const promptBudget = 4000

func truncatePrompt(s string) string {
	r := []rune(s)
	if len(r) <= promptBudget {
		return s
	}
	return string(r[:promptBudget])
}
