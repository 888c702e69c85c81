package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ferhanaltun7/butce-tracker/internal/extract"
)

// Receipt is a recorded purchase, usually created from a scanned fiş.
type Receipt struct {
	ID          string             `json:"receipt_id"`
	StoreName   string             `json:"store_name"`
	Amount      decimal.Decimal    `json:"amount"`
	ReceiptDate time.Time          `json:"receipt_date"`
	Category    string             `json:"category"`
	Items       []extract.LineItem `json:"items,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	ImageURL    string             `json:"image_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ReceiptCreate carries the fields a client supplies when creating a receipt.
type ReceiptCreate struct {
	StoreName   string             `json:"store_name"`
	Amount      decimal.Decimal    `json:"amount"`
	ReceiptDate string             `json:"receipt_date"`
	Category    string             `json:"category"`
	Items       []extract.LineItem `json:"items"`
	Notes       string             `json:"notes"`
}

// ReceiptUpdate is a partial update; nil fields are left unchanged.
type ReceiptUpdate struct {
	StoreName   *string             `json:"store_name"`
	Amount      *decimal.Decimal    `json:"amount"`
	ReceiptDate *string             `json:"receipt_date"`
	Category    *string             `json:"category"`
	Items       *[]extract.LineItem `json:"items"`
	Notes       *string             `json:"notes"`
}

// CategoryStat is the per-category slice of receipt spending.
type CategoryStat struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ReceiptStats summarizes receipt spending for the stats endpoint.
type ReceiptStats struct {
	TotalThisMonth decimal.Decimal         `json:"total_this_month"`
	TotalAllTime   decimal.Decimal         `json:"total_all_time"`
	ReceiptCount   int                     `json:"receipt_count"`
	ByCategory     map[string]CategoryStat `json:"by_category"`
}
