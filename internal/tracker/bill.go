// Package tracker is the application layer of the personal finance tracker:
// bill and receipt records, their bbolt persistence, dashboard aggregates and
// the HTTP API, including the OCR scan endpoints.
package tracker

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is a recurring payable tracked by the user.
type Bill struct {
	ID        string          `json:"bill_id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
	Category  string          `json:"category"`
	IsPaid    bool            `json:"is_paid"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

// BillCreate carries the fields a client supplies when creating a bill.
// DueDate is an ISO date or RFC 3339 timestamp string.
type BillCreate struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  string          `json:"due_date"`
	Category string          `json:"category"`
	Notes    string          `json:"notes"`
}

// BillUpdate is a partial update; nil fields are left unchanged. Setting
// IsPaid stamps or clears PaidAt.
type BillUpdate struct {
	Title    *string          `json:"title"`
	Amount   *decimal.Decimal `json:"amount"`
	DueDate  *string          `json:"due_date"`
	Category *string          `json:"category"`
	Notes    *string          `json:"notes"`
	IsPaid   *bool            `json:"is_paid"`
}

// BillSummary is the compact shape used for the dashboard's next-bill hint.
type BillSummary struct {
	BillID   string          `json:"bill_id"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  string          `json:"due_date"`
	Category string          `json:"category"`
}

// DashboardStats aggregates the user's bill position.
type DashboardStats struct {
	TotalUpcoming      decimal.Decimal `json:"total_upcoming"`
	TotalOverdue       decimal.Decimal `json:"total_overdue"`
	TotalPaidThisMonth decimal.Decimal `json:"total_paid_this_month"`
	UpcomingCount      int             `json:"upcoming_count"`
	OverdueCount       int             `json:"overdue_count"`
	NextBill           *BillSummary    `json:"next_bill,omitempty"`
}
