package tracker

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ferhanaltun7/butce-tracker/internal/extract"
	"github.com/ferhanaltun7/butce-tracker/internal/ocr"
)

// ErrInvalidDate marks an unparseable client-supplied date.
var ErrInvalidDate = errors.New("invalid date format")

// IDGenerator generates unique record IDs with a type prefix
type IDGenerator interface {
	Generate(prefix string) string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator produces IDs like "bill_3f2a9c1d4e5b"
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(u[:])[:12])
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now().UTC()
}

// Service handles bill and receipt operations
type Service struct {
	db          DB
	ocr         ocr.Client
	extractor   *extract.Extractor
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
// The OCR client may be nil when scanning is not configured.
func NewService(db DB, ocrClient ocr.Client, extractor *extract.Extractor) *Service {
	return &Service{
		db:          db,
		ocr:         ocrClient,
		extractor:   extractor,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, ocrClient ocr.Client, extractor *extract.Extractor, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		ocr:         ocrClient,
		extractor:   extractor,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// parseClientDate accepts RFC 3339 timestamps or bare ISO dates; everything
// is stored UTC.
func parseClientDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

// CreateBill creates a new bill
func (s *Service) CreateBill(data BillCreate) (*Bill, error) {
	dueDate, err := parseClientDate(data.DueDate)
	if err != nil {
		return nil, err
	}

	bill := &Bill{
		ID:        s.idGenerator.Generate("bill"),
		Title:     data.Title,
		Amount:    data.Amount,
		DueDate:   dueDate,
		Category:  data.Category,
		Notes:     data.Notes,
		CreatedAt: s.timeSource.Now(),
	}

	if err := s.db.SaveBill(bill); err != nil {
		return nil, fmt.Errorf("saving bill: %w", err)
	}
	return bill, nil
}

// GetBill retrieves a bill by ID
func (s *Service) GetBill(id string) (*Bill, error) {
	bill, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return bill, nil
}

// ListBills returns all bills sorted by due date, soonest first
func (s *Service) ListBills() ([]*Bill, error) {
	bills, err := s.db.ListBills()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	sort.Slice(bills, func(i, j int) bool {
		return bills[i].DueDate.Before(bills[j].DueDate)
	})
	return bills, nil
}

// UpdateBill applies a partial update to a bill
func (s *Service) UpdateBill(id string, data BillUpdate) (*Bill, error) {
	bill, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}

	if data.Title != nil {
		bill.Title = *data.Title
	}
	if data.Amount != nil {
		bill.Amount = *data.Amount
	}
	if data.DueDate != nil {
		dueDate, err := parseClientDate(*data.DueDate)
		if err != nil {
			return nil, err
		}
		bill.DueDate = dueDate
	}
	if data.Category != nil {
		bill.Category = *data.Category
	}
	if data.Notes != nil {
		bill.Notes = *data.Notes
	}
	if data.IsPaid != nil {
		bill.IsPaid = *data.IsPaid
		if *data.IsPaid {
			now := s.timeSource.Now()
			bill.PaidAt = &now
		} else {
			bill.PaidAt = nil
		}
	}

	if err := s.db.SaveBill(bill); err != nil {
		return nil, fmt.Errorf("saving bill: %w", err)
	}
	return bill, nil
}

// DeleteBill removes a bill
func (s *Service) DeleteBill(id string) error {
	if err := s.db.DeleteBill(id); err != nil {
		return fmt.Errorf("deleting bill: %w", err)
	}
	return nil
}

// ToggleBillPaid flips the paid flag, stamping or clearing the paid time
func (s *Service) ToggleBillPaid(id string) (*Bill, error) {
	bill, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}

	bill.IsPaid = !bill.IsPaid
	if bill.IsPaid {
		now := s.timeSource.Now()
		bill.PaidAt = &now
	} else {
		bill.PaidAt = nil
	}

	if err := s.db.SaveBill(bill); err != nil {
		return nil, fmt.Errorf("saving bill: %w", err)
	}
	return bill, nil
}

// CreateReceipt creates a new receipt
func (s *Service) CreateReceipt(data ReceiptCreate) (*Receipt, error) {
	receiptDate, err := parseClientDate(data.ReceiptDate)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		ID:          s.idGenerator.Generate("receipt"),
		StoreName:   data.StoreName,
		Amount:      data.Amount,
		ReceiptDate: receiptDate,
		Category:    data.Category,
		Items:       data.Items,
		Notes:       data.Notes,
		CreatedAt:   s.timeSource.Now(),
	}

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	return receipt, nil
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts sorted by receipt date, newest first
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].ReceiptDate.After(receipts[j].ReceiptDate)
	})
	return receipts, nil
}

// UpdateReceipt applies a partial update to a receipt
func (s *Service) UpdateReceipt(id string, data ReceiptUpdate) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}

	if data.StoreName != nil {
		receipt.StoreName = *data.StoreName
	}
	if data.Amount != nil {
		receipt.Amount = *data.Amount
	}
	if data.ReceiptDate != nil {
		receiptDate, err := parseClientDate(*data.ReceiptDate)
		if err != nil {
			return nil, err
		}
		receipt.ReceiptDate = receiptDate
	}
	if data.Category != nil {
		receipt.Category = *data.Category
	}
	if data.Items != nil {
		receipt.Items = *data.Items
	}
	if data.Notes != nil {
		receipt.Notes = *data.Notes
	}

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	return receipt, nil
}

// DeleteReceipt removes a receipt
func (s *Service) DeleteReceipt(id string) error {
	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}
	return nil
}

// GetDashboardStats aggregates unpaid bills against the current time.
// Overdue means strictly before now; paid bills count toward this month when
// PaidAt falls on or after the first of the month.
func (s *Service) GetDashboardStats() (*DashboardStats, error) {
	bills, err := s.db.ListBills()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}

	now := s.timeSource.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &DashboardStats{
		TotalUpcoming:      decimal.Zero,
		TotalOverdue:       decimal.Zero,
		TotalPaidThisMonth: decimal.Zero,
	}
	var nextBillDate time.Time

	for _, bill := range bills {
		if bill.IsPaid {
			if bill.PaidAt != nil && !bill.PaidAt.Before(startOfMonth) {
				stats.TotalPaidThisMonth = stats.TotalPaidThisMonth.Add(bill.Amount)
			}
			continue
		}

		if bill.DueDate.Before(now) {
			stats.TotalOverdue = stats.TotalOverdue.Add(bill.Amount)
			stats.OverdueCount++
			continue
		}

		stats.TotalUpcoming = stats.TotalUpcoming.Add(bill.Amount)
		stats.UpcomingCount++
		if stats.NextBill == nil || bill.DueDate.Before(nextBillDate) {
			nextBillDate = bill.DueDate
			stats.NextBill = &BillSummary{
				BillID:   bill.ID,
				Title:    bill.Title,
				Amount:   bill.Amount,
				DueDate:  bill.DueDate.Format(time.RFC3339),
				Category: bill.Category,
			}
		}
	}

	return stats, nil
}

// GetReceiptStats summarizes receipt spending per category and for the
// current month.
func (s *Service) GetReceiptStats() (*ReceiptStats, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}

	now := s.timeSource.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &ReceiptStats{
		TotalThisMonth: decimal.Zero,
		TotalAllTime:   decimal.Zero,
		ReceiptCount:   len(receipts),
		ByCategory:     make(map[string]CategoryStat),
	}

	for _, receipt := range receipts {
		stats.TotalAllTime = stats.TotalAllTime.Add(receipt.Amount)
		if !receipt.ReceiptDate.Before(startOfMonth) {
			stats.TotalThisMonth = stats.TotalThisMonth.Add(receipt.Amount)
		}

		category := receipt.Category
		if category == "" {
			category = "other"
		}
		cs := stats.ByCategory[category]
		cs.Count++
		cs.Total = cs.Total.Add(receipt.Amount)
		stats.ByCategory[category] = cs
	}

	return stats, nil
}

// OcrBillResult is the scan response: truncated raw OCR text plus the
// extracted fields.
type OcrBillResult struct {
	RawText string                 `json:"rawText"`
	Parsed  extract.BillExtraction `json:"parsed"`
}

// OcrReceiptResult mirrors OcrBillResult for receipts.
type OcrReceiptResult struct {
	RawText string                    `json:"rawText"`
	Parsed  extract.ReceiptExtraction `json:"parsed"`
}

// BillScanResult is the legacy scan response shape kept for older app
// versions.
type BillScanResult struct {
	Success  bool             `json:"success"`
	Title    *string          `json:"title,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	DueDate  *string          `json:"due_date,omitempty"`
	Category *string          `json:"category,omitempty"`
	RawText  string           `json:"raw_text,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// decodeImage strips an optional data URL prefix and base64-decodes the
// payload.
func decodeImage(imageBase64 string) ([]byte, error) {
	if strings.HasPrefix(imageBase64, "data:") {
		if idx := strings.Index(imageBase64, ","); idx != -1 {
			imageBase64 = imageBase64[idx+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return data, nil
}

// recognize runs OCR and treats every failure as "no text": scan responses
// degrade to empty extractions rather than erroring.
func (s *Service) recognize(ctx context.Context, imageBase64, mimeType string) string {
	if s.ocr == nil {
		return ""
	}

	imageData, err := decodeImage(imageBase64)
	if err != nil {
		slog.Warn("Invalid scan image", "error", err)
		return ""
	}

	text, err := s.ocr.ExtractText(ctx, imageData, mimeType)
	if err != nil {
		slog.Error("OCR failed", "error", err, "image_size", len(imageData))
		return ""
	}
	return text
}

// OcrBill scans a bill image and extracts its fields
func (s *Service) OcrBill(ctx context.Context, imageBase64, mimeType string) (*OcrBillResult, error) {
	rawText := s.recognize(ctx, imageBase64, mimeType)

	parsed := s.extractor.ExtractBill(ctx, rawText)
	return &OcrBillResult{
		RawText: extract.TruncateRaw(rawText),
		Parsed:  parsed,
	}, nil
}

// OcrReceipt scans a receipt image and extracts its fields
func (s *Service) OcrReceipt(ctx context.Context, imageBase64, mimeType string) (*OcrReceiptResult, error) {
	rawText := s.recognize(ctx, imageBase64, mimeType)

	parsed := s.extractor.ExtractReceipt(ctx, rawText)
	return &OcrReceiptResult{
		RawText: extract.TruncateRaw(rawText),
		Parsed:  parsed,
	}, nil
}

const legacyRawTextLimit = 800

// ScanBillLegacy serves the old flat scan shape on top of the current
// extraction pipeline.
func (s *Service) ScanBillLegacy(ctx context.Context, imageBase64, mimeType string) *BillScanResult {
	rawText := s.recognize(ctx, imageBase64, mimeType)
	if len(strings.TrimSpace(rawText)) < 10 {
		return &BillScanResult{Success: false, Error: "Metin bulunamadı"}
	}

	parsed := s.extractor.ExtractBill(ctx, rawText)

	result := &BillScanResult{Success: true}
	result.Title = parsed.BillerName.Value
	result.DueDate = parsed.DueDate.Value
	if parsed.AmountDue.Value != nil {
		if amount, err := decimal.NewFromString(*parsed.AmountDue.Value); err == nil {
			result.Amount = &amount
		}
	}
	category := extract.DetectBillCategory(rawText)
	result.Category = &category

	runes := []rune(rawText)
	if len(runes) > legacyRawTextLimit {
		runes = runes[:legacyRawTextLimit]
	}
	result.RawText = string(runes)
	return result
}
