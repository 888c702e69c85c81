package extract

// Fallback confidence is fixed per field kind: names 0.6, dates and amounts
// 0.5, currency 0.95.
const (
	nameConfidence     = 0.6
	dateConfidence     = 0.5
	amountConfidence   = 0.5
	currencyConfidence = 0.95
)

// fallbackBill assembles a BillExtraction from the regex matchers alone.
// Each miss stays value=nil/confidence=0; a partial result is always valid.
func fallbackBill(text string) BillExtraction {
	out := emptyBill()
	if name, ev, ok := matchBillerName(text); ok {
		out.BillerName = found(name, nameConfidence, ev)
	}
	if date, ev, ok := parseDueDate(text); ok {
		out.DueDate = found(date, dateConfidence, ev)
	}
	if amount, ev, ok := parseBillAmount(text); ok {
		out.AmountDue = found(amountString(amount), amountConfidence, ev)
	}
	currency, ev := detectCurrency(text)
	out.Currency = found(currency, currencyConfidence, ev)
	return out
}

// fallbackReceipt is the receipt counterpart. Line items are never produced
// here; only the AI path can read them reliably.
func fallbackReceipt(text string) ReceiptExtraction {
	out := emptyReceipt()
	var store string
	if name, ev, ok := matchStoreName(text); ok {
		store = name
		out.StoreName = found(name, nameConfidence, ev)
	}
	if date, ev, ok := parseReceiptDate(text); ok {
		out.ReceiptDate = found(date, dateConfidence, ev)
	}
	if total, ev, ok := parseReceiptTotal(text); ok {
		out.TotalAmount = found(amountString(total), amountConfidence, ev)
	}
	currency, ev := detectCurrency(text)
	out.Currency = found(currency, currencyConfidence, ev)
	out.Category = DetectCategory(store, text)
	return out
}

func emptyBill() BillExtraction {
	return BillExtraction{
		BillerName: missing(),
		DueDate:    missing(),
		AmountDue:  missing(),
		Currency:   missing(),
	}
}

func emptyReceipt() ReceiptExtraction {
	return ReceiptExtraction{
		StoreName:   missing(),
		ReceiptDate: missing(),
		TotalAmount: missing(),
		Currency:    missing(),
	}
}
