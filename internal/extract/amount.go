package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount patterns are ordered by specificity: keyword-anchored first, then
// currency-suffixed shapes. The first pattern that yields an in-range value
// wins for bills; receipts keep collecting (see parseReceiptTotal).
var (
	billAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:ödenecek tutar|tahsil edilecek tutar|genel toplam|toplam tutar|toplam|amount due)[:\s]*([0-9.,]+)\s*(?:tl|₺)?`),
		regexp.MustCompile(`([0-9]{1,3}(?:\.[0-9]{3})*,[0-9]{2})\s*(?:tl|₺)`),
		regexp.MustCompile(`([0-9]+,[0-9]{2})\s*(?:tl|₺)`),
	}

	receiptTotalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:toplam|genel toplam|total|tutar|ödenecek)[:\s]*([0-9.,]+)\s*(?:tl|₺)?`),
		regexp.MustCompile(`(?:nakit|kredi|kart|visa|mastercard)[:\s]*([0-9.,]+)\s*(?:tl|₺)?`),
		regexp.MustCompile(`\*+\s*([0-9.,]+)\s*(?:tl|₺)?`),
		regexp.MustCompile(`([0-9]{1,3}(?:\.[0-9]{3})*,[0-9]{2})\s*(?:tl|₺)`),
	}

	amountMin       = decimal.RequireFromString("0.01")
	billAmountMax   = decimal.NewFromInt(100000)
	receiptTotalMax = decimal.NewFromInt(50000)
)

// normalizeAmount converts Turkish number formatting to a decimal:
// "." is a thousands separator, "," the decimal separator, so
// "1.250,75" becomes 1250.75.
func normalizeAmount(raw string) (decimal.Decimal, bool) {
	clean := strings.ReplaceAll(raw, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func amountInRange(d, max decimal.Decimal) bool {
	return d.GreaterThan(amountMin) && d.LessThan(max)
}

// amountString renders an amount with two decimals. Decimal's String trims
// trailing fractional zeros, which would turn "45,90" into "45.9"; Turkish
// amounts always carry kuruş.
func amountString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// parseBillAmount returns the first in-range amount found on the bill.
// Out-of-range captures (phone numbers, account IDs) are skipped, not fatal.
func parseBillAmount(text string) (decimal.Decimal, []string, bool) {
	lower := strings.ToLower(text)
	for _, re := range billAmountPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			d, ok := normalizeAmount(m[1])
			if !ok || !amountInRange(d, billAmountMax) {
				continue
			}
			return d, amountEvidence(text, m[1], d), true
		}
	}
	return decimal.Decimal{}, nil, false
}

// parseReceiptTotal collects every in-range candidate across all patterns and
// returns the largest: the grand total is usually the biggest "total"-labeled
// number on a receipt, with subtotals and payment lines below it.
func parseReceiptTotal(text string) (decimal.Decimal, []string, bool) {
	lower := strings.ToLower(text)
	var best decimal.Decimal
	var evidence []string
	matched := false
	for _, re := range receiptTotalPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			d, ok := normalizeAmount(m[1])
			if !ok || !amountInRange(d, receiptTotalMax) {
				continue
			}
			if !matched || d.GreaterThan(best) {
				best = d
			}
			matched = true
			if len(evidence) < 2 {
				if ev := lineEvidence(text, m[1]); len(ev) > 0 {
					evidence = append(evidence, ev[0])
				}
			}
		}
	}
	if !matched {
		return decimal.Decimal{}, nil, false
	}
	return best, evidence, true
}

// amountEvidence finds the source line for a matched amount, also accepting a
// line that only carries the integer part (OCR often splits the line).
func amountEvidence(text, match string, d decimal.Decimal) []string {
	whole := strconv.FormatInt(d.IntPart(), 10)
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToLower(line), match) || strings.Contains(line, whole) {
			return []string{truncateRunes(strings.TrimSpace(line), 100)}
		}
	}
	return []string{}
}
