package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var trMonths = map[string]int{
	"ocak": 1, "şubat": 2, "mart": 3, "nisan": 4,
	"mayıs": 5, "haziran": 6, "temmuz": 7, "ağustos": 8,
	"eylül": 9, "ekim": 10, "kasım": 11, "aralık": 12,
}

// Bills print several dates (issue, period, due); only lines carrying one of
// these keywords are searched first so the due date wins over the others.
var dueDateKeywords = []string{
	"son ödeme tarihi", "son odeme tarihi", "vade", "ödeme tarihi", "due date", "s.ö.t",
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2})[./\-](\d{1,2})[./\-](\d{4})`),
	regexp.MustCompile(`(\d{1,2})[./\-](\d{1,2})[./\-](\d{2})`),
	regexp.MustCompile(`(\d{1,2})\s+(ocak|şubat|mart|nisan|mayıs|haziran|temmuz|ağustos|eylül|ekim|kasım|aralık)\s+(\d{4})`),
}

// parseDueDate finds a bill's due date and returns it as YYYY-MM-DD.
func parseDueDate(text string) (string, []string, bool) {
	var relevant []string
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range dueDateKeywords {
			if strings.Contains(lower, kw) {
				relevant = append(relevant, line)
				break
			}
		}
	}
	search := text
	if len(relevant) > 0 {
		search = strings.Join(relevant, "\n")
	}
	return parseDate(text, search, 2024, 2030)
}

// parseReceiptDate scans the whole text; receipts carry a single date and may
// be older than a bill's due date, hence the wider year window.
func parseReceiptDate(text string) (string, []string, bool) {
	return parseDate(text, text, 2020, 2030)
}

func parseDate(text, search string, minYear, maxYear int) (string, []string, bool) {
	lower := strings.ToLower(search)
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			day, _ := strconv.Atoi(m[1])
			month, ok := trMonths[m[2]]
			if !ok {
				month, _ = strconv.Atoi(m[2])
			}
			year, _ := strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
			if day < 1 || day > 31 || month < 1 || month > 12 || year < minYear || year > maxYear {
				continue
			}
			iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			return iso, lineEvidence(text, m[0]), true
		}
	}
	return "", nil, false
}
