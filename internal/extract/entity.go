package extract

import (
	"strings"
	"unicode"
)

// alias maps a lowercase text variant to its canonical display name. The
// lists are ordered slices, not maps: earlier entries take precedence.
type alias struct {
	key  string
	name string
}

var knownBillers = []alias{
	{"enerjisa", "Enerjisa"}, {"tedaş", "TEDAŞ"}, {"bedaş", "BEDAŞ"}, {"aydem", "Aydem"},
	{"iski", "İSKİ"}, {"aski", "ASKİ"}, {"izsu", "İZSU"}, {"buski", "BUSKİ"},
	{"igdaş", "İGDAŞ"}, {"egegaz", "EgeGaz"}, {"başkentgaz", "BaşkentGaz"},
	{"türk telekom", "Türk Telekom"}, {"superonline", "Superonline"}, {"vodafone", "Vodafone"},
	{"turkcell", "Turkcell"}, {"denizli büyükşehir", "Denizli Büyükşehir Belediyesi"},
	{"istanbul büyükşehir", "İstanbul Büyükşehir Belediyesi"},
}

var knownStores = []alias{
	{"migros", "Migros"}, {"carrefour", "CarrefourSA"}, {"bim", "BİM"}, {"a101", "A101"},
	{"şok", "ŞOK"}, {"sok", "ŞOK"}, {"file", "File"}, {"macro", "Macro Center"},
	{"metro", "Metro"}, {"kipa", "Kipa"}, {"happy center", "Happy Center"},
	{"gratis", "Gratis"}, {"watsons", "Watsons"}, {"rossmann", "Rossmann"},
	{"lcw", "LC Waikiki"}, {"lc waikiki", "LC Waikiki"}, {"koton", "Koton"},
	{"defacto", "DeFacto"}, {"mavi", "Mavi"}, {"colins", "Colin's"},
	{"teknosa", "Teknosa"}, {"mediamarkt", "MediaMarkt"}, {"vatan", "Vatan Bilgisayar"},
	{"starbucks", "Starbucks"}, {"kahve dünyası", "Kahve Dünyası"},
	{"burger king", "Burger King"}, {"mcdonalds", "McDonald's"}, {"mcdonald's", "McDonald's"},
	{"dominos", "Domino's"}, {"pizza hut", "Pizza Hut"}, {"popeyes", "Popeyes"},
	{"shell", "Shell"}, {"bp", "BP"}, {"opet", "Opet"}, {"petrol ofisi", "Petrol Ofisi"},
	{"eczane", "Eczane"}, {"pharmacy", "Eczane"},
}

// matchBillerName resolves the issuing company of a bill.
func matchBillerName(text string) (string, []string, bool) {
	return matchEntity(text, knownBillers, 5)
}

// matchStoreName resolves the merchant on a receipt.
func matchStoreName(text string) (string, []string, bool) {
	return matchEntity(text, knownStores, 3)
}

// matchEntity tries the alias dictionary against the whole lowered text, then
// falls back to the first few lines: a header line longer than minLen runes
// whose leading minLen runes carry no digit (filters out dates and numeric
// headers) is taken as the name, clipped to 50 runes.
func matchEntity(text string, aliases []alias, minLen int) (string, []string, bool) {
	lines := strings.Split(text, "\n")
	lower := strings.ToLower(text)

	for _, a := range aliases {
		if !strings.Contains(lower, a.key) {
			continue
		}
		evidence := []string{}
		for i, line := range lines {
			if i >= 5 {
				break
			}
			if strings.Contains(strings.ToLower(line), a.key) {
				evidence = append(evidence, truncateRunes(strings.TrimSpace(line), 100))
				break
			}
		}
		return a.name, evidence, true
	}

	// Only non-empty lines count toward the 3-line heuristic budget.
	seen := 0
	for _, line := range lines {
		if seen >= 3 {
			break
		}
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}
		seen++
		runes := []rune(clean)
		if len(runes) <= minLen {
			continue
		}
		if leadingDigit(runes, minLen) {
			continue
		}
		return string(runes[:min(50, len(runes))]), []string{truncateRunes(clean, 100)}, true
	}
	return "", nil, false
}

func leadingDigit(runes []rune, window int) bool {
	for i := 0; i < window && i < len(runes); i++ {
		if unicode.IsDigit(runes[i]) {
			return true
		}
	}
	return false
}

// detectCurrency is high precision: an explicit symbol or code is near
// unambiguous, and Turkish documents default to TRY.
func detectCurrency(text string) (string, []string) {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "tl") || strings.Contains(text, "₺") || strings.Contains(lower, "türk lirası") {
		for _, line := range strings.Split(text, "\n") {
			if strings.Contains(strings.ToLower(line), "tl") || strings.Contains(line, "₺") {
				return "TRY", []string{truncateRunes(strings.TrimSpace(line), 100)}
			}
		}
		return "TRY", []string{}
	}
	if strings.Contains(lower, "usd") || strings.Contains(text, "$") {
		return "USD", []string{"Currency detected: USD"}
	}
	if strings.Contains(lower, "eur") || strings.Contains(text, "€") {
		return "EUR", []string{"Currency detected: EUR"}
	}
	return "TRY", []string{"Default currency: TRY"}
}

type categoryRule struct {
	name     string
	keywords []string
}

// Declaration order is the precedence: "starbucks" belongs to both the
// restaurant and cafe groups, and the earlier group wins.
var categoryRules = []categoryRule{
	{"market", []string{"migros", "carrefour", "bim", "a101", "şok", "sok", "file", "macro", "metro", "kipa", "happy"}},
	{"restaurant", []string{"starbucks", "kahve", "cafe", "restaurant", "restoran", "burger", "pizza", "kebap", "döner"}},
	{"fastfood", []string{"mcdonalds", "mcdonald's", "burger king", "dominos", "pizza hut", "popeyes", "kfc"}},
	{"cafe", []string{"starbucks", "kahve dünyası", "espresso", "cafe", "kafe"}},
	{"clothing", []string{"lcw", "lc waikiki", "koton", "defacto", "mavi", "colins", "zara", "h&m", "pull", "bershka"}},
	{"electronics", []string{"teknosa", "mediamarkt", "vatan", "apple", "samsung", "telefon", "bilgisayar"}},
	{"pharmacy", []string{"eczane", "pharmacy", "ilaç", "medicine"}},
	{"fuel", []string{"shell", "bp", "opet", "petrol", "akaryakıt", "benzin", "motorin"}},
}

// DetectCategory classifies a receipt by its store name and full text.
func DetectCategory(storeName, text string) string {
	store := strings.ToLower(storeName)
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(store, kw) || strings.Contains(lower, kw) {
				return rule.name
			}
		}
	}
	return "other"
}

var billCategoryRules = []categoryRule{
	{"electricity", []string{"elektrik", "enerjisa", "tedaş", "bedaş", "aydem", "kwh"}},
	{"water", []string{"su fatura", "iski", "aski", "izsu", "buski", "su tüketim"}},
	{"gas", []string{"doğalgaz", "dogalgaz", "igdaş", "egegaz", "başkentgaz"}},
	{"internet", []string{"internet", "fiber", "superonline", "adsl", "vdsl"}},
	{"phone", []string{"telefon", "gsm", "turkcell", "vodafone", "türk telekom"}},
}

// DetectBillCategory classifies a bill by its raw text.
func DetectBillCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range billCategoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.name
			}
		}
	}
	return "other"
}
