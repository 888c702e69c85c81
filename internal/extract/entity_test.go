package extract

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("matchBillerName", func() {
	It("should resolve a known biller to its canonical name", func() {
		name, evidence, ok := matchBillerName("ENERJISA\nElektrik Faturası")
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("Enerjisa"))
		Expect(evidence).To(ConsistOf("ENERJISA"))
	})

	It("should match aliases anywhere in the text", func() {
		name, _, ok := matchBillerName("Sayın abonemiz,\nİGDAŞ doğalgaz faturanız hazır")
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("İGDAŞ"))
	})

	When("no dictionary entry matches", func() {
		It("should fall back to the first plausible header line", func() {
			name, _, ok := matchBillerName("Özkan Elektrik Market\nFatura No: 123")
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("Özkan Elektrik Market"))
		})

		It("should skip header lines that start with digits", func() {
			name, _, ok := matchBillerName("12.02.2025\nMahalle Enerji Dağıtım")
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("Mahalle Enerji Dağıtım"))
		})

		It("should not spend the line budget on leading blank lines", func() {
			name, _, ok := matchBillerName("\n\n\nAcme Elektrik Dağıtım\nFatura No: 99")
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("Acme Elektrik Dağıtım"))
		})

		It("should clip very long header lines to 50 runes", func() {
			long := strings.Repeat("ş", 80)
			name, _, ok := matchBillerName(long)
			Expect(ok).To(BeTrue())
			Expect([]rune(name)).To(HaveLen(50))
		})

		It("should give up when the first lines are all short or numeric", func() {
			_, _, ok := matchBillerName("abc\n123\n4567890\nson satır burada")
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("matchStoreName", func() {
	It("should resolve a known store", func() {
		name, _, ok := matchStoreName("MIGROS TİCARET A.Ş.\nTOPLAM 45,90")
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("Migros"))
	})

	It("should honor dictionary order for overlapping aliases", func() {
		// "file" appears inside other words often; the dictionary hit on the
		// earlier "migros" entry must win.
		name, _, ok := matchStoreName("migros file urun listesi")
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("Migros"))
	})
})

var _ = Describe("detectCurrency", func() {
	It("should default to TRY with explanatory evidence", func() {
		currency, evidence := detectCurrency("hic bir para birimi yok")
		Expect(currency).To(Equal("TRY"))
		Expect(evidence).To(ConsistOf("Default currency: TRY"))
	})

	It("should detect TRY from the lira sign", func() {
		currency, _ := detectCurrency("TOPLAM 45,90 ₺")
		Expect(currency).To(Equal("TRY"))
	})

	It("should detect USD", func() {
		currency, evidence := detectCurrency("AMOUNT DUE: $42.00")
		Expect(currency).To(Equal("USD"))
		Expect(evidence).To(ConsistOf("Currency detected: USD"))
	})

	It("should detect EUR", func() {
		currency, _ := detectCurrency("GESAMT 42,00 €")
		Expect(currency).To(Equal("EUR"))
	})
})

var _ = Describe("DetectCategory", func() {
	It("should classify supermarkets", func() {
		Expect(DetectCategory("Migros", "")).To(Equal("market"))
	})

	It("should classify from the raw text when the store name is unknown", func() {
		Expect(DetectCategory("", "ECZANE NOBETCI\nPARASETAMOL")).To(Equal("pharmacy"))
	})

	It("should give earlier rules precedence", func() {
		// starbucks is listed under both restaurant and cafe; restaurant
		// comes first
		Expect(DetectCategory("Starbucks", "")).To(Equal("restaurant"))
	})

	It("should fall back to other", func() {
		Expect(DetectCategory("Bilinmeyen", "hiçbir ipucu yok")).To(Equal("other"))
	})
})

var _ = Describe("DetectBillCategory", func() {
	It("should classify electricity bills", func() {
		Expect(DetectBillCategory("ENERJISA elektrik faturası")).To(Equal("electricity"))
	})

	It("should classify phone bills", func() {
		Expect(DetectBillCategory("TURKCELL fatura detayı")).To(Equal("phone"))
	})

	It("should fall back to other", func() {
		Expect(DetectBillCategory("bilinmeyen belge")).To(Equal("other"))
	})
})
