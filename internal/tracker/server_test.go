package tracker

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/shopspring/decimal"

	"github.com/ferhanaltun7/butce-tracker/internal/extract"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		ocrMock     *mockOCR
		timeSrc     *mockTimeSource
		service     *Service
		server      *Server
		auth        BasicAuth
		appSecret   string
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		service = NewServiceWithDeps(db, ocrMock, extract.NewExtractor(nil), &mockIDGenerator{}, timeSrc)
		server = NewServerWithMux(service, auth, appSecret, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		ocrMock = &mockOCR{}
		timeSrc = &mockTimeSource{now: time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)}
		auth = BasicAuth{}
		appSecret = ""
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	postJSON := func(path string, body any) *http.Response {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.Post(ghttpServer.URL()+path, "application/json", bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	doRequest := func(method, path string) *http.Response {
		req, err := http.NewRequest(method, ghttpServer.URL()+path, nil)
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decodeBody := func(resp *http.Response, v any) {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, v)).NotTo(HaveOccurred())
	}

	Describe("handleRoot", func() {
		It("should return the API banner", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			decodeBody(resp, &body)
			Expect(body["message"]).To(Equal("Bütçe Asistanı API"))
		})
	})

	Describe("handleHealth", func() {
		It("should report healthy", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			decodeBody(resp, &body)
			Expect(body["status"]).To(Equal("healthy"))
		})
	})

	Describe("handleCreateBill", func() {
		It("should create a bill and return it", func() {
			resp := postJSON("/api/bills", BillCreate{
				Title:    "Elektrik",
				Amount:   dec("1250.75"),
				DueDate:  "2025-02-15",
				Category: "electricity",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var created Bill
			decodeBody(resp, &created)
			Expect(created.ID).To(HavePrefix("bill_"))
			Expect(created.Title).To(Equal("Elektrik"))
			Expect(created.IsPaid).To(BeFalse())
		})

		It("should return 400 with a Turkish detail for a bad date", func() {
			resp := postJSON("/api/bills", BillCreate{Title: "Su", DueDate: "15.02.2025"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			var body map[string]string
			decodeBody(resp, &body)
			Expect(body["detail"]).To(Equal("Geçersiz tarih formatı"))
		})

		It("should return 400 for a malformed body", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/bills", "application/json", bytes.NewBufferString("not json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})
	})

	Describe("handleListBills", func() {
		When("bills exist", func() {
			BeforeEach(func() {
				db.bills["bill_1"] = &Bill{ID: "bill_1", Title: "Elektrik", DueDate: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)}
				db.bills["bill_2"] = &Bill{ID: "bill_2", Title: "Su", DueDate: time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)}
				setupServer()
			})

			It("should return them sorted by due date", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var bills []*Bill
				decodeBody(resp, &bills)
				Expect(bills).To(HaveLen(2))
				Expect(bills[0].ID).To(Equal("bill_2"))
			})
		})

		When("no bills exist", func() {
			It("should return an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(MatchJSON("[]"))
			})
		})
	})

	Describe("handleGetBill", func() {
		When("the bill exists", func() {
			BeforeEach(func() {
				db.bills["bill_1"] = &Bill{ID: "bill_1", Title: "Elektrik"}
				setupServer()
			})

			It("should return it", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills/bill_1")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var bill Bill
				decodeBody(resp, &bill)
				Expect(bill.Title).To(Equal("Elektrik"))
			})
		})

		When("the bill is missing", func() {
			It("should return 404 with a Turkish detail", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills/bill_yok")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				var body map[string]string
				decodeBody(resp, &body)
				Expect(body["detail"]).To(Equal("Fatura bulunamadı"))
			})
		})
	})

	Describe("handleUpdateBill", func() {
		BeforeEach(func() {
			db.bills["bill_1"] = &Bill{ID: "bill_1", Title: "Elektrik", Amount: dec("100")}
			setupServer()
		})

		It("should apply partial updates", func() {
			amount := dec("150.50")
			data, err := json.Marshal(BillUpdate{Amount: &amount})
			Expect(err).NotTo(HaveOccurred())
			req, err := http.NewRequest("PUT", ghttpServer.URL()+"/api/bills/bill_1", bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var bill Bill
			decodeBody(resp, &bill)
			Expect(bill.Amount.Equal(dec("150.50"))).To(BeTrue())
			Expect(bill.Title).To(Equal("Elektrik"))
		})
	})

	Describe("handleToggleBillPaid", func() {
		BeforeEach(func() {
			db.bills["bill_1"] = &Bill{ID: "bill_1", Title: "Gaz"}
			setupServer()
		})

		It("should mark an unpaid bill as paid", func() {
			resp := doRequest("POST", "/api/bills/bill_1/toggle-paid")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var bill Bill
			decodeBody(resp, &bill)
			Expect(bill.IsPaid).To(BeTrue())
			Expect(bill.PaidAt).NotTo(BeNil())
		})
	})

	Describe("handleDeleteBill", func() {
		BeforeEach(func() {
			db.bills["bill_1"] = &Bill{ID: "bill_1"}
			setupServer()
		})

		It("should delete and confirm in Turkish", func() {
			resp := doRequest("DELETE", "/api/bills/bill_1")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			decodeBody(resp, &body)
			Expect(body["message"]).To(Equal("Fatura silindi"))
			Expect(db.bills).NotTo(HaveKey("bill_1"))
		})

		It("should return 404 for a missing bill", func() {
			resp := doRequest("DELETE", "/api/bills/bill_yok")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			var body map[string]string
			decodeBody(resp, &body)
			Expect(body["detail"]).To(Equal("Fatura bulunamadı"))
		})
	})

	Describe("handleCreateReceipt", func() {
		It("should create a receipt and return it", func() {
			resp := postJSON("/api/receipts", ReceiptCreate{
				StoreName:   "Migros",
				Amount:      dec("45.90"),
				ReceiptDate: "2025-01-28",
				Category:    "market",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var created Receipt
			decodeBody(resp, &created)
			Expect(created.ID).To(HavePrefix("receipt_"))
			Expect(created.StoreName).To(Equal("Migros"))
		})
	})

	Describe("handleUpdateReceipt", func() {
		BeforeEach(func() {
			db.receipts["receipt_1"] = &Receipt{ID: "receipt_1", StoreName: "Migros"}
			setupServer()
		})

		It("should apply partial updates", func() {
			notes := "haftalık alışveriş"
			data, err := json.Marshal(ReceiptUpdate{Notes: &notes})
			Expect(err).NotTo(HaveOccurred())
			req, err := http.NewRequest("PUT", ghttpServer.URL()+"/api/receipts/receipt_1", bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var receipt Receipt
			decodeBody(resp, &receipt)
			Expect(receipt.Notes).To(Equal(notes))
			Expect(receipt.StoreName).To(Equal("Migros"))
		})
	})

	Describe("handleDeleteReceipt", func() {
		BeforeEach(func() {
			db.receipts["receipt_1"] = &Receipt{ID: "receipt_1"}
			setupServer()
		})

		It("should delete and confirm in Turkish", func() {
			resp := doRequest("DELETE", "/api/receipts/receipt_1")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			decodeBody(resp, &body)
			Expect(body["message"]).To(Equal("Fiş silindi"))
		})

		It("should return 404 with a Turkish detail for a missing receipt", func() {
			resp := doRequest("DELETE", "/api/receipts/receipt_yok")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			var body map[string]string
			decodeBody(resp, &body)
			Expect(body["detail"]).To(Equal("Fiş bulunamadı"))
		})
	})

	Describe("handleReceiptStats", func() {
		BeforeEach(func() {
			db.receipts["receipt_1"] = &Receipt{
				ID: "receipt_1", StoreName: "Migros", Amount: dec("45.90"),
				Category: "market", ReceiptDate: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			}
			setupServer()
		})

		It("should summarize receipts by category", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/receipts/stats/summary")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var stats ReceiptStats
			decodeBody(resp, &stats)
			Expect(stats.ReceiptCount).To(Equal(1))
			Expect(stats.ByCategory).To(HaveKey("market"))
			Expect(stats.TotalThisMonth.Equal(dec("45.90"))).To(BeTrue())
		})
	})

	Describe("handleDashboardStats", func() {
		BeforeEach(func() {
			db.bills["bill_1"] = &Bill{
				ID: "bill_1", Title: "Elektrik", Amount: dec("500"),
				DueDate: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			}
			setupServer()
		})

		It("should report upcoming totals", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/dashboard/stats")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var stats DashboardStats
			decodeBody(resp, &stats)
			Expect(stats.UpcomingCount).To(Equal(1))
			Expect(stats.TotalUpcoming.Equal(dec("500"))).To(BeTrue())
			Expect(stats.NextBill).NotTo(BeNil())
			Expect(stats.NextBill.Title).To(Equal("Elektrik"))
		})
	})

	Describe("category endpoints", func() {
		It("should serve flat bill categories with group metadata", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/categories")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var categories []Category
			decodeBody(resp, &categories)
			Expect(categories).To(HaveLen(8))
			Expect(categories[0].ID).To(Equal("electricity"))
			Expect(categories[0].GroupID).To(Equal("bills"))
		})

		It("should serve bill category groups", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/category-groups")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var groups []CategoryGroup
			decodeBody(resp, &groups)
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].ID).To(Equal("bills"))
		})

		It("should serve receipt category groups", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/receipt-category-groups")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var groups []CategoryGroup
			decodeBody(resp, &groups)
			Expect(groups).To(HaveLen(3))
			Expect(groups[0].ID).To(Equal("shopping"))
		})
	})

	Describe("handleOcrBill", func() {
		var imageBase64 string

		BeforeEach(func() {
			imageBase64 = base64.StdEncoding.EncodeToString([]byte("fake image data"))
			ocrMock.text = "ENERJISA\nSON ÖDEME TARİHİ: 15.02.2025\nÖDENECEK TUTAR: 1.250,75 TL"
			setupServer()
		})

		It("should return raw text and parsed fields", func() {
			resp := postJSON("/api/ocr/bill", map[string]string{"imageBase64": imageBase64})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var result OcrBillResult
			decodeBody(resp, &result)
			Expect(result.RawText).To(ContainSubstring("ENERJISA"))
			Expect(*result.Parsed.BillerName.Value).To(Equal("Enerjisa"))
			Expect(*result.Parsed.AmountDue.Value).To(Equal("1250.75"))
			Expect(*result.Parsed.DueDate.Value).To(Equal("2025-02-15"))
		})

		It("should reject a body without image data", func() {
			resp := postJSON("/api/ocr/bill", map[string]string{})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})

		When("an app secret is configured", func() {
			BeforeEach(func() {
				appSecret = "gizli"
				setupServer()
			})

			It("should reject requests without the header", func() {
				resp := postJSON("/api/ocr/bill", map[string]string{"imageBase64": imageBase64})
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})

			It("should accept requests with the right header", func() {
				data, err := json.Marshal(map[string]string{"imageBase64": imageBase64})
				Expect(err).NotTo(HaveOccurred())
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/ocr/bill", bytes.NewReader(data))
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("x-app-secret", "gizli")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should reject requests with a wrong secret", func() {
				data, err := json.Marshal(map[string]string{"imageBase64": imageBase64})
				Expect(err).NotTo(HaveOccurred())
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/ocr/bill", bytes.NewReader(data))
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("x-app-secret", "yanlis")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})
		})
	})

	Describe("handleOcrReceipt", func() {
		BeforeEach(func() {
			ocrMock.text = "MIGROS\n28.01.2025\nTOPLAM: 45,90 TL"
			setupServer()
		})

		It("should return raw text and parsed fields", func() {
			imageBase64 := base64.StdEncoding.EncodeToString([]byte("fake image data"))
			resp := postJSON("/api/ocr/receipt", map[string]string{"imageBase64": imageBase64})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var result OcrReceiptResult
			decodeBody(resp, &result)
			Expect(*result.Parsed.StoreName.Value).To(Equal("Migros"))
			Expect(*result.Parsed.TotalAmount.Value).To(Equal("45.90"))
		})
	})

	Describe("handleScanBillLegacy", func() {
		BeforeEach(func() {
			ocrMock.text = "ENERJISA\nSON ÖDEME TARİHİ: 15.02.2025\nÖDENECEK TUTAR: 1.250,75 TL"
			setupServer()
		})

		It("should serve the legacy scan shape", func() {
			imageBase64 := base64.StdEncoding.EncodeToString([]byte("fake image data"))
			resp := postJSON("/api/bills/scan", map[string]string{"image_base64": imageBase64})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var result BillScanResult
			decodeBody(resp, &result)
			Expect(result.Success).To(BeTrue())
			Expect(*result.Title).To(Equal("Enerjisa"))
			Expect(*result.Category).To(Equal("electricity"))
			Expect(result.Amount.Equal(decimal.RequireFromString("1250.75"))).To(BeTrue())
		})

		It("should report failure in-band when no text is found", func() {
			ocrMock.text = "kısa"
			setupServer()
			imageBase64 := base64.StdEncoding.EncodeToString([]byte("fake image data"))
			resp := postJSON("/api/bills/scan", map[string]string{"image_base64": imageBase64})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var result BillScanResult
			decodeBody(resp, &result)
			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(Equal("Metin bulunamadı"))
		})
	})

	Describe("authentication", func() {
		When("basic auth is configured", func() {
			BeforeEach(func() {
				auth = BasicAuth{Username: "admin", Password: "parola"}
				setupServer()
			})

			It("should reject unauthenticated requests", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/bills")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})

			It("should accept valid credentials", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/bills", nil)
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("admin", "parola")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should leave the health endpoint open", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/health")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})
	})
})
