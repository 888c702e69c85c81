package tracker

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeServiceError maps service errors to API status codes with the Turkish
// messages the mobile app displays verbatim.
func writeServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	var nf *ErrNotFound
	switch {
	case errors.As(err, &nf):
		setCORSHeaders(w)
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": notFoundMsg})
	case errors.Is(err, ErrInvalidDate):
		setCORSHeaders(w)
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Geçersiz tarih formatı"})
	default:
		slog.Error("Request failed", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
	}
}

const (
	billNotFoundMsg    = "Fatura bulunamadı"
	receiptNotFoundMsg = "Fiş bulunamadı"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bütçe Asistanı API", "status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleListBills returns all bills, soonest due first
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.service.ListBills()
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var data BillCreate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bill, err := s.service.CreateBill(data)
	if err != nil {
		writeServiceError(w, err, billNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.service.GetBill(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, billNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var data BillUpdate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bill, err := s.service.UpdateBill(r.PathValue("id"), data)
	if err != nil {
		writeServiceError(w, err, billNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteBill(r.PathValue("id")); err != nil {
		writeServiceError(w, err, billNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Fatura silindi"})
}

func (s *Server) handleToggleBillPaid(w http.ResponseWriter, r *http.Request) {
	bill, err := s.service.ToggleBillPaid(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, billNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// handleListReceipts returns all receipts, newest first
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var data ReceiptCreate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.service.CreateReceipt(data)
	if err != nil {
		writeServiceError(w, err, receiptNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, receiptNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleUpdateReceipt(w http.ResponseWriter, r *http.Request) {
	var data ReceiptUpdate
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.service.UpdateReceipt(r.PathValue("id"), data)
	if err != nil {
		writeServiceError(w, err, receiptNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(r.PathValue("id")); err != nil {
		writeServiceError(w, err, receiptNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Fiş silindi"})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.GetDashboardStats()
	if err != nil {
		slog.Error("Error computing dashboard stats", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleReceiptStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.GetReceiptStats()
	if err != nil {
		slog.Error("Error computing receipt stats", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBillCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FlattenCategories(BillCategoryGroups))
}

func (s *Server) handleBillCategoryGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BillCategoryGroups)
}

func (s *Server) handleReceiptCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FlattenCategories(ReceiptCategoryGroups))
}

func (s *Server) handleReceiptCategoryGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ReceiptCategoryGroups)
}

// scanRequest is the shared body shape of the OCR endpoints.
type scanRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

func decodeScanRequest(r *http.Request) (scanRequest, bool) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageBase64 == "" {
		return req, false
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}
	return req, true
}

func (s *Server) handleOcrBill(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScanRequest(r)
	if !ok {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.service.OcrBill(r.Context(), req.ImageBase64, req.MimeType)
	if err != nil {
		slog.Error("Bill OCR failed", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOcrReceipt(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScanRequest(r)
	if !ok {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.service.OcrReceipt(r.Context(), req.ImageBase64, req.MimeType)
	if err != nil {
		slog.Error("Receipt OCR failed", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleScanBillLegacy serves the old flat scan shape; errors are reported
// in-band with success=false.
func (s *Server) handleScanBillLegacy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"image_base64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := s.service.ScanBillLegacy(r.Context(), req.ImageBase64, "image/jpeg")
	writeJSON(w, http.StatusOK, result)
}
