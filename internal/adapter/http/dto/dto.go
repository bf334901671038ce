package dto

import (
	"time"

	"receipt-generator/internal/core/domain"
)

// GenerateRequest is the request body for receipt generation and preview.
// Presence and amount rules are checked by the domain validator so that
// every client sees the same error messages.
type GenerateRequest struct {
	ReceiptID           string `json:"receipt_id" binding:"omitempty,max=32,safe_id"`
	Date                string `json:"date" binding:"max=32"`
	ReceivedFrom        string `json:"received_from" binding:"max=200"`
	ForField            string `json:"for_field" binding:"max=200"`
	ChequeNo            string `json:"cheque_no" binding:"max=64"`
	Amount              string `json:"amount" binding:"max=32"`
	PaymentMethodCash   bool   `json:"payment_method_cash"`
	PaymentMethodCheque bool   `json:"payment_method_cheque"`
}

// ToDomain trims every text field and maps the body onto a ReceiptRequest.
func (r GenerateRequest) ToDomain() domain.ReceiptRequest {
	TrimStruct(&r)
	return domain.ReceiptRequest{
		ReceiptID:     r.ReceiptID,
		Date:          r.Date,
		ReceivedFrom:  r.ReceivedFrom,
		ForField:      r.ForField,
		ChequeNo:      r.ChequeNo,
		Amount:        r.Amount,
		PaymentCash:   r.PaymentMethodCash,
		PaymentCheque: r.PaymentMethodCheque,
	}
}

// NewGenerateRequest is the inverse of ToDomain, used when forwarding a
// request to another instance.
func NewGenerateRequest(r domain.ReceiptRequest) GenerateRequest {
	return GenerateRequest{
		ReceiptID:           r.ReceiptID,
		Date:                r.Date,
		ReceivedFrom:        r.ReceivedFrom,
		ForField:            r.ForField,
		ChequeNo:            r.ChequeNo,
		Amount:              r.Amount,
		PaymentMethodCash:   r.PaymentCash,
		PaymentMethodCheque: r.PaymentCheque,
	}
}

// PreviewResponse is returned by the preview endpoint.
type PreviewResponse struct {
	ReceiptID string `json:"receipt_id"`
	Filename  string `json:"filename"`
	DataURL   string `json:"data_url"`
	CreatedAt string `json:"created_at"`
}

func NewPreviewResponse(r *domain.RenderedReceipt) PreviewResponse {
	return PreviewResponse{
		ReceiptID: r.AssignedID,
		Filename:  r.DownloadFilename(),
		DataURL:   r.DataURL(),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ValidateResponse is returned by the validation endpoint when the
// request would be accepted.
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// InfoResponse is the body of the root endpoint.
type InfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Renderer  string            `json:"renderer"`
	Endpoints map[string]string `json:"endpoints"`
}
