package handler

import (
	"errors"
	"net/http"

	"receipt-generator/internal/adapter/http/dto"
	"receipt-generator/internal/core/domain"
	"receipt-generator/internal/core/ports"
	"receipt-generator/pkg/apperror"
	"receipt-generator/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderReceiptID carries the assigned identifier on download responses.
const HeaderReceiptID = "X-Receipt-Id"

// ReceiptHandler handles receipt generation endpoints.
type ReceiptHandler struct {
	svc ports.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(svc ports.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{svc: svc}
}

// Generate handles POST /generate and returns the PNG as a download.
func (h *ReceiptHandler) Generate(c *gin.Context) {
	req, ok := bindReceipt(c)
	if !ok {
		return
	}

	out, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header(HeaderReceiptID, out.AssignedID)
	response.Attachment(c, domain.ContentTypePNG, out.DownloadFilename(), out.ImageBytes)
}

// Preview handles POST /preview and returns the image inline as a data URL.
func (h *ReceiptHandler) Preview(c *gin.Context) {
	req, ok := bindReceipt(c)
	if !ok {
		return
	}

	out, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPreviewResponse(out))
}

// Validate handles POST /validate. It runs the same checks as Generate
// without consuming an identifier.
func (h *ReceiptHandler) Validate(c *gin.Context) {
	req, ok := bindReceipt(c)
	if !ok {
		return
	}

	if err := h.svc.Check(req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ValidateResponse{Valid: true})
}

func bindReceipt(c *gin.Context) (domain.ReceiptRequest, bool) {
	var body dto.GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return domain.ReceiptRequest{}, false
		}
		response.Error(c, apperror.Validation(err.Error()))
		return domain.ReceiptRequest{}, false
	}
	return body.ToDomain(), true
}
