package dto

import (
	"testing"
	"time"

	"receipt-generator/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- TrimStruct tests ---

func TestTrimStruct_TrimsWhitespace(t *testing.T) {
	req := GenerateRequest{
		ReceivedFrom: "  John Smith  ",
		ForField:     "\tWeb Development Services\n",
		Amount:       " 5000.00 ",
	}
	TrimStruct(&req)

	assert.Equal(t, "John Smith", req.ReceivedFrom)
	assert.Equal(t, "Web Development Services", req.ForField)
	assert.Equal(t, "5000.00", req.Amount)
}

func TestTrimStruct_KeepsMarkup(t *testing.T) {
	req := GenerateRequest{ReceivedFrom: " Smith & Sons <Ltd> "}
	TrimStruct(&req)

	assert.Equal(t, "Smith & Sons <Ltd>", req.ReceivedFrom)
}

func TestTrimStruct_HandlesPointerString(t *testing.T) {
	note := "  hello  "
	v := struct {
		Note  *string
		Empty *string
	}{Note: &note}
	TrimStruct(&v)

	assert.Equal(t, "hello", *v.Note)
	assert.Nil(t, v.Empty)
}

func TestTrimStruct_NonPointerIsNoOp(t *testing.T) {
	req := GenerateRequest{Amount: " 1 "}
	TrimStruct(req)
	assert.Equal(t, " 1 ", req.Amount)
}

// --- safe_id tests ---

func validate(t *testing.T, req GenerateRequest) error {
	t.Helper()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v.Struct(req)
}

func TestSafeID_Valid(t *testing.T) {
	for _, id := range []string{"", "0010", "INV-2024.01", "a_b", " 0042 "} {
		assert.NoError(t, validate(t, GenerateRequest{ReceiptID: id}), id)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	for _, id := range []string{"../etc/passwd", "a b", "id;rm", `x"y`} {
		assert.Error(t, validate(t, GenerateRequest{ReceiptID: id}), id)
	}
}

// --- mapping tests ---

func TestGenerateRequest_ToDomain(t *testing.T) {
	req := GenerateRequest{
		ReceiptID:           " 0010 ",
		Date:                "2024-01-15",
		ReceivedFrom:        "John Smith ",
		ForField:            "Web Development Services",
		ChequeNo:            "CHQ123456",
		Amount:              "5000.00",
		PaymentMethodCash:   true,
		PaymentMethodCheque: false,
	}

	got := req.ToDomain()
	assert.Equal(t, domain.ReceiptRequest{
		ReceiptID:     "0010",
		Date:          "2024-01-15",
		ReceivedFrom:  "John Smith",
		ForField:      "Web Development Services",
		ChequeNo:      "CHQ123456",
		Amount:        "5000.00",
		PaymentCash:   true,
		PaymentCheque: false,
	}, got)
	assert.Equal(t, " 0010 ", req.ReceiptID, "receiver is not modified")

	assert.Equal(t, got, NewGenerateRequest(got).ToDomain())
}

func TestNewPreviewResponse(t *testing.T) {
	rr := &domain.RenderedReceipt{
		ImageBytes: []byte{0x89, 'P', 'N', 'G'},
		AssignedID: "0010",
		Date:       "2024-01-15",
		CreatedAt:  time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
	}

	resp := NewPreviewResponse(rr)
	assert.Equal(t, "0010", resp.ReceiptID)
	assert.Equal(t, "receipt_0010.png", resp.Filename)
	assert.Equal(t, "data:image/png;base64,iVBORw==", resp.DataURL)
	assert.Equal(t, "2024-01-15T09:30:00Z", resp.CreatedAt)
}
