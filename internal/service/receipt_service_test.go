package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"receipt-generator/internal/adapter/render"
	"receipt-generator/internal/core/domain"
	"receipt-generator/internal/core/ports/mocks"
	"receipt-generator/internal/metrics"
	"receipt-generator/pkg/apperror"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type receiptTestDeps struct {
	svc      *ReceiptServiceImpl
	renderer *mocks.MockRenderer
	counter  *mocks.MockCounterStore
	metrics  *metrics.Metrics
	ctrl     *gomock.Controller
}

func setupReceiptService(t *testing.T) *receiptTestDeps {
	ctrl := gomock.NewController(t)
	d := &receiptTestDeps{
		renderer: mocks.NewMockRenderer(ctrl),
		counter:  mocks.NewMockCounterStore(ctrl),
		metrics:  metrics.New(prometheus.NewRegistry()),
		ctrl:     ctrl,
	}
	d.svc = NewReceiptService(
		d.renderer, d.counter,
		ReceiptServiceConfig{RendererName: "overlay", IDWidth: 4},
		d.metrics, zerolog.Nop(),
	)
	return d
}

func sampleRequest() domain.ReceiptRequest {
	return domain.ReceiptRequest{
		ReceiptID:     "0010",
		Date:          "2024-01-15",
		ReceivedFrom:  "John Smith",
		ForField:      "Web Development Services",
		ChequeNo:      "CHQ123456",
		Amount:        "5000.00",
		PaymentCash:   true,
		PaymentCheque: false,
	}
}

func renderedFor(r domain.ResolvedReceipt) *domain.RenderedReceipt {
	return &domain.RenderedReceipt{
		ImageBytes: []byte("png"),
		AssignedID: r.AssignedID,
		Date:       r.Date,
		CreatedAt:  time.Now().UTC(),
	}
}

// ==================== Generate Tests ====================

func TestReceiptService_Generate_CallerID(t *testing.T) {
	d := setupReceiptService(t)
	ctx := context.Background()

	// Counter must not be touched when the caller supplies an id.
	d.counter.EXPECT().Next(gomock.Any()).Times(0)
	d.renderer.EXPECT().Render(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
			assert.Equal(t, "0010", r.AssignedID)
			assert.Equal(t, "John Smith", r.ReceivedFrom)
			assert.Equal(t, "5000.00", r.Amount)
			return renderedFor(r), nil
		})

	out, err := d.svc.Generate(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "0010", out.AssignedID)
	assert.Equal(t, "2024-01-15", out.Date)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.ReceiptsTotal.WithLabelValues("overlay", metrics.OutcomeSuccess)))
}

func TestReceiptService_Generate_CounterAssignsID(t *testing.T) {
	d := setupReceiptService(t)
	ctx := context.Background()
	req := sampleRequest()
	req.ReceiptID = ""

	d.counter.EXPECT().Next(ctx).Return(int64(7), nil)
	d.renderer.EXPECT().Render(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
			return renderedFor(r), nil
		})

	out, err := d.svc.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "0007", out.AssignedID)
}

func TestReceiptService_Generate_TrimsInput(t *testing.T) {
	d := setupReceiptService(t)
	ctx := context.Background()
	req := sampleRequest()
	req.ReceiptID = "  "
	req.ReceivedFrom = "  John Smith "

	d.counter.EXPECT().Next(ctx).Return(int64(12), nil)
	d.renderer.EXPECT().Render(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
			assert.Equal(t, "John Smith", r.ReceivedFrom)
			return renderedFor(r), nil
		})

	out, err := d.svc.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "0012", out.AssignedID)
}

func TestReceiptService_Generate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *domain.ReceiptRequest)
		wantCode string
		wantMsg  string
		kind     string
	}{
		{
			name:     "missing field",
			mutate:   func(r *domain.ReceiptRequest) { r.ReceivedFrom = "" },
			wantCode: "VAL_001",
			wantMsg:  "Please fill in all required fields",
			kind:     "MISSING_FIELD",
		},
		{
			name:     "no payment method",
			mutate:   func(r *domain.ReceiptRequest) { r.PaymentCash = false },
			wantCode: "VAL_002",
			wantMsg:  "At least one payment method must be selected",
			kind:     "NO_PAYMENT_METHOD",
		},
		{
			name: "missing cheque number",
			mutate: func(r *domain.ReceiptRequest) {
				r.PaymentCheque = true
				r.ChequeNo = ""
			},
			wantCode: "VAL_003",
			wantMsg:  "Cheque number is required when cheque payment is selected",
			kind:     "MISSING_CHEQUE_NUMBER",
		},
		{
			name:     "invalid amount",
			mutate:   func(r *domain.ReceiptRequest) { r.Amount = "-5" },
			wantCode: "VAL_004",
			wantMsg:  "Amount must be a number greater than 0",
			kind:     "INVALID_AMOUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupReceiptService(t)
			req := sampleRequest()
			req.ReceiptID = ""
			tt.mutate(&req)

			// Neither the counter nor the renderer may be reached.
			d.counter.EXPECT().Next(gomock.Any()).Times(0)
			d.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Times(0)

			out, err := d.svc.Generate(context.Background(), req)
			assert.Nil(t, out)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, 400, appErr.HTTPStatus)
			assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.ValidationFailures.WithLabelValues(tt.kind)))
		})
	}
}

func TestReceiptService_Generate_CounterFailure(t *testing.T) {
	d := setupReceiptService(t)
	ctx := context.Background()
	req := sampleRequest()
	req.ReceiptID = ""

	d.counter.EXPECT().Next(ctx).Return(int64(0), errors.New("disk full"))
	d.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Times(0)

	_, err := d.svc.Generate(ctx, req)
	assert.True(t, errors.Is(err, apperror.ErrCounterFailure(nil)))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.CounterFailures))
}

func TestReceiptService_Generate_RenderAppErrorPassesThrough(t *testing.T) {
	d := setupReceiptService(t)
	ctx := context.Background()

	d.renderer.EXPECT().Render(ctx, gomock.Any()).
		Return(nil, apperror.ErrTemplateLoadFailed(errors.New("no such file")))

	_, err := d.svc.Generate(ctx, sampleRequest())

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "RND_001", appErr.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.ReceiptsTotal.WithLabelValues("overlay", metrics.OutcomeRenderError)))
}

func TestReceiptService_Generate_RenderPlainErrorIsWrapped(t *testing.T) {
	d := setupReceiptService(t)
	ctx := context.Background()

	d.renderer.EXPECT().Render(ctx, gomock.Any()).Return(nil, context.DeadlineExceeded)

	_, err := d.svc.Generate(ctx, sampleRequest())
	assert.True(t, errors.Is(err, apperror.InternalError(nil)))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReceiptService_Generate_MissingTemplateKeepsCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	counter := mocks.NewMockCounterStore(ctrl)
	m := metrics.New(prometheus.NewRegistry())

	overlay, err := render.NewOverlay(
		render.NewFileTemplate(filepath.Join(t.TempDir(), "missing.png")),
		render.DefaultLayout(), zerolog.Nop(),
	)
	require.NoError(t, err)
	svc := NewReceiptService(overlay, counter, ReceiptServiceConfig{RendererName: "overlay", IDWidth: 4}, m, zerolog.Nop())

	req := sampleRequest()
	req.ReceiptID = ""

	counter.EXPECT().Next(gomock.Any()).Times(0)

	for i := 0; i < 3; i++ {
		out, err := svc.Generate(context.Background(), req)
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, apperror.ErrTemplateLoadFailed(nil)))
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReceiptsTotal.WithLabelValues("overlay", metrics.OutcomeRenderError)))
}

// preparingRenderer satisfies both ports.Renderer and ports.Preparer. Its own
// Render must never be called once Prepare succeeds.
type preparingRenderer struct {
	*mocks.MockRenderer
	*mocks.MockPreparer
}

func TestReceiptService_Generate_PreparesBeforeAssigningID(t *testing.T) {
	ctrl := gomock.NewController(t)
	preparer := mocks.NewMockPreparer(ctrl)
	prepared := mocks.NewMockRenderer(ctrl)
	counter := mocks.NewMockCounterStore(ctrl)
	renderer := preparingRenderer{MockRenderer: mocks.NewMockRenderer(ctrl), MockPreparer: preparer}
	svc := NewReceiptService(renderer, counter, ReceiptServiceConfig{RendererName: "overlay", IDWidth: 4}, nil, zerolog.Nop())

	req := sampleRequest()
	req.ReceiptID = ""

	gomock.InOrder(
		preparer.EXPECT().Prepare(gomock.Any()).Return(prepared, nil),
		counter.EXPECT().Next(gomock.Any()).Return(int64(7), nil),
		prepared.EXPECT().Render(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
				return renderedFor(r), nil
			}),
	)

	out, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "0007", out.AssignedID)
}

func TestReceiptService_Generate_PrepareFailureSkipsCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	preparer := mocks.NewMockPreparer(ctrl)
	counter := mocks.NewMockCounterStore(ctrl)
	renderer := preparingRenderer{MockRenderer: mocks.NewMockRenderer(ctrl), MockPreparer: preparer}
	svc := NewReceiptService(renderer, counter, ReceiptServiceConfig{RendererName: "overlay"}, nil, zerolog.Nop())

	req := sampleRequest()
	req.ReceiptID = ""

	preparer.EXPECT().Prepare(gomock.Any()).Return(nil, errors.New("template unreadable"))
	counter.EXPECT().Next(gomock.Any()).Times(0)

	_, err := svc.Generate(context.Background(), req)
	assert.True(t, errors.Is(err, apperror.InternalError(nil)))
	assert.ErrorContains(t, err, "template unreadable")
}

func TestReceiptService_Generate_NoCounterLeavesIDToRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	svc := NewReceiptService(renderer, nil, ReceiptServiceConfig{RendererName: "remote"}, nil, zerolog.Nop())

	req := sampleRequest()
	req.ReceiptID = ""

	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
			assert.Empty(t, r.AssignedID)
			out := renderedFor(r)
			out.AssignedID = "0099"
			return out, nil
		})

	out, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "0099", out.AssignedID)
}

// ==================== Check Tests ====================

func TestReceiptService_Check(t *testing.T) {
	d := setupReceiptService(t)

	assert.NoError(t, d.svc.Check(sampleRequest()))

	req := sampleRequest()
	req.Amount = "abc"
	err := d.svc.Check(req)
	assert.True(t, errors.Is(err, apperror.ErrInvalidAmount()))
}

func TestNewReceiptService_DefaultWidth(t *testing.T) {
	ctrl := gomock.NewController(t)
	counter := mocks.NewMockCounterStore(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	svc := NewReceiptService(renderer, counter, ReceiptServiceConfig{}, nil, zerolog.Nop())

	req := sampleRequest()
	req.ReceiptID = ""

	counter.EXPECT().Next(gomock.Any()).Return(int64(3), nil)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
			return renderedFor(r), nil
		})

	out, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "0003", out.AssignedID)
}
