package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"

	"receipt-generator/internal/core/domain"
)

// Renderer turns a resolved receipt into a PNG image.
type Renderer interface {
	Render(ctx context.Context, receipt domain.ResolvedReceipt) (*domain.RenderedReceipt, error)
}

// Preparer is implemented by renderers that acquire their inputs before an
// identifier is assigned. The returned Renderer holds those inputs, so a
// failed Prepare never costs a counter value.
type Preparer interface {
	Prepare(ctx context.Context) (Renderer, error)
}

// ReceiptService is the end-to-end generation flow: validate, resolve the
// identifier, render.
type ReceiptService interface {
	Generate(ctx context.Context, req domain.ReceiptRequest) (*domain.RenderedReceipt, error)
	// Check validates a request without allocating an identifier.
	Check(req domain.ReceiptRequest) error
}
