package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"receipt-generator/internal/core/domain"
	"receipt-generator/internal/core/ports"
	"receipt-generator/internal/metrics"
	"receipt-generator/pkg/apperror"

	"github.com/rs/zerolog"
)

// ReceiptServiceConfig holds the non-dependency settings of the service.
type ReceiptServiceConfig struct {
	RendererName string // label used in logs and metrics
	IDWidth      int    // zero-padding for counter-assigned ids
}

// ReceiptServiceImpl implements ports.ReceiptService.
type ReceiptServiceImpl struct {
	renderer ports.Renderer
	counter  ports.CounterStore
	cfg      ReceiptServiceConfig
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewReceiptService creates a new ReceiptServiceImpl. counter may be nil
// when the renderer assigns identifiers itself (remote mode).
func NewReceiptService(
	renderer ports.Renderer,
	counter ports.CounterStore,
	cfg ReceiptServiceConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ReceiptServiceImpl {
	if cfg.IDWidth < 1 {
		cfg.IDWidth = domain.DefaultIDWidth
	}
	return &ReceiptServiceImpl{
		renderer: renderer,
		counter:  counter,
		cfg:      cfg,
		metrics:  m,
		log:      log,
	}
}

// Check validates req and maps the first failure to its user-facing error.
func (s *ReceiptServiceImpl) Check(req domain.ReceiptRequest) error {
	err := req.Normalized().Validate()
	if err == nil {
		return nil
	}
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		return apperror.Validation(err.Error())
	}
	return validationToAppError(vErr)
}

// Generate validates the request, resolves the receipt id and renders the
// image. Invalid requests and templates that fail to load never consume a
// counter value.
func (s *ReceiptServiceImpl) Generate(ctx context.Context, req domain.ReceiptRequest) (*domain.RenderedReceipt, error) {
	req = req.Normalized()

	if err := req.Validate(); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			s.metrics.IncrementValidationFailure(string(vErr.Kind))
			s.metrics.ObserveGeneration(s.cfg.RendererName, metrics.OutcomeInvalid)
			s.log.Debug().Str("kind", string(vErr.Kind)).Str("field", vErr.Field).Msg("Receipt request rejected")
			return nil, validationToAppError(vErr)
		}
		return nil, apperror.Validation(err.Error())
	}

	renderer := s.renderer
	if p, ok := renderer.(ports.Preparer); ok {
		prepared, err := p.Prepare(ctx)
		if err != nil {
			return nil, s.renderFailure(err, "")
		}
		renderer = prepared
	}

	id, err := s.resolveID(ctx, req)
	if err != nil {
		s.metrics.IncrementCounterFailures()
		s.metrics.ObserveGeneration(s.cfg.RendererName, metrics.OutcomeCounterError)
		s.log.Error().Err(err).Msg("Failed to assign receipt id")
		return nil, apperror.ErrCounterFailure(err)
	}

	start := time.Now()
	out, err := renderer.Render(ctx, req.Resolve(id))
	s.metrics.ObserveRender(s.cfg.RendererName, time.Since(start))
	if err != nil {
		return nil, s.renderFailure(err, id)
	}

	s.metrics.ObserveGeneration(s.cfg.RendererName, metrics.OutcomeSuccess)
	s.log.Info().
		Str("receipt_id", out.AssignedID).
		Str("renderer", s.cfg.RendererName).
		Bool("caller_id", req.HasReceiptID()).
		Int("bytes", len(out.ImageBytes)).
		Msg("Receipt generated")

	return out, nil
}

func (s *ReceiptServiceImpl) renderFailure(err error, id string) error {
	s.metrics.ObserveGeneration(s.cfg.RendererName, metrics.OutcomeRenderError)
	s.log.Error().Err(err).Str("receipt_id", id).Str("renderer", s.cfg.RendererName).Msg("Receipt rendering failed")

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.InternalError(fmt.Errorf("render receipt: %w", err))
}

// resolveID returns the caller's id verbatim, otherwise the next counter
// value. Without a counter the id is left for the renderer to assign.
func (s *ReceiptServiceImpl) resolveID(ctx context.Context, req domain.ReceiptRequest) (string, error) {
	if req.HasReceiptID() {
		return req.ReceiptID, nil
	}
	if s.counter == nil {
		return "", nil
	}
	n, err := s.counter.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next receipt number: %w", err)
	}
	return domain.FormatReceiptID(n, s.cfg.IDWidth), nil
}

func validationToAppError(vErr *domain.ValidationError) *apperror.AppError {
	switch vErr.Kind {
	case domain.ValidationMissingField:
		return apperror.ErrMissingField()
	case domain.ValidationNoPaymentMethod:
		return apperror.ErrNoPaymentMethod()
	case domain.ValidationMissingChequeNumber:
		return apperror.ErrMissingChequeNumber()
	case domain.ValidationInvalidAmount:
		return apperror.ErrInvalidAmount()
	default:
		return apperror.Validation(vErr.Error())
	}
}
