package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"time"

	"receipt-generator/internal/core/domain"
	"receipt-generator/internal/core/ports"
	"receipt-generator/pkg/apperror"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
)

// Encoder writes an image in its final wire format.
type Encoder interface {
	Encode(w io.Writer, m image.Image) error
}

// PNGEncoder is pinned to one compression level so identical canvases
// always encode to identical bytes.
func PNGEncoder() Encoder {
	return &png.Encoder{CompressionLevel: png.DefaultCompression}
}

// Overlay draws receipt fields on top of a template image.
type Overlay struct {
	template  ports.TemplateSource
	layout    Layout
	textColor color.Color
	encoder   Encoder
	now       func() time.Time
	log       zerolog.Logger
}

type Option func(*Overlay)

func WithEncoder(e Encoder) Option {
	return func(o *Overlay) { o.encoder = e }
}

func WithClock(now func() time.Time) Option {
	return func(o *Overlay) { o.now = now }
}

// NewOverlay validates layout and returns a renderer bound to template.
func NewOverlay(template ports.TemplateSource, layout Layout, log zerolog.Logger, opts ...Option) (*Overlay, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	c, _ := parseHexColor(layout.Font.Color)

	o := &Overlay{
		template:  template,
		layout:    layout,
		textColor: c,
		encoder:   PNGEncoder(),
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Overlay) Layout() Layout {
	return o.layout
}

// Render loads the template, draws every field and returns the encoded PNG.
// Nothing is returned on failure.
func (o *Overlay) Render(ctx context.Context, receipt domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
	r, err := o.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, receipt)
}

// Prepare loads the template once and returns a renderer that draws onto it.
func (o *Overlay) Prepare(ctx context.Context) (ports.Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bg, err := o.template.Load(ctx)
	if err != nil {
		return nil, apperror.ErrTemplateLoadFailed(err)
	}
	return &preparedOverlay{overlay: o, bg: bg}, nil
}

type preparedOverlay struct {
	overlay *Overlay
	bg      image.Image
}

func (p *preparedOverlay) Render(ctx context.Context, receipt domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := p.overlay

	img, err := o.Draw(p.bg, receipt)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	var buf bytes.Buffer
	if err := o.encoder.Encode(&buf, img); err != nil {
		return nil, apperror.ErrEncodingFailed(err)
	}

	o.log.Debug().
		Str("receipt_id", receipt.AssignedID).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("bytes", buf.Len()).
		Msg("Receipt rendered")

	return &domain.RenderedReceipt{
		ImageBytes: buf.Bytes(),
		AssignedID: receipt.AssignedID,
		Date:       receipt.Date,
		CreatedAt:  o.now().UTC(),
	}, nil
}

// Draw composes the receipt onto a copy of bg. The result has exactly the
// bounds of bg; bg itself is not modified.
func (o *Overlay) Draw(bg image.Image, receipt domain.ResolvedReceipt) (image.Image, error) {
	face, err := NewFace(o.layout.Font.Bold, o.layout.Font.Size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dc := gg.NewContextForImage(bg)
	dc.SetFontFace(face)
	dc.SetColor(o.textColor)

	a := o.layout.Anchors
	drawText(dc, receipt.AssignedID, a.ReceiptID)
	drawText(dc, receipt.Date, a.Date)
	drawText(dc, receipt.ReceivedFrom, a.ReceivedFrom)
	drawText(dc, receipt.ForField, a.ForField)
	if receipt.ChequeNo != "" {
		drawText(dc, receipt.ChequeNo, a.ChequeNo)
	}
	drawText(dc, o.layout.CurrencyPrefix+receipt.Amount, a.Amount)

	o.drawCheckbox(dc, a.PaymentCash, receipt.PaymentCash)
	o.drawCheckbox(dc, a.PaymentCheque, receipt.PaymentCheque)

	return dc.Image(), nil
}

// drawText places s left-aligned and vertically centred on p.
func drawText(dc *gg.Context, s string, p Point) {
	if s == "" {
		return
	}
	dc.DrawStringAnchored(s, p.X, p.Y, 0, 0.5)
}

func (o *Overlay) drawCheckbox(dc *gg.Context, p Point, checked bool) {
	cb := o.layout.Checkbox
	dc.SetLineWidth(cb.LineWidth)
	dc.DrawRectangle(p.X, p.Y+cb.OffsetY, cb.Size, cb.Size)
	dc.Stroke()

	if !checked {
		return
	}
	dc.MoveTo(p.X+cb.Mark[0].X, p.Y+cb.Mark[0].Y)
	for _, m := range cb.Mark[1:] {
		dc.LineTo(p.X+m.X, p.Y+m.Y)
	}
	dc.Stroke()
}
