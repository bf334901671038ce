package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/fogleman/gg"
)

// FileTemplate reads the background image from disk on every Load, so a
// replaced template file is picked up without a restart.
type FileTemplate struct {
	path string
}

func NewFileTemplate(path string) *FileTemplate {
	return &FileTemplate{path: path}
}

func (t *FileTemplate) Load(_ context.Context) (image.Image, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("opening template: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding template %s: %w", t.path, err)
	}
	return img, nil
}

// Ping checks that the template exists and has a decodable header.
func (t *FileTemplate) Ping(_ context.Context) error {
	f, err := os.Open(t.path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("template %s has empty bounds", t.path)
	}
	return nil
}

func (t *FileTemplate) Name() string {
	return "template"
}

const (
	syntheticWidth  = 600
	syntheticHeight = 450
)

var (
	headerColor = mustHexColor("#2c3e50")
	borderColor = mustHexColor("#e1e8ed")
	labelColor  = mustHexColor("#666666")
	optionColor = mustHexColor("#333333")
	paperColor  = mustHexColor("#ffffff")
	inkColor    = mustHexColor("#000000")
)

// SyntheticTemplate draws a plain receipt form in code, for deployments
// without a scanned template.
type SyntheticTemplate struct {
	once sync.Once
	img  image.Image
	err  error
}

func NewSyntheticTemplate() *SyntheticTemplate {
	return &SyntheticTemplate{}
}

func (t *SyntheticTemplate) Load(_ context.Context) (image.Image, error) {
	t.once.Do(func() {
		t.img, t.err = drawSyntheticTemplate()
	})
	return t.img, t.err
}

func (t *SyntheticTemplate) Ping(ctx context.Context) error {
	_, err := t.Load(ctx)
	return err
}

func (t *SyntheticTemplate) Name() string {
	return "template"
}

type label struct {
	text string
	x, y float64
}

func drawSyntheticTemplate() (image.Image, error) {
	w, h := float64(syntheticWidth), float64(syntheticHeight)
	dc := gg.NewContext(syntheticWidth, syntheticHeight)
	dc.SetColor(paperColor)
	dc.Clear()

	// Header and footer bands
	dc.SetColor(headerColor)
	dc.DrawRectangle(0, 0, w, 80)
	dc.Fill()
	dc.DrawRectangle(0, h-50, w, 50)
	dc.Fill()

	dc.SetColor(borderColor)
	dc.SetLineWidth(2)
	dc.DrawRectangle(20, 100, w-40, 300)
	dc.Stroke()

	dc.SetColor(inkColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(150, 330, 12, 12)
	dc.Stroke()
	dc.DrawRectangle(240, 330, 12, 12)
	dc.Stroke()

	if err := drawLabels(dc, true, 24, paperColor, label{"D7 RECEIPT", 50, 30}); err != nil {
		return nil, err
	}
	if err := drawLabels(dc, false, 12, paperColor,
		label{"Professional Receipt Generator", 50, 55},
		label{"Thank you for your business!", 200, h - 35},
	); err != nil {
		return nil, err
	}
	if err := drawLabels(dc, false, 10, labelColor,
		label{"Receipt ID:", 50, 115},
		label{"Date:", 400, 115},
		label{"Received From:", 50, 155},
		label{"For:", 50, 195},
		label{"Cheque No:", 50, 235},
		label{"Amount:", 50, 275},
		label{"Payment Method:", 50, 315},
	); err != nil {
		return nil, err
	}
	if err := drawLabels(dc, false, 10, optionColor,
		label{"Cash", 170, 330},
		label{"Cheque", 260, 330},
	); err != nil {
		return nil, err
	}

	return dc.Image(), nil
}

// drawLabels draws each label with its top-left corner at (x, y).
func drawLabels(dc *gg.Context, bold bool, size float64, c color.Color, labels ...label) error {
	face, err := NewFace(bold, size)
	if err != nil {
		return err
	}
	defer face.Close()

	dc.SetFontFace(face)
	dc.SetColor(c)
	for _, l := range labels {
		dc.DrawStringAnchored(l.text, l.x, l.y, 0, 1)
	}
	return nil
}
