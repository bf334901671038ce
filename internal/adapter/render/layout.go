package render

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Point is a pixel position on the template. For text it is the left edge
// and vertical middle of the string; for checkboxes it is the left edge and
// the line the box is hung from.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Anchors holds one Point per drawable field.
type Anchors struct {
	ReceiptID     Point `yaml:"receipt_id"`
	Date          Point `yaml:"date"`
	ReceivedFrom  Point `yaml:"received_from"`
	ForField      Point `yaml:"for_field"`
	ChequeNo      Point `yaml:"cheque_no"`
	Amount        Point `yaml:"amount"`
	PaymentCash   Point `yaml:"payment_cash"`
	PaymentCheque Point `yaml:"payment_cheque"`
}

type FontSpec struct {
	Size  float64 `yaml:"size"`
	Bold  bool    `yaml:"bold"`
	Color string  `yaml:"color"`
}

// Checkbox describes the square outline and the check mark polyline. The
// box spans [x, x+Size] horizontally and [y+OffsetY, y+OffsetY+Size]
// vertically. Mark points are relative to the anchor.
type Checkbox struct {
	Size      float64 `yaml:"size"`
	OffsetY   float64 `yaml:"offset_y"`
	LineWidth float64 `yaml:"line_width"`
	Mark      []Point `yaml:"mark"`
}

// Layout is the calibration data for one template image.
type Layout struct {
	Font           FontSpec `yaml:"font"`
	CurrencyPrefix string   `yaml:"currency_prefix"`
	Anchors        Anchors  `yaml:"anchors"`
	Checkbox       Checkbox `yaml:"checkbox"`
}

// DefaultLayout holds the anchors calibrated against the "D7 INVOICE.png"
// receipt scan. The scan is not shipped; point renderer.template_path at it.
func DefaultLayout() Layout {
	return Layout{
		Font:           FontSpec{Size: 24, Bold: true, Color: "#000000"},
		CurrencyPrefix: "Rs. ",
		Anchors: Anchors{
			ReceiptID:     Point{120, 98},
			Date:          Point{520, 98},
			ReceivedFrom:  Point{180, 198},
			ForField:      Point{180, 248},
			ChequeNo:      Point{500, 298},
			Amount:        Point{200, 348},
			PaymentCash:   Point{200, 398},
			PaymentCheque: Point{320, 398},
		},
		Checkbox: Checkbox{
			Size:      16,
			OffsetY:   -6,
			LineWidth: 2,
			Mark:      []Point{{3, 0}, {7, 4}, {13, -2}},
		},
	}
}

// SyntheticLayout matches the template drawn by SyntheticTemplate.
func SyntheticLayout() Layout {
	return Layout{
		Font:           FontSpec{Size: 14, Bold: false, Color: "#000000"},
		CurrencyPrefix: "Rs. ",
		Anchors: Anchors{
			ReceiptID:     Point{130, 121},
			Date:          Point{440, 121},
			ReceivedFrom:  Point{150, 161},
			ForField:      Point{150, 201},
			ChequeNo:      Point{150, 241},
			Amount:        Point{150, 281},
			PaymentCash:   Point{150, 336},
			PaymentCheque: Point{240, 336},
		},
		Checkbox: Checkbox{
			Size:      12,
			OffsetY:   -6,
			LineWidth: 1.5,
			Mark:      []Point{{2, 0}, {5, 3}, {10, -3}},
		},
	}
}

// LoadLayout reads a YAML calibration file on top of base. Keys missing
// from the file keep the base value.
func LoadLayout(path string, base Layout) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout file: %w", err)
	}
	return ParseLayout(data, base)
}

// ParseLayout decodes YAML layout data on top of base.
func ParseLayout(data []byte, base Layout) (Layout, error) {
	l := base
	l.Checkbox.Mark = append([]Point(nil), base.Checkbox.Mark...)
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parsing layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Marshal renders the layout as YAML.
func (l Layout) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}

func (l Layout) Validate() error {
	if l.Font.Size <= 0 {
		return fmt.Errorf("layout: font.size must be positive, got %v", l.Font.Size)
	}
	if _, err := parseHexColor(l.Font.Color); err != nil {
		return fmt.Errorf("layout: font.color: %w", err)
	}
	if l.Checkbox.Size <= 0 {
		return fmt.Errorf("layout: checkbox.size must be positive, got %v", l.Checkbox.Size)
	}
	if l.Checkbox.LineWidth <= 0 {
		return fmt.Errorf("layout: checkbox.line_width must be positive, got %v", l.Checkbox.LineWidth)
	}
	cb := l.Checkbox
	if len(cb.Mark) != 3 {
		return fmt.Errorf("layout: checkbox.mark needs exactly 3 points, got %d", len(cb.Mark))
	}
	for i, p := range cb.Mark {
		if p.X < 0 || p.X > cb.Size || p.Y < cb.OffsetY || p.Y > cb.OffsetY+cb.Size {
			return fmt.Errorf("layout: checkbox.mark[%d] (%v, %v) lies outside the box", i, p.X, p.Y)
		}
	}
	return nil
}

// parseHexColor accepts #rgb and #rrggbb. It is the package's only colour
// parser: gg.SetHexColor turns malformed input into black without an error,
// and layout files are user supplied.
func parseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func mustHexColor(s string) color.NRGBA {
	c, err := parseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
