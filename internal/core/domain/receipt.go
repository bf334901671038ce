package domain

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ContentTypePNG is the only raster encoding receipts are produced in.
const ContentTypePNG = "image/png"

// DefaultIDWidth is the zero-padding applied to counter-assigned ids.
const DefaultIDWidth = 4

// ReceiptRequest carries the payment details of a single submission.
// It is owned by the caller and discarded after rendering.
type ReceiptRequest struct {
	ReceiptID     string // optional; assigned from the counter when empty
	Date          string // ISO calendar date, drawn verbatim
	ReceivedFrom  string
	ForField      string
	ChequeNo      string // required iff PaymentCheque
	Amount        string // decimal string, drawn verbatim after the currency prefix
	PaymentCash   bool
	PaymentCheque bool
}

// Normalized returns a copy with surrounding whitespace removed from every
// text field.
func (r ReceiptRequest) Normalized() ReceiptRequest {
	r.ReceiptID = strings.TrimSpace(r.ReceiptID)
	r.Date = strings.TrimSpace(r.Date)
	r.ReceivedFrom = strings.TrimSpace(r.ReceivedFrom)
	r.ForField = strings.TrimSpace(r.ForField)
	r.ChequeNo = strings.TrimSpace(r.ChequeNo)
	r.Amount = strings.TrimSpace(r.Amount)
	return r
}

// HasReceiptID reports whether the caller supplied its own identifier.
func (r ReceiptRequest) HasReceiptID() bool {
	return strings.TrimSpace(r.ReceiptID) != ""
}

// Resolve binds the identifier that will be burned into the image.
func (r ReceiptRequest) Resolve(assignedID string) ResolvedReceipt {
	return ResolvedReceipt{ReceiptRequest: r, AssignedID: assignedID}
}

// ResolvedReceipt is a validated request whose identifier is known.
type ResolvedReceipt struct {
	ReceiptRequest
	AssignedID string
}

// RenderedReceipt is the output of a renderer. The presentation layer owns
// it until the response is written.
type RenderedReceipt struct {
	ImageBytes []byte
	AssignedID string
	Date       string
	CreatedAt  time.Time
}

// DownloadFilename is the attachment name used by the HTTP endpoint.
func (r *RenderedReceipt) DownloadFilename() string {
	return Filename(r.AssignedID, "")
}

// ArchiveFilename includes the receipt date, used when writing to disk.
func (r *RenderedReceipt) ArchiveFilename() string {
	return Filename(r.AssignedID, r.Date)
}

// DataURL returns the image as an inline data: URL for previews.
func (r *RenderedReceipt) DataURL() string {
	return "data:" + ContentTypePNG + ";base64," + base64.StdEncoding.EncodeToString(r.ImageBytes)
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]+`)

// Filename builds receipt_<id>_<date>.png, dropping whichever part is empty.
// Characters outside [A-Za-z0-9_.-] are replaced with '_'.
func Filename(assignedID, date string) string {
	parts := []string{"receipt"}
	for _, p := range []string{assignedID, date} {
		p = unsafeFilenameRe.ReplaceAllString(strings.TrimSpace(p), "_")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_") + ".png"
}

// FormatReceiptID renders a sequence number as a zero-padded decimal string.
func FormatReceiptID(n int64, width int) string {
	if width < 1 {
		width = DefaultIDWidth
	}
	return fmt.Sprintf("%0*d", width, n)
}
