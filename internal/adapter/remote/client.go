package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"receipt-generator/internal/adapter/http/dto"
	"receipt-generator/internal/core/domain"
	"receipt-generator/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	generatePath = "/api/generate"
	healthPath   = "/api/health"

	// Largest image accepted from a remote instance.
	maxImageBytes = 10 << 20
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client renders receipts by calling another instance's generation
// endpoint. The remote side validates the request and assigns the id.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	now        func() time.Time
	log        zerolog.Logger
}

// NewClient creates a remote renderer. A nil httpClient uses an
// http.Client with the given timeout.
func NewClient(baseURL string, httpClient HTTPClient, timeout time.Duration, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		now:        time.Now,
		log:        log,
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Render posts the receipt and returns the image the remote produced.
// Non-2xx responses become REM_001 carrying the remote detail; transport
// failures become REM_002.
func (c *Client) Render(ctx context.Context, receipt domain.ResolvedReceipt) (*domain.RenderedReceipt, error) {
	req := receipt.ReceiptRequest
	if receipt.AssignedID != "" {
		req.ReceiptID = receipt.AssignedID
	}

	body, err := json.Marshal(dto.NewGenerateRequest(req))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal remote request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build remote request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", domain.ContentTypePNG)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn().Err(err).Str("url", httpReq.URL.String()).Msg("Remote renderer unreachable")
		return nil, apperror.ErrRemoteUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := decodeDetail(resp.Body)
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("detail", detail).
			Msg("Remote renderer rejected request")
		return nil, apperror.ErrRemote(resp.StatusCode, detail)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, apperror.ErrRemoteUnavailable(fmt.Errorf("read remote image: %w", err))
	}

	assignedID := resp.Header.Get("X-Receipt-Id")
	if assignedID == "" {
		assignedID = ReceiptIDFromDisposition(resp.Header.Get("Content-Disposition"))
	}
	if assignedID == "" {
		assignedID = req.ReceiptID
	}

	return &domain.RenderedReceipt{
		ImageBytes: img,
		AssignedID: assignedID,
		Date:       receipt.Date,
		CreatedAt:  c.now().UTC(),
	}, nil
}

// decodeDetail extracts {"detail": "..."} from an error body. Bodies that
// are not JSON, or carry a non-string detail, yield "".
func decodeDetail(r io.Reader) string {
	var eb errorBody
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&eb); err != nil {
		return ""
	}
	return eb.Detail
}

// ReceiptIDFromDisposition pulls <id> out of
// `attachment; filename="receipt_<id>.png"`. Returns "" when the header
// does not follow that shape.
func ReceiptIDFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if !strings.HasPrefix(name, "receipt_") || !strings.HasSuffix(name, ".png") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(name, "receipt_"), ".png")
}

// Ping checks the remote health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote health returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) Name() string {
	return "remote_renderer"
}
