package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"internhunt-engine/internal/limit"
)

// maxDocumentBytes bounds the README download. A larger document is an
// error: a truncated README would deactivate every posting past the cut.
const maxDocumentBytes = 16 << 20

var ErrDocumentTooLarge = fmt.Errorf("readme read: document exceeds %d bytes", maxDocumentBytes)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Status int
	Text   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to fetch README: %d %s", e.Status, e.Text)
}

type Client struct {
	hc        *http.Client
	userAgent string
	limiter   *limit.Keyed

	// WrapBody, when set, wraps the response body (progress reporting).
	// size is -1 when the server sent no Content-Length.
	WrapBody func(body io.Reader, size int64) io.Reader
}

func New(timeout time.Duration, userAgent string, limiter *limit.Keyed) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "internhunt/1.0 (+local)"
	}
	return &Client{
		hc:        &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limiter:   limiter,
	}
}

// Document GETs url once and returns the body as text. No retries.
func (c *Client) Document(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("readme request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain")

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, url); err != nil {
			return "", err
		}
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("readme get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return "", &StatusError{Status: res.StatusCode, Text: http.StatusText(res.StatusCode)}
	}

	if res.ContentLength > maxDocumentBytes {
		return "", ErrDocumentTooLarge
	}
	var body io.Reader = io.LimitReader(res.Body, maxDocumentBytes+1)
	if c.WrapBody != nil {
		body = c.WrapBody(body, res.ContentLength)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("readme read: %w", err)
	}
	if len(b) > maxDocumentBytes {
		return "", ErrDocumentTooLarge
	}
	return string(b), nil
}
