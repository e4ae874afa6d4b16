package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTP implements Sink against a path-addressable document store: one
// authenticated PUT per document, overwriting whatever is there.
type HTTP struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTP creates a remote sink. An empty token turns every Publish into a
// silent no-op rather than an error, so unconfigured runs still generate.
func NewHTTP(endpoint, token string, logger *slog.Logger) *HTTP {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

// Publish uploads the document, overwriting any existing one at path.
func (h *HTTP) Publish(ctx context.Context, path string, content []byte) error {
	if h.token == "" {
		h.logger.Debug("document sink token absent, skipping publish", slog.String("path", path))
		return nil
	}

	u, err := url.JoinPath(h.endpoint, path)
	if err != nil {
		return fmt.Errorf("sink: join url: %w", err)
	}
	u += "?overwrite=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("sink: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink: publish %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sink: publish %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
