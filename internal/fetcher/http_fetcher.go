package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	defaultMaxImageSize = 25 * 1024 * 1024 // 25 MB
	defaultUserAgent    = "wallrot/1.0"
)

// HTTPFetcher handles downloading image data from HTTP/HTTPS URLs.
// Timeouts come from the caller's context, one per attempt.
type HTTPFetcher struct {
	logger    *zap.Logger
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewHTTPFetcher creates a new HTTP-based fetcher instance
func NewHTTPFetcher(logger *zap.Logger, maxBytes int64, userAgent string) *HTTPFetcher {
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageSize
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{
		logger:    logger,
		client:    &http.Client{},
		maxBytes:  maxBytes,
		userAgent: userAgent,
	}
}

// Fetch downloads data from the given URL.
// The Content-Type header is not trusted; callers inspect the bytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized bodies
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("response exceeds %s limit", humanize.Bytes(uint64(f.maxBytes)))
	}

	f.logger.Debug("Image fetched",
		zap.String("url", url),
		zap.String("contentType", resp.Header.Get("Content-Type")),
		zap.String("size", humanize.Bytes(uint64(len(data)))))
	return data, nil
}
