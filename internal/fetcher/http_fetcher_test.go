package fetcher

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/genricoloni/wallrot/internal/domain"
	"go.uber.org/zap"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name           string
		contentType    string
		responseBody   []byte
		statusCode     int
		maxBytes       int64
		ctxFunc        func() (context.Context, context.CancelFunc)
		expectedError  string
		expectedLength int
	}{
		{
			name:           "Success - Valid Image",
			contentType:    "image/jpeg",
			responseBody:   []byte("fake-image-data"),
			statusCode:     http.StatusOK,
			expectedLength: 15,
		},
		{
			name:           "Success - Content Type Not Trusted",
			contentType:    "text/plain",
			responseBody:   []byte("bytes-inspected-later"),
			statusCode:     http.StatusOK,
			expectedLength: 21,
		},
		{
			name:          "Error - 404 Not Found",
			contentType:   "image/jpeg",
			statusCode:    http.StatusNotFound,
			expectedError: "unexpected status code: 404",
		},
		{
			name:          "Error - Response Too Large",
			contentType:   "image/png",
			responseBody:  []byte(strings.Repeat("a", 2048)),
			statusCode:    http.StatusOK,
			maxBytes:      1024,
			expectedError: "exceeds",
		},
		{
			name:           "Success - Exactly At Limit",
			contentType:    "image/png",
			responseBody:   []byte(strings.Repeat("a", 1024)),
			statusCode:     http.StatusOK,
			maxBytes:       1024,
			expectedLength: 1024,
		},
		{
			name: "Error - Context Cancelled",
			ctxFunc: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			expectedError: "context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("User-Agent"); got != "wallrot-test" {
					t.Errorf("unexpected user agent %q", got)
				}
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write(tt.responseBody)
			}))
			defer server.Close()

			var ctx context.Context
			var cancel context.CancelFunc
			if tt.ctxFunc != nil {
				ctx, cancel = tt.ctxFunc()
			} else {
				ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
			}
			defer cancel()

			fetcher := NewHTTPFetcher(zap.NewNop(), tt.maxBytes, "wallrot-test")
			data, err := fetcher.Fetch(ctx, server.URL)

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(data) != tt.expectedLength {
				t.Errorf("expected data length %d, got %d", tt.expectedLength, len(data))
			}
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPFetcher(zap.NewNop(), 0, "").Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}

func TestTCPProber_Reachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()

	prober := NewTCPProber(zap.NewNop(), addr, time.Second)
	if !prober.Reachable(context.Background()) {
		t.Error("expected listener to be reachable")
	}

	ln.Close()
	if prober.Reachable(context.Background()) {
		t.Error("expected closed listener to be unreachable")
	}
}

func TestExpandSource(t *testing.T) {
	res := domain.ScreenResolution{Width: 2560, Height: 1440}

	tests := []struct {
		template string
		expected string
	}{
		{"https://picsum.photos/{width}/{height}?random={seed}", "https://picsum.photos/2560/1440?random=42"},
		{"https://example.com/{width}x{height}", "https://example.com/2560x1440"},
		{"https://example.com/static.jpg", "https://example.com/static.jpg"},
	}

	for _, tt := range tests {
		if got := ExpandSource(tt.template, res, 42); got != tt.expected {
			t.Errorf("ExpandSource(%s): expected %s, got %s", tt.template, tt.expected, got)
		}
	}
}
