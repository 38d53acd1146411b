package docloader

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"

	"github.com/openfed-online/federation-sdk-go/pkg/shared"
)

const defaultMaxBodyBytes = 10 << 20

// Config configures an HTTPLoader.
type Config struct {
	HTTPClient   *http.Client
	Headers      map[string]string
	MaxBodyBytes int64
	Logger       *zerolog.Logger
}

// HTTPLoader dereferences linked-document URLs over HTTP.
type HTTPLoader struct {
	httpClient   *http.Client
	headers      map[string]string
	maxBodyBytes int64
	logger       zerolog.Logger
}

// NewHTTPLoader creates a new HTTPLoader.
func NewHTTPLoader(config Config) *HTTPLoader {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	maxBodyBytes := config.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &HTTPLoader{
		httpClient:   httpClient,
		headers:      headers,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

var (
	defaultLoaderOnce sync.Once
	defaultLoader     *HTTPLoader
)

// Default returns the process-wide default loader. It is initialized
// once and read-only afterwards; callers pass it explicitly wherever a
// loader parameter is required.
func Default() *HTTPLoader {
	defaultLoaderOnce.Do(func() {
		defaultLoader = NewHTTPLoader(Config{})
	})
	return defaultLoader
}

// Load fetches the document at the given URL.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (*RemoteDocument, error) {
	parsed, err := shared.NormalizeURL(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Cause: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Cause: err}
	}

	request.Header.Set("Accept", "application/activity+json, application/ld+json")
	request.Header.Set("Accept-Encoding", "br, gzip")
	for key, value := range l.headers {
		request.Header.Set(key, value)
	}

	response, err := l.httpClient.Do(request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FetchError{URL: rawURL, Cause: err}
	}
	defer response.Body.Close()

	body, err := l.readBody(response)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Cause: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		l.logger.Error().
			Str("url", rawURL).
			Int("status", response.StatusCode).
			Msg("document fetch failed")
		return nil, &FetchError{
			URL:   rawURL,
			Cause: fmt.Errorf("unexpected status %d: %s", response.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var document map[string]any
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, &FetchError{URL: rawURL, Cause: fmt.Errorf("failed to decode document: %w", err)}
	}

	finalURL := parsed.String()
	if response.Request != nil && response.Request.URL != nil {
		finalURL = response.Request.URL.String()
	}

	return &RemoteDocument{
		URL:        finalURL,
		Document:   document,
		ContextURL: ContextURLOf(document),
	}, nil
}

func (l *HTTPLoader) readBody(response *http.Response) ([]byte, error) {
	var reader io.Reader = response.Body

	switch strings.ToLower(strings.TrimSpace(response.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "br":
		reader = brotli.NewReader(response.Body)
	case "gzip":
		gzipReader, err := gzip.NewReader(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode gzip body: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", response.Header.Get("Content-Encoding"))
	}

	body, err := io.ReadAll(io.LimitReader(reader, l.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	if int64(len(body)) > l.maxBodyBytes {
		return nil, fmt.Errorf("document body exceeds limit of %d bytes", l.maxBodyBytes)
	}

	return body, nil
}

// ContextURLOf returns the first context URL the document declares,
// or an empty string when the document declares none by URL.
func ContextURLOf(document map[string]any) string {
	raw, exists := document["@context"]
	if !exists {
		return ""
	}

	switch typed := raw.(type) {
	case string:
		return typed
	case []any:
		for _, entry := range typed {
			if value, ok := entry.(string); ok && strings.TrimSpace(value) != "" {
				return value
			}
		}
	}
	return ""
}
