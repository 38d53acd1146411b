package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/openfed-online/federation-sdk-go/pkg/httpsig"
	"github.com/openfed-online/federation-sdk-go/pkg/sig"
)

const (
	// ContentType is the media type of outbound delivery bodies.
	ContentType = "application/activity+json"

	tracerName      = "github.com/openfed-online/federation-sdk-go/pkg/delivery"
	bodyExcerptSize = 4 << 10
)

// Config configures a delivery Client.
type Config struct {
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	// Headers are merged into every outbound request.
	Headers map[string]string
}

// Client delivers signed documents to destination inboxes. One Deliver
// call is exactly one attempt to exactly one inbox; fan-out across
// inboxes, concurrency limits, and retries belong to the caller.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
	headers    map[string]string
	tracer     trace.Tracer
}

// NewClient creates a new delivery Client.
func NewClient(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		headers:    headers,
		tracer:     otel.Tracer(tracerName),
	}
}

// Deliver POSTs the signed document to the inbox. When the signing
// pipeline reported an RSA signer, the request additionally carries a
// transport message signature keyed by it; otherwise the request is
// sent unsigned at the transport layer. A 2xx response is success with
// no return value; any other status is logged and returned as a
// DeliveryError.
func (c *Client) Deliver(
	ctx context.Context,
	signed *sig.Signed,
	inbox *url.URL,
	headers map[string]string,
) error {
	if signed == nil {
		return fmt.Errorf("a signed document is required")
	}
	if inbox == nil {
		return fmt.Errorf("a destination inbox is required")
	}

	payload, err := signed.Bytes()
	if err != nil {
		return err
	}
	activityID := activityIDOf(signed)

	ctx, span := c.tracer.Start(ctx, "delivery.send", trace.WithAttributes(
		attribute.String("federation.activity.id", activityID),
		attribute.String("federation.inbox", inbox.String()),
	))
	defer span.End()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, inbox.String(), bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create delivery request: %w", err)
	}

	request.Header.Set("Content-Type", ContentType)
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	if signed.RSASigner != nil {
		if err := httpsig.SignRequest(request, payload, *signed.RSASigner); err != nil {
			span.RecordError(err)
			return err
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("delivery to %s failed: %w", inbox, err)
	}
	defer response.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", response.StatusCode))

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	// Best effort: an unreadable body degrades to an empty excerpt.
	excerptBytes, _ := io.ReadAll(io.LimitReader(response.Body, bodyExcerptSize))
	excerpt := strings.TrimSpace(string(excerptBytes))

	deliveryErr := &DeliveryError{
		ActivityID: activityID,
		Inbox:      inbox.String(),
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Body:       excerpt,
	}

	span.RecordError(deliveryErr)
	span.SetStatus(codes.Error, response.Status)
	c.logger.Error().
		Str("id", activityID).
		Str("inbox", inbox.String()).
		Int("status", response.StatusCode).
		Str("statusText", response.Status).
		Str("body", excerpt).
		Msg("delivery failed")

	return deliveryErr
}

func activityIDOf(signed *sig.Signed) string {
	if signed.Document == nil {
		return ""
	}
	if id, ok := signed.Document["id"].(string); ok {
		return id
	}
	return ""
}
