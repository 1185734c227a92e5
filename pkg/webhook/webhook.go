package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Headers carries the delivery metadata sent alongside the signed payload.
type Headers struct {
	// Event names the domain event being delivered, e.g. "booking.created".
	Event string
	// DeliveryID identifies this delivery's job, so subscribers can
	// correlate retries of the same logical delivery.
	DeliveryID string
	// Signature is the hex HMAC-SHA256 of the request body.
	Signature string
}

// Result captures the outcome of a single delivery attempt.
type Result struct {
	StatusCode int
	Body       string
	Duration   time.Duration
}

// Sender performs single-attempt signed webhook deliveries. Retry and
// backoff are deliberately not handled here: the job engine owns the retry
// policy, and every attempt it makes must surface as its own Result so the
// delivery log stays one row per attempt.
type Sender struct {
	// client is reused across requests for connection pooling
	client *http.Client
}

// NewSender creates a webhook sender with a pooled HTTP client.
func NewSender() *Sender {
	return &Sender{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewSenderWithClient creates a webhook sender with a custom HTTP client.
// This allows for custom transports, proxies, or testing.
func NewSenderWithClient(client *http.Client) *Sender {
	if client == nil {
		return NewSender()
	}
	return &Sender{client: client}
}

// Deliver POSTs the payload to the endpoint with the signature headers and
// returns the response outcome. A transport failure or a non-2xx status
// returns a non-nil error along with whatever Result detail is available, so
// the caller can record the attempt either way.
func (s *Sender) Deliver(ctx context.Context, webhookURL string, payload []byte, headers Headers) (Result, error) {
	start := time.Now()
	result := Result{}

	if err := validateInputs(webhookURL, payload); err != nil {
		return result, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		result.Duration = time.Since(start)
		return result, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", headers.Signature)
	req.Header.Set("X-Webhook-Event", headers.Event)
	req.Header.Set("X-Webhook-Delivery", headers.DeliveryID)

	resp, err := s.client.Do(req)
	result.Duration = time.Since(start)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return result, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	defer func() { _ = resp.Body.Close() }()
	result.StatusCode = resp.StatusCode

	// Read response body for the delivery log (64KB limit prevents memory exhaustion)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024*64))
	result.Body = sanitizeBody(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("webhook returned status %d", resp.StatusCode)
		if result.Body != "" {
			errMsg += ": " + result.Body
		}
		return result, fmt.Errorf("%w: %s", ErrDeliveryFailed, errMsg)
	}

	return result, nil
}

// validateInputs performs early validation to fail fast on obvious errors
func validateInputs(webhookURL string, payload []byte) error {
	if webhookURL == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	// Restrict to HTTP/HTTPS to prevent SSRF through exotic schemes
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	if len(payload) == 0 {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	return nil
}

// sanitizeBody flattens and truncates a response body for safe logging.
func sanitizeBody(body []byte) string {
	s := strings.ReplaceAll(string(body), "\n", " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
