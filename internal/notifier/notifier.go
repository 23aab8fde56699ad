// Package notifier relays a captured signup email to the external form
// collection endpoint as a one-field multipart POST.
//
// There is no retry, backoff or idempotency key. In FireAndForget mode the
// response is drained up to a small bound and otherwise ignored, so a
// returned nil only means the request left the process without a transport
// error.
package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultEndpoint   = "https://docs.google.com/forms/d/e/1FAIpQLSdq-VSTfs2KmeLeF1L4Aftv_JaRfHrGCiGOZ1icZHYjsteBHg/formResponse"
	DefaultEmailField = "entry.75332481"

	maxDrainBytes = 64 << 10
)

// DeliveryMode selects how much of the response is observed.
type DeliveryMode string

const (
	// FireAndForget ignores the status code and body.
	FireAndForget DeliveryMode = "fire-and-forget"
	// Verified fails on any non-2xx status.
	Verified DeliveryMode = "verified"
)

var (
	// ErrUnknownDeliveryMode is returned by ParseDeliveryMode.
	ErrUnknownDeliveryMode = errors.New("unknown delivery mode")
	// ErrRejected is returned in Verified mode when the endpoint answers non-2xx.
	ErrRejected = errors.New("collection endpoint rejected submission")
)

// ParseDeliveryMode accepts "fire-and-forget" or "verified".
func ParseDeliveryMode(raw string) (DeliveryMode, error) {
	switch m := DeliveryMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case FireAndForget, Verified:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDeliveryMode, raw)
	}
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	Endpoint   string
	Field      string
	Mode       DeliveryMode
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client is the outbound notifier.
type Client struct {
	endpoint string
	field    string
	mode     DeliveryMode
	http     *http.Client
	logger   *log.Logger
}

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	c := &Client{
		endpoint: opts.Endpoint,
		field:    opts.Field,
		mode:     opts.Mode,
		http:     opts.HTTPClient,
		logger:   opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.field == "" {
		c.field = DefaultEmailField
	}
	if c.mode == "" {
		c.mode = FireAndForget
	}
	if _, err := ParseDeliveryMode(string(c.mode)); err != nil {
		return nil, err
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// Mode reports the configured delivery mode.
func (c *Client) Mode() DeliveryMode { return c.mode }

// EncodePayload builds the multipart body carrying email under field.
func EncodePayload(field, email string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField(field, email); err != nil {
		return nil, "", fmt.Errorf("write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body, mw.FormDataContentType(), nil
}

// Notify issues one POST carrying email. The address is never logged.
func (c *Client) Notify(ctx context.Context, email string) error {
	started := time.Now()

	body, contentType, err := EncodePayload(c.field, email)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("build signup request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("signup_dispatch_failed", "mode", c.mode, "duration_ms", time.Since(started).Milliseconds(), "err", err)
		return fmt.Errorf("dispatch signup: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if c.mode == FireAndForget {
		c.logger.Info("signup_dispatched", "mode", c.mode, "duration_ms", time.Since(started).Milliseconds())
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("signup_rejected", "mode", c.mode, "status", resp.StatusCode, "duration_ms", time.Since(started).Milliseconds())
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	c.logger.Info("signup_dispatched", "mode", c.mode, "status", resp.StatusCode, "duration_ms", time.Since(started).Milliseconds())
	return nil
}
