// Package whatsapp implements domain.Notifier on the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/logging"
)

// ErrNotConfigured is returned when the phone number ID or token is missing.
var ErrNotConfigured = errors.New("whatsapp client not configured")

// APIError is a non-2xx response from the Cloud API.
type APIError struct {
	Message    string
	StatusCode int
	Code       int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("whatsapp api: http %d", e.StatusCode)
	}
	return fmt.Sprintf("whatsapp api: http %d: %s (code %d)", e.StatusCode, e.Message, e.Code)
}

// Retryable reports whether the request may succeed when repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configures a Client.
// Fields are ordered to minimize memory padding.
type Options struct {
	HTTPClient    *http.Client
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	Backoff       time.Duration // Delay before retry n is n*Backoff
	MaxAttempts   int
}

// Client sends text messages through the Cloud API.
type Client struct {
	http  *http.Client
	log   zerolog.Logger
	sleep func(ctx context.Context, d time.Duration) error
	opts  Options
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		http:  opts.HTTPClient,
		log:   logging.Component("whatsapp"),
		sleep: sleepContext,
		opts:  opts,
	}
}

// FromConfig builds the client options from the [whatsapp] and [notify] sections.
func FromConfig(cfg *domain.Config) Options {
	return Options{
		BaseURL:       cfg.WhatsApp.BaseURL,
		APIVersion:    cfg.WhatsApp.APIVersion,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		AccessToken:   cfg.WhatsApp.AccessToken,
		MaxAttempts:   cfg.Notify.MaxAttempts,
		Backoff:       cfg.Notify.Backoff,
	}
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Send delivers n to phone. Retryable failures are attempted up to
// MaxAttempts times.
func (c *Client) Send(ctx context.Context, phone string, n domain.Notification) error {
	if c.opts.PhoneNumberID == "" || c.opts.AccessToken == "" {
		return ErrNotConfigured
	}
	to := domain.NormalizePhone(phone)
	if to == "" {
		return fmt.Errorf("invalid recipient phone %q", phone)
	}

	payload, err := json.Marshal(textMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: RenderMessage(n)},
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, time.Duration(attempt-1)*c.opts.Backoff); err != nil {
				return fmt.Errorf("%w (last error: %w)", err, lastErr)
			}
		}

		id, err := c.post(ctx, payload)
		if err == nil {
			c.log.Debug().Str("task", n.TaskID).Str("message_id", id).Int("attempt", attempt).Msg("message sent")
			return nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
		c.log.Warn().Err(err).Str("task", n.TaskID).Int("attempt", attempt).Msg("send failed, retrying")
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, payload []byte) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/messages", c.opts.BaseURL, c.opts.APIVersion, c.opts.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(body, &er) == nil {
			apiErr.Message = er.Error.Message
			apiErr.Code = er.Error.Code
		}
		return "", apiErr
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(sr.Messages) == 0 {
		return "", errors.New("whatsapp api: response without message id")
	}
	return sr.Messages[0].ID, nil
}

// retryable treats API 429/5xx and transport errors as transient.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return strings.HasPrefix(err.Error(), "send request:")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Ensure Client implements domain.Notifier.
var _ domain.Notifier = (*Client)(nil)
