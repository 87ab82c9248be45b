// Package pushover is a client for the Pushover notification API. It builds
// and validates outbound messages, submits them over HTTPS, and maps the
// response into typed results and errors, including rate-limit metadata and
// delivery receipts for emergency-priority messages.
package pushover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://api.pushover.net"
	defaultTimeout = 10 * time.Second

	messagesPath = "/1/messages.json"
)

// HTTPClient abstracts HTTP request execution for testing and custom
// transports. The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Pushover API on behalf of one application token.
//
// A Client keeps the last captured rate-limit snapshot and the last issued
// emergency receipt as cross-call conveniences. That state is not
// synchronized: a Client is not safe for concurrent use, callers needing
// concurrency should use one Client per goroutine or lock externally.
type Client struct {
	token   string
	baseURL string
	http    HTTPClient
	logger  *slog.Logger
	metrics *Metrics

	lastReceipt Receipt
	lastLimits  *RateLimits
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the transport timeout. It only applies when the default
// HTTP client is in use; a client supplied via WithHTTPClient keeps its own.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if hc, ok := c.http.(*http.Client); ok {
			hc.Timeout = d
		}
	}
}

// WithLogger sets the logger used for per-call debug logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation of API calls.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client for the given application token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendResponse is the parsed result of a successful send. Receipt is empty
// unless the message was emergency priority; Limits is nil if the service
// omitted the rate-limit headers.
type SendResponse struct {
	Status  int         `json:"status"`
	Request string      `json:"request"`
	Receipt Receipt     `json:"receipt"`
	Limits  *RateLimits `json:"-"`
}

// CancelResponse is the parsed result of a successful receipt cancellation.
type CancelResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

// Send validates and submits one message. Validation failures are returned
// as ValidationError before any network I/O; transport and API failures are
// returned as *APIError with a Kind the caller can branch on.
func (c *Client) Send(ctx context.Context, msg *Message) (*SendResponse, error) {
	started := time.Now()
	resp, err := c.send(ctx, msg)
	c.metrics.RecordCall("send", outcome(err), time.Since(started))
	return resp, err
}

// SendTo submits msg to a different recipient without mutating it.
func (c *Client) SendTo(ctx context.Context, recipient string, msg *Message) (*SendResponse, error) {
	if msg == nil {
		return nil, NewValidationError("message", "a message is required")
	}
	override := *msg
	override.Recipient = recipient
	return c.Send(ctx, &override)
}

func (c *Client) send(ctx context.Context, msg *Message) (*SendResponse, error) {
	if c.token == "" {
		return nil, NewValidationError("token", "an application token is required")
	}
	if msg == nil {
		return nil, NewValidationError("message", "a message is required")
	}
	if msg.Recipient == "" {
		return nil, NewValidationError("user", "a recipient token is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	c.logger.Debug("sending message",
		"request_id", requestID,
		"priority", msg.Priority.String(),
		"device", msg.Device,
	)

	body := msg.values(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, strings.NewReader(body.Encode()))
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	respBody, header, err := c.do(req)
	if err != nil {
		c.logger.Debug("send failed", "request_id", requestID, "error", err)
		return nil, err
	}

	var out SendResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &APIError{Kind: KindUnknown, cause: fmt.Errorf("decode response: %w", err)}
	}

	if limits := parseRateLimits(header); limits != nil {
		c.lastLimits = limits
		out.Limits = limits
	}
	if out.Receipt != "" {
		c.lastReceipt = out.Receipt
	}

	c.logger.Debug("message sent",
		"request_id", requestID,
		"api_request", out.Request,
		"receipt", string(out.Receipt),
	)
	return &out, nil
}

// CheckReceipt polls the delivery status of an emergency receipt. An empty
// receipt falls back to the one stored by the last send.
func (c *Client) CheckReceipt(ctx context.Context, receipt Receipt) (*ReceiptStatus, error) {
	started := time.Now()
	status, err := c.checkReceipt(ctx, receipt)
	c.metrics.RecordCall("check_receipt", outcome(err), time.Since(started))
	return status, err
}

func (c *Client) checkReceipt(ctx context.Context, receipt Receipt) (*ReceiptStatus, error) {
	if c.token == "" {
		return nil, NewValidationError("token", "an application token is required")
	}
	receipt, err := c.resolveReceipt(receipt)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/1/receipts/%s.json?token=%s", c.baseURL, receipt, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, cause: err}
	}

	respBody, _, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var status ReceiptStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, &APIError{Kind: KindUnknown, cause: fmt.Errorf("decode response: %w", err)}
	}
	return &status, nil
}

// CancelReceipt stops the service from retrying an emergency notification.
// An empty receipt falls back to the one stored by the last send.
func (c *Client) CancelReceipt(ctx context.Context, receipt Receipt) (*CancelResponse, error) {
	started := time.Now()
	res, err := c.cancelReceipt(ctx, receipt)
	c.metrics.RecordCall("cancel_receipt", outcome(err), time.Since(started))
	return res, err
}

func (c *Client) cancelReceipt(ctx context.Context, receipt Receipt) (*CancelResponse, error) {
	if c.token == "" {
		return nil, NewValidationError("token", "an application token is required")
	}
	receipt, err := c.resolveReceipt(receipt)
	if err != nil {
		return nil, err
	}

	form := url.Values{"token": {c.token}}
	endpoint := fmt.Sprintf("%s/1/receipts/%s/cancel.json", c.baseURL, receipt)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	respBody, _, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var out CancelResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &APIError{Kind: KindUnknown, cause: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// RateLimits returns a copy of the rate-limit snapshot captured by the most
// recent successful send, or false if no send has happened yet.
func (c *Client) RateLimits() (*RateLimits, bool) {
	if c.lastLimits == nil {
		return nil, false
	}
	limits := *c.lastLimits
	return &limits, true
}

// LastReceipt returns the receipt stored by the most recent send that
// issued one.
func (c *Client) LastReceipt() (Receipt, bool) {
	return c.lastReceipt, c.lastReceipt != ""
}

func (c *Client) resolveReceipt(receipt Receipt) (Receipt, error) {
	if receipt == "" {
		receipt = c.lastReceipt
	}
	if receipt == "" {
		return "", NewValidationError("receipt", "no receipt available")
	}
	if !receipt.IsValid() {
		return "", NewValidationError("receipt", "must be exactly 30 alphanumeric characters")
	}
	return receipt, nil
}

// apiStatus is the error envelope shared by all endpoints.
type apiStatus struct {
	Status *int     `json:"status"`
	Errors []string `json:"errors"`
}

// do executes the request and maps non-success responses into APIErrors per
// the classification in the package error model.
func (c *Client) do(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &APIError{Kind: KindConnectivity, cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode, cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// The live API signals rejection with 4xx, but trust the body's
		// status field over the transport if they disagree.
		if msgs, rejected := rejectedBody(body); rejected {
			return nil, nil, &APIError{Kind: KindRejected, StatusCode: resp.StatusCode, Messages: msgs}
		}
		return body, resp.Header, nil
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		e := &APIError{Kind: KindRateLimited, StatusCode: resp.StatusCode, Messages: apiErrors(body)}
		if sec, err := strconv.ParseInt(resp.Header.Get(resetHeader), 10, 64); err == nil {
			e.ResetAt = time.Unix(sec, 0).UTC()
		}
		return nil, nil, e
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, nil, &APIError{Kind: KindRejected, StatusCode: resp.StatusCode, Messages: apiErrors(body)}
	case resp.StatusCode >= 500:
		return nil, nil, &APIError{Kind: KindServer, StatusCode: resp.StatusCode}
	}
	return nil, nil, &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode}
}

func rejectedBody(body []byte) ([]string, bool) {
	var s apiStatus
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, false
	}
	if s.Status == nil || *s.Status == 1 {
		return nil, false
	}
	return s.Errors, true
}

func apiErrors(body []byte) []string {
	var s apiStatus
	if err := json.Unmarshal(body, &s); err != nil {
		return nil
	}
	return s.Errors
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return "validation"
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind.String()
	}
	return "unknown"
}
