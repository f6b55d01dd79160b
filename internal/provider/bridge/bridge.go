// Package bridge implements provider.Client against a Bridge-style customer
// API over HTTP/JSON.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"verigate/internal/provider"
)

const (
	headerAPIKey         = "Api-Key"
	headerIdempotencyKey = "Idempotency-Key"
	maxResponseBytes     = 4 << 20
)

// Observer receives per-call latency. Outcome is "ok" or the error category.
type Observer interface {
	ObserveProviderCall(op string, outcome string, d time.Duration)
}

// Client talks to the provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	observer   Observer
	newKey     func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver records call latency.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithIdempotencyKeys overrides idempotency key generation (tests).
func WithIdempotencyKeys(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newKey = fn
		}
	}
}

// New constructs a bridge client. timeout bounds each HTTP round trip.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		newKey:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ provider.Client = (*Client)(nil)

func (c *Client) CreateCustomer(ctx context.Context, payload provider.CustomerPayload) provider.Result[provider.CustomerRef] {
	var ref provider.CustomerRef
	raw, perr := c.do(ctx, provider.OpCreateCustomer, http.MethodPost, "/v0/customers", payload, &ref)
	if perr != nil {
		return provider.Fail[provider.CustomerRef](perr)
	}
	if ref.ID == "" {
		return provider.Fail[provider.CustomerRef](provider.NewError(provider.ErrorContractMismatch, provider.OpCreateCustomer, "response missing customer id", nil))
	}
	ref.Raw = raw
	return provider.Ok(ref)
}

func (c *Client) UpdateCustomer(ctx context.Context, customerID string, payload provider.CustomerPayload) provider.Result[provider.CustomerRef] {
	var ref provider.CustomerRef
	raw, perr := c.do(ctx, provider.OpUpdateCustomer, http.MethodPut, customerPath(customerID), payload, &ref)
	if perr != nil {
		return provider.Fail[provider.CustomerRef](perr)
	}
	if ref.ID == "" {
		ref.ID = customerID
	}
	ref.Raw = raw
	return provider.Ok(ref)
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) provider.Result[provider.CustomerSnapshot] {
	var snap provider.CustomerSnapshot
	raw, perr := c.do(ctx, provider.OpGetCustomer, http.MethodGet, customerPath(customerID), nil, &snap)
	if perr != nil {
		return provider.Fail[provider.CustomerSnapshot](perr)
	}
	snap.Raw = raw
	return provider.Ok(snap)
}

type listEnvelope struct {
	Count int               `json:"count"`
	Data  []json.RawMessage `json:"data"`
}

func (c *Client) ListAssociatedPersons(ctx context.Context, customerID string) provider.Result[[]provider.PersonSnapshot] {
	var env listEnvelope
	_, perr := c.do(ctx, provider.OpListAssociatedPersons, http.MethodGet, customerPath(customerID)+"/associated_persons", nil, &env)
	if perr != nil {
		return provider.Fail[[]provider.PersonSnapshot](perr)
	}
	persons := make([]provider.PersonSnapshot, 0, len(env.Data))
	for _, item := range env.Data {
		var p provider.PersonSnapshot
		if err := json.Unmarshal(item, &p); err != nil {
			return provider.Fail[[]provider.PersonSnapshot](provider.NewError(provider.ErrorBadData, provider.OpListAssociatedPersons, "malformed associated person", err))
		}
		p.Raw = item
		persons = append(persons, p)
	}
	return provider.Ok(persons)
}

func (c *Client) CreateAssociatedPerson(ctx context.Context, customerID string, payload provider.PersonPayload) provider.Result[provider.PersonRef] {
	var ref provider.PersonRef
	raw, perr := c.do(ctx, provider.OpCreateAssociatedPerson, http.MethodPost, customerPath(customerID)+"/associated_persons", payload, &ref)
	if perr != nil {
		return provider.Fail[provider.PersonRef](perr)
	}
	if ref.ID == "" {
		return provider.Fail[provider.PersonRef](provider.NewError(provider.ErrorContractMismatch, provider.OpCreateAssociatedPerson, "response missing person id", nil))
	}
	if ref.Email == "" {
		ref.Email = payload.Email
	}
	ref.Raw = raw
	return provider.Ok(ref)
}

func (c *Client) IssueVerificationLink(ctx context.Context, customerID string) provider.Result[provider.LinkRef] {
	var body struct {
		URL     string `json:"url"`
		KYCLink string `json:"kyc_link"`
	}
	raw, perr := c.do(ctx, provider.OpIssueVerificationLink, http.MethodGet, customerPath(customerID)+"/kyc_link", nil, &body)
	if perr != nil {
		return provider.Fail[provider.LinkRef](perr)
	}
	link := body.URL
	if link == "" {
		link = body.KYCLink
	}
	if link == "" {
		return provider.Fail[provider.LinkRef](provider.NewError(provider.ErrorContractMismatch, provider.OpIssueVerificationLink, "response missing link url", nil))
	}
	return provider.Ok(provider.LinkRef{URL: link, Raw: raw})
}

func (c *Client) ListWebhooks(ctx context.Context) provider.Result[[]provider.WebhookRef] {
	var env struct {
		Data []provider.WebhookRef `json:"data"`
	}
	_, perr := c.do(ctx, provider.OpListWebhooks, http.MethodGet, "/v0/webhooks", nil, &env)
	if perr != nil {
		return provider.Fail[[]provider.WebhookRef](perr)
	}
	if env.Data == nil {
		env.Data = []provider.WebhookRef{}
	}
	return provider.Ok(env.Data)
}

func customerPath(id string) string {
	return "/v0/customers/" + url.PathEscape(id)
}

// do performs one request and decodes a 2xx body into out. It returns the raw
// body so callers can keep the exact provider response.
func (c *Client) do(ctx context.Context, op provider.Operation, method, path string, in, out any) (json.RawMessage, *provider.Error) {
	start := time.Now()
	raw, perr := c.roundTrip(ctx, op, method, path, in, out)
	if c.observer != nil {
		outcome := "ok"
		if perr != nil {
			outcome = string(perr.Category)
		}
		c.observer.ObserveProviderCall(string(op), outcome, time.Since(start))
	}
	return raw, perr
}

func (c *Client) roundTrip(ctx context.Context, op provider.Operation, method, path string, in, out any) (json.RawMessage, *provider.Error) {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, provider.NewError(provider.ErrorInternal, op, "failed to encode request", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, provider.NewError(provider.ErrorInternal, op, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set(headerIdempotencyKey, c.newKey())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, op, err)
	}
	return parseResponse(op, resp.StatusCode, respBody, out)
}

// parseResponse maps a status code and body onto the error taxonomy and
// decodes successful bodies into out.
func parseResponse(op provider.Operation, status int, body []byte, out any) (json.RawMessage, *provider.Error) {
	if status < 200 || status > 299 {
		return nil, statusError(op, status, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage(body), nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, provider.NewError(provider.ErrorBadData, op, "malformed response body", err).WithStatus(status)
	}
	return json.RawMessage(body), nil
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusError(op provider.Operation, status int, body []byte) *provider.Error {
	msg := http.StatusText(status)
	var ae apiError
	if json.Unmarshal(body, &ae) == nil && ae.Message != "" {
		msg = ae.Message
	}

	var category provider.ErrorCategory
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		category = provider.ErrorAuthentication
	case status == http.StatusNotFound:
		category = provider.ErrorNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		category = provider.ErrorValidation
	case status == http.StatusTooManyRequests:
		category = provider.ErrorRateLimited
	case status >= 500:
		category = provider.ErrorProviderOutage
	default:
		category = provider.ErrorContractMismatch
	}
	return provider.NewError(category, op, msg, fmt.Errorf("status %d", status)).WithStatus(status)
}

func transportError(ctx context.Context, op provider.Operation, err error) *provider.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return provider.NewError(provider.ErrorTimeout, op, "provider call timed out", err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return provider.NewError(provider.ErrorTimeout, op, "provider call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return provider.NewError(provider.ErrorInternal, op, "provider call canceled", err)
	}
	return provider.NewError(provider.ErrorProviderOutage, op, "provider unreachable", err)
}
