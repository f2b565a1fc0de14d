// Package courier is the HTTP client of the external courier network.
package courier

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

	"github.com/prometheus/client_golang/prometheus"

	"marketplace-delivery/internal/domain"
)

// Provider operations, also used as metric labels.
const (
	OpQuote  = "quote"
	OpCreate = "create"
	OpStatus = "status"
	OpCancel = "cancel"
)

const (
	defaultAuthHeader = "X-DV-Auth-Token"
	defaultTimeout    = 10 * time.Second
	responseLimit     = 1 << 20
)

// Config holds provider endpoint and credentials.
type Config struct {
	BaseURL    string
	Token      string
	AuthHeader string
	Timeout    time.Duration
}

// Client talks to the courier provider. It never retries.
type Client struct {
	cfg      Config
	base     *url.URL
	http     *http.Client
	requests *prometheus.CounterVec
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRequestCounter records every call in a counter labelled by operation and result.
func WithRequestCounter(cv *prometheus.CounterVec) Option {
	return func(c *Client) { c.requests = cv }
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("courier client: empty base url")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("courier client: empty token")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("courier client: parse base url: %w", err)
	}
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = defaultAuthHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// QuotePrice asks the provider for the price of a job without creating it.
func (c *Client) QuotePrice(ctx context.Context, req JobRequest) (domain.Quote, error) {
	env, raw, err := c.do(ctx, OpQuote, http.MethodPost, "/calculate-order", nil, req)
	if err != nil {
		return domain.Quote{}, err
	}
	if env.Order == nil {
		return domain.Quote{}, c.fail(rejectedErr(OpQuote, "response has no order", raw))
	}
	q := domain.Quote{PaymentAmount: env.Order.PaymentAmount}
	for _, p := range env.Order.Points {
		if p.EstimatedArrivalDatetime != nil && p.EstimatedArrivalDatetime.After(q.ETA) {
			q.ETA = *p.EstimatedArrivalDatetime
		}
	}
	return q, nil
}

// CreateJob creates a delivery job.
func (c *Client) CreateJob(ctx context.Context, req JobRequest) (domain.CourierJob, error) {
	env, raw, err := c.do(ctx, OpCreate, http.MethodPost, "/create-order", nil, req)
	if err != nil {
		return domain.CourierJob{}, err
	}
	if env.Order == nil || env.Order.OrderID == "" {
		return domain.CourierJob{}, c.fail(rejectedErr(OpCreate, "response has no order id", raw))
	}
	o := env.Order
	return domain.CourierJob{
		JobID:             string(o.OrderID),
		Name:              o.OrderName,
		Status:            o.Status,
		StatusDescription: o.StatusDescription,
		PaymentAmount:     o.PaymentAmount,
		TrackingURLs:      trackingURLs(o.Points),
	}, nil
}

// GetStatus returns the live state of a job.
func (c *Client) GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	q := url.Values{"order_id": []string{jobID}}
	env, raw, err := c.do(ctx, OpStatus, http.MethodGet, "/orders", q, nil)
	if err != nil {
		return domain.JobStatus{}, err
	}
	o := env.Order
	if o == nil && len(env.Orders) > 0 {
		o = &env.Orders[0]
	}
	if o == nil {
		return domain.JobStatus{}, c.fail(rejectedErr(OpStatus, "job not found", raw))
	}
	return mapStatus(jobID, o), nil
}

// Cancel asks the provider to cancel a job.
func (c *Client) Cancel(ctx context.Context, jobID string) (domain.CancelAck, error) {
	env, _, err := c.do(ctx, OpCancel, http.MethodPost, "/cancel-order", nil, cancelRequest{OrderID: jobID})
	if err != nil {
		return domain.CancelAck{}, err
	}
	ack := domain.CancelAck{JobID: jobID, Status: domain.JobStatusCanceled}
	if env.Order != nil && env.Order.Status != "" {
		ack.Status = env.Order.Status
	}
	return ack, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (*envelope, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, c.fail(transportErr(op, "encode request", nil, err))
		}
		reader = bytes.NewReader(b)
	}

	u := *c.base
	u.Path += path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, nil, c.fail(transportErr(op, "build request", nil, err))
	}
	req.Header.Set(c.cfg.AuthHeader, c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, c.fail(transportErr(op, "request failed", nil, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseLimit))
	if err != nil {
		return nil, nil, c.fail(transportErr(op, "read response", nil, err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, raw, c.fail(transportErr(op, "unauthorized", raw, nil))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, raw, c.fail(transportErr(op, fmt.Sprintf("http status %d", resp.StatusCode), raw, nil))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, raw, c.fail(transportErr(op, "decode response", raw, err))
	}
	if !env.IsSuccessful {
		return nil, raw, c.fail(rejectedErr(op, rejectReason(env, resp.StatusCode), raw))
	}

	c.observe(op, "ok")
	return &env, raw, nil
}

func (c *Client) fail(e *CourierError) *CourierError {
	c.observe(e.Op, e.Kind.String())
	return e
}

func (c *Client) observe(op, result string) {
	if c.requests != nil {
		c.requests.WithLabelValues(op, result).Inc()
	}
}

func rejectReason(env envelope, status int) string {
	if len(env.Errors) > 0 {
		return strings.Join(env.Errors, ", ")
	}
	return fmt.Sprintf("is_successful=false (http %d)", status)
}

func trackingURLs(points []wirePoint) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		if u := strings.TrimSpace(p.TrackingURL); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func mapStatus(jobID string, o *wireOrder) domain.JobStatus {
	st := domain.JobStatus{
		JobID:             jobID,
		Status:            o.Status,
		StatusDescription: o.StatusDescription,
		TrackingURLs:      trackingURLs(o.Points),
		Points:            make([]domain.PointStatus, 0, len(o.Points)),
	}
	if o.OrderID != "" {
		st.JobID = string(o.OrderID)
	}
	if o.Courier != nil {
		st.Courier = &domain.CourierInfo{
			Name:      strings.TrimSpace(o.Courier.Name + " " + o.Courier.Surname),
			Phone:     o.Courier.Phone,
			Latitude:  o.Courier.Latitude,
			Longitude: o.Courier.Longitude,
		}
	}
	for _, p := range o.Points {
		st.Points = append(st.Points, domain.PointStatus{
			Address:          p.Address,
			Status:           p.Status,
			EstimatedArrival: p.EstimatedArrivalDatetime,
			ContactPerson:    p.ContactPerson.Name,
			TrackingURL:      p.TrackingURL,
		})
	}
	return st
}
