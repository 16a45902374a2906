// Package payment talks to the hosted checkout provider: it opens and
// expires checkout sessions and authenticates settlement webhooks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/metrics"
	"github.com/ncobase/recruit/net/httpclient"
	"github.com/tidwall/gjson"
)

// SessionRequest describes the purchase a checkout session is opened for.
type SessionRequest struct {
	JobPostingID string
	PurchaseID   string
	Title        string
	AmountCents  int64
	Currency     string
}

// Session is a provider checkout session.
type Session struct {
	ID  string
	URL string
}

// Gateway is the provider surface the purchase flow depends on.
type Gateway interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
	ExpireSession(ctx context.Context, sessionID string) error
}

// Client implements Gateway over the provider's REST API.
type Client struct {
	http       *httpclient.Client
	successURL string
	cancelURL  string
	metrics    *metrics.Metrics
}

// NewClient creates a provider client.
func NewClient(cfg *config.Payment, m *metrics.Metrics) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("payment: base_url is not configured")
	}
	return &Client{
		http: httpclient.New(httpclient.Options{
			Name:    "payment",
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}),
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		metrics:    m,
	}, nil
}

type createSessionBody struct {
	Mode        string            `json:"mode"`
	AmountCents int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url,omitempty"`
	CancelURL   string            `json:"cancel_url,omitempty"`
	Reference   string            `json:"client_reference_id"`
	Metadata    map[string]string `json:"metadata"`
}

// CreateSession opens a checkout session. The posting id travels in the
// session metadata and comes back in the settlement webhook.
func (c *Client) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	body, err := c.http.Do(ctx, http.MethodPost, "/v1/checkout/sessions", &createSessionBody{
		Mode:        "payment",
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Title,
		SuccessURL:  c.successURL,
		CancelURL:   c.cancelURL,
		Reference:   req.PurchaseID,
		Metadata: map[string]string{
			"job_posting_id": req.JobPostingID,
			"purchase_id":    req.PurchaseID,
		},
	})
	c.metrics.Upstream("payment", err)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	res := gjson.ParseBytes(body)
	s := &Session{ID: res.Get("id").String(), URL: res.Get("url").String()}
	if s.ID == "" || s.URL == "" {
		return nil, fmt.Errorf("create checkout session: incomplete response %s", body)
	}
	return s, nil
}

// ExpireSession closes a session that will never be used.
func (c *Client) ExpireSession(ctx context.Context, sessionID string) error {
	_, err := c.http.Do(ctx, http.MethodPost, "/v1/checkout/sessions/"+url.PathEscape(sessionID)+"/expire", nil)
	c.metrics.Upstream("payment", err)
	if err != nil {
		return fmt.Errorf("expire checkout session %s: %w", sessionID, err)
	}
	return nil
}
