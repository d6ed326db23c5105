// Package api is the web process's client for the JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/validation"
)

// Error is a non-2xx API response.
type Error struct {
	Status     int                   `json:"-"`
	Code       string                `json:"error"`
	Message    string                `json:"message"`
	Violations validation.Violations `json:"violations,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api request failed: %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL + "/api/v1",
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) Catalog(ctx context.Context) (pricing.Catalog, error) {
	var out pricing.Catalog
	err := c.do(ctx, http.MethodGet, "/catalog", "", nil, &out)
	return out, err
}

func (c *Client) Preview(ctx context.Context, in pricing.QuoteInput) (pricing.Breakdown, error) {
	var out pricing.Breakdown
	err := c.do(ctx, http.MethodPost, "/quotations/preview", "", in, &out)
	return out, err
}

func (c *Client) SubmitQuoteRequest(ctx context.Context, r domain.QuoteRequest) (domain.QuoteRequest, error) {
	var out domain.QuoteRequest
	err := c.do(ctx, http.MethodPost, "/quote-requests", "", r, &out)
	return out, err
}

func (c *Client) SignUp(ctx context.Context, in service.SignUpInput) (domain.Partner, error) {
	var out domain.Partner
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", in, &out)
	return out, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (service.Session, error) {
	var out service.Session
	err := c.do(ctx, http.MethodPost, "/auth/signin", "", map[string]string{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/signout", token, nil, nil)
}

func (c *Client) Quotations(ctx context.Context, token string) ([]domain.Quotation, error) {
	var out []domain.Quotation
	err := c.do(ctx, http.MethodGet, "/partner/quotations", token, nil, &out)
	return out, err
}

func (c *Client) SubmitQuotation(ctx context.Context, token string, in service.QuotationInput) (domain.Quotation, error) {
	var out domain.Quotation
	err := c.do(ctx, http.MethodPost, "/partner/quotations", token, in, &out)
	return out, err
}

func (c *Client) UpdateStatus(ctx context.Context, token, id string, status domain.QuotationStatus) (domain.Quotation, error) {
	var out domain.Quotation
	err := c.do(ctx, http.MethodPatch, "/partner/quotations/"+url.PathEscape(id)+"/status", token,
		map[string]domain.QuotationStatus{"status": status}, &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context, token string) (domain.Summary, error) {
	var out domain.Summary
	err := c.do(ctx, http.MethodGet, "/partner/summary", token, nil, &out)
	return out, err
}

func (c *Client) Document(ctx context.Context, token, id string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, http.MethodGet, "/partner/quotations/"+url.PathEscape(id)+"/document", token, nil, &out)
	return out.URL, err
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
