// Package hunter provides access to the Hunter.io v2 API: company
// domain resolution, firmographics, contact discovery, and email
// verification. Hunter authenticates with an api_key query parameter.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Default base URL for the Hunter v2 API.
const defaultBaseURL = "https://api.hunter.io/v2"

// Client defines the Hunter API operations used by the pipeline.
type Client interface {
	DomainSearch(ctx context.Context, req DomainSearchRequest) (*DomainSearchData, error)
	CompanyFind(ctx context.Context, domain string) (*CompanyData, error)
	VerifyEmail(ctx context.Context, email string) (*VerificationData, error)
}

// DomainSearchRequest selects a company by name or domain and
// optionally narrows the returned emails.
type DomainSearchRequest struct {
	Company   string
	Domain    string
	Limit     int
	Seniority string // e.g. "senior"
	Type      string // "personal" or "generic"
}

// DomainSearchData is the data block of a domain-search response.
type DomainSearchData struct {
	Domain       string        `json:"domain"`
	Organization string        `json:"organization"`
	Emails       []EmailResult `json:"emails"`
}

// EmailResult is a single discovered contact.
type EmailResult struct {
	Value      string `json:"value"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Seniority  string `json:"seniority"`
	Confidence int    `json:"confidence"`
}

// CompanyData is the data block of a companies/find response.
type CompanyData struct {
	Domain      string         `json:"domain"`
	Name        string         `json:"name"`
	Industry    string         `json:"industry"`
	Sector      string         `json:"sector"`
	Description string         `json:"description"`
	Metrics     CompanyMetrics `json:"metrics"`
}

// CompanyMetrics carries firmographic figures; Employees is a bucketed
// range token such as "51-200" or "1K-5K".
type CompanyMetrics struct {
	Employees string `json:"employees"`
}

// VerificationData is the data block of an email-verifier response.
type VerificationData struct {
	Status string `json:"status"` // valid, invalid, accept_all, unknown
	Result string `json:"result"`
	Score  int    `json:"score"`
	Email  string `json:"email"`
}

// Verified reports whether the verification outcome is deliverable
// enough to send to: valid always, accept_all only above minScore
// (catch-all domains cannot confirm a mailbox exists).
func (v *VerificationData) Verified(minScore int) bool {
	return v.Status == "valid" || (v.Status == "accept_all" && v.Score >= minScore)
}

// APIError is returned when Hunter responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunter: HTTP %d: %s", e.StatusCode, e.Body)
}

// envelope wraps every Hunter response body.
type envelope[T any] struct {
	Data T `json:"data"`
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Hunter client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) DomainSearch(ctx context.Context, req DomainSearchRequest) (*DomainSearchData, error) {
	params := url.Values{}
	if req.Company != "" {
		params.Set("company", req.Company)
	}
	if req.Domain != "" {
		params.Set("domain", req.Domain)
	}
	if req.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Seniority != "" {
		params.Set("seniority", req.Seniority)
	}
	if req.Type != "" {
		params.Set("type", req.Type)
	}

	var resp envelope[DomainSearchData]
	if err := c.get(ctx, "/domain-search", params, &resp); err != nil {
		return nil, eris.Wrap(err, "hunter: domain search")
	}
	return &resp.Data, nil
}

func (c *httpClient) CompanyFind(ctx context.Context, domain string) (*CompanyData, error) {
	params := url.Values{}
	params.Set("domain", domain)

	var resp envelope[CompanyData]
	if err := c.get(ctx, "/companies/find", params, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("hunter: company find %s", domain))
	}
	return &resp.Data, nil
}

func (c *httpClient) VerifyEmail(ctx context.Context, email string) (*VerificationData, error) {
	params := url.Values{}
	params.Set("email", email)

	var resp envelope[VerificationData]
	if err := c.get(ctx, "/email-verifier", params, &resp); err != nil {
		return nil, eris.Wrap(err, "hunter: verify email")
	}
	return &resp.Data, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limit wait")
		}
	}

	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
