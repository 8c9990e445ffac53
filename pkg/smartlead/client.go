// Package smartlead provides access to the Smartlead campaign API.
// Leads are added in batches of at most MaxBatchSize per call; the API
// authenticates with an api_key query parameter.
package smartlead

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Smartlead v1 API.
const defaultBaseURL = "https://server.smartlead.ai/api/v1"

// MaxBatchSize is the largest lead batch Smartlead accepts per call.
const MaxBatchSize = 100

// Client defines the Smartlead API operations used by the sender.
type Client interface {
	AddLeads(ctx context.Context, campaignID string, req AddLeadsRequest) (*AddLeadsResponse, error)
	GetCampaign(ctx context.Context, campaignID string) (*Campaign, error)
}

// Lead is a single campaign lead in Smartlead's wire shape.
type Lead struct {
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	CompanyName  string            `json:"company_name"`
	CustomFields map[string]string `json:"custom_fields"`
}

// Settings controls Smartlead-side dedupe behavior for an upload.
type Settings struct {
	IgnoreGlobalBlockList            bool `json:"ignore_global_block_list"`
	IgnoreUnsubscribeList            bool `json:"ignore_unsubscribe_list"`
	IgnoreDuplicateLeadsInOtherCamps bool `json:"ignore_duplicate_leads_in_other_campaign"`
}

// AddLeadsRequest is the body for POST /campaigns/{id}/leads.
type AddLeadsRequest struct {
	LeadList []Lead   `json:"lead_list"`
	Settings Settings `json:"settings"`
}

// AddLeadsResponse reports per-batch upload counts.
type AddLeadsResponse struct {
	OK                     bool `json:"ok"`
	TotalLeads             int  `json:"total_leads"`
	AlreadyAddedToCampaign int  `json:"already_added_to_campaign"`
	InvalidEmailCount      int  `json:"invalid_email_count"`
}

// Campaign is the campaign detail record.
type Campaign struct {
	ID     json.Number `json:"id"`
	Name   string      `json:"name"`
	Status string      `json:"status"`
}

// APIError is returned when Smartlead responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("smartlead: HTTP %d: %s", e.StatusCode, e.Body)
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

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Smartlead client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) AddLeads(ctx context.Context, campaignID string, req AddLeadsRequest) (*AddLeadsResponse, error) {
	if len(req.LeadList) > MaxBatchSize {
		return nil, eris.Errorf("smartlead: batch of %d exceeds max %d", len(req.LeadList), MaxBatchSize)
	}

	var resp AddLeadsResponse
	path := fmt.Sprintf("/campaigns/%s/leads", url.PathEscape(campaignID))
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("smartlead: add leads to campaign %s", campaignID))
	}
	return &resp, nil
}

func (c *httpClient) GetCampaign(ctx context.Context, campaignID string) (*Campaign, error) {
	var resp Campaign
	path := fmt.Sprintf("/campaigns/%s", url.PathEscape(campaignID))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("smartlead: get campaign %s", campaignID))
	}
	return &resp, nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urlFor(path), bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.urlFor(path), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	return c.do(req, out)
}

func (c *httpClient) urlFor(path string) string {
	return c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey)
}

func (c *httpClient) do(req *http.Request, out any) error {
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
