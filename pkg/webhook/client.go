// Package webhook calls the research tool the wizard leans on for site data.
// There is one fixed endpoint; the function field in the POST body selects
// the operation and implies the response shape.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scribewise/scribewise/pkg/adapter"
	"github.com/scribewise/scribewise/pkg/normalize"
	"github.com/scribewise/scribewise/pkg/retry"
	"github.com/tidwall/gjson"
)

// Function selects a webhook operation.
type Function string

const (
	FuncInternalLinks      Function = "internal_links"
	FuncRankedKeywords     Function = "ranked_keywords"
	FuncKeywordSuggestions Function = "keyword_suggestions"
	FuncPassthrough        Function = "passthrough"
)

// Request is the POST body the endpoint expects.
type Request struct {
	Function Function `json:"function"`
	URL      string   `json:"url,omitempty"`
	Country  string   `json:"country,omitempty"`
	Language string   `json:"language,omitempty"`
	Keyword  string   `json:"keyword,omitempty"`
}

// Client talks to the webhook endpoint with retry on transient failures.
type Client struct {
	endpoint string
	http     *http.Client
	policy   retry.Policy
	log      *slog.Logger
}

// NewClient creates a webhook client for the given endpoint.
func NewClient(endpoint string, policy retry.Policy, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 5 * time.Minute},
		policy:   policy,
		log:      log,
	}
}

// InternalLinks fetches linkable pages for a site.
func (c *Client) InternalLinks(ctx context.Context, siteURL string) ([]normalize.InternalLink, error) {
	body, err := c.call(ctx, Request{Function: FuncInternalLinks, URL: siteURL})
	if err != nil {
		return nil, err
	}
	if body == "" {
		return []normalize.InternalLink{}, nil
	}
	v, err := parseBody(FuncInternalLinks, body)
	if err != nil {
		return nil, err
	}
	return normalize.InternalLinks(v, c.log), nil
}

// RankedKeywords fetches the keywords a page currently ranks for.
func (c *Client) RankedKeywords(ctx context.Context, siteURL, country, language string) ([]normalize.RankedKeyword, error) {
	body, err := c.call(ctx, Request{
		Function: FuncRankedKeywords,
		URL:      siteURL,
		Country:  country,
		Language: language,
	})
	if err != nil {
		return nil, err
	}
	if body == "" {
		return []normalize.RankedKeyword{}, nil
	}
	v, err := parseBody(FuncRankedKeywords, body)
	if err != nil {
		return nil, err
	}
	return normalize.RankedKeywords(v, c.log), nil
}

// KeywordSuggestions fetches related keyword ideas for a seed keyword.
func (c *Client) KeywordSuggestions(ctx context.Context, keyword, country, language string) ([]string, error) {
	body, err := c.call(ctx, Request{
		Function: FuncKeywordSuggestions,
		Keyword:  keyword,
		Country:  country,
		Language: language,
	})
	if err != nil {
		return nil, err
	}
	if body == "" {
		return []string{}, nil
	}
	v, err := parseBody(FuncKeywordSuggestions, body)
	if err != nil {
		return nil, err
	}
	return normalize.SuggestedKeywords(v, c.log), nil
}

// Passthrough sends an arbitrary request and hands the body back untouched.
func (c *Client) Passthrough(ctx context.Context, req Request) (string, error) {
	req.Function = FuncPassthrough
	return c.call(ctx, req)
}

func (c *Client) call(ctx context.Context, req Request) (string, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.post(ctx, req)
	})
}

func (c *Client) post(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal webhook request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("webhook %s: %w", req.Function, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("webhook call failed",
			"function", req.Function,
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(body)),
		)
		return "", &adapter.AdapterError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("webhook %s returned status %d", req.Function, resp.StatusCode),
		}
	}

	// An empty body is an empty result, not an error.
	return strings.TrimSpace(string(body)), nil
}

func parseBody(fn Function, body string) (gjson.Result, error) {
	if !gjson.Valid(body) {
		return gjson.Result{}, fmt.Errorf("webhook %s returned malformed JSON", fn)
	}
	return gjson.Parse(body), nil
}
