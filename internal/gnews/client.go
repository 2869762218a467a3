// Package gnews implements the HTTP client for the GNews v4 API and the
// canonical article types returned to tool callers.
//
// The client performs a single GET per call and maps the upstream response
// into an Envelope. It never retries and never touches the cache; both
// concerns belong to the calling service.
package gnews

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the GNews v4 API root.
	DefaultBaseURL = "https://gnews.io/api/v4"

	// EndpointSearch and EndpointHeadlines are the two upstream endpoints
	// this client knows how to call.
	EndpointSearch    = "search"
	EndpointHeadlines = "top-headlines"

	// defaultTimeout bounds a single upstream call. Expiry surfaces as a
	// NetworkError rather than hanging the tool invocation.
	defaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an upstream error body is carried in
	// an UpstreamError message.
	maxErrorBody = 300
)

// Client calls the GNews API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a GNews client. Pass "" for baseURL to use the public
// API endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

// Search fetches articles matching the given search parameters.
func (c *Client) Search(ctx context.Context, p SearchParams) (*Envelope, error) {
	return c.fetch(ctx, EndpointSearch, p.Values())
}

// TopHeadlines fetches the current top headlines.
func (c *Client) TopHeadlines(ctx context.Context, p HeadlinesParams) (*Envelope, error) {
	return c.fetch(ctx, EndpointHeadlines, p.Values())
}

// gnewsArticle is the GNews wire format for a single article.
type gnewsArticle struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Image       *string `json:"image"`
	PublishedAt string  `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// gnewsResponse is the GNews wire format for both endpoints.
type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

// gnewsErrorResponse is the GNews wire format for failure responses.
type gnewsErrorResponse struct {
	Errors []string `json:"errors"`
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) (*Envelope, error) {
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, c.upstreamError(httpResp)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var wire gnewsResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &UpstreamError{
			StatusCode: httpResp.StatusCode,
			Message:    err.Error(),
			Parse:      true,
		}
	}

	return normalize(wire), nil
}

// upstreamError builds an UpstreamError from a non-2xx response. GNews
// reports failures as {"errors": [...]}; fall back to the raw body when the
// error shape does not decode.
func (c *Client) upstreamError(resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var wire gnewsErrorResponse
	if err := json.Unmarshal(body, &wire); err == nil && len(wire.Errors) > 0 {
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    strings.Join(wire.Errors, "; "),
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
}

// normalize maps the GNews wire format to the canonical Envelope, preserving
// upstream article order. When the upstream omits totalArticles, the article
// count stands in for it.
func normalize(wire gnewsResponse) *Envelope {
	articles := make([]Article, 0, len(wire.Articles))
	for _, a := range wire.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			Image:       a.Image,
		})
	}

	total := wire.TotalArticles
	if total == 0 {
		total = len(articles)
	}
	return &Envelope{Total: total, Articles: articles}
}
