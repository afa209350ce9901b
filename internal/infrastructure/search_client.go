package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"azure-devops-mcp-server/internal/domain"
)

const searchAPIVersion = "7.1"

// defaultSearchTop is the page size used when the caller does not set one.
const defaultSearchTop = 10

// SearchClient handles the almsearch REST API.
// The Go SDK has no search package, so requests are built by hand.
type SearchClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSearchClient creates a new search client.
// The baseURL is the organization's almsearch root (e.g., "https://almsearch.dev.azure.com/myorg").
// The httpClient should be an authenticated client from the AuthenticationManager.
func NewSearchClient(baseURL string, httpClient *http.Client) *SearchClient {
	return &SearchClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured almsearch root.
func (c *SearchClient) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request with authentication.
func (c *SearchClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// searchBody is the request payload shared by all search indexes.
type searchBody struct {
	SearchText    string              `json:"searchText"`
	Skip          int                 `json:"$skip"`
	Top           int                 `json:"$top"`
	Filters       map[string][]string `json:"filters,omitempty"`
	IncludeFacets bool                `json:"includeFacets"`
}

// Search runs a query against one search index and returns the decoded response.
func (c *SearchClient) Search(ctx context.Context, kind domain.SearchKind, req domain.SearchRequest) (map[string]interface{}, error) {
	resource, err := searchResource(kind)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL
	if req.Project != "" {
		endpoint = fmt.Sprintf("%s/%s", endpoint, url.PathEscape(req.Project))
	}
	endpoint = fmt.Sprintf("%s/_apis/search/%s?api-version=%s", endpoint, resource, searchAPIVersion)

	top := req.Top
	if top <= 0 {
		top = defaultSearchTop
	}
	body := searchBody{
		SearchText: req.Text,
		Skip:       req.Skip,
		Top:        top,
	}
	if req.Project != "" {
		body.Filters = map[string][]string{"Project": {req.Project}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, domain.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), string(respBody))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

func searchResource(kind domain.SearchKind) (string, error) {
	switch kind {
	case domain.SearchCode:
		return "codesearchresults", nil
	case domain.SearchWiki:
		return "wikisearchresults", nil
	case domain.SearchWorkItem:
		return "workitemsearchresults", nil
	default:
		return "", fmt.Errorf("unsupported search kind %q", kind)
	}
}
