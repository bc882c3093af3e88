package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/flxbl-io/sfops-migrator/internal/debug"
)

// backOffFactory returns a fresh backoff policy; BackOff implementations are stateful.
type backOffFactory func() backoff.BackOff

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = RetryDelay
	bo.MaxElapsedTime = 2 * time.Minute
	return bo
}

// NewClient creates a new GitHub client.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		MaxRetries: MaxRetries,
		newBackOff: defaultBackOff,
	}
}

func (c *Client) clone() *Client {
	cp := *c
	return &cp
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	cp := c.clone()
	cp.HTTPClient = httpClient
	return cp
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	cp := c.clone()
	cp.BaseURL = baseURL
	return cp
}

// WithRetryPolicy returns a new client with a custom retry budget and backoff.
// A nil factory keeps the current backoff.
func (c *Client) WithRetryPolicy(maxRetries int, newBackOff func() backoff.BackOff) *Client {
	cp := c.clone()
	cp.MaxRetries = maxRetries
	if newBackOff != nil {
		cp.newBackOff = newBackOff
	}
	return cp
}

// repoPath returns the "/repos/owner/repo" path prefix.
func (c *Client) repoPath() string {
	return "/repos/" + url.PathEscape(c.Owner) + "/" + url.PathEscape(c.Repo)
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// isRetryableStatus reports whether a response status is worth another attempt.
// GitHub signals rate limiting with 429, or 403 plus X-RateLimit-Remaining: 0.
func isRetryableStatus(resp *http.Response) bool {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return true
	case resp.StatusCode >= 500:
		return true
	}
	return false
}

// doRequest performs an HTTP request with authentication and retry logic.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}) ([]byte, http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var (
		respBody    []byte
		respHeaders http.Header
		attempt     int
	)
	op := func() error {
		attempt++
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", APIVersion)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("request failed (attempt %d/%d): %w", attempt, c.MaxRetries+1, err)
		}

		const maxResponseSize = 50 * 1024 * 1024
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response (attempt %d/%d): %w", attempt, c.MaxRetries+1, err)
		}

		debug.Logf("github: %s %s -> %d (attempt %d)\n", method, urlStr, resp.StatusCode, attempt)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := newAPIError(method, urlStr, resp.StatusCode, data)
			if isRetryableStatus(resp) {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		respBody, respHeaders = data, resp.Header
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.MaxRetries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, nil, err
	}
	return respBody, respHeaders, nil
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// hasNextPage checks the Link header for a next page URL and returns it.
func hasNextPage(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// ListVariables retrieves every Actions variable of the repository,
// following pagination until GitHub stops advertising a next page.
func (c *Client) ListVariables(ctx context.Context) ([]Variable, error) {
	var all []Variable
	page := 1

	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		params := map[string]string{
			"per_page": strconv.Itoa(VariablesPageSize),
			"page":     strconv.Itoa(page),
		}
		urlStr := c.buildURL(c.repoPath()+"/actions/variables", params)
		respBody, headers, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list variables: %w", err)
		}

		var result variablesPage
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to parse variables response: %w", err)
		}
		all = append(all, result.Variables...)

		if _, ok := hasNextPage(headers); !ok {
			break
		}
		page++

		if page > MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}

	debug.Logf("github: listed %d variables in %d page(s)\n", len(all), page)
	return all, nil
}

// GetVariable retrieves a single repository variable by name.
// A missing variable yields an error matching ErrNotFound.
func (c *Client) GetVariable(ctx context.Context, name string) (*Variable, error) {
	urlStr := c.buildURL(c.repoPath()+"/actions/variables/"+url.PathEscape(name), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get variable %s: %w", name, err)
	}

	var v Variable
	if err := json.Unmarshal(respBody, &v); err != nil {
		return nil, fmt.Errorf("failed to parse variable response: %w", err)
	}
	return &v, nil
}

// CreateVariable creates a repository variable.
func (c *Client) CreateVariable(ctx context.Context, name, value string) error {
	urlStr := c.buildURL(c.repoPath()+"/actions/variables", nil)
	reqBody := map[string]string{
		"name":  name,
		"value": value,
	}
	if _, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody); err != nil {
		return fmt.Errorf("failed to create variable %s: %w", name, err)
	}
	return nil
}

// DeleteVariable deletes a repository variable.
func (c *Client) DeleteVariable(ctx context.Context, name string) error {
	urlStr := c.buildURL(c.repoPath()+"/actions/variables/"+url.PathEscape(name), nil)
	if _, _, err := c.doRequest(ctx, http.MethodDelete, urlStr, nil); err != nil {
		return fmt.Errorf("failed to delete variable %s: %w", name, err)
	}
	return nil
}

// FetchIssueByNumber retrieves a single issue by its number.
func (c *Client) FetchIssueByNumber(ctx context.Context, number int) (*Issue, error) {
	urlStr := c.buildURL(c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse issue response: %w", err)
	}

	return &issue, nil
}

// UpdateIssueBody replaces the body of an issue.
// GitHub uses PATCH for issue updates.
func (c *Client) UpdateIssueBody(ctx context.Context, number int, body string) (*Issue, error) {
	urlStr := c.buildURL(c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPatch, urlStr, map[string]string{"body": body})
	if err != nil {
		return nil, fmt.Errorf("failed to update issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}

	return &issue, nil
}
