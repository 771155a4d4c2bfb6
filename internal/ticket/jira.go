package ticket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// JiraOptions configures JiraClient.
type JiraOptions struct {
	BaseURL  string
	Email    string // with Token: basic auth (Cloud); empty: bearer PAT (Server/DC)
	Token    string
	Timeout  time.Duration
	RetryMax int
}

// JiraClient reads issue summaries from the Jira REST API v2.
type JiraClient struct {
	opts JiraOptions
	http *retryablehttp.Client
}

// APIError is a non-success response from Jira.
type APIError struct {
	StatusCode    int
	ErrorMessages []string `json:"errorMessages"`
}

func (e *APIError) Error() string {
	if len(e.ErrorMessages) > 0 {
		return fmt.Sprintf("jira api error (%d): %s", e.StatusCode, e.ErrorMessages[0])
	}
	return fmt.Sprintf("jira api error (%d)", e.StatusCode)
}

// NewJiraClient returns a client that retries transient failures.
func NewJiraClient(opts JiraOptions) *JiraClient {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 3
	if opts.RetryMax > 0 {
		rc.RetryMax = opts.RetryMax
	}
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	// hand the final response back instead of a generic "giving up" error
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	return &JiraClient{opts: opts, http: rc}
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
	} `json:"fields"`
}

// FetchSummary implements Lookup.
func (c *JiraClient) FetchSummary(ctx context.Context, id string) (string, error) {
	endpoint := c.opts.BaseURL + "/rest/api/2/issue/" + url.PathEscape(id) + "?fields=summary"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s: %w", id, ErrTicketNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return "", apiErr
	}

	var issue issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return "", fmt.Errorf("decode issue: %w", err)
	}
	return strings.TrimSpace(issue.Fields.Summary), nil
}

func (c *JiraClient) setAuth(req *retryablehttp.Request) {
	switch {
	case c.opts.Token == "":
	case c.opts.Email != "":
		credentials := c.opts.Email + ":" + c.opts.Token
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))
	default:
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
}
