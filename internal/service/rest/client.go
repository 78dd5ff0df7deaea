// Package rest is the authenticated client for the tenant server's REST API.
//
// Every call is a single request/response exchange; request and response
// bodies are XML in the server's namespace, and authenticated calls carry
// the session token in the X-Tableau-Auth header.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Session identifies one signed-in authentication context: an opaque token
// plus the id of the site the token is currently scoped to. Sessions are
// immutable values; SignIn and SwitchSite return a new one rather than
// mutating in place. The zero value is not signed in.
type Session struct {
	Token  string
	SiteID string
}

// Client talks to one server. It is safe for sequential use; the tool never
// issues concurrent calls.
type Client struct {
	baseURL string
	version string
	http    *http.Client

	// strict extends status checking to the read calls that were
	// historically unchecked (site list, group list, group users).
	strict bool
}

// NewClient returns a client for the given server address and API version.
// A zero timeout leaves the underlying HTTP client without a deadline, so a
// stalled server blocks the call until its context is cancelled.
func NewClient(serverURL, version string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		version: version,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetStrict toggles status checking for the historically lenient read calls.
func (c *Client) SetStrict(strict bool) {
	c.strict = strict
}

func (c *Client) endpoint(parts ...string) string {
	return c.baseURL + "/api/" + c.version + "/" + strings.Join(parts, "/")
}

// do issues one request and returns the response status and full body.
// token is added as the auth header when non-empty.
func (c *Client) do(ctx context.Context, method, url, token string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if token != "" {
		req.Header.Set("X-Tableau-Auth", token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/xml")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
