// Package client provides a Go client for the MCPHost HTTP API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcpjungle/mcphost/pkg/types"
)

const apiPathPrefix = "/api/v0"

// Client talks to a MCPHost server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the URL of the server this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is returned when the server answers with an unexpected status.
type APIError struct {
	StatusCode int
	Message    string
	// Code is the machine-readable error kind sent by the server, if any.
	Code string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status: %d, message: %s", e.StatusCode, e.Message)
}

// IsToolNotFound reports whether err means that no tool with the requested name exists.
func IsToolNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == types.ErrorCodeToolNotFound
}

// IsServerNotFound reports whether err means that the tool exists but no live server offers it.
func IsServerNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == types.ErrorCodeServerNotFound
}

// constructAPIEndpoint joins the API prefix and the given path onto the base URL.
func (c *Client) constructAPIEndpoint(p string) (string, error) {
	return url.JoinPath(c.baseURL, apiPathPrefix, p)
}

func (c *Client) newRequest(method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// parseErrorResponse turns a failed response into an *APIError.
// JSON error bodies are decoded, anything else is used verbatim as the message.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request failed with status: %d (failed to read body: %w)", resp.StatusCode, err)
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var errResp types.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
		apiErr.Code = errResp.Code
	}
	return apiErr
}

// do sends a request to an API endpoint, checks the response status and decodes the body into out.
// in and out may be nil.
func (c *Client) do(method, path string, query url.Values, in any, wantStatus int, out any) error {
	u, err := c.constructAPIEndpoint(path)
	if err != nil {
		return fmt.Errorf("failed to construct API endpoint for %s: %w", path, err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := c.newRequest(method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.parseErrorResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetServerMetadata fetches the version information of the server.
func (c *Client) GetServerMetadata() (*types.ServerMetadata, error) {
	req, err := c.newRequest(http.MethodGet, c.baseURL+"/metadata", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}
	var m types.ServerMetadata
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &m, nil
}
