package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ResponseError is returned when the backend answers with a non-2xx status
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("[BACKEND]: backend '%s %s' failed: %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client wraps calls to the SnapNotes backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// request is a single backend call under construction
type request struct {
	client      *Client
	ctx         context.Context
	method      string
	path        string
	in          any
	out         any
	body        io.Reader
	contentType string
	headers     map[string]string
}

// NewRequest starts building a JSON request. A nil out discards the response body.
func (c *Client) NewRequest(ctx context.Context, method, path string, in any, out any) *request {
	return &request{
		client:      c,
		ctx:         ctx,
		method:      method,
		path:        path,
		in:          in,
		out:         out,
		contentType: "application/json",
		headers:     map[string]string{},
	}
}

// WithApiKey authenticates the request with the X-API-KEY header
func (r *request) WithApiKey(key string) *request {
	if key != "" {
		r.headers["X-API-KEY"] = key
	}
	return r
}

// WithBody sends a raw body instead of JSON
func (r *request) WithBody(body io.Reader, contentType string) *request {
	r.body = body
	r.contentType = contentType
	return r
}

// doJSON performs the request and decodes the JSON response into out
func (r *request) doJSON() error {
	// Create request body if input is provided
	body := r.body
	if body == nil && r.in != nil {
		b, err := json.Marshal(r.in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(r.ctx, r.method, r.client.baseURL+r.path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", r.contentType)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	// Perform the request
	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// On error, read body and return error
		b, _ := io.ReadAll(resp.Body)
		return &ResponseError{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Body: string(b)}
	}

	// If no output expected, return early
	if r.out == nil {
		return nil
	}

	// Decode the response body into the output struct
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(r.out)
}
