package sdk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/snapnotes/pkg/session"
)

var (
	// ErrSessionFailed is returned by WaitForResult when processing ended in failure
	ErrSessionFailed = errors.New("session processing failed")

	// ErrResultTimeout is returned by WaitForResult when the session is still processing at the deadline
	ErrResultTimeout = errors.New("timed out waiting for results")
)

// Helper to turn a non-success envelope into an error
func checkStatus[T any](out ApiResponse[T], action string) error {
	switch out.Status {
	case api_types.StatusFail:
		return fmt.Errorf("failed to %s: %s", action, out.Message)
	case api_types.StatusError:
		return fmt.Errorf("error trying to %s (%s): %v", action, out.Message, out.Error)
	}
	return nil
}

// CreateSession starts a new capture session
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*session.Session, error) {
	path := "/api/sessions"
	if req == nil {
		req = &CreateSessionRequest{}
	}

	var out ApiResponse[session.Session]
	if err := c.NewRequest(ctx, http.MethodPost, path, req, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		return nil, err
	}
	if err := checkStatus(out, "create session"); err != nil {
		return nil, err
	}

	if out.Data.ID == "" {
		return nil, fmt.Errorf("no id returned")
	}

	return &out.Data, nil
}

// StopSession ends capture and starts processing on the server
func (c *Client) StopSession(ctx context.Context, id string) (*session.Session, error) {
	path := fmt.Sprintf("/api/sessions/%s/stop", url.PathEscape(id))

	var out ApiResponse[session.Session]
	if err := c.NewRequest(ctx, http.MethodPost, path, nil, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		return nil, err
	}
	if err := checkStatus(out, "stop session"); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// GetSession gets a session by id
func (c *Client) GetSession(ctx context.Context, id string) (*session.Session, error) {
	path := fmt.Sprintf("/api/sessions/%s", url.PathEscape(id))

	var out ApiResponse[session.Session]
	if err := c.NewRequest(ctx, http.MethodGet, path, nil, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		return nil, err
	}
	if err := checkStatus(out, "get session"); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// ListSessions lists sessions newest first
func (c *Client) ListSessions(ctx context.Context, limit, offset int) (*SessionListResponse, error) {
	path := fmt.Sprintf("/api/sessions?limit=%d&offset=%d", limit, offset)

	var out ApiResponse[SessionListResponse]
	if err := c.NewRequest(ctx, http.MethodGet, path, nil, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		return nil, err
	}
	if err := checkStatus(out, "list sessions"); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// GetResult gets the result of a session. A nil result means it is not ready yet.
func (c *Client) GetResult(ctx context.Context, id string) (*session.Result, error) {
	path := fmt.Sprintf("/api/sessions/%s/results", url.PathEscape(id))

	var out ApiResponse[session.Result]
	if err := c.NewRequest(ctx, http.MethodGet, path, nil, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := checkStatus(out, "get result"); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// SubmitText submits typed or pasted notes for processing
func (c *Client) SubmitText(ctx context.Context, content string) (*SubmitResponse, error) {
	return c.submit(ctx, "/api/manual/text", &TextSubmitRequest{Content: content})
}

// SubmitTranscript submits an audio transcript for processing
func (c *Client) SubmitTranscript(ctx context.Context, transcript string) (*SubmitResponse, error) {
	return c.submit(ctx, "/api/manual/transcript", &TranscriptSubmitRequest{Transcript: transcript})
}

// SubmitDocument uploads a document for text extraction and processing
func (c *Client) SubmitDocument(ctx context.Context, fileName string, data []byte) (*SubmitResponse, error) {
	path := "/api/manual/document"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out ApiResponse[SubmitResponse]
	if err := c.NewRequest(ctx, http.MethodPost, path, nil, &out).
		WithApiKey(c.apiKey).
		WithBody(&buf, writer.FormDataContentType()).
		doJSON(); err != nil {
		return nil, err
	}
	if err := checkStatus(out, "submit document"); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// Helper to submit a manual request body
func (c *Client) submit(ctx context.Context, path string, in any) (*SubmitResponse, error) {
	var out ApiResponse[SubmitResponse]
	if err := c.NewRequest(ctx, http.MethodPost, path, in, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		return nil, err
	}
	if err := checkStatus(out, "submit content"); err != nil {
		return nil, err
	}

	if out.Data.SessionID == "" {
		return nil, fmt.Errorf("no session id returned")
	}

	return &out.Data, nil
}

// WaitForResult polls a session until its result is stored, the session fails, or timeout elapses
func (c *Client) WaitForResult(ctx context.Context, id string, interval, timeout time.Duration) (*session.Result, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := c.GetResult(ctx, id)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}

		current, err := c.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == session.StatusFailed {
			return nil, ErrSessionFailed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrResultTimeout
		case <-ticker.C:
		}
	}
}
