package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPClient talks to a code-interpreter service over HTTP. Each action
// is a JSON POST against the session resource.
type HTTPClient struct {
	endpoint       string
	sessionTimeout int
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewHTTPClient creates a sandbox client against the given endpoint.
// sessionTimeoutSeconds bounds the lifetime the service grants a session.
func NewHTTPClient(endpoint string, sessionTimeoutSeconds int, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		endpoint:       endpoint,
		sessionTimeout: sessionTimeoutSeconds,
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		logger:         logger.Named("sandbox"),
	}
}

type startRequest struct {
	SessionTimeoutSeconds int `json:"session_timeout_seconds"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
}

type writeFilesRequest struct {
	Files []File `json:"files"`
}

type executeRequest struct {
	Code string `json:"code"`
}

// Start implements Client.
func (c *HTTPClient) Start(ctx context.Context) (string, error) {
	var resp startResponse
	err := c.post(ctx, c.endpoint+"/sessions", startRequest{SessionTimeoutSeconds: c.sessionTimeout}, &resp)
	if err != nil {
		return "", fmt.Errorf("start sandbox session: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("sandbox returned empty session id")
	}

	c.logger.Debug("started sandbox session", zap.String("session_id", resp.SessionID))
	return resp.SessionID, nil
}

// WriteFiles implements Client.
func (c *HTTPClient) WriteFiles(ctx context.Context, sessionID string, files []File) error {
	url := fmt.Sprintf("%s/sessions/%s/files", c.endpoint, sessionID)
	if err := c.post(ctx, url, writeFilesRequest{Files: files}, nil); err != nil {
		return fmt.Errorf("write sandbox files: %w", err)
	}
	return nil
}

// Execute implements Client.
func (c *HTTPClient) Execute(ctx context.Context, sessionID, code string) (*ExecResult, error) {
	var result ExecResult
	url := fmt.Sprintf("%s/sessions/%s/execute", c.endpoint, sessionID)
	if err := c.post(ctx, url, executeRequest{Code: code}, &result); err != nil {
		return nil, fmt.Errorf("execute sandbox code: %w", err)
	}
	return &result, nil
}

// Stop implements Client.
func (c *HTTPClient) Stop(ctx context.Context, sessionID string) error {
	url := fmt.Sprintf("%s/sessions/%s/stop", c.endpoint, sessionID)
	if err := c.post(ctx, url, struct{}{}, nil); err != nil {
		return fmt.Errorf("stop sandbox session: %w", err)
	}

	c.logger.Debug("stopped sandbox session", zap.String("session_id", sessionID))
	return nil
}

func (c *HTTPClient) post(ctx context.Context, url string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sandbox returned %d: %s", resp.StatusCode, string(detail))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ensure HTTPClient implements Client at compile time.
var _ Client = (*HTTPClient)(nil)
