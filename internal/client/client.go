// Package client calls a running wordfreq server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kamilpajak/wordfreq/internal/wordfreq"
)

// Client handles wordfreq API interactions
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new client for the server at baseURL.
// An empty baseURL falls back to WORDFREQ_SERVER_URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("WORDFREQ_SERVER_URL")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// APIError is returned when the server rejects a request.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// BaseURL returns the server address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	var result struct {
		Health string `json:"health"`
	}
	if err := c.do(req, &result); err != nil {
		return err
	}
	if result.Health != "ok" {
		return fmt.Errorf("unexpected health status %q", result.Health)
	}
	return nil
}

// AnalyzeFile uploads content as a multipart file and returns the server's analysis.
func (c *Client) AnalyzeFile(ctx context.Context, filename string, content []byte) (*wordfreq.Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-text-file", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result wordfreq.Result
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// errorMessage extracts the reason from an error body. The analyzer uses
// "Error", other endpoints use "error" or "message".
func errorMessage(body []byte) string {
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"Error", "error", "message"} {
			if msg := payload[key]; msg != "" {
				return msg
			}
		}
	}
	return strings.TrimSpace(string(body))
}
