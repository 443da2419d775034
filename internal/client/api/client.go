// Package api is the HTTP client for the LedgerVault server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to the LedgerVault HTTP endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// FileInfo is one entry from the server's upload index.
type FileInfo struct {
	FileID    string    `json:"fileId"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// New returns a Client for the given base URL. If httpClient is nil,
// http.DefaultClient is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// serverMessage extracts the "message" field from an error response
// body, falling back to the HTTP status when the body is not JSON.
func serverMessage(res *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Message != "" {
		return body.Message
	}
	return res.Status
}

// Upload sends the file as a multipart form and returns the file id
// assigned by the server.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := w.WriteField("filename", filename); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload failed: %s", serverMessage(res))
	}

	var body struct {
		FileID string `json:"fileId"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if body.FileID == "" {
		return "", fmt.Errorf("server returned no file id")
	}
	return body.FileID, nil
}

// Download fetches the file behind id and returns its name and content.
// The name comes from the Content-Disposition header; if the server does
// not supply one, the id is used.
func (c *Client) Download(ctx context.Context, id string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/download/"+id, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download failed: %s", serverMessage(res))
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response: %w", err)
	}

	name := id
	if cd := res.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}
	return name, data, nil
}

// List returns the uploads recorded by the server node.
func (c *Client) List(ctx context.Context) ([]FileInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list failed: %s", serverMessage(res))
	}

	var body struct {
		Files []FileInfo `json:"files"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Files, nil
}
