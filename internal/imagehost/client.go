// Package imagehost uploads profile pictures to an external image
// hosting service and returns the hosted URL.
package imagehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second

	// maxErrorBody bounds how much of an upstream error response is read.
	maxErrorBody = 4096
)

// ErrUploadFailed indicates the image host rejected or failed the upload.
// Transport and quota errors surface opaquely through this sentinel.
var ErrUploadFailed = errors.New("image upload failed")

// Client talks to the image host's upload endpoint.
type Client struct {
	httpClient   *http.Client
	uploadURL    string
	uploadPreset string
	apiKey       string
}

// NewClient creates an image host client.
func NewClient(uploadURL, uploadPreset, apiKey string) *Client {
	return &Client{
		httpClient:   newHTTPClient(),
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		apiKey:       apiKey,
	}
}

// newHTTPClient creates an HTTP client configured for uploads.
// It has appropriate timeouts and does not follow redirects.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// uploadResponse is the image host's success payload.
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends image data to the host under the given public ID and
// returns the hosted URL. Repeated uploads to the same public ID
// overwrite rather than accumulate. Data is the client-supplied image
// payload (a base64 data URI).
func (c *Client) Upload(ctx context.Context, data, publicID string) (string, error) {
	if c.uploadURL == "" {
		return "", fmt.Errorf("%w: upload endpoint not configured", ErrUploadFailed)
	}

	form := url.Values{}
	form.Set("file", data)
	form.Set("public_id", publicID)
	if c.uploadPreset != "" {
		form.Set("upload_preset", c.uploadPreset)
	}
	if c.apiKey != "" {
		form.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Tradepost/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrUploadFailed, err)
	}

	hosted := result.SecureURL
	if hosted == "" {
		hosted = result.URL
	}
	if hosted == "" {
		return "", fmt.Errorf("%w: response carried no URL", ErrUploadFailed)
	}

	return hosted, nil
}
