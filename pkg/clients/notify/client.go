package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/farmreports/internal/config"
)

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("notify webhook is not configured")

// Client delivers report digests to an outbound webhook.
type Client interface {
	SendDigest(ctx context.Context, req DigestRequest) (*DigestResponse, error)
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// DigestRequest is the payload posted for one scheduled digest.
type DigestRequest struct {
	Title    string            `json:"title"`
	Period   string            `json:"period"`
	Text     string            `json:"text"`
	Sections []DigestSection   `json:"sections"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// DigestSection is the summary of one report inside a digest.
type DigestSection struct {
	Report string   `json:"report"`
	Title  string   `json:"title"`
	Lines  []string `json:"lines"`
}

// DigestResponse mirrors the acknowledgement returned by the webhook.
type DigestResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendDigest posts the digest to the configured webhook.
func (c *WebhookClient) SendDigest(ctx context.Context, req DigestRequest) (*DigestResponse, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}

	result := new(DigestResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("send digest: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Error.Message
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return nil, fmt.Errorf("notify webhook error: code=%d, message=%s", code, message)
	}

	return result, nil
}
