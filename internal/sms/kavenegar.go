// Package sms delivers OTP codes via the Kavenegar SMS gateway.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// KavenegarClient sends SMS via the Kavenegar HTTP API.
type KavenegarClient struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewKavenegarClient returns a client that uses the given API key and optional
// base URL/sender line.
func NewKavenegarClient(apiKey, baseURL, sender string) *KavenegarClient {
	if baseURL == "" {
		baseURL = "https://api.kavenegar.com/v1"
	}
	return &KavenegarClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// kavenegarResponse is the subset of the API response needed to detect success.
type kavenegarResponse struct {
	Return struct {
		Status int `json:"status"`
	} `json:"return"`
}

// Send delivers text to destination. Returns (true, nil) on confirmed
// delivery acceptance, (false, nil) when the gateway rejected the message,
// and (false, err) on transport failure. Does not log the message body.
func (c *KavenegarClient) Send(ctx context.Context, destination, text string) (bool, error) {
	if c.APIKey == "" {
		return false, fmt.Errorf("sms: API key not configured")
	}
	form := url.Values{}
	form.Set("receptor", destination)
	form.Set("message", text)
	if c.Sender != "" {
		form.Set("sender", c.Sender)
	}

	endpoint := fmt.Sprintf("%s/%s/sms/send.json", strings.TrimSuffix(c.BaseURL, "/"), c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}

	var out kavenegarResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Return.Status == 200, nil
}
