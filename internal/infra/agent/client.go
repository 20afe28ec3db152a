package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
)

const (
	defaultTimeout  = 3 * time.Second
	scorePath       = "/nqs/score"
	maxResponseBody = 64 << 10
)

// Client calls the remote neighborhood scoring agent.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an agent client. timeout caps the whole exchange even
// when the caller's context has no deadline.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Score posts the area description and decodes the agent's reply. Payload
// validation is left to the caller.
func (c *Client) Score(ctx context.Context, req nqs.AgentRequest) (nqs.AgentResponse, error) {
	if c.baseURL == "" {
		return nqs.AgentResponse{}, fmt.Errorf("agent base url not configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nqs.AgentResponse{}, fmt.Errorf("encode agent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scorePath, bytes.NewReader(body))
	if err != nil {
		return nqs.AgentResponse{}, fmt.Errorf("build agent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nqs.AgentResponse{}, fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nqs.AgentResponse{}, fmt.Errorf("agent request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var out nqs.AgentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return nqs.AgentResponse{}, fmt.Errorf("decode agent response: %w", err)
	}
	return out, nil
}

var _ nqs.RemoteScorer = (*Client)(nil)
