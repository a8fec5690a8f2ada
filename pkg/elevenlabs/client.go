// Package elevenlabs wraps the ElevenLabs Conversational AI API used to open
// outbound call sessions.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Client defines the Conversational AI operations used by the dialer.
type Client interface {
	OutboundCall(ctx context.Context, req OutboundCallRequest) (*OutboundCallResponse, error)
	GetAgent(ctx context.Context, agentID string) (*Agent, error)
}

// OutboundCallRequest is the body for POST /v1/convai/twilio/outbound-call.
type OutboundCallRequest struct {
	ToNumber           string         `json:"to_number"`
	AgentID            string         `json:"agent_id"`
	AgentPhoneNumberID string         `json:"agent_phone_number_id"`
	InitiationData     InitiationData `json:"conversation_initiation_client_data"`
}

// InitiationData carries per-conversation values into the agent prompt.
type InitiationData struct {
	DynamicVariables map[string]string `json:"dynamic_variables"`
}

// OutboundCallResponse is the response from POST /v1/convai/twilio/outbound-call.
type OutboundCallResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	CallSID        string `json:"callSid"`
}

// Agent is the subset of the agent configuration the dialer logs.
// Raw keeps the full document for diagnostics.
type Agent struct {
	AgentID string         `json:"agent_id"`
	Name    string         `json:"name"`
	Raw     map[string]any `json:"-"`
}

// APIError is returned when ElevenLabs responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles requests to rps per second. Zero disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new ElevenLabs client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) OutboundCall(ctx context.Context, req OutboundCallRequest) (*OutboundCallResponse, error) {
	var resp OutboundCallResponse
	if err := c.post(ctx, "/v1/convai/twilio/outbound-call", req, &resp); err != nil {
		return nil, eris.Wrap(err, "elevenlabs: outbound call")
	}
	return &resp, nil
}

func (c *httpClient) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	var raw map[string]any
	if err := c.get(ctx, "/v1/convai/agents/"+url.PathEscape(agentID), &raw); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("elevenlabs: get agent %s", agentID))
	}
	agent := &Agent{Raw: raw}
	if id, ok := raw["agent_id"].(string); ok {
		agent.AgentID = id
	}
	if name, ok := raw["name"].(string); ok {
		agent.Name = name
	}
	return agent, nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("xi-api-key", c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return eris.Wrap(err, "rate limit")
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
