// Package twilio is a minimal client for the Twilio Programmable Voice REST API.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.twilio.com"

// Client defines the call operations used by the dialer.
type Client interface {
	CreateCall(ctx context.Context, params CreateCallParams) (*Call, error)
	FetchCall(ctx context.Context, sid string) (*Call, error)
}

// APIError is returned when Twilio responds with a non-2xx status.
// Code and Message are filled from Twilio's JSON error body when present.
type APIError struct {
	StatusCode int
	Body       string
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("twilio: HTTP %d: %d %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("twilio: HTTP %d: %s", e.StatusCode, e.Body)
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

// httpClient implements Client using net/http with basic auth.
type httpClient struct {
	accountSID string
	authToken  string
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Twilio client for the given account.
func NewClient(accountSID, authToken string, opts ...Option) Client {
	c := &httpClient{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) callsPath() string {
	return fmt.Sprintf("/2010-04-01/Accounts/%s/Calls", url.PathEscape(c.accountSID))
}

func (c *httpClient) CreateCall(ctx context.Context, params CreateCallParams) (*Call, error) {
	form := url.Values{}
	form.Set("To", params.To)
	form.Set("From", params.From)
	form.Set("Url", params.URL)
	if params.TimeoutSecs > 0 {
		form.Set("Timeout", strconv.Itoa(params.TimeoutSecs))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.callsPath()+".json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "twilio: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var call Call
	if err := c.do(req, &call); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("twilio: create call to %s", params.To))
	}
	return &call, nil
}

func (c *httpClient) FetchCall(ctx context.Context, sid string) (*Call, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.callsPath()+"/"+url.PathEscape(sid)+".json", nil)
	if err != nil {
		return nil, eris.Wrap(err, "twilio: create request")
	}

	var call Call
	if err := c.do(req, &call); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("twilio: fetch call %s", sid))
	}
	return &call, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return eris.Wrap(err, "rate limit")
		}
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")

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
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		var body struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
