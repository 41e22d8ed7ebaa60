// Package assignment implements a read-only HTTP client against the
// control plane's ai-model-assignments API (C3).
package assignment

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

const defaultTimeout = 5 * time.Second

// Client is a bare HTTP client; it holds no connection state between calls
// and never retries. Every failure mode (non-200, network error, timeout,
// malformed JSON, non-list assignments field) collapses to an empty slice,
// matching the original's aiohttp-based client.
type Client struct {
	baseURL      string
	staticToken  string
	signingKey   []byte // when set, a fresh JWT is minted per request instead
	httpClient   *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the default 5s-timeout http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSigningKey enables self-minted short-lived bearer JWTs instead of a
// static token.
func WithSigningKey(key []byte) Option {
	return func(c *Client) { c.signingKey = key }
}

// NewClient builds a Client against baseURL, authenticating with
// staticToken unless WithSigningKey overrides that.
func NewClient(baseURL, staticToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		staticToken: staticToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAllAssignments performs GET /api/v1/ai-model-assignments?enabled=true&limit=1000.
func (c *Client) FetchAllAssignments() []wire.Assignment {
	return c.fetch(url.Values{
		"enabled": {"true"},
		"limit":   {"1000"},
	})
}

// FetchAssignmentsForCamera performs the camera-scoped variant with limit=100.
func (c *Client) FetchAssignmentsForCamera(cameraID string) []wire.Assignment {
	return c.fetch(url.Values{
		"camera_id": {cameraID},
		"enabled":   {"true"},
		"limit":     {"100"},
	})
}

func (c *Client) fetch(params url.Values) []wire.Assignment {
	reqURL := c.baseURL + "/api/v1/ai-model-assignments?" + params.Encode()

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("[AssignmentClient] build request failed: %v", err)
		return []wire.Assignment{}
	}

	token, err := c.bearerToken()
	if err != nil {
		log.Printf("[AssignmentClient] token mint failed: %v", err)
		return []wire.Assignment{}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[AssignmentClient] request failed: %v", err)
		return []wire.Assignment{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[AssignmentClient] non-200 response: %d", resp.StatusCode)
		return []wire.Assignment{}
	}

	var body wire.AssignmentListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("[AssignmentClient] malformed JSON: %v", err)
		return []wire.Assignment{}
	}
	if body.Assignments == nil {
		return []wire.Assignment{}
	}
	return body.Assignments
}

func (c *Client) bearerToken() (string, error) {
	if len(c.signingKey) == 0 {
		return c.staticToken, nil
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": "vas-kernel-reconciler",
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign JWT: %w", err)
	}
	return signed, nil
}
