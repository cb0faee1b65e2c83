// Package gate decides whether a client application may run its
// privileged commands, based on a locally cached entitlement backed by
// the licensing service.
package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNetwork marks transport-level failures talking to the licensing
// service, as opposed to legitimate negative answers.
var ErrNetwork = errors.New("licensing service unreachable")

// DefaultTimeout bounds every licensing call so an unresponsive
// service cannot hang a command.
const DefaultTimeout = 10 * time.Second

// Client is a thin HTTP client for the licensing service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL. A zero
// timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// PlansURL returns the hosted plans page address.
func (c *Client) PlansURL() string {
	return c.baseURL + "/"
}

// Entitlement reports whether the email holds an entitlement. A false
// answer is a legitimate negative, not an error.
func (c *Client) Entitlement(ctx context.Context, email string) (bool, error) {
	var resp struct {
		Entitled bool `json:"entitled"`
	}
	err := c.get(ctx, "/entitlement?email="+url.QueryEscape(email), &resp)
	if err != nil {
		return false, err
	}
	return resp.Entitled, nil
}

// OwnerLoginResult is the outcome of an owner code attempt. A rejected
// code sets Access to false without an error.
type OwnerLoginResult struct {
	Access bool   `json:"access"`
	Token  string `json:"token"`
}

// OwnerLogin attempts the owner override with the given code.
func (c *Client) OwnerLogin(ctx context.Context, code string) (OwnerLoginResult, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return OwnerLoginResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/owner-login", bytes.NewReader(body))
	if err != nil {
		return OwnerLoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return OwnerLoginResult{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result OwnerLoginResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return OwnerLoginResult{}, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		return result, nil
	case http.StatusUnauthorized:
		// Wrong code: a clean negative.
		return OwnerLoginResult{Access: false}, nil
	default:
		return OwnerLoginResult{}, fmt.Errorf("owner login failed: %s", resp.Status)
	}
}

// CreateCheckoutSession starts a hosted checkout for the tier and
// returns the page URL to open.
func (c *Client) CreateCheckoutSession(ctx context.Context, tierKey string) (string, error) {
	body, err := json.Marshal(map[string]string{"tierKey": tierKey})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("checkout failed: %s", resp.Status)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return result.URL, nil
}

// VerifyResult reports a session's payment outcome.
type VerifyResult struct {
	OK    bool   `json:"ok"`
	Email string `json:"email"`
}

// VerifySession asks the service to verify a completed checkout
// session.
func (c *Client) VerifySession(ctx context.Context, sessionID string) (VerifyResult, error) {
	var result VerifyResult
	err := c.get(ctx, "/verify-session?session_id="+url.QueryEscape(sessionID), &result)
	if err != nil {
		return VerifyResult{}, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return nil
}
