// Package bridge is the client of the meeting REST surface. Codes must be
// reserved or verified here before the signaling join; the signaling server
// trusts this step and never re-checks the store.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrCodeNotFound means the room code has no live reservation.
var ErrCodeNotFound = errors.New("room code not found")

// Session is the bridge's answer: the canonical code plus the logging
// session id attached to it.
type Session struct {
	Code      string `json:"code"`
	SessionID string `json:"session_id"`
}

// Client talks to the meeting/interview endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient targets a bridge at baseURL (scheme and host, no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateMeeting reserves a fresh meeting code.
func (c *Client) CreateMeeting(ctx context.Context) (Session, error) {
	return c.post(ctx, "/meeting/create", nil)
}

// CreateInterview reserves a fresh interview code.
func (c *Client) CreateInterview(ctx context.Context) (Session, error) {
	return c.post(ctx, "/interview/create", nil)
}

// JoinMeeting validates an existing meeting code.
func (c *Client) JoinMeeting(ctx context.Context, code string) (Session, error) {
	return c.post(ctx, "/meeting/join", map[string]string{"code": code})
}

// JoinInterview validates an existing interview code.
func (c *Client) JoinInterview(ctx context.Context, code string) (Session, error) {
	return c.post(ctx, "/interview/join", map[string]string{"code": code})
}

// VerifyMeeting checks a meeting code without joining.
func (c *Client) VerifyMeeting(ctx context.Context, code string) (Session, error) {
	return c.get(ctx, "/meeting/verify/"+code)
}

// VerifyInterview checks an interview code without joining.
func (c *Client) VerifyInterview(ctx context.Context, code string) (Session, error) {
	return c.get(ctx, "/interview/verify/"+code)
}

func (c *Client) post(ctx context.Context, path string, body any) (Session, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return Session{}, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Session{}, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (Session, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("bridge request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Session{}, ErrCodeNotFound
	case resp.StatusCode >= 300:
		return Session{}, fmt.Errorf("bridge request: unexpected status %d", resp.StatusCode)
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return Session{}, fmt.Errorf("bridge response: %w", err)
	}
	return s, nil
}
