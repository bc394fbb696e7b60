// Package dashboard is the terminal check-in console for coordinators
// and admins. It talks to the HTTP API, keeps a local view cache that
// is reconciled by replacement on every poll, and renders it with
// bubbletea.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// APIError is a non-2xx response. Message is the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client calls the check-in API on behalf of one principal.
type Client struct {
	baseURL string
	http    *http.Client
	email   string
	role    model.Role
	token   string
}

// NewClient returns a Client for the server at baseURL. A nil hc uses a
// client with a 10 second timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Principal returns the email the client acts as.
func (c *Client) Principal() string { return c.email }

// Role returns the role reported at login, or "" before login.
func (c *Client) Role() model.Role { return c.role }

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.email != "" {
		req.Header.Set("x-auth-email", c.email)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e model.ErrorResponse
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return resp, data, &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, data, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, data, nil
}

// Login authenticates and keeps the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var res model.LoginResponse
	if _, _, err := c.do(ctx, http.MethodPost, "/api/auth/login",
		model.LoginRequest{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	if res.User != nil {
		c.email = res.User.Email
		c.role = res.User.Role
	}
	return &res, nil
}

// Events lists the events visible to the principal.
func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	_, _, err := c.do(ctx, http.MethodGet, "/api/events", nil, &events)
	return events, err
}

// Participants lists an event's participants.
func (c *Client) Participants(ctx context.Context, eventID string) ([]model.Participant, error) {
	var participants []model.Participant
	_, _, err := c.do(ctx, http.MethodGet, "/api/participants/"+url.PathEscape(eventID), nil, &participants)
	return participants, err
}

// UpdateStatus moves an event to status.
func (c *Client) UpdateStatus(ctx context.Context, eventID string, status model.EventStatus) (*model.Event, error) {
	var res struct {
		Event model.Event `json:"event"`
	}
	if _, _, err := c.do(ctx, http.MethodPatch, "/api/events/"+url.PathEscape(eventID)+"/status",
		model.UpdateStatusRequest{Status: status}, &res); err != nil {
		return nil, err
	}
	return &res.Event, nil
}

// Verify consumes a participant token for eventID.
func (c *Client) Verify(ctx context.Context, token, eventID string) (*model.Participant, error) {
	var res struct {
		Participant model.Participant `json:"participant"`
	}
	if _, _, err := c.do(ctx, http.MethodPost, "/api/participants/verify",
		model.VerifyRequest{Token: token, EventID: eventID}, &res); err != nil {
		return nil, err
	}
	return &res.Participant, nil
}

// Submit records one participant's result.
func (c *Client) Submit(ctx context.Context, req model.SubmitRequest) (*model.Submission, error) {
	var res struct {
		Submission model.Submission `json:"submission"`
	}
	if _, _, err := c.do(ctx, http.MethodPost, "/api/submissions", req, &res); err != nil {
		return nil, err
	}
	return &res.Submission, nil
}

// Export downloads an event's CSV and returns the server's filename.
func (c *Client) Export(ctx context.Context, eventID string) (string, []byte, error) {
	resp, data, err := c.do(ctx, http.MethodGet, "/api/admin/events/"+url.PathEscape(eventID)+"/export", nil, nil)
	if err != nil {
		return "", nil, err
	}
	filename := fmt.Sprintf("event-%s-export.csv", eventID)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return filename, data, nil
}
