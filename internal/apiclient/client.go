// Package apiclient is the observer-side HTTP client for the tally API. It
// satisfies the observer.Source and observer.Notifier contracts, so a display
// or voter process uses the same watcher loop the tests do.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
)

type Client struct {
	baseURL  string
	deviceID string
	http     *http.Client
}

type Option func(*Client)

// WithDeviceID attaches the local device identity to vote-path requests.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Resolve(ctx context.Context, code string) (*domain.Session, error) {
	var session domain.Session
	if err := c.getJSON(ctx, fmt.Sprintf("/api/sessions/%s", code), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

type tallyPayload struct {
	SessionID   uuid.UUID         `json:"session_id"`
	Counts      map[uuid.UUID]int `json:"counts"`
	Total       int               `json:"total"`
	Percentages map[uuid.UUID]int `json:"percentages"`
}

func (c *Client) TallyForCode(ctx context.Context, code string) (domain.Tally, error) {
	var payload tallyPayload
	if err := c.getJSON(ctx, fmt.Sprintf("/api/sessions/%s/tally", code), &payload); err != nil {
		return domain.Tally{}, err
	}

	return domain.Tally{
		SessionID: payload.SessionID,
		Counts:    payload.Counts,
		Total:     payload.Total,
	}, nil
}

// Cast submits the device's choice. No automatic retry: a failed write is
// reported and the caller decides whether to try again.
func (c *Client) Cast(ctx context.Context, code string, optionID uuid.UUID) error {
	body, err := json.Marshal(map[string]uuid.UUID{"option_id": optionID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/sessions/%s/votes", c.baseURL, code), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", c.deviceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return statusToError(resp)
}

func (c *Client) MyVote(ctx context.Context, code string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/sessions/%s/votes/mine", c.baseURL, code), nil)
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("X-Device-ID", c.deviceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()

	// Two distinct 404s share the status: an unknown session code and a
	// device that has not voted yet. The body tells them apart.
	if resp.StatusCode == http.StatusNotFound {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if strings.Contains(string(msg), domain.ErrSessionNotFound.Error()) {
			return uuid.Nil, domain.ErrSessionNotFound
		}
		return uuid.Nil, domain.ErrVoteNotFound
	}
	if err := statusToError(resp); err != nil {
		return uuid.Nil, err
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(payload["option_id"])
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusToError(resp); err != nil {
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func statusToError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrSessionNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrSessionClosed
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api error: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
}
