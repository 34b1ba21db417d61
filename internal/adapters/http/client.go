// Package http is the request/response side of the meeting backend.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 4096

// Client implements core.MeetingAPI over the backend REST endpoints.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

var _ core.MeetingAPI = (*Client)(nil)

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchMeetingByRoom(ctx context.Context, roomID domain.RoomID) (*domain.Meeting, error) {
	var m domain.Meeting
	path := "/meetings/room/" + url.PathEscape(string(roomID))
	if err := c.do(ctx, http.MethodGet, path, &m); err != nil {
		return nil, fmt.Errorf("fetch meeting %s: %w", roomID, err)
	}
	if m.RoomID == "" {
		m.RoomID = roomID
	}
	return &m, nil
}

func (c *Client) RequestJoinMeeting(ctx context.Context, roomID domain.RoomID) error {
	path := "/meetings/room/" + url.PathEscape(string(roomID)) + "/join"
	if err := c.do(ctx, http.MethodPost, path, nil); err != nil {
		return fmt.Errorf("join meeting %s: %w", roomID, err)
	}
	return nil
}

func (c *Client) FetchUserProfile(ctx context.Context, userID domain.UserID) (domain.Profile, error) {
	var p domain.Profile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(string(userID)), &p); err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile %s: %w", userID, err)
	}
	return p, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Debug().
		Str("module", "adapters.http").
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	var cause error
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			cause = fmt.Errorf("decode error body: %w", err)
		}
	}
	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	return newAPIError(resp.StatusCode, msg, cause)
}
