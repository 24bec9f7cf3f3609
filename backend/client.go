// Package backend talks JSON to the streaming backend: songs and their collections, play counts and listening history.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/melody-cli/melody/constant"
	"github.com/melody-cli/melody/log"
	"github.com/melody-cli/melody/network"
	"github.com/melody-cli/melody/track"
)

// TokenSource yields the bearer token of the signed-in user.
type TokenSource func() (string, error)

// Client is a thin API client. It is safe for concurrent use.
type Client struct {
	base  string
	http  *http.Client
	token TokenSource
}

// New returns a client for the backend at base, sending requests through network.Client.
func New(base string, token TokenSource) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		http:  network.Client,
		token: token,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// APIError is a non-2xx answer. Message is the backend's own explanation when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// FetchTracks implements track.Fetcher over GET /api/song/list.
func (c *Client) FetchTracks(ctx context.Context) ([]track.Track, error) {
	var out envelope[[]track.Track]
	if err := c.do(ctx, http.MethodGet, "/api/song/list", nil, false, &out); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return out.Data, nil
}

// IncrementPlay bumps the view count of trackID.
func (c *Client) IncrementPlay(ctx context.Context, trackID string) error {
	return c.do(ctx, http.MethodPost, "/api/song/increment/"+url.PathEscape(trackID), nil, false, nil)
}

// RecordStream appends trackID to the signed-in user's listening history.
func (c *Client) RecordStream(ctx context.Context, trackID string) error {
	body := map[string]string{"songId": trackID}
	return c.do(ctx, http.MethodPost, "/api/stream/create", body, true, nil)
}

// Recent returns the signed-in user's recently played tracks.
func (c *Client) Recent(ctx context.Context) ([]track.Track, error) {
	var out envelope[[]track.Track]
	if err := c.do(ctx, http.MethodGet, "/api/stream/recent", nil, true, &out); err != nil {
		return nil, fmt.Errorf("recently played: %w", err)
	}
	return out.Data, nil
}

// Collection is an album or a playlist: an ordered list of tracks.
// Albums carry a name and playlists a title.
type Collection struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Title string        `json:"title"`
	Songs []track.Track `json:"songs"`
}

// Label is the name shown for c.
func (c Collection) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Title
}

// Albums lists every album. Listed albums may omit their songs.
func (c *Client) Albums(ctx context.Context) ([]Collection, error) {
	var out envelope[[]Collection]
	if err := c.do(ctx, http.MethodGet, "/api/album/list", nil, false, &out); err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	return out.Data, nil
}

// Album returns one album with its songs in album order.
func (c *Client) Album(ctx context.Context, id string) (*Collection, error) {
	var out envelope[Collection]
	if err := c.do(ctx, http.MethodGet, "/api/album/list/"+url.PathEscape(id), nil, false, &out); err != nil {
		return nil, fmt.Errorf("album %s: %w", id, err)
	}
	return &out.Data, nil
}

// Playlists lists the signed-in user's playlists.
func (c *Client) Playlists(ctx context.Context) ([]Collection, error) {
	var out envelope[[]Collection]
	if err := c.do(ctx, http.MethodGet, "/api/playlist/list", nil, true, &out); err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	return out.Data, nil
}

// Playlist returns one of the signed-in user's playlists with its songs.
func (c *Client) Playlist(ctx context.Context, id string) (*Collection, error) {
	var out envelope[Collection]
	if err := c.do(ctx, http.MethodGet, "/api/playlist/list/"+url.PathEscape(id), nil, true, &out); err != nil {
		return nil, fmt.Errorf("playlist %s: %w", id, err)
	}
	return &out.Data, nil
}

// LikedSongs returns the tracks the signed-in user liked.
func (c *Client) LikedSongs(ctx context.Context) ([]track.Track, error) {
	var out envelope[[]track.Track]
	if err := c.do(ctx, http.MethodGet, "/api/user/like/song/list", nil, true, &out); err != nil {
		return nil, fmt.Errorf("liked songs: %w", err)
	}
	return out.Data, nil
}

// Session is what a successful login returns.
type Session struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, false, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login: backend returned no token")
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		if c.token == nil {
			return fmt.Errorf("%s %s: not signed in", method, path)
		}
		token, err := c.token()
		if err != nil || token == "" {
			return fmt.Errorf("%s %s: not signed in", method, path)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.With(log.Fields{"method": method, "path": path, "request_id": requestID}).Debug("backend request")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg envelope[json.RawMessage]
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
