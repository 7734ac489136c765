package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	sharedConfig "rubybot/internal/shared/config"
)

// TrackInfo is the decoded metadata Lavalink returns with a track.
type TrackInfo struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URI    string `json:"uri"`
	Length int64  `json:"length"`
}

// Track pairs the opaque encoded track with its metadata.
type Track struct {
	Encoded string    `json:"encoded"`
	Info    TrackInfo `json:"info"`
}

// Load result types from /v4/loadtracks.
const (
	LoadTypeTrack    = "track"
	LoadTypePlaylist = "playlist"
	LoadTypeSearch   = "search"
	LoadTypeEmpty    = "empty"
	LoadTypeError    = "error"
)

// LoadResult is the response of /v4/loadtracks. Data shape depends on
// LoadType, so it stays raw until the type is known.
type LoadResult struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

type playlistData struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
	Tracks []Track `json:"tracks"`
}

// VoiceServer is the Discord voice credentials Lavalink needs to connect.
type VoiceServer struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
}

// PlayerUpdate is a partial update of a guild player; nil fields are left
// unchanged.
type PlayerUpdate struct {
	Track  *PlayerTrack `json:"track,omitempty"`
	Paused *bool        `json:"paused,omitempty"`
	Volume *int         `json:"volume,omitempty"`
	Voice  *VoiceServer `json:"voice,omitempty"`
}

// PlayerTrack selects what the player should play. An explicit null Encoded
// stops playback, so the field is a double pointer on the wire; EncodedNull
// handles the stop case.
type PlayerTrack struct {
	Encoded *string `json:"encoded"`
}

// Client is the Lavalink v4 REST client.
type Client struct {
	cfg        sharedConfig.LavalinkConfig
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Lavalink REST client from node config.
func NewClient(cfg sharedConfig.LavalinkConfig) *Client {
	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: fmt.Sprintf("%s://%s/v4", scheme, cfg.GetAddr()),
	}
}

// LoadTracks resolves an identifier (URL or "ytsearch:..." query) into
// playable tracks.
func (c *Client) LoadTracks(ctx context.Context, identifier string) ([]Track, error) {
	q := url.Values{}
	q.Set("identifier", identifier)

	var result LoadResult
	path := "/loadtracks?" + q.Encode()
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}

	switch result.LoadType {
	case LoadTypeTrack:
		var track Track
		if err := json.Unmarshal(result.Data, &track); err != nil {
			return nil, fmt.Errorf("failed to decode track: %w", err)
		}
		return []Track{track}, nil
	case LoadTypePlaylist:
		var playlist playlistData
		if err := json.Unmarshal(result.Data, &playlist); err != nil {
			return nil, fmt.Errorf("failed to decode playlist: %w", err)
		}
		return playlist.Tracks, nil
	case LoadTypeSearch:
		var tracks []Track
		if err := json.Unmarshal(result.Data, &tracks); err != nil {
			return nil, fmt.Errorf("failed to decode search results: %w", err)
		}
		return tracks, nil
	case LoadTypeEmpty:
		return nil, nil
	case LoadTypeError:
		var loadErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(result.Data, &loadErr)
		return nil, fmt.Errorf("lavalink load failed: %s", loadErr.Message)
	}
	return nil, fmt.Errorf("unknown load type: %s", result.LoadType)
}

// UpdatePlayer applies a partial player update for the guild within the
// given node session.
func (c *Client) UpdatePlayer(ctx context.Context, sessionID, guildID string, update PlayerUpdate) error {
	path := fmt.Sprintf("/sessions/%s/players/%s?noReplace=false", sessionID, guildID)
	return c.makeRequest(ctx, http.MethodPatch, path, update, nil)
}

// DestroyPlayer tears down the guild player.
func (c *Client) DestroyPlayer(ctx context.Context, sessionID, guildID string) error {
	path := fmt.Sprintf("/sessions/%s/players/%s", sessionID, guildID)
	return c.makeRequest(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) makeRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("lavalink API error: status=%d body=%s", resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
