// Package discovery finds and ranks YouTube playlists for a skill, then
// summarizes the best candidates so the learner can pick one.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Playlist is a YouTube playlist search result.
type Playlist struct {
	ID         string
	Title      string
	Channel    string
	VideoCount int
}

// VideoStats holds per-video engagement counters.
type VideoStats struct {
	VideoID string
	Views   int64
	Likes   int64
}

// PlaylistVideo is one entry of a playlist.
type PlaylistVideo struct {
	VideoID  string
	Title    string
	Position int
}

// PlaylistSource defines the YouTube operations discovery needs.
type PlaylistSource interface {
	SearchPlaylists(ctx context.Context, query string, maxResults int) ([]Playlist, error)
	ListPlaylistVideos(ctx context.Context, playlistID string) ([]PlaylistVideo, error)
	GetVideoStats(ctx context.Context, videoIDs []string) ([]VideoStats, error)
}

// Client talks to the YouTube Data API v3.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ PlaylistSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// NewClient creates a YouTube Data API client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			PlaylistID string `json:"playlistId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type playlistsResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			ItemCount int `json:"itemCount"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title      string `json:"title"`
			Position   int    `json:"position"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// SearchPlaylists searches for playlists matching the query and resolves
// each result's video count.
func (c *Client) SearchPlaylists(ctx context.Context, query string, maxResults int) ([]Playlist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if maxResults < 1 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "playlist")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))

	var payload searchResponse
	if err := c.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}

	playlists := make([]Playlist, 0, len(payload.Items))
	ids := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.PlaylistID == "" {
			continue
		}
		playlists = append(playlists, Playlist{
			ID:      item.ID.PlaylistID,
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
		})
		ids = append(ids, item.ID.PlaylistID)
	}
	if len(playlists) == 0 {
		return nil, nil
	}

	counts, err := c.playlistVideoCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		playlists[i].VideoCount = counts[playlists[i].ID]
	}
	return playlists, nil
}

func (c *Client) playlistVideoCounts(ctx context.Context, ids []string) (map[string]int, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var payload playlistsResponse
	if err := c.get(ctx, "/playlists", params, &payload); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(payload.Items))
	for _, item := range payload.Items {
		counts[item.ID] = item.ContentDetails.ItemCount
	}
	return counts, nil
}

// ListPlaylistVideos pages through all entries of a playlist.
func (c *Client) ListPlaylistVideos(ctx context.Context, playlistID string) ([]PlaylistVideo, error) {
	if playlistID == "" {
		return nil, errors.New("playlist id must not be empty")
	}

	var videos []PlaylistVideo
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", "50")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var payload playlistItemsResponse
		if err := c.get(ctx, "/playlistItems", params, &payload); err != nil {
			return nil, err
		}
		for _, item := range payload.Items {
			videos = append(videos, PlaylistVideo{
				VideoID:  item.Snippet.ResourceID.VideoID,
				Title:    item.Snippet.Title,
				Position: item.Snippet.Position,
			})
		}
		if payload.NextPageToken == "" {
			break
		}
		pageToken = payload.NextPageToken
	}
	return videos, nil
}

// GetVideoStats fetches view and like counts. At most 50 IDs per call,
// so batch the input.
func (c *Client) GetVideoStats(ctx context.Context, videoIDs []string) ([]VideoStats, error) {
	var out []VideoStats
	for len(videoIDs) > 0 {
		batch := videoIDs
		if len(batch) > 50 {
			batch = batch[:50]
		}
		videoIDs = videoIDs[len(batch):]

		params := url.Values{}
		params.Set("part", "statistics")
		params.Set("id", strings.Join(batch, ","))

		var payload videosResponse
		if err := c.get(ctx, "/videos", params, &payload); err != nil {
			return nil, err
		}
		for _, item := range payload.Items {
			views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
			likes, _ := strconv.ParseInt(item.Statistics.LikeCount, 10, 64)
			out = append(out, VideoStats{VideoID: item.ID, Views: views, Likes: likes})
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse youtube url: %w", err)
	}
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube response: %w", err)
	}
	return nil
}

// PlaylistURL builds the canonical watch URL for a playlist.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}
