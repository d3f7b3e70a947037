package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestSearchPlaylists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "playlist", r.URL.Query().Get("type"))
		assert.Equal(t, "python full course", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"items":[
			{"id":{"playlistId":"PL1"},"snippet":{"title":"Python Course","channelTitle":"Chan A"}},
			{"id":{"playlistId":"PL2"},"snippet":{"title":"Learn Python","channelTitle":"Chan B"}}
		]}`)
	})
	mux.HandleFunc("/playlists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PL1,PL2", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"items":[
			{"id":"PL1","contentDetails":{"itemCount":40}},
			{"id":"PL2","contentDetails":{"itemCount":12}}
		]}`)
	})

	c := newTestClient(t, mux)
	got, err := c.SearchPlaylists(context.Background(), "python full course", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "PL1", got[0].ID)
	assert.Equal(t, 40, got[0].VideoCount)
	assert.Equal(t, "Chan B", got[1].Channel)
	assert.Equal(t, 12, got[1].VideoCount)
}

func TestSearchPlaylists_EmptyQuery(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	_, err := c.SearchPlaylists(context.Background(), "  ", 10)
	assert.Error(t, err)
}

func TestListPlaylistVideos_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PL1", r.URL.Query().Get("playlistId"))
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"nextPageToken":"p2","items":[
				{"snippet":{"title":"Intro","position":0,"resourceId":{"videoId":"v1"}}}
			]}`)
			return
		}
		fmt.Fprint(w, `{"items":[
			{"snippet":{"title":"Variables","position":1,"resourceId":{"videoId":"v2"}}}
		]}`)
	})

	c := newTestClient(t, mux)
	got, err := c.ListPlaylistVideos(context.Background(), "PL1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v1", got[0].VideoID)
	assert.Equal(t, "Variables", got[1].Title)
	assert.Equal(t, 1, got[1].Position)
}

func TestGetVideoStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"items":[
			{"id":"v1","statistics":{"viewCount":"1000","likeCount":"50"}},
			{"id":"v2","statistics":{"viewCount":"2000","likeCount":"40"}}
		]}`)
	})

	c := newTestClient(t, mux)
	got, err := c.GetVideoStats(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].Views)
	assert.Equal(t, int64(40), got[1].Likes)
}

func TestClient_NonOKStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	c := newTestClient(t, mux)
	_, err := c.SearchPlaylists(context.Background(), "python", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("   ")
	assert.Error(t, err)
}
