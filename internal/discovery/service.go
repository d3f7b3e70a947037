package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/disha/internal/llm"
	"github.com/abhisek/disha/internal/store"
)

const (
	// maxCandidates caps how many ranked playlists are summarized and
	// stored per skill.
	maxCandidates = 3

	// searchResults is how many raw search hits to score.
	searchResults = 8

	// statsSample caps how many videos per playlist feed the engagement
	// score. Sampling the head is enough to separate candidates and
	// keeps quota usage flat.
	statsSample = 10
)

// RecommendationStore persists ranked playlist candidates.
type RecommendationStore interface {
	ReplaceRecommendations(ctx context.Context, roadmapID, skillSlug string, recs []store.Recommendation) error
	ListRecommendations(ctx context.Context, roadmapID, skillSlug string) ([]store.Recommendation, error)
}

// Service discovers, ranks and summarizes playlists for a skill.
type Service struct {
	source   PlaylistSource
	provider llm.Provider
	recs     RecommendationStore
}

// NewService creates a discovery service.
func NewService(source PlaylistSource, provider llm.Provider, recs RecommendationStore) *Service {
	return &Service{source: source, provider: provider, recs: recs}
}

// Recommend searches YouTube for course playlists on the skill, ranks
// them by engagement, summarizes the top candidates and stores them.
// Returns the stored recommendations in rank order.
func (s *Service) Recommend(ctx context.Context, roadmapID, skillName, skillSlug string) ([]store.Recommendation, error) {
	playlists, err := s.source.SearchPlaylists(ctx, skillName+" full course", searchResults)
	if err != nil {
		return nil, fmt.Errorf("search playlists for %q: %w", skillName, err)
	}
	if len(playlists) == 0 {
		return nil, fmt.Errorf("no playlists found for %q", skillName)
	}

	candidates := make([]Candidate, 0, len(playlists))
	videosByPlaylist := make(map[string][]PlaylistVideo, len(playlists))
	for _, p := range playlists {
		if p.VideoCount == 0 {
			continue
		}
		videos, err := s.source.ListPlaylistVideos(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("list videos of %s: %w", p.ID, err)
		}
		videosByPlaylist[p.ID] = videos

		sample := videos
		if len(sample) > statsSample {
			sample = sample[:statsSample]
		}
		ids := make([]string, len(sample))
		for i, v := range sample {
			ids[i] = v.VideoID
		}
		stats, err := s.source.GetVideoStats(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("video stats of %s: %w", p.ID, err)
		}
		candidates = append(candidates, scoreCandidate(p, stats))
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no usable playlists found for %q", skillName)
	}

	rankCandidates(candidates)
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	recs := make([]store.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		rec := store.Recommendation{
			SkillSlug:  skillSlug,
			PlaylistID: c.Playlist.ID,
			Title:      c.Playlist.Title,
			Channel:    c.Playlist.Channel,
			URL:        PlaylistURL(c.Playlist.ID),
			VideoCount: c.Playlist.VideoCount,
			RankScore:  c.Score,
		}
		summary, err := summarizePlaylist(ctx, s.provider, c.Playlist, videosByPlaylist[c.Playlist.ID])
		if err != nil {
			return nil, err
		}
		summaryJSON, err := json.Marshal(summary)
		if err != nil {
			return nil, fmt.Errorf("encode summary: %w", err)
		}
		rec.SummaryJSON = string(summaryJSON)
		recs = append(recs, rec)
	}

	if err := s.recs.ReplaceRecommendations(ctx, roadmapID, skillSlug, recs); err != nil {
		return nil, err
	}
	return s.recs.ListRecommendations(ctx, roadmapID, skillSlug)
}
