package discovery

import "sort"

// Candidate is a playlist with its aggregated engagement score.
type Candidate struct {
	Playlist Playlist
	Views    int64
	Likes    int64
	Score    float64
}

// scoreCandidate computes the engagement ratio for a set of video stats.
// Likes over views is a stronger quality signal than raw view counts,
// which favor older uploads.
func scoreCandidate(p Playlist, stats []VideoStats) Candidate {
	c := Candidate{Playlist: p}
	for _, s := range stats {
		c.Views += s.Views
		c.Likes += s.Likes
	}
	if c.Views > 0 {
		c.Score = float64(c.Likes) / float64(c.Views)
	}
	return c
}

// rankCandidates sorts candidates by score descending. Ties break on
// views descending, then playlist ID for determinism.
func rankCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Views != candidates[j].Views {
			return candidates[i].Views > candidates[j].Views
		}
		return candidates[i].Playlist.ID < candidates[j].Playlist.ID
	})
}
