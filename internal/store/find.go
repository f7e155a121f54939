package store

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultMinSimilarity is the lowest Jaro-Winkler similarity FindChannels accepts.
const DefaultMinSimilarity = 0.8

type Match struct {
	Channel
	Similarity float64
}

// similarity compares the query against both the display name and the username of a channel
// and keeps the better of the two.
func similarity(query string, channel Channel) float64 {
	best := matchr.JaroWinkler(query, strings.ToLower(channel.Text), false)

	parsed, err := url.Parse(channel.URL)
	if err == nil {
		username := strings.ToLower(path.Base(parsed.Path))
		best = max(best, matchr.JaroWinkler(query, username, false))
	}
	return best
}

// FindChannels searches every recorded crawl for channels whose name resembles query. Each
// channel appears once, as recorded by its latest crawl, most similar first.
func (s *Store) FindChannels(ctx context.Context, query string, minSimilarity float64, limit int) ([]Match, error) {
	query = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(query), "@"))
	if query == "" {
		return nil, nil
	}
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}

	var channels []Channel
	err := s.db.SelectContext(
		ctx,
		&channels,
		`select * from crawl_channels order by crawl_id desc, rank`,
	)
	if err != nil {
		return nil, fmt.Errorf("find channels: %w", err)
	}

	seen := make(map[string]struct{})
	var matches []Match
	for _, c := range channels {
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}

		score := similarity(query, c)
		if score < minSimilarity {
			continue
		}
		matches = append(matches, Match{Channel: c, Similarity: score})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		// descending
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
