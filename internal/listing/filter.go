package listing

import (
	"strings"
	"time"

	"opportunity-board/internal/model"
)

// Apply returns the posts matching every active predicate of s, in input
// order. The input slice is not modified.
func Apply(posts []model.Post, s model.FilterState, now time.Time) []model.Post {
	m := newMatcher(s, now)
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

type matcher struct {
	category   string
	search     string
	location   string
	experience string
	window     time.Duration
	now        time.Time
}

func newMatcher(s model.FilterState, now time.Time) matcher {
	m := matcher{
		search:     strings.ToLower(strings.TrimSpace(s.Search)),
		location:   strings.ToLower(strings.TrimSpace(s.Location)),
		experience: strings.TrimSpace(s.Experience),
		window:     s.Window.Duration(),
		now:        now,
	}
	if s.Category != model.AllCategories {
		m.category = s.Category
	}
	return m
}

func (m matcher) match(p model.Post) bool {
	if m.category != "" && string(p.Category) != m.category {
		return false
	}
	if m.search != "" && !strings.Contains(p.Searchable(), m.search) {
		return false
	}
	if m.location != "" && p.Location != "" &&
		!strings.Contains(strings.ToLower(p.Location), m.location) {
		return false
	}
	if m.experience != "" && p.ExperienceLevel != "" && p.ExperienceLevel != m.experience {
		return false
	}
	// undated posts always pass the recency window
	if m.window > 0 && p.Dated() && m.now.Sub(p.PostedAt) > m.window {
		return false
	}
	return true
}
