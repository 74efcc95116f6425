package model

import (
	"net/url"
	"strings"
	"time"
)

// Window restricts posts to a recency range.
type Window string

const (
	WindowAll   Window = "all"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// Duration returns the length of the window; zero means unrestricted.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

// AllCategories selects every category in a FilterState.
const AllCategories = "all"

// FilterState is the explore page's filter selection.
type FilterState struct {
	Search     string
	Category   string // AllCategories or a Category value
	Location   string
	Experience string // empty means any
	Window     Window
}

// DefaultFilter is the cleared filter state.
func DefaultFilter() FilterState {
	return FilterState{Category: AllCategories, Window: WindowAll}
}

// FilterFromQuery reads a FilterState from URL query values. Unknown
// categories and windows fall back to their defaults.
func FilterFromQuery(q url.Values) FilterState {
	s := DefaultFilter()
	s.Search = strings.TrimSpace(q.Get("q"))
	s.Location = strings.TrimSpace(q.Get("location"))
	s.Experience = strings.TrimSpace(q.Get("experience"))
	if c, err := ParseCategory(q.Get("category")); err == nil {
		s.Category = string(c)
	}
	switch w := Window(q.Get("time")); w {
	case WindowWeek, WindowMonth:
		s.Window = w
	}
	return s
}

// Query encodes the state as URL query values, omitting defaults.
func (s FilterState) Query() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set("q", s.Search)
	}
	if s.Category != "" && s.Category != AllCategories {
		q.Set("category", s.Category)
	}
	if s.Location != "" {
		q.Set("location", s.Location)
	}
	if s.Experience != "" {
		q.Set("experience", s.Experience)
	}
	if s.Window != "" && s.Window != WindowAll {
		q.Set("time", string(s.Window))
	}
	return q
}

// IsDefault reports whether no filter is active.
func (s FilterState) IsDefault() bool {
	return len(s.Query()) == 0
}
