package listing

import (
	"fmt"
	"net/url"
	"time"

	"opportunity-board/internal/model"
)

// Card is the display form of a post.
type Card struct {
	ID          string         `json:"id"`
	Category    model.Category `json:"category"`
	Badge       model.Badge    `json:"badge"`
	Posted      string         `json:"posted"`
	Title       string         `json:"title"`
	Org         string         `json:"org"`
	Place       string         `json:"place,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Description string         `json:"description"`
	ImagePath   string         `json:"imagePath,omitempty"`
	Link        string         `json:"link"`
	ApplyLink   string         `json:"applyLink,omitempty"`
}

// AdCard is the display form of a sponsored ad.
type AdCard struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ImagePath    string `json:"imagePath,omitempty"`
	RedirectLink string `json:"redirectLink"`
}

// Item is one entry of the card grid: exactly one of Card and Ad is set.
type Item struct {
	Card *Card
	Ad   *AdCard
}

// Page is a rendered explore view.
type Page struct {
	Filter    model.FilterState
	Query     string
	Banner    *AdCard
	Items     []Item
	Count     int
	CountText string
}

// Empty reports whether no post matched.
func (p Page) Empty() bool { return p.Count == 0 }

// Renderer turns posts and ads into cards.
type Renderer struct {
	SiteName   string // organization shown when a post has none
	AdEvery    int    // insert an inline ad before every AdEvery-th post
	TruncateAt int    // description length on cards, in runes
}

func (r Renderer) adEvery() int {
	if r.AdEvery <= 0 {
		return 4
	}
	return r.AdEvery
}

// Interleave returns, for each post index, the index into an inline pool of
// size pool of the ad shown before it, or -1 when none is. An ad precedes
// post i when i > 0 and i is a multiple of every, cycling the pool in order.
func Interleave(posts, pool, every int) []int {
	out := make([]int, posts)
	for i := range out {
		out[i] = -1
		if pool > 0 && every > 0 && i > 0 && i%every == 0 {
			out[i] = (i/every - 1) % pool
		}
	}
	return out
}

// Render builds the explore page for already filtered posts. ads is the full
// ad list in store order; the first top ad becomes the banner and the
// betweenCards ads form the inline pool.
func (r Renderer) Render(posts []model.Post, ads []model.Ad, state model.FilterState, now time.Time) Page {
	top, inline := model.SplitAds(ads)
	page := Page{
		Filter:    state,
		Query:     state.Query().Encode(),
		Count:     len(posts),
		CountText: CountText(len(posts)),
	}
	if len(top) > 0 {
		page.Banner = adCard(top[0])
	}
	slots := Interleave(len(posts), len(inline), r.adEvery())
	page.Items = make([]Item, 0, len(posts)+len(posts)/r.adEvery())
	for i, p := range posts {
		if slots[i] >= 0 {
			page.Items = append(page.Items, Item{Ad: adCard(inline[slots[i]])})
		}
		c := r.Card(p, now)
		page.Items = append(page.Items, Item{Card: &c})
	}
	return page
}

// Card maps a post to its card, substituting placeholders for missing fields.
func (r Renderer) Card(p model.Post, now time.Time) Card {
	c := Card{
		ID:        p.ID,
		Category:  p.Category,
		Badge:     p.Category.Badge(),
		Posted:    TimeAgo(p.PostedAt, now),
		Title:     p.Title,
		Org:       firstNonEmpty(p.Company, p.Organizer, r.SiteName),
		Place:     p.Place(),
		ImagePath: p.ImagePath,
		Link:      PostLink(p.Category, p.ID),
		ApplyLink: p.ApplyLink,
	}
	if c.Title == "" {
		c.Title = "Untitled"
	}
	if p.ExperienceLevel != "" {
		c.Tags = append(c.Tags, "📊 "+p.ExperienceLevel)
	}
	if p.Duration != "" {
		c.Tags = append(c.Tags, "⏱ "+p.Duration)
	}
	if p.PrizePool != "" {
		c.Tags = append(c.Tags, "🏆 "+p.PrizePool)
	}
	if p.Summary != "" {
		c.Description = p.Summary
	} else {
		c.Description = Truncate(p.Description, r.TruncateAt)
	}
	return c
}

func adCard(a model.Ad) *AdCard {
	return &AdCard{ID: a.ID, Title: a.Title, ImagePath: a.ImagePath, RedirectLink: a.RedirectLink}
}

// PostLink is the detail page path of a post.
func PostLink(c model.Category, id string) string {
	return "/posts/" + url.PathEscape(string(c)) + "/" + url.PathEscape(id)
}

// TimeAgo formats t relative to now the way cards show it.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "Recently"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	return t.Format("Jan 2")
}

// FormatDate is the long date used in admin tables.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("January 2, 2006")
}

// Truncate shortens s to max runes, appending "..." when cut. max <= 0 uses 120.
func Truncate(s string, max int) string {
	if max <= 0 {
		max = 120
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max]) + "..."
}

// CountText is the result counter label.
func CountText(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
