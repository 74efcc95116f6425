package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"opportunity-board/internal/listing"
	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"
)

const homeCards = 6

type option struct {
	Value string
	Label string
}

func categoryOptions() []option {
	opts := []option{{Value: model.AllCategories, Label: "All Categories"}}
	for _, c := range model.Categories() {
		opts = append(opts, option{Value: string(c), Label: c.Badge().Label})
	}
	return opts
}

var windowOptions = []option{
	{Value: string(model.WindowAll), Label: "Any Time"},
	{Value: string(model.WindowWeek), Label: "This Week"},
	{Value: string(model.WindowMonth), Label: "This Month"},
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page := s.Feed.Page(model.DefaultFilter())
	cards := make([]*listing.Card, 0, homeCards)
	for _, it := range page.Items {
		if it.Card != nil && len(cards) < homeCards {
			cards = append(cards, it.Card)
		}
	}
	s.render(w, r, http.StatusOK, "home.html", "Home", map[string]any{
		"Banner":     page.Banner,
		"Cards":      cards,
		"Count":      page.Count,
		"Categories": categoryOptions()[1:],
	})
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	state := model.FilterFromQuery(r.URL.Query())
	page := s.Feed.Page(state)
	s.render(w, r, http.StatusOK, "explore.html", "Explore", map[string]any{
		"Page":        page,
		"Categories":  categoryOptions(),
		"Experiences": model.ExperienceLevels,
		"Windows":     windowOptions,
	})
}

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	cat, err := model.ParseCategory(r.PathValue("category"))
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Post not found")
		return
	}
	id := r.PathValue("id")
	doc, err := s.Store.Get(r.Context(), cat.Collection(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		slog.Error("web: load post failed", "category", cat, "id", id, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not load this post")
		return
	}
	post := model.PostFromFields(cat, doc.ID, doc.Fields, doc.PostedAt)
	card := s.Feed.Card(post)
	s.render(w, r, http.StatusOK, "detail.html", card.Title, map[string]any{
		"Post":   post,
		"Card":   card,
		"Posted": listing.FormatDate(post.PostedAt),
	})
}

type feedItem struct {
	Type string          `json:"type"`
	Card *listing.Card   `json:"card,omitempty"`
	Ad   *listing.AdCard `json:"ad,omitempty"`
}

type feedResponse struct {
	Filter     map[string]string `json:"filter"`
	Count      int               `json:"count"`
	CountText  string            `json:"countText"`
	Banner     *listing.AdCard   `json:"banner,omitempty"`
	Items      []feedItem        `json:"items"`
	Generation uint64            `json:"generation"`
	LoadedAt   time.Time         `json:"loadedAt"`
}

func (s *Server) apiFeed(w http.ResponseWriter, r *http.Request) {
	state := model.FilterFromQuery(r.URL.Query())
	page := s.Feed.Page(state)
	snap := s.Feed.Snapshot()
	resp := feedResponse{
		Filter: map[string]string{
			"q":          state.Search,
			"category":   state.Category,
			"location":   state.Location,
			"experience": state.Experience,
			"time":       string(state.Window),
		},
		Count:      page.Count,
		CountText:  page.CountText,
		Banner:     page.Banner,
		Items:      make([]feedItem, 0, len(page.Items)),
		Generation: snap.Generation,
		LoadedAt:   snap.LoadedAt,
	}
	for _, it := range page.Items {
		if it.Ad != nil {
			resp.Items = append(resp.Items, feedItem{Type: "ad", Ad: it.Ad})
		} else {
			resp.Items = append(resp.Items, feedItem{Type: "post", Card: it.Card})
		}
	}
	jsonOK(w, resp)
}
