package listing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }

// fakeSource serves fixed documents per collection and fails the listed ones.
type fakeSource struct {
	docs map[string][]storage.Document
	fail map[string]bool
}

func (f fakeSource) List(ctx context.Context, collection string) ([]storage.Document, error) {
	if f.fail[collection] {
		return nil, errors.New("boom")
	}
	return f.docs[collection], nil
}

func samplePosts() []model.Post {
	return []model.Post{
		{ID: "1", Category: model.CategoryJobs, Title: "Backend Engineer", Company: "Acme", Location: "Berlin", ExperienceLevel: "Senior", PostedAt: daysAgo(1)},
		{ID: "2", Category: model.CategoryInternships, Title: "Data Intern", Company: "Globex", Location: "Remote", ExperienceLevel: "Entry Level", PostedAt: daysAgo(3)},
		{ID: "3", Category: model.CategoryHackathons, Title: "Go Jam", Organizer: "Gophers", Mode: "Online", PostedAt: daysAgo(12)},
		{ID: "4", Category: model.CategorySeminars, Title: "Intro to Rust", Venue: "Hall A", PostedAt: daysAgo(45)},
		{ID: "5", Category: model.CategoryTechEvents, Title: "Cloud Meetup", Description: "Talks about Go in the cloud"},
	}
}

func ids(posts []model.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestApplyDefaultIsIdentity(t *testing.T) {
	in := samplePosts()
	got := Apply(in, model.DefaultFilter(), now)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("default filter changed the list: %v", ids(got))
	}
}

func TestApplyCategoryExcludesOthers(t *testing.T) {
	for _, c := range model.Categories() {
		s := model.DefaultFilter()
		s.Category = string(c)
		for _, p := range Apply(samplePosts(), s, now) {
			if p.Category != c {
				t.Errorf("category %s: got post %s from %s", c, p.ID, p.Category)
			}
		}
	}
}

func TestApplyIsIdempotentAndPure(t *testing.T) {
	states := []model.FilterState{
		{Category: "all", Search: "go", Window: model.WindowAll},
		{Category: "jobs", Location: "ber", Window: model.WindowWeek},
		{Category: "all", Experience: "Senior", Window: model.WindowMonth},
	}
	for _, s := range states {
		in := samplePosts()
		before := append([]model.Post(nil), in...)
		once := Apply(in, s, now)
		twice := Apply(once, s, now)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("%+v: not idempotent: %v vs %v", s, ids(once), ids(twice))
		}
		if !reflect.DeepEqual(in, before) {
			t.Errorf("%+v: input mutated", s)
		}
	}
}

func TestApplyPredicates(t *testing.T) {
	cases := []struct {
		name  string
		state model.FilterState
		want  []string
	}{
		{"search title case-insensitive", model.FilterState{Category: "all", Search: "GO JAM"}, []string{"3"}},
		{"search organization", model.FilterState{Category: "all", Search: "globex"}, []string{"2"}},
		{"search description", model.FilterState{Category: "all", Search: "cloud"}, []string{"5"}},
		{"location skips posts without location", model.FilterState{Category: "all", Location: "berlin"}, []string{"1", "3", "4", "5"}},
		{"experience skips posts without level", model.FilterState{Category: "all", Experience: "Senior"}, []string{"1", "3", "4", "5"}},
		{"conjunction", model.FilterState{Category: "jobs", Search: "engineer", Location: "ber", Experience: "Senior", Window: model.WindowWeek}, []string{"1"}},
		{"no match", model.FilterState{Category: "all", Search: "cobol"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Apply(samplePosts(), tc.state, now))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyRecencyWindows(t *testing.T) {
	posts := []model.Post{
		{ID: "2d", Category: model.CategoryJobs, PostedAt: daysAgo(2)},
		{ID: "10d", Category: model.CategoryJobs, PostedAt: daysAgo(10)},
		{ID: "40d", Category: model.CategoryJobs, PostedAt: daysAgo(40)},
	}
	cases := map[model.Window][]string{
		model.WindowWeek:  {"2d"},
		model.WindowMonth: {"2d", "10d"},
		model.WindowAll:   {"2d", "10d", "40d"},
	}
	for w, want := range cases {
		s := model.DefaultFilter()
		s.Window = w
		if got := ids(Apply(posts, s, now)); !reflect.DeepEqual(got, want) {
			t.Errorf("window %s: got %v, want %v", w, got, want)
		}
	}
}

func TestApplyUndatedPassesRecency(t *testing.T) {
	s := model.DefaultFilter()
	s.Window = model.WindowWeek
	got := Apply([]model.Post{{ID: "x", Category: model.CategoryJobs}}, s, now)
	if len(got) != 1 {
		t.Fatalf("undated post excluded by recency window")
	}
}

func TestAggregateSkipsFailingCollection(t *testing.T) {
	cats := []model.Category{
		model.CategoryJobs, model.CategoryInternships, model.CategoryHackathons,
		model.CategoryTechEvents, model.CategorySeminars, model.Category("workshops"),
	}
	src := fakeSource{docs: map[string][]storage.Document{}, fail: map[string]bool{"hackathons": true}}
	for i, c := range cats {
		src.docs[c.Collection()] = []storage.Document{
			{ID: fmt.Sprintf("%s-1", c), Fields: map[string]string{"title": string(c)}, PostedAt: daysAgo(i)},
		}
	}
	a := &Aggregator{Store: src, Categories: cats}
	got := a.Aggregate(context.Background())
	if len(got) != 5 {
		t.Fatalf("got %d posts, want 5: %v", len(got), ids(got))
	}
	for _, p := range got {
		if p.Category == model.CategoryHackathons {
			t.Errorf("post %s from failing collection", p.ID)
		}
		if p.Title != string(p.Category) {
			t.Errorf("post %s tagged %s, want category from its collection", p.ID, p.Category)
		}
	}
}

func TestAggregateSortsNewestFirstUndatedLast(t *testing.T) {
	src := fakeSource{docs: map[string][]storage.Document{
		"jobs":     {{ID: "j-old", PostedAt: daysAgo(9)}, {ID: "j-undated"}},
		"seminars": {{ID: "s-new", PostedAt: daysAgo(1)}},
		"hackathons": {
			{ID: "h-mid", PostedAt: daysAgo(5)},
		},
	}}
	got := ids((&Aggregator{Store: src}).Aggregate(context.Background()))
	want := []string{"s-new", "h-mid", "j-old", "j-undated"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadAdsFailureYieldsNone(t *testing.T) {
	a := &Aggregator{Store: fakeSource{fail: map[string]bool{model.CollectionAds: true}}}
	if ads := a.LoadAds(context.Background()); len(ads) != 0 {
		t.Fatalf("got %d ads, want 0", len(ads))
	}
}

func numbered(n int) []model.Post {
	posts := make([]model.Post, n)
	for i := range posts {
		posts[i] = model.Post{ID: fmt.Sprint(i), Category: model.CategoryJobs, Title: fmt.Sprint("post ", i)}
	}
	return posts
}

func TestRenderInsertsAdsEveryFourPosts(t *testing.T) {
	ads := []model.Ad{
		{ID: "a1", Placement: model.PlacementBetweenCards},
		{ID: "banner", Placement: model.PlacementTop},
		{ID: "a2", Placement: model.PlacementBetweenCards},
	}
	page := Renderer{}.Render(numbered(10), ads, model.DefaultFilter(), now)
	var seq []string
	for _, it := range page.Items {
		if it.Ad != nil {
			seq = append(seq, "ad:"+it.Ad.ID)
		} else {
			seq = append(seq, it.Card.ID)
		}
	}
	want := []string{"0", "1", "2", "3", "ad:a1", "4", "5", "6", "7", "ad:a2", "8", "9"}
	if !reflect.DeepEqual(seq, want) {
		t.Fatalf("sequence = %v, want %v", seq, want)
	}
	if page.Banner == nil || page.Banner.ID != "banner" {
		t.Errorf("banner = %+v, want banner ad", page.Banner)
	}
	if page.CountText != "10 results" {
		t.Errorf("count text = %q", page.CountText)
	}
}

func TestRenderWithoutInlineAds(t *testing.T) {
	page := Renderer{}.Render(numbered(10), nil, model.DefaultFilter(), now)
	if len(page.Items) != 10 {
		t.Fatalf("got %d items, want 10", len(page.Items))
	}
	for _, it := range page.Items {
		if it.Ad != nil {
			t.Fatalf("unexpected ad %s", it.Ad.ID)
		}
	}
	if page.Banner != nil {
		t.Errorf("unexpected banner")
	}
}

func TestInterleaveCyclesPool(t *testing.T) {
	got := Interleave(13, 2, 4)
	want := []int{-1, -1, -1, -1, 0, -1, -1, -1, 1, -1, -1, -1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	page := Renderer{}.Render(nil, nil, model.DefaultFilter(), now)
	if !page.Empty() || page.CountText != "0 results" {
		t.Fatalf("page = %+v", page)
	}
	if CountText(1) != "1 result" {
		t.Errorf("CountText(1) = %q", CountText(1))
	}
}

func TestCardPlaceholders(t *testing.T) {
	r := Renderer{SiteName: "Syntax Syndicate", TruncateAt: 10}
	c := r.Card(model.Post{ID: "7", Category: model.CategoryTechEvents, Description: "abcdefghijklmnop"}, now)
	if c.Title != "Untitled" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Org != "Syntax Syndicate" {
		t.Errorf("org = %q", c.Org)
	}
	if c.Posted != "Recently" {
		t.Errorf("posted = %q", c.Posted)
	}
	if c.Description != "abcdefghij..." {
		t.Errorf("description = %q", c.Description)
	}
	if c.Link != "/posts/techEvents/7" {
		t.Errorf("link = %q", c.Link)
	}
	if c.Badge.Label != "Tech Event" {
		t.Errorf("badge = %+v", c.Badge)
	}
}

func TestCardPrefersSummaryAndTags(t *testing.T) {
	p := model.Post{Category: model.CategoryInternships, Title: "t", Description: "long text", Summary: "short", Duration: "3 months", ExperienceLevel: "Junior", Mode: "Online"}
	c := Renderer{}.Card(p, now)
	if c.Description != "short" {
		t.Errorf("description = %q", c.Description)
	}
	if !reflect.DeepEqual(c.Tags, []string{"📊 Junior", "⏱ 3 months"}) {
		t.Errorf("tags = %v", c.Tags)
	}
	if c.Place != "Online" {
		t.Errorf("place = %q", c.Place)
	}
}

func TestTimeAgo(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "Just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{daysAgo(6), "6d ago"},
		{daysAgo(10), "May 22"},
		{time.Time{}, "Recently"},
	}
	for _, tc := range cases {
		if got := TimeAgo(tc.at, now); got != tc.want {
			t.Errorf("TimeAgo(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(daysAgo(0)); got != "June 1, 2025" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "N/A" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := Truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 0); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}
