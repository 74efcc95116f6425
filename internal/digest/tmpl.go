package digest

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"opportunity-board/internal/listing"
	"opportunity-board/internal/model"
)

type Item struct {
	Title       string
	URL         string
	Org         string
	Place       string
	Posted      string
	Description string
}

type Section struct {
	Category model.Category
	Label    string
	Icon     string
	Items    []Item
}

type Data struct {
	Title      string
	Slug       string
	Datetime   string
	Preface    string
	Postscript string
	Count      int
	Sections   []Section
}

//go:embed digest.tmpl
var digestTpl string

var compiled = template.Must(template.New("digest").Parse(digestTpl))

func Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Options controls how a digest is assembled.
type Options struct {
	Window     model.Window
	Title      string
	Preface    string
	Postscript string
	BaseURL    string // prefix for detail links
	Renderer   listing.Renderer
}

// Build groups the posts published inside opts.Window into one section per
// category, in category order. Undated posts are left out.
func Build(posts []model.Post, opts Options, now time.Time) Data {
	window := opts.Window
	if window.Duration() == 0 {
		window = model.WindowWeek
	}
	state := model.DefaultFilter()
	state.Window = window
	recent := listing.Apply(posts, state, now)

	byCat := map[model.Category][]Item{}
	count := 0
	for _, p := range recent {
		if !p.Dated() {
			continue
		}
		c := opts.Renderer.Card(p, now)
		byCat[p.Category] = append(byCat[p.Category], Item{
			Title:       c.Title,
			URL:         strings.TrimRight(opts.BaseURL, "/") + c.Link,
			Org:         c.Org,
			Place:       c.Place,
			Posted:      p.PostedAt.UTC().Format("Jan 2"),
			Description: c.Description,
		})
		count++
	}

	d := Data{
		Title:      ExpandVars(opts.Title, now, string(window)),
		Slug:       "digest-" + now.UTC().Format("20060102"),
		Datetime:   now.UTC().Format("2006-01-02 15:04"),
		Preface:    ExpandVars(opts.Preface, now, string(window)),
		Postscript: ExpandVars(opts.Postscript, now, string(window)),
		Count:      count,
	}
	if d.Title == "" {
		d.Title = "New opportunities " + now.UTC().Format("2006-01-02")
	}
	for _, c := range model.Categories() {
		items := byCat[c]
		if len(items) == 0 {
			continue
		}
		b := c.Badge()
		d.Sections = append(d.Sections, Section{Category: c, Label: b.Label + "s", Icon: b.Icon, Items: items})
	}
	return d
}
