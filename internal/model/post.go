package model

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies one of the fixed post collections.
type Category string

const (
	CategoryJobs        Category = "jobs"
	CategoryInternships Category = "internships"
	CategoryHackathons  Category = "hackathons"
	CategoryTechEvents  Category = "techEvents"
	CategorySeminars    Category = "seminars"
)

// Collections that are not post categories.
const (
	CollectionAds      = "ads"
	CollectionUsers    = "users"
	CollectionSessions = "sessions"
	CollectionLogins   = "credentials"
)

// Categories lists every post category in display order.
func Categories() []Category {
	return []Category{
		CategoryJobs,
		CategoryInternships,
		CategoryHackathons,
		CategoryTechEvents,
		CategorySeminars,
	}
}

// ParseCategory converts a raw string to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	switch c {
	case CategoryJobs, CategoryInternships, CategoryHackathons, CategoryTechEvents, CategorySeminars:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Collection returns the store collection backing the category.
func (c Category) Collection() string { return string(c) }

// Badge holds the display attributes of a category.
type Badge struct {
	Icon  string
	Label string
	Class string
	Emoji string
}

// Badge returns the card badge for the category.
func (c Category) Badge() Badge {
	switch c {
	case CategoryJobs:
		return Badge{Icon: "💼", Label: "Job", Class: "badge-job", Emoji: "🏢"}
	case CategoryInternships:
		return Badge{Icon: "🎓", Label: "Internship", Class: "badge-internship", Emoji: "📚"}
	case CategoryHackathons:
		return Badge{Icon: "⚡", Label: "Hackathon", Class: "badge-hackathon", Emoji: "🏆"}
	case CategoryTechEvents:
		return Badge{Icon: "🛠", Label: "Tech Event", Class: "badge-techEvent", Emoji: "💡"}
	case CategorySeminars:
		return Badge{Icon: "🎤", Label: "Seminar", Class: "badge-seminar", Emoji: "🎓"}
	}
	return Badge{Icon: "📄", Label: string(c), Emoji: "📄"}
}

// Post is a single listing. Category is annotated from the collection the
// post was read from, never taken from stored data.
type Post struct {
	ID              string
	Category        Category
	Title           string
	Description     string
	Company         string
	Organizer       string
	Speaker         string
	Location        string
	Venue           string
	Mode            string
	ExperienceLevel string
	Duration        string
	PrizePool       string
	Deadline        string
	EventDate       string
	Requirements    string
	Benefits        string
	ImagePath       string
	ApplyLink       string
	Summary         string
	CreatedBy       string
	PostedAt        time.Time // zero when the store has no timestamp
}

// PostFromFields builds a Post from stored document fields.
func PostFromFields(cat Category, id string, f map[string]string, postedAt time.Time) Post {
	return Post{
		ID:              id,
		Category:        cat,
		Title:           f["title"],
		Description:     f["description"],
		Company:         f["company"],
		Organizer:       f["organizer"],
		Speaker:         f["speaker"],
		Location:        f["location"],
		Venue:           f["venue"],
		Mode:            f["mode"],
		ExperienceLevel: f["experienceLevel"],
		Duration:        f["duration"],
		PrizePool:       f["prizePool"],
		Deadline:        f["deadline"],
		EventDate:       f["eventDate"],
		Requirements:    f["requirements"],
		Benefits:        f["benefits"],
		ImagePath:       f["imagePath"],
		ApplyLink:       f["applyLink"],
		Summary:         f["summary"],
		CreatedBy:       f["createdBy"],
		PostedAt:        postedAt,
	}
}

// Value returns the named schema field of the post.
func (p Post) Value(name string) string {
	switch name {
	case "title":
		return p.Title
	case "description":
		return p.Description
	case "company":
		return p.Company
	case "organizer":
		return p.Organizer
	case "speaker":
		return p.Speaker
	case "location":
		return p.Location
	case "venue":
		return p.Venue
	case "mode":
		return p.Mode
	case "experienceLevel":
		return p.ExperienceLevel
	case "duration":
		return p.Duration
	case "prizePool":
		return p.PrizePool
	case "deadline":
		return p.Deadline
	case "eventDate":
		return p.EventDate
	case "requirements":
		return p.Requirements
	case "benefits":
		return p.Benefits
	case "imagePath":
		return p.ImagePath
	case "applyLink":
		return p.ApplyLink
	case "summary":
		return p.Summary
	}
	return ""
}

// Dated reports whether the post carries a posting timestamp.
func (p Post) Dated() bool { return !p.PostedAt.IsZero() }

// Organization is the company or organizer shown on cards and searched.
func (p Post) Organization() string {
	switch p.Category {
	case CategoryJobs, CategoryInternships:
		return p.Company
	case CategoryHackathons:
		return p.Organizer
	}
	return ""
}

// Searchable projects the fields matched by free-text search, lowercased.
func (p Post) Searchable() string {
	parts := []string{p.Title, p.Organization(), p.Description}
	return strings.ToLower(strings.Join(parts, " "))
}

// Place is the location shown on cards: location, venue, or Online.
func (p Post) Place() string {
	switch {
	case p.Location != "":
		return p.Location
	case p.Venue != "":
		return p.Venue
	case p.Mode == "Online":
		return "Online"
	}
	return ""
}
