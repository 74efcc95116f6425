package model

import (
	"fmt"
	"time"
)

// Placement is the display slot an ad is assigned to.
type Placement string

const (
	PlacementTop          Placement = "top"
	PlacementBetweenCards Placement = "betweenCards"
)

// ParsePlacement converts a raw string to a Placement.
func ParsePlacement(s string) (Placement, error) {
	p := Placement(s)
	switch p {
	case PlacementTop, PlacementBetweenCards:
		return p, nil
	}
	return "", fmt.Errorf("unknown placement %q", s)
}

// Ad is a sponsored placement shown alongside posts.
type Ad struct {
	ID           string
	Title        string
	ImagePath    string
	RedirectLink string
	Placement    Placement
	CreatedAt    time.Time
}

// AdFromFields builds an Ad from stored document fields. Unknown placements
// are kept verbatim so they are never shown.
func AdFromFields(id string, f map[string]string, createdAt time.Time) Ad {
	return Ad{
		ID:           id,
		Title:        f["title"],
		ImagePath:    f["imagePath"],
		RedirectLink: f["redirectLink"],
		Placement:    Placement(f["placement"]),
		CreatedAt:    createdAt,
	}
}

// SplitAds returns the top-banner ads and the inline pool, each in input order.
func SplitAds(ads []Ad) (top, inline []Ad) {
	for _, a := range ads {
		switch a.Placement {
		case PlacementTop:
			top = append(top, a)
		case PlacementBetweenCards:
			inline = append(inline, a)
		}
	}
	return top, inline
}
