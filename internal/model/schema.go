package model

import (
	"fmt"
	"strings"
)

// InputKind is the form control used to edit a field.
type InputKind string

const (
	InputText     InputKind = "text"
	InputTextarea InputKind = "textarea"
	InputSelect   InputKind = "select"
	InputDate     InputKind = "date"
)

// Field describes one editable attribute of a collection's documents.
type Field struct {
	Name     string
	Label    string
	Kind     InputKind
	Required bool
	Full     bool // spans the full form row
	Options  []string
}

// ExperienceLevels are the selectable experience values for jobs and internships.
var ExperienceLevels = []string{"Entry Level", "Junior", "Mid Level", "Senior", "Lead"}

// HackathonModes are the selectable hackathon formats.
var HackathonModes = []string{"Online", "Offline", "Hybrid"}

var commonFields = []Field{
	{Name: "title", Label: "Title", Kind: InputText, Required: true},
	{Name: "description", Label: "Description", Kind: InputTextarea, Full: true},
	{Name: "imagePath", Label: "Image Path", Kind: InputText, Full: true},
	{Name: "applyLink", Label: "Apply / Registration Link", Kind: InputText, Full: true},
}

func jobFields() []Field {
	return []Field{
		{Name: "company", Label: "Company", Kind: InputText},
		{Name: "location", Label: "Location", Kind: InputText},
		{Name: "experienceLevel", Label: "Experience Level", Kind: InputSelect, Options: append([]string{""}, ExperienceLevels...)},
		{Name: "requirements", Label: "Requirements", Kind: InputTextarea, Full: true},
		{Name: "benefits", Label: "Benefits", Kind: InputTextarea, Full: true},
	}
}

func eventFields() []Field {
	return []Field{
		{Name: "speaker", Label: "Speaker", Kind: InputText},
		{Name: "venue", Label: "Venue", Kind: InputText},
		{Name: "eventDate", Label: "Event Date", Kind: InputDate},
	}
}

// Fields returns the field schema of a post category.
func (c Category) Fields() []Field {
	out := append([]Field(nil), commonFields...)
	switch c {
	case CategoryJobs:
		out = append(out, jobFields()...)
	case CategoryInternships:
		out = append(out, jobFields()...)
		out = append(out, Field{Name: "duration", Label: "Duration", Kind: InputText})
	case CategoryHackathons:
		out = append(out,
			Field{Name: "organizer", Label: "Organizer", Kind: InputText},
			Field{Name: "mode", Label: "Mode", Kind: InputSelect, Options: HackathonModes},
			Field{Name: "prizePool", Label: "Prize Pool", Kind: InputText},
			Field{Name: "deadline", Label: "Deadline", Kind: InputDate},
		)
	case CategoryTechEvents, CategorySeminars:
		out = append(out, eventFields()...)
	}
	return out
}

// AdFields is the field schema of the ads collection.
func AdFields() []Field {
	return []Field{
		{Name: "title", Label: "Ad Title", Kind: InputText, Required: true},
		{Name: "imagePath", Label: "Image Path", Kind: InputText, Full: true},
		{Name: "redirectLink", Label: "Redirect Link", Kind: InputText, Full: true},
		{Name: "placement", Label: "Placement", Kind: InputSelect, Options: []string{string(PlacementTop), string(PlacementBetweenCards)}},
	}
}

// Schema returns the field schema for a content collection: a post category
// or the ads collection.
func Schema(collection string) ([]Field, error) {
	if collection == CollectionAds {
		return AdFields(), nil
	}
	c, err := ParseCategory(collection)
	if err != nil {
		return nil, err
	}
	return c.Fields(), nil
}

// ContentCollections lists the collections managed from the admin console.
func ContentCollections() []string {
	out := make([]string, 0, 6)
	for _, c := range Categories() {
		out = append(out, c.Collection())
	}
	return append(out, CollectionAds)
}

// MissingFieldError reports a required field left empty.
type MissingFieldError struct{ Field Field }

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field.Label)
}

// Project keeps only the schema's fields from values, trimmed, and checks
// required fields and select options. Absent fields become empty strings.
func Project(fields []Field, values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(values[f.Name])
		if f.Required && v == "" {
			return nil, &MissingFieldError{Field: f}
		}
		if f.Kind == InputSelect && v != "" && !contains(f.Options, v) {
			return nil, fmt.Errorf("%s: %q is not an allowed option", f.Label, v)
		}
		out[f.Name] = v
	}
	return out, nil
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
