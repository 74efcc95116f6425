package model

import (
	"errors"
	"testing"
)

func TestSchemaCoversEveryContentCollection(t *testing.T) {
	for _, col := range ContentCollections() {
		fields, err := Schema(col)
		if err != nil {
			t.Fatalf("Schema(%q) error: %v", col, err)
		}
		if len(fields) == 0 || fields[0].Name != "title" || !fields[0].Required {
			t.Errorf("Schema(%q) must start with a required title, got %+v", col, fields)
		}
	}
	if _, err := Schema("users"); err == nil {
		t.Error("Schema(users) expected error, got nil")
	}
}

func TestCategoryFieldsPerKind(t *testing.T) {
	cases := []struct {
		cat  Category
		want []string
		not  []string
	}{
		{CategoryJobs, []string{"company", "location", "experienceLevel"}, []string{"duration", "organizer"}},
		{CategoryInternships, []string{"company", "duration"}, []string{"venue"}},
		{CategoryHackathons, []string{"organizer", "mode", "prizePool", "deadline"}, []string{"company"}},
		{CategoryTechEvents, []string{"speaker", "venue", "eventDate"}, []string{"location"}},
		{CategorySeminars, []string{"speaker", "venue", "eventDate"}, []string{"experienceLevel"}},
	}
	for _, c := range cases {
		names := map[string]bool{}
		for _, f := range c.cat.Fields() {
			names[f.Name] = true
		}
		for _, n := range c.want {
			if !names[n] {
				t.Errorf("%s: missing field %q", c.cat, n)
			}
		}
		for _, n := range c.not {
			if names[n] {
				t.Errorf("%s: unexpected field %q", c.cat, n)
			}
		}
	}
}

func TestProjectDropsUnknownFields(t *testing.T) {
	got, err := Project(CategoryJobs.Fields(), map[string]string{
		"title":     "  Go Developer ",
		"company":   "Acme",
		"createdBy": "intruder",
		"prizePool": "1M",
	})
	if err != nil {
		t.Fatalf("Project error: %v", err)
	}
	if got["title"] != "Go Developer" {
		t.Errorf("title = %q, want trimmed value", got["title"])
	}
	if _, ok := got["createdBy"]; ok {
		t.Error("createdBy must not pass through the schema")
	}
	if _, ok := got["prizePool"]; ok {
		t.Error("prizePool is not a job field")
	}
	if v, ok := got["location"]; !ok || v != "" {
		t.Errorf("location should be present and empty, got %q (present=%v)", v, ok)
	}
}

func TestProjectRequiresTitle(t *testing.T) {
	_, err := Project(CategorySeminars.Fields(), map[string]string{"title": "   "})
	var mf *MissingFieldError
	if !errors.As(err, &mf) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if mf.Field.Name != "title" {
		t.Errorf("missing field = %q, want title", mf.Field.Name)
	}
}

func TestProjectRejectsUnknownOption(t *testing.T) {
	_, err := Project(AdFields(), map[string]string{"title": "Ad", "placement": "sidebar"})
	if err == nil {
		t.Fatal("expected error for unknown placement")
	}
	if _, err := Project(AdFields(), map[string]string{"title": "Ad", "placement": "top"}); err != nil {
		t.Fatalf("top placement rejected: %v", err)
	}
}
