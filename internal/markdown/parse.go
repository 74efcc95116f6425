// Package markdown reads listing documents written as Markdown with a YAML
// frontmatter block, the format used by `import` and emitted by the digest.
package markdown

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Document is a parsed Markdown file.
type Document struct {
	Frontmatter map[string]any
	Body        string
}

func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse splits r into frontmatter and body. The frontmatter is only
// recognised when the very first line is exactly "---".
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	doc := Document{Frontmatter: map[string]any{}}

	first, err := readLine(br)
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	var body strings.Builder
	if strings.TrimRight(first, "\r\n") == fence {
		var fm strings.Builder
		for {
			l, err := readLine(br)
			if err != nil && !errors.Is(err, io.EOF) {
				return Document{}, err
			}
			if strings.TrimSpace(l) == fence {
				break
			}
			fm.WriteString(l)
			if errors.Is(err, io.EOF) {
				break
			}
		}
		if err := yaml.Unmarshal([]byte(fm.String()), &doc.Frontmatter); err != nil {
			return Document{}, fmt.Errorf("frontmatter: %w", err)
		}
		if doc.Frontmatter == nil {
			doc.Frontmatter = map[string]any{}
		}
	} else {
		body.WriteString(first)
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return Document{}, err
	}
	body.Write(rest)
	doc.Body = body.String()
	return doc, nil
}

func readLine(br *bufio.Reader) (string, error) {
	return br.ReadString('\n')
}

// Fields flattens the frontmatter into string document fields. Scalars are
// formatted with %v, timestamps as RFC 3339 and lists joined with ", ".
// A non-blank body becomes the description unless the frontmatter sets one.
func (d Document) Fields() map[string]string {
	out := make(map[string]string, len(d.Frontmatter)+1)
	for k, v := range d.Frontmatter {
		switch x := v.(type) {
		case nil:
		case string:
			out[k] = strings.TrimSpace(x)
		case time.Time:
			out[k] = x.UTC().Format(time.RFC3339)
		case []any:
			parts := make([]string, 0, len(x))
			for _, p := range x {
				parts = append(parts, fmt.Sprint(p))
			}
			out[k] = strings.Join(parts, ", ")
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	if _, ok := out["description"]; !ok {
		if b := strings.TrimSpace(d.Body); b != "" {
			out["description"] = b
		}
	}
	return out
}

// PostedAt returns the `posted_at` frontmatter value, if any.
func (d Document) PostedAt() (time.Time, bool) {
	switch v := d.Frontmatter["posted_at"].(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
