package digest

import (
	"strings"
	"time"
)

// ExpandVars substitutes placeholders in config-provided text (title,
// preface, postscript).
//
// Supported variables:
// - {.CurrentDate} => YYYY-MM-DD (UTC)
// - {.Window}      => the digest window, e.g. "week"
func ExpandVars(s string, now time.Time, window string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	r := strings.NewReplacer(
		"{.CurrentDate}", now.UTC().Format("2006-01-02"),
		"{.Window}", window,
	)
	return r.Replace(s)
}
