package reviewengine

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// BuildURL joins a base URL with path segments. The site root keeps its
// trailing slash; deeper paths do not get one.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if len(pathSegments) == 0 {
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		return u.String()
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseDuration accepts Go durations ("90m") and whole days ("7d").
func ParseDuration(s string) (time.Duration, error) {
	if d, ok := strings.CutSuffix(s, "d"); ok {
		days, err := time.ParseDuration(d + "h")
		if err != nil {
			return 0, err
		}
		return days * 24, nil
	}
	return time.ParseDuration(s)
}
