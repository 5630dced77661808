// Package classify decides whether a page is eligible for the full-height
// map enhancement. The check is a pure URL-path predicate and gates every
// other behavior in the engine.
package classify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Classifier matches URL paths against the configured listing path patterns.
type Classifier struct {
	patterns []glob.Glob
}

// New compiles the given listing path patterns. Patterns use glob syntax with
// '/' as the separator, so a wildcard never crosses into a deeper path
// segment: "/observations" matches only the listing page itself, never
// "/observations/someuser".
func New(paths []string) (*Classifier, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one listing path is required")
	}

	patterns := make([]glob.Glob, 0, len(paths))
	for _, p := range paths {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid listing path pattern %q: %w", p, err)
		}
		patterns = append(patterns, g)
	}

	return &Classifier{patterns: patterns}, nil
}

// Eligible reports whether the URL's path is a listing page. A trailing slash
// is equivalent to none, and the query string is ignored. Unparseable URLs
// are never eligible.
func (c *Classifier) Eligible(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	for _, g := range c.patterns {
		if g.Match(path) {
			return true
		}
	}
	return false
}
