package auth

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// AllowList holds the path patterns exempt from authorization.
// Patterns use doublestar syntax, so "/login/**" covers everything below /login.
type AllowList struct {
	patterns []string
}

// NewAllowList validates every pattern up front.
func NewAllowList(patterns ...string) (*AllowList, error) {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid allow-list pattern %q", p)
		}
		valid = append(valid, p)
	}
	return &AllowList{patterns: valid}, nil
}

// Allows reports whether path matches any pattern.
func (a *AllowList) Allows(path string) bool {
	if a == nil {
		return false
	}
	for _, p := range a.patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the configured patterns.
func (a *AllowList) Patterns() []string {
	out := make([]string, len(a.patterns))
	copy(out, a.patterns)
	return out
}
