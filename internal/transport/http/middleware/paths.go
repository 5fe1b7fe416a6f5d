package middleware

import (
	"path"
	"strings"
)

// PathMatcher reports whether a request path falls under one of the
// configured protected prefixes. A prefix matches itself and everything below
// it, so "/dashboard" covers "/dashboard" and "/dashboard/users" but not
// "/dashboards".
type PathMatcher struct {
	prefixes []string
}

// NewPathMatcher normalizes prefixes (trailing slashes dropped). The root
// prefix "/" is ignored; it would also protect the public entry route.
func NewPathMatcher(prefixes ...string) *PathMatcher {
	m := &PathMatcher{}
	for _, p := range prefixes {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		m.prefixes = append(m.prefixes, p)
	}
	return m
}

func (m *PathMatcher) Matches(p string) bool {
	if p == "" {
		return false
	}
	p = path.Clean("/" + p)
	for _, prefix := range m.prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func (m *PathMatcher) Prefixes() []string {
	return append([]string(nil), m.prefixes...)
}
