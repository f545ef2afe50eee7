// Package auth keeps the browser session's token and guards navigation on it.
package auth

import (
	"strings"

	"jobboard-portal/pkg/registry"
)

// Guard redirects between the public and the authenticated parts of the portal.
// Token presence alone counts as authenticated; tokens are never validated here.
type Guard struct {
	PublicViews          []string
	DefaultPublic        string
	DefaultAuthenticated string
}

func NewGuard(reg *registry.ViewRegistry) *Guard {
	return &Guard{
		PublicViews:          reg.PublicPaths(),
		DefaultPublic:        reg.DefaultPublic,
		DefaultAuthenticated: reg.DefaultAuthenticated,
	}
}

// Check returns the redirect target for a navigation to path, or ok when the
// navigation may proceed.
func (g *Guard) Check(token, path string) (redirect string, ok bool) {
	public := g.IsPublic(path)
	switch {
	case token == "" && !public:
		return g.DefaultPublic, false
	case token != "" && public:
		return g.DefaultAuthenticated, false
	}
	return "", true
}

func (g *Guard) IsPublic(path string) bool {
	for _, p := range g.PublicViews {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
