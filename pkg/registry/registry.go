// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed views.json
var defaultViews []byte

// Default returns the registry compiled into the binary.
func Default() (*ViewRegistry, error) {
	return parse(defaultViews)
}

// LoadRegistry reads a registry file, or the embedded default when path is empty.
func LoadRegistry(path string) (*ViewRegistry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*ViewRegistry, error) {
	var reg ViewRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode view registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks that views are well formed and that both default targets exist
// on the right side of the guard.
func (r *ViewRegistry) Validate() error {
	ids := make(map[string]bool, len(r.Views))
	for _, v := range r.Views {
		if v.ID == "" || v.DisplayName == "" {
			return fmt.Errorf("view %q needs an id and a displayName", v.Path)
		}
		if !strings.HasPrefix(v.Path, "/") {
			return fmt.Errorf("view %s path %q must start with /", v.ID, v.Path)
		}
		if ids[v.ID] {
			return fmt.Errorf("duplicate view id: %s", v.ID)
		}
		ids[v.ID] = true
	}
	if r.DefaultPublic == "" || r.DefaultAuthenticated == "" {
		return fmt.Errorf("view registry needs defaultPublic and defaultAuthenticated")
	}
	if !r.IsPublic(r.DefaultPublic) {
		return fmt.Errorf("defaultPublic %q is not a public view", r.DefaultPublic)
	}
	if r.IsPublic(r.DefaultAuthenticated) {
		return fmt.Errorf("defaultAuthenticated %q must not be public", r.DefaultAuthenticated)
	}
	return nil
}

// Save writes the registry as indented JSON, creating the directory if needed.
func (r *ViewRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// View returns the view with the given id.
func (r *ViewRegistry) View(id string) (*View, bool) {
	for i := range r.Views {
		if r.Views[i].ID == id {
			return &r.Views[i], true
		}
	}
	return nil, false
}

// PublicPaths returns the allow-list of views reachable without a token.
func (r *ViewRegistry) PublicPaths() []string {
	var out []string
	for _, v := range r.Views {
		if v.Public {
			out = append(out, v.Path)
		}
	}
	return out
}

// IsPublic reports whether path is a public view or lies beneath one.
func (r *ViewRegistry) IsPublic(path string) bool {
	for _, v := range r.Views {
		if v.Public && matches(v.Path, path) {
			return true
		}
	}
	return false
}

// NavViews returns the views shown in the header, in registry order.
func (r *ViewRegistry) NavViews() []View {
	var out []View
	for _, v := range r.Views {
		if v.Nav {
			out = append(out, v)
		}
	}
	return out
}

func matches(viewPath, path string) bool {
	if path == viewPath {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(viewPath, "/")+"/")
}
