// pkg/registry/schema.go
package registry

// ViewRegistry lists the portal's navigable views and which of them are reachable
// without a session token.
type ViewRegistry struct {
	Version              string `json:"version"`
	LastUpdated          string `json:"lastUpdated"`
	DefaultPublic        string `json:"defaultPublic"`
	DefaultAuthenticated string `json:"defaultAuthenticated"`
	Views                []View `json:"views"`
}

type View struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
	Public      bool   `json:"public"`
	// Nav puts the view in the page header for signed-in users.
	Nav bool `json:"nav"`
}
