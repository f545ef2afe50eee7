// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"jobboard-portal/pkg/registry"
)

const defaultRegistryPath = "configs/views.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "help":
		help()
		return
	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// runInit writes the embedded default registry to a file so it can be edited.
func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	if _, err := os.Stat(*path); err == nil {
		return fmt.Errorf("%s already exists", *path)
	}
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format("2006-01-02")
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Wrote default registry to %s\n", *path)
	return nil
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "View ID (e.g. profile)")
	viewPath := fs.String("viewPath", "", "URL path of the view (e.g. /profile)")
	displayName := fs.String("displayName", "", "Display name shown in navigation")
	public := fs.Bool("public", false, "Reachable without signing in")
	nav := fs.Bool("nav", false, "Show in the header for signed-in users")
	fs.Parse(args)

	if *id == "" || *viewPath == "" || *displayName == "" {
		fs.Usage()
		return errors.New("id, viewPath and displayName are required for add")
	}

	reg, err := load(*path)
	if err != nil {
		return err
	}
	if _, ok := reg.View(*id); ok {
		return fmt.Errorf("view with ID %s already exists", *id)
	}
	reg.Views = append(reg.Views, registry.View{
		ID:          *id,
		Path:        *viewPath,
		DisplayName: *displayName,
		Public:      *public,
		Nav:         *nav,
	})
	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Added view: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "View ID to update")
	field := fs.String("field", "", "Field to update (path, displayName, public, nav)")
	value := fs.String("value", "", "New value for the field")
	fs.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		fs.Usage()
		return errors.New("id, field and value are required for update")
	}

	reg, err := load(*path)
	if err != nil {
		return err
	}
	view, ok := reg.View(*id)
	if !ok {
		return fmt.Errorf("view with ID %s not found", *id)
	}

	switch *field {
	case "path":
		view.Path = *value
	case "displayName":
		view.DisplayName = *value
	case "public", "nav":
		b, err := strconv.ParseBool(*value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", *field, err)
		}
		if *field == "public" {
			view.Public = b
		} else {
			view.Nav = b
		}
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Updated view %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d views, %d public.\n", len(reg.Views), len(reg.PublicPaths()))
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := fs.String("path", "", "Path to registry file (default: embedded registry)")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}
	fmt.Printf("defaultPublic=%s defaultAuthenticated=%s\n", reg.DefaultPublic, reg.DefaultAuthenticated)
	for _, v := range reg.Views {
		var flags []string
		if v.Public {
			flags = append(flags, "public")
		}
		if v.Nav {
			flags = append(flags, "nav")
		}
		fmt.Printf("  %-14s %-16s %-18s %s\n", v.ID, v.Path, v.DisplayName, strings.Join(flags, ","))
	}
	return nil
}

// load reads the registry file, starting from the embedded default when the file
// does not exist yet.
func load(path string) (*registry.ViewRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if errors.Is(err, os.ErrNotExist) {
		return registry.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func save(reg *registry.ViewRegistry, path string) error {
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid registry: %w", err)
	}
	reg.LastUpdated = time.Now().Format("2006-01-02")
	return reg.Save(path)
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  init     Write the embedded view registry to a file
  add      Add a new view to the registry
  update   Update an existing view's field
  validate Validate the registry file
  list     Print the views in a registry
  help     Show this help message

Examples:
  registry-updater init -path configs/views.json
  registry-updater add -id profile -viewPath /profile -displayName "Profile" -nav
  registry-updater update -id profile -field nav -value false
  registry-updater validate -path configs/views.json

Point the portal at the file with views.registry_path (PORTAL_VIEWS_REGISTRY_PATH).`)
}
