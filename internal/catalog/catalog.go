// Package catalog discovers a documentation catalog directory and decodes
// its optional Info metadata file. Neither concern is named as its own
// component, but both are required to give the rest of the compiler a
// starting directory and a default source language/module kind.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the suffix a catalog directory name must end with.
const Extension = ".docc"

// FindCatalogRoot walks up from startDir looking for a directory whose
// name ends in Extension, the same upward-search shape as a project
// manifest search, but testing the directory's own name rather than
// looking for a manifest file inside it.
func FindCatalogRoot(startDir string) (root string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("catalog: resolve start directory: %w", err)
	}
	for {
		if strings.HasSuffix(dir, Extension) {
			if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
				return dir, true, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Info is the catalog's Info.{json,yaml,toml,plist} metadata.
type Info struct {
	DisplayName                string `json:"displayName" yaml:"displayName" toml:"displayName"`
	Identifier                 string `json:"identifier" yaml:"identifier" toml:"identifier"`
	Version                    string `json:"version" yaml:"version" toml:"version"`
	DefaultCodeListingLanguage string `json:"defaultCodeListingLanguage" yaml:"defaultCodeListingLanguage" toml:"defaultCodeListingLanguage"`
	DefaultModuleKind          string `json:"defaultModuleKind" yaml:"defaultModuleKind" toml:"defaultModuleKind"`
	DefaultAvailability        []AvailabilityDefault `json:"defaultAvailability" yaml:"defaultAvailability" toml:"defaultAvailability"`

	// InheritDocs is the author-facing opt-in from spec.md §4.3: when set,
	// an inherited doc comment is kept on the inheriting symbol instead of
	// being stripped, but only for relationships where both symbols belong
	// to the same module. A cross-module inherited relationship always
	// strips, regardless of this flag.
	InheritDocs bool `json:"inheritDocs" yaml:"inheritDocs" toml:"inheritDocs"`
}

// AvailabilityDefault is one platform's default availability/introduced
// version, as declared in Info's defaultAvailability table.
type AvailabilityDefault struct {
	Platform   string `json:"platform" yaml:"platform" toml:"platform"`
	Introduced string `json:"introduced" yaml:"introduced" toml:"introduced"`
}

// infoBaseNames are tried in order; the first one present wins.
var infoBaseNames = []string{"Info.json", "Info.yaml", "Info.yml", "Info.toml", "Info.plist"}

// LocateInfo finds the Info file inside root, if any.
func LocateInfo(root string) (path string, ok bool, err error) {
	for _, name := range infoBaseNames {
		candidate := filepath.Join(root, name)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, true, nil
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return "", false, fmt.Errorf("catalog: stat %q: %w", candidate, statErr)
		}
	}
	return "", false, nil
}

// Load finds and decodes root's Info file. A catalog with no Info file at
// all is not an error — Load returns the zero Info and ok=false.
func Load(root string) (Info, bool, error) {
	path, ok, err := LocateInfo(root)
	if err != nil {
		return Info{}, false, err
	}
	if !ok {
		return Info{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, false, fmt.Errorf("catalog: reading %q: %w", path, err)
	}

	info, err := decode(path, data)
	if err != nil {
		return Info{}, false, fmt.Errorf("catalog: decoding %q: %w", path, err)
	}
	return info, true, nil
}

func decode(path string, data []byte) (Info, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".toml":
		return decodeTOML(data)
	case ".plist":
		return decodePlist(data)
	default:
		return Info{}, fmt.Errorf("unrecognized Info extension %q", ext)
	}
}
