package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// decodeJSON uses the standard library decoder: Info's schema is fixed, so
// there's no need for a streaming or schema-flexible JSON library here —
// the same reasoning the symbol-graph wire decoder uses (see DESIGN.md).
func decodeJSON(data []byte) (Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

func decodeYAML(data []byte) (Info, error) {
	var info Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

func decodeTOML(data []byte) (Info, error) {
	var info Info
	if err := toml.Unmarshal(data, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// decodePlist reads the small subset of XML plist syntax Info.plist
// actually needs: a top-level <dict> of string keys to string or nested
// dict/array values. Go's ecosystem has no plist library reused elsewhere
// in the corpus, and the only consumer here is this one fixed schema, so a
// minimal purpose-built reader is used instead of a general plist decoder.
func decodePlist(data []byte) (Info, error) {
	entries, err := parsePlistDict(data)
	if err != nil {
		return Info{}, fmt.Errorf("plist: %w", err)
	}

	info := Info{
		DisplayName:                entries["CFBundleDisplayName"],
		Identifier:                 entries["CFBundleIdentifier"],
		Version:                    entries["CFBundleVersion"],
		DefaultCodeListingLanguage: entries["CDDefaultCodeListingLanguage"],
		DefaultModuleKind:          entries["CDDefaultModuleKind"],
	}
	return info, nil
}
