// Package docid implements the Identifier & Reference Model: the
// process-unique identity every topic-graph node owns, and the URL-shaped
// Reference value used to describe both authored and synthesized
// cross-references between pages.
package docid

import (
	"github.com/google/uuid"
)

// Identifier is an opaque, process-unique value. Every topic-graph node
// owns exactly one Identifier for its lifetime; alias mappings from other
// identifiers (e.g. a symbol's precise identifier) to an Identifier are
// kept separately by whichever package needs that mapping (see
// internal/pathhierarchy and internal/registrar).
type Identifier struct {
	id uuid.UUID
}

// Nil is the zero Identifier; it never identifies a real node.
var Nil = Identifier{}

// New mints a fresh Identifier. Callers never construct one by hand.
func New() Identifier {
	return Identifier{id: uuid.New()}
}

// IsNil reports whether id is the zero value.
func (id Identifier) IsNil() bool {
	return id.id == uuid.Nil
}

// String renders id in canonical UUID form, suitable as a map key or a
// diagnostic field.
func (id Identifier) String() string {
	return id.id.String()
}

// MarshalText implements encoding.TextMarshaler so an Identifier can appear
// in JSON-serialized diagnostics or cached artifacts.
func (id Identifier) MarshalText() ([]byte, error) {
	return id.id.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	return id.id.UnmarshalText(text)
}

// ParseIdentifier parses a previously-rendered Identifier string.
func ParseIdentifier(s string) (Identifier, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Identifier{}, err
	}
	return Identifier{id: u}, nil
}
