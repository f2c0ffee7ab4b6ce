package symbolgraph

import "encoding/json"

// The wire types below mirror the canonical symbol-graph JSON schema
// (module/symbols/relationships) one-for-one. Decoding uses encoding/json
// directly: no ecosystem JSON library in the retrieved corpus is used for
// this kind of fixed-schema wire decoding, and the schema has no need for
// streaming or custom tag behavior beyond what the standard decoder gives
// for free (see DESIGN.md).

type wireFile struct {
	Module        wireModule         `json:"module"`
	Symbols       []wireSymbol       `json:"symbols"`
	Relationships []wireRelationship `json:"relationships"`
}

type wireModule struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

type wireIdentifier struct {
	Precise           string `json:"precise"`
	InterfaceLanguage string `json:"interfaceLanguage"`
}

type wireNames struct {
	Title      string `json:"title"`
	Navigator  string `json:"navigator,omitempty"`
	SubHeading string `json:"subHeading,omitempty"`
	Prose      string `json:"prose,omitempty"`
}

type wireKind struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
}

type wireAvailability struct {
	Domain     string `json:"domain"`
	Introduced string `json:"introduced,omitempty"`
	Deprecated string `json:"deprecated,omitempty"`
	Obsoleted  string `json:"obsoleted,omitempty"`
	Message    string `json:"message,omitempty"`
}

type wireSourceOrigin struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
}

type wireMixins struct {
	DeclarationFragments []json.RawMessage  `json:"declarationFragments,omitempty"`
	Availability         []wireAvailability `json:"availability,omitempty"`
	SourceOrigin         *wireSourceOrigin  `json:"sourceOrigin,omitempty"`
}

type wireSymbol struct {
	Identifier     wireIdentifier `json:"identifier"`
	Names          wireNames      `json:"names"`
	PathComponents []string       `json:"pathComponents"`
	DocComment     string         `json:"docComment,omitempty"`
	AccessLevel    string         `json:"accessLevel"`
	Kind           wireKind       `json:"kind"`
	Mixins         wireMixins     `json:"mixins,omitempty"`
}

type wireRelationship struct {
	Source       string            `json:"source"`
	Target       string            `json:"target"`
	Kind         string            `json:"kind"`
	SourceOrigin *wireSourceOrigin `json:"sourceOrigin,omitempty"`
}

func decodeFile(data []byte) (wireFile, error) {
	var f wireFile
	if err := json.Unmarshal(data, &f); err != nil {
		return wireFile{}, err
	}
	return f, nil
}

func declFragmentStrings(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, string(r))
	}
	return out
}

func (s wireSymbol) toSymbol() Symbol {
	var mx Mixins
	mx.DeclarationFragments = declFragmentStrings(s.Mixins.DeclarationFragments)
	for _, a := range s.Mixins.Availability {
		mx.Availability = append(mx.Availability, Availability(a))
	}
	if s.Mixins.SourceOrigin != nil {
		mx.SourceOrigin = &SourceOrigin{
			Identifier:  s.Mixins.SourceOrigin.Identifier,
			DisplayName: s.Mixins.SourceOrigin.DisplayName,
		}
	}
	return Symbol{
		Identifier:     Identifier(s.Identifier),
		Names:          Names(s.Names),
		PathComponents: s.PathComponents,
		DocComment:     s.DocComment,
		AccessLevel:    s.AccessLevel,
		Kind:           Kind(s.Kind),
		Mixins:         mx,
	}
}

func (r wireRelationship) toRelationship() Relationship {
	rel := Relationship{
		Source: r.Source,
		Target: r.Target,
		Kind:   RelationshipKind(r.Kind),
	}
	if r.SourceOrigin != nil {
		rel.SourceOrigin = &SourceOrigin{
			Identifier:  r.SourceOrigin.Identifier,
			DisplayName: r.SourceOrigin.DisplayName,
		}
	}
	return rel
}
