package diag

import "fmt"

// Code identifies a diagnostic's stable, user-facing class, independent of
// its message text.
type Code uint16

const (
	UnknownCode Code = 0

	// Catalog discovery and Info metadata (1000s).
	CatalogInfo               Code = 1000
	CatalogNotFound           Code = 1001
	CatalogMalformedInfo      Code = 1002
	CatalogMissingIdentifier  Code = 1003
	CatalogUnsupportedVersion Code = 1004

	// Symbol Graph Loader (2000s).
	SymbolGraphInfo        Code = 2000
	MalformedSymbolGraph   Code = 2001
	OrphanRelationship     Code = 2004
	ConflictingDeclaration Code = 2005

	// Path Hierarchy Index (3000s).
	PathHierarchyInfo    Code = 3000
	LookupCollision      Code = 3001
	LookupNotFound       Code = 3002
	CyclicRelationship   Code = 3003
	ComponentTruncated   Code = 3004
	PathTruncated        Code = 3005

	// Document Registrar (4000s).
	RegistrarInfo             Code = 4000
	DuplicateReference        Code = 4001
	MissingTopLevelKind       Code = 4002
	UnmatchedExtension        Code = 4003
	MultipleExtensionsMatched Code = 4004

	// Relationship Builder (4100s).
	RelationshipInfo      Code = 4100
	AmbiguousRollupKind   Code = 4101

	// Link Resolver (5000s).
	LinkResolverInfo     Code = 5000
	UnresolvedLink       Code = 5001
	UnsupportedScheme    Code = 5002
	ExternalResolverFail Code = 5003

	// Curator (5100s).
	CuratorInfo        Code = 5100
	OrphanArticle      Code = 5101
	EmptyExtensionPage Code = 5102

	// Conversion Driver (6000s).
	ConvertInfo           Code = 6000
	RegistrationDisabled  Code = 6001
	RenderFailed          Code = 6002
	UnresolvedAsset       Code = 6003

	// External Resolvers out-of-process protocol (6100s).
	ExternalResolverInfo           Code = 6100
	ExternalResolverProtocolError  Code = 6101
	ExternalResolverHandshakeError Code = 6102

	// I/O (7000s).
	IOLoadFileError Code = 7000

	// Observability (8000s).
	ObsInfo    Code = 8000
	ObsTimings Code = 8001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	CatalogInfo:               "Catalog information",
	CatalogNotFound:           "Catalog directory not found",
	CatalogMalformedInfo:      "Malformed Info metadata file",
	CatalogMissingIdentifier:  "Catalog Info is missing an identifier",
	CatalogUnsupportedVersion: "Catalog Info declares an unsupported schema version",

	SymbolGraphInfo:        "Symbol graph information",
	MalformedSymbolGraph:   "Malformed symbol graph file",
	OrphanRelationship:     "Relationship references a symbol absent from the graph",
	ConflictingDeclaration: "Symbol mixes an OS-unqualified declaration with OS-qualified declarations",

	PathHierarchyInfo:  "Path hierarchy information",
	LookupCollision:    "Path component is ambiguous between multiple symbols",
	LookupNotFound:     "Path component does not resolve to any symbol",
	CyclicRelationship: "Cyclic inheritance or membership relationship",
	ComponentTruncated: "Path component exceeded the byte-length limit and was truncated",
	PathTruncated:      "Full path exceeded the byte-length limit and was truncated",

	RegistrarInfo:             "Document registration information",
	DuplicateReference:        "Duplicate reference: a file with this stem was already registered",
	MissingTopLevelKind:       "Document has no recognizable top-level directive",
	UnmatchedExtension:        "Documentation extension's symbol link does not resolve to any known symbol",
	MultipleExtensionsMatched: "Multiple documentation extensions target the same symbol",

	RelationshipInfo:    "Relationship builder information",
	AmbiguousRollupKind: "Member kind maps to more than one on-page rollup",

	LinkResolverInfo:     "Link resolution information",
	UnresolvedLink:       "Reference did not resolve to any known page",
	UnsupportedScheme:    "Reference uses an unsupported URL scheme",
	ExternalResolverFail: "External resolver returned an error for this reference",

	CuratorInfo:        "Curation information",
	OrphanArticle:      "Article has neither a curated parent nor any children",
	EmptyExtensionPage: "Extended-symbol container was pruned after curation left it empty",

	ConvertInfo:          "Conversion information",
	RegistrationDisabled: "Registration was disabled mid-conversion; remaining pages were skipped",
	RenderFailed:         "Page render failed",
	UnresolvedAsset:      "Page references an asset name the Asset Manager has no entry for",

	ExternalResolverInfo:           "External resolver protocol information",
	ExternalResolverProtocolError:  "External resolver violated the out-of-process protocol",
	ExternalResolverHandshakeError: "External resolver did not complete the bundle-identifier handshake",

	IOLoadFileError: "I/O load file error",

	ObsInfo:    "Observability information",
	ObsTimings: "Pipeline timings",
}

// ID renders a stable, category-prefixed textual code.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CAT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("PATH%04d", ic)
	case ic >= 4000 && ic < 4100:
		return fmt.Sprintf("REG%04d", ic)
	case ic >= 4100 && ic < 5000:
		return fmt.Sprintf("REL%04d", ic)
	case ic >= 5000 && ic < 5100:
		return fmt.Sprintf("LNK%04d", ic)
	case ic >= 5100 && ic < 6000:
		return fmt.Sprintf("CUR%04d", ic)
	case ic >= 6000 && ic < 6100:
		return fmt.Sprintf("CNV%04d", ic)
	case ic >= 6100 && ic < 7000:
		return fmt.Sprintf("EXT%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Title returns the human-readable description registered for c.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
