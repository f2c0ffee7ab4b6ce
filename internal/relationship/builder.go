// Package relationship implements the Relationship Builder: it walks every
// relationship edge recorded in a unified symbol graph and installs
// in-memory relations (conformance, inheritance, membership, default
// implementation, and on-page member rollups).
package relationship

import (
	"sort"
	"strconv"

	"doccc/internal/symbolgraph"
)

// Set holds every installed relation for one module, keyed by the source or
// target precise identifier depending on the relation's natural query
// direction.
type Set struct {
	ConformsTo              map[string][]string // type precise id -> protocol precise ids
	InheritsFrom            map[string][]string // derived -> base precise ids
	DefaultImplementationOf map[string]string    // default-impl -> requirement precise id
	RequirementOf           map[string]Requirement // requirement precise id -> owning protocol + optionality

	// Members groups member-of rollups by owner precise id, already sorted
	// deterministically per the target kind's rollup rule.
	Members map[string][]Member
}

// Requirement records which protocol a requirement belongs to and whether
// it is optional.
type Requirement struct {
	Protocol string
	Optional bool
}

// MemberRollupKind names the page-section a member-of edge rolls up into.
type MemberRollupKind uint8

const (
	// RollupNone means the member-of edge is ordinary containment (a normal
	// method/property of a type), not an on-page rollup.
	RollupNone MemberRollupKind = iota
	RollupDictionaryKey
	RollupHTTPParameter
	RollupHTTPBody
	RollupHTTPResponse
)

// Member is one memberOf/optionalMemberOf edge, with enough information to
// sort it deterministically within its rollup section.
type Member struct {
	PreciseID  string
	Optional   bool
	Rollup     MemberRollupKind
	Name       string // sort key for dictionary key / HTTP parameter / HTTP body
	StatusCode int    // sort key for HTTP response rollups
	InheritedDocsStripped bool
}

// rollupKindFor classifies a memberOf edge by the (source kind, target
// kind) pair into the on-page rollup section it belongs to, or RollupNone
// for ordinary containment.
func rollupKindFor(sourceKindID, targetKindID string) MemberRollupKind {
	switch targetKindID {
	case "dictionary":
		return RollupDictionaryKey
	case "httpRequest":
		switch sourceKindID {
		case "httpParameter":
			return RollupHTTPParameter
		case "httpBody", "httpBodyParameter":
			return RollupHTTPBody
		case "httpResponse":
			return RollupHTTPResponse
		}
	case "httpResponse":
		return RollupHTTPResponse
	}
	return RollupNone
}

// Build walks every relationship recorded in mod (across every selector)
// and installs the corresponding relation in a fresh Set. inheritDocs is
// the catalog's Info.inheritDocs opt-in (spec.md §4.3): when true, a
// same-module inherited doc comment is kept instead of stripped.
func Build(mod *symbolgraph.UnifiedModule, inheritDocs bool) *Set {
	set := &Set{
		ConformsTo:              make(map[string][]string),
		InheritsFrom:            make(map[string][]string),
		DefaultImplementationOf: make(map[string]string),
		RequirementOf:           make(map[string]Requirement),
		Members:                 make(map[string][]Member),
	}

	for _, rels := range mod.RelationshipsBySelector {
		for _, rel := range rels {
			switch rel.Kind {
			case symbolgraph.ConformsTo:
				set.ConformsTo[rel.Source] = appendUnique(set.ConformsTo[rel.Source], rel.Target)
			case symbolgraph.InheritsFrom:
				set.InheritsFrom[rel.Source] = appendUnique(set.InheritsFrom[rel.Source], rel.Target)
			case symbolgraph.DefaultImplementationOf:
				set.DefaultImplementationOf[rel.Source] = rel.Target
			case symbolgraph.RequirementOf:
				set.RequirementOf[rel.Source] = Requirement{Protocol: rel.Target, Optional: false}
			case symbolgraph.OptionalRequirementOf:
				set.RequirementOf[rel.Source] = Requirement{Protocol: rel.Target, Optional: true}
			case symbolgraph.MemberOf, symbolgraph.OptionalMemberOf:
				installMember(set, mod, rel, inheritDocs)
			}
		}
	}

	for owner := range set.Members {
		sortMembers(set.Members[owner])
	}

	return set
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func installMember(set *Set, mod *symbolgraph.UnifiedModule, rel symbolgraph.Relationship, inheritDocs bool) {
	srcKind, tgtKind := "", ""
	if s, ok := mod.Symbols[rel.Source]; ok {
		srcKind = s.Primary().Kind.Identifier
	}
	if t, ok := mod.Symbols[rel.Target]; ok {
		tgtKind = t.Primary().Kind.Identifier
	}

	m := Member{
		PreciseID: rel.Source,
		Optional:  rel.Kind == symbolgraph.OptionalMemberOf,
		Rollup:    rollupKindFor(srcKind, tgtKind),
	}

	if sym, ok := mod.Symbols[rel.Source]; ok {
		m.Name = sym.Primary().Names.Title
		if code, err := strconv.Atoi(m.Name); err == nil {
			m.StatusCode = code
		}
	}

	m.InheritedDocsStripped = shouldStripInheritedDocs(rel, mod, inheritDocs)

	set.Members[rel.Target] = append(set.Members[rel.Target], m)
}

// shouldStripInheritedDocs implements spec.md §4.3: an inherited doc comment
// is stripped from the inheriting symbol unless the catalog's inheritDocs
// flag is set AND both symbols belong to the same module. Cross-module
// inheritance always strips, regardless of the flag.
func shouldStripInheritedDocs(rel symbolgraph.Relationship, mod *symbolgraph.UnifiedModule, inheritDocs bool) bool {
	if rel.SourceOrigin == nil {
		return false // not an inherited-docs case at all
	}
	// "Same module" means both the source and the target are present in
	// mod's symbol table; when either is absent (a cross-module origin,
	// recorded upstream as an orphan relationship) the doc is always
	// stripped.
	_, srcOK := mod.Symbols[rel.Source]
	_, tgtOK := mod.Symbols[rel.Target]
	sameModule := srcOK && tgtOK
	return !(inheritDocs && sameModule)
}

// sortMembers orders a rollup section deterministically: by name for
// dictionary keys / HTTP parameters / HTTP body, by status code for HTTP
// responses, and by name for anything else.
func sortMembers(members []Member) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Rollup == RollupHTTPResponse && members[j].Rollup == RollupHTTPResponse {
			return members[i].StatusCode < members[j].StatusCode
		}
		return members[i].Name < members[j].Name
	})
}
