package curator

import (
	"doccc/internal/docid"
	"doccc/internal/pathhierarchy"
)

// Index maps path-hierarchy nodes to the topic-graph reference that
// represents their page, so automatic curation can find "this symbol's
// natural parent" in topic-graph terms. Symbol pages and module roots are
// registered separately because a module root is a pure shell with no
// Symbol payload.
type Index struct {
	SymbolRefs map[string]docid.Reference // precise id -> topic graph ref
	ModuleRefs map[string]docid.Reference // module root name -> topic graph ref
}

// NewIndex builds an empty Index.
func NewIndex() *Index {
	return &Index{SymbolRefs: make(map[string]docid.Reference), ModuleRefs: make(map[string]docid.Reference)}
}

// RefForNode walks up from n until it finds a symbol-bearing ancestor or
// the module root, returning whichever topic-graph reference represents
// that page.
func (idx *Index) RefForNode(n *pathhierarchy.Node) (docid.Reference, bool) {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Symbol != nil {
			if ref, ok := idx.SymbolRefs[cur.Symbol.PreciseID]; ok {
				return ref, true
			}
		}
		if cur.Parent == nil {
			if ref, ok := idx.ModuleRefs[cur.Name]; ok {
				return ref, true
			}
			return docid.Reference{}, false
		}
	}
	return docid.Reference{}, false
}
