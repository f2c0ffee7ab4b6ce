package pathhierarchy

import (
	"doccc/internal/diag"
	"doccc/internal/docid"
	"doccc/internal/source"
	"doccc/internal/symbolgraph"
)

// parentEdgeKinds is the relationship-kind priority order used to find a
// symbol's structural parent before falling back to its declared path
// components.
var parentEdgeKinds = []symbolgraph.RelationshipKind{
	symbolgraph.MemberOf,
	symbolgraph.OptionalMemberOf,
	symbolgraph.RequirementOf,
	symbolgraph.OptionalRequirementOf,
}

// edgeIndex is a precomputed source -> (kind, target) lookup built once per
// module so parent resolution does not rescan every relationship per symbol.
type edgeIndex struct {
	parentOf               map[string]string // source precise id -> target precise id, for memberOf/requirementOf family
	defaultImplementationOf map[string]string // source -> requirement target
}

func buildEdgeIndex(mod *symbolgraph.UnifiedModule) edgeIndex {
	idx := edgeIndex{
		parentOf:                make(map[string]string),
		defaultImplementationOf: make(map[string]string),
	}
	for _, rels := range mod.RelationshipsBySelector {
		for _, rel := range rels {
			switch rel.Kind {
			case symbolgraph.MemberOf, symbolgraph.OptionalMemberOf,
				symbolgraph.RequirementOf, symbolgraph.OptionalRequirementOf:
				if _, ok := idx.parentOf[rel.Source]; !ok {
					idx.parentOf[rel.Source] = rel.Target
				}
			case symbolgraph.DefaultImplementationOf:
				idx.defaultImplementationOf[rel.Source] = rel.Target
			}
		}
	}
	return idx
}

// Builder constructs a Tree from one or more symbolgraph.UnifiedModule
// values, reporting diagnostics for structural problems (cyclic parentage)
// along the way.
type Builder struct {
	tree     *Tree
	reporter diag.Reporter
}

// NewBuilder creates a Builder that reports structural problems to reporter.
func NewBuilder(reporter diag.Reporter) *Builder {
	return &Builder{tree: NewTree(), reporter: reporter}
}

// Build inserts every symbol in every module into the forest and returns
// it. Cyclic inheritsFrom/memberOf chains are detected first; members of a
// cycle are parented at the module root instead (so they are still
// reachable, but not auto-curated under their cyclic "parent" — see
// internal/curator).
func (b *Builder) Build(modules []*symbolgraph.UnifiedModule) *Tree {
	for _, mod := range modules {
		b.buildModule(mod)
	}
	return b.tree
}

func (b *Builder) buildModule(mod *symbolgraph.UnifiedModule) {
	root := b.tree.Root(mod.Name)
	idx := buildEdgeIndex(mod)

	cyclic := detectCycles(mod, idx)
	if len(cyclic) > 0 {
		for id := range cyclic {
			b.tree.MarkCyclic(id)
		}
		if b.reporter != nil {
			b.reporter.Report(diag.CyclicRelationship, diag.SevWarning, source.Span{},
				"inheritsFrom/memberOf relationships form a cycle in module "+mod.Name+"; cycle members are parented at the module root and are not auto-curated", nil, nil)
		}
	}

	ids := mod.SortedPreciseIDs()
	// Multi-pass insertion: a child cannot be placed until its parent node
	// exists, so keep retrying until a full pass makes no progress (handles
	// arbitrary declaration order within a module; a true cycle is caught
	// above and those members fall back to root parenting so the loop still
	// terminates).
	pending := make(map[string]*symbolgraph.UnifiedSymbol, len(ids))
	for _, id := range ids {
		pending[id] = mod.Symbols[id]
	}

	for len(pending) > 0 {
		progressed := false
		for _, id := range ids {
			sym, ok := pending[id]
			if !ok {
				continue
			}
			parentNode, ready := b.resolveParentNode(mod, idx, cyclic, root, id)
			if !ready {
				continue
			}
			b.insertSymbol(root, parentNode, sym)
			delete(pending, id)
			progressed = true
		}
		if !progressed {
			// Remaining symbols only reference each other through parent
			// chains that never reach a resolved node (e.g. a parent whose
			// own parent edge is cyclic, but the symbol itself wasn't
			// flagged); fall back to root parenting for all of them so
			// nothing is silently dropped.
			for _, id := range ids {
				sym, ok := pending[id]
				if !ok {
					continue
				}
				b.insertSymbol(root, root, sym)
				delete(pending, id)
			}
		}
	}

	if len(mod.OrphanRelationships) > 0 && b.reporter != nil {
		for range mod.OrphanRelationships {
			b.reporter.Report(diag.OrphanRelationship, diag.SevWarning, source.Span{},
				"relationship references a symbol absent from the loaded symbol graph", nil, nil)
		}
	}
}

// resolveParentNode determines the tree node a symbol should be inserted
// under. It returns ready=false when the structural parent hasn't been
// inserted into the tree yet.
func (b *Builder) resolveParentNode(mod *symbolgraph.UnifiedModule, idx edgeIndex, cyclic map[string]bool, root *Node, preciseID string) (*Node, bool) {
	if cyclic[preciseID] {
		return root, true
	}

	if target, ok := idx.defaultImplementationOf[preciseID]; ok {
		// Parent under the parent of the target requirement, so default
		// implementations sit alongside the requirement they implement.
		if reqParentID, ok := idx.parentOf[target]; ok {
			if node, ok := b.tree.NodeForPreciseID(reqParentID); ok {
				return node, true
			}
			return nil, false
		}
		return root, true
	}

	if parentID, ok := idx.parentOf[preciseID]; ok {
		node, ok := b.tree.NodeForPreciseID(parentID)
		if !ok {
			return nil, false
		}
		return node, true
	}

	// No structural parent edge: fall back to declared path components.
	sym := mod.Symbols[preciseID]
	decl := sym.Primary()
	if len(decl.PathComponents) <= 1 {
		return root, true
	}
	node := root
	for _, comp := range decl.PathComponents[:len(decl.PathComponents)-1] {
		next, ok := findShellChild(node, comp)
		if !ok {
			next = newNode(comp, "", "")
			node.AddChild(comp, "", "", next)
		}
		node = next
	}
	return node, true
}

func findShellChild(node *Node, name string) (*Node, bool) {
	st, ok := node.ChildSubtree(name)
	if !ok {
		return nil, false
	}
	all := st.All()
	if len(all) != 1 {
		return nil, false
	}
	return all[0], true
}

func (b *Builder) insertSymbol(root, parent *Node, sym *symbolgraph.UnifiedSymbol) {
	decl := sym.Primary()
	name := lastComponent(decl.PathComponents, decl.Names.Title)
	kind := Kind(decl.Kind.Identifier)
	hash := ComputeStableHash(sym.PreciseID)

	node := newNode(name, kind, hash)
	node.Symbol = &SymbolRef{
		PreciseID:  sym.PreciseID,
		Identifier: docid.New(),
		Languages:  sym.Languages,
	}
	parent.AddChild(name, kind, hash, node)
	b.tree.Register(sym.PreciseID, node)
}

func lastComponent(pathComponents []string, fallback string) string {
	if len(pathComponents) == 0 {
		return fallback
	}
	return pathComponents[len(pathComponents)-1]
}

// detectCycles walks the parentOf edges (memberOf/requirementOf family) of
// mod and, separately, its inheritsFrom edges, and returns the set of
// precise ids that participate in a cycle, using the same Kahn's-algorithm
// approach a dependency-graph topological sort uses to detect unresolvable
// cyclic module imports, adapted here to per-symbol parent edges (see
// cycle.go). Only one inheritsFrom target per symbol is checked (the
// lexicographically smallest), and a cycle that mixes inheritsFrom with
// parentOf edges is not detected.
func detectCycles(mod *symbolgraph.UnifiedModule, idx edgeIndex) map[string]bool {
	ids := mod.SortedPreciseIDs()
	cyclic := ToposortCycles(ids, idx.parentOf)
	baseOf := make(map[string]string)
	for _, rels := range mod.RelationshipsBySelector {
		for _, rel := range rels {
			if cur, ok := baseOf[rel.Source]; rel.Kind == symbolgraph.InheritsFrom && (!ok || rel.Target < cur) {
				baseOf[rel.Source] = rel.Target
			}
		}
	}
	for id := range ToposortCycles(ids, baseOf) {
		cyclic[id] = true
	}
	return cyclic
}
