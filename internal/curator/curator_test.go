package curator

import (
	"context"
	"testing"

	"doccc/internal/docid"
	"doccc/internal/linkresolver"
	"doccc/internal/pathhierarchy"
	"doccc/internal/topicgraph"
)

func ref(path string) docid.Reference {
	u := docid.URL{CatalogID: "cat", Path: path}
	return docid.NewUnresolved(path, u, false).Resolve(u, docid.New(), []string{"swift"}, "swift")
}

func newTestResolver(graph *topicgraph.Graph, tree *pathhierarchy.Tree) *linkresolver.Resolver {
	return linkresolver.New(linkresolver.Context{
		Tree:            tree,
		Graph:           graph,
		NodesByURL:      map[string]*pathhierarchy.Node{},
		CatalogID:       "cat",
		DefaultLanguage: "swift",
	}, nil, nil)
}

// TestAutomaticThenManualCurationPrefersManual reproduces the scenario where
// a symbol is first auto-curated under its natural container, then a later
// article manually links to it — the manual edge must survive and the
// automatic edge must be removed.
func TestAutomaticThenManualCurationPrefersManual(t *testing.T) {
	tree := pathhierarchy.NewTree()
	moduleRoot := ref("documentation/M")
	classRef := ref("documentation/M/C")
	methodRef := ref("documentation/M/C/f")
	articleRef := ref("documentation/M/Overview")

	classNode := &pathhierarchy.Node{Name: "C", Symbol: &pathhierarchy.SymbolRef{PreciseID: "s:M.C"}}
	methodNode := &pathhierarchy.Node{Name: "f", Parent: classNode, Symbol: &pathhierarchy.SymbolRef{PreciseID: "s:M.C.f"}}
	tree.Register("s:M.C.f", methodNode)

	graph := topicgraph.New()
	graph.AddNode(&topicgraph.Node{Reference: moduleRoot, Kind: topicgraph.KindModule})
	graph.AddNode(&topicgraph.Node{Reference: classRef, Kind: topicgraph.KindDictionary})
	graph.AddNode(&topicgraph.Node{Reference: methodRef, Kind: topicgraph.KindDictionary})
	graph.AddNode(&topicgraph.Node{Reference: articleRef, Kind: topicgraph.KindArticle})
	graph.AddEdge(moduleRoot, classRef)

	idx := NewIndex()
	idx.SymbolRefs["s:M.C.f"] = methodRef
	idx.SymbolRefs["s:M.C"] = classRef
	idx.ModuleRefs["M"] = moduleRoot

	topics := map[string][]TaskGroup{
		articleRef.AbsoluteString(): {
			{Title: "Topics", Links: []TaskGroupLink{{Text: "M/C/f"}}},
		},
	}
	source := func(r docid.Reference) []TaskGroup { return topics[r.AbsoluteString()] }

	resolver := newTestResolver(graph, tree)
	c := New(graph, tree, idx, resolver, source, "swift")

	c.autoCurateParentlessSymbols()
	if !graph.HasEdge(classRef, methodRef) {
		t.Fatal("expected method to be auto-curated under its class")
	}

	c.crawl(context.Background(), []docid.Reference{articleRef})
	if !graph.HasEdge(articleRef, methodRef) {
		t.Fatal("expected manual edge from article to method")
	}

	c.reconcile()
	if graph.HasEdge(classRef, methodRef) {
		t.Fatal("expected automatic edge removed once method has a manual parent")
	}
	if !graph.HasEdge(articleRef, methodRef) {
		t.Fatal("expected manual edge to survive reconciliation")
	}
}

// TestAutoCurateParentlessSymbolsSkipsCyclicMembers reproduces the boundary
// case from spec.md §7/§8: a symbol the path hierarchy flagged as part of a
// relationship cycle keeps its module-root fallback parent in the tree, but
// must never be auto-curated under it.
func TestAutoCurateParentlessSymbolsSkipsCyclicMembers(t *testing.T) {
	tree := pathhierarchy.NewTree()
	moduleRoot := ref("documentation/M")
	cyclicRef := ref("documentation/M/A")

	root := tree.Root("M")
	cyclicNode := &pathhierarchy.Node{Name: "A", Parent: root, Symbol: &pathhierarchy.SymbolRef{PreciseID: "s:M.A"}}
	tree.Register("s:M.A", cyclicNode)
	tree.MarkCyclic("s:M.A")

	graph := topicgraph.New()
	graph.AddNode(&topicgraph.Node{Reference: moduleRoot, Kind: topicgraph.KindModule})
	graph.AddNode(&topicgraph.Node{Reference: cyclicRef, Kind: topicgraph.KindDictionary})

	idx := NewIndex()
	idx.SymbolRefs["s:M.A"] = cyclicRef
	idx.ModuleRefs["M"] = moduleRoot

	resolver := newTestResolver(graph, tree)
	c := New(graph, tree, idx, resolver, nil, "swift")

	c.autoCurateParentlessSymbols()

	if graph.HasEdge(moduleRoot, cyclicRef) {
		t.Fatal("expected cyclic member not to be auto-curated under its fallback root parent")
	}
}

// TestPruneExtendedSymbolsRemovesEmptyContainer exercises extended-symbol
// pruning: a synthetic extension container left with no children after
// curation is marked virtual+empty-extension and detached from its parent.
func TestPruneExtendedSymbolsRemovesEmptyContainer(t *testing.T) {
	tree := pathhierarchy.NewTree()
	moduleRoot := ref("documentation/M")
	container := ref("documentation/M/Extra")

	graph := topicgraph.New()
	graph.AddNode(&topicgraph.Node{Reference: moduleRoot, Kind: topicgraph.KindModule})
	graph.AddNode(&topicgraph.Node{
		Reference: container,
		Kind:      topicgraph.KindCollection,
		Location:  topicgraph.ContentLocation{Kind: topicgraph.LocationExternal},
	})
	graph.AddEdge(moduleRoot, container)

	idx := NewIndex()
	idx.ModuleRefs["M"] = moduleRoot
	resolver := newTestResolver(graph, tree)
	c := New(graph, tree, idx, resolver, nil, "swift")

	c.pruneExtendedSymbols([]docid.Reference{moduleRoot})

	if graph.HasEdge(moduleRoot, container) {
		t.Fatal("expected empty extension container detached from its parent")
	}
	node, ok := graph.Node(container)
	if !ok {
		t.Fatal("expected container node to remain in the graph")
	}
	if !node.Virtual || !node.EmptyExtension {
		t.Fatal("expected container marked virtual and empty-extension")
	}
}

// TestAutoCurateOrphanArticlesAttachesToSoleRoot verifies an article with no
// authored parent or children is attached under the single root module.
func TestAutoCurateOrphanArticlesAttachesToSoleRoot(t *testing.T) {
	graph := topicgraph.New()
	moduleRoot := ref("documentation/M")
	orphan := ref("documentation/M/Stray")
	graph.AddNode(&topicgraph.Node{Reference: moduleRoot, Kind: topicgraph.KindModule})
	graph.AddNode(&topicgraph.Node{Reference: orphan, Kind: topicgraph.KindArticle})

	tree := pathhierarchy.NewTree()
	idx := NewIndex()
	idx.ModuleRefs["M"] = moduleRoot
	resolver := newTestResolver(graph, tree)
	c := New(graph, tree, idx, resolver, nil, "swift")

	c.autoCurateOrphanArticles([]docid.Reference{moduleRoot})

	if !graph.HasEdge(moduleRoot, orphan) {
		t.Fatal("expected orphan article attached under the sole root module")
	}
}
