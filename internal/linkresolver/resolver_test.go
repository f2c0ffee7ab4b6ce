package linkresolver

import (
	"context"
	"testing"

	"doccc/internal/docid"
	"doccc/internal/pathhierarchy"
	"doccc/internal/topicgraph"
)

func TestResolveDirectDocumentationPath(t *testing.T) {
	tree := pathhierarchy.NewTree()
	root := tree.Root("MyKit")
	node, _ := tree.NodeForPreciseID("s:MyKit.MyClass")
	_ = node
	graph := topicgraph.New()

	resolver := New(Context{
		Tree:            tree,
		Graph:           graph,
		NodesByURL:      map[string]*pathhierarchy.Node{},
		CatalogID:       "cat",
		DefaultLanguage: "swift",
	}, nil, nil)

	// register a bare article reachable via whole-graph lookup.
	articleURL := docid.URL{CatalogID: "cat", Path: "documentation/MyKit/Overview"}
	articleRef := docid.NewUnresolved("Overview", articleURL, false).Resolve(articleURL, docid.New(), []string{"swift"}, "swift")
	graph.AddNode(&topicgraph.Node{Reference: articleRef, Kind: topicgraph.KindArticle})

	unresolved := docid.NewUnresolved("MyKit/Overview", docid.URL{Path: "MyKit/Overview"}, false)
	got := resolver.Resolve(context.Background(), unresolved, docid.Reference{}, false)
	if got.State() != docid.ResolvedSuccess {
		t.Fatalf("Resolve state = %v, want ResolvedSuccess", got.State())
	}
	_ = root
}

func TestResolveFailureCarriesCandidates(t *testing.T) {
	resolver := New(Context{
		Tree:            pathhierarchy.NewTree(),
		Graph:           topicgraph.New(),
		NodesByURL:      map[string]*pathhierarchy.Node{},
		CatalogID:       "cat",
		DefaultLanguage: "swift",
	}, nil, nil)

	unresolved := docid.NewUnresolved("Nope", docid.URL{Path: "Nope"}, false)
	got := resolver.Resolve(context.Background(), unresolved, docid.Reference{}, false)
	if got.State() != docid.ResolvedFailure {
		t.Fatalf("Resolve state = %v, want ResolvedFailure", got.State())
	}
	if len(got.FailedCandidates()) == 0 {
		t.Fatal("expected at least one failed candidate")
	}
}

func TestResolveCachesSecondLookup(t *testing.T) {
	graph := topicgraph.New()
	resolver := New(Context{
		Tree:            pathhierarchy.NewTree(),
		Graph:           graph,
		NodesByURL:      map[string]*pathhierarchy.Node{},
		CatalogID:       "cat",
		DefaultLanguage: "swift",
	}, nil, nil)

	articleURL := docid.URL{CatalogID: "cat", Path: "documentation/MyKit/Overview"}
	articleRef := docid.NewUnresolved("Overview", articleURL, false).Resolve(articleURL, docid.New(), []string{"swift"}, "swift")
	graph.AddNode(&topicgraph.Node{Reference: articleRef, Kind: topicgraph.KindArticle})

	unresolved := docid.NewUnresolved("MyKit/Overview", docid.URL{Path: "MyKit/Overview"}, false)
	resolver.Resolve(context.Background(), unresolved, docid.Reference{}, false)
	if resolver.cache.Len() == 0 {
		t.Fatal("expected the resolution to populate the process-wide cache")
	}
}
