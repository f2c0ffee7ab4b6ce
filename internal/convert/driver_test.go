package convert

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"doccc/internal/diag"
	"doccc/internal/docid"
	"doccc/internal/pathhierarchy"
	"doccc/internal/topicgraph"
)

type fakeConsumer struct {
	mu          sync.Mutex
	renderCtx   *RenderContext
	nodes       []RenderNode
	problems    *diag.Bag
	linkCalls   int
	indexCalls  int
	assetCalls  int
	coverageCalls int
	metaCalls   int
}

func (c *fakeConsumer) RenderContext(rc *RenderContext) { c.renderCtx = rc }
func (c *fakeConsumer) RenderNode(n RenderNode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = append(c.nodes, n)
}
func (c *fakeConsumer) Problems(bag *diag.Bag)                    { c.problems = bag }
func (c *fakeConsumer) LinkSummaries(e []LinkSummaryEntry)        { c.linkCalls++ }
func (c *fakeConsumer) IndexingRecords(r []IndexingRecord)        { c.indexCalls++ }
func (c *fakeConsumer) AssetReferences(e []AssetReferenceEntry)   { c.assetCalls++ }
func (c *fakeConsumer) Coverage(e []CoverageEntry)                { c.coverageCalls++ }
func (c *fakeConsumer) Metadata(m BuildMetadata)                  { c.metaCalls++ }

func testRef(path string) docid.Reference {
	u := docid.URL{CatalogID: "cat", Path: path}
	return docid.NewUnresolved(path, u, false).Resolve(u, docid.New(), []string{"swift"}, "swift")
}

func TestDriverFatalShortCircuitSkipsRender(t *testing.T) {
	bag := diag.NewBag(16)
	bag.Add(&diag.Diagnostic{Severity: diag.SevError, Code: diag.MalformedSymbolGraph, Message: "boom"})

	driver := NewDriver(bag, nil, 2)
	rc := &RenderContext{Graph: topicgraph.New(), CatalogID: "cat"}
	consumer := &fakeConsumer{}

	driver.Run(context.Background(), rc, []PageInput{{Reference: testRef("documentation/M")}}, nil, consumer)

	if len(consumer.nodes) != 0 {
		t.Fatalf("expected no render nodes after a fatal short-circuit, got %d", len(consumer.nodes))
	}
	if consumer.problems == nil {
		t.Fatal("expected Problems to be surfaced")
	}
}

// TestDriverEmitsExternalRenderNodeWithoutLocalPage reproduces the
// cross-catalog scenario: an externally-resolved reference gets its own
// render node but is never part of the local page set.
func TestDriverEmitsExternalRenderNodeWithoutLocalPage(t *testing.T) {
	bag := diag.NewBag(16)
	driver := NewDriver(bag, nil, 2)
	rc := &RenderContext{Graph: topicgraph.New(), CatalogID: "cat"}
	externalRef := testRef("documentation/OtherLib/Thing")
	consumer := &fakeConsumer{}

	localPage := PageInput{Reference: testRef("documentation/M"), Kind: topicgraph.KindModule}
	driver.Run(context.Background(), rc, []PageInput{localPage}, []docid.Reference{externalRef}, consumer)

	var sawExternal, sawLocal bool
	for _, n := range consumer.nodes {
		if n.Reference.AbsoluteString() == externalRef.AbsoluteString() {
			sawExternal = true
			if !n.External {
				t.Fatal("expected the cross-catalog node to be marked External")
			}
		}
		if n.Reference.AbsoluteString() == localPage.Reference.AbsoluteString() {
			sawLocal = true
		}
	}
	if !sawExternal {
		t.Fatal("expected an external render node for the cross-catalog reference")
	}
	if !sawLocal {
		t.Fatal("expected the local page to still render")
	}
}

// TestDriverCancellationSkipsSerialEmission reproduces cancellation
// observed before conversion starts: with registration-enabled already
// false, the driver must return without running the serial emission
// phase, while still surfacing whatever problems were recorded.
func TestDriverCancellationSkipsSerialEmission(t *testing.T) {
	bag := diag.NewBag(16)
	var registrationOK atomic.Bool
	registrationOK.Store(true)
	registrationOK.Store(false) // simulate cancellation observed before conversion starts

	driver := NewDriver(bag, &registrationOK, 2)
	rc := &RenderContext{Graph: topicgraph.New(), CatalogID: "cat"}
	consumer := &fakeConsumer{}

	driver.Run(context.Background(), rc, []PageInput{{Reference: testRef("documentation/M")}}, nil, consumer)

	if consumer.metaCalls != 0 {
		t.Fatal("expected no BuildMetadata emitted once cancellation is observed")
	}
	if consumer.problems == nil {
		t.Fatal("expected problems recorded so far to remain visible")
	}
}

func TestRenderContextBreadcrumbFollowsFirstParent(t *testing.T) {
	graph := topicgraph.New()
	root := testRef("documentation/M")
	child := testRef("documentation/M/C")
	graph.AddNode(&topicgraph.Node{Reference: root, Kind: topicgraph.KindModule})
	graph.AddNode(&topicgraph.Node{Reference: child, Kind: topicgraph.KindDictionary})
	graph.AddEdge(root, child)

	rc := &RenderContext{Graph: graph, Tree: pathhierarchy.NewTree(), CatalogID: "cat"}
	chain := rc.breadcrumbFor(child)
	if len(chain) != 2 {
		t.Fatalf("expected a 2-element breadcrumb, got %d", len(chain))
	}
	if chain[0].AbsoluteString() != root.AbsoluteString() {
		t.Fatal("expected breadcrumb to start at the root")
	}
}
