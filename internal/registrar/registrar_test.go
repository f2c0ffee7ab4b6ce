package registrar

import (
	"doccc/internal/diag"
	"doccc/internal/docid"
	"doccc/internal/pathhierarchy"
	"doccc/internal/source"
	"doccc/internal/topicgraph"
	"testing"
)

type fakeDoc struct {
	url         string
	stem        string
	topLevel    string
	hasTopLevel bool
	parent      string
	hasParent   bool
	techRoot    bool
	h1Link      string
	hasH1Link   bool
	title       string
	landmarks   []Landmark
}

func (d fakeDoc) URL() string                       { return d.url }
func (d fakeDoc) Stem() string                       { return d.stem }
func (d fakeDoc) TopLevelDirective() (string, bool)  { return d.topLevel, d.hasTopLevel }
func (d fakeDoc) ParentDirective() (string, bool)    { return d.parent, d.hasParent }
func (d fakeDoc) HasTechnologyRoot() bool            { return d.techRoot }
func (d fakeDoc) H1SymbolLink() (string, bool)       { return d.h1Link, d.hasH1Link }
func (d fakeDoc) Title() string                      { return d.title }
func (d fakeDoc) Landmarks() []Landmark              { return d.landmarks }
func (d fakeDoc) Span() source.Span                  { return source.Span{} }

func TestClassifyDocumentationExtension(t *testing.T) {
	doc := fakeDoc{url: "doc://cat/articles/bar", stem: "bar", h1Link: "MyKit/MyClass/bar()", hasH1Link: true, title: "bar()"}
	kind, isExt, target := classify(doc)
	if !isExt {
		t.Fatalf("expected documentation-extension classification, got kind=%v", kind)
	}
	if target != "MyKit/MyClass/bar()" {
		t.Fatalf("extension target = %q, want MyKit/MyClass/bar()", target)
	}
}

func TestClassifyTutorialArticle(t *testing.T) {
	doc := fakeDoc{url: "doc://cat/tutorials/step1", stem: "step1", topLevel: "Article", hasTopLevel: true, parent: "Tutorial", hasParent: true, title: "Step 1"}
	kind, isExt, _ := classify(doc)
	if isExt || kind != topicgraph.KindTutorialArticle {
		t.Fatalf("classify() = (%v, %v), want (tutorial-article, false)", kind, isExt)
	}
}

func TestRegisterDiscardsDuplicateStemDeterministically(t *testing.T) {
	graph := topicgraph.New()
	bag := diag.NewBag(10)
	reporter := diag.BagReporter{Bag: bag}

	first := fakeDoc{url: "doc://cat/a/bar", stem: "bar", title: "First"}
	second := fakeDoc{url: "doc://cat/b/bar", stem: "bar", title: "Second"}

	Register(graph, []ParsedDocument{second, first}, reporter)

	if !bag.HasWarnings() {
		t.Fatal("expected a duplicate-reference warning")
	}
}

func TestMatchExtensionsAttachesContentToResolvedSymbol(t *testing.T) {
	tree := pathhierarchy.NewTree()
	root := tree.Root("MyKit")
	classNode := &pathhierarchy.Node{Symbol: &pathhierarchy.SymbolRef{PreciseID: "s:MyKit.MyClass", Identifier: docid.New()}}
	root.AddChild("MyClass", pathhierarchy.Kind("class"), "", classNode)

	graph := topicgraph.New()
	ref := classNode.Reference("swift")
	graph.AddNode(&topicgraph.Node{Reference: ref, Kind: "symbol-class", Title: "MyClass"})

	ext := Extension{Doc: fakeDoc{url: "doc://cat/articles/bar", stem: "bar"}, SymbolLinkText: "MyKit/MyClass"}
	bag := diag.NewBag(10)
	reporter := diag.BagReporter{Bag: bag}

	MatchExtensions(tree, graph, []Extension{ext}, "swift", reporter)

	if bag.HasWarnings() {
		t.Fatalf("expected no diagnostics, got %v", bag.Items())
	}
	node, ok := graph.Node(ref)
	if !ok {
		t.Fatal("expected the symbol's page to still exist")
	}
	if node.ExtensionContent == nil || node.ExtensionContent.URL != "doc://cat/articles/bar" {
		t.Fatalf("expected extension content attached, got %+v", node.ExtensionContent)
	}
}

func TestMatchExtensionsReportsUnmatchedLink(t *testing.T) {
	tree := pathhierarchy.NewTree()
	graph := topicgraph.New()
	ext := Extension{Doc: fakeDoc{url: "doc://cat/articles/bar", stem: "bar"}, SymbolLinkText: "MyKit/NoSuchClass"}
	bag := diag.NewBag(10)
	reporter := diag.BagReporter{Bag: bag}

	MatchExtensions(tree, graph, []Extension{ext}, "swift", reporter)

	if !bag.HasWarnings() {
		t.Fatal("expected an unmatched-extension diagnostic")
	}
	if bag.Items()[0].Code != diag.UnmatchedExtension {
		t.Fatalf("code = %v, want UnmatchedExtension", bag.Items()[0].Code)
	}
}

func TestMatchExtensionsReportsSecondMatchAsAmbiguous(t *testing.T) {
	tree := pathhierarchy.NewTree()
	root := tree.Root("MyKit")
	classNode := &pathhierarchy.Node{Symbol: &pathhierarchy.SymbolRef{PreciseID: "s:MyKit.MyClass", Identifier: docid.New()}}
	root.AddChild("MyClass", pathhierarchy.Kind("class"), "", classNode)

	graph := topicgraph.New()
	ref := classNode.Reference("swift")
	graph.AddNode(&topicgraph.Node{Reference: ref, Kind: "symbol-class", Title: "MyClass"})

	first := Extension{Doc: fakeDoc{url: "doc://cat/articles/a", stem: "a"}, SymbolLinkText: "MyKit/MyClass"}
	second := Extension{Doc: fakeDoc{url: "doc://cat/articles/b", stem: "b"}, SymbolLinkText: "MyKit/MyClass"}
	bag := diag.NewBag(10)
	reporter := diag.BagReporter{Bag: bag}

	MatchExtensions(tree, graph, []Extension{first, second}, "swift", reporter)

	if !bag.HasWarnings() {
		t.Fatal("expected a multiple-extensions-matched diagnostic")
	}
	if bag.Items()[0].Code != diag.MultipleExtensionsMatched {
		t.Fatalf("code = %v, want MultipleExtensionsMatched", bag.Items()[0].Code)
	}
	node, _ := graph.Node(ref)
	if node.ExtensionContent == nil || node.ExtensionContent.URL != "doc://cat/articles/a" {
		t.Fatalf("expected the first extension to win, got %+v", node.ExtensionContent)
	}
}

func TestRegisterAddsLandmarkEdges(t *testing.T) {
	graph := topicgraph.New()
	doc := fakeDoc{
		url: "doc://cat/tutorials/T", stem: "T",
		topLevel: "Tutorial", hasTopLevel: true, title: "T",
		landmarks: []Landmark{{Title: "Step 1", Anchor: "step-1"}},
	}
	Register(graph, []ParsedDocument{doc}, nil)

	found := false
	for _, k := range graph.AllKeys() {
		n, _ := graph.NodeByKey(k)
		if n.Kind == topicgraph.KindLandmark {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a landmark node to be registered")
	}
}
