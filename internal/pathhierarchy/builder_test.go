package pathhierarchy

import (
	"testing"

	"doccc/internal/diag"
	"doccc/internal/symbolgraph"
)

func sym(precise string, kind, title string, path ...string) *symbolgraph.UnifiedSymbol {
	return &symbolgraph.UnifiedSymbol{
		PreciseID: precise,
		Languages: map[string]struct{}{"swift": {}},
		Variants: []symbolgraph.Declaration{{
			Selector:       symbolgraph.Selector{InterfaceLanguage: "swift"},
			Names:          symbolgraph.Names{Title: title},
			PathComponents: path,
			Kind:           symbolgraph.Kind{Identifier: kind, DisplayName: kind},
		}},
	}
}

func TestBuilderParentsMemberUnderOwner(t *testing.T) {
	mod := &symbolgraph.UnifiedModule{
		Name: "MyKit",
		Symbols: map[string]*symbolgraph.UnifiedSymbol{
			"s:MyKit.MyClass":     sym("s:MyKit.MyClass", "class", "MyClass", "MyClass"),
			"s:MyKit.MyClass.bar": sym("s:MyKit.MyClass.bar", "method", "bar()", "MyClass", "bar()"),
		},
		RelationshipsBySelector: map[symbolgraph.Selector][]symbolgraph.Relationship{
			{InterfaceLanguage: "swift"}: {
				{Source: "s:MyKit.MyClass.bar", Target: "s:MyKit.MyClass", Kind: symbolgraph.MemberOf},
			},
		},
	}

	tree := NewBuilder(nil).Build([]*symbolgraph.UnifiedModule{mod})
	barNode, ok := tree.NodeForPreciseID("s:MyKit.MyClass.bar")
	if !ok {
		t.Fatal("bar node not registered")
	}
	classNode, ok := tree.NodeForPreciseID("s:MyKit.MyClass")
	if !ok {
		t.Fatal("class node not registered")
	}
	if barNode.Parent != classNode {
		t.Fatalf("bar's parent = %v, want MyClass node", barNode.Parent)
	}
}

func TestBuilderCyclicMemberOfFallsBackToRoot(t *testing.T) {
	mod := &symbolgraph.UnifiedModule{
		Name: "MyKit",
		Symbols: map[string]*symbolgraph.UnifiedSymbol{
			"s:MyKit.A": sym("s:MyKit.A", "class", "A", "A"),
			"s:MyKit.B": sym("s:MyKit.B", "class", "B", "B"),
		},
		RelationshipsBySelector: map[symbolgraph.Selector][]symbolgraph.Relationship{
			{InterfaceLanguage: "swift"}: {
				{Source: "s:MyKit.A", Target: "s:MyKit.B", Kind: symbolgraph.MemberOf},
				{Source: "s:MyKit.B", Target: "s:MyKit.A", Kind: symbolgraph.MemberOf},
			},
		},
	}

	bag := diag.NewBag(10)
	reporter := diag.BagReporter{Bag: bag}

	tree := NewBuilder(reporter).Build([]*symbolgraph.UnifiedModule{mod})
	root := tree.Root("MyKit")
	aNode, _ := tree.NodeForPreciseID("s:MyKit.A")
	bNode, _ := tree.NodeForPreciseID("s:MyKit.B")
	if aNode.Parent != root || bNode.Parent != root {
		t.Fatalf("cyclic members should fall back to root parenting; got A.Parent=%v B.Parent=%v", aNode.Parent, bNode.Parent)
	}
	if !tree.IsCyclic("s:MyKit.A") || !tree.IsCyclic("s:MyKit.B") {
		t.Fatal("expected both cycle members to be marked cyclic")
	}

	items := bag.Items()
	found := 0
	for _, d := range items {
		if d.Code == diag.CyclicRelationship {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one CyclicRelationship diagnostic, got %d (items=%v)", found, items)
	}
}
