// Package topicgraph implements the reader-facing Topic Graph: a directed
// graph of pages with forward and reverse adjacency, derived from both
// manual and automatic curation.
package topicgraph

import (
	"doccc/internal/docid"
)

// ContentLocationKind tags where a node's rendered content comes from.
type ContentLocationKind uint8

const (
	// LocationFile means the node's content is a whole authored file.
	LocationFile ContentLocationKind = iota
	// LocationRange means the node's content is a span within a file (e.g.
	// a symbol documented by a source-code comment).
	LocationRange
	// LocationExternal means the node is served by an external resolver
	// and has no local content.
	LocationExternal
)

// ContentLocation is the tagged union {file(url), range(span,url), external}.
type ContentLocation struct {
	Kind ContentLocationKind
	URL  string
	Span [2]uint32 // valid when Kind == LocationRange
}

// Kind enumerates the documentation-node kinds a topic-graph node may carry.
type Kind string

const (
	KindModule          Kind = "module"
	KindTechnology       Kind = "technology"
	KindTutorial         Kind = "tutorial"
	KindTutorialArticle  Kind = "tutorial-article"
	KindArticle          Kind = "article"
	KindCollection       Kind = "collection"
	KindLandmark         Kind = "landmark"
	KindSnippet          Kind = "snippet"
	KindSnippetGroup     Kind = "snippet-group"
	KindHTTPRequest      Kind = "http-request"
	KindDictionary       Kind = "dictionary"
	// Symbol-* variants are recorded with the symbol's own kind identifier
	// (e.g. "symbol-class", "symbol-method") rather than a fixed set here —
	// the vocabulary comes from the symbol graph, not this package.
)

// Node is one vertex of the topic graph.
type Node struct {
	Reference      docid.Reference
	Kind           Kind
	Title          string
	Location       ContentLocation
	Virtual        bool
	EmptyExtension bool
	// ExtensionContent, when non-nil, is the documentation-extension
	// article whose content augments this node's page instead of
	// becoming a page of its own. Set by the registrar's extension
	// matcher once a symbol link resolves; a node with this set never
	// gets a separate page emitted for the article.
	ExtensionContent *ContentLocation
}

// Graph is the directed topic graph: forward and reverse adjacency maps,
// both reference-absolute-string keyed, each preserving insertion order so
// a rendered page's Topics section reflects authored order.
type Graph struct {
	nodes   map[string]*Node
	forward map[string][]string // node key -> ordered child keys
	reverse map[string][]string // node key -> ordered parent keys
}

// New builds an empty topic graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		forward: make(map[string][]string),
		reverse: make(map[string][]string),
	}
}

func key(ref docid.Reference) string { return ref.AbsoluteString() }

// AddNode inserts or replaces the node for n.Reference.
func (g *Graph) AddNode(n *Node) {
	k := key(n.Reference)
	g.nodes[k] = n
	if _, ok := g.forward[k]; !ok {
		g.forward[k] = nil
	}
	if _, ok := g.reverse[k]; !ok {
		g.reverse[k] = nil
	}
}

// Node returns the node for ref, if any.
func (g *Graph) Node(ref docid.Reference) (*Node, bool) {
	n, ok := g.nodes[key(ref)]
	return n, ok
}

// NodeByURL looks up a node by its URL's canonical string form, without
// needing a fully constructed Reference — used by whole-graph lookups that
// only have a candidate URL to test.
func (g *Graph) NodeByURL(u docid.URL) (*Node, bool) {
	n, ok := g.nodes[u.String()]
	return n, ok
}

// ReplaceNode swaps the node stored at n.Reference's key for n itself,
// preserving existing edges (used by curation and extension-trimming
// passes that mutate a node's flags without touching its position in the
// graph).
func (g *Graph) ReplaceNode(n *Node) {
	k := key(n.Reference)
	g.nodes[k] = n
}

// HasEdge reports whether an edge from -> to already exists.
func (g *Graph) HasEdge(from, to docid.Reference) bool {
	fk, tk := key(from), key(to)
	for _, c := range g.forward[fk] {
		if c == tk {
			return true
		}
	}
	return false
}

// AddEdge appends an edge from -> to, preserving insertion order, and
// updates the reverse map. A duplicate edge is a no-op.
func (g *Graph) AddEdge(from, to docid.Reference) {
	fk, tk := key(from), key(to)
	if g.HasEdge(from, to) {
		return
	}
	g.forward[fk] = append(g.forward[fk], tk)
	g.reverse[tk] = append(g.reverse[tk], fk)
}

// RemoveEdge deletes the from -> to edge, if present, from both maps.
func (g *Graph) RemoveEdge(from, to docid.Reference) {
	fk, tk := key(from), key(to)
	g.forward[fk] = removeKey(g.forward[fk], tk)
	g.reverse[tk] = removeKey(g.reverse[tk], fk)
}

func removeKey(list []string, k string) []string {
	out := list[:0]
	for _, x := range list {
		if x != k {
			out = append(out, x)
		}
	}
	return out
}

// Children returns the ordered list of keys ref points to.
func (g *Graph) Children(ref docid.Reference) []string {
	return g.forward[key(ref)]
}

// Parents returns the ordered list of keys that point to ref.
func (g *Graph) Parents(ref docid.Reference) []string {
	return g.reverse[key(ref)]
}

// ChildCount and ParentCount are convenience wrappers used throughout
// curation to test "has no parent"/"has no children".
func (g *Graph) ChildCount(ref docid.Reference) int { return len(g.forward[key(ref)]) }
func (g *Graph) ParentCount(ref docid.Reference) int { return len(g.reverse[key(ref)]) }

// NodeByKey looks up a node by its already-computed absolute-string key —
// used when walking forward/reverse adjacency lists, which store keys
// rather than References.
func (g *Graph) NodeByKey(k string) (*Node, bool) {
	n, ok := g.nodes[k]
	return n, ok
}

// AllKeys returns every node key currently in the graph, unordered — callers
// needing determinism must sort.
func (g *Graph) AllKeys() []string {
	out := make([]string, 0, len(g.nodes))
	for k := range g.nodes {
		out = append(out, k)
	}
	return out
}
