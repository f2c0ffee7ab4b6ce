// Package pathhierarchy implements the Path Hierarchy Index: a forest whose
// roots are modules, with a per-name Disambiguation Subtree supporting
// collision-aware lookup and canonical disambiguated path emission.
package pathhierarchy

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"doccc/internal/docid"
)

// Kind is the disambiguation-kind token a path component may carry, e.g.
// "method", "struct", "var". It is a small data-driven vocabulary, not a
// fixed enum, because new symbol kinds are added by new symbol graphs, not
// by this module.
type Kind string

// StableHash is a short, deterministic digest of a symbol's precise
// identifier, used as the second disambiguator. Fixed at 4 hex characters
// (2 bytes of SHA-256) — see DESIGN.md for why this length was chosen.
type StableHash string

const stableHashHexLen = 4

// ComputeStableHash derives the disambiguator hash for a precise identifier.
func ComputeStableHash(preciseID string) StableHash {
	sum := sha256.Sum256([]byte(preciseID))
	return StableHash(hex.EncodeToString(sum[:2])[:stableHashHexLen])
}

// Node is one vertex of the path hierarchy forest.
type Node struct {
	Name     string
	Symbol   *SymbolRef // nil for a pure "shell" interior node
	Parent   *Node
	Kind     Kind
	Hash     StableHash

	children map[string]*DisambiguationSubtree
}

// SymbolRef is the payload a Node carries when it terminates at a real
// symbol, rather than being a pure interior shell.
type SymbolRef struct {
	PreciseID  string
	Identifier docid.Identifier
	Languages  map[string]struct{}
}

func newNode(name string, kind Kind, hash StableHash) *Node {
	return &Node{Name: name, Kind: kind, Hash: hash, children: make(map[string]*DisambiguationSubtree)}
}

// DisambiguationSubtree is the two-level map kind -> hash -> node that lets
// an author look up a child name with zero, one, or both disambiguators.
type DisambiguationSubtree struct {
	byKindHash map[Kind]map[StableHash]*Node
}

func newSubtree() *DisambiguationSubtree {
	return &DisambiguationSubtree{byKindHash: make(map[Kind]map[StableHash]*Node)}
}

// Insert adds node under (kind, hash) in the subtree.
func (d *DisambiguationSubtree) Insert(kind Kind, hash StableHash, node *Node) {
	m, ok := d.byKindHash[kind]
	if !ok {
		m = make(map[StableHash]*Node)
		d.byKindHash[kind] = m
	}
	m[hash] = node
}

// All returns every node in the subtree, for diagnostics and disambiguation.
func (d *DisambiguationSubtree) All() []*Node {
	var out []*Node
	for _, byHash := range d.byKindHash {
		for _, n := range byHash {
			out = append(out, n)
		}
	}
	return out
}

// Find narrows the subtree by an optional kind and/or hash. It returns the
// set of matching nodes; callers decide what "exactly one" vs. "collision"
// means.
func (d *DisambiguationSubtree) Find(kind Kind, hash StableHash) []*Node {
	all := d.All()
	if len(all) == 1 && kind == "" && hash == "" {
		return all
	}

	var out []*Node
	for k, byHash := range d.byKindHash {
		if kind != "" && k != kind {
			continue
		}
		for h, n := range byHash {
			if hash != "" && h != hash {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// ChildNames returns the sorted list of direct child names below n —
// useful for deterministic traversal and tests.
func (n *Node) ChildNames() []string {
	out := make([]string, 0, len(n.children))
	for name := range n.children {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// childSubtree returns the DisambiguationSubtree for name, creating it if
// absent.
func (n *Node) childSubtree(name string) *DisambiguationSubtree {
	st, ok := n.children[name]
	if !ok {
		st = newSubtree()
		n.children[name] = st
	}
	return st
}

// ChildSubtree returns the DisambiguationSubtree recorded for name, or nil.
func (n *Node) ChildSubtree(name string) (*DisambiguationSubtree, bool) {
	st, ok := n.children[name]
	return st, ok
}

// AddChild inserts child under name/kind/hash beneath n.
func (n *Node) AddChild(name string, kind Kind, hash StableHash, child *Node) {
	child.Parent = n
	child.Kind = kind
	child.Hash = hash
	n.childSubtree(name).Insert(kind, hash, child)
}

// Tree is the multi-rooted forest: one root Node per module.
type Tree struct {
	Roots map[string]*Node // module name -> root node

	// byPreciseID indexes every symbol-bearing node by precise id, for O(1)
	// canonical-path and collision-aware lookups without a tree walk.
	byPreciseID map[string]*Node

	// cyclic holds every precise id the builder found participating in an
	// inheritsFrom/memberOf cycle. Such a symbol is still inserted (parented
	// at its module root so it stays reachable), but the curator must never
	// auto-curate it under that fallback parent.
	cyclic map[string]bool
}

// NewTree builds an empty forest.
func NewTree() *Tree {
	return &Tree{Roots: make(map[string]*Node), byPreciseID: make(map[string]*Node), cyclic: make(map[string]bool)}
}

// MarkCyclic records preciseID as a member of a detected relationship cycle.
func (t *Tree) MarkCyclic(preciseID string) {
	t.cyclic[preciseID] = true
}

// IsCyclic reports whether preciseID was found participating in a
// relationship cycle during construction.
func (t *Tree) IsCyclic(preciseID string) bool {
	return t.cyclic[preciseID]
}

// Root returns (creating if absent) the module root node named name.
func (t *Tree) Root(name string) *Node {
	r, ok := t.Roots[name]
	if !ok {
		r = newNode(name, "module", "")
		t.Roots[name] = r
	}
	return r
}

// Register records node as the unique tree location of preciseID, so
// NodeForPreciseID and canonical-path computation can find it without a
// walk.
func (t *Tree) Register(preciseID string, node *Node) {
	t.byPreciseID[preciseID] = node
}

// NodeForPreciseID returns the node for a given symbol's precise id, if any
// symbol with that id has been inserted.
func (t *Tree) NodeForPreciseID(preciseID string) (*Node, bool) {
	n, ok := t.byPreciseID[preciseID]
	return n, ok
}

// SortedRootNames returns every module root name in deterministic order.
func (t *Tree) SortedRootNames() []string {
	out := make([]string, 0, len(t.Roots))
	for name := range t.Roots {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
