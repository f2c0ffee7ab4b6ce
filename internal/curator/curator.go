// Package curator implements the Curator: the two-pass manual/automatic
// curation algorithm that crawls authored Topics sections to build the
// reader-facing hierarchy, then fills in anything the author did not place
// while preserving manual placement when it conflicts with automatic
// placement.
package curator

import (
	"context"
	"sort"

	"doccc/internal/docid"
	"doccc/internal/linkresolver"
	"doccc/internal/pathhierarchy"
	"doccc/internal/topicgraph"
)

// TaskGroupLink is one authored link inside a Topics task group.
type TaskGroupLink struct {
	Text           string
	FromSymbolLink bool
}

// TaskGroup is one named grouping within a page's authored Topics section.
type TaskGroup struct {
	Title string
	Links []TaskGroupLink
}

// TopicsSource supplies the authored Topics task groups for a page, when it
// has any (articles and symbol-page prose carry them; most other pages do
// not). Building this content from parsed markup/doc-comments is a
// collaborator's responsibility — the curator only ever asks "what Topics
// groups does this reference's page declare".
type TopicsSource func(ref docid.Reference) []TaskGroup

// automaticEdge records one (child, parent) pair installed during automatic
// curation, so reconciliation can find and remove it later if the child
// gains a second parent.
type automaticEdge struct {
	child  docid.Reference
	parent docid.Reference
}

// Curator runs curation over a Graph using a path-hierarchy Index for
// automatic placement and a link resolver for manual-curation link
// resolution.
type Curator struct {
	Graph           *topicgraph.Graph
	Tree            *pathhierarchy.Tree
	Index           *Index
	Resolver        *linkresolver.Resolver
	Topics          TopicsSource
	DefaultLanguage string

	manuallyCurated map[string]bool
	automaticEdges  []automaticEdge
}

// New builds a Curator. All fields on the returned value must be
// non-nil except Topics, which may be nil for a catalog with no authored
// Topics sections at all.
func New(graph *topicgraph.Graph, tree *pathhierarchy.Tree, idx *Index, resolver *linkresolver.Resolver, topics TopicsSource, defaultLanguage string) *Curator {
	return &Curator{
		Graph: graph, Tree: tree, Index: idx, Resolver: resolver, Topics: topics,
		DefaultLanguage: defaultLanguage,
		manuallyCurated: make(map[string]bool),
	}
}

// Run executes the full curation algorithm: manual pass 1 from roots and
// root articles, automatic curation of parentless symbols, manual pass 2
// from newly auto-curated pages, reconciliation, article auto-curation,
// and extended-symbol pruning.
func (c *Curator) Run(ctx context.Context, roots []docid.Reference, rootArticles []docid.Reference) {
	start := append(append([]docid.Reference(nil), roots...), rootArticles...)
	c.crawl(ctx, start)

	autoCuratedPages := c.autoCurateParentlessSymbols()

	c.crawl(ctx, autoCuratedPages)

	c.reconcile()

	c.autoCurateOrphanArticles(roots)

	c.pruneExtendedSymbols(roots)
}

// crawl walks each page's authored Topics sections, resolving every link
// and adding an edge when resolution succeeds and the target is not
// already a child of that page.
func (c *Curator) crawl(ctx context.Context, start []docid.Reference) {
	if c.Topics == nil {
		return
	}
	visited := make(map[string]bool)
	queue := append([]docid.Reference(nil), start...)

	for len(queue) > 0 {
		page := queue[0]
		queue = queue[1:]
		k := page.AbsoluteString()
		if visited[k] {
			continue
		}
		visited[k] = true

		for _, group := range c.Topics(page) {
			for _, link := range group.Links {
				unresolved := docid.NewUnresolved(link.Text, docid.URL{Path: link.Text}, link.FromSymbolLink)
				resolved := c.Resolver.Resolve(ctx, unresolved, page, link.FromSymbolLink)
				if resolved.State() != docid.ResolvedSuccess {
					continue
				}
				if c.Graph.HasEdge(page, resolved) {
					continue
				}
				c.Graph.AddEdge(page, resolved)
				c.manuallyCurated[resolved.AbsoluteString()] = true
			}
		}
	}
}

// autoCurateParentlessSymbols gives every symbol node with no parent in the
// topic graph (after pass 1) one edge from its natural path-hierarchy
// parent. Returns the set of newly-auto-curated pages for the caller to
// re-crawl in pass 2.
func (c *Curator) autoCurateParentlessSymbols() []docid.Reference {
	var newlyAutoCurated []docid.Reference

	preciseIDs := make([]string, 0, len(c.Index.SymbolRefs))
	for id := range c.Index.SymbolRefs {
		preciseIDs = append(preciseIDs, id)
	}
	sort.Strings(preciseIDs)

	for _, preciseID := range preciseIDs {
		childRef := c.Index.SymbolRefs[preciseID]
		if c.Graph.ParentCount(childRef) > 0 {
			continue
		}
		if c.Tree.IsCyclic(preciseID) {
			// Parented at the module root only as a reachability fallback;
			// per spec.md §7/§8 a cycle member is never auto-curated.
			continue
		}
		node, ok := c.Tree.NodeForPreciseID(preciseID)
		if !ok || node.Parent == nil {
			continue
		}
		parentRef, ok := c.Index.RefForNode(node.Parent)
		if !ok {
			continue
		}
		c.Graph.AddEdge(parentRef, childRef)
		c.automaticEdges = append(c.automaticEdges, automaticEdge{child: childRef, parent: parentRef})
		newlyAutoCurated = append(newlyAutoCurated, childRef)
	}

	return newlyAutoCurated
}

// reconcile removes an automatic edge whenever its child has gained a
// second parent since it was installed (pass 2 may have added a manual
// edge to the same child).
func (c *Curator) reconcile() {
	for _, e := range c.automaticEdges {
		if c.Graph.ParentCount(e.child) > 1 {
			c.Graph.RemoveEdge(e.parent, e.child)
		}
	}
}

// autoCurateOrphanArticles attaches every authored article with neither
// parents nor children to the sole root module as a direct edge from that
// root. No "Articles" task group is created and nothing is recorded per
// source language. When more than one root module exists there is no
// single unambiguous home and orphan articles are left uncurated; no
// diagnostic is reported for them.
func (c *Curator) autoCurateOrphanArticles(roots []docid.Reference) {
	if len(roots) != 1 {
		return
	}
	sole := roots[0]

	keys := c.Graph.AllKeys()
	sort.Strings(keys)
	for _, k := range keys {
		node, ok := c.Graph.NodeByKey(k)
		if !ok || node.Kind != topicgraph.KindArticle {
			continue
		}
		if c.Graph.ParentCount(node.Reference) > 0 || c.Graph.ChildCount(node.Reference) > 0 {
			continue
		}
		c.Graph.AddEdge(sole, node.Reference)
	}
}

// pruneExtendedSymbols runs a depth-first walk from each root; any node
// whose "extended symbol" container (a shell page created purely to group
// children) has no remaining children and no documentation-extension
// content is marked virtual+empty-extension and its edges are removed.
func (c *Curator) pruneExtendedSymbols(roots []docid.Reference) {
	visited := make(map[string]bool)
	for _, root := range roots {
		c.pruneDFS(root, visited)
	}
}

func (c *Curator) pruneDFS(ref docid.Reference, visited map[string]bool) {
	k := ref.AbsoluteString()
	if visited[k] {
		return
	}
	visited[k] = true

	for _, childKey := range append([]string(nil), c.Graph.Children(ref)...) {
		childNode, ok := c.Graph.NodeByKey(childKey)
		if !ok {
			continue
		}
		c.pruneDFS(childNode.Reference, visited)
	}

	node, ok := c.Graph.NodeByKey(k)
	if !ok || node.Kind == topicgraph.KindModule {
		return
	}
	if isExtendedSymbolContainer(node) && c.Graph.ChildCount(ref) == 0 && node.ExtensionContent == nil {
		node.Virtual = true
		node.EmptyExtension = true
		c.Graph.ReplaceNode(node)
		for _, parentKey := range append([]string(nil), c.Graph.Parents(ref)...) {
			parentNode, ok := c.Graph.NodeByKey(parentKey)
			if ok {
				c.Graph.RemoveEdge(parentNode.Reference, ref)
			}
		}
	}
}

// isExtendedSymbolContainer identifies a synthetic "Extension" container
// page: one whose location carries no real file content, used only to
// group children curated elsewhere.
func isExtendedSymbolContainer(n *topicgraph.Node) bool {
	return n.Kind == topicgraph.KindCollection && n.Location.Kind == topicgraph.LocationExternal
}
