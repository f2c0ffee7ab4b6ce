package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"doccc/internal/catalog"
	"doccc/internal/convert"
	"doccc/internal/curator"
	"doccc/internal/diag"
	"doccc/internal/docid"
	"doccc/internal/linkresolver"
	"doccc/internal/pathhierarchy"
	"doccc/internal/registrar"
	"doccc/internal/relationship"
	"doccc/internal/source"
	"doccc/internal/symbolgraph"
	"doccc/internal/topicgraph"
)

// pipeline bundles the state every subcommand needs after assembling a
// catalog: the loaded symbol graph, the derived path hierarchy and topic
// graph, and the index bridging the two. Building one is the CLI's own
// glue between packages that otherwise know nothing of each other.
type pipeline struct {
	fs              *source.FileSet
	bag             *diag.Bag
	info            catalog.Info
	catalogID       string
	defaultLanguage string
	catalog         *symbolgraph.Catalog
	tree            *pathhierarchy.Tree
	graph           *topicgraph.Graph
	index           *curator.Index
	rels            map[string]*relationship.Set
	roots           []docid.Reference
	resolver        *linkresolver.Resolver
}

// findSymbolGraphFiles walks root for every *.symbols.json file a catalog
// directory may carry, the only file shape the Symbol Graph Loader reads.
func findSymbolGraphFiles(root string) ([]symbolgraph.FileRef, error) {
	var refs []symbolgraph.FileRef
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".symbols.json") {
			refs = append(refs, symbolgraph.FileRef{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("doccc: walking %s: %w", root, err)
	}
	return refs, nil
}

// buildPipeline runs every phase up to and including curation: catalog
// discovery, symbol-graph loading, path-hierarchy construction, topic-graph
// node synthesis for every module root and symbol, relationship building,
// and curation. It does not run the conversion driver — callers that only
// want diagnostics stop here.
func buildPipeline(ctx context.Context, root string, maxDiagnostics int) (*pipeline, error) {
	fs := source.NewFileSet()
	fs.SetBaseDir(root)
	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	info, _, err := catalog.Load(root)
	if err != nil {
		reporter.Report(diag.CatalogMalformedInfo, diag.SevError, source.Span{}, err.Error(), nil, nil)
	}
	defaultLanguage := info.DefaultCodeListingLanguage
	if defaultLanguage == "" {
		defaultLanguage = "swift"
	}
	catalogID := info.Identifier
	if catalogID == "" {
		catalogID = filepath.Base(strings.TrimSuffix(root, string(filepath.Separator)))
	}

	refs, err := findSymbolGraphFiles(root)
	if err != nil {
		return nil, err
	}

	loader := symbolgraph.NewLoader(fs)
	cat, err := loader.Load(ctx, refs)
	if err != nil {
		var mixedErr *symbolgraph.MixedPlatformError
		code := diag.MalformedSymbolGraph
		if errors.As(err, &mixedErr) {
			code = diag.ConflictingDeclaration
		}
		reporter.Report(code, diag.SevError, source.Span{}, err.Error(), nil, nil)
		cat = &symbolgraph.Catalog{ModulesByName: make(map[string]*symbolgraph.UnifiedModule)}
	}

	hb := pathhierarchy.NewBuilder(reporter)
	modules := make([]*symbolgraph.UnifiedModule, 0, len(cat.ModulesByName))
	for _, name := range cat.SortedModuleNames() {
		modules = append(modules, cat.ModulesByName[name])
	}
	tree := hb.Build(modules)

	graph := topicgraph.New()
	idx := curator.NewIndex()
	roots := populateTopicGraph(graph, idx, tree, defaultLanguage)

	rels := make(map[string]*relationship.Set, len(modules))
	for _, mod := range modules {
		rels[mod.Name] = relationship.Build(mod, info.InheritDocs)
	}

	// No ParsedDocument instances are available to this CLI: real markdown
	// parsing is a collaborator's responsibility, not this module's. The
	// registrar still runs, over zero documents, so its behavior on an
	// empty input is exercised rather than skipped outright; the matcher
	// runs over whatever extensions it did return so the zero-document
	// case also exercises an empty Extensions slice rather than skipping
	// the step entirely.
	regResult := registrar.Register(graph, nil, reporter)
	registrar.MatchExtensions(tree, graph, regResult.Extensions, defaultLanguage, reporter)

	nodesByURL := make(map[string]*pathhierarchy.Node)
	resolverCtx := linkresolver.Context{
		Tree:            tree,
		Graph:           graph,
		NodesByURL:      nodesByURL,
		CatalogID:       catalogID,
		DefaultLanguage: defaultLanguage,
	}
	resolver := linkresolver.New(resolverCtx, nil, nil)

	cur := curator.New(graph, tree, idx, resolver, nil, defaultLanguage)
	cur.Run(ctx, roots, nil)

	return &pipeline{
		fs:              fs,
		bag:             bag,
		info:            info,
		catalogID:       catalogID,
		defaultLanguage: defaultLanguage,
		catalog:         cat,
		tree:            tree,
		graph:           graph,
		index:           idx,
		rels:            rels,
		roots:           roots,
		resolver:        resolver,
	}, nil
}

// populateTopicGraph is the bridge the path hierarchy and topic graph
// packages need but neither owns: it mints one topicgraph.Node per module
// root and per symbol discovered by the Path Hierarchy Index, adds them to
// graph, and records their References in idx so the curator's automatic
// parentless-symbol placement (which only consults idx) has somewhere to
// look them up. Module roots resolve first so every symbol root parent
// lookup in the loop below can find its module's Reference already
// installed.
func populateTopicGraph(graph *topicgraph.Graph, idx *curator.Index, tree *pathhierarchy.Tree, defaultLanguage string) []docid.Reference {
	var roots []docid.Reference

	for _, name := range tree.SortedRootNames() {
		root := tree.Roots[name]
		ref := referenceForPath(name, "/"+name, defaultLanguage)
		idx.ModuleRefs[name] = ref
		graph.AddNode(&topicgraph.Node{
			Reference: ref,
			Kind:      topicgraph.KindModule,
			Title:     name,
			Location:  topicgraph.ContentLocation{Kind: topicgraph.LocationExternal},
		})
		roots = append(roots, ref)

		walkSymbolNodes(graph, idx, root, defaultLanguage)
	}

	return roots
}

// walkSymbolNodes recurses the path hierarchy below node, adding one
// topic-graph node per symbol-bearing tree node it finds. Pure "shell"
// interior nodes (a path component with no Symbol, inserted only to host
// children under a declared-path-components prefix) contribute no page of
// their own.
func walkSymbolNodes(graph *topicgraph.Graph, idx *curator.Index, node *pathhierarchy.Node, defaultLanguage string) {
	for _, name := range node.ChildNames() {
		subtree, ok := node.ChildSubtree(name)
		if !ok {
			continue
		}
		for _, child := range subtree.All() {
			if child.Symbol != nil {
				kind := topicgraph.Kind("symbol-" + string(child.Kind))
				ref := child.Reference(defaultLanguage)
				idx.SymbolRefs[child.Symbol.PreciseID] = ref
				graph.AddNode(&topicgraph.Node{
					Reference: ref,
					Kind:      kind,
					Title:     child.Name,
					Location:  topicgraph.ContentLocation{Kind: topicgraph.LocationExternal},
				})
			}
			walkSymbolNodes(graph, idx, child, defaultLanguage)
		}
	}
}

// referenceForPath builds an already-resolved Reference for a synthetic
// page (a module root) that has no symbol-graph identifier of its own.
func referenceForPath(title, path, defaultLanguage string) docid.Reference {
	canonical := docid.URL{Path: strings.TrimPrefix(path, "/")}
	unresolved := docid.NewUnresolved(title, canonical, false)
	return unresolved.Resolve(canonical, docid.New(), nil, defaultLanguage)
}

// pageInputs flattens the curated topic graph into the PageInput list the
// Conversion Driver renders: every node in sorted key (AbsoluteString)
// order, with no separate pass that puts module roots first.
func (p *pipeline) pageInputs() []convert.PageInput {
	keys := p.graph.AllKeys()
	sort.Strings(keys)

	pages := make([]convert.PageInput, 0, len(keys))
	for _, k := range keys {
		node, ok := p.graph.NodeByKey(k)
		if !ok {
			continue
		}
		preciseID := ""
		for id, ref := range p.index.SymbolRefs {
			if ref.AbsoluteString() == k {
				preciseID = id
				break
			}
		}

		var links []docid.Reference
		for _, childKey := range p.graph.Children(node.Reference) {
			if child, ok := p.graph.NodeByKey(childKey); ok {
				links = append(links, child.Reference)
			}
		}

		pages = append(pages, convert.PageInput{
			Reference: node.Reference,
			Kind:      node.Kind,
			Title:     node.Title,
			PreciseID: preciseID,
			Links:     links,
		})
	}
	return pages
}

// renderContext builds the RenderContext the Conversion Driver needs,
// reindexing this pipeline's per-module relationship sets by precise id —
// the driver only ever looks a page's own symbol up by its own id, never
// by module, so every precise id known to a module's Set is pointed at
// that same Set.
func (p *pipeline) renderContext() *convert.RenderContext {
	byPreciseID := make(map[string]*relationship.Set)
	for _, mod := range p.catalog.ModulesByName {
		set := p.rels[mod.Name]
		if set == nil {
			continue
		}
		for _, preciseID := range mod.SortedPreciseIDs() {
			byPreciseID[preciseID] = set
		}
	}
	return &convert.RenderContext{
		Tree:            p.tree,
		Graph:           p.graph,
		Relationships:   byPreciseID,
		CatalogID:       p.catalogID,
		DefaultLanguage: p.defaultLanguage,
	}
}
