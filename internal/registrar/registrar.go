// Package registrar implements the Document Registrar: it classifies each
// already-parsed markup file by its top-level directive and inserts
// placeholder topic-graph nodes for it. Markdown parsing itself is out of
// scope — documents arrive as an opaque ParsedDocument.
package registrar

import (
	"sort"
	"strings"

	"doccc/internal/diag"
	"doccc/internal/docid"
	"doccc/internal/pathhierarchy"
	"doccc/internal/source"
	"doccc/internal/topicgraph"
)

// Landmark is one named anchor within a tutorial page, addressable as a
// topic reference with a fragment.
type Landmark struct {
	Title  string
	Anchor string
}

// ParsedDocument is the opaque contract the registrar consumes. Parsing the
// markup itself (and building this value) is a collaborator's
// responsibility.
type ParsedDocument interface {
	// URL is the file's absolute source URL, used as the stable stem/order
	// key for duplicate-reference resolution.
	URL() string
	// Stem is the file's reference path with extension and directory
	// stripped — two files with the same Stem collide.
	Stem() string
	// TopLevelDirective returns the markup's top-level block directive
	// name ("Technology", "TutorialOverview", "Tutorial", "Article", ...)
	// and whether one was present at all.
	TopLevelDirective() (string, bool)
	// ParentDirective returns the directive the top-level block is nested
	// under, if any (e.g. an "Article" nested under "Tutorial").
	ParentDirective() (string, bool)
	// HasTechnologyRoot reports whether the document carries an explicit
	// @TechnologyRoot marker.
	HasTechnologyRoot() bool
	// H1SymbolLink returns the document's H1 heading text when it is a
	// symbol link (double-backtick reference), and whether one was found.
	H1SymbolLink() (string, bool)
	// Title is the document's display title.
	Title() string
	// Landmarks returns every named anchor the document declares, in
	// authored order.
	Landmarks() []Landmark
	// Span is the document's overall source span, for diagnostics.
	Span() source.Span
}

// classify assigns a topicgraph.Kind to a parsed document using the
// priority-ordered predicate chain described by the classification table:
// Technology/TutorialOverview -> technology; Tutorial -> tutorial; Article
// nested under Tutorial -> tutorial-article; otherwise @TechnologyRoot ->
// collection; otherwise H1 symbol link -> documentation-extension (modeled
// here as a boolean return since "documentation-extension" consumes the
// linked symbol rather than becoming its own topicgraph.Kind); otherwise ->
// article.
func classify(doc ParsedDocument) (kind topicgraph.Kind, isExtension bool, extensionTarget string) {
	if top, ok := doc.TopLevelDirective(); ok {
		switch top {
		case "Technology", "TutorialOverview":
			return topicgraph.KindTechnology, false, ""
		case "Tutorial":
			return topicgraph.KindTutorial, false, ""
		case "Article":
			if parent, ok := doc.ParentDirective(); ok && parent == "Tutorial" {
				return topicgraph.KindTutorialArticle, false, ""
			}
		}
	}
	if doc.HasTechnologyRoot() {
		return topicgraph.KindCollection, false, ""
	}
	if link, ok := doc.H1SymbolLink(); ok {
		return topicgraph.KindArticle, true, link
	}
	return topicgraph.KindArticle, false, ""
}

// Extension is one documentation-extension association discovered during
// registration: an article whose content augments a symbol's page rather
// than becoming its own page.
type Extension struct {
	Doc            ParsedDocument
	SymbolLinkText string
}

// Result is everything the registrar produces for one batch of documents.
type Result struct {
	Extensions []Extension
	// UncuratedArticles / UncuratedDocumentationExtensions are populated by
	// the curator once curation finishes; the registrar only seeds the
	// node set they're drawn from.
}

// Register classifies every document, in deterministic absolute-URL order,
// inserting a topic-graph node for each one (except for documentation
// extensions, whose content instead augments an existing symbol page — see
// internal/relationship and internal/curator for how Extensions get merged
// in). Duplicate stems are resolved by discarding the later occurrence (in
// absolute-URL order) and reporting a diagnostic.
func Register(graph *topicgraph.Graph, docs []ParsedDocument, reporter diag.Reporter) Result {
	ordered := append([]ParsedDocument(nil), docs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].URL() < ordered[j].URL() })

	seenStems := make(map[string]ParsedDocument, len(ordered))
	var result Result

	for _, doc := range ordered {
		if first, dup := seenStems[doc.Stem()]; dup {
			if reporter != nil {
				reporter.Report(diag.DuplicateReference, diag.SevWarning, doc.Span(),
					"duplicate reference: a file with this stem was already registered ("+first.URL()+")", nil, nil)
			}
			continue
		}
		seenStems[doc.Stem()] = doc

		kind, isExtension, target := classify(doc)
		if isExtension {
			result.Extensions = append(result.Extensions, Extension{Doc: doc, SymbolLinkText: target})
			continue
		}

		ref := referenceFor(doc)
		node := &topicgraph.Node{
			Reference: ref,
			Kind:      kind,
			Title:     doc.Title(),
			Location:  topicgraph.ContentLocation{Kind: topicgraph.LocationFile, URL: doc.URL()},
		}
		graph.AddNode(node)

		if kind == topicgraph.KindTutorial || kind == topicgraph.KindTechnology {
			addLandmarks(graph, ref, doc)
		}
	}

	return result
}

func referenceFor(doc ParsedDocument) docid.Reference {
	url, _ := docid.ParseURL(doc.URL())
	unresolved := docid.NewUnresolved(doc.URL(), url, false)
	return unresolved.Resolve(url, docid.New(), []string{"swift"}, "swift")
}

// MatchExtensions resolves every documentation extension's symbol link
// against tree and attaches the extension's content to the matched
// symbol's existing topic-graph node — per spec.md §4.4, an extension
// never gets a page of its own. A link that resolves to nothing is
// reported as diag.UnmatchedExtension. When more than one extension
// resolves to the same symbol, the first (in the deterministic
// absolute-URL order Register already walked exts in) wins and every
// later one is reported as diag.MultipleExtensionsMatched.
func MatchExtensions(tree *pathhierarchy.Tree, graph *topicgraph.Graph, exts []Extension, defaultLanguage string, reporter diag.Reporter) {
	claimed := make(map[string]Extension, len(exts))

	for _, ext := range exts {
		target := strings.Trim(ext.SymbolLinkText, "`")
		node, err := tree.Lookup(target, nil, defaultLanguage)
		if err != nil {
			if reporter != nil {
				reporter.Report(diag.UnmatchedExtension, diag.SevWarning, ext.Doc.Span(),
					"documentation extension's symbol link "+target+" does not resolve to any known symbol", nil, nil)
			}
			continue
		}

		ref := node.Reference(defaultLanguage)
		key := ref.AbsoluteString()
		if first, ok := claimed[key]; ok {
			if reporter != nil {
				reporter.Report(diag.MultipleExtensionsMatched, diag.SevWarning, ext.Doc.Span(),
					"documentation extension targeting "+target+" was already matched by "+first.Doc.URL(), nil, nil)
			}
			continue
		}
		claimed[key] = ext

		page, ok := graph.Node(ref)
		if !ok {
			if reporter != nil {
				reporter.Report(diag.UnmatchedExtension, diag.SevWarning, ext.Doc.Span(),
					"documentation extension's symbol link "+target+" resolved but has no topic-graph page", nil, nil)
			}
			continue
		}
		loc := topicgraph.ContentLocation{Kind: topicgraph.LocationFile, URL: ext.Doc.URL()}
		updated := *page
		updated.ExtensionContent = &loc
		graph.ReplaceNode(&updated)
	}
}

// addLandmarks creates a child topic-graph node per landmark and an edge
// from the owning tutorial/technology page to it.
func addLandmarks(graph *topicgraph.Graph, owner docid.Reference, doc ParsedDocument) {
	base := owner.URL()
	for _, lm := range doc.Landmarks() {
		url, _ := docid.ParseURL(base.String() + "#" + lm.Anchor)
		ref := docid.NewUnresolved(lm.Title, url, false).Resolve(url, docid.New(), []string{"swift"}, "swift")
		graph.AddNode(&topicgraph.Node{
			Reference: ref,
			Kind:      topicgraph.KindLandmark,
			Title:     lm.Title,
			Location:  topicgraph.ContentLocation{Kind: topicgraph.LocationFile, URL: doc.URL()},
		})
		graph.AddEdge(owner, ref)
	}
}
