// Package linkresolver implements the Link Resolver: it turns authored
// references into stable identifiers using the path hierarchy's
// collision-aware lookup (for symbol links) or the topic graph's
// whole-graph lookup by absolute URL (for everything else), with layered
// search contexts, external-resolver fallback, and a process-wide cache.
package linkresolver

import (
	"context"
	"strings"

	"doccc/internal/docid"
	"doccc/internal/extresolve"
	"doccc/internal/pathhierarchy"
	"doccc/internal/topicgraph"
)

// Context is the read-only state the resolver consults: the path hierarchy
// (for symbol-link lookups), the topic graph (for whole-graph lookups by
// absolute URL), a reverse index from absolute URL to path-hierarchy node
// for pages backed by a symbol, the catalog's own id, and its default
// source language.
type Context struct {
	Tree            *pathhierarchy.Tree
	Graph           *topicgraph.Graph
	NodesByURL      map[string]*pathhierarchy.Node
	CatalogID       string
	DefaultLanguage string
}

// Resolver resolves references against a Context, with a process-wide
// cache and optional external/fallback resolvers for references the local
// context can't satisfy.
type Resolver struct {
	ctx      Context
	cache    *Cache
	registry *extresolve.RegistryResolver
	fallback extresolve.Resolver
}

// New builds a Resolver over ctx. registry may be nil (no external
// resolvers registered); fallback may be nil.
func New(ctx Context, registry *extresolve.RegistryResolver, fallback extresolve.Resolver) *Resolver {
	return &Resolver{ctx: ctx, cache: NewCache(), registry: registry, fallback: fallback}
}

// Resolve implements the full 7-step resolution order described for the
// link resolver. It never returns an error: every outcome is encoded in the
// returned Reference's State().
func (r *Resolver) Resolve(goCtx context.Context, ref docid.Reference, parent docid.Reference, fromSymbolLink bool) docid.Reference {
	// Step 1: already resolved.
	if ref.State() != docid.Unresolved {
		return ref
	}

	key := cacheKey{authoredText: ref.AuthoredText(), parent: parent.AbsoluteString(), fromSymbolLink: fromSymbolLink}

	// Step 2: process-wide cache, with the from-symbol-link-aware filter:
	// a symbol-link request ignores a cached hit that doesn't point to a
	// symbol page.
	if cached, ok := r.cache.Get(key); ok {
		if !fromSymbolLink || r.isSymbolReference(cached) {
			return cached
		}
	}

	// Step 3: scheme validation.
	parsed, err := docid.ParseURL(ref.AuthoredText())
	if err != nil {
		return ref.Fail([]docid.FailureCandidate{{Reason: "unsupported scheme: " + err.Error()}})
	}

	// Step 4: effective catalog id.
	catalogID := parsed.CatalogID
	if catalogID == "" {
		catalogID = r.ctx.CatalogID
		if parent.State() == docid.ResolvedSuccess && parent.URL().CatalogID != "" {
			catalogID = parent.URL().CatalogID
		}
	}

	var candidates []docid.FailureCandidate

	if catalogID == r.ctx.CatalogID {
		if resolved, ok := r.tryLocal(parsed, parent, fromSymbolLink, &candidates); ok {
			r.cache.Put(key, resolved)
			return resolved
		}
	}

	// Step 6: external resolver, then fallback.
	if r.registry != nil {
		if resolver, ok := r.registry.Lookup(catalogID); ok {
			if resolved, ok := r.tryExternal(goCtx, resolver, parsed, ref, fromSymbolLink, &candidates); ok {
				r.cache.Put(key, resolved)
				r.cache.Put(canonicalKey(resolved, parent, fromSymbolLink), resolved)
				return resolved
			}
		}
	}
	if r.fallback != nil {
		if resolved, ok := r.tryExternal(goCtx, r.fallback, parsed, ref, fromSymbolLink, &candidates); ok {
			r.cache.Put(key, resolved)
			r.cache.Put(canonicalKey(resolved, parent, fromSymbolLink), resolved)
			return resolved
		}
	}

	// Step 7: resolved-failure, carrying every attempted candidate.
	return ref.Fail(candidates)
}

func canonicalKey(resolved docid.Reference, parent docid.Reference, fromSymbolLink bool) cacheKey {
	return cacheKey{authoredText: resolved.URL().String(), parent: parent.AbsoluteString(), fromSymbolLink: fromSymbolLink}
}

func (r *Resolver) isSymbolReference(ref docid.Reference) bool {
	if ref.State() != docid.ResolvedSuccess {
		return false
	}
	_, ok := r.ctx.NodesByURL[ref.AbsoluteString()]
	return ok
}

// tryLocal attempts the locally-resolvable candidate order (5a-5e).
func (r *Resolver) tryLocal(parsed docid.URL, parent docid.Reference, fromSymbolLink bool, candidates *[]docid.FailureCandidate) (docid.Reference, bool) {
	try := func(path string) (docid.Reference, bool) {
		return r.tryPath(path, parent, fromSymbolLink, candidates)
	}

	// a. direct documentation/<path>
	if resolved, ok := try("documentation/" + parsed.Path); ok {
		return resolved, true
	}

	if !fromSymbolLink {
		// b. articles-root, tutorials-root, tutorials-container
		for _, prefix := range []string{"articles-root/", "tutorials-root/", "tutorials-container/"} {
			if resolved, ok := try(prefix + parsed.Path); ok {
				return resolved, true
			}
		}
	}

	if parent.State() == docid.ResolvedSuccess {
		parentComponents := parent.URL().PathComponents()

		// c. parent + <path> (relative child)
		if resolved, ok := try(joinPath(parent.URL().Path, parsed.Path)); ok {
			return resolved, true
		}

		// d. sibling: drop last parent component, append <path>
		if len(parentComponents) > 0 {
			siblingBase := strings.Join(parentComponents[:len(parentComponents)-1], "/")
			if resolved, ok := try(joinPath(siblingBase, parsed.Path)); ok {
				return resolved, true
			}
		}

		// e. module-rooted: documentation/<module>/<path>
		if len(parentComponents) > 0 {
			module := parentComponents[0]
			if resolved, ok := try("documentation/" + module + "/" + parsed.Path); ok {
				return resolved, true
			}
		}
	}

	return docid.Reference{}, false
}

func joinPath(base, suffix string) string {
	base = strings.Trim(base, "/")
	suffix = strings.Trim(suffix, "/")
	if base == "" {
		return suffix
	}
	if suffix == "" {
		return base
	}
	return base + "/" + suffix
}

// tryPath attempts to resolve one candidate path, via the path hierarchy
// (symbol links) or the topic graph (everything else), recording a failure
// candidate either way so a final resolved-failure can enumerate every
// attempt.
func (r *Resolver) tryPath(path string, parent docid.Reference, fromSymbolLink bool, candidates *[]docid.FailureCandidate) (docid.Reference, bool) {
	candidateURL := docid.URL{CatalogID: r.ctx.CatalogID, Path: path}

	if fromSymbolLink {
		var parentNode *pathhierarchy.Node
		if parent.State() == docid.ResolvedSuccess {
			parentNode = r.ctx.NodesByURL[parent.AbsoluteString()]
		}
		node, err := r.ctx.Tree.Lookup(path, parentNode, r.ctx.DefaultLanguage)
		if err != nil {
			*candidates = append(*candidates, docid.FailureCandidate{URL: candidateURL, Reason: err.Error()})
			return docid.Reference{}, false
		}
		canonical := docid.URL{CatalogID: r.ctx.CatalogID, Path: node.CanonicalPath()}
		languages := make([]string, 0, len(node.Symbol.Languages))
		for l := range node.Symbol.Languages {
			languages = append(languages, l)
		}
		id := node.Symbol.Identifier
		return docid.NewUnresolved(path, candidateURL, true).Resolve(canonical, id, languages, r.ctx.DefaultLanguage), true
	}

	if n, ok := r.ctx.Graph.NodeByURL(candidateURL); ok {
		return n.Reference, true
	}
	*candidates = append(*candidates, docid.FailureCandidate{URL: candidateURL, Reason: "not found"})
	return docid.Reference{}, false
}

// tryExternal consults resolver for ref, building a resolved-success
// Reference from its response on success.
func (r *Resolver) tryExternal(goCtx context.Context, resolver extresolve.Resolver, parsed docid.URL, ref docid.Reference, fromSymbolLink bool, candidates *[]docid.FailureCandidate) (docid.Reference, bool) {
	var info extresolve.ResolvedInformation
	var err error
	if fromSymbolLink {
		info, err = resolver.ResolveSymbol(goCtx, parsed.Path)
	} else {
		info, err = resolver.ResolveTopic(goCtx, parsed.String())
	}
	if err != nil {
		*candidates = append(*candidates, docid.FailureCandidate{URL: parsed, Reason: err.Error()})
		return docid.Reference{}, false
	}
	canonical, parseErr := docid.ParseURL(info.URL)
	if parseErr != nil {
		canonical = parsed
	}
	return ref.Resolve(canonical, docid.New(), info.AvailableLanguages, info.Language), true
}
