package pathhierarchy

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"doccc/internal/diag"
	"doccc/internal/fix"
	"doccc/internal/source"
)

// knownKindTokens is the small, data-driven vocabulary of disambiguator
// kind tokens accepted in an authored path component, e.g. "-method",
// "-struct". It is intentionally open-ended data, not a fixed enum — new
// tokens arrive with new symbol-graph kinds.
var knownKindTokens = map[string]bool{
	"method": true, "struct": true, "class": true, "enum": true,
	"protocol": true, "var": true, "func": true, "property": true,
	"case": true, "init": true, "subscript": true, "typealias": true,
	"associatedtype": true, "operator": true, "extension": true,
}

// knownLanguagePrefixes is the small data-driven table of language prefixes
// accepted (but never suggested) in path components, per the "known
// language" heuristic — a component like "swift.MyClass" is accepted as
// "MyClass" with an implied language tag.
var knownLanguagePrefixes = []string{"swift.", "objc.", "c.", "occ."}

func stripLanguagePrefix(component string) string {
	for _, p := range knownLanguagePrefixes {
		if strings.HasPrefix(component, p) {
			return component[len(p):]
		}
	}
	return component
}

// parsedComponent is one path component split into its base name plus the
// up-to-two trailing disambiguators.
type parsedComponent struct {
	Name string
	Kind Kind
	Hash StableHash
}

// parseComponent detects up to two trailing "-token" disambiguators. Either
// order (kind-then-hash or hash-then-kind) is accepted; either may be
// absent.
func parseComponent(raw string) parsedComponent {
	// Authored link text may mix composed and decomposed accented
	// characters (a title typed on different keyboards/editors); normalize
	// to NFC so both forms address the same path-hierarchy node.
	raw = norm.NFC.String(raw)
	raw = stripLanguagePrefix(raw)
	parts := strings.Split(raw, "-")
	if len(parts) == 1 {
		return parsedComponent{Name: raw}
	}

	pc := parsedComponent{Name: parts[0]}
	trailing := parts[1:]
	if len(trailing) > 2 {
		// More hyphens than disambiguators: treat everything past the first
		// as part of the base name except the final one or two tokens that
		// look like known disambiguators.
		trailing = trailing[len(trailing)-2:]
		pc.Name = strings.Join(parts[:len(parts)-2], "-")
	}

	for _, tok := range trailing {
		if knownKindTokens[tok] {
			pc.Kind = Kind(tok)
		} else if looksLikeHash(tok) {
			pc.Hash = StableHash(tok)
		} else {
			// Unknown trailing token: fold back into the name, since it
			// wasn't actually a disambiguator.
			pc.Name = pc.Name + "-" + tok
		}
	}
	return pc
}

func looksLikeHash(tok string) bool {
	if len(tok) != stableHashHexLen {
		return false
	}
	for _, r := range tok {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// LookupError is returned by Tree.Lookup on failure.
type LookupError struct {
	Kind       LookupErrorKind
	Path       string
	Candidates []*Node
}

// LookupErrorKind distinguishes not-found from an unresolved collision.
type LookupErrorKind uint8

const (
	// NotFound means no node matches the path at all, or the terminal node
	// is a pure shell with no symbol payload.
	NotFound LookupErrorKind = iota
	// Collision means the path resolves to more than one node and the
	// supplied disambiguators (if any) were not enough to narrow it down.
	Collision
)

func (e *LookupError) Error() string {
	switch e.Kind {
	case Collision:
		return fmt.Sprintf("pathhierarchy: %q is ambiguous among %d candidates", e.Path, len(e.Candidates))
	default:
		return fmt.Sprintf("pathhierarchy: %q not found", e.Path)
	}
}

// Lookup resolves an authored path against the forest, starting from
// parent (nil to search only roots). It implements the 5-step
// collision-aware algorithm: parse disambiguators, pick a root or walk up
// from parent, walk children narrowing by (kind, hash) at each step,
// attempt one-more-step resolution on an unresolved collision, and finally
// reject a pure-shell terminus.
func (t *Tree) Lookup(path string, parent *Node, defaultLanguage string) (*Node, error) {
	raw := strings.TrimPrefix(path, "/")
	isAbsolute := strings.HasPrefix(path, "/")
	components := splitPath(raw)
	if len(components) == 0 {
		return nil, &LookupError{Kind: NotFound, Path: path}
	}

	parsed := make([]parsedComponent, len(components))
	for i, c := range components {
		parsed[i] = parseComponent(c)
	}

	start, startIdx, err := t.pickStart(parsed, parent, isAbsolute)
	if err != nil {
		return nil, err
	}

	node, err := t.walk(start, parsed[startIdx:], path, defaultLanguage)
	if err != nil {
		return nil, err
	}
	if node.Symbol == nil {
		return nil, &LookupError{Kind: NotFound, Path: path}
	}
	return node, nil
}

func splitPath(raw string) []string {
	parts := strings.Split(raw, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pickStart chooses the root/interior node to begin the walk from, and the
// index into parsed components at which the walk should continue (0 for an
// absolute path whose first component names that root; 0 for walking up
// from parent, since the full path is consumed from parent's children).
func (t *Tree) pickStart(parsed []parsedComponent, parent *Node, isAbsolute bool) (*Node, int, error) {
	if isAbsolute {
		if root, ok := t.Roots[parsed[0].Name]; ok {
			return root, 1, nil
		}
		return nil, 0, &LookupError{Kind: NotFound}
	}

	if parent != nil {
		// Walk up from parent until a node whose children include the
		// first component's name is found.
		for n := parent; n != nil; n = n.Parent {
			if _, ok := n.ChildSubtree(parsed[0].Name); ok {
				return n, 0, nil
			}
		}
	}

	// Fall back to trying each root.
	for _, name := range t.SortedRootNames() {
		root := t.Roots[name]
		if _, ok := root.ChildSubtree(parsed[0].Name); ok {
			return root, 0, nil
		}
		if root.Name == parsed[0].Name {
			return root, 1, nil
		}
	}
	return nil, 0, &LookupError{Kind: NotFound}
}

func (t *Tree) walk(start *Node, remaining []parsedComponent, originalPath, defaultLanguage string) (*Node, error) {
	node := start
	for i, pc := range remaining {
		subtree, ok := node.ChildSubtree(pc.Name)
		if !ok {
			return nil, &LookupError{Kind: NotFound, Path: originalPath}
		}

		matches := subtree.Find(pc.Kind, pc.Hash)
		switch len(matches) {
		case 0:
			return nil, &LookupError{Kind: NotFound, Path: originalPath}
		case 1:
			node = matches[0]
			continue
		}

		// Collision: try resolving one more step for each candidate.
		if resolved, ok := resolveByContinuation(matches, remaining[i+1:]); ok {
			node = resolved
			continue
		}
		if resolved, ok := resolveByDefaultLanguage(matches, defaultLanguage); ok {
			node = resolved
			continue
		}
		return nil, &LookupError{Kind: Collision, Path: originalPath, Candidates: matches}
	}
	return node, nil
}

// resolveByContinuation implements "if exactly one candidate continues to
// resolve by one more step, prefer it".
func resolveByContinuation(candidates []*Node, rest []parsedComponent) (*Node, bool) {
	if len(rest) == 0 {
		return nil, false
	}
	var survivors []*Node
	next := rest[0]
	for _, c := range candidates {
		subtree, ok := c.ChildSubtree(next.Name)
		if !ok {
			continue
		}
		if len(subtree.Find(next.Kind, next.Hash)) > 0 {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 1 {
		return survivors[0], true
	}
	return nil, false
}

// resolveByDefaultLanguage implements "if all collisions refer to the same
// precise id under different language variants, prefer the default
// language" — here approximated as: if every candidate shares one precise
// id, the collision is a language-variant artifact and any one represents
// it; otherwise check which single candidate actually has a declaration
// recorded under defaultLanguage.
func resolveByDefaultLanguage(candidates []*Node, defaultLanguage string) (*Node, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	first := candidates[0].Symbol
	samePreciseID := first != nil
	for _, c := range candidates[1:] {
		if c.Symbol == nil || first == nil || c.Symbol.PreciseID != first.PreciseID {
			samePreciseID = false
			break
		}
	}
	if samePreciseID {
		for _, c := range candidates {
			if c.Symbol != nil {
				if _, ok := c.Symbol.Languages[defaultLanguage]; ok {
					return c, true
				}
			}
		}
		return candidates[0], true
	}
	return nil, false
}

// Disambiguators returns the shortest set of trailing tokens ("-kind",
// "-hash", or "-kind-hash") that distinguish node from its siblings under
// the same name, and "" when node is the sole occupant of its name.
func (n *Node) Disambiguators() string {
	if n.Parent == nil {
		return ""
	}
	subtree, ok := n.Parent.ChildSubtree(n.Name)
	if !ok {
		return ""
	}
	all := subtree.All()
	if len(all) <= 1 {
		return ""
	}

	if len(subtree.Find(n.Kind, "")) == 1 {
		return "-" + string(n.Kind)
	}
	if len(subtree.Find("", n.Hash)) == 1 {
		return "-" + string(n.Hash)
	}
	return "-" + string(n.Kind) + "-" + string(n.Hash)
}

// CanonicalPath returns the shortest path string that uniquely identifies
// node: no disambiguation where unambiguous, otherwise the minimal subset
// of -kind/-hash.
func (n *Node) CanonicalPath() string {
	var segs []string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		segs = append(segs, cur.Name+cur.Disambiguators())
	}
	// Root name goes first.
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	segs = append(segs, root.Name)
	reverse(segs)
	return "/" + strings.Join(segs, "/")
}

// Reference builds the canonical, already-resolved docid.Reference for a
// symbol-bearing node: its CanonicalPath as the URL, its own Identifier,
// and the set of languages its declarations carry. Callers that need to
// address a symbol's page by the same identity the topic graph uses
// (the registrar's extension matcher, the CLI's topic-graph population)
// should build it here rather than duplicating the construction, so both
// sides of a lookup always agree on one Reference per symbol.
func (n *Node) Reference(defaultLanguage string) docid.Reference {
	if n.Symbol == nil {
		return docid.Reference{}
	}
	langs := make([]string, 0, len(n.Symbol.Languages))
	for l := range n.Symbol.Languages {
		langs = append(langs, l)
	}
	canonical := docid.URL{Path: strings.TrimPrefix(n.CanonicalPath(), "/")}
	unresolved := docid.NewUnresolved(n.CanonicalPath(), canonical, true)
	return unresolved.Resolve(canonical, n.Symbol.Identifier, langs, defaultLanguage)
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// CandidatesSorted returns candidates sorted by their canonical path, for
// deterministic diagnostic note ordering.
func CandidatesSorted(candidates []*Node) []*Node {
	out := append([]*Node(nil), candidates...)
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalPath() < out[j].CanonicalPath() })
	return out
}

// CollisionFixes builds one "try this disambiguator" quick-fix per
// candidate, sorted for deterministic ordering, for attaching to a
// diag.LookupCollision diagnostic raised over a LookupError.
func CollisionFixes(span source.Span, bareComponent string, candidates []*Node) []diag.Fix {
	sorted := CandidatesSorted(candidates)
	out := make([]diag.Fix, 0, len(sorted))
	for _, c := range sorted {
		disambiguated := c.Name + c.Disambiguators()
		out = append(out, fix.Disambiguator(span, bareComponent, disambiguated))
	}
	return out
}
