package symbolgraph

import (
	"context"
	"fmt"
	"strings"

	"doccc/internal/source"
)

// FileRef names one symbol-graph file on disk and whether its stem marks it
// as a primary module file or an extension file contributed by another
// module (<module>@<extending-module>.symbols.json).
type FileRef struct {
	Path string
}

// classification is the result of parsing a symbol-graph filename stem.
type classification struct {
	ModuleName     string
	ExtendingOf    string // non-empty when this file is an extension
	IsExtension    bool
}

// classify parses a filename stem matching `<module>(@<target>)?(.symbols)?.json`.
func classify(path string) classification {
	base := path
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".json")
	base = strings.TrimSuffix(base, ".symbols")

	if at := strings.IndexByte(base, '@'); at >= 0 {
		return classification{
			ModuleName:  base[:at],
			ExtendingOf: base[at+1:],
			IsExtension: true,
		}
	}
	return classification{ModuleName: base}
}

// Catalog is the complete set of unified modules loaded from one catalog's
// symbol-graph files.
type Catalog struct {
	ModulesByName map[string]*UnifiedModule
}

// SortedModuleNames returns every module name in deterministic order.
func (c *Catalog) SortedModuleNames() []string {
	out := make([]string, 0, len(c.ModulesByName))
	for name := range c.ModulesByName {
		out = append(out, name)
	}
	sortStrings(out)
	return out
}

// Loader reads symbol-graph files through a byte-reading source.FileSet and
// merges them into a Catalog.
type Loader struct {
	fs *source.FileSet
}

// NewLoader builds a Loader backed by fs. fs is the module's sole
// byte-reading provider; the loader never touches the filesystem directly.
func NewLoader(fs *source.FileSet) *Loader {
	return &Loader{fs: fs}
}

// DecodeError wraps the first malformed-JSON failure encountered; per the
// loader's fatal-abort policy this is always the only decode error surfaced
// for a catalog, even when several files are malformed.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("symbolgraph: malformed symbol graph %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load reads every file in refs, classifies and groups them by module, and
// merges their contents into a Catalog. Malformed JSON anywhere aborts the
// whole catalog and returns the first decode error encountered, in the
// order refs were given — mirrors the "first decoding error wins" policy a
// parallel-tokenizing frontend uses for fatal I/O failures, adapted here to
// a strictly sequential loop since decode order determines which error is
// "first".
func (l *Loader) Load(ctx context.Context, refs []FileRef) (*Catalog, error) {
	cat := &Catalog{ModulesByName: make(map[string]*UnifiedModule)}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, ok := l.fs.GetByPath(ref.Path)
		if !ok {
			id, err := l.fs.Load(ref.Path)
			if err != nil {
				return nil, fmt.Errorf("symbolgraph: reading %s: %w", ref.Path, err)
			}
			file = l.fs.Get(id)
		}

		wf, err := decodeFile(file.Content)
		if err != nil {
			return nil, &DecodeError{Path: ref.Path, Err: err}
		}

		cls := classify(ref.Path)
		moduleName := cls.ModuleName
		mod, ok := cat.ModulesByName[moduleName]
		if !ok {
			mod = newUnifiedModule(moduleName)
			cat.ModulesByName[moduleName] = mod
		}

		sel := Selector{InterfaceLanguage: defaultLanguageOf(wf.Symbols), Platform: wf.Module.Platform}
		mod.Modules[sel] = ModuleMetadata(wf.Module)

		for _, ws := range wf.Symbols {
			if err := mergeSymbol(mod, ws.toSymbol()); err != nil {
				return nil, err
			}
		}
		for _, wr := range wf.Relationships {
			sel := Selector{InterfaceLanguage: wr.relLanguage(), Platform: wf.Module.Platform}
			mod.RelationshipsBySelector[sel] = append(mod.RelationshipsBySelector[sel], wr.toRelationship())
		}
	}

	for _, mod := range cat.ModulesByName {
		resolveOrphans(mod)
	}

	return cat, nil
}

// defaultLanguageOf picks the interface language recorded on the first
// symbol, falling back to "unknown" for an empty symbol graph (spec
// boundary: zero-symbol modules are still valid and still get a module
// node).
func defaultLanguageOf(symbols []wireSymbol) string {
	if len(symbols) == 0 {
		return "unknown"
	}
	return symbols[0].Identifier.InterfaceLanguage
}

// relLanguage always returns "unknown": a relationship has no language of
// its own on the wire and the source symbol's language is not looked up,
// so every relationship of a file is grouped under the ("unknown",
// platform) selector.
func (r wireRelationship) relLanguage() string {
	return "unknown"
}

// MixedPlatformError reports a symbol whose declarations mix an
// OS-unqualified variant (no availability-domain-derived platform name) with
// at least one OS-qualified variant. Per spec.md this boundary case is
// fatal for that symbol's merge, the same way a malformed symbol-graph file
// aborts the whole catalog load.
type MixedPlatformError struct {
	PreciseID string
}

func (e *MixedPlatformError) Error() string {
	return fmt.Sprintf("symbolgraph: symbol %s mixes a declaration without an operating-system name with OS-named declarations", e.PreciseID)
}

// platformOf derives the OS name a declaration's variant is scoped to, from
// the first availability entry's Domain (the only place a symbol-graph
// declaration records an operating-system name outside the file-level
// module selector).
func platformOf(decl Declaration) string {
	if len(decl.Mixins.Availability) == 0 {
		return ""
	}
	return decl.Mixins.Availability[0].Domain
}

// mixesPlatformNaming reports whether adding next to existing would leave the
// symbol with at least one OS-unqualified variant and at least one
// OS-qualified variant.
func mixesPlatformNaming(existing []Declaration, next Declaration) bool {
	nextHasOS := platformOf(next) != ""
	for _, e := range existing {
		if (platformOf(e) != "") != nextHasOS {
			return true
		}
	}
	return false
}

// mergeSymbol folds one raw Symbol into mod's unified view: same precise id
// with identical declaration fragments coalesce into one variant; distinct
// fragments are kept as parallel variants so per-selector rendering still
// reflects platform-specific text. A symbol whose variants mix an
// OS-unqualified declaration with OS-qualified ones is rejected outright,
// since there is no single consistent meaning to coalesce or parallelize
// such variants under.
func mergeSymbol(mod *UnifiedModule, sym Symbol) error {
	u, ok := mod.Symbols[sym.Identifier.Precise]
	if !ok {
		u = &UnifiedSymbol{
			PreciseID: sym.Identifier.Precise,
			Languages: make(map[string]struct{}),
		}
		mod.Symbols[sym.Identifier.Precise] = u
	}

	decl := Declaration{
		Selector:       Selector{InterfaceLanguage: sym.Identifier.InterfaceLanguage},
		Names:          sym.Names,
		PathComponents: sym.PathComponents,
		DocComment:     sym.DocComment,
		AccessLevel:    sym.AccessLevel,
		Kind:           sym.Kind,
		Mixins:         sym.Mixins,
	}

	if mixesPlatformNaming(u.Variants, decl) {
		return &MixedPlatformError{PreciseID: sym.Identifier.Precise}
	}

	u.Languages[sym.Identifier.InterfaceLanguage] = struct{}{}

	for i, existing := range u.Variants {
		if existing.Selector == decl.Selector && declFragmentsEqual(existing.Mixins.DeclarationFragments, decl.Mixins.DeclarationFragments) {
			u.Variants[i] = decl // coalesce: same selector, same fragments
			return nil
		}
	}
	u.Variants = append(u.Variants, decl)
	return nil
}

func declFragmentsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolveOrphans scans every relationship in mod and records the ones whose
// source or target precise id is absent from the unified symbol list.
func resolveOrphans(mod *UnifiedModule) {
	for _, rels := range mod.RelationshipsBySelector {
		for _, rel := range rels {
			_, srcOK := mod.Symbols[rel.Source]
			_, tgtOK := mod.Symbols[rel.Target]
			if !srcOK || !tgtOK {
				mod.OrphanRelationships = append(mod.OrphanRelationships, OrphanRelationship{
					Relationship:  rel,
					MissingSource: !srcOK,
					MissingTarget: !tgtOK,
				})
			}
		}
	}
}
