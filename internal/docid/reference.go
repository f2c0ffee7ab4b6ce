package docid

import (
	"fmt"
	"strings"
)

// Scheme is the only URL scheme the documentation compiler recognizes.
const Scheme = "doc"

// State tags the three conceptual states a Reference can be in.
type State uint8

const (
	// Unresolved carries the raw authored string plus whatever partial URL
	// could be parsed out of it. It exists only between document
	// registration and the end of link resolution.
	Unresolved State = iota
	// ResolvedSuccess carries a canonical catalog id, path, and the set of
	// source languages the target is available in. Immutable once built —
	// the only way to produce one is Reference.Resolve.
	ResolvedSuccess
	// ResolvedFailure carries diagnostic information about why resolution
	// failed: every candidate URL that was attempted.
	ResolvedFailure
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case ResolvedSuccess:
		return "resolved-success"
	case ResolvedFailure:
		return "resolved-failure"
	default:
		return "unknown"
	}
}

// URL is the parsed three-part shape of a reference: doc://<catalog-id>/<path>[#<fragment>].
type URL struct {
	CatalogID string
	Path      string // slash-separated, no leading slash
	Fragment  string // empty when absent
}

// String renders u back into its canonical textual form.
func (u URL) String() string {
	var b strings.Builder
	if u.CatalogID != "" {
		b.WriteString(Scheme)
		b.WriteString("://")
		b.WriteString(u.CatalogID)
		b.WriteByte('/')
	}
	b.WriteString(u.Path)
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// PathComponents splits Path on '/' ignoring empty segments (leading or
// doubled slashes collapse, matching how authored links are typically
// written loosely).
func (u URL) PathComponents() []string {
	parts := strings.Split(u.Path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseURL parses a raw authored string into a URL. A string with no
// "scheme://" prefix is treated as a bare path with no catalog id (the
// common case for an authored in-catalog symbol or article link).
func ParseURL(raw string) (URL, error) {
	raw = strings.TrimSpace(raw)
	rest := raw
	var catalogID string

	if idx := strings.Index(rest, "://"); idx >= 0 {
		scheme := rest[:idx]
		if scheme != Scheme {
			return URL{}, fmt.Errorf("docid: unsupported scheme %q", scheme)
		}
		rest = rest[idx+3:]
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			catalogID = rest[:slash]
			rest = rest[slash+1:]
		} else {
			catalogID = rest
			rest = ""
		}
	}

	fragment := ""
	if hash := strings.IndexByte(rest, '#'); hash >= 0 {
		fragment = rest[hash+1:]
		rest = rest[:hash]
	}

	return URL{CatalogID: catalogID, Path: rest, Fragment: fragment}, nil
}

// FailureCandidate records one URL construction the resolver attempted and
// why it did not land on an existing page.
type FailureCandidate struct {
	URL    URL
	Reason string
}

// Reference is a URL-shaped value that is one of Unresolved,
// ResolvedSuccess, or ResolvedFailure. The zero value is an Unresolved
// reference with an empty authored text and is not useful on its own —
// construct one with NewUnresolved.
type Reference struct {
	state State

	authoredText  string
	fromSymbolLnk bool

	url             URL
	id              Identifier
	sourceLanguages map[string]struct{}

	candidates []FailureCandidate
}

// NewUnresolved builds an Unresolved reference from raw authored text and
// whatever URL could be parsed from it (partialURL may be the zero URL when
// parsing failed entirely; the authored text is preserved regardless so
// diagnostics can still quote it).
func NewUnresolved(authoredText string, partialURL URL, fromSymbolLink bool) Reference {
	return Reference{
		state:         Unresolved,
		authoredText:  authoredText,
		fromSymbolLnk: fromSymbolLink,
		url:           partialURL,
	}
}

// State reports which of the three conceptual states r is in.
func (r Reference) State() State { return r.state }

// AuthoredText returns the original text the author wrote, regardless of
// state — useful for diagnostics on both success and failure.
func (r Reference) AuthoredText() string { return r.authoredText }

// FromSymbolLink reports whether this reference originated from a
// double-backtick symbol link (as opposed to a generic markdown/doc:// link).
// Symbol links resolve through the path hierarchy's collision-aware lookup;
// everything else resolves by whole-graph absolute-URL lookup.
func (r Reference) FromSymbolLink() bool { return r.fromSymbolLnk }

// URL returns the reference's URL. For Unresolved it is the partial URL
// parsed at construction time; for ResolvedSuccess it is canonical.
func (r Reference) URL() URL { return r.url }

// Identifier returns the target node's Identifier. Only meaningful when
// State() == ResolvedSuccess.
func (r Reference) Identifier() Identifier { return r.id }

// SourceLanguages returns the set of source languages the resolved target
// is available in. Only meaningful when State() == ResolvedSuccess; per
// the module invariant this set is always non-empty and contains the
// catalog's default language.
func (r Reference) SourceLanguages() map[string]struct{} { return r.sourceLanguages }

// FailedCandidates returns every URL the resolver attempted before giving
// up. Only meaningful when State() == ResolvedFailure.
func (r Reference) FailedCandidates() []FailureCandidate { return r.candidates }

// Resolve returns a new ResolvedSuccess reference derived from r. r itself
// is left unmodified — Reference is an immutable value once resolved, so
// the only way to obtain a resolved reference is through this constructor.
func (r Reference) Resolve(canonical URL, id Identifier, sourceLanguages []string, defaultLanguage string) Reference {
	langs := make(map[string]struct{}, len(sourceLanguages)+1)
	for _, l := range sourceLanguages {
		langs[l] = struct{}{}
	}
	langs[defaultLanguage] = struct{}{}

	return Reference{
		state:           ResolvedSuccess,
		authoredText:    r.authoredText,
		fromSymbolLnk:   r.fromSymbolLnk,
		url:             canonical,
		id:              id,
		sourceLanguages: langs,
	}
}

// Fail returns a new ResolvedFailure reference carrying every candidate URL
// that was attempted, for diagnostics to enumerate.
func (r Reference) Fail(candidates []FailureCandidate) Reference {
	return Reference{
		state:         ResolvedFailure,
		authoredText:  r.authoredText,
		fromSymbolLnk: r.fromSymbolLnk,
		url:           r.url,
		candidates:    candidates,
	}
}

// AbsoluteString is the canonical cache/index key for a reference: its
// fully-qualified URL text. Two references with the same AbsoluteString
// identify the same target.
func (r Reference) AbsoluteString() string {
	return r.url.String()
}
