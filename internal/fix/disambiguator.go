package fix

import (
	"doccc/internal/diag"
	"doccc/internal/source"
)

// Disambiguator builds a "try this disambiguator" fix suggestion for a
// lookup-collision diagnostic: replacing the bare authored path component
// with one that carries the kind/hash suffix that resolves unambiguously.
// Grounded on ReplaceSpan — a collision fix is just a span replacement
// whose new text is the disambiguated component.
func Disambiguator(span source.Span, bareComponent, disambiguated string) diag.Fix {
	return ReplaceSpan(
		"Use "+disambiguated+" to resolve the ambiguity",
		span,
		disambiguated,
		bareComponent,
		WithID("disambiguate:"+disambiguated),
	)
}
