// Package diag defines the diagnostic model shared by every phase of the
// documentation compiler: symbol graph loading, path hierarchy construction,
// document registration, relationship building, link resolution, curation,
// and conversion.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by any phase, without coupling producers to a
//     concrete storage or presentation layer.
//   - Offer light-weight utilities (Reporter, Bag) so producers can emit
//     diagnostics without knowing how they will eventually be printed.
//   - Model fix suggestions ("try this disambiguator") as structured edits a
//     downstream consumer may choose to surface.
//
// # Scope
//
// Package diag performs no formatting, I/O, or CLI integration — diagnostic
// presentation is explicitly a collaborator outside the compiler core.
// Rendering needed for tests lives in golden.go and is deliberately minimal.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error), severity.go.
//   - Code – compact numeric identifier with a stable string form, codes.go.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing at the issue, when one exists
//     (some symbol-graph-level diagnostics, e.g. malformed JSON, have none).
//   - Notes – optional secondary spans/messages for context ("previous
//     extension matched here", "candidate: doc://...").
//   - Fixes – optional Fix records describing a possible repair.
//
// A Diagnostic with Severity == SevError anywhere in a catalog's Bag makes
// the catalog fatal: conversion must not run.
//
// # Fix suggestions
//
// Fix represents a possible correction a caller may offer the author:
//
//   - Title – short label.
//   - Kind – coarse classification (quick fix, refactor, rewrite, source action).
//   - Applicability – confidence level: AlwaysSafe, SafeWithHeuristics,
//     ManualReview.
//   - IsPreferred – marks the most relevant fix when several exist.
//   - Edits – concrete text edits (Span + new/old text).
//   - Thunk – optional lazy builder used when edits are expensive to construct
//     (e.g. a lookup-collision fix that needs to recompute the shortest
//     disambiguator for every candidate).
//
// # Emitting diagnostics
//
// Phases use a Reporter to decouple emission from storage. Construct a
// ReportBuilder via NewReportBuilder (or ReportError/ReportWarning/ReportInfo),
// chain WithNote/WithFixSuggestion, then call Emit. diag.BagReporter
// aggregates diagnostics into a Bag, which supports sorting, deduplication,
// filtering, and transformation — the only place in the module responsible
// for accumulating catalog-wide state for a run.
package diag
