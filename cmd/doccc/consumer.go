package main

import (
	"doccc/internal/convert"
	"doccc/internal/diag"
)

// summaryConsumer implements convert.Consumer by accumulating counts for
// the CLI's terse end-of-run report. It writes no files: per SPEC_FULL.md
// §1 the CLI is a shell around the core, not a renderer, so there is no
// HTML/markdown template output for it to produce.
type summaryConsumer struct {
	pageCount     int
	externalCount int
	linkCount     int
	indexingCount int
	assetCount    int
	documented    int
	undocumented  int
	bag           *diag.Bag
	meta          convert.BuildMetadata
}

func newSummaryConsumer() *summaryConsumer {
	return &summaryConsumer{}
}

func (s *summaryConsumer) RenderContext(*convert.RenderContext) {}

func (s *summaryConsumer) RenderNode(n convert.RenderNode) {
	s.pageCount++
	if n.External {
		s.externalCount++
	}
}

func (s *summaryConsumer) Problems(bag *diag.Bag) { s.bag = bag }

func (s *summaryConsumer) LinkSummaries(entries []convert.LinkSummaryEntry) {
	s.linkCount += len(entries)
}

func (s *summaryConsumer) IndexingRecords(records []convert.IndexingRecord) {
	s.indexingCount += len(records)
}

func (s *summaryConsumer) AssetReferences(entries []convert.AssetReferenceEntry) {
	s.assetCount += len(entries)
}

func (s *summaryConsumer) Coverage(entries []convert.CoverageEntry) {
	for _, e := range entries {
		if e.Documented {
			s.documented++
		} else {
			s.undocumented++
		}
	}
}

func (s *summaryConsumer) Metadata(meta convert.BuildMetadata) { s.meta = meta }
