// Package convert implements the Conversion Driver: the final pipeline
// phase that walks every page known to a populated catalog context and
// hands a render node for it to a consumer, alongside page-scoped link
// summaries, indexing records, asset references, and coverage data.
package convert

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"doccc/internal/asset"
	"doccc/internal/diag"
	"doccc/internal/docid"
	"doccc/internal/observ"
	"doccc/internal/pathhierarchy"
	"doccc/internal/relationship"
	"doccc/internal/source"
	"doccc/internal/topicgraph"
)

// RenderContext is the precomputed, read-only reference cache the driver
// builds once and hands to the consumer before rendering begins. Grounded
// on the teacher's per-type layout cache: both memoize an expensive
// derived value (there, a type's layout; here, a page's breadcrumb and
// relationship rollups) keyed by a stable id, computed once per catalog run.
type RenderContext struct {
	Tree            *pathhierarchy.Tree
	Graph           *topicgraph.Graph
	Relationships   map[string]*relationship.Set // precise id -> relationship set
	CatalogID       string
	DefaultLanguage string

	breadcrumbs map[string][]docid.Reference
}

// breadcrumbFor returns the canonical ancestor chain for ref, root first,
// computed once and cached on the RenderContext.
func (rc *RenderContext) breadcrumbFor(ref docid.Reference) []docid.Reference {
	k := ref.AbsoluteString()
	if rc.breadcrumbs == nil {
		rc.breadcrumbs = make(map[string][]docid.Reference)
	}
	if cached, ok := rc.breadcrumbs[k]; ok {
		return cached
	}

	var chain []docid.Reference
	cur := ref
	visited := make(map[string]bool)
	for {
		ck := cur.AbsoluteString()
		if visited[ck] {
			break
		}
		visited[ck] = true
		chain = append(chain, cur)

		parents := rc.Graph.Parents(cur)
		if len(parents) == 0 {
			break
		}
		parentNode, ok := rc.Graph.NodeByKey(parents[0])
		if !ok {
			break
		}
		cur = parentNode.Reference
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	rc.breadcrumbs[k] = chain
	return chain
}

// RenderNode is one page's computed output, handed to the consumer by the
// concurrent render phase.
type RenderNode struct {
	Reference   docid.Reference
	Kind        topicgraph.Kind
	Title       string
	Breadcrumbs []docid.Reference
	External    bool
}

// LinkSummaryEntry records one resolved link on a page, for the consumer's
// indexing output.
type LinkSummaryEntry struct {
	Page   docid.Reference
	Target docid.Reference
}

// IndexingRecord is one searchable-symbol entry emitted per rendered page.
type IndexingRecord struct {
	PreciseID string
	Reference docid.Reference
	Title     string
}

// AssetReferenceEntry records one asset referenced from a page.
type AssetReferenceEntry struct {
	Page docid.Reference
	Name string
}

// CoverageEntry records one symbol's documentation-coverage outcome.
type CoverageEntry struct {
	PreciseID   string
	Documented  bool
}

// BuildMetadata is the final record emitted at the end of the serial
// emission phase.
type BuildMetadata struct {
	CatalogID string
	PageCount int
}

// Consumer is the sink for everything the driver produces. Implementations
// must make RenderNode safe to call concurrently from many goroutines; the
// remaining methods are only ever called from the single serial emission
// phase.
type Consumer interface {
	RenderContext(rc *RenderContext)
	RenderNode(n RenderNode)
	Problems(bag *diag.Bag)
	LinkSummaries(entries []LinkSummaryEntry)
	IndexingRecords(records []IndexingRecord)
	AssetReferences(entries []AssetReferenceEntry)
	Coverage(entries []CoverageEntry)
	Metadata(meta BuildMetadata)
}

// PageInput is one page the driver knows how to render, supplied by the
// caller after registration and curation have finished.
type PageInput struct {
	Reference docid.Reference
	Kind      topicgraph.Kind
	Title     string
	PreciseID string // empty for non-symbol pages
	External  bool   // true for pages served entirely by an external resolver
	Links     []docid.Reference
	Assets    []string
}

// Driver runs the Conversion Driver's ordered phase flow over a fixed set
// of pages.
type Driver struct {
	Bag            *diag.Bag
	RegistrationOK *atomic.Bool
	Jobs           int
	EmitDigest     bool
	Timer          *observ.Timer
	Assets         asset.Manager // optional; nil skips phase 3's lookup pass
}

// NewDriver builds a Driver. registrationOK may be nil, in which case
// cancellation is never observed.
func NewDriver(bag *diag.Bag, registrationOK *atomic.Bool, jobs int) *Driver {
	if registrationOK == nil {
		registrationOK = &atomic.Bool{}
		registrationOK.Store(true)
	}
	return &Driver{Bag: bag, RegistrationOK: registrationOK, Jobs: jobs}
}

func (d *Driver) cancelled() bool {
	return d.RegistrationOK != nil && !d.RegistrationOK.Load()
}

// Run executes the full 7-phase flow described for the conversion driver
// against pages, a populated RenderContext, and externalCacheKeys (the set
// of cross-catalog references resolved via an external resolver, each
// surfaced as its own external render node rather than rendered locally).
func (d *Driver) Run(ctx context.Context, rc *RenderContext, pages []PageInput, externalCacheKeys []docid.Reference, consumer Consumer) {
	d.Timer = observ.NewTimer()

	// Phase 1: fatal-error short-circuit.
	fatalIdx := d.Timer.Begin("fatal_check")
	if d.Bag != nil && d.Bag.HasErrors() {
		d.Timer.End(fatalIdx, "aborted")
		consumer.Problems(d.Bag)
		return
	}
	d.Timer.End(fatalIdx, "")

	if d.cancelled() {
		d.reportCancelled()
		consumer.Problems(d.Bag)
		return
	}

	// Phase 2: build RenderContext once.
	ctxIdx := d.Timer.Begin("render_context")
	consumer.RenderContext(rc)
	d.Timer.End(ctxIdx, "")

	if d.cancelled() {
		d.reportCancelled()
		consumer.Problems(d.Bag)
		return
	}

	// Phase 3: catalog assets. Asset emission itself is a consumer
	// responsibility driven by the catalog's Asset Manager; the driver's
	// own role is limited to checking that every asset name a page
	// references actually resolves through the Manager, reporting any that
	// don't before rendering begins.
	assetIdx := d.Timer.Begin("catalog_assets")
	if d.Assets != nil && d.Bag != nil {
		reporter := diag.BagReporter{Bag: d.Bag}
		for _, page := range pages {
			for _, name := range page.Assets {
				if _, ok := d.Assets.Lookup(name); !ok {
					reporter.Report(diag.UnresolvedAsset, diag.SevWarning, source.Span{},
						fmt.Sprintf("asset %q referenced by %s has no Asset Manager entry", name, page.Reference.AbsoluteString()),
						nil, nil)
				}
			}
		}
	}
	d.Timer.End(assetIdx, "")

	if d.cancelled() {
		d.reportCancelled()
		consumer.Problems(d.Bag)
		return
	}

	// Phase 4: external render nodes for external-cache entries.
	extIdx := d.Timer.Begin("external_nodes")
	for _, extRef := range externalCacheKeys {
		consumer.RenderNode(RenderNode{Reference: extRef, External: true, Breadcrumbs: rc.breadcrumbFor(extRef)})
	}
	d.Timer.End(extIdx, "")

	if d.cancelled() {
		d.reportCancelled()
		consumer.Problems(d.Bag)
		return
	}

	// Phase 5: concurrent render phase.
	renderIdx := d.Timer.Begin("render")
	linkSummaries, indexingRecords, assetRefs, coverage := d.renderAll(ctx, rc, pages, consumer)
	d.Timer.End(renderIdx, "")

	if d.cancelled() {
		d.reportCancelled()
		consumer.Problems(d.Bag)
		return
	}

	// Phase 6: serial emission.
	emitIdx := d.Timer.Begin("emit")
	consumer.LinkSummaries(linkSummaries)
	consumer.IndexingRecords(indexingRecords)
	consumer.AssetReferences(assetRefs)
	consumer.Coverage(coverage)
	if d.EmitDigest {
		consumer.Problems(d.Bag)
	}
	consumer.Metadata(BuildMetadata{CatalogID: rc.CatalogID, PageCount: len(pages)})
	d.Timer.End(emitIdx, "")

	// Phase 7: benchmark points are the Timer itself; ObsTimings is
	// reported by the caller once Run returns via d.Timer.Report().
	if d.Bag != nil {
		report := d.Timer.Report()
		_ = report // caller surfaces this through diag.ObsTimings if desired
	}
}

func (d *Driver) reportCancelled() {
	if d.Bag == nil {
		return
	}
	diag.BagReporter{Bag: d.Bag}.Report(diag.RegistrationDisabled, diag.SevError, source.Span{}, "registration disabled mid-conversion; remaining pages were skipped", nil, nil)
}

// renderAll runs the concurrent render phase: one goroutine per page,
// each writing into a distinct index of per-kind result slices so no
// mutex is needed, exactly the driver pattern the teacher's parallel
// per-file diagnose phase uses (results[i] = ...). The page-scoped buffers
// are then flattened into the shared output slices after the group waits.
func (d *Driver) renderAll(ctx context.Context, rc *RenderContext, pages []PageInput, consumer Consumer) ([]LinkSummaryEntry, []IndexingRecord, []AssetReferenceEntry, []CoverageEntry) {
	type pageResult struct {
		links     []LinkSummaryEntry
		indexing  []IndexingRecord
		assets    []AssetReferenceEntry
		coverage  []CoverageEntry
	}

	results := make([]pageResult, len(pages))
	jobs := d.Jobs
	if jobs <= 0 {
		jobs = len(pages)
		if jobs == 0 {
			jobs = 1
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(pages), 1)))

	for i, page := range pages {
		g.Go(func(i int, page PageInput) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if d.cancelled() {
					return nil
				}

				node := RenderNode{
					Reference:   page.Reference,
					Kind:        page.Kind,
					Title:       page.Title,
					Breadcrumbs: rc.breadcrumbFor(page.Reference),
					External:    page.External,
				}
				consumer.RenderNode(node)

				var res pageResult
				for _, target := range page.Links {
					res.links = append(res.links, LinkSummaryEntry{Page: page.Reference, Target: target})
				}
				for _, name := range page.Assets {
					res.assets = append(res.assets, AssetReferenceEntry{Page: page.Reference, Name: name})
				}
				if page.PreciseID != "" {
					res.indexing = append(res.indexing, IndexingRecord{PreciseID: page.PreciseID, Reference: page.Reference, Title: page.Title})
					_, documented := rc.Relationships[page.PreciseID]
					res.coverage = append(res.coverage, CoverageEntry{PreciseID: page.PreciseID, Documented: documented || page.Title != ""})
				}
				results[i] = res
				return nil
			}
		}(i, page))
	}
	_ = g.Wait()

	var links []LinkSummaryEntry
	var indexing []IndexingRecord
	var assets []AssetReferenceEntry
	var coverage []CoverageEntry
	for _, r := range results {
		links = append(links, r.links...)
		indexing = append(indexing, r.indexing...)
		assets = append(assets, r.assets...)
		coverage = append(coverage, r.coverage...)
	}

	sort.Slice(indexing, func(i, j int) bool { return indexing[i].PreciseID < indexing[j].PreciseID })
	sort.Slice(coverage, func(i, j int) bool { return coverage[i].PreciseID < coverage[j].PreciseID })
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Page.AbsoluteString() != assets[j].Page.AbsoluteString() {
			return assets[i].Page.AbsoluteString() < assets[j].Page.AbsoluteString()
		}
		return assets[i].Name < assets[j].Name
	})
	sort.Slice(links, func(i, j int) bool {
		if links[i].Page.AbsoluteString() != links[j].Page.AbsoluteString() {
			return links[i].Page.AbsoluteString() < links[j].Page.AbsoluteString()
		}
		return links[i].Target.AbsoluteString() < links[j].Target.AbsoluteString()
	})

	return links, indexing, assets, coverage
}
