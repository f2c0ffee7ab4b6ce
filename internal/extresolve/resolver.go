// Package extresolve implements the External Resolver contract: the
// interface a same-process or out-of-process collaborator must satisfy to
// serve references to documentation outside the current catalog, plus two
// concrete implementations (an in-process registry and a child-process
// protocol resolver).
package extresolve

import "context"

// AssetRequest identifies the asset an external resolver is being asked for.
type AssetRequest struct {
	AssetName        string
	BundleIdentifier string
}

// ResolvedInformation is what a resolver returns for a successfully
// resolved topic or symbol reference.
type ResolvedInformation struct {
	Kind                 string
	URL                  string
	Title                string
	Abstract             string
	Language             string
	AvailableLanguages   []string
	Platforms            []string
	DeclarationFragments []string
	Variants             []string
}

// DataAsset is the payload returned for a resolved asset request. Asset
// storage and variant selection are out of scope for this module; DataAsset
// here is only the wire shape an external resolver returns.
type DataAsset struct {
	Variants map[string]string // display-trait key -> opaque location string
}

// Resolver is the contract every external resolver — in-process or
// out-of-process — implements. Dispatch is dynamic: resolvers are
// registered at run time, keyed by catalog id, and the link resolver calls
// whichever one is registered for a reference's effective catalog id.
type Resolver interface {
	ResolveTopic(ctx context.Context, url string) (ResolvedInformation, error)
	ResolveSymbol(ctx context.Context, preciseID string) (ResolvedInformation, error)
	ResolveAsset(ctx context.Context, req AssetRequest) (DataAsset, error)
}

// RegistryResolver hosts any number of same-process catalogs and dispatches
// by catalog id, used when one process indexes several catalogs that
// reference each other directly (no child process involved).
type RegistryResolver struct {
	byCatalogID map[string]Resolver
}

// NewRegistryResolver builds an empty registry.
func NewRegistryResolver() *RegistryResolver {
	return &RegistryResolver{byCatalogID: make(map[string]Resolver)}
}

// Register associates catalogID with resolver. A later call for the same
// id replaces the earlier registration.
func (r *RegistryResolver) Register(catalogID string, resolver Resolver) {
	r.byCatalogID[catalogID] = resolver
}

// Lookup returns the resolver registered for catalogID, if any.
func (r *RegistryResolver) Lookup(catalogID string) (Resolver, bool) {
	res, ok := r.byCatalogID[catalogID]
	return res, ok
}
