package convert

// This file indexes the six end-to-end scenarios exercised across the
// module, so a reader auditing coverage doesn't have to hunt for them:
//
//  1. Single module, one overload pair -> internal/pathhierarchy/lookup_test.go
//     (TestLookupCollisionOnBareName, TestLookupResolvesWithHashDisambiguator).
//  2. Documentation extension matching -> internal/registrar/registrar_test.go
//     (TestMatchExtensionsAttachesContentToResolvedSymbol,
//     TestMatchExtensionsReportsUnmatchedLink,
//     TestMatchExtensionsReportsSecondMatchAsAmbiguous).
//  3. Cross-catalog reference via external resolver -> this package,
//     TestDriverEmitsExternalRenderNodeWithoutLocalPage, plus
//     internal/extresolve/outofprocess_test.go for the protocol itself.
//  4. Automatic then manual curation -> internal/curator/curator_test.go
//     (TestAutomaticThenManualCurationPrefersManual).
//  5. Empty extended-symbol pruning -> internal/curator/curator_test.go
//     (TestPruneExtendedSymbolsRemovesEmptyContainer).
//  6. Cancellation before conversion starts -> this package,
//     TestDriverCancellationSkipsSerialEmission.
