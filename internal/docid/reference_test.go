package docid

import "testing"

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    URL
		wantErr bool
	}{
		{
			name: "bare path",
			raw:  "MyKit/MyClass/bar()",
			want: URL{Path: "MyKit/MyClass/bar()"},
		},
		{
			name: "full doc url with fragment",
			raw:  "doc://com.example.MyKit/documentation/MyKit/MyClass#discussion",
			want: URL{
				CatalogID: "com.example.MyKit",
				Path:      "documentation/MyKit/MyClass",
				Fragment:  "discussion",
			},
		},
		{
			name:    "unsupported scheme",
			raw:     "https://example.com/foo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseURL(%q): expected error, got none", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL(%q): unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseURL(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestReferenceResolveIsImmutable(t *testing.T) {
	unresolved := NewUnresolved("MyClass/bar()", URL{Path: "MyClass/bar()"}, true)
	id := New()
	resolved := unresolved.Resolve(URL{CatalogID: "cat", Path: "documentation/MyKit/MyClass/bar()"}, id, []string{"swift"}, "swift")

	if unresolved.State() != Unresolved {
		t.Fatalf("original reference mutated: state = %v", unresolved.State())
	}
	if resolved.State() != ResolvedSuccess {
		t.Fatalf("resolved.State() = %v, want ResolvedSuccess", resolved.State())
	}
	if _, ok := resolved.SourceLanguages()["swift"]; !ok {
		t.Fatalf("resolved source languages missing default language: %v", resolved.SourceLanguages())
	}
}

func TestReferenceFailCarriesCandidates(t *testing.T) {
	unresolved := NewUnresolved("Thing", URL{Path: "Thing"}, false)
	candidates := []FailureCandidate{
		{URL: URL{Path: "documentation/Thing"}, Reason: "not found"},
		{URL: URL{Path: "articles/Thing"}, Reason: "not found"},
	}
	failed := unresolved.Fail(candidates)
	if failed.State() != ResolvedFailure {
		t.Fatalf("failed.State() = %v, want ResolvedFailure", failed.State())
	}
	if len(failed.FailedCandidates()) != 2 {
		t.Fatalf("len(FailedCandidates()) = %d, want 2", len(failed.FailedCandidates()))
	}
}
