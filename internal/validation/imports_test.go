package validation

import (
	"testing"
)

func TestCheckFlagsForbiddenImports(t *testing.T) {
	graph := ImportGraph{
		"hazcat/pkg/domain":             {"fmt", "hazcat/internal/refdata"},
		"hazcat/internal/threshold":     {"hazcat/internal/dcf", "hazcat/internal/infra/persistence/sqlite"},
		"hazcat/internal/core":          {"hazcat/internal/infra/persistence/memory", "hazcat/internal/blob"},
		"hazcat/cmd/hazcat":             {"hazcat/internal/infra/blob/s3", "hazcat/internal/core"},
		"hazcat/internal/blob":          {"hazcat/internal/infra/blob/fs"},
		"hazcat/internal/infra/blob/fs": {"hazcat/internal/blob/core"},
		"hazcat/internal/config":        {"hazcat/cmd/hazcat"},
	}
	got := Check(graph, Rules)
	want := []Error{
		{Package: "hazcat/cmd/hazcat", Import: "hazcat/internal/infra/blob/s3", Rule: "blob backends are reached through internal/blob"},
		{Package: "hazcat/internal/config", Import: "hazcat/cmd/hazcat", Rule: "libraries do not import commands"},
		{Package: "hazcat/internal/threshold", Import: "hazcat/internal/infra/persistence/sqlite", Rule: "calculation packages stay free of storage and transport"},
		{Package: "hazcat/internal/threshold", Import: "hazcat/internal/infra/persistence/sqlite", Rule: "persistence backends are opened by core"},
		{Package: "hazcat/pkg/domain", Import: "hazcat/internal/refdata", Rule: "domain model is a leaf"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d violations, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("violation %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMatchesUsesPathBoundaries(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"hazcat/internal/core", true},
		{"hazcat/internal/core/sub", true},
		{"hazcat/internal/corex", false},
		{"hazcat/internal", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			if got := matches(tc.path, []string{"hazcat/internal/core"}); got != tc.want {
				t.Fatalf("matches(%q) = %v", tc.path, got)
			}
		})
	}
}

func TestModuleLayering(t *testing.T) {
	if testing.Short() {
		t.Skip("loads every package of the module")
	}
	graph, err := LoadImportGraph("../..", ModulePath+"/...")
	if err != nil {
		t.Fatalf("load import graph: %v", err)
	}
	if _, ok := graph[under("internal/core")]; !ok {
		t.Fatalf("expected internal/core in the import graph")
	}
	for _, v := range Check(graph, Rules) {
		t.Errorf("layering violation: %s", v)
	}
}

func TestBasePathFoldsTestVariants(t *testing.T) {
	for _, path := range []string{"hazcat/internal/core", "hazcat/internal/core.test", "hazcat/internal/core_test"} {
		if got := basePath(path); got != "hazcat/internal/core" {
			t.Errorf("basePath(%q) = %q", path, got)
		}
	}
}
