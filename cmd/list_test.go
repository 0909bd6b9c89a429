package cmd

import (
	"testing"

	"github.com/moamenhredeen/oasdoc/internal/output"
)

func TestFilterOperations(t *testing.T) {
	rows := []output.OperationRow{
		{ID: "operation/listPets", Path: "/pets", OperationID: "listPets", Tag: "Pets"},
		{ID: "tag/store/paths/~1orders/get", Path: "/orders", Tag: "store"},
		{ID: "operation/health", Path: "/health", OperationID: "health"},
	}

	tests := []struct {
		name   string
		filter string
		tags   []string
		want   []string
	}{
		{"no filter", "", nil, []string{"operation/listPets", "tag/store/paths/~1orders/get", "operation/health"}},
		{"path", "/pe", nil, []string{"operation/listPets"}},
		{"operation id", "heal", nil, []string{"operation/health"}},
		{"tag display name", "", []string{"pets"}, []string{"operation/listPets"}},
		{"tag id", "", []string{"store"}, []string{"tag/store/paths/~1orders/get"}},
		{"both", "/orders", []string{"pets"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterOperations(rows, tt.filter, tt.tags)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d operations, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("operation %d = %s, want %s", i, r.ID, tt.want[i])
				}
			}
		})
	}
}

func TestSourceFor(t *testing.T) {
	src, err := sourceFor("https://example.com/openapi.yaml")
	if err != nil || src.URL != "https://example.com/openapi.yaml" {
		t.Errorf("expected URL source, got %+v (%v)", src, err)
	}
	src, err = sourceFor("openapi.yaml")
	if err != nil || src.File != "openapi.yaml" {
		t.Errorf("expected file source, got %+v (%v)", src, err)
	}
}

func TestOptionKey(t *testing.T) {
	if got := optionKey("sort-tags-alphabetically"); got != "options.sort_tags_alphabetically" {
		t.Errorf("optionKey = %s", got)
	}
}
