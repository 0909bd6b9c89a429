package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/menu"
	"github.com/moamenhredeen/oasdoc/internal/parser"
)

func petstoreRows(t *testing.T) []OperationRow {
	t.Helper()
	p, err := parser.ParseFile("../../testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("Failed to parse spec: %v", err)
	}
	opts := config.Defaults()
	store := menu.NewStore(menu.BuildStructure(p, &opts, nil))
	return Operations(store.FlatItems())
}

func TestOperations(t *testing.T) {
	rows := petstoreRows(t)

	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	want := []string{
		"operation/listPets",
		"operation/createPets",
		"tag/pet/paths/~1pets~1{petId}/get",
		"tag/store/paths/~1pets~1{petId}/get",
		"operation/health",
	}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("Unexpected operations %v", ids)
	}

	first := rows[0]
	if first.Method != "GET" || first.Path != "/pets" || first.Tag != "Pets" || first.Name != "List all pets" {
		t.Errorf("Unexpected row %+v", first)
	}
	if !rows[2].Deprecated {
		t.Error("Expected deprecated operation")
	}
	if rows[4].Tag != "" {
		t.Errorf("Expected untagged operation, got tag %q", rows[4].Tag)
	}
}

func TestWriteOperationsCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []OperationRow{{ID: "operation/listPets", Method: "GET", Path: "/pets", Name: "List, all pets"}}
	if err := writeOperations(&buf, rows, FormatCSV); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "id,method,path,operation_id,name,tag,deprecated,webhook" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if lines[1] != `operation/listPets,GET,/pets,,"List, all pets",,false,false` {
		t.Errorf("Unexpected row %q", lines[1])
	}
}

func TestWriteOperationsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOperations(&buf, nil, FormatJSON); err != nil {
		t.Fatalf("Failed to write JSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Expected empty list, got %s", buf.String())
	}
}

func TestExportSearchResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.json")
	rows := []SearchRow{{ID: "tag/pet", Name: "Pets", Type: "tag", Score: 1.5}}
	if err := ExportSearchResults(rows, FormatJSON, path); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	var got []SearchRow
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(got) != 1 || got[0] != rows[0] {
		t.Errorf("Unexpected rows %+v", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
