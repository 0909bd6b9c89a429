package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/moamenhredeen/oasdoc/internal/models"
)

// Format represents the output format type
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// OperationRow is an operation as listed in menu order.
type OperationRow struct {
	ID          string `json:"id"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	OperationID string `json:"operationId,omitempty"`
	Name        string `json:"name"`
	Tag         string `json:"tag,omitempty"`
	Deprecated  bool   `json:"deprecated"`
	Webhook     bool   `json:"webhook"`
}

// SearchRow is a search hit.
type SearchRow struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  models.ItemType `json:"type"`
	Score float64         `json:"score"`
}

// Operations returns the operations among items, in order. items is
// expected to be the flattened menu.
func Operations(items []models.ContentItem) []OperationRow {
	var rows []OperationRow
	for _, item := range items {
		op, ok := item.(*models.OperationModel)
		if !ok {
			continue
		}
		row := OperationRow{
			ID:          op.ID,
			Method:      op.Verb(),
			Path:        op.Path,
			OperationID: op.OperationID,
			Name:        op.Name,
			Deprecated:  op.Deprecated,
			Webhook:     op.IsWebhook,
		}
		if op.Parent != nil {
			row.Tag = op.Parent.Name
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportOperations exports operations to the specified format
func ExportOperations(rows []OperationRow, format Format, filePath string) error {
	w, closer, err := getWriter(filePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	return writeOperations(w, rows, format)
}

// ExportSearchResults exports search hits to the specified format
func ExportSearchResults(rows []SearchRow, format Format, filePath string) error {
	w, closer, err := getWriter(filePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	return writeSearchResults(w, rows, format)
}

// getWriter returns an io.Writer for output (stdout or file)
func getWriter(filePath string) (io.Writer, io.Closer, error) {
	if filePath == "" {
		return os.Stdout, nil, nil
	}

	f, err := os.Create(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOperations(w io.Writer, rows []OperationRow, format Format) error {
	switch format {
	case FormatJSON:
		if rows == nil {
			rows = []OperationRow{}
		}
		return writeJSON(w, rows)
	case FormatCSV:
		return writeOperationsCSV(w, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeOperationsCSV exports operations as CSV
func writeOperationsCSV(w io.Writer, rows []OperationRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"id", "method", "path", "operation_id", "name", "tag", "deprecated", "webhook",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			r.ID,
			r.Method,
			r.Path,
			r.OperationID,
			r.Name,
			r.Tag,
			strconv.FormatBool(r.Deprecated),
			strconv.FormatBool(r.Webhook),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeSearchResults(w io.Writer, rows []SearchRow, format Format) error {
	switch format {
	case FormatJSON:
		if rows == nil {
			rows = []SearchRow{}
		}
		return writeJSON(w, rows)
	case FormatCSV:
		return writeSearchCSV(w, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeSearchCSV exports search hits as CSV
func writeSearchCSV(w io.Writer, rows []SearchRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"id", "name", "type", "score"}); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{r.ID, r.Name, string(r.Type), fmt.Sprintf("%.4f", r.Score)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseFormat parses a string into a Format, returning error if invalid
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("invalid format '%s': must be 'json' or 'csv'", s)
	}
}
