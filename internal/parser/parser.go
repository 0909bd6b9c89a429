package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// ErrUnsupportedVersion is returned for documents that are not OpenAPI 3.x.
var ErrUnsupportedVersion = errors.New("unsupported specification version")

// DefaultFetchTimeout bounds a single specification download.
const DefaultFetchTimeout = 30 * time.Second

// Parser handles parsing OpenAPI specification documents
type Parser struct {
	document libopenapi.Document
	model    *v3.Document
	raw      []byte
	warnings error

	// SpecURL is the location the document was loaded from. Relative server
	// URLs are resolved against it.
	SpecURL string
}

// OperationRef points at a single operation of a path item.
type OperationRef struct {
	Path      string
	Method    string // lower-case HTTP verb
	PathItem  *v3.PathItem
	Operation *v3.Operation
	IsWebhook bool
}

// Pointer returns the JSON pointer of the operation inside the document.
func (r OperationRef) Pointer() string {
	if r.IsWebhook {
		return CompilePointer("webhooks", r.Path, r.Method)
	}
	return CompilePointer("paths", r.Path, r.Method)
}

// ParseFile parses an OpenAPI specification file and returns a Parser instance
func ParseFile(filePath string) (*Parser, error) {
	specBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI file: %w", err)
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}

	return parse(specBytes, "", &datamodel.DocumentConfiguration{
		BasePath: filepath.Dir(abs),
	})
}

// ParseURL downloads and parses an OpenAPI specification.
func ParseURL(ctx context.Context, client *http.Client, specURL string) (*Parser, error) {
	u, err := url.Parse(specURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spec URL: %w", err)
	}

	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, specURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: unexpected status %d", resp.StatusCode)
	}

	specBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	return parse(specBytes, specURL, &datamodel.DocumentConfiguration{
		BaseURL: u,
	})
}

// ParseBytes parses an in-memory OpenAPI document. specURL may be empty.
func ParseBytes(specBytes []byte, specURL string) (*Parser, error) {
	return parse(specBytes, specURL, nil)
}

// IsURL reports whether the location should be fetched over HTTP.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func parse(specBytes []byte, specURL string, cfg *datamodel.DocumentConfiguration) (*Parser, error) {
	var (
		document libopenapi.Document
		err      error
	)
	if cfg != nil {
		document, err = libopenapi.NewDocumentWithConfiguration(specBytes, cfg)
	} else {
		document, err = libopenapi.NewDocument(specBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	version := document.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	model, errs := document.BuildV3Model()
	if model == nil {
		return nil, fmt.Errorf("failed to build v3 model: %v", errs)
	}

	p := &Parser{
		document: document,
		model:    &model.Model,
		raw:      specBytes,
		SpecURL:  specURL,
	}
	// circular references are reported here but still leave a usable model
	if errs != nil {
		p.warnings = fmt.Errorf("model built with warnings: %v", errs)
	}

	return p, nil
}

// Model returns the high level OpenAPI 3 document.
func (p *Parser) Model() *v3.Document {
	return p.model
}

// Raw returns the bytes the document was parsed from.
func (p *Parser) Raw() []byte {
	return p.raw
}

// Version returns the openapi version string of the document.
func (p *Parser) Version() string {
	return p.document.GetVersion()
}

// Warnings returns non-fatal problems found while building the model.
func (p *Parser) Warnings() error {
	return p.warnings
}

// Operations lists every operation in document path order.
func (p *Parser) Operations() []OperationRef {
	var refs []OperationRef

	paths := p.model.Paths
	if paths == nil || paths.PathItems == nil {
		return refs
	}

	// Iterate over ordered map
	for pair := paths.PathItems.First(); pair != nil; pair = pair.Next() {
		pathItem := pair.Value()
		if pathItem == nil {
			continue
		}
		refs = append(refs, PathItemOperations(pair.Key(), pathItem)...)
	}

	return refs
}

// Webhooks lists the operations of the webhooks section, available from
// OpenAPI 3.1 on.
func (p *Parser) Webhooks() []OperationRef {
	var refs []OperationRef
	if p.model.Webhooks == nil {
		return refs
	}
	for pair := p.model.Webhooks.First(); pair != nil; pair = pair.Next() {
		if pair.Value() == nil {
			continue
		}
		for _, ref := range PathItemOperations(pair.Key(), pair.Value()) {
			ref.IsWebhook = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// PathItemOperations lists the operations of a single path item.
func PathItemOperations(path string, item *v3.PathItem) []OperationRef {
	methods := []struct {
		name string
		op   *v3.Operation
	}{
		{"get", item.Get},
		{"put", item.Put},
		{"post", item.Post},
		{"delete", item.Delete},
		{"options", item.Options},
		{"head", item.Head},
		{"patch", item.Patch},
		{"trace", item.Trace},
	}

	var refs []OperationRef
	for _, m := range methods {
		if m.op == nil {
			continue
		}
		refs = append(refs, OperationRef{
			Path:      path,
			Method:    m.name,
			PathItem:  item,
			Operation: m.op,
		})
	}
	return refs
}
