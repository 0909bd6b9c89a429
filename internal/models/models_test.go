package models

import (
	"testing"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPetstore(t *testing.T) *parser.Parser {
	t.Helper()
	p, err := parser.ParseFile("../../testdata/petstore.yaml")
	require.NoError(t, err)
	return p
}

func operation(t *testing.T, p *parser.Parser, path, method string, parent *GroupModel, opts config.Options) *OperationModel {
	t.Helper()
	for _, ref := range p.Operations() {
		if ref.Path == path && ref.Method == method {
			return NewOperationModel(p, OperationSpec{
				Ref:            ref.Pointer(),
				HTTPVerb:       ref.Method,
				Operation:      ref.Operation,
				PathParameters: ref.PathItem.Parameters,
				PathServers:    ref.PathItem.Servers,
			}, parent, &opts)
		}
	}
	t.Fatalf("operation %s %s not found", method, path)
	return nil
}

func TestOperationIdentity(t *testing.T) {
	p := loadPetstore(t)
	tag := NewGroupModel(TypeTag, "tag/pet", "Pets", "", nil)

	op := operation(t, p, "/pets", "get", tag, config.Defaults())
	assert.Equal(t, "operation/listPets", op.ID)
	assert.Equal(t, "List all pets", op.Name)
	assert.Equal(t, "/pets", op.Path)
	assert.Equal(t, "/paths/~1pets/get", op.Ref)
	assert.Equal(t, "GET", op.Verb())
	assert.Same(t, tag, op.Parent)

	// no operationId: parent id + ref
	op = operation(t, p, "/pets/{petId}", "get", tag, config.Defaults())
	assert.Equal(t, "tag/pet/paths/~1pets~1{petId}/get", op.ID)
	assert.True(t, op.Deprecated)

	op = operation(t, p, "/pets/{petId}", "get", nil, config.Defaults())
	assert.Equal(t, "/paths/~1pets~1{petId}/get", op.ID)
}

func TestOperationParametersMerged(t *testing.T) {
	p := loadPetstore(t)

	op := operation(t, p, "/pets", "get", nil, config.Defaults())
	require.Len(t, op.Parameters, 2)
	assert.Equal(t, "X-Request-ID", op.Parameters[0].Name)
	assert.Equal(t, "limit", op.Parameters[1].Name)
	assert.True(t, op.Parameters[1].Required)
	assert.Equal(t, "How many items to return at one time", op.Parameters[1].Description)
	assert.Equal(t, "form", op.Parameters[1].Style)
	assert.True(t, op.Parameters[1].Explode)
	assert.Equal(t, []string{"<= 100"}, op.Parameters[1].Schema.Constraints)

	opts := config.Defaults()
	opts.RequiredPropsFirst = true
	op = operation(t, p, "/pets", "get", nil, opts)
	assert.Equal(t, "limit", op.Parameters[0].Name)

	groups := op.ParameterGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "query", groups[0].Place)
	assert.Equal(t, "header", groups[1].Place)
}

func TestOperationResponses(t *testing.T) {
	p := loadPetstore(t)

	op := operation(t, p, "/pets", "get", nil, config.Defaults())
	require.Len(t, op.Responses, 2)
	assert.Equal(t, "200", op.Responses[0].Code)
	assert.Equal(t, "success", op.Responses[0].Type)
	assert.Equal(t, "A paged array of pets", op.Responses[0].Summary)
	require.Len(t, op.Responses[0].Headers, 1)
	assert.Equal(t, "x-next", op.Responses[0].Headers[0].Name)
	assert.Equal(t, "default", op.Responses[1].Code)
	assert.Equal(t, "error", op.Responses[1].Type)
	assert.False(t, op.Responses[0].Expanded)

	opts := config.Defaults()
	opts.ExpandResponses = map[string]bool{"200": true}
	op = operation(t, p, "/pets", "get", nil, opts)
	assert.True(t, op.Responses[0].Expanded)
	assert.False(t, op.Responses[1].Expanded)

	op = operation(t, p, "/pets", "post", nil, config.Defaults())
	require.Len(t, op.Responses, 2)
	assert.Equal(t, "4XX", op.Responses[1].Code)
	assert.Equal(t, "error", op.Responses[1].Type)
}

func TestOperationResponsesOrder(t *testing.T) {
	doc := []byte(`openapi: 3.0.3
info:
  title: Orders
  version: "1"
paths:
  /orders:
    get:
      operationId: listOrders
      responses:
        default:
          description: Unexpected error
        "404":
          description: Not found
        "4XX":
          description: Client error
        "200":
          description: OK
`)
	p, err := parser.ParseBytes(doc, "")
	require.NoError(t, err)

	op := operation(t, p, "/orders", "get", nil, config.Defaults())
	var codes []string
	for _, r := range op.Responses {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []string{"200", "404", "default", "4XX"}, codes)
	assert.Equal(t, "error", op.Responses[2].Type)
}

func TestOperationServers(t *testing.T) {
	p := loadPetstore(t)

	op := operation(t, p, "/pets", "get", nil, config.Defaults())
	require.Len(t, op.Servers, 2)
	assert.Equal(t, "//petstore.example.com/v1", op.Servers[0].URL)
	assert.Equal(t, "Default server", op.Servers[0].Description)
	assert.Equal(t, "https://eu.example.com:8443/api", op.Servers[1].URL)

	op = operation(t, p, "/pets", "post", nil, config.Defaults())
	require.Len(t, op.Servers, 1)
	assert.Equal(t, "/v2", op.Servers[0].URL)
}

func TestOperationSecurity(t *testing.T) {
	p := loadPetstore(t)

	op := operation(t, p, "/pets", "get", nil, config.Defaults())
	require.Len(t, op.Security, 1)
	require.Len(t, op.Security[0].Schemes, 1)
	assert.Equal(t, "api_key", op.Security[0].Schemes[0].ID)
	assert.Equal(t, "section/Authentication/api_key", op.Security[0].Schemes[0].SectionID)

	op = operation(t, p, "/pets", "post", nil, config.Defaults())
	require.Len(t, op.Security, 1)
	scheme := op.Security[0].Schemes[0]
	assert.Equal(t, "petstore_auth", scheme.ID)
	assert.Equal(t, []string{"write:pets", "read:pets"}, scheme.Scopes)
	require.Len(t, scheme.Flows, 1)
	assert.Equal(t, "implicit", scheme.Flows[0].Type)
}

func TestOperationCodeSamplesAndCallbacks(t *testing.T) {
	p := loadPetstore(t)

	op := operation(t, p, "/pets", "post", nil, config.Defaults())
	require.Len(t, op.CodeSamples, 2)
	assert.True(t, op.CodeSamples[0].IsPayload())
	assert.Equal(t, "curl", op.CodeSamples[1].Lang)

	opts := config.Defaults()
	opts.PayloadSampleIdx = 5
	op = operation(t, p, "/pets", "post", nil, opts)
	require.Len(t, op.CodeSamples, 2)
	assert.True(t, op.CodeSamples[1].IsPayload())

	require.Len(t, op.Callbacks, 1)
	cb := op.Callbacks[0]
	assert.Equal(t, "onCreated", cb.Name)
	require.Len(t, cb.Operations, 1)
	cbOp := cb.Operations[0]
	assert.True(t, cbOp.IsCallback)
	assert.Equal(t, "{$request.body#/callbackUrl}", cbOp.Path)
	assert.Empty(t, cbOp.Security)
	sample, ok := cbOp.PayloadSample()
	require.True(t, ok)
	assert.True(t, sample.RequestBodyContent.HasSample())
}

func TestRequestBodyModel(t *testing.T) {
	p := loadPetstore(t)

	op := operation(t, p, "/pets", "post", nil, config.Defaults())
	require.NotNil(t, op.RequestBody)
	assert.True(t, op.RequestBody.Required)
	mt := op.RequestBody.Content.Active()
	require.NotNil(t, mt)
	assert.Equal(t, "application/json", mt.Name)
	assert.True(t, mt.IsJSONLike())
	require.Len(t, mt.Examples, 1)

	var names []string
	for _, f := range mt.Schema.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "name", "tag", "secret", "parent", "callbackUrl"}, names)
}

func TestMediaContentExamples(t *testing.T) {
	p := loadPetstore(t)

	op := operation(t, p, "/pets/{petId}", "get", nil, config.Defaults())
	content := op.Responses[0].Content
	require.Len(t, content.MediaTypes, 2)
	assert.Equal(t, "text/plain", content.MediaTypes[1].Name)
	assert.True(t, content.MediaTypes[1].IsTextPlainLike())
	require.Len(t, content.MediaTypes[1].Examples, 1)
	assert.Equal(t, "Rex the dog", content.MediaTypes[1].Examples[0].Value)

	content.Activate(1)
	assert.Equal(t, "text/plain", content.Active().Name)
	content.Activate(9)
	assert.Equal(t, "text/plain", content.Active().Name)
}

func TestSchemaModel(t *testing.T) {
	p := loadPetstore(t)
	opts := config.Defaults()

	pets, _ := p.Model().Components.Schemas.Get("Pets")
	m := NewSchemaModel(pets, "#/components/schemas/Pets", &opts)
	assert.Equal(t, "array", m.Type)
	assert.Equal(t, "Array of ", m.TypePrefix)
	assert.Equal(t, "objects", m.DisplayType)
	assert.Equal(t, []string{"[ 1 .. 100 ] items"}, m.Constraints)
	require.NotNil(t, m.Items)
	assert.Equal(t, "Pet", m.Items.Title)

	fields := m.Items.Fields
	require.Len(t, fields, 5)
	assert.True(t, fields[0].Required)
	assert.True(t, fields[0].Schema.ReadOnly)
	assert.Equal(t, []string{"[ 1 .. 64 ] characters"}, fields[1].Schema.Constraints)
	assert.Equal(t, []any{"dog", "cat", "bird"}, fields[2].Schema.Enum)
	assert.True(t, fields[3].Schema.WriteOnly)
	assert.True(t, fields[4].Schema.IsCircular)

	opts.SortPropsAlphabetically = true
	m = NewSchemaModel(pets, "", &opts)
	assert.Equal(t, "id", m.Items.Fields[0].Name)
	assert.Equal(t, "tag", m.Items.Fields[4].Name)

	opts.RequiredPropsFirst = true
	m = NewSchemaModel(pets, "", &opts)
	assert.Equal(t, "id", m.Items.Fields[0].Name)
	assert.Equal(t, "name", m.Items.Fields[1].Name)
	assert.Equal(t, "parent", m.Items.Fields[2].Name)
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code           string
		defaultAsError bool
		valid          bool
		want           string
	}{
		{"default", false, true, "success"},
		{"default", true, true, "error"},
		{"100", false, true, "info"},
		{"204", false, true, "success"},
		{"302", false, true, "redirect"},
		{"4XX", false, true, "error"},
		{"5xx", false, true, "error"},
		{"600", false, false, ""},
		{"x-extra", false, false, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsStatusCode(tt.code), tt.code)
		assert.Equal(t, tt.want, StatusCodeType(tt.code, tt.defaultAsError), tt.code)
	}
}

func TestAPIInfo(t *testing.T) {
	p := loadPetstore(t)

	info := NewAPIInfo(p, "spec.json")
	assert.Equal(t, "Swagger Petstore", info.Title)
	assert.Equal(t, "This is a sample server Petstore server.\n\n", info.Description)
	assert.Equal(t, "spec.json", info.DownloadLink)
	assert.Equal(t, DefaultDownloadFileName, info.DownloadFileName)
	require.NotNil(t, info.License)
	assert.Equal(t, "MIT", info.License.Name)
}

func TestMenuItemState(t *testing.T) {
	group := NewGroupModel(TypeGroup, "group/Core", "Core", "", nil)
	tag := NewGroupModel(TypeTag, "tag/users", "users", "", group)

	assert.True(t, group.IsExpanded())
	group.Collapse()
	assert.True(t, group.IsExpanded())

	tag.Activate()
	tag.Expand()
	assert.True(t, tag.IsActive())
	assert.True(t, tag.IsExpanded())
	tag.Deactivate()
	tag.Collapse()
	assert.False(t, tag.IsActive())
	assert.False(t, tag.IsExpanded())

	_, _, _, ok := group.SearchEntry()
	assert.False(t, ok)
	title, _, id, ok := tag.SearchEntry()
	assert.True(t, ok)
	assert.Equal(t, "users", title)
	assert.Equal(t, "tag/users", id)
}
