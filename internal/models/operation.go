package models

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/parser"
	"github.com/moamenhredeen/oasdoc/internal/servers"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// ParamPlaces is the order parameter groups are listed in.
var ParamPlaces = []string{"path", "query", "cookie", "header"}

// CodeSample is an entry of x-codeSamples. The request payload sample has
// lang "payload" and carries the request body content instead of source.
type CodeSample struct {
	Lang               string             `yaml:"lang" json:"lang"`
	Label              string             `yaml:"label" json:"label,omitempty"`
	Source             string             `yaml:"source" json:"source"`
	RequestBodyContent *MediaContentModel `yaml:"-" json:"-"`
}

// IsPayload reports whether the sample is the generated request payload.
func (c CodeSample) IsPayload() bool {
	return c.Lang == "payload"
}

// OperationSpec locates an operation inside the document.
type OperationSpec struct {
	// Ref is the JSON pointer of the operation, e.g. /paths/~1pets/get.
	Ref            string
	HTTPVerb       string
	Operation      *v3.Operation
	PathParameters []*v3.Parameter
	PathServers    []*v3.Server
	IsCallback     bool
	IsWebhook      bool
}

// CallbackModel is a named callback with the operations of its expressions.
type CallbackModel struct {
	Name       string
	Operations []*OperationModel
}

// ParameterGroup holds the parameters of one location.
type ParameterGroup struct {
	Place      string
	Parameters []*FieldModel
}

// OperationModel is an operation ready to be rendered.
type OperationModel struct {
	MenuItem

	Ref         string
	OperationID string
	HTTPVerb    string
	Deprecated  bool
	IsCallback  bool
	IsWebhook   bool
	Path        string

	RequestBody *RequestBodyModel
	Parameters  []*FieldModel
	Responses   []*ResponseModel
	Servers     []servers.Server
	Security    []*SecurityRequirementModel
	CodeSamples []CodeSample
	Callbacks   []*CallbackModel
	Extensions  map[string]any
}

// NewOperationModel builds the view of an operation. parent is the tag the
// operation is listed under, nil for untagged operations and callbacks.
func NewOperationModel(p *parser.Parser, spec OperationSpec, parent *GroupModel, opts *config.Options) *OperationModel {
	op := spec.Operation
	doc := p.Model()

	m := &OperationModel{
		MenuItem: MenuItem{
			Name:         OperationSummary(op, parser.PointerBaseName(spec.Ref, 2)),
			Description:  op.Description,
			Type:         TypeOperation,
			Parent:       parent,
			ExternalDocs: newExternalDocs(op.ExternalDocs),
		},
		Ref:         spec.Ref,
		OperationID: op.OperationId,
		HTTPVerb:    spec.HTTPVerb,
		Deprecated:  flag(op.Deprecated),
		IsCallback:  spec.IsCallback,
		IsWebhook:   spec.IsWebhook,
		Path:        parser.PointerBaseName(spec.Ref, 2),
	}

	switch {
	case op.OperationId != "":
		m.ID = "operation/" + op.OperationId
	case parent != nil:
		m.ID = parent.ID + spec.Ref
	default:
		m.ID = spec.Ref
	}

	m.RequestBody = NewRequestBodyModel(op.RequestBody, opts)

	for _, param := range MergeParams(spec.PathParameters, op.Parameters) {
		m.Parameters = append(m.Parameters, NewParameterField(param, spec.Ref, opts))
	}
	if opts.RequiredPropsFirst {
		SortByRequired(m.Parameters)
	}

	m.Responses = buildResponses(op.Responses, opts)

	if spec.IsCallback {
		// callbacks do not inherit the document level servers or security
		m.Servers = servers.Normalize("", servers.FromSpec(firstServers(op.Servers, spec.PathServers)))
		m.Security = securityModels(op.Security, doc)
	} else {
		m.Servers = servers.Normalize(p.SpecURL, servers.FromSpec(firstServers(op.Servers, spec.PathServers, doc.Servers)))
		security := op.Security
		if security == nil {
			security = doc.Security
		}
		m.Security = securityModels(security, doc)
	}

	m.CodeSamples = codeSamples(op, m.RequestBody, spec.IsCallback, opts)
	m.Callbacks = buildCallbacks(p, spec.Ref, op, opts)

	if opts.ShowExtensions {
		m.Extensions = extensionValues(op.Extensions)
	}

	return m
}

// OperationSummary returns the display name of an operation.
func OperationSummary(op *v3.Operation, path string) string {
	switch {
	case op.Summary != "":
		return op.Summary
	case op.OperationId != "":
		return op.OperationId
	case op.Description != "":
		return truncate(op.Description, 50)
	case path != "":
		return path
	}
	return "<no summary>"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// buildResponses keeps status codes and default, dropping other keys.
// Plain numeric codes come first in ascending order, then ranges and
// default in document order.
func buildResponses(responses *v3.Responses, opts *config.Options) []*ResponseModel {
	if responses == nil {
		return nil
	}

	type entry struct {
		code string
		info *v3.Response
		line int
	}
	var entries []entry
	hasSuccess := false
	lines := responseKeyLines(responses)
	lineOf := func(code string) int {
		if line, ok := lines[code]; ok && line > 0 {
			return line
		}
		return math.MaxInt
	}

	if responses.Codes != nil {
		for pair := responses.Codes.First(); pair != nil; pair = pair.Next() {
			code := pair.Key()
			if !IsStatusCode(code) {
				continue
			}
			if StatusCodeType(code, false) == "success" {
				hasSuccess = true
			}
			entries = append(entries, entry{code, pair.Value(), lineOf(code)})
		}
	}
	if responses.Default != nil {
		entries = append(entries, entry{"default", responses.Default, lineOf("default")})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ci, iNum := numericCode(entries[i].code)
		cj, jNum := numericCode(entries[j].code)
		switch {
		case iNum && jNum:
			return ci < cj
		case iNum != jNum:
			return iNum
		}
		return entries[i].line < entries[j].line
	})

	out := make([]*ResponseModel, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewResponseModel(e.code, hasSuccess, e.info, opts))
	}
	return out
}

// responseKeyLines maps response keys to the document line they appear on.
func responseKeyLines(responses *v3.Responses) map[string]int {
	lines := map[string]int{}
	low := responses.GoLow()
	if low == nil {
		return lines
	}
	if low.Codes != nil {
		for pair := low.Codes.First(); pair != nil; pair = pair.Next() {
			if key := pair.Key(); key.KeyNode != nil {
				lines[key.Value] = key.KeyNode.Line
			}
		}
	}
	if low.Default.KeyNode != nil {
		lines["default"] = low.Default.KeyNode.Line
	}
	return lines
}

func numericCode(code string) (int, bool) {
	n, err := strconv.Atoi(code)
	return n, err == nil
}

func firstServers(lists ...[]*v3.Server) []*v3.Server {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

func securityModels(reqs []*base.SecurityRequirement, doc *v3.Document) []*SecurityRequirementModel {
	out := make([]*SecurityRequirementModel, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, NewSecurityRequirementModel(req, doc))
	}
	return out
}

// codeSamples reads x-codeSamples (or the older x-code-samples) and inserts
// the payload sample when the request body has one.
func codeSamples(op *v3.Operation, body *RequestBodyModel, isCallback bool, opts *config.Options) []CodeSample {
	var list []CodeSample
	for _, key := range []string{"x-codeSamples", "x-code-samples"} {
		node := Extension(op.Extensions, key)
		if node == nil {
			continue
		}
		if err := node.Decode(&list); err == nil {
			break
		}
		list = nil
	}

	if body == nil || !body.Content.HasSample() {
		return list
	}

	idx := opts.PayloadSampleIdx
	if isCallback {
		idx = 0
	}
	if idx > len(list) {
		idx = len(list)
	}

	payload := CodeSample{Lang: "payload", Label: "Payload", RequestBodyContent: body.Content}
	out := make([]CodeSample, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, payload)
	out = append(out, list[idx:]...)
	return out
}

func buildCallbacks(p *parser.Parser, ref string, op *v3.Operation, opts *config.Options) []*CallbackModel {
	if op.Callbacks == nil {
		return nil
	}

	var out []*CallbackModel
	for pair := op.Callbacks.First(); pair != nil; pair = pair.Next() {
		name, cb := pair.Key(), pair.Value()
		if cb == nil || cb.Expression == nil {
			continue
		}

		model := &CallbackModel{Name: name}
		for expr := cb.Expression.First(); expr != nil; expr = expr.Next() {
			item := expr.Value()
			if item == nil {
				continue
			}
			for _, cbOp := range parser.PathItemOperations(expr.Key(), item) {
				tokens := append(parser.PointerTokens(ref), "callbacks", name, expr.Key(), cbOp.Method)
				model.Operations = append(model.Operations, NewOperationModel(p, OperationSpec{
					Ref:            parser.CompilePointer(tokens...),
					HTTPVerb:       cbOp.Method,
					Operation:      cbOp.Operation,
					PathParameters: item.Parameters,
					PathServers:    item.Servers,
					IsCallback:     true,
				}, nil, opts))
			}
		}
		out = append(out, model)
	}
	return out
}

// ParameterGroups groups the parameters by location in ParamPlaces order.
// Empty groups are left out.
func (m *OperationModel) ParameterGroups() []ParameterGroup {
	var groups []ParameterGroup
	for _, place := range ParamPlaces {
		var params []*FieldModel
		for _, f := range m.Parameters {
			if f.In == place {
				params = append(params, f)
			}
		}
		if len(params) > 0 {
			groups = append(groups, ParameterGroup{Place: place, Parameters: params})
		}
	}
	return groups
}

// PayloadSample returns the payload code sample, if any.
func (m *OperationModel) PayloadSample() (CodeSample, bool) {
	for _, s := range m.CodeSamples {
		if s.IsPayload() {
			return s, true
		}
	}
	return CodeSample{}, false
}

// HasResponseSamples reports whether any response has an example.
func (m *OperationModel) HasResponseSamples() bool {
	for _, r := range m.Responses {
		if r.Content.HasSample() {
			return true
		}
	}
	return false
}

// Verb returns the upper-cased HTTP method.
func (m *OperationModel) Verb() string {
	return strings.ToUpper(m.HTTPVerb)
}
