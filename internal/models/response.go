package models

import (
	"github.com/moamenhredeen/oasdoc/internal/config"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// ResponseModel is a response of an operation.
type ResponseModel struct {
	Code        string
	Type        string
	Summary     string
	Description string
	Headers     []*FieldModel
	Content     *MediaContentModel
	Expanded    bool
	Extensions  map[string]any
}

// NewResponseModel builds the view of response code. defaultAsError is set
// when the operation has success responses.
func NewResponseModel(code string, defaultAsError bool, info *v3.Response, opts *config.Options) *ResponseModel {
	r := &ResponseModel{
		Code:     code,
		Type:     StatusCodeType(code, defaultAsError),
		Expanded: opts.ExpandAllResponses || opts.ExpandResponses[code],
	}
	if info == nil {
		return r
	}

	if info.Content != nil {
		r.Content = NewMediaContentModel(info.Content, false, opts)
	}

	// x-summary moves the description below the summary line
	if summary := ExtensionString(info.Extensions, "x-summary"); summary != "" {
		r.Summary = summary
		r.Description = info.Description
	} else {
		r.Summary = info.Description
	}

	if info.Headers != nil {
		for pair := info.Headers.First(); pair != nil; pair = pair.Next() {
			if pair.Value() == nil {
				continue
			}
			r.Headers = append(r.Headers, NewHeaderField(pair.Key(), pair.Value(), opts))
		}
	}

	if opts.ShowExtensions {
		r.Extensions = extensionValues(info.Extensions)
	}
	return r
}
