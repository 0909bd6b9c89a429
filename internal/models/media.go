package models

import (
	"sync/atomic"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/samples"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
)

// MediaTypeModel is one media type of a request or response body.
type MediaTypeModel struct {
	Name          string
	IsRequestType bool
	Schema        *SchemaModel
	Examples      []*ExampleModel
}

// IsJSONLike reports whether the media type carries JSON.
func (m *MediaTypeModel) IsJSONLike() bool {
	return samples.IsJSONLike(m.Name)
}

// IsTextPlainLike reports whether the media type is plain text.
func (m *MediaTypeModel) IsTextPlainLike() bool {
	return samples.IsTextPlainLike(m.Name)
}

// MediaContentModel holds the media types of a body in document order.
type MediaContentModel struct {
	MediaTypes    []*MediaTypeModel
	IsRequestType bool

	activeMimeIdx atomic.Int32
}

// NewMediaContentModel builds the media types of content. JSON-like types
// without explicit examples get a generated sample.
func NewMediaContentModel(content *orderedmap.Map[string, *v3.MediaType], isRequestType bool, opts *config.Options) *MediaContentModel {
	m := &MediaContentModel{IsRequestType: isRequestType}
	if content == nil {
		return m
	}

	gen := samples.NewGenerator(samples.Options{
		SkipReadOnly:  isRequestType,
		SkipWriteOnly: !isRequestType,
	})

	for pair := content.First(); pair != nil; pair = pair.Next() {
		name, info := pair.Key(), pair.Value()
		if info == nil {
			continue
		}

		mt := &MediaTypeModel{Name: name, IsRequestType: isRequestType}
		if info.Schema != nil {
			mt.Schema = NewSchemaModel(info.Schema, "", opts)
		}

		switch {
		case info.Examples != nil && info.Examples.Len() > 0:
			mt.Examples = newExamples(info.Examples, name)
		case info.Example != nil:
			mt.Examples = []*ExampleModel{{
				Name:     "default",
				Value:    samples.NodeValue(info.Example),
				MimeType: name,
			}}
		case samples.IsJSONLike(name) && info.Schema != nil:
			if value, err := gen.ProxyValue(info.Schema); err == nil {
				mt.Examples = []*ExampleModel{{Name: "default", Value: value, MimeType: name}}
			}
		}

		m.MediaTypes = append(m.MediaTypes, mt)
	}
	return m
}

// Activate selects the media type shown first.
func (m *MediaContentModel) Activate(idx int) {
	if idx >= 0 && idx < len(m.MediaTypes) {
		m.activeMimeIdx.Store(int32(idx))
	}
}

// Active returns the selected media type.
func (m *MediaContentModel) Active() *MediaTypeModel {
	if len(m.MediaTypes) == 0 {
		return nil
	}
	return m.MediaTypes[m.activeMimeIdx.Load()]
}

// HasSample reports whether any media type has an example.
func (m *MediaContentModel) HasSample() bool {
	if m == nil {
		return false
	}
	for _, mt := range m.MediaTypes {
		if len(mt.Examples) > 0 {
			return true
		}
	}
	return false
}

// RequestBodyModel is the request body of an operation.
type RequestBodyModel struct {
	Description string
	Required    bool
	Content     *MediaContentModel
}

// NewRequestBodyModel builds the view of a request body.
func NewRequestBodyModel(body *v3.RequestBody, opts *config.Options) *RequestBodyModel {
	if body == nil {
		return nil
	}
	return &RequestBodyModel{
		Description: body.Description,
		Required:    flag(body.Required),
		Content:     NewMediaContentModel(body.Content, true, opts),
	}
}
