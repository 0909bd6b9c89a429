// Package models holds the view models built from an OpenAPI document: the
// content tree (groups, tags, sections, operations) and the response, field
// and schema views rendered inside it.
package models

import (
	"sync/atomic"

	"github.com/pb33f/libopenapi/datamodel/high/base"
)

// ItemType is the kind of a content tree item.
type ItemType string

const (
	TypeGroup     ItemType = "group"
	TypeTag       ItemType = "tag"
	TypeSection   ItemType = "section"
	TypeOperation ItemType = "operation"
)

// ContentItem is an entry of the content tree.
type ContentItem interface {
	Item() *MenuItem
	SearchEntry() (title, body, id string, ok bool)
}

// ExternalDocs links to documentation outside the document.
type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

func newExternalDocs(docs *base.ExternalDoc) *ExternalDocs {
	if docs == nil || docs.URL == "" {
		return nil
	}
	return &ExternalDocs{Description: docs.Description, URL: docs.URL}
}

// MenuItem holds the fields shared by every content tree item. UI state is
// kept in atomics so the tree can be read while a request activates items.
type MenuItem struct {
	ID          string
	AbsoluteIdx int
	Name        string
	Description string
	Type        ItemType
	Depth       int

	Items        []ContentItem
	Parent       *GroupModel
	ExternalDocs *ExternalDocs

	active   atomic.Bool
	expanded atomic.Bool
}

// Item returns the shared menu fields.
func (m *MenuItem) Item() *MenuItem {
	return m
}

// SearchEntry returns what the search index stores for the item. Groups are
// not indexed.
func (m *MenuItem) SearchEntry() (title, body, id string, ok bool) {
	if m.Type == TypeGroup {
		return "", "", "", false
	}
	return m.Name, m.Description, m.ID, true
}

// Activate marks the item as the current one.
func (m *MenuItem) Activate() {
	m.active.Store(true)
}

// Deactivate clears the active flag.
func (m *MenuItem) Deactivate() {
	m.active.Store(false)
}

// IsActive reports whether the item is the current one.
func (m *MenuItem) IsActive() bool {
	return m.active.Load()
}

// Expand opens the item and all of its ancestors.
func (m *MenuItem) Expand() {
	if m.Parent != nil {
		m.Parent.Expand()
	}
	m.expanded.Store(true)
}

// Collapse closes the item. Groups stay open.
func (m *MenuItem) Collapse() {
	if m.Type == TypeGroup {
		return
	}
	m.expanded.Store(false)
}

// IsExpanded reports whether the item is open.
func (m *MenuItem) IsExpanded() bool {
	return m.expanded.Load()
}

// GroupModel is a group, tag or section of the content tree.
type GroupModel struct {
	MenuItem

	// Level is the heading level of sections, tags and groups render at 1.
	Level int
}

// NewGroupModel creates a group, tag or section item.
func NewGroupModel(typ ItemType, id, name, description string, parent *GroupModel) *GroupModel {
	g := &GroupModel{
		MenuItem: MenuItem{
			ID:          id,
			Name:        name,
			Description: description,
			Type:        typ,
			Parent:      parent,
		},
		Level: 1,
	}
	// groups are always open
	if typ == TypeGroup {
		g.expanded.Store(true)
	}
	return g
}
