package menu

import (
	"strings"
	"sync"

	"github.com/moamenhredeen/oasdoc/internal/models"
)

// FlattenByProp walks items depth first, listing every item before its
// children.
func FlattenByProp[T any](items []T, children func(T) []T) []T {
	var res []T
	var iterate func([]T)
	iterate = func(items []T) {
		for _, item := range items {
			res = append(res, item)
			if sub := children(item); len(sub) > 0 {
				iterate(sub)
			}
		}
	}
	iterate(items)
	return res
}

// Store holds the content tree and the active item. It is safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	items     []models.ContentItem
	flatItems []models.ContentItem
	activeIdx int
}

// NewStore flattens items and numbers them in menu order.
func NewStore(items []models.ContentItem) *Store {
	flat := FlattenByProp(items, func(item models.ContentItem) []models.ContentItem {
		return item.Item().Items
	})
	for idx, item := range flat {
		item.Item().AbsoluteIdx = idx
	}
	return &Store{items: items, flatItems: flat, activeIdx: -1}
}

// Items returns the top level items.
func (s *Store) Items() []models.ContentItem {
	return s.items
}

// FlatItems returns every item in menu order.
func (s *Store) FlatItems() []models.ContentItem {
	return s.flatItems
}

// GetItemByID returns the item with id, or nil.
func (s *Store) GetItemByID(id string) models.ContentItem {
	for _, item := range s.flatItems {
		if item.Item().ID == id {
			return item
		}
	}
	return nil
}

// ActiveItem returns the active item, or nil when none is active.
func (s *Store) ActiveItem() models.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeItem()
}

func (s *Store) activeItem() models.ContentItem {
	if s.activeIdx < 0 || s.activeIdx >= len(s.flatItems) {
		return nil
	}
	return s.flatItems[s.activeIdx]
}

// Activate makes item the active one and expands its ancestors. Groups
// cannot be activated. A nil item clears the selection.
func (s *Store) Activate(item models.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.activeItem()
	if current != nil && item != nil && current.Item().ID == item.Item().ID {
		return
	}
	if item != nil && (item.Item().Type == models.TypeGroup || item.Item().Depth <= GroupDepth) {
		return
	}

	deactivate(current)
	if item == nil {
		s.activeIdx = -1
		return
	}

	m := item.Item()
	s.activeIdx = m.AbsoluteIdx
	m.Activate()
	m.Expand()
}

// Reset clears the active item and collapses every item, as right after
// the store was built.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	deactivate(s.activeItem())
	s.activeIdx = -1
	for _, item := range s.flatItems {
		item.Item().Collapse()
	}
}

// ActivateByID activates the item with id. Ids of single security schemes
// fall back to the Authentication section. It returns the activated item,
// or nil when nothing was activated.
func (s *Store) ActivateByID(id string) models.ContentItem {
	item := s.GetItemByID(id)
	if item == nil && strings.HasPrefix(id, models.SecuritySchemesSectionPrefix) {
		item = s.GetItemByID(strings.TrimSuffix(models.SecuritySchemesSectionPrefix, "/"))
	}
	if item == nil {
		return nil
	}
	s.Activate(item)
	if !item.Item().IsActive() {
		return nil
	}
	return item
}

// deactivate clears the active flag of item and its ancestors.
func deactivate(item models.ContentItem) {
	if item == nil {
		return
	}
	for m := item.Item(); m != nil; {
		m.Deactivate()
		if m.Parent == nil {
			break
		}
		m = &m.Parent.MenuItem
	}
}
