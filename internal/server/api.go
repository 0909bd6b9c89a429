package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moamenhredeen/oasdoc/internal/models"
	"github.com/moamenhredeen/oasdoc/internal/search"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// MenuEntry is an item of the flattened menu.
type MenuEntry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        models.ItemType `json:"type"`
	Depth       int             `json:"depth"`
	AbsoluteIdx int             `json:"absoluteIdx"`
	Parent      string          `json:"parent,omitempty"`
	HTTPVerb    string          `json:"httpVerb,omitempty"`
	Deprecated  bool            `json:"deprecated,omitempty"`
	Active      bool            `json:"active,omitempty"`
}

// SearchHit is a search result resolved to its menu item.
type SearchHit struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  models.ItemType `json:"type"`
	Score float64         `json:"score"`
}

// SearchResponse is the body of /api/search.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

func menuEntry(item models.ContentItem) MenuEntry {
	m := item.Item()
	e := MenuEntry{
		ID:          m.ID,
		Name:        m.Name,
		Type:        m.Type,
		Depth:       m.Depth,
		AbsoluteIdx: m.AbsoluteIdx,
		Active:      m.IsActive(),
	}
	if m.Parent != nil {
		e.Parent = m.Parent.ID
	}
	if op, ok := item.(*models.OperationModel); ok {
		e.HTTPVerb = op.HTTPVerb
		e.Deprecated = op.Deprecated
	}
	return e
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	items := s.store.Menu.FlatItems()
	entries := make([]MenuEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, menuEntry(item))
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many search requests")
		return
	}

	q := r.URL.Query().Get("q")
	results, err := s.store.Search.Search(q)
	if errors.Is(err, search.ErrDisposed) {
		writeError(w, http.StatusServiceUnavailable, "search index is closed")
		return
	}
	if err != nil {
		s.logger.Error("search failed", "query", q, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	resp := SearchResponse{Query: q, Results: make([]SearchHit, 0, len(results))}
	for _, res := range results {
		hit := SearchHit{ID: res.Meta, Score: res.Score}
		if item := s.store.Menu.GetItemByID(res.Meta); item != nil {
			hit.Name = item.Item().Name
			hit.Type = item.Item().Type
		}
		resp.Results = append(resp.Results, hit)
	}
	writeJSON(w, http.StatusOK, resp)
}
