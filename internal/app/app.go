// Package app builds the documentation store of a document: the parsed
// model, the content tree, the search index and the page renderer.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.yaml.in/yaml/v4"

	"github.com/moamenhredeen/oasdoc/internal/config"
	"github.com/moamenhredeen/oasdoc/internal/db"
	"github.com/moamenhredeen/oasdoc/internal/menu"
	"github.com/moamenhredeen/oasdoc/internal/models"
	"github.com/moamenhredeen/oasdoc/internal/parser"
	"github.com/moamenhredeen/oasdoc/internal/render"
	"github.com/moamenhredeen/oasdoc/internal/search"
)

// ErrNoSpec is returned unless exactly one document source is given.
var ErrNoSpec = errors.New("exactly one of spec, file or url is required")

// snapshotVersion is bumped whenever the indexed entries change shape.
const snapshotVersion = "1"

// Source is where the document comes from. Exactly one field must be set.
type Source struct {
	Spec []byte
	File string
	URL  string
}

// Location returns the file path or URL of the source.
func (s Source) Location() string {
	if s.URL != "" {
		return s.URL
	}
	return s.File
}

func (s Source) count() int {
	n := 0
	if len(s.Spec) > 0 {
		n++
	}
	if s.File != "" {
		n++
	}
	if s.URL != "" {
		n++
	}
	return n
}

// BuildOption configures Build.
type BuildOption func(*buildSettings)

type buildSettings struct {
	logger   *slog.Logger
	onLoaded func(error)
	cache    *db.DB
	client   *http.Client
	metrics  *search.Metrics
}

// WithLogger sets the logger of the store and its search index.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(s *buildSettings) {
		s.logger = logger
	}
}

// WithOnLoaded registers a callback invoked once with nil or the loading
// failure.
func WithOnLoaded(fn func(error)) BuildOption {
	return func(s *buildSettings) {
		s.onLoaded = fn
	}
}

// WithIndexCache reuses search index snapshots stored in cache.
func WithIndexCache(cache *db.DB) BuildOption {
	return func(s *buildSettings) {
		s.cache = cache
	}
}

// WithHTTPClient sets the client used to fetch URL sources.
func WithHTTPClient(client *http.Client) BuildOption {
	return func(s *buildSettings) {
		s.client = client
	}
}

// WithSearchMetrics records search activity in m.
func WithSearchMetrics(m *search.Metrics) BuildOption {
	return func(s *buildSettings) {
		s.metrics = m
	}
}

// Store holds everything needed to render the documentation of a document.
type Store struct {
	Parser  *parser.Parser
	Options *config.Options
	Menu    *menu.Store
	// Search is nil when search is disabled.
	Search          *search.Store[string]
	Info            *models.APIInfo
	SecuritySchemes []*models.SecuritySchemeModel

	renderer *render.Renderer
	logger   *slog.Logger
}

// Build loads the document from src and prepares the store.
func Build(ctx context.Context, src Source, opts config.Options, options ...BuildOption) (*Store, error) {
	cfg := buildSettings{logger: slog.Default()}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	store, err := build(ctx, src, &opts, cfg)
	if cfg.onLoaded != nil {
		cfg.onLoaded(err)
	}
	return store, err
}

func build(ctx context.Context, src Source, opts *config.Options, cfg buildSettings) (*Store, error) {
	if src.count() != 1 {
		return nil, ErrNoSpec
	}

	p, err := load(ctx, src, cfg.client)
	if err != nil {
		return nil, err
	}
	if warnings := p.Warnings(); warnings != nil {
		cfg.logger.Warn("document loaded with warnings", "source", src.Location(), "warnings", warnings)
	}

	renderer, err := render.New(opts)
	if err != nil {
		return nil, err
	}

	s := &Store{
		Parser:          p,
		Options:         opts,
		Menu:            menu.NewStore(menu.BuildStructure(p, opts, cfg.logger)),
		Info:            models.NewAPIInfo(p, ""),
		SecuritySchemes: models.SecuritySchemes(p.Model()),
		renderer:        renderer,
		logger:          cfg.logger,
	}

	if !opts.DisableSearch {
		s.Search, err = search.New[string](
			search.WithLogger(cfg.logger),
			search.WithBackground(opts.BackgroundSearch),
			search.WithMetrics(cfg.metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create search index: %w", err)
		}
		if err := s.indexSearch(cfg.cache); err != nil {
			_ = s.Search.Dispose()
			return nil, err
		}
	}

	cfg.logger.Debug("documentation store built",
		"source", src.Location(),
		"items", len(s.Menu.FlatItems()),
		"search", s.Search != nil,
	)
	return s, nil
}

func load(ctx context.Context, src Source, client *http.Client) (*parser.Parser, error) {
	switch {
	case src.URL != "":
		return parser.ParseURL(ctx, client, src.URL)
	case src.File != "":
		return parser.ParseFile(src.File)
	default:
		return parser.ParseBytes(src.Spec, "")
	}
}

// indexSearch fills the search index, from the cache when it holds a
// snapshot of the same document. Cache failures only cost a re-index.
func (s *Store) indexSearch(cache *db.DB) error {
	var key string
	if cache != nil {
		key = db.SnapshotKey(s.Parser.Raw(), s.snapshotVariant())
		if ok := s.loadSnapshot(cache, key); ok {
			return nil
		}
	}

	if err := search.IndexItems(s.Search, s.Menu.FlatItems()); err != nil {
		return fmt.Errorf("failed to index items: %w", err)
	}

	if cache != nil {
		s.storeSnapshot(cache, key)
	}
	return nil
}

func (s *Store) snapshotVariant() string {
	return fmt.Sprintf("v%s:noAutoAuth=%t", snapshotVersion, s.Options.NoAutoAuth)
}

func (s *Store) loadSnapshot(cache *db.DB, key string) bool {
	cached, err := cache.GetSnapshot(key)
	if err != nil {
		s.logger.Warn("failed to read search snapshot", "error", err)
		return false
	}
	if cached == nil {
		return false
	}

	var snap search.Snapshot[string]
	if err := json.Unmarshal(cached.Data, &snap); err != nil {
		s.logger.Warn("dropping unreadable search snapshot", "error", err)
		if err := cache.DeleteSnapshot(key); err != nil {
			s.logger.Warn("failed to delete search snapshot", "error", err)
		}
		return false
	}
	if err := s.Search.Load(snap); err != nil {
		s.logger.Warn("failed to load search snapshot", "error", err)
		return false
	}
	s.logger.Debug("search index loaded from cache", "documents", len(snap.Documents), "created_at", cached.CreatedAt)
	return true
}

func (s *Store) storeSnapshot(cache *db.DB, key string) {
	snap, err := s.Search.Export()
	if err != nil {
		s.logger.Warn("failed to export search index", "error", err)
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("failed to encode search snapshot", "error", err)
		return
	}
	if err := cache.PutSnapshot(key, data); err != nil {
		s.logger.Warn("failed to store search snapshot", "error", err)
	}
}

// RenderComponent renders components injected into markdown descriptions.
func (s *Store) RenderComponent(name string) (string, error) {
	switch name {
	case render.SecurityDefinitions:
		return s.renderer.SecurityDefinitions(s.SecuritySchemes)
	default:
		return "", fmt.Errorf("unknown component %q", name)
	}
}

// RenderPage writes the documentation page. specPath is the download link,
// empty to link the document location.
func (s *Store) RenderPage(w io.Writer, specPath string) error {
	return s.renderer.RenderPage(w, render.Page{
		Info:       s.Info,
		Items:      s.Menu.Items(),
		Components: s,
		SpecPath:   specPath,
	})
}

// SpecJSON returns the document as JSON. YAML documents are converted, key
// order is not kept for them.
func (s *Store) SpecJSON() ([]byte, error) {
	raw := s.Parser.Raw()
	if json.Valid(raw) {
		return raw, nil
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	out, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return out, nil
}

// stringKeys converts maps with non-string keys, such as unquoted status
// codes, into maps JSON can encode.
func stringKeys(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			v[k] = stringKeys(child)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range v {
			v[i] = stringKeys(child)
		}
		return v
	default:
		return v
	}
}

// Dispose releases the search worker.
func (s *Store) Dispose() error {
	if s.Search == nil {
		return nil
	}
	return s.Search.Dispose()
}
