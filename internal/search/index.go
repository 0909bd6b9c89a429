package search

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	fieldTitle = "title"
	fieldBody  = "body"

	titleBoost = 2.0
)

// index is the bleve index together with the documents behind its hits.
// It is owned by a single goroutine at a time.
type index[T any] struct {
	bleve   bleve.Index
	docs    []Document[T]
	indexed int
}

func newIndex[T any]() (*index[T], error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, err
	}
	return &index[T]{bleve: idx}, nil
}

func newMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	text.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldTitle, text)
	doc.AddFieldMappingsAt(fieldBody, text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	return m
}

func (ix *index[T]) add(doc Document[T]) {
	ix.docs = append(ix.docs, doc)
}

// flush indexes the documents added since the last flush.
func (ix *index[T]) flush() error {
	if ix.indexed == len(ix.docs) {
		return nil
	}
	batch := ix.bleve.NewBatch()
	for i := ix.indexed; i < len(ix.docs); i++ {
		doc := ix.docs[i]
		if err := batch.Index(strconv.Itoa(i), map[string]any{
			fieldTitle: doc.Title,
			fieldBody:  doc.Body,
		}); err != nil {
			return err
		}
	}
	if err := ix.bleve.Batch(batch); err != nil {
		return err
	}
	ix.indexed = len(ix.docs)
	return nil
}

func (ix *index[T]) count() int {
	return ix.indexed
}

// reset drops the index and indexes docs instead.
func (ix *index[T]) reset(docs []Document[T]) error {
	fresh, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return err
	}
	if err := ix.bleve.Close(); err != nil {
		return err
	}
	ix.bleve = fresh
	ix.docs = append([]Document[T](nil), docs...)
	ix.indexed = 0
	return ix.flush()
}

func (ix *index[T]) search(q string) ([]Result[T], error) {
	terms := queryTerms(q)
	if len(terms) == 0 || ix.indexed == 0 {
		return nil, nil
	}

	var clauses []query.Query
	for _, term := range terms {
		title := bleve.NewWildcardQuery("*" + term + "*")
		title.SetField(fieldTitle)
		title.SetBoost(titleBoost)

		body := bleve.NewWildcardQuery("*" + term + "*")
		body.SetField(fieldBody)

		clauses = append(clauses, title, body)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(clauses...), ix.indexed, 0, false)
	res, err := ix.bleve.Search(req)
	if err != nil {
		return nil, err
	}

	results := make([]Result[T], 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(ix.docs) {
			continue
		}
		results = append(results, Result[T]{Meta: ix.docs[i].Meta, Score: hit.Score})
	}
	return results, nil
}

func (ix *index[T]) close() error {
	return ix.bleve.Close()
}

// queryTerms lower-cases q and splits it into terms stripped of leading and
// trailing punctuation and wildcard characters.
func queryTerms(q string) []string {
	var terms []string
	for _, field := range strings.Fields(strings.ToLower(q)) {
		term := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		term = strings.NewReplacer("*", "", "?", "").Replace(term)
		if len([]rune(term)) <= 1 {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
