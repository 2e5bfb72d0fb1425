// Package retriever builds the embedding index over the catalog and ranks
// catalog items against free-text queries.
package retriever

import (
	"context"
	"errors"
	"fmt"

	"coursechat/internal/catalog"
	"coursechat/internal/domain"
	"coursechat/internal/embedding"
	"coursechat/internal/vectorstore"
	"coursechat/internal/vectorstore/memory"
)

// Index holds one vector per catalog item, split by kind. It is built once
// and only read afterwards.
type Index struct {
	catalog     *catalog.Catalog
	embedder    embedding.Embedder
	dimension   int
	courses     vectorstore.Storage
	instructors vectorstore.Storage
}

// BuildIndex embeds every catalog item as "name + ' ' + text". Any embedding
// failure aborts the build; a partial index is never returned.
func BuildIndex(ctx context.Context, cat *catalog.Catalog, emb embedding.Embedder) (*Index, error) {
	courseItems := cat.Items(domain.KindCourse)
	instrItems := cat.Items(domain.KindInstructor)
	all := append(append([]domain.Item(nil), courseItems...), instrItems...)
	if len(all) == 0 {
		return nil, errors.New("catalog is empty")
	}

	corpus := make([]string, len(all))
	for i, it := range all {
		corpus[i] = it.EmbeddingText()
	}
	if err := emb.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}

	vectors := make([][]float32, len(all))
	for i, text := range corpus {
		vec, err := emb.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed %s %q: %w", all[i].Kind, all[i].Name, err)
		}
		vectors[i] = vec
	}

	dim := emb.Dimension()
	if dim == 0 {
		dim = len(vectors[0])
	}
	idx := &Index{
		catalog:     cat,
		embedder:    emb,
		dimension:   dim,
		courses:     memory.NewStorage(),
		instructors: memory.NewStorage(),
	}
	nc := len(courseItems)
	if err := fill(idx.courses, dim, courseItems, vectors[:nc]); err != nil {
		return nil, fmt.Errorf("index courses: %w", err)
	}
	if err := fill(idx.instructors, dim, instrItems, vectors[nc:]); err != nil {
		return nil, fmt.Errorf("index instructors: %w", err)
	}
	return idx, nil
}

func fill(s vectorstore.Storage, dim int, items []domain.Item, vectors [][]float32) error {
	if err := s.Init(dim); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return s.Upsert(items, vectors)
}

// Dimension is the length of every vector in the index.
func (idx *Index) Dimension() int { return idx.dimension }

// Embedder returns the embedding function used for both items and queries.
func (idx *Index) Embedder() embedding.Embedder { return idx.embedder }
