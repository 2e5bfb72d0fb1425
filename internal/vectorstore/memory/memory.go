package memory

import (
	"errors"
	"sort"
	"sync"

	"coursechat/internal/domain"
	"coursechat/internal/embedding"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Items keep their insertion order, which breaks score ties.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	items     []domain.Item
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.items = nil
	return nil
}

func (s *Storage) Upsert(items []domain.Item, vectors [][]float32) error {
	if len(items) != len(vectors) {
		return errors.New("items and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.items = append(s.items, items...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search ranks every stored item against vector and returns the best
// min(topK, Len()) of them. A non-positive topK returns nothing.
func (s *Storage) Search(vector []float32, topK int) ([]domain.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, errors.New("query dimension mismatch")
	}
	scored := make([]domain.ScoredItem, len(s.items))
	for i := range s.vectors {
		scored[i] = domain.ScoredItem{Item: s.items[i], Score: embedding.CosineSimilarity(s.vectors[i], vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
