package vectorstore

import "coursechat/internal/domain"

// Storage persists item vectors and supports similarity search.
type Storage interface {
	Init(dimension int) error
	Upsert(items []domain.Item, vectors [][]float32) error
	Search(vector []float32, topK int) ([]domain.ScoredItem, error)
	Len() int
}
