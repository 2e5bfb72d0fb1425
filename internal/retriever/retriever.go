package retriever

import (
	"context"
	"fmt"

	"coursechat/internal/domain"
)

// DefaultTopK is the number of results returned per category.
const DefaultTopK = 3

type CourseMatch struct {
	Course domain.Course
	Score  float64
}

type InstructorMatch struct {
	Instructor domain.Instructor
	Score      float64
}

// Result carries the ranked matches of both categories, best first.
type Result struct {
	Courses     []CourseMatch
	Instructors []InstructorMatch
}

func (r Result) CourseList() []domain.Course {
	out := make([]domain.Course, len(r.Courses))
	for i, m := range r.Courses {
		out[i] = m.Course
	}
	return out
}

func (r Result) InstructorList() []domain.Instructor {
	out := make([]domain.Instructor, len(r.Instructors))
	for i, m := range r.Instructors {
		out[i] = m.Instructor
	}
	return out
}

// Retriever ranks catalog items against a query by cosine similarity.
type Retriever struct {
	index *Index
	topK  int
}

// New returns a retriever over idx returning up to topK items per category.
func New(idx *Index, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{index: idx, topK: topK}
}

func (r *Retriever) TopK() int { return r.topK }

// Retrieve encodes the query and returns min(topK, n) items per category,
// ordered by similarity with ties in catalog order. Empty queries are encoded
// like any other text.
func (r *Retriever) Retrieve(ctx context.Context, query string) (Result, error) {
	vec, err := r.index.embedder.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("embedding query failed: %w", err)
	}

	var res Result
	courses, err := r.index.courses.Search(vec, r.topK)
	if err != nil {
		return Result{}, fmt.Errorf("search courses: %w", err)
	}
	for _, s := range courses {
		co, ok := r.index.catalog.Course(s.Item.Name)
		if !ok {
			return Result{}, fmt.Errorf("indexed course %q missing from catalog", s.Item.Name)
		}
		res.Courses = append(res.Courses, CourseMatch{Course: co, Score: s.Score})
	}

	instructors, err := r.index.instructors.Search(vec, r.topK)
	if err != nil {
		return Result{}, fmt.Errorf("search instructors: %w", err)
	}
	for _, s := range instructors {
		in, ok := r.index.catalog.Instructor(s.Item.Name)
		if !ok {
			return Result{}, fmt.Errorf("indexed instructor %q missing from catalog", s.Item.Name)
		}
		res.Instructors = append(res.Instructors, InstructorMatch{Instructor: in, Score: s.Score})
	}
	return res, nil
}
