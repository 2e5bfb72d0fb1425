// Package catalog holds the static course and instructor records searched by
// the retriever. A Catalog is built once at startup and never mutated.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"coursechat/internal/domain"
)

var (
	// ErrInvalid marks records with missing required fields or duplicate names.
	ErrInvalid = errors.New("invalid catalog")
	// ErrDanglingRef marks references to records that do not exist.
	ErrDanglingRef = errors.New("dangling catalog reference")
)

// Catalog is an immutable, ordered set of courses and instructors.
type Catalog struct {
	courses     []domain.Course
	instructors []domain.Instructor
	courseIdx   map[string]int
	instrIdx    map[string]int
	warnings    []string
}

// Load reads the course and instructor lists from disk. Files ending in .yaml
// or .yml are parsed as YAML, everything else as JSON.
func Load(coursesPath, instructorsPath string, strictRefs bool) (*Catalog, error) {
	var courses []domain.Course
	if err := readList(coursesPath, &courses); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	var instructors []domain.Instructor
	if err := readList(instructorsPath, &instructors); err != nil {
		return nil, fmt.Errorf("load instructors: %w", err)
	}
	return New(courses, instructors, strictRefs)
}

func readList(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	default:
		return json.Unmarshal(data, out)
	}
}

// New validates the records and builds a catalog. Missing required fields and
// duplicate names always fail. Dangling references are collected as warnings
// unless strictRefs is set, in which case they fail too.
func New(courses []domain.Course, instructors []domain.Instructor, strictRefs bool) (*Catalog, error) {
	c := &Catalog{
		courses:     append([]domain.Course(nil), courses...),
		instructors: make([]domain.Instructor, len(instructors)),
		courseIdx:   make(map[string]int, len(courses)),
		instrIdx:    make(map[string]int, len(instructors)),
	}
	for i, in := range instructors {
		in.Courses = append([]string(nil), in.Courses...)
		c.instructors[i] = in
	}

	for i, co := range c.courses {
		switch {
		case strings.TrimSpace(co.Name) == "":
			return nil, fmt.Errorf("%w: course #%d has no name", ErrInvalid, i)
		case strings.TrimSpace(co.Description) == "":
			return nil, fmt.Errorf("%w: course %q has no description", ErrInvalid, co.Name)
		case strings.TrimSpace(co.Instructor) == "":
			return nil, fmt.Errorf("%w: course %q has no instructor", ErrInvalid, co.Name)
		case strings.TrimSpace(co.Duration) == "":
			return nil, fmt.Errorf("%w: course %q has no duration", ErrInvalid, co.Name)
		}
		if _, dup := c.courseIdx[co.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate course %q", ErrInvalid, co.Name)
		}
		c.courseIdx[co.Name] = i
	}
	for i, in := range c.instructors {
		switch {
		case strings.TrimSpace(in.Name) == "":
			return nil, fmt.Errorf("%w: instructor #%d has no name", ErrInvalid, i)
		case strings.TrimSpace(in.Bio) == "":
			return nil, fmt.Errorf("%w: instructor %q has no bio", ErrInvalid, in.Name)
		}
		if _, dup := c.instrIdx[in.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate instructor %q", ErrInvalid, in.Name)
		}
		c.instrIdx[in.Name] = i
	}

	for _, co := range c.courses {
		if _, ok := c.instrIdx[co.Instructor]; !ok {
			c.warnings = append(c.warnings, fmt.Sprintf("course %q references unknown instructor %q", co.Name, co.Instructor))
		}
	}
	for _, in := range c.instructors {
		for _, ref := range in.Courses {
			if _, ok := c.courseIdx[ref]; !ok {
				c.warnings = append(c.warnings, fmt.Sprintf("instructor %q references unknown course %q", in.Name, ref))
			}
		}
	}
	if strictRefs && len(c.warnings) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDanglingRef, strings.Join(c.warnings, "; "))
	}
	return c, nil
}

// Courses returns a copy of the courses in catalog order.
func (c *Catalog) Courses() []domain.Course {
	return append([]domain.Course(nil), c.courses...)
}

// Instructors returns a copy of the instructors in catalog order.
func (c *Catalog) Instructors() []domain.Instructor {
	out := make([]domain.Instructor, len(c.instructors))
	for i, in := range c.instructors {
		in.Courses = append([]string(nil), in.Courses...)
		out[i] = in
	}
	return out
}

func (c *Catalog) Course(name string) (domain.Course, bool) {
	i, ok := c.courseIdx[name]
	if !ok {
		return domain.Course{}, false
	}
	return c.courses[i], true
}

func (c *Catalog) Instructor(name string) (domain.Instructor, bool) {
	i, ok := c.instrIdx[name]
	if !ok {
		return domain.Instructor{}, false
	}
	in := c.instructors[i]
	in.Courses = append([]string(nil), in.Courses...)
	return in, true
}

// Items returns the indexable view of one collection, in catalog order.
func (c *Catalog) Items(kind domain.Kind) []domain.Item {
	switch kind {
	case domain.KindCourse:
		out := make([]domain.Item, len(c.courses))
		for i, co := range c.courses {
			out[i] = co.Item()
		}
		return out
	case domain.KindInstructor:
		out := make([]domain.Item, len(c.instructors))
		for i, in := range c.instructors {
			out[i] = in.Item()
		}
		return out
	}
	return nil
}

// Warnings lists referential problems found while building the catalog.
func (c *Catalog) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

func (c *Catalog) Len() (courses, instructors int) {
	return len(c.courses), len(c.instructors)
}
