package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"coursechat/internal/domain"
)

func sampleCourses() []domain.Course {
	return []domain.Course{{Name: "Intro to X", Description: "Basics of X", Instructor: "A", Duration: "4 weeks"}}
}

func sampleInstructors() []domain.Instructor {
	return []domain.Instructor{{Name: "A", Bio: "Expert in X", Courses: []string{"Intro to X"}}}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name        string
		courses     []domain.Course
		instructors []domain.Instructor
	}{
		{
			name:        "course without description",
			courses:     []domain.Course{{Name: "C", Instructor: "A", Duration: "1 week"}},
			instructors: sampleInstructors(),
		},
		{
			name:        "course without duration",
			courses:     []domain.Course{{Name: "C", Description: "d", Instructor: "A"}},
			instructors: sampleInstructors(),
		},
		{
			name:        "instructor without bio",
			courses:     sampleCourses(),
			instructors: []domain.Instructor{{Name: "A"}},
		},
		{
			name:        "duplicate course",
			courses:     append(sampleCourses(), sampleCourses()...),
			instructors: sampleInstructors(),
		},
		{
			name:        "duplicate instructor",
			courses:     sampleCourses(),
			instructors: append(sampleInstructors(), sampleInstructors()...),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.courses, tt.instructors, false)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestDanglingRefs(t *testing.T) {
	courses := []domain.Course{{Name: "Intro to X", Description: "Basics of X", Instructor: "Nobody", Duration: "4 weeks"}}
	instructors := []domain.Instructor{{Name: "A", Bio: "Expert in X", Courses: []string{"Missing"}}}

	c, err := New(courses, instructors, false)
	if err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}
	if got := len(c.Warnings()); got != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", got, c.Warnings())
	}

	if _, err := New(courses, instructors, true); !errors.Is(err, ErrDanglingRef) {
		t.Fatalf("expected ErrDanglingRef in strict mode, got %v", err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c, err := New(sampleCourses(), sampleInstructors(), true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ins := c.Instructors()
	ins[0].Courses[0] = "mutated"
	ins[0].Bio = "mutated"
	again, ok := c.Instructor("A")
	if !ok {
		t.Fatal("instructor A not found")
	}
	if again.Bio != "Expert in X" || again.Courses[0] != "Intro to X" {
		t.Fatalf("catalog was mutated through accessor: %+v", again)
	}
}

func TestItemsKeepOrder(t *testing.T) {
	courses := []domain.Course{
		{Name: "B", Description: "b", Instructor: "A", Duration: "1w"},
		{Name: "A", Description: "a", Instructor: "A", Duration: "1w"},
	}
	c, err := New(courses, sampleInstructors(), false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	items := c.Items(domain.KindCourse)
	if len(items) != 2 || items[0].Name != "B" || items[1].Name != "A" {
		t.Fatalf("unexpected items order: %+v", items)
	}
	if items[0].EmbeddingText() != "B b" {
		t.Fatalf("unexpected embedding text %q", items[0].EmbeddingText())
	}
	inst := c.Items(domain.KindInstructor)
	if len(inst) != 1 || inst[0].EmbeddingText() != "A Expert in X" {
		t.Fatalf("unexpected instructor items: %+v", inst)
	}
}

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	coursesPath := filepath.Join(dir, "courses.json")
	instructorsPath := filepath.Join(dir, "instructors.yaml")
	courses := `[{"name":"Intro to X","description":"Basics of X","instructor":"A","duration":"4 weeks"}]`
	instructors := "- name: A\n  bio: Expert in X\n  courses:\n    - Intro to X\n"
	if err := os.WriteFile(coursesPath, []byte(courses), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(instructorsPath, []byte(instructors), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(coursesPath, instructorsPath, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	nc, ni := c.Len()
	if nc != 1 || ni != 1 {
		t.Fatalf("unexpected counts %d/%d", nc, ni)
	}
	co, ok := c.Course("Intro to X")
	if !ok || co.Duration != "4 weeks" {
		t.Fatalf("unexpected course %+v", co)
	}
}

func TestLoadBundledData(t *testing.T) {
	c, err := Load("../../data/courses.json", "../../data/instructors.json", true)
	if err != nil {
		t.Fatalf("bundled catalog should load strictly: %v", err)
	}
	if nc, ni := c.Len(); nc == 0 || ni == 0 {
		t.Fatalf("bundled catalog is empty: %d/%d", nc, ni)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), "x.json", false); err == nil {
		t.Fatal("expected error for missing file")
	}
}
