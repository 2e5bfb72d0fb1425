// Package prompt renders retrieval results and conversation history into the
// text payload sent to the generation provider.
package prompt

import (
	"fmt"
	"strings"

	"coursechat/internal/domain"
)

const (
	coursesHeader     = "Relevant Courses:"
	instructorsHeader = "Relevant Instructors:"

	closingInstruction = "Please provide a helpful response based on the context and conversation history."
)

// FormatContext lists the courses and instructors under two fixed headers.
// Both headers are always present, so two empty lists yield
// "Relevant Courses:\n\nRelevant Instructors:".
func FormatContext(courses []domain.Course, instructors []domain.Instructor) string {
	var b strings.Builder
	b.WriteString(coursesHeader)
	b.WriteString("\n")
	for _, c := range courses {
		fmt.Fprintf(&b, "- %s: %s (Instructor: %s, Duration: %s)\n", c.Name, c.Description, c.Instructor, c.Duration)
	}
	b.WriteString("\n")
	b.WriteString(instructorsHeader)
	b.WriteString("\n")
	for _, in := range instructors {
		fmt.Fprintf(&b, "- %s: %s\n", in.Name, in.Bio)
	}
	return strings.TrimSpace(b.String())
}

// Build assembles the generation prompt. A leading system message in history
// becomes the preamble; the remaining messages are rendered as
// "role: content" lines, followed by the context block and the question.
func Build(question, context string, history []domain.Message) string {
	var b strings.Builder
	turns := history
	if len(turns) > 0 && turns[0].Role == domain.RoleSystem {
		b.WriteString(turns[0].Content)
		b.WriteString("\n\n")
		turns = turns[1:]
	}

	b.WriteString("Conversation history:\n")
	for _, m := range turns {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	b.WriteString("\nContext information:\n")
	b.WriteString(context)
	b.WriteString("\n\nCurrent question: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(closingInstruction)
	return b.String()
}
