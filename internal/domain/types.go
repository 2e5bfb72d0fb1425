package domain

// Kind distinguishes the two catalog collections.
type Kind string

const (
	KindCourse     Kind = "course"
	KindInstructor Kind = "instructor"
)

// Course is a single catalog course record.
type Course struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Instructor  string `json:"instructor" yaml:"instructor"`
	Duration    string `json:"duration" yaml:"duration"`
}

// Instructor is a single catalog instructor record.
type Instructor struct {
	Name    string   `json:"name" yaml:"name"`
	Bio     string   `json:"bio" yaml:"bio"`
	Courses []string `json:"courses" yaml:"courses"`
}

// Item is the kind-agnostic view of a catalog record used for indexing.
type Item struct {
	Kind Kind
	Name string
	Text string
}

// EmbeddingText is the text fed to the embedder for this item: name and
// descriptive field joined by a single space.
func (it Item) EmbeddingText() string {
	return it.Name + " " + it.Text
}

// Item returns the indexable view of the course.
func (c Course) Item() Item {
	return Item{Kind: KindCourse, Name: c.Name, Text: c.Description}
}

// Item returns the indexable view of the instructor.
func (i Instructor) Item() Item {
	return Item{Kind: KindInstructor, Name: i.Name, Text: i.Bio}
}

// ScoredItem is a catalog item with its similarity to a query.
type ScoredItem struct {
	Item  Item
	Score float64
}

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged conversation entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TranslationRecord is appended for every successful translation call.
type TranslationRecord struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
	Language    string `json:"language"`
}
