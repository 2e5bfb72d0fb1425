package chat

import "fmt"

// Kind classifies why a turn failed.
type Kind int

const (
	KindRetrieval Kind = iota + 1
	KindGeneration
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindRetrieval:
		return "retrieval"
	case KindGeneration:
		return "generation"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error carries the failure kind up to the transport, which decides how much
// of it the caller sees.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
