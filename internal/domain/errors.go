package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error the trivia use cases return wraps exactly one of these.
var (
	// ErrNotFound means the requested resource or collection is empty or absent.
	ErrNotFound = errors.New("resource not found")
	// ErrUnprocessable means the request was well formed but could not be carried out.
	ErrUnprocessable = errors.New("unprocessable")
	// ErrBadRequest means the request itself was malformed.
	ErrBadRequest = errors.New("bad request")
)

var (
	// ErrNoCategories is returned when the store holds no categories.
	ErrNoCategories = fmt.Errorf("no categories: %w", ErrNotFound)
	// ErrPageNotFound is returned when a pagination window holds no questions.
	ErrPageNotFound = fmt.Errorf("page is empty: %w", ErrNotFound)
	// ErrQuestionNotFound is returned when a question id does not exist.
	ErrQuestionNotFound = fmt.Errorf("question not found: %w", ErrNotFound)
	// ErrEmptySearchTerm is returned when a search carries no term.
	ErrEmptySearchTerm = fmt.Errorf("search term is empty: %w", ErrNotFound)
	// ErrCategoryEmpty is returned when a category has no questions.
	ErrCategoryEmpty = fmt.Errorf("category has no questions: %w", ErrNotFound)
	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = fmt.Errorf("page must be 1 or greater: %w", ErrBadRequest)
	// ErrUnknownCategory is returned when a question references a category that does not exist.
	ErrUnknownCategory = fmt.Errorf("unknown category: %w", ErrUnprocessable)
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError reports invalid input fields. It is always Unprocessable.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Error)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrUnprocessable
}
