package domain

import "math"

// QuestionsPerPage is the fixed pagination window size.
const QuestionsPerPage = 10

// Window is a 1-based page over an id-ordered collection.
type Window struct {
	Page int
	Size int
}

// maxPage is the last page whose offset still fits in an int.
const maxPage = math.MaxInt/QuestionsPerPage + 1

// NewWindow returns the window for page, rejecting pages below 1.
// Pages whose offset would overflow can never hold questions and report ErrPageNotFound.
func NewWindow(page int) (Window, error) {
	if page < 1 {
		return Window{}, ErrInvalidPage
	}
	if page > maxPage {
		return Window{}, ErrPageNotFound
	}
	return Window{Page: page, Size: QuestionsPerPage}, nil
}

// FirstPage is the window every mutation echoes back.
func FirstPage() Window {
	return Window{Page: 1, Size: QuestionsPerPage}
}

// Offset is the index of the first element inside the window.
func (w Window) Offset() int {
	return (w.Page - 1) * w.Size
}

// Limit is the maximum number of elements inside the window.
func (w Window) Limit() int {
	return w.Size
}

// Bounds clamps [Offset, Offset+Size) to a collection of n elements,
// so the result can be used directly as slice bounds.
func (w Window) Bounds(n int) (start, end int) {
	start = w.Offset()
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end = start + w.Size
	if end > n || end < start {
		end = n
	}
	return start, end
}
