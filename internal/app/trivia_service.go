package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"trivia-service/internal/domain"
	"trivia-service/internal/validation"
)

// QuestionRepository abstracts where questions live (Postgres, in-memory).
type QuestionRepository interface {
	// Page returns the id-ordered questions inside w and the total number of questions.
	Page(ctx context.Context, w domain.Window) ([]domain.Question, int, error)
	ListByCategory(ctx context.Context, categoryID int) ([]domain.Question, error)
	// Search matches term case-insensitively as a literal substring of the question text.
	Search(ctx context.Context, term string) ([]domain.Question, error)
	// ListEligible returns questions not in exclude, limited to categoryID unless it is domain.AllCategories.
	ListEligible(ctx context.Context, exclude []int, categoryID int) ([]domain.Question, error)
	Create(ctx context.Context, q domain.Question) (domain.Question, error)
	// Delete removes the question atomically; it returns domain.ErrQuestionNotFound if nothing was removed.
	Delete(ctx context.Context, id int) error
}

// CategoryRepository loads the read-only category list (store or cache).
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// TriviaService contains the trivia use cases.
type TriviaService struct {
	questions  QuestionRepository
	categories CategoryRepository
	pick       func(n int) int
}

func NewTriviaService(questions QuestionRepository, categories CategoryRepository) *TriviaService {
	return NewTriviaServiceWithPicker(questions, categories, rand.Intn)
}

// NewTriviaServiceWithPicker is test-only for deterministic quiz selection.
// pick must return a value in [0, n).
func NewTriviaServiceWithPicker(questions QuestionRepository, categories CategoryRepository, pick func(n int) int) *TriviaService {
	return &TriviaService{questions: questions, categories: categories, pick: pick}
}

// ListCategories returns every category ordered by id.
func (s *TriviaService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, domain.ErrNoCategories
	}
	return categories, nil
}

// ListQuestions returns one page of questions along with all categories.
func (s *TriviaService) ListQuestions(ctx context.Context, page int) (domain.QuestionPage, []domain.Category, error) {
	w, err := domain.NewWindow(page)
	if err != nil {
		return domain.QuestionPage{}, nil, err
	}
	questions, total, err := s.questions.Page(ctx, w)
	if err != nil {
		return domain.QuestionPage{}, nil, fmt.Errorf("page questions: %w", err)
	}
	if len(questions) == 0 {
		return domain.QuestionPage{}, nil, domain.ErrPageNotFound
	}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return domain.QuestionPage{}, nil, fmt.Errorf("list categories: %w", err)
	}
	return domain.QuestionPage{Questions: questions, Total: total}, categories, nil
}

// DeleteQuestion removes a question and returns the first page of what remains.
func (s *TriviaService) DeleteQuestion(ctx context.Context, id int) (domain.QuestionPage, error) {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.QuestionPage{}, err
		}
		return domain.QuestionPage{}, unprocessable("delete question", err)
	}
	page, err := s.firstPage(ctx)
	if err != nil {
		return domain.QuestionPage{}, unprocessable("delete question", err)
	}
	return page, nil
}

// CreateQuestion validates and stores a new question, returning it with the first page.
func (s *TriviaService) CreateQuestion(ctx context.Context, in domain.QuestionInput) (domain.Question, domain.QuestionPage, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Question{}, domain.QuestionPage{}, err
	}
	created, err := s.questions.Create(ctx, domain.Question{
		Question:   in.Question,
		Answer:     in.Answer,
		Difficulty: in.Difficulty,
		Category:   in.Category,
	})
	if err != nil {
		return domain.Question{}, domain.QuestionPage{}, unprocessable("create question", err)
	}
	page, err := s.firstPage(ctx)
	if err != nil {
		return domain.Question{}, domain.QuestionPage{}, unprocessable("create question", err)
	}
	return created, page, nil
}

// SearchQuestions returns every question whose text contains term. No match is an empty result.
func (s *TriviaService) SearchQuestions(ctx context.Context, term string) ([]domain.Question, error) {
	if term == "" {
		return nil, domain.ErrEmptySearchTerm
	}
	questions, err := s.questions.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return questions, nil
}

// QuestionsByCategory returns every question in a category.
func (s *TriviaService) QuestionsByCategory(ctx context.Context, categoryID int) ([]domain.Question, error) {
	questions, err := s.questions.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrCategoryEmpty
	}
	return questions, nil
}

// NextQuizQuestion picks a random question not yet seen. A nil question means the quiz is exhausted.
func (s *TriviaService) NextQuizQuestion(ctx context.Context, q domain.QuizQuery) (*domain.Question, error) {
	eligible, err := s.questions.ListEligible(ctx, q.PreviousQuestions, q.CategoryID)
	if err != nil {
		return nil, unprocessable("next quiz question", err)
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	picked := eligible[s.pick(len(eligible))]
	return &picked, nil
}

func (s *TriviaService) firstPage(ctx context.Context) (domain.QuestionPage, error) {
	questions, total, err := s.questions.Page(ctx, domain.FirstPage())
	if err != nil {
		return domain.QuestionPage{}, err
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return domain.QuestionPage{Questions: questions, Total: total}, nil
}

// unprocessable tags a persistence failure as Unprocessable unless it already carries that kind.
func unprocessable(op string, err error) error {
	if errors.Is(err, domain.ErrUnprocessable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnprocessable, err)
}
