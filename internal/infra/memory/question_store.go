package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"trivia-service/internal/domain"
)

// Store is an in-memory implementation of app.QuestionRepository and app.CategoryRepository.
// Ids are assigned monotonically and never reused.
type Store struct {
	mu         sync.RWMutex
	nextID     int
	questions  map[int]domain.Question
	categories map[int]domain.Category
}

func NewStore(categories []domain.Category) *Store {
	s := &Store{
		nextID:     1,
		questions:  make(map[int]domain.Question),
		categories: make(map[int]domain.Category, len(categories)),
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return s
}

// NewDemoStore returns a store seeded with the default categories and a handful of questions.
func NewDemoStore() *Store {
	s := NewStore(DefaultCategories())
	for _, q := range demoQuestions() {
		// Seed data always references a default category.
		_, _ = s.Create(context.Background(), q)
	}
	return s
}

func (s *Store) Page(_ context.Context, w domain.Window) ([]domain.Question, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedLocked(nil)
	start, end := w.Bounds(len(all))
	return all[start:end], len(all), nil
}

func (s *Store) ListByCategory(_ context.Context, categoryID int) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(q domain.Question) bool { return q.Category == categoryID }), nil
}

func (s *Store) Search(_ context.Context, term string) ([]domain.Question, error) {
	needle := strings.ToLower(term)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(q domain.Question) bool {
		return strings.Contains(strings.ToLower(q.Question), needle)
	}), nil
}

func (s *Store) ListEligible(_ context.Context, exclude []int, categoryID int) ([]domain.Question, error) {
	seen := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		seen[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(q domain.Question) bool {
		if _, ok := seen[q.ID]; ok {
			return false
		}
		return categoryID == domain.AllCategories || q.Category == categoryID
	}), nil
}

func (s *Store) Create(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[q.Category]; !ok {
		return domain.Question{}, domain.ErrUnknownCategory
	}
	q.ID = s.nextID
	s.nextID++
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Ping always succeeds; it lets the store take part in health checks.
func (s *Store) Ping(context.Context) error {
	return nil
}

// sortedLocked returns matching questions ordered by id. keep == nil keeps everything.
func (s *Store) sortedLocked(keep func(domain.Question) bool) []domain.Question {
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if keep == nil || keep(q) {
			out = append(out, q)
		}
	}
	slices.SortFunc(out, func(a, b domain.Question) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// DefaultCategories mirrors the categories seeded by the Postgres migrations.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Type: "Science"},
		{ID: 2, Type: "Art"},
		{ID: 3, Type: "Geography"},
		{ID: 4, Type: "History"},
		{ID: 5, Type: "Entertainment"},
		{ID: 6, Type: "Sports"},
	}
}

func demoQuestions() []domain.Question {
	return []domain.Question{
		{Question: "What is the heaviest organ in the human body?", Answer: "The Liver", Difficulty: 4, Category: 1},
		{Question: "Who discovered penicillin?", Answer: "Alexander Fleming", Difficulty: 3, Category: 1},
		{Question: "Hematology is a branch of medicine involving the study of what?", Answer: "Blood", Difficulty: 4, Category: 1},
		{Question: "Which Dutch graphic artist, initials M C, was a creator of optical illusions?", Answer: "Escher", Difficulty: 1, Category: 2},
		{Question: "La Giaconda is better known as what?", Answer: "Mona Lisa", Difficulty: 3, Category: 2},
		{Question: "What is the largest lake in Africa?", Answer: "Lake Victoria", Difficulty: 2, Category: 3},
		{Question: "In which royal palace would you find the Hall of Mirrors?", Answer: "The Palace of Versailles", Difficulty: 3, Category: 3},
		{Question: "The Taj Mahal is located in which Indian city?", Answer: "Agra", Difficulty: 2, Category: 3},
		{Question: "Whose autobiography is entitled 'I Know Why the Caged Bird Sings'?", Answer: "Maya Angelou", Difficulty: 2, Category: 4},
		{Question: "Which dung beetle was worshipped by the ancient Egyptians?", Answer: "Scarab", Difficulty: 4, Category: 4},
		{Question: "What boxer's original name is Cassius Clay?", Answer: "Muhammad Ali", Difficulty: 1, Category: 4},
		{Question: "What movie earned Tom Hanks his third straight Oscar nomination, in 1996?", Answer: "Apollo 13", Difficulty: 4, Category: 5},
		{Question: "What actor did author Anne Rice first denounce, then praise in the role of her beloved Lestat?", Answer: "Tom Cruise", Difficulty: 4, Category: 5},
		{Question: "Which is the only team to play in every soccer World Cup tournament?", Answer: "Brazil", Difficulty: 3, Category: 6},
		{Question: "Which country won the first ever soccer World Cup in 1930?", Answer: "Uruguay", Difficulty: 4, Category: 6},
	}
}
