package domain

// Category groups questions. Categories are read-only through the API.
type Category struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Question is a single trivia question owned by the store.
type Question struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty int    `json:"difficulty"`
	Category   int    `json:"category"`
}

// QuestionInput carries the fields a client supplies when creating a question.
// Zero values are rejected, so a difficulty or category of 0 never validates.
type QuestionInput struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Difficulty int    `json:"difficulty" validate:"required,min=1,max=5"`
	Category   int    `json:"category" validate:"required,min=1"`
}

// QuestionPage is one pagination window of questions plus the grand total.
type QuestionPage struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total_questions"`
}

// QuizQuery describes which question the client wants next. CategoryID 0 means all categories.
type QuizQuery struct {
	PreviousQuestions []int
	CategoryID        int
}

// AllCategories is the quiz category id meaning "no category filter".
const AllCategories = 0

// CategoryTypes renders categories as the id -> type object clients expect.
func CategoryTypes(categories []Category) map[int]string {
	out := make(map[int]string, len(categories))
	for _, c := range categories {
		out[c.ID] = c.Type
	}
	return out
}
