package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"trivia-service/internal/domain"
)

type searchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

type quizRequest struct {
	PreviousQuestions []int         `json:"previous_questions" validate:"required"`
	QuizCategory      *quizCategory `json:"quiz_category" validate:"required"`
}

// quizCategory.ID is a pointer so a missing or null id is rejected rather than read as AllCategories.
type quizCategory struct {
	ID   *categoryID `json:"id" validate:"required"`
	Type string      `json:"type"`
}

// categoryID accepts both 3 and "3"; browser clients key categories by their object keys.
type categoryID int

func (id *categoryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("category id %q is not a number", s)
		}
		*id = categoryID(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = categoryID(n)
	return nil
}

func (r quizRequest) query() domain.QuizQuery {
	return domain.QuizQuery{
		PreviousQuestions: r.PreviousQuestions,
		CategoryID:        int(*r.QuizCategory.ID),
	}
}

type categoriesResponse struct {
	Success         bool           `json:"success"`
	Categories      map[int]string `json:"categories"`
	TotalCategories int            `json:"total_categories"`
}

type questionListResponse struct {
	Success         bool              `json:"success"`
	Questions       []domain.Question `json:"questions"`
	TotalQuestions  int               `json:"total_questions"`
	Categories      map[int]string    `json:"categories"`
	CurrentCategory *int              `json:"current_category"`
}

type questionMatchResponse struct {
	Success         bool              `json:"success"`
	Questions       []domain.Question `json:"questions"`
	TotalQuestions  int               `json:"total_questions"`
	CurrentCategory *int              `json:"current_category"`
}

type deletedResponse struct {
	Success        bool              `json:"success"`
	Deleted        int               `json:"deleted"`
	Questions      []domain.Question `json:"questions"`
	TotalQuestions int               `json:"total_questions"`
}

type createdResponse struct {
	Success        bool              `json:"success"`
	Created        int               `json:"created"`
	Questions      []domain.Question `json:"questions"`
	TotalQuestions int               `json:"total_questions"`
}

type quizResponse struct {
	Success  bool             `json:"success"`
	Question *domain.Question `json:"question"`
}
