package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/validation"
)

// Handler exposes the trivia use cases over JSON.
type Handler struct {
	service *app.TriviaService
	binder  echo.DefaultBinder
}

func NewHandler(service *app.TriviaService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.service.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{
		Success:         true,
		Categories:      domain.CategoryTypes(categories),
		TotalCategories: len(categories),
	})
}

func (h *Handler) ListQuestions(c echo.Context) error {
	page, categories, err := h.service.ListQuestions(c.Request().Context(), pageParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, questionListResponse{
		Success:        true,
		Questions:      page.Questions,
		TotalQuestions: page.Total,
		Categories:     domain.CategoryTypes(categories),
	})
}

func (h *Handler) DeleteQuestion(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	page, err := h.service.DeleteQuestion(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{
		Success:        true,
		Deleted:        id,
		Questions:      page.Questions,
		TotalQuestions: page.Total,
	})
}

func (h *Handler) CreateQuestion(c echo.Context) error {
	var in domain.QuestionInput
	if err := h.binder.BindBody(c, &in); err != nil {
		return domain.ErrBadRequest
	}
	created, page, err := h.service.CreateQuestion(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, createdResponse{
		Success:        true,
		Created:        created.ID,
		Questions:      page.Questions,
		TotalQuestions: page.Total,
	})
}

func (h *Handler) SearchQuestions(c echo.Context) error {
	var req searchRequest
	if err := h.binder.BindBody(c, &req); err != nil {
		return domain.ErrBadRequest
	}
	questions, err := h.service.SearchQuestions(c.Request().Context(), req.SearchTerm)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, questionMatchResponse{
		Success:        true,
		Questions:      questions,
		TotalQuestions: len(questions),
	})
}

func (h *Handler) QuestionsByCategory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	questions, err := h.service.QuestionsByCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, questionMatchResponse{
		Success:         true,
		Questions:       questions,
		TotalQuestions:  len(questions),
		CurrentCategory: &id,
	})
}

func (h *Handler) NextQuizQuestion(c echo.Context) error {
	var req quizRequest
	if err := h.binder.BindBody(c, &req); err != nil {
		return domain.ErrUnprocessable
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	question, err := h.service.NextQuizQuestion(c.Request().Context(), req.query())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quizResponse{Success: true, Question: question})
}

// pageParam treats a missing or non-numeric page as the first page.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		return 1
	}
	return page
}

// idParam rejects non-integer ids as an unmatched route.
func idParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, domain.ErrNotFound
	}
	return id, nil
}
