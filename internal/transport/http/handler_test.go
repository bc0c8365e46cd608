package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
	"trivia-service/internal/metrics"
)

func TestListCategories(t *testing.T) {
	e, _ := newTestRouter(t, 0)

	rec := do(e, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(6), body["total_categories"])
	assert.Equal(t, map[string]any{
		"1": "Science", "2": "Art", "3": "Geography", "4": "History", "5": "Entertainment", "6": "Sports",
	}, body["categories"])
}

func TestListQuestionsPaginates(t *testing.T) {
	e, _ := newTestRouter(t, 12)

	rec := do(e, http.MethodGet, "/questions?page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(12), body["total_questions"])
	assert.Nil(t, body["current_category"])
	assert.Contains(t, body, "current_category")
	assert.Equal(t, []float64{11, 12}, questionIDs(t, body))
	assert.Len(t, body["categories"], 6)

	rec = do(e, http.MethodGet, "/questions?page=abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, questionIDs(t, decode(t, rec)), 10)

	assertEnvelope(t, do(e, http.MethodGet, "/questions?page=3", ""), http.StatusNotFound, "resource not found")
	assertEnvelope(t, do(e, http.MethodGet, "/questions?page=0", ""), http.StatusBadRequest, "bad request")
}

func TestListQuestionsHugePageIsNotFound(t *testing.T) {
	e, _ := newTestRouter(t, 12)

	for _, page := range []string{"9223372036854775807", "1000000000000000000", "922337203685477581"} {
		assertEnvelope(t, do(e, http.MethodGet, "/questions?page="+page, ""), http.StatusNotFound, "resource not found")
	}
}

func TestDeleteQuestion(t *testing.T) {
	e, _ := newTestRouter(t, 12)

	rec := do(e, http.MethodDelete, "/questions/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(3), body["deleted"])
	assert.Equal(t, float64(11), body["total_questions"])
	assert.NotContains(t, questionIDs(t, body), float64(3))

	assertEnvelope(t, do(e, http.MethodDelete, "/questions/3", ""), http.StatusNotFound, "resource not found")
	assertEnvelope(t, do(e, http.MethodDelete, "/questions/abc", ""), http.StatusNotFound, "resource not found")
}

func TestCreateQuestion(t *testing.T) {
	e, _ := newTestRouter(t, 0)

	rec := do(e, http.MethodPost, "/questions", `{"question":"What is 2+2?","answer":"4","difficulty":1,"category":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["created"])
	assert.Equal(t, float64(1), body["total_questions"])

	rec = do(e, http.MethodPost, "/questions", `{"question":"","answer":"4","difficulty":1,"category":1}`)
	assertEnvelope(t, rec, http.StatusUnprocessableEntity, "unprocessable")
	fields := decode(t, rec)["errors"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "question", fields[0].(map[string]any)["field"])

	assertEnvelope(t, do(e, http.MethodPost, "/questions", `{"question":"q","answer":"a","difficulty":1,"category":99}`),
		http.StatusUnprocessableEntity, "unprocessable")
	assertEnvelope(t, do(e, http.MethodPost, "/questions", `{"question":`), http.StatusBadRequest, "bad request")

	rec = do(e, http.MethodGet, "/questions", "")
	assert.Equal(t, float64(1), decode(t, rec)["total_questions"])
}

func TestSearchQuestions(t *testing.T) {
	e, store := newTestRouter(t, 0)
	for _, text := range []string{"What is the title?", "Unrelated", "TITLE case"} {
		_, err := store.Create(context.Background(), domain.Question{Question: text, Answer: "a", Difficulty: 1, Category: 2})
		require.NoError(t, err)
	}

	rec := do(e, http.MethodPost, "/questions/search", `{"searchTerm":"title"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []float64{1, 3}, questionIDs(t, body))
	assert.Equal(t, float64(2), body["total_questions"])
	assert.Nil(t, body["current_category"])

	rec = do(e, http.MethodPost, "/questions/search", `{"searchTerm":"nothing matches"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, questionIDs(t, decode(t, rec)))

	assertEnvelope(t, do(e, http.MethodPost, "/questions/search", `{"searchTerm":""}`), http.StatusNotFound, "resource not found")
	assertEnvelope(t, do(e, http.MethodPost, "/questions/search", `{}`), http.StatusNotFound, "resource not found")
	assertEnvelope(t, do(e, http.MethodPost, "/questions/search", `not json`), http.StatusBadRequest, "bad request")
}

func TestQuestionsByCategory(t *testing.T) {
	e, _ := newTestRouter(t, 12)

	rec := do(e, http.MethodGet, "/categories/3/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []float64{1, 2}, questionIDs(t, body))
	assert.Equal(t, float64(3), body["current_category"])
	assert.Equal(t, float64(2), body["total_questions"])

	assertEnvelope(t, do(e, http.MethodGet, "/categories/6/questions", ""), http.StatusNotFound, "resource not found")
	assertEnvelope(t, do(e, http.MethodGet, "/categories/abc/questions", ""), http.StatusNotFound, "resource not found")
}

func TestNextQuizQuestion(t *testing.T) {
	e, _ := newTestRouter(t, 12)

	rec := do(e, http.MethodPost, "/quizzes", `{"previous_questions":[1],"quiz_category":{"id":3,"type":"Geography"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	question := decode(t, rec)["question"].(map[string]any)
	assert.Equal(t, float64(2), question["id"])

	rec = do(e, http.MethodPost, "/quizzes", `{"previous_questions":[],"quiz_category":{"id":"3"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["question"].(map[string]any)["category"])

	rec = do(e, http.MethodPost, "/quizzes", `{"previous_questions":[1,2,3,4,5,6,7,8,9,10,11,12],"quiz_category":{"id":3}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "question")
	assert.Nil(t, body["question"])

	assertEnvelope(t, do(e, http.MethodPost, "/quizzes", `{"quiz_category":{"id":0}}`), http.StatusUnprocessableEntity, "unprocessable")
	assertEnvelope(t, do(e, http.MethodPost, "/quizzes", `{"previous_questions":[]}`), http.StatusUnprocessableEntity, "unprocessable")
	assertEnvelope(t, do(e, http.MethodPost, "/quizzes", `{"previous_questions":`), http.StatusUnprocessableEntity, "unprocessable")
}

func TestQuizRequiresCategoryID(t *testing.T) {
	e, _ := newTestRouter(t, 12)

	for _, body := range []string{
		`{"previous_questions":[],"quiz_category":{}}`,
		`{"previous_questions":[],"quiz_category":{"id":null}}`,
		`{"previous_questions":[],"quiz_category":{"type":"Science"}}`,
	} {
		rec := do(e, http.MethodPost, "/quizzes", body)
		assertEnvelope(t, rec, http.StatusUnprocessableEntity, "unprocessable")
		assert.Contains(t, rec.Body.String(), `"id"`, body)
	}
}

func TestQuizIgnoresOutOfRangePreviousIDs(t *testing.T) {
	e, _ := newTestRouter(t, 12)

	rec := do(e, http.MethodPost, "/quizzes", `{"previous_questions":[9999999999,1],"quiz_category":{"id":3}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["question"].(map[string]any)["id"])
}

func TestQuizWithAllCategoriesPicksFromEverything(t *testing.T) {
	store := memory.NewStore(memory.DefaultCategories())
	for i := 0; i < 3; i++ {
		_, err := store.Create(context.Background(), domain.Question{Question: "q", Answer: "a", Difficulty: 1, Category: i + 1})
		require.NoError(t, err)
	}
	service := app.NewTriviaServiceWithPicker(store, store, func(n int) int { return n - 1 })
	e := NewRouter(RouterConfig{Service: service, Logger: zerolog.Nop(), AllowedOrigins: []string{"*"}})

	rec := do(e, http.MethodPost, "/quizzes", `{"previous_questions":[1],"quiz_category":{"id":0,"type":"click"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["question"].(map[string]any)["id"])
}

func TestErrorsCarryCORSAndRequestID(t *testing.T) {
	e, _ := newTestRouter(t, 0)

	for _, rec := range []*httptest.ResponseRecorder{
		do(e, http.MethodGet, "/questions", ""),
		do(e, http.MethodGet, "/nowhere", ""),
		do(e, http.MethodPost, "/questions", `{}`),
	} {
		assert.Equal(t, "Content-Type,Authorization,true", rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
		assert.Equal(t, "GET,PUT,POST,DELETE,OPTIONS", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		assert.False(t, decode(t, rec)["success"].(bool))
	}

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestUnknownRouteAndMethodUseEnvelope(t *testing.T) {
	e, _ := newTestRouter(t, 0)

	assertEnvelope(t, do(e, http.MethodGet, "/nowhere", ""), http.StatusNotFound, "resource not found")
	assertEnvelope(t, do(e, http.MethodPatch, "/categories", ""), http.StatusMethodNotAllowed, "method not allowed")
}

func TestHealthz(t *testing.T) {
	store := memory.NewStore(memory.DefaultCategories())
	service := app.NewTriviaService(store, store)

	e := NewRouter(RouterConfig{
		Service: service, Logger: zerolog.Nop(), AllowedOrigins: []string{"*"}, Env: "test",
		HealthChecks: map[string]HealthCheck{"database": store.Ping},
	})
	rec := do(e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	e = NewRouter(RouterConfig{
		Service: service, Logger: zerolog.Nop(), AllowedOrigins: []string{"*"}, Env: "test",
		HealthChecks: map[string]HealthCheck{
			"database": store.Ping,
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		},
	})
	rec = do(e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "unhealthy", body["status"])
	redis := body["checks"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "connection refused", redis["error"])
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	store := memory.NewStore(memory.DefaultCategories())
	m := metrics.New(prometheus.NewRegistry())
	e := NewRouter(RouterConfig{
		Service: app.NewTriviaService(store, store), Logger: zerolog.Nop(), Metrics: m, AllowedOrigins: []string{"*"},
	})

	do(e, http.MethodGet, "/categories", "")
	do(e, http.MethodGet, "/questions", "")

	rec := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trivia_http_requests_total{method="GET",route="/categories",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `trivia_http_requests_total{method="GET",route="/questions",status="404"} 1`)
}

// newTestRouter seeds n questions with ids 1..n; ids 1 and 2 are in category 3, the rest in category 1.
func newTestRouter(t *testing.T, n int) (*echo.Echo, *memory.Store) {
	t.Helper()
	store := memory.NewStore(memory.DefaultCategories())
	for i := 1; i <= n; i++ {
		category := 1
		if i <= 2 {
			category = 3
		}
		_, err := store.Create(context.Background(), domain.Question{Question: "question", Answer: "answer", Difficulty: 2, Category: category})
		require.NoError(t, err)
	}
	e := NewRouter(RouterConfig{
		Service:        app.NewTriviaService(store, store),
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"*"},
		Env:            "test",
	})
	return e, store
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

func questionIDs(t *testing.T, body map[string]any) []float64 {
	t.Helper()
	raw, ok := body["questions"].([]any)
	require.True(t, ok, "questions missing: %v", body)
	ids := make([]float64, 0, len(raw))
	for _, q := range raw {
		ids = append(ids, q.(map[string]any)["id"].(float64))
	}
	return ids
}

func assertEnvelope(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, rec.Code, "body: %s", rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(status), body["error"])
	assert.Equal(t, message, body["message"])
}
