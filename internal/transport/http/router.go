package http

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"trivia-service/internal/app"
	"trivia-service/internal/metrics"
)

type RouterConfig struct {
	Service        *app.TriviaService
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Env            string
	HealthChecks   map[string]HealthCheck
}

// NewRouter wires middleware and routes onto a fresh echo instance.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(
		Recover(),
		RequestID(),
		ContextLogger(cfg.Logger),
		CORSHeaders(),
		CORS(cfg.AllowedOrigins),
		RequestLogger(),
	)
	if cfg.Metrics != nil {
		e.Use(Metrics(cfg.Metrics))
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics.Handler()))
	}

	health := NewHealthHandler(cfg.Env, cfg.HealthChecks)
	e.GET("/healthz", health.CheckHealth)

	h := NewHandler(cfg.Service)
	e.GET("/categories", h.ListCategories)
	e.GET("/categories/:id/questions", h.QuestionsByCategory)
	e.GET("/questions", h.ListQuestions)
	e.POST("/questions", h.CreateQuestion)
	e.POST("/questions/search", h.SearchQuestions)
	e.DELETE("/questions/:id", h.DeleteQuestion)
	e.POST("/quizzes", h.NextQuizQuestion)

	return e
}
