package http

import (
	"github.com/labstack/echo/v4"

	"trivia-service/internal/errs"
)

// ErrorHandler renders every error in the shared envelope and logs the original cause.
func ErrorHandler(err error, c echo.Context) {
	httpErr := errs.From(err)

	logger := GetLogger(c)
	event := logger.Warn()
	if httpErr.Status >= 500 {
		event = logger.Error().Stack()
	}
	event.Err(err).Int("status", httpErr.Status).Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}
	if c.Request().Method == echo.HEAD {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, httpErr)
}
