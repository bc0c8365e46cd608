package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"trivia-service/internal/errs"
	"trivia-service/internal/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	loggerKey    = "logger"
)

var (
	corsAllowHeaders = []string{echo.HeaderContentType, echo.HeaderAuthorization, "true"}
	corsAllowMethods = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"}
)

// RequestID reuses an incoming X-Request-ID or generates one, and echoes it on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Set(requestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)
			return next(c)
		}
	}
}

func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// ContextLogger stores a request-scoped child of base in the echo context
// and in the request context, so zerolog.Ctx works below the transport layer.
func ContextLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := base.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("route", c.Path()).
				Str("ip", c.RealIP()).
				Logger()
			c.Set(loggerKey, &l)
			c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
			return next(c)
		}
	}
}

// GetLogger returns the request-scoped logger, or a no-op logger if ContextLogger did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(loggerKey).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

// CORSHeaders stamps the allow-headers and allow-methods headers before the handler runs,
// so error responses written later by the error handler carry them too.
func CORSHeaders() echo.MiddlewareFunc {
	headers := strings.Join(corsAllowHeaders, ",")
	methods := strings.Join(corsAllowMethods, ",")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowHeaders, headers)
			h.Set(echo.HeaderAccessControlAllowMethods, methods)
			return next(c)
		}
	}
}

// CORS answers preflight requests and sets the allowed origin.
func CORS(origins []string) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: corsAllowHeaders,
		AllowMethods: corsAllowMethods,
	})
}

// Metrics records count, latency and in-flight requests per route.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(statusOf(c, err))).Inc()
			return err
		}
	}
}

// RequestLogger writes one access log line per request, leveled by status.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogMethod:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler has not written the response yet when a handler fails.
			status := v.Status
			if v.Error != nil {
				status = statusOf(c, v.Error)
			}

			logger := GetLogger(c)
			var e *zerolog.Event
			switch {
			case status >= 500:
				e = logger.Error().Err(v.Error)
			case status >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}
			e.
				Dur("latency", v.Latency).
				Int("status", status).
				Str("uri", v.URI).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")
			return nil
		},
	})
}

// Recover turns handler panics into 500 responses.
func Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func statusOf(c echo.Context, err error) int {
	if err != nil {
		return errs.From(err).Status
	}
	return c.Response().Status
}
