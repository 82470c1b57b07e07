package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoggerKey is the echo context key of the request's *zap.Logger.
const LoggerKey = "logger"

// LoggerFrom returns the logger RequestLogger attached to the request, or a
// no-op logger outside that middleware.
func LoggerFrom(c echo.Context) *zap.Logger {
	if l, ok := c.Get(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// RequestLogger writes one structured line per request and exposes its
// logger to handlers through LoggerFrom.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Set(LoggerKey, log)
			err := next(c)
			if err != nil {
				// let echo's error handler write the response before we read the status
				c.Error(err)
			}
			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("route", c.Path()),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("took", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			if s, ok := SessionFrom(c); ok {
				fields = append(fields, zap.Uint64("user_id", s.UserID))
			}
			if err != nil {
				log.Warn("request", append(fields, zap.Error(err))...)
			} else {
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
