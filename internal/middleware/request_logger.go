package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// リクエストを1行ずつ記録する（RequestIDの後に置く）
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				//echoのエラーハンドラでステータスを確定させる
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			userID, _ := c.Get(CtxUserIDKey).(string)
			if userID == "" {
				userID = "anonymous"
			}

			ev := log.Info()
			if res.Status >= 500 {
				ev = log.Error().Err(err)
			}
			ev.Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("user_id", userID).
				Str("method", req.Method).
				Str("path", c.Path()).
				Str("url", req.URL.String()).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Msg("request completed")
			return nil
		}
	}
}
