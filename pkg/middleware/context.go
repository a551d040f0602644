package middleware

import (
	"github.com/Ramsey-B/aster/pkg/context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderUserID is the header key for user ID
	HeaderUserID = "X-User-ID"
	// HeaderUserRole is the header key for user role
	HeaderUserRole = "X-User-Role"
)

func Context(authEnabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())

			// identity headers are only trusted when auth is disabled; with
			// auth enabled the Authentication middleware sets these instead
			if !authEnabled {
				ctx = context.SetUserID(ctx, req.Header.Get(HeaderUserID))
				ctx = context.SetUserRole(ctx, req.Header.Get(HeaderUserRole))
			}

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
