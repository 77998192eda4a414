package middleware

import "github.com/labstack/echo/v4"

// SessionContextKey is the echo context key under which the authenticated
// session is stored by the auth middlewares.
const SessionContextKey = "session"

// Session is the identity attached to a request by an auth middleware.
// Email is the stable identifier: every record ownership check compares
// a stored user_id against it with exact string equality.
type Session struct {
	Email string
	Name  string
	Image string
}

// SessionFromContext returns the session set by an auth middleware, or nil
// when the request carries no authenticated session.
func SessionFromContext(c echo.Context) *Session {
	sess, _ := c.Get(SessionContextKey).(*Session)
	return sess
}
