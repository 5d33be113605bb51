package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/tasktrack-api/internal/api/metrics"
	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/security"
)

// Authorize enforces role-based access control. It must run after
// Authenticate. An empty role set admits any authenticated principal.
func Authorize(required domain.RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := security.Authorize(PrincipalFrom(c), required)
			switch {
			case err == nil:
				metrics.AuthorizationTotal.WithLabelValues("allowed").Inc()
				return next(c)
			case errors.Is(err, domain.ErrUnauthenticated):
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			default:
				metrics.AuthorizationTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
		}
	}
}
