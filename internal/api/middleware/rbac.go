package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// ContextProfile holds the caller's *domain.ResolvedProfile.
const ContextProfile = "profile"

// ResolveProfile loads the authenticated user's role and bouquet once per
// request. It must run after Auth. Authorization decisions are left to the
// handlers.
func ResolveProfile(entitlements ports.EntitlementService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			profile, err := entitlements.Resolve(c.Request().Context(), userID)
			if err != nil {
				return fmt.Errorf("resolve profile: %w", err)
			}
			c.Set(ContextProfile, profile)

			return next(c)
		}
	}
}

// Profile returns the profile stored by ResolveProfile, or nil.
func Profile(c echo.Context) *domain.ResolvedProfile {
	p, _ := c.Get(ContextProfile).(*domain.ResolvedProfile)
	return p
}
