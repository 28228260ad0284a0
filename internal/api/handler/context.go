package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/api/middleware"
	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// ctxUserID returns the subject injected by the Auth middleware. An empty
// subject means the route was mounted without authentication.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// ctxProfile returns the profile resolved by the ResolveProfile middleware.
func ctxProfile(c echo.Context) (*domain.ResolvedProfile, error) {
	p := middleware.Profile(c)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// requireCapability returns the caller's profile when it holds at least one
// of caps, and domain.ErrForbidden otherwise.
func requireCapability(c echo.Context, entitlements ports.EntitlementService, caps ...domain.Capability) (*domain.ResolvedProfile, error) {
	p, err := ctxProfile(c)
	if err != nil {
		return nil, err
	}
	if !entitlements.HasAnyCapability(c.Request().Context(), p, caps...) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
