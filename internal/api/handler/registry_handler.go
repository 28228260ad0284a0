package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// RegistryHandler serves the role and bouquet reference data.
type RegistryHandler struct {
	registry     ports.RegistryService
	entitlements ports.EntitlementService
}

func NewRegistryHandler(registry ports.RegistryService, entitlements ports.EntitlementService) *RegistryHandler {
	return &RegistryHandler{registry: registry, entitlements: entitlements}
}

// ListBouquets handles GET /v1/bouquets.
//
// @Summary      List active bouquets, cheapest first
// @Tags         bouquets
// @Produce      json
// @Success      200  {array}   domain.Bouquet
// @Failure      500  {object}  errorResponse
// @Router       /v1/bouquets [get]
func (h *RegistryHandler) ListBouquets(c echo.Context) error {
	bouquets, err := h.registry.ListActiveBouquets(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bouquets)
}

// ListManagedBouquets handles GET /v1/admin/bouquets.
//
// @Summary      List active bouquets for administration
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Bouquet
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/bouquets [get]
func (h *RegistryHandler) ListManagedBouquets(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapAssignBouquets); err != nil {
		return err
	}
	return h.ListBouquets(c)
}

// CreateBouquet handles POST /v1/admin/bouquets.
//
// @Summary      Create a bouquet
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bouquetRequest  true  "Bouquet definition"
// @Success      201   {object}  domain.Bouquet
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/bouquets [post]
func (h *RegistryHandler) CreateBouquet(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapAssignBouquets); err != nil {
		return err
	}

	var req bouquetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	b, err := h.registry.CreateBouquet(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

// UpdateBouquet handles PUT /v1/admin/bouquets/:id.
//
// @Summary      Replace a bouquet definition
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Bouquet ID"
// @Param        body  body      bouquetRequest  true  "Bouquet definition"
// @Success      200   {object}  domain.Bouquet
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/admin/bouquets/{id} [put]
func (h *RegistryHandler) UpdateBouquet(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapAssignBouquets); err != nil {
		return err
	}

	var req bouquetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	b, err := h.registry.UpdateBouquet(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// DeleteBouquet handles DELETE /v1/admin/bouquets/:id. Bouquets still
// assigned to a profile are refused with 409.
//
// @Summary      Delete a bouquet
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Bouquet ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin/bouquets/{id} [delete]
func (h *RegistryHandler) DeleteBouquet(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapAssignBouquets); err != nil {
		return err
	}

	if err := h.registry.DeleteBouquet(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRoles handles GET /v1/admin/roles.
//
// @Summary      List active roles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/roles [get]
func (h *RegistryHandler) ListRoles(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapManageUsers); err != nil {
		return err
	}

	roles, err := h.registry.ListActiveRoles(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]*roleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, toRoleResponse(&roles[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateRole handles POST /v1/admin/roles.
//
// @Summary      Create a role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleRequest  true  "Role definition"
// @Success      201   {object}  roleResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/roles [post]
func (h *RegistryHandler) CreateRole(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapManageUsers); err != nil {
		return err
	}

	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.registry.CreateRole(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRoleResponse(role))
}

// UpdateRole handles PUT /v1/admin/roles/:id.
//
// @Summary      Replace a role definition
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Role ID"
// @Param        body  body      roleRequest  true  "Role definition"
// @Success      200   {object}  roleResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/roles/{id} [put]
func (h *RegistryHandler) UpdateRole(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapManageUsers); err != nil {
		return err
	}

	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.registry.UpdateRole(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// DeleteRole handles DELETE /v1/admin/roles/:id.
//
// @Summary      Delete a role
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Role ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin/roles/{id} [delete]
func (h *RegistryHandler) DeleteRole(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapManageUsers); err != nil {
		return err
	}

	if err := h.registry.DeleteRole(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
