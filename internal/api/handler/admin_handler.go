package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// AdminHandler serves user administration and the verification queue.
type AdminHandler struct {
	profiles     ports.ProfileService
	entitlements ports.EntitlementService
}

func NewAdminHandler(profiles ports.ProfileService, entitlements ports.EntitlementService) *AdminHandler {
	return &AdminHandler{profiles: profiles, entitlements: entitlements}
}

// ListUsers handles GET /v1/admin/users.
//
// @Summary      List users with their profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search      query     string  false  "Username, email or name fragment"
// @Param        role_id     query     string  false  "Filter by role"
// @Param        bouquet_id  query     string  false  "Filter by bouquet"
// @Param        page        query     int     false  "Page (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  userListResponse
// @Failure      400         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Router       /v1/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapManageUsers); err != nil {
		return err
	}

	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	res, err := h.profiles.List(c.Request().Context(), ports.ListProfilesInput{
		Search:    c.QueryParam("search"),
		RoleID:    c.QueryParam("role_id"),
		BouquetID: c.QueryParam("bouquet_id"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userListResponse{
		Items:      toUserSummaries(res.Items),
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// AssignRole handles PUT /v1/admin/users/:user_id/role.
//
// @Summary      Assign a role to a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string             true  "User ID"
// @Param        body     body      assignRoleRequest  true  "Role"
// @Success      200      {object}  domain.Profile
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/admin/users/{user_id}/role [put]
func (h *AdminHandler) AssignRole(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapManageUsers); err != nil {
		return err
	}

	var req assignRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.AssignRole(c.Request().Context(), c.Param("user_id"), req.RoleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// AssignBouquet handles PUT /v1/admin/users/:user_id/bouquet.
//
// @Summary      Assign a bouquet to a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string                true  "User ID"
// @Param        body     body      assignBouquetRequest  true  "Bouquet"
// @Success      200      {object}  domain.Profile
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/admin/users/{user_id}/bouquet [put]
func (h *AdminHandler) AssignBouquet(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements, domain.CapAssignBouquets); err != nil {
		return err
	}

	var req assignBouquetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.AssignBouquet(c.Request().Context(), c.Param("user_id"), req.BouquetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// ListVerifications handles GET /v1/admin/verifications.
//
// @Summary      Pending verification queue, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userSummaryResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/verifications [get]
func (h *AdminHandler) ListVerifications(c echo.Context) error {
	if _, err := requireCapability(c, h.entitlements,
		domain.CapManageVerification, domain.CapViewPendingVerifications); err != nil {
		return err
	}

	pending, err := h.profiles.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserSummaries(pending))
}

// Review handles POST /v1/admin/verifications/:user_id.
//
// @Summary      Approve or reject a pending profile
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string         true  "User ID"
// @Param        body     body      reviewRequest  true  "Decision"
// @Success      200      {object}  domain.Profile
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/admin/verifications/{user_id} [post]
func (h *AdminHandler) Review(c echo.Context) error {
	verifier, err := requireCapability(c, h.entitlements,
		domain.CapApproveDocuments, domain.CapReviewApprove)
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.Review(c.Request().Context(), c.Param("user_id"), verifier.UserID(), req.Decision == "approve")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
