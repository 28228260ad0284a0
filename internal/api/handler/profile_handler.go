package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/entitlement"
	"github.com/benesafe/registry/internal/core/ports"
)

type quotaCheck struct {
	kind     domain.RecordKind
	category domain.AssetCategory
}

// ProfileHandler serves the caller's own profile and entitlements.
type ProfileHandler struct {
	profiles     ports.ProfileService
	entitlements ports.EntitlementService
}

func NewProfileHandler(profiles ports.ProfileService, entitlements ports.EntitlementService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, entitlements: entitlements}
}

// Me handles GET /v1/me.
//
// @Summary      Current user's profile with role and bouquet
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, meResponse{
		Profile:        p.Profile,
		Role:           toRoleResponse(p.Role),
		Bouquet:        p.Bouquet,
		IsAdmin:        p.IsAdmin(),
		IsSuperAdmin:   p.IsSuperAdmin(),
		IsVerifier:     p.IsVerifier(),
		IsStandardUser: p.IsStandardUser(),
	})
}

// Entitlements handles GET /v1/me/entitlements. Usage is only reported when
// the caller has a bouquet.
//
// @Summary      Current user's capabilities, limits and quota usage
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entitlementsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/entitlements [get]
func (h *ProfileHandler) Entitlements(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	limits := entitlement.EffectiveLimits(p)
	resp := entitlementsResponse{
		Capabilities: []string{},
		HasBouquet:   limits.HasBouquet,
		Limits:       limits,
		Features:     make(map[string]bool),
		Usage:        []quotaResponse{},
	}
	if p.Role != nil {
		resp.Capabilities = p.Role.Capabilities.Names()
	}
	for _, f := range domain.Features() {
		resp.Features[f.String()] = h.entitlements.HasBouquetFeature(ctx, p, f.String())
	}

	if limits.HasBouquet {
		checks := []quotaCheck{{kind: domain.KindBeneficiary}, {kind: domain.KindDependent}}
		for _, cat := range domain.AssetCategories() {
			checks = append(checks, quotaCheck{kind: domain.KindAsset, category: cat})
		}

		for _, chk := range checks {
			d, err := h.entitlements.CheckQuota(ctx, p, chk.kind, chk.category)
			if err != nil {
				return err
			}
			resp.Usage = append(resp.Usage, quotaResponse{
				Kind:      d.Kind,
				Category:  d.Category,
				Limit:     d.Limit,
				Current:   d.Current,
				Remaining: d.Remaining,
				Allowed:   d.Allowed,
			})
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// ChangeBouquet handles PUT /v1/me/bouquet. Only standard users pick their
// own tier; staff tiers are assigned by an administrator.
//
// @Summary      Switch to another active bouquet
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changeBouquetRequest  true  "Target bouquet"
// @Success      200   {object}  domain.Profile
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/me/bouquet [put]
func (h *ProfileHandler) ChangeBouquet(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	if !entitlement.HasRoleType(p, domain.CategoryStandard) {
		return domain.ErrForbidden
	}

	var req changeBouquetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.AssignBouquet(c.Request().Context(), p.UserID(), req.BouquetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
