package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/benesafe/registry/internal/core/domain"
)

func blueBouquet() *domain.Bouquet {
	return &domain.Bouquet{
		ID:                   "b-blue",
		Name:                 "blue",
		Price:                10000,
		MaxAssetsPerCategory: 3,
		MaxDependents:        1,
		MaxBeneficiaries:     3,
		CanExportReports:     true,
		Active:               true,
	}
}

func TestProfileHandler_Me(t *testing.T) {
	handler := NewProfileHandler(&stubProfileService{}, &evaluatorEntitlements{})

	c, rec := newTestContext(http.MethodGet, "/v1/me", "")
	asUser(c, standardProfile(blueBouquet()))

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	mustStatus(t, rec, http.StatusOK)

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.IsStandardUser || resp.IsAdmin || resp.IsSuperAdmin || resp.IsVerifier {
		t.Fatalf("unexpected role flags: %+v", resp)
	}
	if resp.Bouquet == nil || resp.Bouquet.Name != "blue" {
		t.Fatalf("expected blue bouquet, got %+v", resp.Bouquet)
	}
}

func TestProfileHandler_Entitlements_ReportsUsage(t *testing.T) {
	ents := &evaluatorEntitlements{usage: map[string]int{
		"beneficiary/":           3,
		"asset/bank_account":     1,
		"dependent/":             0,
		"asset/treasury_bond":    3,
		"asset/village_banking":  0,
		"asset/unknown_category": 9,
	}}
	handler := NewProfileHandler(&stubProfileService{}, ents)

	c, rec := newTestContext(http.MethodGet, "/v1/me/entitlements", "")
	asUser(c, standardProfile(blueBouquet()))

	if err := handler.Entitlements(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	mustStatus(t, rec, http.StatusOK)

	var resp entitlementsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.HasBouquet || resp.Limits.Beneficiaries != 3 || !resp.Limits.CanExportReports {
		t.Fatalf("unexpected limits: %+v", resp)
	}
	if !resp.Features["can_export_reports"] || resp.Features["can_manage_businesses"] {
		t.Fatalf("unexpected features: %v", resp.Features)
	}
	if len(resp.Features) != len(domain.Features()) {
		t.Fatalf("expected every feature reported, got %v", resp.Features)
	}
	if len(resp.Usage) != 2+len(domain.AssetCategories()) {
		t.Fatalf("expected usage for every kind and category, got %d rows", len(resp.Usage))
	}

	byKey := map[string]quotaResponse{}
	for _, u := range resp.Usage {
		byKey[string(u.Kind)+"/"+string(u.Category)] = u
	}
	if b := byKey["beneficiary/"]; b.Allowed || b.Remaining != 0 {
		t.Fatalf("beneficiaries at limit must be refused: %+v", b)
	}
	if a := byKey["asset/bank_account"]; !a.Allowed || a.Remaining != 2 {
		t.Fatalf("unexpected bank account usage: %+v", a)
	}
	if a := byKey["asset/treasury_bond"]; a.Allowed {
		t.Fatalf("treasury bonds at limit must be refused: %+v", a)
	}
}

func TestProfileHandler_Entitlements_NoBouquet(t *testing.T) {
	handler := NewProfileHandler(&stubProfileService{}, &evaluatorEntitlements{})

	c, rec := newTestContext(http.MethodGet, "/v1/me/entitlements", "")
	asUser(c, &domain.ResolvedProfile{Profile: domain.Profile{UserID: "ghost"}})

	if err := handler.Entitlements(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp entitlementsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.HasBouquet || len(resp.Usage) != 0 || len(resp.Capabilities) != 0 {
		t.Fatalf("expected lowest privilege, got %+v", resp)
	}
	for name, ok := range resp.Features {
		if ok {
			t.Fatalf("feature %s granted without a bouquet", name)
		}
	}
}

func TestProfileHandler_ChangeBouquet(t *testing.T) {
	profiles := &stubProfileService{
		assignBouquetFn: func(ctx context.Context, userID, bouquetID string) (*domain.Profile, error) {
			if userID != "user-1" || bouquetID != "b-gold" {
				t.Fatalf("unexpected args %s %s", userID, bouquetID)
			}
			return &domain.Profile{UserID: userID, BouquetID: &bouquetID}, nil
		},
	}
	handler := NewProfileHandler(profiles, &evaluatorEntitlements{})

	c, rec := newTestContext(http.MethodPut, "/v1/me/bouquet", `{"bouquet_id":"b-gold"}`)
	asUser(c, standardProfile(blueBouquet()))

	if err := handler.ChangeBouquet(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	mustStatus(t, rec, http.StatusOK)
}

func TestProfileHandler_ChangeBouquet_StaffForbidden(t *testing.T) {
	profiles := &stubProfileService{
		assignBouquetFn: func(ctx context.Context, userID, bouquetID string) (*domain.Profile, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewProfileHandler(profiles, &evaluatorEntitlements{})

	c, _ := newTestContext(http.MethodPut, "/v1/me/bouquet", `{"bouquet_id":"b-gold"}`)
	asUser(c, adminProfile(domain.CapManageUsers))

	if err := handler.ChangeBouquet(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
