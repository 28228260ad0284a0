package service

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/benesafe/registry/internal/api/metrics"
	"github.com/benesafe/registry/internal/core/domain"
)

func capabilityChecks(t *testing.T, result string) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.PermissionChecksTotal.WithLabelValues("capability", result).Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func newTestEntitlements(records *stubRecordRepo, profiles ...domain.Profile) *EntitlementService {
	return NewEntitlementService(
		newStubProfileRepo(profiles...),
		newStubRoleRepo(fixtureRoles()...),
		newStubBouquetRepo(fixtureBouquets()...),
		records,
		zerolog.Nop(),
	)
}

func TestEntitlementService_Resolve_MissingProfile(t *testing.T) {
	svc := newTestEntitlements(&stubRecordRepo{})

	p, err := svc.Resolve(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("expected no error for missing profile, got %v", err)
	}
	if p.UserID() != "ghost" || p.Role != nil || p.Bouquet != nil {
		t.Fatalf("expected empty profile, got %+v", p)
	}
	if svc.HasPermission(context.Background(), p, "can_manage_assets") {
		t.Fatalf("missing profile must not grant capabilities")
	}
}

func TestEntitlementService_Resolve_DanglingReference(t *testing.T) {
	svc := newTestEntitlements(&stubRecordRepo{},
		domain.Profile{UserID: "u1", RoleID: strPtr("role-standard"), BouquetID: strPtr("b-gone")},
		domain.Profile{UserID: "u2", RoleID: strPtr("role-gone")},
	)

	_, err := svc.Resolve(context.Background(), "u1")
	if !errors.Is(err, domain.ErrIntegrity) || !errors.Is(err, domain.ErrBouquetNotFound) {
		t.Fatalf("expected integrity error for missing bouquet, got %v", err)
	}
	_, err = svc.Resolve(context.Background(), "u2")
	if !errors.Is(err, domain.ErrIntegrity) || !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected integrity error for missing role, got %v", err)
	}
}

func TestEntitlementService_Resolve_Loaded(t *testing.T) {
	svc := newTestEntitlements(&stubRecordRepo{},
		domain.Profile{UserID: "u1", RoleID: strPtr("role-super"), BouquetID: strPtr("b-blue")},
	)

	p, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !p.IsSuperAdmin() {
		t.Fatalf("expected super admin")
	}
	if !svc.HasPermission(context.Background(), p, "can_manage_users") {
		t.Fatalf("expected can_manage_users")
	}
	if !svc.HasBouquetFeature(context.Background(), p, "can_export_reports") {
		t.Fatalf("expected blue bouquet export feature")
	}
	if svc.HasBouquetFeature(context.Background(), p, "can_manage_businesses") {
		t.Fatalf("blue fixture does not enable businesses")
	}
}

func TestEntitlementService_CheckQuota_Boundary(t *testing.T) {
	records := &stubRecordRepo{}
	svc := newTestEntitlements(records,
		domain.Profile{UserID: "u1", RoleID: strPtr("role-standard"), BouquetID: strPtr("b-blue")},
	)
	p, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// blue allows 3 beneficiaries.
	for i, want := range []bool{true, true, true, false} {
		d, err := svc.CheckQuota(context.Background(), p, domain.KindBeneficiary, "")
		if err != nil {
			t.Fatalf("CheckQuota returned error: %v", err)
		}
		if d.Current != i || d.Allowed != want {
			t.Fatalf("at %d: expected allowed=%v, got %+v", i, want, d)
		}
		records.records = append(records.records, domain.Record{ID: string(rune('a' + i)), OwnerID: "u1", Kind: domain.KindBeneficiary})
	}
}

func TestEntitlementService_CheckQuota_PerCategory(t *testing.T) {
	records := &stubRecordRepo{records: []domain.Record{
		{ID: "1", OwnerID: "u1", Kind: domain.KindAsset, Category: domain.AssetBankAccount},
		{ID: "2", OwnerID: "u1", Kind: domain.KindAsset, Category: domain.AssetBankAccount},
		{ID: "3", OwnerID: "u1", Kind: domain.KindAsset, Category: domain.AssetBankAccount},
		{ID: "4", OwnerID: "u1", Kind: domain.KindAsset, Category: domain.AssetInsurance, Deleted: true},
	}}
	svc := newTestEntitlements(records,
		domain.Profile{UserID: "u1", RoleID: strPtr("role-standard"), BouquetID: strPtr("b-blue")},
	)
	p, _ := svc.Resolve(context.Background(), "u1")

	bank, err := svc.CheckQuota(context.Background(), p, domain.KindAsset, domain.AssetBankAccount)
	if err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}
	if bank.Allowed || bank.Remaining != 0 {
		t.Fatalf("expected bank accounts full, got %+v", bank)
	}

	ins, _ := svc.CheckQuota(context.Background(), p, domain.KindAsset, domain.AssetInsurance)
	if !ins.Allowed || ins.Current != 0 || ins.Remaining != 3 {
		t.Fatalf("deleted record must not count, got %+v", ins)
	}
}

func TestEntitlementService_CheckQuota_NoBouquet(t *testing.T) {
	svc := newTestEntitlements(&stubRecordRepo{}, domain.Profile{UserID: "u1", RoleID: strPtr("role-standard")})
	p, _ := svc.Resolve(context.Background(), "u1")

	d, err := svc.CheckQuota(context.Background(), p, domain.KindDependent, "")
	if err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}
	if d.Allowed || d.Limit != 0 {
		t.Fatalf("expected zero quota without bouquet, got %+v", d)
	}
}

func TestEntitlementService_CheckQuota_InvalidKind(t *testing.T) {
	svc := newTestEntitlements(&stubRecordRepo{})

	if _, err := svc.CheckQuota(context.Background(), nil, "liability", ""); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEntitlementService_HasAnyCapability_RecordsOneDecision(t *testing.T) {
	svc := newTestEntitlements(&stubRecordRepo{})
	verifier := &domain.ResolvedProfile{Profile: domain.Profile{UserID: "v1"}, Role: &fixtureRoles()[1]}

	allowBefore := capabilityChecks(t, "allow")
	denyBefore := capabilityChecks(t, "deny")

	if !svc.HasAnyCapability(context.Background(), verifier, domain.CapApproveDocuments, domain.CapReviewApprove) {
		t.Fatalf("verifier holding the second capability must pass")
	}
	if got := capabilityChecks(t, "allow") - allowBefore; got != 1 {
		t.Fatalf("expected one allow, got %v", got)
	}
	if got := capabilityChecks(t, "deny") - denyBefore; got != 0 {
		t.Fatalf("expected no deny for an allowed gate, got %v", got)
	}

	if svc.HasAnyCapability(context.Background(), verifier, domain.CapManageUsers, domain.CapAssignBouquets) {
		t.Fatalf("verifier must not pass an admin gate")
	}
	if got := capabilityChecks(t, "deny") - denyBefore; got != 1 {
		t.Fatalf("expected one deny, got %v", got)
	}
}
