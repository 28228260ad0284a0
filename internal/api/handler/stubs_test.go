package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/api/middleware"
	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/entitlement"
	"github.com/benesafe/registry/internal/core/ports"
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser attaches an authenticated caller to c the way the middleware chain does.
func asUser(c echo.Context, p *domain.ResolvedProfile) {
	c.Set(middleware.ContextUserID, p.UserID())
	c.Set(middleware.ContextProfile, p)
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func adminProfile(caps ...domain.Capability) *domain.ResolvedProfile {
	return &domain.ResolvedProfile{
		Profile: domain.Profile{UserID: "admin-1"},
		Role: &domain.Role{
			ID:           "role-admin",
			Name:         "Admin Staff",
			Category:     domain.CategoryAdmin,
			SubCategory:  domain.SubAdminStaff,
			Capabilities: domain.NewCapabilitySet(caps...),
			Active:       true,
		},
	}
}

func standardProfile(b *domain.Bouquet) *domain.ResolvedProfile {
	return &domain.ResolvedProfile{
		Profile: domain.Profile{UserID: "user-1", VerificationStatus: domain.VerificationPending},
		Role: &domain.Role{
			ID:       "role-standard",
			Name:     "Standard User",
			Category: domain.CategoryStandard,
			Capabilities: domain.NewCapabilitySet(
				domain.CapManageAssets, domain.CapAddBeneficiaries, domain.CapAddSpouseDependents,
			),
			Active: true,
		},
		Bouquet: b,
	}
}

// --- auth ---

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	verifyFn   func(ctx context.Context, token string) error
	resendFn   func(ctx context.Context, userID string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.verifyFn(ctx, token)
}

func (s *stubAuthService) ResendVerification(ctx context.Context, userID string) error {
	return s.resendFn(ctx, userID)
}

// --- entitlements ---

// evaluatorEntitlements answers checks with the pure evaluator and serves
// quotas from a fixed usage table. Capability gate outcomes are recorded in
// decisions.
type evaluatorEntitlements struct {
	usage     map[string]int
	decisions []bool
}

func (s *evaluatorEntitlements) Resolve(context.Context, string) (*domain.ResolvedProfile, error) {
	return nil, errors.New("not used")
}

func (s *evaluatorEntitlements) HasPermission(_ context.Context, p *domain.ResolvedProfile, capability string) bool {
	return entitlement.HasPermission(p, capability)
}

func (s *evaluatorEntitlements) HasAnyCapability(_ context.Context, p *domain.ResolvedProfile, caps ...domain.Capability) bool {
	ok := entitlement.HasAnyCapability(p, caps...)
	s.decisions = append(s.decisions, ok)
	return ok
}

func (s *evaluatorEntitlements) HasBouquetFeature(_ context.Context, p *domain.ResolvedProfile, feature string) bool {
	return entitlement.HasBouquetFeature(p, feature)
}

func (s *evaluatorEntitlements) CheckQuota(_ context.Context, p *domain.ResolvedProfile, kind domain.RecordKind, category domain.AssetCategory) (*ports.QuotaDecision, error) {
	current := s.usage[string(kind)+"/"+string(category)]
	return &ports.QuotaDecision{
		Kind:      kind,
		Category:  category,
		Limit:     entitlement.Limit(p, kind),
		Current:   current,
		Remaining: entitlement.Remaining(p, kind, current),
		Allowed:   entitlement.WithinQuota(p, kind, current),
	}, nil
}

// --- registry ---

type stubRegistryService struct {
	ports.RegistryService

	listRolesFn    func(ctx context.Context) ([]domain.Role, error)
	createRoleFn   func(ctx context.Context, in ports.RoleInput) (*domain.Role, error)
	deleteRoleFn   func(ctx context.Context, id string) error
	listBouquetsFn func(ctx context.Context) ([]domain.Bouquet, error)
	createBouqFn   func(ctx context.Context, in ports.BouquetInput) (*domain.Bouquet, error)
	updateBouqFn   func(ctx context.Context, id string, in ports.BouquetInput) (*domain.Bouquet, error)
	deleteBouqFn   func(ctx context.Context, id string) error
}

func (s *stubRegistryService) ListActiveRoles(ctx context.Context) ([]domain.Role, error) {
	return s.listRolesFn(ctx)
}

func (s *stubRegistryService) CreateRole(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	return s.createRoleFn(ctx, in)
}

func (s *stubRegistryService) DeleteRole(ctx context.Context, id string) error {
	return s.deleteRoleFn(ctx, id)
}

func (s *stubRegistryService) ListActiveBouquets(ctx context.Context) ([]domain.Bouquet, error) {
	return s.listBouquetsFn(ctx)
}

func (s *stubRegistryService) CreateBouquet(ctx context.Context, in ports.BouquetInput) (*domain.Bouquet, error) {
	return s.createBouqFn(ctx, in)
}

func (s *stubRegistryService) UpdateBouquet(ctx context.Context, id string, in ports.BouquetInput) (*domain.Bouquet, error) {
	return s.updateBouqFn(ctx, id, in)
}

func (s *stubRegistryService) DeleteBouquet(ctx context.Context, id string) error {
	return s.deleteBouqFn(ctx, id)
}

// --- profiles ---

type stubProfileService struct {
	ports.ProfileService

	assignRoleFn    func(ctx context.Context, userID, roleID string) (*domain.Profile, error)
	assignBouquetFn func(ctx context.Context, userID, bouquetID string) (*domain.Profile, error)
	reviewFn        func(ctx context.Context, userID, verifierID string, approve bool) (*domain.Profile, error)
	listPendingFn   func(ctx context.Context) ([]ports.ProfileSummary, error)
	listFn          func(ctx context.Context, in ports.ListProfilesInput) (*ports.ListProfilesResult, error)
}

func (s *stubProfileService) AssignRole(ctx context.Context, userID, roleID string) (*domain.Profile, error) {
	return s.assignRoleFn(ctx, userID, roleID)
}

func (s *stubProfileService) AssignBouquet(ctx context.Context, userID, bouquetID string) (*domain.Profile, error) {
	return s.assignBouquetFn(ctx, userID, bouquetID)
}

func (s *stubProfileService) Review(ctx context.Context, userID, verifierID string, approve bool) (*domain.Profile, error) {
	return s.reviewFn(ctx, userID, verifierID, approve)
}

func (s *stubProfileService) ListPending(ctx context.Context) ([]ports.ProfileSummary, error) {
	return s.listPendingFn(ctx)
}

func (s *stubProfileService) List(ctx context.Context, in ports.ListProfilesInput) (*ports.ListProfilesResult, error) {
	return s.listFn(ctx, in)
}

// --- records ---

type stubRecordService struct {
	createFn func(ctx context.Context, owner *domain.ResolvedProfile, in ports.CreateRecordInput) (*domain.Record, error)
	listFn   func(ctx context.Context, ownerID string, kind domain.RecordKind) ([]domain.Record, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
}

func (s *stubRecordService) Create(ctx context.Context, owner *domain.ResolvedProfile, in ports.CreateRecordInput) (*domain.Record, error) {
	return s.createFn(ctx, owner, in)
}

func (s *stubRecordService) List(ctx context.Context, ownerID string, kind domain.RecordKind) ([]domain.Record, error) {
	return s.listFn(ctx, ownerID, kind)
}

func (s *stubRecordService) Delete(ctx context.Context, ownerID, id string) error {
	return s.deleteFn(ctx, ownerID, id)
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}
