package ports

import (
	"context"
	"time"

	"github.com/benesafe/registry/internal/core/domain"
)

// ProfileLookup resolves a profile by user identity. It is the only view of
// profile storage the entitlement checks need.
type ProfileLookup interface {
	// FindByUserID returns domain.ErrProfileNotFound when the user has no profile.
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// ListProfilesFilter carries the admin user-list query.
type ListProfilesFilter struct {
	// UserIDs restricts the result when non-nil. An empty non-nil slice
	// matches nothing.
	UserIDs   []string
	RoleID    string
	BouquetID string
	Status    domain.VerificationStatus
	Page      int // 1-based
	Limit     int // <= 0 returns every match
}

// ProfileRepository persists profiles.
type ProfileRepository interface {
	ProfileLookup
	Create(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, p *domain.Profile) error
	// List returns a page of profiles matching filter, newest first, and the total count.
	List(ctx context.Context, filter ListProfilesFilter) ([]domain.Profile, int64, error)
	// ListMissingDefaults returns profiles lacking a role or a bouquet.
	ListMissingDefaults(ctx context.Context) ([]domain.Profile, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
	CountByBouquet(ctx context.Context, bouquetID string) (int64, error)
}

// ListProfilesInput is the admin user-list request.
type ListProfilesInput struct {
	Search    string
	RoleID    string
	BouquetID string
	Page      int
	Limit     int
}

// ProfileSummary is a profile row in admin listings.
type ProfileSummary struct {
	Profile  domain.Profile
	Username string
	Email    string
}

// ListProfilesResult is returned by ProfileService.List.
type ListProfilesResult struct {
	Items      []ProfileSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// BackfillResult reports how many profiles were repaired.
type BackfillResult struct {
	ProfilesCreated  int
	RolesAssigned    int
	BouquetsAssigned int
}

// ProfileService manages profile lifecycle and the verification workflow.
type ProfileService interface {
	CreateForUser(ctx context.Context, userID, bouquetID string) (*domain.Profile, error)
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	AssignRole(ctx context.Context, userID, roleID string) (*domain.Profile, error)
	AssignBouquet(ctx context.Context, userID, bouquetID string) (*domain.Profile, error)
	// Review moves a pending profile to approved or rejected and stamps the
	// verifier. The caller must check the verifier's capability first.
	Review(ctx context.Context, userID, verifierID string, approve bool) (*domain.Profile, error)
	MarkEmailVerified(ctx context.Context, userID string) error
	ListPending(ctx context.Context) ([]ProfileSummary, error)
	List(ctx context.Context, in ListProfilesInput) (*ListProfilesResult, error)
	BackfillDefaults(ctx context.Context) (*BackfillResult, error)
}

// QuotaDecision is the outcome of a quota check.
type QuotaDecision struct {
	Kind      domain.RecordKind
	Category  domain.AssetCategory
	Limit     int
	Current   int
	Remaining int
	Allowed   bool
	CheckedAt time.Time
}

// EntitlementService evaluates permission and quota checks for a user.
type EntitlementService interface {
	// Resolve loads the user's profile with its role and bouquet. A user
	// without a profile resolves to an empty profile, not an error.
	Resolve(ctx context.Context, userID string) (*domain.ResolvedProfile, error)
	HasPermission(ctx context.Context, p *domain.ResolvedProfile, capability string) bool
	// HasAnyCapability reports whether p holds at least one of caps as a
	// single decision.
	HasAnyCapability(ctx context.Context, p *domain.ResolvedProfile, caps ...domain.Capability) bool
	HasBouquetFeature(ctx context.Context, p *domain.ResolvedProfile, feature string) bool
	CheckQuota(ctx context.Context, p *domain.ResolvedProfile, kind domain.RecordKind, category domain.AssetCategory) (*QuotaDecision, error)
}
