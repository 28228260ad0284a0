package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/benesafe/registry/internal/api/metrics"
	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

const (
	defaultProfilePageSize = 20
	maxProfilePageSize     = 100
)

// ProfileService manages profile lifecycle and the verification workflow.
type ProfileService struct {
	profiles ports.ProfileRepository
	roles    ports.RoleRepository
	registry ports.RegistryService
	users    ports.AuthRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewProfileService(
	profiles ports.ProfileRepository,
	roles ports.RoleRepository,
	registry ports.RegistryService,
	users ports.AuthRepository,
	log zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		roles:    roles,
		registry: registry,
		users:    users,
		log:      log,
		now:      time.Now,
	}
}

// CreateForUser creates the profile that accompanies a new user. The role
// defaults to the active standard role. The bouquet is the requested one,
// which must exist and be active, or else the cheapest active bouquet. When
// no default row exists the reference stays nil for a later backfill.
func (s *ProfileService) CreateForUser(ctx context.Context, userID, bouquetID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "profile.create")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	var bouquet *domain.Bouquet
	if bouquetID != "" {
		b, err := s.registry.GetBouquet(ctx, bouquetID)
		if err != nil {
			return nil, err
		}
		if !b.Active {
			return nil, fmt.Errorf("bouquet %s is inactive: %w", bouquetID, domain.ErrBouquetNotFound)
		}
		bouquet = b
	} else {
		b, err := s.registry.CheapestActiveBouquet(ctx)
		if err != nil && !errors.Is(err, domain.ErrBouquetNotFound) {
			return nil, err
		}
		bouquet = b
	}

	role, err := s.defaultRole(ctx)
	if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Profile{
		UserID:             userID,
		VerificationStatus: domain.VerificationPending,
		SubscriptionActive: true,
		SubscriptionStart:  now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if role != nil {
		p.RoleID = &role.ID
	}
	if bouquet != nil {
		p.BouquetID = &bouquet.ID
	}
	if p.RoleID == nil || p.BouquetID == nil {
		s.log.Warn().Str("user_id", userID).
			Bool("has_role", p.RoleID != nil).
			Bool("has_bouquet", p.BouquetID != nil).
			Msg("profile created without defaults, run backfill once the registry is seeded")
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.FindByUserID(ctx, userID)
}

// BackfillDefaults creates a profile for every user without one, then
// assigns the default role and bouquet to every profile missing one.
// Existing assignments are never overwritten.
func (s *ProfileService) BackfillDefaults(ctx context.Context) (*ports.BackfillResult, error) {
	res := &ports.BackfillResult{}

	orphans, err := s.users.ListWithoutProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("backfill: %w", err)
	}
	for _, userID := range orphans {
		if _, err := s.CreateForUser(ctx, userID, ""); err != nil {
			return res, fmt.Errorf("backfill %s: %w", userID, err)
		}
		res.ProfilesCreated++
	}

	role, err := s.defaultRole(ctx)
	if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
		return res, err
	}
	bouquet, err := s.registry.CheapestActiveBouquet(ctx)
	if err != nil && !errors.Is(err, domain.ErrBouquetNotFound) {
		return res, err
	}

	missing, err := s.profiles.ListMissingDefaults(ctx)
	if err != nil {
		return res, fmt.Errorf("backfill: %w", err)
	}

	for i := range missing {
		p := &missing[i]
		changed := false
		if p.RoleID == nil && role != nil {
			p.RoleID = &role.ID
			res.RolesAssigned++
			changed = true
		}
		if p.BouquetID == nil && bouquet != nil {
			p.BouquetID = &bouquet.ID
			res.BouquetsAssigned++
			changed = true
		}
		if !changed {
			continue
		}
		p.UpdatedAt = s.now().UTC()
		if err := s.profiles.Update(ctx, p); err != nil {
			return res, fmt.Errorf("backfill %s: %w", p.UserID, err)
		}
	}

	s.log.Info().Int("scanned", len(missing)).
		Int("profiles_created", res.ProfilesCreated).
		Int("roles_assigned", res.RolesAssigned).
		Int("bouquets_assigned", res.BouquetsAssigned).
		Msg("profile backfill complete")
	return res, nil
}

// AssignRole moves a profile to another active role.
func (s *ProfileService) AssignRole(ctx context.Context, userID, roleID string) (*domain.Profile, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !role.Active {
		return nil, fmt.Errorf("role %s is inactive: %w", roleID, domain.ErrRoleNotFound)
	}
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.RoleID = &role.ID
	p.UpdatedAt = s.now().UTC()
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("role_id", roleID).Msg("role assigned")
	return p, nil
}

// AssignBouquet moves a profile to another active bouquet.
func (s *ProfileService) AssignBouquet(ctx context.Context, userID, bouquetID string) (*domain.Profile, error) {
	b, err := s.registry.GetBouquet(ctx, bouquetID)
	if err != nil {
		return nil, err
	}
	if !b.Active {
		return nil, fmt.Errorf("bouquet %s is inactive: %w", bouquetID, domain.ErrBouquetNotFound)
	}
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.BouquetID = &b.ID
	p.UpdatedAt = s.now().UTC()
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("assign bouquet: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("bouquet", b.Name).Msg("bouquet assigned")
	return p, nil
}

func (s *ProfileService) Review(ctx context.Context, userID, verifierID string, approve bool) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "profile.review")
	defer span.End()

	next := domain.VerificationRejected
	if approve {
		next = domain.VerificationApproved
	}
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("verifier_id", verifierID),
		attribute.String("status", string(next)),
	)

	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !p.VerificationStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", p.VerificationStatus, next, domain.ErrInvalidTransition)
	}

	now := s.now().UTC()
	p.VerificationStatus = next
	p.VerifiedBy = &verifierID
	p.VerifiedAt = &now
	p.UpdatedAt = now

	if err := s.profiles.Update(ctx, p); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("review profile: %w", err)
	}

	metrics.VerificationTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.log.Info().Str("user_id", userID).Str("verifier_id", verifierID).Str("status", string(next)).Msg("verification reviewed")
	return p, nil
}

func (s *ProfileService) MarkEmailVerified(ctx context.Context, userID string) error {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if p.EmailVerified {
		return nil
	}
	p.EmailVerified = true
	p.UpdatedAt = s.now().UTC()
	if err := s.profiles.Update(ctx, p); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	return nil
}

// ListPending returns every profile awaiting review, newest first.
func (s *ProfileService) ListPending(ctx context.Context) ([]ports.ProfileSummary, error) {
	profiles, _, err := s.profiles.List(ctx, ports.ListProfilesFilter{Status: domain.VerificationPending})
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return s.summarize(ctx, profiles)
}

// List returns a page of profiles for the admin user list. Search matches
// username, email and names of the owning user.
func (s *ProfileService) List(ctx context.Context, in ports.ListProfilesInput) (*ports.ListProfilesResult, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = defaultProfilePageSize
	}
	if in.Limit > maxProfilePageSize {
		in.Limit = maxProfilePageSize
	}

	filter := ports.ListProfilesFilter{
		RoleID:    in.RoleID,
		BouquetID: in.BouquetID,
		Page:      in.Page,
		Limit:     in.Limit,
	}
	if q := strings.TrimSpace(in.Search); q != "" {
		ids, err := s.users.SearchIDs(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("search users: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		filter.UserIDs = ids
	}

	profiles, total, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	items, err := s.summarize(ctx, profiles)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(in.Limit) - 1) / int64(in.Limit))
	return &ports.ListProfilesResult{
		Items:      items,
		Total:      total,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *ProfileService) summarize(ctx context.Context, profiles []domain.Profile) ([]ports.ProfileSummary, error) {
	out := make([]ports.ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		item := ports.ProfileSummary{Profile: p}
		u, err := s.users.FindByID(ctx, p.UserID)
		switch {
		case err == nil:
			item.Username = u.Username
			item.Email = u.Email
		case errors.Is(err, domain.ErrUserNotFound):
			s.log.Warn().Str("user_id", p.UserID).Msg("profile without user")
		default:
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// defaultRole returns the first active standard role.
func (s *ProfileService) defaultRole(ctx context.Context) (*domain.Role, error) {
	roles, err := s.roles.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if roles[i].Category == domain.CategoryStandard {
			return &roles[i], nil
		}
	}
	return nil, domain.ErrRoleNotFound
}
