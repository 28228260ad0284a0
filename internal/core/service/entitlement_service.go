package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/benesafe/registry/internal/api/metrics"
	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/entitlement"
	"github.com/benesafe/registry/internal/core/ports"
)

var tracer = otel.Tracer("github.com/benesafe/registry/internal/core/service")

// EntitlementService resolves profiles and evaluates checks against them.
// Every entry point goes through it so that all callers apply the same rules.
type EntitlementService struct {
	profiles ports.ProfileLookup
	roles    ports.RoleRepository
	bouquets ports.BouquetRepository
	counter  ports.RecordCounter
	log      zerolog.Logger
	now      func() time.Time
}

func NewEntitlementService(
	profiles ports.ProfileLookup,
	roles ports.RoleRepository,
	bouquets ports.BouquetRepository,
	counter ports.RecordCounter,
	log zerolog.Logger,
) *EntitlementService {
	return &EntitlementService{
		profiles: profiles,
		roles:    roles,
		bouquets: bouquets,
		counter:  counter,
		log:      log,
		now:      time.Now,
	}
}

// Resolve loads the profile for userID together with its role and bouquet.
// A missing profile resolves to an empty profile with no role or bouquet.
// A dangling role or bouquet ID is a data-integrity defect and is returned.
func (s *EntitlementService) Resolve(ctx context.Context, userID string) (*domain.ResolvedProfile, error) {
	ctx, span := tracer.Start(ctx, "entitlement.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		s.log.Debug().Str("user_id", userID).Msg("no profile, resolving to lowest privilege")
		return &domain.ResolvedProfile{Profile: domain.Profile{UserID: userID}}, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("resolve profile: %w", err)
	}

	resolved := &domain.ResolvedProfile{Profile: *profile}

	if profile.RoleID != nil {
		role, err := s.roles.FindByID(ctx, *profile.RoleID)
		if err != nil {
			err = s.integrityFailure(userID, "role_id", *profile.RoleID, err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("resolve profile role: %w", err)
		}
		resolved.Role = role
	}

	if profile.BouquetID != nil {
		b, err := s.bouquets.FindByID(ctx, *profile.BouquetID)
		if err != nil {
			err = s.integrityFailure(userID, "bouquet_id", *profile.BouquetID, err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("resolve profile bouquet: %w", err)
		}
		resolved.Bouquet = b
	}

	return resolved, nil
}

// integrityFailure logs a failed registry lookup. A lookup miss is returned
// wrapped in domain.ErrIntegrity; other errors pass through unchanged.
func (s *EntitlementService) integrityFailure(userID, field, ref string, err error) error {
	if !domain.IsNotFound(err) {
		s.log.Error().Err(err).Str("user_id", userID).Str(field, ref).Msg("registry lookup failed")
		return err
	}
	metrics.ResolveErrorsTotal.Inc()
	s.log.Error().Err(err).Str("user_id", userID).Str(field, ref).Msg("profile references missing registry row")
	return fmt.Errorf("%w: %s %s: %w", domain.ErrIntegrity, field, ref, err)
}

// HasPermission evaluates a capability check and records the decision.
func (s *EntitlementService) HasPermission(ctx context.Context, p *domain.ResolvedProfile, capability string) bool {
	ok := entitlement.HasPermission(p, capability)
	metrics.PermissionChecksTotal.WithLabelValues("capability", metrics.Result(ok)).Inc()
	if !ok {
		s.log.Debug().Str("user_id", p.UserID()).Str("capability", capability).Msg("permission denied")
	}
	return ok
}

// HasAnyCapability evaluates an any-of capability gate and records one
// decision for it.
func (s *EntitlementService) HasAnyCapability(ctx context.Context, p *domain.ResolvedProfile, caps ...domain.Capability) bool {
	ok := entitlement.HasAnyCapability(p, caps...)
	metrics.PermissionChecksTotal.WithLabelValues("capability", metrics.Result(ok)).Inc()
	if !ok {
		names := make([]string, len(caps))
		for i, c := range caps {
			names[i] = c.String()
		}
		s.log.Debug().Str("user_id", p.UserID()).Strs("capabilities", names).Msg("permission denied")
	}
	return ok
}

// HasBouquetFeature evaluates a bouquet feature check and records the decision.
func (s *EntitlementService) HasBouquetFeature(ctx context.Context, p *domain.ResolvedProfile, feature string) bool {
	ok := entitlement.HasBouquetFeature(p, feature)
	metrics.PermissionChecksTotal.WithLabelValues("feature", metrics.Result(ok)).Inc()
	return ok
}

// CheckQuota counts the owner's live records of kind and evaluates the
// bouquet limit. The check does not reserve capacity: concurrent creations
// near the limit may both pass.
func (s *EntitlementService) CheckQuota(
	ctx context.Context,
	p *domain.ResolvedProfile,
	kind domain.RecordKind,
	category domain.AssetCategory,
) (*ports.QuotaDecision, error) {
	if !kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Reason: "must be one of asset, beneficiary, dependent"}
	}
	if kind != domain.KindAsset {
		category = ""
	}

	ctx, span := tracer.Start(ctx, "entitlement.check_quota")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", p.UserID()),
		attribute.String("kind", string(kind)),
		attribute.String("category", string(category)),
	)

	current, err := s.counter.Count(ctx, p.UserID(), kind, category)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("check quota: %w", err)
	}

	decision := &ports.QuotaDecision{
		Kind:      kind,
		Category:  category,
		Limit:     entitlement.Limit(p, kind),
		Current:   current,
		Remaining: entitlement.Remaining(p, kind, current),
		Allowed:   entitlement.WithinQuota(p, kind, current),
		CheckedAt: s.now().UTC(),
	}
	span.SetAttributes(attribute.Bool("allowed", decision.Allowed))
	metrics.QuotaChecksTotal.WithLabelValues(string(kind), metrics.Result(decision.Allowed)).Inc()

	return decision, nil
}
