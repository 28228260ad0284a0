package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// RecordService creates owned records under the owner's role capability and
// bouquet quota.
type RecordService struct {
	repo         ports.RecordRepository
	entitlements ports.EntitlementService
	log          zerolog.Logger
	now          func() time.Time
}

func NewRecordService(repo ports.RecordRepository, entitlements ports.EntitlementService, log zerolog.Logger) *RecordService {
	return &RecordService{
		repo:         repo,
		entitlements: entitlements,
		log:          log,
		now:          time.Now,
	}
}

func (s *RecordService) Create(ctx context.Context, owner *domain.ResolvedProfile, in ports.CreateRecordInput) (*domain.Record, error) {
	if err := validateRecordInput(&in); err != nil {
		return nil, err
	}

	if !s.entitlements.HasPermission(ctx, owner, in.Kind.RequiredCapability().String()) {
		return nil, fmt.Errorf("create %s: %w", in.Kind, domain.ErrForbidden)
	}

	decision, err := s.entitlements.CheckQuota(ctx, owner, in.Kind, in.Category)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.log.Info().Str("user_id", owner.UserID()).
			Str("kind", string(in.Kind)).
			Str("category", string(in.Category)).
			Int("limit", decision.Limit).
			Int("current", decision.Current).
			Msg("quota exceeded")
		return nil, fmt.Errorf("%s limit %d reached: %w", in.Kind, decision.Limit, domain.ErrQuotaExceeded)
	}

	now := s.now().UTC()
	r := &domain.Record{
		ID:          uuid.NewString(),
		OwnerID:     owner.UserID(),
		Kind:        in.Kind,
		Category:    in.Category,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return r, nil
}

// List returns the owner's live records; an empty kind lists every kind.
func (s *RecordService) List(ctx context.Context, ownerID string, kind domain.RecordKind) ([]domain.Record, error) {
	if kind != "" && !kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Reason: "must be one of asset, beneficiary, dependent"}
	}
	return s.repo.ListByOwner(ctx, ownerID, kind)
}

// Delete soft-deletes a record, releasing its quota slot.
func (s *RecordService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.repo.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func validateRecordInput(in *ports.CreateRecordInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if !in.Kind.Valid() {
		return &domain.ValidationError{Field: "kind", Reason: "must be one of asset, beneficiary, dependent"}
	}
	if in.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Kind == domain.KindAsset {
		if !in.Category.Valid() {
			return &domain.ValidationError{Field: "category", Reason: "unknown asset category"}
		}
	} else {
		in.Category = ""
	}
	return nil
}
