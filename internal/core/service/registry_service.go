package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// RegistryService manages roles and bouquets. Writes come from
// administrative callers only.
type RegistryService struct {
	roles    ports.RoleRepository
	bouquets ports.BouquetRepository
	profiles ports.ProfileRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewRegistryService(
	roles ports.RoleRepository,
	bouquets ports.BouquetRepository,
	profiles ports.ProfileRepository,
	log zerolog.Logger,
) *RegistryService {
	return &RegistryService{
		roles:    roles,
		bouquets: bouquets,
		profiles: profiles,
		log:      log,
		now:      time.Now,
	}
}

// --- Roles ---

func (s *RegistryService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *RegistryService) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	return s.roles.FindByName(ctx, strings.TrimSpace(name))
}

func (s *RegistryService) ListActiveRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.ListActive(ctx)
}

// CreateRole validates and stores a new role. Unknown capability names and a
// missing admin/verifier sub-category are rejected with a ValidationError.
func (s *RegistryService) CreateRole(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	role, err := roleFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureRoleNameFree(ctx, role.Name, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	role.ID = uuid.NewString()
	role.CreatedAt = now
	role.UpdatedAt = now

	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.log.Info().Str("role_id", role.ID).Str("name", role.Name).Str("category", string(role.Category)).Msg("role created")
	return role, nil
}

func (s *RegistryService) UpdateRole(ctx context.Context, id string, in ports.RoleInput) (*domain.Role, error) {
	existing, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := roleFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureRoleNameFree(ctx, role.Name, id); err != nil {
		return nil, err
	}

	role.ID = existing.ID
	role.CreatedAt = existing.CreatedAt
	role.UpdatedAt = s.now().UTC()

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.log.Info().Str("role_id", role.ID).Msg("role updated")
	return role, nil
}

// DeleteRole removes a role unless a profile still references it.
func (s *RegistryService) DeleteRole(ctx context.Context, id string) error {
	if _, err := s.roles.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.profiles.CountByRole(ctx, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if n > 0 {
		s.log.Warn().Str("role_id", id).Int64("profiles", n).Msg("refusing to delete referenced role")
		return fmt.Errorf("delete role: %w", domain.ErrReferenced)
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	s.log.Info().Str("role_id", id).Msg("role deleted")
	return nil
}

func (s *RegistryService) ensureRoleNameFree(ctx context.Context, name, selfID string) error {
	other, err := s.roles.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrRoleNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return fmt.Errorf("role %q: %w", name, domain.ErrDuplicate)
	}
	return nil
}

func roleFromInput(in ports.RoleInput) (*domain.Role, error) {
	caps, err := domain.ParseCapabilitySet(in.Capabilities)
	if err != nil {
		return nil, err
	}
	role := &domain.Role{
		Name:         strings.TrimSpace(in.Name),
		Category:     domain.RoleCategory(in.Category),
		SubCategory:  domain.SubCategory(in.SubCategory),
		Description:  in.Description,
		Capabilities: caps,
		Active:       in.Active,
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}
	return role, nil
}

// --- Bouquets ---

func (s *RegistryService) GetBouquet(ctx context.Context, id string) (*domain.Bouquet, error) {
	return s.bouquets.FindByID(ctx, id)
}

func (s *RegistryService) GetBouquetByName(ctx context.Context, name string) (*domain.Bouquet, error) {
	return s.bouquets.FindByName(ctx, strings.ToLower(strings.TrimSpace(name)))
}

// ListActiveBouquets returns active bouquets by ascending price, ties in
// storage order.
func (s *RegistryService) ListActiveBouquets(ctx context.Context) ([]domain.Bouquet, error) {
	bs, err := s.bouquets.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortBouquetsByPrice(bs)
	return bs, nil
}

// CheapestActiveBouquet returns the lowest-priced active bouquet.
func (s *RegistryService) CheapestActiveBouquet(ctx context.Context) (*domain.Bouquet, error) {
	bs, err := s.ListActiveBouquets(ctx)
	if err != nil {
		return nil, err
	}
	if len(bs) == 0 {
		return nil, domain.ErrBouquetNotFound
	}
	return &bs[0], nil
}

func (s *RegistryService) CreateBouquet(ctx context.Context, in ports.BouquetInput) (*domain.Bouquet, error) {
	b := bouquetFromInput(in)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureBouquetNameFree(ctx, b.Name, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.bouquets.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create bouquet: %w", err)
	}
	s.log.Info().Str("bouquet_id", b.ID).Str("name", b.Name).Int64("price", b.Price).Msg("bouquet created")
	return b, nil
}

func (s *RegistryService) UpdateBouquet(ctx context.Context, id string, in ports.BouquetInput) (*domain.Bouquet, error) {
	existing, err := s.bouquets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b := bouquetFromInput(in)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureBouquetNameFree(ctx, b.Name, id); err != nil {
		return nil, err
	}

	b.ID = existing.ID
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = s.now().UTC()

	if err := s.bouquets.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update bouquet: %w", err)
	}
	s.log.Info().Str("bouquet_id", b.ID).Msg("bouquet updated")
	return b, nil
}

// DeleteBouquet removes a bouquet unless a profile still references it.
func (s *RegistryService) DeleteBouquet(ctx context.Context, id string) error {
	if _, err := s.bouquets.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.profiles.CountByBouquet(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bouquet: %w", err)
	}
	if n > 0 {
		s.log.Warn().Str("bouquet_id", id).Int64("profiles", n).Msg("refusing to delete referenced bouquet")
		return fmt.Errorf("delete bouquet: %w", domain.ErrReferenced)
	}
	if err := s.bouquets.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete bouquet: %w", err)
	}
	s.log.Info().Str("bouquet_id", id).Msg("bouquet deleted")
	return nil
}

func (s *RegistryService) ensureBouquetNameFree(ctx context.Context, name, selfID string) error {
	other, err := s.bouquets.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrBouquetNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return fmt.Errorf("bouquet %q: %w", name, domain.ErrDuplicate)
	}
	return nil
}

func bouquetFromInput(in ports.BouquetInput) *domain.Bouquet {
	return &domain.Bouquet{
		Name:                          strings.ToLower(strings.TrimSpace(in.Name)),
		DisplayName:                   in.DisplayName,
		Description:                   in.Description,
		Price:                         in.Price,
		MaxAssetsPerCategory:          in.MaxAssetsPerCategory,
		MaxDependents:                 in.MaxDependents,
		MaxBeneficiaries:              in.MaxBeneficiaries,
		HasRewardTracker:              in.HasRewardTracker,
		RewardPercentage:              in.RewardPercentage,
		CanExportReports:              in.CanExportReports,
		CanDownloadDocuments:          in.CanDownloadDocuments,
		CanManageBusinesses:           in.CanManageBusinesses,
		CanManageProfessionalContacts: in.CanManageProfessionalContacts,
		Active:                        in.Active,
	}
}
