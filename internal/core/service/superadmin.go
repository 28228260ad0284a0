package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

const (
	SuperAdminRoleName = "SuperAdmin"
	AdminBouquetName   = "gold"
)

// SuperAdminInput describes the first administrator account.
type SuperAdminInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SuperAdminSeeder creates administrator accounts that skip the normal
// verification workflow.
type SuperAdminSeeder struct {
	auth     ports.AuthService
	profiles ports.ProfileService
	registry ports.RegistryService
	log      zerolog.Logger
}

func NewSuperAdminSeeder(
	auth ports.AuthService,
	profiles ports.ProfileService,
	registry ports.RegistryService,
	log zerolog.Logger,
) *SuperAdminSeeder {
	return &SuperAdminSeeder{auth: auth, profiles: profiles, registry: registry, log: log}
}

// Seed registers the user on the gold bouquet with the SuperAdmin role,
// a verified email and an approved profile. The stock registry must exist.
// An existing username or email yields domain.ErrUserExists.
func (s *SuperAdminSeeder) Seed(ctx context.Context, in SuperAdminInput) (*domain.User, *domain.Profile, error) {
	role, err := s.registry.GetRoleByName(ctx, SuperAdminRoleName)
	if err != nil {
		return nil, nil, fmt.Errorf("role %s missing, run setup first: %w", SuperAdminRoleName, err)
	}
	bouquet, err := s.registry.GetBouquetByName(ctx, AdminBouquetName)
	if err != nil {
		return nil, nil, fmt.Errorf("bouquet %s missing, run setup first: %w", AdminBouquetName, err)
	}

	user, err := s.auth.Register(ctx, ports.RegisterInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		BouquetID: bouquet.ID,
	})
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.profiles.AssignRole(ctx, user.ID, role.ID); err != nil {
		return user, nil, fmt.Errorf("promote %s: %w", user.ID, err)
	}
	if err := s.profiles.MarkEmailVerified(ctx, user.ID); err != nil {
		return user, nil, fmt.Errorf("promote %s: %w", user.ID, err)
	}
	profile, err := s.profiles.Review(ctx, user.ID, user.ID, true)
	if err != nil {
		return user, nil, fmt.Errorf("promote %s: %w", user.ID, err)
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", role.Name).
		Str("bouquet", bouquet.Name).
		Msg("super admin created")
	return user, profile, nil
}
