package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/benesafe/registry/internal/core/domain"
)

func newTestSeeder(f *authFixture) *SuperAdminSeeder {
	return NewSuperAdminSeeder(f.svc, f.profile, f.registry, zerolog.Nop())
}

func superAdminInput() SuperAdminInput {
	return SuperAdminInput{
		Username:  "admin",
		Email:     "admin@benesafe.com",
		Password:  "change-me-now",
		FirstName: "Super",
		LastName:  "Admin",
	}
}

func TestSuperAdminSeeder_Seed(t *testing.T) {
	f := newAuthFixture()

	user, profile, err := newTestSeeder(f).Seed(context.Background(), superAdminInput())
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if user.Username != "admin" || user.FirstName != "Super" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if profile.RoleID == nil || *profile.RoleID != "role-super" {
		t.Fatalf("expected SuperAdmin role, got %v", profile.RoleID)
	}
	if profile.BouquetID == nil || *profile.BouquetID != "b-gold" {
		t.Fatalf("expected gold bouquet, got %v", profile.BouquetID)
	}
	if !profile.EmailVerified || !profile.SubscriptionActive {
		t.Fatalf("expected verified email and active subscription: %+v", profile)
	}
	if profile.VerificationStatus != domain.VerificationApproved {
		t.Fatalf("expected approved, got %s", profile.VerificationStatus)
	}

	resolved, err := f.svc.entitlements.Resolve(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !resolved.Role.Capabilities.Has(domain.CapManageUsers) {
		t.Fatalf("super admin cannot manage users")
	}
}

func TestSuperAdminSeeder_Seed_ExistingUser(t *testing.T) {
	f := newAuthFixture()
	seeder := newTestSeeder(f)

	if _, _, err := seeder.Seed(context.Background(), superAdminInput()); err != nil {
		t.Fatalf("first Seed returned error: %v", err)
	}

	in := superAdminInput()
	in.Username = "admin2"
	if _, _, err := seeder.Seed(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for a taken email, got %v", err)
	}

	in = superAdminInput()
	in.Email = "other@benesafe.com"
	if _, _, err := seeder.Seed(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for a taken username, got %v", err)
	}
	if len(f.users.users) != 1 {
		t.Fatalf("expected a single user, got %d", len(f.users.users))
	}
}

func TestSuperAdminSeeder_Seed_RequiresStockRegistry(t *testing.T) {
	tests := []struct {
		name    string
		remove  func(f *authFixture)
		wantErr error
	}{
		{
			name:    "role missing",
			remove:  func(f *authFixture) { _ = f.roles.Delete(context.Background(), "role-super") },
			wantErr: domain.ErrRoleNotFound,
		},
		{
			name:    "gold bouquet missing",
			remove:  func(f *authFixture) { _ = f.bouquets.Delete(context.Background(), "b-gold") },
			wantErr: domain.ErrBouquetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			tt.remove(f)

			if _, _, err := newTestSeeder(f).Seed(context.Background(), superAdminInput()); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.users.users) != 0 {
				t.Fatalf("user created without a stock registry")
			}
		})
	}
}
