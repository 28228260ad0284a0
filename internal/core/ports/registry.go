package ports

import (
	"context"

	"github.com/benesafe/registry/internal/core/domain"
)

// RoleRepository persists role definitions.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// ListActive returns active roles ordered by category then name.
	ListActive(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
}

// BouquetRepository persists bouquet definitions.
type BouquetRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Bouquet, error)
	FindByName(ctx context.Context, name string) (*domain.Bouquet, error)
	// ListActive returns active bouquets in insertion order.
	ListActive(ctx context.Context) ([]domain.Bouquet, error)
	Create(ctx context.Context, b *domain.Bouquet) error
	Update(ctx context.Context, b *domain.Bouquet) error
	Delete(ctx context.Context, id string) error
}

// RoleInput is the administrative role definition.
type RoleInput struct {
	Name         string
	Category     string
	SubCategory  string
	Description  string
	Capabilities []string
	Active       bool
}

// BouquetInput is the administrative bouquet definition.
type BouquetInput struct {
	Name                          string
	DisplayName                   string
	Description                   string
	Price                         int64
	MaxAssetsPerCategory          int
	MaxDependents                 int
	MaxBeneficiaries              int
	HasRewardTracker              bool
	RewardPercentage              int
	CanExportReports              bool
	CanDownloadDocuments          bool
	CanManageBusinesses           bool
	CanManageProfessionalContacts bool
	Active                        bool
}

// RegistryService manages the role and bouquet reference data.
type RegistryService interface {
	GetRole(ctx context.Context, id string) (*domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)
	ListActiveRoles(ctx context.Context) ([]domain.Role, error)
	CreateRole(ctx context.Context, in RoleInput) (*domain.Role, error)
	UpdateRole(ctx context.Context, id string, in RoleInput) (*domain.Role, error)
	DeleteRole(ctx context.Context, id string) error

	GetBouquet(ctx context.Context, id string) (*domain.Bouquet, error)
	GetBouquetByName(ctx context.Context, name string) (*domain.Bouquet, error)
	// ListActiveBouquets orders by ascending price; equal prices keep storage order.
	ListActiveBouquets(ctx context.Context) ([]domain.Bouquet, error)
	CreateBouquet(ctx context.Context, in BouquetInput) (*domain.Bouquet, error)
	UpdateBouquet(ctx context.Context, id string, in BouquetInput) (*domain.Bouquet, error)
	DeleteBouquet(ctx context.Context, id string) error
	CheapestActiveBouquet(ctx context.Context) (*domain.Bouquet, error)
}
