package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// SeedResult reports what Seed created. Existing rows are left untouched.
type SeedResult struct {
	BouquetsCreated []string
	RolesCreated    []string
}

var adminCapabilities = []string{
	domain.CapManageUsers.String(),
	domain.CapAssignBouquets.String(),
	domain.CapViewAllData.String(),
	domain.CapManagePayments.String(),
	domain.CapManageVerification.String(),
	domain.CapExportReports.String(),
	domain.CapApproveDocuments.String(),
	domain.CapSendNotifications.String(),
}

var verifierCapabilities = []string{
	domain.CapViewPendingVerifications.String(),
	domain.CapReviewApprove.String(),
	domain.CapDownloadDocuments.String(),
	domain.CapUploadVerificationReport.String(),
	domain.CapMaintainAuditLog.String(),
	domain.CapNotifyUsers.String(),
}

var standardCapabilities = []string{
	domain.CapAddEditPersonalDetails.String(),
	domain.CapAddSpouseDependents.String(),
	domain.CapUploadDocuments.String(),
	domain.CapManageAssets.String(),
	domain.CapManageLiabilities.String(),
	domain.CapManageBusinesses.String(),
	domain.CapManageProfessionalContacts.String(),
	domain.CapAddBeneficiaries.String(),
	domain.CapViewDashboard.String(),
	domain.CapReceiveVerificationUpdates.String(),
}

// DefaultBouquets is the stock subscription catalog. Prices are in minor units.
var DefaultBouquets = []ports.BouquetInput{
	{
		Name:                          "blue",
		DisplayName:                   "Blue Bouquet",
		Description:                   "Basic subscription plan with limited features",
		Price:                         10000,
		MaxAssetsPerCategory:          3,
		MaxDependents:                 1,
		MaxBeneficiaries:              3,
		CanExportReports:              true,
		CanDownloadDocuments:          true,
		CanManageBusinesses:           true,
		CanManageProfessionalContacts: true,
		Active:                        true,
	},
	{
		Name:                          "red",
		DisplayName:                   "Red Bouquet",
		Description:                   "Standard subscription plan with extended features",
		Price:                         25000,
		MaxAssetsPerCategory:          6,
		MaxDependents:                 3,
		MaxBeneficiaries:              5,
		CanExportReports:              true,
		CanDownloadDocuments:          true,
		CanManageBusinesses:           true,
		CanManageProfessionalContacts: true,
		Active:                        true,
	},
	{
		Name:                          AdminBouquetName,
		DisplayName:                   "Gold Bouquet",
		Description:                   "Premium subscription plan with unlimited features and reward tracker",
		Price:                         50000,
		MaxAssetsPerCategory:          domain.Unlimited,
		MaxDependents:                 domain.Unlimited,
		MaxBeneficiaries:              domain.Unlimited,
		HasRewardTracker:              true,
		RewardPercentage:              30,
		CanExportReports:              true,
		CanDownloadDocuments:          true,
		CanManageBusinesses:           true,
		CanManageProfessionalContacts: true,
		Active:                        true,
	},
}

// DefaultRoles is the stock role catalog.
var DefaultRoles = []ports.RoleInput{
	{
		Name:         SuperAdminRoleName,
		Category:     string(domain.CategoryAdmin),
		SubCategory:  string(domain.SubSuperAdmin),
		Description:  "Full system control with backend and frontend access",
		Capabilities: adminCapabilities,
		Active:       true,
	},
	{
		Name:         "Admin Staff",
		Category:     string(domain.CategoryAdmin),
		SubCategory:  string(domain.SubAdminStaff),
		Description:  "Handles user management, bouquet setup, and general system configuration",
		Capabilities: adminCapabilities,
		Active:       true,
	},
	{
		Name:         "Corporate Verifier",
		Category:     string(domain.CategoryVerifier),
		SubCategory:  string(domain.SubCorporateVerifier),
		Description:  "Reviews ownership and business-related documents",
		Capabilities: verifierCapabilities,
		Active:       true,
	},
	{
		Name:         "Legal Verifier",
		Category:     string(domain.CategoryVerifier),
		SubCategory:  string(domain.SubLegalVerifier),
		Description:  "Reviews personal identity, legal, and property documents",
		Capabilities: verifierCapabilities,
		Active:       true,
	},
	{
		Name:         "Standard User",
		Category:     string(domain.CategoryStandard),
		Description:  "Everyday BeneSafe users with bouquet-based permissions",
		Capabilities: standardCapabilities,
		Active:       true,
	},
}

// Seed creates the stock bouquets and roles that do not exist yet, matched by
// name. Running it twice is a no-op.
func (s *RegistryService) Seed(ctx context.Context) (*SeedResult, error) {
	res := &SeedResult{}

	for _, in := range DefaultBouquets {
		_, err := s.bouquets.FindByName(ctx, in.Name)
		if err == nil {
			s.log.Debug().Str("bouquet", in.Name).Msg("bouquet already exists")
			continue
		}
		if !errors.Is(err, domain.ErrBouquetNotFound) {
			return res, fmt.Errorf("seed bouquet %s: %w", in.Name, err)
		}
		if _, err := s.CreateBouquet(ctx, in); err != nil {
			return res, fmt.Errorf("seed bouquet %s: %w", in.Name, err)
		}
		res.BouquetsCreated = append(res.BouquetsCreated, in.Name)
	}

	for _, in := range DefaultRoles {
		_, err := s.roles.FindByName(ctx, in.Name)
		if err == nil {
			s.log.Debug().Str("role", in.Name).Msg("role already exists")
			continue
		}
		if !errors.Is(err, domain.ErrRoleNotFound) {
			return res, fmt.Errorf("seed role %s: %w", in.Name, err)
		}
		if _, err := s.CreateRole(ctx, in); err != nil {
			return res, fmt.Errorf("seed role %s: %w", in.Name, err)
		}
		res.RolesCreated = append(res.RolesCreated, in.Name)
	}

	s.log.Info().Strs("bouquets", res.BouquetsCreated).Strs("roles", res.RolesCreated).Msg("registry seeded")
	return res, nil
}
