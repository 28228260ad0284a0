// Package entitlement answers "can this user do X" and "how many Y can this
// user still create" for a resolved profile.
//
// Every function is total over nil inputs: a missing profile, role or bouquet
// yields false or a zero quota, never a panic or an error.
package entitlement

import "github.com/benesafe/registry/internal/core/domain"

// HasPermission reports whether the profile's role carries the named
// capability. Unknown names are denied.
func HasPermission(p *domain.ResolvedProfile, name string) bool {
	c, ok := domain.ParseCapability(name)
	if !ok {
		return false
	}
	return HasCapability(p, c)
}

// HasCapability is the typed form of HasPermission.
func HasCapability(p *domain.ResolvedProfile, c domain.Capability) bool {
	if p == nil || p.Role == nil {
		return false
	}
	return p.Role.Has(c)
}

// HasAnyCapability reports whether at least one of caps is held.
func HasAnyCapability(p *domain.ResolvedProfile, caps ...domain.Capability) bool {
	for _, c := range caps {
		if HasCapability(p, c) {
			return true
		}
	}
	return false
}

// HasRoleType reports whether the profile's role is of the given category.
func HasRoleType(p *domain.ResolvedProfile, category domain.RoleCategory) bool {
	if p == nil || p.Role == nil || category == "" {
		return false
	}
	return p.Role.Category == category
}

// HasBouquetFeature reports whether the profile's bouquet enables the named
// feature. Unknown names are denied.
func HasBouquetFeature(p *domain.ResolvedProfile, name string) bool {
	f, ok := domain.ParseFeature(name)
	if !ok {
		return false
	}
	return HasFeature(p, f)
}

// HasFeature is the typed form of HasBouquetFeature.
func HasFeature(p *domain.ResolvedProfile, f domain.Feature) bool {
	if p == nil || p.Bouquet == nil {
		return false
	}
	return p.Bouquet.Has(f)
}

// Limit returns the quota for kind, or 0 when the profile has no bouquet.
func Limit(p *domain.ResolvedProfile, kind domain.RecordKind) int {
	if p == nil || p.Bouquet == nil {
		return 0
	}
	return p.Bouquet.Limit(kind)
}

// WithinQuota reports whether one more record of kind may be created given
// current existing ones. Reaching the limit blocks further creation.
func WithinQuota(p *domain.ResolvedProfile, kind domain.RecordKind, current int) bool {
	return current < Limit(p, kind)
}

// Remaining returns how many more records of kind may be created.
func Remaining(p *domain.ResolvedProfile, kind domain.RecordKind, current int) int {
	n := Limit(p, kind) - current
	if n < 0 {
		return 0
	}
	return n
}

// Limits is the projection of a bouquet's quotas and feature flags.
type Limits struct {
	HasBouquet                    bool `json:"-"`
	AssetsPerCategory             int  `json:"assets_per_category"`
	Beneficiaries                 int  `json:"beneficiaries"`
	Dependents                    int  `json:"dependents"`
	HasRewardTracker              bool `json:"has_reward_tracker"`
	RewardPercentage              int  `json:"reward_percentage"`
	CanExportReports              bool `json:"can_export_reports"`
	CanDownloadDocuments          bool `json:"can_download_documents"`
	CanManageBusinesses           bool `json:"can_manage_businesses"`
	CanManageProfessionalContacts bool `json:"can_manage_professional_contacts"`
}

// EffectiveLimits projects the profile's bouquet. Without a bouquet the zero
// Limits is returned and HasBouquet is false.
func EffectiveLimits(p *domain.ResolvedProfile) Limits {
	if p == nil || p.Bouquet == nil {
		return Limits{}
	}
	b := p.Bouquet
	return Limits{
		HasBouquet:                    true,
		AssetsPerCategory:             b.MaxAssetsPerCategory,
		Beneficiaries:                 b.MaxBeneficiaries,
		Dependents:                    b.MaxDependents,
		HasRewardTracker:              b.HasRewardTracker,
		RewardPercentage:              b.RewardPercentage,
		CanExportReports:              b.CanExportReports,
		CanDownloadDocuments:          b.CanDownloadDocuments,
		CanManageBusinesses:           b.CanManageBusinesses,
		CanManageProfessionalContacts: b.CanManageProfessionalContacts,
	}
}
