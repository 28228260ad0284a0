package domain

import (
	"sort"
	"time"
)

// Unlimited is the quota value stored for tiers without a practical limit.
const Unlimited = 999

// Feature is a boolean flag attached to a bouquet.
type Feature uint8

const (
	FeatureExportReports Feature = iota
	FeatureDownloadDocuments
	FeatureManageBusinesses
	FeatureManageProfessionalContacts

	featureCount
)

var featureNames = [featureCount]string{
	FeatureExportReports:              "can_export_reports",
	FeatureDownloadDocuments:          "can_download_documents",
	FeatureManageBusinesses:           "can_manage_businesses",
	FeatureManageProfessionalContacts: "can_manage_professional_contacts",
}

func (f Feature) String() string {
	if f >= featureCount {
		return ""
	}
	return featureNames[f]
}

// Features lists every bouquet feature in declaration order.
func Features() []Feature {
	out := make([]Feature, featureCount)
	for i := range out {
		out[i] = Feature(i)
	}
	return out
}

// ParseFeature resolves a feature wire name. Unknown names report false.
func ParseFeature(name string) (Feature, bool) {
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// Bouquet is a subscription tier bundling price, quotas and feature flags.
type Bouquet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	// Price is expressed in minor currency units.
	Price int64 `json:"price"`

	MaxAssetsPerCategory int  `json:"max_assets_per_category"`
	MaxDependents        int  `json:"max_dependents"`
	MaxBeneficiaries     int  `json:"max_beneficiaries"`
	HasRewardTracker     bool `json:"has_reward_tracker"`
	RewardPercentage     int  `json:"reward_percentage"`

	CanExportReports              bool `json:"can_export_reports"`
	CanDownloadDocuments          bool `json:"can_download_documents"`
	CanManageBusinesses           bool `json:"can_manage_businesses"`
	CanManageProfessionalContacts bool `json:"can_manage_professional_contacts"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the bouquet definition before it is written.
func (b *Bouquet) Validate() error {
	switch {
	case b.Name == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case b.Price < 0:
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	case b.MaxAssetsPerCategory < 0:
		return &ValidationError{Field: "max_assets_per_category", Reason: "must not be negative"}
	case b.MaxDependents < 0:
		return &ValidationError{Field: "max_dependents", Reason: "must not be negative"}
	case b.MaxBeneficiaries < 0:
		return &ValidationError{Field: "max_beneficiaries", Reason: "must not be negative"}
	case b.RewardPercentage < 0 || b.RewardPercentage > 100:
		return &ValidationError{Field: "reward_percentage", Reason: "must be between 0 and 100"}
	}
	return nil
}

// Has reports whether the bouquet enables feature f.
func (b *Bouquet) Has(f Feature) bool {
	if b == nil {
		return false
	}
	switch f {
	case FeatureExportReports:
		return b.CanExportReports
	case FeatureDownloadDocuments:
		return b.CanDownloadDocuments
	case FeatureManageBusinesses:
		return b.CanManageBusinesses
	case FeatureManageProfessionalContacts:
		return b.CanManageProfessionalContacts
	}
	return false
}

// Limit returns the quota the bouquet grants for kind.
func (b *Bouquet) Limit(kind RecordKind) int {
	if b == nil {
		return 0
	}
	switch kind {
	case KindAsset:
		return b.MaxAssetsPerCategory
	case KindBeneficiary:
		return b.MaxBeneficiaries
	case KindDependent:
		return b.MaxDependents
	}
	return 0
}

// SortBouquetsByPrice orders bouquets by ascending price. Equal prices keep
// their input order.
func SortBouquetsByPrice(bs []Bouquet) {
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].Price < bs[j].Price })
}
