package domain

import "time"

// RecordKind selects which bouquet quota applies to an owned record.
type RecordKind string

const (
	KindAsset       RecordKind = "asset"
	KindBeneficiary RecordKind = "beneficiary"
	KindDependent   RecordKind = "dependent"
)

func (k RecordKind) Valid() bool {
	switch k {
	case KindAsset, KindBeneficiary, KindDependent:
		return true
	}
	return false
}

// RequiredCapability is the role capability a standard user needs to create
// records of this kind.
func (k RecordKind) RequiredCapability() Capability {
	switch k {
	case KindBeneficiary:
		return CapAddBeneficiaries
	case KindDependent:
		return CapAddSpouseDependents
	default:
		return CapManageAssets
	}
}

// AssetCategory partitions asset quotas.
type AssetCategory string

const (
	AssetBankAccount    AssetCategory = "bank_account"
	AssetInsurance      AssetCategory = "insurance"
	AssetVillageBanking AssetCategory = "village_banking"
	AssetHouseLand      AssetCategory = "house_land"
	AssetMotorVehicle   AssetCategory = "motor_vehicle"
	AssetProject        AssetCategory = "project"
	AssetGeneral        AssetCategory = "general_asset"
	AssetTreasuryBond   AssetCategory = "treasury_bond"
	AssetIPRights       AssetCategory = "ip_rights"
)

var assetCategories = []AssetCategory{
	AssetBankAccount, AssetInsurance, AssetVillageBanking, AssetHouseLand,
	AssetMotorVehicle, AssetProject, AssetGeneral, AssetTreasuryBond, AssetIPRights,
}

func (c AssetCategory) Valid() bool {
	for _, known := range assetCategories {
		if c == known {
			return true
		}
	}
	return false
}

// AssetCategories lists every asset category in display order.
func AssetCategories() []AssetCategory {
	out := make([]AssetCategory, len(assetCategories))
	copy(out, assetCategories)
	return out
}

// Record is an asset, beneficiary or dependent owned by a user. Deleted
// records are kept but no longer count toward quota.
type Record struct {
	ID          string        `json:"id" bson:"_id"`
	OwnerID     string        `json:"owner_id" bson:"owner_id"`
	Kind        RecordKind    `json:"kind" bson:"kind"`
	Category    AssetCategory `json:"category,omitempty" bson:"category,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Deleted     bool          `json:"-" bson:"deleted"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}
