package domain

import "time"

// RoleCategory is the coarse role type.
type RoleCategory string

const (
	CategoryAdmin    RoleCategory = "admin"
	CategoryVerifier RoleCategory = "verifier"
	CategoryStandard RoleCategory = "standard"
)

// Valid reports whether c is a known category.
func (c RoleCategory) Valid() bool {
	switch c {
	case CategoryAdmin, CategoryVerifier, CategoryStandard:
		return true
	}
	return false
}

// RequiresSubCategory reports whether roles of this category must name a sub-category.
func (c RoleCategory) RequiresSubCategory() bool {
	return c == CategoryAdmin || c == CategoryVerifier
}

// SubCategory refines admin and verifier roles.
type SubCategory string

const (
	SubSuperAdmin        SubCategory = "super_admin"
	SubAdminStaff        SubCategory = "admin_staff"
	SubCorporateVerifier SubCategory = "corporate_verifier"
	SubLegalVerifier     SubCategory = "legal_verifier"
)

var subCategoriesByCategory = map[RoleCategory][]SubCategory{
	CategoryAdmin:    {SubSuperAdmin, SubAdminStaff},
	CategoryVerifier: {SubCorporateVerifier, SubLegalVerifier},
}

// BelongsTo reports whether s is a sub-category of c.
func (s SubCategory) BelongsTo(c RoleCategory) bool {
	for _, allowed := range subCategoriesByCategory[c] {
		if allowed == s {
			return true
		}
	}
	return false
}

// Role is a named set of capability flags.
type Role struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Category     RoleCategory  `json:"category"`
	SubCategory  SubCategory   `json:"sub_category,omitempty"`
	Description  string        `json:"description,omitempty"`
	Capabilities CapabilitySet `json:"-"`
	Active       bool          `json:"active"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Validate checks the role definition before it is written.
func (r *Role) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if !r.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "must be one of admin, verifier, standard"}
	}
	if r.Category.RequiresSubCategory() {
		if r.SubCategory == "" {
			return &ValidationError{Field: "sub_category", Reason: "is required for " + string(r.Category) + " roles"}
		}
		if !r.SubCategory.BelongsTo(r.Category) {
			return &ValidationError{Field: "sub_category", Reason: string(r.SubCategory) + " is not a " + string(r.Category) + " sub-category"}
		}
	} else if r.SubCategory != "" {
		return &ValidationError{Field: "sub_category", Reason: "must be empty for " + string(r.Category) + " roles"}
	}
	return nil
}

// Has reports whether the role carries capability c.
func (r *Role) Has(c Capability) bool {
	if r == nil {
		return false
	}
	return r.Capabilities.Has(c)
}
