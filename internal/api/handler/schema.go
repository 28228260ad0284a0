package handler

import (
	"time"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/entitlement"
	"github.com/benesafe/registry/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username  string `json:"username"   validate:"required"`
	Password  string `json:"password"   validate:"required,min=8"`
	Email     string `json:"email"      validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BouquetID string `json:"bouquet_id"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Registry ---

type roleRequest struct {
	Name         string   `json:"name"         validate:"required"`
	Category     string   `json:"category"     validate:"required,oneof=admin verifier standard"`
	SubCategory  string   `json:"sub_category"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	Active       *bool    `json:"active"`
}

func (r roleRequest) toInput() ports.RoleInput {
	return ports.RoleInput{
		Name:         r.Name,
		Category:     r.Category,
		SubCategory:  r.SubCategory,
		Description:  r.Description,
		Capabilities: r.Capabilities,
		Active:       r.Active == nil || *r.Active,
	}
}

type roleResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"sub_category,omitempty"`
	Description  string    `json:"description,omitempty"`
	Capabilities []string  `json:"capabilities"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRoleResponse(r *domain.Role) *roleResponse {
	if r == nil {
		return nil
	}
	return &roleResponse{
		ID:           r.ID,
		Name:         r.Name,
		Category:     string(r.Category),
		SubCategory:  string(r.SubCategory),
		Description:  r.Description,
		Capabilities: r.Capabilities.Names(),
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type bouquetRequest struct {
	Name                          string `json:"name"                    validate:"required"`
	DisplayName                   string `json:"display_name"`
	Description                   string `json:"description"`
	Price                         int64  `json:"price"                   validate:"min=0"`
	MaxAssetsPerCategory          int    `json:"max_assets_per_category" validate:"min=0"`
	MaxDependents                 int    `json:"max_dependents"          validate:"min=0"`
	MaxBeneficiaries              int    `json:"max_beneficiaries"       validate:"min=0"`
	HasRewardTracker              bool   `json:"has_reward_tracker"`
	RewardPercentage              int    `json:"reward_percentage"       validate:"min=0,max=100"`
	CanExportReports              bool   `json:"can_export_reports"`
	CanDownloadDocuments          bool   `json:"can_download_documents"`
	CanManageBusinesses           bool   `json:"can_manage_businesses"`
	CanManageProfessionalContacts bool   `json:"can_manage_professional_contacts"`
	Active                        *bool  `json:"active"`
}

func (r bouquetRequest) toInput() ports.BouquetInput {
	return ports.BouquetInput{
		Name:                          r.Name,
		DisplayName:                   r.DisplayName,
		Description:                   r.Description,
		Price:                         r.Price,
		MaxAssetsPerCategory:          r.MaxAssetsPerCategory,
		MaxDependents:                 r.MaxDependents,
		MaxBeneficiaries:              r.MaxBeneficiaries,
		HasRewardTracker:              r.HasRewardTracker,
		RewardPercentage:              r.RewardPercentage,
		CanExportReports:              r.CanExportReports,
		CanDownloadDocuments:          r.CanDownloadDocuments,
		CanManageBusinesses:           r.CanManageBusinesses,
		CanManageProfessionalContacts: r.CanManageProfessionalContacts,
		Active:                        r.Active == nil || *r.Active,
	}
}

// --- Me ---

type meResponse struct {
	Profile        domain.Profile  `json:"profile"`
	Role           *roleResponse   `json:"role,omitempty"`
	Bouquet        *domain.Bouquet `json:"bouquet,omitempty"`
	IsAdmin        bool            `json:"is_admin"`
	IsSuperAdmin   bool            `json:"is_super_admin"`
	IsVerifier     bool            `json:"is_verifier"`
	IsStandardUser bool            `json:"is_standard_user"`
}

type quotaResponse struct {
	Kind      domain.RecordKind    `json:"kind"`
	Category  domain.AssetCategory `json:"category,omitempty"`
	Limit     int                  `json:"limit"`
	Current   int                  `json:"current"`
	Remaining int                  `json:"remaining"`
	Allowed   bool                 `json:"allowed"`
}

type entitlementsResponse struct {
	Capabilities []string           `json:"capabilities"`
	HasBouquet   bool               `json:"has_bouquet"`
	Limits       entitlement.Limits `json:"limits"`
	Features     map[string]bool    `json:"features"`
	Usage        []quotaResponse    `json:"usage"`
}

type changeBouquetRequest struct {
	BouquetID string `json:"bouquet_id" validate:"required"`
}

// --- Records ---

type createRecordRequest struct {
	Kind        string `json:"kind"        validate:"required,oneof=asset beneficiary dependent"`
	Category    string `json:"category"`
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

// --- Admin ---

type assignRoleRequest struct {
	RoleID string `json:"role_id" validate:"required"`
}

type assignBouquetRequest struct {
	BouquetID string `json:"bouquet_id" validate:"required"`
}

type reviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

type userSummaryResponse struct {
	UserID             string                    `json:"user_id"`
	Username           string                    `json:"username"`
	Email              string                    `json:"email,omitempty"`
	RoleID             *string                   `json:"role_id,omitempty"`
	BouquetID          *string                   `json:"bouquet_id,omitempty"`
	VerificationStatus domain.VerificationStatus `json:"verification_status"`
	EmailVerified      bool                      `json:"email_verified"`
	CreatedAt          time.Time                 `json:"created_at"`
}

func toUserSummaries(items []ports.ProfileSummary) []userSummaryResponse {
	out := make([]userSummaryResponse, 0, len(items))
	for _, it := range items {
		out = append(out, userSummaryResponse{
			UserID:             it.Profile.UserID,
			Username:           it.Username,
			Email:              it.Email,
			RoleID:             it.Profile.RoleID,
			BouquetID:          it.Profile.BouquetID,
			VerificationStatus: it.Profile.VerificationStatus,
			EmailVerified:      it.Profile.EmailVerified,
			CreatedAt:          it.Profile.CreatedAt,
		})
	}
	return out
}

type userListResponse struct {
	Items      []userSummaryResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}
