package domain

import "time"

// VerificationStatus represents the staff review state of a profile.
type VerificationStatus string

const (
	VerificationPending     VerificationStatus = "pending"
	VerificationApproved    VerificationStatus = "approved"
	VerificationRejected    VerificationStatus = "rejected"
	VerificationNotRequired VerificationStatus = "not_required"
)

// validVerificationTransitions defines the review state machine. Approved,
// rejected and not_required have no outgoing transitions.
var validVerificationTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationPending: {VerificationApproved, VerificationRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	for _, allowed := range validVerificationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected, VerificationNotRequired:
		return true
	}
	return false
}

// Profile binds a user identity to a role, a bouquet, and verification and
// subscription state. Role and bouquet are optional.
type Profile struct {
	UserID      string     `json:"user_id"`
	RoleID      *string    `json:"role_id,omitempty"`
	BouquetID   *string    `json:"bouquet_id,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	NRC         string     `json:"nrc,omitempty"`
	Address     string     `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	VerificationStatus VerificationStatus `json:"verification_status"`
	VerifiedBy         *string            `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	EmailVerified      bool               `json:"email_verified"`

	SubscriptionActive bool       `json:"subscription_active"`
	SubscriptionStart  time.Time  `json:"subscription_start"`
	SubscriptionEnd    *time.Time `json:"subscription_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResolvedProfile is a profile with its role and bouquet loaded. A nil
// *ResolvedProfile, a nil Role and a nil Bouquet are all valid inputs for
// entitlement checks and resolve to the lowest privilege.
type ResolvedProfile struct {
	Profile Profile
	Role    *Role
	Bouquet *Bouquet
}

// UserID returns the owning user, or "" for a nil profile.
func (p *ResolvedProfile) UserID() string {
	if p == nil {
		return ""
	}
	return p.Profile.UserID
}

func (p *ResolvedProfile) category() RoleCategory {
	if p == nil || p.Role == nil {
		return ""
	}
	return p.Role.Category
}

func (p *ResolvedProfile) IsAdmin() bool        { return p.category() == CategoryAdmin }
func (p *ResolvedProfile) IsVerifier() bool     { return p.category() == CategoryVerifier }
func (p *ResolvedProfile) IsStandardUser() bool { return p.category() == CategoryStandard }

// IsSuperAdmin is true only for an admin role with the super_admin sub-category.
func (p *ResolvedProfile) IsSuperAdmin() bool {
	return p.IsAdmin() && p.Role.SubCategory == SubSuperAdmin
}
