package domain

import "sort"

// Capability is a single boolean permission carried by a role.
type Capability uint8

// The capability set is closed. New capabilities must be appended to keep
// the persisted bit positions stable.
const (
	// admin management
	CapManageUsers Capability = iota
	CapAssignBouquets
	CapViewAllData
	CapManagePayments
	CapManageVerification
	CapExportReports
	CapApproveDocuments
	CapSendNotifications

	// verifier workflow
	CapViewPendingVerifications
	CapReviewApprove
	CapDownloadDocuments
	CapUploadVerificationReport
	CapMaintainAuditLog
	CapNotifyUsers

	// standard user
	CapAddEditPersonalDetails
	CapAddSpouseDependents
	CapUploadDocuments
	CapManageAssets
	CapManageLiabilities
	CapManageBusinesses
	CapManageProfessionalContacts
	CapAddBeneficiaries
	CapViewDashboard
	CapReceiveVerificationUpdates

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CapManageUsers:                "can_manage_users",
	CapAssignBouquets:             "can_assign_bouquets",
	CapViewAllData:                "can_view_all_data",
	CapManagePayments:             "can_manage_payments",
	CapManageVerification:         "can_manage_verification",
	CapExportReports:              "can_export_reports",
	CapApproveDocuments:           "can_approve_documents",
	CapSendNotifications:          "can_send_notifications",
	CapViewPendingVerifications:   "can_view_pending_verifications",
	CapReviewApprove:              "can_review_approve",
	CapDownloadDocuments:          "can_download_documents",
	CapUploadVerificationReport:   "can_upload_verification_report",
	CapMaintainAuditLog:           "can_maintain_audit_log",
	CapNotifyUsers:                "can_notify_users",
	CapAddEditPersonalDetails:     "can_add_edit_personal_details",
	CapAddSpouseDependents:        "can_add_spouse_dependents",
	CapUploadDocuments:            "can_upload_documents",
	CapManageAssets:               "can_manage_assets",
	CapManageLiabilities:          "can_manage_liabilities",
	CapManageBusinesses:           "can_manage_businesses",
	CapManageProfessionalContacts: "can_manage_professional_contacts",
	CapAddBeneficiaries:           "can_add_beneficiaries",
	CapViewDashboard:              "can_view_dashboard",
	CapReceiveVerificationUpdates: "can_receive_verification_updates",
}

var capabilityByName = func() map[string]Capability {
	m := make(map[string]Capability, capabilityCount)
	for i, name := range capabilityNames {
		m[name] = Capability(i)
	}
	return m
}()

// String returns the wire name of the capability, e.g. "can_manage_users".
func (c Capability) String() string {
	if c >= capabilityCount {
		return ""
	}
	return capabilityNames[c]
}

// Valid reports whether c belongs to the closed capability set.
func (c Capability) Valid() bool {
	return c < capabilityCount
}

// ParseCapability resolves a wire name. Unknown names report false.
func ParseCapability(name string) (Capability, bool) {
	c, ok := capabilityByName[name]
	return c, ok
}

// CapabilityNames returns every known capability name in declaration order.
func CapabilityNames() []string {
	out := make([]string, len(capabilityNames))
	copy(out, capabilityNames[:])
	return out
}

// CapabilitySet is a bit-set of capabilities. The zero value grants nothing.
type CapabilitySet uint32

// NewCapabilitySet builds a set from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

// ParseCapabilitySet builds a set from wire names. The first unknown name is
// returned as a ValidationError.
func ParseCapabilitySet(names []string) (CapabilitySet, error) {
	var s CapabilitySet
	for _, name := range names {
		c, ok := ParseCapability(name)
		if !ok {
			return 0, &ValidationError{Field: "capabilities", Reason: "unknown capability " + name}
		}
		s = s.With(c)
	}
	return s, nil
}

// Has reports whether c is in the set. Out-of-range capabilities are never held.
func (s CapabilitySet) Has(c Capability) bool {
	if !c.Valid() {
		return false
	}
	return s&(1<<c) != 0
}

// With returns a copy of s including c.
func (s CapabilitySet) With(c Capability) CapabilitySet {
	if !c.Valid() {
		return s
	}
	return s | 1<<c
}

// Without returns a copy of s excluding c.
func (s CapabilitySet) Without(c Capability) CapabilitySet {
	if !c.Valid() {
		return s
	}
	return s &^ (1 << c)
}

// Names lists the wire names held by s, sorted.
func (s CapabilitySet) Names() []string {
	out := make([]string, 0, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		if s.Has(c) {
			out = append(out, c.String())
		}
	}
	sort.Strings(out)
	return out
}
