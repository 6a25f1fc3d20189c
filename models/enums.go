package models

import "errors"

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "Draft"
	InvoiceStatusSent    InvoiceStatus = "Sent"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	statuses := map[string]InvoiceStatus{
		"Draft":   InvoiceStatusDraft,
		"Sent":    InvoiceStatusSent,
		"Paid":    InvoiceStatusPaid,
		"Overdue": InvoiceStatusOverdue,
	}
	status, ok := statuses[s]
	if !ok {
		return "", errors.New("invalid invoice status")
	}
	return status, nil
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// IsTerminal reports whether the status can no longer change:
// paid and failed records never go back to pending.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// MapProviderStatus translates a raw Mollie payment status into the local
// payment status. The bool is false for statuses that must be ignored
// (still pending on the provider side, or unknown).
func MapProviderStatus(providerStatus string) (PaymentStatus, bool) {
	switch providerStatus {
	case "paid":
		return PaymentStatusPaid, true
	case "failed", "canceled", "expired":
		return PaymentStatusFailed, true
	case "pending", "open":
		return PaymentStatusPending, false
	default:
		return PaymentStatusPending, false
	}
}

type LedgerSourceType string

const (
	LedgerSourceContribution LedgerSourceType = "Contribution"
	LedgerSourceDonation     LedgerSourceType = "Donation"
	LedgerSourceManual       LedgerSourceType = "Manual"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "Admin"
	UserRoleBoard    UserRole = "Board"
	UserRoleReadonly UserRole = "Readonly"
)

func ParseUserRole(s string) (UserRole, error) {
	roles := map[string]UserRole{
		"Admin":    UserRoleAdmin,
		"Board":    UserRoleBoard,
		"Readonly": UserRoleReadonly,
	}
	role, ok := roles[s]
	if !ok {
		return "", errors.New("invalid user role")
	}
	return role, nil
}

// MemberSegment replaces the ad hoc boolean member flags of the old
// administration (bestuurslid, donateur, vrijwilliger, nieuwsbrief).
type MemberSegment string

const (
	MemberSegmentBoard      MemberSegment = "Board"
	MemberSegmentDonor      MemberSegment = "Donor"
	MemberSegmentVolunteer  MemberSegment = "Volunteer"
	MemberSegmentNewsletter MemberSegment = "Newsletter"
)

func ParseMemberSegment(s string) (MemberSegment, error) {
	segments := map[string]MemberSegment{
		"Board":      MemberSegmentBoard,
		"Donor":      MemberSegmentDonor,
		"Volunteer":  MemberSegmentVolunteer,
		"Newsletter": MemberSegmentNewsletter,
	}
	segment, ok := segments[s]
	if !ok {
		return "", errors.New("invalid member segment")
	}
	return segment, nil
}

type MailingStatus string

const (
	MailingStatusDraft   MailingStatus = "Draft"
	MailingStatusSending MailingStatus = "Sending"
	MailingStatusSent    MailingStatus = "Sent"
)

type MembershipType string

const (
	MembershipTypeRegular  MembershipType = "Regular"
	MembershipTypeStudent  MembershipType = "Student"
	MembershipTypeHonorary MembershipType = "Honorary"
)
