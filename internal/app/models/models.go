package models

// RoleType defines the staff user role
type RoleType string

const (
	RoleAdmin RoleType = "admin" // full roster and user management
	RoleGuard RoleType = "guard" // checkpoint scanning only
)

// EnrollmentStatus values known to the system. The verification policy
// is default-deny: anything other than StatusActive denies access,
// including values not listed here.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusGraduated = "graduated"
	StatusSuspended = "suspended"
)

// Verification methods recorded in access logs
const (
	VerificationQR     = "qr"
	VerificationManual = "manual"
)
