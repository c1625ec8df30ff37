package dto

import "time"

// VerifyTokenRequest represents a checkpoint scan of a QR badge
type VerifyTokenRequest struct {
	QRData   string `json:"qrData" binding:"required"`
	Location string `json:"location" example:"Main Gate"`
}

// ManualVerifyRequest represents the operator override path: a typed
// student number plus a mandatory reason for bypassing the scanner.
type ManualVerifyRequest struct {
	StudentID string `json:"studentId" binding:"required" example:"STU001"`
	Location  string `json:"location" example:"Main Gate"`
	Reason    string `json:"reason" binding:"required" example:"QR code damaged"`
}

// VerificationOutcome is the decision shown to the checkpoint operator
type VerificationOutcome struct {
	AccessGranted      bool             `json:"accessGranted"`
	Student            *StudentResponse `json:"student,omitempty"` // absent when the token never resolved
	Reason             string           `json:"reason,omitempty"`
	VerificationMethod string           `json:"verificationMethod" example:"qr"` // "qr" or "manual"
	Timestamp          time.Time        `json:"timestamp"`
	Location           string           `json:"location" example:"Main Gate"`
}

// AccessLogFilter narrows the access-log listing
type AccessLogFilter struct {
	StudentNumber string     // substring match on the student number
	DateFrom      *time.Time // inclusive lower bound on created_at
	DateTo        *time.Time // inclusive upper bound on created_at
	AccessGranted *bool
}
