package models

import "time"

// AccessLog defines one checkpoint access attempt based on the
// 'access_logs' table. StudentID is nullable: a forged or undecodable
// token produces a log row with no resolved student.
type AccessLog struct {
	ID               int64     `json:"id" db:"id"`
	StudentID        *int64    `json:"studentRecordId,omitempty" db:"student_id"`
	ScannedBy        int64     `json:"scannedBy" db:"scanned_by"`
	Location         string    `json:"location" db:"location"`
	AccessGranted    bool      `json:"accessGranted" db:"access_granted"`
	VerificationType string    `json:"verificationType" db:"verification_type"` // "qr" or "manual"
	QRData           *string   `json:"-" db:"qr_data"`                          // raw scanned token, kept for audit only
	ManualReason     *string   `json:"manualReason,omitempty" db:"manual_reason"`
	ErrorMessage     *string   `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`

	// Joined fields (populated by the list query, no db column of their own)
	StudentNumber     *string `json:"studentNumber,omitempty"`
	StudentName       *string `json:"studentName,omitempty"`
	StudentCourse     *string `json:"studentCourse,omitempty"`
	StudentPhotoURL   *string `json:"studentPhotoUrl,omitempty"`
	ScannedByUsername *string `json:"scannedByUsername,omitempty"`
}
