package models

import "time"

// Student defines the roster model based on the 'students' table
type Student struct {
	ID               int64     `json:"id" db:"id" example:"42"`                                  // Unique identifier for the student record
	StudentID        string    `json:"studentId" db:"student_id" example:"STU001"`               // Human-readable student number printed on the badge
	Name             string    `json:"name" db:"name" example:"John Doe"`                        // Full name
	Email            string    `json:"email" db:"email" example:"john.doe@campus.edu"`           // Contact email
	Course           string    `json:"course" db:"course" example:"Computer Science"`            // Enrolled course/program
	YearLevel        int       `json:"yearLevel" db:"year_level" example:"2"`                    // Current year level
	EnrollmentStatus string    `json:"enrollmentStatus" db:"enrollment_status" example:"active"` // Live status checked at every verification
	PhotoURL         *string   `json:"photoUrl,omitempty" db:"photo_url"`                        // Badge photo (nullable)
	Active           bool      `json:"-" db:"active"`                                            // Soft-delete flag, never exposed
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}
