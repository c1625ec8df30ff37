package dto

import (
	"time"

	"github.com/derick/campusqr/internal/app/models"
)

// StudentResponse is the public-safe view of a roster record: only the
// fields a checkpoint operator or admin screen needs, never internal
// flags like the soft-delete marker.
type StudentResponse struct {
	ID               int64     `json:"id" example:"42"`
	StudentID        string    `json:"studentId" example:"STU001"`
	Name             string    `json:"name" example:"John Doe"`
	Email            string    `json:"email" example:"john.doe@campus.edu"`
	Course           string    `json:"course" example:"Computer Science"`
	YearLevel        int       `json:"yearLevel" example:"2"`
	EnrollmentStatus string    `json:"enrollmentStatus" example:"active"`
	PhotoURL         *string   `json:"photoUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FromStudent converts a models.Student to a StudentResponse
func FromStudent(student *models.Student) StudentResponse {
	return StudentResponse{
		ID:               student.ID,
		StudentID:        student.StudentID,
		Name:             student.Name,
		Email:            student.Email,
		Course:           student.Course,
		YearLevel:        student.YearLevel,
		EnrollmentStatus: student.EnrollmentStatus,
		PhotoURL:         student.PhotoURL,
		CreatedAt:        student.CreatedAt,
		UpdatedAt:        student.UpdatedAt,
	}
}

// CreateStudentRequest represents a request to add a roster record.
// Bound from multipart form fields so a photo can ride along.
type CreateStudentRequest struct {
	StudentID        string `form:"student_id" binding:"required" example:"STU001"`
	Name             string `form:"name" binding:"required" example:"John Doe"`
	Email            string `form:"email" binding:"required,email"`
	Course           string `form:"course" binding:"required"`
	YearLevel        int    `form:"year_level"`
	EnrollmentStatus string `form:"enrollment_status"`
}

// UpdateStudentRequest represents a request to update a roster record
type UpdateStudentRequest struct {
	StudentID        string `form:"student_id" binding:"required"`
	Name             string `form:"name" binding:"required"`
	Email            string `form:"email" binding:"required,email"`
	Course           string `form:"course" binding:"required"`
	YearLevel        int    `form:"year_level"`
	EnrollmentStatus string `form:"enrollment_status"`
}

// StudentQRResponse carries a freshly issued badge code
type StudentQRResponse struct {
	QRCode  string         `json:"qrCode"`  // PNG data URL ready for display or print
	QRData  string         `json:"qrData"`  // the sealed token embedded in the image
	Student StudentSummary `json:"student"` // minimal identity echo for the issuance screen
}

// StudentSummary is the minimal identity subset shown next to an issued code
type StudentSummary struct {
	ID        int64  `json:"id"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Course    string `json:"course"`
}
