package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/app/repositories"
	"github.com/derick/campusqr/internal/pkg/apperrors"
	"github.com/derick/campusqr/internal/pkg/filestorage"
	"github.com/derick/campusqr/internal/pkg/qrtoken"
)

const (
	qrImageSize  = 256
	photoSubPath = "photos"
	maxPhotoSize = 5 << 20 // 5MB
)

// StudentService handles roster management and badge issuance
type StudentService struct {
	studentRepo *repositories.StudentRepository
	codec       *qrtoken.Codec
	storage     filestorage.FileStorage
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo *repositories.StudentRepository, codec *qrtoken.Codec, storage filestorage.FileStorage, logger zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		codec:       codec,
		storage:     storage,
		logger:      logger,
	}
}

// GetAllStudents retrieves students with filtering and pagination
func (s *StudentService) GetAllStudents(ctx context.Context, search, course, status string, page, pageSize int) ([]models.Student, int64, error) {
	return s.studentRepo.GetAll(ctx, search, course, status, page, pageSize)
}

// GetStudentByID retrieves a single roster record
func (s *StudentService) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// CreateStudent adds a roster record, storing the badge photo when one
// was uploaded.
func (s *StudentService) CreateStudent(ctx context.Context, req dto.CreateStudentRequest, photo *multipart.FileHeader) (*models.Student, error) {
	status := req.EnrollmentStatus
	if status == "" {
		status = models.StatusActive
	}

	student := &models.Student{
		StudentID:        req.StudentID,
		Name:             req.Name,
		Email:            req.Email,
		Course:           req.Course,
		YearLevel:        req.YearLevel,
		EnrollmentStatus: status,
	}

	if photo != nil {
		if photo.Size > maxPhotoSize {
			return nil, apperrors.NewValidationError("photo exceeds the 5MB limit")
		}
		photoURL, err := s.storage.SaveFileWithPath(photo, photoSubPath)
		if err != nil {
			return nil, fmt.Errorf("saving photo: %w", err)
		}
		student.PhotoURL = &photoURL
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		// Roll back the stored photo so a failed insert leaves no orphan file
		if student.PhotoURL != nil {
			if delErr := s.storage.DeleteFile(*student.PhotoURL); delErr != nil {
				s.logger.Warn().Err(delErr).Str("path", *student.PhotoURL).Msg("Failed to clean up photo after create failure")
			}
		}
		return nil, err
	}

	s.logger.Info().Int64("studentId", student.ID).Str("studentNumber", student.StudentID).Msg("Student created")
	return student, nil
}

// UpdateStudent updates a roster record, replacing the badge photo when
// a new one was uploaded.
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, req dto.UpdateStudentRequest, photo *multipart.FileHeader) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student.StudentID = req.StudentID
	student.Name = req.Name
	student.Email = req.Email
	student.Course = req.Course
	student.YearLevel = req.YearLevel
	if req.EnrollmentStatus != "" {
		student.EnrollmentStatus = req.EnrollmentStatus
	}

	var oldPhoto *string
	if photo != nil {
		if photo.Size > maxPhotoSize {
			return nil, apperrors.NewValidationError("photo exceeds the 5MB limit")
		}
		photoURL, err := s.storage.SaveFileWithPath(photo, photoSubPath)
		if err != nil {
			return nil, fmt.Errorf("saving photo: %w", err)
		}
		oldPhoto = student.PhotoURL
		student.PhotoURL = &photoURL
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}

	if oldPhoto != nil {
		if err := s.storage.DeleteFile(*oldPhoto); err != nil {
			s.logger.Warn().Err(err).Str("path", *oldPhoto).Msg("Failed to delete replaced photo")
		}
	}

	return student, nil
}

// DeleteStudent soft-deletes a roster record. Issued badges stop
// verifying immediately because lookups only see live rows.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("studentId", id).Msg("Student deleted")
	return nil
}

// IssueQRCode seals a fresh badge token for the student and renders it
// as a QR image. Each call produces a new token; previously issued ones
// stay valid, since validity is decided against the roster at scan
// time, not at issuance.
func (s *StudentService) IssueQRCode(ctx context.Context, id int64) (*dto.StudentQRResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	token, err := s.codec.Seal(qrtoken.Payload{
		RecordID:      student.ID,
		StudentNumber: student.StudentID,
		DisplayName:   student.Name,
		IssuedAt:      time.Now().UnixMilli(),
		SchemaVersion: qrtoken.SchemaVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("sealing badge token: %w", err)
	}

	png, err := qrcode.Encode(token, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("rendering QR image: %w", err)
	}

	return &dto.StudentQRResponse{
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		QRData: token,
		Student: dto.StudentSummary{
			ID:        student.ID,
			StudentID: student.StudentID,
			Name:      student.Name,
			Course:    student.Course,
		},
	}, nil
}
