package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/pkg/apperrors"
	"github.com/derick/campusqr/internal/pkg/qrtoken"
)

// Denial reasons shown to the checkpoint operator. The inactive reason
// carries the live enrollment status so the operator can explain the
// denial without a roster lookup.
const (
	reasonInvalidQR      = "Invalid QR code"
	reasonNotFound       = "Student not found or inactive"
	reasonManualNotFound = "Student not found"
	reasonAccessGranted  = "Access granted"
	reasonManualOverride = "Manual verification"
	inactiveReasonFormat = "Student enrollment status is '%s'"

	// Checkpoints that do not report a location still produce a
	// readable audit row
	locationUnknown = "Unknown"
)

// EnrollmentStore is the roster lookup surface the verification policy
// depends on. Both lookups only return soft-delete-surviving rows.
type EnrollmentStore interface {
	// FindActiveStudent resolves a badge payload: both the record ID and
	// the student number must match the same row.
	FindActiveStudent(ctx context.Context, recordID int64, studentNumber string) (*models.Student, error)

	// FindActiveStudentByNumber resolves a manually typed student number.
	FindActiveStudentByNumber(ctx context.Context, studentNumber string) (*models.Student, error)
}

// AccessLogStore records and lists verification attempts
type AccessLogStore interface {
	CreateAccessLog(ctx context.Context, log *models.AccessLog) error
	GetAll(ctx context.Context, filter dto.AccessLogFilter, page, pageSize int) ([]models.AccessLog, int64, error)
}

// ScanService implements the checkpoint verification policy: decode the
// badge, check the live roster, decide, and record exactly one audit
// row per attempt.
type ScanService struct {
	enrollment EnrollmentStore
	accessLogs AccessLogStore
	codec      *qrtoken.Codec
	logger     zerolog.Logger
}

// NewScanService creates a new ScanService
func NewScanService(enrollment EnrollmentStore, accessLogs AccessLogStore, codec *qrtoken.Codec, logger zerolog.Logger) *ScanService {
	return &ScanService{
		enrollment: enrollment,
		accessLogs: accessLogs,
		codec:      codec,
		logger:     logger,
	}
}

// VerifyToken decides access for a scanned QR badge.
//
// The decision is made against the roster as it is now, not as it was
// when the badge was issued: a valid token for a student who has since
// been suspended or graduated is denied. Only an "active" enrollment
// status grants access; every other value, including ones this code
// has never seen, denies.
//
// Every terminal outcome writes one access log row. A failing log
// write is reported to the log stream but never changes the decision,
// and a roster lookup failure surfaces as an error, not a denial.
func (s *ScanService) VerifyToken(ctx context.Context, operatorID int64, req dto.VerifyTokenRequest) (*dto.VerificationOutcome, error) {
	now := time.Now()
	if req.Location == "" {
		req.Location = locationUnknown
	}

	payload, err := s.codec.Open(req.QRData)
	if err != nil {
		if !errors.Is(err, qrtoken.ErrInvalidToken) {
			return nil, fmt.Errorf("opening token: %w", err)
		}

		s.logger.Warn().
			Int64("operatorId", operatorID).
			Str("location", req.Location).
			Msg("Rejected undecodable QR token")

		s.recordAttempt(ctx, &models.AccessLog{
			ScannedBy:        operatorID,
			Location:         req.Location,
			AccessGranted:    false,
			VerificationType: models.VerificationQR,
			QRData:           &req.QRData,
			ErrorMessage:     strPtr(reasonInvalidQR),
		})

		return s.deny(nil, reasonInvalidQR, models.VerificationQR, now, req.Location), nil
	}

	student, err := s.enrollment.FindActiveStudent(ctx, payload.RecordID, payload.StudentNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			s.recordAttempt(ctx, &models.AccessLog{
				ScannedBy:        operatorID,
				Location:         req.Location,
				AccessGranted:    false,
				VerificationType: models.VerificationQR,
				QRData:           &req.QRData,
				ErrorMessage:     strPtr(reasonNotFound),
			})
			return s.deny(nil, reasonNotFound, models.VerificationQR, now, req.Location), nil
		}
		return nil, fmt.Errorf("looking up student: %w", err)
	}

	if student.EnrollmentStatus != models.StatusActive {
		reason := fmt.Sprintf(inactiveReasonFormat, student.EnrollmentStatus)
		s.recordAttempt(ctx, &models.AccessLog{
			StudentID:        &student.ID,
			ScannedBy:        operatorID,
			Location:         req.Location,
			AccessGranted:    false,
			VerificationType: models.VerificationQR,
			QRData:           &req.QRData,
			ErrorMessage:     &reason,
		})
		return s.deny(student, reason, models.VerificationQR, now, req.Location), nil
	}

	s.recordAttempt(ctx, &models.AccessLog{
		StudentID:        &student.ID,
		ScannedBy:        operatorID,
		Location:         req.Location,
		AccessGranted:    true,
		VerificationType: models.VerificationQR,
		QRData:           &req.QRData,
	})

	return s.grant(student, reasonAccessGranted, models.VerificationQR, now, req.Location), nil
}

// VerifyManually decides access for a typed-in student number. The
// operator is vouching for the person in front of them, so a found
// student is granted regardless of enrollment status; the mandatory
// reason goes into the audit trail.
func (s *ScanService) VerifyManually(ctx context.Context, operatorID int64, req dto.ManualVerifyRequest) (*dto.VerificationOutcome, error) {
	now := time.Now()
	if req.Location == "" {
		req.Location = locationUnknown
	}

	// The reason check precedes any store call: a rejected request is
	// not an attempt and must not appear in the audit trail.
	if req.Reason == "" {
		return nil, apperrors.NewValidationError("manual verification requires a reason")
	}

	student, err := s.enrollment.FindActiveStudentByNumber(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			s.recordAttempt(ctx, &models.AccessLog{
				ScannedBy:        operatorID,
				Location:         req.Location,
				AccessGranted:    false,
				VerificationType: models.VerificationManual,
				ManualReason:     &req.Reason,
				ErrorMessage:     strPtr(reasonManualNotFound),
			})
			return s.deny(nil, reasonManualNotFound, models.VerificationManual, now, req.Location), nil
		}
		return nil, fmt.Errorf("looking up student: %w", err)
	}

	s.recordAttempt(ctx, &models.AccessLog{
		StudentID:        &student.ID,
		ScannedBy:        operatorID,
		Location:         req.Location,
		AccessGranted:    true,
		VerificationType: models.VerificationManual,
		ManualReason:     &req.Reason,
	})

	return s.grant(student, reasonManualOverride, models.VerificationManual, now, req.Location), nil
}

// GetAccessLogs retrieves the audit trail with filters and pagination
func (s *ScanService) GetAccessLogs(ctx context.Context, filter dto.AccessLogFilter, page, pageSize int) ([]models.AccessLog, int64, error) {
	logs, total, err := s.accessLogs.GetAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing access logs: %w", err)
	}
	return logs, total, nil
}

// recordAttempt writes one audit row. The verification outcome is
// already decided when this runs, so a store failure is logged and
// swallowed.
func (s *ScanService) recordAttempt(ctx context.Context, log *models.AccessLog) {
	if err := s.accessLogs.CreateAccessLog(ctx, log); err != nil {
		s.logger.Error().Err(err).
			Int64("operatorId", log.ScannedBy).
			Bool("accessGranted", log.AccessGranted).
			Msg("Failed to record access attempt")
	}
}

func (s *ScanService) grant(student *models.Student, reason, method string, ts time.Time, location string) *dto.VerificationOutcome {
	resp := dto.FromStudent(student)
	return &dto.VerificationOutcome{
		AccessGranted:      true,
		Student:            &resp,
		Reason:             reason,
		VerificationMethod: method,
		Timestamp:          ts,
		Location:           location,
	}
}

func (s *ScanService) deny(student *models.Student, reason, method string, ts time.Time, location string) *dto.VerificationOutcome {
	outcome := &dto.VerificationOutcome{
		AccessGranted:      false,
		Reason:             reason,
		VerificationMethod: method,
		Timestamp:          ts,
		Location:           location,
	}
	if student != nil {
		resp := dto.FromStudent(student)
		outcome.Student = &resp
	}
	return outcome
}

func strPtr(s string) *string {
	return &s
}
