package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/pkg/apperrors"
	"github.com/derick/campusqr/internal/pkg/qrtoken"
)

type fakeEnrollmentStore struct {
	students map[string]*models.Student // keyed by student number
	err      error
}

func (f *fakeEnrollmentStore) FindActiveStudent(_ context.Context, recordID int64, studentNumber string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	student, ok := f.students[studentNumber]
	if !ok || student.ID != recordID {
		return nil, apperrors.ErrStudentNotFound
	}
	return student, nil
}

func (f *fakeEnrollmentStore) FindActiveStudentByNumber(_ context.Context, studentNumber string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	student, ok := f.students[studentNumber]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return student, nil
}

type fakeAccessLogStore struct {
	logs      []models.AccessLog
	createErr error
}

func (f *fakeAccessLogStore) CreateAccessLog(_ context.Context, log *models.AccessLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeAccessLogStore) GetAll(_ context.Context, _ dto.AccessLogFilter, _, _ int) ([]models.AccessLog, int64, error) {
	return f.logs, int64(len(f.logs)), nil
}

func newTestCodec(t *testing.T) *qrtoken.Codec {
	t.Helper()
	codec, err := qrtoken.NewCodec("scan-service-test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func sealToken(t *testing.T, codec *qrtoken.Codec, student *models.Student) string {
	t.Helper()
	token, err := codec.Seal(qrtoken.Payload{
		RecordID:      student.ID,
		StudentNumber: student.StudentID,
		DisplayName:   student.Name,
		IssuedAt:      time.Now().UnixMilli(),
		SchemaVersion: qrtoken.SchemaVersion,
	})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return token
}

func newScanFixture(t *testing.T, students ...*models.Student) (*ScanService, *fakeEnrollmentStore, *fakeAccessLogStore, *qrtoken.Codec) {
	t.Helper()
	enrollment := &fakeEnrollmentStore{students: make(map[string]*models.Student)}
	for _, s := range students {
		enrollment.students[s.StudentID] = s
	}
	accessLogs := &fakeAccessLogStore{}
	codec := newTestCodec(t)
	svc := NewScanService(enrollment, accessLogs, codec, zerolog.Nop())
	return svc, enrollment, accessLogs, codec
}

func activeStudent() *models.Student {
	return &models.Student{
		ID:               42,
		StudentID:        "STU001",
		Name:             "Jane Roe",
		Course:           "Computer Science",
		EnrollmentStatus: models.StatusActive,
	}
}

func TestVerifyTokenGrantsActiveStudent(t *testing.T) {
	student := activeStudent()
	svc, _, accessLogs, codec := newScanFixture(t, student)
	token := sealToken(t, codec, student)

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token, Location: "Main Gate"})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if !outcome.AccessGranted {
		t.Errorf("access denied for active student: %q", outcome.Reason)
	}
	if outcome.Student == nil || outcome.Student.StudentID != "STU001" {
		t.Errorf("outcome student: %+v", outcome.Student)
	}
	if outcome.VerificationMethod != models.VerificationQR {
		t.Errorf("method: got %q", outcome.VerificationMethod)
	}
	if outcome.Location != "Main Gate" {
		t.Errorf("location: got %q", outcome.Location)
	}

	if len(accessLogs.logs) != 1 {
		t.Fatalf("access log rows: got %d, want 1", len(accessLogs.logs))
	}
	row := accessLogs.logs[0]
	if !row.AccessGranted || row.StudentID == nil || *row.StudentID != 42 || row.ScannedBy != 7 {
		t.Errorf("log row: %+v", row)
	}
}

func TestVerifyTokenDeniesNonActiveStatus(t *testing.T) {
	student := activeStudent()
	student.EnrollmentStatus = models.StatusSuspended
	svc, _, accessLogs, codec := newScanFixture(t, student)
	token := sealToken(t, codec, student)

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if outcome.AccessGranted {
		t.Fatal("suspended student granted access")
	}
	if !strings.Contains(outcome.Reason, "suspended") {
		t.Errorf("reason should carry the status verbatim, got %q", outcome.Reason)
	}

	if len(accessLogs.logs) != 1 {
		t.Fatalf("access log rows: got %d, want 1", len(accessLogs.logs))
	}
	if accessLogs.logs[0].AccessGranted {
		t.Error("denial logged as granted")
	}
	if accessLogs.logs[0].StudentID == nil {
		t.Error("denial for a resolved student should reference the record")
	}
}

func TestVerifyTokenDefaultDeniesUnknownStatus(t *testing.T) {
	student := activeStudent()
	student.EnrollmentStatus = "probation"
	svc, _, _, codec := newScanFixture(t, student)
	token := sealToken(t, codec, student)

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if outcome.AccessGranted {
		t.Fatal("unknown enrollment status granted access")
	}
	if !strings.Contains(outcome.Reason, "probation") {
		t.Errorf("reason: got %q", outcome.Reason)
	}
}

func TestVerifyTokenRejectsForgedToken(t *testing.T) {
	student := activeStudent()
	svc, _, accessLogs, _ := newScanFixture(t, student)

	// Sealed under a different key, as a stolen or home-made badge would be
	otherCodec, err := qrtoken.NewCodec("attacker-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	forged := sealToken(t, otherCodec, student)

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: forged, Location: "Library"})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if outcome.AccessGranted {
		t.Fatal("forged token granted access")
	}
	if outcome.Student != nil {
		t.Error("forged token should not resolve a student")
	}

	if len(accessLogs.logs) != 1 {
		t.Fatalf("access log rows: got %d, want 1", len(accessLogs.logs))
	}
	row := accessLogs.logs[0]
	if row.StudentID != nil {
		t.Error("forged token log row should have no student reference")
	}
	if row.QRData == nil || *row.QRData != forged {
		t.Error("raw token should be kept for audit")
	}
}

func TestVerifyTokenDeniesWhenRecordGone(t *testing.T) {
	student := activeStudent()
	svc, enrollment, accessLogs, codec := newScanFixture(t, student)
	token := sealToken(t, codec, student)

	// Roster changes after issuance; the old token must not keep working
	delete(enrollment.students, student.StudentID)

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if outcome.AccessGranted {
		t.Fatal("token for removed student granted access")
	}
	if len(accessLogs.logs) != 1 {
		t.Fatalf("access log rows: got %d, want 1", len(accessLogs.logs))
	}
}

func TestVerifyTokenStoreFailureIsErrorNotDenial(t *testing.T) {
	student := activeStudent()
	svc, enrollment, accessLogs, codec := newScanFixture(t, student)
	token := sealToken(t, codec, student)

	enrollment.err = errors.New("connection refused")

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token})
	if err == nil {
		t.Fatal("store failure should surface as an error")
	}
	if outcome != nil {
		t.Errorf("no outcome expected on store failure, got %+v", outcome)
	}
	if len(accessLogs.logs) != 0 {
		t.Errorf("store failure must not be logged as an attempt, got %d rows", len(accessLogs.logs))
	}
}

func TestVerifyTokenLogFailureDoesNotChangeOutcome(t *testing.T) {
	student := activeStudent()
	svc, _, accessLogs, codec := newScanFixture(t, student)
	token := sealToken(t, codec, student)

	accessLogs.createErr = errors.New("disk full")

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if !outcome.AccessGranted {
		t.Error("log write failure turned a grant into a denial")
	}
}

func TestVerifyManuallyGrantsRegardlessOfStatus(t *testing.T) {
	student := activeStudent()
	student.EnrollmentStatus = models.StatusSuspended
	svc, _, accessLogs, _ := newScanFixture(t, student)

	outcome, err := svc.VerifyManually(context.Background(), 7, dto.ManualVerifyRequest{
		StudentID: "STU001",
		Location:  "Main Gate",
		Reason:    "QR code damaged",
	})
	if err != nil {
		t.Fatalf("VerifyManually: %v", err)
	}

	// The operator override does not re-check enrollment status
	if !outcome.AccessGranted {
		t.Fatalf("manual verification denied: %q", outcome.Reason)
	}
	if outcome.VerificationMethod != models.VerificationManual {
		t.Errorf("method: got %q", outcome.VerificationMethod)
	}

	if len(accessLogs.logs) != 1 {
		t.Fatalf("access log rows: got %d, want 1", len(accessLogs.logs))
	}
	row := accessLogs.logs[0]
	if row.ManualReason == nil || *row.ManualReason != "QR code damaged" {
		t.Errorf("manual reason not recorded: %+v", row)
	}
	if row.VerificationType != models.VerificationManual {
		t.Errorf("verification type: got %q", row.VerificationType)
	}
}

func TestVerifyManuallyRequiresReason(t *testing.T) {
	student := activeStudent()
	svc, _, accessLogs, _ := newScanFixture(t, student)

	_, err := svc.VerifyManually(context.Background(), 7, dto.ManualVerifyRequest{StudentID: "STU001"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}

	// A rejected request is not an attempt
	if len(accessLogs.logs) != 0 {
		t.Errorf("rejected request must not be logged, got %d rows", len(accessLogs.logs))
	}
}

func TestVerifyManuallyDeniesUnknownStudent(t *testing.T) {
	svc, _, accessLogs, _ := newScanFixture(t)

	outcome, err := svc.VerifyManually(context.Background(), 7, dto.ManualVerifyRequest{
		StudentID: "NOPE",
		Reason:    "forgot badge",
	})
	if err != nil {
		t.Fatalf("VerifyManually: %v", err)
	}

	if outcome.AccessGranted {
		t.Fatal("unknown student granted access")
	}
	if len(accessLogs.logs) != 1 {
		t.Fatalf("access log rows: got %d, want 1", len(accessLogs.logs))
	}
	if accessLogs.logs[0].StudentID != nil {
		t.Error("unknown student log row should have no student reference")
	}
}

func TestVerifyDefaultsMissingLocation(t *testing.T) {
	student := activeStudent()
	svc, _, accessLogs, codec := newScanFixture(t, student)
	token := sealToken(t, codec, student)

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if outcome.Location != "Unknown" {
		t.Errorf("outcome location: got %q, want %q", outcome.Location, "Unknown")
	}
	if len(accessLogs.logs) != 1 || accessLogs.logs[0].Location != "Unknown" {
		t.Errorf("log location not defaulted: %+v", accessLogs.logs)
	}

	_, err = svc.VerifyManually(context.Background(), 7, dto.ManualVerifyRequest{StudentID: student.StudentID, Reason: "QR code damaged"})
	if err != nil {
		t.Fatalf("VerifyManually: %v", err)
	}
	if accessLogs.logs[1].Location != "Unknown" {
		t.Errorf("manual log location: got %q, want %q", accessLogs.logs[1].Location, "Unknown")
	}
}

func TestVerifyTokenRejectsRecombinedFields(t *testing.T) {
	first := activeStudent()
	second := &models.Student{
		ID:               43,
		StudentID:        "STU002",
		Name:             "John Smith",
		EnrollmentStatus: models.StatusActive,
	}
	svc, _, _, codec := newScanFixture(t, first, second)

	// Payload pairs one student's record ID with another's number
	token, err := codec.Seal(qrtoken.Payload{
		RecordID:      first.ID,
		StudentNumber: second.StudentID,
		DisplayName:   second.Name,
		IssuedAt:      time.Now().UnixMilli(),
		SchemaVersion: qrtoken.SchemaVersion,
	})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	outcome, err := svc.VerifyToken(context.Background(), 7, dto.VerifyTokenRequest{QRData: token})
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if outcome.AccessGranted {
		t.Fatal("mismatched record/number pair granted access")
	}
}
