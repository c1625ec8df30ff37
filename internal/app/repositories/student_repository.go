package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/pkg/apperrors"
	"github.com/derick/campusqr/internal/pkg/dberrors"
)

// StudentRepository handles database operations for the student roster
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, student_id, name, email, course, year_level, enrollment_status, photo_url, active, created_at, updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var student models.Student
	err := row.Scan(
		&student.ID,
		&student.StudentID,
		&student.Name,
		&student.Email,
		&student.Course,
		&student.YearLevel,
		&student.EnrollmentStatus,
		&student.PhotoURL,
		&student.Active,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (student_id, name, email, course, year_level, enrollment_status, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, active, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		student.StudentID,
		student.Name,
		student.Email,
		student.Course,
		student.YearLevel,
		student.EnrollmentStatus,
		student.PhotoURL,
	).Scan(&student.ID, &student.Active, &student.CreatedAt, &student.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_student_id_key") {
			return apperrors.ErrStudentIDAlreadyExists
		}
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student by record ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 AND active = TRUE`, studentColumns)

	student, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

// FindActiveStudentByNumber retrieves a student by the number printed on the badge
func (r *StudentRepository) FindActiveStudentByNumber(ctx context.Context, studentNumber string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE student_id = $1 AND active = TRUE`, studentColumns)

	student, err := scanStudent(r.db.QueryRow(ctx, query, studentNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

// FindActiveStudent retrieves the student matching both the record ID
// and the student number. Badge payloads carry both; requiring the pair
// to match rejects tokens whose fields were recombined.
func (r *StudentRepository) FindActiveStudent(ctx context.Context, recordID int64, studentNumber string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 AND student_id = $2 AND active = TRUE`, studentColumns)

	student, err := scanStudent(r.db.QueryRow(ctx, query, recordID, studentNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

// GetAll retrieves students with optional filtering and pagination.
// search matches the student number or name, case-insensitively.
func (r *StudentRepository) GetAll(ctx context.Context, search, course, status string, page, pageSize int) ([]models.Student, int64, error) {
	query := squirrel.Select(
		"id", "student_id", "name", "email", "course", "year_level",
		"enrollment_status", "photo_url", "active", "created_at", "updated_at",
		"COUNT(*) OVER()",
	).
		From("students").
		Where("active = TRUE").
		PlaceholderFormat(squirrel.Dollar)

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(student_id ILIKE ? OR name ILIKE ?)", pattern, pattern)
	}
	if course != "" {
		query = query.Where("course = ?", course)
	}
	if status != "" {
		query = query.Where("enrollment_status = ?", status)
	}

	offset := (page - 1) * pageSize
	query = query.OrderBy("name ASC").Limit(uint64(pageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	var total int64

	for rows.Next() {
		var student models.Student
		if err := rows.Scan(
			&student.ID,
			&student.StudentID,
			&student.Name,
			&student.Email,
			&student.Course,
			&student.YearLevel,
			&student.EnrollmentStatus,
			&student.PhotoURL,
			&student.Active,
			&student.CreatedAt,
			&student.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// Update updates an existing student record
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET student_id = $1, name = $2, email = $3, course = $4, year_level = $5,
		    enrollment_status = $6, photo_url = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $8 AND active = TRUE
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		student.StudentID,
		student.Name,
		student.Email,
		student.Course,
		student.YearLevel,
		student.EnrollmentStatus,
		student.PhotoURL,
		student.ID,
	).Scan(&student.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, "students_student_id_key") {
			return apperrors.ErrStudentIDAlreadyExists
		}
		return fmt.Errorf("error updating student: %w", err)
	}

	return nil
}

// Delete soft-deletes a student record. Access logs keep their reference
// so the audit trail survives roster cleanup.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE students SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND active = TRUE`, id)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// CountByEnrollment returns the total roster size and the count of
// students with the given enrollment status.
func (r *StudentRepository) CountByEnrollment(ctx context.Context, status string) (total int64, matching int64, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE enrollment_status = $1)
		FROM students
		WHERE active = TRUE
	`

	if err := r.db.QueryRow(ctx, query, status).Scan(&total, &matching); err != nil {
		return 0, 0, fmt.Errorf("error counting students: %w", err)
	}
	return total, matching, nil
}

// GetCourseCounts returns active-enrollment counts per course, largest first
func (r *StudentRepository) GetCourseCounts(ctx context.Context, limit int) ([]dto.CourseCount, error) {
	query := `
		SELECT course, COUNT(*)
		FROM students
		WHERE active = TRUE AND course <> ''
		GROUP BY course
		ORDER BY COUNT(*) DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course counts: %w", err)
	}
	defer rows.Close()

	var counts []dto.CourseCount
	for rows.Next() {
		var c dto.CourseCount
		if err := rows.Scan(&c.Course, &c.StudentCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// GetStatusCounts returns student counts per enrollment status
func (r *StudentRepository) GetStatusCounts(ctx context.Context) ([]dto.StatusCount, error) {
	query := `
		SELECT enrollment_status, COUNT(*)
		FROM students
		WHERE active = TRUE
		GROUP BY enrollment_status
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving status counts: %w", err)
	}
	defer rows.Close()

	var counts []dto.StatusCount
	for rows.Next() {
		var c dto.StatusCount
		if err := rows.Scan(&c.EnrollmentStatus, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
