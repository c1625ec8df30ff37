package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
)

// AccessLogRepository handles database operations for the access audit trail
type AccessLogRepository struct {
	db *pgxpool.Pool
}

// NewAccessLogRepository creates a new AccessLogRepository
func NewAccessLogRepository(db *pgxpool.Pool) *AccessLogRepository {
	return &AccessLogRepository{db: db}
}

// CreateAccessLog inserts one access log row
func (r *AccessLogRepository) CreateAccessLog(ctx context.Context, log *models.AccessLog) error {
	query := `
		INSERT INTO access_logs (student_id, scanned_by, location, access_granted, verification_type, qr_data, manual_reason, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		log.StudentID,
		log.ScannedBy,
		log.Location,
		log.AccessGranted,
		log.VerificationType,
		log.QRData,
		log.ManualReason,
		log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating access log: %w", err)
	}

	return nil
}

// GetAll retrieves access logs with filtering and pagination, newest
// first. Student and operator columns are joined in so the listing can
// render without extra lookups.
func (r *AccessLogRepository) GetAll(ctx context.Context, filter dto.AccessLogFilter, page, pageSize int) ([]models.AccessLog, int64, error) {
	query := squirrel.Select(
		"al.id", "al.student_id", "al.scanned_by", "al.location", "al.access_granted",
		"al.verification_type", "al.manual_reason", "al.error_message", "al.created_at",
		"s.student_id", "s.name", "s.course", "s.photo_url",
		"u.username",
		"COUNT(*) OVER()",
	).
		From("access_logs al").
		LeftJoin("students s ON s.id = al.student_id").
		LeftJoin("users u ON u.id = al.scanned_by").
		PlaceholderFormat(squirrel.Dollar)

	if filter.StudentNumber != "" {
		query = query.Where("s.student_id ILIKE ?", "%"+filter.StudentNumber+"%")
	}
	if filter.DateFrom != nil {
		query = query.Where("al.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("al.created_at <= ?", *filter.DateTo)
	}
	if filter.AccessGranted != nil {
		query = query.Where("al.access_granted = ?", *filter.AccessGranted)
	}

	offset := (page - 1) * pageSize
	query = query.OrderBy("al.created_at DESC").Limit(uint64(pageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var logs []models.AccessLog
	var total int64

	for rows.Next() {
		var log models.AccessLog
		if err := rows.Scan(
			&log.ID,
			&log.StudentID,
			&log.ScannedBy,
			&log.Location,
			&log.AccessGranted,
			&log.VerificationType,
			&log.ManualReason,
			&log.ErrorMessage,
			&log.CreatedAt,
			&log.StudentNumber,
			&log.StudentName,
			&log.StudentCourse,
			&log.StudentPhotoURL,
			&log.ScannedByUsername,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning access log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// GetRecent retrieves the most recent access logs for the dashboard
func (r *AccessLogRepository) GetRecent(ctx context.Context, limit int) ([]models.AccessLog, error) {
	logs, _, err := r.GetAll(ctx, dto.AccessLogFilter{}, 1, limit)
	return logs, err
}

// CountToday returns today's attempt and grant counts
func (r *AccessLogRepository) CountToday(ctx context.Context) (total int64, granted int64, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE access_granted = TRUE)
		FROM access_logs
		WHERE created_at >= CURRENT_DATE
	`

	if err := r.db.QueryRow(ctx, query).Scan(&total, &granted); err != nil {
		return 0, 0, fmt.Errorf("error counting today's access: %w", err)
	}
	return total, granted, nil
}

// GetDailyStats returns per-day attempt and grant counts over the last
// N days, oldest first. Days with no attempts are omitted.
func (r *AccessLogRepository) GetDailyStats(ctx context.Context, days int) ([]dto.DailyAccessStat, error) {
	query := `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE access_granted = TRUE)
		FROM access_logs
		WHERE created_at >= CURRENT_DATE - $1 * INTERVAL '1 day'
		GROUP BY created_at::date
		ORDER BY created_at::date ASC
	`

	rows, err := r.db.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("error retrieving daily stats: %w", err)
	}
	defer rows.Close()

	var stats []dto.DailyAccessStat
	for rows.Next() {
		var stat dto.DailyAccessStat
		if err := rows.Scan(&stat.Date, &stat.TotalAttempts, &stat.SuccessfulAttempts); err != nil {
			return nil, err
		}
		if stat.TotalAttempts > 0 {
			stat.SuccessRate = float64(stat.SuccessfulAttempts) / float64(stat.TotalAttempts) * 100
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
