package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/app/repositories"
)

const (
	recentAccessLimit = 10
	weeklyStatsDays   = 7
	topCoursesLimit   = 5
)

// DashboardService aggregates roster and access numbers for the admin
// dashboard.
type DashboardService struct {
	studentRepo   *repositories.StudentRepository
	accessLogRepo *repositories.AccessLogRepository
	logger        zerolog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(studentRepo *repositories.StudentRepository, accessLogRepo *repositories.AccessLogRepository, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		studentRepo:   studentRepo,
		accessLogRepo: accessLogRepo,
		logger:        logger,
	}
}

// GetStats collects everything the dashboard page shows
func (s *DashboardService) GetStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	totalStudents, activeStudents, err := s.studentRepo.CountByEnrollment(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}

	todayTotal, todayGranted, err := s.accessLogRepo.CountToday(ctx)
	if err != nil {
		return nil, err
	}

	successRate := 0.0
	if todayTotal > 0 {
		successRate = float64(todayGranted) / float64(todayTotal) * 100
	}

	recent, err := s.accessLogRepo.GetRecent(ctx, recentAccessLimit)
	if err != nil {
		return nil, err
	}

	weekly, err := s.accessLogRepo.GetDailyStats(ctx, weeklyStatsDays)
	if err != nil {
		return nil, err
	}

	courses, err := s.studentRepo.GetCourseCounts(ctx, topCoursesLimit)
	if err != nil {
		return nil, err
	}

	statuses, err := s.studentRepo.GetStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStatsResponse{
		Overview: dto.DashboardOverview{
			TotalStudents:   totalStudents,
			ActiveStudents:  activeStudents,
			TodayAccess:     todayTotal,
			TodaySuccessful: todayGranted,
			SuccessRate:     successRate,
		},
		RecentAccess:    recent,
		WeeklyStats:     weekly,
		TopCourses:      courses,
		EnrollmentStats: statuses,
	}, nil
}
