package dto

// DashboardOverview holds the headline numbers on the admin dashboard
type DashboardOverview struct {
	TotalStudents   int64   `json:"totalStudents"`
	ActiveStudents  int64   `json:"activeStudents"`
	TodayAccess     int64   `json:"todayAccess"`
	TodaySuccessful int64   `json:"todaySuccessful"`
	SuccessRate     float64 `json:"successRate"` // percentage, 0 when no attempts today
}

// DailyAccessStat is one point in the weekly access series
type DailyAccessStat struct {
	Date               string  `json:"date"` // YYYY-MM-DD
	TotalAttempts      int64   `json:"totalAttempts"`
	SuccessfulAttempts int64   `json:"successfulAttempts"`
	SuccessRate        float64 `json:"successRate"`
}

// CourseCount is a course with its active student count
type CourseCount struct {
	Course       string `json:"course"`
	StudentCount int64  `json:"studentCount"`
}

// StatusCount is an enrollment status with its student count
type StatusCount struct {
	EnrollmentStatus string `json:"enrollmentStatus"`
	Count            int64  `json:"count"`
}

// DashboardStatsResponse aggregates everything the dashboard page shows
type DashboardStatsResponse struct {
	Overview        DashboardOverview `json:"overview"`
	RecentAccess    interface{}       `json:"recentAccess"`
	WeeklyStats     []DailyAccessStat `json:"weeklyStats"`
	TopCourses      []CourseCount     `json:"topCourses"`
	EnrollmentStats []StatusCount     `json:"enrollmentStats"`
}
