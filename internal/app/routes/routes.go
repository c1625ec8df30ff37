package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/derick/campusqr/internal/app/controllers"
	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	scanController *controllers.ScanController,
	userController *controllers.UserController,
	dashboardController *controllers.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
	scanRateLimiter *middleware.RateLimiter,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/profile", authController.GetProfile)

		// Student routes - reads are open to any authenticated operator,
		// writes are restricted to admins
		students := authenticated.Group("/students")
		{
			students.GET("", studentController.GetAllStudents)
			students.GET("/:id", studentController.GetStudentByID)
			students.GET("/:id/qr", studentController.GetStudentQR)

			studentsAdminProtected := students.Group("")
			studentsAdminProtected.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
			{
				studentsAdminProtected.POST("", studentController.CreateStudent)
				studentsAdminProtected.PUT("/:id", studentController.UpdateStudent)
				studentsAdminProtected.DELETE("/:id", studentController.DeleteStudent)
			}
		}

		// Scan routes - verification endpoints are rate limited per operator
		scan := authenticated.Group("/scan")
		{
			scanLimited := scan.Group("")
			scanLimited.Use(scanRateLimiter.Middleware())
			{
				scanLimited.POST("/verify", scanController.VerifyToken)
				scanLimited.POST("/manual-verify", scanController.VerifyManually)
			}

			scan.GET("/logs", scanController.GetAccessLogs)
		}

		// User management routes (admin only)
		users := authenticated.Group("/users")
		users.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			users.GET("", userController.GetAllUsers)
			users.GET("/stats", userController.GetUserStats)
			users.GET("/:id", userController.GetUserByID)
			users.POST("", userController.CreateUser)
			users.PUT("/:id", userController.UpdateUser)
			users.DELETE("/:id", userController.DeleteUser)
		}

		// Dashboard routes
		dashboard := authenticated.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardController.GetStats)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
