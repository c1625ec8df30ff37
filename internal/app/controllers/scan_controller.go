package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/app/services"
	"github.com/derick/campusqr/internal/metrics"
	"github.com/derick/campusqr/internal/middleware"
	"github.com/derick/campusqr/internal/pkg/helpers"
)

// ScanController handles checkpoint verification endpoints
type ScanController struct {
	scanService *services.ScanService
	collector   *metrics.Collector
}

// NewScanController creates a new ScanController
func NewScanController(scanService *services.ScanService, collector *metrics.Collector) *ScanController {
	return &ScanController{
		scanService: scanService,
		collector:   collector,
	}
}

// VerifyToken decides access for a scanned QR badge
// @Summary Verify a scanned QR badge
// @Description Decodes the badge token and checks the student against the live roster. Every attempt is recorded.
// @Tags scan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.VerifyTokenRequest true "Scanned QR data and checkpoint location"
// @Success 200 {object} dto.APIResponse{data=dto.VerificationOutcome} "Verification decision"
// @Failure 400 {object} dto.ErrorResponse "Missing QR data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 429 {object} dto.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /scan/verify [post]
func (c *ScanController) VerifyToken(ctx *gin.Context) {
	var req dto.VerifyTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "QR data is required").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	outcome, err := c.scanService.VerifyToken(ctx, middleware.GetUserID(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.collector.RecordVerification(models.VerificationQR, outcome.AccessGranted)

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      outcome,
		Timestamp: time.Now(),
	})
}

// VerifyManually decides access for a typed-in student number
// @Summary Manual verification
// @Description Operator override when a badge cannot be scanned; requires a reason
// @Tags scan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ManualVerifyRequest true "Student number, location and reason"
// @Success 200 {object} dto.APIResponse{data=dto.VerificationOutcome} "Verification decision"
// @Failure 400 {object} dto.ErrorResponse "Missing student number or reason"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 429 {object} dto.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /scan/manual-verify [post]
func (c *ScanController) VerifyManually(ctx *gin.Context) {
	var req dto.ManualVerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Student ID and reason are required").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	outcome, err := c.scanService.VerifyManually(ctx, middleware.GetUserID(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.collector.RecordVerification(models.VerificationManual, outcome.AccessGranted)

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      outcome,
		Timestamp: time.Now(),
	})
}

// GetAccessLogs lists the access audit trail
// @Summary List access logs
// @Description Retrieves verification attempts with filters and pagination
// @Tags scan
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Param student query string false "Match student number"
// @Param from query string false "Start of date range (RFC3339)"
// @Param to query string false "End of date range (RFC3339)"
// @Param granted query bool false "Filter by decision"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Access logs retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter value"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /scan/logs [get]
func (c *ScanController) GetAccessLogs(ctx *gin.Context) {
	filter, ok := parseAccessLogFilter(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	logs, total, err := c.scanService.GetAccessLogs(ctx, filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.PaginatedResponse{
			Items:      logs,
			Pagination: helpers.NewPaginationInfo(total, page, size),
		},
		Timestamp: time.Now(),
	})
}

func parseAccessLogFilter(ctx *gin.Context) (dto.AccessLogFilter, bool) {
	filter := dto.AccessLogFilter{StudentNumber: ctx.Query("student")}

	if from := ctx.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			badFilterValue(ctx, "from")
			return filter, false
		}
		filter.DateFrom = &t
	}

	if to := ctx.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			badFilterValue(ctx, "to")
			return filter, false
		}
		filter.DateTo = &t
	}

	if granted := ctx.Query("granted"); granted != "" {
		switch granted {
		case "true":
			v := true
			filter.AccessGranted = &v
		case "false":
			v := false
			filter.AccessGranted = &v
		default:
			badFilterValue(ctx, "granted")
			return filter, false
		}
	}

	return filter, true
}

func badFilterValue(ctx *gin.Context, field string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter value").
		WithField(field)
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
