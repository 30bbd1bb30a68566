// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/middleware"
	businessflow "github.com/codetix2020-hash/finanzasmarketing-sub001/business_flow"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttributionHandlerInterface defines the contract for attribution handlers
type AttributionHandlerInterface interface {
	TrackEvent(c fiber.Ctx) error
	GetJourney(c fiber.Ctx) error
	CalculateAttribution(c fiber.Ctx) error
	GetCampaignROI(c fiber.Ctx) error
	GetCampaignPerformance(c fiber.Ctx) error
	ListCampaignPerformance(c fiber.Ctx) error
	ExportCampaignPerformance(c fiber.Ctx) error
	GetAttributionReport(c fiber.Ctx) error
}

// AttributionHandler handles attribution HTTP requests
type AttributionHandler struct {
	trackingFlow    businessflow.TrackingFlow
	attributionFlow businessflow.AttributionFlow
	roiFlow         businessflow.CampaignROIFlow
	reportFlow      businessflow.ReportFlow
	validator       *validator.Validate
	requestTimeout  time.Duration
	logger          *zap.Logger
}

// NewAttributionHandler creates a new attribution handler
func NewAttributionHandler(
	trackingFlow businessflow.TrackingFlow,
	attributionFlow businessflow.AttributionFlow,
	roiFlow businessflow.CampaignROIFlow,
	reportFlow businessflow.ReportFlow,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *AttributionHandler {
	if requestTimeout <= 0 {
		requestTimeout = utils.DefaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttributionHandler{
		trackingFlow:    trackingFlow,
		attributionFlow: attributionFlow,
		roiFlow:         roiFlow,
		reportFlow:      reportFlow,
		validator:       validator.New(),
		requestTimeout:  requestTimeout,
		logger:          logger.Named("http"),
	}
}

func (h *AttributionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AttributionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// TrackEvent records a tracking event
// @Summary Track Event
// @Description Record a touchpoint; events carrying a user_id also advance that user's journey
// @Tags Attribution
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TrackEventRequest true "Event data"
// @Success 201 {object} dto.APIResponse{data=dto.TrackEventResponse} "Event recorded"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/events [post]
func (h *AttributionHandler) TrackEvent(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	var req dto.TrackEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validate(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidation, err)
	}
	req.OrganizationID = organizationID

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/events")
	defer cancel()

	result, err := h.trackingFlow.TrackEvent(ctx, &req, metadata)
	if err != nil {
		return h.flowError(c, err, "Failed to record event")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// GetJourney returns the journey of a user
// @Summary Get Customer Journey
// @Description Get the first touch, last touch, conversion and attribution state of a user
// @Tags Attribution
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.JourneyResponse} "Journey retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Journey not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/journeys/{user_id} [get]
func (h *AttributionHandler) GetJourney(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/journeys")
	defer cancel()

	journey, err := h.trackingFlow.GetJourney(ctx, &dto.GetJourneyRequest{
		OrganizationID: organizationID,
		UserID:         c.Params("user_id"),
	})
	if err != nil {
		return h.flowError(c, err, "Failed to retrieve journey")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Journey retrieved successfully", journey)
}

// CalculateAttribution attributes a conversion value across the user's touchpoints
// @Summary Calculate Attribution
// @Description Run first touch, last touch, linear and time decay attribution for a user and store the results
// @Tags Attribution
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Param request body dto.CalculateAttributionRequest true "Conversion value"
// @Success 200 {object} dto.APIResponse{data=dto.AttributionResultResponse} "Attribution calculated"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "No events or journey for user"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/journeys/{user_id}/attribution [post]
func (h *AttributionHandler) CalculateAttribution(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	var req dto.CalculateAttributionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validate(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidation, err)
	}
	req.OrganizationID = organizationID
	req.UserID = c.Params("user_id")

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/journeys/attribution")
	defer cancel()

	result, err := h.attributionFlow.CalculateAttribution(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to calculate attribution")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Attribution calculated successfully", result)
}

// GetCampaignROI returns the ROI of a campaign
// @Summary Get Campaign ROI
// @Description Revenue, spend, ROI and ROAS of a campaign with a per source breakdown
// @Tags Attribution
// @Produce json
// @Security BearerAuth
// @Param campaign_id path int true "Campaign ID"
// @Param start query string false "RFC3339 start time"
// @Param end query string false "RFC3339 end time"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignROIResponse} "ROI computed"
// @Failure 400 {object} dto.APIResponse "Invalid campaign id or time range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/campaigns/{campaign_id}/roi [get]
func (h *AttributionHandler) GetCampaignROI(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	campaignID, err := strconv.ParseUint(c.Params("campaign_id"), 10, 64)
	if err != nil || campaignID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign id", "INVALID_CAMPAIGN_ID", nil)
	}

	start, end, err := parseTimeRange(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid time range", businessflow.CodeInvalidTimeRange, err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/campaigns/roi")
	defer cancel()

	result, err := h.roiFlow.GetROI(ctx, &dto.GetCampaignROIRequest{
		OrganizationID: organizationID,
		CampaignID:     uint(campaignID),
		Start:          start,
		End:            end,
	})
	if err != nil {
		return h.flowError(c, err, "Failed to compute campaign ROI")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign ROI retrieved successfully", result)
}

// GetCampaignPerformance aggregates the performance of active and paused campaigns
// @Summary Get Campaign Performance
// @Description Compute ROI for every active or paused campaign and store a snapshot per period
// @Tags Attribution
// @Produce json
// @Security BearerAuth
// @Param start query string false "RFC3339 start time"
// @Param end query string false "RFC3339 end time"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignPerformanceResponse} "Performance computed"
// @Failure 400 {object} dto.APIResponse "Invalid time range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/campaigns/performance [get]
func (h *AttributionHandler) GetCampaignPerformance(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	start, end, err := parseTimeRange(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid time range", businessflow.CodeInvalidTimeRange, err.Error())
	}
	req := &dto.CampaignPerformanceRequest{
		OrganizationID: organizationID,
		Start:          start,
		End:            end,
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/campaigns/performance")
	defer cancel()

	result, err := h.reportFlow.GetCampaignPerformance(ctx, req)
	if err != nil {
		return h.flowError(c, err, "Failed to aggregate campaign performance")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign performance retrieved successfully", result)
}

// ListCampaignPerformance returns stored performance snapshots
// @Summary List Campaign Performance History
// @Description Stored performance snapshots of the organization, newest period first
// @Tags Attribution
// @Produce json
// @Security BearerAuth
// @Param campaign_id query int false "Campaign ID"
// @Param limit query int false "Maximum number of snapshots (default 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignPerformanceResponse} "History retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/campaigns/performance/history [get]
func (h *AttributionHandler) ListCampaignPerformance(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	req := &dto.ListCampaignPerformanceRequest{OrganizationID: organizationID}
	if raw := c.Query("campaign_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign id", "INVALID_CAMPAIGN_ID", nil)
		}
		campaignID := uint(id)
		req.CampaignID = &campaignID
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid limit", "INVALID_LIMIT", nil)
		}
		req.Limit = limit
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/campaigns/performance/history")
	defer cancel()

	result, err := h.reportFlow.ListCampaignPerformance(ctx, req)
	if err != nil {
		return h.flowError(c, err, "Failed to load performance history")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Performance history retrieved successfully", result)
}

// ExportCampaignPerformance downloads campaign performance as a spreadsheet
// @Summary Export Campaign Performance
// @Description Campaign performance as an XLSX workbook with Campaigns and Sources sheets
// @Tags Attribution
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start query string false "RFC3339 start time"
// @Param end query string false "RFC3339 end time"
// @Success 200 {file} file "XLSX workbook"
// @Failure 400 {object} dto.APIResponse "Invalid time range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/campaigns/performance/export [get]
func (h *AttributionHandler) ExportCampaignPerformance(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	start, end, err := parseTimeRange(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid time range", businessflow.CodeInvalidTimeRange, err.Error())
	}
	req := &dto.CampaignPerformanceRequest{
		OrganizationID: organizationID,
		Start:          start,
		End:            end,
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/campaigns/performance/export")
	defer cancel()

	filename, data, err := h.reportFlow.ExportCampaignPerformance(ctx, req)
	if err != nil {
		return h.flowError(c, err, "Failed to export campaign performance")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(data)
}

// GetAttributionReport returns the organization attribution report
// @Summary Get Attribution Report
// @Description Revenue, spend, revenue per attribution model, top campaigns and journey statistics
// @Tags Attribution
// @Produce json
// @Security BearerAuth
// @Param start query string false "RFC3339 start time"
// @Param end query string false "RFC3339 end time"
// @Success 200 {object} dto.APIResponse{data=dto.AttributionReportResponse} "Report generated"
// @Failure 400 {object} dto.APIResponse "Invalid time range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/attribution/report [get]
func (h *AttributionHandler) GetAttributionReport(c fiber.Ctx) error {
	organizationID, ok := middleware.GetOrganizationIDFromContext(c)
	if !ok {
		return h.missingOrganization(c)
	}

	start, end, err := parseTimeRange(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid time range", businessflow.CodeInvalidTimeRange, err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/attribution/report")
	defer cancel()

	result, err := h.reportFlow.GetAttributionReport(ctx, &dto.AttributionReportRequest{
		OrganizationID: organizationID,
		Start:          start,
		End:            end,
	})
	if err != nil {
		return h.flowError(c, err, "Failed to build attribution report")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Attribution report generated successfully", result)
}

func (h *AttributionHandler) missingOrganization(c fiber.Ctx) error {
	return h.ErrorResponse(c, fiber.StatusUnauthorized, "Organization not found in context", "MISSING_ORGANIZATION_ID", nil)
}

// flowError maps business errors to HTTP responses
func (h *AttributionHandler) flowError(c fiber.Ctx, err error, fallback string) error {
	code := businessflow.ErrorCode(err)

	switch {
	case businessflow.IsNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, notFoundMessage(err), code, nil)
	case businessflow.IsInvalidInput(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", code, rootMessage(err))
	}

	h.logger.Error(fallback,
		zap.String("path", c.Path()),
		zap.String("request_id", c.Get("X-Request-ID")),
		zap.Error(err),
	)
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallback, code, nil)
}

func notFoundMessage(err error) string {
	switch {
	case businessflow.IsUserEventsNotFound(err):
		return "No events found for user"
	case businessflow.IsJourneyNotFound(err):
		return "Customer journey not found"
	default:
		return "Campaign not found"
	}
}

// rootMessage returns the sentinel text behind a business error
func rootMessage(err error) string {
	var be *businessflow.BusinessError
	if errors.As(err, &be) && be.Err != nil {
		return be.Err.Error()
	}
	return err.Error()
}

func (h *AttributionHandler) validate(req any) []string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return messages
}

// parseTimeRange reads the optional RFC3339 start and end query parameters
func parseTimeRange(c fiber.Ctx) (*time.Time, *time.Time, error) {
	start, err := parseTimeQuery(c, "start")
	if err != nil {
		return nil, nil, err
	}
	end, err := parseTimeQuery(c, "end")
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func parseTimeQuery(c fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp", key)
	}
	return utils.ToPtr(t.UTC()), nil
}

// createRequestContext creates a context with the configured timeout and request-scoped values
func (h *AttributionHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)

	if organizationID, ok := middleware.GetOrganizationIDFromContext(c); ok {
		ctx = context.WithValue(ctx, utils.OrganizationIDKey, organizationID)
	}

	return ctx, cancel
}
