package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/conectasus/referral-management-api/internal/models"
	"github.com/conectasus/referral-management-api/internal/service"
	"github.com/conectasus/referral-management-api/internal/utils"
	pkgutils "github.com/conectasus/referral-management-api/pkg/utils"
)

// RequestHandler handles referral request HTTP endpoints
type RequestHandler struct {
	requestService *service.RequestService
}

// NewRequestHandler creates a new request handler instance
func NewRequestHandler(requestService *service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// CreateRequest handles POST /requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var apiRequest models.RequestCreateAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	if actorID == 0 {
		utils.SendValidationError(c, "user-id header is required")
		return
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), &apiRequest, actorID)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendCreatedResponse(c, created)
}

// GetRequest handles GET /requests/:requestId
func (h *RequestHandler) GetRequest(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	detail, err := h.requestService.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, detail)
}

// GetHistory handles GET /requests/:requestId/history
func (h *RequestHandler) GetHistory(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	entries, err := h.requestService.GetHistory(c.Request.Context(), requestID)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, entries)
}

// ListContactAttempts handles GET /requests/:requestId/attempts
func (h *RequestHandler) ListContactAttempts(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	attempts, err := h.requestService.ListContactAttempts(c.Request.Context(), requestID)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, attempts)
}

// ListRequests handles GET /requests. The queue parameter selects one of the
// role work queues (triage, regulation, scheduling); without it the explicit
// filter parameters apply.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Query("queue") {
	case "triage":
		requests, err := h.requestService.ListForTriage(ctx)
		if err != nil {
			utils.SendWorkflowError(c, err)
			return
		}
		utils.SendOKResponse(c, requests)
		return

	case "regulation":
		requests, err := h.requestService.ListForRegulator(ctx, models.RegulationTrack(c.Query("track")))
		if err != nil {
			utils.SendWorkflowError(c, err)
			return
		}
		utils.SendOKResponse(c, requests)
		return

	case "scheduling":
		requests, err := h.requestService.ListForScheduler(ctx, models.RegulationTrack(c.Query("track")))
		if err != nil {
			utils.SendWorkflowError(c, err)
			return
		}
		utils.SendOKResponse(c, requests)
		return
	}

	var filter models.RequestListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendBadRequestError(c, "Invalid filter parameters", err.Error())
		return
	}

	requests, err := h.requestService.ListRequests(ctx, &filter)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, requests)
}

// Classify handles POST /requests/:requestId/classify
func (h *RequestHandler) Classify(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var apiRequest models.ClassifyAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	err := h.requestService.Classify(c.Request.Context(), requestID, actorID, apiRequest.RegulationTrack, apiRequest.Priority)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Request forwarded to the regulating doctor", nil))
}

// Approve handles POST /requests/:requestId/approve
func (h *RequestHandler) Approve(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var apiRequest models.TrackAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	err := h.requestService.Approve(c.Request.Context(), requestID, actorID, apiRequest.RegulationTrack)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Request approved for scheduling", nil))
}

// Deny handles POST /requests/:requestId/deny
func (h *RequestHandler) Deny(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var apiRequest models.ReasonAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	err := h.requestService.CancelByDoctor(c.Request.Context(), requestID, actorID, apiRequest.Reason)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Request cancelled", nil))
}

// Return handles POST /requests/:requestId/return
func (h *RequestHandler) Return(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var apiRequest models.ReasonAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	err := h.requestService.ReturnToReception(c.Request.Context(), requestID, actorID, apiRequest.Reason)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Request returned to reception", nil))
}

// Cancel handles POST /requests/:requestId/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var apiRequest models.ReasonAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	err := h.requestService.CancelByReception(c.Request.Context(), requestID, actorID, apiRequest.Reason)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Request cancelled", nil))
}

// HandleReturn handles POST /requests/:requestId/handle-return
func (h *RequestHandler) HandleReturn(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	var apiRequest models.ReasonAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	err := h.requestService.HandleReturn(c.Request.Context(), requestID, actorID, apiRequest.Reason)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Request resubmitted to triage", nil))
}

// Pickup handles POST /requests/:requestId/pickup
func (h *RequestHandler) Pickup(c *gin.Context) {
	requestID, ok := h.requestID(c)
	if !ok {
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	err := h.requestService.MarkPickedUp(c.Request.Context(), requestID, actorID)
	if err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Request closed as picked up", nil))
}

// requestID parses the :requestId path parameter, responding with a
// validation error when malformed.
func (h *RequestHandler) requestID(c *gin.Context) (int64, bool) {
	requestID, err := pkgutils.ParseID(c.Param("requestId"))
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return 0, false
	}
	return requestID, true
}
