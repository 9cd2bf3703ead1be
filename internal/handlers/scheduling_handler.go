package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/conectasus/referral-management-api/internal/models"
	"github.com/conectasus/referral-management-api/internal/service"
	"github.com/conectasus/referral-management-api/internal/utils"
	pkgutils "github.com/conectasus/referral-management-api/pkg/utils"
)

// SchedulingHandler handles scheduling contact attempt endpoints
type SchedulingHandler struct {
	schedulingService *service.SchedulingService
}

// NewSchedulingHandler creates a new scheduling handler instance
func NewSchedulingHandler(schedulingService *service.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{schedulingService: schedulingService}
}

// RegisterContactAttempt handles POST /requests/:requestId/attempts
func (h *SchedulingHandler) RegisterContactAttempt(c *gin.Context) {
	requestID, err := pkgutils.ParseID(c.Param("requestId"))
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	var apiRequest models.ContactAttemptAPIRequest
	if err := c.ShouldBindJSON(&apiRequest); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	actorID := utils.GetActorIDFromContext(c)
	if actorID == 0 {
		utils.SendValidationError(c, "user-id header is required")
		return
	}

	if err := h.schedulingService.RegisterContactAttempt(c.Request.Context(), requestID, actorID, &apiRequest); err != nil {
		utils.SendWorkflowError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Contact attempt recorded", nil))
}
