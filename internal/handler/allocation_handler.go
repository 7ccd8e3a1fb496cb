package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seletivo-api/internal/service"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
	"github.com/noah-isme/seletivo-api/pkg/response"
)

// AllocationHandler exposes the allocation pass endpoint.
type AllocationHandler struct {
	service *service.AllocationService
}

// NewAllocationHandler creates a new handler.
func NewAllocationHandler(svc *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: svc}
}

// RunAllocationRequest selects the scope of one allocation pass.
type RunAllocationRequest struct {
	CampusID string  `json:"campus_id" binding:"required"`
	EditalID *string `json:"edital_id"`
	Shift    string  `json:"shift"`
}

// Run godoc
// @Summary Run an allocation pass
// @Description Rank the scope's candidates by registration order and assign vacancy categories
// @Tags Allocation
// @Accept json
// @Produce json
// @Param payload body RunAllocationRequest true "Scope"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /allocations/run [post]
func (h *AllocationHandler) Run(c *gin.Context) {
	var req RunAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}

	result, err := h.service.Run(c.Request.Context(), req.CampusID, req.EditalID, req.Shift)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
