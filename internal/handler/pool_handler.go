package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seletivo-api/internal/service"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
	"github.com/noah-isme/seletivo-api/pkg/response"
)

// PoolHandler exposes vacancy pool configuration and occupancy endpoints.
type PoolHandler struct {
	pools     *service.PoolService
	occupancy *service.OccupancyService
}

// NewPoolHandler creates a new handler.
func NewPoolHandler(pools *service.PoolService, occupancy *service.OccupancyService) *PoolHandler {
	return &PoolHandler{pools: pools, occupancy: occupancy}
}

// Get godoc
// @Summary Get vacancy pool
// @Tags Pools
// @Produce json
// @Param id path string true "Pool ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pools/{id} [get]
func (h *PoolHandler) Get(c *gin.Context) {
	pool, err := h.pools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pool, nil)
}

// UpdateQuotas godoc
// @Summary Configure pool quotas
// @Description Overwrite the capacity configuration of a vacancy pool
// @Tags Pools
// @Accept json
// @Produce json
// @Param id path string true "Pool ID"
// @Param payload body service.UpdatePoolQuotasRequest true "Quota payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /pools/{id}/quotas [put]
func (h *PoolHandler) UpdateQuotas(c *gin.Context) {
	var req service.UpdatePoolQuotasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quota payload"))
		return
	}
	pool, err := h.pools.UpdateQuotas(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pool, nil)
}

// Occupancy godoc
// @Summary Pool occupancy snapshot
// @Description Per-category quota and occupancy view, cached
// @Tags Pools
// @Produce json
// @Param id path string true "Pool ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pools/{id}/occupancy [get]
func (h *PoolHandler) Occupancy(c *gin.Context) {
	snap, err := h.occupancy.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap, nil)
}
