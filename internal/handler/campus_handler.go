package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seletivo-api/internal/service"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
	"github.com/noah-isme/seletivo-api/pkg/response"
)

// CampusHandler exposes campus catalogue endpoints.
type CampusHandler struct {
	service *service.CampusService
}

// NewCampusHandler creates a new handler.
func NewCampusHandler(svc *service.CampusService) *CampusHandler {
	return &CampusHandler{service: svc}
}

// List godoc
// @Summary List campuses
// @Tags Campuses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /campuses [get]
func (h *CampusHandler) List(c *gin.Context) {
	campuses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campuses, nil)
}

// Get godoc
// @Summary Get campus
// @Tags Campuses
// @Produce json
// @Param id path string true "Campus ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campuses/{id} [get]
func (h *CampusHandler) Get(c *gin.Context) {
	campus, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campus, nil)
}

// Create godoc
// @Summary Create campus
// @Tags Campuses
// @Accept json
// @Produce json
// @Param payload body service.CreateCampusRequest true "Campus payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /campuses [post]
func (h *CampusHandler) Create(c *gin.Context) {
	var req service.CreateCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid campus payload"))
		return
	}
	campus, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, campus)
}

// Pools godoc
// @Summary List vacancy pools of a campus
// @Tags Campuses
// @Produce json
// @Param id path string true "Campus ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campuses/{id}/pools [get]
func (h *CampusHandler) Pools(c *gin.Context) {
	pools, err := h.service.Pools(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pools, nil)
}
