package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seletivo-api/internal/service"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
	"github.com/noah-isme/seletivo-api/pkg/response"
)

// EditalHandler exposes admission cycle endpoints.
type EditalHandler struct {
	service *service.EditalService
}

// NewEditalHandler creates a new handler.
func NewEditalHandler(svc *service.EditalService) *EditalHandler {
	return &EditalHandler{service: svc}
}

// List godoc
// @Summary List editais
// @Tags Editais
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /editais [get]
func (h *EditalHandler) List(c *gin.Context) {
	editais, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, editais, nil)
}

// Get godoc
// @Summary Get edital
// @Tags Editais
// @Produce json
// @Param id path string true "Edital ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /editais/{id} [get]
func (h *EditalHandler) Get(c *gin.Context) {
	edital, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edital, nil)
}

// Create godoc
// @Summary Create edital
// @Tags Editais
// @Accept json
// @Produce json
// @Param payload body service.CreateEditalRequest true "Edital payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /editais [post]
func (h *EditalHandler) Create(c *gin.Context) {
	var req service.CreateEditalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edital payload"))
		return
	}
	edital, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, edital)
}
