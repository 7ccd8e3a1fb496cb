package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seletivo-api/internal/models"
	"github.com/noah-isme/seletivo-api/internal/service"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
	"github.com/noah-isme/seletivo-api/pkg/response"
)

// CandidateHandler exposes the candidate roster and the interactive status
// transition endpoints.
type CandidateHandler struct {
	candidates  *service.CandidateService
	transitions *service.CandidateStatusService
}

// NewCandidateHandler creates a new handler.
func NewCandidateHandler(candidates *service.CandidateService, transitions *service.CandidateStatusService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, transitions: transitions}
}

// List godoc
// @Summary List candidates
// @Tags Candidates
// @Produce json
// @Param search query string false "Name, CPF or campus search"
// @Param campusId query string false "Campus ID"
// @Param editalId query string false "Edital ID"
// @Param shift query string false "Shift"
// @Param gender query string false "Gender (M/F/U)"
// @Param status query string false "Candidate status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param sort query string false "Sort field (registration, name, status)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} response.Envelope
// @Router /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	filter := models.CandidateFilter{
		Search:    c.Query("search"),
		CampusID:  c.Query("campusId"),
		EditalID:  c.Query("editalId"),
		Shift:     c.Query("shift"),
		Gender:    models.Gender(c.Query("gender")),
		Status:    models.CandidateStatus(c.Query("status")),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}

	candidates, pagination, err := h.candidates.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, pagination)
}

// Get godoc
// @Summary Get candidate
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id} [get]
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Classify godoc
// @Summary Promote candidate to classified
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates/{id}/classify [post]
func (h *CandidateHandler) Classify(c *gin.Context) {
	candidate, err := h.transitions.PromoteToClassified(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Qualify godoc
// @Summary Mark candidate as qualified
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates/{id}/qualify [post]
func (h *CandidateHandler) Qualify(c *gin.Context) {
	candidate, err := h.transitions.MarkQualified(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Reserve godoc
// @Summary Send candidate to the reserve tier
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates/{id}/reserve [post]
func (h *CandidateHandler) Reserve(c *gin.Context) {
	candidate, err := h.transitions.SendToReserve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Eliminate godoc
// @Summary Eliminate candidate
// @Description Remove the candidate from the process, releasing any held seat
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body object true "Elimination reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id}/eliminate [post]
func (h *CandidateHandler) Eliminate(c *gin.Context) {
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid elimination payload"))
		return
	}
	candidate, err := h.transitions.Eliminate(c.Request.Context(), c.Param("id"), payload.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Revert godoc
// @Summary Revert candidate to pending
// @Description Return the candidate to pending, releasing any held seat
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id}/revert [post]
func (h *CandidateHandler) Revert(c *gin.Context) {
	candidate, err := h.transitions.RevertToPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}
