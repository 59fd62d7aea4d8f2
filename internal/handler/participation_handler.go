package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clubrun/internal/auth"
	"clubrun/internal/errors"
	"clubrun/internal/service"
)

// ParticipationHandler handles registration endpoints.
type ParticipationHandler struct {
	participationService service.ParticipationService
}

// NewParticipationHandler creates a new participation handler.
func NewParticipationHandler(participationService service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participationService: participationService}
}

// ParticipateRequest selects the fee category to register under.
type ParticipateRequest struct {
	CategoryID uint `json:"category_id" validate:"required"`
}

// Participate godoc
// @Summary Register for a marathon category; repeat calls switch the category
// @Tags participations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Marathon ID"
// @Param request body ParticipateRequest true "Category choice"
// @Success 201 {object} service.RegistrationResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /marathon/{id}/participate [post]
func (h *ParticipationHandler) Participate(c echo.Context) error {
	marathonID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req ParticipateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.participationService.Register(c.Request().Context(), auth.IdentityFrom(c), marathonID, req.CategoryID)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, result)
}

// Cancel godoc
// @Summary Cancel the caller's registration
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Marathon ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /marathon/{id}/participate [delete]
func (h *ParticipationHandler) Cancel(c echo.Context) error {
	marathonID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.participationService.Cancel(c.Request().Context(), auth.IdentityFrom(c), marathonID); err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "participation cancelled"})
}

// Participants godoc
// @Summary List a marathon's participants, flat and grouped by category
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Marathon ID"
// @Success 200 {object} service.MarathonParticipants
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /marathon/{id}/participants [get]
func (h *ParticipationHandler) Participants(c echo.Context) error {
	marathonID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	result, err := h.participationService.ListForMarathon(c.Request().Context(), auth.IdentityFrom(c), marathonID)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, result)
}

// ClubParticipants godoc
// @Summary Club-wide registrations grouped marathon by category
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.MarathonGroup
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/participants [get]
func (h *ParticipationHandler) ClubParticipants(c echo.Context) error {
	identity := auth.IdentityFrom(c)
	groups, err := h.participationService.ListForClub(c.Request().Context(), identity.ClubID)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, groups)
}
