package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"clubrun/internal/auth"
	"clubrun/internal/errors"
	"clubrun/internal/service"
)

// MarathonHandler handles event catalog endpoints.
type MarathonHandler struct {
	marathonService service.MarathonService
}

// NewMarathonHandler creates a new marathon handler.
func NewMarathonHandler(marathonService service.MarathonService) *MarathonHandler {
	return &MarathonHandler{marathonService: marathonService}
}

// CategoryRequest is one fee category in a create or update request.
type CategoryRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

// CreateMarathonRequest represents a new marathon.
type CreateMarathonRequest struct {
	Name             string            `json:"name" validate:"required"`
	Date             string            `json:"date" validate:"required"`
	Location         string            `json:"location"`
	RegistrationLink string            `json:"registration_link"`
	IsPrivate        *bool             `json:"is_private"`
	Categories       []CategoryRequest `json:"categories"`
}

// UpdateMarathonRequest represents a partial marathon update; absent fields
// are left untouched.
type UpdateMarathonRequest struct {
	Name             *string            `json:"name"`
	Date             *string            `json:"date"`
	Location         *string            `json:"location"`
	RegistrationLink *string            `json:"registration_link"`
	IsPrivate        *bool              `json:"is_private"`
	Categories       *[]CategoryRequest `json:"categories"`
}

// List godoc
// @Summary List marathons visible to the caller
// @Tags marathons
// @Produce json
// @Success 200 {array} model.Marathon
// @Router /marathon [get]
func (h *MarathonHandler) List(c echo.Context) error {
	marathons, err := h.marathonService.ListVisible(c.Request().Context(), auth.IdentityFrom(c))
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, marathons)
}

// Get godoc
// @Summary Fetch one marathon with its categories
// @Tags marathons
// @Produce json
// @Param id path int true "Marathon ID"
// @Success 200 {object} model.Marathon
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /marathon/{id} [get]
func (h *MarathonHandler) Get(c echo.Context) error {
	marathonID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	marathon, err := h.marathonService.Get(c.Request().Context(), auth.IdentityFrom(c), marathonID)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, marathon)
}

// Create godoc
// @Summary Create a marathon with optional categories
// @Tags marathons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMarathonRequest true "Marathon"
// @Success 201 {object} model.Marathon
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/marathon [post]
func (h *MarathonHandler) Create(c echo.Context) error {
	var req CreateMarathonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid date; use YYYY-MM-DD",
			Code:  "VALIDATION_ERROR",
		})
	}

	input := service.CreateMarathonInput{
		Name:             req.Name,
		Date:             date,
		Location:         req.Location,
		RegistrationLink: req.RegistrationLink,
		IsPrivate:        req.IsPrivate,
		Categories:       toCategoryInputs(req.Categories),
	}

	marathon, err := h.marathonService.Create(c.Request().Context(), auth.IdentityFrom(c), input)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, marathon)
}

// Update godoc
// @Summary Partially update a marathon; a supplied category list replaces the old set
// @Tags marathons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Marathon ID"
// @Param request body UpdateMarathonRequest true "Fields to change"
// @Success 200 {object} model.Marathon
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/marathon/{id} [patch]
func (h *MarathonHandler) Update(c echo.Context) error {
	marathonID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req UpdateMarathonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	input := service.UpdateMarathonInput{
		Name:             req.Name,
		Location:         req.Location,
		RegistrationLink: req.RegistrationLink,
		IsPrivate:        req.IsPrivate,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid date; use YYYY-MM-DD",
				Code:  "VALIDATION_ERROR",
			})
		}
		input.Date = &date
	}
	if req.Categories != nil {
		categories := toCategoryInputs(*req.Categories)
		input.Categories = &categories
	}

	marathon, err := h.marathonService.Update(c.Request().Context(), auth.IdentityFrom(c), marathonID, input)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, marathon)
}

// Delete godoc
// @Summary Delete a marathon with its categories and registrations
// @Tags marathons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Marathon ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/marathon/{id} [delete]
func (h *MarathonHandler) Delete(c echo.Context) error {
	marathonID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.marathonService.Delete(c.Request().Context(), auth.IdentityFrom(c), marathonID); err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "marathon deleted"})
}

func toCategoryInputs(reqs []CategoryRequest) []service.CategoryInput {
	if len(reqs) == 0 {
		return nil
	}
	inputs := make([]service.CategoryInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, service.CategoryInput{Name: r.Name, Price: r.Price})
	}
	return inputs
}

// parseDate accepts the frontend's date-only format and RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseIDParam parses the :id path parameter.
func parseIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "VALIDATION_ERROR",
		})
	}
	return uint(id), nil
}
