package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clubrun/internal/auth"
	"clubrun/internal/errors"
	"clubrun/internal/service"
)

// InvitationHandler handles invitation endpoints. All routes require a club
// admin.
type InvitationHandler struct {
	invitationService service.InvitationService
}

// NewInvitationHandler creates a new invitation handler.
func NewInvitationHandler(invitationService service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// CreateInvitationRequest represents a single invitation with a chosen code.
type CreateInvitationRequest struct {
	Code  string `json:"code" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// InviteMembersRequest represents a bulk invitation request.
type InviteMembersRequest struct {
	Emails []string `json:"emails" validate:"required"`
}

// InviteMembersResponse reports the outcome per email.
type InviteMembersResponse struct {
	Message string                  `json:"message"`
	Invited []service.InvitedMember `json:"invited"`
	Skipped []service.SkippedEmail  `json:"skipped"`
}

// CreateInvitation godoc
// @Summary Create an invitation with a chosen code
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInvitationRequest true "Invitation"
// @Success 201 {object} model.Invitation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/invitations [post]
func (h *InvitationHandler) CreateInvitation(c echo.Context) error {
	var req CreateInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity := auth.IdentityFrom(c)
	invitation, err := h.invitationService.CreateInvitation(c.Request().Context(), req.Code, req.Email, identity.ClubID)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, invitation)
}

// InviteMembers godoc
// @Summary Invite a batch of emails with generated codes
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InviteMembersRequest true "Emails"
// @Success 201 {object} InviteMembersResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/invite-members [post]
func (h *InvitationHandler) InviteMembers(c echo.Context) error {
	var req InviteMembersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity := auth.IdentityFrom(c)
	invited, skipped, err := h.invitationService.InviteMembers(c.Request().Context(), req.Emails, identity.ClubID)
	if err != nil {
		// The whole batch was rejected; report which emails were skipped.
		he := errors.MapErrorToHTTP(err)
		return c.JSON(he.StatusCode, map[string]interface{}{
			"error":   he.Message,
			"code":    he.Code,
			"skipped": skipped,
		})
	}

	if skipped == nil {
		skipped = []service.SkippedEmail{}
	}
	return c.JSON(http.StatusCreated, InviteMembersResponse{
		Message: "invitations created",
		Invited: invited,
		Skipped: skipped,
	})
}
