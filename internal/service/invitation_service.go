package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "clubrun/internal/errors"
	"clubrun/internal/mail"
	"clubrun/internal/model"
	"clubrun/internal/repository"
)

// maxBulkInvitations caps a single invite-members batch.
const maxBulkInvitations = 100

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InvitedMember is a successfully created invitation in a bulk request.
type InvitedMember struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SkippedEmail is an address excluded from a bulk request, with the reason.
type SkippedEmail struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// InvitationService manages single-use signup codes for a club.
type InvitationService interface {
	CreateInvitation(ctx context.Context, code, email string, clubID uint) (*model.Invitation, error)
	InviteMembers(ctx context.Context, emails []string, clubID uint) (invited []InvitedMember, skipped []SkippedEmail, err error)
}

type invitationService struct {
	invitationRepo repository.InvitationRepository
	mailer         mail.Mailer
	frontendURL    string
	logger         *zap.Logger
}

// NewInvitationService creates a new invitation service.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	mailer mail.Mailer,
	frontendURL string,
	logger *zap.Logger,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		mailer:         mailer,
		frontendURL:    frontendURL,
		logger:         logger,
	}
}

// CreateInvitation creates a single invitation with a caller-chosen code.
// Fails when the code exists globally or the email already has an unused
// invitation for this club.
func (s *invitationService) CreateInvitation(ctx context.Context, code, email string, clubID uint) (*model.Invitation, error) {
	if code == "" || email == "" {
		return nil, apperrors.NewValidationError("code and email are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.NewValidationError("invalid email format")
	}

	exists, err := s.invitationRepo.CodeExists(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("check code: %w", err)
	}
	if exists {
		return nil, apperrors.ErrInvitationCodeTaken
	}

	hasUnused, err := s.invitationRepo.HasUnusedByEmail(ctx, email, clubID)
	if err != nil {
		return nil, fmt.Errorf("check unused invitation: %w", err)
	}
	if hasUnused {
		return nil, apperrors.ErrUnusedInvitationExists
	}

	invitation := &model.Invitation{
		Code:   code,
		Email:  email,
		ClubID: clubID,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		// The unique index on code is the real guard against a racing insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrInvitationCodeTaken
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.sendInviteMail(invitation.Email, invitation.Code, clubID)
	return invitation, nil
}

// InviteMembers validates and invites a batch of emails. Addresses that are
// malformed or already hold an unused invitation are skipped with a reason;
// everything that passed validation commits as one all-or-nothing batch.
func (s *invitationService) InviteMembers(ctx context.Context, emails []string, clubID uint) ([]InvitedMember, []SkippedEmail, error) {
	if len(emails) == 0 {
		return nil, nil, apperrors.NewValidationError("emails must be a non-empty array")
	}
	if len(emails) > maxBulkInvitations {
		return nil, nil, apperrors.NewValidationError(
			fmt.Sprintf("too many emails (max %d at a time)", maxBulkInvitations))
	}

	var prepared []model.Invitation
	var skipped []SkippedEmail
	for _, email := range emails {
		if !emailPattern.MatchString(email) {
			skipped = append(skipped, SkippedEmail{Email: email, Reason: "invalid email format"})
			continue
		}

		hasUnused, err := s.invitationRepo.HasUnusedByEmail(ctx, email, clubID)
		if err != nil {
			return nil, nil, fmt.Errorf("check unused invitation: %w", err)
		}
		if hasUnused {
			skipped = append(skipped, SkippedEmail{Email: email, Reason: "already has an unused invitation"})
			continue
		}

		code, err := s.generateCode(ctx)
		if err != nil {
			return nil, nil, err
		}
		prepared = append(prepared, model.Invitation{Code: code, Email: email, ClubID: clubID})
	}

	if len(prepared) == 0 {
		return nil, skipped, apperrors.NewValidationError("no valid emails to invite")
	}

	if err := s.invitationRepo.CreateBatch(ctx, prepared); err != nil {
		return nil, nil, fmt.Errorf("create invitations: %w", err)
	}

	invited := make([]InvitedMember, 0, len(prepared))
	for _, inv := range prepared {
		invited = append(invited, InvitedMember{Email: inv.Email, Code: inv.Code})
		s.sendInviteMail(inv.Email, inv.Code, clubID)
	}
	return invited, skipped, nil
}

// generateCode draws random 8-character codes until one is globally unused.
func (s *invitationService) generateCode(ctx context.Context) (string, error) {
	for {
		code := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
		exists, err := s.invitationRepo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
}

func (s *invitationService) sendInviteMail(email, code string, clubID uint) {
	signupURL := fmt.Sprintf("%s/signup?code=%s&club=%d", s.frontendURL, code, clubID)
	body := fmt.Sprintf("Hello,\n\nYou have been invited to join your running club! "+
		"Sign up here: %s\n\nYour invitation code is: %s\n\nHappy running!", signupURL, code)
	go func() {
		if err := s.mailer.Send(email, "Join Your Running Club!", body); err != nil {
			s.logger.Warn("invite mail failed", zap.String("email", email), zap.Error(err))
		}
	}()
}
