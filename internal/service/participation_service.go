package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"clubrun/internal/cache"
	apperrors "clubrun/internal/errors"
	"clubrun/internal/model"
	"clubrun/internal/policy"
	"clubrun/internal/repository"
)

// RegistrationResult is the denormalized outcome of a join.
type RegistrationResult struct {
	MarathonID   uint      `json:"marathon_id"`
	MarathonName string    `json:"marathon_name"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	UserID       uint      `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Participant is one registered user in a listing.
type Participant struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
}

// MarathonParticipants is the per-marathon participant view: a flat list
// plus the same rows grouped by category name.
type MarathonParticipants struct {
	MarathonID             uint                     `json:"marathon_id"`
	Name                   string                   `json:"name"`
	AllParticipants        []model.ParticipantRow   `json:"all_participants"`
	ParticipantsByCategory map[string][]Participant `json:"participants_by_category"`
}

// CategoryGroup groups participants under one category.
type CategoryGroup struct {
	Category     string        `json:"category"`
	Participants []Participant `json:"participants"`
}

// MarathonGroup groups a marathon's registrations by category, in encounter
// order.
type MarathonGroup struct {
	MarathonID   uint            `json:"marathon_id"`
	MarathonName string          `json:"marathon_name"`
	Categories   []CategoryGroup `json:"categories"`
}

// ParticipationService handles the registration ledger.
type ParticipationService interface {
	Register(ctx context.Context, id *policy.Identity, marathonID, categoryID uint) (*RegistrationResult, error)
	Cancel(ctx context.Context, id *policy.Identity, marathonID uint) error
	ListForMarathon(ctx context.Context, id *policy.Identity, marathonID uint) (*MarathonParticipants, error)
	ListForClub(ctx context.Context, clubID uint) ([]MarathonGroup, error)
}

type participationService struct {
	participationRepo repository.ParticipationRepository
	marathonRepo      repository.MarathonRepository
	cache             *cache.Client
}

// NewParticipationService creates a new participation service.
func NewParticipationService(
	participationRepo repository.ParticipationRepository,
	marathonRepo repository.MarathonRepository,
	cache *cache.Client,
) ParticipationService {
	return &participationService{
		participationRepo: participationRepo,
		marathonRepo:      marathonRepo,
		cache:             cache,
	}
}

// Register joins the caller to one category of a marathon. A repeat join
// switches the existing registration to the new category instead of adding a
// second row; a duplicate-key race on insert surfaces as a conflict.
func (s *participationService) Register(ctx context.Context, id *policy.Identity, marathonID, categoryID uint) (*RegistrationResult, error) {
	if id == nil {
		return nil, apperrors.ErrAuthRequired
	}

	marathon, err := s.marathonRepo.FindByID(ctx, marathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMarathonNotFound
		}
		return nil, fmt.Errorf("find marathon: %w", err)
	}
	if !policy.CanJoin(id, policy.MarathonResource(marathon)) {
		return nil, apperrors.ErrForbidden
	}

	var category *model.Category
	for i := range marathon.Categories {
		if marathon.Categories[i].ID == categoryID {
			category = &marathon.Categories[i]
			break
		}
	}
	if category == nil {
		return nil, apperrors.ErrCategoryNotFound
	}

	existing, err := s.participationRepo.FindByUserAndMarathon(ctx, id.UserID, marathonID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check participation: %w", err)
	}

	registeredAt := time.Now()
	if existing != nil {
		if err := s.participationRepo.SwitchCategory(ctx, id.UserID, marathonID, categoryID); err != nil {
			return nil, fmt.Errorf("switch category: %w", err)
		}
	} else {
		participation := &model.Participation{
			UserID:     id.UserID,
			MarathonID: marathonID,
			CategoryID: categoryID,
		}
		if err := s.participationRepo.Create(ctx, participation); err != nil {
			// The unique index on (user, marathon) is the authoritative
			// guard; a concurrent insert between the check above and here
			// lands on it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrDuplicateRegistration
			}
			return nil, fmt.Errorf("create participation: %w", err)
		}
		registeredAt = participation.RegisteredAt
	}

	return &RegistrationResult{
		MarathonID:   marathonID,
		MarathonName: marathon.Name,
		CategoryID:   categoryID,
		CategoryName: category.Name,
		UserID:       id.UserID,
		RegisteredAt: registeredAt,
	}, nil
}

// Cancel removes the caller's registration for the marathon.
func (s *participationService) Cancel(ctx context.Context, id *policy.Identity, marathonID uint) error {
	if id == nil {
		return apperrors.ErrAuthRequired
	}

	marathon, err := s.marathonRepo.FindByID(ctx, marathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMarathonNotFound
		}
		return fmt.Errorf("find marathon: %w", err)
	}
	if !policy.CanJoin(id, policy.MarathonResource(marathon)) {
		return apperrors.ErrForbidden
	}

	if err := s.participationRepo.Delete(ctx, id.UserID, marathonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrParticipationNotFound
		}
		return fmt.Errorf("delete participation: %w", err)
	}
	return nil
}

// ListForMarathon returns who registered for a marathon. Anonymous callers
// are rejected outright; private marathons admit only the owning club.
func (s *participationService) ListForMarathon(ctx context.Context, id *policy.Identity, marathonID uint) (*MarathonParticipants, error) {
	if id == nil {
		return nil, apperrors.ErrAuthRequired
	}

	marathon, err := s.marathonRepo.FindByID(ctx, marathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMarathonNotFound
		}
		return nil, fmt.Errorf("find marathon: %w", err)
	}
	if !policy.CanViewParticipants(id, policy.MarathonResource(marathon)) {
		return nil, apperrors.ErrForbidden
	}

	rows, err := s.participationRepo.ListByMarathon(ctx, marathonID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	byCategory := make(map[string][]Participant)
	for _, row := range rows {
		byCategory[row.CategoryName] = append(byCategory[row.CategoryName],
			Participant{UserID: row.UserID, Name: row.UserName})
	}
	if rows == nil {
		rows = []model.ParticipantRow{}
	}

	return &MarathonParticipants{
		MarathonID:             marathonID,
		Name:                   marathon.Name,
		AllParticipants:        rows,
		ParticipantsByCategory: byCategory,
	}, nil
}

// ListForClub aggregates every registration on the club's marathons into a
// marathon -> category -> participants view, grouping rows in encounter
// order.
func (s *participationService) ListForClub(ctx context.Context, clubID uint) ([]MarathonGroup, error) {
	rows, err := s.participationRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list club participants: %w", err)
	}

	groups := []MarathonGroup{}
	marathonIdx := make(map[uint]int)
	for _, row := range rows {
		gi, ok := marathonIdx[row.MarathonID]
		if !ok {
			gi = len(groups)
			marathonIdx[row.MarathonID] = gi
			groups = append(groups, MarathonGroup{
				MarathonID:   row.MarathonID,
				MarathonName: row.MarathonName,
			})
		}

		group := &groups[gi]
		ci := -1
		for i := range group.Categories {
			if group.Categories[i].Category == row.CategoryName {
				ci = i
				break
			}
		}
		if ci < 0 {
			ci = len(group.Categories)
			group.Categories = append(group.Categories, CategoryGroup{Category: row.CategoryName})
		}
		group.Categories[ci].Participants = append(group.Categories[ci].Participants,
			Participant{UserID: row.UserID, Name: row.UserName})
	}
	return groups, nil
}
