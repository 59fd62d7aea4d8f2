package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"clubrun/internal/cache"
	apperrors "clubrun/internal/errors"
	"clubrun/internal/model"
	"clubrun/internal/policy"
	"clubrun/internal/repository"
)

const marathonCacheTTL = 5 * time.Minute

// CategoryInput is one requested fee category.
type CategoryInput struct {
	Name  string
	Price decimal.Decimal
}

// CreateMarathonInput carries the fields for a new marathon.
type CreateMarathonInput struct {
	Name             string
	Date             time.Time
	Location         string
	RegistrationLink string
	IsPrivate        *bool
	Categories       []CategoryInput
}

// UpdateMarathonInput carries a partial update; nil fields stay untouched.
// A non-nil Categories replaces the marathon's whole category set.
type UpdateMarathonInput struct {
	Name             *string
	Date             *time.Time
	Location         *string
	RegistrationLink *string
	IsPrivate        *bool
	Categories       *[]CategoryInput
}

// MarathonService handles the event catalog.
type MarathonService interface {
	ListVisible(ctx context.Context, id *policy.Identity) ([]model.Marathon, error)
	Get(ctx context.Context, id *policy.Identity, marathonID uint) (*model.Marathon, error)
	Create(ctx context.Context, id *policy.Identity, input CreateMarathonInput) (*model.Marathon, error)
	Update(ctx context.Context, id *policy.Identity, marathonID uint, input UpdateMarathonInput) (*model.Marathon, error)
	Delete(ctx context.Context, id *policy.Identity, marathonID uint) error
}

type marathonService struct {
	marathonRepo repository.MarathonRepository
	cache        *cache.Client
}

// NewMarathonService creates a new marathon service.
func NewMarathonService(marathonRepo repository.MarathonRepository, cache *cache.Client) MarathonService {
	return &marathonService{
		marathonRepo: marathonRepo,
		cache:        cache,
	}
}

func (s *marathonService) cacheKey(id uint) string {
	return fmt.Sprintf("marathon:%d", id)
}

// ListVisible returns the marathons the caller may see: anonymous callers
// get public marathons only; an identified caller gets the union of their
// own club's marathons and public marathons of other clubs.
func (s *marathonService) ListVisible(ctx context.Context, id *policy.Identity) ([]model.Marathon, error) {
	if id == nil {
		return s.marathonRepo.FindPublic(ctx)
	}

	own, err := s.marathonRepo.FindByClub(ctx, id.ClubID)
	if err != nil {
		return nil, fmt.Errorf("list club marathons: %w", err)
	}
	open, err := s.marathonRepo.FindPublicExcludingClub(ctx, id.ClubID)
	if err != nil {
		return nil, fmt.Errorf("list open marathons: %w", err)
	}
	return append(own, open...), nil
}

// Get fetches one marathon with nested categories, subject to the read policy.
func (s *marathonService) Get(ctx context.Context, id *policy.Identity, marathonID uint) (*model.Marathon, error) {
	marathon, err := s.fetch(ctx, marathonID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(id, policy.MarathonResource(marathon)) {
		return nil, apperrors.ErrForbidden
	}
	return marathon, nil
}

func (s *marathonService) fetch(ctx context.Context, marathonID uint) (*model.Marathon, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(marathonID)); data != nil {
		var cached model.Marathon
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	marathon, err := s.marathonRepo.FindByID(ctx, marathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMarathonNotFound
		}
		return nil, fmt.Errorf("find marathon: %w", err)
	}

	if payload, err := json.Marshal(marathon); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(marathonID), payload, marathonCacheTTL)
	}
	return marathon, nil
}

// Create inserts a marathon and its categories atomically. Marathons default
// to private.
func (s *marathonService) Create(ctx context.Context, id *policy.Identity, input CreateMarathonInput) (*model.Marathon, error) {
	if id == nil || id.ClubID == 0 {
		return nil, apperrors.ErrAuthRequired
	}
	if input.Name == "" || input.Date.IsZero() {
		return nil, apperrors.NewValidationError("name and date are required")
	}
	categories, err := buildCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	isPrivate := true
	if input.IsPrivate != nil {
		isPrivate = *input.IsPrivate
	}

	marathon := &model.Marathon{
		Name:             input.Name,
		Date:             input.Date,
		Location:         input.Location,
		RegistrationLink: input.RegistrationLink,
		ClubID:           id.ClubID,
		IsPrivate:        isPrivate,
		Categories:       categories,
	}
	if err := s.marathonRepo.CreateWithCategories(ctx, marathon); err != nil {
		return nil, fmt.Errorf("create marathon: %w", err)
	}
	return marathon, nil
}

// Update applies a partial update. Only the owning club's admin may mutate;
// when a category list is supplied the stored set is diffed against it.
func (s *marathonService) Update(ctx context.Context, id *policy.Identity, marathonID uint, input UpdateMarathonInput) (*model.Marathon, error) {
	marathon, err := s.marathonRepo.FindByID(ctx, marathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMarathonNotFound
		}
		return nil, fmt.Errorf("find marathon: %w", err)
	}
	if !policy.CanManage(id, marathon.ClubID) {
		return nil, apperrors.ErrForbidden
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty")
		}
		fields["name"] = *input.Name
	}
	if input.Date != nil {
		fields["date"] = *input.Date
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if input.RegistrationLink != nil {
		fields["registration_link"] = *input.RegistrationLink
	}
	if input.IsPrivate != nil {
		fields["is_private"] = *input.IsPrivate
	}

	var changes *repository.CategoryChanges
	if input.Categories != nil {
		wanted, err := buildCategories(*input.Categories)
		if err != nil {
			return nil, err
		}
		changes = diffCategories(marathon.Categories, wanted)
	}

	if err := s.marathonRepo.UpdateWithCategories(ctx, marathonID, fields, changes); err != nil {
		return nil, fmt.Errorf("update marathon: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(marathonID))

	return s.marathonRepo.FindByID(ctx, marathonID)
}

// Delete removes the marathon and everything referencing it: registrations
// first, then categories, then the marathon row.
func (s *marathonService) Delete(ctx context.Context, id *policy.Identity, marathonID uint) error {
	marathon, err := s.marathonRepo.FindByID(ctx, marathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMarathonNotFound
		}
		return fmt.Errorf("find marathon: %w", err)
	}
	if !policy.CanManage(id, marathon.ClubID) {
		return apperrors.ErrForbidden
	}

	if err := s.marathonRepo.DeleteCascade(ctx, marathonID); err != nil {
		return fmt.Errorf("delete marathon: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(marathonID))
	return nil
}

// buildCategories validates a requested category list: every name must come
// from the fixed enumeration, names must be unique, prices non-negative.
func buildCategories(inputs []CategoryInput) ([]model.Category, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(inputs))
	categories := make([]model.Category, 0, len(inputs))
	for _, in := range inputs {
		if !model.IsValidCategoryName(in.Name) {
			return nil, apperrors.NewValidationError(fmt.Sprintf(
				"invalid category name %q; valid names: %s",
				in.Name, strings.Join(model.ValidCategoryNames, ", ")))
		}
		if seen[in.Name] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate category name %q", in.Name))
		}
		seen[in.Name] = true
		if in.Price.IsNegative() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("category %q has a negative price", in.Name))
		}
		categories = append(categories, model.Category{Name: in.Name, Price: in.Price})
	}
	return categories, nil
}

// diffCategories matches stored categories against the wanted set by name:
// missing names are deleted, matched names keep their row and take the new
// price, unmatched wanted names are inserted.
func diffCategories(existing []model.Category, wanted []model.Category) *repository.CategoryChanges {
	byName := make(map[string]model.Category, len(existing))
	for _, cat := range existing {
		byName[cat.Name] = cat
	}
	wantedNames := make(map[string]bool, len(wanted))

	changes := &repository.CategoryChanges{}
	for _, want := range wanted {
		wantedNames[want.Name] = true
		if cur, ok := byName[want.Name]; ok {
			if !cur.Price.Equal(want.Price) {
				cur.Price = want.Price
				changes.Update = append(changes.Update, cur)
			}
		} else {
			changes.Insert = append(changes.Insert, want)
		}
	}
	for _, cat := range existing {
		if !wantedNames[cat.Name] {
			changes.DeleteIDs = append(changes.DeleteIDs, cat.ID)
		}
	}
	return changes
}
