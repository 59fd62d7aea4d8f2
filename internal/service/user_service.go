package service

import (
	"context"
	"encoding/json"
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

const userCacheTTL = 5 * time.Minute

// UserService exposes the club-scoped user directory.
type UserService interface {
	ListClubUsers(ctx context.Context, id *policy.Identity) ([]model.User, error)
	GetUser(ctx context.Context, id *policy.Identity, userID uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// ListClubUsers returns the members of the caller's own club only.
func (s *userService) ListClubUsers(ctx context.Context, id *policy.Identity) ([]model.User, error) {
	if id == nil {
		return nil, apperrors.ErrAuthRequired
	}
	return s.repo.ListByClub(ctx, id.ClubID)
}

// GetUser fetches one user. Users outside the caller's club resolve as not
// found rather than forbidden, so ids do not leak across tenants.
func (s *userService) GetUser(ctx context.Context, id *policy.Identity, userID uint) (*model.User, error) {
	if id == nil {
		return nil, apperrors.ErrAuthRequired
	}

	if data, _ := s.cache.Get(ctx, s.cacheKey(userID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			if cached.ClubID != id.ClubID {
				return nil, apperrors.ErrUserNotFound
			}
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(userID), payload, userCacheTTL)
	}
	if user.ClubID != id.ClubID {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}
