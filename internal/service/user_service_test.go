package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "clubrun/internal/errors"
	"clubrun/internal/model"
)

func TestUserService_ListClubUsers(t *testing.T) {
	t.Run("scoped to the caller's club", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("ListByClub", mock.Anything, uint(10)).Return([]model.User{
			{ID: 1, ClubID: 10}, {ID: 2, ClubID: 10},
		}, nil)

		service := NewUserService(mockRepo, nil)
		users, err := service.ListClubUsers(context.Background(), memberOf(10))

		assert.NoError(t, err)
		assert.Len(t, users, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		service := NewUserService(new(MockUserRepository), nil)
		_, err := service.ListClubUsers(context.Background(), nil)

		assert.ErrorIs(t, err, apperrors.ErrAuthRequired)
	})
}

func TestUserService_GetUser(t *testing.T) {
	t.Run("same club", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, ClubID: 10, Name: "Ann"}, nil)

		service := NewUserService(mockRepo, nil)
		user, err := service.GetUser(context.Background(), memberOf(10), 3)

		assert.NoError(t, err)
		assert.Equal(t, "Ann", user.Name)
	})

	t.Run("cross-club resolves as not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, ClubID: 20}, nil)

		service := NewUserService(mockRepo, nil)
		_, err := service.GetUser(context.Background(), memberOf(10), 3)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		service := NewUserService(mockRepo, nil)
		_, err := service.GetUser(context.Background(), memberOf(10), 99)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
