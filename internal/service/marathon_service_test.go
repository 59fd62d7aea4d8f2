package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "clubrun/internal/errors"
	"clubrun/internal/model"
	"clubrun/internal/policy"
	"clubrun/internal/repository"
)

// MockMarathonRepository is a mock implementation of MarathonRepository.
type MockMarathonRepository struct {
	mock.Mock
}

func (m *MockMarathonRepository) CreateWithCategories(ctx context.Context, marathon *model.Marathon) error {
	args := m.Called(ctx, marathon)
	return args.Error(0)
}

func (m *MockMarathonRepository) FindByID(ctx context.Context, id uint) (*model.Marathon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Marathon), args.Error(1)
}

func (m *MockMarathonRepository) FindByClub(ctx context.Context, clubID uint) ([]model.Marathon, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Marathon), args.Error(1)
}

func (m *MockMarathonRepository) FindPublic(ctx context.Context) ([]model.Marathon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Marathon), args.Error(1)
}

func (m *MockMarathonRepository) FindPublicExcludingClub(ctx context.Context, clubID uint) ([]model.Marathon, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Marathon), args.Error(1)
}

func (m *MockMarathonRepository) UpdateWithCategories(ctx context.Context, id uint, fields map[string]interface{}, changes *repository.CategoryChanges) error {
	args := m.Called(ctx, id, fields, changes)
	return args.Error(0)
}

func (m *MockMarathonRepository) DeleteCascade(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMarathonRepository) FindCategories(ctx context.Context, marathonID uint) ([]model.Category, error) {
	args := m.Called(ctx, marathonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func adminOf(clubID uint) *policy.Identity {
	return &policy.Identity{UserID: 1, ClubID: clubID, Role: model.RoleAdmin}
}

func memberOf(clubID uint) *policy.Identity {
	return &policy.Identity{UserID: 2, ClubID: clubID, Role: model.RoleMember}
}

func TestMarathonService_ListVisible(t *testing.T) {
	t.Run("anonymous sees public only", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindPublic", mock.Anything).Return([]model.Marathon{{ID: 1, IsPrivate: false}}, nil)

		service := NewMarathonService(mockRepo, nil)
		marathons, err := service.ListVisible(context.Background(), nil)

		assert.NoError(t, err)
		assert.Len(t, marathons, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("member sees own club plus public of others", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindByClub", mock.Anything, uint(10)).Return([]model.Marathon{
			{ID: 1, ClubID: 10, IsPrivate: true},
			{ID: 2, ClubID: 10, IsPrivate: false},
		}, nil)
		mockRepo.On("FindPublicExcludingClub", mock.Anything, uint(10)).Return([]model.Marathon{
			{ID: 3, ClubID: 20, IsPrivate: false},
		}, nil)

		service := NewMarathonService(mockRepo, nil)
		marathons, err := service.ListVisible(context.Background(), memberOf(10))

		assert.NoError(t, err)
		assert.Len(t, marathons, 3)
		mockRepo.AssertExpectations(t)
	})
}

func TestMarathonService_Get(t *testing.T) {
	private := &model.Marathon{ID: 1, ClubID: 10, IsPrivate: true, Name: "Members Trail"}

	tests := []struct {
		name          string
		id            *policy.Identity
		setupMock     func(*MockMarathonRepository)
		expectedError error
	}{
		{
			name: "owning club member reads private",
			id:   memberOf(10),
			setupMock: func(m *MockMarathonRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(private, nil)
			},
			expectedError: nil,
		},
		{
			name: "outsider blocked from private",
			id:   memberOf(20),
			setupMock: func(m *MockMarathonRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(private, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name: "anonymous blocked from private",
			id:   nil,
			setupMock: func(m *MockMarathonRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(private, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name: "missing marathon",
			id:   memberOf(10),
			setupMock: func(m *MockMarathonRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrMarathonNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockMarathonRepository)
			tt.setupMock(mockRepo)

			service := NewMarathonService(mockRepo, nil)
			marathon, err := service.Get(context.Background(), tt.id, 1)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, marathon)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Members Trail", marathon.Name)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestMarathonService_Create(t *testing.T) {
	date := time.Date(2026, 4, 12, 8, 0, 0, 0, time.UTC)

	t.Run("defaults to private and stores categories", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("CreateWithCategories", mock.Anything, mock.AnythingOfType("*model.Marathon")).Return(nil)

		service := NewMarathonService(mockRepo, nil)
		marathon, err := service.Create(context.Background(), adminOf(10), CreateMarathonInput{
			Name: "Spring Run",
			Date: date,
			Categories: []CategoryInput{
				{Name: "5K Run", Price: decimal.NewFromInt(15)},
				{Name: "Half Marathon", Price: decimal.NewFromInt(40)},
			},
		})

		assert.NoError(t, err)
		assert.True(t, marathon.IsPrivate)
		assert.Equal(t, uint(10), marathon.ClubID)
		assert.Len(t, marathon.Categories, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects names outside the enumeration", func(t *testing.T) {
		service := NewMarathonService(new(MockMarathonRepository), nil)
		_, err := service.Create(context.Background(), adminOf(10), CreateMarathonInput{
			Name:       "Spring Run",
			Date:       date,
			Categories: []CategoryInput{{Name: "Ultra 100K", Price: decimal.NewFromInt(80)}},
		})

		var verr *apperrors.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("rejects duplicate category names", func(t *testing.T) {
		service := NewMarathonService(new(MockMarathonRepository), nil)
		_, err := service.Create(context.Background(), adminOf(10), CreateMarathonInput{
			Name: "Spring Run",
			Date: date,
			Categories: []CategoryInput{
				{Name: "5K Run", Price: decimal.NewFromInt(15)},
				{Name: "5K Run", Price: decimal.NewFromInt(20)},
			},
		})

		var verr *apperrors.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		service := NewMarathonService(new(MockMarathonRepository), nil)
		_, err := service.Create(context.Background(), adminOf(10), CreateMarathonInput{
			Name:       "Spring Run",
			Date:       date,
			Categories: []CategoryInput{{Name: "5K Run", Price: decimal.NewFromInt(-5)}},
		})

		var verr *apperrors.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("requires name and date", func(t *testing.T) {
		service := NewMarathonService(new(MockMarathonRepository), nil)
		_, err := service.Create(context.Background(), adminOf(10), CreateMarathonInput{Name: "No Date"})

		var verr *apperrors.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		service := NewMarathonService(new(MockMarathonRepository), nil)
		_, err := service.Create(context.Background(), nil, CreateMarathonInput{Name: "X", Date: date})

		assert.ErrorIs(t, err, apperrors.ErrAuthRequired)
	})
}

func TestMarathonService_Update(t *testing.T) {
	stored := func() *model.Marathon {
		return &model.Marathon{
			ID: 1, ClubID: 10, IsPrivate: true, Name: "Spring Run",
			Categories: []model.Category{
				{ID: 100, MarathonID: 1, Name: "5K Run", Price: decimal.NewFromInt(15)},
				{ID: 101, MarathonID: 1, Name: "10K Run", Price: decimal.NewFromInt(25)},
			},
		}
	}

	t.Run("foreign admin blocked", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(stored(), nil)

		service := NewMarathonService(mockRepo, nil)
		name := "Renamed"
		_, err := service.Update(context.Background(), adminOf(20), 1, UpdateMarathonInput{Name: &name})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("member blocked", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(stored(), nil)

		service := NewMarathonService(mockRepo, nil)
		name := "Renamed"
		_, err := service.Update(context.Background(), memberOf(10), 1, UpdateMarathonInput{Name: &name})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("category list replacement is a diff", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(stored(), nil)
		mockRepo.On("UpdateWithCategories", mock.Anything, uint(1), mock.Anything,
			mock.MatchedBy(func(changes *repository.CategoryChanges) bool {
				// 10K dropped, 5K price changed, Half Marathon added.
				return len(changes.DeleteIDs) == 1 && changes.DeleteIDs[0] == 101 &&
					len(changes.Update) == 1 && changes.Update[0].ID == 100 &&
					len(changes.Insert) == 1 && changes.Insert[0].Name == "Half Marathon"
			})).Return(nil)

		service := NewMarathonService(mockRepo, nil)
		categories := []CategoryInput{
			{Name: "5K Run", Price: decimal.NewFromInt(18)},
			{Name: "Half Marathon", Price: decimal.NewFromInt(40)},
		}
		_, err := service.Update(context.Background(), adminOf(10), 1, UpdateMarathonInput{Categories: &categories})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(stored(), nil)

		service := NewMarathonService(mockRepo, nil)
		name := ""
		_, err := service.Update(context.Background(), adminOf(10), 1, UpdateMarathonInput{Name: &name})

		var verr *apperrors.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestMarathonService_Delete(t *testing.T) {
	stored := &model.Marathon{ID: 1, ClubID: 10, IsPrivate: true}

	t.Run("owning admin deletes", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(stored, nil)
		mockRepo.On("DeleteCascade", mock.Anything, uint(1)).Return(nil)

		service := NewMarathonService(mockRepo, nil)
		err := service.Delete(context.Background(), adminOf(10), 1)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("foreign admin blocked", func(t *testing.T) {
		mockRepo := new(MockMarathonRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(stored, nil)

		service := NewMarathonService(mockRepo, nil)
		err := service.Delete(context.Background(), adminOf(20), 1)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestDiffCategories(t *testing.T) {
	existing := []model.Category{
		{ID: 1, Name: "5K Run", Price: decimal.NewFromInt(15)},
		{ID: 2, Name: "10K Run", Price: decimal.NewFromInt(25)},
	}

	t.Run("identical list changes nothing", func(t *testing.T) {
		changes := diffCategories(existing, []model.Category{
			{Name: "5K Run", Price: decimal.NewFromInt(15)},
			{Name: "10K Run", Price: decimal.NewFromInt(25)},
		})
		assert.True(t, changes.Empty())
	})

	t.Run("empty wanted list deletes everything", func(t *testing.T) {
		changes := diffCategories(existing, nil)
		assert.ElementsMatch(t, []uint{1, 2}, changes.DeleteIDs)
		assert.Empty(t, changes.Update)
		assert.Empty(t, changes.Insert)
	})

	t.Run("price change keeps the row", func(t *testing.T) {
		changes := diffCategories(existing, []model.Category{
			{Name: "5K Run", Price: decimal.NewFromInt(18)},
			{Name: "10K Run", Price: decimal.NewFromInt(25)},
		})
		assert.Len(t, changes.Update, 1)
		assert.Equal(t, uint(1), changes.Update[0].ID)
		assert.True(t, changes.Update[0].Price.Equal(decimal.NewFromInt(18)))
	})
}
