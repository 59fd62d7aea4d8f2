package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clubrun/internal/auth"
	apperrors "clubrun/internal/errors"
	"clubrun/internal/mail"
	"clubrun/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListByClub(ctx context.Context, clubID uint) ([]model.User, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) CreateFromInvitation(ctx context.Context, user *model.User, invitationID uint) error {
	args := m.Called(ctx, user, invitationID)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) StoreResetToken(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	args := m.Called(ctx, token, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) ConsumeResetToken(ctx context.Context, token string) (uint, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uint), args.Error(1)
}

func newTestAuthService(
	userRepo *MockUserRepository,
	invitationRepo *MockInvitationRepository,
	tokenStore *MockTokenStore,
) AuthService {
	return NewAuthService(
		userRepo,
		invitationRepo,
		auth.NewJWTService("test-secret"),
		tokenStore,
		mail.New("", "", "", "", zap.NewNop()),
		"http://localhost:3000",
		zap.NewNop(),
	)
}

func TestAuthService_Signup(t *testing.T) {
	validInvitation := func() *model.Invitation {
		return &model.Invitation{ID: 5, Code: "ABCD1234", Email: "new@example.com", ClubID: 10, Used: false}
	}

	tests := []struct {
		name          string
		email         string
		code          string
		setupMock     func(*MockUserRepository, *MockInvitationRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:  "successful signup",
			email: "new@example.com",
			code:  "ABCD1234",
			setupMock: func(mUser *MockUserRepository, mInv *MockInvitationRepository, mToken *MockTokenStore) {
				mInv.On("FindByCode", mock.Anything, "ABCD1234").Return(validInvitation(), nil)
				mUser.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				mUser.On("CreateFromInvitation", mock.Anything, mock.AnythingOfType("*model.User"), uint(5)).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, auth.RefreshTokenExpiry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "unknown code",
			email: "new@example.com",
			code:  "NOPE0000",
			setupMock: func(mUser *MockUserRepository, mInv *MockInvitationRepository, mToken *MockTokenStore) {
				mInv.On("FindByCode", mock.Anything, "NOPE0000").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidInvitation,
		},
		{
			name:  "already used code",
			email: "new@example.com",
			code:  "ABCD1234",
			setupMock: func(mUser *MockUserRepository, mInv *MockInvitationRepository, mToken *MockTokenStore) {
				inv := validInvitation()
				inv.Used = true
				mInv.On("FindByCode", mock.Anything, "ABCD1234").Return(inv, nil)
			},
			expectedError: apperrors.ErrInvalidInvitation,
		},
		{
			name:  "code issued to a different email",
			email: "other@example.com",
			code:  "ABCD1234",
			setupMock: func(mUser *MockUserRepository, mInv *MockInvitationRepository, mToken *MockTokenStore) {
				mInv.On("FindByCode", mock.Anything, "ABCD1234").Return(validInvitation(), nil)
			},
			expectedError: apperrors.ErrInvalidInvitation,
		},
		{
			name:  "email already registered",
			email: "new@example.com",
			code:  "ABCD1234",
			setupMock: func(mUser *MockUserRepository, mInv *MockInvitationRepository, mToken *MockTokenStore) {
				mInv.On("FindByCode", mock.Anything, "ABCD1234").Return(validInvitation(), nil)
				mUser.On("FindByEmail", mock.Anything, "new@example.com").Return(&model.User{Email: "new@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:  "concurrent signup consumed the unique email",
			email: "new@example.com",
			code:  "ABCD1234",
			setupMock: func(mUser *MockUserRepository, mInv *MockInvitationRepository, mToken *MockTokenStore) {
				mInv.On("FindByCode", mock.Anything, "ABCD1234").Return(validInvitation(), nil)
				mUser.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				mUser.On("CreateFromInvitation", mock.Anything, mock.AnythingOfType("*model.User"), uint(5)).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUser := new(MockUserRepository)
			mockInv := new(MockInvitationRepository)
			mockToken := new(MockTokenStore)
			tt.setupMock(mockUser, mockInv, mockToken)

			service := newTestAuthService(mockUser, mockInv, mockToken)
			access, refresh, user, err := service.Signup(context.Background(), "New Runner", tt.email, "password123", tt.code)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, access)
				assert.NotEmpty(t, refresh)
				assert.Equal(t, uint(10), user.ClubID, "club comes from the invitation")
				assert.Equal(t, model.RoleMember, user.Role)
				assert.NotEmpty(t, user.PasswordHash)
			}

			mockUser.AssertExpectations(t)
			mockInv.AssertExpectations(t)
			mockToken.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)
	stored := &model.User{ID: 1, Email: "runner@example.com", PasswordHash: string(hashed), ClubID: 10, Role: model.RoleMember}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "runner@example.com",
			password: "password123",
			setupMock: func(mUser *MockUserRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "runner@example.com").Return(stored, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(1), auth.RefreshTokenExpiry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "wrong password",
			email:    "runner@example.com",
			password: "wrong",
			setupMock: func(mUser *MockUserRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "runner@example.com").Return(stored, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password123",
			setupMock: func(mUser *MockUserRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUser := new(MockUserRepository)
			mockToken := new(MockTokenStore)
			tt.setupMock(mockUser, mockToken)

			service := newTestAuthService(mockUser, new(MockInvitationRepository), mockToken)
			access, refresh, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, access)
				assert.NotEmpty(t, refresh)
				assert.Equal(t, stored.Email, user.Email)
			}

			mockUser.AssertExpectations(t)
			mockToken.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: 1, Email: "runner@example.com", ClubID: 10, Role: model.RoleMember}
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
	assert.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		mockUser := new(MockUserRepository)
		mockToken := new(MockTokenStore)
		mockToken.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(1), nil)
		mockUser.On("FindByID", mock.Anything, uint(1)).Return(user, nil)

		service := newTestAuthService(mockUser, new(MockInvitationRepository), mockToken)
		access, err := service.RefreshToken(context.Background(), refreshToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		mockToken.AssertExpectations(t)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		mockToken := new(MockTokenStore)
		mockToken.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(0), assert.AnError)

		service := newTestAuthService(new(MockUserRepository), new(MockInvitationRepository), mockToken)
		_, err := service.RefreshToken(context.Background(), refreshToken)

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		accessToken, err := jwtService.GenerateAccessToken(user)
		assert.NoError(t, err)

		service := newTestAuthService(new(MockUserRepository), new(MockInvitationRepository), new(MockTokenStore))
		_, err = service.RefreshToken(context.Background(), accessToken)

		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestAuthService_UpdatePassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("oldpass123"), bcryptCost)
	stored := &model.User{ID: 1, PasswordHash: string(hashed), ClubID: 10}

	t.Run("wrong current password", func(t *testing.T) {
		mockUser := new(MockUserRepository)
		mockUser.On("FindByID", mock.Anything, uint(1)).Return(stored, nil)

		service := newTestAuthService(mockUser, new(MockInvitationRepository), new(MockTokenStore))
		err := service.UpdatePassword(context.Background(), 1, "not-the-password", "newpass123")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("successful change", func(t *testing.T) {
		mockUser := new(MockUserRepository)
		mockUser.On("FindByID", mock.Anything, uint(1)).Return(stored, nil)
		mockUser.On("UpdatePassword", mock.Anything, uint(1), mock.AnythingOfType("string")).Return(nil)

		service := newTestAuthService(mockUser, new(MockInvitationRepository), new(MockTokenStore))
		err := service.UpdatePassword(context.Background(), 1, "oldpass123", "newpass123")

		assert.NoError(t, err)
		mockUser.AssertExpectations(t)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		mockUser := new(MockUserRepository)
		mockToken := new(MockTokenStore)
		mockToken.On("ConsumeResetToken", mock.Anything, "reset-token").Return(uint(1), nil)
		mockUser.On("UpdatePassword", mock.Anything, uint(1), mock.AnythingOfType("string")).Return(nil)

		service := newTestAuthService(mockUser, new(MockInvitationRepository), mockToken)
		err := service.ResetPassword(context.Background(), "reset-token", "newpass123")

		assert.NoError(t, err)
		mockUser.AssertExpectations(t)
	})

	t.Run("unknown or spent token", func(t *testing.T) {
		mockToken := new(MockTokenStore)
		mockToken.On("ConsumeResetToken", mock.Anything, "spent").Return(uint(0), assert.AnError)

		service := newTestAuthService(new(MockUserRepository), new(MockInvitationRepository), mockToken)
		err := service.ResetPassword(context.Background(), "spent", "newpass123")

		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestAuthService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	mockUser := new(MockUserRepository)
	mockUser.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := newTestAuthService(mockUser, new(MockInvitationRepository), new(MockTokenStore))
	err := service.ForgotPassword(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	mockUser.AssertExpectations(t)
}
