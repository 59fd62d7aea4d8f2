package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"clubrun/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ListByClub(ctx context.Context, clubID uint) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	// CreateFromInvitation creates the user and consumes the invitation in a
	// single transaction, so an invitation is never consumed without a
	// corresponding account or vice versa.
	CreateFromInvitation(ctx context.Context, user *model.User, invitationID uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByClub(ctx context.Context, clubID uint) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("club_id = ?", clubID).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) CreateFromInvitation(ctx context.Context, user *model.User, invitationID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Invitation{}).
			Where("id = ? AND used = ?", invitationID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		// A concurrent signup may have consumed the invitation between the
		// service-level check and this update.
		if res.RowsAffected == 0 {
			return fmt.Errorf("invitation %d already consumed", invitationID)
		}
		return nil
	})
}
