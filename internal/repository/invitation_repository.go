package repository

import (
	"context"

	"gorm.io/gorm"

	"clubrun/internal/model"
)

// InvitationRepository defines invitation persistence operations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *model.Invitation) error
	// CreateBatch inserts all invitations in a single transaction; either the
	// whole batch commits or none of it does.
	CreateBatch(ctx context.Context, invitations []model.Invitation) error
	FindByCode(ctx context.Context, code string) (*model.Invitation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	HasUnusedByEmail(ctx context.Context, email string, clubID uint) (bool, error)
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository builds a GORM-backed repository.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *model.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *invitationRepository) CreateBatch(ctx context.Context, invitations []model.Invitation) error {
	if len(invitations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range invitations {
			if err := tx.Create(&invitations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invitationRepository) FindByCode(ctx context.Context, code string) (*model.Invitation, error) {
	var invitation model.Invitation
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Invitation{}).
		Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invitationRepository) HasUnusedByEmail(ctx context.Context, email string, clubID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Invitation{}).
		Where("email = ? AND club_id = ? AND used = ?", email, clubID, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
