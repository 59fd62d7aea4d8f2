package repository

import (
	"context"

	"gorm.io/gorm"

	"clubrun/internal/model"
)

// ParticipationRepository defines registration persistence operations.
type ParticipationRepository interface {
	Create(ctx context.Context, participation *model.Participation) error
	FindByUserAndMarathon(ctx context.Context, userID, marathonID uint) (*model.Participation, error)
	// SwitchCategory moves an existing registration to another category and
	// refreshes its timestamp. Returns gorm.ErrRecordNotFound when no row
	// exists for the pair.
	SwitchCategory(ctx context.Context, userID, marathonID, categoryID uint) error
	// Delete removes the registration for the pair; gorm.ErrRecordNotFound
	// when there was none.
	Delete(ctx context.Context, userID, marathonID uint) error
	ListByMarathon(ctx context.Context, marathonID uint) ([]model.ParticipantRow, error)
	ListByClub(ctx context.Context, clubID uint) ([]model.ParticipantRow, error)
}

type participationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository builds a GORM-backed repository.
func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepository{db: db}
}

func (r *participationRepository) Create(ctx context.Context, participation *model.Participation) error {
	return r.db.WithContext(ctx).Create(participation).Error
}

func (r *participationRepository) FindByUserAndMarathon(ctx context.Context, userID, marathonID uint) (*model.Participation, error) {
	var participation model.Participation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND marathon_id = ?", userID, marathonID).
		First(&participation).Error; err != nil {
		return nil, err
	}
	return &participation, nil
}

func (r *participationRepository) SwitchCategory(ctx context.Context, userID, marathonID, categoryID uint) error {
	res := r.db.WithContext(ctx).Model(&model.Participation{}).
		Where("user_id = ? AND marathon_id = ?", userID, marathonID).
		Updates(map[string]interface{}{
			"category_id":   categoryID,
			"registered_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *participationRepository) Delete(ctx context.Context, userID, marathonID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND marathon_id = ?", userID, marathonID).
		Delete(&model.Participation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *participationRepository) ListByMarathon(ctx context.Context, marathonID uint) ([]model.ParticipantRow, error) {
	var rows []model.ParticipantRow
	err := r.db.WithContext(ctx).Model(&model.Participation{}).
		Select(`participations.user_id, users.name AS user_name,
			participations.category_id, categories.name AS category_name,
			participations.marathon_id, marathons.name AS marathon_name`).
		Joins("JOIN users ON users.id = participations.user_id").
		Joins("JOIN categories ON categories.id = participations.category_id").
		Joins("JOIN marathons ON marathons.id = participations.marathon_id").
		Where("participations.marathon_id = ?", marathonID).
		Order("participations.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *participationRepository) ListByClub(ctx context.Context, clubID uint) ([]model.ParticipantRow, error) {
	var rows []model.ParticipantRow
	err := r.db.WithContext(ctx).Model(&model.Participation{}).
		Select(`participations.user_id, users.name AS user_name,
			participations.category_id, categories.name AS category_name,
			participations.marathon_id, marathons.name AS marathon_name`).
		Joins("JOIN users ON users.id = participations.user_id").
		Joins("JOIN categories ON categories.id = participations.category_id").
		Joins("JOIN marathons ON marathons.id = participations.marathon_id").
		Where("marathons.club_id = ?", clubID).
		Order("participations.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
