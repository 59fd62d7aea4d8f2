package repository

import (
	"context"

	"gorm.io/gorm"

	"clubrun/internal/model"
)

// CategoryChanges is the computed diff applied when a marathon's category
// list is replaced: rows absent from the new list are deleted, rows matched
// by name are updated in place, and the rest are inserted.
type CategoryChanges struct {
	DeleteIDs []uint
	Update    []model.Category
	Insert    []model.Category
}

// Empty reports whether the diff would change nothing.
func (c *CategoryChanges) Empty() bool {
	return c == nil || (len(c.DeleteIDs) == 0 && len(c.Update) == 0 && len(c.Insert) == 0)
}

// MarathonRepository defines marathon and category persistence operations.
type MarathonRepository interface {
	// CreateWithCategories inserts the marathon and its categories in a single
	// transaction; a failed category insert rolls back the marathon row.
	CreateWithCategories(ctx context.Context, marathon *model.Marathon) error
	FindByID(ctx context.Context, id uint) (*model.Marathon, error)
	FindByClub(ctx context.Context, clubID uint) ([]model.Marathon, error)
	FindPublic(ctx context.Context) ([]model.Marathon, error)
	FindPublicExcludingClub(ctx context.Context, clubID uint) ([]model.Marathon, error)
	// UpdateWithCategories applies a partial field update and an optional
	// category diff in one transaction.
	UpdateWithCategories(ctx context.Context, id uint, fields map[string]interface{}, changes *CategoryChanges) error
	// DeleteCascade removes participations, then categories, then the
	// marathon row, all in one transaction.
	DeleteCascade(ctx context.Context, id uint) error
	FindCategories(ctx context.Context, marathonID uint) ([]model.Category, error)
}

type marathonRepository struct {
	db *gorm.DB
}

// NewMarathonRepository builds a GORM-backed repository.
func NewMarathonRepository(db *gorm.DB) MarathonRepository {
	return &marathonRepository{db: db}
}

func (r *marathonRepository) CreateWithCategories(ctx context.Context, marathon *model.Marathon) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(marathon).Error
	})
}

func (r *marathonRepository) FindByID(ctx context.Context, id uint) (*model.Marathon, error) {
	var marathon model.Marathon
	if err := r.db.WithContext(ctx).Preload("Categories").First(&marathon, id).Error; err != nil {
		return nil, err
	}
	return &marathon, nil
}

func (r *marathonRepository) FindByClub(ctx context.Context, clubID uint) ([]model.Marathon, error) {
	var marathons []model.Marathon
	if err := r.db.WithContext(ctx).Preload("Categories").
		Where("club_id = ?", clubID).Find(&marathons).Error; err != nil {
		return nil, err
	}
	return marathons, nil
}

func (r *marathonRepository) FindPublic(ctx context.Context) ([]model.Marathon, error) {
	var marathons []model.Marathon
	if err := r.db.WithContext(ctx).Preload("Categories").
		Where("is_private = ?", false).Find(&marathons).Error; err != nil {
		return nil, err
	}
	return marathons, nil
}

func (r *marathonRepository) FindPublicExcludingClub(ctx context.Context, clubID uint) ([]model.Marathon, error) {
	var marathons []model.Marathon
	if err := r.db.WithContext(ctx).Preload("Categories").
		Where("is_private = ? AND club_id != ?", false, clubID).
		Find(&marathons).Error; err != nil {
		return nil, err
	}
	return marathons, nil
}

func (r *marathonRepository) UpdateWithCategories(ctx context.Context, id uint, fields map[string]interface{}, changes *CategoryChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&model.Marathon{}).Where("id = ?", id).
				Updates(fields).Error; err != nil {
				return err
			}
		}
		if changes.Empty() {
			return nil
		}
		if len(changes.DeleteIDs) > 0 {
			if err := tx.Where("marathon_id = ? AND id IN ?", id, changes.DeleteIDs).
				Delete(&model.Category{}).Error; err != nil {
				return err
			}
		}
		for i := range changes.Update {
			cat := &changes.Update[i]
			if err := tx.Model(&model.Category{}).Where("id = ?", cat.ID).
				Update("price", cat.Price).Error; err != nil {
				return err
			}
		}
		for i := range changes.Insert {
			changes.Insert[i].MarathonID = id
			if err := tx.Create(&changes.Insert[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *marathonRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("marathon_id = ?", id).
			Delete(&model.Participation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("marathon_id = ?", id).
			Delete(&model.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Marathon{}, id).Error
	})
}

func (r *marathonRepository) FindCategories(ctx context.Context, marathonID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("marathon_id = ?", marathonID).
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
