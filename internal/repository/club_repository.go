package repository

import (
	"context"

	"gorm.io/gorm"

	"clubrun/internal/model"
)

// ClubRepository defines club persistence operations.
type ClubRepository interface {
	Create(ctx context.Context, club *model.Club) error
	FindByID(ctx context.Context, id uint) (*model.Club, error)
	FindByName(ctx context.Context, name string) (*model.Club, error)
	List(ctx context.Context) ([]model.Club, error)
}

type clubRepository struct {
	db *gorm.DB
}

// NewClubRepository builds a GORM-backed repository.
func NewClubRepository(db *gorm.DB) ClubRepository {
	return &clubRepository{db: db}
}

func (r *clubRepository) Create(ctx context.Context, club *model.Club) error {
	return r.db.WithContext(ctx).Create(club).Error
}

func (r *clubRepository) FindByID(ctx context.Context, id uint) (*model.Club, error) {
	var club model.Club
	if err := r.db.WithContext(ctx).First(&club, id).Error; err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *clubRepository) FindByName(ctx context.Context, name string) (*model.Club, error) {
	var club model.Club
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&club).Error; err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *clubRepository) List(ctx context.Context) ([]model.Club, error) {
	var clubs []model.Club
	if err := r.db.WithContext(ctx).Find(&clubs).Error; err != nil {
		return nil, err
	}
	return clubs, nil
}
