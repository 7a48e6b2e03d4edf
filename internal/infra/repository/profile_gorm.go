package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"gorm.io/gorm"
)

type profileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) repo.ProfileRepository {
	return &profileGormRepository{db: db}
}

func (r *profileGormRepository) FindByID(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error; err != nil {
		return model.Profile{}, translate(err)
	}
	return p, nil
}
