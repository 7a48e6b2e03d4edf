package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, userID string) (model.Profile, error)
}
