package repository

import (
	"context"

	"gorm.io/gorm"

	"courseplatform/internal/domain"
)

// UserRepository is the minimal identity lookup the seed command needs.
type UserRepository interface {
	FirstOrCreate(ctx context.Context, u *domain.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FirstOrCreate(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u).Error
}
