package repository

import (
	"context"

	"gorm.io/gorm"

	"bus_tracker/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uint, name, email string) error
	SetImage(ctx context.Context, id uint, path string) error
}

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, translate(err)
}

func (r *userRepo) UpdateProfile(ctx context.Context, id uint, name, email string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"user_name": name, "email": email})
	changed, err := affected(res)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) SetImage(ctx context.Context, id uint, path string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("image_path", path)
	changed, err := affected(res)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFound
	}
	return nil
}
