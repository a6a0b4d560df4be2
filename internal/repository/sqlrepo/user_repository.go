package sqlrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = model.NewID()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", translateError(err))
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindConflict(ctx context.Context, username, email, excludeID string) (*model.User, error) {
	if email != "" {
		user, err := r.firstOther(ctx, "email = ?", email, excludeID)
		if user != nil || err != nil {
			return user, err
		}
	}
	if username != "" {
		return r.firstOther(ctx, "username = ?", username, excludeID)
	}
	return nil, nil
}

func (r *UserRepository) firstOther(ctx context.Context, cond, value, excludeID string) (*model.User, error) {
	query := r.db.WithContext(ctx).Where(cond, value)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var user model.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query conflicting user failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch repository.UserPatch) (*model.User, error) {
	if !patch.Empty() {
		updates := make(map[string]any, 2)
		if patch.Username != nil {
			updates["username"] = *patch.Username
		}
		if patch.Email != nil {
			updates["email"] = *patch.Email
		}
		err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("update user failed: %w", translateError(err))
		}
	}
	return r.GetByID(ctx, id)
}
