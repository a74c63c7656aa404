package store

import (
	"context"

	"github.com/suteetoe/repurpose/internal/model"
)

// CreateUser inserts a new account
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	defer track("user_create")()
	return mapError(s.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID loads an account by id
func (s *Store) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	defer track("user_get")()
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetUserByEmail loads an account by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer track("user_get")()
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// EmailOrUsernameTaken reports whether either identifier already belongs to
// an account other than excludeID
func (s *Store) EmailOrUsernameTaken(ctx context.Context, email, username string, excludeID uint) (bool, error) {
	defer track("user_exists")()
	var count int64
	q := s.db.WithContext(ctx).Model(&model.User{}).
		Where("(email = ? OR username = ?)", email, username)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUser saves profile fields
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	defer track("user_update")()
	return mapError(s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"username": user.Username,
		"plan":     user.Plan,
	}).Error)
}

// SetPassword replaces the stored password hash
func (s *Store) SetPassword(ctx context.Context, userID uint, hash string) error {
	defer track("user_update")()
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateUser turns off login for the account
func (s *Store) DeactivateUser(ctx context.Context, userID uint) error {
	defer track("user_update")()
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UsernameTaken reports whether username belongs to an account other than excludeID
func (s *Store) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	defer track("user_exists")()
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
