// db/repo_users_staff.go
package db

import (
	"context"

	"librarydesk/models"

	"gorm.io/gorm"
)

// SetUserStaff grants or revokes staff access by username.
func (r *Repo) SetUserStaff(ctx context.Context, username string, isStaff bool) error {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("is_staff", isStaff)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) CountStaff(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("is_staff = ?", true).
		Count(&n).Error
	return n, err
}
