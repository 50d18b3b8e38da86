// db/repo_member.go
package db

import (
	"context"

	"librarydesk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repo) CreateMember(ctx context.Context, m *models.Member) error {
	return translate(r.DB.WithContext(ctx).Create(m).Error, "member", m.ID)
}

func (r *Repo) FindMemberByID(ctx context.Context, id uint) (*models.Member, error) {
	var m models.Member
	if err := r.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "member", id)
	}
	return &m, nil
}

func (r *Repo) ListMembers(ctx context.Context) ([]models.Member, error) {
	var ms []models.Member
	err := r.DB.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&ms).Error
	return ms, err
}

func (r *Repo) CountMembers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Member{}).Count(&n).Error
	return n, err
}

func (r *Repo) UpdateMember(ctx context.Context, id uint, apply func(m *models.Member) error) (*models.Member, error) {
	var m models.Member
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
			return err
		}
		if err := apply(&m); err != nil {
			return err
		}
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, translate(err, "member", id)
	}
	return &m, nil
}

// DeleteMember 删除会员及其借阅记录；其未归还的书恢复可借
func (r *Repo) DeleteMember(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Member
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
			return err
		}
		var bookIDs []uint
		if err := tx.Model(&models.IssueRecord{}).
			Where("member_id = ? AND return_date IS NULL", id).
			Pluck("book_id", &bookIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.IssueRecord{}).Error; err != nil {
			return err
		}
		if len(bookIDs) > 0 {
			if err := tx.Model(&models.Book{}).
				Where("id IN ?", bookIDs).
				Update("available", true).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&m).Error
	})
	return translate(err, "member", id)
}
