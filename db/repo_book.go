// db/repo_book.go
package db

import (
	"context"
	"strings"

	"librarydesk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const likeEscaper = `\`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	return translate(r.DB.WithContext(ctx).Create(b).Error, "book", b.ID)
}

func (r *Repo) FindBookByID(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err, "book", id)
	}
	return &b, nil
}

// 关键词匹配 title/author/isbn，不区分大小写
func (r *Repo) bookQuery(ctx context.Context, q string) *gorm.DB {
	tx := r.DB.WithContext(ctx).Model(&models.Book{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + likeReplacer.Replace(strings.ToLower(q)) + "%"
		tx = tx.Where(
			"LOWER(title) LIKE ? ESCAPE '"+likeEscaper+"' OR LOWER(author) LIKE ? ESCAPE '"+likeEscaper+"' OR LOWER(isbn) LIKE ? ESCAPE '"+likeEscaper+"'",
			like, like, like)
	}
	return tx
}

func (r *Repo) CountBooks(ctx context.Context, q string) (int64, error) {
	var n int64
	err := r.bookQuery(ctx, q).Count(&n).Error
	return n, err
}

func (r *Repo) SearchBooks(ctx context.Context, q string, offset, limit int) ([]models.Book, error) {
	var books []models.Book
	err := r.bookQuery(ctx, q).
		Order("title ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error
	return books, err
}

func (r *Repo) ListAvailableBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := r.DB.WithContext(ctx).
		Where("available = ?", true).
		Order("title ASC").
		Order("id ASC").
		Find(&books).Error
	return books, err
}

func (r *Repo) CountAvailableBooks(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Book{}).Where("available = ?", true).Count(&n).Error
	return n, err
}

// UpdateBook 锁住该书 → 统计未归还记录 → apply → 保存
func (r *Repo) UpdateBook(ctx context.Context, id uint, apply func(b *models.Book, onLoan bool) error) (*models.Book, error) {
	var b models.Book
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			return err
		}
		var open int64
		if err := tx.Model(&models.IssueRecord{}).
			Where("book_id = ? AND return_date IS NULL", id).
			Count(&open).Error; err != nil {
			return err
		}
		if err := apply(&b, open > 0); err != nil {
			return err
		}
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, translate(err, "book", id)
	}
	return &b, nil
}

// DeleteBook removes the book and its issue records in one transaction.
func (r *Repo) DeleteBook(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.IssueRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&b).Error
	})
	return translate(err, "book", id)
}
