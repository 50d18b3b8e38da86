package db

import (
	"context"
	"time"

	"librarydesk/library"
	"librarydesk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IssueBook 借出：原子操作 = 锁住 book → 校验 → 新建记录 → available=false
func (r *Repo) IssueBook(ctx context.Context, memberID, bookID uint, on time.Time) (*models.IssueRecord, error) {
	var rec *models.IssueRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该书
		var b models.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, bookID).Error; err != nil {
			return translate(err, "book", bookID)
		}
		var m models.Member
		if err := tx.First(&m, memberID).Error; err != nil {
			return translate(err, "member", memberID)
		}

		// 2) 防并发：不可借或存在未归还记录则拒绝
		unavailable := &library.UnavailableError{BookID: b.ID, Title: b.Title}
		if !b.Available {
			return unavailable
		}
		var n int64
		if err := tx.Model(&models.IssueRecord{}).
			Where("book_id = ? AND return_date IS NULL", b.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return unavailable
		}

		// 3) 新建记录（部分唯一索引兜底）
		l := &models.IssueRecord{BookID: b.ID, MemberID: m.ID, IssueDate: on}
		if err := tx.Omit(clause.Associations).Create(l).Error; err != nil {
			if isUniqueViolation(err) {
				return unavailable
			}
			return err
		}

		// 4) 标记为已借出
		if err := tx.Model(&models.Book{}).
			Where("id = ?", b.ID).
			Update("available", false).Error; err != nil {
			return err
		}
		b.Available = false
		l.Book = b
		l.Member = m
		rec = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ReturnIssue closes the record and frees the book. The bool result is true
// when the record was already closed; nothing is written in that case.
func (r *Repo) ReturnIssue(ctx context.Context, issueID uint, on time.Time) (*models.IssueRecord, bool, error) {
	var l models.IssueRecord
	already := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, issueID).Error; err != nil {
			return translate(err, "issue record", issueID)
		}
		// 幂等：已归还直接返回
		if l.ReturnDate != nil {
			already = true
		} else {
			returned := on
			if err := tx.Model(&models.IssueRecord{}).
				Where("id = ?", l.ID).
				Update("return_date", returned).Error; err != nil {
				return err
			}
			l.ReturnDate = &returned
			// 释放占用
			if err := tx.Model(&models.Book{}).
				Where("id = ?", l.BookID).
				Update("available", true).Error; err != nil {
				return err
			}
		}
		if err := tx.First(&l.Book, l.BookID).Error; err != nil {
			return err
		}
		return tx.First(&l.Member, l.MemberID).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &l, already, nil
}

// ListIssues returns records newest first with book and member loaded.
// limit <= 0 returns all of them.
func (r *Repo) ListIssues(ctx context.Context, limit int) ([]models.IssueRecord, error) {
	q := r.DB.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Order("issue_date DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ls []models.IssueRecord
	if err := q.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

func (r *Repo) CountOpenIssues(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.IssueRecord{}).
		Where("return_date IS NULL").
		Count(&n).Error
	return n, err
}
