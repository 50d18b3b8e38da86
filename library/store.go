package library

import (
	"context"
	"time"

	"librarydesk/models"
)

// BookStore persists books. UpdateBook runs apply inside a transaction with
// the row locked; onLoan reports whether an open issue record exists.
type BookStore interface {
	CreateBook(ctx context.Context, b *models.Book) error
	FindBookByID(ctx context.Context, id uint) (*models.Book, error)
	CountBooks(ctx context.Context, q string) (int64, error)
	SearchBooks(ctx context.Context, q string, offset, limit int) ([]models.Book, error)
	ListAvailableBooks(ctx context.Context) ([]models.Book, error)
	CountAvailableBooks(ctx context.Context) (int64, error)
	UpdateBook(ctx context.Context, id uint, apply func(b *models.Book, onLoan bool) error) (*models.Book, error)
	DeleteBook(ctx context.Context, id uint) error
}

type MemberStore interface {
	CreateMember(ctx context.Context, m *models.Member) error
	FindMemberByID(ctx context.Context, id uint) (*models.Member, error)
	ListMembers(ctx context.Context) ([]models.Member, error)
	CountMembers(ctx context.Context) (int64, error)
	UpdateMember(ctx context.Context, id uint, apply func(m *models.Member) error) (*models.Member, error)
	DeleteMember(ctx context.Context, id uint) error
}

// IssueStore owns issue records. IssueBook and ReturnIssue must write the
// record and the book's availability in the same transaction.
type IssueStore interface {
	IssueBook(ctx context.Context, memberID, bookID uint, on time.Time) (*models.IssueRecord, error)
	ReturnIssue(ctx context.Context, issueID uint, on time.Time) (*models.IssueRecord, bool, error)
	ListIssues(ctx context.Context, limit int) ([]models.IssueRecord, error)
	CountOpenIssues(ctx context.Context) (int64, error)
}
