package library

import (
	"context"
	"time"

	"librarydesk/models"
)

// StaffRecentIssues is how many records the staff dashboard lists.
const StaffRecentIssues = 30

// Circulation issues and returns books. It is the only writer of
// Book.Available outside of catalog edits.
type Circulation struct {
	issues  IssueStore
	books   BookStore
	members MemberStore
	now     func() time.Time
}

type CirculationOption func(*Circulation)

// WithClock replaces time.Now as the source of issue and return dates.
func WithClock(now func() time.Time) CirculationOption {
	return func(c *Circulation) { c.now = now }
}

func NewCirculation(issues IssueStore, books BookStore, members MemberStore, opts ...CirculationOption) *Circulation {
	c := &Circulation{issues: issues, books: books, members: members, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ReturnResult struct {
	Record          *models.IssueRecord `json:"record"`
	AlreadyReturned bool                `json:"alreadyReturned"`
}

type Summary struct {
	TotalBooks     int64 `json:"totalBooks"`
	AvailableBooks int64 `json:"availableBooks"`
	TotalMembers   int64 `json:"totalMembers"`
	Issued         int64 `json:"issued"`
}

type StaffSummary struct {
	Summary
	Recent []models.IssueRecord `json:"recent"`
}

type IssueForm struct {
	Members []models.Member `json:"members"`
	Books   []models.Book   `json:"books"`
}

// Issue lends a book to a member, dated today.
func (c *Circulation) Issue(ctx context.Context, memberID, bookID uint) (*models.IssueRecord, error) {
	return c.issues.IssueBook(ctx, memberID, bookID, Today(c.now()))
}

// Return closes an open record. Returning a closed record changes nothing and
// reports AlreadyReturned.
func (c *Circulation) Return(ctx context.Context, issueID uint) (*ReturnResult, error) {
	rec, already, err := c.issues.ReturnIssue(ctx, issueID, Today(c.now()))
	if err != nil {
		return nil, err
	}
	return &ReturnResult{Record: rec, AlreadyReturned: already}, nil
}

// ListIssued returns every record, newest issue date first.
func (c *Circulation) ListIssued(ctx context.Context) ([]models.IssueRecord, error) {
	return c.issues.ListIssues(ctx, 0)
}

func (c *Circulation) IssueForm(ctx context.Context) (*IssueForm, error) {
	members, err := c.members.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	books, err := c.books.ListAvailableBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &IssueForm{Members: members, Books: books}, nil
}

func (c *Circulation) DashboardSummary(ctx context.Context) (*Summary, error) {
	var s Summary
	var err error
	if s.TotalBooks, err = c.books.CountBooks(ctx, ""); err != nil {
		return nil, err
	}
	if s.AvailableBooks, err = c.books.CountAvailableBooks(ctx); err != nil {
		return nil, err
	}
	if s.TotalMembers, err = c.members.CountMembers(ctx); err != nil {
		return nil, err
	}
	if s.Issued, err = c.issues.CountOpenIssues(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Circulation) StaffDashboard(ctx context.Context) (*StaffSummary, error) {
	s, err := c.DashboardSummary(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := c.issues.ListIssues(ctx, StaffRecentIssues)
	if err != nil {
		return nil, err
	}
	return &StaffSummary{Summary: *s, Recent: recent}, nil
}

// Today truncates t to its calendar date, expressed as UTC midnight.
func Today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
