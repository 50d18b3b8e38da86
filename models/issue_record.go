package models

import "time"

// IssueRecord is one loan of a book to a member. A nil ReturnDate means the
// book is still out.
type IssueRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"not null;index" json:"bookId"`
	Book       Book       `gorm:"constraint:OnDelete:CASCADE;" json:"book"`
	MemberID   uint       `gorm:"not null;index" json:"memberId"`
	Member     Member     `gorm:"constraint:OnDelete:CASCADE;" json:"member"`
	IssueDate  time.Time  `gorm:"type:date;not null;index" json:"issueDate"`
	ReturnDate *time.Time `gorm:"type:date" json:"returnDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (IssueRecord) TableName() string { return IssueRecordTable }

func (r IssueRecord) IsOpen() bool { return r.ReturnDate == nil }
