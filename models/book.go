// models/book.go
package models

import "time"

const BookTable = "library_books"
const MemberTable = "library_members"
const IssueRecordTable = "library_issue_records"

type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null;index" json:"title"`
	Author    string    `gorm:"size:50;not null" json:"author"`
	ISBN      *string   `gorm:"column:isbn;size:20;uniqueIndex" json:"isbn,omitempty"` // NULL when not catalogued
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Available bool      `gorm:"not null;default:true" json:"available"` // cached: false iff an open issue record exists
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return BookTable }

// ISBNValue returns the ISBN or "" when the book has none.
func (b Book) ISBNValue() string {
	if b.ISBN == nil {
		return ""
	}
	return *b.ISBN
}
