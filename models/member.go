package models

import "time"

type Member struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null;index" json:"name"`
	Email     *string   `gorm:"size:254;uniqueIndex" json:"email,omitempty"`
	Phone     string    `gorm:"size:15" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Member) TableName() string { return MemberTable }

func (m Member) EmailValue() string {
	if m.Email == nil {
		return ""
	}
	return *m.Email
}
