package entities

import (
	"time"
)

// User is created on first successful Google login and never mutated after.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100" json:"username"`
	GoogleID  string    `gorm:"uniqueIndex;size:64" json:"-"` // Provider subject, hidden from JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Book struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"index" json:"user_id"`
	Title    string    `gorm:"index;size:512" json:"title"`
	Author   string    `gorm:"index;size:256" json:"author"`
	ISBN     string    `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverURL string    `gorm:"size:2048" json:"cover_url,omitempty"`
	Review   string    `gorm:"type:text" json:"review,omitempty"`
	Rating   int       `json:"rating"`
	DateRead time.Time `gorm:"index" json:"date_read"`

	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}
