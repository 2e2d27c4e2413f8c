package model

import "time"

// Comment is a free-form site comment.  Mapped with gorm.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID    string    `gorm:"type:char(36);not null" json:"user_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }

// FAQ is a question/answer pair attached to a product by its owner.
type FAQ struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	UserID    string    `gorm:"type:char(36);not null" json:"user_id"`
	ProductID string    `gorm:"type:char(36);not null" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FAQ) TableName() string { return "faqs" }
