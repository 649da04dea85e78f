package models

import (
	"time"
)

// ToDoItem is a single task owned by exactly one user. Ownership is set at
// creation and never reassigned; only title and description are mutable.
type ToDoItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:200;not null" json:"description"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
}

// TableName overrides the table name
func (ToDoItem) TableName() string {
	return "todo_items"
}
