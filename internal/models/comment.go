package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index"` // ID of the post the comment belongs to (MongoDB ObjectID as string)
	Content   string    `json:"content"`
	UserID    string    `json:"user_id" gorm:"index"` // email of the user who made the comment
	UserName  string    `json:"user_name"`
	UserImage string    `json:"user_image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}
