package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostFlag categorizes a post on the feed.
type PostFlag string

const (
	FlagQuestion    PostFlag = "Question"
	FlagOpinion     PostFlag = "Opinion"
	FlagInformation PostFlag = "Information"
	FlagOther       PostFlag = "Other"
)

// Post represents a forum post stored in MongoDB
type Post struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title            string             `json:"title" bson:"title"`
	Content          string             `json:"content,omitempty" bson:"content,omitempty"`
	ImageURL         string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	ExternalLink     string             `json:"external_link,omitempty" bson:"external_link,omitempty"`
	Flag             PostFlag           `json:"flag,omitempty" bson:"flag,omitempty"`
	ReferencedPostID string             `json:"referenced_post_id,omitempty" bson:"referenced_post_id,omitempty"`
	Upvotes          int                `json:"upvotes" bson:"upvotes"`
	UserID           string             `json:"user_id" bson:"user_id"` // email of the user who created the post
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post.
// Only the title is required. The referenced post id is stored as-is,
// without an existence check.
type CreatePostRequest struct {
	Title            string `json:"title" validate:"required,min=1"`
	Content          string `json:"content,omitempty"`
	ImageURL         string `json:"image_url,omitempty" validate:"omitempty,url"`
	ExternalLink     string `json:"external_link,omitempty" validate:"omitempty,url"`
	Flag             string `json:"flag,omitempty" validate:"omitempty,oneof=Question Opinion Information Other"`
	ReferencedPostID string `json:"referenced_post_id,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// The title stays required at every update; the remaining fields replace
// whatever the post currently holds.
type UpdatePostRequest struct {
	Title        string `json:"title" validate:"required,min=1"`
	Content      string `json:"content,omitempty"`
	ImageURL     string `json:"image_url,omitempty" validate:"omitempty,url"`
	ExternalLink string `json:"external_link,omitempty" validate:"omitempty,url"`
	Flag         string `json:"flag,omitempty" validate:"omitempty,oneof=Question Opinion Information Other"`
}

// FeedQuery carries the feed listing filters parsed from query params.
type FeedQuery struct {
	Sort   string // created_at | upvotes | title
	Order  string // asc | desc
	Search string // case-insensitive substring match against title
	Flag   string // exact match, empty = no filter
}
