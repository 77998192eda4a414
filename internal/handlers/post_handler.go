package handlers

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hat-forum/backend/internal/middleware"
	"github.com/hat-forum/backend/internal/models"
	"github.com/hat-forum/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository // Post deletion cascades to comments
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
	}
}

// RegisterPostRoutes registers post-related routes. Reads are public;
// every mutating route sits behind the session middleware.
func (h *PostHandler) RegisterPostRoutes(public, protected *echo.Group) {
	public.GET("/posts", h.GetPosts)
	public.GET("/posts/:id", h.GetPost)
	protected.POST("/posts", h.CreatePost)
	protected.PUT("/posts/:id", h.UpdatePost)
	protected.DELETE("/posts/:id", h.DeletePost)
	protected.POST("/posts/:id/upvote", h.UpvotePost)
}

// GetPosts lists posts with optional filters and ordering. No ownership
// gating and no pagination: the full matching set is returned.
func (h *PostHandler) GetPosts(c echo.Context) error {
	query := models.FeedQuery{
		Sort:   c.QueryParam("sort"),
		Order:  c.QueryParam("order"),
		Search: c.QueryParam("search"),
		Flag:   c.QueryParam("flag"),
	}

	posts, err := h.postRepository.ListPosts(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post owned by the session identity
func (h *PostHandler) CreatePost(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		Title:            req.Title,
		Content:          req.Content,
		ImageURL:         req.ImageURL,
		ExternalLink:     req.ExternalLink,
		Flag:             models.PostFlag(req.Flag),
		ReferencedPostID: req.ReferencedPostID,
		Upvotes:          0,
		UserID:           sess.Email,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post. Ownership is re-derived from the
// store on every call: the stored user_id is compared against the session
// email, never against anything the client sent.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existingPost, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if existingPost.UserID != sess.Email {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	existingPost.Title = req.Title
	existingPost.Content = req.Content
	existingPost.ImageURL = req.ImageURL
	existingPost.ExternalLink = req.ExternalLink
	existingPost.Flag = models.PostFlag(req.Flag)

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, existingPost); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, existingPost)
}

// DeletePost deletes a post and its comments. The comment delete and the
// post delete are two separate store calls with no surrounding
// transaction; a failure between them leaves a partial state.
func (h *PostHandler) DeletePost(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	postID := c.Param("id")

	existingPost, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if existingPost.UserID != sess.Email {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.commentRepository.DeleteCommentsByPostID(c.Request().Context(), postID); err != nil {
		log.Printf("Failed to delete comments for post %s: %v", postID, err)
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpvotePost increments a post's upvote count by exactly 1. The increment
// happens atomically at the store; repeat upvotes from the same identity
// are allowed.
func (h *PostHandler) UpvotePost(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	postID := c.Param("id")

	post, err := h.postRepository.UpvotePost(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}
