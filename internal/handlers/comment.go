package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pqsaaay/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List GET /api/comments?postId=
func (h *CommentHandler) List(c *gin.Context) {
	postID := strings.TrimSpace(c.Query("postId"))
	if postID == "" {
		badRequest(c, "postId is required")
		return
	}
	respond(c, http.StatusOK, h.comments.ListCommentsByPost(postID), "")
}

type createCommentRequest struct {
	PostID      string `json:"postId"`
	ParentID    string `json:"parentId"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// Create POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), services.CommentInput{
		PostID:      strings.TrimSpace(req.PostID),
		ParentID:    strings.TrimSpace(req.ParentID),
		Content:     req.Content,
		Author:      req.Author,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		fail(c, "createComment", err)
		return
	}
	respond(c, http.StatusCreated, comment, "Comment created successfully")
}

type updateCommentRequest struct {
	CommentID string `json:"commentId"`
	Emoji     string `json:"emoji"`
	Increment *bool  `json:"increment"`
}

// React PATCH /api/comments
func (h *CommentHandler) React(c *gin.Context) {
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.CommentID == "" || req.Emoji == "" {
		badRequest(c, "commentId and emoji are required")
		return
	}

	comment, err := h.comments.ApplyReaction(c.Request.Context(), req.CommentID, req.Emoji, increment(req.Increment))
	if err != nil {
		fail(c, "reactComment", err)
		return
	}
	respond(c, http.StatusOK, comment, "Comment updated successfully")
}
