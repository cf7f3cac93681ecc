package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pqsaaay/internal/models"
	"pqsaaay/internal/services"
	"pqsaaay/internal/utils"
)

// PostView is a post with its rendered content.
type PostView struct {
	models.Post
	ContentHTML string `json:"contentHtml"`
}

type PostHandler struct {
	posts    *services.PostService
	renderer *utils.Renderer
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{
		posts:    posts,
		renderer: utils.NewRenderer(1024, time.Hour),
	}
}

func (h *PostHandler) view(p models.Post) PostView {
	return PostView{Post: p, ContentHTML: h.renderer.Render(p.ID, p.Content)}
}

// List GET /api/posts?category=&sort=&limit=
func (h *PostHandler) List(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		fail(c, "listPosts", err)
		return
	}
	posts, err := h.posts.ListPosts(services.ListOptions{
		Category: models.Category(c.Query("category")),
		Sort:     services.PostSort(c.Query("sort")),
		Limit:    limit,
	})
	if err != nil {
		fail(c, "listPosts", err)
		return
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = h.view(p)
	}
	respond(c, http.StatusOK, views, "")
}

// Detail GET /api/posts/:id
func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.posts.GetPost(c.Param("id"))
	if err != nil {
		fail(c, "getPost", err)
		return
	}
	respond(c, http.StatusOK, h.view(post), "")
}

type createPostRequest struct {
	Category    models.Category `json:"category"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Author      string          `json:"author"`
	IsAnonymous bool            `json:"isAnonymous"`
	Target      string          `json:"target"`
}

// Create POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), services.PostInput{
		Category:    req.Category,
		Title:       req.Title,
		Content:     req.Content,
		Author:      req.Author,
		IsAnonymous: req.IsAnonymous,
		Target:      req.Target,
	})
	if err != nil {
		fail(c, "createPost", err)
		return
	}
	respond(c, http.StatusCreated, h.view(post), "Post created successfully")
}

type updatePostRequest struct {
	PostID    string          `json:"postId"`
	Action    string          `json:"action"` // reaction or vote
	Emoji     string          `json:"emoji"`
	Increment *bool           `json:"increment"`
	VoteType  models.VoteType `json:"voteType"`
}

// Update PATCH /api/posts
func (h *PostHandler) Update(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	req.PostID = strings.TrimSpace(req.PostID)
	if req.PostID == "" || req.Action == "" {
		badRequest(c, "postId and action are required")
		return
	}

	var (
		post models.Post
		err  error
	)
	switch req.Action {
	case "reaction":
		post, err = h.posts.ApplyReaction(c.Request.Context(), req.PostID, req.Emoji, increment(req.Increment))
	case "vote":
		post, err = h.posts.ApplyVote(c.Request.Context(), req.PostID, req.VoteType)
	default:
		badRequest(c, "Invalid action")
		return
	}
	if err != nil {
		fail(c, "updatePost", err)
		return
	}
	respond(c, http.StatusOK, h.view(post), "Post updated successfully")
}

// increment defaults to true when the field is absent.
func increment(v *bool) bool {
	return v == nil || *v
}
