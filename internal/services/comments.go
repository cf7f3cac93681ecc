package services

import (
	"context"
	"log/slog"
	"slices"

	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
	"pqsaaay/internal/store"
)

type CommentInput struct {
	PostID      string
	ParentID    string // reply target, empty for top-level comments
	Content     string
	Author      string
	IsAnonymous bool
}

type CommentService struct {
	base
}

func NewCommentService(s *store.Store) *CommentService {
	return &CommentService{base: base{store: s}}
}

// CreateComment appends a comment and bumps the post's comment count in the
// same transaction.
func (s *CommentService) CreateComment(ctx context.Context, in CommentInput) (models.Comment, error) {
	in.Content = clean(in.Content)
	in.Author = clean(in.Author)

	if in.PostID == "" {
		return models.Comment{}, errs.Validation("postId is required")
	}
	if err := checkLength("content", in.Content, 5, 1000); err != nil {
		return models.Comment{}, err
	}
	if err := checkAuthor("author", in.Author, in.IsAnonymous); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:          newID(),
		PostID:      in.PostID,
		ParentID:    in.ParentID,
		Content:     in.Content,
		Author:      displayName(in.Author, in.IsAnonymous),
		IsAnonymous: in.IsAnonymous,
		Timestamp:   now(),
		Reactions:   map[string]int{},
	}

	created, err := store.Submit(ctx, s.store, "createComment", func(ds *models.Dataset) (models.Comment, error) {
		pi := ds.PostIndex(comment.PostID)
		if pi < 0 {
			return models.Comment{}, errs.NotFoundf("post %s not found", comment.PostID)
		}
		if comment.ParentID != "" {
			ci := ds.CommentIndex(comment.ParentID)
			if ci < 0 || ds.Comments[ci].PostID != comment.PostID {
				return models.Comment{}, errs.NotFoundf("comment %s not found on post %s", comment.ParentID, comment.PostID)
			}
		}
		ds.Comments = append(ds.Comments, comment)
		ds.Posts[pi].CommentsCount++
		return comment.Clone(), nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	slog.Info("Comment created", "id", created.ID, "post", created.PostID)
	return created, nil
}

// ListCommentsByPost returns the comments of a post oldest first. An unknown
// post has no comments.
func (s *CommentService) ListCommentsByPost(postID string) []models.Comment {
	data := s.snapshot().Data
	out := make([]models.Comment, 0)
	for _, c := range data.Comments {
		if c.PostID == postID {
			out = append(out, c.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b models.Comment) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

func (s *CommentService) ApplyReaction(ctx context.Context, commentID, emoji string, increment bool) (models.Comment, error) {
	if err := checkEmoji(emoji); err != nil {
		return models.Comment{}, err
	}
	return store.Submit(ctx, s.store, "reactComment", func(ds *models.Dataset) (models.Comment, error) {
		i := ds.CommentIndex(commentID)
		if i < 0 {
			return models.Comment{}, errs.NotFoundf("comment %s not found", commentID)
		}
		models.ApplyReaction(ds.Comments[i].Reactions, emoji, increment)
		return ds.Comments[i].Clone(), nil
	})
}
