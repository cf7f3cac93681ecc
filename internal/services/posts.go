package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
	"pqsaaay/internal/store"
	"pqsaaay/internal/utils"
)

type PostSort string

const (
	SortNewest        PostSort = "newest"
	SortOldest        PostSort = "oldest"
	SortMostVoted     PostSort = "most-voted"
	SortMostCommented PostSort = "most-commented"
	SortHot           PostSort = "hot"
)

func (s PostSort) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortMostVoted, SortMostCommented, SortHot:
		return true
	}
	return false
}

const (
	listCacheSize = 256
	listCacheTTL  = time.Minute
)

type PostInput struct {
	Category    models.Category
	Title       string
	Content     string
	Author      string
	IsAnonymous bool
	Target      string
}

type ListOptions struct {
	Category models.Category // empty: all categories
	Sort     PostSort        // empty: newest
	Limit    int             // <= 0: no limit
}

type PostService struct {
	base
	lists *utils.Cache
}

func NewPostService(s *store.Store) *PostService {
	return &PostService{
		base:  base{store: s},
		lists: utils.NewCache(listCacheSize),
	}
}

// CreatePost validates in and appends a new post.
func (s *PostService) CreatePost(ctx context.Context, in PostInput) (models.Post, error) {
	in.Title = clean(in.Title)
	in.Content = clean(in.Content)
	in.Author = clean(in.Author)
	in.Target = clean(in.Target)

	if !in.Category.Valid() {
		return models.Post{}, errs.Validation("unknown category %q", in.Category)
	}
	if err := checkLength("content", in.Content, 10, 1000); err != nil {
		return models.Post{}, err
	}
	if err := checkLength("title", in.Title, 0, 100); err != nil {
		return models.Post{}, err
	}
	if err := checkLength("target", in.Target, 0, 50); err != nil {
		return models.Post{}, err
	}
	if err := checkAuthor("author", in.Author, in.IsAnonymous); err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		ID:          newID(),
		Category:    in.Category,
		Title:       in.Title,
		Content:     in.Content,
		Author:      displayName(in.Author, in.IsAnonymous),
		IsAnonymous: in.IsAnonymous,
		Timestamp:   now(),
		Reactions:   map[string]int{},
	}
	if in.Category == models.CategoryKritikSaran {
		post.Target = in.Target
		if post.Target == "" {
			post.Target = models.DefaultTarget
		}
	}
	if in.Category.HasVotes() {
		post.Votes = &models.VoteTally{}
	}

	created, err := store.Submit(ctx, s.store, "createPost", func(ds *models.Dataset) (models.Post, error) {
		ds.Posts = append(ds.Posts, post)
		return post.Clone(), nil
	})
	if err != nil {
		return models.Post{}, err
	}
	slog.Info("Post created", "id", created.ID, "category", created.Category)
	return created, nil
}

// ListPosts returns posts of the current snapshot in the requested order.
// The returned posts are shared with the snapshot and must not be modified.
func (s *PostService) ListPosts(opts ListOptions) ([]models.Post, error) {
	if opts.Category != "" && !opts.Category.Valid() {
		return nil, errs.Validation("unknown category %q", opts.Category)
	}
	if opts.Sort == "" {
		opts.Sort = SortNewest
	}
	if !opts.Sort.Valid() {
		return nil, errs.Validation("unknown sort %q", opts.Sort)
	}

	snap := s.snapshot()
	key := fmt.Sprintf("posts:%d:%s:%s:%d", snap.Version, opts.Category, opts.Sort, opts.Limit)
	if cached, ok := s.lists.Get(key).([]models.Post); ok {
		return cached, nil
	}

	// 倒序遍历，稳定排序后同时间戳的帖子保持“后插入在前”
	posts := make([]models.Post, 0, len(snap.Data.Posts))
	for i := len(snap.Data.Posts) - 1; i >= 0; i-- {
		p := snap.Data.Posts[i]
		if opts.Category == "" || p.Category == opts.Category {
			posts = append(posts, p)
		}
	}
	sortPosts(posts, opts.Sort, now())

	if opts.Limit > 0 && len(posts) > opts.Limit {
		posts = posts[:opts.Limit]
	}
	s.lists.Set(key, posts, listCacheTTL)
	return posts, nil
}

// sortPosts orders posts, which arrive newest-inserted first, by key.
func sortPosts(posts []models.Post, by PostSort, at time.Time) {
	newest := func(a, b models.Post) int { return b.Timestamp.Compare(a.Timestamp) }

	switch by {
	case SortOldest:
		slices.Reverse(posts)
		slices.SortStableFunc(posts, func(a, b models.Post) int { return a.Timestamp.Compare(b.Timestamp) })
	case SortMostVoted:
		slices.SortStableFunc(posts, func(a, b models.Post) int {
			if d := b.Score() - a.Score(); d != 0 {
				return d
			}
			return newest(a, b)
		})
	case SortMostCommented:
		slices.SortStableFunc(posts, func(a, b models.Post) int {
			if d := b.CommentsCount - a.CommentsCount; d != 0 {
				return d
			}
			return newest(a, b)
		})
	case SortHot:
		scores := make(map[string]float64, len(posts))
		for _, p := range posts {
			scores[p.ID] = hotScore(p, at)
		}
		slices.SortStableFunc(posts, func(a, b models.Post) int {
			sa, sb := scores[a.ID], scores[b.ID]
			switch {
			case sa > sb:
				return -1
			case sa < sb:
				return 1
			}
			return newest(a, b)
		})
	default:
		slices.SortStableFunc(posts, newest)
	}
}

func hotScore(p models.Post, at time.Time) float64 {
	up, down := 0, 0
	if p.Votes != nil {
		up, down = p.Votes.Up, p.Votes.Down
	}
	return utils.CalculateScore(p.Timestamp, at, up, down, sum(p.Reactions), p.CommentsCount)
}

func (s *PostService) GetPost(id string) (models.Post, error) {
	data := s.snapshot().Data
	i := data.PostIndex(id)
	if i < 0 {
		return models.Post{}, errs.NotFoundf("post %s not found", id)
	}
	return data.Posts[i].Clone(), nil
}

// ApplyReaction increments, or decrements down to zero, one reaction counter.
func (s *PostService) ApplyReaction(ctx context.Context, postID, emoji string, increment bool) (models.Post, error) {
	if err := checkEmoji(emoji); err != nil {
		return models.Post{}, err
	}
	return store.Submit(ctx, s.store, "reactPost", func(ds *models.Dataset) (models.Post, error) {
		i := ds.PostIndex(postID)
		if i < 0 {
			return models.Post{}, errs.NotFoundf("post %s not found", postID)
		}
		models.ApplyReaction(ds.Posts[i].Reactions, emoji, increment)
		return ds.Posts[i].Clone(), nil
	})
}

// ApplyVote adds one up or down vote to an ide-opini post.
func (s *PostService) ApplyVote(ctx context.Context, postID string, vote models.VoteType) (models.Post, error) {
	if vote != models.VoteUp && vote != models.VoteDown {
		return models.Post{}, errs.Validation("vote type must be %q or %q", models.VoteUp, models.VoteDown)
	}
	return store.Submit(ctx, s.store, "votePost", func(ds *models.Dataset) (models.Post, error) {
		i := ds.PostIndex(postID)
		if i < 0 {
			return models.Post{}, errs.NotFoundf("post %s not found", postID)
		}
		p := &ds.Posts[i]
		if p.Votes == nil {
			return models.Post{}, errs.InvalidOperationf("post %s does not accept votes", postID)
		}
		if vote == models.VoteUp {
			p.Votes.Up++
		} else {
			p.Votes.Down++
		}
		return p.Clone(), nil
	})
}
