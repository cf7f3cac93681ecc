// Package services holds the repositories for posts, comments and votings and
// the stats aggregator. Reads come from the store's published snapshot and
// every mutation is a single store transaction.
package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
	"pqsaaay/internal/store"
)

// now is replaced in tests.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newID() string {
	return uuid.NewString()
}

// base is embedded by every repository.
type base struct {
	store *store.Store
}

func (b base) snapshot() *store.Snapshot {
	return b.store.Snapshot()
}

// Services bundles the repositories sharing one store.
type Services struct {
	Posts    *PostService
	Comments *CommentService
	Votings  *VotingService
	Stats    *StatsService
}

func New(s *store.Store) *Services {
	return &Services{
		Posts:    NewPostService(s),
		Comments: NewCommentService(s),
		Votings:  NewVotingService(s),
		Stats:    NewStatsService(s),
	}
}

// clean trims s. Markup is kept as typed and only sanitized when rendered.
func clean(s string) string {
	return strings.TrimSpace(s)
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// checkLength fails when s is shorter than min or longer than max runes. A
// max of 0 means unbounded.
func checkLength(field, s string, min, max int) error {
	n := length(s)
	if n < min {
		return errs.Validation("%s must be at least %d characters", field, min)
	}
	if max > 0 && n > max {
		return errs.Validation("%s must be at most %d characters", field, max)
	}
	return nil
}

// checkAuthor validates the display name of a non-anonymous author.
func checkAuthor(field, name string, anonymous bool) error {
	if anonymous {
		return nil
	}
	return checkLength(field, name, 2, 50)
}

func displayName(name string, anonymous bool) string {
	if anonymous {
		return models.AnonymousName
	}
	return name
}

// maxEmojiLength leaves room for ZWJ sequences and skin tone modifiers.
const maxEmojiLength = 16

// checkEmoji accepts any non-empty reaction key; utils.ReactionEmojis is only
// what clients offer by default.
func checkEmoji(emoji string) error {
	if emoji == "" {
		return errs.Validation("emoji is required")
	}
	return checkLength("emoji", emoji, 1, maxEmojiLength)
}
