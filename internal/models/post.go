package models

import (
	"time"
)

type Category string

const (
	CategoryKritikSaran Category = "kritik-saran"
	CategoryCurhat      Category = "curhat"
	CategoryIdeOpini    Category = "ide-opini"
)

// Categories lists every post category in display order.
var Categories = []Category{CategoryKritikSaran, CategoryCurhat, CategoryIdeOpini}

func (c Category) Valid() bool {
	switch c {
	case CategoryKritikSaran, CategoryCurhat, CategoryIdeOpini:
		return true
	}
	return false
}

// HasVotes reports whether posts of this category carry an up/down tally.
func (c Category) HasVotes() bool { return c == CategoryIdeOpini }

const (
	AnonymousName = "Anonim"
	DefaultTarget = "Ke Pengurus" // 未指定时 kritik-saran 的默认对象
)

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

type VoteTally struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

type Post struct {
	ID            string         `json:"id"`
	Category      Category       `json:"category"`
	Title         string         `json:"title,omitempty"`
	Content       string         `json:"content"`
	Author        string         `json:"author"`
	IsAnonymous   bool           `json:"isAnonymous"`
	Target        string         `json:"target,omitempty"` // kritik-saran only
	Timestamp     time.Time      `json:"timestamp"`
	Reactions     map[string]int `json:"reactions"`
	Votes         *VoteTally     `json:"votes,omitempty"` // ide-opini only, set once at creation
	CommentsCount int            `json:"commentsCount"`
}

// Clone returns a deep copy; the reaction map and tally are not shared.
func (p Post) Clone() Post {
	p.Reactions = cloneCounts(p.Reactions)
	if p.Votes != nil {
		v := *p.Votes
		p.Votes = &v
	}
	return p
}

// Score is the net up/down balance, 0 for posts without a tally.
func (p Post) Score() int {
	if p.Votes == nil {
		return 0
	}
	return p.Votes.Up - p.Votes.Down
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ApplyReaction bumps one reaction counter, never below zero.
func ApplyReaction(reactions map[string]int, emoji string, increment bool) {
	if increment {
		reactions[emoji]++
		return
	}
	if reactions[emoji] > 0 {
		reactions[emoji]--
	}
}
