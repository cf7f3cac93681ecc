package models

import (
	"time"
)

type Comment struct {
	ID          string         `json:"id"`
	PostID      string         `json:"postId"`
	ParentID    string         `json:"parentId,omitempty"` // Empty for top-level comments
	Content     string         `json:"content"`
	Author      string         `json:"author"`
	IsAnonymous bool           `json:"isAnonymous"`
	Timestamp   time.Time      `json:"timestamp"`
	Reactions   map[string]int `json:"reactions"`
}

func (c Comment) Clone() Comment {
	c.Reactions = cloneCounts(c.Reactions)
	return c
}
