package models

import (
	"fmt"
)

// Dataset is the root aggregate and the unit of atomic persistence.
type Dataset struct {
	Posts    []Post    `json:"posts"`
	Comments []Comment `json:"comments"`
	Votings  []Voting  `json:"votings"`
}

func NewDataset() *Dataset {
	return &Dataset{
		Posts:    []Post{},
		Comments: []Comment{},
		Votings:  []Voting{},
	}
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// Clone returns a deep copy that shares no mutable state with d.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Posts:    make([]Post, len(d.Posts)),
		Comments: make([]Comment, len(d.Comments)),
		Votings:  make([]Voting, len(d.Votings)),
	}
	for i, p := range d.Posts {
		out.Posts[i] = p.Clone()
	}
	for i, c := range d.Comments {
		out.Comments[i] = c.Clone()
	}
	for i, v := range d.Votings {
		out.Votings[i] = v.Clone()
	}
	return out
}

// Normalize replaces nil sequences and maps with empty ones so artifacts
// written by older versions decode into the same shape as fresh data.
func (d *Dataset) Normalize() {
	if d.Posts == nil {
		d.Posts = []Post{}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	if d.Votings == nil {
		d.Votings = []Voting{}
	}
	for i := range d.Posts {
		if d.Posts[i].Reactions == nil {
			d.Posts[i].Reactions = map[string]int{}
		}
	}
	for i := range d.Comments {
		if d.Comments[i].Reactions == nil {
			d.Comments[i].Reactions = map[string]int{}
		}
	}
	for i := range d.Votings {
		if d.Votings[i].Options == nil {
			d.Votings[i].Options = []VotingOption{}
		}
		if d.Votings[i].Responses == nil {
			d.Votings[i].Responses = []VotingResponse{}
		}
	}
}

func (d *Dataset) PostIndex(id string) int {
	for i := range d.Posts {
		if d.Posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dataset) CommentIndex(id string) int {
	for i := range d.Comments {
		if d.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dataset) VotingIndex(id string) int {
	for i := range d.Votings {
		if d.Votings[i].ID == id {
			return i
		}
	}
	return -1
}

// Check verifies referential and counter integrity. A dataset that fails it
// must not be served.
func (d *Dataset) Check() error {
	posts := make(map[string]int, len(d.Posts))
	for i, p := range d.Posts {
		if p.ID == "" {
			return fmt.Errorf("post #%d has no id", i)
		}
		if _, dup := posts[p.ID]; dup {
			return fmt.Errorf("duplicate post id %q", p.ID)
		}
		if !p.Category.Valid() {
			return fmt.Errorf("post %q has unknown category %q", p.ID, p.Category)
		}
		if (p.Votes != nil) != p.Category.HasVotes() {
			return fmt.Errorf("post %q vote tally does not match category %q", p.ID, p.Category)
		}
		if err := checkCounts(p.Reactions); err != nil {
			return fmt.Errorf("post %q: %w", p.ID, err)
		}
		posts[p.ID] = 0
	}

	comments := make(map[string]string, len(d.Comments))
	for i, c := range d.Comments {
		if c.ID == "" {
			return fmt.Errorf("comment #%d has no id", i)
		}
		if _, dup := comments[c.ID]; dup {
			return fmt.Errorf("duplicate comment id %q", c.ID)
		}
		if _, ok := posts[c.PostID]; !ok {
			return fmt.Errorf("comment %q references unknown post %q", c.ID, c.PostID)
		}
		if err := checkCounts(c.Reactions); err != nil {
			return fmt.Errorf("comment %q: %w", c.ID, err)
		}
		posts[c.PostID]++
		comments[c.ID] = c.PostID
	}
	for _, c := range d.Comments {
		if c.ParentID == "" {
			continue
		}
		if owner, ok := comments[c.ParentID]; !ok || owner != c.PostID {
			return fmt.Errorf("comment %q has invalid parent %q", c.ID, c.ParentID)
		}
	}
	for _, p := range d.Posts {
		if p.CommentsCount != posts[p.ID] {
			return fmt.Errorf("post %q commentsCount %d, found %d comments", p.ID, p.CommentsCount, posts[p.ID])
		}
	}

	votings := make(map[string]struct{}, len(d.Votings))
	for i, v := range d.Votings {
		if v.ID == "" {
			return fmt.Errorf("voting #%d has no id", i)
		}
		if _, dup := votings[v.ID]; dup {
			return fmt.Errorf("duplicate voting id %q", v.ID)
		}
		votings[v.ID] = struct{}{}
		if err := checkVoting(v); err != nil {
			return fmt.Errorf("voting %q: %w", v.ID, err)
		}
	}
	return nil
}

func checkVoting(v Voting) error {
	options := make(map[string]int, len(v.Options))
	for _, o := range v.Options {
		if o.Votes < 0 {
			return fmt.Errorf("option %q has negative votes", o.ID)
		}
		options[o.ID] = 0
	}
	voters := make(map[string]struct{}, len(v.Responses))
	for _, r := range v.Responses {
		if _, dup := voters[r.VoterID]; dup {
			return fmt.Errorf("voter %q responded twice", r.VoterID)
		}
		voters[r.VoterID] = struct{}{}
		if _, ok := options[r.OptionID]; !ok {
			return fmt.Errorf("response %q chose unknown option %q", r.ID, r.OptionID)
		}
		options[r.OptionID]++
	}
	for _, o := range v.Options {
		if o.Votes != options[o.ID] {
			return fmt.Errorf("option %q has %d votes, found %d responses", o.ID, o.Votes, options[o.ID])
		}
	}
	return nil
}

func checkCounts(m map[string]int) error {
	for k, v := range m {
		if v < 0 {
			return fmt.Errorf("reaction %q is negative", k)
		}
	}
	return nil
}
