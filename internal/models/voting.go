package models

import (
	"time"
)

type VotingType string

const (
	VotingBinary VotingType = "binary"
	VotingLikert VotingType = "likert"
)

func (t VotingType) Valid() bool {
	return t == VotingBinary || t == VotingLikert
}

type VotingOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value int    `json:"value"`
	Votes int    `json:"votes"`
}

type VotingResponse struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"voterId"`
	VoterName   string    `json:"voterName,omitempty"`
	IsAnonymous bool      `json:"isAnonymous"`
	OptionID    string    `json:"optionId"`
	Timestamp   time.Time `json:"timestamp"`
}

type Voting struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Type            VotingType       `json:"type"`
	Creator         string           `json:"creator"`
	CreatorID       string           `json:"creatorId,omitempty"`
	IsAnonymous     bool             `json:"isAnonymous"`
	RequireIdentity bool             `json:"requireIdentity"`
	Options         []VotingOption   `json:"options"`
	Responses       []VotingResponse `json:"responses"`
	CreatedAt       time.Time        `json:"createdAt"`
	ExpiresAt       *time.Time       `json:"expiresAt,omitempty"`
	IsActive        bool             `json:"isActive"`
}

var (
	binaryOptions = []VotingOption{
		{ID: "agree", Text: "Setuju", Value: 1},
		{ID: "disagree", Text: "Tidak Setuju", Value: 0},
	}
	likertOptions = []VotingOption{
		{ID: "1", Text: "Sangat Tidak Setuju", Value: 1},
		{ID: "2", Text: "Tidak Setuju", Value: 2},
		{ID: "3", Text: "Netral", Value: 3},
		{ID: "4", Text: "Setuju", Value: 4},
		{ID: "5", Text: "Sangat Setuju", Value: 5},
	}
)

// OptionsFor returns a fresh copy of the option template for t, all counts zero.
func OptionsFor(t VotingType) []VotingOption {
	var tmpl []VotingOption
	switch t {
	case VotingBinary:
		tmpl = binaryOptions
	case VotingLikert:
		tmpl = likertOptions
	default:
		return nil
	}
	return cloneSlice(tmpl)
}

func (v Voting) Clone() Voting {
	v.Options = cloneSlice(v.Options)
	v.Responses = cloneSlice(v.Responses)
	if v.ExpiresAt != nil {
		t := *v.ExpiresAt
		v.ExpiresAt = &t
	}
	return v
}

// Expired reports whether the voting stopped accepting responses at now.
func (v Voting) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && !now.Before(*v.ExpiresAt)
}

func (v *Voting) Option(id string) *VotingOption {
	for i := range v.Options {
		if v.Options[i].ID == id {
			return &v.Options[i]
		}
	}
	return nil
}

// TotalVotes sums the option counters.
func (v Voting) TotalVotes() int {
	total := 0
	for _, o := range v.Options {
		total += o.Votes
	}
	return total
}
