package services

import (
	"time"

	"pqsaaay/internal/models"
	"pqsaaay/internal/store"
)

const recentWindow = 24 * time.Hour

type Stats struct {
	TotalPosts      int                     `json:"totalPosts"`
	TotalComments   int                     `json:"totalComments"`
	TotalVotings    int                     `json:"totalVotings"`
	PostsByCategory map[models.Category]int `json:"postsByCategory"`
	TotalReactions  int                     `json:"totalReactions"`
	TotalResponses  int                     `json:"totalResponses"`
	RecentActivity  int                     `json:"recentActivity"` // posts in the last 24h
	Version         uint64                  `json:"version"`
}

type StatsService struct {
	base
}

func NewStatsService(s *store.Store) *StatsService {
	return &StatsService{base: base{store: s}}
}

// ComputeStats folds the current snapshot into counters.
func (s *StatsService) ComputeStats() Stats {
	snap := s.snapshot()
	data := snap.Data
	since := now().Add(-recentWindow)

	st := Stats{
		TotalPosts:      len(data.Posts),
		TotalComments:   len(data.Comments),
		TotalVotings:    len(data.Votings),
		PostsByCategory: make(map[models.Category]int, len(models.Categories)),
		Version:         snap.Version,
	}
	for _, c := range models.Categories {
		st.PostsByCategory[c] = 0
	}

	for _, p := range data.Posts {
		st.PostsByCategory[p.Category]++
		st.TotalReactions += sum(p.Reactions)
		if p.Timestamp.After(since) {
			st.RecentActivity++
		}
	}
	for _, c := range data.Comments {
		st.TotalReactions += sum(c.Reactions)
	}
	for _, v := range data.Votings {
		st.TotalResponses += len(v.Responses)
	}
	return st
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
