package services

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"pqsaaay/internal/errs"
	"pqsaaay/internal/models"
	"pqsaaay/internal/store"
)

type VotingInput struct {
	Title           string
	Description     string
	Type            models.VotingType
	Creator         string
	CreatorID       string // identity allowed to close the voting
	IsAnonymous     bool
	RequireIdentity bool
	ExpiresAt       *time.Time
}

type ResponseInput struct {
	VotingID    string
	OptionID    string
	VoterID     string // stable identity used for dedup
	VoterName   string
	IsAnonymous bool
}

// SubmitResult is the committed voting together with the caller's response.
type SubmitResult struct {
	Voting   models.Voting         `json:"voting"`
	Response models.VotingResponse `json:"response"`
	Replaced bool                  `json:"replaced"` // an earlier response was re-pointed
}

type VotingService struct {
	base
}

func NewVotingService(s *store.Store) *VotingService {
	return &VotingService{base: base{store: s}}
}

func (s *VotingService) CreateVoting(ctx context.Context, in VotingInput) (models.Voting, error) {
	in.Title = clean(in.Title)
	in.Description = clean(in.Description)
	in.Creator = clean(in.Creator)

	if err := checkLength("title", in.Title, 5, 100); err != nil {
		return models.Voting{}, err
	}
	if !in.Type.Valid() {
		return models.Voting{}, errs.Validation("unknown voting type %q", in.Type)
	}
	if err := checkLength("description", in.Description, 0, 1000); err != nil {
		return models.Voting{}, err
	}
	if err := checkAuthor("creator", in.Creator, in.IsAnonymous); err != nil {
		return models.Voting{}, err
	}

	createdAt := now()
	voting := models.Voting{
		ID:              newID(),
		Title:           in.Title,
		Description:     in.Description,
		Type:            in.Type,
		Creator:         displayName(in.Creator, in.IsAnonymous),
		CreatorID:       in.CreatorID,
		IsAnonymous:     in.IsAnonymous,
		RequireIdentity: in.RequireIdentity,
		Options:         models.OptionsFor(in.Type),
		Responses:       []models.VotingResponse{},
		CreatedAt:       createdAt,
		IsActive:        true,
	}
	if in.ExpiresAt != nil {
		exp := in.ExpiresAt.UTC().Truncate(time.Millisecond)
		if !exp.After(createdAt) {
			return models.Voting{}, errs.Validation("expiresAt must be in the future")
		}
		voting.ExpiresAt = &exp
	}

	created, err := store.Submit(ctx, s.store, "createVoting", func(ds *models.Dataset) (models.Voting, error) {
		ds.Votings = append(ds.Votings, voting)
		return voting.Clone(), nil
	})
	if err != nil {
		return models.Voting{}, err
	}
	slog.Info("Voting created", "id", created.ID, "type", created.Type)
	return created, nil
}

// ListVotings returns votings newest first, at most limit of them when
// limit > 0.
func (s *VotingService) ListVotings(limit int) []models.Voting {
	data := s.snapshot().Data
	out := make([]models.Voting, 0, len(data.Votings))
	for i := len(data.Votings) - 1; i >= 0; i-- {
		out = append(out, data.Votings[i].Clone())
	}
	slices.SortStableFunc(out, func(a, b models.Voting) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *VotingService) GetVoting(id string) (models.Voting, error) {
	data := s.snapshot().Data
	i := data.VotingIndex(id)
	if i < 0 {
		return models.Voting{}, errs.NotFoundf("voting %s not found", id)
	}
	return data.Votings[i].Clone(), nil
}

// SubmitResponse records one vote. A voter who already answered has the
// earlier response moved to the new option, so the option totals always equal
// the number of distinct voters.
func (s *VotingService) SubmitResponse(ctx context.Context, in ResponseInput) (SubmitResult, error) {
	in.VoterName = clean(in.VoterName)
	if in.VoterID == "" {
		return SubmitResult{}, errs.Validation("voter identity is required")
	}
	if err := checkLength("voterName", in.VoterName, 0, 50); err != nil {
		return SubmitResult{}, err
	}

	return store.Submit(ctx, s.store, "submitResponse", func(ds *models.Dataset) (SubmitResult, error) {
		vi := ds.VotingIndex(in.VotingID)
		if vi < 0 {
			return SubmitResult{}, errs.NotFoundf("voting %s not found", in.VotingID)
		}
		v := &ds.Votings[vi]
		at := now()

		if !v.IsActive {
			return SubmitResult{}, errs.InvalidOperationf("voting %s is closed", v.ID)
		}
		if v.Expired(at) {
			return SubmitResult{}, errs.InvalidOperationf("voting %s has expired", v.ID)
		}
		chosen := v.Option(in.OptionID)
		if chosen == nil {
			return SubmitResult{}, errs.NotFoundf("option %s not found in voting %s", in.OptionID, v.ID)
		}
		if v.RequireIdentity && (in.IsAnonymous || length(in.VoterName) < 2) {
			return SubmitResult{}, errs.Validation("this voting requires a name of at least 2 characters")
		}

		res := SubmitResult{}
		ri := slices.IndexFunc(v.Responses, func(r models.VotingResponse) bool {
			return r.VoterID == in.VoterID
		})
		if ri >= 0 {
			// 重复投票：旧选项 -1，新选项 +1，总数不变
			prev := &v.Responses[ri]
			if old := v.Option(prev.OptionID); old != nil && old.Votes > 0 {
				old.Votes--
			}
			chosen.Votes++
			prev.OptionID = chosen.ID
			prev.VoterName = in.VoterName
			prev.IsAnonymous = in.IsAnonymous
			prev.Timestamp = at
			res.Response = *prev
			res.Replaced = true
		} else {
			chosen.Votes++
			res.Response = models.VotingResponse{
				ID:          newID(),
				VoterID:     in.VoterID,
				VoterName:   in.VoterName,
				IsAnonymous: in.IsAnonymous,
				OptionID:    chosen.ID,
				Timestamp:   at,
			}
			v.Responses = append(v.Responses, res.Response)
		}
		res.Voting = v.Clone()
		return res, nil
	})
}

// CloseVoting stops a voting from accepting responses. Only the identity that
// created the voting may close it; votings without a recorded creator stay open.
func (s *VotingService) CloseVoting(ctx context.Context, id, requesterID string) (models.Voting, error) {
	closed, err := store.Submit(ctx, s.store, "closeVoting", func(ds *models.Dataset) (models.Voting, error) {
		i := ds.VotingIndex(id)
		if i < 0 {
			return models.Voting{}, errs.NotFoundf("voting %s not found", id)
		}
		v := &ds.Votings[i]
		if v.CreatorID == "" || requesterID == "" || v.CreatorID != requesterID {
			return models.Voting{}, errs.Forbiddenf("only the creator can close voting %s", id)
		}
		v.IsActive = false
		return v.Clone(), nil
	})
	if err != nil {
		return models.Voting{}, err
	}
	slog.Info("Voting closed", "id", closed.ID, "responses", len(closed.Responses))
	return closed, nil
}
