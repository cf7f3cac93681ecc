package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pqsaaay/internal/middleware"
	"pqsaaay/internal/models"
	"pqsaaay/internal/services"
)

type VotingHandler struct {
	votings *services.VotingService
}

func NewVotingHandler(votings *services.VotingService) *VotingHandler {
	return &VotingHandler{votings: votings}
}

// List GET /api/voting[?id=][&limit=]
func (h *VotingHandler) List(c *gin.Context) {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		voting, err := h.votings.GetVoting(id)
		if err != nil {
			fail(c, "getVoting", err)
			return
		}
		respond(c, http.StatusOK, voting, "")
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		fail(c, "listVotings", err)
		return
	}
	respond(c, http.StatusOK, h.votings.ListVotings(limit), "")
}

// votingRequest covers both creating a voting and answering one; a body
// with votingId and optionId is an answer.
type votingRequest struct {
	// answer
	VotingID  string `json:"votingId"`
	OptionID  string `json:"optionId"`
	VoterID   string `json:"voterId"`
	VoterName string `json:"voterName"`
	Voter     string `json:"voter"` // older clients send the display name here

	// create
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Type            models.VotingType `json:"type"`
	Creator         string            `json:"creator"`
	RequireIdentity bool              `json:"requireIdentity"`
	ExpiresAt       *time.Time        `json:"expiresAt"`

	IsAnonymous bool `json:"isAnonymous"`
}

// Post POST /api/voting
func (h *VotingHandler) Post(c *gin.Context) {
	var req votingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if req.VotingID != "" && req.OptionID != "" {
		h.answer(c, req)
		return
	}

	voting, err := h.votings.CreateVoting(c.Request.Context(), services.VotingInput{
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		Creator:         req.Creator,
		CreatorID:       middleware.Voter(c),
		IsAnonymous:     req.IsAnonymous,
		RequireIdentity: req.RequireIdentity,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		fail(c, "createVoting", err)
		return
	}
	respond(c, http.StatusCreated, voting, "Voting created successfully")
}

func (h *VotingHandler) answer(c *gin.Context, req votingRequest) {
	name := strings.TrimSpace(req.VoterName)
	if name == "" {
		name = strings.TrimSpace(req.Voter)
	}
	if req.IsAnonymous {
		name = ""
	}

	res, err := h.votings.SubmitResponse(c.Request.Context(), services.ResponseInput{
		VotingID:    req.VotingID,
		OptionID:    req.OptionID,
		VoterID:     voterID(c, req.VoterID, name),
		VoterName:   name,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		fail(c, "submitResponse", err)
		return
	}
	respond(c, http.StatusCreated, res, "Vote submitted successfully")
}

// voterID picks the dedup identity: an explicit id from the client, then the
// display name of a named vote, then the session's anonymous token.
func voterID(c *gin.Context, explicit, name string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	if name != "" {
		return middleware.NamedVoterID(name)
	}
	return middleware.Voter(c)
}

// Close POST /api/voting/:id/close
func (h *VotingHandler) Close(c *gin.Context) {
	voting, err := h.votings.CloseVoting(c.Request.Context(), c.Param("id"), middleware.Voter(c))
	if err != nil {
		fail(c, "closeVoting", err)
		return
	}
	respond(c, http.StatusOK, voting, "Voting closed")
}
