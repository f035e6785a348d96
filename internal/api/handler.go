package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/service/contest"
	"github.com/aimd54/design-contest/internal/service/leaderboard"
	"github.com/aimd54/design-contest/internal/service/orchestrator"
	"github.com/aimd54/design-contest/pkg/logger"
)

// ContestService interface for the request-time contest operations.
type ContestService interface {
	GetConfig(ctx context.Context) (*models.Config, error)
	Phase(ctx context.Context) (orchestrator.Phase, error)
	PutConfig(ctx context.Context, user *models.User, timings *contest.Timings) (*models.Config, error)

	Submit(ctx context.Context, user *models.User, params *contest.SubmissionParams) (*models.Submission, error)
	GetMine(ctx context.Context, user *models.User) (*models.Submission, error)
	GetSubmission(ctx context.Context, user *models.User, id uint) (*models.Submission, error)
	UpdateSubmission(ctx context.Context, user *models.User, id uint, params *contest.SubmissionParams) (*models.Submission, error)

	MyAssignments(ctx context.Context, user *models.User) ([]models.VoteAssignment, error)

	CreateVote(ctx context.Context, user *models.User, params *contest.VoteParams) (*models.Vote, error)
	UpdateVote(ctx context.Context, user *models.User, id uint, params *contest.VoteScores) (*models.Vote, error)
	MyVotes(ctx context.Context, user *models.User) ([]models.Vote, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context) ([]leaderboard.Entry, error)
}

// Handler handles contest API requests.
type Handler struct {
	contest     ContestService
	leaderboard LeaderboardService
	log         *logger.Logger
}

// NewHandler creates a new contest handler.
func NewHandler(contestService ContestService, leaderboardService LeaderboardService, log *logger.Logger) *Handler {
	return &Handler{
		contest:     contestService,
		leaderboard: leaderboardService,
		log:         log,
	}
}

// GetConfig returns the competition configuration.
// GET /api/config.
func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.contest.GetConfig(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetPhase returns the competition phase derived from the configuration and the clock.
// GET /api/config/phase.
func (h *Handler) GetPhase(c *gin.Context) {
	phase, err := h.contest.Phase(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "Failed to compute phase")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"phase":        phase,
		"generated_at": time.Now().UTC(),
	})
}

// PutConfig replaces the four window bounds. Admin only.
// PUT /api/config.
func (h *Handler) PutConfig(c *gin.Context) {
	var timings contest.Timings
	if err := c.ShouldBindJSON(&timings); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(c)
	cfg, err := h.contest.PutConfig(c.Request.Context(), user, &timings)
	if err != nil {
		h.serviceError(c, err, "Failed to update config")
		return
	}

	h.log.Info().Uint("user_id", user.ID).Msg("Config updated via API")
	c.JSON(http.StatusOK, cfg)
}

// CreateSubmission creates the caller's submission.
// POST /api/submissions.
func (h *Handler) CreateSubmission(c *gin.Context) {
	var params contest.SubmissionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.contest.Submit(c.Request.Context(), currentUser(c), &params)
	if err != nil {
		h.serviceError(c, err, "Failed to create submission")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GetMySubmission returns the caller's submission.
// GET /api/submissions/mine.
func (h *Handler) GetMySubmission(c *gin.Context) {
	sub, err := h.contest.GetMine(c.Request.Context(), currentUser(c))
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve submission")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GetSubmission returns a submission to its owner, an admin or an assigned reviewer.
// GET /api/submissions/:id.
func (h *Handler) GetSubmission(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.contest.GetSubmission(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve submission")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// UpdateSubmission replaces a submission's fields.
// PUT|PATCH /api/submissions/:id.
func (h *Handler) UpdateSubmission(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var params contest.SubmissionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.contest.UpdateSubmission(c.Request.Context(), currentUser(c), id, &params)
	if err != nil {
		h.serviceError(c, err, "Failed to update submission")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GetMyAssignments lists the submissions the caller has to review.
// GET /api/vote_assignments/mine.
func (h *Handler) GetMyAssignments(c *gin.Context) {
	assignments, err := h.contest.MyAssignments(c.Request.Context(), currentUser(c))
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve vote assignments")
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// CreateVote records the caller's vote on a submission.
// POST /api/votes.
func (h *Handler) CreateVote(c *gin.Context) {
	var params contest.VoteParams
	if err := c.ShouldBindJSON(&params); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	vote, err := h.contest.CreateVote(c.Request.Context(), currentUser(c), &params)
	if err != nil {
		h.serviceError(c, err, "Failed to create vote")
		return
	}
	c.JSON(http.StatusOK, vote)
}

// UpdateVote changes the scores of the caller's own vote.
// PUT /api/votes/:id.
func (h *Handler) UpdateVote(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var params contest.VoteScores
	if err := c.ShouldBindJSON(&params); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	vote, err := h.contest.UpdateVote(c.Request.Context(), currentUser(c), id, &params)
	if err != nil {
		h.serviceError(c, err, "Failed to update vote")
		return
	}
	c.JSON(http.StatusOK, vote)
}

// GetMyVotes lists the caller's votes.
// GET /api/votes/mine.
func (h *Handler) GetMyVotes(c *gin.Context) {
	votes, err := h.contest.MyVotes(c.Request.Context(), currentUser(c))
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve votes")
		return
	}
	c.JSON(http.StatusOK, votes)
}

// GetScores returns the ranked leaderboard once it is published.
// GET /api/scores.
func (h *Handler) GetScores(c *gin.Context) {
	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context())
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve leaderboard")
		return
	}

	h.log.Debug().Int("entries", len(entries)).Msg("Retrieved leaderboard")
	c.JSON(http.StatusOK, entries)
}

// parseID extracts and validates the :id URL parameter.
func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	return uint(id), nil
}
