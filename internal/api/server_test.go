//nolint:noctx // Test file uses httptest.NewRequest for simplicity
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/design-contest/internal/auth"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/internal/service/contest"
	"github.com/aimd54/design-contest/internal/service/leaderboard"
	"github.com/aimd54/design-contest/pkg/logger"
	"github.com/aimd54/design-contest/test/mocks"
	"github.com/aimd54/design-contest/test/testdb"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	t       *testing.T
	db      *repository.DB
	server  *Server
	contest *contest.Service
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.New(t)
	log := logger.NewNop()
	contestSvc := contest.NewService(db, log)

	server := NewServer(&Options{
		Address:     ":0",
		JWTSecret:   testSecret,
		MetricsPath: "/metrics",
		Users:       repository.NewUserRepository(db),
		Contest:     contestSvc,
		Leaderboard: leaderboard.NewService(repository.NewConfigRepository(db), repository.NewVoteRepository(db), log),
		DB:          db,
		Log:         log,
	})

	return &testEnv{t: t, db: db, server: server, contest: contestSvc}
}

// do sends a JSON request as user (nil for anonymous) and returns the recorder.
func (e *testEnv) do(method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := auth.NewToken(testSecret, user.PID, time.Hour)
		require.NoError(e.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *testEnv) admin(name string) *models.User {
	e.t.Helper()
	user := testdb.CreateUser(e.t, e.db, name)
	require.NoError(e.t, repository.NewUserRepository(e.db).CreateAdmin(user.ID))
	return user
}

// openWindows writes a config whose submission and voting windows are open or closed relative to now.
func (e *testEnv) openWindows(submissionOpen, votingOpen bool) {
	e.t.Helper()

	now := time.Now()
	window := func(open bool) (*time.Time, *time.Time) {
		if open {
			return testdb.Window(now, -time.Hour, time.Hour)
		}
		return testdb.Window(now, time.Hour, 2*time.Hour)
	}

	ss, se := window(submissionOpen)
	vs, ve := window(votingOpen)
	_, err := e.contest.UpdateTimings(context.Background(), &contest.Timings{
		SubmissionStart: ss, SubmissionEnd: se, VotingStart: vs, VotingEnd: ve,
	})
	require.NoError(e.t, err)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func submissionBody(tag string) gin.H {
	return gin.H{
		"figma_link":                    "https://figma.com/file/" + tag,
		"design_image":                  "https://cdn.example.com/" + tag + ".png",
		"target_user_and_goal":          "first-time renters",
		"layout_explanation":            "two column grid",
		"style_interpretation":          "swiss",
		"key_trade_off":                 "fewer filters",
		"originality_confirmed":         true,
		"template_compliance_confirmed": true,
	}
}

func scoresBody(score int) gin.H {
	return gin.H{
		"problem_fit_score":          score,
		"clarity_score":              score,
		"style_interpretation_score": score,
		"originality_score":          score,
		"overall_quality_score":      score,
	}
}

func voteBody(submissionID uint, score int) gin.H {
	body := scoresBody(score)
	body["submission_id"] = submissionID
	return body
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_Cache(t *testing.T) {
	env := setupTestServer(t)
	cache := mocks.NewMockCache()
	env.server.opts.Cache = cache

	w := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	cache.HealthErr = errors.New("connection refused")
	w = env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "cache unavailable", body["error"])
}

func TestAuthMiddleware(t *testing.T) {
	env := setupTestServer(t)
	user := testdb.CreateUser(t, env.db, "alice")

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "unknown pid", header: "Bearer " + mustToken(t, testSecret, "00000000-0000-0000-0000-000000000000")},
		{name: "wrong secret", header: "Bearer " + mustToken(t, "other-secret", user.PID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/votes/mine", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			env.server.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decode[map[string]interface{}](t, w)
			assert.Contains(t, body, "error")
			assert.Contains(t, body, "timestamp")
		})
	}

	w := env.do(http.MethodGet, "/api/votes/mine", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func mustToken(t *testing.T, secret, pid string) string {
	t.Helper()
	token, err := auth.NewToken(secret, pid, time.Hour)
	require.NoError(t, err)
	return token
}

func TestConfigEndpoints(t *testing.T) {
	env := setupTestServer(t)
	admin := env.admin("root")
	user := testdb.CreateUser(t, env.db, "bob")

	w := env.do(http.MethodGet, "/api/config", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/config/phase", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	body := gin.H{
		"submission_start": start,
		"submission_end":   start.Add(time.Hour),
		"voting_start":     start.Add(2 * time.Hour),
		"voting_end":       start.Add(3 * time.Hour),
	}

	w = env.do(http.MethodPut, "/api/config", nil, body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, "/api/config", user, body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized access.", decode[map[string]interface{}](t, w)["error"])

	w = env.do(http.MethodPut, "/api/config", admin, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/config", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cfg := decode[models.Config](t, w)
	require.NotNil(t, cfg.SubmissionStart)
	assert.True(t, cfg.SubmissionStart.Equal(start))
	assert.False(t, cfg.Assigned)

	w = env.do(http.MethodGet, "/api/config/phase", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PRE_SUBMISSION", decode[map[string]interface{}](t, w)["phase"])

	// Second PUT updates the same row.
	body["voting_end"] = start.Add(4 * time.Hour)
	w = env.do(http.MethodPut, "/api/config", admin, body)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Config{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmissionEndpoints(t *testing.T) {
	env := setupTestServer(t)
	owner := testdb.CreateUser(t, env.db, "owner")
	stranger := testdb.CreateUser(t, env.db, "stranger")
	reviewer := testdb.CreateUser(t, env.db, "reviewer")
	admin := env.admin("root")

	// No config: submissions are closed.
	w := env.do(http.MethodPost, "/api/submissions", owner, submissionBody("a"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.openWindows(true, false)

	w = env.do(http.MethodGet, "/api/submissions/mine", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	incomplete := submissionBody("a")
	delete(incomplete, "figma_link")
	w = env.do(http.MethodPost, "/api/submissions", owner, incomplete)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/submissions", owner, submissionBody("a"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sub := decode[models.Submission](t, w)
	assert.Equal(t, owner.ID, sub.UserID)

	w = env.do(http.MethodPost, "/api/submissions", owner, submissionBody("b"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "submission already exists.", decode[map[string]interface{}](t, w)["error"])

	w = env.do(http.MethodGet, "/api/submissions/mine", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sub.ID, decode[models.Submission](t, w).ID)

	path := fmt.Sprintf("/api/submissions/%d", sub.ID)

	w = env.do(http.MethodGet, path, stranger, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.NoError(t, repository.NewSubmissionRepository(env.db).CreateAssignments([]models.VoteAssignment{
		{UserID: reviewer.ID, SubmissionID: sub.ID},
	}))

	for _, viewer := range []*models.User{owner, reviewer, admin} {
		w = env.do(http.MethodGet, path, viewer, nil)
		assert.Equal(t, http.StatusOK, w.Code, viewer.Name)
	}

	w = env.do(http.MethodGet, "/api/submissions/999", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/submissions/abc", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Updates are not bound to the submission window.
	env.openWindows(false, false)

	w = env.do(http.MethodPut, path, stranger, submissionBody("x"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, path, reviewer, submissionBody("x"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, path, owner, submissionBody("c"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://figma.com/file/c", decode[models.Submission](t, w).FigmaLink)

	w = env.do(http.MethodPatch, path, admin, submissionBody("d"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://figma.com/file/d", decode[models.Submission](t, w).FigmaLink)
}

func TestVoteWindowEnforcement(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		startOffset time.Duration
		endOffset   time.Duration
		wantStatus  int
	}{
		{name: "window in the future", startOffset: time.Hour, endOffset: 2 * time.Hour, wantStatus: http.StatusBadRequest},
		{name: "window in the past", startOffset: -2 * time.Hour, endOffset: -time.Hour, wantStatus: http.StatusBadRequest},
		{name: "window contains now", startOffset: -time.Hour, endOffset: time.Hour, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t)
			voter := testdb.CreateUser(t, env.db, "voter")
			sub := testdb.CreateSubmission(t, env.db, testdb.CreateUser(t, env.db, "author"))

			vs, ve := testdb.Window(now, tt.startOffset, tt.endOffset)
			testdb.CreateConfig(t, env.db, &models.Config{VotingStart: vs, VotingEnd: ve})

			w := env.do(http.MethodPost, "/api/votes", voter, voteBody(sub.ID, 3))
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestVoteEndpoints(t *testing.T) {
	env := setupTestServer(t)
	voter := testdb.CreateUser(t, env.db, "voter")
	other := testdb.CreateUser(t, env.db, "other")
	sub := testdb.CreateSubmission(t, env.db, testdb.CreateUser(t, env.db, "author"))
	env.openWindows(false, true)

	bad := voteBody(sub.ID, 3)
	bad["clarity_score"] = 6
	w := env.do(http.MethodPost, "/api/votes", voter, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "clarity_score must be between 0 and 5, got 6", decode[map[string]interface{}](t, w)["error"])

	w = env.do(http.MethodPost, "/api/votes", voter, voteBody(999, 3))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/api/votes", voter, voteBody(sub.ID, 3))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	vote := decode[models.Vote](t, w)

	w = env.do(http.MethodPost, "/api/votes", voter, voteBody(sub.ID, 4))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you have already voted on this submission", decode[map[string]interface{}](t, w)["error"])

	path := fmt.Sprintf("/api/votes/%d", vote.ID)

	w = env.do(http.MethodPut, path, other, voteBody(sub.ID, 5))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, path, voter, voteBody(sub.ID, -1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, path, voter, voteBody(sub.ID, 5))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[models.Vote](t, w).OverallQualityScore)

	w = env.do(http.MethodPut, "/api/votes/999", voter, voteBody(sub.ID, 5))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/votes/mine", voter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]models.Vote](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, 5, mine[0].ProblemFitScore)

	w = env.do(http.MethodGet, "/api/votes/mine", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Vote](t, w))

	// Closing the window blocks updates too.
	env.openWindows(false, false)
	w = env.do(http.MethodPut, path, voter, voteBody(sub.ID, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "voting is not currently open", decode[map[string]interface{}](t, w)["error"])
}

func TestUpdateVote_ScoresOnlyBody(t *testing.T) {
	env := setupTestServer(t)
	voter := testdb.CreateUser(t, env.db, "voter")
	sub := testdb.CreateSubmission(t, env.db, testdb.CreateUser(t, env.db, "author"))
	other := testdb.CreateSubmission(t, env.db, testdb.CreateUser(t, env.db, "other"))
	env.openWindows(false, true)

	w := env.do(http.MethodPost, "/api/votes", voter, gin.H{"problem_fit_score": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/votes", voter, voteBody(sub.ID, 2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	vote := decode[models.Vote](t, w)
	path := fmt.Sprintf("/api/votes/%d", vote.ID)

	w = env.do(http.MethodPut, path, voter, scoresBody(4))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Vote](t, w)
	assert.Equal(t, 4, updated.OriginalityScore)
	assert.Equal(t, sub.ID, updated.SubmissionID)

	// a stray submission_id is ignored
	w = env.do(http.MethodPut, path, voter, voteBody(other.ID, 1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, sub.ID, decode[models.Vote](t, w).SubmissionID)
}

func TestScoresVisibility(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(http.MethodGet, "/api/scores", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	sub := testdb.CreateSubmission(t, env.db, testdb.CreateUser(t, env.db, "author"))
	require.NoError(t, repository.NewVoteRepository(env.db).CreateScores([]models.Score{
		{SubmissionID: sub.ID, FinalScore: 8000},
	}))
	testdb.CreateConfig(t, env.db, &models.Config{ShowLeaderboard: false})

	w = env.do(http.MethodGet, "/api/scores", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := env.contest.SetShowLeaderboard(context.Background(), true)
	require.NoError(t, err)

	w = env.do(http.MethodGet, "/api/scores", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]leaderboard.Entry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 8000, entries[0].FinalScore)
}
