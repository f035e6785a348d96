package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/design-contest/internal/config"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/pkg/logger"
	"github.com/aimd54/design-contest/test/testdb"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	return &commandLine{
		db: testdb.New(t),
		cfg: &config.Config{
			Database:     config.DatabaseConfig{Driver: config.DriverSQLite},
			Contest:      config.ContestConfig{ReviewsPerUser: 6},
			Orchestrator: config.OrchestratorConfig{PersistFlags: true},
		},
		log: logger.NewNop(),
		out: out,
		now: func() time.Time { return fixedNow },
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"contestctl"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func loadConfig(t *testing.T, cli *commandLine) *models.Config {
	t.Helper()
	cfg, err := repository.NewConfigRepository(cli.db).Get()
	require.NoError(t, err)
	return cfg
}

func TestRun_Usage(t *testing.T) {
	cli, _ := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "update_timings without flags", args: []string{"update_timings"}, wantErr: errHelp},
		{name: "update_timings auto without period", args: []string{"update_timings", "-auto"}, wantErr: errHelp},
		{name: "update_timings unknown flag", args: []string{"update_timings", "-x"}, wantErr: errHelp},
		{name: "add_users without flags", args: []string{"add_users"}, wantErr: errHelp},
		{name: "add_users email without name", args: []string{"add_users", "-email", "a@b.c"}, wantErr: errHelp},
		{name: "make_admin without email", args: []string{"make_admin"}, wantErr: errHelp},
		{name: "migrate without direction", args: []string{"migrate"}, wantErr: errHelp},
	})
}

func TestUpdateTimings_Explicit(t *testing.T) {
	cli, _ := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "invalid timestamp", args: []string{"update_timings", "-ss", "tomorrow"}, wantErrStr: `invalid timestamp "tomorrow"`},
		{name: "submission window", args: []string{"update_timings", "-ss", "2026-03-01T09:00:00Z", "-se", "2026-03-03T09:00:00Z"}},
		{name: "voting window", args: []string{"update_timings", "-vs", "2026-03-04T09:00:00Z", "-ve", "2026-03-05T09:00:00+02:00"}},
	})

	cfg := loadConfig(t, cli)
	require.NotNil(t, cfg.SubmissionStart)
	require.NotNil(t, cfg.VotingEnd)
	assert.True(t, cfg.SubmissionStart.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, cfg.SubmissionEnd.Equal(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)))
	assert.True(t, cfg.VotingStart.Equal(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)))
	assert.True(t, cfg.VotingEnd.Equal(time.Date(2026, 3, 5, 7, 0, 0, 0, time.UTC)))
	assert.False(t, cfg.ShowLeaderboard)
}

func TestUpdateTimings_Auto(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"contestctl", "update_timings", "-auto", "-p", "10"}))

	cfg := loadConfig(t, cli)
	p := 10 * time.Minute
	assert.True(t, cfg.SubmissionStart.Equal(fixedNow.Add(p)))
	assert.True(t, cfg.SubmissionEnd.Equal(fixedNow.Add(2*p)))
	assert.True(t, cfg.VotingStart.Equal(fixedNow.Add(3*p)))
	assert.True(t, cfg.VotingEnd.Equal(fixedNow.Add(4*p)))
	assert.Contains(t, out.String(), "Updated competition timings.")
}

func TestShowLeaderboard(t *testing.T) {
	cli, _ := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no config", args: []string{"show_leaderboard"}, wantErrStr: "no competition config"},
	})

	testdb.CreateConfig(t, cli.db, &models.Config{})

	require.NoError(t, cli.run([]string{"contestctl", "show_leaderboard"}))
	assert.True(t, loadConfig(t, cli).ShowLeaderboard)

	require.NoError(t, cli.run([]string{"contestctl", "show_leaderboard", "-show=false"}))
	assert.False(t, loadConfig(t, cli).ShowLeaderboard)
}

func TestAddUsers_Single(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "new user", args: []string{"add_users", "-email", "ada@example.com", "-name", "Ada"}},
		{name: "existing email", args: []string{"add_users", "-email", "ada@example.com", "-name", "Ada"}, wantErrStr: "already exists"},
	})

	user, err := repository.NewUserRepository(cli.db).GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.NotEmpty(t, user.PID)
	assert.Contains(t, out.String(), "Added user: Ada")
}

// registrationRow builds a 19-column export row.
func registrationRow(name, email, status string) string {
	cols := make([]string, csvStatusColumn+1)
	cols[0] = "2026-02-01"
	cols[csvNameColumn] = name
	cols[csvEmailColumn] = email
	cols[csvStatusColumn] = status
	return strings.Join(cols, ",")
}

func TestAddUsers_CSV(t *testing.T) {
	cli, out := setup(t)
	testdb.CreateUser(t, cli.db, "grace")

	rows := []string{
		registrationRow("Name", "Email", "Status"),
		registrationRow("Ada Lovelace", "ada@example.com", "Complete"),
		registrationRow("Alan Turing", "alan@example.com", "Pending"),
		registrationRow("Grace Hopper", "grace@example.com", "Complete"),
		"short,row",
		registrationRow("Edsger Dijkstra", "edsger@example.com", "Complete"),
	}
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o600))

	runCLITests(t, cli, []cliTest{
		{name: "missing file", args: []string{"add_users", "-users", filepath.Join(t.TempDir(), "nope.csv")}, wantErrStr: "cannot open users file"},
		{name: "import", args: []string{"add_users", "-users", path}},
	})

	users, err := repository.NewUserRepository(cli.db).List()
	require.NoError(t, err)

	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	assert.ElementsMatch(t, []string{"grace@example.com", "ada@example.com", "edsger@example.com"}, emails)
	assert.Contains(t, out.String(), "The user grace@example.com already exists.")
	assert.Contains(t, out.String(), "Imported 2 users, skipped 1 existing.")
}

func TestMakeAdmin(t *testing.T) {
	cli, _ := setup(t)
	user := testdb.CreateUser(t, cli.db, "root")

	runCLITests(t, cli, []cliTest{
		{name: "unknown email", args: []string{"make_admin", "-email", "nobody@example.com"}, wantErrStr: "no user with email"},
		{name: "promote", args: []string{"make_admin", "-email", user.Email}},
		{name: "promote again", args: []string{"make_admin", "-email", user.Email}},
	})

	isAdmin, err := repository.NewUserRepository(cli.db).IsAdmin(user.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

func seedContest(t *testing.T, cli *commandLine, n int) []*models.Submission {
	t.Helper()
	subs := make([]*models.Submission, n)
	for i := range subs {
		subs[i] = testdb.CreateSubmission(t, cli.db, testdb.CreateUser(t, cli.db, fmt.Sprintf("designer%d", i)))
	}
	return subs
}

func TestAssignSubmissions(t *testing.T) {
	cli, out := setup(t)
	seedContest(t, cli, 4)

	require.NoError(t, cli.run([]string{"contestctl", "assign_submissions"}))

	assignments, err := repository.NewSubmissionRepository(cli.db).ListAssignments()
	require.NoError(t, err)
	assert.Len(t, assignments, 12)
	assert.Contains(t, out.String(), "Assigned 12 reviews (3 per reviewer) over 4 submissions.")
}

func TestGenLeaderboard(t *testing.T) {
	cli, out := setup(t)
	subs := seedContest(t, cli, 3)
	voter := testdb.CreateUser(t, cli.db, "voter")

	votes := repository.NewVoteRepository(cli.db)
	for _, sub := range subs[:2] {
		require.NoError(t, votes.Create(&models.Vote{
			UserID: voter.ID, SubmissionID: sub.ID,
			ProblemFitScore: 4, ClarityScore: 4, StyleInterpretationScore: 4, OriginalityScore: 4, OverallQualityScore: 4,
		}))
	}

	require.NoError(t, cli.run([]string{"contestctl", "gen_leaderboard"}))

	scores, err := votes.ListScores()
	require.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.Contains(t, out.String(), fmt.Sprintf("Skipping submission %d - no votes received", subs[2].ID))
	assert.Contains(t, out.String(), "Generated leaderboard: 2 scores from 2 votes")
}

func TestAssignAndGen(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"contestctl", "assign_and_gen"}))
	assert.Contains(t, out.String(), "No competition config")

	seedContest(t, cli, 3)
	ss, se := testdb.Window(fixedNow, -2*time.Hour, -time.Hour)
	vs, ve := testdb.Window(fixedNow, time.Hour, 2*time.Hour)
	testdb.CreateConfig(t, cli.db, &models.Config{SubmissionStart: ss, SubmissionEnd: se, VotingStart: vs, VotingEnd: ve})

	require.NoError(t, cli.run([]string{"contestctl", "assign_and_gen"}))

	cfg := loadConfig(t, cli)
	assert.True(t, cfg.Assigned)
	assert.False(t, cfg.CreatedScores)
	assert.Contains(t, out.String(), "assignment ran: true, scoring ran: false")

	assignments, err := repository.NewSubmissionRepository(cli.db).ListAssignments()
	require.NoError(t, err)
	assert.Len(t, assignments, 6)
}

func TestMigrate(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		cli, _ := setup(t)
		runCLITests(t, cli, []cliTest{
			{name: "up", args: []string{"migrate", "up"}},
			{name: "down", args: []string{"migrate", "down"}, wantErrStr: "sqlite only supports migrate up"},
		})
	})

	t.Run("postgres", func(t *testing.T) {
		cli, out := setup(t)
		cli.cfg.Database = config.DatabaseConfig{
			Driver: config.DriverPostgres,
			Postgres: config.PostgresConfig{
				Host: "db", Port: 5432, Database: "contest", User: "contest", Password: "secret", SSLMode: "disable",
			},
		}

		orig := migrateFunc
		t.Cleanup(func() { migrateFunc = orig })

		var gotURL, gotDirection string
		migrateFunc = func(databaseURL, direction string) (uint, error) {
			gotURL, gotDirection = databaseURL, direction
			if direction == "sideways" {
				return 0, errors.New("unknown migrate direction")
			}
			return 1, nil
		}

		runCLITests(t, cli, []cliTest{
			{name: "up", args: []string{"migrate", "up"}},
			{name: "bad direction", args: []string{"migrate", "sideways"}, wantErrStr: "unknown migrate direction"},
		})
		assert.Equal(t, "postgres://contest:secret@db:5432/contest?sslmode=disable", gotURL)
		assert.Equal(t, "sideways", gotDirection)
		assert.Contains(t, out.String(), "Schema at version 1.")
	})
}
