package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aimd54/design-contest/internal/mattermost"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/internal/service/assignment"
	"github.com/aimd54/design-contest/internal/service/contest"
	"github.com/aimd54/design-contest/internal/service/leaderboard"
	"github.com/aimd54/design-contest/internal/service/orchestrator"
	"github.com/aimd54/design-contest/internal/service/scoring"
)

func (cli *commandLine) assignSubmissions() error {
	result, err := assignment.NewEngine(cli.cfg.Contest.ReviewsPerUser, cli.log).Run(context.Background(), cli.db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Assigned %d reviews (%d per reviewer) over %d submissions.\n",
		result.Assignments, result.PerReviewer, result.Submissions)
	return nil
}

func (cli *commandLine) genLeaderboard() error {
	ctx := context.Background()

	result, err := scoring.NewEngine(cli.log).Run(ctx, cli.db)
	if err != nil {
		return err
	}
	for _, id := range result.Skipped {
		fmt.Fprintf(cli.out, "Skipping submission %d - no votes received\n", id)
	}

	board := leaderboard.NewService(repository.NewConfigRepository(cli.db), repository.NewVoteRepository(cli.db), cli.log)
	entries, err := board.Ranked(ctx)
	if err != nil {
		return err
	}
	stats := leaderboard.Summarize(entries)
	fmt.Fprintf(cli.out, "Generated leaderboard: %d scores from %d votes (top %d, median %.1f, %d ties).\n",
		stats.Entries, result.Votes, stats.TopScore, stats.MedianScore, stats.Ties)
	return nil
}

func (cli *commandLine) assignAndGen() error {
	orch := orchestrator.NewService(
		&cli.cfg.Orchestrator,
		cli.db,
		assignment.NewEngine(cli.cfg.Contest.ReviewsPerUser, cli.log),
		scoring.NewEngine(cli.log),
		cli.log,
	).WithNotifier(mattermost.NewClient(&cli.cfg.Mattermost, cli.log)).WithClock(cli.now)
	if cli.locker != nil {
		orch = orch.WithLocker(cli.locker)
	}

	report := orch.Tick(context.Background())
	switch {
	case report.Locked:
		fmt.Fprintln(cli.out, "Another tick holds the lock; nothing to do.")
	case report.NoConfig:
		fmt.Fprintln(cli.out, "No competition config; nothing to do.")
	default:
		fmt.Fprintf(cli.out, "Phase %s (assignment ran: %t, scoring ran: %t).\n",
			report.Phase, report.AssignmentRan, report.ScoringRan)
	}
	// Phase failures are already logged and notified; a non-zero exit lets cron wrappers see them too.
	return errors.Join(report.Errors...)
}

func (cli *commandLine) contestService() *contest.Service {
	return contest.NewService(cli.db, cli.log).WithClock(cli.now)
}

func (cli *commandLine) autoTimings(period time.Duration) error {
	timings, err := contest.SequentialTimings(cli.now(), period)
	if err != nil {
		return err
	}
	cfg, err := cli.contestService().UpdateTimings(context.Background(), &timings)
	if err != nil {
		return err
	}
	cli.printTimings("Updated competition timings.", cfg.SubmissionStart, cfg.SubmissionEnd, cfg.VotingStart, cfg.VotingEnd)
	return nil
}

// updateTimings sets only the bounds given; empty strings keep the stored value.
func (cli *commandLine) updateTimings(ss, se, vs, ve string) error {
	bounds := make([]*time.Time, 4)
	for i, raw := range []string{ss, se, vs, ve} {
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", raw, err)
		}
		bounds[i] = &t
	}

	cfg, err := repository.NewConfigRepository(cli.db).Upsert(func(cfg *models.Config) {
		if bounds[0] != nil {
			cfg.SubmissionStart = bounds[0]
		}
		if bounds[1] != nil {
			cfg.SubmissionEnd = bounds[1]
		}
		if bounds[2] != nil {
			cfg.VotingStart = bounds[2]
		}
		if bounds[3] != nil {
			cfg.VotingEnd = bounds[3]
		}
	})
	if err != nil {
		return err
	}
	cli.printTimings("Updated competition timings.", cfg.SubmissionStart, cfg.SubmissionEnd, cfg.VotingStart, cfg.VotingEnd)
	return nil
}

func (cli *commandLine) printTimings(header string, bounds ...*time.Time) {
	fmt.Fprintln(cli.out, header)
	for i, name := range []string{"submission_start", "submission_end", "voting_start", "voting_end"} {
		value := "-"
		if bounds[i] != nil {
			value = bounds[i].Format(time.RFC3339)
		}
		fmt.Fprintf(cli.out, "  %-16s %s\n", name, value)
	}
}

func (cli *commandLine) showLeaderboard(show bool) error {
	_, err := cli.contestService().SetShowLeaderboard(context.Background(), show)
	if errors.Is(err, contest.ErrNotFound) {
		return errors.New("no competition config; run update_timings first")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Leaderboard visibility set to %t.\n", show)
	return nil
}
