// Package orchestrator runs the competition clock: a periodic, idempotent tick
// that fires assignment after submissions close and scoring after voting closes.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/aimd54/design-contest/internal/config"
	"github.com/aimd54/design-contest/internal/mattermost"
	prommetrics "github.com/aimd54/design-contest/internal/metrics"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/internal/service/assignment"
	"github.com/aimd54/design-contest/internal/service/scoring"
	"github.com/aimd54/design-contest/pkg/logger"
)

const lockKey = "contest:orchestrator:tick"

// Tick outcomes recorded as metric labels.
const (
	outcomeIdle     = "idle"
	outcomeRan      = "ran"
	outcomeError    = "error"
	outcomeLocked   = "locked"
	outcomeNoConfig = "no_config"
)

// AssignmentRunner runs the assignment engine against db.
type AssignmentRunner interface {
	Run(ctx context.Context, db *repository.DB) (assignment.Result, error)
}

// ScoringRunner runs the scoring engine against db.
type ScoringRunner interface {
	Run(ctx context.Context, db *repository.DB) (scoring.Result, error)
}

// Notifier announces phase runs.
type Notifier interface {
	SendPhaseTransition(ev mattermost.PhaseEvent) error
}

// Locker provides a cross-process mutual exclusion key with expiry.
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelIfEqual(ctx context.Context, key, value string) (bool, error)
}

// TickReport describes what one tick did.
type TickReport struct {
	Phase         Phase
	Locked        bool
	NoConfig      bool
	AssignmentRan bool
	ScoringRan    bool
	Errors        []error
}

// Service handles the competition clock.
type Service struct {
	config   *config.OrchestratorConfig
	db       *repository.DB
	assigner AssignmentRunner
	scorer   ScoringRunner
	notifier Notifier
	locker   Locker
	now      func() time.Time
	log      *logger.Logger
	cron     *cron.Cron
}

// NewService creates a new orchestrator service.
func NewService(
	cfg *config.OrchestratorConfig,
	db *repository.DB,
	assigner AssignmentRunner,
	scorer ScoringRunner,
	log *logger.Logger,
) *Service {
	return &Service{
		config:   cfg,
		db:       db,
		assigner: assigner,
		scorer:   scorer,
		now:      time.Now,
		log:      log.Component("orchestrator"),
	}
}

// WithNotifier sets the phase transition notifier.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// WithLocker makes ticks exclusive across processes sharing the lock store.
func (s *Service) WithLocker(l Locker) *Service {
	s.locker = l
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start registers the tick with cron and starts it.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Orchestrator is disabled in configuration")
		return nil
	}

	location, err := s.config.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))
	_, err = s.cron.AddFunc(s.config.Schedule, func() {
		s.Tick(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register orchestrator tick: %w", err)
	}

	s.cron.Start()

	nextRun := ""
	if entries := s.cron.Entries(); len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}
	s.log.Info().
		Str("schedule", s.config.Schedule).
		Str("timezone", s.config.Timezone).
		Bool("persist_flags", s.config.PersistFlags).
		Str("next_run", nextRun).
		Msg("Orchestrator started successfully")

	return nil
}

// Stop gracefully shuts down the cron runner, waiting for a running tick.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Orchestrator stopped")
	}
}

// Tick evaluates both phase rules once. Failures are logged, counted and
// reported but never returned, so one phase cannot block the other.
func (s *Service) Tick(ctx context.Context) TickReport {
	var report TickReport
	now := s.now()

	if s.locker != nil {
		acquired, release, err := s.acquire(ctx)
		if err != nil {
			report.Errors = append(report.Errors, err)
			prommetrics.RecordOrchestratorTick(outcomeError)
			return report
		}
		if !acquired {
			report.Locked = true
			prommetrics.RecordOrchestratorTick(outcomeLocked)
			return report
		}
		defer release()
	}

	cfg, err := repository.NewConfigRepository(s.db.WithContext(ctx)).Get()
	if err != nil {
		if repository.IsNotFound(err) {
			s.log.Debug().Msg("No config found, skipping tick")
			report.NoConfig = true
			report.Phase = PhasePreSubmission
			prommetrics.RecordOrchestratorTick(outcomeNoConfig)
			return report
		}
		s.log.Error().Err(err).Msg("Failed to load config")
		report.Errors = append(report.Errors, err)
		prommetrics.RecordOrchestratorTick(outcomeError)
		return report
	}

	if AssignmentDue(cfg, now) {
		ran, err := s.runPhase(ctx, "assignment", now, AssignmentDue,
			func(c *models.Config) { c.Assigned = true },
			func(ctx context.Context, tx *repository.DB) (int, error) {
				res, err := s.assigner.Run(ctx, tx)
				return res.Assignments, err
			})
		report.AssignmentRan = ran
		if err != nil {
			report.Errors = append(report.Errors, err)
		}
	}

	if ScoringDue(cfg, now) {
		ran, err := s.runPhase(ctx, "scoring", now, ScoringDue,
			func(c *models.Config) { c.CreatedScores = true },
			func(ctx context.Context, tx *repository.DB) (int, error) {
				res, err := s.scorer.Run(ctx, tx)
				return res.Scored, err
			})
		report.ScoringRan = ran
		if err != nil {
			report.Errors = append(report.Errors, err)
		}
	}

	if report.AssignmentRan || report.ScoringRan {
		if fresh, err := repository.NewConfigRepository(s.db.WithContext(ctx)).Get(); err == nil {
			cfg = fresh
		}
	}
	report.Phase = PhaseAt(cfg, now)
	prommetrics.SetPhase(string(report.Phase), phaseNames())

	switch {
	case len(report.Errors) > 0:
		prommetrics.RecordOrchestratorTick(outcomeError)
	case report.AssignmentRan || report.ScoringRan:
		prommetrics.RecordOrchestratorTick(outcomeRan)
	default:
		prommetrics.RecordOrchestratorTick(outcomeIdle)
	}

	return report
}

// runPhase locks the config row, re-checks due against the locked row, runs
// the engine on the same transaction and sets the flag when flags persist.
// Any failure rolls the whole phase back so the next tick retries.
func (s *Service) runPhase(
	ctx context.Context,
	name string,
	now time.Time,
	due func(*models.Config, time.Time) bool,
	setFlag func(*models.Config),
	run func(context.Context, *repository.DB) (int, error),
) (bool, error) {
	start := time.Now()
	ran := false
	count := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *repository.DB) error {
		configs := repository.NewConfigRepository(tx)

		cfg, err := configs.GetForUpdate()
		if err != nil {
			return err
		}
		if !due(cfg, now) {
			return nil
		}

		s.log.Info().Str("phase", name).Msg("Running phase")
		count, err = run(ctx, tx)
		if err != nil {
			return err
		}
		ran = true

		if !s.config.PersistFlags {
			return nil
		}
		setFlag(cfg)
		return configs.Save(cfg)
	})

	ev := mattermost.PhaseEvent{Phase: name, Count: count, Duration: time.Since(start)}
	if err != nil {
		s.log.Error().Err(err).Str("phase", name).Msg("Phase failed, will retry next tick")
		ev.Status = mattermost.StatusFailed
		ev.Err = err
		s.notify(ev)
		return false, fmt.Errorf("%s phase: %w", name, err)
	}
	if ran {
		ev.Status = mattermost.StatusCompleted
		s.notify(ev)
	}
	return ran, nil
}

func (s *Service) notify(ev mattermost.PhaseEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendPhaseTransition(ev); err != nil {
		s.log.Warn().Err(err).Str("phase", ev.Phase).Msg("Failed to send phase notification")
	}
}

// acquire takes the tick lock. A lock store error skips the tick rather than
// risk two replicas running the same phase.
func (s *Service) acquire(ctx context.Context) (bool, func(), error) {
	token := uuid.NewString()
	ok, err := s.locker.SetNX(ctx, lockKey, token, s.config.LockTTL())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to acquire tick lock")
		return false, nil, fmt.Errorf("failed to acquire tick lock: %w", err)
	}
	if !ok {
		s.log.Debug().Msg("Tick lock held elsewhere, skipping")
		return false, nil, nil
	}
	return true, func() {
		released, err := s.locker.DelIfEqual(context.Background(), lockKey, token)
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to release tick lock")
			return
		}
		if !released {
			s.log.Warn().Msg("Tick lock expired before release")
		}
	}, nil
}
