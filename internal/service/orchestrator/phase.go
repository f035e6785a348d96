package orchestrator

import (
	"time"

	"github.com/aimd54/design-contest/internal/models"
)

// Phase is the logical competition state derived from the config row.
type Phase string

// Competition phases in chronological order.
const (
	PhasePreSubmission     Phase = "PRE_SUBMISSION"
	PhaseSubmitting        Phase = "SUBMITTING"
	PhaseAssigningEligible Phase = "ASSIGNING_ELIGIBLE"
	PhaseAssigned          Phase = "ASSIGNED"
	PhaseVoting            Phase = "VOTING"
	PhaseScoringEligible   Phase = "SCORING_ELIGIBLE"
	PhaseScored            Phase = "SCORED"
)

// Phases lists every phase in order.
var Phases = []Phase{
	PhasePreSubmission,
	PhaseSubmitting,
	PhaseAssigningEligible,
	PhaseAssigned,
	PhaseVoting,
	PhaseScoringEligible,
	PhaseScored,
}

func phaseNames() []string {
	names := make([]string, len(Phases))
	for i, p := range Phases {
		names[i] = string(p)
	}
	return names
}

// AssignmentDue reports whether the submission window has closed and assignment has not run.
func AssignmentDue(cfg *models.Config, now time.Time) bool {
	return cfg.SubmissionEnd != nil && now.After(*cfg.SubmissionEnd) && !cfg.Assigned
}

// ScoringDue reports whether the voting window has closed and scoring has not run.
func ScoringDue(cfg *models.Config, now time.Time) bool {
	return cfg.VotingEnd != nil && now.After(*cfg.VotingEnd) && !cfg.CreatedScores
}

// PhaseAt computes the phase at now. A nil config is PRE_SUBMISSION.
func PhaseAt(cfg *models.Config, now time.Time) Phase {
	if cfg == nil {
		return PhasePreSubmission
	}

	switch {
	case cfg.VotingEnd != nil && now.After(*cfg.VotingEnd):
		if cfg.CreatedScores {
			return PhaseScored
		}
		return PhaseScoringEligible
	case cfg.VotingOpen(now):
		return PhaseVoting
	case cfg.SubmissionEnd != nil && now.After(*cfg.SubmissionEnd):
		if cfg.Assigned {
			return PhaseAssigned
		}
		return PhaseAssigningEligible
	case cfg.SubmissionOpen(now):
		return PhaseSubmitting
	default:
		return PhasePreSubmission
	}
}
