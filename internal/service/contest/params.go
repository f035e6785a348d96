package contest

import (
	"time"

	"github.com/aimd54/design-contest/internal/models"
)

// SubmissionParams are the editable submission fields.
type SubmissionParams struct {
	FigmaLink                   string  `json:"figma_link" binding:"required"`
	DesignImage                 string  `json:"design_image" binding:"required"`
	TargetUserAndGoal           string  `json:"target_user_and_goal" binding:"required"`
	LayoutExplanation           string  `json:"layout_explanation" binding:"required"`
	StyleInterpretation         string  `json:"style_interpretation" binding:"required"`
	KeyTradeOff                 string  `json:"key_trade_off" binding:"required"`
	OriginalityConfirmed        bool    `json:"originality_confirmed"`
	TemplateComplianceConfirmed bool    `json:"template_compliance_confirmed"`
	FutureImprovements          *string `json:"future_improvements"`
}

func (p *SubmissionParams) apply(s *models.Submission) {
	s.FigmaLink = p.FigmaLink
	s.DesignImage = p.DesignImage
	s.TargetUserAndGoal = p.TargetUserAndGoal
	s.LayoutExplanation = p.LayoutExplanation
	s.StyleInterpretation = p.StyleInterpretation
	s.KeyTradeOff = p.KeyTradeOff
	s.OriginalityConfirmed = p.OriginalityConfirmed
	s.TemplateComplianceConfirmed = p.TemplateComplianceConfirmed
	s.FutureImprovements = p.FutureImprovements
}

// VoteScores carries one vote's five criterion scores. It is the whole body of a vote update.
type VoteScores struct {
	ProblemFitScore          int `json:"problem_fit_score"`
	ClarityScore             int `json:"clarity_score"`
	StyleInterpretationScore int `json:"style_interpretation_score"`
	OriginalityScore         int `json:"originality_score"`
	OverallQualityScore      int `json:"overall_quality_score"`
}

// VoteParams is a new vote: the target submission plus its scores.
type VoteParams struct {
	SubmissionID uint `json:"submission_id" binding:"required"`
	VoteScores
}

// Validate rejects any score outside [0,5], naming the first offending field.
func (p *VoteScores) Validate() error {
	scores := []struct {
		name  string
		value int
	}{
		{"problem_fit_score", p.ProblemFitScore},
		{"clarity_score", p.ClarityScore},
		{"style_interpretation_score", p.StyleInterpretationScore},
		{"originality_score", p.OriginalityScore},
		{"overall_quality_score", p.OverallQualityScore},
	}
	for _, s := range scores {
		if s.value < models.MinCriterionScore || s.value > models.MaxCriterionScore {
			return badRequest(msgScoreOutOfRange, s.name, models.MinCriterionScore, models.MaxCriterionScore, s.value)
		}
	}
	return nil
}

func (p *VoteScores) applyScores(v *models.Vote) {
	v.ProblemFitScore = p.ProblemFitScore
	v.ClarityScore = p.ClarityScore
	v.StyleInterpretationScore = p.StyleInterpretationScore
	v.OriginalityScore = p.OriginalityScore
	v.OverallQualityScore = p.OverallQualityScore
}

// Timings are the four window bounds. A nil bound closes its window.
type Timings struct {
	SubmissionStart *time.Time `json:"submission_start"`
	SubmissionEnd   *time.Time `json:"submission_end"`
	VotingStart     *time.Time `json:"voting_start"`
	VotingEnd       *time.Time `json:"voting_end"`
}

func (t *Timings) apply(cfg *models.Config) {
	cfg.SubmissionStart = t.SubmissionStart
	cfg.SubmissionEnd = t.SubmissionEnd
	cfg.VotingStart = t.VotingStart
	cfg.VotingEnd = t.VotingEnd
}

// SequentialTimings lays out consecutive windows of length period:
// ss=now+p, se=ss+p, vs=se+p, ve=vs+p.
func SequentialTimings(now time.Time, period time.Duration) (Timings, error) {
	if period <= 0 {
		return Timings{}, badRequest(msgInvalidTimingPeriod, period)
	}
	ss := now.Add(period)
	se := ss.Add(period)
	vs := se.Add(period)
	ve := vs.Add(period)
	return Timings{SubmissionStart: &ss, SubmissionEnd: &se, VotingStart: &vs, VotingEnd: &ve}, nil
}
