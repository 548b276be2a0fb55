package assessment

import (
	"context"
	"math"

	"github.com/rs/zerolog"
)

const nonSpecificInformation = "Based on the symptoms provided, a specific condition pattern could not be identified."

// defaultRecommendations is returned when no condition clears the threshold.
var defaultRecommendations = []string{
	"Consider consulting with a healthcare professional for proper evaluation",
	"Monitor symptoms and note any changes or worsening",
	"Ensure adequate rest and hydration",
	"Seek immediate care if symptoms become severe or concerning",
}

// Recorder receives one event per completed assessment. Only the urgency
// tier and score are passed on.
type Recorder interface {
	RecordAssessment(tier string, urgency int)
}

type nopRecorder struct{}

func (nopRecorder) RecordAssessment(string, int) {}

type Service struct {
	repo     ReferenceRepository
	rules    Rules
	recorder Recorder
	logger   zerolog.Logger
}

func NewService(repo ReferenceRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, rules: DefaultRules(), recorder: nopRecorder{}, logger: logger}
}

// SetRecorder installs r. A nil r disables recording.
func (s *Service) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// SetRules replaces the default rule set.
func (s *Service) SetRules(r Rules) {
	s.rules = r
}

// Rules returns the rule set in use.
func (s *Service) Rules() Rules {
	return s.rules
}

// Assess runs one assessment. Reference data is loaded fresh on every call
// and discarded with the result; nothing about the report is stored.
func (s *Service) Assess(ctx context.Context, report PatientReport) (*Result, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}

	conditions, err := s.repo.ListConditions(ctx)
	if err != nil {
		return nil, err
	}
	table, err := LoadWeightTable(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	reported := NewSymptomSet(report.AllSymptoms()...)
	matches := rankCandidates(conditions, table, reported, s.rules)

	s.logger.Debug().
		Int("conditions", len(conditions)).
		Int("profiles", table.Len()).
		Int("candidates", len(matches)).
		Msg("scored conditions")

	if len(matches) == 0 {
		res := DefaultResult()
		s.recorder.RecordAssessment(TierUnmatched, res.UrgencyLevel)
		return res, nil
	}

	best := matches[0]
	urgency := s.rules.Urgency(UrgencyInputFor(report, best.score))

	specific, err := s.repo.ListRecommendations(ctx, best.condition.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("condition_id", int64(best.condition.ID)).
		Float64("score", best.score).
		Int("urgency", urgency).
		Msg("best match")

	s.recorder.RecordAssessment(s.rules.Tier(urgency), urgency)
	return &Result{
		PossibleCondition: best.condition.Name,
		Information:       best.condition.Description,
		UrgencyLevel:      urgency,
		MatchConfidence:   Confidence(best.score),
		Recommendations:   s.rules.SelectRecommendations(specific, urgency),
		SeekImmediateCare: s.rules.SeekImmediateCare(urgency),
		Disclaimer:        Disclaimer,
		Alternatives:      s.alternatives(matches),
	}, nil
}

// alternatives returns up to MaxAlternatives runners-up after the best match.
// A runner-up must score strictly above MinConfidence to be listed.
func (s *Service) alternatives(matches []candidate) []Alternative {
	out := []Alternative{}
	for i := 1; i < len(matches) && len(out) < s.rules.MaxAlternatives; i++ {
		if matches[i].score <= s.rules.MinConfidence {
			continue
		}
		out = append(out, Alternative{
			Condition:  matches[i].condition.Name,
			Confidence: Confidence(matches[i].score),
		})
	}
	return out
}

// Confidence converts a raw match score to the displayed percentage. The
// category bonus can push a score past 100; the display value is capped.
func Confidence(score float64) int {
	return int(math.Min(100, math.Max(0, math.Round(score))))
}

// DefaultResult is the fixed response for symptoms that match no condition.
func DefaultResult() *Result {
	recs := make([]string, len(defaultRecommendations))
	copy(recs, defaultRecommendations)
	return &Result{
		PossibleCondition: "Non-specific symptoms",
		Information:       nonSpecificInformation,
		UrgencyLevel:      30,
		MatchConfidence:   0,
		Recommendations:   recs,
		SeekImmediateCare: false,
		Disclaimer:        Disclaimer,
	}
}
