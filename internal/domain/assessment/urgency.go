package assessment

import "math"

// UrgencyInput carries everything the urgency calculation reads.
type UrgencyInput struct {
	Duration          DurationCode
	Severity          int
	MatchScore        float64
	AgeRange          AgeRange
	ChronicConditions []string
	Smoking           SmokingStatus
	Alcohol           AlcoholUse
}

// UrgencyInputFor pairs a report with the match score of its best condition.
func UrgencyInputFor(r PatientReport, matchScore float64) UrgencyInput {
	return UrgencyInput{
		Duration:          r.Duration,
		Severity:          r.Severity,
		MatchScore:        matchScore,
		AgeRange:          r.AgeRange,
		ChronicConditions: r.ChronicConditions,
		Smoking:           r.Smoking,
		Alcohol:           r.Alcohol,
	}
}

// RiskMultiplier compounds the declared chronic conditions and lifestyle
// factors. Each distinct chronic condition counts once.
func (r Rules) RiskMultiplier(chronic []string, smoking SmokingStatus, alcohol AlcoholUse) float64 {
	m := 1.0
	seen := make(map[string]bool, len(chronic))
	for _, c := range chronic {
		if seen[c] {
			continue
		}
		seen[c] = true
		m *= factor(r.ChronicFactors, c)
	}
	m *= factor(r.SmokingFactors, smoking)
	m *= factor(r.AlcoholFactors, alcohol)
	return m
}

// Urgency returns a 0-100 heuristic, not a triage score:
//
//	base * duration * severity/10 * match/100 * age * risk
//
// clamped to [0, 100] and rounded half away from zero.
func (r Rules) Urgency(in UrgencyInput) int {
	u := r.BaseUrgency *
		factor(r.DurationFactors, in.Duration) *
		(float64(in.Severity) / 10) *
		(in.MatchScore / 100) *
		factor(r.AgeFactors, in.AgeRange) *
		r.RiskMultiplier(in.ChronicConditions, in.Smoking, in.Alcohol)

	return int(math.Round(math.Min(100, math.Max(0, u))))
}

// SeekImmediateCare is a purely numeric gate on urgency; no red-flag symptom
// list is consulted.
func (r Rules) SeekImmediateCare(urgency int) bool {
	return urgency > r.ImmediateCareThreshold
}
