package assessment

import (
	"math"
	"testing"
)

func TestUrgency_Scenarios(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name string
		in   UrgencyInput
		want int
	}{
		{
			name: "elderly smoker with heart disease",
			in: UrgencyInput{
				Duration: DurationOverTwoWeeks, Severity: 10, MatchScore: 80,
				AgeRange: AgeSenior, ChronicConditions: []string{"heart_disease"}, Smoking: SmokingCurrent,
			},
			want: 49,
		},
		{
			name: "common cold adult",
			in:   UrgencyInput{Duration: DurationOneToThree, Severity: 6, MatchScore: 130, AgeRange: AgeAdult},
			want: 16,
		},
		{
			name: "zero severity",
			in:   UrgencyInput{Duration: DurationOverTwoWeeks, Severity: 0, MatchScore: 100, AgeRange: AgeSenior},
			want: 0,
		},
		{
			name: "unknown duration code is neutral",
			in:   UrgencyInput{Duration: DurationCode(9), Severity: 10, MatchScore: 100, AgeRange: AgeAdult},
			want: 20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.Urgency(tt.in); got != tt.want {
				t.Errorf("Urgency() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUrgency_ClampedToHundred(t *testing.T) {
	rules := DefaultRules()
	in := UrgencyInput{
		Duration:          DurationOverTwoWeeks,
		Severity:          10,
		MatchScore:        600,
		AgeRange:          AgeChild,
		ChronicConditions: []string{"diabetes", "hypertension", "heart_disease", "asthma", "cancer_history", "autoimmune"},
		Smoking:           SmokingCurrent,
		Alcohol:           AlcoholHeavy,
	}
	if got := rules.Urgency(in); got != 100 {
		t.Errorf("expected clamp to 100, got %d", got)
	}

	in.MatchScore = math.Inf(1)
	if got := rules.Urgency(in); got != 100 {
		t.Errorf("expected clamp to 100 for infinite score, got %d", got)
	}
}

func TestUrgency_MonotonicInSeverityAndDuration(t *testing.T) {
	rules := DefaultRules()
	base := UrgencyInput{Duration: DurationUnderOneDay, MatchScore: 100, AgeRange: AgeAdult}

	prev := -1
	for sev := 0; sev <= 10; sev++ {
		in := base
		in.Severity = sev
		got := rules.Urgency(in)
		if got < prev {
			t.Errorf("urgency decreased at severity %d: %d < %d", sev, got, prev)
		}
		prev = got
	}

	prev = -1
	for d := DurationUnderOneDay; d <= DurationOverTwoWeeks; d++ {
		in := base
		in.Severity = 5
		in.Duration = d
		got := rules.Urgency(in)
		if got < prev {
			t.Errorf("urgency decreased at duration %d: %d < %d", d, got, prev)
		}
		prev = got
	}
}

func TestRiskMultiplier(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name    string
		chronic []string
		smoking SmokingStatus
		alcohol AlcoholUse
		want    float64
	}{
		{"none", nil, SmokingNever, AlcoholNone, 1},
		{"unknown condition ignored", []string{"gout"}, SmokingFormer, AlcoholModerate, 1},
		{"duplicates count once", []string{"diabetes", "diabetes"}, SmokingNever, AlcoholNone, 1.2},
		{"compounded", []string{"heart_disease"}, SmokingCurrent, AlcoholHeavy, 1.3 * 1.2 * 1.15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.RiskMultiplier(tt.chronic, tt.smoking, tt.alcohol)
			if !almostEqual(got, tt.want) {
				t.Errorf("RiskMultiplier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeekImmediateCare(t *testing.T) {
	rules := DefaultRules()
	for _, tt := range []struct {
		urgency int
		want    bool
	}{
		{0, false}, {70, false}, {71, true}, {100, true},
	} {
		if got := rules.SeekImmediateCare(tt.urgency); got != tt.want {
			t.Errorf("SeekImmediateCare(%d) = %v, want %v", tt.urgency, got, tt.want)
		}
	}
}

func TestUrgencyInputFor(t *testing.T) {
	r := PatientReport{
		Duration: DurationFourToSeven, Severity: 4, AgeRange: AgeTeen,
		ChronicConditions: []string{"asthma"}, Smoking: SmokingFormer, Alcohol: AlcoholOccasional,
	}
	in := UrgencyInputFor(r, 42)
	if in.MatchScore != 42 || in.Duration != r.Duration || in.Severity != 4 || in.AgeRange != AgeTeen {
		t.Errorf("unexpected input %+v", in)
	}
}
