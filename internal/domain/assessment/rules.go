package assessment

// Rules holds the tunable thresholds and factor tables of the engine.
type Rules struct {
	// MinConfidence is the lowest match score a condition needs to be the
	// primary result. Alternatives must score strictly above it.
	MinConfidence float64
	// ImmediateCareThreshold: urgency strictly above it sets seek_immediate_care.
	ImmediateCareThreshold int
	// ScheduleSoonThreshold: urgency strictly above it (and not above the
	// immediate threshold) gets the "schedule soon" recommendation.
	ScheduleSoonThreshold int
	// MaxAlternatives caps the runner-up list.
	MaxAlternatives int
	// CategoryBonus is applied per matched symptom when a category has more
	// than one match: score *= 1 + CategoryBonus*matches.
	CategoryBonus float64

	BaseUrgency     float64
	DurationFactors map[DurationCode]float64
	AgeFactors      map[AgeRange]float64
	ChronicFactors  map[string]float64
	SmokingFactors  map[SmokingStatus]float64
	AlcoholFactors  map[AlcoholUse]float64
}

// DefaultRules returns the rule set used by the free assessment endpoint.
func DefaultRules() Rules {
	return Rules{
		MinConfidence:          25,
		ImmediateCareThreshold: 70,
		ScheduleSoonThreshold:  50,
		MaxAlternatives:        2,
		CategoryBonus:          0.1,
		BaseUrgency:            20,
		DurationFactors: map[DurationCode]float64{
			DurationUnderOneDay:   0.9,
			DurationOneToThree:    1.0,
			DurationFourToSeven:   1.1,
			DurationOneToTwoWeeks: 1.3,
			DurationOverTwoWeeks:  1.5,
		},
		AgeFactors: map[AgeRange]float64{
			AgeChild:      1.3,
			AgeTeen:       1.1,
			AgeYoungAdult: 1.0,
			AgeAdult:      1.0,
			AgeLateAdult:  1.1,
			AgeSenior:     1.3,
		},
		ChronicFactors: map[string]float64{
			"diabetes":       1.2,
			"hypertension":   1.15,
			"heart_disease":  1.3,
			"asthma":         1.1,
			"cancer_history": 1.25,
			"autoimmune":     1.2,
		},
		SmokingFactors: map[SmokingStatus]float64{
			SmokingCurrent: 1.2,
		},
		AlcoholFactors: map[AlcoholUse]float64{
			AlcoholHeavy: 1.15,
		},
	}
}

// factor returns m[k], or 1.0 when k has no entry.
func factor[K comparable](m map[K]float64, k K) float64 {
	if f, ok := m[k]; ok {
		return f
	}
	return 1.0
}
