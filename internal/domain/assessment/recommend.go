package assessment

import "sort"

const (
	recImmediate = "Consider seeking immediate medical attention"
	recSoon      = "Consider scheduling an appointment with a healthcare provider soon"
	recMonitor   = "Monitor symptoms and consider consulting a healthcare provider if they worsen"

	recHydration = "Stay hydrated and get adequate rest"
	recTracking  = "Keep track of symptom changes"
)

// SelectRecommendations orders the condition-specific advice by descending
// priority, puts one urgency-tier message in front and the general wellness
// advice at the end. Duplicates are dropped, keeping the first occurrence.
func (r Rules) SelectRecommendations(specific []Recommendation, urgency int) []string {
	ordered := make([]Recommendation, len(specific))
	copy(ordered, specific)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	out := make([]string, 0, len(ordered)+3)
	out = append(out, r.urgencyTier(urgency))
	for _, rec := range ordered {
		out = append(out, rec.Text)
	}
	out = append(out, recHydration, recTracking)
	return uniqueStrings(out)
}

// Urgency tiers, as reported to a Recorder.
const (
	TierImmediate = "immediate"
	TierSoon      = "soon"
	TierMonitor   = "monitor"
	TierUnmatched = "unmatched"
)

// Tier names the band an urgency score falls in.
func (r Rules) Tier(urgency int) string {
	switch {
	case urgency > r.ImmediateCareThreshold:
		return TierImmediate
	case urgency > r.ScheduleSoonThreshold:
		return TierSoon
	default:
		return TierMonitor
	}
}

func (r Rules) urgencyTier(urgency int) string {
	switch r.Tier(urgency) {
	case TierImmediate:
		return recImmediate
	case TierSoon:
		return recSoon
	default:
		return recMonitor
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
