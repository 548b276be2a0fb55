package assessment

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)

	knownAgeRanges = map[AgeRange]bool{
		AgeChild: true, AgeTeen: true, AgeYoungAdult: true,
		AgeAdult: true, AgeLateAdult: true, AgeSenior: true,
	}
	knownSmoking = map[SmokingStatus]bool{
		SmokingNever: true, SmokingFormer: true, SmokingCurrent: true,
	}
	knownAlcohol = map[AlcoholUse]bool{
		AlcoholNone: true, AlcoholOccasional: true, AlcoholModerate: true, AlcoholHeavy: true,
	}
)

// Sanitize turns a decoded request body into a PatientReport. It never fails:
// malformed optional fields fall back to their defaults and a field that
// cannot be coerced to an integer is left unset. Required-field enforcement
// is the caller's job (see PatientReport.Validate).
func Sanitize(raw map[string]interface{}) PatientReport {
	r := PatientReport{
		MainSymptom:       cleanText(stringField(raw, "mainSymptom")),
		Symptoms:          cleanList(raw["symptoms"]),
		Duration:          DurationUnset,
		AgeRange:          DefaultAgeRange,
		BiologicalSex:     stripTags(strings.TrimSpace(stringField(raw, "biologicalSex"))),
		ChronicConditions: dedupe(cleanList(raw["conditions"])),
		Smoking:           SmokingNever,
		Alcohol:           AlcoholNone,
		Exercise:          "none",
	}

	if d, ok := coerceInt(raw["duration"]); ok {
		r.Duration = DurationCode(d)
	}
	if s, ok := coerceInt(raw["severity"]); ok {
		r.Severity = clampInt(s, 0, 10)
	}
	if a := AgeRange(cleanText(stringField(raw, "ageRange"))); knownAgeRanges[a] {
		r.AgeRange = a
	}
	if s := SmokingStatus(cleanText(stringField(raw, "smoking"))); knownSmoking[s] {
		r.Smoking = s
	}
	if a := AlcoholUse(cleanText(stringField(raw, "alcohol"))); knownAlcohol[a] {
		r.Alcohol = a
	}
	if e := cleanText(stringField(raw, "exercise")); e != "" {
		r.Exercise = e
	}
	return r
}

// cleanText trims, strips markup and case-folds a free-text field.
func cleanText(s string) string {
	s = norm.NFKC.String(s)
	s = stripTags(s)
	// Casers carry state and must not be shared across requests.
	return strings.TrimSpace(cases.Fold().String(s))
}

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

func stringField(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

// cleanList normalizes every string entry and drops empty or non-string ones.
func cleanList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		if ss, ok := v.([]string); ok {
			for _, s := range ss {
				items = append(items, s)
			}
		}
	}
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = cleanText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// coerceInt accepts JSON numbers with no fractional part and base-10 integer
// strings. Anything else reports false.
func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
