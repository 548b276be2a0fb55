package assessment

import "encoding/json"

// ConditionID identifies a row in the conditions table.
type ConditionID int64

// Condition maps to the conditions table. Reference data, read-only.
type Condition struct {
	ID          ConditionID `db:"condition_id" json:"condition_id" yaml:"id"`
	Name        string      `db:"name" json:"name" yaml:"name"`
	Description string      `db:"description" json:"description" yaml:"description"`
}

// Symptom maps to the symptoms table.
type Symptom struct {
	ID       int64  `db:"symptom_id" json:"symptom_id" yaml:"id"`
	Name     string `db:"name" json:"name" yaml:"name"`
	Category string `db:"category" json:"category" yaml:"category"`
}

// ConditionSymptomRow is one row of the condition_symptoms ⋈ symptoms join.
type ConditionSymptomRow struct {
	ConditionID ConditionID `db:"condition_id"`
	SymptomName string      `db:"name"`
	Weight      float64     `db:"weight"`
	Category    string      `db:"category"`
}

// Recommendation maps to the recommendations table.
type Recommendation struct {
	ConditionID ConditionID `db:"condition_id" json:"condition_id" yaml:"condition_id"`
	Text        string      `db:"recommendation" json:"recommendation" yaml:"text"`
	Priority    int         `db:"priority" json:"priority" yaml:"priority"`
}

// DurationCode is the ordinal symptom duration reported on the intake form.
type DurationCode int

const (
	DurationUnset         DurationCode = 0
	DurationUnderOneDay   DurationCode = 1
	DurationOneToThree    DurationCode = 2
	DurationFourToSeven   DurationCode = 3
	DurationOneToTwoWeeks DurationCode = 4
	DurationOverTwoWeeks  DurationCode = 5
)

// AgeRange is one of the fixed age brackets offered by the intake form.
type AgeRange string

const (
	AgeChild      AgeRange = "0-12"
	AgeTeen       AgeRange = "13-17"
	AgeYoungAdult AgeRange = "18-29"
	AgeAdult      AgeRange = "30-49"
	AgeLateAdult  AgeRange = "50-64"
	AgeSenior     AgeRange = "65+"
)

// DefaultAgeRange is used when the form omits or garbles the age bracket.
const DefaultAgeRange = AgeYoungAdult

// SmokingStatus is the self-reported smoking level.
type SmokingStatus string

const (
	SmokingNever   SmokingStatus = "never"
	SmokingFormer  SmokingStatus = "former"
	SmokingCurrent SmokingStatus = "current"
)

// AlcoholUse is the self-reported drinking level.
type AlcoholUse string

const (
	AlcoholNone       AlcoholUse = "none"
	AlcoholOccasional AlcoholUse = "occasional"
	AlcoholModerate   AlcoholUse = "moderate"
	AlcoholHeavy      AlcoholUse = "heavy"
)

// PatientReport is the canonical, sanitized form of one intake submission.
// It lives for a single request and is never persisted.
type PatientReport struct {
	MainSymptom       string
	Symptoms          []string
	Duration          DurationCode
	Severity          int
	AgeRange          AgeRange
	BiologicalSex     string
	ChronicConditions []string
	Smoking           SmokingStatus
	Alcohol           AlcoholUse
	Exercise          string
}

// AllSymptoms returns the main complaint followed by the additional symptoms.
func (r PatientReport) AllSymptoms() []string {
	out := make([]string, 0, len(r.Symptoms)+1)
	if r.MainSymptom != "" {
		out = append(out, r.MainSymptom)
	}
	return append(out, r.Symptoms...)
}

// Validate enforces the two fields the intake endpoint requires.
func (r PatientReport) Validate() error {
	if r.MainSymptom == "" {
		return &ValidationError{Field: "mainSymptom", Message: "mainSymptom is required"}
	}
	if r.Duration == DurationUnset {
		return &ValidationError{Field: "duration", Message: "duration is required"}
	}
	return nil
}

// Alternative is a runner-up condition reported next to the primary result.
type Alternative struct {
	Condition  string `json:"condition" yaml:"condition"`
	Confidence int    `json:"confidence" yaml:"confidence"`
}

// Result is the assessment returned to the caller. A matched result always
// carries alternative_possibilities, possibly empty; the default result for
// unmatched symptoms leaves Alternatives nil and omits the key.
type Result struct {
	PossibleCondition string        `json:"possible_condition" yaml:"possible_condition"`
	Information       string        `json:"information" yaml:"information"`
	UrgencyLevel      int           `json:"urgency_level" yaml:"urgency_level"`
	MatchConfidence   int           `json:"match_confidence" yaml:"match_confidence"`
	Recommendations   []string      `json:"recommendations" yaml:"recommendations"`
	SeekImmediateCare bool          `json:"seek_immediate_care" yaml:"seek_immediate_care"`
	Disclaimer        string        `json:"disclaimer" yaml:"disclaimer"`
	Alternatives      []Alternative `json:"alternative_possibilities" yaml:"alternative_possibilities,omitempty"`
}

// MarshalJSON drops alternative_possibilities only when Alternatives is nil.
func (r Result) MarshalJSON() ([]byte, error) {
	type fields Result
	if r.Alternatives != nil {
		return json.Marshal(fields(r))
	}
	return json.Marshal(struct {
		fields
		Alternatives []Alternative `json:"alternative_possibilities,omitempty"`
	}{fields: fields(r)})
}

// Disclaimer is attached to every result.
const Disclaimer = "This assessment provides general information only and is not a medical diagnosis."
