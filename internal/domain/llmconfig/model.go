package llmconfig

import (
	"strings"
	"time"
)

// Stored configuration keys, in display order.
const (
	KeyProjectID      = "project_id"
	KeyEndpointURL    = "endpoint_url"
	KeyAPIKey         = "api_key"
	KeyGranite33Model = "granite33_model"
	KeyGranite40Model = "granite40_model"
	KeyIAMToken       = "iam_token"
)

var Keys = []string{
	KeyProjectID,
	KeyEndpointURL,
	KeyAPIKey,
	KeyGranite33Model,
	KeyGranite40Model,
	KeyIAMToken,
}

// Entry is one row of the configurations table.
type Entry struct {
	Key       string    `db:"config_key" json:"key"`
	Value     string    `db:"config_value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Settings is the language-model endpoint configuration used by the
// assistant features of the site.
type Settings struct {
	ProjectID      string `json:"project_id"`
	EndpointURL    string `json:"endpoint_url"`
	APIKey         string `json:"api_key"`
	Granite33Model string `json:"granite33_model"`
	Granite40Model string `json:"granite40_model"`
	IAMToken       string `json:"iam_token"`
}

func (s *Settings) field(key string) *string {
	switch key {
	case KeyProjectID:
		return &s.ProjectID
	case KeyEndpointURL:
		return &s.EndpointURL
	case KeyAPIKey:
		return &s.APIKey
	case KeyGranite33Model:
		return &s.Granite33Model
	case KeyGranite40Model:
		return &s.Granite40Model
	case KeyIAMToken:
		return &s.IAMToken
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every value.
func (s Settings) Trimmed() Settings {
	for _, k := range Keys {
		p := s.field(k)
		*p = strings.TrimSpace(*p)
	}
	return s
}

// NonEmpty lists the populated values as entries, in Keys order.
func (s Settings) NonEmpty() []Entry {
	var out []Entry
	for _, k := range Keys {
		if v := *s.field(k); v != "" {
			out = append(out, Entry{Key: k, Value: v})
		}
	}
	return out
}

// FromEntries builds Settings from stored rows, ignoring unknown keys.
func FromEntries(entries []Entry) Settings {
	var s Settings
	for _, e := range entries {
		if p := s.field(e.Key); p != nil {
			*p = e.Value
		}
	}
	return s
}

// Masked hides all but the last four characters of the secrets.
func (s Settings) Masked() Settings {
	s.APIKey = mask(s.APIKey)
	s.IAMToken = mask(s.IAMToken)
	return s
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	r := []rune(v)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
