package llmconfig

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the stored settings unmasked.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return Settings{}, err
	}
	return FromEntries(entries), nil
}

// Save stores the non-empty fields of in. Fields left empty keep their
// current value.
func (s *Service) Save(ctx context.Context, in Settings) error {
	in = in.Trimmed()
	if in.EndpointURL != "" {
		if err := validateEndpoint(in.EndpointURL); err != nil {
			return err
		}
	}

	entries := in.NonEmpty()
	if len(entries) == 0 {
		return &ValidationError{Message: "at least one configuration value is required"}
	}
	if err := s.repo.Upsert(ctx, entries); err != nil {
		return err
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	s.logger.Info().Strs("keys", keys).Msg("llm configuration saved")
	return nil
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: KeyEndpointURL, Message: "endpoint_url must be an absolute http or https URL"}
	}
	return nil
}
