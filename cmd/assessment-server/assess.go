package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthcheckup/assessment/internal/config"
	"github.com/healthcheckup/assessment/internal/domain/assessment"
	"github.com/healthcheckup/assessment/internal/platform/db"
)

type assessOptions struct {
	reference   string
	input       string
	output      string
	mainSymptom string
	symptoms    []string
	conditions  []string
	duration    int
	severity    int
	ageRange    string
	smoking     string
	alcohol     string
}

func assessCmd() *cobra.Command {
	opts := &assessOptions{}
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run one assessment from the command line",
		Long: `Run the assessment pipeline without the HTTP server.

The request is read from --input (a JSON file with the same body the API
accepts, or "-" for stdin) or built from flags. Reference data comes from
--reference, or from DATABASE_URL when no file is given.`,
		Example: `  assessment-server assess --reference fixtures/reference.yaml --input request.json
  assessment-server assess --reference fixtures/reference.yaml --main-symptom cough --symptoms fever,fatigue --duration 2 --severity 6 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.reference, "reference", "", "YAML reference data file")
	f.StringVar(&opts.input, "input", "", `JSON request file, or "-" for stdin`)
	f.StringVarP(&opts.output, "output", "o", "human", "Output format: human, json or yaml")
	f.StringVar(&opts.mainSymptom, "main-symptom", "", "Main symptom")
	f.StringSliceVar(&opts.symptoms, "symptoms", nil, "Additional symptoms")
	f.StringSliceVar(&opts.conditions, "conditions", nil, "Chronic conditions")
	f.IntVar(&opts.duration, "duration", 0, "Duration code 1-5")
	f.IntVar(&opts.severity, "severity", 0, "Severity 0-10")
	f.StringVar(&opts.ageRange, "age-range", "", "Age bracket, e.g. 30-49")
	f.StringVar(&opts.smoking, "smoking", "", "never, former or current")
	f.StringVar(&opts.alcohol, "alcohol", "", "none, occasional, moderate or heavy")
	return cmd
}

func runAssess(cmd *cobra.Command, opts *assessOptions) error {
	switch opts.output {
	case "human", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	raw, err := opts.request(cmd.InOrStdin())
	if err != nil {
		return err
	}
	report := assessment.Sanitize(raw)
	if err := report.Validate(); err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Loading reference data..."
	s.Start()
	repo, closeFn, err := openReference(cmd, opts.reference)
	s.Stop()
	if err != nil {
		return err
	}
	defer closeFn()

	svc := assessment.NewService(repo, zerolog.Nop())
	res, err := svc.Assess(cmd.Context(), report)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}
	return renderResult(cmd.OutOrStdout(), res, opts.output)
}

// request returns the raw request body, from --input or from the flags.
func (o *assessOptions) request(stdin io.Reader) (map[string]interface{}, error) {
	if o.input != "" {
		var data []byte
		var err error
		if o.input == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(o.input)
		}
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse input: %w", err)
		}
		return raw, nil
	}

	raw := map[string]interface{}{
		"mainSymptom": o.mainSymptom,
		"symptoms":    o.symptoms,
		"conditions":  o.conditions,
		"duration":    o.duration,
		"severity":    o.severity,
	}
	for key, v := range map[string]string{"ageRange": o.ageRange, "smoking": o.smoking, "alcohol": o.alcohol} {
		if v != "" {
			raw[key] = v
		}
	}
	return raw, nil
}

func openReference(cmd *cobra.Command, path string) (assessment.ReferenceRepository, func(), error) {
	if path != "" {
		repo, err := assessment.LoadReferenceFile(path)
		return repo, func() {}, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.ReferenceFile != "" {
		repo, err := assessment.LoadReferenceFile(cfg.ReferenceFile)
		return repo, func() {}, err
	}
	pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return assessment.NewReferenceRepoPG(pool), pool.Close, nil
}
