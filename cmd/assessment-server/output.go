package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/healthcheckup/assessment/internal/domain/assessment"
)

// renderResult writes res in the requested format: "json", "yaml" or
// "human".
func renderResult(w io.Writer, res *assessment.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		renderHuman(w, res)
		return nil
	}
}

func renderHuman(w io.Writer, res *assessment.Result) {
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "POSSIBLE CONDITION:")
	fmt.Fprintf(w, "   %s (%d%% match)\n", res.PossibleCondition, res.MatchConfidence)
	if res.Information != "" {
		fmt.Fprintf(w, "   %s\n", res.Information)
	}
	fmt.Fprintln(w)

	urgencyColor(res.UrgencyLevel).Fprintf(w, "URGENCY: %d/100\n", res.UrgencyLevel)
	if res.SeekImmediateCare {
		color.New(color.FgRed, color.Bold).Fprintln(w, "   Seek immediate medical care.")
	}
	fmt.Fprintln(w)

	if len(res.Recommendations) > 0 {
		white.Fprintln(w, "RECOMMENDATIONS:")
		for i, r := range res.Recommendations {
			fmt.Fprintf(w, "   %d. %s\n", i+1, r)
		}
		fmt.Fprintln(w)
	}

	if len(res.Alternatives) > 0 {
		white.Fprintln(w, "ALSO CONSIDERED:")
		for _, a := range res.Alternatives {
			fmt.Fprintf(w, "   - %s (%d%%)\n", a.Condition, a.Confidence)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintln(w, color.HiBlackString(res.Disclaimer))
}

func urgencyColor(urgency int) *color.Color {
	switch assessment.DefaultRules().Tier(urgency) {
	case assessment.TierImmediate:
		return color.New(color.FgRed, color.Bold)
	case assessment.TierSoon:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}
