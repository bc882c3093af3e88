package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flxbl-io/sfops-migrator/internal/migrate"
	"github.com/flxbl-io/sfops-migrator/internal/ui"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveFormat folds --json into --format and validates the result.
func resolveFormat(flags *cliFlags) (string, error) {
	if flags.jsonOutput {
		return formatJSON, nil
	}
	f := strings.ToLower(strings.TrimSpace(flags.format))
	switch f {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", flags.format)
}

// outputJSON writes v as pretty-printed JSON.
func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputYAML writes v as a YAML document.
func outputYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// writeSummary renders the run summary in the requested format.
func writeSummary(w io.Writer, s *migrate.Summary, format string) error {
	switch format {
	case formatJSON:
		return outputJSON(w, s)
	case formatYAML:
		return outputYAML(w, s)
	}

	verb := "created"
	if s.DryRun {
		verb = "planned"
	}
	planned := 0
	for _, r := range s.Results {
		if r.Outcome == migrate.OutcomePlanned {
			planned++
		}
	}
	count := s.Created
	if s.DryRun {
		count = planned
	}
	_, err := fmt.Fprintf(w, "%s %d legacy variable(s): %d %s, %d skipped, %d deleted, %d issue(s) annotated\n",
		ui.RenderMuted("Summary:"), s.Candidates, count, verb, s.Skipped, s.Deleted, s.Annotated)
	return err
}
