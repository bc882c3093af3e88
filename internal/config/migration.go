package config

import (
	"fmt"
	"strings"
	"time"
)

// UsageMessage is printed when owner, repo or token is missing.
const UsageMessage = "Please provide a GitHub access token, owner, and repo as command-line arguments."

// ArgumentError reports missing invocation arguments. It is raised before
// any network I/O.
type ArgumentError struct {
	Missing []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s (missing: %s)", UsageMessage, strings.Join(e.Missing, ", "))
}

// MigrationConfig is everything a run needs, resolved once at startup and
// passed down explicitly.
type MigrationConfig struct {
	Owner          string
	Repo           string
	Token          string
	APIURL         string
	PerformCleanup bool
	DryRun         bool
	Timeout        time.Duration
	MaxRetries     int
}

// Resolve builds a MigrationConfig from positional arguments
// (owner, repo, optional token) layered over the loaded configuration.
func Resolve(args []string) MigrationConfig {
	cfg := MigrationConfig{
		Token:          GetString(KeyGitHubToken),
		APIURL:         GetString(KeyGitHubAPIURL),
		PerformCleanup: GetBool(KeyCleanup),
		DryRun:         GetBool(KeyDryRun),
		Timeout:        GetDuration(KeyHTTPTimeout),
		MaxRetries:     GetInt(KeyMaxRetries),
	}
	if len(args) > 0 {
		cfg.Owner = strings.TrimSpace(args[0])
	}
	if len(args) > 1 {
		cfg.Repo = strings.TrimSpace(args[1])
	}
	if len(args) > 2 && strings.TrimSpace(args[2]) != "" {
		cfg.Token = strings.TrimSpace(args[2])
	}
	return cfg
}

// Validate checks that owner, repo and token are present.
func (c MigrationConfig) Validate() error {
	var missing []string
	if c.Owner == "" {
		missing = append(missing, "owner")
	}
	if c.Repo == "" {
		missing = append(missing, "repo")
	}
	if c.Token == "" {
		missing = append(missing, "token")
	}
	if len(missing) > 0 {
		return &ArgumentError{Missing: missing}
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("http.max-retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// MaskToken masks a token for safe display.
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
