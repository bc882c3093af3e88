package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/flxbl-io/sfops-migrator/internal/debug"
)

// Config keys.
const (
	KeyGitHubToken  = "github.token"
	KeyGitHubAPIURL = "github.api-url"
	KeyCleanup      = "migrate.cleanup"
	KeyDryRun       = "migrate.dry-run"
	KeyHTTPTimeout  = "http.timeout"
	KeyMaxRetries   = "http.max-retries"
	KeyVerbose      = "verbose"
	KeyQuiet        = "quiet"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton
// Should be called once at application startup
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Precedence: project .sfops/config.yaml > $XDG_CONFIG_HOME/sfops/config.yaml
	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".sfops", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "sfops", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file,
	// e.g. SFOPS_MIGRATE_DRY_RUN maps to migrate.dry-run.
	v.SetEnvPrefix("SFOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The token is also read from the GITHUB_TOKEN every Actions runner exports.
	_ = v.BindEnv(KeyGitHubToken, "SFOPS_GITHUB_TOKEN", "GITHUB_TOKEN")

	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyGitHubAPIURL, "https://api.github.com")
	v.SetDefault(KeyCleanup, true)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyHTTPTimeout, "30s")
	v.SetDefault(KeyMaxRetries, 3)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyQuiet, false)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("Debug: loaded config from %s\n", v.ConfigFileUsed())
	} else {
		debug.Logf("Debug: no config.yaml found; using defaults and environment variables\n")
	}

	return nil
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// ResetForTesting drops the singleton so tests start from a clean slate.
func ResetForTesting() {
	v = nil
}
