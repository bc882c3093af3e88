// Package migrate converts legacy *_DEVSBX repository variables into
// CONTEXT_<issue> records enriched with fields scraped from the request issue.
//
// Field extraction (extract.go), scheduling (schedule.go) and record
// transformation (transform.go) are pure; the Migrator (migrator.go) drives
// them against a Gateway.
package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record naming and fixed payload values.
const (
	LegacySuffix    = "_DEVSBX"
	NewRecordPrefix = "CONTEXT_"

	StatusAwaiting    = "Awaiting"
	RequestID         = "request-dev-sandbox"
	JobID             = "dev-sandbox-expiry"
	EnvDevHub         = "devhub"
	ValidIssue        = "true"
	DefaultDaysToKeep = "15"
)

// IsLegacyName reports whether a variable name follows the legacy convention.
func IsLegacyName(name string) bool {
	return strings.HasSuffix(name, LegacySuffix)
}

// NewRecordName returns the variable name the migrated record is stored under.
func NewRecordName(issueNumber int) string {
	return NewRecordPrefix + strconv.Itoa(issueNumber)
}

// LegacyRecord is the decoded value of a *_DEVSBX variable.
type LegacyRecord struct {
	IssueNumber int    `json:"issueNumber"`
	CreatedAt   int64  `json:"createdAt"` // epoch milliseconds
	ExpiryDays  int64  `json:"expiry"`    // stored as a string-encoded integer
	Requester   string `json:"requester"`
	Status      string `json:"status"`
	Name        string `json:"name"` // sandbox name
}

// UnmarshalJSON accepts issueNumber, createdAt and expiry either as JSON
// numbers or as numeric strings, the way the records were written over time.
func (r *LegacyRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		IssueNumber json.RawMessage `json:"issueNumber"`
		CreatedAt   json.RawMessage `json:"createdAt"`
		Expiry      json.RawMessage `json:"expiry"`
		Requester   string          `json:"requester"`
		Status      string          `json:"status"`
		Name        string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	issue, ok, err := rawInteger(raw.IssueNumber)
	if err != nil {
		return fmt.Errorf("issueNumber: %w", err)
	}
	if !ok {
		return fmt.Errorf("issueNumber: missing")
	}
	createdAt, ok, err := rawInteger(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	if !ok {
		return fmt.Errorf("createdAt: missing")
	}
	expiryText, err := rawText(raw.Expiry)
	if err != nil {
		return fmt.Errorf("expiry: %w", err)
	}
	expiry, err := ParseExpiryDays(expiryText)
	if err != nil {
		return fmt.Errorf("expiry: %w", err)
	}

	*r = LegacyRecord{
		IssueNumber: int(issue),
		CreatedAt:   createdAt,
		ExpiryDays:  expiry,
		Requester:   raw.Requester,
		Status:      raw.Status,
		Name:        raw.Name,
	}
	return nil
}

// rawInteger decodes a JSON number or numeric string. ok is false for an
// absent or null value.
func rawInteger(raw json.RawMessage) (n int64, ok bool, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false, nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false, err
		}
	} else {
		s = string(raw)
	}
	s = strings.TrimSpace(s)
	if i, perr := strconv.ParseInt(s, 10, 64); perr == nil {
		return i, true, nil
	}
	// Timestamps written from JavaScript may carry an exponent or fraction.
	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not an integer: %s", string(raw))
	}
	return int64(f), true, nil
}

// rawText decodes a JSON string, or renders a JSON number as text.
func rawText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// DecodeLegacyRecord parses and validates the JSON value of a legacy variable.
func DecodeLegacyRecord(variable, value string) (LegacyRecord, error) {
	var rec LegacyRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return LegacyRecord{}, &MalformedRecordError{Variable: variable, Err: err}
	}
	if rec.IssueNumber <= 0 {
		return LegacyRecord{}, &MalformedRecordError{
			Variable: variable,
			Err:      fmt.Errorf("issueNumber must be positive, got %d", rec.IssueNumber),
		}
	}
	return rec, nil
}

// ExtractedFields are the values scraped from the request issue body.
type ExtractedFields struct {
	SourceSandbox string `json:"sourceSandbox"`
	DaysToKeep    string `json:"daysToKeep"`
	UserEmail     string `json:"userEmail"`
}

// NewRecord is the value stored under CONTEXT_<issueNumber>.
//
// Status is always "Awaiting" while Payload.Status carries the legacy
// record's own status. Both are kept as the downstream scheduler reads them.
type NewRecord struct {
	Status  string  `json:"status"`
	Payload Payload `json:"payload"`
}

// Payload is the job context consumed by the sandbox expiry job.
type Payload struct {
	ID                   string `json:"id"`
	SourceSB             string `json:"sourceSB"`
	DaysToKeep           string `json:"daysToKeep"`
	Email                string `json:"email"`
	IssueNumber          int    `json:"issueNumber"`
	RepoOwner            string `json:"repoOwner"`
	RepoName             string `json:"repoName"`
	IssueCreator         string `json:"issueCreator"`
	ValidIssue           string `json:"valid_issue"`
	Env                  string `json:"env"`
	Status               string `json:"status"`
	SandboxName          string `json:"sandboxName"`
	DevHubAuthRequired   bool   `json:"devHubAuthRequired"`
	JobID                string `json:"jobId"`
	Username             string `json:"username"`
	JobToBeExecutedAfter int64  `json:"jobToBeExecutedAfter"`
}

// Encode renders the record as the compact JSON stored in the variable value.
// HTML escaping is off so emails and names are stored verbatim.
func (r NewRecord) Encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
