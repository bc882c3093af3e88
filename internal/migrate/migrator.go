package migrate

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/flxbl-io/sfops-migrator/internal/github"
	"github.com/flxbl-io/sfops-migrator/internal/ui"
)

const scopeName = "github.com/flxbl-io/sfops-migrator/migrate"

// Options parameterize a migration run. They are resolved once at startup
// and never read from the environment by the engine.
type Options struct {
	Owner string
	Repo  string

	// PerformCleanup annotates each request issue with the request marker
	// and deletes the legacy variable once its CONTEXT_ record is created.
	PerformCleanup bool

	// DryRun performs every read but no write.
	DryRun bool
}

// Outcome is the terminal state of one candidate.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped" // CONTEXT_ record already present
	OutcomeCreated Outcome = "created" // CONTEXT_ record created, legacy kept
	OutcomeCleaned Outcome = "cleaned" // CONTEXT_ record created, legacy deleted
	OutcomePlanned Outcome = "planned" // dry run: would be created
)

// CandidateResult records what happened to one legacy variable.
type CandidateResult struct {
	Variable             string  `json:"variable" yaml:"variable"`
	IssueNumber          int     `json:"issue_number" yaml:"issue_number"`
	Target               string  `json:"target" yaml:"target"`
	Outcome              Outcome `json:"outcome" yaml:"outcome"`
	Annotated            bool    `json:"annotated" yaml:"annotated"`
	JobToBeExecutedAfter int64   `json:"job_to_be_executed_after" yaml:"job_to_be_executed_after"`
}

// Summary is the report of a run. On abort it covers the processed prefix.
type Summary struct {
	Owner      string            `json:"owner" yaml:"owner"`
	Repo       string            `json:"repo" yaml:"repo"`
	DryRun     bool              `json:"dry_run" yaml:"dry_run"`
	Candidates int               `json:"candidates" yaml:"candidates"`
	Created    int               `json:"created" yaml:"created"`
	Skipped    int               `json:"skipped" yaml:"skipped"`
	Deleted    int               `json:"deleted" yaml:"deleted"`
	Annotated  int               `json:"annotated" yaml:"annotated"`
	Results    []CandidateResult `json:"results" yaml:"results"`
}

func (s *Summary) record(r CandidateResult) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeCreated:
		s.Created++
	case OutcomeCleaned:
		s.Created++
		s.Deleted++
	}
	if r.Annotated {
		s.Annotated++
	}
}

// Migrator drives the legacy → CONTEXT_ migration for one repository.
// Candidates are processed strictly one after another; the first
// unexpected error aborts the remaining ones.
type Migrator struct {
	gw   Gateway
	opts Options
	out  io.Writer
	now  func() time.Time

	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

// New creates a Migrator writing progress lines to out.
func New(gw Gateway, opts Options, out io.Writer) *Migrator {
	if out == nil {
		out = io.Discard
	}
	outcomes, _ := otel.Meter(scopeName).Int64Counter("sfops.migrate.candidates",
		metric.WithDescription("Legacy variables processed, by outcome"),
	)
	return &Migrator{
		gw:       gw,
		opts:     opts,
		out:      out,
		now:      time.Now,
		tracer:   otel.Tracer(scopeName),
		outcomes: outcomes,
	}
}

// WithClock overrides the wall clock used for jobToBeExecutedAfter.
func (m *Migrator) WithClock(now func() time.Time) *Migrator {
	m.now = now
	return m
}

func (m *Migrator) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

// Run migrates every *_DEVSBX variable of the repository.
func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	ctx, span := m.tracer.Start(ctx, "migrate.Run", trace.WithAttributes(
		attribute.String("sfops.repo", m.opts.Owner+"/"+m.opts.Repo),
		attribute.Bool("sfops.cleanup", m.opts.PerformCleanup),
		attribute.Bool("sfops.dry_run", m.opts.DryRun),
	))
	defer span.End()

	summary := &Summary{Owner: m.opts.Owner, Repo: m.opts.Repo, DryRun: m.opts.DryRun}

	m.printf("%s Starting SFOPS migration for %s\n",
		ui.RenderAccent(ui.IconInfo), ui.RenderBold(m.opts.Owner+"/"+m.opts.Repo))
	if m.opts.DryRun {
		m.printf("%s\n", ui.RenderWarn("Dry run: nothing will be written"))
	}
	m.printf("%s\n", ui.RenderSeparator())

	variables, err := m.gw.ListVariables(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return summary, err
	}

	for _, v := range variables {
		if !IsLegacyName(v.Name) {
			continue
		}
		summary.Candidates++

		result, err := m.migrateOne(ctx, v)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			m.printf("%s %s\n", ui.RenderFailIcon(), ui.RenderFail("Failed to upgrade "+v.Name))
			return summary, fmt.Errorf("upgrading %s: %w", v.Name, err)
		}
		summary.record(*result)
		m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(result.Outcome))))
	}

	m.printf("\n%s %s\n", ui.RenderPassIcon(), ui.RenderPass("SFOPS migration completed successfully"))
	return summary, nil
}

// migrateOne walks one candidate through
// Discovered → Extracted → Transformed → {Skipped | Created → Cleaned}.
func (m *Migrator) migrateOne(ctx context.Context, v github.Variable) (*CandidateResult, error) {
	ctx, span := m.tracer.Start(ctx, "migrate.Candidate",
		trace.WithAttributes(attribute.String("sfops.variable.name", v.Name)))
	defer span.End()

	m.printf("\n%s Upgrading variable: %s\n", ui.RenderAccent(ui.IconInfo), v.Name)

	legacy, err := DecodeLegacyRecord(v.Name, v.Value)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("sfops.issue.number", legacy.IssueNumber))

	issue, err := m.gw.FetchIssueByNumber(ctx, legacy.IssueNumber)
	if err != nil {
		return nil, err
	}
	m.printf("  %sIssue #%d: %s\n", ui.TreeChild, legacy.IssueNumber, ui.Inline(issue.Title, ui.MaxInlineWidth))

	fields := ExtractFields(issue.Body)
	m.printf("  %sFetched issue details (source %q, keep %s days, email %q)\n", ui.TreeChild,
		ui.Inline(fields.SourceSandbox, ui.MaxInlineWidth/3),
		ui.Inline(fields.DaysToKeep, ui.MaxInlineWidth/3),
		ui.Inline(fields.UserEmail, ui.MaxInlineWidth/3))

	result := &CandidateResult{
		Variable:    v.Name,
		IssueNumber: legacy.IssueNumber,
		Target:      NewRecordName(legacy.IssueNumber),
	}

	if m.opts.PerformCleanup {
		annotated, err := m.annotate(ctx, issue, legacy.IssueNumber, fields)
		if err != nil {
			return nil, err
		}
		result.Annotated = annotated
	}

	record := Transform(m.opts.Owner, m.opts.Repo, legacy, fields, m.now())
	result.JobToBeExecutedAfter = record.Payload.JobToBeExecutedAfter

	if _, err := m.gw.GetVariable(ctx, result.Target); err == nil {
		m.printf("  %s%s Variable %s already exists. Skipping...\n", ui.TreeLast, ui.RenderSkipIcon(), result.Target)
		result.Outcome = OutcomeSkipped
		return result, nil
	} else if !github.IsNotFound(err) {
		return nil, fmt.Errorf("checking %s: %w", result.Target, err)
	}

	value, err := record.Encode()
	if err != nil {
		return nil, err
	}

	if m.opts.DryRun {
		m.printf("  %s%s Would create variable %s\n", ui.TreeLast, ui.RenderWarnIcon(), result.Target)
		if m.opts.PerformCleanup {
			m.printf("  %s%s Would delete old variable %s\n", ui.TreeLast, ui.RenderWarnIcon(), v.Name)
		}
		result.Outcome = OutcomePlanned
		return result, nil
	}

	if err := m.gw.CreateVariable(ctx, result.Target, value); err != nil {
		return nil, err
	}
	m.printf("  %s%s Created new variable: %s\n", ui.TreeLast, ui.RenderPassIcon(), result.Target)
	result.Outcome = OutcomeCreated

	if !m.opts.PerformCleanup {
		return result, nil
	}

	if err := m.gw.DeleteVariable(ctx, v.Name); err != nil {
		return nil, err
	}
	m.printf("  %s%s Deleted old variable: %s\n", ui.TreeLast, ui.RenderPassIcon(), v.Name)
	result.Outcome = OutcomeCleaned
	return result, nil
}

// annotate appends the request marker to the issue body unless it is
// already there. It reports whether the issue was (or would be) updated.
func (m *Migrator) annotate(ctx context.Context, issue *github.Issue, number int, fields ExtractedFields) (bool, error) {
	body, changed := AnnotateBody(issue.Body, Marker(fields))
	if !changed {
		m.printf("  %s%s Issue #%d already carries the request marker\n", ui.TreeChild, ui.RenderSkipIcon(), number)
		return false, nil
	}
	if m.opts.DryRun {
		m.printf("  %s%s Would update issue #%d with the request marker\n", ui.TreeChild, ui.RenderWarnIcon(), number)
		return true, nil
	}
	if _, err := m.gw.UpdateIssueBody(ctx, number, body); err != nil {
		return false, err
	}
	m.printf("  %s%s Updated issue #%d with the request marker\n", ui.TreeChild, ui.RenderPassIcon(), number)
	return true, nil
}
