package migrate

import (
	"context"

	"github.com/flxbl-io/sfops-migrator/internal/github"
)

// Gateway is the remote store the migration runs against: repository
// variables plus the issues they were requested from. *github.Client
// implements it.
//
// GetVariable must return an error matching github.ErrNotFound when the
// variable does not exist; every other error aborts the run.
type Gateway interface {
	ListVariables(ctx context.Context) ([]github.Variable, error)
	GetVariable(ctx context.Context, name string) (*github.Variable, error)
	CreateVariable(ctx context.Context, name, value string) error
	DeleteVariable(ctx context.Context, name string) error

	FetchIssueByNumber(ctx context.Context, number int) (*github.Issue, error)
	UpdateIssueBody(ctx context.Context, number int, body string) (*github.Issue, error)
}

var _ Gateway = (*github.Client)(nil)
