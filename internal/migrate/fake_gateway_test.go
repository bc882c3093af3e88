package migrate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/flxbl-io/sfops-migrator/internal/github"
)

// fakeGateway is an in-memory Gateway that records every call.
type fakeGateway struct {
	variables map[string]string
	issues    map[int]*github.Issue
	calls     []string

	// failOn makes the named operation ("GetVariable:CONTEXT_7") return the error.
	failOn map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		variables: map[string]string{},
		issues:    map[int]*github.Issue{},
		failOn:    map[string]error{},
	}
}

func (f *fakeGateway) call(op string) error {
	f.calls = append(f.calls, op)
	return f.failOn[op]
}

func (f *fakeGateway) ListVariables(ctx context.Context) ([]github.Variable, error) {
	if err := f.call("ListVariables"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.variables))
	for name := range f.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]github.Variable, 0, len(names))
	for _, name := range names {
		out = append(out, github.Variable{Name: name, Value: f.variables[name]})
	}
	return out, nil
}

func (f *fakeGateway) GetVariable(ctx context.Context, name string) (*github.Variable, error) {
	if err := f.call("GetVariable:" + name); err != nil {
		return nil, err
	}
	value, ok := f.variables[name]
	if !ok {
		return nil, &github.APIError{StatusCode: 404, Method: "GET", URL: name, Message: "Not Found"}
	}
	return &github.Variable{Name: name, Value: value}, nil
}

func (f *fakeGateway) CreateVariable(ctx context.Context, name, value string) error {
	if err := f.call("CreateVariable:" + name); err != nil {
		return err
	}
	if _, ok := f.variables[name]; ok {
		return &github.APIError{StatusCode: 409, Method: "POST", URL: name, Message: "Already exists"}
	}
	f.variables[name] = value
	return nil
}

func (f *fakeGateway) DeleteVariable(ctx context.Context, name string) error {
	if err := f.call("DeleteVariable:" + name); err != nil {
		return err
	}
	if _, ok := f.variables[name]; !ok {
		return &github.APIError{StatusCode: 404, Method: "DELETE", URL: name, Message: "Not Found"}
	}
	delete(f.variables, name)
	return nil
}

func (f *fakeGateway) FetchIssueByNumber(ctx context.Context, number int) (*github.Issue, error) {
	if err := f.call(fmt.Sprintf("FetchIssueByNumber:%d", number)); err != nil {
		return nil, err
	}
	issue, ok := f.issues[number]
	if !ok {
		return nil, &github.APIError{StatusCode: 404, Method: "GET", URL: fmt.Sprint(number), Message: "Not Found"}
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeGateway) UpdateIssueBody(ctx context.Context, number int, body string) (*github.Issue, error) {
	if err := f.call(fmt.Sprintf("UpdateIssueBody:%d", number)); err != nil {
		return nil, err
	}
	issue, ok := f.issues[number]
	if !ok {
		return nil, errors.New("no such issue")
	}
	issue.Body = body
	cp := *issue
	return &cp, nil
}

// callsWithPrefix returns the recorded calls starting with prefix.
func (f *fakeGateway) callsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

// snapshot copies the variable map for before/after comparisons.
func (f *fakeGateway) snapshot() map[string]string {
	out := make(map[string]string, len(f.variables))
	for k, v := range f.variables {
		out[k] = v
	}
	return out
}
