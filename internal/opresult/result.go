// Package opresult defines the result of pull request rewrite operations.
package opresult

import (
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusSuccess          Status = "success"
	StatusSkipped          Status = "skipped"
	StatusSkippedNoChanges Status = "skipped-no-changes"
	StatusFailed           Status = "failed"
)

// Result describes the outcome of an operation.
// It is marshaled to JSON as:
//
//	{"<operation>Needed": bool, "result": "<status>", "sha": "...", "error": "..."}
type Result struct {
	Operation string
	Needed    bool
	Status    Status
	// SHA is the new head commit, it is only set on success.
	SHA string
	// Err is only set when Status is StatusFailed.
	Err error
}

func Success(operation, sha string) *Result {
	return &Result{
		Operation: operation,
		Needed:    true,
		Status:    StatusSuccess,
		SHA:       sha,
	}
}

// Skipped returns a result for an operation that was not needed.
func Skipped(operation string) *Result {
	return &Result{
		Operation: operation,
		Status:    StatusSkipped,
	}
}

// NoChanges returns a result for an operation that was needed but would not
// have changed any content.
func NoChanges(operation string) *Result {
	return &Result{
		Operation: operation,
		Needed:    true,
		Status:    StatusSkippedNoChanges,
	}
}

func Failed(operation string, err error) *Result {
	return &Result{
		Operation: operation,
		Needed:    true,
		Status:    StatusFailed,
		Err:       err,
	}
}

func (r *Result) Failed() bool {
	return r.Status == StatusFailed
}

func (r *Result) String() string {
	switch r.Status {
	case StatusSuccess:
		return fmt.Sprintf("%s: %s, new head: %s", r.Operation, r.Status, r.SHA)
	case StatusFailed:
		return fmt.Sprintf("%s: %s: %s", r.Operation, r.Status, r.Err)
	default:
		return fmt.Sprintf("%s: %s", r.Operation, r.Status)
	}
}

func (r *Result) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		r.Operation + "Needed": r.Needed,
		"result":               r.Status,
	}

	if r.SHA != "" {
		m["sha"] = r.SHA
	}

	if r.Err != nil {
		m["error"] = r.Err.Error()
	}

	return json.Marshal(m)
}
