// Package task defines the enforcement-task domain model: the lightweight
// page row (Basic), the complete detail record (Full), the merged view
// (Task), the tagged Record union the pipeline streams, and the valid-filter
// value object with its per-dimension validators.
package task

import (
	"time"
)

// RecordKind discriminates the concrete type held by a Record.
type RecordKind string

// The possible Record kinds.
const (
	KindBasic RecordKind = "basic"
	KindFull  RecordKind = "full"
	KindTask  RecordKind = "task"
)

// Record is the tagged union over Basic, Full, and Task. It is what the
// materialization pipeline yields and what the export layer consumes.
type Record interface {
	// Kind identifies the concrete record type.
	Kind() RecordKind
}

// Result is one action outcome nested inside a full task record.
type Result struct {
	ActionName    string `json:"action_name"`
	ActionType    string `json:"action_type"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	TotalAffected int    `json:"total_affected"`
}

// Basic is one row of a task page: the minimal identifying fields the list
// endpoint returns. It is immutable once constructed.
type Basic struct {
	UUID            string    `json:"uuid"`
	PrettyID        int       `json:"pretty_id"`
	EnforcementName string    `json:"enforcement_name"`
	EnforcementID   string    `json:"enforcement_id"`
	DiscoveryID     string    `json:"discovery_id"`
	Status          string    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	SuccessCount    int       `json:"success_count"`
	FailureCount    int       `json:"failure_count"`
}

// Kind identifies the record as a basic page row.
func (Basic) Kind() RecordKind { return KindBasic }

// Full is the complete detail record for one task, fetched individually by
// id. It is a superset of Basic plus the nested result collections.
type Full struct {
	Basic

	ResultMain     Result   `json:"result_main"`
	ResultsSuccess []Result `json:"results_success"`
	ResultsFailure []Result `json:"results_failure"`
	ResultsPost    []Result `json:"results_post"`
	Results        []Result `json:"results"`
}

// Kind identifies the record as a full detail record.
func (Full) Kind() RecordKind { return KindFull }

// Task is the merged view of a Basic page row and its Full detail record,
// with computed fields derived from the merged result collections.
type Task struct {
	Full

	ActionTypes []string `json:"action_types"`
}

// Kind identifies the record as a merged task.
func (Task) Kind() RecordKind { return KindTask }

// NewTask merges a basic page row with its full detail record. The full
// record's values take precedence for overlapping fields; basic only fills
// fields the full payload left empty. ActionTypes is computed from the
// merged result collections.
func NewTask(basic Basic, full Full) Task {
	merged := full
	fillFromBasic(&merged.Basic, basic)
	return Task{Full: merged, ActionTypes: actionTypes(merged)}
}

// fillFromBasic copies basic's values into any field the full payload left
// at its zero value, mirroring a dict merge where full's keys win.
func fillFromBasic(dst *Basic, basic Basic) {
	if dst.UUID == "" {
		dst.UUID = basic.UUID
	}
	if dst.PrettyID == 0 {
		dst.PrettyID = basic.PrettyID
	}
	if dst.EnforcementName == "" {
		dst.EnforcementName = basic.EnforcementName
	}
	if dst.EnforcementID == "" {
		dst.EnforcementID = basic.EnforcementID
	}
	if dst.DiscoveryID == "" {
		dst.DiscoveryID = basic.DiscoveryID
	}
	if dst.Status == "" {
		dst.Status = basic.Status
	}
	if dst.StartedAt.IsZero() {
		dst.StartedAt = basic.StartedAt
	}
	if dst.FinishedAt.IsZero() {
		dst.FinishedAt = basic.FinishedAt
	}
	if dst.SuccessCount == 0 {
		dst.SuccessCount = basic.SuccessCount
	}
	if dst.FailureCount == 0 {
		dst.FailureCount = basic.FailureCount
	}
}

// actionTypes projects the unique action types out of the result
// collections, ordered by first appearance across success, failure, then
// post results.
func actionTypes(f Full) []string {
	seen := make(map[string]struct{})
	var out []string

	collections := [][]Result{f.ResultsSuccess, f.ResultsFailure, f.ResultsPost}
	for _, results := range collections {
		for _, r := range results {
			if r.ActionType == "" {
				continue
			}
			if _, ok := seen[r.ActionType]; ok {
				continue
			}
			seen[r.ActionType] = struct{}{}
			out = append(out, r.ActionType)
		}
	}
	return out
}
