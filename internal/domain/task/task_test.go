package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTaskMergePrecedence(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	basic := Basic{
		UUID:            "uuid-1",
		PrettyID:        7,
		EnforcementName: "from-basic",
		Status:          "in_progress",
		StartedAt:       started,
	}
	full := Full{
		Basic: Basic{
			UUID:   "uuid-1",
			Status: "success",
		},
	}

	merged := NewTask(basic, full)

	assert.Equal(t, "success", merged.Status, "full's value wins for shared fields")
	assert.Equal(t, "from-basic", merged.EnforcementName, "basic fills fields full left empty")
	assert.Equal(t, 7, merged.PrettyID)
	assert.Equal(t, started, merged.StartedAt)
	assert.Equal(t, KindTask, merged.Kind())
}

func TestNewTaskActionTypes(t *testing.T) {
	tests := []struct {
		name     string
		full     Full
		expected []string
	}{
		{
			name: "first seen order across success failure post",
			full: Full{
				ResultsSuccess: []Result{
					{ActionName: "s1", ActionType: "isolate"},
					{ActionName: "s2", ActionType: "notify"},
				},
				ResultsFailure: []Result{
					{ActionName: "f1", ActionType: "isolate"},
					{ActionName: "f2", ActionType: "tag"},
				},
				ResultsPost: []Result{
					{ActionName: "p1", ActionType: "notify"},
					{ActionName: "p2", ActionType: "scan"},
				},
			},
			expected: []string{"isolate", "notify", "tag", "scan"},
		},
		{
			name:     "no results",
			full:     Full{},
			expected: nil,
		},
		{
			name: "empty action types skipped",
			full: Full{
				ResultsSuccess: []Result{{ActionName: "s1"}},
				ResultsPost:    []Result{{ActionName: "p1", ActionType: "tag"}},
			},
			expected: []string{"tag"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := NewTask(Basic{}, tt.full)
			assert.Equal(t, tt.expected, merged.ActionTypes)
		})
	}
}

func TestRecordKinds(t *testing.T) {
	assert.Equal(t, KindBasic, Basic{}.Kind())
	assert.Equal(t, KindFull, Full{}.Kind())
	assert.Equal(t, KindTask, Task{}.Kind())
}
