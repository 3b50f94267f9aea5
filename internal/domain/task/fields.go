package task

import (
	"github.com/seclens/seclens-go/internal/schema"
)

// Field tables for the task models. Declaration order drives header order
// and the explode recursion; json tag names on the structs must match the
// declared names here.
var (
	// TableResult describes one nested action outcome.
	TableResult = schema.NewTable(
		schema.Field{Name: "action_name", Type: schema.TypeString, Description: "Configured name of the action"},
		schema.Field{Name: "action_type", Type: schema.TypeString, Description: "Action type identifier"},
		schema.Field{Name: "status", Type: schema.TypeString, Description: "Outcome status of the action"},
		schema.Field{Name: "message", Type: schema.TypeString, Description: "Result message", Nullable: true},
		schema.Field{Name: "total_affected", Type: schema.TypeInt, Description: "Number of assets the action touched", Default: "0"},
	)

	// TableBasic describes one task page row.
	TableBasic = schema.NewTable(
		schema.Field{Name: "uuid", Type: schema.TypeString, Description: "Internal task id", Required: true},
		schema.Field{Name: "pretty_id", Type: schema.TypeInt, Description: "Sequential human-facing run id", Required: true},
		schema.Field{Name: "enforcement_name", Type: schema.TypeString, Description: "Name of the enforcement that ran"},
		schema.Field{Name: "enforcement_id", Type: schema.TypeString, Description: "Internal enforcement reference", Hidden: true},
		schema.Field{Name: "discovery_id", Type: schema.TypeString, Description: "Discovery cycle that triggered the task", Nullable: true},
		schema.Field{Name: "status", Type: schema.TypeString, Description: "Task status"},
		schema.Field{Name: "started_at", Type: schema.TypeDateTime, Description: "When the task started", Nullable: true},
		schema.Field{Name: "finished_at", Type: schema.TypeDateTime, Description: "When the task finished", Nullable: true},
		schema.Field{Name: "success_count", Type: schema.TypeInt, Description: "Successful action count", Default: "0"},
		schema.Field{Name: "failure_count", Type: schema.TypeInt, Description: "Failed action count", Default: "0"},
	)

	// TableFull extends TableBasic with the nested result collections.
	TableFull = schema.NewTable(append(TableBasic.Fields(),
		schema.Field{Name: "result_main", Type: schema.TypeObject, Description: "Main action result", Nested: TableResult},
		schema.Field{Name: "results_success", Type: schema.TypeListObject, Description: "Successful action results", Nested: TableResult},
		schema.Field{Name: "results_failure", Type: schema.TypeListObject, Description: "Failed action results", Nested: TableResult},
		schema.Field{Name: "results_post", Type: schema.TypeListObject, Description: "Post action results", Nested: TableResult},
		schema.Field{Name: "results", Type: schema.TypeListObject, Description: "All action results", Hidden: true, Nested: TableResult},
	)...)

	// TableTask extends TableFull with the computed fields.
	TableTask = schema.NewTable(append(TableFull.Fields(),
		schema.Field{Name: "action_types", Type: schema.TypeListString, Description: "Unique action types across results"},
	)...)
)

// TableFor returns the field table matching a record's kind.
func TableFor(r Record) *schema.Table {
	switch r.Kind() {
	case KindFull:
		return TableFull
	case KindTask:
		return TableTask
	default:
		return TableBasic
	}
}
