package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seclens/seclens-go/internal/app/tasks"
	"github.com/seclens/seclens-go/internal/config"
	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/internal/export"
	"github.com/seclens/seclens-go/internal/paging"
	"github.com/seclens/seclens-go/internal/schema"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Work with enforcement tasks",
}

type tasksGetOptions struct {
	asBasic   bool
	asFull    bool
	explode   bool
	schemas   bool
	format    string
	output    string
	overwrite bool

	pageSize  int
	pageSleep time.Duration
	rowStart  int
	rowStop   int

	actions      []string
	discoveries  []string
	enforcements []string
	runs         []string
	statuses     []string
	search       string
}

var tasksGetFlags tasksGetOptions

var tasksGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch enforcement tasks and export them",
	Long: `Fetch enforcement tasks page by page and export them.

Filter values prefixed with ~ are treated as case-insensitive regular
expressions matched against the server's valid values, e.g.
--status '~^err' or --enforcement '~isolate'.`,
	RunE: runTasksGet,
}

var tasksFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show the valid filter values the server currently accepts",
	RunE:  runTasksFilters,
}

func init() {
	f := tasksGetCmd.Flags()
	f.BoolVar(&tasksGetFlags.asBasic, "as-basic", false, "return page rows only, skipping per-task detail fetches")
	f.BoolVar(&tasksGetFlags.asFull, "as-full", false, "return full detail records without merging")
	f.BoolVar(&tasksGetFlags.explode, "explode", false, "flatten nested result lists into one row per element")
	f.BoolVar(&tasksGetFlags.schemas, "schemas", false, "include field metadata in the output")
	f.StringVar(&tasksGetFlags.format, "format", "json", "output format: json, csv, or table")
	f.StringVarP(&tasksGetFlags.output, "output", "o", "", "write to a file instead of stdout")
	f.BoolVar(&tasksGetFlags.overwrite, "overwrite", false, "replace the output file if it exists")

	f.IntVar(&tasksGetFlags.pageSize, "page-size", 0, "rows per page (default from config)")
	f.DurationVar(&tasksGetFlags.pageSleep, "page-sleep", 0, "delay between page fetches (default from config)")
	f.IntVar(&tasksGetFlags.rowStart, "row-start", 0, "absolute row offset to start at")
	f.IntVar(&tasksGetFlags.rowStop, "row-stop", 0, "absolute row index to stop before (0 = no bound)")

	f.StringArrayVar(&tasksGetFlags.actions, "action", nil, "filter by action name")
	f.StringArrayVar(&tasksGetFlags.discoveries, "discovery", nil, "filter by discovery cycle id")
	f.StringArrayVar(&tasksGetFlags.enforcements, "enforcement", nil, "filter by enforcement name")
	f.StringArrayVar(&tasksGetFlags.runs, "run", nil, "filter by run (pretty) id")
	f.StringArrayVar(&tasksGetFlags.statuses, "status", nil, "filter by task status")
	f.StringVar(&tasksGetFlags.search, "search", "", "free-text search")

	tasksGetCmd.MarkFlagsMutuallyExclusive("as-basic", "as-full")

	tasksCmd.AddCommand(tasksGetCmd, tasksFiltersCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger()

	format, err := export.ParseFormat(tasksGetFlags.format)
	if err != nil {
		return err
	}

	svc, cfg, err := newService(log)
	if err != nil {
		return err
	}

	criteria, err := buildCriteria(cmd, svc)
	if err != nil {
		return err
	}

	mode := tasks.ModeTask
	switch {
	case tasksGetFlags.asBasic:
		mode = tasks.ModeBasic
	case tasksGetFlags.asFull:
		mode = tasks.ModeFull
	}

	records, err := svc.Get(ctx, tasks.GetOptions{
		Mode: mode,
		Paging: pagingConfig(tasksGetFlags, cfg.Paging,
			cmd.Flags().Changed("page-size"), cmd.Flags().Changed("page-sleep")),
		Criteria: criteria,
	})
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if tasksGetFlags.output != "" {
		f, err := export.CreateFile(tasksGetFlags.output, tasksGetFlags.overwrite)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	tbl := tableForMode(mode)
	values := make([]any, len(records))
	for i, rec := range records {
		values[i] = rec
	}

	return export.Write(out, format, tbl, values, export.Options{
		Explode:     tasksGetFlags.explode,
		WithSchemas: tasksGetFlags.schemas,
	})
}

// pagingConfig resolves the effective paging parameters for one invocation:
// the configured defaults apply unless the corresponding flag was set
// explicitly. The row window has no config counterpart and always comes
// from the flags.
func pagingConfig(opts tasksGetOptions, defaults config.Paging, sizeSet, sleepSet bool) paging.Config {
	cfg := paging.Config{
		PageSize: defaults.PageSize,
		Sleep:    defaults.Sleep,
		RowStart: opts.rowStart,
		RowStop:  opts.rowStop,
	}
	if sizeSet {
		cfg.PageSize = opts.pageSize
	}
	if sleepSet {
		cfg.Sleep = opts.pageSleep
	}
	return cfg
}

// buildCriteria validates the filter flag values against the server's
// current valid sets and translates them into server-side criteria. The
// valid-filters endpoint is only hit when a filter flag was given.
func buildCriteria(cmd *cobra.Command, svc *tasks.Service) (task.Criteria, error) {
	f := tasksGetFlags
	criteria := task.Criteria{Search: f.search}

	noFilters := len(f.actions) == 0 && len(f.discoveries) == 0 &&
		len(f.enforcements) == 0 && len(f.runs) == 0 && len(f.statuses) == 0
	if noFilters {
		return criteria, nil
	}

	filters, err := svc.GetFilters(cmd.Context())
	if err != nil {
		return task.Criteria{}, err
	}

	if len(f.actions) > 0 {
		if criteria.ActionNames, err = filters.CheckActionNames(f.actions); err != nil {
			return task.Criteria{}, err
		}
	}
	if len(f.discoveries) > 0 {
		if criteria.DiscoveryIDs, err = filters.CheckDiscoveryIDs(f.discoveries); err != nil {
			return task.Criteria{}, err
		}
	}
	if len(f.enforcements) > 0 {
		if criteria.EnforcementIDs, err = filters.CheckEnforcementNames(f.enforcements); err != nil {
			return task.Criteria{}, err
		}
	}
	if len(f.runs) > 0 {
		if criteria.RunIDs, err = filters.CheckRunIDs(f.runs); err != nil {
			return task.Criteria{}, err
		}
	}
	if len(f.statuses) > 0 {
		if criteria.Statuses, err = filters.CheckStatuses(f.statuses); err != nil {
			return task.Criteria{}, err
		}
	}

	return criteria, nil
}

func tableForMode(mode tasks.Mode) *schema.Table {
	switch mode {
	case tasks.ModeBasic:
		return task.TableBasic
	case tasks.ModeFull:
		return task.TableFull
	default:
		return task.TableTask
	}
}

func runTasksFilters(cmd *cobra.Command, args []string) error {
	log := newLogger()

	svc, _, err := newService(log)
	if err != nil {
		return err
	}

	filters, err := svc.GetFilters(cmd.Context())
	if err != nil {
		return err
	}

	w := os.Stdout
	fmt.Fprintf(w, "statuses:          %s\n", strings.Join(filters.EnumStatuses(), ", "))
	fmt.Fprintf(w, "action names:      %s\n", strings.Join(filters.EnumActionNames(), ", "))
	fmt.Fprintf(w, "discovery cycles:  %s\n", strings.Join(filters.EnumDiscoveryIDs(), ", "))
	fmt.Fprintf(w, "enforcement names: %s\n", strings.Join(filters.EnumEnforcementNames(), ", "))

	runs := filters.EnumRunIDs()
	parts := make([]string, len(runs))
	for i, id := range runs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	fmt.Fprintf(w, "run ids:           %s\n", strings.Join(parts, ", "))
	return nil
}
