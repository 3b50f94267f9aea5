package task

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Filter dimension names, used in NotFoundError messages and CLI output.
const (
	DimensionActionNames      = "action_names"
	DimensionDiscoveryIDs     = "discovery_ids"
	DimensionEnforcementNames = "enforcement_names"
	DimensionRunIDs           = "run_ids"
	DimensionStatuses         = "statuses"
)

// DefaultPatternPrefix marks a filter value as a case-insensitive regular
// expression instead of an exact match.
const DefaultPatternPrefix = "~"

// EnforcementRef pairs an enforcement's display name with its internal id.
// Display names are not unique; several tasks may share one name.
type EnforcementRef struct {
	DisplayName string `json:"display_name"`
	ID          string `json:"id"`
}

// Filters is the immutable set of valid filter values the server currently
// accepts, one collection per dimension. Build one from the valid-filters
// endpoint via the transport layer and use the Check methods to translate
// user-supplied names and patterns into enumerated valid values.
type Filters struct {
	actionNames  []string
	discoveryIDs []string
	enforcements []EnforcementRef
	runIDs       []int
	statuses     []string
}

// NewFilters constructs a Filters value object from the raw server-reported
// dimension sets. The inputs are copied; callers keep ownership of their
// slices.
func NewFilters(actionNames, discoveryIDs []string, enforcements []EnforcementRef, runIDs []int, statuses []string) *Filters {
	return &Filters{
		actionNames:  append([]string(nil), actionNames...),
		discoveryIDs: append([]string(nil), discoveryIDs...),
		enforcements: append([]EnforcementRef(nil), enforcements...),
		runIDs:       append([]int(nil), runIDs...),
		statuses:     append([]string(nil), statuses...),
	}
}

// Enforcements returns the enforcement name/id pairs in source order.
func (f *Filters) Enforcements() []EnforcementRef {
	return append([]EnforcementRef(nil), f.enforcements...)
}

// EnumActionNames returns the valid action names, sorted and deduplicated.
func (f *Filters) EnumActionNames() []string { return sortedUnique(f.actionNames) }

// EnumDiscoveryIDs returns the valid discovery cycle ids, sorted and
// deduplicated.
func (f *Filters) EnumDiscoveryIDs() []string { return sortedUnique(f.discoveryIDs) }

// EnumEnforcementNames returns the valid enforcement display names, sorted
// and deduplicated.
func (f *Filters) EnumEnforcementNames() []string {
	names := make([]string, 0, len(f.enforcements))
	for _, ref := range f.enforcements {
		names = append(names, ref.DisplayName)
	}
	return sortedUnique(names)
}

// EnumRunIDs returns the valid run ids in ascending numeric order,
// deduplicated.
func (f *Filters) EnumRunIDs() []int {
	seen := make(map[int]struct{}, len(f.runIDs))
	out := make([]int, 0, len(f.runIDs))
	for _, id := range f.runIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// EnumStatuses returns the valid statuses, sorted and deduplicated.
func (f *Filters) EnumStatuses() []string { return sortedUnique(f.statuses) }

// CheckOption configures a filter check.
type CheckOption func(*checkOptions)

type checkOptions struct {
	failOnMiss    bool
	minimum       int
	asNames       bool
	patternPrefix string
}

// WithSkipMissing silently drops values absent from the valid set instead
// of returning a NotFoundError. A minimum set with WithMinimum is still
// enforced.
func WithSkipMissing() CheckOption {
	return func(o *checkOptions) { o.failOnMiss = false }
}

// WithMinimum enforces a lower bound on the count of matched values. The
// bound applies even when WithSkipMissing is set.
func WithMinimum(n int) CheckOption {
	return func(o *checkOptions) { o.minimum = n }
}

// WithNames makes CheckEnforcementNames return matched display names
// instead of the corresponding ids.
func WithNames() CheckOption {
	return func(o *checkOptions) { o.asNames = true }
}

// WithPatternPrefix overrides the marker that flags a value as a regular
// expression filter.
func WithPatternPrefix(prefix string) CheckOption {
	return func(o *checkOptions) { o.patternPrefix = prefix }
}

func applyCheckOptions(opts []CheckOption) checkOptions {
	o := checkOptions{failOnMiss: true, patternPrefix: DefaultPatternPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CheckActionNames validates values against the action-name dimension.
func (f *Filters) CheckActionNames(values []string, opts ...CheckOption) ([]string, error) {
	return f.checkStrings(DimensionActionNames, f.EnumActionNames(), values, applyCheckOptions(opts))
}

// CheckDiscoveryIDs validates values against the discovery-cycle dimension.
func (f *Filters) CheckDiscoveryIDs(values []string, opts ...CheckOption) ([]string, error) {
	return f.checkStrings(DimensionDiscoveryIDs, f.EnumDiscoveryIDs(), values, applyCheckOptions(opts))
}

// CheckStatuses validates values against the status dimension.
func (f *Filters) CheckStatuses(values []string, opts ...CheckOption) ([]string, error) {
	return f.checkStrings(DimensionStatuses, f.EnumStatuses(), values, applyCheckOptions(opts))
}

// CheckEnforcementNames validates values against the enforcement display
// names and returns the corresponding ids, suitable as a server-side filter
// key. With WithNames it returns the matched display names instead,
// deduplicated in first-match source order.
func (f *Filters) CheckEnforcementNames(values []string, opts ...CheckOption) ([]string, error) {
	o := applyCheckOptions(opts)

	var matched []EnforcementRef
	var missing []string

	for _, value := range values {
		if pattern, ok := strings.CutPrefix(value, o.patternPrefix); ok {
			re, err := compilePattern(DimensionEnforcementNames, pattern)
			if err != nil {
				return nil, err
			}
			for _, ref := range f.enforcements {
				if re.MatchString(ref.DisplayName) {
					matched = append(matched, ref)
				}
			}
			continue
		}

		found := false
		for _, ref := range f.enforcements {
			if ref.DisplayName == value {
				matched = append(matched, ref)
				found = true
			}
		}
		if !found {
			missing = append(missing, value)
		}
	}

	var out []string
	if o.asNames {
		seen := make(map[string]struct{})
		for _, ref := range matched {
			if _, ok := seen[ref.DisplayName]; ok {
				continue
			}
			seen[ref.DisplayName] = struct{}{}
			out = append(out, ref.DisplayName)
		}
	} else {
		seen := make(map[string]struct{})
		for _, ref := range matched {
			if _, ok := seen[ref.ID]; ok {
				continue
			}
			seen[ref.ID] = struct{}{}
			out = append(out, ref.ID)
		}
	}

	if err := f.missingOrBelowMinimum(DimensionEnforcementNames, f.EnumEnforcementNames(), missing, len(out), o); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckRunIDs validates values against the run (pretty id) dimension.
// Values are coerced to integers; a non-numeric value is a ValidationError,
// distinct from a numeric value absent from the valid set.
func (f *Filters) CheckRunIDs(values []string, opts ...CheckOption) ([]int, error) {
	o := applyCheckOptions(opts)
	valid := f.EnumRunIDs()

	validSet := make(map[int]struct{}, len(valid))
	for _, id := range valid {
		validSet[id] = struct{}{}
	}

	seen := make(map[int]struct{})
	var matched []int
	var missing []string

	for _, value := range values {
		id, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, &ValidationError{
				Field:   DimensionRunIDs,
				Message: fmt.Sprintf("%q is not a number", value),
			}
		}

		if _, ok := validSet[id]; !ok {
			missing = append(missing, value)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		matched = append(matched, id)
	}

	validStrs := make([]string, len(valid))
	for i, id := range valid {
		validStrs[i] = strconv.Itoa(id)
	}
	if err := f.missingOrBelowMinimum(DimensionRunIDs, validStrs, missing, len(matched), o); err != nil {
		return nil, err
	}
	return matched, nil
}

// checkStrings is the shared validation path for the plain string
// dimensions. Matching runs against the dimension's enum view, so pattern
// matches come back in sorted order.
func (f *Filters) checkStrings(dimension string, valid []string, values []string, o checkOptions) ([]string, error) {
	seen := make(map[string]struct{})
	var matched []string
	var missing []string

	appendMatch := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		matched = append(matched, v)
	}

	for _, value := range values {
		if pattern, ok := strings.CutPrefix(value, o.patternPrefix); ok {
			re, err := compilePattern(dimension, pattern)
			if err != nil {
				return nil, err
			}
			for _, candidate := range valid {
				if re.MatchString(candidate) {
					appendMatch(candidate)
				}
			}
			continue
		}

		found := false
		for _, candidate := range valid {
			if candidate == value {
				appendMatch(candidate)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, value)
		}
	}

	if err := f.missingOrBelowMinimum(dimension, valid, missing, len(matched), o); err != nil {
		return nil, err
	}
	return matched, nil
}

// missingOrBelowMinimum applies the shared error policy: missing values
// fail unless skipped, and the minimum match count is enforced
// unconditionally.
func (f *Filters) missingOrBelowMinimum(dimension string, valid, missing []string, matchCount int, o checkOptions) error {
	if len(missing) > 0 && o.failOnMiss {
		return &NotFoundError{Dimension: dimension, Missing: missing, Valid: valid}
	}
	if matchCount < o.minimum {
		return &NotFoundError{Dimension: dimension, Valid: valid, Minimum: o.minimum, Matched: matchCount}
	}
	return nil
}

// compilePattern builds the case-insensitive matcher for a pattern-prefixed
// filter value.
func compilePattern(dimension, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &ValidationError{
			Field:   dimension,
			Message: fmt.Sprintf("bad pattern %q: %v", pattern, err),
		}
	}
	return re, nil
}

// sortedUnique returns a sorted copy of values with duplicates removed.
func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
