package task

// Criteria is the server-side filter set attached to a task page request.
// Values are expected to have passed through the Filters check methods, so
// they are drawn from the server's current valid sets.
type Criteria struct {
	ActionNames    []string
	DiscoveryIDs   []string
	EnforcementIDs []string
	RunIDs         []int
	Statuses       []string
	Search         string
}

// Empty reports whether no filtering was requested.
func (c Criteria) Empty() bool {
	return len(c.ActionNames) == 0 &&
		len(c.DiscoveryIDs) == 0 &&
		len(c.EnforcementIDs) == 0 &&
		len(c.RunIDs) == 0 &&
		len(c.Statuses) == 0 &&
		c.Search == ""
}
