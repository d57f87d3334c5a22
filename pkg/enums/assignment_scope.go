package enums

// AssignmentScope makes the two authorization variants of an industry
// assignment explicit: scoped to one store, or a wildcard valid everywhere.
// A nullable store id on the row maps onto exactly one of these.
type AssignmentScope string

const (
	AssignmentScopeStore     AssignmentScope = "store"
	AssignmentScopeAllStores AssignmentScope = "all_stores"
)

// String implements fmt.Stringer.
func (s AssignmentScope) String() string {
	return string(s)
}
