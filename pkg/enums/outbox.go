package enums

// OutboxEventType enumerates the domain events recorded transactionally.
type OutboxEventType string

const (
	OutboxEventVisitCheckedIn  OutboxEventType = "visit.checked_in"
	OutboxEventVisitCheckedOut OutboxEventType = "visit.checked_out"
	OutboxEventPhotoAttributed OutboxEventType = "photo.attributed"
	OutboxEventRouteReplaced   OutboxEventType = "route.replaced"
)

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateVisit    OutboxAggregateType = "visit"
	OutboxAggregatePhoto    OutboxAggregateType = "photo"
	OutboxAggregatePromoter OutboxAggregateType = "promoter"
)

// String implements fmt.Stringer.
func (t OutboxAggregateType) String() string {
	return string(t)
}
