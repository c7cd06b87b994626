// Package queue defines message payloads exchanged over the message broker.
package queue

// SummaryRecomputedEvent is published after a summary row's totals were
// recomputed and committed. It carries enough information for downstream
// consumers to log or trigger analytics without querying the primary
// database. SpaceID is zero for rows not yet bound to a space.
type SummaryRecomputedEvent struct {
	QuoteID    uint64 `json:"quote_id"`
	SpaceID    uint64 `json:"space_id,omitempty"`
	RowID      uint64 `json:"row_id"`
	SpaceName  string `json:"space"`
	Items      uint32 `json:"items"`
	Amount     string `json:"amount"`
	Tax        string `json:"tax"`
	Total      string `json:"total"`
	Trigger    string `json:"trigger"`
	OccurredAt string `json:"occurred_at"`
}
