// Package repository holds the data access layer of the quoting engine.
// Each entity gets its own repo over *sql.DB; mutations that must stay
// atomic (cascade deletes, deliverable writes plus their summary
// recomputation, geometry refreshes) run inside a single transaction so a
// failed write never leaves a summary row or a space half-updated.
//
// Sentinel errors defined here let handlers distinguish failure scenarios
// and map them to HTTP statuses without string matching.
package repository

import "errors"

// Not-found sentinels, one per entity, returned when a lookup or a scoped
// mutation matches no row.
var (
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrSpaceNotFound       = errors.New("space not found")
	ErrOpeningNotFound     = errors.New("opening not found")
	ErrDeliverableNotFound = errors.New("deliverable not found")
	ErrSummaryRowNotFound  = errors.New("summary row not found")
)

// ErrForbidden is returned when the caller attempts an operation on a
// quote owned by someone else. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrStaleRevision is returned when a compare-and-swap write carries a
// revision that no longer matches the stored row: another editor committed
// first. Handlers translate this into 409 and the caller re-reads.
var ErrStaleRevision = errors.New("stale revision")

// ErrUnresolvedSpace indicates a summary row whose space_id points at a
// space that no longer exists. Cascade deletes make this unreachable in
// normal operation; if it surfaces anyway it is a bug and is logged at the
// point of detection rather than being swallowed.
var ErrUnresolvedSpace = errors.New("summary row references a missing space")
