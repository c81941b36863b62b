package service

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// The ordering planner owns the invariant that order positions within a trip
// form a unique set. It computes write plans — ordered lists of single-stop
// index updates — which StopService applies inside one transaction. Plans are
// pure functions of the current stop set, so every ordering rule can be
// tested without a database.
//
// The database enforces uniqueness of (trip_id, order_index) eagerly on
// every statement, not at commit. Plans are therefore sequenced so that no
// individual update ever lands on an occupied index: inserts shift the tail
// in descending index order, and full reorders move every stop to a
// guaranteed-free negative index before assigning final positions.

// indexUpdate is one step of a write plan: move one stop to a new position.
type indexUpdate struct {
	StopID     uuid.UUID
	OrderIndex int
}

// nextIndex returns the default position for an appended stop: one past the
// current maximum order index, or 0 for an empty trip.
func nextIndex(stops []domain.Stop) int {
	next := 0
	for _, s := range stops {
		if s.OrderIndex >= next {
			next = s.OrderIndex + 1
		}
	}
	return next
}

// planInsert resolves the position for a new stop and the shifts required to
// free it. A nil requested index appends via nextIndex. A requested index
// that collides with an existing stop shifts every stop at or after it up by
// one; the shifts are emitted in descending index order so that each one
// moves into a position already vacated (or never occupied).
func planInsert(stops []domain.Stop, requested *int) (int, []indexUpdate) {
	if requested == nil {
		return nextIndex(stops), nil
	}

	occupied := false
	for _, s := range stops {
		if s.OrderIndex == *requested {
			occupied = true
			break
		}
	}
	if !occupied {
		return *requested, nil
	}

	var tail []domain.Stop
	for _, s := range stops {
		if s.OrderIndex >= *requested {
			tail = append(tail, s)
		}
	}
	sort.Slice(tail, func(i, j int) bool { return tail[i].OrderIndex > tail[j].OrderIndex })

	shifts := make([]indexUpdate, len(tail))
	for i, s := range tail {
		shifts[i] = indexUpdate{StopID: s.ID, OrderIndex: s.OrderIndex + 1}
	}
	return *requested, shifts
}

// planReorder validates that orderedIDs is an exact permutation of the
// trip's current stops and produces the two-phase write plan: phase one
// parks every stop on a unique negative index, phase two assigns the final
// positions 0..n-1 in payload order. Running phase one to completion before
// phase two is what keeps the eagerly-checked unique constraint satisfied at
// every intermediate statement.
//
// Returns domain.ErrOrderConflict (wrapped, with the offending IDs) when the
// payload has duplicates or does not cover the current stop set exactly.
func planReorder(stops []domain.Stop, orderedIDs []uuid.UUID) (phase1, phase2 []indexUpdate, err error) {
	provided := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := provided[id]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate stop ID %s", domain.ErrOrderConflict, id)
		}
		provided[id] = struct{}{}
	}

	current := make(map[uuid.UUID]struct{}, len(stops))
	for _, s := range stops {
		current[s.ID] = struct{}{}
	}

	var missing, extra []string
	for id := range current {
		if _, ok := provided[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	for id := range provided {
		if _, ok := current[id]; !ok {
			extra = append(extra, id.String())
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, fmt.Sprintf("missing stop IDs %v", missing))
		}
		if len(extra) > 0 {
			parts = append(parts, fmt.Sprintf("stop IDs not in this trip %v", extra))
		}
		detail := parts[0]
		if len(parts) == 2 {
			detail = parts[0] + "; " + parts[1]
		}
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrOrderConflict, detail)
	}

	phase1 = make([]indexUpdate, len(orderedIDs))
	phase2 = make([]indexUpdate, len(orderedIDs))
	for i, id := range orderedIDs {
		phase1[i] = indexUpdate{StopID: id, OrderIndex: -(i + 1)}
		phase2[i] = indexUpdate{StopID: id, OrderIndex: i}
	}
	return phase1, phase2, nil
}

// planReposition moves one existing stop to a new position, expressed as a
// one-element reorder against the rest: the stop is pulled out of the
// current sequence, reinserted before the first other stop whose index is at
// or past the requested one, and the whole trip is re-run through
// planReorder. The moved stop's final index is its position in the resulting
// permutation.
func planReposition(stops []domain.Stop, stopID uuid.UUID, requestedIndex int) (phase1, phase2 []indexUpdate, err error) {
	others := make([]domain.Stop, 0, len(stops)-1)
	for _, s := range stops {
		if s.ID != stopID {
			others = append(others, s)
		}
	}

	pos := 0
	for _, s := range others {
		if s.OrderIndex < requestedIndex {
			pos++
		}
	}

	orderedIDs := make([]uuid.UUID, 0, len(stops))
	for _, s := range others[:pos] {
		orderedIDs = append(orderedIDs, s.ID)
	}
	orderedIDs = append(orderedIDs, stopID)
	for _, s := range others[pos:] {
		orderedIDs = append(orderedIDs, s.ID)
	}

	return planReorder(stops, orderedIDs)
}
