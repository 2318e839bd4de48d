package rank

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// State of a reorder request. A request starts Idle, is Submitting while the
// swap is written and ends Confirmed or Reverted. Unchanged covers the
// boundary no-op, where nothing is submitted.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateReverted   State = "reverted"
	StateUnchanged  State = "unchanged"
)

// Store persists sibling ranks for one kind of row.
type Store interface {
	// ListSiblings returns the authoring-visible siblings under parentID.
	ListSiblings(ctx context.Context, parentID uuid.UUID) ([]Item, error)
	// SwapRanks exchanges both ranks atomically and fails with
	// ErrRankConflict if either row no longer holds the observed rank.
	SwapRanks(ctx context.Context, parentID uuid.UUID, swap Swap) error
}

// Outcome is what the caller shows after a move. Items is always the list
// read back from the store, never the optimistic local swap.
type Outcome struct {
	State State  `json:"state"`
	Items []Item `json:"items"`
}

type Reorderer struct {
	store Store
	kind  string
}

// NewReorderer creates a reorderer; kind names the rows in logs.
func NewReorderer(store Store, kind string) *Reorderer {
	return &Reorderer{store: store, kind: kind}
}

// Move shifts targetID one position in dir among the siblings of parentID.
// On a write failure the siblings are re-read and returned alongside the error.
func (r *Reorderer) Move(ctx context.Context, parentID, targetID uuid.UUID, dir Direction) (*Outcome, error) {
	items, err := r.store.ListSiblings(ctx, parentID)
	if err != nil {
		return nil, err
	}

	swap, ok, err := Plan(items, targetID, dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Outcome{State: StateUnchanged, Items: Sorted(items)}, nil
	}

	logger := log.With().
		Str("kind", r.kind).
		Str("parent_id", parentID.String()).
		Str("target_id", targetID.String()).
		Str("direction", string(dir)).
		Logger()

	logger.Debug().Str("state", string(StateSubmitting)).Msg("rank swap submitted")

	if writeErr := r.store.SwapRanks(ctx, parentID, swap); writeErr != nil {
		fresh, readErr := r.store.ListSiblings(ctx, parentID)
		if readErr != nil {
			logger.Error().Err(readErr).Msg("refetch after failed rank swap")
			return &Outcome{State: StateReverted}, writeErr
		}
		logger.Warn().Err(writeErr).Str("state", string(StateReverted)).Msg("rank swap reverted")
		return &Outcome{State: StateReverted, Items: Sorted(fresh)}, writeErr
	}

	fresh, err := r.store.ListSiblings(ctx, parentID)
	if err != nil {
		// The swap is committed; the caller reloads instead of trusting a local copy.
		logger.Warn().Err(err).Msg("refetch after rank swap")
		return &Outcome{State: StateConfirmed}, nil
	}

	logger.Info().Str("state", string(StateConfirmed)).Msg("rank swap confirmed")
	return &Outcome{State: StateConfirmed, Items: Sorted(fresh)}, nil
}
