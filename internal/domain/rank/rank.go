// Package rank orders sibling rows (questions under a survey, options under
// a question) and moves one row up or down by exchanging rank values with
// its neighbour.
package rank

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrItemNotFound     = errors.New("item not found among siblings")
	ErrInvalidDirection = errors.New("direction must be up or down")
	ErrRankConflict     = errors.New("sibling ranks changed concurrently")
)

// Item is the part of a sibling row the reorder logic looks at.
type Item struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Rank int       `json:"rank" db:"rank"`
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", ErrInvalidDirection
}

// Swap exchanges the ranks of Target and Neighbor. Both carry the ranks
// observed before the move so the store can compare-and-set.
type Swap struct {
	Target   Item
	Neighbor Item
}

// Sorted returns a copy ordered by ascending rank, ties broken by id.
func Sorted(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Plan locates targetID and its neighbour in direction dir. ok is false when
// the target is already first (up) or last (down); nothing should be written.
func Plan(items []Item, targetID uuid.UUID, dir Direction) (swap Swap, ok bool, err error) {
	if dir != Up && dir != Down {
		return Swap{}, false, ErrInvalidDirection
	}

	sorted := Sorted(items)
	_, i, found := lo.FindIndexOf(sorted, func(it Item) bool { return it.ID == targetID })
	if !found {
		return Swap{}, false, ErrItemNotFound
	}

	j := i + 1
	if dir == Up {
		j = i - 1
	}
	if j < 0 || j >= len(sorted) {
		return Swap{}, false, nil
	}

	return Swap{Target: sorted[i], Neighbor: sorted[j]}, true, nil
}

// Apply returns the list with the two ranks exchanged, re-sorted. Every
// other field and row is left as is.
func (s Swap) Apply(items []Item) []Item {
	out := lo.Map(items, func(it Item, _ int) Item {
		switch it.ID {
		case s.Target.ID:
			it.Rank = s.Neighbor.Rank
		case s.Neighbor.ID:
			it.Rank = s.Target.Rank
		}
		return it
	})
	return Sorted(out)
}

// NextRank is one past the highest rank in use, or 1 for an empty set.
// Deleted rows count so a new row never collides with a hidden one.
func NextRank(ranks []int) int {
	if len(ranks) == 0 {
		return 1
	}
	return lo.Max(ranks) + 1
}
