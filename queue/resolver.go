package queue

import (
	"fmt"

	"github.com/samber/lo"
)

// Policy describes how Next picks a successor.
// Repeating the current track is decided by the caller, not here.
type Policy struct {
	Shuffling bool
}

// Picker chooses one element of candidates. It is only called with a non-empty slice.
type Picker func(candidates []int) int

// Resolver computes the next and previous track of a queue.
type Resolver struct {
	pick Picker
}

// NewResolver returns a resolver that shuffles uniformly at random.
func NewResolver() *Resolver {
	return &Resolver{pick: lo.Sample[int]}
}

// NewResolverWithPicker returns a resolver whose shuffle choice is made by pick.
func NewResolverWithPicker(pick Picker) *Resolver {
	return &Resolver{pick: pick}
}

// Next returns the identifier that follows currentID.
//
// Sequentially that is (i+1) mod n. Shuffling picks any index other than i,
// except for single-track queues where the only track is returned again.
// A currentID missing from q starts over at index 0, or at any index when shuffling.
func (r *Resolver) Next(currentID string, q Queue, policy Policy) (string, error) {
	if q.Empty() {
		return "", fmt.Errorf("next after %q: %w", currentID, ErrEmptyQueue)
	}

	i := q.IndexOf(currentID)
	n := len(q)

	if !policy.Shuffling {
		if i < 0 {
			return q[0], nil
		}
		return q[(i+1)%n], nil
	}

	if n == 1 {
		return q[0], nil
	}

	candidates := lo.Filter(lo.Range(n), func(j int, _ int) bool { return j != i })
	return q[r.pick(candidates)], nil
}

// Previous returns the identifier before currentID, (i-1+n) mod n.
// Shuffle never applies here. A currentID missing from q resolves to the last track.
func (r *Resolver) Previous(currentID string, q Queue) (string, error) {
	if q.Empty() {
		return "", fmt.Errorf("previous before %q: %w", currentID, ErrEmptyQueue)
	}

	i := q.IndexOf(currentID)
	n := len(q)
	if i < 0 {
		return q[n-1], nil
	}
	return q[(i-1+n)%n], nil
}
