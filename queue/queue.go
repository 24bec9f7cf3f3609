// Package queue resolves next and previous tracks over an ordered list of track identifiers.
package queue

import (
	"errors"

	"github.com/samber/lo"
)

// ErrEmptyQueue is returned when there is nothing to resolve against.
var ErrEmptyQueue = errors.New("empty queue")

// Queue is an ordered list of track identifiers. It is replaced wholesale, never edited in place.
type Queue []string

// Of builds a queue from ids, copying the input.
func Of(ids ...string) Queue {
	return append(Queue(nil), ids...)
}

// IndexOf returns the position of id or -1.
func (q Queue) IndexOf(id string) int {
	return lo.IndexOf(q, id)
}

func (q Queue) Contains(id string) bool {
	return q.IndexOf(id) >= 0
}

func (q Queue) Empty() bool {
	return len(q) == 0
}

// Effective is the fallback policy: an empty active queue resolves against the
// full catalog in catalog order.
func Effective(active Queue, catalog []string) Queue {
	if !active.Empty() {
		return active
	}
	return Of(catalog...)
}
