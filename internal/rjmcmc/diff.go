package rjmcmc

import "strconv"

// Handle identifies an object inside a Configuration. A handle stays valid
// until the object it names is removed.
type Handle uint64

func (h Handle) String() string {
	return "#" + strconv.FormatUint(uint64(h), 10)
}

// Diff is a pending modification of a Configuration: objects to insert and
// handles to remove. It is built by one kernel invocation and then either
// applied or discarded.
//
// The zero value is an empty diff ready for use.
type Diff[T any] struct {
	births []T
	deaths []Handle
}

// Clear empties the diff while keeping its storage.
func (d *Diff[T]) Clear() {
	clear(d.births)
	d.births = d.births[:0]
	d.deaths = d.deaths[:0]
}

// InsertBirth stages an object for insertion.
func (d *Diff[T]) InsertBirth(obj T) {
	d.births = append(d.births, obj)
}

// InsertDeath stages an existing object for removal.
func (d *Diff[T]) InsertDeath(h Handle) {
	d.deaths = append(d.deaths, h)
}

// BirthSize returns the number of staged insertions.
func (d *Diff[T]) BirthSize() int { return len(d.births) }

// DeathSize returns the number of staged removals.
func (d *Diff[T]) DeathSize() int { return len(d.deaths) }

// Births returns the staged insertions. The slice is owned by the diff.
func (d *Diff[T]) Births() []T { return d.births }

// Deaths returns the staged removals. The slice is owned by the diff.
func (d *Diff[T]) Deaths() []Handle { return d.deaths }

// SizeDelta returns BirthSize() - DeathSize().
func (d *Diff[T]) SizeDelta() int { return len(d.births) - len(d.deaths) }

// Empty reports whether the diff stages nothing.
func (d *Diff[T]) Empty() bool { return len(d.births) == 0 && len(d.deaths) == 0 }
