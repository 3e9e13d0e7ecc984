package anneal

import (
	"context"

	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

// Visitor observes a run. Begin and End are called once each; Iterate is
// called after every completed step with the 1-based iteration index and the
// temperature the step ran at. Returning false from Iterate stops the run.
//
// Visitors run on the sampling goroutine between steps and may read c and s
// but must not modify c.
type Visitor[T any] interface {
	Begin(c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T], temperature float64)
	Iterate(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) bool
	End(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T])
}

// Composite fans out to several visitors. Every member sees every call;
// the run continues only while all of them agree.
type Composite[T any] []Visitor[T]

// Begin implements Visitor.
func (v Composite[T]) Begin(c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T], temperature float64) {
	for _, x := range v {
		x.Begin(c, s, temperature)
	}
}

// Iterate implements Visitor.
func (v Composite[T]) Iterate(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) bool {
	ok := true
	for _, x := range v {
		if !x.Iterate(i, temperature, c, s) {
			ok = false
		}
	}
	return ok
}

// End implements Visitor.
func (v Composite[T]) End(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) {
	for _, x := range v {
		x.End(i, temperature, c, s)
	}
}

// Cancel stops a run once its context is done.
type Cancel[T any] struct {
	ctx context.Context
}

// NewCancel returns a visitor bound to ctx.
func NewCancel[T any](ctx context.Context) Cancel[T] {
	return Cancel[T]{ctx: ctx}
}

// Begin implements Visitor.
func (Cancel[T]) Begin(rjmcmc.Configuration[T], *rjmcmc.Sampler[T], float64) {}

// Iterate returns false once the context is done.
func (v Cancel[T]) Iterate(int, float64, rjmcmc.Configuration[T], *rjmcmc.Sampler[T]) bool {
	return v.ctx.Err() == nil
}

// End implements Visitor.
func (Cancel[T]) End(int, float64, rjmcmc.Configuration[T], *rjmcmc.Sampler[T]) {}

// Funcs builds a Visitor from optional callbacks; nil fields are skipped and
// a nil OnIterate never stops the run.
type Funcs[T any] struct {
	OnBegin   func(c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T], temperature float64)
	OnIterate func(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) bool
	OnEnd     func(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T])
}

// Begin implements Visitor.
func (f Funcs[T]) Begin(c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T], temperature float64) {
	if f.OnBegin != nil {
		f.OnBegin(c, s, temperature)
	}
}

// Iterate implements Visitor.
func (f Funcs[T]) Iterate(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) bool {
	if f.OnIterate == nil {
		return true
	}
	return f.OnIterate(i, temperature, c, s)
}

// End implements Visitor.
func (f Funcs[T]) End(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) {
	if f.OnEnd != nil {
		f.OnEnd(i, temperature, c, s)
	}
}
