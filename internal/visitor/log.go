package visitor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

// Log writes a progress line every Every iterations: the iteration, the
// temperature, the population, the energy and, per kernel, how many
// proposals it made since the previous line and which fraction it got
// accepted. Every <= 0 logs only the begin and end lines.
type Log[T any] struct {
	logger *zap.Logger
	every  int
	names  []string

	proposed []int
	accepted []int
	start    time.Time
	last     time.Time
}

// NewLog returns a progress logger. names labels kernel ids; missing names
// fall back to "kernel<id>".
func NewLog[T any](logger *zap.Logger, every int, names []string) *Log[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log[T]{logger: logger, every: every, names: names}
}

// Begin implements anneal.Visitor.
func (l *Log[T]) Begin(c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T], temperature float64) {
	l.proposed = make([]int, s.KernelCount())
	l.accepted = make([]int, s.KernelCount())
	l.start = time.Now()
	l.last = l.start
	l.logger.Info("sampling started",
		zap.Float64("temperature", temperature),
		zap.Int("objects", c.Len()),
		zap.Float64("energy", c.Energy()),
	)
}

// Iterate implements anneal.Visitor. It never stops the run.
func (l *Log[T]) Iterate(i int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) bool {
	st := s.Stats()
	if st.KernelID >= 0 && st.KernelID < len(l.proposed) {
		l.proposed[st.KernelID]++
		if st.Accepted {
			l.accepted[st.KernelID]++
		}
	}
	if l.every > 0 && i%l.every == 0 {
		l.dump(i, temperature, c)
	}
	return true
}

// End implements anneal.Visitor.
func (l *Log[T]) End(i int, temperature float64, c rjmcmc.Configuration[T], _ *rjmcmc.Sampler[T]) {
	l.logger.Info("sampling finished",
		zap.Int("iteration", i),
		zap.Float64("temperature", temperature),
		zap.Int("objects", c.Len()),
		zap.Float64("energy", c.Energy()),
		zap.Duration("elapsed", time.Since(l.start)),
	)
}

func (l *Log[T]) dump(i int, temperature float64, c rjmcmc.Configuration[T]) {
	now := time.Now()
	fields := make([]zap.Field, 0, 6+2*len(l.proposed))
	fields = append(fields,
		zap.Int("iteration", i),
		zap.Float64("temperature", temperature),
		zap.Int("objects", c.Len()),
		zap.Float64("energy", c.Energy()),
		zap.Duration("interval", now.Sub(l.last)),
	)
	total, accepted := 0, 0
	for id, n := range l.proposed {
		name := l.name(id)
		fields = append(fields,
			zap.Int(name+"_proposed", n),
			zap.Float64(name+"_accepted", rate(l.accepted[id], n)),
		)
		total += n
		accepted += l.accepted[id]
	}
	fields = append(fields, zap.Float64("accepted", rate(accepted, total)))
	l.logger.Info("sampling progress", fields...)

	clear(l.proposed)
	clear(l.accepted)
	l.last = now
}

func (l *Log[T]) name(id int) string {
	if id < len(l.names) && l.names[id] != "" {
		return l.names[id]
	}
	return fmt.Sprintf("kernel%d", id)
}

func rate(k, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(k) / float64(n)
}
