package visitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

const (
	metricsNamespace = "footprint"
	metricsSubsystem = "sampler"
)

// Metrics holds the sampler collectors. One Metrics serves every chain of a
// process; series are labelled by chain.
type Metrics struct {
	// Proposals counts steps by chain and kernel.
	Proposals *prometheus.CounterVec

	// Acceptances counts accepted steps by chain and kernel.
	Acceptances *prometheus.CounterVec

	// Energy is the current configuration energy per chain.
	Energy *prometheus.GaugeVec

	// Temperature is the current temperature per chain.
	Temperature *prometheus.GaugeVec

	// Objects is the current population per chain.
	Objects *prometheus.GaugeVec

	// Iterations counts completed steps per chain.
	Iterations *prometheus.CounterVec

	names []string
}

// NewMetrics registers the collectors with reg (prometheus.DefaultRegisterer
// when nil). names labels kernel ids.
func NewMetrics(reg prometheus.Registerer, names []string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Proposals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "proposals_total",
			Help:      "Proposals by chain and kernel",
		}, []string{"chain", "kernel"}),
		Acceptances: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "acceptances_total",
			Help:      "Accepted proposals by chain and kernel",
		}, []string{"chain", "kernel"}),
		Energy: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "energy",
			Help:      "Current configuration energy",
		}, []string{"chain"}),
		Temperature: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "temperature",
			Help:      "Current annealing temperature",
		}, []string{"chain"}),
		Objects: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "objects",
			Help:      "Current number of objects",
		}, []string{"chain"}),
		Iterations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "iterations_total",
			Help:      "Completed iterations",
		}, []string{"chain"}),
		names: names,
	}
}

// KernelLabel returns the kernel label used for id.
func (m *Metrics) KernelLabel(id int) string {
	if id >= 0 && id < len(m.names) && m.names[id] != "" {
		return m.names[id]
	}
	return strconv.Itoa(id)
}

// ChainMetrics feeds one chain's steps into a Metrics.
type ChainMetrics[T any] struct {
	m           *Metrics
	chain       string
	proposals   []prometheus.Counter
	acceptances []prometheus.Counter
	energy      prometheus.Gauge
	temperature prometheus.Gauge
	objects     prometheus.Gauge
	iterations  prometheus.Counter
}

// NewChainMetrics returns the visitor for chain.
func NewChainMetrics[T any](m *Metrics, chain int) *ChainMetrics[T] {
	label := strconv.Itoa(chain)
	return &ChainMetrics[T]{
		m:           m,
		chain:       label,
		energy:      m.Energy.WithLabelValues(label),
		temperature: m.Temperature.WithLabelValues(label),
		objects:     m.Objects.WithLabelValues(label),
		iterations:  m.Iterations.WithLabelValues(label),
	}
}

// Begin implements anneal.Visitor.
func (v *ChainMetrics[T]) Begin(c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T], temperature float64) {
	n := s.KernelCount()
	v.proposals = make([]prometheus.Counter, n)
	v.acceptances = make([]prometheus.Counter, n)
	for id := range n {
		kernel := v.m.KernelLabel(id)
		v.proposals[id] = v.m.Proposals.WithLabelValues(v.chain, kernel)
		v.acceptances[id] = v.m.Acceptances.WithLabelValues(v.chain, kernel)
	}
	v.observe(temperature, c)
}

// Iterate implements anneal.Visitor. It never stops the run.
func (v *ChainMetrics[T]) Iterate(_ int, temperature float64, c rjmcmc.Configuration[T], s *rjmcmc.Sampler[T]) bool {
	st := s.Stats()
	if st.KernelID >= 0 && st.KernelID < len(v.proposals) {
		v.proposals[st.KernelID].Inc()
		if st.Accepted {
			v.acceptances[st.KernelID].Inc()
		}
	}
	v.iterations.Inc()
	v.observe(temperature, c)
	return true
}

// End implements anneal.Visitor.
func (v *ChainMetrics[T]) End(_ int, temperature float64, c rjmcmc.Configuration[T], _ *rjmcmc.Sampler[T]) {
	v.observe(temperature, c)
}

func (v *ChainMetrics[T]) observe(temperature float64, c rjmcmc.Configuration[T]) {
	v.energy.Set(c.Energy())
	v.temperature.Set(temperature)
	v.objects.Set(float64(c.Len()))
}
