// Package visitor provides anneal.Visitor implementations that observe a
// footprint extraction while it runs: a periodic zap progress log,
// Prometheus metrics, and PNG overlay snapshots.
//
// Visitors only read the configuration and sampler they are handed. Each
// chain gets its own visitor values; Metrics is the exception and may be
// shared, as Prometheus collectors are safe for concurrent use.
package visitor
