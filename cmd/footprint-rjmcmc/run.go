package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/footprint-rjmcmc/internal/anneal"
	"github.com/ironsheep/footprint-rjmcmc/internal/building"
	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
	"github.com/ironsheep/footprint-rjmcmc/internal/params"
	"github.com/ironsheep/footprint-rjmcmc/internal/visitor"
)

type runOptions struct {
	image       string
	model       string
	out         string
	iterations  int
	seed        uint64
	chains      int
	parallelism int
	dumpEvery   int
	saveEvery   int
	metricsAddr string
	printParams bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [image]",
		Short: "Extract footprints from an image",
		Long: `Runs one or more annealing chains and writes, for each chain, <out>/<run-id>.json
with the extracted footprints. With --save-every, PNG overlays are written
next to it. The lowest-energy result is also printed to stdout as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.image = args[0]
			}
			p, err := loadParams(cmd, root.config, opts)
			if err != nil {
				return err
			}
			if opts.printParams {
				data, err := p.YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return runExtraction(cmd.Context(), cmd, p, opts, root.logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.image, "image", "", "evidence image (overrides input.image)")
	f.StringVar(&opts.model, "model", "", "energy model: gradient or surface")
	f.StringVarP(&opts.out, "out", "o", "", "output directory (overrides output.dir)")
	f.IntVarP(&opts.iterations, "iterations", "n", 0, "iterations per chain")
	f.Uint64Var(&opts.seed, "seed", 0, "seed of chain 0")
	f.IntVar(&opts.chains, "chains", 0, "number of independent chains")
	f.IntVar(&opts.parallelism, "parallelism", 0, "chains run at once (0 = GOMAXPROCS)")
	f.IntVar(&opts.dumpEvery, "dump-every", 0, "log progress every N iterations")
	f.IntVar(&opts.saveEvery, "save-every", 0, "save an overlay every N iterations")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	f.BoolVar(&opts.printParams, "print-params", false, "print the resolved parameters as YAML and exit")
	return cmd
}

// loadParams resolves defaults, file, environment and the flags that were
// set explicitly.
func loadParams(cmd *cobra.Command, config string, opts *runOptions) (*params.Parameters, error) {
	p, err := params.Load(config, nil)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if opts.image != "" {
		p.Input.Image = opts.image
	}
	if f.Changed("model") {
		p.Energy.Model = opts.model
	}
	if f.Changed("out") {
		p.Output.Dir = opts.out
	}
	if f.Changed("iterations") {
		p.Run.Iterations = opts.iterations
	}
	if f.Changed("seed") {
		p.Run.Seed = opts.seed
	}
	if f.Changed("chains") {
		p.Run.Chains = opts.chains
	}
	if f.Changed("dump-every") {
		p.Run.DumpEvery = opts.dumpEvery
	}
	if f.Changed("save-every") {
		p.Run.SaveEvery = opts.saveEvery
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func runExtraction(ctx context.Context, cmd *cobra.Command, p *params.Parameters, opts *runOptions, logger *zap.Logger) error {
	m, err := building.NewModel(p, nil, logger)
	if err != nil {
		return err
	}

	visitors := []building.VisitorFunc{
		func(info building.RunInfo) anneal.Visitor[geometry.Shape] {
			return visitor.NewLog[geometry.Shape](logger.With(zap.Int("chain", info.Chain)), p.Run.DumpEvery, building.KernelNames)
		},
	}
	if p.Run.SaveEvery > 0 {
		base, origin, step := m.Canvas()
		visitors = append(visitors, func(info building.RunInfo) anneal.Visitor[geometry.Shape] {
			return &visitor.Overlay{
				Dir:    p.Output.Dir,
				Prefix: info.ID.String(),
				Every:  p.Run.SaveEvery,
				Base:   base,
				Origin: origin,
				Step:   step,
				Score: func(s geometry.Shape) float64 {
					return building.Score(m.UnaryEnergy(s), p.Energy.Individual)
				},
				Logger: logger,
			}
		})
	}
	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics := visitor.NewMetrics(reg, building.KernelNames)
		stop, err := serveMetrics(opts.metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer stop()
		visitors = append(visitors, func(info building.RunInfo) anneal.Visitor[geometry.Shape] {
			return visitor.NewChainMetrics[geometry.Shape](metrics, info.Chain)
		})
	}

	results, err := m.RunEnsemble(ctx, p.Run.Chains, opts.parallelism, logger, visitors...)
	if err != nil {
		return err
	}
	for _, r := range results {
		path := filepath.Join(p.Output.Dir, r.RunID.String()+".json")
		if err := writeJSON(path, r); err != nil {
			return err
		}
		logger.Info("result written", zap.String("path", path), zap.Float64("energy", r.Energy))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results[0])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// serveMetrics exposes reg on addr/metrics until the returned stop is
// called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}, nil
}
