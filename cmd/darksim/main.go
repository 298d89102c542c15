// Command darksim runs a darknet overlay simulation from an edge-list
// dataset and a TOML run configuration.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/smallworldnet/darksim"
	"github.com/smallworldnet/darksim/internal/runconfig"
	"github.com/smallworldnet/darksim/pkg/graphstat"
	"github.com/smallworldnet/darksim/pkg/topology"
	prommetrics "github.com/smallworldnet/darksim/prometheus"
)

var (
	configPath string
	dataset    string
	cycles     int
	seed       int64
	statsPath  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "darksim",
	Short: "Darknet overlay routing and swap simulator",
	Long: `darksim simulates a darknet content overlay: greedy key-based GET/PUT
routing with backtracking and replication over a fixed trusted topology,
optimized by the Metropolis location-swap protocol.

The overlay is read from an edge-list dataset (one "idA,idB" line per
undirected link); run parameters come from a TOML file and flags, flags
winning. Per-request outcomes can be appended to a stats file and live
metrics exposed on a Prometheus endpoint.`,
	RunE:          runSimulation,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the simulator version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("darksim " + darksim.Version())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML run configuration file")
	rootCmd.Flags().StringVarP(&dataset, "dataset", "d", "", "edge-list dataset path (overrides config)")
	rootCmd.Flags().IntVarP(&cycles, "cycles", "n", 0, "number of cycles to run (overrides config)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "run seed (overrides config)")
	rootCmd.Flags().StringVar(&statsPath, "stats", "", "per-request stats file (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(versionCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := runconfig.Default()
	if configPath != "" {
		loaded, err := runconfig.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if dataset != "" {
		cfg.Run.DatasetPath = dataset
	}
	if cycles > 0 {
		cfg.Run.Cycles = cycles
	}
	if seed != 0 {
		cfg.Run.Seed = seed
	}
	if statsPath != "" {
		cfg.Output.StatsPath = statsPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := cfg.EngineOptions()
	opts = append(opts, darksim.WithLogger(darksim.SlogLogger{L: logger}))

	if cfg.Output.MetricsAddr != "" {
		opts = append(opts, darksim.WithMetrics(prommetrics.NewMetrics("")))
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Output.MetricsAddr, nil); err != nil {
				logger.Error("metrics endpoint failed", "addr", cfg.Output.MetricsAddr, "error", err)
			}
		}()
	}

	f, err := os.Open(cfg.Run.DatasetPath)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	edges, err := topology.ParseEdgeList(f)
	f.Close()
	if err != nil {
		return err
	}

	if cfg.Output.StatsPath != "" {
		recorder, err := darksim.NewFileRecorder(cfg.Output.StatsPath, darksim.RunInfo{
			OverlaySize:       countPeers(edges),
			MaxHTL:            pickDefault(cfg.Routing.MaxHTL, darksim.DefaultMaxHTL),
			MaxSwapHTL:        pickDefault(cfg.Swap.MaxSwapHTL, darksim.DefaultMaxSwapHTL),
			ReplicationFactor: pickDefault(cfg.Routing.ReplicationFactor, darksim.DefaultReplicationFactor),
		})
		if err != nil {
			return err
		}
		defer recorder.Close()
		opts = append(opts, darksim.WithRecorder(recorder))
	}

	sim, err := darksim.NewSimulation(darksim.NewConfig(opts...))
	if err != nil {
		return err
	}
	ids, err := topology.Build(sim.Engine(), edges)
	if err != nil {
		return err
	}
	logger.Info("overlay built",
		"dataset", cfg.Run.DatasetPath, "peers", len(ids))

	if cfg.Output.GraphReport {
		summary := graphstat.Summarize(sim.Engine().AdjacencySnapshot())
		if err := graphstat.WriteReport(os.Stdout, summary); err != nil {
			return err
		}
	}

	logger.Info("run starting", "cycles", cfg.Run.Cycles, "seed", cfg.Run.Seed)
	if err := sim.Run(cfg.Run.Cycles); err != nil {
		return err
	}

	stats := sim.Engine().Stats()
	logger.Info("run finished",
		"virtual_time", sim.Now(),
		"messages", stats.MessagesSent,
		"gets_found", stats.GetsFound,
		"gets_notfound", stats.GetsNotFound,
		"puts_stored", stats.PutsStored,
		"put_collisions", stats.PutCollisions,
		"mean_get_hops", fmt.Sprintf("%.2f", stats.MeanGetHops()),
		"mean_put_hops", fmt.Sprintf("%.2f", stats.MeanPutHops()),
		"swaps_accepted", stats.SwapsAccepted,
		"swaps_refused", stats.SwapsRefused,
		"replicas", stats.ReplicasStored,
	)
	return nil
}

func pickDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func countPeers(edges []topology.Edge) int {
	seen := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		seen[e.A] = struct{}{}
		seen[e.B] = struct{}{}
	}
	return len(seen)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
