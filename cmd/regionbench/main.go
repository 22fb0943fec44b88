package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"regiontree/pkg/config"
	"regiontree/pkg/geom"
	"regiontree/pkg/logging"
	"regiontree/pkg/monitor"
	"regiontree/pkg/tree"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "Path to regiontree.yaml (default: search configs/ and .)")
	n := flag.Int("n", 0, "Number of entries (overrides bench.entries)")
	metricsAddr := flag.String("metrics", "", "Serve /metrics on this address (overrides bench.metrics_addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *n > 0 {
		cfg.Bench.Entries = *n
	}
	if *metricsAddr != "" {
		cfg.Bench.MetricsAddr = *metricsAddr
	}

	bounds, err := cfg.Tree.Bounds()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	stats := monitor.NewWorkloadStats()

	if cfg.Bench.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(monitor.NewCollector(stats, prometheus.Labels{"tree": treeName(bounds.Dims())}))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			fmt.Printf("Prometheus metrics available at http://%s/metrics\n", cfg.Bench.MetricsAddr)
			if err := http.ListenAndServe(cfg.Bench.MetricsAddr, mux); err != nil {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	opts := []tree.Option{tree.WithLogger(logger), tree.WithObserver(stats)}
	if cfg.Tree.ZOrderBuild {
		opts = append(opts, tree.WithZOrder())
	}

	t, err := tree.NewMutable[geom.Point, int](bounds, cfg.Tree.MaxNodeSize, opts...)
	if err != nil {
		log.Fatalf("tree: %v", err)
	}

	rng := rand.New(rand.NewPCG(cfg.Bench.Seed, cfg.Bench.Seed^0x9e3779b97f4a7c15))

	fmt.Printf("RegionTree Benchmark (%s, N=%d, maxNodeSize=%d)\n", treeName(bounds.Dims()), cfg.Bench.Entries, cfg.Tree.MaxNodeSize)
	fmt.Printf("  bounds=%s  zorder=%v\n", bounds, cfg.Tree.ZOrderBuild)
	fmt.Println("---------------------------------------------------")

	fmt.Println(">> Inserting random points...")
	d := timed(func() {
		for i := 0; i < cfg.Bench.Entries; i++ {
			if err := t.Insert(randomPoint(rng, bounds), i); err != nil {
				log.Fatalf("insert: %v", err)
			}
		}
	})
	fmt.Printf("   Insert Time: %v | QPS: %.0f\n\n", d, float64(cfg.Bench.Entries)/d.Seconds())

	fmt.Printf(">> Running %d box queries...\n", cfg.Bench.Queries)
	var hits int
	d = timed(func() {
		for i := 0; i < cfg.Bench.Queries; i++ {
			q := queryBox(rng, bounds, cfg.Bench.QueryExtent)
			hits += len(t.SearchWithin(q))
		}
	})
	fmt.Printf("   Query Time: %v | QPS: %.0f | avg hits: %.1f\n\n",
		d, float64(cfg.Bench.Queries)/d.Seconds(), float64(hits)/float64(max(cfg.Bench.Queries, 1)))

	fmt.Printf(">> Parallel scan with %d workers...\n", cfg.Bench.Workers)
	var counted atomic.Int64
	d = timed(func() {
		err = t.ParallelEach(context.Background(), tree.Everything, cfg.Bench.Workers, func(tree.Entry[geom.Point, int]) error {
			counted.Add(1)
			return nil
		})
	})
	if err != nil {
		log.Fatalf("parallel scan: %v", err)
	}
	fmt.Printf("   Scan Time: %v | entries: %d\n\n", d, counted.Load())

	fmt.Println(">> Copying into an immutable tree...")
	var frozen *tree.Tree[geom.Point, int]
	d = timed(func() {
		frozen, err = tree.From[geom.Point, int](t, cfg.Tree.MaxNodeSize, opts...)
	})
	if err != nil {
		log.Fatalf("copy: %v", err)
	}
	fmt.Printf("   Copy Time: %v | entries: %d\n\n", d, frozen.Size())

	fmt.Println(">> Draining by key...")
	d = timed(func() {
		for _, k := range frozen.Keys() {
			if _, err := t.Remove(k); err != nil {
				log.Fatalf("remove: %v", err)
			}
		}
	})
	fmt.Printf("   Drain Time: %v | remaining: %d\n", d, t.Size())

	fmt.Println("---------------------------------------------------")
	s := frozen.Stats()
	fmt.Printf("Shape: nodes=%d depth=%d largest node=%d\n", s.Nodes, s.Depth, s.LargestNode)
	fmt.Printf("Workload: splits=%d traversals=%d avg insert=%v read/write=%.3f\n",
		atomic.LoadUint64(&stats.SplitCount), atomic.LoadUint64(&stats.TraversalCount),
		stats.AvgInsertLatency(), stats.GetReadWriteRatio())

	if cfg.Bench.MetricsAddr != "" {
		fmt.Println("Serving metrics until interrupted...")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
	}
}

func treeName(dims int) string {
	if dims == 3 {
		return "oct"
	}
	return "quad"
}

func timed(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

func randomPoint(rng *rand.Rand, bounds geom.Box) geom.Point {
	coords := make([]float64, bounds.Dims())
	for i := range coords {
		coords[i] = bounds.Lower().Coord(i) + rng.Float64()*bounds.Length(i)
	}
	p, _ := geom.NewPoint(coords...)
	return p
}

func queryBox(rng *rand.Rand, bounds geom.Box, extent float64) geom.Box {
	center := randomPoint(rng, bounds)
	lower := make([]float64, bounds.Dims())
	upper := make([]float64, bounds.Dims())
	for i := range lower {
		half := extent * bounds.Length(i)
		lower[i] = center.Coord(i) - half
		upper[i] = center.Coord(i) + half
	}
	lo, _ := geom.NewPoint(lower...)
	hi, _ := geom.NewPoint(upper...)
	b, _ := geom.NewBox(lo, hi)
	return b
}
