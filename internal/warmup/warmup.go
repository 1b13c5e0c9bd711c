package warmup

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency: runtime.NumCPU(),
		Iterations:  1000,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	scorers     []ports.Scorer
	distances   []ports.DistanceCalculator
	normalizers []ports.Normalizer
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterScorer adds a scorer to be warmed up
func (wm *Manager) RegisterScorer(scorer ports.Scorer) {
	wm.scorers = append(wm.scorers, scorer)
}

// RegisterDistanceCalculator adds a distance calculator to be warmed up
func (wm *Manager) RegisterDistanceCalculator(calc ports.DistanceCalculator) {
	wm.distances = append(wm.distances, calc)
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp runs the warmup process for all registered components and returns
// the number of completed iterations.
func (wm *Manager) WarmUp(ctx context.Context) int {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.scorers)+len(wm.distances)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	completed := wm.run(warmupCtx)

	// Force garbage collection if configured
	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
		"completed_iterations", completed,
	)
	return completed
}

func (wm *Manager) run(ctx context.Context) int {
	if len(wm.scorers)+len(wm.distances)+len(wm.normalizers) == 0 {
		return 0
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()

			done := 0
			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					mu.Lock()
					completed += done
					mu.Unlock()
					return
				default:
				}

				pair := samplePairs[(routineID+j)%len(samplePairs)]
				for _, n := range wm.normalizers {
					_ = n.Normalize(pair.target)
				}
				for _, d := range wm.distances {
					_ = d.Distance(strings.ToLower(pair.target), strings.ToLower(pair.heard))
				}
				for _, s := range wm.scorers {
					_ = s.Compute(ctx, pair.target, pair.heard)
				}
				done++
			}

			mu.Lock()
			completed += done
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	return completed
}

// samplePairs covers exact, near and unrelated matches of typical lengths.
var samplePairs = []struct {
	target string
	heard  string
}{
	{"environment", "environment"},
	{"environment", "enviroment"},
	{"pronunciation", "pronounciation"},
	{"Hello World", " hello world "},
	{"The weather is lovely today", "the weather is lovely to day"},
	{"cat", ""},
	{"I will practice the word 'vocabulary' every day.", "i will practise the word vocabulary every day"},
	{"thought", "taught"},
}
