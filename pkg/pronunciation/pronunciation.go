// Package pronunciation is the public entry point for scoring how close a
// recognized transcript is to the phrase a learner was asked to say.
package pronunciation

import (
	"context"
	"io"
	"sync"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/distance"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/logger"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/normalizer"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/phonetic"
	"github.com/baditaflorin/go_pronunciation/internal/batch"
	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/core/editdistance"
	"github.com/baditaflorin/go_pronunciation/internal/core/feedback"
	core "github.com/baditaflorin/go_pronunciation/internal/core/pronunciation"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
	"github.com/baditaflorin/go_pronunciation/internal/warmup"
	"github.com/baditaflorin/l"
)

// Result is the outcome of one scoring call.
type Result = domain.Result

// Feedback is the word-level report for an attempt.
type Feedback = feedback.Report

// BatchStats summarizes a ScoreBatch run.
type BatchStats = batch.Stats

// Scorer computes pronunciation scores.
type Scorer struct {
	calculator ports.Scorer
	distance   ports.DistanceCalculator
	logger     ports.Logger
	normalizer ports.Normalizer
	warmOnce   sync.Once
}

// Option defines a functional option for configuring Scorer.
type Option func(*scorerConfig)

type scorerConfig struct {
	Threshold     int
	Logger        ports.Logger
	Normalizer    ports.Normalizer
	Distance      ports.DistanceCalculator
	PhoneticHints bool
	WarmUp        bool
	WarmUpConfig  warmup.WarmupConfig
}

// WithThreshold sets the score at or above which an attempt passes.
func WithThreshold(th int) Option {
	return func(cfg *scorerConfig) {
		cfg.Threshold = th
	}
}

// WithLogger sets a custom logger.
func WithLogger(l l.Logger) Option {
	return func(cfg *scorerConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithNormalizer sets a custom normalizer. It must trim and lowercase to
// keep scores comparable.
func WithNormalizer(normalizer ports.Normalizer) Option {
	return func(cfg *scorerConfig) {
		cfg.Normalizer = normalizer
	}
}

// WithFastNormalizer sets the ASCII fast-path normalizer.
func WithFastNormalizer() Option {
	return func(cfg *scorerConfig) {
		normFactory := normalizer.NewNormalizerFactory()
		cfg.Normalizer = normFactory.CreateNormalizer(normalizer.FastNormalizerType)
	}
}

// WithDistanceCalculator replaces the built-in edit distance.
func WithDistanceCalculator(calc ports.DistanceCalculator) Option {
	return func(cfg *scorerConfig) {
		cfg.Distance = calc
	}
}

// WithMatchrDistance uses the matchr Levenshtein implementation.
func WithMatchrDistance() Option {
	return func(cfg *scorerConfig) {
		cfg.Distance = distance.NewMatchrCalculator()
	}
}

// WithPhoneticHints reports whether the two phrases sound alike in the
// result details. The score is unaffected.
func WithPhoneticHints(enable bool) Option {
	return func(cfg *scorerConfig) {
		cfg.PhoneticHints = enable
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *scorerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) Option {
	return func(cfg *scorerConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Scorer.
func New(opts ...Option) (*Scorer, error) {
	config := &scorerConfig{
		Threshold:    core.DefaultConfig().Threshold,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}
	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewDefaultNormalizer()
	}
	if config.Distance == nil {
		config.Distance = editdistance.NewCalculator()
	}

	var hinter ports.PhoneticHinter
	if config.PhoneticHints {
		hinter = phonetic.New()
	}

	calculator, err := core.NewCalculator(
		core.ScorerConfig{Threshold: config.Threshold},
		config.Logger,
		config.Normalizer,
		config.Distance,
		hinter,
	)
	if err != nil {
		return nil, err
	}

	s := &Scorer{
		calculator: calculator,
		distance:   config.Distance,
		logger:     config.Logger,
		normalizer: config.Normalizer,
	}

	if config.WarmUp {
		s.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return s, nil
}

// Score rates heard against target.
func (s *Scorer) Score(ctx context.Context, target, heard string) Result {
	return s.calculator.Compute(ctx, target, heard)
}

// Distance returns the edit distance between a and b without normalization.
func (s *Scorer) Distance(a, b string) int {
	return s.distance.Distance(a, b)
}

// Feedback aligns the normalized words of target and heard.
func (s *Scorer) Feedback(target, heard string) Feedback {
	return feedback.Words(s.normalizer.Normalize(target), s.normalizer.Normalize(heard))
}

// ScoreBatch reads target<TAB>heard lines from r and writes
// target<TAB>heard<TAB>score<TAB>distance lines to w in input order.
// workers <= 0 uses one worker per CPU.
func (s *Scorer) ScoreBatch(ctx context.Context, r io.Reader, w io.Writer, workers int) (BatchStats, error) {
	p, err := batch.NewProcessor(s.calculator, s.logger, workers)
	if err != nil {
		return BatchStats{}, err
	}
	return p.Process(ctx, r, w)
}

// WarmUp performs system warm-up to optimize performance.
func (s *Scorer) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	ran := false
	s.warmOnce.Do(func() {
		warmupMgr := warmup.NewManager(s.logger, config)
		warmupMgr.RegisterScorer(s.calculator)
		warmupMgr.RegisterDistanceCalculator(s.distance)
		warmupMgr.RegisterNormalizer(s.normalizer)

		warmupMgr.WarmUp(ctx)
		ran = true
	})
	if !ran {
		s.logger.Debug("System already warmed up, skipping")
	}
}

// Close releases the logger.
func (s *Scorer) Close() error {
	return s.logger.Close()
}
