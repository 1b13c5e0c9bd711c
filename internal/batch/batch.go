// Package batch scores many target/heard pairs read from a line-oriented
// stream with a bounded pool of workers.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

const (
	// DefaultWorkers is the default number of worker goroutines.
	DefaultWorkers = 0 // 0 means use runtime.NumCPU()

	// MaxLineSize bounds a single input line.
	MaxLineSize = 1024 * 1024
)

// Line is one scored input line.
type Line struct {
	Number int
	Target string
	Heard  string
	Result domain.Result
}

// Stats summarizes a batch run.
type Stats struct {
	Lines  int
	Passed int
}

// Processor scores target<TAB>heard lines.
type Processor struct {
	scorer  ports.Scorer
	logger  ports.Logger
	workers int
}

// NewProcessor creates a batch processor. workers <= 0 uses runtime.NumCPU().
func NewProcessor(scorer ports.Scorer, logger ports.Logger, workers int) (*Processor, error) {
	if scorer == nil {
		return nil, errors.New("batch: scorer is required")
	}
	if logger == nil {
		return nil, errors.New("batch: logger is required")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Processor{scorer: scorer, logger: logger, workers: workers}, nil
}

// ParseLine splits a line at its first tab. A line without a tab is a
// target with an empty transcript.
func ParseLine(line string) (target, heard string) {
	line = strings.TrimRight(line, "\r")
	target, heard, _ = strings.Cut(line, "\t")
	return target, heard
}

// Score reads every line from r and returns the results in input order.
// Blank lines are skipped.
func (p *Processor) Score(ctx context.Context, r io.Reader) ([]Line, error) {
	var lines []Line

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	number := 0
	for scanner.Scan() {
		number++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		target, heard := ParseLine(text)
		lines = append(lines, Line{Number: number, Target: target, Heard: heard})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("batch: read input: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines[i].Result = p.scorer.Compute(gctx, lines[i].Target, lines[i].Heard)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("Batch scored", "lines", len(lines), "workers", p.workers)
	return lines, nil
}

// Process scores r and writes target\theard\tscore\tdistance lines to w in
// input order.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	lines, err := p.Score(ctx, r)
	if err != nil {
		return Stats{}, err
	}

	bw := bufio.NewWriter(w)
	stats := Stats{Lines: len(lines)}
	for _, line := range lines {
		if line.Result.Passed {
			stats.Passed++
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%d\t%d\n",
			line.Target, line.Heard, line.Result.Score, line.Result.Distance); err != nil {
			return stats, fmt.Errorf("batch: write output: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("batch: write output: %w", err)
	}

	p.logger.Info("Batch completed", "lines", stats.Lines, "passed", stats.Passed)
	return stats, nil
}
