// Command pronounce scores transcripts against target phrases from the
// command line, one pair at a time or in batch.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/baditaflorin/l"

	"github.com/baditaflorin/go_pronunciation/pkg/pronunciation"
)

// options holds the parsed command-line flags.
type options struct {
	target        string
	heard         string
	batchFile     string
	threshold     int
	workers       int
	fast          bool
	matchr        bool
	phoneticHints bool
	outputFormat  string
	verbose       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pronounce", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.target, "target", "", "Phrase the speaker was asked to say")
	fs.StringVar(&opts.heard, "heard", "", "Transcript that was recognized")
	fs.StringVar(&opts.batchFile, "batch", "", "File of target<TAB>heard lines ('-' for stdin)")
	fs.IntVar(&opts.threshold, "threshold", 70, "Pass threshold (0-100)")
	fs.IntVar(&opts.workers, "workers", 0, "Batch workers (0 = one per CPU)")
	fs.BoolVar(&opts.fast, "optimize-speed", false, "Use the ASCII fast-path normalizer")
	fs.BoolVar(&opts.matchr, "matchr", false, "Use the matchr Levenshtein implementation")
	fs.BoolVar(&opts.phoneticHints, "phonetic", false, "Report whether the phrases sound alike")
	fs.StringVar(&opts.outputFormat, "output", "text", "Output format: 'text' or 'json'")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log scoring steps to stderr")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pronounce [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  pronounce --target=\"environment\" --heard=\"enviroment\"\n")
		fmt.Fprintf(stderr, "  pronounce --batch=attempts.tsv --workers=4\n")
		fmt.Fprintf(stderr, "  cat attempts.tsv | pronounce --batch=- --output=json\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, validateOptions(opts)
}

func validateOptions(opts options) error {
	if opts.batchFile == "" && opts.target == "" {
		return errors.New("must provide --target or --batch")
	}
	if opts.threshold < 0 || opts.threshold > 100 {
		return errors.New("threshold must be between 0 and 100")
	}
	if opts.outputFormat != "text" && opts.outputFormat != "json" {
		return fmt.Errorf("invalid output format: %s. Must be 'text' or 'json'", opts.outputFormat)
	}
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	logOutput := io.Discard
	if opts.verbose {
		logOutput = stderr
	}
	logger, err := l.NewStandardFactory().CreateLogger(l.Config{
		Output:    logOutput,
		AddSource: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	scorerOpts := []pronunciation.Option{
		pronunciation.WithLogger(logger),
		pronunciation.WithThreshold(opts.threshold),
		pronunciation.WithPhoneticHints(opts.phoneticHints),
	}
	if opts.fast {
		scorerOpts = append(scorerOpts, pronunciation.WithFastNormalizer())
	}
	if opts.matchr {
		scorerOpts = append(scorerOpts, pronunciation.WithMatchrDistance())
	}

	scorer, err := pronunciation.New(scorerOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize scorer: %w", err)
	}
	defer scorer.Close()

	if opts.batchFile != "" {
		return runBatch(ctx, scorer, opts, stdin, stdout, stderr)
	}

	startTime := time.Now()
	result := scorer.Score(ctx, opts.target, opts.heard)
	return outputResult(stdout, opts.outputFormat, result, scorer.Feedback(opts.target, opts.heard), time.Since(startTime))
}

func runBatch(ctx context.Context, scorer *pronunciation.Scorer, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	in := stdin
	if opts.batchFile != "-" {
		f, err := os.Open(opts.batchFile)
		if err != nil {
			return fmt.Errorf("error reading batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	startTime := time.Now()
	stats, err := scorer.ScoreBatch(ctx, in, stdout, opts.workers)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(stderr, "Scored %d lines, %d passed in %.2f ms\n",
			stats.Lines, stats.Passed, float64(time.Since(startTime).Microseconds())/1000)
	}
	return nil
}

type jsonResult struct {
	Score              int                    `json:"score"`
	Passed             bool                   `json:"passed"`
	Threshold          int                    `json:"threshold"`
	Target             string                 `json:"target"`
	Heard              string                 `json:"heard"`
	Distance           int                    `json:"distance"`
	NormalizedDistance float64                `json:"normalized_distance"`
	Feedback           pronunciation.Feedback `json:"feedback"`
	DurationMS         float64                `json:"duration_ms"`
}

// outputResult formats and outputs a single score.
func outputResult(w io.Writer, format string, result pronunciation.Result, fb pronunciation.Feedback, duration time.Duration) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonResult{
			Score:              result.Score,
			Passed:             result.Passed,
			Threshold:          result.Threshold,
			Target:             result.Target,
			Heard:              result.Heard,
			Distance:           result.Distance,
			NormalizedDistance: result.NormalizedDistance,
			Feedback:           fb,
			DurationMS:         float64(duration.Microseconds()) / 1000,
		})
	}

	fmt.Fprintf(w, "=== Pronunciation Score ===\n")
	fmt.Fprintf(w, "Target: %q\n", result.Target)
	fmt.Fprintf(w, "Heard: %q\n", result.Heard)
	fmt.Fprintf(w, "Score: %d\n", result.Score)
	fmt.Fprintf(w, "Result: %s\n", getPassFailString(result.Passed))
	fmt.Fprintf(w, "Distance: %d\n", result.Distance)
	fmt.Fprintf(w, "Threshold: %d\n", result.Threshold)
	if alike, ok := result.Details["sounds_alike"].(bool); ok {
		fmt.Fprintf(w, "Sounds alike: %v\n", alike)
	}
	for _, issue := range fb.Issues {
		switch issue.Kind {
		case "missed":
			fmt.Fprintf(w, "  missed %q\n", issue.Expected)
		case "substituted":
			fmt.Fprintf(w, "  said %q instead of %q\n", issue.Heard, issue.Expected)
		case "extra":
			fmt.Fprintf(w, "  extra %q\n", issue.Heard)
		}
	}
	_, err := fmt.Fprintf(w, "Processing time: %.2f ms\n", float64(duration.Microseconds())/1000)
	return err
}

// getPassFailString returns a human-readable pass/fail string
func getPassFailString(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
