package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/distance"
	adapterlogger "github.com/baditaflorin/go_pronunciation/internal/adapters/logger"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/normalizer"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/phonetic"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/speech/cache"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/speech/elevenlabs"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/speech/google"
	"github.com/baditaflorin/go_pronunciation/internal/config"
	"github.com/baditaflorin/go_pronunciation/internal/core/editdistance"
	"github.com/baditaflorin/go_pronunciation/internal/core/pronunciation"
	"github.com/baditaflorin/go_pronunciation/internal/metrics"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
	"github.com/baditaflorin/go_pronunciation/internal/practice"
	"github.com/baditaflorin/go_pronunciation/internal/warmup"
)

func main() {
	defaults := config.Default()

	// Parse command-line flags. Explicitly set flags override the config file.
	configPath := flag.String("config", "", "YAML config file (optional)")
	envFile := flag.String("env-file", ".env", "dotenv file with secrets (optional)")
	port := flag.Int("port", defaults.Server.Port, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", defaults.Server.ReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", defaults.Server.WriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", defaults.Server.MaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", defaults.Server.Concurrency, "Maximum number of concurrent requests (0 = fasthttp default)")
	warmUp := flag.Bool("warm-up", defaults.Server.WarmUp, "Perform system warm-up on startup")
	logFile := flag.String("log-file", defaults.Server.LogFile, "Log file path (empty = stdout)")
	threshold := flag.Int("threshold", defaults.Scoring.Threshold, "Pass threshold (0-100)")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "read-timeout":
			cfg.Server.ReadTimeout = *readTimeout
		case "write-timeout":
			cfg.Server.WriteTimeout = *writeTimeout
		case "max-request-size":
			cfg.Server.MaxRequestSize = *maxRequestSize
		case "concurrency":
			cfg.Server.Concurrency = *concurrency
		case "warm-up":
			cfg.Server.WarmUp = *warmUp
		case "log-file":
			cfg.Server.LogFile = *logFile
		case "threshold":
			cfg.Scoring.Threshold = *threshold
		}
	})
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// run owns every deferred Close, so exit only after it has returned.
	if err := run(cfg); err != nil {
		os.Exit(1)
	}
}

// run builds and serves the application. Errors are logged before they are
// returned; the logger and the speech clients are closed on every path.
func run(cfg *config.Config) error {
	baseLogger, err := createLogger(cfg.Server.LogFile, cfg.Server.LogJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return err
	}
	logger := adapterlogger.FromExisting(baseLogger)
	defer logger.Close()

	logger.Info("Starting pronunciation HTTP server",
		"port", cfg.Server.Port,
		"read_timeout", cfg.Server.ReadTimeout,
		"write_timeout", cfg.Server.WriteTimeout,
		"max_request_size", cfg.Server.MaxRequestSize,
		"concurrency", cfg.Server.Concurrency,
		"threshold", cfg.Scoring.Threshold,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewPrometheusMetrics(reg)

	scorer, dist, err := initScorer(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize scorer", "error", err)
		return err
	}

	sessionOpts := []practice.Option{
		practice.WithLogger(logger),
		practice.WithMetrics(m),
		practice.WithLanguage(cfg.Speech.Language),
		practice.WithMaxAlternatives(cfg.Speech.MaxAlternatives),
	}

	if cfg.Speech.Google.Enabled {
		recognizer, err := google.NewRecognizer(context.Background(), google.Config{
			CredentialsFile: cfg.Speech.Google.CredentialsFile,
			DefaultLanguage: cfg.Speech.Language,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize speech recognition", "error", err)
			return err
		}
		defer recognizer.Close()
		sessionOpts = append(sessionOpts, practice.WithRecognizer(recognizer))
	} else {
		logger.Warn("Speech recognition disabled; /practice/recognize will return 503")
	}

	var audio audioCache
	if cfg.Speech.ElevenLabs.Enabled {
		synth, err := elevenlabs.New(elevenlabs.Config{
			APIKey:  cfg.Speech.ElevenLabs.APIKey,
			VoiceID: cfg.Speech.ElevenLabs.VoiceID,
			ModelID: cfg.Speech.ElevenLabs.ModelID,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize speech synthesis", "error", err)
			return err
		}
		fileCache, err := cache.New(cfg.Speech.AudioDir, synth, logger,
			cache.WithURLPrefix(cfg.Speech.AudioURLPrefix),
		)
		if err != nil {
			logger.Error("Failed to initialize audio cache", "error", err)
			return err
		}
		audio = fileCache
		sessionOpts = append(sessionOpts, practice.WithSynthesizer(fileCache))
	} else {
		logger.Warn("Speech synthesis disabled; /speak will return 503")
	}

	session, err := practice.NewSession(scorer, sessionOpts...)
	if err != nil {
		logger.Error("Failed to initialize practice session", "error", err)
		return err
	}

	srv := newServer(session, dist, audio, reg, m, logger)

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               srv.requestHandler,
		Name:                  "PronunciationServer",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		MaxRequestBodySize:    cfg.Server.MaxRequestSize,
		Concurrency:           cfg.Server.Concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", "address", addr)
	if err := server.ListenAndServe(addr); err != nil {
		logger.Error("Server error", "error", err)
		return err
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
	return nil
}

// loadConfig reads the dotenv file, the YAML config and the environment.
func loadConfig(path, envFile string) (*config.Config, error) {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)
	return cfg, nil
}

// initScorer builds the scorer selected by the configuration and warms it up.
func initScorer(cfg *config.Config, logger ports.Logger) (ports.Scorer, ports.DistanceCalculator, error) {
	normType := normalizer.DefaultNormalizerType
	if cfg.Scoring.Normalizer == "fast" {
		normType = normalizer.FastNormalizerType
	}
	norm := normalizer.NewNormalizerFactory().CreateNormalizer(normType)

	var dist ports.DistanceCalculator = editdistance.NewCalculator()
	if cfg.Scoring.Distance == "matchr" {
		dist = distance.NewMatchrCalculator()
	}

	var hinter ports.PhoneticHinter
	if cfg.Scoring.PhoneticHints {
		hinter = phonetic.New()
	}

	scorer, err := pronunciation.NewCalculator(
		pronunciation.ScorerConfig{Threshold: cfg.Scoring.Threshold},
		logger,
		norm,
		dist,
		hinter,
	)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Server.WarmUp {
		mgr := warmup.NewManager(logger, warmup.DefaultWarmupConfig())
		mgr.RegisterScorer(scorer)
		mgr.RegisterDistanceCalculator(dist)
		mgr.RegisterNormalizer(norm)
		mgr.WarmUp(context.Background())
	}

	logger.Info("Scorer initialized successfully",
		"normalizer", cfg.Scoring.Normalizer,
		"distance", cfg.Scoring.Distance,
		"phonetic_hints", cfg.Scoring.PhoneticHints,
		"warm_up", cfg.Server.WarmUp,
		"cpus", runtime.NumCPU(),
	)
	return scorer, dist, nil
}

// createLogger creates and configures a logger
func createLogger(logFile string, jsonFormat bool) (l.Logger, error) {
	factory := l.NewStandardFactory()

	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  jsonFormat,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
