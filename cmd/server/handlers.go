package main

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/speech/google"
	"github.com/baditaflorin/go_pronunciation/internal/core/domain"
	"github.com/baditaflorin/go_pronunciation/internal/core/feedback"
	"github.com/baditaflorin/go_pronunciation/internal/metrics"
	"github.com/baditaflorin/go_pronunciation/internal/ports"
	"github.com/baditaflorin/go_pronunciation/internal/practice"
	"github.com/baditaflorin/go_pronunciation/internal/vocab"
)

const (
	requestTimeout     = 30 * time.Second
	recognitionTimeout = 60 * time.Second
	defaultTopK        = 30
	minVocabularyText  = 10
)

// DistanceRequest asks for the raw edit distance between two strings.
type DistanceRequest struct {
	A string `json:"a" validate:"max=10000"`
	B string `json:"b" validate:"max=10000"`
}

// DistanceResponse is the reply to a DistanceRequest.
type DistanceResponse struct {
	Distance int `json:"distance"`
}

// ScoreRequest scores a transcript the client recognized itself.
type ScoreRequest struct {
	Target string `json:"target" validate:"required,max=1000"`
	Heard  string `json:"heard" validate:"max=1000"`
}

// ScoreResponse represents a pronunciation score response.
type ScoreResponse struct {
	Score              int                    `json:"score"`
	Passed             bool                   `json:"passed"`
	Threshold          int                    `json:"threshold"`
	Target             string                 `json:"target"`
	Heard              string                 `json:"heard"`
	Distance           int                    `json:"distance"`
	NormalizedDistance float64                `json:"normalized_distance"`
	Alternatives       []domain.Alternative   `json:"alternatives,omitempty"`
	Feedback           feedback.Report        `json:"feedback"`
	Details            map[string]interface{} `json:"details,omitempty"`
}

// SpeakRequest asks for a spoken rendition of text.
type SpeakRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
	Lang string `json:"lang" validate:"omitempty,max=35"`
}

// SpeakResponse points at the synthesized audio file.
type SpeakResponse struct {
	Path     string `json:"path"`
	AudioURL string `json:"audio_url"`
}

// VocabularyRequest extracts practice words from a text. TopK 0 selects the
// default of 30 words.
type VocabularyRequest struct {
	Text      string `json:"text" validate:"required"`
	TopK      int    `json:"top_k" validate:"gte=0,lte=500"`
	Lang      string `json:"lang" validate:"omitempty,max=35"`
	WithAudio bool   `json:"with_audio"`
}

// WordAudio links a practice word to its spoken rendition. AudioURL is empty
// when synthesis failed for that word.
type WordAudio struct {
	Word     string `json:"word"`
	AudioURL string `json:"audio_url"`
}

// VocabularyResponse lists practice words and sentences.
type VocabularyResponse struct {
	Words     []string    `json:"words"`
	Sentences []string    `json:"sentences"`
	Audio     []WordAudio `json:"audio,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// audioCache renders text to an audio file and maps it to a public URL.
type audioCache interface {
	Path(ctx context.Context, text, language string) (string, error)
	URL(path string) string
	URLPrefix() string
	Dir() string
}

// server holds the request handlers and their collaborators.
type server struct {
	session        *practice.Session
	distance       ports.DistanceCalculator
	audio          audioCache
	audioFiles     fasthttp.RequestHandler
	metrics        *metrics.PrometheusMetrics
	metricsHandler fasthttp.RequestHandler
	validate       *validator.Validate
	logger         ports.Logger
}

func newServer(
	session *practice.Session,
	distance ports.DistanceCalculator,
	audio audioCache,
	reg *prometheus.Registry,
	m *metrics.PrometheusMetrics,
	logger ports.Logger,
) *server {
	s := &server{
		session:  session,
		distance: distance,
		audio:    audio,
		metrics:  m,
		metricsHandler: fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		),
		validate: validator.New(),
		logger:   logger,
	}
	if audio != nil {
		fs := &fasthttp.FS{
			Root:               audio.Dir(),
			PathRewrite:        fasthttp.NewPathPrefixStripper(len(audio.URLPrefix())),
			GenerateIndexPages: false,
			AcceptByteRange:    true,
		}
		s.audioFiles = fs.NewRequestHandler()
	}
	return s
}

// requestHandler is the main fasthttp request handler
func (s *server) requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Server", "PronunciationServer")

	path := string(ctx.Path())
	switch {
	case s.isAudioPath(path):
		path = s.audio.URLPrefix()
		s.handleAudioFile(ctx)
	default:
		s.route(ctx, path)
		if !knownRoutes[path] {
			path = "unknown"
		}
	}

	duration := time.Since(startTime)
	s.metrics.RecordHTTPRequest(path, ctx.Response.StatusCode(), duration)
	s.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

var knownRoutes = map[string]bool{
	"/metrics":            true,
	"/health":             true,
	"/distance":           true,
	"/score":              true,
	"/practice/recognize": true,
	"/speak":              true,
	"/vocabulary":         true,
}

func (s *server) route(ctx *fasthttp.RequestCtx, path string) {
	switch path {
	case "/metrics":
		s.metricsHandler(ctx)
	case "/health":
		s.handleHealthCheck(ctx)
	case "/distance":
		s.handleDistance(ctx)
	case "/score":
		s.handleScore(ctx)
	case "/practice/recognize":
		s.handleRecognize(ctx)
	case "/speak":
		s.handleSpeak(ctx)
	case "/vocabulary":
		s.handleVocabulary(ctx)
	default:
		writeJSONError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (s *server) isAudioPath(path string) bool {
	return s.audio != nil && strings.HasPrefix(path, s.audio.URLPrefix()+"/")
}

// handleAudioFile serves synthesized audio from the cache directory.
func (s *server) handleAudioFile(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() && !ctx.IsHead() {
		writeJSONError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.audioFiles(ctx)
}

// handleHealthCheck responds to health check requests
func (s *server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	writeJSONResponse(ctx, fasthttp.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"recognition": s.session.CanRecognize(),
		"synthesis":   s.audio != nil,
	})
}

func (s *server) handleDistance(ctx *fasthttp.RequestCtx) {
	var req DistanceRequest
	if !s.decodePost(ctx, &req) {
		return
	}
	writeJSONResponse(ctx, fasthttp.StatusOK, DistanceResponse{Distance: s.distance.Distance(req.A, req.B)})
}

func (s *server) handleScore(ctx *fasthttp.RequestCtx) {
	var req ScoreRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	attempt := s.session.AttemptText(c, req.Target, req.Heard)
	writeJSONResponse(ctx, fasthttp.StatusOK, newScoreResponse(attempt))
}

// handleRecognize transcribes the request body and scores it against the
// target query parameter.
func (s *server) handleRecognize(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeJSONError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	args := ctx.QueryArgs()
	target := string(args.Peek("target"))
	if target == "" {
		writeJSONError(ctx, fasthttp.StatusBadRequest, "target query parameter is required")
		return
	}
	audio := ctx.PostBody()
	if len(audio) == 0 {
		writeJSONError(ctx, fasthttp.StatusBadRequest, "audio body is required")
		return
	}

	req := domain.RecognitionRequest{
		Language: string(args.Peek("lang")),
		Encoding: string(args.Peek("encoding")),
		// The request body buffer is reused by fasthttp after the handler returns.
		Audio: append([]byte(nil), audio...),
	}
	if rate := args.Peek("sample_rate"); len(rate) > 0 {
		n, err := strconv.Atoi(string(rate))
		if err != nil || n < 0 || n > google.MaxSampleRate {
			writeJSONError(ctx, fasthttp.StatusBadRequest,
				"sample_rate must be an integer between 0 and "+strconv.Itoa(google.MaxSampleRate))
			return
		}
		req.SampleRate = n
	}
	if alts := args.Peek("max_alternatives"); len(alts) > 0 {
		n, err := strconv.Atoi(string(alts))
		if err != nil || n < 0 || n > google.MaxAlternatives {
			writeJSONError(ctx, fasthttp.StatusBadRequest,
				"max_alternatives must be an integer between 0 and "+strconv.Itoa(google.MaxAlternatives))
			return
		}
		req.MaxAlternatives = n
	}

	c, cancel := context.WithTimeout(context.Background(), recognitionTimeout)
	defer cancel()

	attempt, err := s.session.Attempt(c, target, req)
	if err != nil {
		if errors.Is(err, domain.ErrRecognitionUnavailable) {
			writeJSONError(ctx, fasthttp.StatusServiceUnavailable, err.Error())
			return
		}
		s.logger.Error("Recognition failed", "error", err)
		writeJSONError(ctx, fasthttp.StatusBadGateway, err.Error())
		return
	}

	writeJSONResponse(ctx, fasthttp.StatusOK, newScoreResponse(attempt))
}

func (s *server) handleSpeak(ctx *fasthttp.RequestCtx) {
	var req SpeakRequest
	if !s.decodePost(ctx, &req) {
		return
	}
	if s.audio == nil {
		writeJSONError(ctx, fasthttp.StatusServiceUnavailable, domain.ErrSynthesisUnavailable.Error())
		return
	}

	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	path, err := s.audio.Path(c, req.Text, req.Lang)
	if err != nil {
		s.logger.Error("Speech synthesis failed", "error", err)
		writeJSONError(ctx, fasthttp.StatusBadGateway, err.Error())
		return
	}
	writeJSONResponse(ctx, fasthttp.StatusOK, SpeakResponse{Path: path, AudioURL: s.audio.URL(path)})
}

func (s *server) handleVocabulary(ctx *fasthttp.RequestCtx) {
	var req VocabularyRequest
	if !s.decodePost(ctx, &req) {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Text)) < minVocabularyText {
		writeJSONError(ctx, fasthttp.StatusBadRequest,
			"text must contain at least "+strconv.Itoa(minVocabularyText)+" characters")
		return
	}
	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	words := vocab.Extract(req.Text, topK)
	resp := VocabularyResponse{
		Words:     words,
		Sentences: vocab.SampleSentences(words),
	}
	if req.WithAudio {
		if s.audio == nil {
			writeJSONError(ctx, fasthttp.StatusServiceUnavailable, domain.ErrSynthesisUnavailable.Error())
			return
		}
		c, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp.Audio = s.wordAudio(c, words, req.Lang)
	}
	writeJSONResponse(ctx, fasthttp.StatusOK, resp)
}

// wordAudio synthesizes each word. A failed word keeps an empty URL so one
// bad word does not fail the list.
func (s *server) wordAudio(ctx context.Context, words []string, lang string) []WordAudio {
	out := make([]WordAudio, 0, len(words))
	for _, w := range words {
		entry := WordAudio{Word: w}
		path, err := s.audio.Path(ctx, w, lang)
		if err != nil {
			s.logger.Warn("Word synthesis failed", "word", w, "error", err)
		} else {
			entry.AudioURL = s.audio.URL(path)
		}
		out = append(out, entry)
	}
	return out
}

// decodePost rejects non-POST requests, then decodes and validates the JSON
// body into dst. It writes the error response itself and reports whether the
// handler should continue.
func (s *server) decodePost(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if !ctx.IsPost() {
		writeJSONError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		writeJSONError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSONError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func newScoreResponse(attempt practice.Attempt) ScoreResponse {
	r := attempt.Result
	return ScoreResponse{
		Score:              r.Score,
		Passed:             r.Passed,
		Threshold:          r.Threshold,
		Target:             r.Target,
		Heard:              r.Heard,
		Distance:           r.Distance,
		NormalizedDistance: r.NormalizedDistance,
		Alternatives:       attempt.Recognition.Alternatives,
		Feedback:           attempt.Feedback,
		Details:            r.Details,
	}
}

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		writeJSONError(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)

	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}
	ctx.SetBody(response)
}
