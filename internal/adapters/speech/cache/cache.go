// Package cache stores synthesized phrases on disk so each phrase is sent to
// the speech backend once.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baditaflorin/go_pronunciation/internal/ports"
)

// FileCache wraps an AudioSynthesizer with a content-addressed directory.
// Files are named tts_<lang>_<md5(text)[:16]>.<format>.
type FileCache struct {
	dir       string
	urlPrefix string
	backend   ports.AudioSynthesizer
	logger    ports.Logger
}

// DefaultURLPrefix is the public path under which cached files are served.
const DefaultURLPrefix = "/uploads/audio"

// Option configures a FileCache.
type Option func(*FileCache)

// WithURLPrefix sets the public path prefix returned by URL.
func WithURLPrefix(prefix string) Option {
	return func(c *FileCache) {
		c.urlPrefix = prefix
	}
}

var _ ports.Synthesizer = (*FileCache)(nil)

// New creates the cache directory if needed.
func New(dir string, backend ports.AudioSynthesizer, logger ports.Logger, opts ...Option) (*FileCache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if backend == nil {
		return nil, errors.New("synthesizer backend is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio cache directory: %w", err)
	}
	c := &FileCache{dir: dir, urlPrefix: DefaultURLPrefix, backend: backend, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	c.urlPrefix = "/" + strings.Trim(c.urlPrefix, "/")
	if c.urlPrefix == "/" {
		return nil, errors.New("url prefix must not be the root path")
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string {
	return c.dir
}

// URLPrefix returns the public path prefix, without a trailing slash.
func (c *FileCache) URLPrefix() string {
	return c.urlPrefix
}

// URL maps a cached file path to its public URL path.
func (c *FileCache) URL(path string) string {
	return c.urlPrefix + "/" + filepath.Base(path)
}

// FileName returns the cache file name for text in language.
func (c *FileCache) FileName(text, language string) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("tts_%s_%s.%s", sanitize(language), hex.EncodeToString(sum[:])[:16], c.backend.Format())
}

// Path returns the cached audio file for text, synthesizing it first when
// it does not exist yet.
func (c *FileCache) Path(ctx context.Context, text, language string) (string, error) {
	path := filepath.Join(c.dir, c.FileName(text, language))
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("Audio cache hit", "path", path)
		return path, nil
	}

	audio, err := c.backend.Synthesize(ctx, text, language)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(c.dir, ".tts-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close audio file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move audio file into cache: %w", err)
	}

	c.logger.Debug("Audio cached", "path", path, "bytes", len(audio))
	return path, nil
}

// Speak renders text into the cache so the caller can play it back.
func (c *FileCache) Speak(ctx context.Context, text, language string) error {
	_, err := c.Path(ctx, text, language)
	return err
}

func sanitize(language string) string {
	if language == "" {
		return "und"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, language)
}
