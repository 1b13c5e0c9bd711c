package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_pronunciation/internal/adapters/logger"
	"github.com/baditaflorin/go_pronunciation/internal/adapters/speech/mock"
)

func TestPathSynthesizesOnce(t *testing.T) {
	backend := &mock.AudioSynthesizer{Audio: []byte("audio"), Ext: "mp3"}
	dir := t.TempDir()
	c, err := New(dir, backend, logger.NewNopLogger())
	require.NoError(t, err)

	first, err := c.Path(context.Background(), "Hello, how are you?", "en")
	require.NoError(t, err)
	second, err := c.Path(context.Background(), "Hello, how are you?", "en")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, backend.Calls(), 1)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)
	assert.Equal(t, dir, filepath.Dir(first))
}

func TestFileName(t *testing.T) {
	c, err := New(t.TempDir(), &mock.AudioSynthesizer{Ext: "mp3"}, logger.NewNopLogger())
	require.NoError(t, err)

	// md5("hello") = 5d41402abc4b2a76b9719d911017c592
	assert.Equal(t, "tts_en_5d41402abc4b2a76.mp3", c.FileName("hello", "en"))
	assert.Equal(t, "tts_en-US_5d41402abc4b2a76.mp3", c.FileName("hello", "en-US"))
	assert.Equal(t, "tts_____5d41402abc4b2a76.mp3", c.FileName("hello", "../"))
	assert.Equal(t, "tts_und_5d41402abc4b2a76.mp3", c.FileName("hello", ""))
}

func TestSpeakPropagatesBackendError(t *testing.T) {
	backendErr := errors.New("backend down")
	c, err := New(t.TempDir(), &mock.AudioSynthesizer{Err: backendErr, Ext: "mp3"}, logger.NewNopLogger())
	require.NoError(t, err)

	assert.ErrorIs(t, c.Speak(context.Background(), "hello", "en"), backendErr)
}

func TestNewValidates(t *testing.T) {
	_, err := New("", &mock.AudioSynthesizer{}, logger.NewNopLogger())
	assert.Error(t, err)
	_, err = New(t.TempDir(), nil, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestURL(t *testing.T) {
	backend := &mock.AudioSynthesizer{Audio: []byte("audio"), Ext: "mp3"}

	c, err := New(t.TempDir(), backend, logger.NewNopLogger())
	require.NoError(t, err)
	path, err := c.Path(context.Background(), "hello", "en")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/audio/tts_en_5d41402abc4b2a76.mp3", c.URL(path))
	assert.Equal(t, DefaultURLPrefix, c.URLPrefix())

	c, err = New(t.TempDir(), backend, logger.NewNopLogger(), WithURLPrefix("static/tts/"))
	require.NoError(t, err)
	assert.Equal(t, "/static/tts", c.URLPrefix())
	assert.Equal(t, "/static/tts/tts_en_5d41402abc4b2a76.mp3", c.URL(filepath.Join(c.Dir(), "tts_en_5d41402abc4b2a76.mp3")))

	_, err = New(t.TempDir(), backend, logger.NewNopLogger(), WithURLPrefix("/"))
	assert.Error(t, err)
}
