package actions

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReadDirectives_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mix.txt")
	require.NoError(t, os.WriteFile(path, []byte("#ARTIST Muse\n"), 0o644))

	text, err := readDirectives(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "#ARTIST Muse\n", text)

	_, err = readDirectives(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestReadDirectives_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	_, err = w.WriteString("Song - Artist\n#TOP3 Muse\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	text, err := readDirectives("-", r)
	require.NoError(t, err)
	assert.Equal(t, "Song - Artist\n#TOP3 Muse\n", text)
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, writeOutput("", &stdout, []byte("spotify:track:a\n"), zap.NewNop()))
	assert.Equal(t, "spotify:track:a\n", stdout.String())

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, writeOutput(path, &stdout, []byte("spotify:track:b\n"), zap.NewNop()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:b\n", string(data))
	assert.Equal(t, "spotify:track:a\n", stdout.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestFlushTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	var out bytes.Buffer
	trace := bytes.NewBufferString("Song - Artist\n42 (-1)\n")
	flushTrace(&out, trace, log)
	assert.Equal(t, "Song - Artist\n42 (-1)\n", out.String())
	assert.Zero(t, logs.Len())

	flushTrace(failingWriter{}, bytes.NewBufferString("Song - Artist\n"), log)
	entries := logs.FilterMessage("failed to write track trace").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken pipe", entries[0].ContextMap()["error"])
}

func TestFlushTrace_EmptySkipsWrite(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	flushTrace(failingWriter{}, &bytes.Buffer{}, zap.New(core))

	assert.Zero(t, logs.Len())
}

func TestCloseLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	closeLogged(closerFunc(func() error { return nil }), "porter", log)
	assert.Zero(t, logs.Len())

	closeLogged(closerFunc(func() error { return errors.New("database is locked") }), "porter", log)
	entries := logs.FilterMessage("failed to close porter").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "database is locked", entries[0].ContextMap()["error"])
}
