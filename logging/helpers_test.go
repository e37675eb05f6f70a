package logging

import (
	"bytes"
	"sync"
	"testing"

	"github.com/giygas/medications-normalizer/config"
)

// ResetForTest installs a fresh global logger writing to dir and restores a
// nil service when the test ends.
func ResetForTest(t *testing.T, dir string, env config.Environment, level string, retentionWeeks int, maxFileSize int64) *syncBuffer {
	t.Helper()

	console := &syncBuffer{}
	InitLoggerWithOptions(Options{
		LogDir:         dir,
		Env:            env,
		Level:          level,
		RetentionWeeks: retentionWeeks,
		MaxFileSize:    maxFileSize,
		Console:        console,
	})

	t.Cleanup(func() {
		serviceMu.Lock()
		service := DefaultLoggingService
		DefaultLoggingService = nil
		serviceMu.Unlock()
		_ = service.Close()
	})

	return console
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
