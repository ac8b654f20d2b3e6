package loop

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func discardLogger() *log.Logger {
	return log.New(discardWriter{}, "", 0)
}

type recordingIterator struct {
	mu         sync.Mutex
	justWokeUp []bool
}

func (r *recordingIterator) Iteration(ctx context.Context, now time.Time, justWokeUp bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.justWokeUp = append(r.justWokeUp, justWokeUp)
	return nil
}

func (r *recordingIterator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.justWokeUp)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	it := &recordingIterator{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, it, Options{Interval: 5 * time.Millisecond}, discardLogger())
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	assert.Greater(t, it.count(), 0)
}

func TestRunRespectsRunForBound(t *testing.T) {
	it := &recordingIterator{}
	start := time.Now()
	elapsed := 0 * time.Millisecond
	nowFn := func() time.Time {
		t := start.Add(elapsed)
		elapsed += 10 * time.Millisecond
		return t
	}
	Run(context.Background(), it, Options{Interval: time.Millisecond, RunFor: 25 * time.Millisecond, Now: nowFn}, discardLogger())
	assert.Greater(t, it.count(), 0)
}

func TestRunDetectsAndRemovesWokeUpSentinel(t *testing.T) {
	dir := t.TempDir()
	sentinel := filepath.Join(dir, "woke-up")
	require.NoError(t, os.WriteFile(sentinel, []byte("1"), 0o644))

	it := &recordingIterator{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, it, Options{Interval: 5 * time.Millisecond, WokeUpFile: sentinel}, discardLogger())
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	it.mu.Lock()
	defer it.mu.Unlock()
	require.NotEmpty(t, it.justWokeUp)
	assert.True(t, it.justWokeUp[0])
	_, err := os.Stat(sentinel)
	assert.True(t, os.IsNotExist(err))
}
