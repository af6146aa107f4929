package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	png := filepath.Join(dir, "image.png")
	hidden := filepath.Join(dir, ".draft.txt")
	sub := filepath.Join(dir, "sub.md")
	for _, p := range []string{txt, png, hidden} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(sub, 0o755))

	w := New(dir, []string{"txt", ".MD"}, 10*time.Millisecond, arbor.NewLogger())

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"create txt", fsnotify.Event{Name: txt, Op: fsnotify.Create}, true},
		{"write txt", fsnotify.Event{Name: txt, Op: fsnotify.Write}, true},
		{"chmod txt", fsnotify.Event{Name: txt, Op: fsnotify.Chmod}, false},
		{"remove txt", fsnotify.Event{Name: txt, Op: fsnotify.Remove}, false},
		{"other extension", fsnotify.Event{Name: png, Op: fsnotify.Create}, false},
		{"hidden file", fsnotify.Event{Name: hidden, Op: fsnotify.Create}, false},
		{"directory", fsnotify.Event{Name: sub, Op: fsnotify.Create}, false},
		{"vanished file", fsnotify.Event{Name: filepath.Join(dir, "gone.txt"), Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.ev))
		})
	}
}

func TestWatch_ReportsSettledFile(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, []string{".txt"}, 50*time.Millisecond, arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	paths, err := w.Watch(ctx)
	require.NoError(t, err)

	target := filepath.Join(dir, "new.txt")
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "ignored.png"), []byte("x"), 0o644)
		_ = os.WriteFile(target, []byte("first"), 0o644)
		_ = os.WriteFile(target, []byte("second write"), 0o644)
	}()

	select {
	case got := <-paths:
		assert.Equal(t, target, got)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for file event")
	}

	// Both writes settle into a single report.
	select {
	case got := <-paths:
		t.Fatalf("unexpected second report for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	w := New(t.TempDir(), nil, 10*time.Millisecond, arbor.NewLogger())
	ctx, cancel := context.WithCancel(context.Background())
	paths, err := w.Watch(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-paths:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestWatch_LoopExitsWhenWatcherCloses(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, nil, 20*time.Millisecond, arbor.NewLogger())
	fw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	require.NoError(t, fw.Add(dir))

	out := make(chan string)
	go w.loop(context.Background(), fw, out)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, fw.Close())

	select {
	case _, ok := <-out:
		for ok {
			_, ok = <-out
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after the watcher closed")
	}
}

func TestDeliver_ReturnsAfterLoopExit(t *testing.T) {
	settled := make(chan string)
	done := make(chan struct{})
	close(done)

	returned := make(chan struct{})
	go func() {
		deliver("a.txt", settled, done)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked with no reader")
	}
}

func TestDeliver_HandsOffToReader(t *testing.T) {
	settled := make(chan string, 1)
	deliver("a.txt", settled, make(chan struct{}))
	assert.Equal(t, "a.txt", <-settled)
}

func TestWatch_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent"), nil, 0, arbor.NewLogger())
	paths, err := w.Watch(context.Background())
	assert.Error(t, err)
	assert.Nil(t, paths)
}
