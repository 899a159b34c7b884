package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) submit(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestHandleEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(file, []byte("# r"), 0o644))
	hidden := filepath.Join(dir, ".report.md")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o644))
	unsupported := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(unsupported, []byte("x"), 0o644))
	sub := filepath.Join(dir, "nested.md")
	require.NoError(t, os.Mkdir(sub, 0o755))

	w := New(dir, time.Millisecond, func(string) error { return nil }, nil)

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"create", file, fsnotify.Create, true},
		{"write", file, fsnotify.Write, true},
		{"chmod", file, fsnotify.Chmod, false},
		{"remove", file, fsnotify.Remove, false},
		{"hidden", hidden, fsnotify.Create, false},
		{"unsupported", unsupported, fsnotify.Create, false},
		{"directory", sub, fsnotify.Create, false},
		{"vanished", filepath.Join(dir, "gone.txt"), fsnotify.Create, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := w.handleEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.path, path)
			}
		})
	}
}

func TestRunSubmitsSettledFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	rec := &recorder{}
	w := New(dir, 30*time.Millisecond, rec.submit, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.got()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{existing}, rec.got())

	dropped := filepath.Join(dir, "杭州.md")
	f, err := os.Create(dropped)
	require.NoError(t, err)
	for range 3 {
		_, err := f.WriteString("杭州 电子信息\n")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial.md"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(rec.got()) == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{existing, dropped}, rec.got())

	cancel()
	assert.NoError(t, <-done)
}
