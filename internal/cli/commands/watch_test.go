package commands

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/tmdlint/internal/cli/testutil"
	"github.com/leapstack-labs/tmdlint/internal/config"
	"github.com/leapstack-labs/tmdlint/internal/testutil"
)

func TestIsModelChange(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write tmdl", fsnotify.Event{Name: "tables/Sales.tmdl", Op: fsnotify.Write}, true},
		{"create tmdl", fsnotify.Event{Name: "tables/New.tmdl", Op: fsnotify.Create}, true},
		{"remove tmdl", fsnotify.Event{Name: "tables/Old.TMDL", Op: fsnotify.Remove}, true},
		{"chmod tmdl", fsnotify.Event{Name: "tables/Sales.tmdl", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "model.bim", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isModelChange(tt.event))
		})
	}
}

func TestWatchModel_RerunsOnChange(t *testing.T) {
	old := watchDebounce
	watchDebounce = 20 * time.Millisecond
	t.Cleanup(func() { watchDebounce = old })

	model := testutil.WriteModel(t, t.TempDir(), "Sales")
	tr := clitestutil.NewTestRendererMarkdown()
	cc := &CommandContext{
		Cfg:      &config.Config{},
		Logger:   testutil.NewTestLogger(t),
		Renderer: tr.Renderer,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchModel(ctx, cc, model, func(context.Context) error {
			runs.Add(1)
			return nil
		})
	}()

	sales := filepath.Join(model, "definition", "tables", "Sales.tmdl")
	notes := filepath.Join(model, "definition", "notes.txt")
	require.Eventually(t, func() bool {
		testutil.WriteFile(t, notes, "ignored")
		testutil.WriteFile(t, sales, testutil.SalesTable)
		return runs.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	assert.Contains(t, tr.ErrorOutput(), "watching "+model)
}
