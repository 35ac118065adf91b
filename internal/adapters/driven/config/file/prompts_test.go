package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func newPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

func writePrompt(t *testing.T, dir, name, content string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name+".txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".sercha-rag", "prompts"), store.Dir())
}

func TestNewPromptStore_NoIOUntilLoad(t *testing.T) {
	store, dir := newPromptStore(t)
	assert.NoDirExists(t, dir)

	_, err := store.Load(driven.PromptRAGDirect)

	require.NoError(t, err)
	for _, name := range PromptNames() {
		assert.FileExists(t, filepath.Join(dir, name+".txt"))
	}
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestPromptStore_Defaults(t *testing.T) {
	store, _ := newPromptStore(t)

	for _, name := range PromptNames() {
		got, err := store.Load(name)
		require.NoError(t, err, name)
		assert.Equal(t, prompts[name].fallback, got, name)
	}
}

func TestPromptStore_ReadsEditedFile(t *testing.T) {
	store, dir := newPromptStore(t)
	require.NoError(t, store.Install())
	writePrompt(t, dir, driven.PromptRAGDirect, "\n  Q: {query}\nA:  \n", time.Now())

	got, err := store.Load(driven.PromptRAGDirect)

	require.NoError(t, err)
	assert.Equal(t, "Q: {query}\nA:", got)
}

func TestPromptStore_PicksUpChangesByModTime(t *testing.T) {
	store, dir := newPromptStore(t)
	require.NoError(t, store.Install())
	base := time.Now().Add(-time.Hour)

	writePrompt(t, dir, driven.PromptRAGDirect, "first", base)
	got, err := store.Load(driven.PromptRAGDirect)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	writePrompt(t, dir, driven.PromptRAGDirect, "second", base)
	got, err = store.Load(driven.PromptRAGDirect)
	require.NoError(t, err)
	assert.Equal(t, "first", got, "unchanged mod time serves the cache")

	writePrompt(t, dir, driven.PromptRAGDirect, "third", base.Add(time.Minute))
	got, err = store.Load(driven.PromptRAGDirect)
	require.NoError(t, err)
	assert.Equal(t, "third", got)
}

func TestPromptStore_ReloadDropsCache(t *testing.T) {
	store, dir := newPromptStore(t)
	require.NoError(t, store.Install())
	mod := time.Now().Add(-time.Hour)

	writePrompt(t, dir, driven.PromptRAGContext, "one", mod)
	_, err := store.Load(driven.PromptRAGContext)
	require.NoError(t, err)

	writePrompt(t, dir, driven.PromptRAGContext, "two", mod)
	store.Reload()

	got, err := store.Load(driven.PromptRAGContext)
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}

func TestPromptStore_FallbacksForKnownPrompts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
	}{
		{
			name: "deleted file",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, driven.PromptRAGContext+".txt")))
			},
		},
		{
			name: "blank file",
			setup: func(t *testing.T, dir string) {
				writePrompt(t, dir, driven.PromptRAGContext, " \n\t\n", time.Now())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newPromptStore(t)
			require.NoError(t, store.Install())
			tt.setup(t, dir)

			got, err := store.Load(driven.PromptRAGContext)

			require.NoError(t, err)
			assert.Equal(t, prompts[driven.PromptRAGContext].fallback, got)
		})
	}
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, dir := newPromptStore(t)

	_, err := store.Load("nope")
	assert.Error(t, err)

	writePrompt(t, dir, "extra", "custom", time.Now())
	got, err := store.Load("extra")
	require.NoError(t, err)
	assert.Equal(t, "custom", got)
}

func TestPromptStore_InstallKeepsEdits(t *testing.T) {
	store, dir := newPromptStore(t)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	writePrompt(t, dir, driven.PromptStopWords, "END", time.Now())

	require.NoError(t, store.Install())

	data, err := os.ReadFile(filepath.Join(dir, driven.PromptStopWords+".txt"))
	require.NoError(t, err)
	assert.Equal(t, "END", string(data))
}

func TestPromptStore_InstallFailureStillServesDefaults(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	assert.Error(t, store.Install())
	got, err := store.Load(driven.PromptRAGDirect)
	require.NoError(t, err)
	assert.Equal(t, prompts[driven.PromptRAGDirect].fallback, got)
}

func TestPromptStore_ReadmeListsPrompts(t *testing.T) {
	store, dir := newPromptStore(t)
	require.NoError(t, store.Install())

	data, err := os.ReadFile(filepath.Join(dir, "README.md"))

	require.NoError(t, err)
	for _, name := range PromptNames() {
		assert.Contains(t, string(data), name+".txt")
	}
}

func TestPromptStore_ConcurrentLoads(t *testing.T) {
	store, _ := newPromptStore(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := PromptNames()[i%len(PromptNames())]
			got, err := store.Load(name)
			assert.NoError(t, err)
			assert.NotEmpty(t, got)
			if i%5 == 0 {
				store.Reload()
			}
		}(i)
	}
	wg.Wait()
}
