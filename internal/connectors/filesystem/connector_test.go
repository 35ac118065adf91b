package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/markdown"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	sort.Strings(out)
	return out
}

func TestNew_ResolvesFileURI(t *testing.T) {
	c := New("file:///srv/docs")

	assert.Equal(t, "/srv/docs", c.Root())
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "sub", "b.md"), "beta")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "secret")
	writeFile(t, filepath.Join(dir, ".git", "config"), "git")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.dat"), []byte{0xff, 0xfe, 0x00}, 0o644))

	docs, err := New(dir).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.md"}, names(docs))
	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
	}
}

func TestLoad_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paris.txt")
	writeFile(t, path, "Paris is the capital of France.")

	docs, err := New(path).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "paris.txt", docs[0].Name)
	assert.Equal(t, "Paris is the capital of France.", docs[0].Content)
}

func TestLoad_SingleBinaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe}, 0o644))

	_, err := New(path).Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoad_NormalisesByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "guide.md"), "# Guide\n\nRead the **docs**.")
	writeFile(t, filepath.Join(dir, "page.html"), "<p>Hello &amp; welcome</p>")

	docs, err := New(dir).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	content := map[string]string{}
	for _, d := range docs {
		content[d.Name] = d.Content
	}
	assert.Equal(t, "Guide\n\nRead the docs.", content["guide.md"])
	assert.Equal(t, "Hello & welcome", content["page.html"])
}

func TestLoad_SkipsUnsupportedTypes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("\x89PNG"), 0o644))

	docs, err := New(dir).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names(docs))
}

func TestWithNormalisers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "alpha")
	r := normalisers.NewRegistry()
	r.Register(markdown.New())

	_, err := New(path, WithNormalisers(r)).Load(context.Background())

	assert.ErrorIs(t, err, normalisers.ErrUnsupportedType)
}

func TestLoad_Missing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope")).Load(context.Background())

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(dir).Load(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".hidden", true},
		{".git", true},
		{"file.txt", false},
		{"file.hidden", false},
		{".", false},
		{"..", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.name))
		})
	}
}

func TestIsHiddenPath(t *testing.T) {
	root := "/srv/docs"

	assert.True(t, isHiddenPath(root, "/srv/docs/.git/config"))
	assert.True(t, isHiddenPath(root, "/srv/docs/sub/.draft.txt"))
	assert.False(t, isHiddenPath(root, "/srv/docs/sub/a.txt"))
	assert.False(t, isHiddenPath("/home/u/.config/docs", "/home/u/.config/docs/a.txt"))
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		dir       bool
		create    bool
		operation fsnotify.Op
		want      bool
	}{
		{name: "create file", file: "a.txt", create: true, operation: fsnotify.Create, want: true},
		{name: "write file", file: "a.txt", create: true, operation: fsnotify.Write, want: true},
		{name: "remove file", file: "gone.txt", operation: fsnotify.Remove},
		{name: "rename file", file: "gone.txt", operation: fsnotify.Rename},
		{name: "chmod file", file: "a.txt", create: true, operation: fsnotify.Chmod},
		{name: "create directory", file: "sub", dir: true, create: true, operation: fsnotify.Create},
		{name: "hidden file", file: ".a.txt", create: true, operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.create {
				if tt.dir {
					require.NoError(t, os.Mkdir(path, 0o755))
				} else {
					writeFile(t, path, "content")
				}
			}

			got := New(dir).handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			if tt.want {
				assert.Equal(t, path, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestHandleFsEvent_FileRootIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "a.txt")
	sibling := filepath.Join(dir, "b.txt")
	writeFile(t, root, "a")
	writeFile(t, sibling, "b")

	c := New(root)
	c.rootFile = true

	assert.Equal(t, root, c.handleFsEvent(fsnotify.Event{Name: root, Op: fsnotify.Write}))
	assert.Empty(t, c.handleFsEvent(fsnotify.Event{Name: sibling, Op: fsnotify.Write}))
}

func TestWatch_EmitsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs, err := c.Watch(ctx)
	require.NoError(t, err)
	defer c.Close()

	writeFile(t, filepath.Join(dir, "new.txt"), "fresh content")

	select {
	case doc := <-docs:
		assert.Equal(t, "new.txt", doc.Name)
		assert.Equal(t, "fresh content", doc.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for document")
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	c := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())

	docs, err := c.Watch(ctx)
	require.NoError(t, err)
	defer c.Close()

	cancel()

	select {
	case _, ok := <-docs:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatch_Twice(t *testing.T) {
	c := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := c.Watch(ctx)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Watch(ctx)
	assert.ErrorIs(t, err, ErrAlreadyWatching)
}

func TestClose_WithoutWatch(t *testing.T) {
	assert.NoError(t, New(t.TempDir()).Close())
}
