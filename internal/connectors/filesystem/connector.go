// Package filesystem reads local files as documents and watches directories
// for new or changed files. File text is extracted by MIME type through a
// normaliser registry.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
)

// DefaultDebounce is how long a file must be quiet before it is re-read.
const DefaultDebounce = 500 * time.Millisecond

// MaxFileSize bounds a single document read from disk.
const MaxFileSize = 32 << 20

// Errors returned by the connector.
var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrAlreadyWatching = errors.New("connector is already watching")
)

// Connector loads documents from a file or directory tree.
type Connector struct {
	rootPath    string
	rootFile    bool
	debounce    time.Duration
	normalisers driven.NormaliserRegistry

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithNormalisers sets the registry used to extract file text.
func WithNormalisers(r driven.NormaliserRegistry) Option {
	return func(c *Connector) {
		c.normalisers = r
	}
}

// WithDebounce sets how long a file must be quiet before it is re-read.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		c.debounce = d
	}
}

// New creates a connector rooted at path. file:// URIs are accepted.
func New(path string, opts ...Option) *Connector {
	c := &Connector{
		rootPath: ResolvePath(path),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.normalisers == nil {
		c.normalisers = normalisers.Default()
	}
	return c
}

// Root returns the resolved root path.
func (c *Connector) Root() string {
	return c.rootPath
}

// Load reads every visible file under the root.
// Hidden files and directories are skipped, as are files no normaliser accepts.
func (c *Connector) Load(ctx context.Context) ([]domain.Document, error) {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", c.rootPath, err)
	}

	if !info.IsDir() {
		doc, err := c.ReadDocument(ctx, c.rootPath)
		if err != nil {
			return nil, err
		}
		return []domain.Document{*doc}, nil
	}

	var docs []domain.Document
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		doc, err := c.ReadDocument(ctx, path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		docs = append(docs, *doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", c.rootPath, err)
	}

	logger.Debug("Loaded %d documents from %s", len(docs), c.rootPath)
	return docs, nil
}

// ReadDocument reads one file as a document named after its base name.
func (c *Connector) ReadDocument(ctx context.Context, path string) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrFileTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	return c.normalisers.Normalise(ctx, &domain.RawDocument{
		Name:     name,
		MIMEType: normalisers.DetectMIMEType(name),
		Content:  data,
	})
}

// Watch emits a document each time a visible file under the root is created
// or written. Events for one file are coalesced until it has been quiet for
// the debounce interval. The channel closes when ctx is done.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		return nil, ErrAlreadyWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if info, err := os.Stat(c.rootPath); err == nil {
		c.rootFile = !info.IsDir()
	}
	if err := addTree(watcher, c.rootPath); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	out := make(chan domain.Document)
	go c.watchLoop(ctx, watcher, out)
	return out, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.Document) {
	defer close(out)

	pending := make(map[string]struct{})
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if path := c.handleFsEvent(event); path != "" {
				pending[path] = struct{}{}
				flush = time.After(c.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)

		case <-flush:
			flush = nil
			for path := range pending {
				delete(pending, path)
				doc, err := c.ReadDocument(ctx, path)
				if err != nil {
					logger.Warn("Skipping %s: %v", path, err)
					continue
				}
				select {
				case out <- *doc:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent returns the file to re-read for an event, or "" to ignore it.
// New directories are added to the watch.
func (c *Connector) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	if c.rootFile && filepath.Clean(event.Name) != filepath.Clean(c.rootPath) {
		return ""
	}
	if !c.rootFile && isHiddenPath(c.rootPath, event.Name) {
		return ""
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			c.mu.Lock()
			if c.watcher != nil {
				if err := addTree(c.watcher, event.Name); err != nil {
					logger.Warn("Watching %s: %v", event.Name, err)
				}
			}
			c.mu.Unlock()
		}
		return ""
	}
	if !info.Mode().IsRegular() {
		return ""
	}
	return event.Name
}

// Close stops watching.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// addTree watches root and every visible directory below it.
// A file root watches its parent directory.
func addTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether a path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// isHiddenPath reports whether any element of path below root is hidden.
func isHiddenPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}
