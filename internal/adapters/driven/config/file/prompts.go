package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// promptDef describes one editable prompt file.
type promptDef struct {
	summary  string
	fallback string
}

var prompts = map[string]promptDef{
	driven.PromptRAGContext: {
		summary: "answers a question from retrieved context; uses {context} and {query}",
		fallback: `Based on the following context, please answer the question.

Context:
{context}

Question: {query}

Answer:`,
	},
	driven.PromptRAGDirect: {
		summary: "answers a question when nothing was retrieved; uses {query}",
		fallback: `Question: {query}

Answer:`,
	},
	driven.PromptStopWords: {
		summary:  `generation stop sequences, one per line; \n is read as a newline`,
		fallback: "Question:\n" + `\n\n`,
	},
}

// PromptNames lists the prompts the store knows about.
func PromptNames() []string {
	names := make([]string, 0, len(prompts))
	for name := range prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type cachedPrompt struct {
	text    string
	modTime time.Time
}

// PromptStore serves prompt templates from <dir>/<name>.txt. Files are
// created from built-in defaults on first use and picked up again whenever
// their modification time changes. A missing, empty or unreadable file
// yields the built-in default.
type PromptStore struct {
	dir string

	installOnce sync.Once

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore returns a store rooted at dir, or ~/.sercha-rag/prompts
// when dir is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".sercha-rag", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Dir returns the directory prompts are read from.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template.
func (s *PromptStore) Load(name string) (string, error) {
	s.installOnce.Do(func() {
		if err := s.Install(); err != nil {
			logger.Warn("prompts: using built-in defaults: %v", err)
		}
	})

	def, known := prompts[name]
	path := s.path(name)

	info, err := os.Stat(path)
	if err != nil {
		if known {
			return def.fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if known {
			logger.Warn("prompts: reading %s: %v", path, err)
			return def.fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" && known {
		text = def.fallback
	}
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	return text, nil
}

// Reload forgets every cached template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Install creates the directory, any missing prompt files and a README.
// Existing files are left untouched.
func (s *PromptStore) Install() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for _, name := range PromptNames() {
		if err := writeIfMissing(s.path(name), prompts[name].fallback); err != nil {
			return fmt.Errorf("install prompt %q: %w", name, err)
		}
	}
	return writeIfMissing(filepath.Join(s.dir, "README.md"), readme())
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readme() string {
	var b strings.Builder
	b.WriteString("# sercha-rag prompts\n\n")
	b.WriteString("Edit these files to change how answers are generated. Edits are\n")
	b.WriteString("picked up on the next question. Delete a file to restore its default.\n\n")
	for _, name := range PromptNames() {
		fmt.Fprintf(&b, "- `%s.txt`: %s\n", name, prompts[name].summary)
	}
	return b.String()
}
