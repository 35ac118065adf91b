package normalisers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// ErrUnsupportedType is returned when no normaliser handles a MIME type.
var ErrUnsupportedType = errors.New("unsupported document type")

// fallbackMIMEType is tried for any text/* type without a dedicated normaliser.
const fallbackMIMEType = "text/plain"

// Registry dispatches raw documents to normalisers by MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// Register adds n under each of its MIME types, keeping every list ordered
// by descending priority.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mt], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mt] = list
	}
}

// Get returns the preferred normaliser for mimeType.
func (r *Registry) Get(mimeType string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if list := r.byMIME[baseMIMEType(mimeType)]; len(list) > 0 {
		return list[0], true
	}
	return nil, false
}

// Normalise runs raw through the best matching normaliser.
// Unknown text/* types fall back to the plain text handler.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ValidationError("no document")
	}

	n, ok := r.Get(raw.MIMEType)
	if !ok && strings.HasPrefix(baseMIMEType(raw.MIMEType), "text/") {
		n, ok = r.Get(fallbackMIMEType)
	}
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w", raw.Name, raw.MIMEType, ErrUnsupportedType)
	}

	doc, err := n.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", raw.Name, err)
	}
	return doc, nil
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// baseMIMEType strips parameters such as "; charset=utf-8".
func baseMIMEType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
