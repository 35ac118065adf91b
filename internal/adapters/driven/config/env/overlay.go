// Package env layers environment variables over a file-backed ConfigStore.
//
// Every dot key maps to one variable: "documents.top_k" is read from
// SERCHA_RAG_DOCUMENTS_TOP_K. Provider keys additionally fall back to the
// conventional BING_API_KEY, OPENAI_API_KEY and ANTHROPIC_API_KEY when neither
// the environment nor the file sets them.
package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Prefix is prepended to every derived variable name.
const Prefix = "SERCHA_RAG_"

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set.
// Missing files are ignored when optional is true.
func LoadDotEnv(optional bool, files ...string) error {
	for _, f := range files {
		if optional {
			if _, err := os.Stat(f); os.IsNotExist(err) {
				continue
			}
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// Overlay is a ConfigStore whose reads prefer environment variables.
// Writes go to the base store only.
type Overlay struct {
	driven.ConfigStore
	lookup LookupFunc
}

// NewOverlay wraps base. A nil lookup reads the process environment.
func NewOverlay(base driven.ConfigStore, lookup LookupFunc) *Overlay {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Overlay{ConfigStore: base, lookup: lookup}
}

// VarName returns the environment variable that overrides key.
func VarName(key string) string {
	return Prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// raw returns the environment value for key, including provider fallbacks.
func (o *Overlay) raw(key string) (string, bool) {
	if v, ok := o.lookup(VarName(key)); ok && v != "" {
		return v, true
	}
	if _, ok := o.ConfigStore.Get(key); ok {
		return "", false
	}

	var alias string
	switch key {
	case "web_search.api_key":
		alias = "BING_API_KEY"
	case "embedding.api_key":
		alias = aliasFor(o.GetString("embedding.provider"))
	case "llm.api_key":
		alias = aliasFor(o.GetString("llm.provider"))
	}
	if alias == "" {
		return "", false
	}
	if v, ok := o.lookup(alias); ok && v != "" {
		return v, true
	}
	return "", false
}

func aliasFor(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// Get returns the environment value parsed as int64, float64 or bool when it
// looks like one, falling back to the base store.
func (o *Overlay) Get(key string) (any, bool) {
	v, ok := o.raw(key)
	if !ok {
		return o.ConfigStore.Get(key)
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, true
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b, true
	}
	return v, true
}

// GetString returns the raw environment value or the base value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.raw(key); ok {
		return v
	}
	return o.ConfigStore.GetString(key)
}

// GetInt parses the environment value or defers to the base store.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.raw(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return i
	}
	return o.ConfigStore.GetInt(key)
}

// GetBool parses the environment value or defers to the base store.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.raw(key); ok {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return o.ConfigStore.GetBool(key)
}

// GetStringSlice splits a comma-separated environment value.
func (o *Overlay) GetStringSlice(key string) []string {
	v, ok := o.raw(key)
	if !ok {
		return o.ConfigStore.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
