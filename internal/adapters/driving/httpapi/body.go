package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// MaxJSONBody bounds JSON request bodies.
const MaxJSONBody = 1 << 20

// readJSON reads a bounded body, validates it against schema when one is
// given, and decodes it over out so preset fields act as defaults.
func readJSON(w http.ResponseWriter, r *http.Request, schema map[string]any, out any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	if err != nil {
		return domain.ValidationError("read body: %v", err)
	}
	if schema != nil {
		if err := validateBody(schema, body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.ValidationError("invalid JSON body: %v", err)
	}
	return nil
}
