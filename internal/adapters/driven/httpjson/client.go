// Package httpjson provides the JSON-over-HTTP call shared by the outbound adapters.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// maxErrorBody bounds how much of a non-2xx body is kept.
const maxErrorBody = 4096

// Request describes one JSON call.
type Request struct {
	// Service names the collaborator in errors (e.g. "ollama", "documents").
	Service string

	Method string
	URL    string

	// Header is added to the request. Content-Type and Accept are set automatically.
	Header http.Header

	// Body is marshalled as the request body when non-nil.
	Body any
}

// Do sends req and decodes a 2xx JSON response into out (which may be nil).
// Transport failures are classified as transient network errors;
// non-2xx responses become *domain.UpstreamHTTPError.
func Do(ctx context.Context, client *http.Client, req Request, out any) error {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", req.Service, err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", req.Service, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	return Send(client, httpReq, req.Service, out)
}

// Send executes a prepared request with the same error mapping as Do.
func Send(client *http.Client, httpReq *http.Request, service string, out any) error {
	resp, err := client.Do(httpReq)
	if err != nil {
		return domain.ClassifyTransportError(service, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp, service); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ClassifyTransportError(service, fmt.Errorf("%s: decode response: %w", service, err))
	}
	return nil
}

// CheckStatus returns an UpstreamHTTPError for non-2xx responses.
func CheckStatus(resp *http.Response, service string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return domain.NewUpstreamHTTPError(service, resp.StatusCode, b)
}
