// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded window of document text
//   - BinaryVector: A sign-quantised, bit-packed embedding
//   - IndexEntry / SearchHit: Vector store rows and matches
//   - QueryRequest / QueryContext / Answer: One question's lifecycle
//   - Outcome: The explicit result value of a retrieval stage
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
