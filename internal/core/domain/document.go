package domain

import (
	"crypto/md5" //nolint:gosec // content hash, not a security boundary
	"encoding/hex"
)

// Document is one uploaded file awaiting ingestion.
// It exists only for the duration of an upload request.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the original file name.
	Name string

	// Content is the full UTF-8 text of the file.
	Content string
}

// Chunk is a bounded-length text fragment cut from a Document.
// Chunks are immutable and discarded after embedding.
type Chunk struct {
	// Text is the window exactly as cut from the document.
	Text string

	// SourceDocID links to the parent Document.
	SourceDocID string

	// SequenceIndex is the ordinal position among the document's kept chunks.
	SequenceIndex int
}

// IngestStatusSuccess is the status reported for a fully ingested upload batch.
const IngestStatusSuccess = "success"

// IngestReport summarises one upload batch.
type IngestReport struct {
	// Status is "success" when the whole batch was committed.
	Status string `json:"status"`

	// ProcessedDocuments is the number of documents read.
	ProcessedDocuments int `json:"processed_documents"`

	// TotalChunks is the number of chunks committed to the store.
	TotalChunks int `json:"total_chunks"`
}

// HashText returns the hex MD5 digest of text.
// The digest is advisory and used for optional de-duplication.
func HashText(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}
