package domain

// RawDocument is a file as read from disk, before its text is extracted.
type RawDocument struct {
	// Name is the file's base name.
	Name string

	// MIMEType selects the normaliser (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
