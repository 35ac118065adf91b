// Package normalisers turns files of various text formats into the plain
// text that gets chunked and embedded. Each subpackage handles one family
// of MIME types; the Registry dispatches between them.
package normalisers
