package textsplitter

import "errors"

const (
	// DefaultChunkSize is the default chunk size in characters.
	DefaultChunkSize = 2000
)

var (
	ErrInvalidChunkSize = errors.New("invalid chunk size")
)
