package upload

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when an operation references an upload id
// with no live session
var ErrSessionNotFound = errors.New("upload session not found")

// MissingChunksError is returned when completion is attempted before every
// chunk has arrived. The caller should resubmit the missing chunks and retry.
type MissingChunksError struct {
	Received int
	Expected int
}

func (e *MissingChunksError) Error() string {
	return fmt.Sprintf("not all chunks received: got %d of %d", e.Received, e.Expected)
}

// MissingChunkFileError is returned when the registry recorded a chunk whose
// file is gone from disk. The upload cannot be repaired and must be restarted.
type MissingChunkFileError struct {
	Index int
}

func (e *MissingChunkFileError) Error() string {
	return fmt.Sprintf("chunk %d not found on disk", e.Index)
}

// InvalidFileTypeError is returned when the declared filename's extension is
// not an allowed image type
type InvalidFileTypeError struct {
	Ext string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("invalid file type %q: only images are allowed", e.Ext)
}

// UnknownUseCaseError is returned when a completion request names a use case
// outside the configured profile table
type UnknownUseCaseError struct {
	Tag string
}

func (e *UnknownUseCaseError) Error() string {
	return fmt.Sprintf("unknown upload use case %q", e.Tag)
}
