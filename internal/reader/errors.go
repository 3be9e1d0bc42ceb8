package reader

import "errors"

var (
	// ErrInvalidDocument reports that the byte stream was rejected as a
	// malformed PDF, as opposed to an I/O failure.
	ErrInvalidDocument = errors.New("invalid PDF document")

	// ErrAnnotationResolution reports an unexpected failure while
	// walking a page's annotation graph. It aborts the whole document
	// pass; only "annotation has no resolvable target" is recoverable.
	ErrAnnotationResolution = errors.New("annotation resolution failed")
)
