package fbxview

import (
	"github.com/pkg/errors"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers can test with errors.Is.
var (
	ErrType           = errors.New("invalid type")
	ErrValue          = errors.New("invalid value")
	ErrIndex          = errors.New("index out of range")
	ErrStructure      = errors.New("unexpected document structure")
	ErrAlreadyExists  = errors.New("already exists")
	ErrSingularMatrix = errors.New("singular matrix")
	ErrNotSupported   = errors.New("not supported")
	ErrUnknownFormat  = errors.New("unknown format")
)
