package buffer

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates the file extension has no registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// MissingFileError reports a required input file that does not exist on disk.
// The path is kept so operators can see exactly where the file was expected.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing input file: %s", e.Path)
}
