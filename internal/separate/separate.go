// Package separate splits a mixed recording into per-instrument stems by
// driving an external source-separation model. Stem files land directly in
// the caller's output directory as <stem>.wav.
package separate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StemNames lists the files a four-stem separation produces, without the
// .wav extension.
var StemNames = []string{"vocals", "drums", "bass", "other"}

// Separator produces stem files for an input recording. Implementations
// must leave outDir containing only the stems of the given input; any
// previous contents are gone when Separate returns successfully.
type Separator interface {
	Separate(ctx context.Context, inputPath, outDir string) error
}

// dirLocks serializes separations targeting the same output directory.
// Concurrent runs into one directory would interleave their stale-output
// clearing and flattening.
var dirLocks sync.Map // abs dir path -> *sync.Mutex

func lockDir(dir string) (unlock func(), err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving separation dir: %w", err)
	}
	mu, _ := dirLocks.LoadOrStore(abs, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock, nil
}

// ClearDir removes every entry inside dir, creating it if absent. Stale
// stems from a previous track must never survive into a new separation.
func ClearDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating separation dir: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading separation dir: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("clearing stale output %s: %w", entry.Name(), err)
		}
	}
	return nil
}
