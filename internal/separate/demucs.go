package separate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stemforge/stemforge/internal/extcmd"
)

// Demucs runs source separation through the demucs Python package.
type Demucs struct {
	// PythonBin is the interpreter carrying the demucs install; "python3"
	// resolves via PATH when empty.
	PythonBin string

	// Model names the demucs model; "htdemucs" when empty.
	Model string

	// Timeout bounds one separation run; 0 waits indefinitely. Separation
	// of a full-length track on CPU can take several minutes.
	Timeout time.Duration
}

func (d *Demucs) python() string {
	if d.PythonBin != "" {
		return d.PythonBin
	}
	return "python3"
}

func (d *Demucs) model() string {
	if d.Model != "" {
		return d.Model
	}
	return "htdemucs"
}

// Separate runs demucs on inputPath and flattens its nested output layout
// so outDir holds vocals.wav, drums.wav, bass.wav and other.wav directly.
// Previous contents of outDir are removed first.
func (d *Demucs) Separate(ctx context.Context, inputPath, outDir string) error {
	unlock, err := lockDir(outDir)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("separation input: %w", err)
	}
	if err := ClearDir(outDir); err != nil {
		return err
	}

	err = extcmd.Run(ctx, extcmd.Command{
		Name:    "demucs",
		Bin:     d.python(),
		Args:    []string{"-m", "demucs", "-n", d.model(), "-o", outDir, inputPath},
		Timeout: d.Timeout,
	})
	if err != nil {
		return err
	}

	return d.flatten(outDir)
}

// flatten lifts demucs's <outDir>/<model>/<track>/<stem>.wav files up into
// outDir and removes the model directory.
func (d *Demucs) flatten(outDir string) error {
	modelDir := filepath.Join(outDir, d.model())
	trackDir, err := newestSubdir(modelDir)
	if err != nil {
		return fmt.Errorf("locating separated track: %w", err)
	}

	entries, err := os.ReadDir(trackDir)
	if err != nil {
		return fmt.Errorf("reading separated track: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(trackDir, entry.Name())
		dst := filepath.Join(outDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("moving stem %s: %w", entry.Name(), err)
		}
	}

	if err := os.RemoveAll(modelDir); err != nil {
		return fmt.Errorf("removing model dir: %w", err)
	}
	return nil
}

// newestSubdir returns the most recently modified subdirectory of dir.
func newestSubdir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var (
		newest string
		mtime  time.Time
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(mtime) {
			newest = filepath.Join(dir, entry.Name())
			mtime = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no track directory under %s", dir)
	}
	return newest, nil
}
