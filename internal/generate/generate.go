// Package generate produces a new instrumental from a melody reference by
// driving an external generative model process. The model follows the
// harmonic contour of the reference while rendering in the prompted style.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stemforge/stemforge/internal/buffer"
	"github.com/stemforge/stemforge/internal/extcmd"
)

// Request describes one generation run.
type Request struct {
	// ReferencePath is the melody reference recording the model conditions
	// on, typically a drums+bass+other mix of the source track.
	ReferencePath string

	// Prompt is the free-text style description.
	Prompt string

	// Duration is the target length in seconds. Matching the source track
	// length gives the best conditioning.
	Duration float64

	// OutputPath receives the generated instrumental as WAV.
	OutputPath string
}

// Generator renders an instrumental for a request. Implementations shell
// out to a model runtime; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, req Request) error
}

// MusicGen drives the musicgen melody model through its Python runtime.
// The script reads its parameters from the environment.
type MusicGen struct {
	// PythonBin is the interpreter carrying the audiocraft install;
	// "python3" resolves via PATH when empty.
	PythonBin string

	// Script is the path to the generation entry point.
	Script string

	// Timeout bounds one generation run; 0 waits indefinitely.
	Timeout time.Duration
}

func (g *MusicGen) python() string {
	if g.PythonBin != "" {
		return g.PythonBin
	}
	return "python3"
}

// Generate runs the model and normalizes its output file to stereo.
func (g *MusicGen) Generate(ctx context.Context, req Request) error {
	if _, err := os.Stat(req.ReferencePath); err != nil {
		return fmt.Errorf("melody reference: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	refDir, refName := filepath.Split(req.ReferencePath)
	env := []string{
		"MUSICGEN_INPUT_DIR=" + filepath.Clean(refDir),
		"MUSICGEN_REFERENCE=" + refName,
		"MUSICGEN_OUTPUT=" + req.OutputPath,
		fmt.Sprintf("MUSICGEN_DURATION=%.1f", req.Duration),
	}
	if req.Prompt != "" {
		env = append(env, "MUSICGEN_PROMPT="+req.Prompt)
	}

	err := extcmd.Run(ctx, extcmd.Command{
		Name:    "musicgen",
		Bin:     g.python(),
		Args:    []string{g.Script},
		Env:     env,
		Timeout: g.Timeout,
	})
	if err != nil {
		return err
	}

	return ensureStereoFile(req.OutputPath)
}

// ensureStereoFile rewrites path in place if the model emitted mono. The
// rest of the pipeline assumes two channels everywhere.
func ensureStereoFile(path string) error {
	buf, err := buffer.Load(path, 0)
	if err != nil {
		return fmt.Errorf("checking generated output: %w", err)
	}
	if buf.Channels == 2 {
		return nil
	}
	// Load already duplicated the mono channel; persist the stereo form.
	if err := buf.WriteWAV(path); err != nil {
		return fmt.Errorf("rewriting generated output as stereo: %w", err)
	}
	return nil
}
