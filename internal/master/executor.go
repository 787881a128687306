package master

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stemforge/stemforge/internal/extcmd"
)

// OutputFormat pins the encoded output of a mastering run. The chain always
// renders 16-bit PCM stereo so downstream consumers never have to probe.
type OutputFormat struct {
	SampleRate int
	Channels   int
	Codec      string
}

// DefaultOutputFormat returns the canonical mastered-output format at the
// given sample rate.
func DefaultOutputFormat(sampleRate int) OutputFormat {
	return OutputFormat{
		SampleRate: sampleRate,
		Channels:   2,
		Codec:      "pcm_s16le",
	}
}

// Executor applies a rendered filter spec to an input file, producing the
// mastered output file. Implementations shell out to an encoder; tests
// substitute fakes.
type Executor interface {
	Run(ctx context.Context, inPath, outPath, filterSpec string, format OutputFormat) error
}

// MasteringError reports a failed mastering run. The executor's stderr is
// preserved verbatim inside the wrapped error.
type MasteringError struct {
	InPath string
	Err    error
}

func (e *MasteringError) Error() string {
	return fmt.Sprintf("mastering %s: %v", e.InPath, e.Err)
}

func (e *MasteringError) Unwrap() error { return e.Err }

// FFmpegExecutor runs the chain through an external ffmpeg process.
type FFmpegExecutor struct {
	// Bin is the ffmpeg executable; "ffmpeg" resolves via PATH when empty.
	Bin string

	// Timeout bounds a single run; 0 waits indefinitely.
	Timeout time.Duration
}

func (x *FFmpegExecutor) bin() string {
	if x.Bin != "" {
		return x.Bin
	}
	return "ffmpeg"
}

// Run invokes ffmpeg with the filter spec, overwriting outPath.
func (x *FFmpegExecutor) Run(ctx context.Context, inPath, outPath, filterSpec string, format OutputFormat) error {
	args := []string{
		"-y",
		"-i", inPath,
		"-af", filterSpec,
		"-acodec", format.Codec,
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		outPath,
	}

	return extcmd.Run(ctx, extcmd.Command{
		Name:    "ffmpeg",
		Bin:     x.bin(),
		Args:    args,
		Timeout: x.Timeout,
	})
}

// Apply renders cfg's filter chain and runs it over inPath, writing the
// mastered result to outPath in the given format.
func Apply(ctx context.Context, exec Executor, cfg *ChainConfig, inPath, outPath string, format OutputFormat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	spec := cfg.BuildFilterSpec()
	if err := exec.Run(ctx, inPath, outPath, spec, format); err != nil {
		var te *extcmd.TimeoutError
		if errors.As(err, &te) {
			return err
		}
		return &MasteringError{InPath: inPath, Err: err}
	}
	return nil
}
