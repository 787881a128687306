package buffer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audpbx/audio"
	"github.com/ik5/audpbx/formats/mp3"
	"github.com/ik5/audpbx/formats/vorbis"
	"github.com/ik5/audpbx/formats/wav"
)

// decoders maps file extensions to audpbx decoders. WAV covers the stem and
// premaster files; MP3 and Ogg Vorbis cover externally produced replacement
// tracks.
var decoders = newDecoderRegistry()

func newDecoderRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	return reg
}

// Load decodes an audio file into a stereo Buffer at sampleRate. Files at a
// different native rate are resampled with cubic interpolation; mono input
// is duplicated to both channels. A sampleRate of 0 keeps the file's native
// rate. A nonexistent path yields a MissingFileError carrying the expected
// location.
func Load(path string, sampleRate int) (*Buffer, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &MissingFileError{Path: path}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	dec, ok := decoders.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer src.Close()

	if sampleRate <= 0 {
		sampleRate = src.SampleRate()
	}

	channels := src.Channels()
	var reader audio.Source = src
	if src.SampleRate() != sampleRate {
		reader = audio.NewResampler(src, sampleRate)
	}

	samples, err := readAll(reader, channels)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &Buffer{
		SampleRate: sampleRate,
		Channels:   2,
		Samples:    toStereo(samples, channels),
	}, nil
}

// readAll drains a source into a single interleaved sample slice.
func readAll(src audio.Source, channels int) ([]float32, error) {
	// Chunk size must be a multiple of the channel count.
	buf := make([]float32, 8192*channels)
	var samples []float32

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// toStereo normalizes interleaved samples to two channels: mono is
// duplicated, stereo passes through, and wider layouts keep the front pair.
func toStereo(samples []float32, channels int) []float32 {
	switch {
	case channels == 2:
		return samples
	case channels == 1:
		out := make([]float32, len(samples)*2)
		for i, s := range samples {
			out[2*i] = s
			out[2*i+1] = s
		}
		return out
	default:
		frames := len(samples) / channels
		out := make([]float32, frames*2)
		for f := 0; f < frames; f++ {
			out[2*f] = samples[f*channels]
			out[2*f+1] = samples[f*channels+1]
		}
		return out
	}
}
