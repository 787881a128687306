// Package buffer provides in-memory audio buffers for the mixing pipeline.
// Buffers hold interleaved float32 samples in [-1, 1] at a single pipeline
// sample rate; every buffer that reaches the compositor is stereo.
package buffer

import "time"

// Buffer is an owned, in-memory audio signal.
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float32 // interleaved, [-1, 1]
}

// Silence returns an all-zero buffer of exactly frames frames.
func Silence(sampleRate, channels, frames int) *Buffer {
	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    make([]float32, frames*channels),
	}
}

// Frames returns the buffer duration in sample frames.
func (b *Buffer) Frames() int {
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer duration as wall-clock time.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	samples := make([]float32, len(b.Samples))
	copy(samples, b.Samples)
	return &Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Samples: samples}
}

// Resize normalizes the buffer to exactly frames frames. An already-correct
// buffer is returned unchanged, a longer one keeps its first frames frames
// (trailing content is dropped), and a shorter one is extended with silence.
func (b *Buffer) Resize(frames int) *Buffer {
	want := frames * b.Channels
	switch {
	case len(b.Samples) == want:
		return b
	case len(b.Samples) > want:
		return &Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Samples: b.Samples[:want]}
	default:
		samples := make([]float32, want)
		copy(samples, b.Samples)
		return &Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Samples: samples}
	}
}

// ApplyGain returns a copy of the buffer scaled by gainDB decibels.
func (b *Buffer) ApplyGain(gainDB float64) *Buffer {
	ratio := float32(DbToLinear(gainDB))
	out := make([]float32, len(b.Samples))
	for i, s := range b.Samples {
		out[i] = s * ratio
	}
	return &Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Samples: out}
}

// Overlay returns the additive sum of b and other. Overlapping samples sum
// without clamping; clipping is corrected downstream by the mastering
// limiter, not here. Both buffers must share rate, channels, and length.
func (b *Buffer) Overlay(other *Buffer) *Buffer {
	out := make([]float32, len(b.Samples))
	copy(out, b.Samples)
	n := len(other.Samples)
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] += other.Samples[i]
	}
	return &Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Samples: out}
}
