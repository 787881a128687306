package buffer

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeTestWAV renders a stereo sine tone to a WAV file and returns its path.
func writeTestWAV(t *testing.T, sampleRate int, frames int, freq float64) string {
	t.Helper()

	b := Silence(sampleRate, 2, frames)
	for f := 0; f < frames; f++ {
		s := float32(0.5 * math.Sin(2*math.Pi*freq*float64(f)/float64(sampleRate)))
		b.Samples[2*f] = s
		b.Samples[2*f+1] = s
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := b.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.wav")

	_, err := Load(path, 44100)
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var missing *MissingFileError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFileError, got %T: %v", err, err)
	}
	if missing.Path != path {
		t.Errorf("error path = %q, want %q", missing.Path, path)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, 44100)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	const rate = 44100
	const frames = 4410 // 100ms

	path := writeTestWAV(t, rate, frames, 440)

	got, err := Load(path, rate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.SampleRate != rate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, rate)
	}
	if got.Channels != 2 {
		t.Errorf("Channels = %d, want 2", got.Channels)
	}
	if got.Frames() != frames {
		t.Errorf("Frames = %d, want %d", got.Frames(), frames)
	}

	// 16-bit quantization bounds the round-trip error.
	want := float32(0.5 * math.Sin(2*math.Pi*440*100/float64(rate)))
	if diff := math.Abs(float64(got.Samples[200] - want)); diff > 1e-3 {
		t.Errorf("sample 200 off by %v after round trip", diff)
	}
}

func TestLoadResamples(t *testing.T) {
	const srcRate = 22050
	const dstRate = 44100
	const frames = 2205 // 100ms at source rate

	path := writeTestWAV(t, srcRate, frames, 220)

	got, err := Load(path, dstRate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.SampleRate != dstRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, dstRate)
	}

	// The cubic resampler may run a few frames short at the tail; the result
	// must still be within one millisecond of the expected duration.
	wantFrames := frames * dstRate / srcRate
	tolerance := dstRate / 1000
	if diff := got.Frames() - wantFrames; diff < -tolerance || diff > tolerance {
		t.Errorf("Frames = %d, want %d ± %d", got.Frames(), wantFrames, tolerance)
	}
}

func TestLoadDuplicatesMonoToStereo(t *testing.T) {
	const rate = 44100
	const frames = 100

	mono := &Buffer{SampleRate: rate, Channels: 1, Samples: make([]float32, frames)}
	for i := range mono.Samples {
		mono.Samples[i] = float32(i%10) / 20
	}
	path := filepath.Join(t.TempDir(), "mono.wav")
	if err := mono.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	got, err := Load(path, rate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Channels != 2 {
		t.Fatalf("Channels = %d, want 2", got.Channels)
	}
	for f := 0; f < got.Frames(); f++ {
		if got.Samples[2*f] != got.Samples[2*f+1] {
			t.Fatalf("frame %d: left %v != right %v", f, got.Samples[2*f], got.Samples[2*f+1])
		}
	}
}
