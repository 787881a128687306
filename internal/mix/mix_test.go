package mix

import (
	"errors"
	"math"
	"testing"

	"github.com/stemforge/stemforge/internal/buffer"
)

const testRate = 44100

// constBuf builds a stereo buffer of seconds duration with every sample set
// to value, so overlay contributions can be traced per layer.
func constBuf(t *testing.T, seconds float64, value float32) *buffer.Buffer {
	t.Helper()
	frames := int(seconds * testRate)
	b := buffer.Silence(testRate, 2, frames)
	for i := range b.Samples {
		b.Samples[i] = value
	}
	return b
}

func TestComposeEmptyMix(t *testing.T) {
	_, err := Compose(map[Role]*buffer.Buffer{}, GainSpec{})
	if !errors.Is(err, ErrEmptyMix) {
		t.Fatalf("expected ErrEmptyMix, got %v", err)
	}

	_, err = Compose(map[Role]*buffer.Buffer{RoleVocals: nil}, GainSpec{})
	if !errors.Is(err, ErrEmptyMix) {
		t.Fatalf("nil-valued roles still count as absent, got %v", err)
	}
}

func TestComposeDurationIsMaxInput(t *testing.T) {
	channels := map[Role]*buffer.Buffer{
		RoleDrums: constBuf(t, 2.0, 0.1),
		RoleBass:  constBuf(t, 2.0, 0.1),
		RoleOther: constBuf(t, 1.5, 0.1),
	}

	got, err := Compose(channels, GainSpec{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if want := int(2.0 * testRate); got.Frames() != want {
		t.Errorf("Frames = %d, want %d", got.Frames(), want)
	}
}

// Mirrors the stems-only scenario: drums and bass run 2s, other runs 1.5s,
// no vocals. Past the 1.5s mark only drums and bass contribute.
func TestComposeStemsOnly(t *testing.T) {
	channels := map[Role]*buffer.Buffer{
		RoleDrums: constBuf(t, 2.0, 0.2),
		RoleBass:  constBuf(t, 2.0, 0.3),
		RoleOther: constBuf(t, 1.5, 0.1),
	}

	got, err := Compose(channels, GainSpec{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	// Inside the overlap every stem contributes at unity gain.
	early := got.Samples[2*int(1.0*testRate)]
	if math.Abs(float64(early)-0.6) > 1e-5 {
		t.Errorf("sample at 1.0s = %v, want 0.6", early)
	}

	// After other ends, only drums and bass continue.
	late := got.Samples[2*int(1.75*testRate)]
	if math.Abs(float64(late)-0.5) > 1e-5 {
		t.Errorf("sample at 1.75s = %v, want 0.5", late)
	}
}

func TestComposeReplacementInstrumentalIsAuthoritative(t *testing.T) {
	channels := map[Role]*buffer.Buffer{
		RoleDrums:                   constBuf(t, 1.0, 0.4),
		RoleBass:                    constBuf(t, 1.0, 0.4),
		RoleOther:                   constBuf(t, 1.0, 0.4),
		RoleReplacementInstrumental: constBuf(t, 1.0, 0.25),
	}

	// Extreme stem gains must have zero effect when the bed is replaced.
	gains := GainSpec{Drums: 12, Bass: -60, Other: 6}

	got, err := Compose(channels, gains)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	for i, s := range got.Samples {
		if math.Abs(float64(s)-0.25) > 1e-5 {
			t.Fatalf("sample %d = %v, want 0.25 verbatim from replacement bed", i, s)
		}
	}
}

func TestComposeReplacementVocalsSubstituteStem(t *testing.T) {
	channels := map[Role]*buffer.Buffer{
		RoleVocals:            constBuf(t, 2.0, 0.9), // must be ignored entirely
		RoleReplacementVocals: constBuf(t, 3.0, 0.5),
	}

	got, err := Compose(channels, GainSpec{Vocals: -3})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if want := int(3.0 * testRate); got.Frames() != want {
		t.Fatalf("Frames = %d, want %d", got.Frames(), want)
	}

	want := 0.5 * float32(buffer.DbToLinear(-3))
	// Check beyond the separated stem's 2s extent too.
	for _, at := range []float64{0.5, 2.5} {
		s := got.Samples[2*int(at*testRate)]
		if math.Abs(float64(s-want)) > 1e-5 {
			t.Errorf("sample at %.1fs = %v, want %v", at, s, want)
		}
	}
}

func TestComposeVocalsGainApplied(t *testing.T) {
	channels := map[Role]*buffer.Buffer{
		RoleVocals: constBuf(t, 1.0, 0.5),
	}

	got, err := Compose(channels, GainSpec{Vocals: -6})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	want := 0.5 * float32(buffer.DbToLinear(-6))
	if s := got.Samples[100]; math.Abs(float64(s-want)) > 1e-5 {
		t.Errorf("sample = %v, want %v", s, want)
	}
}

func TestComposeDoesNotMutateInputs(t *testing.T) {
	short := constBuf(t, 0.5, 0.3)
	long := constBuf(t, 1.0, 0.2)
	channels := map[Role]*buffer.Buffer{
		RoleDrums: short,
		RoleBass:  long,
	}

	if _, err := Compose(channels, GainSpec{Drums: -12}); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if short.Frames() != int(0.5*testRate) {
		t.Errorf("short input resized to %d frames", short.Frames())
	}
	for i, s := range short.Samples {
		if s != 0.3 {
			t.Fatalf("short input sample %d mutated to %v", i, s)
		}
	}
}
