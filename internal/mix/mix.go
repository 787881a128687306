// Package mix composes stem and replacement tracks into a single stereo
// buffer using per-role gain and substitution rules.
package mix

import (
	"errors"

	"github.com/stemforge/stemforge/internal/buffer"
)

// Role identifies one logical channel of the mix.
type Role string

// Channel roles. The first four are produced by stem separation; the
// replacement roles carry externally produced substitute tracks.
const (
	RoleVocals                  Role = "vocals"
	RoleDrums                   Role = "drums"
	RoleBass                    Role = "bass"
	RoleOther                   Role = "other"
	RoleReplacementVocals       Role = "replacement_vocals"
	RoleReplacementInstrumental Role = "replacement_instrumental"
)

// StemRoles lists the roles a separation run can produce, in the order the
// separator writes them.
var StemRoles = []Role{RoleVocals, RoleDrums, RoleBass, RoleOther}

// allRoles is the closed set considered by Compose.
var allRoles = []Role{
	RoleVocals, RoleDrums, RoleBass, RoleOther,
	RoleReplacementVocals, RoleReplacementInstrumental,
}

// ErrEmptyMix indicates no buffer was available for any role.
var ErrEmptyMix = errors.New("no audio buffers to mix")

// GainSpec holds per-role gain in decibels for the non-replacement roles.
// The drums/bass/other gains only apply when the instrumental bed is built
// from separated stems; a replacement instrumental is used verbatim.
type GainSpec struct {
	Vocals float64
	Drums  float64
	Bass   float64
	Other  float64
}

// Compose overlays the present roles into one stereo buffer. Absent roles
// are treated as silence. A replacement instrumental is authoritative: it
// becomes the bed as-is and the drums/bass/other gains have no effect.
// Replacement vocals substitute for the separated vocal stem and take the
// vocals gain. The result's duration equals the longest input; inputs are
// never mutated.
func Compose(channels map[Role]*buffer.Buffer, gains GainSpec) (*buffer.Buffer, error) {
	var sampleRate, targetFrames int
	for _, role := range allRoles {
		b := channels[role]
		if b == nil {
			continue
		}
		sampleRate = b.SampleRate
		if b.Frames() > targetFrames {
			targetFrames = b.Frames()
		}
	}
	if sampleRate == 0 {
		return nil, ErrEmptyMix
	}

	// fit returns a full-length copy of the role's buffer, or silence.
	fit := func(role Role) *buffer.Buffer {
		b := channels[role]
		if b == nil {
			return buffer.Silence(sampleRate, 2, targetFrames)
		}
		return b.Clone().Resize(targetFrames)
	}

	var bed *buffer.Buffer
	if channels[RoleReplacementInstrumental] != nil {
		bed = fit(RoleReplacementInstrumental)
	} else {
		bed = buffer.Silence(sampleRate, 2, targetFrames)
		bed = bed.Overlay(fit(RoleDrums).ApplyGain(gains.Drums))
		bed = bed.Overlay(fit(RoleBass).ApplyGain(gains.Bass))
		bed = bed.Overlay(fit(RoleOther).ApplyGain(gains.Other))
	}

	var vocal *buffer.Buffer
	switch {
	case channels[RoleReplacementVocals] != nil:
		vocal = fit(RoleReplacementVocals).ApplyGain(gains.Vocals)
	case channels[RoleVocals] != nil:
		vocal = fit(RoleVocals).ApplyGain(gains.Vocals)
	default:
		vocal = buffer.Silence(sampleRate, 2, targetFrames)
	}

	return bed.Overlay(vocal), nil
}
