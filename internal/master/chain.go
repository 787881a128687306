// Package master builds and executes the loudness-normalizing mastering
// chain. The chain is deterministic: highpass → compressor → loudnorm →
// limiter, rendered as an FFmpeg filter specification and applied by an
// external executor process.
package master

import (
	"fmt"
	"strings"

	"github.com/stemforge/stemforge/internal/buffer"
)

// FilterID identifies a stage in the mastering chain.
type FilterID string

// Mastering chain stages.
const (
	// FilterHighpass removes sub-audible DC offset and rumble.
	FilterHighpass FilterID = "highpass"

	// FilterHumNotch rejects mains hum at the local grid frequency.
	// Opt-in; disabled in the default chain.
	FilterHumNotch FilterID = "humnotch"

	// FilterCompressor tames transient peaks before loudness measurement.
	FilterCompressor FilterID = "compressor"

	// FilterLoudnorm normalizes integrated loudness to the LUFS target.
	FilterLoudnorm FilterID = "loudnorm"

	// FilterLimiter is the final sample-peak safety ceiling. Loudness
	// normalization alone does not guarantee the peak stays under the
	// ceiling in all filter implementations.
	FilterLimiter FilterID = "limiter"
)

// ChainOrder is the fixed stage sequence. The hum notch sits directly after
// the highpass so both low-end corrections happen before dynamics.
var ChainOrder = []FilterID{
	FilterHighpass,
	FilterHumNotch,
	FilterCompressor,
	FilterLoudnorm,
	FilterLimiter,
}

// filterBuilderFunc renders one stage's FFmpeg spec, or "" if disabled.
type filterBuilderFunc func(*ChainConfig) string

var filterBuilders = map[FilterID]filterBuilderFunc{
	FilterHighpass:   (*ChainConfig).buildHighpassFilter,
	FilterHumNotch:   (*ChainConfig).buildHumNotchFilter,
	FilterCompressor: (*ChainConfig).buildCompressorFilter,
	FilterLoudnorm:   (*ChainConfig).buildLoudnormFilter,
	FilterLimiter:    (*ChainConfig).buildLimiterFilter,
}

// ChainConfig holds the mastering chain parameters.
type ChainConfig struct {
	// Highpass - sub-audible cleanup
	HighpassFreq float64 // Hz

	// Hum notch - mains hum rejection (opt-in)
	HumNotchEnabled bool
	HumNotchFreq    float64 // Hz, 50 or 60 from mains detection

	// Compressor - fixed pre-normalization dynamics
	CompThreshold float64 // dB
	CompRatio     float64
	CompAttack    float64 // ms
	CompRelease   float64 // ms
	CompMakeup    float64 // dB

	// Loudness targets
	TargetI   float64 // LUFS, integrated loudness target
	TargetTP  float64 // dBTP, true-peak ceiling
	TargetLRA float64 // LU, loudness range target

	// FilterOrder controls the stage sequence; ChainOrder if empty.
	FilterOrder []FilterID
}

// DefaultChainConfig returns the mastering chain configuration for the
// given integrated loudness target. All other parameters are fixed.
func DefaultChainConfig(targetLufs float64) *ChainConfig {
	return &ChainConfig{
		HighpassFreq: 20.0, // removes DC/rumble below audibility

		HumNotchEnabled: false,
		HumNotchFreq:    50.0,

		CompThreshold: -18.0,
		CompRatio:     3.0,
		CompAttack:    5.0,
		CompRelease:   50.0,
		CompMakeup:    5.0,

		TargetI:   targetLufs,
		TargetTP:  -1.0, // true-peak ceiling, dBTP
		TargetLRA: 11.0,

		FilterOrder: ChainOrder,
	}
}

func (cfg *ChainConfig) buildHighpassFilter() string {
	return fmt.Sprintf("highpass=f=%.0f", cfg.HighpassFreq)
}

func (cfg *ChainConfig) buildHumNotchFilter() string {
	if !cfg.HumNotchEnabled {
		return ""
	}
	// Narrow band reject centred on the grid frequency.
	return fmt.Sprintf("bandreject=f=%.0f:width_type=q:width=2.0", cfg.HumNotchFreq)
}

func (cfg *ChainConfig) buildCompressorFilter() string {
	return fmt.Sprintf(
		"acompressor=threshold=%.0fdB:ratio=%.0f:attack=%.0f:release=%.0f:makeup=%.0f",
		cfg.CompThreshold,
		cfg.CompRatio,
		cfg.CompAttack,
		cfg.CompRelease,
		cfg.CompMakeup,
	)
}

func (cfg *ChainConfig) buildLoudnormFilter() string {
	return fmt.Sprintf("loudnorm=I=%.1f:TP=%.1f:LRA=%.0f",
		cfg.TargetI, cfg.TargetTP, cfg.TargetLRA)
}

func (cfg *ChainConfig) buildLimiterFilter() string {
	// alimiter takes a linear ratio, not dB.
	return fmt.Sprintf("alimiter=limit=%.6f", buffer.DbToLinear(cfg.TargetTP))
}

// BuildFilterSpec renders the full chain as an FFmpeg filter string. Stage
// order follows cfg.FilterOrder; disabled stages contribute nothing.
func (cfg *ChainConfig) BuildFilterSpec() string {
	order := cfg.FilterOrder
	if len(order) == 0 {
		order = ChainOrder
	}

	var filters []string
	for _, id := range order {
		if builder, ok := filterBuilders[id]; ok {
			if spec := builder(cfg); spec != "" {
				filters = append(filters, spec)
			}
		}
	}

	return strings.Join(filters, ",")
}
