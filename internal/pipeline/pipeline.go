// Package pipeline orchestrates the full track transformation: stem
// separation, mix composition, premaster export and loudness mastering.
// Each stage checks for cancellation before starting, so an interrupted run
// stops at a stage boundary with its partial outputs intact on disk.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stemforge/stemforge/internal/buffer"
	"github.com/stemforge/stemforge/internal/master"
	"github.com/stemforge/stemforge/internal/mix"
	"github.com/stemforge/stemforge/internal/separate"
)

// Stage identifies a pipeline phase for progress reporting.
type Stage string

const (
	StageSeparate        Stage = "separate"
	StageLoadStems       Stage = "load"
	StageCompose         Stage = "compose"
	StageExportPremaster Stage = "premaster"
	StageMaster          Stage = "master"
	StageDone            Stage = "done"
)

// Stages lists the phases of a run in execution order, excluding the
// terminal StageDone marker.
var Stages = []Stage{
	StageSeparate,
	StageLoadStems,
	StageCompose,
	StageExportPremaster,
	StageMaster,
}

// Event reports stage transitions to an observer.
type Event struct {
	Stage  Stage
	Detail string
}

// Options configures one pipeline run.
type Options struct {
	InputPath string
	OutputDir string

	// Replacement tracks; empty means use the separated stem.
	ReplaceVocals       string
	ReplaceInstrumental string

	Gains mix.GainSpec

	TargetLufs float64
	SampleRate int

	// HumNotchFreq enables the mains hum notch when > 0.
	HumNotchFreq float64

	// ExportMelodyReference additionally writes a vocal-free stem mix for
	// use as a generation reference.
	ExportMelodyReference bool
}

// Result carries the output locations of a completed run.
type Result struct {
	StemsDir        string
	PremasterPath   string
	MasterPath      string
	MelodyReference string
}

// Runner executes pipeline runs against injected collaborators.
type Runner struct {
	Separator separate.Separator
	Executor  master.Executor

	// Progress receives stage transitions; nil disables reporting.
	Progress func(Event)
}

func (r *Runner) report(stage Stage, detail string) {
	if r.Progress != nil {
		r.Progress(Event{Stage: stage, Detail: detail})
	}
}

// trackName derives the output file prefix from the input filename.
func trackName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Run executes the full pipeline and returns the output locations.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	name := trackName(opts.InputPath)
	stemsDir := filepath.Join(opts.OutputDir, "separated")
	finalDir := filepath.Join(opts.OutputDir, "final")
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	res := &Result{
		StemsDir:      stemsDir,
		PremasterPath: filepath.Join(finalDir, name+"_premaster.wav"),
		MasterPath:    filepath.Join(finalDir, name+"_final_master.wav"),
	}

	// Separate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.report(StageSeparate, opts.InputPath)
	if err := r.Separator.Separate(ctx, opts.InputPath, stemsDir); err != nil {
		return nil, err
	}

	// Load stems and replacements
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.report(StageLoadStems, stemsDir)
	channels, err := r.loadChannels(stemsDir, opts)
	if err != nil {
		return nil, err
	}

	// Compose
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.report(StageCompose, "")
	mixed, err := mix.Compose(channels, opts.Gains)
	if err != nil {
		return nil, err
	}

	if opts.ExportMelodyReference {
		ref, err := r.exportMelodyReference(channels, opts)
		if err != nil {
			return nil, err
		}
		res.MelodyReference = ref
	}

	// Export premaster
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.report(StageExportPremaster, res.PremasterPath)
	if err := mixed.WriteWAV(res.PremasterPath); err != nil {
		return nil, fmt.Errorf("writing premaster: %w", err)
	}

	// Master
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.report(StageMaster, res.MasterPath)
	cfg := master.DefaultChainConfig(opts.TargetLufs)
	if opts.HumNotchFreq > 0 {
		cfg.HumNotchEnabled = true
		cfg.HumNotchFreq = opts.HumNotchFreq
	}
	format := master.DefaultOutputFormat(opts.SampleRate)
	if err := master.Apply(ctx, r.Executor, cfg, res.PremasterPath, res.MasterPath, format); err != nil {
		return nil, err
	}

	r.report(StageDone, res.MasterPath)
	return res, nil
}

// loadChannels builds the role map for composition. Separated stems are
// optional and degrade to absence; explicitly requested replacements are
// not, so a bad path fails loudly instead of silently dropping a track the
// user supplied.
func (r *Runner) loadChannels(stemsDir string, opts Options) (map[mix.Role]*buffer.Buffer, error) {
	channels := make(map[mix.Role]*buffer.Buffer)

	for _, role := range mix.StemRoles {
		path := filepath.Join(stemsDir, string(role)+".wav")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		buf, err := buffer.Load(path, opts.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("loading stem %s: %w", role, err)
		}
		channels[role] = buf
	}

	if opts.ReplaceVocals != "" {
		buf, err := buffer.Load(opts.ReplaceVocals, opts.SampleRate)
		if err != nil {
			return nil, err
		}
		channels[mix.RoleReplacementVocals] = buf
	}
	if opts.ReplaceInstrumental != "" {
		buf, err := buffer.Load(opts.ReplaceInstrumental, opts.SampleRate)
		if err != nil {
			return nil, err
		}
		channels[mix.RoleReplacementInstrumental] = buf
	}

	return channels, nil
}

// exportMelodyReference writes a vocal-free mix of the separated stems for
// conditioning a generative model on the track's harmonic content.
func (r *Runner) exportMelodyReference(channels map[mix.Role]*buffer.Buffer, opts Options) (string, error) {
	instrumental := map[mix.Role]*buffer.Buffer{
		mix.RoleDrums: channels[mix.RoleDrums],
		mix.RoleBass:  channels[mix.RoleBass],
		mix.RoleOther: channels[mix.RoleOther],
	}
	ref, err := mix.Compose(instrumental, opts.Gains)
	if err != nil {
		// A vocals-only track has no instrumental content to reference.
		return "", fmt.Errorf("melody reference: %w", err)
	}

	path := filepath.Join(opts.OutputDir, "melody_reference.wav")
	if err := ref.WriteWAV(path); err != nil {
		return "", fmt.Errorf("writing melody reference: %w", err)
	}
	return path, nil
}
