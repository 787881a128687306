package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stemforge/stemforge/internal/cli"
	"github.com/stemforge/stemforge/internal/config"
	"github.com/stemforge/stemforge/internal/generate"
	"github.com/stemforge/stemforge/internal/mains"
	"github.com/stemforge/stemforge/internal/master"
	"github.com/stemforge/stemforge/internal/mix"
	"github.com/stemforge/stemforge/internal/pipeline"
	"github.com/stemforge/stemforge/internal/separate"
	"github.com/stemforge/stemforge/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool `short:"v" help:"Show version information"`

	Process  ProcessCmd  `cmd:"" help:"Separate, remix and master one or more tracks"`
	Generate GenerateCmd `cmd:"" help:"Generate an instrumental from a melody reference"`
}

// ProcessCmd runs the full separation, remix and mastering pipeline.
type ProcessCmd struct {
	Inputs []string `arg:"" name:"tracks" help:"Input audio files" type:"existingfile"`

	OutputDir           string  `short:"o" default:"${output_dir}" help:"Output directory"`
	ReplaceVocals       string  `type:"existingfile" help:"Replacement vocal track"`
	ReplaceInstrumental string  `type:"existingfile" help:"Replacement instrumental/backing track"`
	VocalsGainDb        float64 `default:"${vocals_gain}" help:"Vocals gain in dB"`
	DrumsGainDb         float64 `default:"${drums_gain}" help:"Drums gain in dB"`
	BassGainDb          float64 `default:"${bass_gain}" help:"Bass gain in dB"`
	OtherGainDb         float64 `default:"${other_gain}" help:"Other-instruments gain in dB"`
	TargetLufs          float64 `default:"${target_lufs}" help:"Target integrated loudness in LUFS"`
	SampleRate          int     `default:"${sample_rate}" help:"Output sample rate in Hz"`
	HumNotch            bool    `default:"${hum_notch}" help:"Notch out mains hum at the local grid frequency"`
	MelodyReference     bool    `help:"Also export a vocal-free melody reference mix"`
	NoUI                bool    `help:"Plain text progress instead of the interactive UI"`
	Debug               bool    `help:"Write a detailed debug log next to the outputs"`
}

// GenerateCmd drives the generative model against a melody reference.
type GenerateCmd struct {
	Reference string `arg:"" help:"Melody reference audio file" type:"existingfile"`

	Output   string  `short:"o" required:"" help:"Output path for the generated instrumental"`
	Prompt   string  `default:"${gen_prompt}" help:"Style prompt for the model"`
	Duration float64 `default:"${gen_seconds}" help:"Target duration in seconds"`
}

func main() {
	cfg := config.Load()

	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("stemforge"),
		kong.Description("Stem separation, remixing and loudness mastering"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     version,
			"output_dir":  cfg.OutputDir,
			"vocals_gain": formatFloat(cfg.VocalsGainDb),
			"drums_gain":  formatFloat(cfg.DrumsGainDb),
			"bass_gain":   formatFloat(cfg.BassGainDb),
			"other_gain":  formatFloat(cfg.OtherGainDb),
			"target_lufs": formatFloat(cfg.TargetLufs),
			"sample_rate": strconv.Itoa(cfg.SampleRate),
			"hum_notch":   strconv.FormatBool(cfg.HumNotch),
			"gen_prompt":  cfg.GeneratePrompt,
			"gen_seconds": formatFloat(cfg.GenerateSeconds),
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
		kong.Bind(cfg),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *ProcessCmd) options(input string) pipeline.Options {
	opts := pipeline.Options{
		InputPath:           input,
		OutputDir:           c.OutputDir,
		ReplaceVocals:       c.ReplaceVocals,
		ReplaceInstrumental: c.ReplaceInstrumental,
		Gains: mix.GainSpec{
			Vocals: c.VocalsGainDb,
			Drums:  c.DrumsGainDb,
			Bass:   c.BassGainDb,
			Other:  c.OtherGainDb,
		},
		TargetLufs:            c.TargetLufs,
		SampleRate:            c.SampleRate,
		ExportMelodyReference: c.MelodyReference,
	}
	if c.HumNotch {
		opts.HumNotchFreq = float64(mains.Frequency())
	}
	return opts
}

func newRunner(cfg *config.Config) *pipeline.Runner {
	return &pipeline.Runner{
		Separator: &separate.Demucs{
			PythonBin: cfg.PythonBin,
			Model:     cfg.DemucsModel,
			Timeout:   cfg.SeparateTimeout,
		},
		Executor: &master.FFmpegExecutor{
			Bin:     cfg.FFmpegBin,
			Timeout: cfg.MasterTimeout,
		},
	}
}

// Run executes the process command over all input tracks.
func (c *ProcessCmd) Run(cfg *config.Config) error {
	runner := newRunner(cfg)

	log := func(string, ...interface{}) {}
	if c.Debug {
		debugLog, err := os.Create("stemforge-debug.log")
		if err == nil {
			defer debugLog.Close()
			log = func(format string, args ...interface{}) {
				fmt.Fprintf(debugLog, format+"\n", args...)
			}
		}
	}

	if c.NoUI {
		return c.runPlain(runner, log)
	}
	return c.runWithUI(runner, log)
}

// runPlain processes tracks with line-based progress output.
func (c *ProcessCmd) runPlain(runner *pipeline.Runner, log func(string, ...interface{})) error {
	runner.Progress = func(e pipeline.Event) {
		log("[PIPELINE] stage=%s detail=%s", e.Stage, e.Detail)
		if e.Detail != "" {
			fmt.Printf("%s %s\n", cli.KeyStyle.Render(string(e.Stage)+":"), e.Detail)
		} else {
			fmt.Println(cli.KeyStyle.Render(string(e.Stage)))
		}
	}

	var failed int
	for _, input := range c.Inputs {
		fmt.Println(cli.TitleStyle.Render(input))
		res, err := runner.Run(context.Background(), c.options(input))
		if err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", input, err))
			failed++
			continue
		}
		fmt.Printf("%s %s\n", cli.KeyStyle.Render("Final master:"), cli.ValueStyle.Render(res.MasterPath))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d track(s) failed", failed, len(c.Inputs))
	}
	return nil
}

// runWithUI processes tracks behind the Bubbletea progress interface.
func (c *ProcessCmd) runWithUI(runner *pipeline.Runner, log func(string, ...interface{})) error {
	model := ui.NewModel(c.Inputs)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start processing in background
	go func() {
		for i, input := range c.Inputs {
			log("[MAIN] Sending TrackStartMsg for track %d: %s", i, input)
			p.Send(ui.TrackStartMsg{
				TrackIndex: i,
				TrackName:  input,
			})

			trackIndex := i
			runner.Progress = func(e pipeline.Event) {
				log("[PIPELINE] track=%d stage=%s detail=%s", trackIndex, e.Stage, e.Detail)
				p.Send(ui.StageMsg{
					TrackIndex: trackIndex,
					Stage:      e.Stage,
					Detail:     e.Detail,
				})
			}

			res, err := runner.Run(context.Background(), c.options(input))
			if err != nil {
				log("[MAIN] pipeline failed for track %d: %v", i, err)
				p.Send(ui.TrackCompleteMsg{
					TrackIndex: i,
					Error:      err,
				})
				continue
			}

			p.Send(ui.TrackCompleteMsg{
				TrackIndex:    i,
				PremasterPath: res.PremasterPath,
				MasterPath:    res.MasterPath,
			})
		}

		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// Run executes the generate command.
func (c *GenerateCmd) Run(cfg *config.Config) error {
	gen := &generate.MusicGen{
		PythonBin: cfg.PythonBin,
		Script:    cfg.GenerateScript,
		Timeout:   cfg.GenerateTimeout,
	}

	fmt.Println(cli.TitleStyle.Render("Generating instrumental"))
	fmt.Printf("%s %s\n", cli.KeyStyle.Render("Reference:"), c.Reference)

	err := gen.Generate(context.Background(), generate.Request{
		ReferencePath: c.Reference,
		Prompt:        c.Prompt,
		Duration:      c.Duration,
		OutputPath:    c.Output,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", cli.KeyStyle.Render("Saved:"), cli.ValueStyle.Render(c.Output))
	return nil
}
