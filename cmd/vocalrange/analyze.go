package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	vocalrange "github.com/farcloser/vocalrange"
)

var errInvalidArgCount = errors.New("expected exactly one argument: raw PCM file path or \"-\" for stdin")

// pitchTrackFile is the on-disk JSON shape accepted for --pitch-track: a
// per-frame f0/confidence pair array plus the fixed hop period.
type pitchTrackFile struct {
	SampleRate int `json:"sample_rate"`
	HopSamples int `json:"hop_samples"`
	Frames     []struct {
		F0Hz       float64 `json:"f0_hz"`
		Confidence float64 `json:"confidence"`
	} `json:"frames"`
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Compute a sung vocal range from raw PCM audio and a pitch track",
		ArgsUsage: "<pcm-file | ->",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "sample-rate",
				Aliases:  []string{"s"},
				Usage:    "Sample rate in Hz of the PCM audio",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth (16, 24, or 32)",
				Value:   16,
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Number of channels (1 = mono, 2 = stereo)",
				Value:   1,
			},
			&cli.StringFlag{
				Name:     "pitch-track",
				Aliases:  []string{"p"},
				Usage:    "Path to a JSON pitch track (sample_rate, hop_samples, frames[])",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Optional path to a hot-reloading register classifier model",
			},
			&cli.BoolFlag{
				Name:  "no-falsetto",
				Usage: "Suppress register classification; treat every retained frame as chest",
			},
			&cli.BoolFlag{
				Name:  "already-separated",
				Usage: "Hint that instrument bleed has already been removed (informational)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			format, err := parsePCMFormat(cmd)
			if err != nil {
				return err
			}

			track, err := loadPitchTrack(cmd.String("pitch-track"))
			if err != nil {
				return fmt.Errorf("loading pitch track: %w", err)
			}

			data, err := readInput(cmd.Args().First())
			if err != nil {
				return fmt.Errorf("reading PCM input: %w", err)
			}

			audio, err := vocalrange.Decode(data, format)
			if err != nil {
				return fmt.Errorf("decoding PCM: %w", err)
			}

			opts := vocalrange.DefaultOptions()
			opts.NoFalsetto = cmd.Bool("no-falsetto")
			opts.AlreadySeparated = cmd.Bool("already-separated")
			opts.ModelPath = cmd.String("model")

			// Analyze's error is also reachable through result.ToMap()'s
			// {"error": ...} key; outputResult renders whichever shape
			// the result carries regardless of err.
			result, _ := vocalrange.Analyze(ctx, audio, track, opts)

			return outputResult(cmd.Args().First(), result, cmd.String("format"))
		},
	}
}

var errUnsupportedBitDepth = errors.New("bit depth must be 16, 24, or 32")

func parsePCMFormat(cmd *cli.Command) (vocalrange.PCMFormat, error) {
	bitDepth := cmd.Int("bit-depth")

	switch bitDepth {
	case 16, 24, 32:
	default:
		return vocalrange.PCMFormat{}, fmt.Errorf("--bit-depth: %w", errUnsupportedBitDepth)
	}

	return vocalrange.PCMFormat{
		SampleRate: cmd.Int("sample-rate"),
		BitDepth:   bitDepth,
		Channels:   cmd.Int("channels"),
	}, nil
}

func loadPitchTrack(path string) (vocalrange.PitchTrack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return vocalrange.PitchTrack{}, fmt.Errorf("%w", err)
	}

	var file pitchTrackFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return vocalrange.PitchTrack{}, fmt.Errorf("%w", err)
	}

	frames := make([]vocalrange.PitchTrackFrame, len(file.Frames))
	for i, f := range file.Frames {
		frames[i] = vocalrange.PitchTrackFrame{F0Hz: f.F0Hz, Confidence: f.Confidence}
	}

	return vocalrange.PitchTrack{
		Frames:     frames,
		HopSamples: file.HopSamples,
		SampleRate: file.SampleRate,
	}, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(path) //nolint:wrapcheck
}
