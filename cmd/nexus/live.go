package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/nexus-go/internal/live"
	"github.com/diogo/nexus-go/internal/ui"
)

var (
	flagLiveInput     string
	flagLiveInputRate int
	flagLiveOutput    string
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Start a voice session",
	Long: `Start a bidirectional voice session with the live model.

Input is raw 16-bit little-endian mono PCM read from --input (or stdin).
Replies are written as 24 kHz 16-bit PCM to --output (or stdout when it is
not a terminal). Status and transcript go to stderr.

Examples:
  arecord -f S16_LE -r 16000 -c 1 -t raw | nexus live | aplay -f S16_LE -r 24000 -c 1
  nexus live --input question.pcm --input-rate 48000 --output reply.pcm`,
	Args: cobra.NoArgs,
	RunE: runLive,
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	status, err := ui.NewRendererWithOptions(os.Stderr, renderWidth(), ui.ColorsEnabled(os.Stderr), render.Theme())
	if err != nil {
		return err
	}

	out, padOutput, closeOut, err := liveOutput(flagLiveOutput)
	if err != nil {
		return err
	}
	defer closeOut()
	if out == io.Discard {
		status.RenderWarning("stdout is a terminal; reply audio is discarded (use --output)")
	}

	open, paceInput := liveInput(flagLiveInput)

	sess := live.NewSession(
		live.GenAIDialer{Client: s.client.GenAI()},
		live.Config{
			Model:     s.client.Models().Live,
			Voice:     cfg.LiveVoice,
			Language:  cfg.DefaultLanguage,
			InputRate: flagLiveInputRate,
			PaceInput: paceInput,
			PadOutput: padOutput,
		},
		open,
		out,
		appLog,
	)

	transcribing := false
	sess.OnState = func(st live.State) {
		if transcribing {
			status.NewLine()
			transcribing = false
		}
		status.RenderLiveState(st)
	}
	sess.OnTranscript = func(text string) {
		transcribing = true
		status.RenderTranscript(text)
	}

	if err := sess.Run(ctx); err != nil {
		if errors.Is(err, live.ErrInputUnavailable) {
			status.RenderError(err)
			status.RenderInfo("Pass --input <file> or pipe raw PCM on stdin")
			return errReported
		}
		status.RenderError(err)
		return errReported
	}
	if transcribing {
		status.NewLine()
	}
	return nil
}

// liveInput returns the input opener. Regular files are paced in real time.
func liveInput(path string) (live.InputOpener, bool) {
	if path == "" || path == "-" {
		return func() (io.ReadCloser, error) {
			if ui.IsTerminal(os.Stdin) {
				return nil, fmt.Errorf("stdin is a terminal")
			}
			// closing stdin unblocks a pending read on user close
			return os.Stdin, nil
		}, false
	}

	pace := false
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		pace = true
	}
	return func() (io.ReadCloser, error) {
		return os.Open(path)
	}, pace
}

// liveOutput opens the audio sink. Regular files get silence for playback gaps.
func liveOutput(path string) (w io.Writer, pad bool, closeFn func(), err error) {
	if path == "" || path == "-" {
		if ui.IsTerminal(os.Stdout) {
			return io.Discard, false, func() {}, nil
		}
		return os.Stdout, false, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, false, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, true, func() { f.Close() }, nil
}

func init() {
	liveCmd.Flags().StringVar(&flagLiveInput, "input", "", "Raw PCM input file (default stdin)")
	liveCmd.Flags().IntVar(&flagLiveInputRate, "input-rate", live.InputSampleRate, "Input sample rate in Hz")
	liveCmd.Flags().StringVar(&flagLiveOutput, "output", "", "Raw PCM output file (default stdout)")
}
