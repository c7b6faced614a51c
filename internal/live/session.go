// Package live runs bidirectional voice sessions with the live model.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/diogo/nexus-go/internal/logger"
)

var (
	// ErrInputUnavailable is returned when the audio input cannot be opened.
	ErrInputUnavailable = errors.New("audio input unavailable")
	// ErrClosed is returned by Conn.Receive after a clean remote close.
	ErrClosed = errors.New("live session closed")
)

// Config describes a live session.
type Config struct {
	Model             string
	Voice             string
	Language          string
	SystemInstruction string

	// InputRate is the sample rate of the raw input stream.
	InputRate int
	// PaceInput sends input in real time, for file inputs.
	PaceInput bool
	// PadOutput writes silence for playback gaps, for file outputs.
	PadOutput bool
}

// InputOpener opens the 16-bit little-endian mono PCM input.
type InputOpener func() (io.ReadCloser, error)

// Session runs one live conversation. Run may be called once.
type Session struct {
	ID string

	dialer Dialer
	cfg    Config
	open   InputOpener
	out    io.Writer
	clock  Clock
	log    *slog.Logger

	// OnState is called on every state change.
	OnState func(State)
	// OnTranscript is called with each transcript fragment.
	OnTranscript func(string)

	state      State
	transcript strings.Builder
}

// NewSession creates a session in the Connecting state.
func NewSession(dialer Dialer, cfg Config, open InputOpener, out io.Writer, log *slog.Logger) *Session {
	if cfg.InputRate <= 0 {
		cfg.InputRate = InputSampleRate
	}
	if log == nil {
		log = logger.Discard()
	}
	id := uuid.NewString()
	return &Session{
		ID:     id,
		dialer: dialer,
		cfg:    cfg,
		open:   open,
		out:    out,
		log:    log.With("component", "live", "session", id),
		state:  StateConnecting,
	}
}

// WithClock sets the playback clock.
func (s *Session) WithClock(clock Clock) *Session {
	s.clock = clock
	return s
}

// State returns the current state. It is only safe to call from OnState
// callbacks or after Run returns.
func (s *Session) State() State {
	return s.state
}

// Transcript returns the accumulated model transcript.
func (s *Session) Transcript() string {
	return s.transcript.String()
}

func (s *Session) apply(ev event) {
	next := transition(s.state, ev.kind)
	if next == s.state {
		return
	}
	s.log.Debug("state change", "from", s.state, "to", next)
	s.state = next
	if s.OnState != nil {
		s.OnState(next)
	}
}

func (s *Session) fail(err error) error {
	s.log.Warn("live session failed", "error", err)
	s.apply(event{kind: evFailure, err: err})
	return err
}

// Run connects, streams audio both ways and blocks until the session ends.
// Cancelling ctx closes the session. Every path releases the connection,
// the input and the playback goroutine, and Run returns without waiting for
// a pending input read.
func (s *Session) Run(ctx context.Context) error {
	if s.OnState != nil {
		s.OnState(s.state)
	}

	in, err := s.open()
	if err != nil {
		return s.fail(fmt.Errorf("%w: %v", ErrInputUnavailable, err))
	}

	conn, err := s.dialer.Dial(ctx, s.cfg)
	if err != nil {
		in.Close()
		return s.fail(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once
	release := func() {
		once.Do(func() {
			cancel()
			if err := conn.Close(); err != nil {
				s.log.Debug("close connection", "error", err)
			}
			in.Close()
		})
	}
	defer release()

	events := make(chan event, 16)
	audio := make(chan []byte, 64)
	playDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.receive(gctx, conn, events) })

	// The input pump is not joined: a read on an input whose Close does not
	// interrupt it may block past release. It exits once the read returns.
	go s.pumpInput(gctx, in, conn, events)

	player := NewPlayer(s.out, NewScheduler(s.clock), s.cfg.PadOutput)
	g.Go(func() error {
		defer close(playDone)
		return s.play(gctx, player, audio)
	})

	s.apply(event{kind: evOpened})
	graceful, runErr := s.loop(gctx, events, audio)

	// loop is the only sender on audio
	close(audio)
	if graceful {
		<-playDone
	}

	release()
	if err := g.Wait(); err != nil {
		s.log.Debug("live workers stopped", "error", err)
	}
	return runErr
}

// loop owns the state machine. It returns when the session reaches a
// terminal state; graceful is true when queued playback should finish.
func (s *Session) loop(ctx context.Context, events <-chan event, audio chan<- []byte) (graceful bool, err error) {
	inputDone := false

	for {
		select {
		case <-ctx.Done():
			if cause := context.Cause(ctx); cause != nil && !isCancellation(cause) {
				return false, s.fail(cause)
			}
			s.apply(event{kind: evClose})
			return false, nil

		case ev := <-events:
			switch ev.kind {
			case evAudio:
				s.apply(ev)
				select {
				case audio <- ev.data:
				case <-ctx.Done():
				}

			case evTranscript:
				s.transcript.WriteString(ev.text)
				if s.OnTranscript != nil {
					s.OnTranscript(ev.text)
				}

			case evInterrupted:
				s.apply(ev)
				select {
				case audio <- nil:
				case <-ctx.Done():
				}

			case evTurnComplete:
				s.apply(ev)
				if inputDone {
					s.apply(event{kind: evClose})
					return true, nil
				}

			case evInputDone:
				inputDone = true

			case evRemoteClosed:
				s.apply(ev)
				return true, nil

			case evFailure:
				return false, s.fail(ev.err)
			}
		}
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func send(ctx context.Context, events chan<- event, ev event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// pumpInput frames the input stream, converts it to 16 kHz PCM and sends it.
func (s *Session) pumpInput(ctx context.Context, in io.Reader, conn Conn, events chan<- event) error {
	frameRate := float64(s.cfg.InputRate) / FrameSize
	limiter := rate.NewLimiter(rate.Limit(frameRate), 1)

	buf := make([]byte, FrameSize*2)
	for {
		n, err := io.ReadFull(in, buf)
		if n >= 2 {
			if s.cfg.PaceInput {
				if werr := limiter.Wait(ctx); werr != nil {
					return nil
				}
			}
			samples := Resample(DecodePCM16(buf[:n]), s.cfg.InputRate, InputSampleRate)
			if serr := conn.SendAudio(EncodePCM16(samples)); serr != nil {
				if ctx.Err() == nil {
					send(ctx, events, event{kind: evFailure, err: fmt.Errorf("failed to send audio: %w", serr)})
				}
				return nil
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			send(ctx, events, event{kind: evInputDone})
			if eerr := conn.EndAudio(); eerr != nil {
				s.log.Debug("end audio stream", "error", eerr)
			}
			return nil
		default:
			if ctx.Err() == nil {
				send(ctx, events, event{kind: evFailure, err: fmt.Errorf("failed to read audio input: %w", err)})
			}
			return nil
		}
	}
}

// receive turns server messages into events.
func (s *Session) receive(ctx context.Context, conn Conn, events chan<- event) error {
	for {
		msg, err := conn.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, ErrClosed) {
				send(ctx, events, event{kind: evRemoteClosed})
				return nil
			}
			send(ctx, events, event{kind: evFailure, err: fmt.Errorf("live stream error: %w", err)})
			return nil
		}

		for _, chunk := range msg.Audio {
			send(ctx, events, event{kind: evAudio, data: chunk})
		}
		if msg.Transcript != "" {
			send(ctx, events, event{kind: evTranscript, text: msg.Transcript})
		}
		if msg.Interrupted {
			send(ctx, events, event{kind: evInterrupted})
		}
		if msg.TurnComplete {
			send(ctx, events, event{kind: evTurnComplete})
		}
	}
}

// play writes queued chunks until audio is closed. A nil chunk drops the
// playback timeline. Write failures stop the session through the group.
func (s *Session) play(ctx context.Context, player *Player, audio <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-audio:
			if !ok {
				return nil
			}
			if chunk == nil {
				player.Interrupt()
				continue
			}
			if _, err := player.Play(chunk); err != nil {
				return err
			}
		}
	}
}
