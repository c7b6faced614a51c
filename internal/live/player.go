package live

import (
	"fmt"
	"io"
	"time"
)

// Player writes received PCM to an output sink following the scheduler's
// timeline.
type Player struct {
	out   io.Writer
	sched *Scheduler
	// padGaps writes silence for idle time so offline sinks keep real timing.
	padGaps bool
}

// NewPlayer creates a player writing to out.
func NewPlayer(out io.Writer, sched *Scheduler, padGaps bool) *Player {
	return &Player{out: out, sched: sched, padGaps: padGaps}
}

// Play schedules and writes one 24 kHz 16-bit PCM chunk.
func (p *Player) Play(chunk []byte) (time.Time, error) {
	samples := len(chunk) / 2
	start, gap := p.sched.Schedule(Duration(samples, OutputSampleRate))

	if p.padGaps && gap > 0 {
		silence := make([]byte, int(gap*OutputSampleRate/time.Second)*2)
		if _, err := p.out.Write(silence); err != nil {
			return start, fmt.Errorf("failed to write audio output: %w", err)
		}
	}

	if _, err := p.out.Write(chunk[:samples*2]); err != nil {
		return start, fmt.Errorf("failed to write audio output: %w", err)
	}
	return start, nil
}

// Interrupt drops the scheduled timeline.
func (p *Player) Interrupt() {
	p.sched.Reset()
}
