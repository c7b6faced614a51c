package live

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Scheduler places audio chunks back to back on a playback timeline.
// A chunk starts at the later of now and the end of the previous chunk.
type Scheduler struct {
	mu      sync.Mutex
	now     Clock
	nextEnd time.Time
}

// NewScheduler creates a scheduler. A nil clock uses time.Now.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{now: clock}
}

// Schedule reserves d on the timeline and returns the start time
// and the gap since the previous chunk ended.
func (s *Scheduler) Schedule(d time.Duration) (start time.Time, gap time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	start = s.nextEnd
	if now.After(start) {
		if !s.nextEnd.IsZero() {
			gap = now.Sub(s.nextEnd)
		}
		start = now
	}
	s.nextEnd = start.Add(d)
	return start, gap
}

// End returns when the last scheduled chunk finishes.
func (s *Scheduler) End() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextEnd
}

// Reset drops the timeline, used when the model is interrupted.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEnd = time.Time{}
}
