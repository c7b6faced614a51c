package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// StartSpinner animates msg until the returned stop func is called.
// Without colors it prints msg once and returns.
func (r *Renderer) StartSpinner(msg string) (stop func()) {
	if !r.useColors {
		fmt.Fprintln(r.out, msg)
		return func() {}
	}

	frames := spinner.Dot
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(frames.FPS)
		defer ticker.Stop()

		for i := 0; ; i++ {
			frame := frames.Frames[i%len(frames.Frames)]
			fmt.Fprintf(r.out, "\r%s %s", TagStyle.Render(frame), DimStyle.Render(msg))
			select {
			case <-done:
				r.ClearLine()
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
