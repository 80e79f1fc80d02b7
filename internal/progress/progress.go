// Package progress wraps progressbar for scan feedback on stderr.
//
// The scanner cannot know the total entry count up front, so the bar
// always runs in spinner mode with a throttled description carrying
// the live scan counters. All methods are no-ops when disabled.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Bar is a spinner-mode progress indicator driven by a fmt.Stringer.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a progress spinner. If enabled=false, all methods are
// no-ops.
func New(enabled bool) *Bar {
	if !enabled {
		return &Bar{}
	}
	return &Bar{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(false),
	)}
}

// Describe updates the spinner description with the current counters.
func (b *Bar) Describe(s fmt.Stringer) {
	if b.bar != nil {
		b.bar.Describe(s.String())
	}
}

// Finish clears the spinner and prints a final summary line.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(os.Stderr, "✔ "+s.String())
	}
}

// Abandon clears the spinner without a summary line, for scans that
// fail outright.
func (b *Bar) Abandon() {
	if b.bar != nil {
		_ = b.bar.Clear()
	}
}
