package commands

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// startProgress renders a progress tracker on stderr. A zero total makes the
// tracker an open-ended counter.
func startProgress(message string, total int64) (progress.Writer, *progress.Tracker) {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = true

	tracker := &progress.Tracker{Message: message, Total: total}
	pw.AppendTracker(tracker)

	go pw.Render()

	return pw, tracker
}

// stopProgress finalizes the tracker and waits for the last render pass.
func stopProgress(pw progress.Writer, tracker *progress.Tracker) {
	tracker.MarkAsDone()
	pw.Stop()

	for pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
