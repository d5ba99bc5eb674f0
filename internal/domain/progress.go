package domain

// ScanProgress is an immutable snapshot of a scan in flight. TotalPages is
// nil when the total is unknown, which is always the case for feeder scans.
type ScanProgress struct {
	CurrentPage int    `json:"current_page"`
	TotalPages  *int   `json:"total_pages,omitempty"`
	Percent     int    `json:"percent"`
	Status      string `json:"status"`
}

// ProgressSink receives an ordered sequence of progress snapshots.
// Implementations must not block; delivery is fire-and-forget.
type ProgressSink interface {
	Report(p ScanProgress)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(p ScanProgress)

// Report calls f(p).
func (f ProgressFunc) Report(p ScanProgress) { f(p) }

// NopProgress discards all snapshots.
var NopProgress ProgressSink = ProgressFunc(func(ScanProgress) {})
