package polling

import "time"

// LinkActivity represents the activity state of the monitored serial link
type LinkActivity int

const (
	StateIdle LinkActivity = iota
	StateActive
)

// String returns the state name.
func (a LinkActivity) String() string {
	if a == StateActive {
		return "active"
	}
	return "idle"
}

// LinkState tracks traffic on the monitored serial link
type LinkState struct {
	LastLineTime time.Time
	Lines        uint64
	Bytes        uint64
	Activity     LinkActivity
}

// RecordLine counts a received line and marks the link active. It reports
// whether the link was idle before.
func (ls *LinkState) RecordLine(line []byte, now time.Time) bool {
	wasIdle := ls.Activity == StateIdle
	ls.Activity = StateActive
	ls.LastLineTime = now
	ls.Lines++
	ls.Bytes += uint64(len(line))
	return wasIdle
}

// CheckIdle moves an active link to idle once it has been silent for
// timeout. It reports whether the transition happened.
func (ls *LinkState) CheckIdle(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 || ls.Activity != StateActive {
		return false
	}
	if now.Sub(ls.LastLineTime) < timeout {
		return false
	}
	ls.Activity = StateIdle
	return true
}
