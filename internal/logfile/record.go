// Package logfile implements the live change log and its lifecycle: durable
// line-oriented appends, periodic compress-and-truncate rotation, and
// age-based deletion of rotated archives. The live log is the only resource
// shared between the event pipeline and the maintenance cycle; the Writer's
// mutex is the single point of coordination between them.
package logfile

import (
	"time"
)

// recordTimeLayout matches the timestamp format of the original log files
// (second precision plus milliseconds, comma-separated).
const recordTimeLayout = "2006-01-02 15:04:05,000"

// Record is one timestamped textual entry destined for the live log.
type Record struct {
	Time time.Time
	Text string
}

// NewRecord creates a Record stamped with the current time.
func NewRecord(text string) Record {
	return Record{Time: time.Now(), Text: text}
}

// Line renders the record as a single newline-terminated log line.
func (r Record) Line() string {
	return r.Time.Format(recordTimeLayout) + " - " + r.Text + "\n"
}
