package monitor

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/farooq-001/watchdog/internal/logfile"
)

// Translator maps ChangeEvents to live-log records. Directory events are
// dropped: only entries within a directory matter, the directory itself is
// noise (its mtime churns whenever a child changes). This filtering rule is
// deliberate and load-bearing, not a shortcut.
type Translator struct {
	writer *logfile.Writer
	logger *slog.Logger
}

// NewTranslator creates a Translator appending to writer.
func NewTranslator(writer *logfile.Writer, logger *slog.Logger) *Translator {
	return &Translator{writer: writer, logger: logger}
}

// Translate converts one event into zero or one log record and appends it.
// A failed append is logged and swallowed — one bad write must not stall the
// pipeline for subsequent events.
func (t *Translator) Translate(ev ChangeEvent) {
	if ev.IsDir {
		return
	}

	text, ok := formatEvent(ev)
	if !ok {
		t.logger.Error("unknown event kind, dropping event",
			slog.Int("kind", int(ev.Kind)),
			slog.String("path", ev.Path),
		)

		return
	}

	if err := t.writer.Append(logfile.NewRecord(text)); err != nil {
		t.logger.Warn("could not append change record",
			slog.String("path", ev.Path),
			slog.String("error", err.Error()),
		)
	}
}

// formatEvent renders the record text for an event. The switch is exhaustive
// over EventKind; a new kind fails here visibly instead of logging garbage.
func formatEvent(ev ChangeEvent) (string, bool) {
	switch ev.Kind {
	case KindCreated, KindModified, KindDeleted:
		return fmt.Sprintf("%s %s: %s", ev.Kind.Icon(), ev.Kind, nfcNormalize(ev.Path)), true
	case KindMoved:
		return fmt.Sprintf("%s %s: %s to %s",
			ev.Kind.Icon(), ev.Kind, nfcNormalize(ev.Path), nfcNormalize(ev.DestPath)), true
	default:
		return "", false
	}
}

// nfcNormalize converts a path to NFC Unicode form so records are stable
// across filesystems that hand back decomposed names.
func nfcNormalize(s string) string {
	return norm.NFC.String(s)
}
