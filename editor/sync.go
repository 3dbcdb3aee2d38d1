package editor

import (
	"log/slog"

	"github.com/lvillar/richdoc/content"
)

// Synchronizer forwards the canonical content string to the owner of the
// document after every committed mutation.
type Synchronizer struct {
	onChange func(string)
	last     string
	log      *slog.Logger
}

// NewSynchronizer returns a Synchronizer that considers initial as already
// delivered. A nil onChange discards updates.
func NewSynchronizer(initial string, onChange func(string), log *slog.Logger) *Synchronizer {
	if onChange == nil {
		onChange = func(string) {}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{onChange: onChange, last: initial, log: log}
}

// Sync serializes t and forwards it when it differs from the last value sent.
// It reports whether the owner was notified.
func (s *Synchronizer) Sync(t *content.Tree) bool {
	v := t.String()
	if v == s.last {
		return false
	}
	s.send(v)
	return true
}

// Flush forwards the current value unconditionally.
func (s *Synchronizer) Flush(t *content.Tree) {
	s.send(t.String())
}

// Last returns the last value forwarded.
func (s *Synchronizer) Last() string { return s.last }

func (s *Synchronizer) send(v string) {
	s.last = v
	s.log.Debug("content changed", "component", "editor", "bytes", len(v))
	s.onChange(v)
}
