package odds

import (
	"sync"
	"time"

	"odds-arb-calculator/internal/debounce"
)

// DefaultDebounce is the idle period between the last keystroke and the
// conversion it triggers.
const DefaultDebounce = 300 * time.Millisecond

// Session feeds keystroke-level input into a Converter. The raw text of
// each field is recorded immediately; conversion runs once input goes quiet,
// and only for the latest edit.
type Session struct {
	conv     *Converter
	deb      *debounce.Debouncer
	onUpdate func(Conversion)

	mu  sync.Mutex
	raw map[Format]string
}

// NewSession creates a session over a fresh converter. onUpdate receives every
// conversion that runs; it is called from the debouncer's goroutine, or the
// caller's on Flush.
func NewSession(delay time.Duration, onUpdate func(Conversion)) *Session {
	return NewSessionWith(NewConverter(), delay, onUpdate)
}

// NewSessionWith creates a session over an existing converter.
func NewSessionWith(conv *Converter, delay time.Duration, onUpdate func(Conversion)) *Session {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if onUpdate == nil {
		onUpdate = func(Conversion) {}
	}
	return &Session{
		conv:     conv,
		deb:      debounce.New(delay),
		onUpdate: onUpdate,
		raw:      make(map[Format]string),
	}
}

// Input records raw as the text of the format field and schedules its
// conversion, cancelling any conversion still pending.
func (s *Session) Input(format Format, raw string) {
	s.mu.Lock()
	s.raw[format] = raw
	s.mu.Unlock()

	s.deb.Schedule(func() {
		s.onUpdate(s.conv.Set(format, raw))
	})
}

// Raw returns the last text entered for format.
func (s *Session) Raw(format Format) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw[format]
}

// Pending reports whether a conversion is waiting for input to go quiet.
func (s *Session) Pending() bool {
	return s.deb.Pending()
}

// Flush runs the pending conversion now.
func (s *Session) Flush() bool {
	return s.deb.Flush()
}

// State returns the converter's current state.
func (s *Session) State() State {
	return s.conv.State()
}

// Close drops any pending conversion. Later input is ignored.
func (s *Session) Close() {
	s.deb.Stop()
}
