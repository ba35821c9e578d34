// Package sections implements the named content regions a leaf template
// fills and its layouts read back.
//
// One Stack lives for exactly one render pass and is shared by the leaf, its
// layouts and any inserted partials. Only one section may be open at a time.
package sections

import (
	"bytes"
	"fmt"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
)

// Mode says how captured text combines with what a section already holds.
type Mode int

const (
	// Closed means no capture is in progress.
	Closed Mode = iota
	// Assign replaces the section's own text.
	Assign
	// Append adds text after everything captured so far.
	Append
	// Prepend adds text before everything captured so far.
	Prepend
)

func (m Mode) String() string {
	switch m {
	case Closed:
		return "closed"
	case Assign:
		return "assign"
	case Append:
		return "append"
	case Prepend:
		return "prepend"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

type section struct {
	assigned  string
	assignSet bool
	prepended string
	appended  string
}

func (s *section) text(def string) string {
	body := def
	if s.assignSet {
		body = s.assigned
	}
	return s.prepended + body + s.appended
}

// Stack holds the sections of one render pass. It is not safe for
// concurrent use.
type Stack struct {
	sections map[string]*section
	open     string
	mode     Mode
	capture  bytes.Buffer
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{sections: map[string]*section{}}
}

// Start opens name for capture. Starting while any section is open is a
// configuration error.
func (s *Stack) Start(name string, mode Mode) error {
	if name == "" {
		return berrors.InvalidArgumentf(name, "section name is required")
	}
	if mode == Closed {
		return berrors.InvalidArgumentf(name, "cannot start section %q in closed mode", name)
	}
	if s.mode != Closed {
		return berrors.Configurationf(name, "nested sections are not allowed: section %q is still open", s.open)
	}
	s.open = name
	s.mode = mode
	s.capture.Reset()
	return nil
}

// Stop closes the open section, combining the captured text with its
// previous content according to the mode it was started with.
func (s *Stack) Stop() error {
	if s.mode == Closed {
		return berrors.Renderf("", "cannot stop an unopened section")
	}
	text := s.capture.String()
	sec, ok := s.sections[s.open]
	if !ok {
		sec = &section{}
		s.sections[s.open] = sec
	}
	switch s.mode {
	case Assign:
		sec.assigned = text
		sec.assignSet = true
	case Append:
		sec.appended += text
	case Prepend:
		sec.prepended = text + sec.prepended
	}
	s.reset()
	return nil
}

// Write captures p into the open section.
func (s *Stack) Write(p []byte) (int, error) {
	if s.mode == Closed {
		return 0, berrors.Renderf("", "no section is open")
	}
	return s.capture.Write(p)
}

// Open returns the name and mode of the open section, if any.
func (s *Stack) Open() (string, Mode, bool) {
	return s.open, s.mode, s.mode != Closed
}

// Get returns prepended text, then the assigned text or def, then appended
// text. A section that was never started yields def. Reading is idempotent.
func (s *Stack) Get(name string, def ...string) string {
	var d string
	if len(def) > 0 {
		d = def[0]
	}
	sec, ok := s.sections[name]
	if !ok {
		return d
	}
	return sec.text(d)
}

// Has reports whether name was ever closed with content of any mode.
func (s *Stack) Has(name string) bool {
	_, ok := s.sections[name]
	return ok
}

// Names returns the closed section names in no particular order.
func (s *Stack) Names() []string {
	out := make([]string, 0, len(s.sections))
	for name := range s.sections {
		out = append(out, name)
	}
	return out
}

// Discard drops a capture in progress.
func (s *Stack) Discard() {
	s.reset()
}

// Finish reports a section left open at the end of an execution as a
// render error naming it. The capture is discarded either way.
func (s *Stack) Finish() error {
	if s.mode == Closed {
		return nil
	}
	name := s.open
	s.reset()
	return berrors.Renderf(name, "section %q was started but never stopped", name)
}

func (s *Stack) reset() {
	s.open = ""
	s.mode = Closed
	s.capture.Reset()
}
