package keymap

import (
	"errors"
	"fmt"
	"sort"
)

var defaultChords = [actionCount]string{
	OpenEntry:       "Enter",
	OpenRawEnter:    "KpEnter",
	SwitchFocus:     "Tab",
	ClosePanel:      "Ctrl+B",
	OpenCommandLine: "Shift+:",
	SetRootHere:     "Shift+R",
	GoToParent:      "Shift+U",
}

// Table binds every Action to exactly one Chord. Binding replaces the
// previous chord for that action. Two actions may share a chord; Resolve then
// picks the one earlier in precedence order.
type Table struct {
	chords [actionCount]Chord
}

// Defaults returns a table with the built-in bindings.
func Defaults() *Table {
	t := &Table{}
	for a, s := range defaultChords {
		t.chords[a] = MustParseChord(s)
	}
	return t
}

// Bind sets the chord for a. Invalid actions and zero chords are ignored so
// the one-chord-per-action invariant always holds.
func (t *Table) Bind(a Action, c Chord) bool {
	if !a.Valid() || c.IsZero() {
		return false
	}
	t.chords[a] = c
	return true
}

// Chord returns the chord bound to a.
func (t *Table) Chord(a Action) Chord {
	if !a.Valid() {
		return Chord{}
	}
	return t.chords[a]
}

// Resolve returns the first action, in precedence order, bound to c.
func (t *Table) Resolve(c Chord) (Action, bool) {
	if c.IsZero() {
		return 0, false
	}
	for a := OpenEntry; a < actionCount; a++ {
		if t.chords[a] == c {
			return a, true
		}
	}
	return 0, false
}

// Clone returns an independent copy.
func (t *Table) Clone() *Table {
	c := *t
	return &c
}

// Map renders the table as action name to chord text.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, actionCount)
	for a := OpenEntry; a < actionCount; a++ {
		out[a.String()] = t.chords[a].String()
	}
	return out
}

// Apply binds each name→chord override, in sorted name order. Entries that
// fail to parse are skipped and reported together; the rest still apply.
func (t *Table) Apply(overrides map[string]string) error {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		a, err := ParseAction(Sanitize(name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c, err := ParseChord(Sanitize(overrides[name]))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a, err))
			continue
		}
		t.Bind(a, c)
	}
	return errors.Join(errs...)
}
