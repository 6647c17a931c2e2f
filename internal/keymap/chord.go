package keymap

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
)

// Mod is a set of chord modifiers.
type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

// ErrInvalidChord is returned by ParseChord for text that names no key.
var ErrInvalidChord = errors.New("invalid chord")

// Chord is a key together with its modifier set, in canonical form.
//
// Canonical form:
//   - letters are stored upper-case, and a capital letter implies ModShift;
//   - other printable symbols never carry ModShift. Shift over an unshifted
//     key of the US layout names its shifted symbol, so "Shift+1", "Shift+!"
//     and "!" are the same chord, as are "Shift+;" and ":";
//   - named keys use the spellings in namedKeys ("Enter", "Tab", "F1", ...).
//
// The zero Chord matches nothing.
type Chord struct {
	Mod Mod
	Key string
}

// IsZero reports whether c names no key.
func (c Chord) IsZero() bool { return c.Key == "" }

func (c Chord) String() string {
	if c.IsZero() {
		return ""
	}
	var b strings.Builder
	for _, m := range modOrder {
		if c.Mod&m.mod != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(c.Key)
	return b.String()
}

var modOrder = []struct {
	mod  Mod
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModMeta, "Meta"},
}

var modAliases = map[string]Mod{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"a":       ModAlt,
	"m":       ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"meta":    ModMeta,
	"super":   ModMeta,
	"cmd":     ModMeta,
	"win":     ModMeta,
}

// keyAliases maps lower-cased spellings to canonical key names.
var keyAliases = map[string]string{
	"enter":     "Enter",
	"return":    "Enter",
	"ret":       "Enter",
	"cr":        "Enter",
	"kpenter":   "KpEnter",
	"tab":       "Tab",
	"esc":       "Esc",
	"escape":    "Esc",
	"backspace": "Backspace",
	"bs":        "Backspace",
	"space":     "Space",
	"spc":       "Space",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pgup":      "PgUp",
	"pageup":    "PgUp",
	"pgdown":    "PgDown",
	"pgdn":      "PgDown",
	"pagedown":  "PgDown",
	"delete":    "Delete",
	"del":       "Delete",
	"insert":    "Insert",
	"ins":       "Insert",
	"f1":        "F1",
	"f2":        "F2",
	"f3":        "F3",
	"f4":        "F4",
	"f5":        "F5",
	"f6":        "F6",
	"f7":        "F7",
	"f8":        "F8",
	"f9":        "F9",
	"f10":       "F10",
	"f11":       "F11",
	"f12":       "F12",
}

var namedKeys = map[rune]string{
	tea.KeyEnter:     "Enter",
	tea.KeyKpEnter:   "KpEnter",
	tea.KeyTab:       "Tab",
	tea.KeyEscape:    "Esc",
	tea.KeyBackspace: "Backspace",
	tea.KeySpace:     "Space",
	tea.KeyUp:        "Up",
	tea.KeyDown:      "Down",
	tea.KeyLeft:      "Left",
	tea.KeyRight:     "Right",
	tea.KeyHome:      "Home",
	tea.KeyEnd:       "End",
	tea.KeyPgUp:      "PgUp",
	tea.KeyPgDown:    "PgDown",
	tea.KeyDelete:    "Delete",
	tea.KeyInsert:    "Insert",
	tea.KeyF1:        "F1",
	tea.KeyF2:        "F2",
	tea.KeyF3:        "F3",
	tea.KeyF4:        "F4",
	tea.KeyF5:        "F5",
	tea.KeyF6:        "F6",
	tea.KeyF7:        "F7",
	tea.KeyF8:        "F8",
	tea.KeyF9:        "F9",
	tea.KeyF10:       "F10",
	tea.KeyF11:       "F11",
	tea.KeyF12:       "F12",
}

// Sanitize strips spaces and quote characters, as editors often send chords
// like "'Ctrl + K'".
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\'', '"':
			return -1
		}
		return r
	}, s)
}

// ParseChord parses "Mod+Mod+Key" text (case-insensitive modifiers and key
// names). A trailing "+" names the plus key itself, as in "Ctrl++".
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Chord{}, fmt.Errorf("%w: empty", ErrInvalidChord)
	}

	var keyPart string
	var modParts []string
	switch {
	case s == "+":
		keyPart = "+"
	case strings.HasSuffix(s, "++"):
		keyPart = "+"
		modParts = strings.Split(strings.TrimSuffix(s, "++"), "+")
	default:
		parts := strings.Split(s, "+")
		keyPart = parts[len(parts)-1]
		modParts = parts[:len(parts)-1]
	}

	var mod Mod
	for _, p := range modParts {
		m, ok := modAliases[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Chord{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidChord, p, s)
		}
		mod |= m
	}

	keyPart = strings.TrimSpace(keyPart)
	if name, ok := keyAliases[strings.ToLower(keyPart)]; ok {
		return Chord{Mod: mod, Key: name}, nil
	}
	if utf8.RuneCountInString(keyPart) != 1 {
		return Chord{}, fmt.Errorf("%w: unknown key %q in %q", ErrInvalidChord, keyPart, s)
	}
	r, _ := utf8.DecodeRuneInString(keyPart)
	return runeChord(mod, r, false), nil
}

// MustParseChord is ParseChord for literals known to be valid.
func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromKey canonicalizes a terminal key event.
func FromKey(k tea.Key) Chord {
	var mod Mod
	if k.Mod.Contains(tea.ModCtrl) {
		mod |= ModCtrl
	}
	if k.Mod.Contains(tea.ModAlt) {
		mod |= ModAlt
	}
	if k.Mod.Contains(tea.ModShift) {
		mod |= ModShift
	}
	if k.Mod.Contains(tea.ModMeta) || k.Mod.Contains(tea.ModSuper) {
		mod |= ModMeta
	}

	if name, ok := namedKeys[k.Code]; ok {
		return Chord{Mod: mod, Key: name}
	}
	// Legacy terminals report Ctrl+letter as a C0 control code.
	if k.Code >= 0x01 && k.Code <= 0x1a {
		return Chord{Mod: mod | ModCtrl, Key: string(rune('A' + k.Code - 1))}
	}

	r := k.Code
	if t, size := utf8.DecodeRuneInString(k.Text); size > 0 && size == len(k.Text) && unicode.IsPrint(t) {
		r = t
	} else if mod&ModShift != 0 && k.ShiftedCode != 0 {
		r = k.ShiftedCode
	}
	if !unicode.IsPrint(r) {
		return Chord{}
	}
	return runeChord(mod, r, true)
}

// runeChord builds the canonical chord for a printable rune. When produced is
// true r is the character the terminal reported, so an upper-case letter
// implies Shift; when false r came from chord text, where "R" and "r" both
// name the R key and Shift must be spelled out.
func runeChord(mod Mod, r rune, produced bool) Chord {
	if r == ' ' {
		return Chord{Mod: mod, Key: "Space"}
	}
	if unicode.IsLetter(r) {
		if produced && unicode.IsUpper(r) {
			mod |= ModShift
		}
		return Chord{Mod: mod, Key: string(unicode.ToUpper(r))}
	}
	if mod&ModShift != 0 {
		if shifted, ok := usShifted[r]; ok {
			r = shifted
		}
	}
	return Chord{Mod: mod &^ ModShift, Key: string(r)}
}

// usShifted maps the unshifted symbol keys of a US keyboard to the character
// Shift produces on them.
var usShifted = map[rune]rune{
	'`': '~', '1': '!', '2': '@', '3': '#', '4': '$', '5': '%', '6': '^',
	'7': '&', '8': '*', '9': '(', '0': ')', '-': '_', '=': '+', '[': '{',
	']': '}', '\\': '|', ';': ':', '\'': '"', ',': '<', '.': '>', '/': '?',
}
