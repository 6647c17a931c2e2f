// Package keymap holds the panel's key binding table: a closed set of logical
// actions, each bound to exactly one canonical key chord.
package keymap

import (
	"errors"
	"fmt"
)

// Action is a logical user intent, decoupled from the chord that triggers it.
type Action int

// Actions in dispatch precedence order.
const (
	OpenEntry Action = iota
	OpenRawEnter
	SwitchFocus
	ClosePanel
	OpenCommandLine
	SetRootHere
	GoToParent

	actionCount
)

// ErrUnknownAction is returned by ParseAction for names outside the closed set.
var ErrUnknownAction = errors.New("unknown action")

var actionNames = [actionCount]string{
	OpenEntry:       "OpenEntry",
	OpenRawEnter:    "OpenRawEnter",
	SwitchFocus:     "SwitchFocus",
	ClosePanel:      "ClosePanel",
	OpenCommandLine: "OpenCommandLine",
	SetRootHere:     "SetRootHere",
	GoToParent:      "GoToParent",
}

var actionHelp = [actionCount]string{
	OpenEntry:       "open",
	OpenRawEnter:    "open",
	SwitchFocus:     "switch",
	ClosePanel:      "close",
	OpenCommandLine: "cmdline",
	SetRootHere:     "set root",
	GoToParent:      "parent",
}

// wireAliases are the short names editors send in SetKey notifications.
var wireAliases = map[string]Action{
	"Open":    OpenEntry,
	"OpenE":   OpenEntry,
	"OpenR":   OpenRawEnter,
	"Switch":  SwitchFocus,
	"Close":   ClosePanel,
	"CmdLine": OpenCommandLine,
	"SetRoot": SetRootHere,
	"GoUp":    GoToParent,
}

// Actions returns every action in dispatch precedence order.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := OpenEntry; a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Valid reports whether a is one of the declared actions.
func (a Action) Valid() bool {
	return a >= OpenEntry && a < actionCount
}

// Help is the short label shown in the panel footer.
func (a Action) Help() string {
	if !a.Valid() {
		return ""
	}
	return actionHelp[a]
}

// ParseAction resolves a canonical action name or wire alias. Matching is
// exact; anything else yields ErrUnknownAction.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return Action(a), nil
		}
	}
	if a, ok := wireAliases[name]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}
