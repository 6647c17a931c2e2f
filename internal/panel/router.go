package panel

import (
	"github.com/oakwood-commons/nvtree/internal/keymap"
	"github.com/oakwood-commons/nvtree/internal/rpc"
)

// Gui sub-actions.
const (
	guiToggle   = "Toggle"
	guiSwitch   = "Switch"
	guiSetKey   = "SetKey"
	guiShowHide = "ShowHide"
)

// route applies one editor notification. Malformed notifications are dropped.
func (p *Panel) route(n rpc.Notification) {
	switch n.Topic {
	case rpc.TopicDir:
		p.routeDir(n.Args)
	case rpc.TopicGui:
		p.routeGui(n.Args)
	default:
		p.log.V(1).Info("dropping notification", "topic", n.Topic, "reason", "unknown topic")
	}
}

func (p *Panel) routeDir(args []any) {
	path, ok := rpc.ArgString(rpc.Arg(args, 0))
	if !ok {
		p.log.V(1).Info("dropping Dir notification", "reason", "missing or non-string path")
		return
	}
	// Remote changes are never echoed back.
	p.setDirectory(path, false)
}

func (p *Panel) routeGui(args []any) {
	if len(args) < 2 {
		p.log.V(1).Info("dropping Gui notification", "reason", "too few arguments", "args", len(args))
		return
	}
	if name, ok := rpc.ArgString(rpc.Arg(args, 0)); !ok || name != Name {
		p.log.V(1).Info("dropping Gui notification", "reason", "not addressed to panel")
		return
	}
	action, ok := rpc.ArgString(rpc.Arg(args, 1))
	if !ok {
		p.log.V(1).Info("dropping Gui notification", "reason", "action is not a string")
		return
	}

	switch {
	case action == guiToggle:
		p.Toggle()
	case action == guiSwitch:
		p.host.FocusNext()
	case action == guiSetKey && len(args) >= 4:
		p.setKey(rpc.Arg(args, 2), rpc.Arg(args, 3))
	case action == guiShowHide && len(args) == 3:
		show, ok := rpc.ArgBool(rpc.Arg(args, 2))
		if !ok {
			p.log.V(1).Info("dropping Gui notification", "reason", "ShowHide argument is not a boolean")
			return
		}
		if show {
			p.Show()
			p.host.FocusPanel()
		} else {
			p.Hide()
		}
	default:
		p.log.V(1).Info("dropping Gui notification", "reason", "unsupported action", "action", action, "args", len(args))
	}
}

// setKey rebinds one action. Unknown actions and unparsable chords are
// ignored.
func (p *Panel) setKey(nameArg, chordArg any) {
	name, ok := rpc.ArgString(nameArg)
	if !ok {
		p.log.V(1).Info("dropping SetKey", "reason", "action is not a string")
		return
	}
	text, ok := rpc.ArgString(chordArg)
	if !ok {
		p.log.V(1).Info("dropping SetKey", "reason", "chord is not a string")
		return
	}
	action, err := keymap.ParseAction(keymap.Sanitize(name))
	if err != nil {
		p.log.V(1).Info("dropping SetKey", "reason", err.Error())
		return
	}
	chord, err := keymap.ParseChord(keymap.Sanitize(text))
	if err != nil {
		p.log.V(1).Info("dropping SetKey", "reason", err.Error())
		return
	}
	p.keys.Bind(action, chord)
	p.log.V(1).Info("rebound key", "action", action.String(), "chord", chord.String())
}
