// Package rpc defines the boundary between the panel and the editor process:
// the outbound Remote surface, the inbound notification message, and helpers
// for decoding loosely typed msgpack arguments.
package rpc

import (
	tea "charm.land/bubbletea/v2"
)

// Notification topics the panel subscribes to.
const (
	TopicDir = "Dir"
	TopicGui = "Gui"
)

// DropFunction is the editor function that opens a file.
const DropFunction = "GuiDrop"

// Remote is the outbound side of the editor connection. Every method is
// fire-and-forget: implementations queue the request and return without
// waiting for a response. Failures are the implementation's to log.
type Remote interface {
	// Ready reports whether the connection is established.
	Ready() bool
	Subscribe(topic string)
	// DropFile asks the editor to open path.
	DropFile(path string)
	// ChangeDirectory tells the editor the working directory changed. dir is
	// raw bytes in the editor's encoding.
	ChangeDirectory(dir []byte)
	// FeedKeys sends synthetic input. mode follows nvim_feedkeys ("n" means
	// no remapping).
	FeedKeys(keys, mode string, escapeCSI bool)
}

// Notification is one inbound message: a topic and its ordered arguments, as
// decoded by the transport.
type Notification struct {
	Topic string
	Args  []any
}

// ReadyMsg is delivered once the connection is established.
type ReadyMsg struct{}

// DisconnectedMsg is delivered when the notification stream ends.
type DisconnectedMsg struct {
	Err error
}

// ConnectFailedMsg reports a failed connection attempt.
type ConnectFailedMsg struct {
	Err error
}

// Listen waits for the next notification on ch. The caller re-issues Listen
// after each delivery so notifications are handled one at a time on the UI
// loop.
func Listen(ch <-chan Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return DisconnectedMsg{}
		}
		return n
	}
}
