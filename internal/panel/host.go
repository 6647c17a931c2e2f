package panel

import "os"

// Host is the window the panel is embedded in.
type Host interface {
	// FocusNext moves focus to the next focusable widget after the panel.
	FocusNext()
	// FocusPanel gives focus to the panel.
	FocusPanel()
}

// Workdir reads and changes the process working directory.
type Workdir interface {
	Getwd() (string, error)
	Chdir(dir string) error
}

// OSWorkdir is the Workdir of the running process.
type OSWorkdir struct{}

func (OSWorkdir) Getwd() (string, error) { return os.Getwd() }

func (OSWorkdir) Chdir(dir string) error { return os.Chdir(dir) }

type noopHost struct{}

func (noopHost) FocusNext()  {}
func (noopHost) FocusPanel() {}
