package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/peterh/liner"
)

// ErrAborted is returned by a LineReader when the user pressed Ctrl-C.
var ErrAborted = liner.ErrPromptAborted

// LineReader reads edited lines from the user.
type LineReader interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(line string)
}

// Terminal is the liner backed LineReader with a persistent history file.
type Terminal struct {
	state       *liner.State
	historyFile string
	limit       int
	logger      logging.Logger
}

// NewTerminal puts the terminal in line editing mode and loads the history
// from historyFile, if any. Close must be called to restore the terminal.
func NewTerminal(historyFile string, limit int, logger logging.Logger) *Terminal {
	if logger == nil {
		logger = logging.Discard()
	}
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetTabCompletionStyle(liner.TabPrints)

	t := &Terminal{state: state, historyFile: historyFile, limit: limit, logger: logger}
	t.loadHistory()
	return t
}

// SetCompleter installs tab completion.
func (t *Terminal) SetCompleter(f func(line string) []string) {
	t.state.SetCompleter(f)
}

func (t *Terminal) Prompt(prompt string) (string, error) {
	return t.state.Prompt(prompt)
}

func (t *Terminal) PasswordPrompt(prompt string) (string, error) {
	return t.state.PasswordPrompt(prompt)
}

func (t *Terminal) AppendHistory(line string) {
	if strings.TrimSpace(line) != "" {
		t.state.AppendHistory(line)
	}
}

func (t *Terminal) loadHistory() {
	if t.historyFile == "" {
		return
	}
	f, err := os.Open(t.historyFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			t.logger.Warn("shell: open history failed", "path", t.historyFile, "error", err.Error())
		}
		return
	}
	defer f.Close()
	if _, err := t.state.ReadHistory(f); err != nil {
		t.logger.Warn("shell: read history failed", "path", t.historyFile, "error", err.Error())
	}
}

func (t *Terminal) saveHistory() error {
	if t.historyFile == "" || t.limit <= 0 {
		return nil
	}
	var buf bytes.Buffer
	if _, err := t.state.WriteHistory(&buf); err != nil {
		return fmt.Errorf("shell: collect history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.historyFile), 0o755); err != nil {
		return fmt.Errorf("shell: create history directory: %w", err)
	}
	f, err := os.OpenFile(t.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("shell: open history: %w", err)
	}
	defer f.Close()
	return writeHistory(f, &buf, t.limit)
}

// writeHistory copies the newest limit lines of r to w.
func writeHistory(w io.Writer, r io.Reader, limit int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	_, err = io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// Close saves the history and restores the terminal.
func (t *Terminal) Close() error {
	herr := t.saveHistory()
	if herr != nil {
		t.logger.Warn("shell: save history failed", "path", t.historyFile, "error", herr.Error())
	}
	return errors.Join(herr, t.state.Close())
}
