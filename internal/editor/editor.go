// Package editor lets the user edit a comment list in their text editor.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/jvatic/opustags/internal/edit"
)

// ErrCancelled reports an editor session that failed or changed nothing.
var ErrCancelled = errors.New("edition cancelled")

// ErrNoTerminal reports that the editor cannot be used without a terminal.
var ErrNoTerminal = errors.New("the editor requires standard input and output to be terminals")

const defaultEditor = "vi"

type Option func(*Editor)

// OptionCommand sets the editor command, run through the shell with the file
// as first argument. It defaults to $EDITOR, or vi.
func OptionCommand(cmd string) Option {
	return func(e *Editor) {
		e.command = cmd
	}
}

// OptionDelimiter sets the byte ending each tag in the edited file.
func OptionDelimiter(delim byte) Option {
	return func(e *Editor) {
		e.delim = delim
	}
}

// OptionStdio sets the streams handed to the editor. Terminal checks only
// apply to *os.File streams.
func OptionStdio(in io.Reader, out, errOut io.Writer) Option {
	return func(e *Editor) {
		e.stdin, e.stdout, e.stderr = in, out, errOut
	}
}

// OptionSkipTerminalCheck allows the editor to run without a terminal.
func OptionSkipTerminalCheck() Option {
	return func(e *Editor) {
		e.skipTTY = true
	}
}

// Editor runs an external text editor on comment lists.
type Editor struct {
	command string
	delim   byte
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	skipTTY bool
}

func New(opts ...Option) *Editor {
	e := &Editor{
		command: os.Getenv("EDITOR"),
		delim:   '\n',
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.command == "" {
		e.command = defaultEditor
	}
	return e
}

// Edit writes comments to a file next to near (in the temporary directory
// when near is "-" or empty), opens it in the editor and reads the result
// back. When the editor fails, the file is left in place so that the edits
// are not lost, and ErrCancelled is returned. A file the editor left
// untouched also counts as cancelled.
func (e *Editor) Edit(ctx context.Context, near string, comments []string) ([]string, error) {
	if !e.skipTTY && !(isTerminal(e.stdin) && isTerminal(e.stdout)) {
		return nil, ErrNoTerminal
	}

	var initial bytes.Buffer
	if err := edit.WriteComments(&initial, comments, e.delim); err != nil {
		return nil, err
	}

	dir, pattern := os.TempDir(), "opustags.*.opustags"
	if near != "" && near != "-" {
		dir = filepath.Dir(near)
		pattern = filepath.Base(near) + ".*.opustags"
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("could not create the tag file: %w", err)
	}
	path := f.Name()
	_, werr := f.Write(initial.Bytes())
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("could not write %s: %w", path, werr)
	}
	before, err := os.Stat(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	log.Debugf("running %s on %s", e.command, path)
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", e.command+` "$1"`, "sh", path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = e.stdin, e.stdout, e.stderr
	if err := cmd.Run(); err != nil {
		log.Warnf("the tags have been kept in %s", path)
		return nil, fmt.Errorf("%w: %s exited with %v", ErrCancelled, e.command, err)
	}

	after, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if after.ModTime().Equal(before.ModTime()) && bytes.Equal(data, initial.Bytes()) {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %s was not modified", ErrCancelled, path)
	}

	edited, err := edit.ReadComments(bytes.NewReader(data), e.delim)
	if err != nil {
		log.Warnf("the tags have been kept in %s", path)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		log.Warnf("could not remove %s: %v", path, err)
	}
	return edited, nil
}

func isTerminal(s any) bool {
	f, ok := s.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
