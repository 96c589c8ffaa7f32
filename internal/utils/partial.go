package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// PartialFile is a temporary file created next to its final destination. It
// replaces the destination atomically on Commit, or disappears on Abort.
type PartialFile struct {
	*os.File
	final string
	done  bool
}

// CreatePartial creates a uniquely named sibling of final, with a ".part"
// suffix.
func CreatePartial(final string) (*PartialFile, error) {
	dir, base := filepath.Split(final)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, base+".*.part")
	if err != nil {
		return nil, fmt.Errorf("could not create a temporary file next to %s: %w", final, err)
	}
	log.Debugf("writing to %s", f.Name())
	return &PartialFile{File: f, final: final}, nil
}

// Final returns the destination path.
func (p *PartialFile) Final() string {
	return p.final
}

// Commit closes the file and moves it over the destination. An existing
// destination lends its permissions to the new file; otherwise the file gets
// the usual 0644.
func (p *PartialFile) Commit() error {
	if p.done {
		return errors.New("partial file already closed")
	}
	p.done = true

	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(p.final); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := p.File.Chmod(mode); err != nil {
		log.Debugf("could not set the mode of %s: %v", p.Name(), err)
	}
	if err := p.File.Close(); err != nil {
		os.Remove(p.Name())
		return fmt.Errorf("close %s: %w", p.Name(), err)
	}
	if err := os.Rename(p.Name(), p.final); err != nil {
		os.Remove(p.Name())
		return fmt.Errorf("could not move %s to %s: %w", p.Name(), p.final, err)
	}
	return nil
}

// Abort discards the file. It is a no-op after Commit, so it can be deferred.
func (p *PartialFile) Abort() {
	if p.done {
		return
	}
	p.done = true
	p.File.Close()
	if err := os.Remove(p.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("could not remove %s: %v", p.Name(), err)
	}
}
