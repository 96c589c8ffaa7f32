package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// MaxSlurpSize bounds the size of files read whole, such as cover art.
const MaxSlurpSize = 16 << 20

// ReadFile reads a whole file, or standard input when path is "-".
func ReadFile(path string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return ReadAll(r, path)
}

// ReadAll reads r to the end, refusing more than MaxSlurpSize bytes. name is
// used in error messages.
func ReadAll(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSlurpSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxSlurpSize {
		return nil, fmt.Errorf("read %s: file exceeds %d bytes", name, MaxSlurpSize)
	}
	return data, nil
}

// Stat reports whether path exists and, if so, whether it is a regular file.
// Symbolic links are followed.
func Stat(path string) (exists, regular bool, err error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, fi.Mode().IsRegular(), nil
}
