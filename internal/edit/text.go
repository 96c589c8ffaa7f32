package edit

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedLine reports a line of a comment list that is neither a
// comment, a continuation nor NAME=VALUE.
var ErrMalformedLine = errors.New("malformed tag line")

// ReadComments parses a comment list: one NAME=VALUE per record, records
// separated by delim. Empty records and records starting with '#' are
// skipped. A record starting with a tab continues the previous comment,
// the two being joined by delim.
func ReadComments(r io.Reader, delim byte) ([]string, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<30)
	s.Split(splitOn(delim))

	var comments []string
	for line := 1; s.Scan(); line++ {
		text := s.Text()
		switch {
		case text == "" || text[0] == '#':
		case text[0] == '\t':
			if len(comments) == 0 {
				return nil, fmt.Errorf("%w %d: continuation without a comment", ErrMalformedLine, line)
			}
			comments[len(comments)-1] += string(delim) + text[1:]
		case !strings.Contains(text, "="):
			return nil, fmt.Errorf("%w %d: %q has no '='", ErrMalformedLine, line, text)
		default:
			comments = append(comments, text)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	return comments, nil
}

func splitOn(delim byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, delim); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

// WriteComments prints comments in the format read by ReadComments, each
// record terminated by delim.
func WriteComments(w io.Writer, comments []string, delim byte) error {
	bw := bufio.NewWriter(w)
	sep := string(delim)
	for _, c := range comments {
		bw.WriteString(strings.ReplaceAll(c, sep, sep+"\t"))
		bw.WriteByte(delim)
	}
	return bw.Flush()
}
