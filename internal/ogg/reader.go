package ogg

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// readChunkSize is how many bytes the reader asks its source for at a time.
const readChunkSize = 64 * 1024

// maxEmptyReads bounds the number of consecutive empty reads tolerated from
// the source, like bufio does.
const maxEmptyReads = 100

// Reader extracts pages from a byte stream. It keeps a synchronization buffer
// that it only refills when no complete page can be extracted from it.
type Reader struct {
	r     io.Reader
	buf   []byte
	start int // first byte not yet handed out
	page  Page

	offset int64 // absolute offset of buf[0]
	last   int64 // absolute offset of the last page returned
	pages  int64
	eof    bool
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// NextPage returns the next page of the stream. It returns io.EOF once the
// input is exhausted, ErrBadCRC when a page fails its checksum and
// ErrLostSync when the data at the current position is not a page. I/O errors
// from the source are returned wrapped.
//
// Each call returns a distinct Page, but its data points into the reader's
// buffer and is only valid until the next call to NextPage.
func (r *Reader) NextPage() (*Page, error) {
	for {
		n, err := r.extract()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			r.last = r.offset + int64(r.start)
			r.start += n
			r.pages++
			pg := r.page
			return &pg, nil
		}
		if r.eof {
			if rest := len(r.buf) - r.start; rest > 0 {
				log.Debugf("ogg: ignoring %d trailing bytes at offset %d", rest, r.offset+int64(r.start))
				r.start = len(r.buf)
			}
			return nil, io.EOF
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

// Offset returns the byte offset of the last page returned by NextPage.
func (r *Reader) Offset() int64 {
	return r.last
}

// PageIndex returns how many pages have been returned so far.
func (r *Reader) PageIndex() int64 {
	return r.pages
}

// extract tries to frame a page at the start of the unread data. It returns
// the page size, or 0 when more data is needed.
func (r *Reader) extract() (int, error) {
	data := r.buf[r.start:]
	if len(data) < HeaderSize {
		if len(data) > 0 && !bytes.HasPrefix([]byte(capturePattern), data[:min(len(data), len(capturePattern))]) {
			return 0, r.syncError()
		}
		return 0, nil
	}
	if string(data[:4]) != capturePattern || data[4] != 0 {
		return 0, r.syncError()
	}

	headerLen := HeaderSize + int(data[26])
	if len(data) < headerLen {
		return 0, nil
	}
	bodyLen := 0
	for _, s := range data[HeaderSize:headerLen] {
		bodyLen += int(s)
	}
	if len(data) < headerLen+bodyLen {
		return 0, nil
	}

	page := Page{
		Header: data[:headerLen:headerLen],
		Body:   data[headerLen : headerLen+bodyLen : headerLen+bodyLen],
	}
	if sum := pageChecksum(page.Header, page.Body); sum != page.Checksum() {
		return 0, fmt.Errorf("%w: page %d at offset %d (stored %08x, computed %08x)",
			ErrBadCRC, page.PageNo(), r.offset+int64(r.start), page.Checksum(), sum)
	}
	r.page = page
	return headerLen + bodyLen, nil
}

func (r *Reader) syncError() error {
	return fmt.Errorf("%w at offset %d", ErrLostSync, r.offset+int64(r.start))
}

// fill appends one chunk from the source to the buffer, discarding the bytes
// already handed out. This invalidates the last page returned.
func (r *Reader) fill() error {
	if r.start > 0 {
		n := copy(r.buf, r.buf[r.start:])
		r.buf = r.buf[:n]
		r.offset += int64(r.start)
		r.start = 0
	}
	if cap(r.buf)-len(r.buf) < readChunkSize {
		grown := make([]byte, len(r.buf), len(r.buf)+readChunkSize)
		copy(grown, r.buf)
		r.buf = grown
	}

	for i := 0; i < maxEmptyReads; i++ {
		n, err := r.r.Read(r.buf[len(r.buf) : len(r.buf)+readChunkSize])
		r.buf = r.buf[:len(r.buf)+n]
		if errors.Is(err, io.EOF) {
			r.eof = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("ogg: read error: %w", err)
		}
		if n > 0 {
			return nil
		}
	}
	return fmt.Errorf("ogg: read error: %w", io.ErrNoProgress)
}
