package ogg

import (
	"errors"
	"fmt"
	"io"
)

// Writer emits pages to an underlying stream. Pages read from elsewhere pass
// through WriteRawPage untouched; new packets are queued with WritePacket and
// paginated by Flush.
type Writer struct {
	w        io.Writer
	serialNo uint32
	pageNo   uint32
	queue    []*Packet
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRawPage writes p as is. The next page produced by Flush is numbered
// after it.
func (w *Writer) WriteRawPage(p *Page) error {
	if len(w.queue) > 0 {
		return errors.New("ogg: raw page written while packets are queued")
	}
	if err := w.write(p); err != nil {
		return err
	}
	w.serialNo = p.SerialNo()
	w.pageNo = p.PageNo() + 1
	return nil
}

// BeginHeader prepares the writer to paginate packets of the stream serialNo,
// starting with page number pageNo.
func (w *Writer) BeginHeader(serialNo, pageNo uint32) {
	w.serialNo = serialNo
	w.pageNo = pageNo
	w.queue = w.queue[:0]
}

// WritePacket queues a copy of p for the next Flush.
func (w *Writer) WritePacket(p *Packet) {
	cp := *p
	cp.Data = append([]byte(nil), p.Data...)
	w.queue = append(w.queue, &cp)
}

// NextPageNo returns the number the next emitted page will carry.
func (w *Writer) NextPageNo() uint32 {
	return w.pageNo
}

// Flush paginates the queued packets and writes the resulting pages. The last
// page always ends with the last queued packet. It returns the number of pages
// written.
func (w *Writer) Flush() (int, error) {
	var (
		pages int
		segs  = make([]byte, 0, MaxSegments)
		body  []byte

		continued bool
		bos       bool
		eos       bool
		granule   int64 = -1
	)

	emit := func() error {
		var flags byte
		if continued {
			flags |= FlagContinued
		}
		if bos {
			flags |= FlagBOS
		}
		if eos {
			flags |= FlagEOS
		}
		p := NewPage(flags, granule, w.serialNo, w.pageNo, segs, body)
		if err := w.write(p); err != nil {
			return err
		}
		pages++
		w.pageNo++
		segs = segs[:0]
		body = body[:0]
		continued, bos, eos, granule = false, false, false, -1
		return nil
	}

	for _, pkt := range w.queue {
		lac := lacing(len(pkt.Data))
		off := 0
		for i, s := range lac {
			if len(segs) == MaxSegments {
				if err := emit(); err != nil {
					return pages, err
				}
				continued = i > 0
			}
			if i == 0 && pkt.BOS && len(segs) == 0 {
				bos = true
			}
			segs = append(segs, s)
			body = append(body, pkt.Data[off:off+int(s)]...)
			off += int(s)
		}
		granule = pkt.GranulePos
		eos = pkt.EOS
	}
	if len(segs) > 0 {
		if err := emit(); err != nil {
			return pages, err
		}
	}
	w.queue = w.queue[:0]
	return pages, nil
}

func (w *Writer) write(p *Page) error {
	if _, err := w.w.Write(p.Header); err != nil {
		return fmt.Errorf("ogg: write error: %w", err)
	}
	if _, err := w.w.Write(p.Body); err != nil {
		return fmt.Errorf("ogg: write error: %w", err)
	}
	return nil
}
