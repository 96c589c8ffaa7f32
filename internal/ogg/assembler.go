package ogg

import (
	"fmt"
	"io"
)

// Packet is one logical message of a stream, reassembled from one or more
// pages.
type Packet struct {
	Data []byte

	// BOS is set on the first packet of the stream, EOS on the last one.
	BOS, EOS bool

	// GranulePos is the granule position of the page the packet ends on, or
	// -1 when another packet ends after it on the same page.
	GranulePos int64

	// PacketNo counts packets from 0 within the stream.
	PacketNo int64
}

// Assembler reconstructs the packets of a single logical stream from its
// pages, in order. Packets are copied out of the pages so they remain valid
// after the pages are released.
type Assembler struct {
	started  bool
	serialNo uint32
	pageNo   uint32

	page    *Page
	nseg    int // segments of page, recorded on Submit
	seg     int // next segment of page
	off     int // next body byte of page
	lastEnd int // index of the last segment that terminates a packet on page

	partial  []byte
	pending  bool // partial holds the beginning of a packet
	packetNo int64
	eos      bool
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Submit hands the next page of the stream to the assembler. Every packet of
// the previous page must have been consumed with NextPacket first.
//
// The first page fixes the serial number; a page of another stream fails
// with ErrMuxed and a break in the page sequence with ErrPageGap.
func (a *Assembler) Submit(p *Page) error {
	if a.page != nil && a.seg < a.nseg {
		return fmt.Errorf("ogg: page %d submitted before page %d was consumed", p.PageNo(), a.pageNo)
	}
	if a.eos {
		return fmt.Errorf("%w: page %d follows the end of stream", ErrContainer, p.PageNo())
	}
	if !a.started {
		a.started = true
		a.serialNo = p.SerialNo()
	} else {
		if p.SerialNo() != a.serialNo {
			return fmt.Errorf("%w: serial numbers %08x and %08x", ErrMuxed, a.serialNo, p.SerialNo())
		}
		if p.PageNo() != a.pageNo+1 {
			return fmt.Errorf("%w: expected page %d, got %d", ErrPageGap, a.pageNo+1, p.PageNo())
		}
	}
	if p.Continued() && !a.pending {
		return fmt.Errorf("%w: page %d continues a packet that was never started", ErrContainer, p.PageNo())
	}
	if !p.Continued() && a.pending {
		return fmt.Errorf("%w: packet interrupted by page %d", ErrContainer, p.PageNo())
	}

	a.pageNo = p.PageNo()
	a.page = p
	a.nseg = len(p.Segments())
	a.seg = 0
	a.off = 0
	a.lastEnd = -1
	for i, s := range p.Segments() {
		if s < MaxSegmentSize {
			a.lastEnd = i
		}
	}
	a.eos = p.EOS()
	return nil
}

// NextPacket returns the next complete packet. It returns ErrEndOfPage when
// the current page has no further complete packet, and io.EOF when the
// end-of-stream page has been fully consumed.
func (a *Assembler) NextPacket() (*Packet, error) {
	if a.page == nil {
		return nil, ErrEndOfPage
	}
	segs := a.page.Segments()
	for a.seg < len(segs) {
		i := a.seg
		n := int(segs[i])
		a.partial = append(a.partial, a.page.Body[a.off:a.off+n]...)
		a.pending = true
		a.seg++
		a.off += n
		if n == MaxSegmentSize {
			continue
		}

		pkt := &Packet{
			Data:       a.partial,
			BOS:        a.packetNo == 0 && a.page.BOS(),
			GranulePos: -1,
			PacketNo:   a.packetNo,
		}
		if i == a.lastEnd {
			pkt.GranulePos = a.page.GranulePos()
			pkt.EOS = a.page.EOS()
		}
		if pkt.Data == nil {
			pkt.Data = []byte{}
		}
		a.partial = nil
		a.pending = false
		a.packetNo++
		return pkt, nil
	}
	if a.eos {
		if a.pending {
			return nil, fmt.Errorf("%w: end of stream inside packet %d", ErrTruncated, a.packetNo)
		}
		return nil, io.EOF
	}
	return nil, ErrEndOfPage
}

// Pending reports whether the segments consumed so far end inside a packet,
// that is whether the last page read leaves a packet open.
func (a *Assembler) Pending() bool {
	return a.pending
}

// SerialNo returns the serial number of the stream, valid once a page has
// been submitted.
func (a *Assembler) SerialNo() uint32 {
	return a.serialNo
}
