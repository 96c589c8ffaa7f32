package ogg

import (
	"encoding/binary"
)

// Header type flags.
const (
	// FlagContinued marks a page whose first segment continues a packet
	// started on a previous page.
	FlagContinued = 0x01

	// FlagBOS marks the first page of a logical stream.
	FlagBOS = 0x02

	// FlagEOS marks the last page of a logical stream.
	FlagEOS = 0x04
)

const (
	// HeaderSize is the size of the fixed part of a page header.
	HeaderSize = 27

	// MaxSegmentSize is the largest lacing value.
	MaxSegmentSize = 255

	// MaxSegments is the largest number of segments on one page.
	MaxSegments = 255

	// MaxPageSize is the size of the largest possible page.
	MaxPageSize = HeaderSize + MaxSegments + MaxSegments*MaxSegmentSize

	capturePattern = "OggS"
)

// Page is a view of one Ogg page. Header holds the fixed header followed by
// the segment table, Body the payload.
type Page struct {
	Header []byte
	Body   []byte
}

// NewPage assembles a page and computes its checksum.
func NewPage(flags byte, granulePos int64, serialNo, pageNo uint32, segments, body []byte) *Page {
	header := make([]byte, HeaderSize+len(segments))
	copy(header, capturePattern)
	header[4] = 0
	header[5] = flags
	binary.LittleEndian.PutUint64(header[6:14], uint64(granulePos))
	binary.LittleEndian.PutUint32(header[14:18], serialNo)
	binary.LittleEndian.PutUint32(header[18:22], pageNo)
	header[26] = byte(len(segments))
	copy(header[HeaderSize:], segments)

	p := &Page{Header: header, Body: append([]byte(nil), body...)}
	p.updateChecksum()
	return p
}

func (p *Page) Flags() byte { return p.Header[5] }

// Continued reports whether the page starts with the continuation of a
// packet begun on an earlier page.
func (p *Page) Continued() bool { return p.Header[5]&FlagContinued != 0 }

func (p *Page) BOS() bool { return p.Header[5]&FlagBOS != 0 }

func (p *Page) EOS() bool { return p.Header[5]&FlagEOS != 0 }

// GranulePos returns the granule position; -1 means no packet ends on the page.
func (p *Page) GranulePos() int64 {
	return int64(binary.LittleEndian.Uint64(p.Header[6:14]))
}

func (p *Page) SerialNo() uint32 {
	return binary.LittleEndian.Uint32(p.Header[14:18])
}

func (p *Page) PageNo() uint32 {
	return binary.LittleEndian.Uint32(p.Header[18:22])
}

func (p *Page) Checksum() uint32 {
	return binary.LittleEndian.Uint32(p.Header[22:26])
}

// Segments returns the lacing values of the page.
func (p *Page) Segments() []byte {
	return p.Header[HeaderSize:]
}

// Packets returns the number of packets that end on this page.
func (p *Page) Packets() int {
	n := 0
	for _, s := range p.Segments() {
		if s < MaxSegmentSize {
			n++
		}
	}
	return n
}

// Open reports whether the last packet on the page continues on the next one.
func (p *Page) Open() bool {
	segs := p.Segments()
	return len(segs) > 0 && segs[len(segs)-1] == MaxSegmentSize
}

// Size returns the encoded size of the page in bytes.
func (p *Page) Size() int {
	return len(p.Header) + len(p.Body)
}

// Bytes returns a fresh copy of the encoded page.
func (p *Page) Bytes() []byte {
	b := make([]byte, 0, p.Size())
	b = append(b, p.Header...)
	return append(b, p.Body...)
}

// Clone returns a deep copy that survives further reads.
func (p *Page) Clone() *Page {
	return &Page{
		Header: append([]byte(nil), p.Header...),
		Body:   append([]byte(nil), p.Body...),
	}
}

// Renumber rewrites the page sequence number and refreshes the checksum in
// place. On a page obtained from a Reader this modifies the reader's buffer,
// which is fine as long as the page is written before the next read.
func (p *Page) Renumber(pageNo uint32) {
	if p.PageNo() == pageNo {
		return
	}
	binary.LittleEndian.PutUint32(p.Header[18:22], pageNo)
	p.updateChecksum()
}

func (p *Page) updateChecksum() {
	binary.LittleEndian.PutUint32(p.Header[22:26], pageChecksum(p.Header, p.Body))
}

// lacing returns the segment table of a packet of the given length.
func lacing(n int) []byte {
	segs := make([]byte, n/MaxSegmentSize+1)
	for i := 0; i < len(segs)-1; i++ {
		segs[i] = MaxSegmentSize
	}
	segs[len(segs)-1] = byte(n % MaxSegmentSize)
	return segs
}
