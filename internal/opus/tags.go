package opus

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jvatic/opustags/internal/ogg"
)

// Tags is the decoded content of an OpusTags packet.
type Tags struct {
	Vendor   string
	Comments []string

	// ExtraData holds whatever follows the last comment, preserved verbatim.
	ExtraData []byte
}

// ParseTags decodes a comment header packet. Every length field is checked
// against the bytes left in the packet before it is used.
func ParseTags(packet []byte) (*Tags, error) {
	if len(packet) < len(tagsMagic) {
		return nil, ErrOverflowingMagic
	}
	if string(packet[:len(tagsMagic)]) != tagsMagic {
		return nil, ErrBadMagic
	}
	d := decoder{buf: packet, pos: len(tagsMagic)}

	vendorLen, ok := d.uint32()
	if !ok {
		return nil, ErrOverflowingVendorLength
	}
	vendor, ok := d.bytes(vendorLen)
	if !ok {
		return nil, fmt.Errorf("%w (%d bytes declared, %d left)", ErrOverflowingVendorData, vendorLen, d.left())
	}

	count, ok := d.uint32()
	if !ok {
		return nil, ErrOverflowingCommentCount
	}
	// Each comment needs at least its length field.
	if uint64(count)*4 > uint64(d.left()) {
		return nil, fmt.Errorf("%w (%d comments declared, %d bytes left)", ErrOverflowingCommentCount, count, d.left())
	}

	t := &Tags{
		Vendor:   string(vendor),
		Comments: make([]string, 0, count),
	}
	for i := uint32(0); i < count; i++ {
		n, ok := d.uint32()
		if !ok {
			return nil, fmt.Errorf("%w (comment %d)", ErrOverflowingCommentLength, i)
		}
		c, ok := d.bytes(n)
		if !ok {
			return nil, fmt.Errorf("%w (comment %d: %d bytes declared, %d left)", ErrOverflowingCommentData, i, n, d.left())
		}
		t.Comments = append(t.Comments, string(c))
	}
	if d.left() > 0 {
		t.ExtraData = append([]byte(nil), d.buf[d.pos:]...)
	}
	return t, nil
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) left() int { return len(d.buf) - d.pos }

func (d *decoder) uint32() (uint32, bool) {
	if d.left() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, true
}

func (d *decoder) bytes(n uint32) ([]byte, bool) {
	if uint64(n) > uint64(d.left()) {
		return nil, false
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, true
}

// Bytes encodes the tags as a comment header packet payload.
func (t *Tags) Bytes() []byte {
	size := len(tagsMagic) + 4 + len(t.Vendor) + 4 + len(t.ExtraData)
	for _, c := range t.Comments {
		size += 4 + len(c)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, tagsMagic...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Vendor)))
	buf = append(buf, t.Vendor...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Comments)))
	for _, c := range t.Comments {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c)))
		buf = append(buf, c...)
	}
	return append(buf, t.ExtraData...)
}

// RenderTags builds the comment header packet for t.
func RenderTags(t *Tags) *ogg.Packet {
	return &ogg.Packet{
		Data:       t.Bytes(),
		GranulePos: 0,
		PacketNo:   1,
	}
}

// Equal reports whether t and o would render to the same packet.
func (t *Tags) Equal(o *Tags) bool {
	if t.Vendor != o.Vendor || len(t.Comments) != len(o.Comments) || !bytes.Equal(t.ExtraData, o.ExtraData) {
		return false
	}
	for i := range t.Comments {
		if t.Comments[i] != o.Comments[i] {
			return false
		}
	}
	return true
}

// Get returns the values of every comment named name, compared without
// regard to ASCII case.
func (t *Tags) Get(name string) []string {
	var values []string
	for _, c := range t.Comments {
		if n, v, ok := SplitComment(c); ok && strings.EqualFold(n, name) {
			values = append(values, v)
		}
	}
	return values
}

// Add appends NAME=VALUE.
func (t *Tags) Add(name, value string) {
	t.Comments = append(t.Comments, name+"="+value)
}

// Delete removes every comment named name and returns how many were removed.
func (t *Tags) Delete(name string) int {
	return t.DeleteFunc(func(c string) bool {
		n, _, ok := SplitComment(c)
		return ok && strings.EqualFold(n, name)
	})
}

// DeleteFunc removes the comments for which match returns true, keeping the
// order of the others.
func (t *Tags) DeleteFunc(match func(comment string) bool) int {
	kept := t.Comments[:0]
	for _, c := range t.Comments {
		if !match(c) {
			kept = append(kept, c)
		}
	}
	n := len(t.Comments) - len(kept)
	for i := len(kept); i < len(t.Comments); i++ {
		t.Comments[i] = ""
	}
	t.Comments = kept
	return n
}

// Names returns the distinct comment names in order of first appearance,
// upper-cased.
func (t *Tags) Names() []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range t.Comments {
		n, _, ok := SplitComment(c)
		if !ok {
			continue
		}
		n = strings.ToUpper(n)
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// SplitComment splits NAME=VALUE at the first equal sign.
func SplitComment(c string) (name, value string, ok bool) {
	return strings.Cut(c, "=")
}

// ValidName reports whether name is a legal field name: non-empty printable
// ASCII from 0x20 to 0x7D, without '='.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 0x20 || c > 0x7d || c == '=' {
			return false
		}
	}
	return true
}
