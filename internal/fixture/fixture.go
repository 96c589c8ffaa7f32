// Package fixture builds small Ogg Opus streams for tests.
package fixture

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/jvatic/opustags/internal/ogg"
)

const DefaultVendor = "fixture"

type config struct {
	serialNo     uint32
	audioPackets int
	audioSize    int
	extraData    []byte
	headersOnly  bool
	channels     byte
}

type Option func(*config)

// OptionSerialNo sets the serial number of the stream.
func OptionSerialNo(n uint32) Option {
	return func(c *config) { c.serialNo = n }
}

// OptionAudio sets how many audio packets follow the headers and their size.
func OptionAudio(packets, size int) Option {
	return func(c *config) {
		c.audioPackets = packets
		c.audioSize = size
	}
}

// OptionExtraData appends data after the comment list of the OpusTags packet.
func OptionExtraData(b []byte) Option {
	return func(c *config) { c.extraData = b }
}

// OptionHeadersOnly ends the stream on the comment header page.
func OptionHeadersOnly() Option {
	return func(c *config) { c.headersOnly = true }
}

// Head returns an OpusHead packet.
func Head(channels byte) []byte {
	b := make([]byte, 19)
	copy(b, "OpusHead")
	b[8] = 1
	b[9] = channels
	binary.LittleEndian.PutUint16(b[10:], 312)
	binary.LittleEndian.PutUint32(b[12:], 48000)
	return b
}

// Tags returns an OpusTags packet.
func Tags(vendor string, comments []string, extra []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("OpusTags")
	putString(&buf, vendor)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		putString(&buf, c)
	}
	buf.Write(extra)
	return buf.Bytes()
}

func putString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

// Stream returns a complete Ogg Opus stream whose comment header carries the
// given vendor and comments. Each audio packet goes on its own page.
func Stream(vendor string, comments []string, opts ...Option) []byte {
	c := &config{serialNo: 0x1234abcd, audioPackets: 3, audioSize: 100, channels: 2}
	for _, opt := range opts {
		opt(c)
	}
	return StreamWithTags(Tags(vendor, comments, c.extraData), opts...)
}

// StreamWithTags is like Stream but takes a raw comment header packet.
func StreamWithTags(tags []byte, opts ...Option) []byte {
	c := &config{serialNo: 0x1234abcd, audioPackets: 3, audioSize: 100, channels: 2}
	for _, opt := range opts {
		opt(c)
	}

	var out bytes.Buffer
	w := ogg.NewWriter(&out)
	w.BeginHeader(c.serialNo, 0)
	w.WritePacket(&ogg.Packet{Data: Head(c.channels), BOS: true, GranulePos: 0})
	mustFlush(w)
	w.WritePacket(&ogg.Packet{Data: tags, GranulePos: 0, EOS: c.headersOnly})
	mustFlush(w)
	if c.headersOnly {
		return out.Bytes()
	}
	for i := 0; i < c.audioPackets; i++ {
		data := bytes.Repeat([]byte{byte(i + 1)}, c.audioSize)
		w.WritePacket(&ogg.Packet{
			Data:       data,
			GranulePos: int64(i+1) * 960,
			EOS:        i == c.audioPackets-1,
		})
		mustFlush(w)
	}
	return out.Bytes()
}

func mustFlush(w *ogg.Writer) {
	if _, err := w.Flush(); err != nil {
		panic(err)
	}
}

// Pages splits a stream into its pages.
func Pages(t testing.TB, stream []byte) []*ogg.Page {
	t.Helper()
	r := ogg.NewReader(bytes.NewReader(stream))
	var pages []*ogg.Page
	for {
		p, err := r.NextPage()
		if err != nil {
			break
		}
		pages = append(pages, p.Clone())
	}
	return pages
}

// WriteFile stores data in a fresh file under a test temp directory.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
