package opus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	headMagic = "OpusHead"
	tagsMagic = "OpusTags"
	headSize  = 19
)

// Head holds the fixed fields of the identification header.
type Head struct {
	Version       uint8
	Channels      uint8
	PreSkip       uint16
	SampleRate    uint32
	OutputGain    int16
	MappingFamily uint8
}

// CheckHead verifies that packet is an identification header.
func CheckHead(packet []byte) error {
	if !bytes.HasPrefix(packet, []byte(headMagic)) {
		return ErrNotOpus
	}
	return nil
}

// ParseHead decodes the fixed part of an identification header. Only major
// version 0 is understood.
func ParseHead(packet []byte) (*Head, error) {
	if err := CheckHead(packet); err != nil {
		return nil, err
	}
	if len(packet) < headSize {
		return nil, fmt.Errorf("%w: identification header of %d bytes", ErrNotOpus, len(packet))
	}
	h := &Head{
		Version:       packet[8],
		Channels:      packet[9],
		PreSkip:       binary.LittleEndian.Uint16(packet[10:12]),
		SampleRate:    binary.LittleEndian.Uint32(packet[12:16]),
		OutputGain:    int16(binary.LittleEndian.Uint16(packet[16:18])),
		MappingFamily: packet[18],
	}
	if h.Version>>4 != 0 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrNotOpus, h.Version)
	}
	return h, nil
}
