package ogg

import (
	"errors"
	"fmt"
)

// ErrContainer is the root of every error caused by a malformed or
// unsupported container. Use errors.Is to test for it.
var ErrContainer = errors.New("ogg: invalid container")

var (
	// ErrLostSync indicates the data does not begin with a page, either
	// because the capture pattern is missing or the version is unknown.
	ErrLostSync = fmt.Errorf("%w: unsynced data in stream", ErrContainer)

	// ErrBadCRC indicates the page checksum does not match its content.
	ErrBadCRC = fmt.Errorf("%w: checksum mismatch", ErrContainer)

	// ErrMuxed indicates pages from more than one logical stream.
	ErrMuxed = fmt.Errorf("%w: multiplexed streams are not supported", ErrContainer)

	// ErrPageGap indicates a missing page in the sequence of a stream.
	ErrPageGap = fmt.Errorf("%w: missing page", ErrContainer)

	// ErrTruncated indicates the stream ended in the middle of a packet.
	ErrTruncated = fmt.Errorf("%w: truncated packet", ErrContainer)

	// ErrTooFewPackets indicates a stream without both header packets.
	ErrTooFewPackets = fmt.Errorf("%w: fewer than two packets", ErrContainer)
)

// ErrEndOfPage is returned by Assembler.NextPacket when the current page
// holds no further complete packet and the next page must be submitted.
var ErrEndOfPage = errors.New("ogg: end of page")
