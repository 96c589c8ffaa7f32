package opus

import (
	"errors"
	"fmt"
)

// ErrNotOpus reports a stream whose first packet is not an OpusHead header.
var ErrNotOpus = errors.New("opus: not an Opus stream")

// ErrBadComment reports a malformed OpusTags packet. Every refinement below
// matches it with errors.Is.
var ErrBadComment = errors.New("opus: malformed comment header")

var (
	ErrOverflowingMagic         = fmt.Errorf("%w: packet too short for the OpusTags magic", ErrBadComment)
	ErrBadMagic                 = fmt.Errorf("%w: missing OpusTags magic", ErrBadComment)
	ErrOverflowingVendorLength  = fmt.Errorf("%w: vendor length overflows the packet", ErrBadComment)
	ErrOverflowingVendorData    = fmt.Errorf("%w: vendor string overflows the packet", ErrBadComment)
	ErrOverflowingCommentCount  = fmt.Errorf("%w: comment count overflows the packet", ErrBadComment)
	ErrOverflowingCommentLength = fmt.Errorf("%w: comment length overflows the packet", ErrBadComment)
	ErrOverflowingCommentData   = fmt.Errorf("%w: comment string overflows the packet", ErrBadComment)
)

// ErrBadPicture reports an undecodable METADATA_BLOCK_PICTURE value.
var ErrBadPicture = errors.New("opus: malformed picture block")

var (
	ErrPictureBase64    = fmt.Errorf("%w: invalid base64", ErrBadPicture)
	ErrPictureTruncated = fmt.Errorf("%w: truncated", ErrBadPicture)
	ErrPictureTrailing  = fmt.Errorf("%w: trailing data", ErrBadPicture)
)
