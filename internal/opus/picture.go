package opus

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-flac/flacpicture"
	flac "github.com/go-flac/go-flac"
	log "github.com/sirupsen/logrus"
)

// PictureField is the comment name carrying embedded pictures.
const PictureField = "METADATA_BLOCK_PICTURE"

// Picture is a FLAC picture block, as embedded in Vorbis-style comments.
type Picture struct {
	flacpicture.MetadataBlockPicture
}

// ParsePicture decodes a binary picture block. The length fields are checked
// against the block before decoding so that a corrupt value cannot make the
// decoder allocate more than the block holds.
func ParsePicture(raw []byte) (*Picture, error) {
	if err := checkPictureLayout(raw); err != nil {
		return nil, err
	}
	pic, err := flacpicture.ParseFromMetaDataBlock(flac.MetaDataBlock{Type: flac.Picture, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPicture, err)
	}
	if pic.ImageData == nil {
		pic.ImageData = []byte{}
	}
	return &Picture{*pic}, nil
}

// checkPictureLayout walks the big-endian fields of a picture block:
// type, MIME, description, width, height, depth, colors, data.
func checkPictureLayout(raw []byte) error {
	pos := 0
	skip := func(n int, what string) error {
		if len(raw)-pos < n {
			return fmt.Errorf("%w: %s needs %d bytes, %d left", ErrPictureTruncated, what, n, len(raw)-pos)
		}
		pos += n
		return nil
	}
	prefixed := func(what string) error {
		if err := skip(4, what+" length"); err != nil {
			return err
		}
		n := binary.BigEndian.Uint32(raw[pos-4:])
		if uint64(n) > uint64(len(raw)-pos) {
			return fmt.Errorf("%w: %s of %d bytes, %d left", ErrPictureTruncated, what, n, len(raw)-pos)
		}
		pos += int(n)
		return nil
	}

	if err := skip(4, "picture type"); err != nil {
		return err
	}
	if err := prefixed("MIME type"); err != nil {
		return err
	}
	if err := prefixed("description"); err != nil {
		return err
	}
	if err := skip(16, "dimensions"); err != nil {
		return err
	}
	if err := prefixed("picture data"); err != nil {
		return err
	}
	if pos != len(raw) {
		return fmt.Errorf("%w: %d bytes after picture data", ErrPictureTrailing, len(raw)-pos)
	}
	return nil
}

// Bytes encodes the picture block.
func (p *Picture) Bytes() []byte {
	return p.Marshal().Data
}

// MakeCover wraps raw image data into a front cover picture, guessing its
// MIME type from the leading bytes.
func MakeCover(data []byte) *Picture {
	return &Picture{flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureTypeFrontCover,
		MIME:        sniffMIME(data),
		ImageData:   data,
	}}
}

func sniffMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// CoverComment returns the comment embedding p.
func CoverComment(p *Picture) string {
	return PictureField + "=" + base64.StdEncoding.EncodeToString(p.Bytes())
}

// DecodePictureValue decodes the base64 value of a picture comment. Padding
// is optional; whitespace, line breaks included, is rejected.
func DecodePictureValue(value string) (*Picture, error) {
	if strings.ContainsAny(value, "\r\n\t ") {
		return nil, fmt.Errorf("%w: unexpected whitespace", ErrPictureBase64)
	}
	unpadded := strings.TrimRight(value, "=")
	if len(value)-len(unpadded) > 2 {
		return nil, fmt.Errorf("%w: excess padding", ErrPictureBase64)
	}
	raw, err := base64.RawStdEncoding.Strict().DecodeString(unpadded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPictureBase64, err)
	}
	return ParsePicture(raw)
}

// ExtractCover returns the first picture embedded in t, or nil when there is
// none.
func ExtractCover(t *Tags) (*Picture, error) {
	values := t.Get(PictureField)
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) > 1 {
		log.Warnf("found %d embedded pictures, using the first one", len(values))
	}
	return DecodePictureValue(values[0])
}
