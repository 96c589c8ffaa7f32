package common

import (
	"fmt"
	"io"

	"github.com/dhowden/tag"
	log "github.com/sirupsen/logrus"
)

// DescribeFormat names the kind of audio file r holds, for diagnostics about
// inputs that are not Ogg streams. It returns "" when nothing is recognised.
// The read position is restored.
func DescribeFormat(r io.ReadSeeker) string {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return ""
	}
	defer r.Seek(pos, io.SeekStart)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	format, fileType, err := tag.Identify(r)
	if err != nil {
		log.Debugf("could not identify input: %v", err)
		return ""
	}
	switch {
	case fileType == tag.UnknownFileType:
		return fmt.Sprintf("%s tagged file", format)
	case format == tag.UnknownFormat:
		return string(fileType)
	default:
		return fmt.Sprintf("%s file with %s tags", fileType, format)
	}
}
