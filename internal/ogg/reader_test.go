package ogg_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvatic/opustags/internal/fixture"
	"github.com/jvatic/opustags/internal/ogg"
)

func readAll(t *testing.T, r io.Reader) ([]*ogg.Page, error) {
	t.Helper()
	or := ogg.NewReader(r)
	var pages []*ogg.Page
	for {
		p, err := or.NextPage()
		if errors.Is(err, io.EOF) {
			return pages, nil
		}
		if err != nil {
			return pages, err
		}
		pages = append(pages, p.Clone())
	}
}

func TestReader(t *testing.T) {
	stream := fixture.Stream(fixture.DefaultVendor, []string{"TITLE=x"})

	pages, err := readAll(t, bytes.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, pages, 5)
	assert.True(t, pages[0].BOS())
	assert.True(t, pages[4].EOS())
	for i, p := range pages {
		assert.Equal(t, uint32(i), p.PageNo())
	}

	// Same result when the source trickles one byte at a time.
	slow, err := readAll(t, iotest.OneByteReader(bytes.NewReader(stream)))
	require.NoError(t, err)
	assert.Equal(t, pages, slow)
}

func TestReaderOffsets(t *testing.T) {
	stream := fixture.Stream(fixture.DefaultVendor, nil)
	r := ogg.NewReader(bytes.NewReader(stream))

	var want int64
	for i := int64(1); ; i++ {
		p, err := r.NextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, want, r.Offset())
		assert.Equal(t, i, r.PageIndex())
		want += int64(p.Size())
	}
	assert.Equal(t, int64(len(stream)), want)
}

func TestReaderEmpty(t *testing.T) {
	_, err := ogg.NewReader(bytes.NewReader(nil)).NextPage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderLostSync(t *testing.T) {
	for name, data := range map[string][]byte{
		"garbage":     []byte("this is definitely not an ogg file, it is much longer than a header"),
		"short":       []byte("RIFF"),
		"bad version": append([]byte("OggS\x01"), make([]byte, 30)...),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ogg.NewReader(bytes.NewReader(data)).NextPage()
			assert.ErrorIs(t, err, ogg.ErrLostSync)
			assert.ErrorIs(t, err, ogg.ErrContainer)
		})
	}
}

func TestReaderBadCRC(t *testing.T) {
	stream := fixture.Stream(fixture.DefaultVendor, nil)
	pages := fixture.Pages(t, stream)
	// Flip a body byte of the second page.
	off := pages[0].Size() + len(pages[1].Header)
	stream[off] ^= 0x01

	r := ogg.NewReader(bytes.NewReader(stream))
	_, err := r.NextPage()
	require.NoError(t, err)
	_, err = r.NextPage()
	assert.ErrorIs(t, err, ogg.ErrBadCRC)
}

func TestReaderTruncated(t *testing.T) {
	stream := fixture.Stream(fixture.DefaultVendor, nil)
	pages, err := readAll(t, bytes.NewReader(stream[:len(stream)-10]))
	require.NoError(t, err)
	assert.Len(t, pages, 4)
}

func TestReaderSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ogg.NewReader(iotest.ErrReader(boom)).NextPage()
	assert.ErrorIs(t, err, boom)
}
