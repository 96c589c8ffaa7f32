package utils_test

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvatic/opustags/internal/utils"
)

func TestPartialCommit(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.opus")

	p, err := utils.CreatePartial(final)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(p.Name()))
	assert.Regexp(t, `^out\.opus\..*\.part$`, filepath.Base(p.Name()))

	_, err = p.WriteString("data")
	require.NoError(t, err)
	require.NoError(t, p.Commit())
	p.Abort()

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
	assertOnly(t, dir, "out.opus")

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(final)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
	}
}

func TestPartialKeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no unix permissions")
	}
	dir := t.TempDir()
	final := filepath.Join(dir, "in.opus")
	require.NoError(t, os.WriteFile(final, []byte("old"), 0o600))

	p, err := utils.CreatePartial(final)
	require.NoError(t, err)
	_, err = p.WriteString("new")
	require.NoError(t, err)
	require.NoError(t, p.Commit())

	fi, err := os.Stat(final)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestPartialAbort(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.opus")
	require.NoError(t, os.WriteFile(final, []byte("keep"), 0o644))

	p, err := utils.CreatePartial(final)
	require.NoError(t, err)
	_, err = p.WriteString("discard")
	require.NoError(t, err)
	p.Abort()
	assert.Error(t, p.Commit())

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
	assertOnly(t, dir, "out.opus")
}

func TestPartialUnique(t *testing.T) {
	final := filepath.Join(t.TempDir(), "x")
	a, err := utils.CreatePartial(final)
	require.NoError(t, err)
	defer a.Abort()
	b, err := utils.CreatePartial(final)
	require.NoError(t, err)
	defer b.Abort()
	assert.NotEqual(t, a.Name(), b.Name())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0o644))

	data, err := utils.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

	_, err = utils.ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	exists, regular, err := utils.Stat(file)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, regular)

	exists, regular, err = utils.Stat(dir)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.False(t, regular)

	exists, _, err = utils.Stat(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func assertOnly(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, names, got)
}

func TestReadAllLimit(t *testing.T) {
	_, err := utils.ReadAll(io.LimitReader(zeros{}, utils.MaxSlurpSize+1), "zeros")
	assert.ErrorContains(t, err, "exceeds")

	data, err := utils.ReadAll(strings.NewReader("abc"), "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
