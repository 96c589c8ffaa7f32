package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvatic/opustags/internal/locale"
)

func TestCharset(t *testing.T) {
	assert.Equal(t, "UTF-8", locale.Charset(""))
	assert.Equal(t, "UTF-8", locale.Charset("C"))
	assert.Equal(t, "UTF-8", locale.Charset("POSIX"))
	assert.Equal(t, "UTF-8", locale.Charset("en_US.UTF-8"))
	assert.Equal(t, "ISO-8859-15", locale.Charset("fr_FR.ISO-8859-15@euro"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_CTYPE", "fr_FR.ISO-8859-1")
	t.Setenv("LANG", "en_US.UTF-8")
	assert.Equal(t, "ISO-8859-1", locale.FromEnv().Charset())

	t.Setenv("LC_ALL", "C.UTF-8")
	assert.Equal(t, "UTF-8", locale.FromEnv().Charset())

	t.Setenv("LC_ALL", "xx_XX.NO-SUCH-CHARSET")
	assert.Equal(t, "UTF-8", locale.FromEnv().Charset())
}

func TestUTF8(t *testing.T) {
	c, err := locale.New("utf8")
	require.NoError(t, err)

	s, err := c.ToLocale("Ça va")
	require.NoError(t, err)
	assert.Equal(t, "Ça va", s)

	_, err = c.ToLocale("bad \xff")
	assert.ErrorIs(t, err, locale.ErrBadEncoding)
	_, err = c.FromLocale("bad \xff")
	assert.ErrorIs(t, err, locale.ErrBadEncoding)
}

func TestLatin1(t *testing.T) {
	c, err := locale.New("ISO-8859-1")
	require.NoError(t, err)

	s, err := c.ToLocale("TITLE=Ça")
	require.NoError(t, err)
	assert.Equal(t, "TITLE=\xc7a", s)

	back, err := c.FromLocale(s)
	require.NoError(t, err)
	assert.Equal(t, "TITLE=Ça", back)

	_, err = c.ToLocale("TITLE=日本")
	assert.ErrorIs(t, err, locale.ErrBadEncoding)

	all, err := c.FromLocaleAll([]string{"A=\xe9", "B=x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A=é", "B=x"}, all)
}

func TestUnknownCharset(t *testing.T) {
	_, err := locale.New("klingon")
	assert.Error(t, err)
}
