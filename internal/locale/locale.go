// Package locale converts tag text between UTF-8, which comment headers are
// stored in, and the character set of the user's locale.
package locale

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrBadEncoding reports text that cannot be converted.
var ErrBadEncoding = errors.New("invalid character encoding")

// Converter translates between UTF-8 and a locale character set. The zero
// value is a UTF-8 locale: text is validated but left untouched.
type Converter struct {
	charset string
	enc     encoding.Encoding
}

// FromEnv builds a Converter for the locale named by LC_ALL, LC_CTYPE or
// LANG, whichever is set first. Unknown character sets fall back to UTF-8
// with a warning.
func FromEnv() *Converter {
	name := ""
	for _, v := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if name = os.Getenv(v); name != "" {
			break
		}
	}
	c, err := New(Charset(name))
	if err != nil {
		log.Warnf("%v, assuming UTF-8", err)
		return &Converter{}
	}
	return c
}

// Charset extracts the character set from a locale name such as
// "fr_FR.ISO-8859-15@euro". Locales without one, C and POSIX included, are
// taken as UTF-8.
func Charset(locale string) string {
	_, cs, ok := strings.Cut(locale, ".")
	if !ok {
		return "UTF-8"
	}
	cs, _, _ = strings.Cut(cs, "@")
	return cs
}

// New returns a Converter for the named character set.
func New(charset string) (*Converter, error) {
	if isUTF8(charset) {
		return &Converter{}, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported character set %q", charset)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return &Converter{}, nil
	}
	return &Converter{charset: charset, enc: enc}, nil
}

func isUTF8(charset string) bool {
	switch strings.ToLower(strings.ReplaceAll(charset, "-", "")) {
	case "", "utf8":
		return true
	}
	return false
}

// Charset returns the character set name, "UTF-8" for the identity.
func (c *Converter) Charset() string {
	if c.enc == nil {
		return "UTF-8"
	}
	return c.charset
}

// ToLocale converts UTF-8 text for display.
func (c *Converter) ToLocale(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: %q is not valid UTF-8", ErrBadEncoding, s)
	}
	if c.enc == nil {
		return s, nil
	}
	out, err := c.enc.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q cannot be represented in %s", ErrBadEncoding, s, c.charset)
	}
	return out, nil
}

// FromLocale converts user-supplied text to UTF-8.
func (c *Converter) FromLocale(s string) (string, error) {
	if c.enc == nil {
		if !utf8.ValidString(s) {
			return "", fmt.Errorf("%w: %q is not valid UTF-8", ErrBadEncoding, s)
		}
		return s, nil
	}
	out, err := c.enc.NewDecoder().String(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not valid %s: %v", ErrBadEncoding, s, c.charset, err)
	}
	return out, nil
}

// ToLocaleAll converts every string of list.
func (c *Converter) ToLocaleAll(list []string) ([]string, error) {
	return convertAll(list, c.ToLocale)
}

// FromLocaleAll converts every string of list.
func (c *Converter) FromLocaleAll(list []string) ([]string, error) {
	return convertAll(list, c.FromLocale)
}

func convertAll(list []string, conv func(string) (string, error)) ([]string, error) {
	out := make([]string, len(list))
	for i, s := range list {
		var err error
		if out[i], err = conv(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}
