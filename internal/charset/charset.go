// Package charset turns raw line bytes into display text.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const DefaultName = "utf-8"

var ErrInvalidText = errors.New("invalid text")

// Decoder converts bytes in a configured charset to UTF-8. For UTF-8 input
// the bytes are validated rather than repaired.
type Decoder struct {
	name     string
	encoding encoding.Encoding
}

// New resolves a WHATWG encoding label such as "utf-8", "latin1" or
// "shift_jis". An empty label selects UTF-8.
func New(label string) (*Decoder, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultName
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	decoder := &Decoder{name: name}
	if name != DefaultName {
		decoder.encoding = enc
	}
	return decoder, nil
}

func (d *Decoder) Name() string {
	if d == nil {
		return DefaultName
	}
	return d.name
}

func (d *Decoder) Decode(raw []byte) (string, error) {
	if d == nil || d.encoding == nil {
		if !utf8.Valid(raw) {
			return "", ErrInvalidText
		}
		return checkPrintable(string(raw))
	}
	decoded, err := d.encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidText, err)
	}
	return checkPrintable(string(decoded))
}

func checkPrintable(text string) (string, error) {
	if strings.IndexByte(text, 0) >= 0 {
		return "", ErrInvalidText
	}
	return text, nil
}
