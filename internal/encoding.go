package internal

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Encoding identifies the character encoding of a String.
type Encoding int

// Supported encodings.
const (
	UTF8 Encoding = iota
	ASCII8BIT
	USASCII
	ISO8859_1
	Windows1252
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

var encodingNames = [...]string{
	UTF8:        "UTF-8",
	ASCII8BIT:   "ASCII-8BIT",
	USASCII:     "US-ASCII",
	ISO8859_1:   "ISO-8859-1",
	Windows1252: "Windows-1252",
	UTF16LE:     "UTF-16LE",
	UTF16BE:     "UTF-16BE",
	UTF32LE:     "UTF-32LE",
	UTF32BE:     "UTF-32BE",
}

var encodingAliases = map[string]Encoding{
	"BINARY":         ASCII8BIT,
	"ASCII":          USASCII,
	"ANSI_X3.4-1968": USASCII,
	"ISO8859-1":      ISO8859_1,
	"LATIN1":         ISO8859_1,
	"CP1252":         Windows1252,
	"CP65001":        UTF8,
}

// String returns the canonical name of the encoding.
func (e Encoding) String() string {
	if e < 0 || int(e) >= len(encodingNames) {
		return "Encoding(?)"
	}
	return encodingNames[e]
}

// LookupEncoding finds an encoding by name or alias, ignoring case.
func LookupEncoding(name string) (Encoding, bool) {
	u := strings.ToUpper(name)
	for i, n := range encodingNames {
		if strings.ToUpper(n) == u {
			return Encoding(i), true
		}
	}
	e, ok := encodingAliases[u]
	return e, ok
}

// ASCIICompatible returns whether ASCII characters are encoded as themselves.
func (e Encoding) ASCIICompatible() bool {
	switch e {
	case UTF16LE, UTF16BE, UTF32LE, UTF32BE:
		return false
	}
	return true
}

// Unicode returns whether the encoding is a Unicode transformation format.
func (e Encoding) Unicode() bool {
	switch e {
	case UTF8, UTF16LE, UTF16BE, UTF32LE, UTF32BE:
		return true
	}
	return false
}

// charmap returns the single-byte table for the encoding, or nil.
func (e Encoding) charmap() *charmap.Charmap {
	switch e {
	case ISO8859_1:
		return charmap.ISO8859_1
	case Windows1252:
		return charmap.Windows1252
	}
	return nil
}

// codec returns the x/text encoding for multibyte Unicode encodings other
// than UTF-8, or nil.
func (e Encoding) codec() encoding.Encoding {
	switch e {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case UTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	case UTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	}
	return nil
}

// charLen returns the width in bytes of the character beginning at b[0] and
// whether it is validly encoded. Invalid sequences report the number of bytes
// that cannot begin a valid character, at least 1. b must not be empty.
func (e Encoding) charLen(b []byte) (int, bool) {
	switch e {
	case UTF8:
		if b[0] < utf8.RuneSelf {
			return 1, true
		}
		r, n := utf8.DecodeRune(b)
		return n, r != utf8.RuneError || n > 1
	case USASCII:
		return 1, b[0] < utf8.RuneSelf
	case UTF16LE, UTF16BE:
		if len(b) < 2 {
			return len(b), false
		}
		u := e.unit16(b)
		switch {
		case u >= 0xd800 && u < 0xdc00:
			if len(b) < 4 {
				return len(b), false
			}
			v := e.unit16(b[2:])
			if v < 0xdc00 || v >= 0xe000 {
				return 2, false
			}
			return 4, true
		case u >= 0xdc00 && u < 0xe000:
			return 2, false
		}
		return 2, true
	case UTF32LE, UTF32BE:
		if len(b) < 4 {
			return len(b), false
		}
		r := e.unit32(b)
		return 4, r < 0x110000 && (r < 0xd800 || r >= 0xe000)
	}
	return 1, true
}

func (e Encoding) unit16(b []byte) uint16 {
	if e == UTF16LE {
		return uint16(b[0]) | uint16(b[1])<<8
	}
	return uint16(b[0])<<8 | uint16(b[1])
}

func (e Encoding) unit32(b []byte) uint32 {
	if e == UTF32LE {
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// decodeRune decodes the character at b[0], returning its code point and
// width. Invalid characters decode to utf8.RuneError. For encodings that are
// not Unicode, the code point is the one the character maps to.
func (e Encoding) decodeRune(b []byte) (rune, int) {
	n, ok := e.charLen(b)
	if !ok {
		return utf8.RuneError, n
	}
	switch e {
	case UTF8:
		r, _ := utf8.DecodeRune(b)
		return r, n
	case UTF16LE, UTF16BE:
		u := rune(e.unit16(b))
		if n == 4 {
			v := rune(e.unit16(b[2:]))
			return (u-0xd800)<<10 | (v - 0xdc00) + 0x10000, n
		}
		return u, n
	case UTF32LE, UTF32BE:
		return rune(e.unit32(b)), n
	}
	if cm := e.charmap(); cm != nil {
		return cm.DecodeByte(b[0]), 1
	}
	return rune(b[0]), 1
}

// appendRune encodes r in the encoding and appends it to b. It reports false
// if r has no representation.
func (e Encoding) appendRune(b []byte, r rune) ([]byte, bool) {
	switch e {
	case UTF8:
		if !utf8.ValidRune(r) {
			return b, false
		}
		return utf8.AppendRune(b, r), true
	case USASCII:
		if r < 0 || r >= utf8.RuneSelf {
			return b, false
		}
		return append(b, byte(r)), true
	case ASCII8BIT:
		if r < 0 || r > 0xff {
			return b, false
		}
		return append(b, byte(r)), true
	case UTF16LE, UTF16BE, UTF32LE, UTF32BE:
		if !utf8.ValidRune(r) {
			return b, false
		}
		out, err := e.codec().NewEncoder().Bytes(utf8.AppendRune(nil, r))
		if err != nil {
			return b, false
		}
		return append(b, out...), true
	}
	c, ok := e.charmap().EncodeRune(r)
	if !ok {
		return b, false
	}
	return append(b, c), true
}

// validate checks that b is entirely validly encoded, returning the offset of
// the first invalid character or -1.
func (e Encoding) validate(b []byte) int {
	for i := 0; i < len(b); {
		n, ok := e.charLen(b[i:])
		if !ok {
			return i
		}
		i += n
	}
	return -1
}

// isASCII returns whether every byte of b is ASCII.
func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Transcode converts b from one encoding to another. Invalid input raises
// Encoding::InvalidByteSequenceError; characters the target cannot represent
// raise Encoding::UndefinedConversionError.
func Transcode(b []byte, from, to Encoding) ([]byte, error) {
	if from == to {
		return append([]byte(nil), b...), nil
	}
	if from == ASCII8BIT || to == ASCII8BIT {
		for i, c := range b {
			if c >= utf8.RuneSelf {
				return nil, errorf(UndefinedConversionError, "\"\\x%02X\" to %s in conversion from %s at index %d", c, to, from, i)
			}
		}
		if from.ASCIICompatible() && to.ASCIICompatible() {
			return append([]byte(nil), b...), nil
		}
		// The content is ASCII, so it converts as US-ASCII would.
		if from == ASCII8BIT {
			from = USASCII
		} else {
			to = USASCII
		}
	}
	if i := from.validate(b); i >= 0 {
		return nil, errorf(InvalidByteSequenceError, "invalid byte sequence in %s at index %d", from, i)
	}
	// Decode to UTF-8.
	var u []byte
	switch {
	case from == UTF8:
		u = b
	case from == USASCII:
		u = b
	case from.charmap() != nil:
		cm := from.charmap()
		u = make([]byte, 0, len(b))
		for _, c := range b {
			u = utf8.AppendRune(u, cm.DecodeByte(c))
		}
	default:
		var err error
		u, err = from.codec().NewDecoder().Bytes(b)
		if err != nil {
			return nil, errorf(InvalidByteSequenceError, "invalid byte sequence in %s", from)
		}
	}
	// Encode from UTF-8.
	switch {
	case to == UTF8:
		return append([]byte(nil), u...), nil
	case to.codec() != nil:
		out, err := to.codec().NewEncoder().Bytes(u)
		if err != nil {
			return nil, errorf(UndefinedConversionError, "conversion from %s to %s failed", from, to)
		}
		return out, nil
	}
	out := make([]byte, 0, len(u))
	for _, r := range string(u) {
		var ok bool
		out, ok = to.appendRune(out, r)
		if !ok {
			return nil, errorf(UndefinedConversionError, "U+%04X from UTF-8 to %s", r, to)
		}
	}
	return out, nil
}
