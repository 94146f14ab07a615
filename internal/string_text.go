package internal

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CharLen returns the width of the character at byte offset off. Malformed
// sequences raise Encoding::InvalidByteSequenceError naming the offset.
func (s *String) CharLen(off int) (int, error) {
	n, ok := s.enc.charLen(s.buf[off:s.n])
	if !ok {
		return 0, errorf(InvalidByteSequenceError, "invalid byte sequence in %s at index %d", s.enc, off)
	}
	return n, nil
}

// NextChar returns the character at byte offset off as a new String, along
// with the offset of the following character. At or beyond the end of the
// string, it returns nil and off.
func (s *String) NextChar(off int) (*String, int, error) {
	if off < 0 {
		off = 0
	}
	if off >= s.n {
		return nil, off, nil
	}
	n, err := s.CharLen(off)
	if err != nil {
		return nil, off, err
	}
	return NewStringValue(s.buf[off:off+n], s.enc), off + n, nil
}

// CharIter iterates over the characters of a String. It holds only a byte
// offset, so the string may be modified between steps; each step reads the
// string's current content.
type CharIter struct {
	s   *String
	off int
}

// EachChar returns an iterator over the string's characters.
func (s *String) EachChar() *CharIter {
	return &CharIter{s: s}
}

// Next returns the next character, or nil when the iteration is finished.
func (it *CharIter) Next() (*String, error) {
	c, next, err := it.s.NextChar(it.off)
	if err != nil {
		return nil, err
	}
	it.off = next
	return c, nil
}

// Reset restarts the iteration from the beginning of the string.
func (it *CharIter) Reset() {
	it.off = 0
}

// Offset returns the byte offset of the next character.
func (it *CharIter) Offset() int {
	return it.off
}

// lenientCharLen is the width of the character at off, treating each byte of
// a malformed sequence as its own character.
func (s *String) lenientCharLen(off int) int {
	n, ok := s.enc.charLen(s.buf[off:s.n])
	if !ok {
		if s.enc.ASCIICompatible() {
			return 1
		}
		return n
	}
	return n
}

// charOffsets returns the byte offset of each character followed by the
// length of the string.
func (s *String) charOffsets() []int {
	r := make([]int, 0, s.n+1)
	for i := 0; i < s.n; {
		r = append(r, i)
		i += s.lenientCharLen(i)
	}
	return append(r, s.n)
}

// CharCount returns the number of characters in the string.
func (s *String) CharCount() int {
	k := 0
	for i := 0; i < s.n; i += s.lenientCharLen(i) {
		k++
	}
	return k
}

// ValidEncoding returns whether the string is validly encoded.
func (s *String) ValidEncoding() bool {
	return s.enc.validate(s.Bytes()) < 0
}

// Substr returns the characters from char index start of at most length
// characters. Negative starts count from the end. The boolean is false if the
// start is out of range.
func (s *String) Substr(start, length int) (*String, bool) {
	offs := s.charOffsets()
	nc := len(offs) - 1
	if start < 0 {
		start += nc
	}
	if start < 0 || start > nc || length < 0 {
		return nil, false
	}
	end := start + length
	if end > nc || end < start {
		end = nc
	}
	return NewStringValue(s.buf[offs[start]:offs[end]], s.enc), true
}

// isAlnum returns whether c is an ASCII letter or digit.
func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Successive returns the successor of the string. The rightmost alphanumeric
// character is incremented; 'z', 'Z', and '9' roll over and carry to the next
// alphanumeric to the left, skipping other characters. A carry out of the
// leftmost alphanumeric inserts a new character of the same class there. A
// string with no alphanumerics increments its last byte with byte carry.
func (s *String) Successive() *String {
	b := append([]byte(nil), s.Bytes()...)
	if len(b) == 0 {
		return NewStringValue(nil, s.enc)
	}
	i := len(b) - 1
	for i >= 0 && !isAlnum(b[i]) {
		i--
	}
	if i < 0 {
		for j := len(b) - 1; j >= 0; j-- {
			b[j]++
			if b[j] != 0 {
				return NewStringValue(b, s.enc)
			}
		}
		return NewStringValue(append([]byte{1}, b...), s.enc)
	}
	for {
		var carry byte
		switch c := b[i]; c {
		case 'z':
			b[i], carry = 'a', 'a'
		case 'Z':
			b[i], carry = 'A', 'A'
		case '9':
			b[i], carry = '0', '1'
		default:
			b[i]++
			return NewStringValue(b, s.enc)
		}
		j := i - 1
		for j >= 0 && !isAlnum(b[j]) {
			j--
		}
		if j < 0 {
			r := make([]byte, 0, len(b)+1)
			r = append(r, b[:i]...)
			r = append(r, carry)
			r = append(r, b[i:]...)
			return NewStringValue(r, s.enc)
		}
		i = j
	}
}

// isSpace returns whether c is ASCII whitespace.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// digitValue returns the value of c as a digit in any radix up to 36, or 36
// if it is not a digit.
func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

// ToI parses a leading integer in the given radix. Leading whitespace, a sign,
// and a radix prefix matching base are accepted, as are single underscores
// between digits. Parsing stops at the first character that does not fit; no
// digits gives 0. Results beyond the int64 range saturate. Only the radix is
// checked: it must be between 2 and 36.
func (s *String) ToI(base int) (int64, error) {
	if base < 2 || base > 36 {
		return 0, errorf(ArgumentError, "invalid radix %d", base)
	}
	b := s.Bytes()
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	neg := false
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		neg = b[i] == '-'
		i++
	}
	if i+1 < len(b) && b[i] == '0' {
		var p int
		switch b[i+1] | 0x20 {
		case 'x':
			p = 16
		case 'b':
			p = 2
		case 'o':
			p = 8
		case 'd':
			p = 10
		}
		if p == base {
			i += 2
		}
	}
	var mag uint64
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}
	over := false
	prevDigit := false
	for ; i < len(b); i++ {
		c := b[i]
		if c == '_' {
			if !prevDigit || i+1 >= len(b) || digitValue(b[i+1]) >= base {
				break
			}
			prevDigit = false
			continue
		}
		d := digitValue(c)
		if d >= base {
			break
		}
		prevDigit = true
		if over {
			continue
		}
		if mag > (limit-uint64(d))/uint64(base) {
			over = true
			mag = limit
			continue
		}
		mag = mag*uint64(base) + uint64(d)
	}
	if neg {
		return int64(-mag), nil
	}
	return int64(mag), nil
}

// Strip returns a copy without leading ASCII whitespace and without trailing
// ASCII whitespace or NUL bytes.
func (s *String) Strip() *String {
	b := s.Bytes()
	return NewStringValue(rstrip(lstrip(b)), s.enc)
}

// Lstrip returns a copy without leading ASCII whitespace.
func (s *String) Lstrip() *String {
	return NewStringValue(lstrip(s.Bytes()), s.enc)
}

// Rstrip returns a copy without trailing ASCII whitespace or NUL bytes.
func (s *String) Rstrip() *String {
	return NewStringValue(rstrip(s.Bytes()), s.enc)
}

func lstrip(b []byte) []byte {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return b[i:]
}

func rstrip(b []byte) []byte {
	i := len(b)
	for i > 0 && (isSpace(b[i-1]) || b[i-1] == 0) {
		i--
	}
	return b[:i]
}

// caseMap applies an ASCII mapping to every ASCII letter, and for valid
// Unicode content, a full Unicode mapping to everything else.
func (s *String) caseMap(ascii func(byte) byte, full cases.Caser) (*String, error) {
	b := s.Bytes()
	if isASCII(b) || !s.enc.Unicode() {
		r := make([]byte, len(b))
		for i, c := range b {
			r[i] = ascii(c)
		}
		return NewStringValue(r, s.enc), nil
	}
	if i := s.enc.validate(b); i >= 0 {
		return nil, errorf(ArgumentError, "invalid byte sequence in %s", s.enc)
	}
	u := b
	if s.enc != UTF8 {
		var err error
		if u, err = Transcode(b, s.enc, UTF8); err != nil {
			return nil, err
		}
	}
	m := full.Bytes(u)
	if s.enc != UTF8 {
		var err error
		if m, err = Transcode(m, UTF8, s.enc); err != nil {
			return nil, err
		}
	}
	return NewStringValue(m, s.enc), nil
}

func asciiLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func asciiUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// Downcase returns a lowercased copy of the string.
func (s *String) Downcase() (*String, error) {
	return s.caseMap(asciiLower, cases.Lower(language.Und))
}

// Upcase returns an uppercased copy of the string.
func (s *String) Upcase() (*String, error) {
	return s.caseMap(asciiUpper, cases.Upper(language.Und))
}

// Reverse returns a copy with the order of characters reversed.
func (s *String) Reverse() *String {
	offs := s.charOffsets()
	r := make([]byte, 0, s.n)
	for i := len(offs) - 2; i >= 0; i-- {
		r = append(r, s.buf[offs[i]:offs[i+1]]...)
	}
	return NewStringValue(r, s.enc)
}

// Ord returns the code point of the first character.
func (s *String) Ord() (rune, error) {
	if s.n == 0 {
		return 0, errorf(ArgumentError, "empty string")
	}
	if _, ok := s.enc.charLen(s.Bytes()); !ok {
		return 0, errorf(ArgumentError, "invalid byte sequence in %s", s.enc)
	}
	r, _ := s.enc.decodeRune(s.Bytes())
	if !s.enc.Unicode() {
		return rune(s.buf[0]), nil
	}
	return r, nil
}

// Inspect returns the string as a double-quoted literal, escaping quotes,
// backslashes, interpolation markers, control characters, and bytes that are
// not validly encoded.
func (s *String) Inspect() string {
	var w strings.Builder
	b := s.Bytes()
	w.WriteByte('"')
	for i := 0; i < len(b); {
		n, ok := s.enc.charLen(b[i:])
		if !ok {
			if s.enc.ASCIICompatible() {
				n = 1
			}
			for _, c := range b[i : i+n] {
				fmt.Fprintf(&w, "\\x%02X", c)
			}
			i += n
			continue
		}
		r, _ := s.enc.decodeRune(b[i:])
		if !s.enc.Unicode() {
			r = rune(b[i])
		}
		switch r {
		case '"', '\\':
			w.WriteByte('\\')
			w.WriteRune(r)
		case '\n':
			w.WriteString(`\n`)
		case '\t':
			w.WriteString(`\t`)
		case '\r':
			w.WriteString(`\r`)
		case '\f':
			w.WriteString(`\f`)
		case '\v':
			w.WriteString(`\v`)
		case '\b':
			w.WriteString(`\b`)
		case '\a':
			w.WriteString(`\a`)
		case 0x1b:
			w.WriteString(`\e`)
		case '#':
			if i+n < len(b) && s.enc.ASCIICompatible() && (b[i+n] == '{' || b[i+n] == '$' || b[i+n] == '@') {
				w.WriteByte('\\')
			}
			w.WriteByte('#')
		default:
			switch {
			case r < utf8.RuneSelf && r >= ' ' && r != 0x7f:
				w.WriteByte(byte(r))
			case s.enc.Unicode() && r >= utf8.RuneSelf && unicode.IsPrint(r):
				w.WriteRune(r)
			case s.enc.Unicode() && r > 0xffff:
				fmt.Fprintf(&w, "\\u{%X}", r)
			case s.enc.Unicode():
				fmt.Fprintf(&w, "\\u%04X", r)
			default:
				fmt.Fprintf(&w, "\\x%02X", b[i])
			}
		}
		i += n
	}
	w.WriteByte('"')
	return w.String()
}

// LJust returns the string padded on the right with repetitions of pad until
// it is width characters long.
func (s *String) LJust(width int, pad *String) (*String, error) {
	if pad.n == 0 {
		return nil, errorf(ArgumentError, "zero width padding")
	}
	r := s.Clone()
	have := s.CharCount()
	if have >= width {
		return r, nil
	}
	poffs := pad.charOffsets()
	for k := 0; have < width; have++ {
		r.Append(pad.buf[poffs[k]:poffs[k+1]])
		k++
		if k == len(poffs)-1 {
			k = 0
		}
	}
	return r, nil
}

// Repeat returns the string repeated n times.
func (s *String) Repeat(n int) (*String, error) {
	if n < 0 {
		return nil, errorf(ArgumentError, "negative argument")
	}
	if n > 0 && s.n > math.MaxInt32/n {
		return nil, errorf(ArgumentError, "argument too big")
	}
	r := NewStringValue(nil, s.enc)
	r.GrowAtLeast(s.n * n)
	for i := 0; i < n; i++ {
		r.Append(s.Bytes())
	}
	return r, nil
}
