package internal

import (
	"bytes"
	"hash/fnv"
)

// String is the primitive value of String objects. Each String exclusively
// owns its buffer.
//
// The buffer always holds capacity+1 bytes, with a zero terminator at the
// current length.
type String struct {
	buf      []byte
	n        int
	enc      Encoding
	reallocs int
}

// stringGrowFactor is the factor by which a full buffer's capacity grows.
const stringGrowFactor = 2

// minStringCapacity is the capacity a buffer grows to from zero.
const minStringCapacity = 16

// stringTag is the Tag type for String objects.
type stringTag struct{}

// CloneValue returns a deep copy of the string.
func (stringTag) CloneValue(value interface{}) interface{} {
	return value.(*String).Clone()
}

func (stringTag) String() string {
	return "String"
}

// StringTag is the Tag for String objects.
var StringTag Tag = stringTag{}

// NewStringValue creates a String holding a copy of b.
func NewStringValue(b []byte, enc Encoding) *String {
	s := &String{buf: make([]byte, len(b)+1), n: len(b), enc: enc}
	copy(s.buf, b)
	return s
}

// Clone returns an independent copy of the string with the same capacity.
func (s *String) Clone() *String {
	r := &String{buf: make([]byte, len(s.buf)), n: s.n, enc: s.enc}
	copy(r.buf, s.buf[:s.n])
	return r
}

// Bytes returns the string's content. The slice aliases the buffer, so it is
// only valid until the next mutation.
func (s *String) Bytes() []byte {
	if s.buf == nil {
		return nil
	}
	return s.buf[:s.n:s.n]
}

// String returns the string's content as a Go string.
func (s *String) String() string {
	if s.buf == nil {
		return ""
	}
	return string(s.buf[:s.n])
}

// Len returns the length of the string in bytes.
func (s *String) Len() int {
	return s.n
}

// Cap returns the number of bytes the buffer can hold without reallocating.
func (s *String) Cap() int {
	if len(s.buf) == 0 {
		return 0
	}
	return len(s.buf) - 1
}

// Reallocs returns the number of times the buffer has been reallocated.
func (s *String) Reallocs() int {
	return s.reallocs
}

// Encoding returns the string's encoding.
func (s *String) Encoding() Encoding {
	return s.enc
}

// SetEncoding changes the string's encoding without changing its bytes.
func (s *String) SetEncoding(enc Encoding) {
	s.enc = enc
}

// grow reallocates the buffer so that its capacity is at least required.
// Capacity doubles from its current value, or from the minimum capacity if it
// is zero.
func (s *String) grow(required int) {
	c := s.Cap()
	if c >= required {
		return
	}
	if c == 0 {
		c = minStringCapacity
	}
	for c < required {
		c *= stringGrowFactor
	}
	buf := make([]byte, c+1)
	copy(buf, s.buf[:s.n])
	s.buf = buf
	s.reallocs++
}

// GrowAtLeast ensures that n more bytes can be appended without reallocating.
func (s *String) GrowAtLeast(n int) {
	s.grow(s.n + n)
}

// Append appends b to the string.
func (s *String) Append(b []byte) {
	s.grow(s.n + len(b))
	copy(s.buf[s.n:], b)
	s.n += len(b)
	s.buf[s.n] = 0
}

// AppendString appends the content of t to the string. t may be s.
func (s *String) AppendString(t *String) {
	if t == s {
		b := append([]byte(nil), s.Bytes()...)
		s.Append(b)
		return
	}
	s.Append(t.Bytes())
}

// AppendByte appends a single byte.
func (s *String) AppendByte(c byte) {
	s.grow(s.n + 1)
	s.buf[s.n] = c
	s.n++
	s.buf[s.n] = 0
}

// PrependByte inserts a byte at the beginning of the string, shifting all
// content right. This costs time proportional to the string's length.
func (s *String) PrependByte(c byte) {
	s.insert(0, []byte{c})
}

// Prepend inserts b at the beginning of the string.
func (s *String) Prepend(b []byte) {
	s.insert(0, b)
}

// Insert inserts b at byte index i. It raises IndexError if i is beyond the
// end of the string.
func (s *String) Insert(i int, b []byte) error {
	if i < 0 || i > s.n {
		return errorf(IndexError, "index %d out of string", i)
	}
	s.insert(i, b)
	return nil
}

// InsertByte inserts a single byte at byte index i.
func (s *String) InsertByte(i int, c byte) error {
	return s.Insert(i, []byte{c})
}

func (s *String) insert(i int, b []byte) {
	s.grow(s.n + len(b))
	copy(s.buf[i+len(b):], s.buf[i:s.n])
	copy(s.buf[i:], b)
	s.n += len(b)
	s.buf[s.n] = 0
}

// Truncate shortens the string to n bytes. It never reallocates. It raises
// IndexError if n is negative or beyond the current length.
func (s *String) Truncate(n int) error {
	if n < 0 || n > s.n {
		return errorf(IndexError, "index %d out of string", n)
	}
	s.n = n
	s.buf[n] = 0
	return nil
}

// Replace sets the string's content and encoding to those of t, reusing the
// buffer when it is large enough.
func (s *String) Replace(t *String) {
	b := t.Bytes()
	if t == s {
		return
	}
	s.n = 0
	if len(s.buf) > 0 {
		s.buf[0] = 0
	}
	s.Append(b)
	s.enc = t.enc
}

// IndexInt returns the first byte offset at or after start at which pat
// occurs, or -1. A start beyond the end of the string never matches.
func (s *String) IndexInt(pat []byte, start int) int {
	if start < 0 || start > s.n {
		return -1
	}
	i := bytes.Index(s.buf[start:s.n], pat)
	if i < 0 {
		return -1
	}
	return start + i
}

// Equal returns whether s and t have the same bytes in compatible encodings.
// Strings of different encodings are equal only if both are ASCII-only in
// ASCII-compatible encodings.
func (s *String) Equal(t *String) bool {
	if !bytes.Equal(s.Bytes(), t.Bytes()) {
		return false
	}
	if s.enc == t.enc {
		return true
	}
	return s.enc.ASCIICompatible() && t.enc.ASCIICompatible() && isASCII(s.Bytes())
}

// Compare orders strings bytewise.
func (s *String) Compare(t *String) int {
	return bytes.Compare(s.Bytes(), t.Bytes())
}

// Hash returns a hash of the string's bytes.
func (s *String) Hash() uint64 {
	h := fnv.New64a()
	h.Write(s.Bytes())
	return h.Sum64()
}

// compatibleEncoding returns the encoding of the concatenation of s and t.
func compatibleEncoding(s, t *String) (Encoding, error) {
	if s.enc == t.enc {
		return s.enc, nil
	}
	if t.n == 0 {
		return s.enc, nil
	}
	if s.n == 0 {
		return t.enc, nil
	}
	if s.enc.ASCIICompatible() && t.enc.ASCIICompatible() {
		if isASCII(t.Bytes()) {
			return s.enc, nil
		}
		if isASCII(s.Bytes()) {
			return t.enc, nil
		}
	}
	return 0, errorf(CompatibilityError, "incompatible character encodings: %s and %s", s.enc, t.enc)
}

// Concat appends t to s after checking that their encodings are compatible.
// The string's encoding becomes that of the result.
func (s *String) Concat(t *String) error {
	enc, err := compatibleEncoding(s, t)
	if err != nil {
		return err
	}
	s.AppendString(t)
	s.enc = enc
	return nil
}
