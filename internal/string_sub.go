package internal

import (
	"bytes"
	"strconv"
)

// Matcher is the regular expression collaborator. Implementations locate
// matches; the string engine only consumes the spans they report.
type Matcher interface {
	// Match finds the first match beginning at or after byte offset start.
	Match(subject []byte, start int) (Match, bool)
	// NumGroups returns the number of capture groups, not counting the whole
	// match.
	NumGroups() int
	// GroupNames returns the name of each group, indexed by group number. The
	// whole match and unnamed groups have empty names.
	GroupNames() []string
	// Source returns the pattern's source text.
	Source() string
}

// Match holds the byte spans of a match. Elements 2*i and 2*i+1 are the start
// and end of group i, with group 0 being the whole match. Groups that did not
// participate have both set to -1.
type Match []int

// Group returns the span of group i and whether it participated.
func (m Match) Group(i int) (start, end int, ok bool) {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return -1, -1, false
	}
	return m[2*i], m[2*i+1], true
}

// literalMatcher matches a fixed byte sequence.
type literalMatcher []byte

// LiteralMatcher returns a Matcher for a fixed pattern with no groups.
func LiteralMatcher(pat []byte) Matcher {
	return literalMatcher(append([]byte(nil), pat...))
}

func (p literalMatcher) Match(subject []byte, start int) (Match, bool) {
	if start < 0 || start > len(subject) {
		return nil, false
	}
	i := bytes.Index(subject[start:], p)
	if i < 0 {
		return nil, false
	}
	return Match{start + i, start + i + len(p)}, true
}

func (p literalMatcher) NumGroups() int       { return 0 }
func (p literalMatcher) GroupNames() []string { return []string{""} }
func (p literalMatcher) Source() string       { return string(p) }

// ExpandBackrefs expands the backreferences in repl against a match of m in
// src and appends the result to dst. Recognized forms are \0 through \9, \&
// for the whole match, \` and \' for the text before and after it, \\ for a
// backslash, and \k<name> for a named group. Groups that did not participate
// expand to nothing. Other backslash sequences are copied as written.
func ExpandBackrefs(dst, repl, src []byte, mt Match, m Matcher) ([]byte, error) {
	groups := len(mt)/2 - 1
	appendGroup := func(i int) {
		if a, b, ok := mt.Group(i); ok {
			dst = append(dst, src[a:b]...)
		}
	}
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c != '\\' || i+1 == len(repl) {
			dst = append(dst, c)
			continue
		}
		i++
		switch d := repl[i]; {
		case d >= '0' && d <= '9':
			k := int(d - '0')
			if k > groups {
				return nil, errorf(ArgumentError, "invalid backreference \\%d: pattern has %d group(s)", k, groups)
			}
			appendGroup(k)
		case d == '&':
			appendGroup(0)
		case d == '`':
			dst = append(dst, src[:mt[0]]...)
		case d == '\'':
			dst = append(dst, src[mt[1]:]...)
		case d == '\\':
			dst = append(dst, '\\')
		case d == 'k' && i+1 < len(repl) && repl[i+1] == '<':
			end := bytes.IndexByte(repl[i+2:], '>')
			if end < 0 {
				dst = append(dst, '\\', 'k')
				continue
			}
			name := string(repl[i+2 : i+2+end])
			k := groupIndex(m, name)
			if k < 0 {
				return nil, errorf(IndexError, "undefined group name reference: %s", name)
			}
			appendGroup(k)
			i += 2 + end
		default:
			dst = append(dst, '\\', d)
		}
	}
	return dst, nil
}

// groupIndex finds the group with the given name. A decimal name refers to a
// numbered group. If several groups share a name, the last one that
// participated wins at expansion, so the last index is returned.
func groupIndex(m Matcher, name string) int {
	names := m.GroupNames()
	for i := len(names) - 1; i > 0; i-- {
		if names[i] == name {
			return i
		}
	}
	if k, err := strconv.Atoi(name); err == nil && k >= 0 && k <= m.NumGroups() {
		return k
	}
	return -1
}

// Substitute returns a copy of the string with matches of m replaced by the
// results of replace. If global is false, only the first match is replaced.
// The scan always advances past a zero-width match, copying the character it
// precedes, so that every position is visited once. The receiver is never
// modified, and matching continues over its original content even if replace
// mutates it.
func (s *String) Substitute(m Matcher, global bool, replace func(src []byte, mt Match) ([]byte, error)) (*String, error) {
	s = s.Clone()
	src := s.Bytes()
	var out []byte
	last, pos := 0, 0
	for pos <= len(src) {
		mt, ok := m.Match(src, pos)
		if !ok {
			break
		}
		out = append(out, src[last:mt[0]]...)
		rep, err := replace(src, mt)
		if err != nil {
			return nil, err
		}
		out = append(out, rep...)
		last = mt[1]
		pos = mt[1]
		if mt[0] == mt[1] {
			if pos >= len(src) {
				break
			}
			n := s.lenientCharLen(pos)
			out = append(out, src[pos:pos+n]...)
			pos += n
			last = pos
		}
		if !global {
			break
		}
	}
	out = append(out, src[last:]...)
	return NewStringValue(out, s.enc), nil
}

// Gsub replaces every match of m with repl after backreference expansion.
func (s *String) Gsub(m Matcher, repl []byte) (*String, error) {
	return s.Substitute(m, true, func(src []byte, mt Match) ([]byte, error) {
		return ExpandBackrefs(nil, repl, src, mt, m)
	})
}

// Sub replaces the first match of m with repl after backreference expansion.
func (s *String) Sub(m Matcher, repl []byte) (*String, error) {
	return s.Substitute(m, false, func(src []byte, mt Match) ([]byte, error) {
		return ExpandBackrefs(nil, repl, src, mt, m)
	})
}

// Split partitions the string around matches of sep. If sep is nil, the
// string is split on runs of ASCII whitespace after skipping leading
// whitespace. A separator that matches the empty string splits between
// characters. Captures in the separator are included among the pieces.
//
// A positive limit produces at most limit pieces, the last holding the
// unsplit remainder. A zero limit removes trailing empty pieces; a negative
// limit keeps them. Splitting an empty string produces no pieces.
func (s *String) Split(sep Matcher, limit int) []*String {
	src := s.Bytes()
	if len(src) == 0 {
		return nil
	}
	if limit == 1 {
		return []*String{s.Clone()}
	}
	var parts [][]byte
	// pieces counts splits made, excluding captures.
	pieces := 0
	full := func() bool {
		return limit > 0 && pieces >= limit-1
	}
	beg := 0
	if sep == nil {
		// awk mode
		i := 0
		for i < len(src) && isSpace(src[i]) {
			i++
		}
		beg = i
		for i < len(src) && !full() {
			if !isSpace(src[i]) {
				i++
				continue
			}
			parts = append(parts, src[beg:i])
			pieces++
			for i < len(src) && isSpace(src[i]) {
				i++
			}
			beg = i
		}
	} else {
		start := 0
		lastNull := false
		for !full() {
			mt, ok := sep.Match(src, start)
			if !ok {
				break
			}
			end := mt[0]
			if start == end && mt[0] == mt[1] {
				if lastNull {
					parts = append(parts, src[beg:beg+s.lenientCharLen(beg)])
					beg = start
				} else {
					if start >= len(src) {
						start++
					} else {
						start += s.lenientCharLen(start)
					}
					lastNull = true
					continue
				}
			} else {
				parts = append(parts, src[beg:end])
				beg = mt[1]
				start = mt[1]
			}
			lastNull = false
			pieces++
			for g := 1; g <= sep.NumGroups(); g++ {
				if a, b, ok := mt.Group(g); ok {
					parts = append(parts, src[a:b])
				}
			}
		}
	}
	if len(src) > beg || limit != 0 {
		parts = append(parts, src[beg:])
	}
	if limit == 0 {
		for len(parts) > 0 && len(parts[len(parts)-1]) == 0 {
			parts = parts[:len(parts)-1]
		}
	}
	r := make([]*String, len(parts))
	for i, p := range parts {
		r[i] = NewStringValue(p, s.enc)
	}
	return r
}
