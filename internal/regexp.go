package internal

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Compiler compiles regular expression sources into Matchers.
type Compiler interface {
	Compile(source string) (Matcher, error)
}

// RegexpCompiler is the default Compiler, backed by package regexp.
type RegexpCompiler struct{}

// Compile compiles source with RE2 syntax.
func (RegexpCompiler) Compile(source string) (Matcher, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	// from matches source anywhere after the first character of its input,
	// with the whole match as group 1.
	from, err := regexp.Compile(`\A(?s:.)(?s:.*?)(` + source + `)`)
	if err != nil {
		return nil, err
	}
	return &regexpMatcher{re: re, from: from}, nil
}

// regexpMatcher adapts a *regexp.Regexp to Matcher. A search from a nonzero
// offset runs over the subject starting one character before the offset, so
// that line anchors and word boundaries see the preceding character.
type regexpMatcher struct {
	re   *regexp.Regexp
	from *regexp.Regexp
}

func (m *regexpMatcher) Match(subject []byte, start int) (Match, bool) {
	if start < 0 || start > len(subject) {
		return nil, false
	}
	if start == 0 {
		mt := m.re.FindSubmatchIndex(subject)
		return Match(mt), mt != nil
	}
	_, w := utf8.DecodeLastRune(subject[:start])
	base := start - w
	mt := m.from.FindSubmatchIndex(subject[base:])
	if mt == nil {
		return nil, false
	}
	r := make(Match, len(mt)-2)
	for i, x := range mt[2:] {
		if x >= 0 {
			x += base
		}
		r[i] = x
	}
	return r, true
}

func (m *regexpMatcher) NumGroups() int       { return m.re.NumSubexp() }
func (m *regexpMatcher) GroupNames() []string { return m.re.SubexpNames() }
func (m *regexpMatcher) Source() string       { return m.re.String() }

// Regexp is the primitive value of Regexp objects.
type Regexp struct {
	Matcher
}

// RegexpTag is the Tag for Regexp objects. Regexps are immutable.
var RegexpTag = BasicTag("Regexp")

// MatchData is the primitive value of MatchData objects. It keeps its own copy
// of the subject.
type MatchData struct {
	Subject *String
	Span    Match
	Matcher Matcher
}

// MatchDataTag is the Tag for MatchData objects.
var MatchDataTag = BasicTag("MatchData")

// NewRegexp compiles source with the VM's Compiler. Compile errors raise
// ArgumentError.
func (vm *VM) NewRegexp(source string) (*Object, error) {
	m, err := vm.Regexps.Compile(source)
	if err != nil {
		return nil, vm.Raisef(ArgumentError, "%v: /%s/", err, source)
	}
	return vm.RegexpObject(m), nil
}

// RegexpObject wraps a Matcher in a Regexp object.
func (vm *VM) RegexpObject(m Matcher) *Object {
	return vm.ObjectWith(vm.RegexpClass, &Regexp{m}, RegexpTag).Freeze()
}

// NewMatchData creates a MatchData object for a match against subject.
func (vm *VM) NewMatchData(subject *String, mt Match, m Matcher) *Object {
	md := &MatchData{Subject: subject.Clone(), Span: append(Match(nil), mt...), Matcher: m}
	return vm.ObjectWith(vm.MatchDataClass, md, MatchDataTag).Freeze()
}

// matcherArg converts a String or Regexp argument to a Matcher.
func (vm *VM) matcherArg(o *Object) (Matcher, error) {
	switch x := o.Value.(type) {
	case *String:
		return LiteralMatcher(x.Bytes()), nil
	case *Regexp:
		return x.Matcher, nil
	}
	return nil, vm.Raisef(TypeError, "wrong argument type %s (expected Regexp)", vm.convName(o))
}

func (vm *VM) initRegexp() {
	vm.RegexpClass = vm.defineClass("Regexp", vm.ObjectClass, Methods{
		"source":  RegexpSource,
		"to_s":    RegexpInspect,
		"inspect": RegexpInspect,
		"match":   RegexpMatch,
		"=~":      RegexpMatchOp,
		"===":     RegexpCaseEq,
		"==":      RegexpEq,
	})
	vm.ClassObject(vm.RegexpClass).SingletonClass().DefineMethods(Methods{
		"new":     RegexpNew,
		"compile": RegexpNew,
		"escape":  RegexpEscape,
	})
	vm.MatchDataClass = vm.defineClass("MatchData", vm.ObjectClass, Methods{
		"[]":         MatchDataAt,
		"to_a":       MatchDataToA,
		"captures":   MatchDataCaptures,
		"pre_match":  MatchDataPreMatch,
		"post_match": MatchDataPostMatch,
		"to_s":       MatchDataToS,
		"begin":      MatchDataBegin,
		"end":        MatchDataEnd,
		"size":       MatchDataSize,
		"length":     MatchDataSize,
		"names":      MatchDataNames,
		"inspect":    MatchDataInspect,
	})
}

// RegexpNew is a Regexp class method.
//
// new compiles a pattern from a String, or returns a Regexp argument.
func RegexpNew(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	switch x := args[0].Value.(type) {
	case *String:
		return vm.NewRegexp(x.String())
	case *Regexp:
		return args[0], nil
	}
	return nil, vm.Raisef(TypeError, "no implicit conversion of %s into String", vm.convName(args[0]))
}

// RegexpEscape is a Regexp class method.
//
// escape quotes metacharacters in a String.
func RegexpEscape(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	s, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.NewString(regexp.QuoteMeta(s.String())), nil
}

// RegexpSource is a Regexp method.
//
// source returns the pattern text.
func RegexpSource(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(self.Value.(*Regexp).Source()), nil
}

// RegexpInspect is a Regexp method.
//
// inspect returns the pattern between slashes.
func RegexpInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	src := strings.ReplaceAll(self.Value.(*Regexp).Source(), "/", `\/`)
	return vm.NewString("/" + src + "/"), nil
}

// RegexpEq is a Regexp method.
//
// == compares pattern sources.
func RegexpEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	r, ok := args[0].Value.(*Regexp)
	return vm.Bool(ok && r.Source() == self.Value.(*Regexp).Source()), nil
}

// matchAt runs m against s from byte offset pos and returns a MatchData or
// nil.
func (vm *VM) matchAt(s *String, m Matcher, pos int) *Object {
	mt, ok := m.Match(s.Bytes(), pos)
	if !ok {
		return vm.Nil
	}
	return vm.NewMatchData(s, mt, m)
}

// RegexpMatch is a Regexp method.
//
// match returns a MatchData for the first match in the argument, or nil.
func RegexpMatch(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	if args[0] == vm.Nil {
		return vm.Nil, nil
	}
	s, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	pos := 0
	if len(args) == 2 {
		p, err := vm.IntegerArgAt(args, 1)
		if err != nil {
			return nil, err
		}
		pos = int(p)
	}
	md := vm.matchAt(s, self.Value.(*Regexp).Matcher, pos)
	if md != vm.Nil && blk != nil {
		return vm.Yield(blk, md)
	}
	return md, nil
}

// RegexpMatchOp is a Regexp method.
//
// =~ returns the byte offset of the first match, or nil.
func RegexpMatchOp(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	if args[0] == vm.Nil {
		return vm.Nil, nil
	}
	s, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	mt, ok := self.Value.(*Regexp).Match(s.Bytes(), 0)
	if !ok {
		return vm.Nil, nil
	}
	return vm.NewInteger(int64(mt[0])), nil
}

// RegexpCaseEq is a Regexp method.
//
// === returns whether a String argument matches. Other arguments never
// match.
func RegexpCaseEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	s, ok := args[0].Value.(*String)
	if !ok {
		return vm.False, nil
	}
	_, ok = self.Value.(*Regexp).Match(s.Bytes(), 0)
	return vm.Bool(ok), nil
}

func (md *MatchData) group(vm *VM, i int) *Object {
	a, b, ok := md.Span.Group(i)
	if !ok {
		return vm.Nil
	}
	return vm.StringObject(NewStringValue(md.Subject.Bytes()[a:b], md.Subject.enc))
}

// MatchDataAt is a MatchData method.
//
// [] returns a group by number or name.
func MatchDataAt(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	md := self.Value.(*MatchData)
	n := len(md.Span) / 2
	switch x := args[0].Value.(type) {
	case int64:
		if x < 0 {
			x += int64(n)
		}
		if x < 0 || x >= int64(n) {
			return vm.Nil, nil
		}
		return md.group(vm, int(x)), nil
	case string, *String:
		name, err := vm.SymbolName(args[0])
		if err != nil {
			return nil, err
		}
		k := -1
		names := md.Matcher.GroupNames()
		for i := len(names) - 1; i > 0; i-- {
			if names[i] == name {
				k = i
				break
			}
		}
		if k < 0 {
			return nil, vm.Raisef(IndexError, "undefined group name reference: %s", name)
		}
		return md.group(vm, k), nil
	}
	return nil, vm.Raisef(TypeError, "no implicit conversion of %s into Integer", vm.convName(args[0]))
}

// MatchDataToA is a MatchData method.
//
// to_a returns the whole match followed by each group.
func MatchDataToA(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	md := self.Value.(*MatchData)
	r := make([]*Object, len(md.Span)/2)
	for i := range r {
		r[i] = md.group(vm, i)
	}
	return vm.NewArray(r), nil
}

// MatchDataCaptures is a MatchData method.
//
// captures returns each group, excluding the whole match.
func MatchDataCaptures(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	md := self.Value.(*MatchData)
	r := make([]*Object, len(md.Span)/2-1)
	for i := range r {
		r[i] = md.group(vm, i+1)
	}
	return vm.NewArray(r), nil
}

// MatchDataNames is a MatchData method.
//
// names returns the names of named groups.
func MatchDataNames(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	md := self.Value.(*MatchData)
	var r []*Object
	for _, name := range md.Matcher.GroupNames() {
		if name != "" {
			r = append(r, vm.NewString(name))
		}
	}
	return vm.NewArray(r), nil
}

// MatchDataPreMatch is a MatchData method.
//
// pre_match returns the subject before the match.
func MatchDataPreMatch(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	md := self.Value.(*MatchData)
	return vm.StringObject(NewStringValue(md.Subject.Bytes()[:md.Span[0]], md.Subject.enc)), nil
}

// MatchDataPostMatch is a MatchData method.
//
// post_match returns the subject after the match.
func MatchDataPostMatch(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	md := self.Value.(*MatchData)
	return vm.StringObject(NewStringValue(md.Subject.Bytes()[md.Span[1]:], md.Subject.enc)), nil
}

// MatchDataToS is a MatchData method.
//
// to_s returns the whole match.
func MatchDataToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return self.Value.(*MatchData).group(vm, 0), nil
}

func matchDataBound(vm *VM, self *Object, args []*Object, end int) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	k, err := vm.IntegerArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	md := self.Value.(*MatchData)
	if k < 0 || int(k) >= len(md.Span)/2 {
		return nil, vm.Raisef(IndexError, "index %d out of matches", k)
	}
	v := md.Span[2*int(k)+end]
	if v < 0 {
		return vm.Nil, nil
	}
	return vm.NewInteger(int64(v)), nil
}

// MatchDataBegin is a MatchData method.
//
// begin returns the byte offset of the start of a group.
func MatchDataBegin(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return matchDataBound(vm, self, args, 0)
}

// MatchDataEnd is a MatchData method.
//
// end returns the byte offset of the end of a group.
func MatchDataEnd(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return matchDataBound(vm, self, args, 1)
}

// MatchDataSize is a MatchData method.
//
// size returns the number of groups including the whole match.
func MatchDataSize(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(len(self.Value.(*MatchData).Span) / 2)), nil
}

// MatchDataInspect is a MatchData method.
//
// inspect shows the whole match and each group.
func MatchDataInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	md := self.Value.(*MatchData)
	names := md.Matcher.GroupNames()
	var b strings.Builder
	b.WriteString("#<MatchData ")
	for i := 0; i < len(md.Span)/2; i++ {
		if i > 0 {
			b.WriteByte(' ')
			if i < len(names) && names[i] != "" {
				b.WriteString(names[i])
			} else {
				b.WriteString(strconv.Itoa(i))
			}
			b.WriteByte(':')
		}
		g := md.group(vm, i)
		if g == vm.Nil {
			b.WriteString("nil")
			continue
		}
		b.WriteString(g.Value.(*String).Inspect())
	}
	b.WriteByte('>')
	return vm.NewString(b.String()), nil
}
