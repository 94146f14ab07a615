package internal

import (
	"fmt"
	"unicode/utf8"
)

// NewString creates a String object holding s in the VM's default encoding.
func (vm *VM) NewString(s string) *Object {
	return vm.StringObject(NewStringValue([]byte(s), vm.defaultEncoding))
}

// NewStringBytes creates a String object holding a copy of b in the given
// encoding.
func (vm *VM) NewStringBytes(b []byte, enc Encoding) *Object {
	return vm.StringObject(NewStringValue(b, enc))
}

// Sprintf creates a String object from a format and arguments in the manner
// of fmt.Sprintf.
func (vm *VM) Sprintf(format string, args ...interface{}) *Object {
	return vm.NewString(fmt.Sprintf(format, args...))
}

// StringObject wraps a String value in an object. The object takes ownership
// of s.
func (vm *VM) StringObject(s *String) *Object {
	return vm.ObjectWith(vm.StringClass, s, StringTag)
}

// StringArgAt returns the String value of the nth argument, raising TypeError
// if it is not a String.
func (vm *VM) StringArgAt(args []*Object, n int) (*String, error) {
	s, ok := args[n].Value.(*String)
	if !ok {
		return nil, vm.Raisef(TypeError, "no implicit conversion of %s into String", vm.convName(args[n]))
	}
	return s, nil
}

// EncodingTag is the Tag for Encoding objects. The value is an Encoding.
var EncodingTag = BasicTag("Encoding")

// EncodingObject returns the object representing enc.
func (vm *VM) EncodingObject(enc Encoding) *Object {
	if o := vm.encodings[enc]; o != nil {
		return o
	}
	o := vm.ObjectWith(vm.CoreClass("Encoding"), enc, EncodingTag).Freeze()
	vm.encodings[enc] = o
	return o
}

// encodingArg converts an Encoding or String argument to an Encoding.
func (vm *VM) encodingArg(o *Object) (Encoding, error) {
	switch x := o.Value.(type) {
	case Encoding:
		return x, nil
	case *String:
		if enc, ok := LookupEncoding(x.String()); ok {
			return enc, nil
		}
		return 0, vm.Raisef(ArgumentError, "unknown encoding name - %s", x.String())
	}
	return 0, vm.Raisef(TypeError, "no implicit conversion of %s into String", vm.convName(o))
}

func (vm *VM) initString() {
	slots := Methods{
		"<<":              StringAppend,
		"+":               StringPlus,
		"*":               StringTimes,
		"==":              StringEq,
		"eql?":            StringEql,
		"<=>":             StringCmp,
		"=~":              StringMatchOp,
		"[]":              StringAt,
		"bytes":           StringBytes,
		"bytesize":        StringBytesize,
		"chars":           StringChars,
		"clear":           StringClear,
		"downcase":        StringDowncase,
		"downcase!":       StringDowncaseBang,
		"each_char":       StringEachChar,
		"empty?":          StringEmpty,
		"encode":          StringEncode,
		"encoding":        StringEncoding,
		"end_with?":       StringEndWith,
		"force_encoding":  StringForceEncoding,
		"gsub":            StringGsub,
		"hash":            StringHash,
		"include?":        StringInclude,
		"index":           StringIndex,
		"insert":          StringInsert,
		"inspect":         StringInspect,
		"length":          StringSize,
		"ljust":           StringLjust,
		"lstrip":          StringLstrip,
		"match":           StringMatch,
		"ord":             StringOrd,
		"prepend":         StringPrepend,
		"replace":         StringReplace,
		"reverse":         StringReverse,
		"rstrip":          StringRstrip,
		"size":            StringSize,
		"split":           StringSplit,
		"start_with?":     StringStartWith,
		"strip":           StringStrip,
		"sub":             StringSub,
		"succ":            StringSucc,
		"to_i":            StringToI,
		"to_s":            StringToS,
		"to_sym":          StringToSym,
		"upcase":          StringUpcase,
		"upcase!":         StringUpcaseBang,
		"valid_encoding?": StringValidEncoding,
	}
	slots["concat"] = slots["<<"]
	slots["==="] = slots["=="]
	slots["next"] = slots["succ"]
	slots["slice"] = slots["[]"]
	slots["to_str"] = slots["to_s"]
	slots["intern"] = slots["to_sym"]
	vm.StringClass = vm.defineClass("String", vm.ObjectClass, slots)
	vm.StringClass.Include(vm.ComparableModule)
	vm.ClassObject(vm.StringClass).SingletonClass().Define("new", StringNew)

	vm.defineClass("Encoding", vm.ObjectClass, Methods{
		"ascii_compatible?": EncodingASCIICompatible,
		"inspect":           EncodingInspect,
		"name":              EncodingName,
		"to_s":              EncodingName,
	})
}

// StringNew is a String class method.
//
// new returns a copy of its argument, or an empty string.
func StringNew(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return vm.NewStringBytes(nil, ASCII8BIT), nil
	}
	s, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.StringObject(s.Clone()), nil
}

// mutableString checks that self may be modified and returns its value.
func mutableString(vm *VM, self *Object) (*String, error) {
	if err := vm.CheckFrozen(self); err != nil {
		return nil, err
	}
	return self.Value.(*String), nil
}

// StringAppend is a String method.
//
// << appends a String, or the character with an Integer code point.
func StringAppend(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	s, err := mutableString(vm, self)
	if err != nil {
		return nil, err
	}
	switch x := args[0].Value.(type) {
	case *String:
		if err := s.Concat(x); err != nil {
			return nil, vm.RaiseError(err)
		}
		return self, nil
	case int64:
		if x < 0 {
			return nil, vm.Raisef(RangeError, "%d out of char range", x)
		}
		b, ok := s.enc.appendRune(nil, rune(x))
		if !ok || x > utf8.MaxRune {
			return nil, vm.Raisef(RangeError, "%d out of char range", x)
		}
		s.Append(b)
		return self, nil
	}
	return nil, vm.Raisef(TypeError, "no implicit conversion of %s into String", vm.convName(args[0]))
}

// StringPlus is a String method.
//
// + returns a new string concatenating the receiver and argument.
func StringPlus(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	t, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	r := self.Value.(*String).Clone()
	r.GrowAtLeast(t.Len())
	if err := r.Concat(t); err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.StringObject(r), nil
}

// StringTimes is a String method.
//
// * returns the string repeated.
func StringTimes(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	n, err := vm.IntegerArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	r, err := self.Value.(*String).Repeat(int(n))
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.StringObject(r), nil
}

// StringEq is a String method.
//
// == compares content.
func StringEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	t, ok := args[0].Value.(*String)
	return vm.Bool(ok && self.Value.(*String).Equal(t)), nil
}

// StringEql is a String method.
//
// eql? compares content and class.
func StringEql(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	ok, err := vm.Eql(self, args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(ok), nil
}

// StringCmp is a String method.
//
// <=> orders strings bytewise, or returns nil for non-strings.
func StringCmp(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	t, ok := args[0].Value.(*String)
	if !ok {
		return vm.Nil, nil
	}
	return vm.NewInteger(int64(self.Value.(*String).Compare(t))), nil
}

// StringHash is a String method.
//
// hash returns a hash of the content.
func StringHash(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(self.Value.(*String).Hash())), nil
}

// StringBytes is a String method.
//
// bytes returns an array of the string's bytes as Integers.
func StringBytes(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	b := self.Value.(*String).Bytes()
	r := make([]*Object, len(b))
	for i, c := range b {
		r[i] = vm.NewInteger(int64(c))
	}
	return vm.NewArray(r), nil
}

// StringBytesize is a String method.
//
// bytesize returns the length in bytes.
func StringBytesize(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(self.Value.(*String).Len())), nil
}

// StringSize is a String method.
//
// size returns the length in characters.
func StringSize(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(self.Value.(*String).CharCount())), nil
}

// StringChars is a String method.
//
// chars returns an array of the string's characters.
func StringChars(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	var r []*Object
	it := self.Value.(*String).EachChar()
	for {
		c, err := it.Next()
		if err != nil {
			return nil, vm.RaiseError(err)
		}
		if c == nil {
			return vm.NewArray(r), nil
		}
		r = append(r, vm.StringObject(c))
	}
}

// StringEachChar is a String method.
//
// each_char yields each character to the block. The block may modify the
// string; iteration continues from the byte offset reached.
func StringEachChar(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return StringChars(vm, self, args, blk)
	}
	it := self.Value.(*String).EachChar()
	for {
		c, err := it.Next()
		if err != nil {
			return nil, vm.RaiseError(err)
		}
		if c == nil {
			return self, nil
		}
		if _, err := blk(vm.StringObject(c)); err != nil {
			if r, ok := vm.breakResult(err); ok {
				return r, nil
			}
			return nil, err
		}
	}
}

// StringClear is a String method.
//
// clear empties the string.
func StringClear(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	s, err := mutableString(vm, self)
	if err != nil {
		return nil, err
	}
	if err := s.Truncate(0); err != nil {
		return nil, err
	}
	return self, nil
}

// StringOrd is a String method.
//
// ord returns the code point of the first character.
func StringOrd(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	r, err := self.Value.(*String).Ord()
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.NewInteger(int64(r)), nil
}

// StringReverse is a String method.
//
// reverse returns a copy with the characters in reverse order.
func StringReverse(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.StringObject(self.Value.(*String).Reverse()), nil
}

// StringAt is a String method.
//
// [] returns a substring selected by character index, start and length,
// range, substring, or Regexp, or nil if the selection is out of range.
func StringAt(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	s := self.Value.(*String)
	if len(args) == 2 {
		start, err := vm.IntegerArgAt(args, 0)
		if err != nil {
			return nil, err
		}
		n, err := vm.IntegerArgAt(args, 1)
		if err != nil {
			return nil, err
		}
		r, ok := s.Substr(int(start), int(n))
		if !ok {
			return vm.Nil, nil
		}
		return vm.StringObject(r), nil
	}
	switch x := args[0].Value.(type) {
	case int64:
		n := s.CharCount()
		if x < 0 {
			x += int64(n)
		}
		if x < 0 || x >= int64(n) {
			return vm.Nil, nil
		}
		r, _ := s.Substr(int(x), 1)
		return vm.StringObject(r), nil
	case *Range:
		start, n, ok, err := vm.rangeSpan(x, s.CharCount())
		if err != nil {
			return nil, err
		}
		if !ok {
			return vm.Nil, nil
		}
		r, ok := s.Substr(start, n)
		if !ok {
			return vm.Nil, nil
		}
		return vm.StringObject(r), nil
	case *String:
		if s.IndexInt(x.Bytes(), 0) < 0 {
			return vm.Nil, nil
		}
		return vm.StringObject(x.Clone()), nil
	case *Regexp:
		mt, ok := x.Match(s.Bytes(), 0)
		if !ok {
			return vm.Nil, nil
		}
		return vm.StringObject(NewStringValue(s.Bytes()[mt[0]:mt[1]], s.enc)), nil
	}
	return nil, vm.Raisef(TypeError, "no implicit conversion of %s into Integer", vm.convName(args[0]))
}

// StringStartWith is a String method.
//
// start_with? returns whether the string begins with any argument. Regexp
// arguments must match at the beginning.
func StringStartWith(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	s := self.Value.(*String)
	for i := range args {
		if re, ok := args[i].Value.(*Regexp); ok {
			if mt, ok := re.Match(s.Bytes(), 0); ok && mt[0] == 0 {
				return vm.True, nil
			}
			continue
		}
		t, err := vm.StringArgAt(args, i)
		if err != nil {
			return nil, err
		}
		if t.Len() <= s.Len() && string(s.Bytes()[:t.Len()]) == t.String() {
			return vm.True, nil
		}
	}
	return vm.False, nil
}

// StringEndWith is a String method.
//
// end_with? returns whether the string ends with any argument.
func StringEndWith(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	s := self.Value.(*String)
	for i := range args {
		t, err := vm.StringArgAt(args, i)
		if err != nil {
			return nil, err
		}
		if t.Len() <= s.Len() && string(s.Bytes()[s.Len()-t.Len():]) == t.String() {
			return vm.True, nil
		}
	}
	return vm.False, nil
}

// StringEmpty is a String method.
//
// empty? returns whether the string has no bytes.
func StringEmpty(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(self.Value.(*String).Len() == 0), nil
}

// StringInclude is a String method.
//
// include? returns whether the argument occurs in the string.
func StringInclude(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	t, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.Bool(self.Value.(*String).IndexInt(t.Bytes(), 0) >= 0), nil
}

// StringIndex is a String method.
//
// index returns the byte offset of the first occurrence of a String or
// Regexp at or after an optional start offset, or nil if there is none.
func StringIndex(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	s := self.Value.(*String)
	start := 0
	if len(args) == 2 {
		n, err := vm.IntegerArgAt(args, 1)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n += int64(s.Len())
		}
		if n < 0 {
			return vm.Nil, nil
		}
		start = int(n)
	}
	var i int
	switch x := args[0].Value.(type) {
	case *String:
		i = s.IndexInt(x.Bytes(), start)
	case *Regexp:
		i = -1
		if mt, ok := x.Match(s.Bytes(), start); ok {
			i = mt[0]
		}
	default:
		return nil, vm.Raisef(TypeError, "no implicit conversion of %s into String", vm.convName(args[0]))
	}
	if i < 0 {
		return vm.Nil, nil
	}
	return vm.NewInteger(int64(i)), nil
}

// StringInsert is a String method.
//
// insert inserts a String before the character at an index. Negative indices
// insert after the character counted from the end.
func StringInsert(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 2, 2); err != nil {
		return nil, err
	}
	k, err := vm.IntegerArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	t, err := vm.StringArgAt(args, 1)
	if err != nil {
		return nil, err
	}
	s, err := mutableString(vm, self)
	if err != nil {
		return nil, err
	}
	if _, err := compatibleEncoding(s, t); err != nil {
		return nil, vm.RaiseError(err)
	}
	offs := s.charOffsets()
	nc := int64(len(offs) - 1)
	if k < 0 {
		k += nc + 1
	}
	if k < 0 || k > nc {
		return nil, vm.Raisef(IndexError, "index %d out of string", args[0].Value.(int64))
	}
	b := append([]byte(nil), t.Bytes()...)
	if err := s.Insert(offs[k], b); err != nil {
		return nil, vm.RaiseError(err)
	}
	return self, nil
}

// StringPrepend is a String method.
//
// prepend inserts each argument at the beginning of the string.
func StringPrepend(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	s, err := mutableString(vm, self)
	if err != nil {
		return nil, err
	}
	var b []byte
	for i := range args {
		t, err := vm.StringArgAt(args, i)
		if err != nil {
			return nil, err
		}
		b = append(b, t.Bytes()...)
	}
	s.Prepend(b)
	return self, nil
}

// StringReplace is a String method.
//
// replace sets the string's content to that of the argument.
func StringReplace(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	t, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	s, err := mutableString(vm, self)
	if err != nil {
		return nil, err
	}
	s.Replace(t)
	return self, nil
}

// StringInspect is a String method.
//
// inspect returns a quoted, escaped representation.
func StringInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(self.Value.(*String).Inspect()), nil
}

// StringToS is a String method.
//
// to_s returns the receiver.
func StringToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return self, nil
}

// StringToSym is a String method.
//
// to_sym returns the Symbol with the string's content as its name.
func StringToSym(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Intern(self.Value.(*String).String()), nil
}

// StringLjust is a String method.
//
// ljust pads the string on the right to a width in characters.
func StringLjust(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	w, err := vm.IntegerArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	pad := NewStringValue([]byte{' '}, self.Value.(*String).enc)
	if len(args) == 2 {
		if pad, err = vm.StringArgAt(args, 1); err != nil {
			return nil, err
		}
	}
	r, err := self.Value.(*String).LJust(int(w), pad)
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.StringObject(r), nil
}

// StringStrip is a String method.
//
// strip removes leading and trailing whitespace.
func StringStrip(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.StringObject(self.Value.(*String).Strip()), nil
}

// StringLstrip is a String method.
//
// lstrip removes leading whitespace.
func StringLstrip(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.StringObject(self.Value.(*String).Lstrip()), nil
}

// StringRstrip is a String method.
//
// rstrip removes trailing whitespace.
func StringRstrip(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.StringObject(self.Value.(*String).Rstrip()), nil
}

// StringSucc is a String method.
//
// succ returns the successor string.
func StringSucc(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.StringObject(self.Value.(*String).Successive()), nil
}

// StringToI is a String method.
//
// to_i parses a leading integer in an optional radix, default 10.
func StringToI(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	base := int64(10)
	if len(args) == 1 {
		var err error
		if base, err = vm.IntegerArgAt(args, 0); err != nil {
			return nil, err
		}
	}
	n, err := self.Value.(*String).ToI(int(base))
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.NewInteger(n), nil
}

// StringDowncase is a String method.
//
// downcase returns a lowercased copy.
func StringDowncase(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	r, err := self.Value.(*String).Downcase()
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.StringObject(r), nil
}

// StringUpcase is a String method.
//
// upcase returns an uppercased copy.
func StringUpcase(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	r, err := self.Value.(*String).Upcase()
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.StringObject(r), nil
}

// caseBang replaces the receiver's content with a case mapping. It returns
// nil if nothing changed.
func caseBang(vm *VM, self *Object, f func(*String) (*String, error)) (*Object, error) {
	s, err := mutableString(vm, self)
	if err != nil {
		return nil, err
	}
	r, err := f(s)
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	if string(r.Bytes()) == string(s.Bytes()) {
		return vm.Nil, nil
	}
	s.Replace(r)
	return self, nil
}

// StringDowncaseBang is a String method.
//
// downcase! lowercases the string in place, returning nil if nothing changed.
func StringDowncaseBang(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return caseBang(vm, self, (*String).Downcase)
}

// StringUpcaseBang is a String method.
//
// upcase! uppercases the string in place, returning nil if nothing changed.
func StringUpcaseBang(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return caseBang(vm, self, (*String).Upcase)
}

// StringValidEncoding is a String method.
//
// valid_encoding? returns whether the content is validly encoded.
func StringValidEncoding(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(self.Value.(*String).ValidEncoding()), nil
}

// StringEncoding is a String method.
//
// encoding returns the string's Encoding.
func StringEncoding(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.EncodingObject(self.Value.(*String).enc), nil
}

// StringForceEncoding is a String method.
//
// force_encoding changes the encoding without changing the bytes.
func StringForceEncoding(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	enc, err := vm.encodingArg(args[0])
	if err != nil {
		return nil, err
	}
	s, err := mutableString(vm, self)
	if err != nil {
		return nil, err
	}
	s.SetEncoding(enc)
	return self, nil
}

// StringEncode is a String method.
//
// encode returns a copy transcoded to another encoding, by default the VM's
// default encoding.
func StringEncode(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	to := vm.defaultEncoding
	if len(args) == 1 {
		var err error
		if to, err = vm.encodingArg(args[0]); err != nil {
			return nil, err
		}
	}
	s := self.Value.(*String)
	b, err := Transcode(s.Bytes(), s.enc, to)
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.NewStringBytes(b, to), nil
}

// StringMatch is a String method.
//
// match returns a MatchData for the first match of a pattern, or nil.
func StringMatch(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	re := args[0]
	if s, ok := re.Value.(*String); ok {
		var err error
		if re, err = vm.NewRegexp(s.String()); err != nil {
			return nil, err
		}
	}
	if re.tag != RegexpTag {
		return nil, vm.Raisef(TypeError, "wrong argument type %s (expected Regexp)", vm.convName(re))
	}
	a := append([]*Object{self}, args[1:]...)
	return RegexpMatch(vm, re, a, blk)
}

// StringMatchOp is a String method.
//
// =~ returns the byte offset of the first match of a Regexp, or nil.
func StringMatchOp(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	if args[0].tag == StringTag {
		return nil, vm.Raise(TypeError, "wrong argument type String (expected Regexp)")
	}
	return vm.Send(args[0], "=~", self)
}

func stringSubstitute(vm *VM, self *Object, args []*Object, blk Block, global bool) (*Object, error) {
	if blk == nil {
		if err := vm.ArgCount(args, 2, 2); err != nil {
			return nil, err
		}
	} else if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	m, err := vm.matcherArg(args[0])
	if err != nil {
		return nil, err
	}
	s := self.Value.(*String)
	var r *String
	if len(args) == 2 {
		repl, err := vm.StringArgAt(args, 1)
		if err != nil {
			return nil, err
		}
		if global {
			r, err = s.Gsub(m, repl.Bytes())
		} else {
			r, err = s.Sub(m, repl.Bytes())
		}
		if err != nil {
			return nil, vm.RaiseError(err)
		}
		return vm.StringObject(r), nil
	}
	r, err = s.Substitute(m, global, func(src []byte, mt Match) ([]byte, error) {
		v, err := blk(vm.NewStringBytes(src[mt[0]:mt[1]], s.enc))
		if err != nil {
			return nil, err
		}
		if v == nil {
			v = vm.Nil
		}
		t, err := vm.AsString(v)
		if err != nil {
			return nil, err
		}
		return []byte(t), nil
	})
	if err != nil {
		if v, ok := vm.breakResult(err); ok {
			return v, nil
		}
		return nil, vm.RaiseError(err)
	}
	return vm.StringObject(r), nil
}

// StringGsub is a String method.
//
// gsub returns a copy with every match of a String or Regexp replaced, either
// by a replacement string with backreferences or by the block's results.
func StringGsub(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return stringSubstitute(vm, self, args, blk, true)
}

// StringSub is a String method.
//
// sub is like gsub, but replaces only the first match.
func StringSub(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return stringSubstitute(vm, self, args, blk, false)
}

// StringSplit is a String method.
//
// split divides the string around a separator String or Regexp. With no
// separator, nil, or a single space, it splits on runs of whitespace.
func StringSplit(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 2); err != nil {
		return nil, err
	}
	var m Matcher
	if len(args) > 0 && args[0] != vm.Nil {
		if t, ok := args[0].Value.(*String); !ok || t.String() != " " {
			var err error
			if m, err = vm.matcherArg(args[0]); err != nil {
				return nil, err
			}
		}
	}
	limit := 0
	if len(args) == 2 {
		n, err := vm.IntegerArgAt(args, 1)
		if err != nil {
			return nil, err
		}
		limit = int(n)
	}
	parts := self.Value.(*String).Split(m, limit)
	r := make([]*Object, len(parts))
	for i, p := range parts {
		r[i] = vm.StringObject(p)
	}
	return vm.NewArray(r), nil
}

// EncodingName is an Encoding method.
//
// name returns the canonical name of the encoding.
func EncodingName(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(self.Value.(Encoding).String()), nil
}

// EncodingInspect is an Encoding method.
//
// inspect returns a representation including the name.
func EncodingInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	enc := self.Value.(Encoding)
	if enc == ASCII8BIT {
		return vm.NewString("#<Encoding:BINARY (ASCII-8BIT)>"), nil
	}
	return vm.NewString("#<Encoding:" + enc.String() + ">"), nil
}

// EncodingASCIICompatible is an Encoding method.
//
// ascii_compatible? returns whether ASCII characters encode as themselves.
func EncodingASCIICompatible(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(self.Value.(Encoding).ASCIICompatible()), nil
}
