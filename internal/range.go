package internal

import (
	"math"
	"strings"
)

// Range is the primitive value of Range objects. It never changes after
// construction. Absent endpoints are the VM's nil object.
type Range struct {
	Begin     *Object
	End       *Object
	Exclusive bool
}

// RangeTag is the Tag for Range objects. Ranges are immutable, so copies
// share their value.
var RangeTag = BasicTag("Range")

// NewRange creates a Range object. Nil endpoints are open. If both endpoints
// are present, they must be comparable to each other; otherwise the result
// is an ArgumentError.
func (vm *VM) NewRange(begin, end *Object, exclusive bool) (*Object, error) {
	if begin == nil {
		begin = vm.Nil
	}
	if end == nil {
		end = vm.Nil
	}
	if begin != vm.Nil && end != vm.Nil {
		_, ok, err := vm.Compare(begin, end)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, vm.Raise(ArgumentError, "bad value for range")
		}
	}
	r := &Range{Begin: begin, End: end, Exclusive: exclusive}
	return vm.ObjectWith(vm.RangeClass, r, RangeTag).Freeze(), nil
}

func (vm *VM) initRange() {
	slots := Methods{
		"==":           RangeEq,
		"===":          RangeCover,
		"begin":        RangeBegin,
		"each":         RangeEach,
		"end":          RangeEnd,
		"eql?":         RangeEql,
		"exclude_end?": RangeExcludeEnd,
		"first":        RangeFirst,
		"hash":         RangeHash,
		"include?":     RangeInclude,
		"inspect":      RangeInspect,
		"size":         RangeSize,
		"to_a":         RangeToA,
		"to_s":         RangeToS,
	}
	slots["cover?"] = slots["==="]
	slots["member?"] = slots["include?"]
	slots["entries"] = slots["to_a"]
	vm.RangeClass = vm.defineClass("Range", vm.ObjectClass, slots)
	vm.ClassObject(vm.RangeClass).SingletonClass().Define("new", RangeNew)
}

// RangeIter is a pull iterator over the elements of a range. Endless ranges
// produce elements for as long as the consumer keeps calling Next.
type RangeIter struct {
	vm *VM
	r  *Range

	next  func() (*Object, bool, error)
	ended bool
}

// Iter returns an iterator over r's elements. It raises TypeError if the
// beginning of r has no successor.
func (vm *VM) Iter(r *Range) (*RangeIter, error) {
	it := &RangeIter{vm: vm, r: r}
	switch b := r.Begin.Value.(type) {
	case int64:
		if err := it.initInt(b); err != nil {
			return nil, err
		}
	case *String:
		if err := it.initString(b); err != nil {
			return nil, err
		}
	default:
		if r.Begin == vm.Nil || r.Begin.tag == FloatTag || !vm.RespondTo(r.Begin, "succ") {
			return nil, vm.Raisef(TypeError, "can't iterate from %s", vm.ClassName(r.Begin))
		}
		it.initGeneric()
	}
	return it, nil
}

// Next returns the next element of the range. The boolean is false once the
// range is exhausted.
func (it *RangeIter) Next() (*Object, bool, error) {
	if it.ended {
		return nil, false, nil
	}
	v, ok, err := it.next()
	if err != nil || !ok {
		it.ended = true
	}
	return v, ok, err
}

func (it *RangeIter) initInt(cur int64) error {
	vm := it.vm
	limit := int64(math.MaxInt64)
	switch e := it.r.End.Value.(type) {
	case int64:
		limit = e
		if it.r.Exclusive {
			if e == math.MinInt64 {
				it.ended = true
			}
			limit--
		}
	case float64:
		f := math.Floor(e)
		if it.r.Exclusive && f == e {
			f--
		}
		if f < math.MinInt64 {
			it.ended = true
		} else if f < math.MaxInt64 {
			limit = int64(f)
		}
	default:
		if it.r.End != vm.Nil {
			return vm.Raisef(TypeError, "can't iterate from %s", vm.ClassName(it.r.Begin))
		}
	}
	done := it.ended
	it.next = func() (*Object, bool, error) {
		if done || cur > limit {
			return nil, false, nil
		}
		v := vm.NewInteger(cur)
		if cur == limit {
			done = true
		} else {
			cur++
		}
		return v, true, nil
	}
	return nil
}

func (it *RangeIter) initString(begin *String) error {
	vm := it.vm
	excl := it.r.Exclusive
	if it.r.End == vm.Nil {
		cur := begin.Clone()
		it.next = func() (*Object, bool, error) {
			v := vm.StringObject(cur)
			cur = cur.Successive()
			return v, true, nil
		}
		return nil
	}
	end, ok := it.r.End.Value.(*String)
	if !ok {
		return vm.Raisef(TypeError, "can't iterate from %s", vm.ClassName(it.r.Begin))
	}
	// Single ASCII characters enumerate by byte value.
	if begin.Len() == 1 && end.Len() == 1 && isASCII(begin.Bytes()) && isASCII(end.Bytes()) {
		c, e := int(begin.Bytes()[0]), int(end.Bytes()[0])
		if excl {
			e--
		}
		enc := begin.enc
		it.next = func() (*Object, bool, error) {
			if c > e {
				return nil, false, nil
			}
			v := vm.StringObject(NewStringValue([]byte{byte(c)}, enc))
			c++
			return v, true, nil
		}
		return nil
	}
	n := begin.Compare(end)
	if n > 0 || excl && n == 0 {
		it.ended = true
		return nil
	}
	afterEnd := end.Successive()
	cur := begin.Clone()
	done := false
	it.next = func() (*Object, bool, error) {
		if done || cur.Equal(afterEnd) {
			return nil, false, nil
		}
		v := vm.StringObject(cur)
		if !excl && cur.Equal(end) {
			done = true
			return v, true, nil
		}
		cur = cur.Successive()
		if excl && cur.Equal(end) || cur.Len() > end.Len() || cur.Len() == 0 {
			done = true
		}
		return v, true, nil
	}
	return nil
}

func (it *RangeIter) initGeneric() {
	vm := it.vm
	cur := it.r.Begin
	it.next = func() (*Object, bool, error) {
		if it.r.End != vm.Nil {
			c, ok, err := vm.Compare(cur, it.r.End)
			if err != nil {
				return nil, false, err
			}
			if !ok || c > 0 || it.r.Exclusive && c == 0 {
				return nil, false, nil
			}
		}
		v := cur
		next, err := vm.Send(cur, "succ")
		if err != nil {
			return nil, false, err
		}
		cur = next
		return v, true, nil
	}
}

// Each calls fn with each element of r in order until the range is exhausted
// or fn returns an error.
func (vm *VM) Each(r *Range, fn func(*Object) error) error {
	it, err := vm.Iter(r)
	if err != nil {
		return err
	}
	for {
		v, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// Covers returns whether v lies between the endpoints of r by comparison.
func (vm *VM) Covers(r *Range, v *Object) (bool, error) {
	if r.Begin != vm.Nil {
		c, ok, err := vm.Compare(r.Begin, v)
		if err != nil || !ok || c > 0 {
			return false, err
		}
	}
	if r.End != vm.Nil {
		c, ok, err := vm.Compare(v, r.End)
		if err != nil || !ok {
			return false, err
		}
		if c > 0 || r.Exclusive && c == 0 {
			return false, nil
		}
	}
	return true, nil
}

// rangeSpan resolves r against a sequence of length n, returning a start
// offset and length. The boolean is false if the range starts out of bounds.
func (vm *VM) rangeSpan(r *Range, n int) (start, length int, ok bool, err error) {
	var b, e int64
	switch x := r.Begin.Value.(type) {
	case int64:
		b = x
	default:
		if r.Begin != vm.Nil {
			return 0, 0, false, vm.Raisef(TypeError, "no implicit conversion of %s into Integer", vm.convName(r.Begin))
		}
	}
	switch x := r.End.Value.(type) {
	case int64:
		e = x
		if e < 0 {
			e += int64(n)
		}
		if !r.Exclusive {
			e++
		}
	default:
		if r.End != vm.Nil {
			return 0, 0, false, vm.Raisef(TypeError, "no implicit conversion of %s into Integer", vm.convName(r.End))
		}
		e = int64(n)
	}
	if b < 0 {
		b += int64(n)
	}
	if b < 0 || b > int64(n) {
		return 0, 0, false, nil
	}
	if e > int64(n) {
		e = int64(n)
	}
	if e < b {
		e = b
	}
	return int(b), int(e - b), true, nil
}

// RangeNew is a Range class method.
//
// new creates a range from two endpoints and an optional exclusion flag.
func RangeNew(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 2, 3); err != nil {
		return nil, err
	}
	excl := len(args) == 3 && vm.Truthy(args[2])
	return vm.NewRange(args[0], args[1], excl)
}

// RangeEach is a Range method.
//
// each yields each element of the range to the block.
func RangeEach(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(LocalJumpError, "no block given (yield)")
	}
	err := vm.Each(self.Value.(*Range), func(v *Object) error {
		_, err := blk(v)
		return err
	})
	if err != nil {
		if r, ok := vm.breakResult(err); ok {
			return r, nil
		}
		return nil, err
	}
	return self, nil
}

// RangeToA is a Range method.
//
// to_a returns an array of the range's elements. Endless ranges raise
// RangeError.
func RangeToA(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	r := self.Value.(*Range)
	if r.End == vm.Nil {
		return nil, vm.Raise(RangeError, "cannot convert endless range to an array")
	}
	var l []*Object
	err := vm.Each(r, func(v *Object) error {
		l = append(l, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vm.NewArray(l), nil
}

// RangeCover is a Range method.
//
// === returns whether the argument lies between the endpoints.
func RangeCover(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	ok, err := vm.Covers(self.Value.(*Range), args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(ok), nil
}

// RangeInclude is a Range method.
//
// include? returns whether the argument is an element of the range. String
// ranges are enumerated; other ranges compare against their endpoints.
func RangeInclude(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	r := self.Value.(*Range)
	if r.Begin.tag != StringTag || r.End.tag != StringTag {
		return RangeCover(vm, self, args, blk)
	}
	if args[0].tag != StringTag {
		return vm.False, nil
	}
	found := false
	err := vm.Each(r, func(v *Object) error {
		if v.Value.(*String).Equal(args[0].Value.(*String)) {
			found = true
			return &Break{Result: vm.True}
		}
		return nil
	})
	if err != nil {
		if _, ok := vm.breakResult(err); !ok {
			return nil, err
		}
	}
	return vm.Bool(found), nil
}

// RangeEq is a Range method.
//
// == returns whether the argument is a range with equal endpoints and the
// same exclusion.
func RangeEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return rangeCompare(vm, self, args, vm.Eq)
}

// RangeEql is a Range method.
//
// eql? is like == but compares endpoints with eql?.
func RangeEql(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return rangeCompare(vm, self, args, vm.Eql)
}

func rangeCompare(vm *VM, self *Object, args []*Object, eq func(a, b *Object) (bool, error)) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	r := self.Value.(*Range)
	s, ok := args[0].Value.(*Range)
	if !ok || r.Exclusive != s.Exclusive {
		return vm.False, nil
	}
	if ok, err := eq(r.Begin, s.Begin); err != nil || !ok {
		return vm.False, err
	}
	ok, err := eq(r.End, s.End)
	if err != nil {
		return nil, err
	}
	return vm.Bool(ok), nil
}

// RangeHash is a Range method.
//
// hash combines the hashes of the endpoints and the exclusion flag.
func RangeHash(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	r := self.Value.(*Range)
	var h uint64
	if r.Exclusive {
		h = 1
	}
	for _, v := range [...]*Object{r.Begin, r.End} {
		x, err := vm.Send(v, "hash")
		if err != nil {
			return nil, err
		}
		n, _ := x.Value.(int64)
		h = mixHash(h*31 + uint64(n))
	}
	return vm.NewInteger(int64(h)), nil
}

// RangeBegin is a Range method.
//
// begin returns the first endpoint, or nil for a beginless range.
func RangeBegin(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return self.Value.(*Range).Begin, nil
}

// RangeEnd is a Range method.
//
// end returns the second endpoint, or nil for an endless range.
func RangeEnd(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return self.Value.(*Range).End, nil
}

// RangeExcludeEnd is a Range method.
//
// exclude_end? returns whether the second endpoint is excluded.
func RangeExcludeEnd(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(self.Value.(*Range).Exclusive), nil
}

// RangeFirst is a Range method.
//
// first returns the first endpoint, or an array of the first n elements.
func RangeFirst(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	r := self.Value.(*Range)
	if r.Begin == vm.Nil {
		return nil, vm.Raise(RangeError, "cannot get the first element of beginless range")
	}
	if len(args) == 0 {
		return r.Begin, nil
	}
	n, err := vm.IntegerArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, vm.Raise(ArgumentError, "negative array size (or size too big)")
	}
	l := []*Object{}
	if n == 0 {
		return vm.NewArray(l), nil
	}
	it, err := vm.Iter(r)
	if err != nil {
		return nil, err
	}
	for int64(len(l)) < n {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		l = append(l, v)
	}
	return vm.NewArray(l), nil
}

// RangeSize is a Range method.
//
// size returns the number of elements in an Integer range, Infinity for an
// endless one, or nil for other ranges.
func RangeSize(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	r := self.Value.(*Range)
	b, ok := r.Begin.Value.(int64)
	if !ok {
		if r.Begin.tag == FloatTag {
			return nil, vm.Raisef(TypeError, "can't iterate from %s", vm.ClassName(r.Begin))
		}
		return vm.Nil, nil
	}
	var e float64
	switch x := r.End.Value.(type) {
	case int64:
		e = float64(x)
	case float64:
		e = math.Floor(x)
		if r.Exclusive && e == x {
			e--
		}
		if e < float64(b) {
			return vm.NewInteger(0), nil
		}
		return vm.NewInteger(int64(e) - b + 1), nil
	default:
		if r.End == vm.Nil {
			return vm.NewFloat(math.Inf(1)), nil
		}
		return vm.Nil, nil
	}
	n := int64(e) - b
	if !r.Exclusive {
		n++
	}
	if n < 0 {
		n = 0
	}
	return vm.NewInteger(n), nil
}

// RangeToS is a Range method.
//
// to_s joins the endpoints' to_s representations with .. or ....
func RangeToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return rangeString(vm, self.Value.(*Range), vm.AsString, false)
}

// RangeInspect is a Range method.
//
// inspect joins the endpoints' inspect representations with .. or ....
// Open endpoints are omitted unless both are open.
func RangeInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return rangeString(vm, self.Value.(*Range), vm.Inspect, true)
}

func rangeString(vm *VM, r *Range, conv func(*Object) (string, error), omitNil bool) (*Object, error) {
	var b strings.Builder
	bothNil := r.Begin == vm.Nil && r.End == vm.Nil
	if r.Begin != vm.Nil || !omitNil || bothNil {
		s, err := conv(r.Begin)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	b.WriteString("..")
	if r.Exclusive {
		b.WriteByte('.')
	}
	if r.End != vm.Nil || !omitNil || bothNil {
		s, err := conv(r.End)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return vm.NewString(b.String()), nil
}
