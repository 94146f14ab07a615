package internal

import (
	"strings"
)

// arrayTag is the Tag type for Array objects.
type arrayTag struct{}

// CloneValue creates a shallow copy of the array.
func (arrayTag) CloneValue(value interface{}) interface{} {
	l := value.([]*Object)
	m := make([]*Object, len(l))
	copy(m, l)
	return m
}

func (arrayTag) String() string {
	return "Array"
}

// ArrayTag is the Tag for Array objects. The value is a []*Object.
var ArrayTag Tag = arrayTag{}

// NewArray creates an Array holding items. The array takes ownership of the
// slice.
func (vm *VM) NewArray(items []*Object) *Object {
	return vm.ObjectWith(vm.ArrayClass, items, ArrayTag)
}

// ArrayArgAt returns the items of the nth argument, raising TypeError if it
// is not an Array.
func (vm *VM) ArrayArgAt(args []*Object, n int) ([]*Object, error) {
	l, ok := args[n].Value.([]*Object)
	if !ok {
		return nil, vm.Raisef(TypeError, "no implicit conversion of %s into Array", vm.convName(args[n]))
	}
	return l, nil
}

// recursing reports whether o is already being visited by an enclosing call
// of a recursive method such as inspect. If not, it marks o as visited; the
// returned function unmarks it.
func (vm *VM) recursing(o *Object) (bool, func()) {
	for _, v := range vm.visiting {
		if v == o {
			return true, func() {}
		}
	}
	vm.visiting = append(vm.visiting, o)
	return false, func() { vm.visiting = vm.visiting[:len(vm.visiting)-1] }
}

func (vm *VM) initArray() {
	slots := Methods{
		"<<":       ArrayPush,
		"==":       ArrayEq,
		"[]":       ArrayAt,
		"each":     ArrayEach,
		"empty?":   ArrayEmpty,
		"first":    ArrayFirst,
		"include?": ArrayInclude,
		"inspect":  ArrayInspect,
		"join":     ArrayJoin,
		"last":     ArrayLast,
		"map":      ArrayMap,
		"pop":      ArrayPop,
		"push":     ArrayPush,
		"size":     ArraySize,
		"to_a":     ObjectSelf,
	}
	slots["length"] = slots["size"]
	slots["to_s"] = slots["inspect"]
	slots["append"] = slots["push"]
	slots["collect"] = slots["map"]
	vm.ArrayClass = vm.defineClass("Array", vm.ObjectClass, slots)
}

// ArrayPush is an Array method.
//
// push appends its arguments to the array.
func ArrayPush(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.CheckFrozen(self); err != nil {
		return nil, err
	}
	self.Value = append(self.Value.([]*Object), args...)
	return self, nil
}

// ArrayPop is an Array method.
//
// pop removes and returns the last element, or nil if the array is empty.
func ArrayPop(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.CheckFrozen(self); err != nil {
		return nil, err
	}
	l := self.Value.([]*Object)
	if len(l) == 0 {
		return vm.Nil, nil
	}
	r := l[len(l)-1]
	self.Value = l[:len(l)-1]
	return r, nil
}

// ArraySize is an Array method.
//
// size returns the number of elements.
func ArraySize(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(len(self.Value.([]*Object)))), nil
}

// ArrayEmpty is an Array method.
//
// empty? returns whether the array has no elements.
func ArrayEmpty(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(len(self.Value.([]*Object)) == 0), nil
}

// ArrayAt is an Array method.
//
// [] returns the element at an index, a slice by start and length or range,
// or nil if out of range.
func ArrayAt(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	l := self.Value.([]*Object)
	n := len(l)
	var start, length int
	switch x := args[0].Value.(type) {
	case int64:
		if len(args) == 1 {
			if x < 0 {
				x += int64(n)
			}
			if x < 0 || x >= int64(n) {
				return vm.Nil, nil
			}
			return l[x], nil
		}
		m, err := vm.IntegerArgAt(args, 1)
		if err != nil {
			return nil, err
		}
		if x < 0 {
			x += int64(n)
		}
		if x < 0 || x > int64(n) || m < 0 {
			return vm.Nil, nil
		}
		start, length = int(x), int(m)
	case *Range:
		if len(args) != 1 {
			return nil, vm.ArgCount(args, 1, 1)
		}
		var ok bool
		var err error
		start, length, ok, err = vm.rangeSpan(x, n)
		if err != nil {
			return nil, err
		}
		if !ok {
			return vm.Nil, nil
		}
	default:
		return nil, vm.Raisef(TypeError, "no implicit conversion of %s into Integer", vm.convName(args[0]))
	}
	if start+length > n {
		length = n - start
	}
	r := make([]*Object, length)
	copy(r, l[start:])
	return vm.NewArray(r), nil
}

// ArrayFirst is an Array method.
//
// first returns the first element, or an array of the first n.
func ArrayFirst(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return arrayEnd(vm, self, args, false)
}

// ArrayLast is an Array method.
//
// last returns the last element, or an array of the last n.
func ArrayLast(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return arrayEnd(vm, self, args, true)
}

func arrayEnd(vm *VM, self *Object, args []*Object, last bool) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	l := self.Value.([]*Object)
	if len(args) == 0 {
		if len(l) == 0 {
			return vm.Nil, nil
		}
		if last {
			return l[len(l)-1], nil
		}
		return l[0], nil
	}
	k, err := vm.IntegerArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	if k < 0 {
		return nil, vm.Raise(ArgumentError, "negative array size")
	}
	if k > int64(len(l)) {
		k = int64(len(l))
	}
	r := make([]*Object, k)
	if last {
		copy(r, l[len(l)-int(k):])
	} else {
		copy(r, l)
	}
	return vm.NewArray(r), nil
}

// ArrayEq is an Array method.
//
// == returns whether the argument is an array with equal elements.
func ArrayEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	l := self.Value.([]*Object)
	m, ok := args[0].Value.([]*Object)
	if !ok || len(l) != len(m) {
		return vm.False, nil
	}
	rec, done := vm.recursing(self)
	if rec {
		return vm.Bool(self == args[0]), nil
	}
	defer done()
	for i := range l {
		eq, err := vm.Eq(l[i], m[i])
		if err != nil {
			return nil, err
		}
		if !eq {
			return vm.False, nil
		}
	}
	return vm.True, nil
}

// ArrayInclude is an Array method.
//
// include? returns whether any element is == to the argument.
func ArrayInclude(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	for _, v := range self.Value.([]*Object) {
		eq, err := vm.Eq(v, args[0])
		if err != nil {
			return nil, err
		}
		if eq {
			return vm.True, nil
		}
	}
	return vm.False, nil
}

// ArrayEach is an Array method.
//
// each yields each element to the block. Elements appended during iteration
// are visited.
func ArrayEach(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(LocalJumpError, "no block given (yield)")
	}
	for i := 0; i < len(self.Value.([]*Object)); i++ {
		if _, err := blk(self.Value.([]*Object)[i]); err != nil {
			if r, ok := vm.breakResult(err); ok {
				return r, nil
			}
			return nil, err
		}
	}
	return self, nil
}

// ArrayMap is an Array method.
//
// map returns an array of the block's results for each element.
func ArrayMap(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(LocalJumpError, "no block given (yield)")
	}
	l := self.Value.([]*Object)
	r := make([]*Object, 0, len(l))
	for _, v := range l {
		x, err := blk(v)
		if err != nil {
			if b, ok := vm.breakResult(err); ok {
				return b, nil
			}
			return nil, err
		}
		if x == nil {
			x = vm.Nil
		}
		r = append(r, x)
	}
	return vm.NewArray(r), nil
}

// ArrayJoin is an Array method.
//
// join converts each element to a string and concatenates them with an
// optional separator. Nested arrays are joined recursively.
func ArrayJoin(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	sep := ""
	if len(args) == 1 && args[0] != vm.Nil {
		s, err := vm.StringArgAt(args, 0)
		if err != nil {
			return nil, err
		}
		sep = s.String()
	}
	var b strings.Builder
	if err := vm.joinInto(&b, self, sep); err != nil {
		return nil, err
	}
	return vm.NewString(b.String()), nil
}

func (vm *VM) joinInto(b *strings.Builder, self *Object, sep string) error {
	rec, done := vm.recursing(self)
	if rec {
		return vm.Raise(ArgumentError, "recursive array join")
	}
	defer done()
	for i, v := range self.Value.([]*Object) {
		if i > 0 {
			b.WriteString(sep)
		}
		if v.tag == ArrayTag {
			if err := vm.joinInto(b, v, sep); err != nil {
				return err
			}
			continue
		}
		s, err := vm.AsString(v)
		if err != nil {
			return err
		}
		b.WriteString(s)
	}
	return nil
}

// ArrayInspect is an Array method.
//
// inspect returns a bracketed list of the inspections of each element. An
// array that contains itself shows as [...] at the point of recursion.
func ArrayInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	rec, done := vm.recursing(self)
	if rec {
		return vm.NewString("[...]"), nil
	}
	defer done()
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range self.Value.([]*Object) {
		if i > 0 {
			b.WriteString(", ")
		}
		s, err := vm.Inspect(v)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	b.WriteByte(']')
	return vm.NewString(b.String()), nil
}
