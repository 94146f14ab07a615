package internal

import (
	"math"
	"strconv"
)

// IntegerTag is the Tag for Integer objects. The value is an int64.
var IntegerTag = BasicTag("Integer")

// FloatTag is the Tag for Float objects. The value is a float64.
var FloatTag = BasicTag("Float")

// NewInteger creates an Integer object. Values within the VM's integer cache
// range share a single object.
func (vm *VM) NewInteger(n int64) *Object {
	if lo := vm.Config.IntCacheLow; n >= lo && n <= vm.Config.IntCacheHigh {
		if x := vm.numberCache[n-lo]; x != nil {
			return x
		}
	}
	return vm.ObjectWith(vm.IntegerClass, n, IntegerTag).Freeze()
}

// NewFloat creates a Float object.
func (vm *VM) NewFloat(f float64) *Object {
	return vm.ObjectWith(vm.FloatClass, f, FloatTag).Freeze()
}

// IntegerArgAt returns the int64 value of the nth argument, raising TypeError
// if it is not an Integer.
func (vm *VM) IntegerArgAt(args []*Object, n int) (int64, error) {
	x, ok := args[n].Value.(int64)
	if !ok || args[n].tag != IntegerTag {
		return 0, vm.Raisef(TypeError, "no implicit conversion of %s into Integer", vm.convName(args[n]))
	}
	return x, nil
}

// convName names an object's class the way conversion errors do.
func (vm *VM) convName(o *Object) string {
	switch o {
	case vm.Nil:
		return "nil"
	case vm.True:
		return "true"
	case vm.False:
		return "false"
	}
	return vm.ClassName(o)
}

func (vm *VM) initNumber() {
	vm.IntegerClass = vm.defineClass("Integer", vm.ObjectClass, Methods{
		"to_s":    IntegerToS,
		"inspect": IntegerToS,
		"to_i":    ObjectSelf,
		"to_f":    IntegerToF,
		"succ":    IntegerSucc,
		"next":    IntegerSucc,
		"+":       IntegerAdd,
		"-":       IntegerSub,
		"*":       IntegerMul,
		"==":      NumberEq,
		"<=>":     NumberCmp,
		"hash":    NumberHash,
	})
	vm.IntegerClass.Include(vm.ComparableModule)
	vm.FloatClass = vm.defineClass("Float", vm.ObjectClass, Methods{
		"to_s":    FloatToS,
		"inspect": FloatToS,
		"to_f":    ObjectSelf,
		"to_i":    FloatToI,
		"==":      NumberEq,
		"<=>":     NumberCmp,
		"hash":    NumberHash,
	})
	vm.FloatClass.Include(vm.ComparableModule)

	lo, hi := vm.Config.IntCacheLow, vm.Config.IntCacheHigh
	vm.numberCache = make([]*Object, hi-lo+1)
	for i := range vm.numberCache {
		vm.numberCache[i] = vm.ObjectWith(vm.IntegerClass, lo+int64(i), IntegerTag).Freeze()
	}
}

// ObjectSelf is a method shared by several classes.
//
// It returns the receiver.
func ObjectSelf(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return self, nil
}

// IntegerToS is an Integer method.
//
// to_s returns the decimal representation of the integer, or the
// representation in the given radix.
func IntegerToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	base := int64(10)
	if len(args) == 1 {
		var err error
		if base, err = vm.IntegerArgAt(args, 0); err != nil {
			return nil, err
		}
		if base < 2 || base > 36 {
			return nil, vm.Raisef(ArgumentError, "invalid radix %d", base)
		}
	}
	return vm.NewString(strconv.FormatInt(self.Value.(int64), int(base))), nil
}

// IntegerToF is an Integer method.
//
// to_f converts the integer to a Float.
func IntegerToF(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewFloat(float64(self.Value.(int64))), nil
}

// IntegerSucc is an Integer method.
//
// succ returns the next integer.
func IntegerSucc(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(self.Value.(int64) + 1), nil
}

func integerArith(vm *VM, self *Object, args []*Object, op byte) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	x := self.Value.(int64)
	switch y := args[0].Value.(type) {
	case int64:
		switch op {
		case '+':
			return vm.NewInteger(x + y), nil
		case '-':
			return vm.NewInteger(x - y), nil
		default:
			return vm.NewInteger(x * y), nil
		}
	case float64:
		f := float64(x)
		switch op {
		case '+':
			return vm.NewFloat(f + y), nil
		case '-':
			return vm.NewFloat(f - y), nil
		default:
			return vm.NewFloat(f * y), nil
		}
	}
	return nil, vm.Raisef(TypeError, "%s can't be coerced into Integer", vm.convName(args[0]))
}

// IntegerAdd is an Integer method.
//
// + adds.
func IntegerAdd(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return integerArith(vm, self, args, '+')
}

// IntegerSub is an Integer method.
//
// - subtracts.
func IntegerSub(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return integerArith(vm, self, args, '-')
}

// IntegerMul is an Integer method.
//
// * multiplies.
func IntegerMul(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return integerArith(vm, self, args, '*')
}

// FloatToS is a Float method.
//
// to_s returns the shortest decimal representation of the float.
func FloatToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(formatFloat(self.Value.(float64))), nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'n', 'I':
			return s
		}
	}
	return s + ".0"
}

// FloatToI is a Float method.
//
// to_i truncates the float to an Integer.
func FloatToI(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	f := self.Value.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, vm.Raisef(FloatDomainError, "%s", formatFloat(f))
	}
	return vm.NewInteger(int64(f)), nil
}

// NumberEq is an Integer and Float method.
//
// == compares numerically.
func NumberEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	ok, err := vm.Eq(self, args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(ok), nil
}

// NumberCmp is an Integer and Float method.
//
// <=> returns -1, 0, or 1, or nil if the argument is not numeric.
func NumberCmp(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	c, ok, err := vm.Compare(self, args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return vm.Nil, nil
	}
	return vm.NewInteger(int64(c)), nil
}

// NumberHash is an Integer and Float method.
//
// hash returns a hash of the number's value.
func NumberHash(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	var bits uint64
	switch x := self.Value.(type) {
	case int64:
		bits = uint64(x)
	case float64:
		bits = math.Float64bits(x)
	}
	return vm.NewInteger(int64(mixHash(bits))), nil
}

// mixHash scrambles the bits of x.
func mixHash(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
