package internal

// NilTag, TrueTag, and FalseTag are the Tags of the singleton objects.
var (
	NilTag   = BasicTag("nil")
	TrueTag  = BasicTag("true")
	FalseTag = BasicTag("false")
)

func (vm *VM) initNil() {
	vm.NilClass = vm.defineClass("NilClass", vm.ObjectClass, Methods{
		"to_s":    NilToS,
		"to_a":    NilToA,
		"inspect": NilInspect,
		"nil?":    TrueMethod,
		"&":       FalseMethod,
		"|":       BoolOr,
		"!":       TrueMethod,
	})
	vm.Nil = vm.ObjectWith(vm.NilClass, nil, NilTag).Freeze()
}

func (vm *VM) initBool() {
	vm.TrueClass = vm.defineClass("TrueClass", vm.ObjectClass, Methods{
		"to_s":    BoolToS,
		"inspect": BoolToS,
		"&":       BoolAnd,
		"|":       TrueMethod,
		"!":       FalseMethod,
	})
	vm.FalseClass = vm.defineClass("FalseClass", vm.ObjectClass, Methods{
		"to_s":    BoolToS,
		"inspect": BoolToS,
		"&":       FalseMethod,
		"|":       BoolOr,
		"!":       TrueMethod,
	})
	vm.True = vm.ObjectWith(vm.TrueClass, true, TrueTag).Freeze()
	vm.False = vm.ObjectWith(vm.FalseClass, false, FalseTag).Freeze()
}

// TrueMethod is a method shared by several classes.
//
// It returns true.
func TrueMethod(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.True, nil
}

// FalseMethod is a method shared by several classes.
//
// It returns false.
func FalseMethod(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.False, nil
}

// NilToS is a NilClass method.
//
// to_s returns an empty string.
func NilToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(""), nil
}

// NilToA is a NilClass method.
//
// to_a returns an empty array.
func NilToA(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewArray(nil), nil
}

// NilInspect is a NilClass method.
//
// inspect returns "nil".
func NilInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString("nil"), nil
}

// BoolToS is a TrueClass and FalseClass method.
//
// to_s returns "true" or "false".
func BoolToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if self == vm.True {
		return vm.NewString("true"), nil
	}
	return vm.NewString("false"), nil
}

// BoolAnd is a TrueClass method.
//
// & returns the truthiness of its argument.
func BoolAnd(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	return vm.Bool(vm.Truthy(args[0])), nil
}

// BoolOr is a NilClass and FalseClass method.
//
// | returns the truthiness of its argument.
func BoolOr(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	return vm.Bool(vm.Truthy(args[0])), nil
}
