package internal

// Exception is the primitive value of exception objects.
type Exception struct {
	// Message is the exception's message.
	Message string
	// Result is the value carried by StopIteration.
	Result *Object
}

// exceptionTag is the Tag type for Exception objects.
type exceptionTag struct{}

func (exceptionTag) CloneValue(value interface{}) interface{} {
	e := *value.(*Exception)
	return &e
}

func (exceptionTag) String() string {
	return "Exception"
}

// ExceptionTag is the Tag for Exception objects.
var ExceptionTag Tag = exceptionTag{}

// Exception class names.
const (
	ExceptionClass           = "Exception"
	ScriptError              = "ScriptError"
	NotImplementedError      = "NotImplementedError"
	SyntaxError              = "SyntaxError"
	StandardError            = "StandardError"
	ArgumentError            = "ArgumentError"
	EncodingError            = "EncodingError"
	InvalidByteSequenceError = "Encoding::InvalidByteSequenceError"
	UndefinedConversionError = "Encoding::UndefinedConversionError"
	CompatibilityError       = "Encoding::CompatibilityError"
	IndexError               = "IndexError"
	KeyError                 = "KeyError"
	StopIteration            = "StopIteration"
	LocalJumpError           = "LocalJumpError"
	NameError                = "NameError"
	NoMethodError            = "NoMethodError"
	RangeError               = "RangeError"
	FloatDomainError         = "FloatDomainError"
	RuntimeError             = "RuntimeError"
	FrozenError              = "FrozenError"
	TypeError                = "TypeError"
	SystemExit               = "SystemExit"
)

// exceptionTree lists each exception class after its superclass.
var exceptionTree = [][2]string{
	{ScriptError, ExceptionClass},
	{NotImplementedError, ScriptError},
	{SyntaxError, ScriptError},
	{StandardError, ExceptionClass},
	{ArgumentError, StandardError},
	{EncodingError, StandardError},
	{InvalidByteSequenceError, EncodingError},
	{UndefinedConversionError, EncodingError},
	{CompatibilityError, EncodingError},
	{IndexError, StandardError},
	{KeyError, IndexError},
	{StopIteration, IndexError},
	{LocalJumpError, StandardError},
	{NameError, StandardError},
	{NoMethodError, NameError},
	{RangeError, StandardError},
	{FloatDomainError, RangeError},
	{RuntimeError, StandardError},
	{FrozenError, RuntimeError},
	{TypeError, StandardError},
	{SystemExit, ExceptionClass},
}

// NewException creates an exception object of class c with the given message.
func (vm *VM) NewException(c *Class, msg string) *Object {
	return vm.ObjectWith(c, &Exception{Message: msg}, ExceptionTag)
}

// ExceptionMessage returns the message of an exception object.
func ExceptionMessage(o *Object) string {
	if e, ok := o.Value.(*Exception); ok {
		return e.Message
	}
	return ""
}

func (vm *VM) initException() {
	slots := Methods{
		"message":      ExceptionMessageFn,
		"to_s":         ExceptionMessageFn,
		"inspect":      ExceptionInspect,
		"full_message": ExceptionFullMessage,
		"==":           ExceptionEq,
	}
	vm.ExceptionClass = vm.defineClass(ExceptionClass, vm.ObjectClass, slots)
	for _, p := range exceptionTree {
		vm.defineClass(p[0], vm.CoreClass(p[1]), nil)
	}
	vm.CoreClass(StopIteration).Define("result", StopIterationResult)
}

func exceptionValue(vm *VM, self *Object) (*Exception, error) {
	e, ok := self.Value.(*Exception)
	if !ok {
		return nil, vm.Raisef(TypeError, "wrong argument type %s (expected Exception)", vm.ClassName(self))
	}
	return e, nil
}

// ExceptionMessageFn is an Exception method.
//
// message returns the exception's message, or its class name if the message
// is empty.
func ExceptionMessageFn(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	e, err := exceptionValue(vm, self)
	if err != nil {
		return nil, err
	}
	if e.Message == "" {
		return vm.NewString(vm.ClassName(self)), nil
	}
	return vm.NewString(e.Message), nil
}

// ExceptionInspect is an Exception method.
//
// inspect returns a representation including the class and message.
func ExceptionInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	e, err := exceptionValue(vm, self)
	if err != nil {
		return nil, err
	}
	name := vm.ClassName(self)
	if e.Message == "" {
		return vm.NewString(name), nil
	}
	return vm.NewString("#<" + name + ": " + e.Message + ">"), nil
}

// ExceptionFullMessage is an Exception method.
//
// full_message returns the message followed by the class name in
// parentheses.
func ExceptionFullMessage(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	e, err := exceptionValue(vm, self)
	if err != nil {
		return nil, err
	}
	msg := e.Message
	if msg == "" {
		msg = "unhandled exception"
	}
	return vm.NewString(msg + " (" + vm.ClassName(self) + ")"), nil
}

// ExceptionEq is an Exception method.
//
// == is true when the argument is an exception of the same class with the
// same message.
func ExceptionEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	o := args[0]
	if o == self {
		return vm.True, nil
	}
	if o.tag != ExceptionTag || o.class != self.class {
		return vm.False, nil
	}
	return vm.Bool(ExceptionMessage(o) == ExceptionMessage(self)), nil
}

// StopIterationResult is a StopIteration method.
//
// result returns the value carried by the exception.
func StopIterationResult(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	e, err := exceptionValue(vm, self)
	if err != nil {
		return nil, err
	}
	if e.Result == nil {
		return vm.Nil, nil
	}
	return e.Result, nil
}
