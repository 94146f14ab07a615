package internal

import (
	"errors"
	"fmt"
)

// Fn is the type of builtin method implementations. self is the receiver,
// args are the positional arguments, and blk is the attached block, which may
// be nil.
type Fn func(vm *VM, self *Object, args []*Object, blk Block) (*Object, error)

// Block is a callable argument attached to a method call. A block ends the
// enumeration that is driving it by returning a *Break.
type Block func(args ...*Object) (*Object, error)

// Raised is the error carrying a raised exception. It propagates through Go
// returns until something rescues it.
type Raised struct {
	// Exception is the exception object. Its tag is ExceptionTag.
	Exception *Object
}

// Error returns the exception's class name and message.
func (r *Raised) Error() string {
	name := "Exception"
	if c := r.Exception.Class(); c != nil {
		name = c.Name()
	}
	if e, ok := r.Exception.Value.(*Exception); ok && e.Message != "" {
		return name + ": " + e.Message
	}
	return name
}

// Break is the error a block returns to stop an enumeration early. The
// enumeration returns Result as its value.
type Break struct {
	Result *Object
}

func (b *Break) Error() string {
	return "break from block"
}

// Error is a condition produced by a primitive operation that has no VM at
// hand. Class names the exception class to raise for it. VM.RaiseError turns
// it into a raised exception.
type Error struct {
	Class   string
	Message string
}

func (e *Error) Error() string {
	return e.Class + ": " + e.Message
}

// errorf creates an *Error.
func errorf(class, format string, args ...interface{}) error {
	return &Error{Class: class, Message: fmt.Sprintf(format, args...)}
}

// Raise creates an exception of the named class and returns it as a *Raised.
func (vm *VM) Raise(class, msg string) error {
	return &Raised{Exception: vm.NewException(vm.CoreClass(class), msg)}
}

// Raisef creates an exception of the named class with a formatted message and
// returns it as a *Raised.
func (vm *VM) Raisef(class, format string, args ...interface{}) error {
	return vm.Raise(class, fmt.Sprintf(format, args...))
}

// RaiseError converts a Go error into one carrying an exception. Raised
// exceptions and breaks are returned unchanged, conditions from primitive
// operations become exceptions of their class, and any other error becomes a
// RuntimeError.
func (vm *VM) RaiseError(err error) error {
	if err == nil {
		return nil
	}
	var r *Raised
	if errors.As(err, &r) {
		return err
	}
	var b *Break
	if errors.As(err, &b) {
		return err
	}
	var e *Error
	if errors.As(err, &e) {
		return vm.Raise(e.Class, e.Message)
	}
	return vm.Raise(RuntimeError, err.Error())
}

// Rescue returns the exception carried by err if it is an instance of the
// named class.
func (vm *VM) Rescue(err error, class string) (*Object, bool) {
	var r *Raised
	if !errors.As(err, &r) {
		return nil, false
	}
	if !vm.IsKindOf(r.Exception, vm.CoreClass(class)) {
		return nil, false
	}
	return r.Exception, true
}

// Yield calls blk with args. If blk is nil, it raises LocalJumpError.
func (vm *VM) Yield(blk Block, args ...*Object) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(LocalJumpError, "no block given (yield)")
	}
	r, err := blk(args...)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = vm.Nil
	}
	return r, nil
}

// breakResult reports whether err is a *Break and returns its result.
func (vm *VM) breakResult(err error) (*Object, bool) {
	var b *Break
	if !errors.As(err, &b) {
		return nil, false
	}
	if b.Result == nil {
		return vm.Nil, true
	}
	return b.Result, true
}
