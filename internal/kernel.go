package internal

import (
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// initObject creates the roots of the class hierarchy. No class objects exist
// until it returns.
func (vm *VM) initObject() {
	vm.BasicObjectClass = NewClass("BasicObject", nil)
	vm.BasicObjectClass.DefineMethods(Methods{
		"!":          KernelNot,
		"!=":         KernelNe,
		"==":         KernelEqual,
		"__id__":     KernelObjectID,
		"__send__":   KernelSend,
		"equal?":     KernelEqual,
		"initialize": KernelInitialize,
	})
	vm.Classes.SetConstant("BasicObject", vm.BasicObjectClass)
	vm.ObjectClass = vm.defineClass("Object", vm.BasicObjectClass, nil)
	vm.ModuleClass = vm.defineClass("Module", vm.ObjectClass, Methods{
		"<":                ModuleLt,
		"===":              ModuleCaseEq,
		"ancestors":        ModuleAncestors,
		"define_method":    ModuleDefineMethod,
		"include":          ModuleInclude,
		"include?":         ModuleIncludes,
		"instance_methods": ModuleInstanceMethods,
		"inspect":          ModuleToS,
		"method_defined?":  ModuleMethodDefined,
		"name":             ModuleName,
		"to_s":             ModuleToS,
	})
	vm.ClassClass = vm.defineClass("Class", vm.ModuleClass, Methods{
		"allocate":   ClassAllocate,
		"new":        ClassNew,
		"superclass": ClassSuperclass,
	})
	vm.KernelModule = vm.defineModule("Kernel", nil)
	vm.ObjectClass.Include(vm.KernelModule)
	vm.ComparableModule = vm.defineModule("Comparable", Methods{
		"<":        ComparableLt,
		"<=":       ComparableLe,
		"==":       ComparableEq,
		">":        ComparableGt,
		">=":       ComparableGe,
		"between?": ComparableBetween,
		"clamp":    ComparableClamp,
	})
	vm.Main = vm.NewObject(vm.ObjectClass)
	vm.Main.SingletonClass().DefineMethods(Methods{
		"inspect": MainToS,
		"to_s":    MainToS,
	})
}

func (vm *VM) initKernel() {
	slots := Methods{
		"<=>":                        KernelCmp,
		"===":                        KernelCaseEq,
		"Array":                      KernelArray,
		"__dir__":                    KernelDir,
		"__method__":                 KernelThisMethod,
		"at_exit":                    KernelAtExit,
		"block_given?":               KernelBlockGiven,
		"class":                      KernelClass,
		"clone":                      KernelClone,
		"define_singleton_method":    KernelDefineSingletonMethod,
		"dup":                        KernelDup,
		"eql?":                       KernelEqual,
		"exit":                       KernelExit,
		"freeze":                     KernelFreeze,
		"frozen?":                    KernelFrozen,
		"hash":                       KernelHash,
		"inspect":                    KernelInspect,
		"instance_of?":               KernelInstanceOf,
		"instance_variable_defined?": KernelIvarDefined,
		"instance_variable_get":      KernelIvarGet,
		"instance_variable_set":      KernelIvarSet,
		"instance_variables":         KernelIvars,
		"is_a?":                      KernelIsA,
		"itself":                     ObjectSelf,
		"lambda":                     KernelLambda,
		"loop":                       KernelLoop,
		"methods":                    KernelMethods,
		"nil?":                       FalseMethod,
		"object_id":                  KernelObjectID,
		"p":                          KernelP,
		"print":                      KernelPrint,
		"proc":                       KernelProc,
		"puts":                       KernelPuts,
		"raise":                      KernelRaise,
		"respond_to?":                KernelRespondTo,
		"send":                       KernelSend,
		"singleton_class":            KernelSingletonClass,
		"sleep":                      KernelSleep,
		"spawn":                      KernelSpawn,
		"tap":                        KernelTap,
		"to_s":                       KernelToS,
	}
	slots["kind_of?"] = slots["is_a?"]
	slots["public_send"] = slots["send"]
	slots["fail"] = slots["raise"]
	vm.KernelModule.DefineMethods(slots)
}

// MainToS is a method of the top-level object.
//
// to_s returns "main".
func MainToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString("main"), nil
}

// KernelInitialize is a BasicObject method.
//
// initialize does nothing.
func KernelInitialize(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 0); err != nil {
		return nil, err
	}
	return vm.Nil, nil
}

// KernelEqual is a BasicObject method.
//
// equal? returns whether the argument is the receiver itself.
func KernelEqual(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	return vm.Bool(self == args[0]), nil
}

// KernelNe is a BasicObject method.
//
// != negates ==.
func KernelNe(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	eq, err := vm.Eq(self, args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(!eq), nil
}

// KernelNot is a BasicObject method.
//
// ! returns whether the receiver is nil or false.
func KernelNot(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(!vm.Truthy(self)), nil
}

// KernelObjectID is a Kernel method.
//
// object_id returns the object's identity as an Integer.
func KernelObjectID(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(self.ObjectID()), nil
}

// KernelSend is a Kernel method.
//
// send invokes the method named by its first argument with the remaining
// arguments and the block.
func KernelSend(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if len(args) == 0 {
		return nil, vm.Raise(ArgumentError, "no method name given")
	}
	name, err := vm.SymbolName(args[0])
	if err != nil {
		return nil, err
	}
	return vm.SendBlock(self, name, blk, args[1:]...)
}

// KernelFreeze is a Kernel method.
//
// freeze prevents further modification of the receiver and returns it.
func KernelFreeze(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return self.Freeze(), nil
}

// KernelFrozen is a Kernel method.
//
// frozen? returns whether the receiver is frozen.
func KernelFrozen(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(self.IsFrozen()), nil
}

// KernelClass is a Kernel method.
//
// class returns the receiver's nominal class, or nil if it has none.
func KernelClass(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if self.class == nil {
		return vm.Nil, nil
	}
	return vm.ClassObject(self.class), nil
}

// KernelSingletonClass is a Kernel method.
//
// singleton_class returns the receiver's singleton class, creating it if
// needed. Immediate values have none.
func KernelSingletonClass(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	switch self.tag {
	case IntegerTag, FloatTag, SymbolTag:
		return nil, vm.Raise(TypeError, "can't define singleton")
	case NilTag, TrueTag, FalseTag:
		return vm.ClassObject(self.class), nil
	}
	return vm.ClassObject(vm.SingletonClass(self)), nil
}

// ivarName matches valid instance variable names.
var ivarName = regexp.MustCompile(`^@[A-Za-z_][A-Za-z0-9_]*$`)

func (vm *VM) ivarNameArg(o *Object) (string, error) {
	name, err := vm.SymbolName(o)
	if err != nil {
		return "", err
	}
	if !ivarName.MatchString(name) {
		return "", vm.Raisef(NameError, "'%s' is not allowed as an instance variable name", name)
	}
	return name, nil
}

// KernelIvarGet is a Kernel method.
//
// instance_variable_get returns the value of the named instance variable, or
// nil if it is unset.
func KernelIvarGet(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	name, err := vm.ivarNameArg(args[0])
	if err != nil {
		return nil, err
	}
	if v, ok := self.InstanceVariable(name); ok {
		return v, nil
	}
	return vm.Nil, nil
}

// KernelIvarSet is a Kernel method.
//
// instance_variable_set sets the named instance variable and returns the
// value.
func KernelIvarSet(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 2, 2); err != nil {
		return nil, err
	}
	name, err := vm.ivarNameArg(args[0])
	if err != nil {
		return nil, err
	}
	if err := vm.CheckFrozen(self); err != nil {
		return nil, err
	}
	self.SetInstanceVariable(name, args[1])
	return args[1], nil
}

// KernelIvarDefined is a Kernel method.
//
// instance_variable_defined? returns whether the named instance variable is
// set.
func KernelIvarDefined(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	name, err := vm.ivarNameArg(args[0])
	if err != nil {
		return nil, err
	}
	_, ok := self.InstanceVariable(name)
	return vm.Bool(ok), nil
}

// KernelIvars is a Kernel method.
//
// instance_variables returns the names of the receiver's instance variables
// as Symbols, in order of first assignment.
func KernelIvars(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	names := self.InstanceVariableNames()
	r := make([]*Object, len(names))
	for i, name := range names {
		r[i] = vm.Intern(name)
	}
	return vm.NewArray(r), nil
}

// KernelP is a Kernel method.
//
// p writes the inspect representation of each argument on its own line. It
// returns its argument, or an array of its arguments if there are several.
func KernelP(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	var b strings.Builder
	for _, arg := range args {
		s, err := vm.Inspect(arg)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	if err := vm.write(b.String()); err != nil {
		return nil, err
	}
	switch len(args) {
	case 0:
		return vm.Nil, nil
	case 1:
		return args[0], nil
	}
	return vm.NewArray(append([]*Object(nil), args...)), nil
}

// KernelPrint is a Kernel method.
//
// print writes the to_s representation of each argument.
func KernelPrint(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	var b strings.Builder
	for _, arg := range args {
		s, err := vm.AsString(arg)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return vm.Nil, vm.write(b.String())
}

// KernelPuts is a Kernel method.
//
// puts writes each argument followed by a newline unless it already ends in
// one. Arrays are written one element per line. With no arguments, it writes
// a single newline.
func KernelPuts(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	var b strings.Builder
	if len(args) == 0 {
		b.WriteByte('\n')
	}
	for _, arg := range args {
		if err := vm.putsLine(&b, arg); err != nil {
			return nil, err
		}
	}
	return vm.Nil, vm.write(b.String())
}

func (vm *VM) putsLine(b *strings.Builder, arg *Object) error {
	if l, ok := arg.Value.([]*Object); ok && arg.tag == ArrayTag {
		rec, done := vm.recursing(arg)
		if rec {
			b.WriteString("[...]\n")
			return nil
		}
		defer done()
		if len(l) == 0 {
			b.WriteByte('\n')
		}
		for _, v := range l {
			if err := vm.putsLine(b, v); err != nil {
				return err
			}
		}
		return nil
	}
	s, err := vm.AsString(arg)
	if err != nil {
		return err
	}
	b.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
	return nil
}

// write sends s to the VM's standard output.
func (vm *VM) write(s string) error {
	if _, err := io.WriteString(vm.Stdout, s); err != nil {
		return vm.RaiseError(err)
	}
	return nil
}

// KernelRaise is a Kernel method.
//
// raise raises an exception. With no arguments, it raises RuntimeError. A
// String argument is the message of a RuntimeError. A class argument is
// instantiated with an optional message. An exception argument is raised
// as-is.
func KernelRaise(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 2); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, vm.Raise(RuntimeError, "unhandled exception")
	}
	if s, ok := args[0].Value.(*String); ok {
		if len(args) > 1 {
			return nil, vm.Raise(TypeError, "exception class/object expected")
		}
		return nil, vm.Raise(RuntimeError, s.String())
	}
	if args[0].tag == ExceptionTag {
		exc := args[0]
		if len(args) == 2 {
			msg, err := vm.StringArgAt(args, 1)
			if err != nil {
				return nil, err
			}
			exc = vm.NewException(exc.class, msg.String())
		}
		return nil, &Raised{Exception: exc}
	}
	if c, ok := args[0].Value.(*Class); ok && args[0].tag == ClassTag && vm.IsSubclass(c, vm.ExceptionClass) {
		msg := ""
		if len(args) == 2 {
			s, err := vm.AsString(args[1])
			if err != nil {
				return nil, err
			}
			msg = s
		}
		return nil, &Raised{Exception: vm.NewException(c, msg)}
	}
	return nil, vm.Raise(TypeError, "exception class/object expected")
}

// KernelLoop is a Kernel method.
//
// loop calls the block repeatedly until it breaks or raises StopIteration.
// On StopIteration, loop returns the exception's result.
func KernelLoop(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(LocalJumpError, "no block given (yield)")
	}
	for {
		if _, err := blk(); err != nil {
			if r, ok := vm.breakResult(err); ok {
				return r, nil
			}
			if exc, ok := vm.Rescue(err, StopIteration); ok {
				if e := exc.Value.(*Exception); e.Result != nil {
					return e.Result, nil
				}
				return vm.Nil, nil
			}
			return nil, err
		}
	}
}

// KernelTap is a Kernel method.
//
// tap yields the receiver to the block and returns the receiver.
func KernelTap(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if _, err := vm.Yield(blk, self); err != nil {
		return nil, err
	}
	return self, nil
}

// KernelMethods is a Kernel method.
//
// methods returns the names of the methods the receiver responds to as
// Symbols.
func KernelMethods(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	names := vm.MethodNames(self)
	r := make([]*Object, len(names))
	for i, name := range names {
		r[i] = vm.Intern(name)
	}
	return vm.NewArray(r), nil
}

// KernelThisMethod is a Kernel method.
//
// __method__ returns the name of the method from which it is called as a
// Symbol, or nil at the top level.
func KernelThisMethod(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	name, ok := vm.ThisMethod()
	if !ok {
		return vm.Nil, nil
	}
	return vm.Intern(name), nil
}

// KernelDir is a Kernel method.
//
// __dir__ returns the absolute directory of the file being run, or nil if the
// VM is not running a file.
func KernelDir(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if vm.File == "" {
		return vm.Nil, nil
	}
	p, err := filepath.Abs(vm.File)
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.NewString(filepath.Dir(p)), nil
}

// foreverSleep is the duration of a sleep with no argument.
const foreverSleep = time.Duration(math.MaxInt64)

// KernelSleep is a Kernel method.
//
// sleep suspends for a number of seconds, or indefinitely with no argument.
// It returns the number of seconds slept, rounded.
func KernelSleep(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	d := foreverSleep
	if len(args) == 1 {
		var secs float64
		switch x := args[0].Value.(type) {
		case int64:
			secs = float64(x)
		case float64:
			secs = x
		default:
			return nil, vm.Raisef(TypeError, "can't convert %s into time interval", vm.ClassName(args[0]))
		}
		if secs < 0 || math.IsNaN(secs) {
			return nil, vm.Raise(ArgumentError, "time interval must not be negative")
		}
		if secs < foreverSleep.Seconds() {
			d = time.Duration(secs * float64(time.Second))
		}
	}
	vm.Log.Debugf("sleep %v", d)
	start := time.Now()
	vm.Process.Sleep(d)
	return vm.NewInteger(int64(math.Round(time.Since(start).Seconds()))), nil
}

// KernelSpawn is a Kernel method.
//
// spawn starts a command without waiting for it and returns its process ID.
// A single argument is run by the shell; several are the program and its
// arguments.
func KernelSpawn(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, -1); err != nil {
		return nil, err
	}
	argv := make([]string, len(args))
	for i := range args {
		s, err := vm.StringArgAt(args, i)
		if err != nil {
			return nil, err
		}
		if strings.IndexByte(s.String(), 0) >= 0 {
			return nil, vm.Raise(ArgumentError, "string contains null byte")
		}
		argv[i] = s.String()
	}
	vm.Log.Debugf("spawn %q", argv)
	pid, err := vm.Process.Spawn(argv)
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.NewInteger(int64(pid)), nil
}

// KernelExit is a Kernel method.
//
// exit runs at_exit handlers and ends the process with a status. true means
// 0, false means 1, and the default is true. If the process does not end,
// exit raises SystemExit.
func KernelExit(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	status := 0
	if len(args) == 1 {
		switch x := args[0].Value.(type) {
		case int64:
			status = int(x)
		case bool:
			if !x {
				status = 1
			}
		default:
			return nil, vm.Raisef(TypeError, "no implicit conversion of %s into Integer", vm.convName(args[0]))
		}
	}
	if err := vm.RunAtExit(); err != nil {
		return nil, err
	}
	vm.Log.Debugf("exit %d", status)
	vm.Process.Exit(status)
	exc := vm.NewException(vm.CoreClass(SystemExit), "exit")
	exc.SetInstanceVariable("@status", vm.NewInteger(int64(status)))
	return nil, &Raised{Exception: exc}
}

// RunAtExit calls the handlers registered with at_exit in reverse order of
// registration. Handlers run at most once per VM.
func (vm *VM) RunAtExit() error {
	if vm.exited {
		return nil
	}
	vm.exited = true
	for i := len(vm.atExit) - 1; i >= 0; i-- {
		vm.Log.Debugf("running at_exit handler %d", i)
		if _, err := vm.Send(vm.atExit[i], "call"); err != nil {
			return err
		}
	}
	return nil
}

// KernelAtExit is a Kernel method.
//
// at_exit registers the block to run when the program exits and returns it
// as a Proc.
func KernelAtExit(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(ArgumentError, "called without a block")
	}
	p := vm.NewProc(blk, false)
	vm.atExit = append(vm.atExit, p)
	return p, nil
}

func (vm *VM) classArg(o *Object) (*Class, error) {
	c, ok := o.Value.(*Class)
	if !ok || o.tag != ClassTag {
		return nil, vm.Raise(TypeError, "class or module required")
	}
	return c, nil
}

// KernelIsA is a Kernel method.
//
// is_a? returns whether the argument is the receiver's class, one of its
// ancestors, or its singleton class.
func KernelIsA(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	c, err := vm.classArg(args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(vm.IsKindOf(self, c)), nil
}

// KernelInstanceOf is a Kernel method.
//
// instance_of? returns whether the argument is exactly the receiver's class.
func KernelInstanceOf(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	c, err := vm.classArg(args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(self.class == c), nil
}

// blockFn adapts a block to a method implementation. The receiver is not
// visible to the block.
func blockFn(p Block) Fn {
	return func(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
		r, err := p(args...)
		if err != nil {
			if b, ok := vm.breakResult(err); ok {
				return b, nil
			}
			return nil, err
		}
		return r, nil
	}
}

// methodBody gets the body for define_method and define_singleton_method from
// the second argument or the block.
func (vm *VM) methodBody(args []*Object, blk Block) (string, Fn, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return "", nil, err
	}
	name, err := vm.SymbolName(args[0])
	if err != nil {
		return "", nil, err
	}
	if len(args) == 2 {
		if blk, err = vm.BlockArg(args[1]); err != nil {
			return "", nil, err
		}
	}
	if blk == nil {
		return "", nil, vm.Raise(ArgumentError, "tried to create Proc object without a block")
	}
	return name, blockFn(blk), nil
}

// KernelDefineSingletonMethod is a Kernel method.
//
// define_singleton_method defines a method on the receiver's singleton class
// from a block or Proc and returns its name as a Symbol.
func KernelDefineSingletonMethod(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	name, fn, err := vm.methodBody(args, blk)
	if err != nil {
		return nil, err
	}
	if err := vm.CheckFrozen(self); err != nil {
		return nil, err
	}
	vm.SingletonClass(self).Define(name, fn)
	return vm.Intern(name), nil
}

// KernelHash is a Kernel method.
//
// hash returns a hash of the receiver's identity.
func KernelHash(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(mixHash(uint64(self.id)))), nil
}

// KernelInspect is a Kernel method.
//
// inspect returns the class name and identity along with any instance
// variables.
func KernelInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	rec, done := vm.recursing(self)
	if rec {
		return vm.Sprintf("#<%s:%#016x ...>", vm.ClassName(self), self.id), nil
	}
	defer done()
	s, err := vm.anyInspect(self)
	if err != nil {
		return nil, err
	}
	return vm.NewString(s), nil
}

// KernelToS is a Kernel method.
//
// to_s returns the class name and identity.
func KernelToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(vm.anyToS(self)), nil
}

// KernelArray is a Kernel method.
//
// Array converts its argument to an array: nil becomes empty, arrays are
// returned as-is, objects responding to to_a are converted, and anything else
// is wrapped.
func KernelArray(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	o := args[0]
	switch {
	case o.tag == ArrayTag:
		return o, nil
	case o == vm.Nil:
		return vm.NewArray(nil), nil
	case vm.RespondTo(o, "to_a"):
		r, err := vm.Send(o, "to_a")
		if err != nil {
			return nil, err
		}
		if r.tag != ArrayTag {
			return nil, vm.Raisef(TypeError, "can't convert %s to Array (%s#to_a gives %s)", vm.ClassName(o), vm.ClassName(o), vm.ClassName(r))
		}
		return r, nil
	}
	return vm.NewArray([]*Object{o}), nil
}

// KernelProc is a Kernel method.
//
// proc wraps the block in a Proc.
func KernelProc(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(ArgumentError, "tried to create Proc object without a block")
	}
	return vm.NewProc(blk, false), nil
}

// KernelLambda is a Kernel method.
//
// lambda wraps the block in a lambda Proc.
func KernelLambda(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(ArgumentError, "tried to create Proc object without a block")
	}
	return vm.NewProc(blk, true), nil
}

// KernelBlockGiven is a Kernel method.
//
// block_given? returns whether a block was passed to it.
func KernelBlockGiven(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(blk != nil), nil
}

// KernelRespondTo is a Kernel method.
//
// respond_to? returns whether the receiver has a method with the given name.
func KernelRespondTo(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	name, err := vm.SymbolName(args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(vm.RespondTo(self, name)), nil
}

// immediate returns whether o is a value that is never copied.
func immediate(o *Object) bool {
	switch o.tag {
	case NilTag, TrueTag, FalseTag, IntegerTag, FloatTag, SymbolTag:
		return true
	}
	return false
}

// KernelDup is a Kernel method.
//
// dup returns an unfrozen copy of the receiver without its singleton class.
// Immediate values return themselves.
func KernelDup(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if immediate(self) {
		return self, nil
	}
	return vm.Dup(self), nil
}

// KernelClone is a Kernel method.
//
// clone is like dup, but the copy keeps the receiver's frozen state and
// singleton methods.
func KernelClone(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if immediate(self) {
		return self, nil
	}
	r := vm.Dup(self)
	if self.singleton != nil {
		s := r.SingletonClass()
		s.includes = append(s.includes, self.singleton.includes...)
		s.DefineMethods(self.singleton.methods)
	}
	r.frozen = self.frozen
	return r, nil
}

// KernelCmp is a Kernel method.
//
// <=> returns 0 if the argument is == to the receiver, otherwise nil.
func KernelCmp(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	if self == args[0] {
		return vm.NewInteger(0), nil
	}
	eq, err := vm.Eq(self, args[0])
	if err != nil {
		return nil, err
	}
	if eq {
		return vm.NewInteger(0), nil
	}
	return vm.Nil, nil
}

// KernelCaseEq is a Kernel method.
//
// === is ==.
func KernelCaseEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	eq, err := vm.Eq(self, args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(eq), nil
}

// ModuleName is a Module method.
//
// name returns the module's name, or nil if it is anonymous.
func ModuleName(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c := self.Value.(*Class)
	if c.name == "" {
		return vm.Nil, nil
	}
	return vm.NewString(c.name), nil
}

// ModuleToS is a Module method.
//
// to_s returns the module's name. Singleton classes show the object they are
// attached to.
func ModuleToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c := self.Value.(*Class)
	if c.attached != nil {
		s, err := vm.Inspect(c.attached)
		if err != nil {
			return nil, err
		}
		return vm.NewString("#<Class:" + s + ">"), nil
	}
	if c.name == "" {
		return vm.NewString(vm.anyToS(self)), nil
	}
	return vm.NewString(c.name), nil
}

// ModuleAncestors is a Module method.
//
// ancestors returns the module's method resolution order.
func ModuleAncestors(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	l := vm.Classes.Ancestors(self.Value.(*Class))
	r := make([]*Object, len(l))
	for i, c := range l {
		r[i] = vm.ClassObject(c)
	}
	return vm.NewArray(r), nil
}

// ModuleInstanceMethods is a Module method.
//
// instance_methods returns the names of the methods instances respond to. If
// the argument is false, only the module's own methods are listed.
func ModuleInstanceMethods(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 0, 1); err != nil {
		return nil, err
	}
	c := self.Value.(*Class)
	var names []string
	if len(args) == 1 && !vm.Truthy(args[0]) {
		names = c.MethodNames()
	} else {
		names = vm.MethodNames(&Object{class: c})
	}
	r := make([]*Object, len(names))
	for i, name := range names {
		r[i] = vm.Intern(name)
	}
	return vm.NewArray(r), nil
}

// ModuleMethodDefined is a Module method.
//
// method_defined? returns whether instances respond to the named method.
func ModuleMethodDefined(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	name, err := vm.SymbolName(args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(vm.RespondTo(&Object{class: self.Value.(*Class)}, name)), nil
}

// ModuleDefineMethod is a Module method.
//
// define_method defines an instance method from a block or Proc and returns
// its name as a Symbol.
func ModuleDefineMethod(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	name, fn, err := vm.methodBody(args, blk)
	if err != nil {
		return nil, err
	}
	if err := vm.CheckFrozen(self); err != nil {
		return nil, err
	}
	self.Value.(*Class).Define(name, fn)
	return vm.Intern(name), nil
}

// ModuleInclude is a Module method.
//
// include mixes modules into the receiver.
func ModuleInclude(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, -1); err != nil {
		return nil, err
	}
	c := self.Value.(*Class)
	for _, arg := range args {
		m, err := vm.classArg(arg)
		if err != nil {
			return nil, err
		}
		if !m.module {
			return nil, vm.Raise(TypeError, "wrong argument type Class (expected Module)")
		}
		c.Include(m)
	}
	return self, nil
}

// ModuleIncludes is a Module method.
//
// include? returns whether a module is among the receiver's ancestors.
func ModuleIncludes(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	m, err := vm.classArg(args[0])
	if err != nil {
		return nil, err
	}
	c := self.Value.(*Class)
	return vm.Bool(m.module && c != m && vm.IsSubclass(c, m)), nil
}

// ModuleLt is a Module method.
//
// < returns whether the receiver inherits from the argument, nil if they are
// unrelated.
func ModuleLt(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	k, err := vm.classArg(args[0])
	if err != nil {
		return nil, err
	}
	c := self.Value.(*Class)
	switch {
	case c == k:
		return vm.False, nil
	case vm.IsSubclass(c, k):
		return vm.True, nil
	case vm.IsSubclass(k, c):
		return vm.False, nil
	}
	return vm.Nil, nil
}

// ModuleCaseEq is a Module method.
//
// === returns whether the argument is an instance of the module.
func ModuleCaseEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	return vm.Bool(vm.IsKindOf(args[0], self.Value.(*Class))), nil
}

// ClassSuperclass is a Class method.
//
// superclass returns the class's superclass, or nil.
func ClassSuperclass(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c := self.Value.(*Class).super
	if c == nil {
		return vm.Nil, nil
	}
	return vm.ClassObject(c), nil
}

// ClassAllocate is a Class method.
//
// allocate creates an uninitialized instance.
func ClassAllocate(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.allocate(self, self.Value.(*Class))
}

func (vm *VM) allocate(self *Object, c *Class) (*Object, error) {
	switch {
	case c.attached != nil:
		return nil, vm.Raise(TypeError, "can't create instance of singleton class")
	case vm.IsSubclass(c, vm.StringClass):
		return vm.ObjectWith(c, NewStringValue(nil, vm.defaultEncoding), StringTag), nil
	case vm.IsSubclass(c, vm.ArrayClass):
		return vm.ObjectWith(c, []*Object{}, ArrayTag), nil
	case vm.IsSubclass(c, vm.ExceptionClass):
		return vm.NewException(c, ""), nil
	}
	// Instances of the remaining core classes need values that only their own
	// constructors provide.
	for _, k := range [...]*Class{vm.IntegerClass, vm.FloatClass, vm.SymbolClass, vm.NilClass, vm.TrueClass, vm.FalseClass, vm.RangeClass, vm.RegexpClass, vm.MatchDataClass, vm.ProcClass, vm.ClassClass, vm.ModuleClass} {
		if vm.IsSubclass(c, k) {
			return nil, vm.noMethod(self, "allocate")
		}
	}
	return vm.NewObject(c), nil
}

// ClassNew is a Class method.
//
// new creates an instance and calls its initialize method with the
// arguments. Class.new creates an anonymous class with an optional
// superclass.
func ClassNew(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c := self.Value.(*Class)
	switch c {
	case vm.ClassClass:
		if err := vm.ArgCount(args, 0, 1); err != nil {
			return nil, err
		}
		super := vm.ObjectClass
		if len(args) == 1 {
			var err error
			if super, err = vm.classArg(args[0]); err != nil {
				return nil, err
			}
			if super.module || super.attached != nil {
				return nil, vm.Raise(TypeError, "superclass must be a Class")
			}
		}
		return vm.ClassObject(NewClass("", super)), nil
	case vm.ModuleClass:
		return vm.ClassObject(NewModule("")), nil
	}
	if vm.IsSubclass(c, vm.ExceptionClass) {
		if err := vm.ArgCount(args, 0, 1); err != nil {
			return nil, err
		}
		msg := ""
		if len(args) == 1 {
			s, err := vm.AsString(args[0])
			if err != nil {
				return nil, err
			}
			msg = s
		}
		return vm.NewException(c, msg), nil
	}
	o, err := vm.allocate(self, c)
	if err != nil {
		return nil, err
	}
	if o.tag == StringTag {
		if err := vm.ArgCount(args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 1 {
			s, err := vm.StringArgAt(args, 0)
			if err != nil {
				return nil, err
			}
			o.Value.(*String).Replace(s)
		}
		return o, nil
	}
	if _, err := vm.SendBlock(o, "initialize", blk, args...); err != nil {
		return nil, err
	}
	return o, nil
}

func (vm *VM) cmpFailed(a, b *Object) error {
	name := vm.ClassName(b)
	if immediate(b) && b.tag != SymbolTag {
		if s, err := vm.Inspect(b); err == nil {
			name = s
		}
	}
	return vm.Raisef(ArgumentError, "comparison of %s with %s failed", vm.ClassName(a), name)
}

// compareArg compares self with the first argument, raising ArgumentError if
// they are not comparable.
func (vm *VM) compareArg(self *Object, args []*Object) (int, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return 0, err
	}
	c, ok, err := vm.Compare(self, args[0])
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, vm.cmpFailed(self, args[0])
	}
	return c, nil
}

// ComparableLt is a Comparable method.
//
// < compares using <=>.
func ComparableLt(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c, err := vm.compareArg(self, args)
	if err != nil {
		return nil, err
	}
	return vm.Bool(c < 0), nil
}

// ComparableLe is a Comparable method.
//
// <= compares using <=>.
func ComparableLe(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c, err := vm.compareArg(self, args)
	if err != nil {
		return nil, err
	}
	return vm.Bool(c <= 0), nil
}

// ComparableGt is a Comparable method.
//
// > compares using <=>.
func ComparableGt(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c, err := vm.compareArg(self, args)
	if err != nil {
		return nil, err
	}
	return vm.Bool(c > 0), nil
}

// ComparableGe is a Comparable method.
//
// >= compares using <=>.
func ComparableGe(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	c, err := vm.compareArg(self, args)
	if err != nil {
		return nil, err
	}
	return vm.Bool(c >= 0), nil
}

// ComparableEq is a Comparable method.
//
// == returns whether <=> gives 0. Incomparable values are unequal.
func ComparableEq(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	if self == args[0] {
		return vm.True, nil
	}
	c, ok, err := vm.Compare(self, args[0])
	if err != nil {
		return nil, err
	}
	return vm.Bool(ok && c == 0), nil
}

// ComparableBetween is a Comparable method.
//
// between? returns whether the receiver lies between two values inclusive.
func ComparableBetween(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 2, 2); err != nil {
		return nil, err
	}
	lo, err := vm.compareArg(self, args[:1])
	if err != nil {
		return nil, err
	}
	hi, err := vm.compareArg(self, args[1:])
	if err != nil {
		return nil, err
	}
	return vm.Bool(lo >= 0 && hi <= 0), nil
}

// ComparableClamp is a Comparable method.
//
// clamp returns the receiver limited to lie between two values.
func ComparableClamp(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 2, 2); err != nil {
		return nil, err
	}
	c, err := vm.compareArg(args[0], args[1:])
	if err != nil {
		return nil, err
	}
	if c > 0 {
		return nil, vm.Raise(ArgumentError, "min argument must be less than or equal to max argument")
	}
	if c, err := vm.compareArg(self, args[:1]); err != nil || c < 0 {
		if err != nil {
			return nil, err
		}
		return args[0], nil
	}
	if c, err := vm.compareArg(self, args[1:]); err != nil || c > 0 {
		if err != nil {
			return nil, err
		}
		return args[1], nil
	}
	return self, nil
}
