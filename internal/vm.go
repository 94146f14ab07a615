package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
)

// VM holds the state of one runtime: its class hierarchy, its singletons, and
// the collaborators it delegates to.
//
// A VM is not safe for concurrent use.
type VM struct {
	// Classes resolves constants and method resolution orders.
	Classes Classes
	// Main is the top-level receiver.
	Main *Object

	// Singletons.
	Nil   *Object
	True  *Object
	False *Object

	// Core classes used on hot paths. Others are found with CoreClass.
	BasicObjectClass *Class
	ObjectClass      *Class
	ModuleClass      *Class
	ClassClass       *Class
	KernelModule     *Class
	ComparableModule *Class
	NilClass         *Class
	TrueClass        *Class
	FalseClass       *Class
	IntegerClass     *Class
	FloatClass       *Class
	SymbolClass      *Class
	StringClass      *Class
	ArrayClass       *Class
	RangeClass       *Class
	RegexpClass      *Class
	MatchDataClass   *Class
	ProcClass        *Class
	ExceptionClass   *Class

	// Stdout receives output from print, puts, and p.
	Stdout io.Writer
	// Process handles sleeping, spawning, and exiting.
	Process Process
	// Regexps compiles regular expression sources.
	Regexps Compiler
	// Parser parses source text. It is nil unless one is installed.
	Parser Parser
	// File is the path of the script being run, if any.
	File string

	// Config is the configuration the VM was created with.
	Config Config
	// Log is the VM's logger.
	Log commonlog.Logger

	// defaultEncoding is the encoding of new strings.
	defaultEncoding Encoding
	// numberCache is a list of cached Integer objects.
	numberCache []*Object
	// symbols interns Symbol objects by name.
	symbols map[string]*Object
	// encodings holds the Encoding objects created so far.
	encodings map[Encoding]*Object
	// visiting holds the objects being visited by recursive methods like
	// inspect, innermost last.
	visiting []*Object
	// frames is the stack of names of methods being executed by Send.
	frames []string
	// atExit holds handlers registered with at_exit, in registration order.
	atExit []*Object
	// exited is set once exit handlers have run.
	exited bool
}

// NewVM creates a VM with the default configuration.
func NewVM() *VM {
	return NewVMWithConfig(DefaultConfig())
}

// NewVMWithConfig creates a VM with the given configuration. Invalid settings
// are replaced by their defaults.
func NewVMWithConfig(cfg Config) *VM {
	haveVM = true
	cfg = cfg.normalize()
	ConfigureLogging(cfg)
	vm := VM{
		Classes: NewClassTable(),
		Stdout:  os.Stdout,
		Process: &OSProcess{Shell: cfg.SpawnShell},
		Regexps: RegexpCompiler{},
		Config:  cfg,
		Log:     commonlog.GetLogger("rcore.vm"),
		symbols: map[string]*Object{},

		encodings: map[Encoding]*Object{},
	}
	vm.defaultEncoding, _ = LookupEncoding(cfg.DefaultEncoding)

	// Object, Module, and Class must exist before any class object is
	// requested. Exceptions come next so that every later initializer may
	// raise.
	vm.initObject()
	vm.initException()
	vm.initNil()
	vm.initBool()
	vm.initNumber()
	vm.initSymbol()
	vm.initString()
	vm.initArray()
	vm.initRange()
	vm.initRegexp()
	vm.initProc()
	vm.initKernel()
	vm.initParser()
	vm.initProcess()

	for _, ext := range coreExt {
		ext(&vm)
	}
	vm.Log.Debugf("VM ready: %d core extensions, default encoding %s", len(coreExt), vm.defaultEncoding)
	return &vm
}

// Bool converts a bool to the appropriate boolean object.
func (vm *VM) Bool(c bool) *Object {
	if c {
		return vm.True
	}
	return vm.False
}

// Truthy returns false for nil and false and true for every other object.
func (vm *VM) Truthy(o *Object) bool {
	return o != nil && o != vm.Nil && o != vm.False
}

// Send invokes the named method on o. It raises NoMethodError if o does not
// respond to the name.
func (vm *VM) Send(o *Object, name string, args ...*Object) (*Object, error) {
	return vm.SendBlock(o, name, nil, args...)
}

// SendBlock invokes the named method on o with an attached block.
func (vm *VM) SendBlock(o *Object, name string, blk Block, args ...*Object) (*Object, error) {
	fn, _ := vm.FindMethod(o, name)
	if fn == nil {
		return nil, vm.noMethod(o, name)
	}
	vm.frames = append(vm.frames, name)
	r, err := fn(vm, o, args, blk)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = vm.Nil
	}
	return r, nil
}

func (vm *VM) noMethod(o *Object, name string) error {
	switch {
	case o == vm.Nil:
		return vm.Raisef(NoMethodError, "undefined method '%s' for nil", name)
	case o.tag == ClassTag:
		return vm.Raisef(NoMethodError, "undefined method '%s' for class %s", name, o.Value.(*Class).Name())
	}
	return vm.Raisef(NoMethodError, "undefined method '%s' for an instance of %s", name, vm.ClassName(o))
}

// ThisMethod returns the name of the method that called the method currently
// executing, if there is one.
func (vm *VM) ThisMethod() (string, bool) {
	if len(vm.frames) < 2 {
		return "", false
	}
	return vm.frames[len(vm.frames)-2], true
}

// Eq returns whether a and b are equal by ==.
func (vm *VM) Eq(a, b *Object) (bool, error) {
	if a == b {
		return true, nil
	}
	switch x := a.Value.(type) {
	case int64:
		switch y := b.Value.(type) {
		case int64:
			return x == y, nil
		case float64:
			return float64(x) == y, nil
		}
		return false, nil
	case float64:
		switch y := b.Value.(type) {
		case int64:
			return x == float64(y), nil
		case float64:
			return x == y, nil
		}
		return false, nil
	case *String:
		if y, ok := b.Value.(*String); ok {
			return x.Equal(y), nil
		}
		return false, nil
	}
	r, err := vm.Send(a, "==", b)
	if err != nil {
		return false, err
	}
	return vm.Truthy(r), nil
}

// Eql returns whether a and b are equal by eql?, which requires them to have
// the same class.
func (vm *VM) Eql(a, b *Object) (bool, error) {
	if a == b {
		return true, nil
	}
	if a.class != b.class {
		return false, nil
	}
	return vm.Eq(a, b)
}

// Compare orders a and b. The boolean result is false if they are not
// comparable.
func (vm *VM) Compare(a, b *Object) (int, bool, error) {
	switch x := a.Value.(type) {
	case int64:
		switch y := b.Value.(type) {
		case int64:
			return cmpInt(x, y), true, nil
		case float64:
			return cmpFloat(float64(x), y)
		}
		return 0, false, nil
	case float64:
		switch y := b.Value.(type) {
		case int64:
			return cmpFloat(x, float64(y))
		case float64:
			return cmpFloat(x, y)
		}
		return 0, false, nil
	case *String:
		if y, ok := b.Value.(*String); ok {
			return x.Compare(y), true, nil
		}
		return 0, false, nil
	}
	if !vm.RespondTo(a, "<=>") {
		return 0, false, nil
	}
	r, err := vm.Send(a, "<=>", b)
	if err != nil {
		return 0, false, err
	}
	n, ok := r.Value.(int64)
	if !ok {
		return 0, false, nil
	}
	return cmpInt(n, 0), true, nil
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func cmpFloat(x, y float64) (int, bool, error) {
	switch {
	case x < y:
		return -1, true, nil
	case x > y:
		return 1, true, nil
	case x == y:
		return 0, true, nil
	}
	// NaN
	return 0, false, nil
}

// Inspect returns the result of o's inspect method as a Go string.
func (vm *VM) Inspect(o *Object) (string, error) {
	r, err := vm.Send(o, "inspect")
	if err != nil {
		return "", err
	}
	if s, ok := r.Value.(*String); ok {
		return s.String(), nil
	}
	return vm.anyToS(o), nil
}

// AsString returns the result of o's to_s method as a Go string. If to_s does
// not produce a String, the default representation is used.
func (vm *VM) AsString(o *Object) (string, error) {
	if s, ok := o.Value.(*String); ok {
		return s.String(), nil
	}
	r, err := vm.Send(o, "to_s")
	if err != nil {
		return "", err
	}
	if s, ok := r.Value.(*String); ok {
		return s.String(), nil
	}
	return vm.anyToS(o), nil
}

// ArgCount checks the number of arguments passed to a method. max < 0 means
// no upper bound.
func (vm *VM) ArgCount(args []*Object, min, max int) error {
	n := len(args)
	if n >= min && (max < 0 || n <= max) {
		return nil
	}
	var want string
	switch {
	case min == max:
		want = fmt.Sprint(min)
	case max < 0:
		want = fmt.Sprintf("%d+", min)
	default:
		want = fmt.Sprintf("%d..%d", min, max)
	}
	return vm.Raisef(ArgumentError, "wrong number of arguments (given %d, expected %s)", n, want)
}

// Register registers a core extension. Each function is called in the order it
// is registered; extensions that depend on other extensions need only import
// them. Register should be called from within init funcs. Panics if NewVM has
// been called.
func Register(f func(*VM)) {
	if haveVM {
		panic("rcore/internal: Register must be called before any VM is created")
	}
	coreExt = append(coreExt, f)
}

// coreExt is a list of core extensions that have been registered.
var coreExt = make([]func(*VM), 0, 4)

// haveVM becomes true once NewVM has been called.
var haveVM = false
