// Package testutils provides utilities for testing the runtime core in Go.
package testutils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/zephyrtronium/rcore"
)

// testVM is the VM used for all tests.
var testVM *rcore.VM

var testVMInit sync.Once

// VM returns a VM for testing. The VM is shared by all tests that use this
// package.
func VM() *rcore.VM {
	testVMInit.Do(ResetVM)
	return testVM
}

// ResetVM reinitializes the VM returned by VM. It is not safe to call this in
// parallel tests.
func ResetVM() {
	testVM = NewVM()
}

// NewVM creates a VM whose collaborators are fakes: output goes to a
// *bytes.Buffer, the Process is a *FakeProcess, and the Parser is a
// *FakeParser.
func NewVM() *rcore.VM {
	vm := rcore.NewVM()
	vm.Stdout = &bytes.Buffer{}
	vm.Process = &FakeProcess{PID: 4242, NextPID: 5000}
	vm.Parser = &FakeParser{}
	return vm
}

// Output returns and clears the output written by vm, which must come from
// NewVM.
func Output(vm *rcore.VM) string {
	b := vm.Stdout.(*bytes.Buffer)
	s := b.String()
	b.Reset()
	return s
}

// FakeProcess records the process operations it is asked to perform.
type FakeProcess struct {
	// Sleeps holds the durations of each sleep.
	Sleeps []time.Duration
	// Spawned holds the argument vectors of each spawn.
	Spawned [][]string
	// Exits holds the status of each exit.
	Exits []int
	// PID is the value of Pid.
	PID int
	// NextPID is the process ID given to the next spawn.
	NextPID int
	// SpawnErr, if not nil, is returned by Spawn.
	SpawnErr error
	// Times is the value of Usage.
	Times rcore.Usage
}

// Sleep records d.
func (p *FakeProcess) Sleep(d time.Duration) {
	p.Sleeps = append(p.Sleeps, d)
}

// Spawn records argv and returns a new process ID.
func (p *FakeProcess) Spawn(argv []string) (int, error) {
	if p.SpawnErr != nil {
		return 0, p.SpawnErr
	}
	p.Spawned = append(p.Spawned, argv)
	p.NextPID++
	return p.NextPID - 1, nil
}

// Wait returns status 0 for processes that were spawned.
func (p *FakeProcess) Wait(pid int) (int, error) {
	if pid < p.NextPID-len(p.Spawned) || pid >= p.NextPID {
		return 0, errors.New("no child processes")
	}
	return 0, nil
}

// Pid returns p.PID.
func (p *FakeProcess) Pid() int {
	return p.PID
}

// Usage returns p.Times.
func (p *FakeProcess) Usage() (rcore.Usage, error) {
	return p.Times, nil
}

// Exit records status and returns.
func (p *FakeProcess) Exit(status int) {
	p.Exits = append(p.Exits, status)
}

// FakeParser parses source as whitespace-separated words. Parse returns the
// words as a []string. A word that is an unmatched parenthesis is a syntax
// error.
type FakeParser struct{}

// Parse returns the words of source.
func (FakeParser) Parse(source []byte, opts rcore.ParseOptions) (interface{}, error) {
	toks, err := FakeParser{}.Tokens(source, opts)
	if err != nil {
		return nil, err
	}
	words := make([]string, len(toks))
	for i, t := range toks {
		words[i] = t.Literal
	}
	return words, nil
}

// Tokens returns the words of source. Words made of digits have type
// "integer"; others have type "identifier".
func (FakeParser) Tokens(source []byte, opts rcore.ParseOptions) ([]rcore.Token, error) {
	var toks []rcore.Token
	line, col := 1, 1
	depth := 0
	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '\n':
			line++
			col = 1
			i++
			continue
		case c == ' ' || c == '\t':
			col++
			i++
			continue
		}
		j := i
		for j < len(source) && source[j] != ' ' && source[j] != '\t' && source[j] != '\n' {
			j++
		}
		w := string(source[i:j])
		typ := "identifier"
		switch {
		case w == "(":
			typ = "lparen"
			depth++
		case w == ")":
			typ = "rparen"
			depth--
			if depth < 0 {
				return nil, syntaxError(opts.Path, line, col, "unexpected ')'")
			}
		case strings.IndexFunc(w, func(r rune) bool { return !unicode.IsDigit(r) }) < 0:
			typ = "integer"
		}
		t := rcore.Token{Type: typ, Literal: w}
		if opts.Locations {
			t.Line, t.Column = line, col
		}
		toks = append(toks, t)
		col += j - i
		i = j
	}
	if depth > 0 {
		return nil, syntaxError(opts.Path, line, col, "unexpected end of input")
	}
	return toks, nil
}

func syntaxError(path string, line, col int, msg string) error {
	if path == "" {
		path = "-"
	}
	return fmt.Errorf("%s:%d:%d: %s", path, line, col, msg)
}

// A SendTestCase is a test case sending a message to an object and a
// predicate to check the result.
type SendTestCase struct {
	// Recv creates the receiver.
	Recv func(vm *rcore.VM) *rcore.Object
	// Method is the name of the method to call.
	Method string
	// Args creates the arguments. It may be nil.
	Args func(vm *rcore.VM) []*rcore.Object
	// Block is the attached block. It may be nil.
	Block rcore.Block
	// Pass is a predicate taking the result of the call. If Pass returns
	// false, then the test fails.
	Pass func(vm *rcore.VM, result *rcore.Object, err error) bool
}

// TestFunc returns a test function for the test case. This uses VM to create
// the receiver and arguments and to call the method.
func (c SendTestCase) TestFunc() func(*testing.T) {
	return func(t *testing.T) {
		vm := VM()
		recv := c.Recv(vm)
		var args []*rcore.Object
		if c.Args != nil {
			args = c.Args(vm)
		}
		r, err := vm.SendBlock(recv, c.Method, c.Block, args...)
		if !c.Pass(vm, r, err) {
			if err != nil {
				t.Errorf("%s produced wrong result; an exception occurred: %v", c.Method, err)
				return
			}
			s, _ := vm.Inspect(r)
			t.Errorf("%s produced wrong result; got %s", c.Method, s)
		}
	}
}

// PassEqual returns a Pass function for a SendTestCase that predicates on
// equality. This first checks for identity, then for ==. If the call raised,
// the predicate returns false.
func PassEqual(want func(vm *rcore.VM) *rcore.Object) func(*rcore.VM, *rcore.Object, error) bool {
	return func(vm *rcore.VM, result *rcore.Object, err error) bool {
		if err != nil {
			return false
		}
		w := want(vm)
		if w == result {
			return true
		}
		eq, err := vm.Eq(w, result)
		return err == nil && eq
	}
}

// PassIdentical returns a Pass function for a SendTestCase that predicates on
// identity, i.e. the result must be exactly the given object.
func PassIdentical(want func(vm *rcore.VM) *rcore.Object) func(*rcore.VM, *rcore.Object, error) bool {
	return func(vm *rcore.VM, result *rcore.Object, err error) bool {
		return err == nil && result == want(vm)
	}
}

// PassInspect returns a Pass function for a SendTestCase that predicates on
// the inspection of the result.
func PassInspect(want string) func(*rcore.VM, *rcore.Object, error) bool {
	return func(vm *rcore.VM, result *rcore.Object, err error) bool {
		if err != nil {
			return false
		}
		s, err := vm.Inspect(result)
		return err == nil && s == want
	}
}

// PassString returns a Pass function for a SendTestCase that predicates on
// the result being a String with the given content.
func PassString(want string) func(*rcore.VM, *rcore.Object, error) bool {
	return func(vm *rcore.VM, result *rcore.Object, err error) bool {
		if err != nil {
			return false
		}
		s, ok := result.Value.(*rcore.String)
		return ok && s.String() == want
	}
}

// PassTag returns a Pass function for a SendTestCase that predicates on the
// Tag of the result.
func PassTag(want rcore.Tag) func(*rcore.VM, *rcore.Object, error) bool {
	return func(vm *rcore.VM, result *rcore.Object, err error) bool {
		return err == nil && result.Tag() == want
	}
}

// PassRaise returns a Pass function for a SendTestCase that returns true iff
// the call raised an exception of the named class.
func PassRaise(class string) func(*rcore.VM, *rcore.Object, error) bool {
	return func(vm *rcore.VM, result *rcore.Object, err error) bool {
		_, ok := vm.Rescue(err, class)
		return ok
	}
}

// PassSuccess returns a Pass function for a SendTestCase that returns true iff
// the call did not fail.
func PassSuccess() func(*rcore.VM, *rcore.Object, error) bool {
	return func(vm *rcore.VM, result *rcore.Object, err error) bool {
		return err == nil
	}
}

// Str returns a function creating a String with content s.
func Str(s string) func(vm *rcore.VM) *rcore.Object {
	return func(vm *rcore.VM) *rcore.Object { return vm.NewString(s) }
}

// Int returns a function creating an Integer.
func Int(n int64) func(vm *rcore.VM) *rcore.Object {
	return func(vm *rcore.VM) *rcore.Object { return vm.NewInteger(n) }
}

// Args returns a function creating an argument list.
func Args(args ...func(vm *rcore.VM) *rcore.Object) func(vm *rcore.VM) []*rcore.Object {
	return func(vm *rcore.VM) []*rcore.Object {
		r := make([]*rcore.Object, len(args))
		for i, a := range args {
			r[i] = a(vm)
		}
		return r
	}
}

// Call is a testing helper to send a message that must succeed.
func Call(t *testing.T, vm *rcore.VM, recv *rcore.Object, method string, args ...*rcore.Object) *rcore.Object {
	t.Helper()
	r, err := vm.Send(recv, method, args...)
	if err != nil {
		t.Fatalf("%s failed: %v", method, err)
	}
	return r
}

// CheckRaise is a testing helper to check that err carries an exception of
// the named class.
func CheckRaise(t *testing.T, vm *rcore.VM, err error, class string) *rcore.Object {
	t.Helper()
	if err == nil {
		t.Fatalf("no exception; wanted %s", class)
	}
	exc, ok := vm.Rescue(err, class)
	if !ok {
		t.Fatalf("wrong exception: wanted %s, have %v", class, err)
	}
	return exc
}

// CheckString is a testing helper to check that o is a String with content
// want.
func CheckString(t *testing.T, o *rcore.Object, want string) {
	t.Helper()
	s, ok := o.Value.(*rcore.String)
	if !ok {
		t.Fatalf("wrong value: wanted String %q, have %T", want, o.Value)
	}
	if s.String() != want {
		t.Errorf("wrong string: wanted %q, have %q", want, s.String())
	}
}

// CheckInspect is a testing helper to check the inspection of an object.
func CheckInspect(t *testing.T, vm *rcore.VM, o *rcore.Object, want string) {
	t.Helper()
	s, err := vm.Inspect(o)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if s != want {
		t.Errorf("wrong inspection: wanted %q, have %q", want, s)
	}
}

// CheckMethods is a testing helper to check whether a class defines at least
// the methods we expect.
func CheckMethods(t *testing.T, c *rcore.Class, methods []string) {
	t.Helper()
	for _, name := range methods {
		t.Run("Have_"+name, func(t *testing.T) {
			fn, ok := c.Method(name)
			if !ok {
				t.Fatal("no method", name)
			}
			if fn == nil {
				t.Fatal("method", name, "is nil")
			}
		})
	}
}

// CheckClass is a testing helper to check that a core class exists with the
// given superclass. super may be nil for modules and BasicObject.
func CheckClass(t *testing.T, vm *rcore.VM, name, super string) *rcore.Class {
	t.Helper()
	c, err := vm.Classes.LookupConstant(name)
	if err != nil {
		t.Fatalf("no class %s: %v", name, err)
	}
	s := c.Superclass()
	switch {
	case super == "" && s != nil:
		t.Errorf("%s has superclass %s, wanted none", name, s.Name())
	case super != "" && s == nil:
		t.Errorf("%s has no superclass, wanted %s", name, super)
	case super != "" && s.Name() != super:
		t.Errorf("%s has superclass %s, wanted %s", name, s.Name(), super)
	}
	return c
}
