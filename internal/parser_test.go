package internal_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/zephyrtronium/rcore"
	"github.com/zephyrtronium/rcore/testutils"
)

func TestParserParse(t *testing.T) {
	vm := testutils.NewVM()
	p := vm.ClassObject(vm.CoreClass("Parser"))
	r := testutils.Call(t, vm, p, "parse", vm.NewString("foo ( 1 )"))
	if r.Tag() != rcore.SyntaxTreeTag {
		t.Fatalf("wrong tag: %v", r.Tag())
	}
	if !r.IsFrozen() {
		t.Error("syntax tree is not frozen")
	}
	if want := []string{"foo", "(", "1", ")"}; !reflect.DeepEqual(r.Value, want) {
		t.Errorf("wrong tree: wanted %q, have %v", want, r.Value)
	}
	if c := r.Class(); c == nil || c.Name() != "SyntaxTree" {
		t.Errorf("wrong class: %v", c)
	}
}

func TestParserSyntaxError(t *testing.T) {
	vm := testutils.NewVM()
	p := vm.ClassObject(vm.CoreClass("Parser"))
	_, err := vm.Send(p, "parse", vm.NewString("a )"), vm.NewString("x.rb"))
	exc := testutils.CheckRaise(t, vm, err, rcore.SyntaxError)
	testutils.CheckRaise(t, vm, err, rcore.ScriptError)
	if _, ok := vm.Rescue(err, rcore.StandardError); ok {
		t.Error("SyntaxError is a StandardError")
	}
	if msg := exc.Value.(*rcore.Exception).Message; msg != "x.rb:1:3: unexpected ')'" {
		t.Errorf("wrong message: %q", msg)
	}
	_, err = vm.Send(p, "tokens", vm.NewString("( a"))
	testutils.CheckRaise(t, vm, err, rcore.SyntaxError)
}

func TestParserTokens(t *testing.T) {
	vm := testutils.NewVM()
	p := vm.ClassObject(vm.CoreClass("Parser"))
	r := testutils.Call(t, vm, p, "tokens", vm.NewString("x 12\n( y )"))
	testutils.CheckInspect(t, vm, r, `[[:identifier, "x"], [:integer, "12"], [:lparen, "("], [:identifier, "y"], [:rparen, ")"]]`)
	r = testutils.Call(t, vm, p, "tokens", vm.NewString("x 12\n( y )"), vm.True)
	testutils.CheckInspect(t, vm, r, `[[:identifier, "x", 1, 1], [:integer, "12", 1, 3], [:lparen, "(", 2, 1], [:identifier, "y", 2, 3], [:rparen, ")", 2, 5]]`)
}

func TestParserMissing(t *testing.T) {
	vm := testutils.NewVM()
	vm.Parser = nil
	p := vm.ClassObject(vm.CoreClass("Parser"))
	for _, name := range []string{"parse", "tokens"} {
		t.Run(name, func(t *testing.T) {
			_, err := vm.Send(p, name, vm.NewString("x"))
			exc := testutils.CheckRaise(t, vm, err, rcore.NotImplementedError)
			if msg := exc.Value.(*rcore.Exception).Message; msg != rcore.ErrNoParser.Error() {
				t.Errorf("wrong message: %q", msg)
			}
		})
	}
}

func TestParserArgs(t *testing.T) {
	vm := testutils.NewVM()
	p := vm.ClassObject(vm.CoreClass("Parser"))
	_, err := vm.Send(p, "parse", vm.NewInteger(1))
	testutils.CheckRaise(t, vm, err, rcore.TypeError)
	_, err = vm.Send(p, "parse")
	testutils.CheckRaise(t, vm, err, rcore.ArgumentError)
}

func TestProcess(t *testing.T) {
	vm := testutils.NewVM()
	p := vm.ClassObject(vm.CoreClass("Process"))
	if r := testutils.Call(t, vm, p, "pid"); r.Value != int64(4242) {
		t.Errorf("wrong pid: %v", r.Value)
	}
	pid := testutils.Call(t, vm, vm.Main, "spawn", vm.NewString("true"))
	if r := testutils.Call(t, vm, p, "wait", pid); r.Value != int64(0) {
		t.Errorf("wrong status: %v", r.Value)
	}
	_, err := vm.Send(p, "wait", vm.NewInteger(1))
	testutils.CheckRaise(t, vm, err, rcore.RuntimeError)
	_, err = vm.Send(p, "wait", vm.NewString("1"))
	testutils.CheckRaise(t, vm, err, rcore.TypeError)
	if r := testutils.Call(t, vm, p, "platform_version"); r.Tag() != rcore.StringTag {
		t.Errorf("platform_version gave %v", r.Value)
	}
}

func TestProcessTimes(t *testing.T) {
	vm := testutils.NewVM()
	vm.Process.(*testutils.FakeProcess).Times = rcore.Usage{User: 1500 * time.Millisecond, System: 250 * time.Millisecond}
	p := vm.ClassObject(vm.CoreClass("Process"))
	tms := testutils.Call(t, vm, p, "times")
	if c := tms.Class(); c == nil || c.Name() != "Process::Tms" {
		t.Errorf("wrong class: %v", c)
	}
	if !tms.IsFrozen() {
		t.Error("times result is not frozen")
	}
	if r := testutils.Call(t, vm, tms, "utime"); r.Value != 1.5 {
		t.Errorf("wrong utime: %v", r.Value)
	}
	if r := testutils.Call(t, vm, tms, "stime"); r.Value != 0.25 {
		t.Errorf("wrong stime: %v", r.Value)
	}
}

func TestOSProcessUsage(t *testing.T) {
	u, err := (&rcore.OSProcess{}).Usage()
	if err != nil {
		t.Skipf("resource usage unavailable: %v", err)
	}
	if u.User < 0 || u.System < 0 {
		t.Errorf("negative CPU time: %+v", u)
	}
}
