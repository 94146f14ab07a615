package marshal_test

import (
	"testing"

	"github.com/zephyrtronium/rcore"
	"github.com/zephyrtronium/rcore/coreext/marshal"
	"github.com/zephyrtronium/rcore/testutils"
)

func TestRegister(t *testing.T) {
	vm := testutils.VM()
	m := testutils.CheckClass(t, vm, "Marshal", "")
	if !m.IsModule() {
		t.Error("Marshal is not a module")
	}
	testutils.CheckMethods(t, vm.ClassObject(m).SingletonClass(), []string{"dump", "load"})
}

func TestRoundTrip(t *testing.T) {
	vm := testutils.VM()
	rng := func(b, e *rcore.Object, excl bool) *rcore.Object {
		r, err := vm.NewRange(b, e, excl)
		if err != nil {
			t.Fatalf("couldn't create range: %v", err)
		}
		return r
	}
	cases := map[string]*rcore.Object{
		"Nil":          vm.Nil,
		"True":         vm.True,
		"False":        vm.False,
		"Zero":         vm.NewInteger(0),
		"Negative":     vm.NewInteger(-1 << 40),
		"Float":        vm.NewFloat(2.5),
		"Symbol":       vm.Intern("sym"),
		"String":       vm.NewString("héllo"),
		"EmptyString":  vm.NewString(""),
		"EmptyArray":   vm.NewArray(nil),
		"NestedArray":  vm.NewArray([]*rcore.Object{vm.NewInteger(1), vm.NewArray([]*rcore.Object{vm.NewString("x"), vm.Nil})}),
		"Range":        rng(vm.NewInteger(1), vm.NewInteger(10), false),
		"ExclRange":    rng(vm.NewString("a"), vm.NewString("e"), true),
		"EndlessRange": rng(vm.NewInteger(1), vm.Nil, false),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := marshal.Dump(vm, c)
			if err != nil {
				t.Fatalf("couldn't dump: %v", err)
			}
			r, err := marshal.Load(vm, b)
			if err != nil {
				t.Fatalf("couldn't load: %v", err)
			}
			eq, err := vm.Eq(c, r)
			if err != nil {
				t.Fatalf("couldn't compare: %v", err)
			}
			if !eq {
				w, _ := vm.Inspect(c)
				h, _ := vm.Inspect(r)
				t.Errorf("wrong result: wanted %s, have %s", w, h)
			}
		})
	}
}

func TestRoundTripEncoding(t *testing.T) {
	vm := testutils.VM()
	s := vm.NewStringBytes([]byte{'c', 'a', 'f', 0xe9}, rcore.ISO8859_1)
	d := testutils.Call(t, vm, vm.ClassObject(vm.CoreClass("Marshal")), "dump", s)
	if enc := d.Value.(*rcore.String).Encoding(); enc != rcore.ASCII8BIT {
		t.Errorf("dump has encoding %v, wanted ASCII-8BIT", enc)
	}
	r := testutils.Call(t, vm, vm.ClassObject(vm.CoreClass("Marshal")), "load", d)
	v := r.Value.(*rcore.String)
	if v.Encoding() != rcore.ISO8859_1 {
		t.Errorf("wrong encoding: wanted ISO-8859-1, have %v", v.Encoding())
	}
	if v.String() != "caf\xe9" {
		t.Errorf("wrong content: %q", v.String())
	}
	if r == s {
		t.Error("load returned the dumped object")
	}
}

func TestDumpErrors(t *testing.T) {
	vm := testutils.VM()
	rec := vm.NewArray(nil)
	testutils.Call(t, vm, rec, "push", rec)
	cases := map[string]struct {
		o     *rcore.Object
		class string
	}{
		"Recursive": {rec, rcore.ArgumentError},
		"Proc":      {vm.NewProc(func(args ...*rcore.Object) (*rcore.Object, error) { return nil, nil }, false), rcore.TypeError},
		"Object":    {vm.NewObject(vm.ObjectClass), rcore.TypeError},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := vm.Send(vm.ClassObject(vm.CoreClass("Marshal")), "dump", c.o)
			testutils.CheckRaise(t, vm, err, c.class)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	vm := testutils.VM()
	cases := map[string]struct {
		data  []byte
		class string
	}{
		"Empty":   {nil, rcore.ArgumentError},
		"Garbage": {[]byte("not cbor"), rcore.ArgumentError},
		// {1: 99, 2: {1: 0}}
		"Version": {[]byte{0xa2, 0x01, 0x18, 0x63, 0x02, 0xa1, 0x01, 0x00}, rcore.TypeError},
		// {1: 1, 2: {1: 200}}
		"Kind": {[]byte{0xa2, 0x01, 0x01, 0x02, 0xa1, 0x01, 0x18, 0xc8}, rcore.ArgumentError},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := marshal.Load(vm, c.data)
			testutils.CheckRaise(t, vm, err, c.class)
		})
	}
}
