package internal_test

import (
	"testing"

	"github.com/zephyrtronium/rcore"
	"github.com/zephyrtronium/rcore/testutils"
)

func ints(n ...int64) func(vm *rcore.VM) *rcore.Object {
	return func(vm *rcore.VM) *rcore.Object {
		l := make([]*rcore.Object, len(n))
		for i, x := range n {
			l[i] = vm.NewInteger(x)
		}
		return vm.NewArray(l)
	}
}

func TestArrayMethods(t *testing.T) {
	cases := map[string]testutils.SendTestCase{
		"[]": {
			Recv:   ints(1, 2, 3),
			Method: "[]",
			Args:   testutils.Args(testutils.Int(-1)),
			Pass:   testutils.PassEqual(testutils.Int(3)),
		},
		"[]Out": {
			Recv:   ints(1, 2, 3),
			Method: "[]",
			Args:   testutils.Args(testutils.Int(3)),
			Pass:   testutils.PassIdentical(nilObj),
		},
		"[]Length": {
			Recv:   ints(1, 2, 3),
			Method: "[]",
			Args:   testutils.Args(testutils.Int(1), testutils.Int(5)),
			Pass:   testutils.PassInspect("[2, 3]"),
		},
		"[]AtEnd": {
			Recv:   ints(1, 2, 3),
			Method: "[]",
			Args:   testutils.Args(testutils.Int(3), testutils.Int(1)),
			Pass:   testutils.PassInspect("[]"),
		},
		"[]Range": {
			Recv:   ints(1, 2, 3, 4),
			Method: "[]",
			Args:   testutils.Args(rng(testutils.Int(1), testutils.Int(-2), false)),
			Pass:   testutils.PassInspect("[2, 3]"),
		},
		"[]EndlessRange": {
			Recv:   ints(1, 2, 3, 4),
			Method: "[]",
			Args:   testutils.Args(rng(testutils.Int(2), nil, false)),
			Pass:   testutils.PassInspect("[3, 4]"),
		},
		"[]BadIndex": {
			Recv:   ints(1),
			Method: "[]",
			Args:   testutils.Args(testutils.Str("0")),
			Pass:   testutils.PassRaise(rcore.TypeError),
		},
		"first": {
			Recv:   ints(1, 2, 3),
			Method: "first",
			Args:   testutils.Args(testutils.Int(2)),
			Pass:   testutils.PassInspect("[1, 2]"),
		},
		"lastEmpty": {
			Recv:   ints(),
			Method: "last",
			Pass:   testutils.PassIdentical(nilObj),
		},
		"lastNegative": {
			Recv:   ints(1),
			Method: "last",
			Args:   testutils.Args(testutils.Int(-1)),
			Pass:   testutils.PassRaise(rcore.ArgumentError),
		},
		"==": {
			Recv:   ints(1, 2),
			Method: "==",
			Args: testutils.Args(func(vm *rcore.VM) *rcore.Object {
				return vm.NewArray([]*rcore.Object{vm.NewFloat(1), vm.NewInteger(2)})
			}),
			Pass: testutils.PassIdentical(trueObj),
		},
		"include?": {
			Recv:   ints(1, 2),
			Method: "include?",
			Args:   testutils.Args(flt(2)),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"join": {
			Recv: func(vm *rcore.VM) *rcore.Object {
				return vm.NewArray([]*rcore.Object{vm.NewInteger(1), vm.NewArray([]*rcore.Object{vm.NewString("a"), vm.Nil}), vm.Intern("b")})
			},
			Method: "join",
			Args:   testutils.Args(testutils.Str("-")),
			Pass:   testutils.PassString("1-a--b"),
		},
		"inspect": {
			Recv: func(vm *rcore.VM) *rcore.Object {
				return vm.NewArray([]*rcore.Object{vm.NewString("a"), vm.Intern("b"), vm.Nil, vm.NewFloat(1)})
			},
			Method: "inspect",
			Pass:   testutils.PassString(`["a", :b, nil, 1.0]`),
		},
		"size": {
			Recv:   ints(1, 2, 3),
			Method: "length",
			Pass:   testutils.PassEqual(testutils.Int(3)),
		},
		"pop": {
			Recv:   ints(1, 2, 3),
			Method: "pop",
			Pass:   testutils.PassEqual(testutils.Int(3)),
		},
		"mapNoBlock": {
			Recv:   ints(1),
			Method: "map",
			Pass:   testutils.PassRaise(rcore.LocalJumpError),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestArrayMap(t *testing.T) {
	vm := testutils.VM()
	r, err := vm.SendBlock(ints(1, 2, 3)(vm), "map", func(args ...*rcore.Object) (*rcore.Object, error) {
		return vm.Send(args[0], "*", vm.NewInteger(10))
	})
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	testutils.CheckInspect(t, vm, r, "[10, 20, 30]")
}

func TestArrayEachGrowing(t *testing.T) {
	vm := testutils.VM()
	a := ints(1)(vm)
	n := 0
	_, err := vm.SendBlock(a, "each", func(args ...*rcore.Object) (*rcore.Object, error) {
		n++
		if n < 3 {
			return vm.Send(a, "push", vm.NewInteger(int64(n+1)))
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("each failed: %v", err)
	}
	if n != 3 {
		t.Errorf("visited %d elements, wanted 3", n)
	}
}

func TestArrayRecursive(t *testing.T) {
	vm := testutils.VM()
	a := ints(1)(vm)
	testutils.Call(t, vm, a, "push", a)
	testutils.CheckInspect(t, vm, a, "[1, [...]]")
	_, err := vm.Send(a, "join")
	testutils.CheckRaise(t, vm, err, rcore.ArgumentError)
}

func TestArrayFrozen(t *testing.T) {
	vm := testutils.VM()
	a := ints(1, 2)(vm).Freeze()
	for _, name := range []string{"push", "pop", "<<"} {
		t.Run(name, func(t *testing.T) {
			var args []*rcore.Object
			if name != "pop" {
				args = append(args, vm.NewInteger(3))
			}
			_, err := vm.Send(a, name, args...)
			testutils.CheckRaise(t, vm, err, rcore.FrozenError)
			testutils.CheckInspect(t, vm, a, "[1, 2]")
		})
	}
}
