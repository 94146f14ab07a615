package internal_test

import (
	"math"
	"testing"

	"github.com/zephyrtronium/rcore"
	"github.com/zephyrtronium/rcore/testutils"
)

// rng returns a function creating a Range from the given endpoint
// constructors. A nil constructor gives an open endpoint.
func rng(b, e func(vm *rcore.VM) *rcore.Object, excl bool) func(vm *rcore.VM) *rcore.Object {
	return func(vm *rcore.VM) *rcore.Object {
		var bv, ev *rcore.Object
		if b != nil {
			bv = b(vm)
		}
		if e != nil {
			ev = e(vm)
		}
		r, err := vm.NewRange(bv, ev, excl)
		if err != nil {
			panic(err)
		}
		return r
	}
}

func flt(x float64) func(vm *rcore.VM) *rcore.Object {
	return func(vm *rcore.VM) *rcore.Object { return vm.NewFloat(x) }
}

func nilObj(vm *rcore.VM) *rcore.Object { return vm.Nil }

func trueObj(vm *rcore.VM) *rcore.Object { return vm.True }

func falseObj(vm *rcore.VM) *rcore.Object { return vm.False }

func TestNewRange(t *testing.T) {
	vm := testutils.VM()
	r, err := vm.NewRange(vm.NewInteger(1), vm.NewInteger(5), false)
	if err != nil {
		t.Fatalf("couldn't create range: %v", err)
	}
	if !r.IsFrozen() {
		t.Error("range is not frozen")
	}
	if r.Tag() != rcore.RangeTag {
		t.Errorf("wrong tag: %v", r.Tag())
	}
	_, err = vm.NewRange(vm.NewInteger(1), vm.NewString("a"), false)
	testutils.CheckRaise(t, vm, err, rcore.ArgumentError)
	_, err = vm.NewRange(vm.NewObject(nil), vm.NewObject(nil), false)
	testutils.CheckRaise(t, vm, err, rcore.ArgumentError)
	if _, err := vm.NewRange(nil, vm.NewString("a"), true); err != nil {
		t.Errorf("beginless range failed: %v", err)
	}
	n := testutils.Call(t, vm, vm.ClassObject(vm.RangeClass), "new", vm.NewInteger(1), vm.NewInteger(3), vm.True)
	testutils.CheckInspect(t, vm, n, "1...3")
}

func TestRangeMethods(t *testing.T) {
	cases := map[string]testutils.SendTestCase{
		"to_a": {
			Recv:   rng(testutils.Int(1), testutils.Int(5), false),
			Method: "to_a",
			Pass:   testutils.PassInspect("[1, 2, 3, 4, 5]"),
		},
		"to_aExclusive": {
			Recv:   rng(testutils.Int(1), testutils.Int(5), true),
			Method: "to_a",
			Pass:   testutils.PassInspect("[1, 2, 3, 4]"),
		},
		"to_aEmpty": {
			Recv:   rng(testutils.Int(5), testutils.Int(1), false),
			Method: "to_a",
			Pass:   testutils.PassInspect("[]"),
		},
		"to_aFloatEnd": {
			Recv:   rng(testutils.Int(1), flt(3.5), false),
			Method: "to_a",
			Pass:   testutils.PassInspect("[1, 2, 3]"),
		},
		"to_aEndless": {
			Recv:   rng(testutils.Int(1), nil, false),
			Method: "to_a",
			Pass:   testutils.PassRaise(rcore.RangeError),
		},
		"to_aFloat": {
			Recv:   rng(flt(1.5), testutils.Int(3), false),
			Method: "to_a",
			Pass:   testutils.PassRaise(rcore.TypeError),
		},
		"to_aStrings": {
			Recv:   rng(testutils.Str("a"), testutils.Str("e"), false),
			Method: "to_a",
			Pass:   testutils.PassInspect(`["a", "b", "c", "d", "e"]`),
		},
		"to_aStringsExclusive": {
			Recv:   rng(testutils.Str("a"), testutils.Str("e"), true),
			Method: "to_a",
			Pass:   testutils.PassInspect(`["a", "b", "c", "d"]`),
		},
		"to_aLongStrings": {
			Recv:   rng(testutils.Str("ay"), testutils.Str("bb"), false),
			Method: "to_a",
			Pass:   testutils.PassInspect(`["ay", "az", "ba", "bb"]`),
		},
		"to_aBackwardStrings": {
			Recv:   rng(testutils.Str("y"), testutils.Str("ab"), false),
			Method: "to_a",
			Pass:   testutils.PassInspect(`[]`),
		},
		"===": {
			Recv:   rng(testutils.Int(1), testutils.Int(10), false),
			Method: "===",
			Args:   testutils.Args(flt(2.5)),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"===End": {
			Recv:   rng(testutils.Int(1), testutils.Int(10), true),
			Method: "===",
			Args:   testutils.Args(testutils.Int(10)),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"===Incomparable": {
			Recv:   rng(testutils.Int(1), testutils.Int(10), false),
			Method: "===",
			Args:   testutils.Args(testutils.Str("5")),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"===Endless": {
			Recv:   rng(testutils.Int(1), nil, false),
			Method: "===",
			Args:   testutils.Args(testutils.Int(1 << 40)),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"===Beginless": {
			Recv:   rng(nil, testutils.Int(0), false),
			Method: "===",
			Args:   testutils.Args(testutils.Int(1)),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"cover?Strings": {
			Recv:   rng(testutils.Str("a"), testutils.Str("c"), false),
			Method: "cover?",
			Args:   testutils.Args(testutils.Str("bb")),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"include?Strings": {
			Recv:   rng(testutils.Str("a"), testutils.Str("c"), false),
			Method: "include?",
			Args:   testutils.Args(testutils.Str("bb")),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"include?StringMember": {
			Recv:   rng(testutils.Str("a"), testutils.Str("c"), false),
			Method: "include?",
			Args:   testutils.Args(testutils.Str("b")),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"include?Numbers": {
			Recv:   rng(testutils.Int(1), testutils.Int(3), false),
			Method: "include?",
			Args:   testutils.Args(flt(1.5)),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"inspect": {
			Recv:   rng(testutils.Str("a"), testutils.Str("b"), true),
			Method: "inspect",
			Pass:   testutils.PassString(`"a"..."b"`),
		},
		"inspectEndless": {
			Recv:   rng(testutils.Int(1), nil, false),
			Method: "inspect",
			Pass:   testutils.PassString("1.."),
		},
		"inspectBeginless": {
			Recv:   rng(nil, testutils.Int(1), true),
			Method: "inspect",
			Pass:   testutils.PassString("...1"),
		},
		"inspectOpen": {
			Recv:   rng(nil, nil, false),
			Method: "inspect",
			Pass:   testutils.PassString("nil..nil"),
		},
		"to_s": {
			Recv:   rng(testutils.Str("a"), testutils.Str("b"), false),
			Method: "to_s",
			Pass:   testutils.PassString("a..b"),
		},
		"==": {
			Recv:   rng(testutils.Int(1), testutils.Int(2), false),
			Method: "==",
			Args:   testutils.Args(rng(testutils.Int(1), testutils.Int(2), false)),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"==Float": {
			Recv:   rng(testutils.Int(1), testutils.Int(2), false),
			Method: "==",
			Args:   testutils.Args(rng(flt(1), testutils.Int(2), false)),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"eql?Float": {
			Recv:   rng(testutils.Int(1), testutils.Int(2), false),
			Method: "eql?",
			Args:   testutils.Args(rng(flt(1), testutils.Int(2), false)),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"==Exclusive": {
			Recv:   rng(testutils.Int(1), testutils.Int(2), false),
			Method: "==",
			Args:   testutils.Args(rng(testutils.Int(1), testutils.Int(2), true)),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"==NotRange": {
			Recv:   rng(testutils.Int(1), testutils.Int(2), false),
			Method: "==",
			Args:   testutils.Args(testutils.Int(1)),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"size": {
			Recv:   rng(testutils.Int(1), testutils.Int(10), true),
			Method: "size",
			Pass:   testutils.PassEqual(testutils.Int(9)),
		},
		"sizeEmpty": {
			Recv:   rng(testutils.Int(10), testutils.Int(1), false),
			Method: "size",
			Pass:   testutils.PassEqual(testutils.Int(0)),
		},
		"sizeEndless": {
			Recv:   rng(testutils.Int(1), nil, false),
			Method: "size",
			Pass:   testutils.PassEqual(flt(math.Inf(1))),
		},
		"sizeStrings": {
			Recv:   rng(testutils.Str("a"), testutils.Str("z"), false),
			Method: "size",
			Pass:   testutils.PassIdentical(nilObj),
		},
		"sizeFloat": {
			Recv:   rng(flt(1), testutils.Int(3), false),
			Method: "size",
			Pass:   testutils.PassRaise(rcore.TypeError),
		},
		"first": {
			Recv:   rng(testutils.Int(1), nil, false),
			Method: "first",
			Args:   testutils.Args(testutils.Int(3)),
			Pass:   testutils.PassInspect("[1, 2, 3]"),
		},
		"firstBeginless": {
			Recv:   rng(nil, testutils.Int(3), false),
			Method: "first",
			Pass:   testutils.PassRaise(rcore.RangeError),
		},
		"firstNegative": {
			Recv:   rng(testutils.Int(1), testutils.Int(3), false),
			Method: "first",
			Args:   testutils.Args(testutils.Int(-1)),
			Pass:   testutils.PassRaise(rcore.ArgumentError),
		},
		"begin": {
			Recv:   rng(testutils.Int(1), testutils.Int(3), true),
			Method: "begin",
			Pass:   testutils.PassEqual(testutils.Int(1)),
		},
		"exclude_end?": {
			Recv:   rng(testutils.Int(1), testutils.Int(3), true),
			Method: "exclude_end?",
			Pass:   testutils.PassIdentical(trueObj),
		},
		"eachNoBlock": {
			Recv:   rng(testutils.Int(1), testutils.Int(3), false),
			Method: "each",
			Pass:   testutils.PassRaise(rcore.LocalJumpError),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestRangeEach(t *testing.T) {
	vm := testutils.VM()
	r := rng(testutils.Int(1), testutils.Int(5), false)(vm)
	var sum int64
	v, err := vm.SendBlock(r, "each", func(args ...*rcore.Object) (*rcore.Object, error) {
		sum += args[0].Value.(int64)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("each failed: %v", err)
	}
	if v != r {
		t.Error("each didn't return the receiver")
	}
	if sum != 15 {
		t.Errorf("wrong sum: wanted 15, have %d", sum)
	}
}

func TestRangeEachBreak(t *testing.T) {
	vm := testutils.VM()
	r := rng(testutils.Int(1), nil, false)(vm)
	n := 0
	v, err := vm.SendBlock(r, "each", func(args ...*rcore.Object) (*rcore.Object, error) {
		n++
		if args[0].Value.(int64) == 100 {
			return nil, &rcore.Break{Result: vm.NewString("done")}
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("each failed: %v", err)
	}
	testutils.CheckString(t, v, "done")
	if n != 100 {
		t.Errorf("block called %d times, wanted 100", n)
	}
}

func TestRangeEachError(t *testing.T) {
	vm := testutils.VM()
	r := rng(testutils.Int(1), testutils.Int(10), false)(vm)
	n := 0
	_, err := vm.SendBlock(r, "each", func(args ...*rcore.Object) (*rcore.Object, error) {
		n++
		if n == 3 {
			return nil, vm.Raise(rcore.RuntimeError, "stop")
		}
		return nil, nil
	})
	testutils.CheckRaise(t, vm, err, rcore.RuntimeError)
	if n != 3 {
		t.Errorf("block called %d times after raising, wanted 3", n)
	}
}

func TestRangeIter(t *testing.T) {
	vm := testutils.VM()
	r := rng(testutils.Int(math.MaxInt64-2), nil, false)(vm)
	it, err := vm.Iter(r.Value.(*rcore.Range))
	if err != nil {
		t.Fatalf("couldn't iterate: %v", err)
	}
	for i := int64(0); i < 3; i++ {
		v, ok, err := it.Next()
		if err != nil || !ok {
			t.Fatalf("iteration ended early at %d: %v", i, err)
		}
		if v.Value.(int64) != math.MaxInt64-2+i {
			t.Errorf("wrong element %d: %v", i, v.Value)
		}
	}
	if _, ok, err := it.Next(); ok {
		t.Error("iteration continued past the largest Integer")
	} else if err != nil {
		testutils.CheckRaise(t, vm, err, rcore.RangeError)
	}
	if _, ok, _ := it.Next(); ok {
		t.Error("ended iterator produced an element")
	}
}

func TestRangeGenericSucc(t *testing.T) {
	vm := testutils.VM()
	c := rcore.NewClass("Counter", vm.ObjectClass)
	c.Include(vm.ComparableModule)
	c.DefineMethods(rcore.Methods{
		"succ": func(vm *rcore.VM, self *rcore.Object, args []*rcore.Object, blk rcore.Block) (*rcore.Object, error) {
			n, _ := self.InstanceVariable("@n")
			o := vm.NewObject(c)
			o.SetInstanceVariable("@n", vm.NewInteger(n.Value.(int64)+1))
			return o, nil
		},
		"<=>": func(vm *rcore.VM, self *rcore.Object, args []*rcore.Object, blk rcore.Block) (*rcore.Object, error) {
			x, _ := self.InstanceVariable("@n")
			y, ok := args[0].InstanceVariable("@n")
			if !ok {
				return vm.Nil, nil
			}
			a, b := x.Value.(int64), y.Value.(int64)
			switch {
			case a < b:
				return vm.NewInteger(-1), nil
			case a > b:
				return vm.NewInteger(1), nil
			}
			return vm.NewInteger(0), nil
		},
	})
	mk := func(n int64) *rcore.Object {
		o := vm.NewObject(c)
		o.SetInstanceVariable("@n", vm.NewInteger(n))
		return o
	}
	r, err := vm.NewRange(mk(2), mk(5), true)
	if err != nil {
		t.Fatalf("couldn't create range: %v", err)
	}
	var got []int64
	err = vm.Each(r.Value.(*rcore.Range), func(v *rcore.Object) error {
		n, _ := v.InstanceVariable("@n")
		got = append(got, n.Value.(int64))
		return nil
	})
	if err != nil {
		t.Fatalf("each failed: %v", err)
	}
	if len(got) != 3 || got[0] != 2 || got[2] != 4 {
		t.Errorf("wrong elements: %v", got)
	}
}
