package internal_test

import (
	"regexp"
	"testing"

	"github.com/zephyrtronium/rcore"
	"github.com/zephyrtronium/rcore/testutils"
)

// TestObjectIdentity tests that distinct objects have distinct identities
// even when they are equal.
func TestObjectIdentity(t *testing.T) {
	vm := testutils.VM()
	a, b := vm.NewString(""), vm.NewString("")
	ida := testutils.Call(t, vm, a, "object_id")
	idb := testutils.Call(t, vm, b, "object_id")
	if eq, _ := vm.Eq(ida, idb); eq {
		t.Errorf("distinct strings share object_id %d", ida.Value)
	}
	if again := testutils.Call(t, vm, a, "object_id"); again.Value != ida.Value {
		t.Errorf("object_id changed from %d to %d", ida.Value, again.Value)
	}
	if r := testutils.Call(t, vm, a, "equal?", b); r != vm.False {
		t.Error("equal? is true for distinct strings")
	}
	if r := testutils.Call(t, vm, a, "==", b); r != vm.True {
		t.Error("== is false for equal strings")
	}
	if a.Equal(b) || !a.Equal(a) {
		t.Error("Equal disagrees with identity")
	}
	if a.ObjectID() != ida.Value.(int64) {
		t.Errorf("ObjectID %d disagrees with object_id %d", a.ObjectID(), ida.Value)
	}
}

// TestSingletonClass tests that singleton classes are created once and
// precede the nominal class in method resolution.
func TestSingletonClass(t *testing.T) {
	vm := testutils.VM()
	o := vm.NewObject(nil)
	if o.HasSingletonClass() {
		t.Fatal("new object has a singleton class")
	}
	s := testutils.Call(t, vm, o, "singleton_class")
	if s2 := testutils.Call(t, vm, o, "singleton_class"); s2 != s {
		t.Error("singleton_class is not idempotent")
	}
	if !o.HasSingletonClass() {
		t.Error("singleton class not recorded")
	}
	if c := testutils.Call(t, vm, o, "class"); c != vm.ClassObject(vm.ObjectClass) {
		t.Error("singleton class changed the nominal class")
	}
	testutils.Call(t, vm, o, "define_singleton_method", vm.Intern("to_s"), vm.NewProc(func(args ...*rcore.Object) (*rcore.Object, error) {
		return vm.NewString("special"), nil
	}, true))
	testutils.CheckString(t, testutils.Call(t, vm, o, "to_s"), "special")
	other := vm.NewObject(nil)
	if s, _ := vm.AsString(other); s == "special" {
		t.Error("singleton method leaked to another object")
	}
	if r := testutils.Call(t, vm, o, "is_a?", s); r != vm.True {
		t.Error("object is not a kind of its singleton class")
	}
}

// TestSingletonClassImmediate tests that immediates refuse singleton classes.
func TestSingletonClassImmediate(t *testing.T) {
	vm := testutils.VM()
	cases := map[string]*rcore.Object{
		"Integer": vm.NewInteger(1),
		"Float":   vm.NewFloat(1),
		"Symbol":  vm.Intern("x"),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := vm.Send(c, "singleton_class")
			testutils.CheckRaise(t, vm, err, rcore.TypeError)
		})
	}
	if r := testutils.Call(t, vm, vm.Nil, "singleton_class"); r != vm.ClassObject(vm.NilClass) {
		t.Error("nil's singleton class is not NilClass")
	}
}

// TestFreeze tests that freezing is monotonic and blocks mutation.
func TestFreeze(t *testing.T) {
	vm := testutils.VM()
	o := vm.NewObject(nil)
	if r := testutils.Call(t, vm, o, "frozen?"); r != vm.False {
		t.Fatal("new object is frozen")
	}
	if r := testutils.Call(t, vm, o, "freeze"); r != o {
		t.Error("freeze did not return the receiver")
	}
	testutils.Call(t, vm, o, "freeze")
	if r := testutils.Call(t, vm, o, "frozen?"); r != vm.True {
		t.Error("freeze did not freeze")
	}
	_, err := vm.Send(o, "instance_variable_set", vm.Intern("@a"), vm.NewInteger(1))
	testutils.CheckRaise(t, vm, err, rcore.FrozenError)
	if _, ok := o.InstanceVariable("@a"); ok {
		t.Error("instance variable set on frozen object")
	}
	_, err = vm.SendBlock(o, "define_singleton_method", func(args ...*rcore.Object) (*rcore.Object, error) { return nil, nil }, vm.Intern("x"))
	testutils.CheckRaise(t, vm, err, rcore.FrozenError)
	if d := testutils.Call(t, vm, o, "dup"); d.IsFrozen() {
		t.Error("dup is frozen")
	}
	if c := testutils.Call(t, vm, o, "clone"); !c.IsFrozen() {
		t.Error("clone is not frozen")
	}
	if !o.IsFrozen() {
		t.Error("copying unfroze the original")
	}
}

// TestInstanceVariables tests getting and setting instance variables.
func TestInstanceVariables(t *testing.T) {
	vm := testutils.VM()
	o := vm.NewObject(nil)
	if r := testutils.Call(t, vm, o, "instance_variable_get", vm.Intern("@missing")); r != vm.Nil {
		t.Error("unset instance variable is not nil")
	}
	v := vm.NewString("v")
	if r := testutils.Call(t, vm, o, "instance_variable_set", vm.Intern("@b"), v); r != v {
		t.Error("instance_variable_set did not return the value")
	}
	testutils.Call(t, vm, o, "instance_variable_set", vm.NewString("@a"), vm.NewInteger(1))
	if r := testutils.Call(t, vm, o, "instance_variable_get", vm.Intern("@b")); r != v {
		t.Error("instance_variable_get returned the wrong object")
	}
	if r := testutils.Call(t, vm, o, "instance_variable_defined?", vm.Intern("@a")); r != vm.True {
		t.Error("@a not defined")
	}
	testutils.CheckInspect(t, vm, testutils.Call(t, vm, o, "instance_variables"), "[:@b, :@a]")
	re := regexp.MustCompile(`^#<Object:0x[0-9a-f]+ @b="v", @a=1>$`)
	if s, _ := vm.Inspect(o); !re.MatchString(s) {
		t.Errorf("wrong inspect: %q", s)
	}
	self := vm.NewObject(vm.ObjectClass)
	self.SetInstanceVariable("@self", self)
	re = regexp.MustCompile(`^#<Object:(0x[0-9a-f]+) @self=#<Object:(0x[0-9a-f]+) \.\.\.>>$`)
	if s, _ := vm.Inspect(self); !re.MatchString(s) {
		t.Errorf("wrong recursive inspect: %q", s)
	} else if m := re.FindStringSubmatch(s); m[1] != m[2] {
		t.Errorf("recursive inspect names a different object: %q", s)
	}
	d := testutils.Call(t, vm, o, "dup")
	testutils.Call(t, vm, d, "instance_variable_set", vm.Intern("@a"), vm.NewInteger(2))
	if r := testutils.Call(t, vm, o, "instance_variable_get", vm.Intern("@a")); r.Value != int64(1) {
		t.Error("setting an instance variable on a dup changed the original")
	}
	bad := map[string]struct {
		name  *rcore.Object
		class string
	}{
		"NoAt":      {vm.Intern("a"), rcore.NameError},
		"Digit":     {vm.Intern("@1"), rcore.NameError},
		"DoubleAt":  {vm.Intern("@@a"), rcore.NameError},
		"Space":     {vm.NewString("@a b"), rcore.NameError},
		"NotString": {vm.NewInteger(1), rcore.TypeError},
	}
	for name, c := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := vm.Send(o, "instance_variable_get", c.name)
			testutils.CheckRaise(t, vm, err, c.class)
		})
	}
}

// TestIsA tests class membership through superclasses, modules, and
// singleton classes.
func TestIsA(t *testing.T) {
	vm := testutils.VM()
	s := vm.NewString("x")
	cases := map[string]struct {
		o    *rcore.Object
		c    *rcore.Class
		want bool
	}{
		"Own":        {s, vm.StringClass, true},
		"Super":      {s, vm.ObjectClass, true},
		"Root":       {s, vm.BasicObjectClass, true},
		"Module":     {s, vm.ComparableModule, true},
		"Kernel":     {s, vm.KernelModule, true},
		"Unrelated":  {s, vm.ArrayClass, false},
		"Nil":        {vm.Nil, vm.NilClass, true},
		"NilObject":  {vm.Nil, vm.ObjectClass, true},
		"IntNumeric": {vm.NewInteger(1), vm.ComparableModule, true},
		"IntFloat":   {vm.NewInteger(1), vm.FloatClass, false},
		"Exception":  {vm.NewException(vm.CoreClass(rcore.KeyError), ""), vm.CoreClass(rcore.StandardError), true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r := testutils.Call(t, vm, c.o, "is_a?", vm.ClassObject(c.c))
			if r != vm.Bool(c.want) {
				t.Errorf("is_a? gave %v, wanted %t", r.Value, c.want)
			}
			r = testutils.Call(t, vm, c.o, "kind_of?", vm.ClassObject(c.c))
			if r != vm.Bool(c.want) {
				t.Errorf("kind_of? gave %v, wanted %t", r.Value, c.want)
			}
		})
	}
	_, err := vm.Send(s, "is_a?", s)
	testutils.CheckRaise(t, vm, err, rcore.TypeError)
}

// TestClassNew tests creating classes and their instances.
func TestClassNew(t *testing.T) {
	vm := testutils.VM()
	classObj := vm.ClassObject(vm.ClassClass)
	c := testutils.Call(t, vm, classObj, "new")
	if r := testutils.Call(t, vm, c, "name"); r != vm.Nil {
		t.Error("anonymous class has a name")
	}
	if r := testutils.Call(t, vm, c, "superclass"); r != vm.ClassObject(vm.ObjectClass) {
		t.Error("anonymous class does not inherit from Object")
	}
	testutils.Call(t, vm, c, "define_method", vm.Intern("greet"), vm.NewProc(func(args ...*rcore.Object) (*rcore.Object, error) {
		return vm.NewString("hi"), nil
	}, true))
	o := testutils.Call(t, vm, c, "new")
	testutils.CheckString(t, testutils.Call(t, vm, o, "greet"), "hi")
	if r := testutils.Call(t, vm, c, "method_defined?", vm.Intern("greet")); r != vm.True {
		t.Error("greet not defined")
	}
	if r := testutils.Call(t, vm, c, "===", o); r != vm.True {
		t.Error("=== is false for an instance")
	}

	sc := testutils.Call(t, vm, classObj, "new", vm.ClassObject(vm.StringClass))
	s := testutils.Call(t, vm, sc, "new", vm.NewString("abc"))
	testutils.CheckString(t, s, "abc")
	testutils.CheckString(t, testutils.Call(t, vm, s, "upcase"), "ABC")

	e := testutils.Call(t, vm, vm.ClassObject(vm.CoreClass(rcore.ArgumentError)), "new", vm.NewString("bad"))
	testutils.CheckString(t, testutils.Call(t, vm, e, "message"), "bad")

	_, err := vm.Send(vm.ClassObject(vm.IntegerClass), "new")
	testutils.CheckRaise(t, vm, err, rcore.NoMethodError)
	_, err = vm.Send(classObj, "new", vm.ClassObject(vm.KernelModule))
	testutils.CheckRaise(t, vm, err, rcore.TypeError)
}

// TestModuleInclude tests mixing modules into classes.
func TestModuleInclude(t *testing.T) {
	vm := testutils.VM()
	m := testutils.Call(t, vm, vm.ClassObject(vm.ModuleClass), "new")
	testutils.Call(t, vm, m, "define_method", vm.Intern("mixed"), vm.NewProc(func(args ...*rcore.Object) (*rcore.Object, error) {
		return vm.NewInteger(7), nil
	}, true))
	c := testutils.Call(t, vm, vm.ClassObject(vm.ClassClass), "new")
	testutils.Call(t, vm, c, "include", m)
	if r := testutils.Call(t, vm, c, "include?", m); r != vm.True {
		t.Error("include? is false after include")
	}
	o := testutils.Call(t, vm, c, "new")
	if r := testutils.Call(t, vm, o, "mixed"); r.Value != int64(7) {
		t.Errorf("mixed returned %v", r.Value)
	}
	anc := testutils.Call(t, vm, c, "ancestors").Value.([]*rcore.Object)
	if len(anc) < 2 || anc[0] != c || anc[1] != m {
		t.Error("module does not follow the class in ancestors")
	}
	if r := testutils.Call(t, vm, c, "<", vm.ClassObject(vm.ObjectClass)); r != vm.True {
		t.Error("class is not < Object")
	}
	if r := testutils.Call(t, vm, c, "<", vm.ClassObject(vm.StringClass)); r != vm.Nil {
		t.Error("unrelated classes are ordered")
	}
	_, err := vm.Send(c, "include", vm.ClassObject(vm.StringClass))
	testutils.CheckRaise(t, vm, err, rcore.TypeError)
}

// TestInspectNames tests inspect of classes and the top-level object.
func TestInspectNames(t *testing.T) {
	vm := testutils.VM()
	testutils.CheckInspect(t, vm, vm.Main, "main")
	testutils.CheckInspect(t, vm, vm.ClassObject(vm.StringClass), "String")
	testutils.CheckInspect(t, vm, vm.ClassObject(vm.CoreClass(rcore.InvalidByteSequenceError)), "Encoding::InvalidByteSequenceError")
	re := regexp.MustCompile(`^#<Object:0x[0-9a-f]+>$`)
	if s, _ := vm.AsString(vm.NewObject(nil)); !re.MatchString(s) {
		t.Errorf("wrong to_s: %q", s)
	}
}
