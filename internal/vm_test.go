package internal_test

import (
	"reflect"
	"testing"

	"github.com/zephyrtronium/rcore"
	"github.com/zephyrtronium/rcore/testutils"
)

// TestNewVM tests that NewVM creates a VM.
func TestNewVM(t *testing.T) {
	if testutils.VM() == nil {
		t.Fatal("testVM is nil")
	}
}

// TestNewVMAttrs tests that a new VM has the attributes we expect.
func TestNewVMAttrs(t *testing.T) {
	vm := testutils.VM()
	attrs := []string{
		"Classes", "Main", "Nil", "True", "False",
		"BasicObjectClass", "ObjectClass", "ModuleClass", "ClassClass",
		"KernelModule", "ComparableModule", "NilClass", "TrueClass",
		"FalseClass", "IntegerClass", "FloatClass", "SymbolClass",
		"StringClass", "ArrayClass", "RangeClass", "RegexpClass",
		"MatchDataClass", "ProcClass", "ExceptionClass",
		"Stdout", "Process", "Regexps", "Log",
	}
	v := reflect.ValueOf(vm).Elem()
	for _, attr := range attrs {
		t.Run("Attr"+attr, func(t *testing.T) {
			e := v.FieldByName(attr)
			if !e.IsValid() {
				t.Fatal("no VM attribute", attr)
			}
			if e.IsNil() {
				t.Fatal("VM attribute", attr, "is nil")
			}
		})
	}
}

// TestCoreClasses tests that a new VM has the classes we expect with the
// superclasses we expect.
func TestCoreClasses(t *testing.T) {
	vm := testutils.VM()
	classes := map[string]string{
		"BasicObject":                  "",
		"Object":                       "BasicObject",
		"Module":                       "Object",
		"Class":                        "Module",
		"Kernel":                       "",
		"Comparable":                   "",
		"NilClass":                     "Object",
		"TrueClass":                    "Object",
		"FalseClass":                   "Object",
		"Integer":                      "Object",
		"Float":                        "Object",
		"Symbol":                       "Object",
		"String":                       "Object",
		"Encoding":                     "Object",
		"Array":                        "Object",
		"Range":                        "Object",
		"Regexp":                       "Object",
		"MatchData":                    "Object",
		"Proc":                         "Object",
		"Process":                      "",
		"Parser":                       "",
		"SyntaxTree":                   "Object",
		"Exception":                    "Object",
		"StopIteration":                "IndexError",
		"FrozenError":                  "RuntimeError",
		"NoMethodError":                "NameError",
		"SystemExit":                   "Exception",
		"FloatDomainError":             "RangeError",
		"NotImplementedError":          "ScriptError",
		"Encoding::CompatibilityError": "EncodingError",
	}
	for name, super := range classes {
		t.Run(name, func(t *testing.T) {
			testutils.CheckClass(t, vm, name, super)
		})
	}
}

// TestModules tests that modules are modules and classes are not.
func TestModules(t *testing.T) {
	vm := testutils.VM()
	cases := map[string]bool{
		"Kernel":     true,
		"Comparable": true,
		"Process":    true,
		"Parser":     true,
		"Object":     false,
		"String":     false,
		"Exception":  false,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			if have := vm.CoreClass(name).IsModule(); have != want {
				t.Errorf("IsModule is %t, wanted %t", have, want)
			}
		})
	}
}

// TestIncludes tests that core classes include the modules we expect.
func TestIncludes(t *testing.T) {
	vm := testutils.VM()
	cases := map[string]struct {
		class, module *rcore.Class
	}{
		"ObjectKernel":      {vm.ObjectClass, vm.KernelModule},
		"StringComparable":  {vm.StringClass, vm.ComparableModule},
		"IntegerComparable": {vm.IntegerClass, vm.ComparableModule},
		"FloatComparable":   {vm.FloatClass, vm.ComparableModule},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if !vm.IsSubclass(c.class, c.module) {
				t.Errorf("%s does not include %s", c.class.Name(), c.module.Name())
			}
		})
	}
}

// TestNewVMWithConfig tests that configuration settings reach the VM.
func TestNewVMWithConfig(t *testing.T) {
	cfg := rcore.DefaultConfig()
	cfg.DefaultEncoding = "ISO-8859-1"
	cfg.IntCacheLow = 0
	cfg.IntCacheHigh = 10
	vm := rcore.NewVMWithConfig(cfg)
	if enc := vm.NewString("x").Value.(*rcore.String).Encoding(); enc != rcore.ISO8859_1 {
		t.Errorf("new strings have encoding %v, wanted ISO-8859-1", enc)
	}
	if vm.NewInteger(10) != vm.NewInteger(10) {
		t.Error("10 not cached")
	}
	if vm.NewInteger(-1) == vm.NewInteger(-1) {
		t.Error("-1 cached")
	}
}

// TestNewVMWithBadConfig tests that invalid settings are replaced by
// defaults.
func TestNewVMWithBadConfig(t *testing.T) {
	cfg := rcore.Config{DefaultEncoding: "EBCDIC", IntCacheLow: 5, IntCacheHigh: 0}
	vm := rcore.NewVMWithConfig(cfg)
	if enc := vm.NewString("x").Value.(*rcore.String).Encoding(); enc != rcore.UTF8 {
		t.Errorf("new strings have encoding %v, wanted UTF-8", enc)
	}
	if vm.NewInteger(0) != vm.NewInteger(0) {
		t.Error("0 not cached")
	}
}

// TestRegisterAfterVM tests that registering an extension after a VM exists
// panics.
func TestRegisterAfterVM(t *testing.T) {
	testutils.VM()
	defer func() {
		if recover() == nil {
			t.Error("Register did not panic")
		}
	}()
	rcore.Register(func(*rcore.VM) {})
}

// TestSeparateVMs tests that VMs do not share state.
func TestSeparateVMs(t *testing.T) {
	a, b := testutils.NewVM(), testutils.NewVM()
	if a.Intern("x") == b.Intern("x") {
		t.Error("symbols shared between VMs")
	}
	testutils.Call(t, a, a.Main, "puts", a.NewString("a"))
	if out := testutils.Output(b); out != "" {
		t.Errorf("output of one VM reached another: %q", out)
	}
	if out := testutils.Output(a); out != "a\n" {
		t.Errorf("wrong output: %q", out)
	}
}
