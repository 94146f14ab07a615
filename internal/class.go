package internal

import (
	"fmt"
	"sort"

	"github.com/zephyrtronium/contains"
)

// Class is a class or module. Classes hold method tables; objects hold a
// pointer to their nominal class and optionally a singleton class.
type Class struct {
	name     string
	super    *Class
	includes []*Class
	module   bool
	// attached is the object owning a singleton class, nil otherwise.
	attached *Object
	methods  map[string]Fn
	// obj is the class's runtime object, created on first request.
	obj *Object
}

// Methods is a set of method implementations to install on a class.
type Methods map[string]Fn

// NewClass creates a class with the given name and superclass. super may be
// nil for a root class.
func NewClass(name string, super *Class) *Class {
	return &Class{name: name, super: super, methods: map[string]Fn{}}
}

// NewModule creates a module, which may be included into classes but has no
// superclass and no instances.
func NewModule(name string) *Class {
	return &Class{name: name, module: true, methods: map[string]Fn{}}
}

// Name returns the class's name. Singleton classes have no name.
func (c *Class) Name() string {
	return c.name
}

// Superclass returns the class's superclass, or nil for root classes and
// modules.
func (c *Class) Superclass() *Class {
	return c.super
}

// IsModule returns whether the class is a module.
func (c *Class) IsModule() bool {
	return c.module
}

// IsSingleton returns whether the class is the singleton class of an object.
func (c *Class) IsSingleton() bool {
	return c.attached != nil
}

// Attached returns the object owning a singleton class, or nil if c is not a
// singleton class.
func (c *Class) Attached() *Object {
	return c.attached
}

// Include mixes a module into the class. Modules included later precede
// modules included earlier in method resolution. Including a module twice
// does nothing.
func (c *Class) Include(m *Class) {
	for _, x := range c.includes {
		if x == m {
			return
		}
	}
	c.includes = append(c.includes, m)
}

// Define sets a method on the class.
func (c *Class) Define(name string, fn Fn) {
	c.methods[name] = fn
}

// DefineMethods sets each method in m on the class.
func (c *Class) DefineMethods(m Methods) {
	for name, fn := range m {
		c.methods[name] = fn
	}
}

// Method returns the class's own method with the given name, ignoring
// ancestors.
func (c *Class) Method(name string) (Fn, bool) {
	fn, ok := c.methods[name]
	return fn, ok
}

// MethodNames returns the names of the class's own methods in sorted order.
func (c *Class) MethodNames() []string {
	r := make([]string, 0, len(c.methods))
	for name := range c.methods {
		r = append(r, name)
	}
	sort.Strings(r)
	return r
}

// Classes is the class/module subsystem consumed by the runtime. It resolves
// constants to classes and produces method resolution orders.
type Classes interface {
	// LookupConstant returns the class bound to a constant name.
	LookupConstant(name string) (*Class, error)
	// SetConstant binds a constant name to a class.
	SetConstant(name string, c *Class)
	// Ancestors returns the method resolution order of c, beginning with c.
	Ancestors(c *Class) []*Class
}

// ClassTable is the default in-memory Classes implementation.
type ClassTable struct {
	consts map[string]*Class
}

// NewClassTable creates an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{consts: map[string]*Class{}}
}

// LookupConstant returns the class bound to name.
func (t *ClassTable) LookupConstant(name string) (*Class, error) {
	if c, ok := t.consts[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("uninitialized constant %s", name)
}

// SetConstant binds name to c.
func (t *ClassTable) SetConstant(name string, c *Class) {
	t.consts[name] = c
}

// Ancestors returns c, then each included module of c from last to first,
// then the ancestors of c's superclass. A module reachable along more than
// one path appears only at its first position.
func (t *ClassTable) Ancestors(c *Class) []*Class {
	var r []*Class
	var set contains.Set
	add := func(k *Class) {
		if set.Add(classID(k)) {
			r = append(r, k)
		}
	}
	for k := c; k != nil; k = k.super {
		add(k)
		for i := len(k.includes) - 1; i >= 0; i-- {
			add(k.includes[i])
		}
	}
	return r
}

// classID returns an identity for a class suitable for contains.Set. Class
// objects are created on demand, so the pointer of the method table serves.
func classID(c *Class) uintptr {
	return uintptrOf(c)
}

// CoreClass returns the class bound to the given constant. Panics if there is
// no such class!
func (vm *VM) CoreClass(name string) *Class {
	c, err := vm.Classes.LookupConstant(name)
	if err != nil {
		panic("rcore: no core class named " + name)
	}
	return c
}

// defineClass creates a class, binds it as a constant, and installs its
// methods.
func (vm *VM) defineClass(name string, super *Class, methods Methods) *Class {
	c := NewClass(name, super)
	c.DefineMethods(methods)
	vm.Classes.SetConstant(name, c)
	return c
}

// defineModule creates a module and binds it as a constant.
func (vm *VM) defineModule(name string, methods Methods) *Class {
	c := NewModule(name)
	c.DefineMethods(methods)
	vm.Classes.SetConstant(name, c)
	return c
}

// ClassObject returns the runtime object representing c.
func (vm *VM) ClassObject(c *Class) *Object {
	if c.obj == nil {
		k := vm.ClassClass
		if c.module {
			k = vm.ModuleClass
		}
		c.obj = vm.ObjectWith(k, c, ClassTag)
	}
	return c.obj
}

// SingletonClass returns the singleton class of o, creating it if needed.
func (vm *VM) SingletonClass(o *Object) *Class {
	return o.SingletonClass()
}

// FindMethod resolves a method by name for the receiver o. Resolution begins
// at o's singleton class if it has one, then proceeds through the ancestors of
// o's nominal class.
func (vm *VM) FindMethod(o *Object, name string) (Fn, *Class) {
	start := o.singleton
	if start == nil {
		start = o.class
	}
	if start == nil {
		return nil, nil
	}
	for _, c := range vm.Classes.Ancestors(start) {
		if fn, ok := c.methods[name]; ok {
			return fn, c
		}
	}
	return nil, nil
}

// RespondTo returns whether o has a method with the given name.
func (vm *VM) RespondTo(o *Object, name string) bool {
	fn, _ := vm.FindMethod(o, name)
	return fn != nil
}

// MethodNames returns the sorted names of all methods to which o responds.
func (vm *VM) MethodNames(o *Object) []string {
	start := o.singleton
	if start == nil {
		start = o.class
	}
	if start == nil {
		return nil
	}
	seen := map[string]bool{}
	var r []string
	for _, c := range vm.Classes.Ancestors(start) {
		for name := range c.methods {
			if !seen[name] {
				seen[name] = true
				r = append(r, name)
			}
		}
	}
	sort.Strings(r)
	return r
}

// IsKindOf returns whether c appears among the ancestors of o, including its
// singleton class.
func (vm *VM) IsKindOf(o *Object, c *Class) bool {
	if o.singleton == c && c != nil {
		return true
	}
	if o.class == nil {
		return false
	}
	for _, k := range vm.Classes.Ancestors(o.class) {
		if k == c {
			return true
		}
	}
	return false
}

// IsSubclass returns whether c is k or inherits from k.
func (vm *VM) IsSubclass(c, k *Class) bool {
	for _, x := range vm.Classes.Ancestors(c) {
		if x == k {
			return true
		}
	}
	return false
}

// ClassTag is the Tag for Class objects. Classes are shared by their copies.
var ClassTag = BasicTag("Class")
