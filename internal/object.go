package internal

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Object is the header shared by every runtime value. The variant-specific
// payload lives in Value and is described by the object's tag.
//
// Always use NewObject, ObjectWith, or a type-specific constructor to obtain
// new objects. Creating objects directly leaves them without an identity.
type Object struct {
	// Value is the object's type-specific primitive value.
	Value interface{}
	// tag is the type indicator of the object.
	tag Tag

	// class is the object's nominal class. It is nil only for objects created
	// while the VM is bootstrapping its class hierarchy.
	class *Class
	// singleton is the object's singleton class, created on first request.
	singleton *Class
	// frozen becomes true at most once and never reverts.
	frozen bool
	// ivars holds instance variables in order of first assignment.
	ivars ivarTable

	// id is the object's unique ID.
	id uintptr
}

// Tag is a type indicator for objects. Tags for different types must not be
// equal, meaning they must have different underlying types or different
// values otherwise.
type Tag interface {
	// CloneValue takes the Value of an existing object and returns the Value
	// for a copy of that object. Copies must not share mutable state with the
	// original.
	CloneValue(value interface{}) interface{}

	// String returns the name of the type associated with this tag.
	String() string
}

// BasicTag is a special Tag type for primitive types whose values are
// immutable, so that copies may share them.
type BasicTag string

// CloneValue returns value.
func (t BasicTag) CloneValue(value interface{}) interface{} {
	return value
}

// String returns the receiver.
func (t BasicTag) String() string {
	return string(t)
}

// objcounter is the global counter for object IDs. All accesses to this must
// be atomic.
var objcounter uintptr

// nextObject increments the object counter and returns its value as a unique
// ID for a new object.
func nextObject() uintptr {
	return atomic.AddUintptr(&objcounter, 1)
}

// Tag returns the object's type indicator. Plain objects have a nil tag.
func (o *Object) Tag() Tag {
	return o.tag
}

// UniqueID returns the object's unique ID.
func (o *Object) UniqueID() uintptr {
	return o.id
}

// ObjectID returns the object's unique ID as an integer.
func (o *Object) ObjectID() int64 {
	return int64(o.id)
}

// Equal returns whether o and other are the same object. Use VM.Eq for value
// equality.
func (o *Object) Equal(other *Object) bool {
	return o == other
}

// Class returns the object's nominal class, or nil if none has been assigned.
func (o *Object) Class() *Class {
	return o.class
}

// SingletonClass returns the object's singleton class, creating it if needed.
// The singleton class inherits from the object's nominal class, so it precedes
// that class in method resolution.
func (o *Object) SingletonClass() *Class {
	if o.singleton == nil {
		o.singleton = &Class{
			super:    o.class,
			attached: o,
			methods:  map[string]Fn{},
		}
	}
	return o.singleton
}

// HasSingletonClass returns whether the object's singleton class has been
// created.
func (o *Object) HasSingletonClass() bool {
	return o.singleton != nil
}

// Freeze marks the object as frozen and returns it. Freezing a frozen object
// does nothing.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

// IsFrozen returns whether the object is frozen.
func (o *Object) IsFrozen() bool {
	return o.frozen
}

// InstanceVariable returns the value of an instance variable and whether it
// is set. The name includes the leading @.
func (o *Object) InstanceVariable(name string) (*Object, bool) {
	v, ok := o.ivars.vals[name]
	return v, ok
}

// SetInstanceVariable sets an instance variable without checking whether the
// object is frozen or whether the name is valid.
func (o *Object) SetInstanceVariable(name string, value *Object) {
	o.ivars.set(name, value)
}

// InstanceVariableNames returns the names of the object's instance variables
// in order of first assignment.
func (o *Object) InstanceVariableNames() []string {
	return append([]string(nil), o.ivars.names...)
}

// ivarTable is an insertion-ordered map of instance variables.
type ivarTable struct {
	names []string
	vals  map[string]*Object
}

func (t *ivarTable) set(name string, value *Object) {
	if t.vals == nil {
		t.vals = make(map[string]*Object, 2)
	}
	if _, ok := t.vals[name]; !ok {
		t.names = append(t.names, name)
	}
	t.vals[name] = value
}

// ObjectWith creates a new object with the given class, value, and tag.
func (vm *VM) ObjectWith(class *Class, value interface{}, tag Tag) *Object {
	return &Object{
		Value: value,
		tag:   tag,
		class: class,
		id:    nextObject(),
	}
}

// NewObject creates a new plain object of the given class. If class is nil,
// the object's class is Object.
func (vm *VM) NewObject(class *Class) *Object {
	if class == nil {
		class = vm.ObjectClass
	}
	return vm.ObjectWith(class, nil, nil)
}

// Dup creates a copy of an object. The copy has a new identity, is not
// frozen, has no singleton class, and has the original's instance variables.
// Its value is produced by the tag's CloneValue method.
func (vm *VM) Dup(o *Object) *Object {
	var v interface{}
	if o.tag != nil {
		v = o.tag.CloneValue(o.Value)
	}
	r := vm.ObjectWith(o.class, v, o.tag)
	for _, name := range o.ivars.names {
		r.ivars.set(name, o.ivars.vals[name])
	}
	return r
}

// CheckFrozen returns a FrozenError if the object is frozen.
func (vm *VM) CheckFrozen(o *Object) error {
	if !o.frozen {
		return nil
	}
	s, err := vm.Inspect(o)
	if err != nil {
		s = vm.anyToS(o)
	}
	return vm.Raisef(FrozenError, "can't modify frozen %s: %s", vm.ClassName(o), s)
}

// ClassName returns the name of the object's nominal class, or the object's
// tag name if it has no class yet.
func (vm *VM) ClassName(o *Object) string {
	if o.class != nil {
		return o.class.Name()
	}
	if o.tag != nil {
		return o.tag.String()
	}
	return "Object"
}

// anyToS is the default to_s representation of an object.
func (vm *VM) anyToS(o *Object) string {
	return fmt.Sprintf("#<%s:%#016x>", vm.ClassName(o), o.id)
}

// anyInspect is the default inspect representation of an object, including
// its instance variables.
func (vm *VM) anyInspect(o *Object) (string, error) {
	if len(o.ivars.names) == 0 {
		return vm.anyToS(o), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "#<%s:%#016x", vm.ClassName(o), o.id)
	for i, name := range o.ivars.names {
		s, err := vm.Inspect(o.ivars.vals[name])
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(s)
	}
	b.WriteByte('>')
	return b.String(), nil
}
