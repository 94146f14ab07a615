// Package marshal adds the Marshal module, which serializes core values to
// and from a binary form.
//
// The format is CBOR. A dump is an envelope holding the format version and a
// tree of nodes, one per value. Strings keep their encodings. Objects whose
// values are not core data, such as procs and exceptions, cannot be dumped.
package marshal

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/zephyrtronium/rcore"
)

// Version is the format version written by Dump.
const Version = 1

// kind identifies the type of value a node holds.
type kind uint8

const (
	kindNil kind = iota
	kindTrue
	kindFalse
	kindInteger
	kindFloat
	kindString
	kindSymbol
	kindArray
	kindRange
)

// envelope is the top level of a dump.
type envelope struct {
	Version int  `cbor:"1,keyasint"`
	Root    node `cbor:"2,keyasint"`
}

// node is one serialized value.
type node struct {
	Kind      kind    `cbor:"1,keyasint"`
	Int       int64   `cbor:"2,keyasint,omitempty"`
	Float     float64 `cbor:"3,keyasint,omitempty"`
	Bytes     []byte  `cbor:"4,keyasint,omitempty"`
	Encoding  string  `cbor:"5,keyasint,omitempty"`
	Items     []node  `cbor:"6,keyasint,omitempty"`
	Exclusive bool    `cbor:"7,keyasint,omitempty"`
}

var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
	dm, err := cbor.DecOptions{MaxNestedLevels: 256}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
	rcore.Register(initMarshal)
}

func initMarshal(vm *rcore.VM) {
	m := rcore.NewModule("Marshal")
	vm.Classes.SetConstant("Marshal", m)
	vm.ClassObject(m).SingletonClass().DefineMethods(rcore.Methods{
		"dump": dump,
		"load": load,
	})
	vm.Log.Debugf("Marshal format version %d", Version)
}

// Dump serializes o.
func Dump(vm *rcore.VM, o *rcore.Object) ([]byte, error) {
	var e encoder
	n, err := e.encode(vm, o)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(envelope{Version: Version, Root: n})
}

// Load deserializes data produced by Dump.
func Load(vm *rcore.VM, data []byte) (*rcore.Object, error) {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, vm.Raisef(rcore.ArgumentError, "marshal data is invalid: %v", err)
	}
	if env.Version != Version {
		return nil, vm.Raisef(rcore.TypeError, "incompatible marshal file format (can't be read)\n\tformat version %d required; %d given", Version, env.Version)
	}
	return decode(vm, env.Root)
}

// encoder holds the arrays being encoded, innermost last.
type encoder struct {
	stack []*rcore.Object
}

func (e *encoder) encode(vm *rcore.VM, o *rcore.Object) (node, error) {
	switch o.Tag() {
	case rcore.NilTag:
		return node{Kind: kindNil}, nil
	case rcore.TrueTag:
		return node{Kind: kindTrue}, nil
	case rcore.FalseTag:
		return node{Kind: kindFalse}, nil
	case rcore.IntegerTag:
		return node{Kind: kindInteger, Int: o.Value.(int64)}, nil
	case rcore.FloatTag:
		return node{Kind: kindFloat, Float: o.Value.(float64)}, nil
	case rcore.SymbolTag:
		return node{Kind: kindSymbol, Bytes: []byte(o.Value.(string))}, nil
	case rcore.StringTag:
		s := o.Value.(*rcore.String)
		b := append([]byte(nil), s.Bytes()...)
		return node{Kind: kindString, Bytes: b, Encoding: s.Encoding().String()}, nil
	case rcore.ArrayTag:
		for _, v := range e.stack {
			if v == o {
				return node{}, vm.Raise(rcore.ArgumentError, "can't dump recursive array")
			}
		}
		e.stack = append(e.stack, o)
		defer func() { e.stack = e.stack[:len(e.stack)-1] }()
		l := o.Value.([]*rcore.Object)
		items := make([]node, len(l))
		for i, v := range l {
			n, err := e.encode(vm, v)
			if err != nil {
				return node{}, err
			}
			items[i] = n
		}
		return node{Kind: kindArray, Items: items}, nil
	case rcore.RangeTag:
		r := o.Value.(*rcore.Range)
		b, err := e.encode(vm, r.Begin)
		if err != nil {
			return node{}, err
		}
		end, err := e.encode(vm, r.End)
		if err != nil {
			return node{}, err
		}
		return node{Kind: kindRange, Items: []node{b, end}, Exclusive: r.Exclusive}, nil
	}
	return node{}, vm.Raisef(rcore.TypeError, "no _dump_data is defined for class %s", vm.ClassName(o))
}

func decode(vm *rcore.VM, n node) (*rcore.Object, error) {
	switch n.Kind {
	case kindNil:
		return vm.Nil, nil
	case kindTrue:
		return vm.True, nil
	case kindFalse:
		return vm.False, nil
	case kindInteger:
		return vm.NewInteger(n.Int), nil
	case kindFloat:
		return vm.NewFloat(n.Float), nil
	case kindSymbol:
		return vm.Intern(string(n.Bytes)), nil
	case kindString:
		enc, ok := rcore.LookupEncoding(n.Encoding)
		if !ok {
			return nil, vm.Raisef(rcore.ArgumentError, "unknown encoding name - %s", n.Encoding)
		}
		return vm.NewStringBytes(n.Bytes, enc), nil
	case kindArray:
		l := make([]*rcore.Object, len(n.Items))
		for i, item := range n.Items {
			v, err := decode(vm, item)
			if err != nil {
				return nil, err
			}
			l[i] = v
		}
		return vm.NewArray(l), nil
	case kindRange:
		if len(n.Items) != 2 {
			return nil, vm.Raise(rcore.ArgumentError, "marshal data is invalid: range needs two ends")
		}
		b, err := decode(vm, n.Items[0])
		if err != nil {
			return nil, err
		}
		e, err := decode(vm, n.Items[1])
		if err != nil {
			return nil, err
		}
		return vm.NewRange(b, e, n.Exclusive)
	}
	return nil, vm.Raisef(rcore.ArgumentError, "marshal data is invalid: unknown kind %d", n.Kind)
}

// dump is a Marshal module method.
//
// dump serializes its argument into a binary String.
func dump(vm *rcore.VM, self *rcore.Object, args []*rcore.Object, blk rcore.Block) (*rcore.Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	b, err := Dump(vm, args[0])
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.NewStringBytes(b, rcore.ASCII8BIT), nil
}

// load is a Marshal module method.
//
// load deserializes a String produced by dump.
func load(vm *rcore.VM, self *rcore.Object, args []*rcore.Object, blk rcore.Block) (*rcore.Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	s, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return Load(vm, s.Bytes())
}
