package internal

import (
	"hash/fnv"
	"strings"
)

// SymbolTag is the Tag for Symbol objects. The value is the symbol's name as a
// Go string.
var SymbolTag = BasicTag("Symbol")

// Intern returns the unique Symbol object with the given name.
func (vm *VM) Intern(name string) *Object {
	if s, ok := vm.symbols[name]; ok {
		return s
	}
	s := vm.ObjectWith(vm.SymbolClass, name, SymbolTag).Freeze()
	vm.symbols[name] = s
	return s
}

// SymbolName returns the name of a Symbol object, or the contents of a String
// object, for methods that accept either.
func (vm *VM) SymbolName(o *Object) (string, error) {
	switch x := o.Value.(type) {
	case string:
		if o.tag == SymbolTag {
			return x, nil
		}
	case *String:
		return x.String(), nil
	}
	s, err := vm.Inspect(o)
	if err != nil {
		return "", err
	}
	return "", vm.Raisef(TypeError, "%s is not a symbol nor a string", s)
}

func (vm *VM) initSymbol() {
	vm.SymbolClass = vm.defineClass("Symbol", vm.ObjectClass, Methods{
		"to_s":    SymbolToS,
		"id2name": SymbolToS,
		"name":    SymbolToS,
		"to_sym":  ObjectSelf,
		"inspect": SymbolInspect,
		"size":    SymbolSize,
		"length":  SymbolSize,
		"<=>":     SymbolCmp,
		"hash":    SymbolHash,
	})
	vm.SymbolClass.Include(vm.ComparableModule)
}

// SymbolToS is a Symbol method.
//
// to_s returns the symbol's name as a new String.
func SymbolToS(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(self.Value.(string)), nil
}

// SymbolInspect is a Symbol method.
//
// inspect returns the symbol's literal form, quoted if the name is not a
// plain identifier or operator.
func SymbolInspect(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	name := self.Value.(string)
	if symbolIsPlain(name) {
		return vm.NewString(":" + name), nil
	}
	q := NewStringValue([]byte(name), UTF8).Inspect()
	return vm.NewString(":" + q), nil
}

// symbolOperators are names that inspect without quotes.
var symbolOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "===": true, "!=": true, "<=>": true, "<": true, "<=": true,
	">": true, ">=": true, "<<": true, ">>": true, "!": true, "=~": true,
	"[]": true, "[]=": true, "&": true, "|": true, "^": true, "~": true,
	"+@": true, "-@": true,
}

func symbolIsPlain(name string) bool {
	if symbolOperators[name] {
		return true
	}
	if name == "" {
		return false
	}
	s := strings.TrimPrefix(strings.TrimPrefix(name, "@"), "@")
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80:
		case c >= '0' && c <= '9' && i > 0:
		case (c == '?' || c == '!' || c == '=') && i == len(s)-1 && i > 0:
		default:
			return false
		}
	}
	return true
}

// SymbolSize is a Symbol method.
//
// size returns the number of characters in the symbol's name.
func SymbolSize(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(len([]rune(self.Value.(string))))), nil
}

// SymbolCmp is a Symbol method.
//
// <=> compares symbol names, or returns nil for non-symbols.
func SymbolCmp(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	if args[0].tag != SymbolTag {
		return vm.Nil, nil
	}
	return vm.NewInteger(int64(strings.Compare(self.Value.(string), args[0].Value.(string)))), nil
}

// SymbolHash is a Symbol method.
//
// hash returns a hash of the symbol's name.
func SymbolHash(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	h := fnv.New64a()
	h.Write([]byte(self.Value.(string)))
	return vm.NewInteger(int64(h.Sum64())), nil
}
