package internal

// Proc is the primitive value of Proc objects.
type Proc struct {
	// Block is the wrapped callable.
	Block Block
	// Lambda is whether the proc was created by lambda.
	Lambda bool
}

// ProcTag is the Tag for Proc objects.
var ProcTag = BasicTag("Proc")

// NewProc wraps a block in a Proc object.
func (vm *VM) NewProc(blk Block, lambda bool) *Object {
	return vm.ObjectWith(vm.ProcClass, &Proc{Block: blk, Lambda: lambda}, ProcTag)
}

// BlockArg converts a Proc argument into a Block, or nil if o is nil.
func (vm *VM) BlockArg(o *Object) (Block, error) {
	if o == nil || o == vm.Nil {
		return nil, nil
	}
	p, ok := o.Value.(*Proc)
	if !ok {
		return nil, vm.Raisef(TypeError, "wrong argument type %s (expected Proc)", vm.convName(o))
	}
	return p.Block, nil
}

func (vm *VM) initProc() {
	slots := Methods{
		"call":    ProcCall,
		"lambda?": ProcIsLambda,
		"to_proc": ObjectSelf,
	}
	slots["()"] = slots["call"]
	slots["yield"] = slots["call"]
	slots["[]"] = slots["call"]
	slots["==="] = slots["call"]
	vm.ProcClass = vm.defineClass("Proc", vm.ObjectClass, slots)
	vm.ClassObject(vm.ProcClass).SingletonClass().Define("new", ProcNew)
}

// ProcNew is a Proc class method.
//
// new wraps the attached block.
func ProcNew(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if blk == nil {
		return nil, vm.Raise(ArgumentError, "tried to create Proc object without a block")
	}
	return vm.NewProc(blk, false), nil
}

// ProcCall is a Proc method.
//
// call invokes the proc with the given arguments. A break out of a lambda
// returns from the call.
func ProcCall(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	p := self.Value.(*Proc)
	r, err := p.Block(args...)
	if err != nil {
		if b, ok := vm.breakResult(err); ok && p.Lambda {
			return b, nil
		}
		return nil, err
	}
	if r == nil {
		r = vm.Nil
	}
	return r, nil
}

// ProcIsLambda is a Proc method.
//
// lambda? returns whether the proc was created by lambda.
func ProcIsLambda(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.Bool(self.Value.(*Proc).Lambda), nil
}
