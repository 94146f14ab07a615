package internal

import (
	"errors"
)

// Parser is the source parsing collaborator. The runtime never parses source
// itself; it forwards to the installed Parser.
type Parser interface {
	// Parse parses source into a syntax tree. The tree is opaque to the
	// runtime.
	Parse(source []byte, opts ParseOptions) (interface{}, error)
	// Tokens splits source into tokens.
	Tokens(source []byte, opts ParseOptions) ([]Token, error)
}

// ParseOptions holds the options of a parse.
type ParseOptions struct {
	// Path is the file name used in diagnostics.
	Path string
	// Locations is whether tokens carry line and column numbers.
	Locations bool
}

// Token is one lexical token.
type Token struct {
	Type    string
	Literal string
	// Line and Column are 1-based positions, or 0 if locations were not
	// requested.
	Line   int
	Column int
}

// ErrNoParser is returned by VM.Parse when no Parser is installed.
var ErrNoParser = errors.New("no parser installed")

// SyntaxTreeTag is the Tag for parse results. The value is whatever the
// Parser produced.
var SyntaxTreeTag = BasicTag("SyntaxTree")

func (vm *VM) initParser() {
	vm.defineClass("SyntaxTree", vm.ObjectClass, nil)
	vm.defineModule("Parser", nil)
	vm.ClassObject(vm.CoreClass("Parser")).SingletonClass().DefineMethods(Methods{
		"parse":  ParserParse,
		"tokens": ParserTokens,
	})
}

// parseError converts a Parser error to a raised exception. Errors that are
// not already runtime conditions become SyntaxError.
func (vm *VM) parseError(err error) error {
	var r *Raised
	var e *Error
	if errors.As(err, &r) || errors.As(err, &e) {
		return vm.RaiseError(err)
	}
	return vm.Raise(SyntaxError, err.Error())
}

// ParserParse is a Parser module method.
//
// parse parses source text with an optional path and returns the syntax
// tree.
func ParserParse(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	if vm.Parser == nil {
		return nil, vm.Raise(NotImplementedError, ErrNoParser.Error())
	}
	src, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	var opts ParseOptions
	if len(args) == 2 && args[1] != vm.Nil {
		path, err := vm.StringArgAt(args, 1)
		if err != nil {
			return nil, err
		}
		opts.Path = path.String()
	}
	tree, err := vm.Parser.Parse(src.Bytes(), opts)
	if err != nil {
		return nil, vm.parseError(err)
	}
	return vm.ObjectWith(vm.CoreClass("SyntaxTree"), tree, SyntaxTreeTag).Freeze(), nil
}

// ParserTokens is a Parser module method.
//
// tokens returns an array of [type, literal] pairs for the tokens of source
// text. If the second argument is true, each entry also has the token's line
// and column.
func ParserTokens(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 2); err != nil {
		return nil, err
	}
	if vm.Parser == nil {
		return nil, vm.Raise(NotImplementedError, ErrNoParser.Error())
	}
	src, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	opts := ParseOptions{Locations: len(args) == 2 && vm.Truthy(args[1])}
	toks, err := vm.Parser.Tokens(src.Bytes(), opts)
	if err != nil {
		return nil, vm.parseError(err)
	}
	r := make([]*Object, len(toks))
	for i, t := range toks {
		e := []*Object{vm.Intern(t.Type), vm.NewString(t.Literal)}
		if opts.Locations {
			e = append(e, vm.NewInteger(int64(t.Line)), vm.NewInteger(int64(t.Column)))
		}
		r[i] = vm.NewArray(e)
	}
	return vm.NewArray(r), nil
}
