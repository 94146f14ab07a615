/*
Package rcore implements the object-value core of a dynamic, class-based
scripting language runtime.

The core provides the universal object model (identity, class, singleton
classes, instance variables, freezing), the byte-buffer String engine with its
encodings, Ranges and their iteration, and the kernel operations every object
responds to. It does not parse or evaluate source code; a host that has a
parser installs it on the VM, and a host that evaluates code drives the core by
sending messages to objects.

To start, create a VM with NewVM, or NewVMWithConfig with a Config from
LoadConfig. Objects are created with the VM's constructors, such as NewString,
NewInteger, NewArray, and NewRange, and used by sending them messages:

	vm := rcore.NewVM()
	s, err := vm.Send(vm.NewString("hello"), "upcase")

Every method is a Go function of type Fn. Methods report failure by returning
an error; an error that carries a raised exception is a *Raised, and the
exception's class can be tested with VM.Rescue:

	_, err := vm.Send(vm.Nil, "upcase")
	if _, ok := vm.Rescue(err, rcore.NoMethodError); ok {
		// ...
	}

Blocks are Go functions of type Block. A block stops the enumeration that is
driving it by returning a *Break, whose Result becomes the enumeration's value.

Output, sleeping, spawning, and exiting go through the VM's Stdout and Process
fields, so hosts and tests can replace them.

A VM is not safe for concurrent use. Separate VMs are independent.
*/
package rcore

import (
	"github.com/zephyrtronium/rcore/internal"
)

// A VM holds the state of one runtime.
type VM = internal.VM

// Object is the value of the runtime. Everything is an Object.
//
// Always use NewObject, ObjectWith, or a type-specific constructor to obtain
// new objects.
type Object = internal.Object

// Class is a class or module.
type Class = internal.Class

// Classes resolves constants and method resolution orders.
type Classes = internal.Classes

// Methods maps method names to their implementations.
type Methods = internal.Methods

// Tag is a type indicator for primitive values. Tag values must be comparable.
type Tag = internal.Tag

// BasicTag is a Tag for primitive values whose copies are shallow.
type BasicTag = internal.BasicTag

// An Fn is a builtin method.
type Fn = internal.Fn

// A Block is a callable argument attached to a method call.
type Block = internal.Block

// Raised is the error carrying a raised exception.
type Raised = internal.Raised

// Break is the error a block returns to end an enumeration early.
type Break = internal.Break

// Error is a condition from a primitive operation, naming the exception class
// it becomes when raised.
type Error = internal.Error

// Exception is the primitive value of exception objects.
type Exception = internal.Exception

// String is the primitive value of String objects.
type String = internal.String

// Encoding identifies the character encoding of a String.
type Encoding = internal.Encoding

// Range is the primitive value of Range objects.
type Range = internal.Range

// RangeIter iterates over the elements of a Range.
type RangeIter = internal.RangeIter

// Proc is the primitive value of Proc objects.
type Proc = internal.Proc

// Regexp is the primitive value of Regexp objects.
type Regexp = internal.Regexp

// MatchData is the primitive value of MatchData objects.
type MatchData = internal.MatchData

// Matcher finds pattern matches in byte strings.
type Matcher = internal.Matcher

// Match holds the submatch positions of one match.
type Match = internal.Match

// Compiler compiles regular expression sources into Matchers.
type Compiler = internal.Compiler

// RegexpCompiler is the default Compiler.
type RegexpCompiler = internal.RegexpCompiler

// Process is the operating system collaborator behind sleep, spawn, and exit.
type Process = internal.Process

// Usage is CPU time consumed by a process.
type Usage = internal.Usage

// OSProcess is the default Process.
type OSProcess = internal.OSProcess

// Parser is the source parsing collaborator.
type Parser = internal.Parser

// ParseOptions holds the options of a parse.
type ParseOptions = internal.ParseOptions

// Token is one lexical token.
type Token = internal.Token

// Config holds the settings of a VM.
type Config = internal.Config

// Tag variables for core types.
var (
	ArrayTag      = internal.ArrayTag
	EncodingTag   = internal.EncodingTag
	ExceptionTag  = internal.ExceptionTag
	FalseTag      = internal.FalseTag
	FloatTag      = internal.FloatTag
	IntegerTag    = internal.IntegerTag
	MatchDataTag  = internal.MatchDataTag
	NilTag        = internal.NilTag
	ProcTag       = internal.ProcTag
	RangeTag      = internal.RangeTag
	RegexpTag     = internal.RegexpTag
	StringTag     = internal.StringTag
	SymbolTag     = internal.SymbolTag
	SyntaxTreeTag = internal.SyntaxTreeTag
	TrueTag       = internal.TrueTag
)

// Encodings.
const (
	UTF8        = internal.UTF8
	ASCII8BIT   = internal.ASCII8BIT
	USASCII     = internal.USASCII
	ISO8859_1   = internal.ISO8859_1
	Windows1252 = internal.Windows1252
	UTF16LE     = internal.UTF16LE
	UTF16BE     = internal.UTF16BE
	UTF32LE     = internal.UTF32LE
	UTF32BE     = internal.UTF32BE
)

// Exception class names.
const (
	ExceptionClass           = internal.ExceptionClass
	ScriptError              = internal.ScriptError
	NotImplementedError      = internal.NotImplementedError
	SyntaxError              = internal.SyntaxError
	StandardError            = internal.StandardError
	ArgumentError            = internal.ArgumentError
	EncodingError            = internal.EncodingError
	InvalidByteSequenceError = internal.InvalidByteSequenceError
	UndefinedConversionError = internal.UndefinedConversionError
	CompatibilityError       = internal.CompatibilityError
	IndexError               = internal.IndexError
	KeyError                 = internal.KeyError
	StopIteration            = internal.StopIteration
	LocalJumpError           = internal.LocalJumpError
	NameError                = internal.NameError
	NoMethodError            = internal.NoMethodError
	RangeError               = internal.RangeError
	FloatDomainError         = internal.FloatDomainError
	RuntimeError             = internal.RuntimeError
	FrozenError              = internal.FrozenError
	TypeError                = internal.TypeError
	SystemExit               = internal.SystemExit
)

// ErrNoParser is returned when source must be parsed but no Parser is
// installed.
var ErrNoParser = internal.ErrNoParser

// NewVM creates a VM with the default configuration.
func NewVM() *VM {
	return internal.NewVM()
}

// NewVMWithConfig creates a VM with the given configuration.
func NewVMWithConfig(cfg Config) *VM {
	return internal.NewVMWithConfig(cfg)
}

// DefaultConfig returns the configuration used by NewVM.
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// LoadConfig reads a YAML or TOML configuration file.
func LoadConfig(path string) (Config, error) {
	return internal.LoadConfig(path)
}

// ParseConfig decodes configuration data in the format "yaml" or "toml".
func ParseConfig(data []byte, format string) (Config, error) {
	return internal.ParseConfig(data, format)
}

// LookupEncoding finds an encoding by name or alias, ignoring case.
func LookupEncoding(name string) (Encoding, bool) {
	return internal.LookupEncoding(name)
}

// NewStringValue creates a String primitive holding a copy of b.
func NewStringValue(b []byte, enc Encoding) *String {
	return internal.NewStringValue(b, enc)
}

// LiteralMatcher returns a Matcher for a fixed byte pattern with no groups.
func LiteralMatcher(pat []byte) Matcher {
	return internal.LiteralMatcher(pat)
}

// NewClass creates a class with the given superclass.
func NewClass(name string, super *Class) *Class {
	return internal.NewClass(name, super)
}

// NewModule creates a module.
func NewModule(name string) *Class {
	return internal.NewModule(name)
}

// Register adds a function to run on each new VM after the core is set up.
// It must be called from an init function, before any VM is created.
func Register(f func(*VM)) {
	internal.Register(f)
}
