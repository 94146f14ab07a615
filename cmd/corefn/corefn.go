// Command corefn lists the builtin method tables of the runtime core.
//
// corefn loads the core and any extension packages named on the command line,
// finds each Methods literal and the aliases assigned into it, and writes the
// tables as YAML keyed by the function that builds them. Builtins of type Fn
// that no table binds are listed under unbound.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/tools/go/packages"
	"gopkg.in/yaml.v2"
)

// report is the output document.
type report struct {
	Tables  map[string]map[string]string `yaml:"tables"`
	Unbound []string                     `yaml:"unbound,omitempty"`
}

func main() {
	var match, ignore string
	var rcore string
	flag.StringVar(&match, "match", ".", "include only functions matching this regular expression")
	flag.StringVar(&ignore, "ignore", "$^", "exclude functions matching this regular expression")
	flag.StringVar(&rcore, "rcore", "github.com/zephyrtronium/rcore", "import path for package rcore source code")
	flag.Parse()
	mre, err := regexp.Compile(match)
	if err != nil {
		fail("error compiling match:", err)
	}
	ire, err := regexp.Compile(ignore)
	if err != nil {
		fail("error compiling ignore:", err)
	}

	fset := token.NewFileSet()
	config := packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedImports, Fset: fset}
	pkgs, err := packages.Load(&config, append([]string{rcore, rcore + "/internal"}, flag.Args()...)...)
	if err != nil {
		fail("error loading packages:", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}
	fn, pkgs := getFn(pkgs)
	r := report{Tables: map[string]map[string]string{}}
	bound := map[string]bool{}
	for _, pkg := range pkgs {
		for _, f := range pkg.Syntax {
			for name, table := range tables(f) {
				r.Tables[name] = table
				for _, v := range table {
					bound[v] = true
				}
			}
		}
	}
	for _, pkg := range pkgs {
		for name := range find(pkg.Types.Scope(), fn, mre, ire) {
			if !bound[name] {
				r.Unbound = append(r.Unbound, name)
			}
		}
	}
	sort.Strings(r.Unbound)
	out, err := yaml.Marshal(&r)
	if err != nil {
		fail("error encoding report:", err)
	}
	os.Stdout.Write(out)
}

func fail(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func getFn(pkgs []*packages.Package) (types.Type, []*packages.Package) {
	pkg := pkgs[0].Types
	r := pkg.Scope().Lookup("Fn")
	if r == nil {
		fail(pkg.Name(), "has no definition of Fn")
	}
	t, ok := r.(*types.TypeName)
	if !ok {
		fail(pkg.Name(), "has incorrect definition of Fn:", r)
	}
	fn := t.Type().Underlying()
	return fn, pkgs[1:]
}

func find(pkg *types.Scope, fn types.Type, mre, ire *regexp.Regexp) chan string {
	ch := make(chan string, 8)
	go func() {
		defer close(ch)
		for _, name := range pkg.Names() {
			if mre.MatchString(name) && !ire.MatchString(name) {
				if _, ok := pkg.Lookup(name).(*types.Func); !ok {
					continue
				}
				t := pkg.Lookup(name).Type()
				if types.AssignableTo(t, fn) {
					ch <- name
				}
			}
		}
	}()
	return ch
}

// tables finds the method tables built by each function in f. A table is a
// Methods composite literal, possibly bound to a variable whose entries are
// later assigned from other entries or from functions.
func tables(f *ast.File) map[string]map[string]string {
	r := map[string]map[string]string{}
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		vars := map[string]map[string]string{}
		n := 0
		ast.Inspect(fd.Body, func(node ast.Node) bool {
			switch x := node.(type) {
			case *ast.AssignStmt:
				if len(x.Lhs) == 1 && len(x.Rhs) == 1 {
					if id, ok := x.Lhs[0].(*ast.Ident); ok {
						if lit := methodsLit(x.Rhs[0]); lit != nil {
							vars[id.Name] = entries(lit)
							return false
						}
					}
					alias(vars, x.Lhs[0], x.Rhs[0])
				}
			case *ast.CompositeLit:
				if methodsLit(x) != nil {
					n++
					r[fmt.Sprintf("%s#%d", fd.Name.Name, n)] = entries(x)
					return false
				}
			}
			return true
		})
		for _, t := range vars {
			n++
			r[fmt.Sprintf("%s#%d", fd.Name.Name, n)] = t
		}
	}
	return r
}

// methodsLit returns e as a composite literal if it is one of type Methods or
// a qualified Methods.
func methodsLit(e ast.Expr) *ast.CompositeLit {
	lit, ok := e.(*ast.CompositeLit)
	if !ok {
		return nil
	}
	switch t := lit.Type.(type) {
	case *ast.Ident:
		if t.Name == "Methods" {
			return lit
		}
	case *ast.SelectorExpr:
		if t.Sel.Name == "Methods" {
			return lit
		}
	}
	return nil
}

func entries(lit *ast.CompositeLit) map[string]string {
	m := make(map[string]string, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		k, ok := stringLit(kv.Key)
		if !ok {
			continue
		}
		m[k] = exprName(kv.Value)
	}
	return m
}

// alias records an assignment like slots["x"] = slots["y"] or
// slots["x"] = Fn into the table named by slots.
func alias(vars map[string]map[string]string, lhs, rhs ast.Expr) {
	ix, ok := lhs.(*ast.IndexExpr)
	if !ok {
		return
	}
	id, ok := ix.X.(*ast.Ident)
	if !ok {
		return
	}
	t := vars[id.Name]
	if t == nil {
		return
	}
	k, ok := stringLit(ix.Index)
	if !ok {
		return
	}
	if src, ok := rhs.(*ast.IndexExpr); ok {
		if j, ok := stringLit(src.Index); ok {
			t[k] = t[j]
			return
		}
	}
	t[k] = exprName(rhs)
}

func stringLit(e ast.Expr) (string, bool) {
	b, ok := e.(*ast.BasicLit)
	if !ok || b.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(b.Value)
	return s, err == nil
}

func exprName(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.SelectorExpr:
		return exprName(x.X) + "." + x.Sel.Name
	}
	return "<expr>"
}
