package internal_test

import (
	"reflect"
	"testing"

	"github.com/zephyrtronium/rcore"
	"github.com/zephyrtronium/rcore/testutils"
)

func re(src string) func(vm *rcore.VM) *rcore.Object {
	return func(vm *rcore.VM) *rcore.Object {
		r, err := vm.NewRegexp(src)
		if err != nil {
			panic(err)
		}
		return r
	}
}

func TestRegexpMethods(t *testing.T) {
	cases := map[string]testutils.SendTestCase{
		"inspect": {
			Recv:   re(`a/b`),
			Method: "inspect",
			Pass:   testutils.PassString(`/a\/b/`),
		},
		"source": {
			Recv:   re(`a+`),
			Method: "source",
			Pass:   testutils.PassString(`a+`),
		},
		"=~": {
			Recv:   re(`b+`),
			Method: "=~",
			Args:   testutils.Args(testutils.Str("abbc")),
			Pass:   testutils.PassEqual(testutils.Int(1)),
		},
		"=~None": {
			Recv:   re(`x`),
			Method: "=~",
			Args:   testutils.Args(testutils.Str("abbc")),
			Pass:   testutils.PassIdentical(nilObj),
		},
		"===": {
			Recv:   re(`^\d+$`),
			Method: "===",
			Args:   testutils.Args(testutils.Str("123")),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"===NotString": {
			Recv:   re(`1`),
			Method: "===",
			Args:   testutils.Args(testutils.Int(1)),
			Pass:   testutils.PassIdentical(falseObj),
		},
		"==": {
			Recv:   re(`a`),
			Method: "==",
			Args:   testutils.Args(re(`a`)),
			Pass:   testutils.PassIdentical(trueObj),
		},
		"matchNil": {
			Recv:   re(`a`),
			Method: "match",
			Args:   testutils.Args(nilObj),
			Pass:   testutils.PassIdentical(nilObj),
		},
		"matchPos": {
			Recv:   re(`a`),
			Method: "match",
			Args:   testutils.Args(testutils.Str("aba"), testutils.Int(1)),
			Pass:   testutils.PassInspect(`#<MatchData "a">`),
		},
		"matchPosOverlap": {
			Recv:   re(`aa`),
			Method: "match",
			Args:   testutils.Args(testutils.Str("aaa"), testutils.Int(1)),
			Pass:   testutils.PassInspect(`#<MatchData "aa">`),
		},
		"matchPosBoundary": {
			Recv:   re(`\bb`),
			Method: "match",
			Args:   testutils.Args(testutils.Str("ab b"), testutils.Int(1)),
			Pass:   testutils.PassInspect(`#<MatchData "b">`),
		},
		"matchPosAnchor": {
			Recv:   re(`^b`),
			Method: "match",
			Args:   testutils.Args(testutils.Str("bb"), testutils.Int(1)),
			Pass:   testutils.PassIdentical(nilObj),
		},
		"matchData": {
			Recv:   re(`(?P<y>\d+)-(\d+)`),
			Method: "match",
			Args:   testutils.Args(testutils.Str("on 2023-06 ok")),
			Pass:   testutils.PassInspect(`#<MatchData "2023-06" y:"2023" 2:"06">`),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestRegexpMatcherStart(t *testing.T) {
	vm := testutils.VM()
	cases := map[string]struct {
		src     string
		subject string
		start   int
		want    rcore.Match
	}{
		"Zero":         {`a+`, "xaab", 0, rcore.Match{1, 3}},
		"Overlap":      {`aa`, "aaa", 1, rcore.Match{1, 3}},
		"InsideRun":    {`a+`, "xaab", 2, rcore.Match{2, 3}},
		"Groups":       {`(a)(b)?`, "xab", 1, rcore.Match{1, 3, 1, 2, 2, 3}},
		"Unmatched":    {`(a)(b)?`, "aac", 1, rcore.Match{1, 2, 1, 2, -1, -1}},
		"EmptyAfter":   {`b*`, "abc", 2, rcore.Match{2, 2}},
		"EmptyAtEnd":   {``, "ab", 2, rcore.Match{2, 2}},
		"WordBoundary": {`\bb`, "ab b", 1, rcore.Match{3, 4}},
		"LineStart":    {`(?m)^a`, "ba\na", 1, rcore.Match{3, 4}},
		"TextStart":    {`^a`, "aa", 1, nil},
		"Multibyte":    {`é`, "éé", 2, rcore.Match{2, 4}},
		"PastEnd":      {`a`, "a", 2, nil},
		"Missing":      {`z`, "abc", 1, nil},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := vm.Regexps.Compile(c.src)
			if err != nil {
				t.Fatalf("couldn't compile %q: %v", c.src, err)
			}
			mt, ok := m.Match([]byte(c.subject), c.start)
			if ok != (c.want != nil) {
				t.Fatalf("wrong match result: wanted %v, have %v (%v)", c.want, mt, ok)
			}
			if !reflect.DeepEqual(mt, c.want) && c.want != nil {
				t.Errorf("wrong match: wanted %v, have %v", c.want, mt)
			}
		})
	}
}

func TestRegexpNew(t *testing.T) {
	vm := testutils.VM()
	c := vm.ClassObject(vm.RegexpClass)
	r := testutils.Call(t, vm, c, "new", vm.NewString(`a.c`))
	if r.Tag() != rcore.RegexpTag || !r.IsFrozen() {
		t.Errorf("new made %v", r.Value)
	}
	if s := testutils.Call(t, vm, c, "compile", r); s != r {
		t.Error("new with a Regexp didn't return it")
	}
	_, err := vm.Send(c, "new", vm.NewString(`(`))
	testutils.CheckRaise(t, vm, err, rcore.ArgumentError)
	_, err = vm.Send(c, "new", vm.NewInteger(1))
	testutils.CheckRaise(t, vm, err, rcore.TypeError)
	testutils.CheckString(t, testutils.Call(t, vm, c, "escape", vm.NewString("a.b*c")), `a\.b\*c`)
}

func TestMatchData(t *testing.T) {
	vm := testutils.VM()
	md := testutils.Call(t, vm, re(`(?P<word>[a-z]+)(\d)?`)(vm), "match", vm.NewString("12 abc!"))
	cases := []struct {
		method string
		args   []*rcore.Object
		want   string
	}{
		{"[]", []*rcore.Object{vm.NewInteger(0)}, `"abc"`},
		{"[]", []*rcore.Object{vm.NewInteger(2)}, `nil`},
		{"[]", []*rcore.Object{vm.NewInteger(-2)}, `"abc"`},
		{"[]", []*rcore.Object{vm.NewInteger(3)}, `nil`},
		{"[]", []*rcore.Object{vm.Intern("word")}, `"abc"`},
		{"[]", []*rcore.Object{vm.NewString("word")}, `"abc"`},
		{"to_a", nil, `["abc", "abc", nil]`},
		{"captures", nil, `["abc", nil]`},
		{"pre_match", nil, `"12 "`},
		{"post_match", nil, `"!"`},
		{"begin", []*rcore.Object{vm.NewInteger(0)}, `3`},
		{"end", []*rcore.Object{vm.NewInteger(0)}, `6`},
		{"size", nil, `3`},
		{"to_s", nil, `"abc"`},
		{"names", nil, `["word"]`},
	}
	for _, c := range cases {
		t.Run(c.method, func(t *testing.T) {
			r := testutils.Call(t, vm, md, c.method, c.args...)
			testutils.CheckInspect(t, vm, r, c.want)
		})
	}
	_, err := vm.Send(md, "[]", vm.Intern("nope"))
	testutils.CheckRaise(t, vm, err, rcore.IndexError)
}

func TestMatchDataOwnsSubject(t *testing.T) {
	vm := testutils.VM()
	s := vm.NewString("hello world")
	md := testutils.Call(t, vm, s, "match", vm.NewString("wor"))
	testutils.Call(t, vm, s, "replace", vm.NewString("xxxxxxxxxxxxxxx"))
	testutils.CheckInspect(t, vm, testutils.Call(t, vm, md, "post_match"), `"ld"`)
}
