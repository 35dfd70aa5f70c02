package verus

import (
	"strings"
	"testing"

	m "github.com/verus-tools/vstrip/internal/model"
)

func mustParse(t *testing.T, src string) *m.Program {
	t.Helper()

	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	return prog
}

// firstFn returns the first function item in the program, searching
// containers depth first.
func firstFn(t *testing.T, items []m.Item) *m.Function {
	t.Helper()

	for _, it := range items {
		switch n := it.(type) {
		case *m.Function:
			return n
		case *m.Impl:
			if fn := firstFn(t, n.Items); fn != nil {
				return fn
			}
		case *m.Trait:
			if fn := firstFn(t, n.Items); fn != nil {
				return fn
			}
		case *m.Module:
			if fn := firstFn(t, n.Items); fn != nil {
				return fn
			}
		}
	}

	return nil
}

func TestParseFunctionModes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		mode m.Mode
	}{
		{"plain fn is executable", "fn f() -> u32 { 1 }", m.ModeExecutable},
		{"exec fn is executable", "exec fn f() -> u32 { 1 }", m.ModeExecutable},
		{"spec fn", "spec fn f() -> bool { true }", m.ModeSpecification},
		{"spec checked fn", "spec(checked) fn f() -> bool { true }", m.ModeSpecificationChecked},
		{"proof fn", "proof fn f() { }", m.ModeProof},
		{"axiom fn", "axiom fn f();", m.ModeProofAxiom},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn := firstFn(t, mustParse(t, tc.src).Items)
			if fn == nil {
				t.Fatal("no function parsed")
			}
			if fn.Mode != tc.mode {
				t.Fatalf("mode = %v, want %v", fn.Mode, tc.mode)
			}
		})
	}
}

func TestParseFunctionVisibility(t *testing.T) {
	fn := firstFn(t, mustParse(t, "pub fn f() { }").Items)
	if fn == nil || !fn.Public {
		t.Fatal("pub fn not marked public")
	}

	fn = firstFn(t, mustParse(t, "pub(crate) spec fn g() -> bool { true }").Items)
	if fn == nil || !fn.Public {
		t.Fatal("pub(crate) fn not marked public")
	}
	if fn.Mode != m.ModeSpecification {
		t.Fatalf("mode after pub(crate) = %v", fn.Mode)
	}

	fn = firstFn(t, mustParse(t, "fn h() { }").Items)
	if fn == nil || fn.Public {
		t.Fatal("private fn marked public")
	}
}

func TestParseParamQualifiers(t *testing.T) {
	t.Run("keyword qualifiers", func(t *testing.T) {
		fn := firstFn(t, mustParse(t, "fn f(ghost g: int, tracked p: Perm, x: u32) { }").Items)
		if fn == nil {
			t.Fatal("no function parsed")
		}
		if len(fn.Params) != 3 {
			t.Fatalf("expected 3 params, got %d", len(fn.Params))
		}

		want := []m.Qualifier{m.QualifierGhost, m.QualifierTracked, m.QualifierExecutable}
		for i, q := range want {
			if fn.Params[i].Qualifier != q {
				t.Errorf("param %d qualifier = %v, want %v", i, fn.Params[i].Qualifier, q)
			}
		}
	})

	t.Run("wrapper type qualifiers", func(t *testing.T) {
		fn := firstFn(t, mustParse(t, "fn f(g: Ghost<int>, p: Tracked<Perm>, r: &Ghost<int>) { }").Items)
		if fn == nil {
			t.Fatal("no function parsed")
		}

		want := []m.Qualifier{m.QualifierGhost, m.QualifierTracked, m.QualifierExecutable}
		for i, q := range want {
			if fn.Params[i].Qualifier != q {
				t.Errorf("param %d qualifier = %v, want %v", i, fn.Params[i].Qualifier, q)
			}
		}
	})

	t.Run("qualified path wrapper", func(t *testing.T) {
		fn := firstFn(t, mustParse(t, "fn f(g: vstd::prelude::Ghost<int>) { }").Items)
		if fn == nil {
			t.Fatal("no function parsed")
		}
		if fn.Params[0].Qualifier != m.QualifierGhost {
			t.Fatalf("path-typed param qualifier = %v", fn.Params[0].Qualifier)
		}
	})
}

func TestParseContractClauses(t *testing.T) {
	src := `fn add_one(x: u32) -> (r: u32)
    requires
        x < 100,
    ensures
        r == x + 1,
{
    x + 1
}
`

	fn := firstFn(t, mustParse(t, src).Items)
	if fn == nil {
		t.Fatal("no function parsed")
	}
	if fn.Body == nil {
		t.Fatal("body not found past the clauses")
	}

	if len(fn.Contract.Requires) != 1 || fn.Contract.Requires[0] != "x < 100" {
		t.Fatalf("requires = %q", fn.Contract.Requires)
	}
	if len(fn.Contract.Ensures) != 1 || fn.Contract.Ensures[0] != "r == x + 1" {
		t.Fatalf("ensures = %q", fn.Contract.Ensures)
	}
}

func TestParseClauseVariants(t *testing.T) {
	t.Run("recommends with via", func(t *testing.T) {
		src := "spec fn f(x: int) -> int\n    recommends x > 0 via f_rec\n{ x }\n"

		fn := firstFn(t, mustParse(t, src).Items)
		if len(fn.Contract.Recommends) != 1 || strings.TrimSpace(fn.Contract.Recommends[0]) != "x > 0" {
			t.Fatalf("recommends = %q", fn.Contract.Recommends)
		}
		if fn.Contract.RecommendsVia != "f_rec" {
			t.Fatalf("via = %q", fn.Contract.RecommendsVia)
		}
	})

	t.Run("opens_invariants forms", func(t *testing.T) {
		cases := []struct {
			src  string
			kind m.InvariantsKind
		}{
			{"proof fn f()\n    opens_invariants any\n{ }\n", m.InvariantsAny},
			{"proof fn f()\n    opens_invariants none\n{ }\n", m.InvariantsNone},
			{"proof fn f()\n    opens_invariants [a, b]\n{ }\n", m.InvariantsList},
		}

		for _, tc := range cases {
			fn := firstFn(t, mustParse(t, tc.src).Items)
			if fn.Contract.Invariants == nil {
				t.Fatalf("no invariants clause for %q", tc.src)
			}
			if fn.Contract.Invariants.Kind != tc.kind {
				t.Fatalf("kind = %v for %q", fn.Contract.Invariants.Kind, tc.src)
			}
		}
	})

	t.Run("no_unwind with condition", func(t *testing.T) {
		src := "fn f(x: u32)\n    no_unwind when x < 10\n{ }\n"

		fn := firstFn(t, mustParse(t, src).Items)
		if fn.Contract.Unwind == nil {
			t.Fatal("no unwind clause")
		}
		if strings.TrimSpace(fn.Contract.Unwind.When) != "x < 10" {
			t.Fatalf("when = %q", fn.Contract.Unwind.When)
		}
	})

	t.Run("decreases", func(t *testing.T) {
		src := "spec fn f(n: nat) -> nat\n    decreases n,\n{ n }\n"

		fn := firstFn(t, mustParse(t, src).Items)
		if len(fn.Contract.Decreases) != 1 || fn.Contract.Decreases[0] != "n" {
			t.Fatalf("decreases = %q", fn.Contract.Decreases)
		}
	})

	t.Run("method call named like a clause does not split", func(t *testing.T) {
		src := "fn f(&self) -> bool\n    ensures self.invariant(),\n{ true }\n"

		fn := firstFn(t, mustParse(t, src).Items)
		if fn.Body == nil {
			t.Fatal("body lost")
		}
		if len(fn.Contract.Ensures) != 1 || fn.Contract.Ensures[0] != "self.invariant()" {
			t.Fatalf("ensures = %q", fn.Contract.Ensures)
		}
		if fn.Contract.Invariants != nil {
			t.Fatal("dotted call parsed as an invariants clause")
		}
	})

	t.Run("clause expression with a block keeps the body separate", func(t *testing.T) {
		src := "fn f(x: u32)\n    ensures x > 0 ==> match x { _ => true },\n{ }\n"

		fn := firstFn(t, mustParse(t, src).Items)
		if fn.Body == nil {
			t.Fatal("body lost behind a clause-level block")
		}
		if len(fn.Contract.Ensures) != 1 {
			t.Fatalf("ensures = %q", fn.Contract.Ensures)
		}
	})
}

func TestParseStructFields(t *testing.T) {
	src := `struct Account {
    ghost balance_spec: int,
    pub tracked permission: Perm,
    pub balance: u64,
}
`

	prog := mustParse(t, src)

	st, ok := prog.Items[0].(*m.Struct)
	if !ok {
		t.Fatalf("expected struct, got %T", prog.Items[0])
	}
	if st.Style != m.FieldsNamed {
		t.Fatalf("style = %v", st.Style)
	}
	if len(st.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(st.Fields))
	}

	want := []m.Qualifier{m.QualifierGhost, m.QualifierTracked, m.QualifierExecutable}
	for i, q := range want {
		if st.Fields[i].Qualifier != q {
			t.Errorf("field %d qualifier = %v, want %v", i, st.Fields[i].Qualifier, q)
		}
	}
}

func TestParseTupleAndUnitStructs(t *testing.T) {
	prog := mustParse(t, "struct Pair(u32, Ghost<int>);\n")

	st, ok := prog.Items[0].(*m.Struct)
	if !ok {
		t.Fatalf("expected struct, got %T", prog.Items[0])
	}
	if st.Style != m.FieldsTuple {
		t.Fatalf("style = %v", st.Style)
	}
	if st.Fields[1].Qualifier != m.QualifierGhost {
		t.Fatalf("tuple field qualifier = %v", st.Fields[1].Qualifier)
	}

	prog = mustParse(t, "struct Marker;\n")
	st, ok = prog.Items[0].(*m.Struct)
	if !ok || st.Style != m.FieldsUnit {
		t.Fatal("unit struct not recognized")
	}
}

func TestParseEnum(t *testing.T) {
	src := `enum Shape {
    Point,
    Circle { radius: u32, ghost area: int },
    Rect(u32, u32),
}
`

	prog := mustParse(t, src)

	e, ok := prog.Items[0].(*m.Enum)
	if !ok {
		t.Fatalf("expected enum, got %T", prog.Items[0])
	}
	if len(e.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(e.Variants))
	}
	if e.Variants[1].Style != m.FieldsNamed {
		t.Fatalf("variant 1 style = %v", e.Variants[1].Style)
	}
	if e.Variants[1].Fields[1].Qualifier != m.QualifierGhost {
		t.Fatal("ghost variant field not detected")
	}
	if e.Variants[2].Style != m.FieldsTuple {
		t.Fatalf("variant 2 style = %v", e.Variants[2].Style)
	}
}

func TestParseContainers(t *testing.T) {
	src := `impl Account {
    pub fn deposit(&mut self, amount: u64) {
        self.balance = self.balance + amount;
    }

    spec fn valid(&self) -> bool {
        self.balance <= u64::MAX
    }
}
`

	prog := mustParse(t, src)

	impl, ok := prog.Items[0].(*m.Impl)
	if !ok {
		t.Fatalf("expected impl, got %T", prog.Items[0])
	}

	var fns []*m.Function
	for _, it := range impl.Items {
		if fn, ok := it.(*m.Function); ok {
			fns = append(fns, fn)
		}
	}
	if len(fns) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(fns))
	}
	if fns[0].Mode != m.ModeExecutable || fns[1].Mode != m.ModeSpecification {
		t.Fatalf("modes = %v, %v", fns[0].Mode, fns[1].Mode)
	}
}

func TestParseTraitDeclarations(t *testing.T) {
	src := `trait Counter {
    spec fn count_spec(&self) -> int;

    fn count(&self) -> u64;
}
`

	prog := mustParse(t, src)

	tr, ok := prog.Items[0].(*m.Trait)
	if !ok {
		t.Fatalf("expected trait, got %T", prog.Items[0])
	}

	var fns []*m.Function
	for _, it := range tr.Items {
		if fn, ok := it.(*m.Function); ok {
			fns = append(fns, fn)
		}
	}
	if len(fns) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(fns))
	}
	if fns[0].Body != nil || fns[1].Body != nil {
		t.Fatal("trait declaration parsed with a body")
	}
}

func TestParseModuleRecursion(t *testing.T) {
	src := "mod inner {\n    spec fn hidden() -> bool { true }\n}\n"

	prog := mustParse(t, src)

	mod, ok := prog.Items[0].(*m.Module)
	if !ok {
		t.Fatalf("expected module, got %T", prog.Items[0])
	}

	fn := firstFn(t, mod.Items)
	if fn == nil || fn.Mode != m.ModeSpecification {
		t.Fatal("nested spec fn not parsed")
	}
}

func TestParseOpaqueItems(t *testing.T) {
	src := "use vstd::prelude::*;\n\nstatic LIMIT: u32 = 100;\n\ntype Alias = u32;\n"

	prog := mustParse(t, src)

	if got := Print(prog); got != src {
		t.Fatalf("opaque items did not round-trip:\n%q", got)
	}
}

func TestParseLoopClauses(t *testing.T) {
	src := `fn count(n: u32) -> u32 {
    let mut i = 0;
    while i < n
        invariant
            i <= n,
        decreases n - i,
    {
        i = i + 1;
    }
    i
}
`

	fn := firstFn(t, mustParse(t, src).Items)
	if fn == nil || fn.Body == nil {
		t.Fatal("function not parsed")
	}

	var loop *m.LoopStmt
	for _, st := range fn.Body.Stmts {
		if ls, ok := st.(*m.LoopStmt); ok {
			loop = ls
		}
	}
	if loop == nil {
		t.Fatal("no loop statement found")
	}
	if !strings.Contains(loop.HeaderClauses, "invariant") {
		t.Fatalf("header clauses = %q", loop.HeaderClauses)
	}
	if strings.Contains(loop.Head, "invariant") {
		t.Fatalf("clauses leaked into head: %q", loop.Head)
	}
}

func TestParseGhostBindings(t *testing.T) {
	src := `fn f(x: u32) {
    let ghost old_x = x;
    let tracked perm = acquire();
    let ghost = 5;
    let y = x;
}
`

	fn := firstFn(t, mustParse(t, src).Items)

	var quals []m.Qualifier
	for _, st := range fn.Body.Stmts {
		if b, ok := st.(*m.Binding); ok {
			quals = append(quals, b.Qualifier)
		}
	}

	want := []m.Qualifier{m.QualifierGhost, m.QualifierTracked, m.QualifierExecutable, m.QualifierExecutable}
	if len(quals) != len(want) {
		t.Fatalf("expected %d bindings, got %d", len(want), len(quals))
	}
	for i, q := range want {
		if quals[i] != q {
			t.Errorf("binding %d qualifier = %v, want %v", i, quals[i], q)
		}
	}
}

func TestParseStatementKinds(t *testing.T) {
	src := `proof fn lemma(x: int) {
    assert(x == x);
    assume(x > 0);
    proof {
        assert(x > 0);
    }
    assert forall|i: int| i >= 0 implies i + 1 > 0 by { };
    calc! { (==) 1; { } 1; }
    assert!(true);
}
`

	fn := firstFn(t, mustParse(t, src).Items)
	if fn == nil || fn.Body == nil {
		t.Fatal("function not parsed")
	}

	var kinds []m.ExprKind
	var macros []string
	for _, st := range fn.Body.Stmts {
		switch n := st.(type) {
		case *m.ExprStmt:
			kinds = append(kinds, n.Expr.Kind)
		case *m.MacroStmt:
			macros = append(macros, n.Name)
		}
	}

	wantKinds := []m.ExprKind{m.ExprAssert, m.ExprAssume, m.ExprProofBlock, m.ExprAssertForall}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("expr kinds = %v", kinds)
	}
	for i, k := range wantKinds {
		if kinds[i] != k {
			t.Errorf("kind %d = %v, want %v", i, kinds[i], k)
		}
	}

	if len(macros) != 2 || macros[0] != "calc" || macros[1] != "assert" {
		t.Fatalf("macro statements = %v", macros)
	}
}

func TestClassifyGhostExpressions(t *testing.T) {
	src := `proof fn lemma(a: bool, b: bool, v: Vec<u32>) {
    a ==> b;
    a <== b;
    a <==> b;
    &&& a;
    v@;
    a && b;
}
`

	fn := firstFn(t, mustParse(t, src).Items)

	var kinds []m.ExprKind
	var others int
	for _, st := range fn.Body.Stmts {
		switch n := st.(type) {
		case *m.ExprStmt:
			kinds = append(kinds, n.Expr.Kind)
		case *m.OtherStmt:
			others++
		}
	}

	wantKinds := []m.ExprKind{m.ExprImplies, m.ExprImpliedBy, m.ExprEquivalent, m.ExprConjunction, m.ExprView}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("expr kinds = %v", kinds)
	}
	for i, k := range wantKinds {
		if kinds[i] != k {
			t.Errorf("kind %d = %v, want %v", i, kinds[i], k)
		}
	}

	if others != 1 {
		t.Fatalf("expected the plain && statement to stay opaque, got %d others", others)
	}
}
