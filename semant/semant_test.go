package semant

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"sophia-compiler/ast"
	"sophia-compiler/lexer"
	"sophia-compiler/parser"
	"sophia-compiler/types"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.NewLexer(strings.NewReader(src)))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	return program
}

func analyze(t *testing.T, src string) (*Info, []string) {
	t.Helper()
	sa := NewSemanticAnalyzer("Main")
	info := sa.Analyze(parse(t, src))
	return info, sa.Errors()
}

// inMain wraps method statements into a minimal program.
func inMain(body string) string {
	return "class Main { initialize() { " + body + " } }"
}

func TestSemanticAnalysis(t *testing.T) {
	t.Run("Class Validation", func(t *testing.T) {
		t.Run("Redefined Class", func(t *testing.T) {
			_, errs := analyze(t, "class Main {} class Main {}")
			assertErrorsContain(t, errs, "Class Main is redefined")
		})
		t.Run("Undefined Parent", func(t *testing.T) {
			_, errs := analyze(t, "class Main extends Ghost {}")
			assertErrorsContain(t, errs, "inherits from undefined class Ghost")
		})
		t.Run("Self Inheritance", func(t *testing.T) {
			_, errs := analyze(t, "class Main {} class A extends A {}")
			assertErrorsContain(t, errs, "cannot extend itself")
		})
		t.Run("Inheritance Cycle", func(t *testing.T) {
			_, errs := analyze(t, "class Main {} class A extends B {} class B extends A {}")
			assertErrorsContain(t, errs, "inheritance cycle")
		})
		t.Run("Missing Entry Class", func(t *testing.T) {
			_, errs := analyze(t, "class A {}")
			assertErrorsContain(t, errs, "does not contain a 'Main' class")
		})
		t.Run("Undefined Field Type", func(t *testing.T) {
			_, errs := analyze(t, "class Main { Ghost g; list(2 # Ghost) l; }")
			assertErrorsContain(t, errs, "undefined type Ghost")
			assertErrorsContain(t, errs, "undefined type list(Ghost, Ghost)")
		})
		t.Run("Redefined Members", func(t *testing.T) {
			_, errs := analyze(t, "class Main { int x; bool x; void m() {} void m() {} }")
			assertErrorsContain(t, errs, "field x is redefined")
			assertErrorsContain(t, errs, "method m is redefined")
		})
		t.Run("Runtime Class Names", func(t *testing.T) {
			_, errs := analyze(t, "class Main {} class List { int x; } class Fptr {}")
			assertErrorsContain(t, errs, "line 1: Class name List is reserved by the runtime")
			assertErrorsContain(t, errs, "Class name Fptr is reserved by the runtime")
		})
		t.Run("Object Method Names", func(t *testing.T) {
			_, errs := analyze(t, `class Main {
    void notify() {}
    void wait(int ms) {}
    string toString() { return "m"; }
    bool equals(Main other) { return true; }
}`)
			assertErrorsContain(t, errs, "line 2: method notify of class Main clashes with java/lang/Object.notify")
			assertErrorsContain(t, errs, "method wait of class Main clashes")
			assertErrorsContain(t, errs, "method toString of class Main clashes")
			assertErrorsContain(t, errs, "method equals of class Main clashes")

			_, errs = analyze(t, `class Main {
    string toString(int radix) { return "m"; }
    int hashCode(int seed) { return seed; }
}`)
			assertNoErrors(t, errs)
		})
		t.Run("Override Signature", func(t *testing.T) {
			_, errs := analyze(t, `class Main {}
class A { int f(int x) { return x; } }
class B extends A { int f(bool x) { return 1; } }`)
			assertErrorsContain(t, errs, "overrides A.f with a different signature")
		})
	})

	t.Run("Statement Validation", func(t *testing.T) {
		tests := []struct {
			name string
			body string
			want string
		}{
			{"Undeclared Identifier", "x = 1;", "x is not declared"},
			{"Redeclared Local", "int x; bool x;", "variable x is already declared"},
			{"Non Bool Condition", "if (1) print(1);", "if condition must be bool"},
			{"Non Bool For Condition", "int i; for (i = 0; i; i++) print(i);", "for condition must be bool"},
			{"Break Outside Loop", "break;", "break outside of a loop"},
			{"Continue Outside Loop", "continue;", "continue outside of a loop"},
			{"Print List", "print([1, 2]);", "print cannot print a value of type list(int, int)"},
			{"Assign Mismatch", "int x; x = \"s\";", "cannot assign string to x of type int"},
			{"Null To List", "list(int) l; l = null;", "cannot assign null"},
			{"Arithmetic", "int x; x = 1 + true;", "requires int operands"},
			{"Logical", "bool b; b = 1 && true;", "requires bool operands"},
			{"Compare", "bool b; b = 1 == \"a\";", "cannot compare int and string"},
			{"IncDec Bool", "bool b; b++;", "++ requires an int operand"},
			{"Return In Initialize", "return 1;", "initialize cannot return a value"},
			{"Foreach Undeclared", "foreach (x in [1, 2]) print(x);", "foreach variable x is not declared"},
			{"Foreach Mixed", "int x; foreach (x in [1, true]) print(x);", "elements of one type"},
			{"Foreach Type", "bool x; foreach (x in [1, 2]) print(x);", "foreach variable x has type bool"},
			{"Foreach Not List", "int x; foreach (x in 3) print(x);", "foreach requires a list"},
			{"Index Not Literal", "int i; int x; list(2 # int) l; x = l[i];", "list index must be an integer literal"},
			{"Index Out Of Range", "int x; list(2 # int) l; x = l[2];", "list index 2 out of range"},
			{"Unknown Position", "int x; list(int a) l; x = l.b;", "has no position named b"},
			{"Unknown Member", "int x; x = this.nope;", "class Main has no member named nope"},
			{"Not Callable", "int x; x(1);", "is not callable"},
			{"Undefined Class", "Main m; m = new Ghost();", "undefined class Ghost"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, errs := analyze(t, inMain(tt.body))
				assertErrorsContain(t, errs, tt.want)
			})
		}
	})

	t.Run("Method Validation", func(t *testing.T) {
		t.Run("Missing Return Value", func(t *testing.T) {
			_, errs := analyze(t, "class Main { int f() { return; } }")
			assertErrorsContain(t, errs, "f must return a value of type int")
		})
		t.Run("Return Mismatch", func(t *testing.T) {
			_, errs := analyze(t, "class Main { int f() { return true; } }")
			assertErrorsContain(t, errs, "f returns bool, expected int")
		})
		t.Run("Void Call As Value", func(t *testing.T) {
			_, errs := analyze(t, "class Main { void g() {} void f() { int x; x = this.g(); } }")
			assertErrorsContain(t, errs, "returns void and cannot be used as a value")
		})
		t.Run("Arity", func(t *testing.T) {
			_, errs := analyze(t, "class Main { int g(int a) { return a; } void f() { this.g(1, 2); } }")
			assertErrorsContain(t, errs, "this.g expects 1 arguments, got 2")
		})
		t.Run("Argument Type", func(t *testing.T) {
			_, errs := analyze(t, "class Main { int g(int a) { return a; } void f() { this.g(true); } }")
			assertErrorsContain(t, errs, "argument 1 of this.g has type bool, expected int")
		})
		t.Run("Constructor Arguments", func(t *testing.T) {
			_, errs := analyze(t, `class Main { initialize() { A a; a = new A(1, 2); } }
class A { initialize(int x) {} }`)
			assertErrorsContain(t, errs, "initialize of A expects 1 arguments, got 2")
		})
		t.Run("Assign To Method", func(t *testing.T) {
			_, errs := analyze(t, "class Main { void g() {} void f() { this.g = null; } }")
			assertErrorsContain(t, errs, "cannot assign to method g")
		})
	})

	t.Run("Valid Program", func(t *testing.T) {
		_, errs := analyze(t, `class Main {
    list(int x, int y) point;
    fptr<int -> int> twice;
    initialize() {
        int i;
        Shape s;
        s = new Square(2);
        this.twice = s.scale;
        print(this.twice(3));
        for (i = 0; i < 3; i++) {
            if (i == 1) continue;
            print(this.point.x + this.point[1]);
        }
        foreach (i in [1, 2, 3]) print(i);
        s = null;
    }
}
class Shape {
    int size;
    int scale(int k) { return this.size * k; }
}
class Square extends Shape {
    initialize(int size) { this.size = size; }
}`)
		assertNoErrors(t, errs)
	})
}

func TestInfo(t *testing.T) {
	program := parse(t, `class Main extends Base {
    int v;
    initialize() {
        list(int a, bool b) l;
        this.v = 1;
        print(l.b);
    }
}
class Base { string v; int get() { return 0; } }`)
	sa := NewSemanticAnalyzer("Main")
	info := sa.Analyze(program)
	assertNoErrors(t, sa.Errors())

	ctor := program.Classes[0].Constructor
	assign := ctor.Body[1].(*ast.AssignmentStmt)
	be.Equal(t, info.TypeOf(assign.LValue).String(), "int")
	be.Equal(t, info.TypeOf(assign.RValue).String(), "int")

	ps := ctor.Body[2].(*ast.PrintStmt)
	be.Equal(t, info.TypeOf(ps.Arg).String(), "bool")
	_, isNoType := info.TypeOf(&ast.NullValue{}).(types.NoType)
	be.True(t, isNoType)

	f, ok := info.LookupField("Main", "v")
	be.True(t, ok)
	be.Equal(t, f.Owner, "Main")
	be.Equal(t, f.Type.String(), "int")

	m, ok := info.LookupMethod("Main", "get")
	be.True(t, ok)
	be.Equal(t, m.Owner, "Base")
	be.Equal(t, m.Fptr().String(), "fptr<void -> int>")

	parent, ok := info.Parent("Main")
	be.True(t, ok)
	be.Equal(t, parent, "Base")
	_, ok = info.Parent("Base")
	be.True(t, !ok)

	_, ok = info.LookupConstructor("Base")
	be.True(t, !ok)
	c, ok := info.Class("Main")
	be.True(t, ok)
	be.Equal(t, c.FieldOrder, []string{"v"})
}

func TestInheritanceGraph(t *testing.T) {
	g := NewInheritanceGraph()
	be.Err(t, g.AddInheritanceEdge("B", "A"), nil)
	be.Err(t, g.AddInheritanceEdge("C", "B"), nil)
	be.Err(t, g.AddInheritanceEdge("C", "A"), "class C is redefined")
	be.Err(t, g.AddInheritanceEdge("D", "D"), "cannot extend itself")

	be.Equal(t, g.Ancestors("C"), []string{"C", "B", "A"})
	be.True(t, g.IsSubtype("C", "A"))
	be.True(t, g.IsSubtype("A", "A"))
	be.True(t, !g.IsSubtype("A", "C"))
	be.True(t, !g.DetectCycles("C"))

	be.Err(t, g.AddInheritanceEdge("A", "C"), nil)
	be.True(t, g.DetectCycles("B"))
}

func TestConformance(t *testing.T) {
	st := NewSymbolTable()
	st.Classes["A"] = &ClassSymbol{Name: "A"}
	st.Classes["B"] = &ClassSymbol{Name: "B", Parent: "A"}
	be.Err(t, st.Inheritance.AddInheritanceEdge("B", "A"), nil)

	a := &types.Class{Name: "A"}
	b := &types.Class{Name: "B"}
	fp := &types.Fptr{Args: []types.Type{types.Int{}}, Return: types.Null{}}

	tests := []struct {
		source, target types.Type
		want           bool
	}{
		{b, a, true},
		{a, b, false},
		{types.Null{}, a, true},
		{types.Null{}, fp, true},
		{types.Null{}, types.Repeat(1, types.Int{}), false},
		{types.Int{}, types.Bool{}, false},
		{types.Repeat(2, b), types.Repeat(2, a), true},
		{types.Repeat(2, a), types.Repeat(3, a), false},
		{&types.Fptr{Args: []types.Type{types.Int{}}, Return: types.Null{}}, fp, true},
		{&types.Fptr{Args: []types.Type{types.Bool{}}, Return: types.Null{}}, fp, false},
	}
	for _, tt := range tests {
		be.Equal(t, st.IsConformingType(tt.source, tt.target), tt.want)
	}
}

func assertErrorsContain(t *testing.T, errors []string, substr string) {
	t.Helper()
	for _, err := range errors {
		if strings.Contains(err, substr) {
			return
		}
	}
	t.Errorf("Expected error containing %q, got: %v", substr, errors)
}

func assertNoErrors(t *testing.T, errors []string) {
	t.Helper()
	if len(errors) > 0 {
		t.Errorf("Expected no errors, got: %v", errors)
	}
}
