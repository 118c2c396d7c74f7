package codegen

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pkg/errors"

	"sophia-compiler/jasmin"
	"sophia-compiler/lexer"
	"sophia-compiler/parser"
	"sophia-compiler/semant"
	"sophia-compiler/types"
)

// analyzeSource parses and checks src. With allowErrors unset any
// diagnostic fails the test.
func analyzeSource(t *testing.T, src string, allowErrors bool) *semant.Info {
	t.Helper()
	p := parser.New(lexer.NewLexer(strings.NewReader(src)))
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	sa := semant.NewSemanticAnalyzer("Main")
	info := sa.Analyze(program)
	if !allowErrors && len(sa.Errors()) > 0 {
		t.Fatalf("semantic errors: %v", sa.Errors())
	}
	return info
}

func generateUnits(t *testing.T, src string) map[string]*jasmin.Class {
	t.Helper()
	info := analyzeSource(t, src, false)
	g := NewCodeGenerator(info, DefaultOptions())
	units := map[string]*jasmin.Class{}
	for _, c := range info.Program.Classes {
		unit, err := g.GenerateClass(c.Name.Value)
		be.Err(t, err, nil)
		units[c.Name.Value] = unit
	}
	return units
}

// runProgram compiles src and returns what its entry point prints.
func runProgram(t *testing.T, src string) string {
	t.Helper()
	vm := newMachine(generateUnits(t, src))
	if err := vm.runMain("Main"); err != nil {
		t.Fatalf("run failed: %v\noutput so far:\n%s", err, vm.out.String())
	}
	return vm.out.String()
}

// inInitialize wraps statements into the constructor of Main.
func inInitialize(body string) string {
	return "class Main { initialize() { " + body + " } }"
}

func codeLines(m *jasmin.Method) []string {
	lines := make([]string, len(m.Code))
	for i, in := range m.Code {
		lines[i] = strings.TrimSpace(in.String())
	}
	return lines
}

func mustMethod(t *testing.T, unit *jasmin.Class, name, desc string) *jasmin.Method {
	t.Helper()
	m, ok := unit.Method(name, desc)
	if !ok {
		t.Fatalf("%s has no method %s%s:\n%s", unit.Name, name, desc, unit)
	}
	return m
}

func TestTypeDescriptors(t *testing.T) {
	tests := []struct {
		typ  types.Type
		want string
	}{
		{types.Int{}, "Ljava/lang/Integer;"},
		{types.Bool{}, "Ljava/lang/Boolean;"},
		{types.String{}, "Ljava/lang/String;"},
		{types.Repeat(2, types.Int{}), "LList;"},
		{&types.Fptr{Return: types.Null{}}, "LFptr;"},
		{&types.Class{Name: "Shape"}, "LShape;"},
		{types.Null{}, "V"},
	}
	for _, tt := range tests {
		be.Equal(t, descriptor(tt.typ), tt.want)
	}

	be.Equal(t, methodDescriptor([]types.Type{types.Int{}, &types.Class{Name: "A"}}, types.Bool{}),
		"(Ljava/lang/Integer;LA;)Ljava/lang/Boolean;")
	be.Equal(t, methodDescriptor(nil, types.Null{}), "()V")
}

func TestDefaultConstructor(t *testing.T) {
	units := generateUnits(t, "class Main {} class P extends Main { int i; string s; }")
	p := units["P"]
	be.Equal(t, p.Super, "Main")
	be.Equal(t, len(p.Fields), 2)

	ctor := mustMethod(t, p, "<init>", "()V")
	be.Equal(t, codeLines(ctor), []string{
		"aload_0",
		"invokespecial Main/<init>()V",
		"aload_0",
		"new java/lang/Integer",
		"dup",
		"iconst_0",
		"invokespecial java/lang/Integer/<init>(I)V",
		"putfield P/i Ljava/lang/Integer;",
		"aload_0",
		"new java/lang/String",
		"dup",
		`ldc ""`,
		"invokespecial java/lang/String/<init>(Ljava/lang/String;)V",
		"putfield P/s Ljava/lang/String;",
		"return",
	})

	main := units["Main"]
	be.Equal(t, main.Super, "java/lang/Object")
	entry := mustMethod(t, main, "main", "([Ljava/lang/String;)V")
	be.True(t, entry.Static)
	be.Equal(t, codeLines(entry), []string{"new Main", "invokespecial Main/<init>()V", "return"})
	_, hasEntry := p.Method("main", "([Ljava/lang/String;)V")
	be.True(t, !hasEntry)
}

func TestConstructorWithArguments(t *testing.T) {
	units := generateUnits(t, `class Main { initialize() { Point p; p = new Point(1, 2); } }
class Point { int x; int y; initialize(int x, int y) { this.x = x; this.y = y; } }`)
	point := units["Point"]

	noArgs := mustMethod(t, point, "<init>", "()V")
	be.Equal(t, noArgs.Code[len(noArgs.Code)-1].Opcode, "return")
	withArgs := mustMethod(t, point, "<init>", "(Ljava/lang/Integer;Ljava/lang/Integer;)V")
	lines := codeLines(withArgs)
	be.Equal(t, lines[0], "aload_0")
	be.Equal(t, lines[1], "invokespecial java/lang/Object/<init>()V")
	be.True(t, strings.Contains(strings.Join(lines, "\n"), "putfield Point/x Ljava/lang/Integer;"))

	ctor := strings.Join(codeLines(mustMethod(t, units["Main"], "<init>", "()V")), "\n")
	be.True(t, strings.Contains(ctor, "invokespecial Point/<init>(Ljava/lang/Integer;Ljava/lang/Integer;)V"))
}

func TestMethodEmission(t *testing.T) {
	units := generateUnits(t, `class Main {
    int twice(int x) { return x * 2; }
    void nothing() { }
    list(int a) pair(bool b) { if (b) return [1]; else return [2]; }
}`)
	main := units["Main"]

	twice := mustMethod(t, main, "twice", "(Ljava/lang/Integer;)Ljava/lang/Integer;")
	be.Equal(t, twice.StackLimit, 128)
	be.Equal(t, twice.LocalsLimit, 128)
	be.Equal(t, codeLines(twice), []string{
		"new java/lang/Integer",
		"dup",
		"aload_1",
		"invokevirtual java/lang/Integer/intValue()I",
		"iconst_2",
		"imul",
		"invokespecial java/lang/Integer/<init>(I)V",
		"areturn",
	})

	nothing := mustMethod(t, main, "nothing", "()V")
	be.Equal(t, codeLines(nothing), []string{"return"})

	pair := mustMethod(t, main, "pair", "(Ljava/lang/Boolean;)LList;")
	last := pair.Code[len(pair.Code)-1]
	be.Equal(t, last.Opcode, "areturn")

	text := main.String()
	be.True(t, strings.Contains(text, ".method public twice(Ljava/lang/Integer;)Ljava/lang/Integer;\n.limit stack 128\n.limit locals 128\n"))
	be.True(t, strings.Contains(text, ".end method"))
}

func TestIncrementSemantics(t *testing.T) {
	out := runProgram(t, inInitialize(`
        int x; int y;
        x = 5;
        y = x++;
        print(y); print(x);
        y = ++x;
        print(y); print(x);
        y = x--;
        print(y); print(x);
        --x;
        print(x);
        print(x++ * 10 + x);`))
	be.Equal(t, out, "5\n6\n7\n7\n7\n6\n5\n56\n")
}

func TestIncrementOnFieldsAndElements(t *testing.T) {
	out := runProgram(t, `class Main {
    int count;
    list(int a, int b) pair;
    initialize() {
        this.count++;
        ++this.count;
        this.pair.b++;
        this.pair[0]--;
        print(this.count);
        print(this.pair.a);
        print(this.pair[1]);
    }
}`)
	be.Equal(t, out, "2\n-1\n1\n")
}

func TestComparisons(t *testing.T) {
	out := runProgram(t, inInitialize(`
        string s; Main m; bool b;
        print(3 < 5);
        print(5 < 3);
        print(5 > 3);
        print(3 == 3);
        print(3 != 3);
        print(true == false);
        s = "ab";
        print(s == "ab");
        print(s != "ab");
        print(m == null);
        print(this != null);
        print(!b);
        print(true && false || true);
        print(-(2 - 7) % 3);`))
	be.Equal(t, out, "1\n0\n1\n1\n0\n0\n1\n0\n1\n1\n1\n1\n2\n")
}

func TestDefaultValuesReadBack(t *testing.T) {
	out := runProgram(t, `class Main {
    list(int a, bool b, string s, list(2 # int) n, Main m) l;
    initialize() {
        print(this.l.a);
        print(this.l.b);
        print(this.l.s == "");
        print(this.l.n[1]);
        print(this.l[4] == null);
    }
}`)
	be.Equal(t, out, "0\n0\n1\n0\n1\n")
}

func TestLoops(t *testing.T) {
	out := runProgram(t, inInitialize(`
        int i; int j; int count; int sum; int x;
        for (i = 0; i < 4; i++) {
            if (i == 2) continue;
            for (j = 0; j < 10; j++) {
                if (j == 3) break;
                count = count + 1;
            }
        }
        print(count);
        i = 0;
        for (;;) {
            if (i == 7) break;
            i++;
        }
        print(i);
        foreach (x in [1, 2, 3]) {
            if (x == 2) continue;
            sum = sum + x;
        }
        print(sum);`))
	be.Equal(t, out, "9\n7\n4\n")
}

func TestListAssignmentCopies(t *testing.T) {
	out := runProgram(t, inInitialize(`
        list(3 # int) a; list(3 # int) b;
        list(2 # list(1 # int)) n; list(2 # list(1 # int)) m;
        a = [1, 2, 3];
        b = a;
        b[0] = 10;
        print(a[0]);
        print(b[0]);
        m = n;
        m[1][0] = 4;
        print(n[1][0]);
        print(m[1][0]);`))
	be.Equal(t, out, "1\n10\n0\n4\n")
}

func TestAssignmentAsExpression(t *testing.T) {
	out := runProgram(t, inInitialize(`
        int x; int y; list(int a) l;
        x = y = 3;
        print(x + y);
        print((l.a = 9) + 1);
        print(l.a);`))
	be.Equal(t, out, "6\n10\n9\n")
}

func TestMethodPointers(t *testing.T) {
	out := runProgram(t, `class Main {
    initialize() {
        Calc c;
        fptr<int, int -> int> f;
        c = new Calc(2);
        f = c.mul;
        print(f(3, 4));
        print(c.mul(5, 1));
        c.log("hi");
        c.mul(1, 1);
        print(c.name());
    }
}
class Calc {
    int k;
    initialize(int k) { this.k = k; }
    int mul(int a, int b) { return a * b * this.k; }
    void log(string s) { print(s); }
    string name() { return "calc"; }
}`)
	be.Equal(t, out, "24\n10\nhi\ncalc\n")
}

func TestFieldShadowing(t *testing.T) {
	src := `class Main {
    initialize() {
        B b; A a;
        b = new B();
        a = b;
        print(b.v);
        print(a.v);
    }
}
class A { int v; initialize() { this.v = 1; } }
class B extends A { int v; initialize() { this.v = 2; } }`
	be.Equal(t, runProgram(t, src), "2\n1\n")

	units := generateUnits(t, src)
	ctor := strings.Join(codeLines(mustMethod(t, units["Main"], "<init>", "()V")), "\n")
	be.True(t, strings.Contains(ctor, "getfield B/v Ljava/lang/Integer;"))
	be.True(t, strings.Contains(ctor, "getfield A/v Ljava/lang/Integer;"))
}

func TestInheritedMembers(t *testing.T) {
	out := runProgram(t, `class Main {
    initialize() {
        Square s;
        s = new Square();
        s.size = 3;
        print(s.area());
        print(s.describe());
    }
}
class Shape {
    int size;
    string describe() { return "shape"; }
}
class Square extends Shape {
    int area() { return this.size * this.size; }
}`)
	be.Equal(t, out, "9\nshape\n")
}

func TestLabelsAreBalanced(t *testing.T) {
	units := generateUnits(t, `class Main {
    int f(int n) {
        int i; int x; bool b;
        for (i = 0; i < n; i++) {
            if (i == 1) continue;
            if (i > 5) break; else b = !b;
        }
        for (;;) { break; }
        for (i = 0; i < 2; i++) { }
        foreach (x in [1, 2]) { if (x == 1) continue; }
        if (b) return 1;
        return 2;
    }
    void g() { int i; for (;;) { i++; } }
}`)
	for _, unit := range units {
		for _, m := range unit.Methods {
			defined, referenced := jasmin.Labels(m.Code)
			be.Equal(t, defined, referenced)
		}
	}
}

func TestBreakBindsInnermostLoop(t *testing.T) {
	out := runProgram(t, inInitialize(`
        int i; int j; int hits;
        for (i = 0; i < 3; i++) {
            for (j = 0; j < 3; j++) {
                if (j == 1) continue;
                if (j == 2) break;
                hits = hits + 10;
            }
            hits = hits + 1;
        }
        print(hits);`))
	be.Equal(t, out, "33\n")
}

func TestInternalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		msg  string
	}{
		{"NonLiteralIndex", inInitialize("int i; list(2 # int) l; l[i] = 1;"), KindUnsupported, "not an integer literal"},
		{"BreakOutsideLoop", inInitialize("break;"), KindUnsupported, "break outside of a loop"},
		{"UndeclaredForeachVariable", inInitialize("foreach (x in [1, 2]) print(1);"), KindUnresolved, "no slot for x"},
		{"UntypedExpression", inInitialize("print(y);"), KindUnsupported, "has no type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := analyzeSource(t, tt.src, true)
			_, err := NewCodeGenerator(info, DefaultOptions()).GenerateClass("Main")
			ierr, ok := err.(*InternalError)
			if !ok {
				t.Fatalf("expected *InternalError, got %v", err)
			}
			be.Equal(t, ierr.Kind, tt.kind)
			be.Equal(t, ierr.Class, "Main")
			be.Equal(t, ierr.Method, "initialize")
			be.Err(t, err, tt.msg)
		})
	}

	_, err := NewCodeGenerator(analyzeSource(t, "class Main {}", false), DefaultOptions()).GenerateClass("Ghost")
	be.Err(t, err, "class was not collected")
}

type memorySink struct {
	units map[string]string
	order []string
	fail  string
}

func (s *memorySink) WriteUnit(name string, write func(io.Writer) error) error {
	if name == s.fail {
		return errors.New("disk full")
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	s.units[name] = buf.String()
	s.order = append(s.order, name)
	return nil
}

func TestGenerate(t *testing.T) {
	info := analyzeSource(t, "class Main {} class B extends Main {} class C {}", false)

	sink := &memorySink{units: map[string]string{}}
	be.Err(t, NewCodeGenerator(info, DefaultOptions()).Generate(sink), nil)
	be.Equal(t, sink.order, []string{"Main", "B", "C"})
	be.True(t, strings.HasPrefix(sink.units["B"], ".class public B\n.super Main\n"))

	failing := &memorySink{units: map[string]string{}, fail: "B"}
	err := NewCodeGenerator(info, DefaultOptions()).Generate(failing)
	be.Err(t, err, "writing class B: disk full")
	be.Equal(t, failing.order, []string{"Main"})
}

func TestOptions(t *testing.T) {
	info := analyzeSource(t, "class Main {} class App {}", false)
	g := NewCodeGenerator(info, Options{EntryClass: "App", StackLimit: 32})
	be.Equal(t, g.options.LocalsLimit, 128)

	app, err := g.GenerateClass("App")
	be.Err(t, err, nil)
	entry := mustMethod(t, app, "main", "([Ljava/lang/String;)V")
	be.Equal(t, entry.StackLimit, 32)

	main, err := g.GenerateClass("Main")
	be.Err(t, err, nil)
	_, ok := main.Method("main", "([Ljava/lang/String;)V")
	be.True(t, !ok)
}

func TestLocalsLimitGrows(t *testing.T) {
	var decls strings.Builder
	for i := 0; i < 130; i++ {
		decls.WriteString("int v")
		decls.WriteString(strings.Repeat("x", i+1))
		decls.WriteString("; ")
	}
	units := generateUnits(t, inInitialize(decls.String()))
	ctor := mustMethod(t, units["Main"], "<init>", "()V")
	be.True(t, ctor.LocalsLimit >= 131)
}
