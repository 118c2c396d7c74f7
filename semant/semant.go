package semant

import (
	"fmt"

	"sophia-compiler/ast"
	"sophia-compiler/types"
)

type SemanticAnalyzer struct {
	symbolTable *SymbolTable
	errors      []string
	entryClass  string
	types       map[ast.Expression]types.Type

	// state of the method being checked
	className string
	method    *MethodSymbol
	scopes    []map[string]types.Type
	loopDepth int
}

func NewSemanticAnalyzer(entryClass string) *SemanticAnalyzer {
	return &SemanticAnalyzer{
		symbolTable: NewSymbolTable(),
		errors:      []string{},
		entryClass:  entryClass,
		types:       make(map[ast.Expression]types.Type),
	}
}

func (sa *SemanticAnalyzer) Errors() []string {
	return sa.errors
}

func (sa *SemanticAnalyzer) errorf(n ast.Node, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if line := ast.Line(n); line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	sa.errors = append(sa.errors, msg)
}

func (sa *SemanticAnalyzer) topologicalSort(classes []*ast.ClassDeclaration) []*ast.ClassDeclaration {
	visited := make(map[string]bool)
	order := []*ast.ClassDeclaration{}

	var visit func(cls *ast.ClassDeclaration)
	visit = func(cls *ast.ClassDeclaration) {
		if visited[cls.Name.Value] {
			return
		}
		visited[cls.Name.Value] = true

		// Process parent first if exists
		if cls.Parent != nil {
			if parent, ok := sa.symbolTable.Classes[cls.Parent.Value]; ok {
				visit(parent.Decl)
			}
		}

		order = append(order, cls)
	}

	for _, cls := range classes {
		visit(cls)
	}
	return order
}

// Analyze checks program and returns what it resolved. The result is
// complete only when Errors is empty.
func (sa *SemanticAnalyzer) Analyze(program *ast.Program) *Info {
	// First pass: register all class names
	var classes []*ast.ClassDeclaration
	for _, class := range program.Classes {
		className := class.Name.Value
		if _, exists := sa.symbolTable.Classes[className]; exists {
			sa.errorf(class, "Class %s is redefined", className)
			continue
		}
		if ReservedClasses[className] {
			sa.errorf(class, "Class name %s is reserved by the runtime", className)
		}
		sa.symbolTable.Classes[className] = &ClassSymbol{
			Name:    className,
			Parent:  class.ParentName(),
			Decl:    class,
			Fields:  make(map[string]*FieldSymbol),
			Methods: make(map[string]*MethodSymbol),
		}
		classes = append(classes, class)
	}

	cyclic := false
	for _, class := range classes {
		if err := sa.setupInheritance(class); err != nil {
			sa.errorf(class, "%s", err.Error())
		}
	}
	for _, class := range classes {
		if sa.symbolTable.Inheritance.DetectCycles(class.Name.Value) {
			sa.errorf(class, "Class %s is part of an inheritance cycle", class.Name.Value)
			cyclic = true
		}
	}

	info := &Info{Program: program, Symbols: sa.symbolTable, types: sa.types}
	if cyclic {
		return info
	}

	ordered := sa.topologicalSort(classes)
	for _, class := range ordered {
		sa.collectMembers(class)
	}

	if _, ok := sa.symbolTable.Classes[sa.entryClass]; !ok && sa.entryClass != "" {
		sa.errors = append(sa.errors, fmt.Sprintf("Program does not contain a '%s' class", sa.entryClass))
	}

	for _, class := range ordered {
		sa.analyzeClass(class)
	}
	return info
}

func (sa *SemanticAnalyzer) setupInheritance(class *ast.ClassDeclaration) error {
	if class.Parent == nil {
		return nil
	}
	parentName := class.Parent.Value
	if _, exists := sa.symbolTable.Classes[parentName]; !exists {
		return fmt.Errorf("Class %s inherits from undefined class %s", class.Name.Value, parentName)
	}
	return sa.symbolTable.Inheritance.AddInheritanceEdge(class.Name.Value, parentName)
}

func (sa *SemanticAnalyzer) collectMembers(class *ast.ClassDeclaration) {
	cs := sa.symbolTable.Classes[class.Name.Value]

	for _, f := range class.Fields {
		name := f.Name.Value
		if _, exists := cs.Fields[name]; exists {
			sa.errorf(f, "field %s is redefined in class %s", name, cs.Name)
			continue
		}
		sa.checkDeclaredType(f, f.Type)
		cs.Fields[name] = &FieldSymbol{Name: name, Type: f.Type, Owner: cs.Name}
		cs.FieldOrder = append(cs.FieldOrder, name)
	}

	if class.Constructor != nil {
		cs.Constructor = sa.methodSymbol(cs, class.Constructor)
	}

	for _, m := range class.Methods {
		name := m.Name.Value
		if _, exists := cs.Methods[name]; exists {
			sa.errorf(m, "method %s is redefined in class %s", name, cs.Name)
			continue
		}
		if _, clash := cs.Fields[name]; clash {
			sa.errorf(m, "method %s conflicts with a field of class %s", name, cs.Name)
		}
		ms := sa.methodSymbol(cs, m)
		if isReservedMethod(name, len(ms.Args)) {
			sa.errorf(m, "method %s of class %s clashes with java/lang/Object.%s", name, cs.Name, name)
		}
		if cs.Parent != "" {
			if inherited, ok := sa.symbolTable.LookupMethod(cs.Parent, name); ok &&
				!types.Equal(inherited.Fptr(), ms.Fptr()) {
				sa.errorf(m, "method %s of class %s overrides %s.%s with a different signature",
					name, cs.Name, inherited.Owner, name)
			}
		}
		cs.Methods[name] = ms
	}
}

func (sa *SemanticAnalyzer) methodSymbol(cs *ClassSymbol, m *ast.MethodDeclaration) *MethodSymbol {
	ms := &MethodSymbol{Name: m.Name.Value, Return: m.ReturnType, Owner: cs.Name, Decl: m}
	if ms.Return == nil {
		ms.Return = types.Null{}
	}
	seen := map[string]bool{}
	for _, arg := range m.Args {
		if seen[arg.Name.Value] {
			sa.errorf(arg, "parameter %s is declared twice in %s", arg.Name.Value, ms.Name)
		}
		seen[arg.Name.Value] = true
		sa.checkDeclaredType(arg, arg.Type)
		ms.Args = append(ms.Args, arg.Type)
	}
	if !types.IsVoid(ms.Return) {
		sa.checkDeclaredType(m, ms.Return)
	}
	return ms
}

func (sa *SemanticAnalyzer) checkDeclaredType(n ast.Node, t types.Type) {
	if !sa.symbolTable.isValidType(t) {
		sa.errorf(n, "undefined type %s", t)
	}
}

func (sa *SemanticAnalyzer) analyzeClass(class *ast.ClassDeclaration) {
	cs := sa.symbolTable.Classes[class.Name.Value]
	sa.className = cs.Name
	if cs.Constructor != nil {
		sa.analyzeMethod(cs.Constructor)
	}
	for _, m := range class.Methods {
		if ms, ok := cs.Methods[m.Name.Value]; ok && ms.Decl == m {
			sa.analyzeMethod(ms)
		}
	}
}

func (sa *SemanticAnalyzer) analyzeMethod(ms *MethodSymbol) {
	sa.method = ms
	sa.loopDepth = 0
	sa.scopes = []map[string]types.Type{{}}
	for i, arg := range ms.Decl.Args {
		sa.scopes[0][arg.Name.Value] = ms.Args[i]
	}
	for _, stmt := range ms.Decl.Body {
		sa.analyzeStatement(stmt)
	}
	sa.scopes = nil
}

func (sa *SemanticAnalyzer) enterScope() {
	sa.scopes = append(sa.scopes, map[string]types.Type{})
}

func (sa *SemanticAnalyzer) exitScope() {
	sa.scopes = sa.scopes[:len(sa.scopes)-1]
}

func (sa *SemanticAnalyzer) lookupLocal(name string) (types.Type, bool) {
	for i := len(sa.scopes) - 1; i >= 0; i-- {
		if t, ok := sa.scopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (sa *SemanticAnalyzer) analyzeStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		name := s.Name.Value
		if _, exists := sa.lookupLocal(name); exists {
			sa.errorf(s, "variable %s is already declared", name)
			return
		}
		sa.checkDeclaredType(s, s.Type)
		sa.scopes[len(sa.scopes)-1][name] = s.Type

	case *ast.BlockStmt:
		sa.enterScope()
		for _, inner := range s.Statements {
			sa.analyzeStatement(inner)
		}
		sa.exitScope()

	case *ast.ConditionalStmt:
		sa.expectBool(s.Condition, "if condition")
		sa.analyzeNested(s.Then)
		if s.Else != nil {
			sa.analyzeNested(s.Else)
		}

	case *ast.ForStmt:
		sa.enterScope()
		if s.Init != nil {
			sa.analyzeStatement(s.Init)
		}
		if s.Condition != nil {
			sa.expectBool(s.Condition, "for condition")
		}
		if s.Update != nil {
			sa.analyzeStatement(s.Update)
		}
		sa.loopDepth++
		sa.analyzeNested(s.Body)
		sa.loopDepth--
		sa.exitScope()

	case *ast.ForeachStmt:
		sa.analyzeForeach(s)

	case *ast.MethodCallStmt:
		sa.checkExpr(s.Call)

	case *ast.PrintStmt:
		t := sa.checkValue(s.Arg)
		switch t.(type) {
		case types.Int, types.Bool, types.String, types.NoType:
		default:
			sa.errorf(s, "print cannot print a value of type %s", t)
		}

	case *ast.ReturnStmt:
		sa.analyzeReturn(s)

	case *ast.BreakStmt:
		if sa.loopDepth == 0 {
			sa.errorf(s, "break outside of a loop")
		}

	case *ast.ContinueStmt:
		if sa.loopDepth == 0 {
			sa.errorf(s, "continue outside of a loop")
		}

	case *ast.AssignmentStmt:
		sa.checkAssignment(s, s.LValue, s.RValue)

	case *ast.IncDecStmt:
		sa.checkExpr(s.Expr)
	}
}

// analyzeNested checks the body of an if or a loop in its own scope.
func (sa *SemanticAnalyzer) analyzeNested(stmt ast.Statement) {
	sa.enterScope()
	sa.analyzeStatement(stmt)
	sa.exitScope()
}

func (sa *SemanticAnalyzer) analyzeForeach(s *ast.ForeachStmt) {
	varType, declared := sa.lookupLocal(s.Variable.Value)
	if !declared {
		sa.errorf(s, "foreach variable %s is not declared", s.Variable.Value)
	}
	if !declared {
		varType = types.NoType{}
	}
	sa.types[s.Variable] = varType

	lt := sa.checkValue(s.List)
	switch l := lt.(type) {
	case types.NoType:
	case *types.List:
		if !l.Homogeneous() {
			sa.errorf(s, "foreach requires a non-empty list with elements of one type, got %s", l)
			break
		}
		if declared && !types.Equal(varType, l.Elements[0].Type) {
			sa.errorf(s, "foreach variable %s has type %s, list elements are %s",
				s.Variable.Value, varType, l.Elements[0].Type)
		}
	default:
		sa.errorf(s, "foreach requires a list, got %s", lt)
	}

	sa.loopDepth++
	sa.analyzeNested(s.Body)
	sa.loopDepth--
}

func (sa *SemanticAnalyzer) analyzeReturn(s *ast.ReturnStmt) {
	want := sa.method.Return
	if sa.method.Decl.IsConstructor || types.IsVoid(want) {
		if s.Value != nil {
			sa.checkValue(s.Value)
			sa.errorf(s, "%s cannot return a value", sa.method.Name)
		}
		return
	}
	if s.Value == nil {
		sa.errorf(s, "%s must return a value of type %s", sa.method.Name, want)
		return
	}
	got := sa.checkValue(s.Value)
	if !sa.symbolTable.IsConformingType(got, want) {
		sa.errorf(s, "%s returns %s, expected %s", sa.method.Name, got, want)
	}
}

func (sa *SemanticAnalyzer) expectBool(e ast.Expression, what string) {
	t := sa.checkValue(e)
	switch t.(type) {
	case types.Bool, types.NoType:
		return
	}
	sa.errorf(e, "%s must be bool, got %s", what, t)
}

func (sa *SemanticAnalyzer) checkAssignment(n ast.Node, lhs, rhs ast.Expression) types.Type {
	target := sa.checkLValue(lhs)
	source := sa.checkValue(rhs)
	if !sa.symbolTable.IsConformingType(source, target) {
		sa.errorf(n, "cannot assign %s to %s of type %s", source, lhs, target)
	}
	return target
}

// checkLValue types an assignment target and reports targets that cannot
// be written.
func (sa *SemanticAnalyzer) checkLValue(e ast.Expression) types.Type {
	t := sa.checkValue(e)
	switch e := e.(type) {
	case *ast.Identifier, *ast.ListAccessByIndex:
		return t
	case *ast.MemberAccess:
		if ct, ok := sa.types[e.Instance].(*types.Class); ok {
			if _, isField := sa.symbolTable.LookupField(ct.Name, e.Member.Value); !isField {
				sa.errorf(e, "cannot assign to method %s", e.Member.Value)
				return types.NoType{}
			}
		}
		return t
	}
	sa.errorf(e, "%s is not assignable", e)
	return types.NoType{}
}

// checkValue types e and rejects calls that produce no value.
func (sa *SemanticAnalyzer) checkValue(e ast.Expression) types.Type {
	t := sa.checkExpr(e)
	if call, ok := e.(*ast.MethodCall); ok && types.IsVoid(t) {
		sa.errorf(call, "%s returns void and cannot be used as a value", call.Instance)
		return types.NoType{}
	}
	return t
}

func (sa *SemanticAnalyzer) checkExpr(e ast.Expression) types.Type {
	t := sa.typeOf(e)
	sa.types[e] = t
	return t
}

func (sa *SemanticAnalyzer) typeOf(e ast.Expression) types.Type {
	switch e := e.(type) {
	case *ast.IntValue:
		return types.Int{}
	case *ast.BoolValue:
		return types.Bool{}
	case *ast.StringValue:
		return types.String{}
	case *ast.NullValue:
		return types.Null{}
	case *ast.ThisClass:
		return &types.Class{Name: sa.className}

	case *ast.Identifier:
		t, ok := sa.lookupLocal(e.Value)
		if !ok {
			sa.errorf(e, "%s is not declared", e.Value)
			return types.NoType{}
		}
		return t

	case *ast.ListValue:
		list := &types.List{}
		for _, el := range e.Elements {
			list.Elements = append(list.Elements, types.ListNameType{Type: sa.checkValue(el)})
		}
		return list

	case *ast.BinaryExpression:
		return sa.checkBinary(e)

	case *ast.UnaryExpression:
		return sa.checkUnary(e)

	case *ast.MemberAccess:
		return sa.checkMemberAccess(e)

	case *ast.ListAccessByIndex:
		return sa.checkIndex(e)

	case *ast.MethodCall:
		return sa.checkCall(e)

	case *ast.NewClassInstance:
		return sa.checkNew(e)
	}
	sa.errorf(e, "unsupported expression %s", e)
	return types.NoType{}
}

func isNoType(ts ...types.Type) bool {
	for _, t := range ts {
		if _, ok := t.(types.NoType); ok {
			return true
		}
	}
	return false
}

func (sa *SemanticAnalyzer) checkBinary(e *ast.BinaryExpression) types.Type {
	if e.Operator == ast.Assign {
		return sa.checkAssignment(e, e.Left, e.Right)
	}

	left := sa.checkValue(e.Left)
	right := sa.checkValue(e.Right)

	switch e.Operator {
	case ast.Add, ast.Sub, ast.Mult, ast.Div, ast.Mod:
		if !isNoType(left, right) && !(types.Equal(left, types.Int{}) && types.Equal(right, types.Int{})) {
			sa.errorf(e, "arithmetic operator %s requires int operands, got %s and %s", e.Operator, left, right)
		}
		return types.Int{}

	case ast.Lt, ast.Gt:
		if !isNoType(left, right) && !(types.Equal(left, types.Int{}) && types.Equal(right, types.Int{})) {
			sa.errorf(e, "comparison operator %s requires int operands, got %s and %s", e.Operator, left, right)
		}
		return types.Bool{}

	case ast.Eq, ast.Neq:
		if !isNoType(left, right) && !sa.comparable(left, right) {
			sa.errorf(e, "cannot compare %s and %s with %s", left, right, e.Operator)
		}
		return types.Bool{}

	case ast.And, ast.Or:
		if !isNoType(left, right) && !(types.Equal(left, types.Bool{}) && types.Equal(right, types.Bool{})) {
			sa.errorf(e, "logical operator %s requires bool operands, got %s and %s", e.Operator, left, right)
		}
		return types.Bool{}
	}
	return types.NoType{}
}

func (sa *SemanticAnalyzer) comparable(a, b types.Type) bool {
	if types.Equal(a, b) {
		return true
	}
	if types.IsVoid(a) {
		a, b = b, a
	}
	if types.IsVoid(b) {
		switch a.(type) {
		case *types.Class, *types.Fptr:
			return true
		}
	}
	return false
}

func (sa *SemanticAnalyzer) checkUnary(e *ast.UnaryExpression) types.Type {
	switch e.Operator {
	case ast.Minus:
		t := sa.checkValue(e.Operand)
		if !isNoType(t) && !types.Equal(t, types.Int{}) {
			sa.errorf(e, "unary - requires an int operand, got %s", t)
		}
		return types.Int{}
	case ast.Not:
		t := sa.checkValue(e.Operand)
		if !isNoType(t) && !types.Equal(t, types.Bool{}) {
			sa.errorf(e, "! requires a bool operand, got %s", t)
		}
		return types.Bool{}
	}

	t := sa.checkLValue(e.Operand)
	if !isNoType(t) && !types.Equal(t, types.Int{}) {
		sa.errorf(e, "%s requires an int operand, got %s", e.Operator, t)
	}
	return types.Int{}
}

func (sa *SemanticAnalyzer) checkMemberAccess(e *ast.MemberAccess) types.Type {
	inst := sa.checkValue(e.Instance)
	name := e.Member.Value
	switch it := inst.(type) {
	case types.NoType:
		return inst
	case *types.Class:
		if f, ok := sa.symbolTable.LookupField(it.Name, name); ok {
			return f.Type
		}
		if m, ok := sa.symbolTable.LookupMethod(it.Name, name); ok {
			return m.Fptr()
		}
		sa.errorf(e, "class %s has no member named %s", it.Name, name)
	case *types.List:
		if i, ok := it.Position(name); ok {
			return it.Elements[i].Type
		}
		sa.errorf(e, "%s has no position named %s", it, name)
	default:
		sa.errorf(e, "cannot access member %s of a value of type %s", name, inst)
	}
	return types.NoType{}
}

func (sa *SemanticAnalyzer) checkIndex(e *ast.ListAccessByIndex) types.Type {
	inst := sa.checkValue(e.Instance)
	idxType := sa.checkValue(e.Index)
	if !isNoType(idxType) && !types.Equal(idxType, types.Int{}) {
		sa.errorf(e, "list index must be an int, got %s", idxType)
		return types.NoType{}
	}

	list, ok := inst.(*types.List)
	if !ok {
		if !isNoType(inst) {
			sa.errorf(e, "cannot index a value of type %s", inst)
		}
		return types.NoType{}
	}
	lit, ok := e.Index.(*ast.IntValue)
	if !ok {
		sa.errorf(e, "list index must be an integer literal")
		return types.NoType{}
	}
	t, ok := list.Element(lit.Value)
	if !ok {
		sa.errorf(e, "list index %d out of range for %s", lit.Value, list)
		return types.NoType{}
	}
	return t
}

func (sa *SemanticAnalyzer) checkCall(e *ast.MethodCall) types.Type {
	callee := sa.checkValue(e.Instance)
	var args []types.Type
	for _, a := range e.Args {
		args = append(args, sa.checkValue(a))
	}

	fptr, ok := callee.(*types.Fptr)
	if !ok {
		if !isNoType(callee) {
			sa.errorf(e, "%s of type %s is not callable", e.Instance, callee)
		}
		return types.NoType{}
	}
	if len(args) != len(fptr.Args) {
		sa.errorf(e, "%s expects %d arguments, got %d", e.Instance, len(fptr.Args), len(args))
		return fptr.Return
	}
	for i := range args {
		if !sa.symbolTable.IsConformingType(args[i], fptr.Args[i]) {
			sa.errorf(e.Args[i], "argument %d of %s has type %s, expected %s", i+1, e.Instance, args[i], fptr.Args[i])
		}
	}
	return fptr.Return
}

func (sa *SemanticAnalyzer) checkNew(e *ast.NewClassInstance) types.Type {
	var args []types.Type
	for _, a := range e.Args {
		args = append(args, sa.checkValue(a))
	}
	name := e.ClassName.Value
	if _, ok := sa.symbolTable.Classes[name]; !ok {
		sa.errorf(e, "undefined class %s", name)
		return types.NoType{}
	}

	// Every class can be built without arguments.
	if len(args) == 0 {
		return &types.Class{Name: name}
	}
	ctor, ok := sa.symbolTable.LookupConstructor(name)
	if !ok {
		sa.errorf(e, "class %s has no initialize taking %d arguments", name, len(args))
		return &types.Class{Name: name}
	}
	if len(ctor.Args) != len(args) {
		sa.errorf(e, "initialize of %s expects %d arguments, got %d", name, len(ctor.Args), len(args))
		return &types.Class{Name: name}
	}
	for i := range args {
		if !sa.symbolTable.IsConformingType(args[i], ctor.Args[i]) {
			sa.errorf(e.Args[i], "argument %d of new %s has type %s, expected %s", i+1, name, args[i], ctor.Args[i])
		}
	}
	return &types.Class{Name: name}
}
