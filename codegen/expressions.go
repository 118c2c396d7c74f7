package codegen

import (
	"sophia-compiler/ast"
	"sophia-compiler/jasmin"
	"sophia-compiler/types"
)

// typeOf fetches the checked type of e.
func (g *CodeGenerator) typeOf(ctx *methodContext, e ast.Expression) (types.Type, error) {
	t := ctx.info.TypeOf(e)
	if _, bad := t.(types.NoType); bad {
		return nil, ctx.fail(KindUnsupported, e, "expression %s has no type", e)
	}
	return t, nil
}

// generateExpression leaves the value of e on the stack: ints and bools
// unboxed, everything else as a reference.
func (g *CodeGenerator) generateExpression(ctx *methodContext, expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.IntValue:
		ctx.emit(jasmin.IntConst(e.Value))
	case *ast.BoolValue:
		if e.Value {
			ctx.emit(jasmin.IntConst(1))
		} else {
			ctx.emit(jasmin.IntConst(0))
		}
	case *ast.StringValue:
		ctx.emit(jasmin.LdcString(e.Value))
	case *ast.NullValue:
		ctx.emit(jasmin.Op("aconst_null"))
	case *ast.ThisClass:
		ctx.emit(jasmin.ALoad(0))

	case *ast.Identifier:
		t, err := g.typeOf(ctx, e)
		if err != nil {
			return err
		}
		slot, ok := ctx.slotOf(e.Value)
		if !ok {
			return ctx.fail(KindUnresolved, e, "no slot for %s", e.Value)
		}
		ctx.emit(jasmin.ALoad(slot))
		unbox(ctx, t, false)

	case *ast.ListValue:
		return g.generateListValue(ctx, e)
	case *ast.BinaryExpression:
		return g.generateBinary(ctx, e)
	case *ast.UnaryExpression:
		return g.generateUnary(ctx, e)
	case *ast.MemberAccess:
		return g.generateMemberAccess(ctx, e)
	case *ast.ListAccessByIndex:
		return g.generateIndex(ctx, e)
	case *ast.MethodCall:
		return g.generateCall(ctx, e)
	case *ast.NewClassInstance:
		return g.generateNew(ctx, e)
	default:
		return ctx.fail(KindUnsupported, expr, "no lowering for %s", expr)
	}
	return nil
}

// generateBoxed leaves e on the stack as an object.
func (g *CodeGenerator) generateBoxed(ctx *methodContext, e ast.Expression) error {
	t, err := g.typeOf(ctx, e)
	if err != nil {
		return err
	}
	return boxWith(ctx, t, func() error { return g.generateExpression(ctx, e) })
}

// generateStored boxes e for storage into a slot of type target. Lists are
// copied so that the destination never aliases the source.
func (g *CodeGenerator) generateStored(ctx *methodContext, e ast.Expression, target types.Type) error {
	if _, isList := target.(*types.List); isList {
		if _, isNull := e.(*ast.NullValue); !isNull {
			ctx.emit(jasmin.Op("new", listClass), jasmin.Op("dup"))
			if err := g.generateExpression(ctx, e); err != nil {
				return err
			}
			ctx.emit(jasmin.Op("invokespecial", listClass+"/<init>(LList;)V"))
			return nil
		}
	}
	return g.generateBoxed(ctx, e)
}

func (g *CodeGenerator) generateListValue(ctx *methodContext, e *ast.ListValue) error {
	ctx.emit(
		jasmin.Op("new", listClass), jasmin.Op("dup"),
		jasmin.Op("new", arrayListClass), jasmin.Op("dup"),
		jasmin.Op("invokespecial", arrayListClass+"/<init>()V"),
	)
	for _, el := range e.Elements {
		ctx.emit(jasmin.Op("dup"))
		if err := g.generateBoxed(ctx, el); err != nil {
			return err
		}
		ctx.emit(
			jasmin.Op("invokevirtual", arrayListClass+"/add(Ljava/lang/Object;)Z"),
			jasmin.Op("pop"),
		)
	}
	ctx.emit(jasmin.Op("invokespecial", listClass+"/<init>(Ljava/util/ArrayList;)V"))
	return nil
}

var arithmeticOps = map[ast.BinaryOperator]string{
	ast.Add:  "iadd",
	ast.Sub:  "isub",
	ast.Mult: "imul",
	ast.Div:  "idiv",
	ast.Mod:  "irem",
	ast.And:  "iand",
	ast.Or:   "ior",
}

func (g *CodeGenerator) generateBinary(ctx *methodContext, e *ast.BinaryExpression) error {
	if e.Operator == ast.Assign {
		return g.generateAssignment(ctx, e.Left, e.Right, true)
	}

	if err := g.generateExpression(ctx, e.Left); err != nil {
		return err
	}
	if err := g.generateExpression(ctx, e.Right); err != nil {
		return err
	}

	if op, ok := arithmeticOps[e.Operator]; ok {
		ctx.emit(jasmin.Op(op))
		return nil
	}

	switch e.Operator {
	case ast.Lt:
		g.pushComparison(ctx, "if_icmplt")
	case ast.Gt:
		g.pushComparison(ctx, "if_icmpgt")
	case ast.Eq, ast.Neq:
		return g.generateEquality(ctx, e)
	default:
		return ctx.fail(KindUnsupported, e, "operator %s", e.Operator)
	}
	return nil
}

// generateEquality compares the two operands already on the stack.
func (g *CodeGenerator) generateEquality(ctx *methodContext, e *ast.BinaryExpression) error {
	eq := e.Operator == ast.Eq
	operand, err := g.typeOf(ctx, e.Left)
	if err != nil {
		return err
	}
	if types.IsVoid(operand) {
		if operand, err = g.typeOf(ctx, e.Right); err != nil {
			return err
		}
	}

	switch operand.(type) {
	case types.Int, types.Bool:
		g.pushComparison(ctx, pick(eq, "if_icmpeq", "if_icmpne"))
	case types.String:
		ctx.emit(jasmin.Op("invokestatic", "java/util/Objects/equals(Ljava/lang/Object;Ljava/lang/Object;)Z"))
		g.pushComparison(ctx, pick(eq, "ifne", "ifeq"))
	case *types.Class, *types.List, *types.Fptr, types.Null:
		g.pushComparison(ctx, pick(eq, "if_acmpeq", "if_acmpne"))
	default:
		return ctx.fail(KindUnsupported, e, "equality on %s", operand)
	}
	return nil
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// pushComparison turns a conditional branch into a 0 or 1 on the stack.
func (g *CodeGenerator) pushComparison(ctx *methodContext, branch string) {
	trueLabel := ctx.newLabel()
	endLabel := ctx.newLabel()
	ctx.jump(branch, trueLabel)
	ctx.emit(jasmin.IntConst(0))
	ctx.jump("goto", endLabel)
	ctx.mark(trueLabel)
	ctx.emit(jasmin.IntConst(1))
	ctx.mark(endLabel)
}

func (g *CodeGenerator) generateUnary(ctx *methodContext, e *ast.UnaryExpression) error {
	if e.Operator.IsIncDec() {
		return g.generateIncDec(ctx, e, true)
	}
	if err := g.generateExpression(ctx, e.Operand); err != nil {
		return err
	}
	switch e.Operator {
	case ast.Minus:
		ctx.emit(jasmin.Op("ineg"))
	case ast.Not:
		g.pushComparison(ctx, "ifeq")
	default:
		return ctx.fail(KindUnsupported, e, "operator %s", e.Operator)
	}
	return nil
}

func (g *CodeGenerator) generateMemberAccess(ctx *methodContext, e *ast.MemberAccess) error {
	owner, err := g.typeOf(ctx, e.Instance)
	if err != nil {
		return err
	}
	m, err := g.resolveMember(ctx, e, owner, e.Member.Value)
	if err != nil {
		return err
	}

	switch m.kind {
	case fieldMember:
		if err := g.generateExpression(ctx, e.Instance); err != nil {
			return err
		}
		ctx.emit(jasmin.Op("getfield", m.field.Owner+"/"+m.field.Name, descriptor(m.field.Type)))
		unbox(ctx, m.field.Type, false)
	case methodMember:
		ctx.emit(jasmin.Op("new", fptrClass), jasmin.Op("dup"))
		if err := g.generateExpression(ctx, e.Instance); err != nil {
			return err
		}
		ctx.emit(
			jasmin.LdcString(m.method.Name),
			jasmin.Op("invokespecial", fptrClass+"/<init>(Ljava/lang/Object;Ljava/lang/String;)V"),
		)
	case positionMember:
		if err := g.generateExpression(ctx, e.Instance); err != nil {
			return err
		}
		getElement(ctx, m.index, m.typ)
	}
	return nil
}

func getElement(ctx *methodContext, index int, t types.Type) {
	ctx.emit(
		jasmin.IntConst(index),
		jasmin.Op("invokevirtual", listClass+"/getElement(I)Ljava/lang/Object;"),
	)
	unbox(ctx, t, true)
}

func (g *CodeGenerator) generateIndex(ctx *methodContext, e *ast.ListAccessByIndex) error {
	m, err := g.resolveIndex(ctx, e)
	if err != nil {
		return err
	}
	if err := g.generateExpression(ctx, e.Instance); err != nil {
		return err
	}
	getElement(ctx, m.index, m.typ)
	return nil
}

// generateCall invokes a function pointer. A void call leaves nothing on
// the stack.
func (g *CodeGenerator) generateCall(ctx *methodContext, e *ast.MethodCall) error {
	callee, err := g.typeOf(ctx, e.Instance)
	if err != nil {
		return err
	}
	fptr, ok := callee.(*types.Fptr)
	if !ok {
		return ctx.fail(KindUnsupported, e, "calling a value of type %s", callee)
	}

	if err := g.generateExpression(ctx, e.Instance); err != nil {
		return err
	}
	ctx.emit(
		jasmin.Op("new", arrayListClass), jasmin.Op("dup"),
		jasmin.Op("invokespecial", arrayListClass+"/<init>()V"),
	)
	for _, arg := range e.Args {
		ctx.emit(jasmin.Op("dup"))
		if err := g.generateBoxed(ctx, arg); err != nil {
			return err
		}
		ctx.emit(
			jasmin.Op("invokevirtual", arrayListClass+"/add(Ljava/lang/Object;)Z"),
			jasmin.Op("pop"),
		)
	}
	ctx.emit(jasmin.Op("invokevirtual", fptrClass+"/invoke(Ljava/util/ArrayList;)Ljava/lang/Object;"))

	if types.IsVoid(fptr.Return) {
		ctx.emit(jasmin.Op("pop"))
		return nil
	}
	unbox(ctx, fptr.Return, true)
	return nil
}

func (g *CodeGenerator) generateNew(ctx *methodContext, e *ast.NewClassInstance) error {
	name := e.ClassName.Value
	if _, ok := ctx.info.Class(name); !ok {
		return ctx.fail(KindUnresolved, e, "unknown class %s", name)
	}

	paramTypes := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		t, err := g.typeOf(ctx, arg)
		if err != nil {
			return err
		}
		paramTypes[i] = t
	}
	if ctor, ok := ctx.info.LookupConstructor(name); ok && len(ctor.Args) == len(e.Args) {
		paramTypes = ctor.Args
	}

	ctx.emit(jasmin.Op("new", name), jasmin.Op("dup"))
	for _, arg := range e.Args {
		if err := g.generateBoxed(ctx, arg); err != nil {
			return err
		}
	}
	ctx.emit(jasmin.Op("invokespecial", name+"/<init>"+methodDescriptor(paramTypes, types.Null{})))
	return nil
}
