package codegen

import (
	"sophia-compiler/ast"
	"sophia-compiler/jasmin"
	"sophia-compiler/types"
)

func (g *CodeGenerator) generateStatement(ctx *methodContext, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		slot := ctx.declare(s.Name.Value)
		defaultValue(ctx, s.Type)
		ctx.emit(jasmin.AStore(slot))

	case *ast.BlockStmt:
		for _, inner := range s.Statements {
			if err := g.generateStatement(ctx, inner); err != nil {
				return err
			}
		}

	case *ast.ConditionalStmt:
		return g.generateConditional(ctx, s)
	case *ast.ForStmt:
		return g.generateFor(ctx, s)
	case *ast.ForeachStmt:
		return g.generateForeach(ctx, s)

	case *ast.BreakStmt:
		loop, ok := ctx.innermostLoop()
		if !ok {
			return ctx.fail(KindUnsupported, s, "break outside of a loop")
		}
		ctx.jump("goto", loop.breakLabel)

	case *ast.ContinueStmt:
		loop, ok := ctx.innermostLoop()
		if !ok {
			return ctx.fail(KindUnsupported, s, "continue outside of a loop")
		}
		ctx.jump("goto", loop.continueLabel)

	case *ast.MethodCallStmt:
		if err := g.generateCall(ctx, s.Call); err != nil {
			return err
		}
		if fptr, ok := ctx.info.TypeOf(s.Call.Instance).(*types.Fptr); ok && !types.IsVoid(fptr.Return) {
			ctx.emit(jasmin.Op("pop"))
		}

	case *ast.PrintStmt:
		return g.generatePrint(ctx, s)
	case *ast.ReturnStmt:
		return g.generateReturn(ctx, s)

	case *ast.AssignmentStmt:
		return g.generateAssignment(ctx, s.LValue, s.RValue, false)
	case *ast.IncDecStmt:
		return g.generateIncDec(ctx, s.Expr, false)

	default:
		return ctx.fail(KindUnsupported, stmt, "no lowering for statement")
	}
	return nil
}

func (g *CodeGenerator) generateConditional(ctx *methodContext, s *ast.ConditionalStmt) error {
	elseLabel := ctx.newLabel()
	endLabel := ctx.newLabel()

	if err := g.generateExpression(ctx, s.Condition); err != nil {
		return err
	}
	if s.Else == nil {
		ctx.jump("ifeq", endLabel)
	} else {
		ctx.jump("ifeq", elseLabel)
	}

	if err := g.generateStatement(ctx, s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		if !ctx.terminated() {
			ctx.jump("goto", endLabel)
		}
		ctx.mark(elseLabel)
		if err := g.generateStatement(ctx, s.Else); err != nil {
			return err
		}
	}
	ctx.markIfUsed(endLabel)
	return nil
}

// generateFor lays a loop out as
//
//	init; Cond: [cond; ifne Body; goto Exit; Body:] body; Update: update; goto Cond; Exit:
func (g *CodeGenerator) generateFor(ctx *methodContext, s *ast.ForStmt) error {
	condLabel := ctx.newLabel()
	bodyLabel := ctx.newLabel()
	updateLabel := ctx.newLabel()
	exitLabel := ctx.newLabel()

	if s.Init != nil {
		if err := g.generateStatement(ctx, s.Init); err != nil {
			return err
		}
	}
	ctx.mark(condLabel)
	if s.Condition != nil {
		if err := g.generateExpression(ctx, s.Condition); err != nil {
			return err
		}
		ctx.jump("ifne", bodyLabel)
		ctx.jump("goto", exitLabel)
		ctx.mark(bodyLabel)
	}

	ctx.pushLoop(exitLabel, updateLabel)
	err := g.generateStatement(ctx, s.Body)
	ctx.popLoop()
	if err != nil {
		return err
	}

	ctx.markIfUsed(updateLabel)
	if s.Update != nil {
		if err := g.generateStatement(ctx, s.Update); err != nil {
			return err
		}
	}
	ctx.jump("goto", condLabel)
	ctx.markIfUsed(exitLabel)
	return nil
}

func (g *CodeGenerator) generateForeach(ctx *methodContext, s *ast.ForeachStmt) error {
	list, ok := ctx.info.TypeOf(s.List).(*types.List)
	if !ok || len(list.Elements) == 0 {
		return ctx.fail(KindUnsupported, s, "foreach over %s", ctx.info.TypeOf(s.List))
	}
	varSlot, ok := ctx.slotOf(s.Variable.Value)
	if !ok {
		return ctx.fail(KindUnresolved, s, "no slot for %s", s.Variable.Value)
	}

	condLabel := ctx.newLabel()
	updateLabel := ctx.newLabel()
	exitLabel := ctx.newLabel()

	if err := g.generateExpression(ctx, s.List); err != nil {
		return err
	}
	listSlot, indexSlot := ctx.temp(), ctx.temp()
	ctx.emit(jasmin.AStore(listSlot), jasmin.IntConst(0), jasmin.IStore(indexSlot))

	ctx.mark(condLabel)
	ctx.emit(
		jasmin.ILoad(indexSlot),
		jasmin.ALoad(listSlot),
		jasmin.Op("invokevirtual", listClass+"/getSize()I"),
	)
	ctx.jump("if_icmpge", exitLabel)
	ctx.emit(
		jasmin.ALoad(listSlot),
		jasmin.ILoad(indexSlot),
		jasmin.Op("invokevirtual", listClass+"/getElement(I)Ljava/lang/Object;"),
		jasmin.Op("checkcast", objectClassOf(list.Elements[0].Type)),
		jasmin.AStore(varSlot),
	)

	ctx.pushLoop(exitLabel, updateLabel)
	err := g.generateStatement(ctx, s.Body)
	ctx.popLoop()
	if err != nil {
		return err
	}

	ctx.markIfUsed(updateLabel)
	ctx.emit(jasmin.IInc(indexSlot, 1))
	ctx.jump("goto", condLabel)
	ctx.mark(exitLabel)
	return nil
}

func (g *CodeGenerator) generatePrint(ctx *methodContext, s *ast.PrintStmt) error {
	t, err := g.typeOf(ctx, s.Arg)
	if err != nil {
		return err
	}
	var desc string
	switch t.(type) {
	case types.Int, types.Bool:
		desc = "(I)V"
	case types.String:
		desc = "(Ljava/lang/String;)V"
	default:
		return ctx.fail(KindUnsupported, s, "printing a value of type %s", t)
	}

	ctx.emit(jasmin.Op("getstatic", "java/lang/System/out", "Ljava/io/PrintStream;"))
	if err := g.generateExpression(ctx, s.Arg); err != nil {
		return err
	}
	ctx.emit(jasmin.Op("invokevirtual", "java/io/PrintStream/print"+desc))
	return nil
}

func (g *CodeGenerator) generateReturn(ctx *methodContext, s *ast.ReturnStmt) error {
	if ctx.void {
		ctx.emit(jasmin.Op("return"))
		return nil
	}
	if s.Value == nil {
		ctx.emit(jasmin.Op("aconst_null"), jasmin.Op("areturn"))
		return nil
	}
	if err := g.generateBoxed(ctx, s.Value); err != nil {
		return err
	}
	ctx.emit(jasmin.Op("areturn"))
	return nil
}
