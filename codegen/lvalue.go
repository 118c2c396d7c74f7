package codegen

import (
	"sophia-compiler/ast"
	"sophia-compiler/jasmin"
	"sophia-compiler/types"
)

// lvalue is an assignable location. prepare evaluates the parts of the
// target that must run once, before the new value is computed.
type lvalue interface {
	prepare(ctx *methodContext) error
	// load pushes the current value, unboxed when primitive.
	load(ctx *methodContext)
	// store writes the object pushed by value.
	store(ctx *methodContext, value func() error) error
	typ() types.Type
}

type slotTarget struct {
	slot int
	t    types.Type
}

func (s *slotTarget) prepare(*methodContext) error { return nil }
func (s *slotTarget) typ() types.Type               { return s.t }

func (s *slotTarget) load(ctx *methodContext) {
	ctx.emit(jasmin.ALoad(s.slot))
	unbox(ctx, s.t, false)
}

func (s *slotTarget) store(ctx *methodContext, value func() error) error {
	if err := value(); err != nil {
		return err
	}
	ctx.emit(jasmin.AStore(s.slot))
	return nil
}

type fieldTarget struct {
	g        *CodeGenerator
	instance ast.Expression
	owner    string
	name     string
	t        types.Type
	object   int
}

func (f *fieldTarget) typ() types.Type { return f.t }

func (f *fieldTarget) prepare(ctx *methodContext) error {
	if err := f.g.generateExpression(ctx, f.instance); err != nil {
		return err
	}
	f.object = ctx.temp()
	ctx.emit(jasmin.AStore(f.object))
	return nil
}

func (f *fieldTarget) load(ctx *methodContext) {
	ctx.emit(
		jasmin.ALoad(f.object),
		jasmin.Op("getfield", f.owner+"/"+f.name, descriptor(f.t)),
	)
	unbox(ctx, f.t, false)
}

func (f *fieldTarget) store(ctx *methodContext, value func() error) error {
	ctx.emit(jasmin.ALoad(f.object))
	if err := value(); err != nil {
		return err
	}
	ctx.emit(jasmin.Op("putfield", f.owner+"/"+f.name, descriptor(f.t)))
	return nil
}

type elementTarget struct {
	g     *CodeGenerator
	list  ast.Expression
	index int
	t     types.Type
	slot  int
}

func (el *elementTarget) typ() types.Type { return el.t }

func (el *elementTarget) prepare(ctx *methodContext) error {
	if err := el.g.generateExpression(ctx, el.list); err != nil {
		return err
	}
	el.slot = ctx.temp()
	ctx.emit(jasmin.AStore(el.slot))
	return nil
}

func (el *elementTarget) load(ctx *methodContext) {
	ctx.emit(jasmin.ALoad(el.slot))
	getElement(ctx, el.index, el.t)
}

func (el *elementTarget) store(ctx *methodContext, value func() error) error {
	ctx.emit(jasmin.ALoad(el.slot), jasmin.IntConst(el.index))
	if err := value(); err != nil {
		return err
	}
	ctx.emit(jasmin.Op("invokevirtual", listClass+"/setElement(ILjava/lang/Object;)V"))
	return nil
}

// lvalueOf resolves the shape of an assignment target.
func (g *CodeGenerator) lvalueOf(ctx *methodContext, e ast.Expression) (lvalue, error) {
	switch e := e.(type) {
	case *ast.Identifier:
		t, err := g.typeOf(ctx, e)
		if err != nil {
			return nil, err
		}
		slot, ok := ctx.slotOf(e.Value)
		if !ok {
			return nil, ctx.fail(KindUnresolved, e, "no slot for %s", e.Value)
		}
		return &slotTarget{slot: slot, t: t}, nil

	case *ast.MemberAccess:
		owner, err := g.typeOf(ctx, e.Instance)
		if err != nil {
			return nil, err
		}
		m, err := g.resolveMember(ctx, e, owner, e.Member.Value)
		if err != nil {
			return nil, err
		}
		switch m.kind {
		case fieldMember:
			return &fieldTarget{g: g, instance: e.Instance, owner: m.field.Owner, name: m.field.Name, t: m.typ}, nil
		case positionMember:
			return &elementTarget{g: g, list: e.Instance, index: m.index, t: m.typ}, nil
		}
		return nil, ctx.fail(KindUnsupported, e, "assignment to method %s", e.Member.Value)

	case *ast.ListAccessByIndex:
		m, err := g.resolveIndex(ctx, e)
		if err != nil {
			return nil, err
		}
		return &elementTarget{g: g, list: e.Instance, index: m.index, t: m.typ}, nil
	}
	return nil, ctx.fail(KindUnsupported, e, "%s is not assignable", e)
}

// generateAssignment stores rhs into lhs. With wantResult the assigned
// value is left on the stack as well.
func (g *CodeGenerator) generateAssignment(ctx *methodContext, lhs, rhs ast.Expression, wantResult bool) error {
	target, err := g.lvalueOf(ctx, lhs)
	if err != nil {
		return err
	}
	if err := target.prepare(ctx); err != nil {
		return err
	}

	if !wantResult {
		return target.store(ctx, func() error { return g.generateStored(ctx, rhs, target.typ()) })
	}

	if err := g.generateStored(ctx, rhs, target.typ()); err != nil {
		return err
	}
	value := ctx.temp()
	ctx.emit(jasmin.AStore(value))
	err = target.store(ctx, func() error {
		ctx.emit(jasmin.ALoad(value))
		return nil
	})
	if err != nil {
		return err
	}
	ctx.emit(jasmin.ALoad(value))
	unbox(ctx, target.typ(), false)
	return nil
}

// generateIncDec lowers ++ and --. Postfix forms yield the old value,
// prefix forms the new one.
func (g *CodeGenerator) generateIncDec(ctx *methodContext, e *ast.UnaryExpression, wantResult bool) error {
	target, err := g.lvalueOf(ctx, e.Operand)
	if err != nil {
		return err
	}
	if err := target.prepare(ctx); err != nil {
		return err
	}

	old, updated := ctx.temp(), ctx.temp()
	target.load(ctx)
	ctx.emit(jasmin.IStore(old), jasmin.ILoad(old), jasmin.IntConst(1))
	if e.Operator == ast.PreInc || e.Operator == ast.PostInc {
		ctx.emit(jasmin.Op("iadd"))
	} else {
		ctx.emit(jasmin.Op("isub"))
	}
	ctx.emit(jasmin.IStore(updated))

	err = target.store(ctx, func() error {
		return boxWith(ctx, types.Int{}, func() error {
			ctx.emit(jasmin.ILoad(updated))
			return nil
		})
	})
	if err != nil {
		return err
	}

	if wantResult {
		if e.Operator == ast.PostInc || e.Operator == ast.PostDec {
			ctx.emit(jasmin.ILoad(old))
		} else {
			ctx.emit(jasmin.ILoad(updated))
		}
	}
	return nil
}
