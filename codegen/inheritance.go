package codegen

import (
	"sophia-compiler/ast"
	"sophia-compiler/semant"
	"sophia-compiler/types"
)

type memberKind int

const (
	fieldMember memberKind = iota
	methodMember
	positionMember
)

// member is the outcome of resolving instance.name against the static type
// of instance.
type member struct {
	kind   memberKind
	field  *semant.FieldSymbol
	method *semant.MethodSymbol
	index  int
	typ    types.Type
}

// resolveMember looks name up on owner. Fields shadow methods, and both are
// searched from the static class upwards, so the declaring class of the
// first match qualifies the access.
func (g *CodeGenerator) resolveMember(ctx *methodContext, n ast.Node, owner types.Type, name string) (member, error) {
	switch o := owner.(type) {
	case *types.Class:
		if f, ok := ctx.info.LookupField(o.Name, name); ok {
			return member{kind: fieldMember, field: f, typ: f.Type}, nil
		}
		if m, ok := ctx.info.LookupMethod(o.Name, name); ok {
			return member{kind: methodMember, method: m, typ: m.Fptr()}, nil
		}
		return member{}, ctx.fail(KindUnresolved, n, "class %s has no member %s", o.Name, name)
	case *types.List:
		i, ok := o.Position(name)
		if !ok {
			return member{}, ctx.fail(KindUnresolved, n, "%s has no position %s", o, name)
		}
		return member{kind: positionMember, index: i, typ: o.Elements[i].Type}, nil
	}
	return member{}, ctx.fail(KindUnsupported, n, "member access on %s", owner)
}

// resolveIndex types a literal index into a list.
func (g *CodeGenerator) resolveIndex(ctx *methodContext, e *ast.ListAccessByIndex) (member, error) {
	list, ok := ctx.info.TypeOf(e.Instance).(*types.List)
	if !ok {
		return member{}, ctx.fail(KindUnsupported, e, "indexing a value of type %s", ctx.info.TypeOf(e.Instance))
	}
	lit, ok := e.Index.(*ast.IntValue)
	if !ok {
		return member{}, ctx.fail(KindUnsupported, e, "list index %s is not an integer literal", e.Index)
	}
	t, ok := list.Element(lit.Value)
	if !ok {
		return member{}, ctx.fail(KindUnresolved, e, "index %d out of range for %s", lit.Value, list)
	}
	return member{kind: positionMember, index: lit.Value, typ: t}, nil
}
