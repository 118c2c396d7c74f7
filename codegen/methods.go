package codegen

import (
	"sophia-compiler/ast"
	"sophia-compiler/jasmin"
	"sophia-compiler/semant"
	"sophia-compiler/types"
)

func (g *CodeGenerator) superName(cc *classContext) string {
	if parent, ok := cc.info.Parent(cc.class.Name); ok {
		return parent
	}
	return objectClass
}

// generateClassUnit lowers one class into an assembly unit.
func (g *CodeGenerator) generateClassUnit(info *semant.Info, class *semant.ClassSymbol) (*jasmin.Class, error) {
	cc := &classContext{info: info, class: class}
	unit := &jasmin.Class{Name: class.Name, Super: g.superName(cc)}

	for _, name := range class.FieldOrder {
		f := class.Fields[name]
		unit.Fields = append(unit.Fields, jasmin.Field{Name: f.Name, Descriptor: descriptor(f.Type)})
	}

	ctor := class.Constructor
	if ctor == nil || len(ctor.Args) > 0 {
		m, err := g.generateConstructor(cc, nil)
		if err != nil {
			return nil, err
		}
		unit.Methods = append(unit.Methods, m)
	}
	if ctor != nil {
		m, err := g.generateConstructor(cc, ctor)
		if err != nil {
			return nil, err
		}
		unit.Methods = append(unit.Methods, m)
	}

	for _, decl := range class.Decl.Methods {
		ms, ok := class.Methods[decl.Name.Value]
		if !ok || ms.Decl != decl {
			return nil, &InternalError{
				Kind: KindUnresolved, Node: "MethodDeclaration", Class: class.Name,
				Method: decl.Name.Value, Msg: "method was not collected",
			}
		}
		m, err := g.generateMethod(cc, ms)
		if err != nil {
			return nil, err
		}
		unit.Methods = append(unit.Methods, m)
	}

	if class.Name == g.options.EntryClass {
		unit.Methods = append(unit.Methods, g.generateEntryPoint(class.Name))
	}
	return unit, nil
}

// generateConstructor emits <init>. A nil ctor synthesizes the no-argument
// constructor that only initializes fields.
func (g *CodeGenerator) generateConstructor(cc *classContext, ctor *semant.MethodSymbol) (*jasmin.Method, error) {
	var params []*ast.VarDeclaration
	var body []ast.Statement
	var args []types.Type
	if ctor != nil {
		params, body, args = ctor.Decl.Args, ctor.Decl.Body, ctor.Args
	}

	ctx := newMethodContext(cc, "initialize", params, body)
	ctx.void = true
	ctx.emit(
		jasmin.ALoad(0),
		jasmin.Op("invokespecial", g.superName(cc)+"/<init>()V"),
	)
	for _, name := range cc.class.FieldOrder {
		f := cc.class.Fields[name]
		ctx.emit(jasmin.ALoad(0))
		defaultValue(ctx, f.Type)
		ctx.emit(jasmin.Op("putfield", cc.class.Name+"/"+f.Name, descriptor(f.Type)))
	}
	if err := g.generateBody(ctx, body); err != nil {
		return nil, err
	}
	return g.finishMethod(ctx, "<init>", methodDescriptor(args, types.Null{})), nil
}

func (g *CodeGenerator) generateMethod(cc *classContext, ms *semant.MethodSymbol) (*jasmin.Method, error) {
	ctx := newMethodContext(cc, ms.Name, ms.Decl.Args, ms.Decl.Body)
	ctx.void = types.IsVoid(ms.Return)
	if err := g.generateBody(ctx, ms.Decl.Body); err != nil {
		return nil, err
	}
	return g.finishMethod(ctx, ms.Name, methodDescriptor(ms.Args, ms.Return)), nil
}

// generateBody lowers the statements and closes any path that would run
// off the end of the method.
func (g *CodeGenerator) generateBody(ctx *methodContext, body []ast.Statement) error {
	for _, stmt := range body {
		if err := g.generateStatement(ctx, stmt); err != nil {
			return err
		}
	}
	if ctx.terminated() {
		return nil
	}
	if ctx.void {
		ctx.emit(jasmin.Op("return"))
	} else {
		ctx.emit(jasmin.Op("aconst_null"), jasmin.Op("areturn"))
	}
	return nil
}

func (g *CodeGenerator) finishMethod(ctx *methodContext, name, desc string) *jasmin.Method {
	locals := g.options.LocalsLimit
	if used := ctx.slotsUsed(); used > locals {
		locals = used
	}
	g.logger().Debug("generated method", "class", ctx.className, "method", name,
		"instructions", len(ctx.code), "slots", ctx.slotsUsed())
	return &jasmin.Method{
		Name:        name,
		Descriptor:  desc,
		StackLimit:  g.options.StackLimit,
		LocalsLimit: locals,
		Code:        ctx.code,
	}
}

// generateEntryPoint builds public static main that constructs one
// instance of the entry class.
func (g *CodeGenerator) generateEntryPoint(className string) *jasmin.Method {
	return &jasmin.Method{
		Name:        "main",
		Descriptor:  "([Ljava/lang/String;)V",
		Static:      true,
		StackLimit:  g.options.StackLimit,
		LocalsLimit: g.options.LocalsLimit,
		Code: []jasmin.Instruction{
			jasmin.Op("new", className),
			jasmin.Op("invokespecial", className+"/<init>()V"),
			jasmin.Op("return"),
		},
	}
}
