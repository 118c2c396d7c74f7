package codegen

import (
	"strings"

	"sophia-compiler/jasmin"
	"sophia-compiler/types"
)

// Runtime support classes shipped next to the generated units.
const (
	listClass      = "List"
	fptrClass      = "Fptr"
	arrayListClass = "java/util/ArrayList"
	objectClass    = "java/lang/Object"
	integerClass   = "java/lang/Integer"
	booleanClass   = "java/lang/Boolean"
	stringClass    = "java/lang/String"
)

// descriptor maps a source type to its field descriptor. Void maps to V.
func descriptor(t types.Type) string {
	switch t := t.(type) {
	case types.Int:
		return "L" + integerClass + ";"
	case types.Bool:
		return "L" + booleanClass + ";"
	case types.String:
		return "L" + stringClass + ";"
	case *types.List:
		return "L" + listClass + ";"
	case *types.Fptr:
		return "L" + fptrClass + ";"
	case *types.Class:
		return "L" + t.Name + ";"
	case types.Null:
		return "V"
	}
	return "L" + objectClass + ";"
}

// methodDescriptor is (args)ret for a method taking args and returning ret.
func methodDescriptor(args []types.Type, ret types.Type) string {
	var sb strings.Builder
	sb.WriteString("(")
	for _, a := range args {
		sb.WriteString(descriptor(a))
	}
	sb.WriteString(")")
	sb.WriteString(descriptor(ret))
	return sb.String()
}

// objectClassOf is the class a value of type t has once boxed.
func objectClassOf(t types.Type) string {
	switch t := t.(type) {
	case types.Int:
		return integerClass
	case types.Bool:
		return booleanClass
	case types.String:
		return stringClass
	case *types.List:
		return listClass
	case *types.Fptr:
		return fptrClass
	case *types.Class:
		return t.Name
	}
	return objectClass
}

// boxWith wraps the primitive pushed by value into its wrapper object.
func boxWith(ctx *methodContext, t types.Type, value func() error) error {
	switch t.(type) {
	case types.Int:
		ctx.emit(jasmin.Op("new", integerClass), jasmin.Op("dup"))
		if err := value(); err != nil {
			return err
		}
		ctx.emit(jasmin.Op("invokespecial", integerClass+"/<init>(I)V"))
		return nil
	case types.Bool:
		ctx.emit(jasmin.Op("new", booleanClass), jasmin.Op("dup"))
		if err := value(); err != nil {
			return err
		}
		ctx.emit(jasmin.Op("invokespecial", booleanClass+"/<init>(Z)V"))
		return nil
	}
	return value()
}

// unbox turns the wrapper object on the stack into its primitive. Values
// read from untyped containers need the cast first.
func unbox(ctx *methodContext, t types.Type, fromObject bool) {
	if fromObject {
		if _, isVoid := t.(types.Null); !isVoid {
			ctx.emit(jasmin.Op("checkcast", objectClassOf(t)))
		}
	}
	switch t.(type) {
	case types.Int:
		ctx.emit(jasmin.Op("invokevirtual", integerClass+"/intValue()I"))
	case types.Bool:
		ctx.emit(jasmin.Op("invokevirtual", booleanClass+"/booleanValue()Z"))
	}
}

// defaultValue pushes the zero value of t as an object.
func defaultValue(ctx *methodContext, t types.Type) {
	switch t := t.(type) {
	case types.Int:
		ctx.emit(
			jasmin.Op("new", integerClass), jasmin.Op("dup"), jasmin.IntConst(0),
			jasmin.Op("invokespecial", integerClass+"/<init>(I)V"),
		)
	case types.Bool:
		ctx.emit(
			jasmin.Op("new", booleanClass), jasmin.Op("dup"), jasmin.IntConst(0),
			jasmin.Op("invokespecial", booleanClass+"/<init>(Z)V"),
		)
	case types.String:
		ctx.emit(
			jasmin.Op("new", stringClass), jasmin.Op("dup"), jasmin.LdcString(""),
			jasmin.Op("invokespecial", stringClass+"/<init>(Ljava/lang/String;)V"),
		)
	case *types.List:
		ctx.emit(
			jasmin.Op("new", listClass), jasmin.Op("dup"),
			jasmin.Op("new", arrayListClass), jasmin.Op("dup"),
			jasmin.Op("invokespecial", arrayListClass+"/<init>()V"),
		)
		for _, e := range t.Elements {
			ctx.emit(jasmin.Op("dup"))
			defaultValue(ctx, e.Type)
			ctx.emit(
				jasmin.Op("invokevirtual", arrayListClass+"/add(Ljava/lang/Object;)Z"),
				jasmin.Op("pop"),
			)
		}
		ctx.emit(jasmin.Op("invokespecial", listClass+"/<init>(Ljava/util/ArrayList;)V"))
	default:
		ctx.emit(jasmin.Op("aconst_null"))
	}
}
