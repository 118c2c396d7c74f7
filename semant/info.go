package semant

import (
	"sophia-compiler/ast"
	"sophia-compiler/types"
)

// Info is the resolved view of a checked program: its classes, their
// hierarchy and the static type of every expression. It is not modified
// after Analyze returns.
type Info struct {
	Program *ast.Program
	Symbols *SymbolTable
	types   map[ast.Expression]types.Type
}

// TypeOf returns the static type of e, or types.NoType if e was not checked.
func (in *Info) TypeOf(e ast.Expression) types.Type {
	if t, ok := in.types[e]; ok {
		return t
	}
	return types.NoType{}
}

func (in *Info) Class(name string) (*ClassSymbol, bool) {
	c, ok := in.Symbols.Classes[name]
	return c, ok
}

func (in *Info) LookupField(className, name string) (*FieldSymbol, bool) {
	return in.Symbols.LookupField(className, name)
}

func (in *Info) LookupMethod(className, name string) (*MethodSymbol, bool) {
	return in.Symbols.LookupMethod(className, name)
}

func (in *Info) LookupConstructor(className string) (*MethodSymbol, bool) {
	return in.Symbols.LookupConstructor(className)
}

// Parent returns the parent of className; ok is false for root classes.
func (in *Info) Parent(className string) (string, bool) {
	return in.Symbols.Inheritance.Parent(className)
}
