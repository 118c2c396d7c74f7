package semant

import (
	"fmt"

	"sophia-compiler/ast"
	"sophia-compiler/types"
)

// FieldSymbol is a field together with the class that declares it.
type FieldSymbol struct {
	Name  string
	Type  types.Type
	Owner string
}

// MethodSymbol describes a method or a class initializer.
type MethodSymbol struct {
	Name   string
	Args   []types.Type
	Return types.Type
	Owner  string
	Decl   *ast.MethodDeclaration
}

// Fptr is the type of a bound reference to m.
func (m *MethodSymbol) Fptr() *types.Fptr {
	return &types.Fptr{Args: m.Args, Return: m.Return}
}

// ClassSymbol holds the members a class declares itself. Inherited members
// are reached through the inheritance graph.
type ClassSymbol struct {
	Name        string
	Parent      string
	Decl        *ast.ClassDeclaration
	Fields      map[string]*FieldSymbol
	FieldOrder  []string
	Methods     map[string]*MethodSymbol
	Constructor *MethodSymbol
}

// InheritanceGraph manages class hierarchy relationships
type InheritanceGraph struct {
	// Maps class to its parent
	Edges map[string]string

	// For cycle detection
	Visited        map[string]bool
	RecursionStack map[string]bool
}

// SymbolTable maps class names to their symbols and hierarchy.
type SymbolTable struct {
	Classes     map[string]*ClassSymbol
	Inheritance *InheritanceGraph
}

// ReservedClasses are defined by the runtime support units shipped with
// every program.
var ReservedClasses = map[string]bool{"List": true, "Fptr": true}

// reservedMethods are java/lang/Object methods a class may not redeclare,
// keyed by name with the arity that clashes. -1 clashes at any arity.
var reservedMethods = map[string]int{
	"getClass":  -1,
	"notify":    -1,
	"notifyAll": -1,
	"wait":      -1,
	"hashCode":  0,
	"toString":  0,
	"equals":    1,
}

func isReservedMethod(name string, arity int) bool {
	want, ok := reservedMethods[name]
	return ok && (want < 0 || want == arity)
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Classes:     make(map[string]*ClassSymbol),
		Inheritance: NewInheritanceGraph(),
	}
}

func NewInheritanceGraph() *InheritanceGraph {
	return &InheritanceGraph{
		Edges:          make(map[string]string),
		Visited:        make(map[string]bool),
		RecursionStack: make(map[string]bool),
	}
}

// AddInheritanceEdge adds a parent-child relationship to the inheritance graph
func (g *InheritanceGraph) AddInheritanceEdge(child, parent string) error {
	if child == parent {
		return fmt.Errorf("class %s cannot extend itself", child)
	}
	if _, exists := g.Edges[child]; exists {
		return fmt.Errorf("class %s is redefined", child)
	}

	g.Edges[child] = parent
	return nil
}

// DetectCycles checks for inheritance cycles starting from a given class
func (g *InheritanceGraph) DetectCycles(className string) bool {
	g.RecursionStack = make(map[string]bool)
	g.Visited = make(map[string]bool)

	return g.hasCycle(className)
}

// hasCycle is a helper method that implements cycle detection using DFS
func (g *InheritanceGraph) hasCycle(className string) bool {
	if g.RecursionStack[className] {
		return true
	}
	if g.Visited[className] {
		return false
	}

	g.Visited[className] = true
	g.RecursionStack[className] = true

	if parent, exists := g.Edges[className]; exists {
		if g.hasCycle(parent) {
			return true
		}
	}

	g.RecursionStack[className] = false
	return false
}

// Parent returns the direct parent of className, if any.
func (g *InheritanceGraph) Parent(className string) (string, bool) {
	parent, ok := g.Edges[className]
	return parent, ok
}

// Ancestors returns className followed by its ancestors, nearest first.
func (g *InheritanceGraph) Ancestors(className string) []string {
	chain := []string{}
	seen := map[string]bool{}
	for current := className; current != "" && !seen[current]; current = g.Edges[current] {
		seen[current] = true
		chain = append(chain, current)
	}
	return chain
}

// IsSubtype reports whether child is ancestor or a descendant of it.
func (g *InheritanceGraph) IsSubtype(child, ancestor string) bool {
	for _, c := range g.Ancestors(child) {
		if c == ancestor {
			return true
		}
	}
	return false
}

// LookupField searches className and then its ancestors for a field.
func (st *SymbolTable) LookupField(className, fieldName string) (*FieldSymbol, bool) {
	for _, c := range st.Inheritance.Ancestors(className) {
		class, ok := st.Classes[c]
		if !ok {
			return nil, false
		}
		if f, ok := class.Fields[fieldName]; ok {
			return f, true
		}
	}
	return nil, false
}

// LookupMethod searches className and then its ancestors for a method.
func (st *SymbolTable) LookupMethod(className, methodName string) (*MethodSymbol, bool) {
	for _, c := range st.Inheritance.Ancestors(className) {
		class, ok := st.Classes[c]
		if !ok {
			return nil, false
		}
		if m, ok := class.Methods[methodName]; ok {
			return m, true
		}
	}
	return nil, false
}

// LookupConstructor returns the explicit initializer of className. It is
// never inherited.
func (st *SymbolTable) LookupConstructor(className string) (*MethodSymbol, bool) {
	class, ok := st.Classes[className]
	if !ok || class.Constructor == nil {
		return nil, false
	}
	return class.Constructor, true
}

func (st *SymbolTable) isValidType(t types.Type) bool {
	switch t := t.(type) {
	case *types.Class:
		_, ok := st.Classes[t.Name]
		return ok
	case *types.List:
		for _, e := range t.Elements {
			if !st.isValidType(e.Type) {
				return false
			}
		}
		return true
	case *types.Fptr:
		for _, a := range t.Args {
			if !st.isValidType(a) {
				return false
			}
		}
		return st.isValidType(t.Return)
	}
	return true
}

// IsConformingType reports whether a value of type source may be stored
// where target is expected.
func (st *SymbolTable) IsConformingType(source, target types.Type) bool {
	if _, bad := source.(types.NoType); bad {
		return true
	}
	if _, bad := target.(types.NoType); bad {
		return true
	}
	switch target := target.(type) {
	case *types.Class:
		switch source := source.(type) {
		case types.Null:
			return true
		case *types.Class:
			return st.Inheritance.IsSubtype(source.Name, target.Name)
		}
		return false
	case *types.Fptr:
		if types.IsVoid(source) {
			return true
		}
		return types.Equal(source, target)
	case *types.List:
		sl, ok := source.(*types.List)
		if !ok || len(sl.Elements) != len(target.Elements) {
			return false
		}
		for i := range sl.Elements {
			if !st.IsConformingType(sl.Elements[i].Type, target.Elements[i].Type) {
				return false
			}
		}
		return true
	}
	return types.Equal(source, target)
}
