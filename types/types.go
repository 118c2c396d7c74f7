// Package types defines the source-level types of Sophia programs.
package types

import (
	"fmt"
	"strings"
)

// Type is one of Int, Bool, String, Null, *List, *Fptr, *Class or NoType.
type Type interface {
	fmt.Stringer
	sophiaType()
}

type Int struct{}

type Bool struct{}

type String struct{}

// Null is the type of the null literal. It also marks a void return.
type Null struct{}

// NoType is recorded for expressions that failed to type check.
type NoType struct{}

// ListNameType is one position of a fixed-shape list. Name is empty for
// unnamed positions.
type ListNameType struct {
	Name string
	Type Type
}

type List struct {
	Elements []ListNameType
}

type Fptr struct {
	Args   []Type
	Return Type
}

type Class struct {
	Name string
}

func (Int) sophiaType()    {}
func (Bool) sophiaType()   {}
func (String) sophiaType() {}
func (Null) sophiaType()   {}
func (NoType) sophiaType() {}
func (*List) sophiaType()  {}
func (*Fptr) sophiaType()  {}
func (*Class) sophiaType() {}

func (Int) String() string    { return "int" }
func (Bool) String() string   { return "bool" }
func (String) String() string { return "string" }
func (Null) String() string   { return "null" }
func (NoType) String() string { return "<no type>" }

func (c *Class) String() string {
	return c.Name
}

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		if e.Name != "" {
			parts[i] = e.Type.String() + " " + e.Name
		} else {
			parts[i] = e.Type.String()
		}
	}
	return "list(" + strings.Join(parts, ", ") + ")"
}

func (f *Fptr) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}
	if len(args) == 0 {
		args = []string{"void"}
	}
	ret := "void"
	if _, isVoid := f.Return.(Null); !isVoid {
		ret = f.Return.String()
	}
	return "fptr<" + strings.Join(args, ", ") + " -> " + ret + ">"
}

// Element returns the type at position i.
func (l *List) Element(i int) (Type, bool) {
	if i < 0 || i >= len(l.Elements) {
		return nil, false
	}
	return l.Elements[i].Type, true
}

// Position returns the index of the position called name.
func (l *List) Position(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for i, e := range l.Elements {
		if e.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Homogeneous reports whether the list is non-empty and every position has
// the same type.
func (l *List) Homogeneous() bool {
	if len(l.Elements) == 0 {
		return false
	}
	for _, e := range l.Elements[1:] {
		if !Equal(e.Type, l.Elements[0].Type) {
			return false
		}
	}
	return true
}

// Repeat builds list(n # t).
func Repeat(n int, t Type) *List {
	elems := make([]ListNameType, n)
	for i := range elems {
		elems[i] = ListNameType{Type: t}
	}
	return &List{Elements: elems}
}

// Equal compares two types structurally. Position names do not take part.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Int:
		_, ok := b.(Int)
		return ok
	case Bool:
		_, ok := b.(Bool)
		return ok
	case String:
		_, ok := b.(String)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case *Class:
		bc, ok := b.(*Class)
		return ok && a.Name == bc.Name
	case *List:
		bl, ok := b.(*List)
		if !ok || len(a.Elements) != len(bl.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i].Type, bl.Elements[i].Type) {
				return false
			}
		}
		return true
	case *Fptr:
		bf, ok := b.(*Fptr)
		if !ok || len(a.Args) != len(bf.Args) || !Equal(a.Return, bf.Return) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], bf.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsPrimitive reports whether values of t live unboxed on the operand stack.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case Int, Bool:
		return true
	}
	return false
}

// IsVoid reports whether t marks the absence of a value.
func IsVoid(t Type) bool {
	_, ok := t.(Null)
	return ok
}
