package codegen

import (
	"fmt"
	"strings"

	"sophia-compiler/ast"
)

type ErrorKind int

const (
	// KindUnresolved: a name that checking should have resolved was not found.
	KindUnresolved ErrorKind = iota
	// KindUnsupported: a construct with no lowering rule.
	KindUnsupported
)

func (k ErrorKind) String() string {
	if k == KindUnresolved {
		return "unresolved"
	}
	return "unsupported"
}

// InternalError reports an inconsistency between the checked program and
// the generator. It always aborts generation of the enclosing class.
type InternalError struct {
	Kind   ErrorKind
	Node   string
	Class  string
	Method string
	Msg    string
}

func (e *InternalError) Error() string {
	where := e.Class
	if e.Method != "" {
		where += "." + e.Method
	}
	return fmt.Sprintf("internal error (%s %s) in %s: %s", e.Kind, e.Node, where, e.Msg)
}

func nodeKind(n ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

func (ctx *methodContext) fail(kind ErrorKind, n ast.Node, format string, args ...interface{}) error {
	return &InternalError{
		Kind:   kind,
		Node:   nodeKind(n),
		Class:  ctx.className,
		Method: ctx.methodName,
		Msg:    fmt.Sprintf(format, args...),
	}
}
