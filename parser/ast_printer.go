package parser

import (
	"fmt"
	"strings"

	"sophia-compiler/ast"
	"sophia-compiler/types"
)

// PrintAST prints the AST in a tree structure
func PrintAST(program *ast.Program) string {
	var sb strings.Builder
	sb.WriteString("AST Tree:\n")
	sb.WriteString("└── Program\n")

	for i, class := range program.Classes {
		last := i == len(program.Classes)-1
		sb.WriteString(branch("    ", last) + "Class: " + class.Name.Value + "\n")
		classPrefix := child("    ", last)

		var members []func(prefix string, last bool)
		if class.Parent != nil {
			parent := class.Parent.Value
			members = append(members, func(prefix string, last bool) {
				sb.WriteString(branch(prefix, last) + "Parent: " + parent + "\n")
			})
		}
		for _, f := range class.Fields {
			f := f
			members = append(members, func(prefix string, last bool) {
				sb.WriteString(branch(prefix, last) + "Field: " + f.Name.Value + ": " + f.Type.String() + "\n")
			})
		}
		if class.Constructor != nil {
			members = append(members, func(prefix string, last bool) {
				printMethod(&sb, class.Constructor, prefix, last)
			})
		}
		for _, m := range class.Methods {
			m := m
			members = append(members, func(prefix string, last bool) {
				printMethod(&sb, m, prefix, last)
			})
		}
		for j, emit := range members {
			emit(classPrefix, j == len(members)-1)
		}
	}
	return sb.String()
}

func branch(prefix string, last bool) string {
	if last {
		return prefix + "└── "
	}
	return prefix + "├── "
}

func child(prefix string, last bool) string {
	if last {
		return prefix + "    "
	}
	return prefix + "│   "
}

func printMethod(sb *strings.Builder, m *ast.MethodDeclaration, prefix string, last bool) {
	if m.IsConstructor {
		sb.WriteString(branch(prefix, last) + "Constructor\n")
	} else {
		sb.WriteString(branch(prefix, last) + "Method: " + m.Name.Value + "\n")
	}
	methodPrefix := child(prefix, last)

	if !m.IsConstructor {
		sb.WriteString(methodPrefix + "├── ReturnType: " + returnTypeName(m) + "\n")
	}
	if len(m.Args) > 0 {
		sb.WriteString(methodPrefix + "├── Parameters:\n")
		for k, param := range m.Args {
			sb.WriteString(branch(methodPrefix+"│   ", k == len(m.Args)-1) + param.Name.Value + ": " + param.Type.String() + "\n")
		}
	}
	sb.WriteString(methodPrefix + "└── Body:\n")
	for k, stmt := range m.Body {
		printStatement(sb, stmt, methodPrefix+"    ", k == len(m.Body)-1)
	}
}

func returnTypeName(m *ast.MethodDeclaration) string {
	if types.IsVoid(m.ReturnType) {
		return "void"
	}
	return m.ReturnType.String()
}

func printStatement(sb *strings.Builder, stmt ast.Statement, prefix string, last bool) {
	line := branch(prefix, last)
	inner := child(prefix, last)

	switch s := stmt.(type) {
	case *ast.BlockStmt:
		sb.WriteString(line + "Block\n")
		for i, st := range s.Statements {
			printStatement(sb, st, inner, i == len(s.Statements)-1)
		}
	case *ast.ConditionalStmt:
		sb.WriteString(line + "If: " + s.Condition.String() + "\n")
		printStatement(sb, s.Then, inner, s.Else == nil)
		if s.Else != nil {
			sb.WriteString(inner + "└── Else\n")
			printStatement(sb, s.Else, inner+"    ", true)
		}
	case *ast.ForStmt:
		header := strings.TrimSuffix(s.String(), " "+s.Body.String())
		sb.WriteString(line + "For: " + strings.TrimPrefix(header, "for ") + "\n")
		printStatement(sb, s.Body, inner, true)
	case *ast.ForeachStmt:
		sb.WriteString(line + "Foreach: " + s.Variable.Value + " in " + s.List.String() + "\n")
		printStatement(sb, s.Body, inner, true)
	case *ast.VarDeclaration:
		sb.WriteString(line + "VarDeclaration: " + s.Name.Value + ": " + s.Type.String() + "\n")
	case *ast.AssignmentStmt:
		sb.WriteString(line + "Assignment: " + s.LValue.String() + " = " + s.RValue.String() + "\n")
	case *ast.IncDecStmt:
		sb.WriteString(line + "IncDec: " + s.Expr.String() + "\n")
	case *ast.MethodCallStmt:
		sb.WriteString(line + "MethodCall: " + s.Call.String() + "\n")
	case *ast.PrintStmt:
		sb.WriteString(line + "Print: " + s.Arg.String() + "\n")
	case *ast.ReturnStmt:
		if s.Value == nil {
			sb.WriteString(line + "Return\n")
		} else {
			sb.WriteString(line + "Return: " + s.Value.String() + "\n")
		}
	case *ast.BreakStmt:
		sb.WriteString(line + "Break\n")
	case *ast.ContinueStmt:
		sb.WriteString(line + "Continue\n")
	default:
		sb.WriteString(line + "Unknown: " + fmt.Sprintf("%T", stmt) + "\n")
	}
}
