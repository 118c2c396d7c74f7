package ast

import (
	"strconv"
	"strings"

	"sophia-compiler/types"
)

func (p *Program) String() string {
	names := make([]string, len(p.Classes))
	for i, c := range p.Classes {
		names[i] = c.String()
	}
	return strings.Join(names, "\n")
}

func (c *ClassDeclaration) String() string {
	if c.Parent != nil {
		return "class " + c.Name.Value + " extends " + c.Parent.Value
	}
	return "class " + c.Name.Value
}

func (m *MethodDeclaration) String() string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = a.Type.String() + " " + a.Name.Value
	}
	if m.IsConstructor {
		return "initialize(" + strings.Join(args, ", ") + ")"
	}
	ret := "void"
	if m.ReturnType != nil && !types.IsVoid(m.ReturnType) {
		ret = m.ReturnType.String()
	}
	return ret + " " + m.Name.Value + "(" + strings.Join(args, ", ") + ")"
}

func (vd *VarDeclaration) String() string {
	return vd.Type.String() + " " + vd.Name.Value + ";"
}

func (bs *BlockStmt) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for _, s := range bs.Statements {
		sb.WriteString(s.String())
		sb.WriteString(" ")
	}
	sb.WriteString("}")
	return sb.String()
}

func (cs *ConditionalStmt) String() string {
	s := "if (" + cs.Condition.String() + ") " + cs.Then.String()
	if cs.Else != nil {
		s += " else " + cs.Else.String()
	}
	return s
}

func (fs *ForStmt) String() string {
	part := func(n Node) string {
		if n == nil {
			return ""
		}
		return strings.TrimSuffix(n.String(), ";")
	}
	var cond string
	if fs.Condition != nil {
		cond = fs.Condition.String()
	}
	return "for (" + part(fs.Init) + "; " + cond + "; " + part(fs.Update) + ") " + fs.Body.String()
}

func (fs *ForeachStmt) String() string {
	return "foreach (" + fs.Variable.Value + " in " + fs.List.String() + ") " + fs.Body.String()
}

func (ms *MethodCallStmt) String() string { return ms.Call.String() + ";" }
func (ps *PrintStmt) String() string      { return "print(" + ps.Arg.String() + ");" }

func (rs *ReturnStmt) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return "return " + rs.Value.String() + ";"
}

func (bs *BreakStmt) String() string      { return "break;" }
func (cs *ContinueStmt) String() string   { return "continue;" }
func (as *AssignmentStmt) String() string { return as.LValue.String() + " = " + as.RValue.String() + ";" }
func (is *IncDecStmt) String() string     { return is.Expr.String() + ";" }

func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator.String() + " " + be.Right.String() + ")"
}

func (ue *UnaryExpression) String() string {
	switch ue.Operator {
	case PostInc, PostDec:
		return "(" + ue.Operand.String() + ue.Operator.String() + ")"
	}
	return "(" + ue.Operator.String() + ue.Operand.String() + ")"
}

func (i *Identifier) String() string   { return i.Value }
func (ma *MemberAccess) String() string { return ma.Instance.String() + "." + ma.Member.Value }

func (la *ListAccessByIndex) String() string {
	return la.Instance.String() + "[" + la.Index.String() + "]"
}

func (mc *MethodCall) String() string {
	return mc.Instance.String() + "(" + joinExpressions(mc.Args) + ")"
}

func (nc *NewClassInstance) String() string {
	return "new " + nc.ClassName.Value + "(" + joinExpressions(nc.Args) + ")"
}

func (tc *ThisClass) String() string   { return "this" }
func (lv *ListValue) String() string   { return "[" + joinExpressions(lv.Elements) + "]" }
func (iv *IntValue) String() string    { return strconv.Itoa(iv.Value) }
func (bv *BoolValue) String() string   { return strconv.FormatBool(bv.Value) }
func (sv *StringValue) String() string { return strconv.Quote(sv.Value) }
func (nv *NullValue) String() string   { return "null" }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
