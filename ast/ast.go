package ast

import (
	"sophia-compiler/lexer"
	"sophia-compiler/types"
)

// Node is implemented by every syntax tree node. The statement and
// expression sets are closed: only this package can add variants.
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Classes []*ClassDeclaration
}

func (p *Program) TokenLiteral() string { return "" }

// Class returns the declaration called name.
func (p *Program) Class(name string) (*ClassDeclaration, bool) {
	for _, c := range p.Classes {
		if c.Name.Value == name {
			return c, true
		}
	}
	return nil, false
}

type ClassDeclaration struct {
	Token       lexer.Token
	Name        *Identifier
	Parent      *Identifier // nil when the class extends nothing
	Fields      []*VarDeclaration
	Constructor *MethodDeclaration
	Methods     []*MethodDeclaration
}

func (c *ClassDeclaration) TokenLiteral() string { return c.Token.Literal }

// ParentName is "" for root classes.
func (c *ClassDeclaration) ParentName() string {
	if c.Parent == nil {
		return ""
	}
	return c.Parent.Value
}

// MethodDeclaration is a method or, with IsConstructor set, the class
// initializer.
type MethodDeclaration struct {
	Token         lexer.Token
	Name          *Identifier
	Args          []*VarDeclaration
	ReturnType    types.Type
	Body          []Statement
	IsConstructor bool
}

func (m *MethodDeclaration) TokenLiteral() string { return m.Token.Literal }

// VarDeclaration declares a field, a parameter or a local.
type VarDeclaration struct {
	Token lexer.Token
	Name  *Identifier
	Type  types.Type
}

func (vd *VarDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDeclaration) statementNode()       {}

// Statements

type BlockStmt struct {
	Token      lexer.Token
	Statements []Statement
}

func (bs *BlockStmt) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStmt) statementNode()       {}

type ConditionalStmt struct {
	Token     lexer.Token
	Condition Expression
	Then      Statement
	Else      Statement // may be nil
}

func (cs *ConditionalStmt) TokenLiteral() string { return cs.Token.Literal }
func (cs *ConditionalStmt) statementNode()       {}

// ForStmt is for (Init; Condition; Update) Body. Each header part may be nil.
type ForStmt struct {
	Token     lexer.Token
	Init      Statement
	Condition Expression
	Update    Statement
	Body      Statement
}

func (fs *ForStmt) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStmt) statementNode()       {}

type ForeachStmt struct {
	Token    lexer.Token
	Variable *Identifier
	List     Expression
	Body     Statement
}

func (fs *ForeachStmt) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForeachStmt) statementNode()       {}

type MethodCallStmt struct {
	Token lexer.Token
	Call  *MethodCall
}

func (ms *MethodCallStmt) TokenLiteral() string { return ms.Token.Literal }
func (ms *MethodCallStmt) statementNode()       {}

type PrintStmt struct {
	Token lexer.Token
	Arg   Expression
}

func (ps *PrintStmt) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStmt) statementNode()       {}

type ReturnStmt struct {
	Token lexer.Token
	Value Expression // nil for a bare return
}

func (rs *ReturnStmt) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStmt) statementNode()       {}

type BreakStmt struct {
	Token lexer.Token
}

func (bs *BreakStmt) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStmt) statementNode()       {}

type ContinueStmt struct {
	Token lexer.Token
}

func (cs *ContinueStmt) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStmt) statementNode()       {}

type AssignmentStmt struct {
	Token  lexer.Token
	LValue Expression
	RValue Expression
}

func (as *AssignmentStmt) TokenLiteral() string { return as.Token.Literal }
func (as *AssignmentStmt) statementNode()       {}

// IncDecStmt is x++, x--, ++x or --x used as a statement.
type IncDecStmt struct {
	Token lexer.Token
	Expr  *UnaryExpression
}

func (is *IncDecStmt) TokenLiteral() string { return is.Token.Literal }
func (is *IncDecStmt) statementNode()       {}

// Expressions

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Sub
	Mult
	Div
	Mod
	Gt
	Lt
	Eq
	Neq
	And
	Or
	Assign
)

func (op BinaryOperator) String() string {
	return [...]string{"+", "-", "*", "/", "%", ">", "<", "==", "!=", "&&", "||", "="}[op]
}

type UnaryOperator int

const (
	Minus UnaryOperator = iota
	Not
	PreInc
	PreDec
	PostInc
	PostDec
)

func (op UnaryOperator) String() string {
	return [...]string{"-", "!", "++", "--", "++", "--"}[op]
}

// IsIncDec reports whether op writes back to its operand.
func (op UnaryOperator) IsIncDec() bool {
	return op >= PreInc
}

type BinaryExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator BinaryOperator
	Right    Expression
}

func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) expressionNode()      {}

type UnaryExpression struct {
	Token    lexer.Token
	Operator UnaryOperator
	Operand  Expression
}

func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) expressionNode()      {}

type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) expressionNode()      {}

// MemberAccess is instance.member on an object or a named list position.
type MemberAccess struct {
	Token    lexer.Token
	Instance Expression
	Member   *Identifier
}

func (ma *MemberAccess) TokenLiteral() string { return ma.Token.Literal }
func (ma *MemberAccess) expressionNode()      {}

type ListAccessByIndex struct {
	Token    lexer.Token
	Instance Expression
	Index    Expression
}

func (la *ListAccessByIndex) TokenLiteral() string { return la.Token.Literal }
func (la *ListAccessByIndex) expressionNode()      {}

// MethodCall applies a function pointer valued expression to arguments.
type MethodCall struct {
	Token    lexer.Token
	Instance Expression
	Args     []Expression
}

func (mc *MethodCall) TokenLiteral() string { return mc.Token.Literal }
func (mc *MethodCall) expressionNode()      {}

type NewClassInstance struct {
	Token     lexer.Token
	ClassName *Identifier
	Args      []Expression
}

func (nc *NewClassInstance) TokenLiteral() string { return nc.Token.Literal }
func (nc *NewClassInstance) expressionNode()      {}

type ThisClass struct {
	Token lexer.Token
}

func (tc *ThisClass) TokenLiteral() string { return tc.Token.Literal }
func (tc *ThisClass) expressionNode()      {}

type ListValue struct {
	Token    lexer.Token
	Elements []Expression
}

func (lv *ListValue) TokenLiteral() string { return lv.Token.Literal }
func (lv *ListValue) expressionNode()      {}

type IntValue struct {
	Token lexer.Token
	Value int
}

func (iv *IntValue) TokenLiteral() string { return iv.Token.Literal }
func (iv *IntValue) expressionNode()      {}

type BoolValue struct {
	Token lexer.Token
	Value bool
}

func (bv *BoolValue) TokenLiteral() string { return bv.Token.Literal }
func (bv *BoolValue) expressionNode()      {}

type StringValue struct {
	Token lexer.Token
	Value string
}

func (sv *StringValue) TokenLiteral() string { return sv.Token.Literal }
func (sv *StringValue) expressionNode()      {}

type NullValue struct {
	Token lexer.Token
}

func (nv *NullValue) TokenLiteral() string { return nv.Token.Literal }
func (nv *NullValue) expressionNode()      {}
