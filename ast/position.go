package ast

import "sophia-compiler/lexer"

// TokenOf returns the token a node starts at.
func TokenOf(n Node) lexer.Token {
	switch n := n.(type) {
	case *ClassDeclaration:
		return n.Token
	case *MethodDeclaration:
		return n.Token
	case *VarDeclaration:
		return n.Token
	case *BlockStmt:
		return n.Token
	case *ConditionalStmt:
		return n.Token
	case *ForStmt:
		return n.Token
	case *ForeachStmt:
		return n.Token
	case *MethodCallStmt:
		return n.Token
	case *PrintStmt:
		return n.Token
	case *ReturnStmt:
		return n.Token
	case *BreakStmt:
		return n.Token
	case *ContinueStmt:
		return n.Token
	case *AssignmentStmt:
		return n.Token
	case *IncDecStmt:
		return n.Token
	case *BinaryExpression:
		return n.Token
	case *UnaryExpression:
		return n.Token
	case *Identifier:
		return n.Token
	case *MemberAccess:
		return n.Token
	case *ListAccessByIndex:
		return n.Token
	case *MethodCall:
		return n.Token
	case *NewClassInstance:
		return n.Token
	case *ThisClass:
		return n.Token
	case *ListValue:
		return n.Token
	case *IntValue:
		return n.Token
	case *BoolValue:
		return n.Token
	case *StringValue:
		return n.Token
	case *NullValue:
		return n.Token
	}
	return lexer.Token{}
}

// Line is the source line of n, or 0 for synthesized nodes.
func Line(n Node) int {
	return TokenOf(n).Line
}
