package parser

import (
	"fmt"
	"strconv"

	"sophia-compiler/ast"
	"sophia-compiler/lexer"
	"sophia-compiler/types"
)

const (
	_ int = iota
	LOWEST
	ASSIGN  // = (right associative)
	OR      // ||
	AND     // &&
	EQUALS  // ==, !=
	COMPARE // <, >
	SUM     // +, -
	PRODUCT // *, /, %
	PREFIX  // -x, !x, ++x, --x
	POSTFIX // x++, x--, x.m, x[i], f(args)
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   ASSIGN,
	lexer.OR:       OR,
	lexer.AND:      AND,
	lexer.EQ:       EQUALS,
	lexer.NEQ:      EQUALS,
	lexer.LT:       COMPARE,
	lexer.GT:       COMPARE,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.TIMES:    PRODUCT,
	lexer.DIVIDE:   PRODUCT,
	lexer.MOD:      PRODUCT,
	lexer.INC:      POSTFIX,
	lexer.DEC:      POSTFIX,
	lexer.DOT:      POSTFIX,
	lexer.LBRACKET: POSTFIX,
	lexer.LPAREN:   POSTFIX,
}

var binaryOperators = map[lexer.TokenType]ast.BinaryOperator{
	lexer.PLUS:   ast.Add,
	lexer.MINUS:  ast.Sub,
	lexer.TIMES:  ast.Mult,
	lexer.DIVIDE: ast.Div,
	lexer.MOD:    ast.Mod,
	lexer.GT:     ast.Gt,
	lexer.LT:     ast.Lt,
	lexer.EQ:     ast.Eq,
	lexer.NEQ:    ast.Neq,
	lexer.AND:    ast.And,
	lexer.OR:     ast.Or,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l              *lexer.Lexer
	curToken       lexer.Token
	peekToken      lexer.Token
	errors         []string
	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:              l,
		errors:         []string{},
		prefixParseFns: make(map[lexer.TokenType]prefixParseFn),
		infixParseFns:  make(map[lexer.TokenType]infixParseFn),
	}

	p.nextToken()
	p.nextToken()

	p.registerPrefix(lexer.INT_CONST, p.parseIntegerExpression)
	p.registerPrefix(lexer.STR_CONST, p.parseStringExpression)
	p.registerPrefix(lexer.BOOL_CONST, p.parseBoolExpression)
	p.registerPrefix(lexer.NULL, p.parseNullExpression)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.INC, p.parsePrefixExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixExpression)

	for tt := range binaryOperators {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.ASSIGN, p.parseAssignment)
	p.registerInfix(lexer.INC, p.parsePostfixExpression)
	p.registerInfix(lexer.DEC, p.parsePostfixExpression)
	p.registerInfix(lexer.DOT, p.parseMemberAccess)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.LPAREN, p.parseMethodCall)

	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == lexer.ERROR {
		p.errors = append(p.errors, fmt.Sprintf("%s line %d col %d", p.peekToken.Literal, p.peekToken.Line, p.peekToken.Column))
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectAndPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) expectCurrent(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.currentError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errors = append(p.errors, fmt.Sprintf("Expected next token to be %v, got %v line %d col %d", t, p.peekToken.Type, p.peekToken.Line, p.peekToken.Column))
}

func (p *Parser) currentError(t lexer.TokenType) {
	p.errors = append(p.errors, fmt.Sprintf("Expected current token to be %v, got %v line %d col %d", t, p.curToken.Type, p.curToken.Line, p.curToken.Column))
}

func (p *Parser) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s line %d col %d", msg, p.curToken.Line, p.curToken.Column))
}

func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	prog.Classes = []*ast.ClassDeclaration{}

	for !p.curTokenIs(lexer.EOF) {
		class := p.ParseClass()
		if class == nil {
			break
		}
		prog.Classes = append(prog.Classes, class)
		p.nextToken() // move past the closing brace
	}

	return prog
}

// ParseClass parses
//
//	class NAME [extends NAME] { member* }
func (p *Parser) ParseClass() *ast.ClassDeclaration {
	if !p.curTokenIs(lexer.CLASS) {
		p.errorf("Expected class, got %s", p.curToken.Type)
		return nil
	}

	c := &ast.ClassDeclaration{Token: p.curToken}

	if !p.expectAndPeek(lexer.IDENT) {
		return nil
	}
	c.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken()
		if !p.expectAndPeek(lexer.IDENT) {
			return nil
		}
		c.Parent = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if !p.expectAndPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken() // move to first member or closing brace

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.parseMember(c) {
			return nil
		}
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.errorf("Expected closing brace of class %s", c.Name.Value)
		return nil
	}

	return c
}

// parseMember parses a field, the initializer or a method and attaches it
// to c. The current token is left on the member's last token.
func (p *Parser) parseMember(c *ast.ClassDeclaration) bool {
	if p.curTokenIs(lexer.INITIALIZE) {
		if c.Constructor != nil {
			p.errorf("Class %s declares more than one initialize", c.Name.Value)
			return false
		}
		m := &ast.MethodDeclaration{
			Token:         p.curToken,
			Name:          &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
			ReturnType:    types.Null{},
			IsConstructor: true,
		}
		if !p.parseMethodRest(m) {
			return false
		}
		c.Constructor = m
		return true
	}

	tok := p.curToken
	t := p.parseReturnType()
	if t == nil {
		return false
	}
	if !p.expectAndPeek(lexer.IDENT) {
		return false
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.LPAREN) {
		m := &ast.MethodDeclaration{Token: tok, Name: name, ReturnType: t}
		if !p.parseMethodRest(m) {
			return false
		}
		c.Methods = append(c.Methods, m)
		return true
	}

	if types.IsVoid(t) {
		p.errorf("Field %s cannot be void", name.Value)
		return false
	}
	if !p.expectAndPeek(lexer.SEMI) {
		return false
	}
	c.Fields = append(c.Fields, &ast.VarDeclaration{Token: tok, Name: name, Type: t})
	return true
}

// parseMethodRest parses "(params) { body }" with the current token on the
// method name.
func (p *Parser) parseMethodRest(m *ast.MethodDeclaration) bool {
	if !p.expectAndPeek(lexer.LPAREN) {
		return false
	}
	p.nextToken() // move past the left paren

	m.Args = []*ast.VarDeclaration{}
	if !p.curTokenIs(lexer.RPAREN) {
		for {
			formal := p.parseFormal()
			if formal == nil {
				return false
			}
			m.Args = append(m.Args, formal)

			if p.peekTokenIs(lexer.RPAREN) {
				break
			}
			if !p.expectAndPeek(lexer.COMMA) {
				return false
			}
			p.nextToken() // move to next parameter
		}
		p.nextToken()
	}

	if !p.expectAndPeek(lexer.LBRACE) {
		return false
	}
	m.Body = p.parseBlockBody()
	return m.Body != nil
}

func (p *Parser) parseFormal() *ast.VarDeclaration {
	tok := p.curToken
	t := p.parseType()
	if t == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.IDENT) {
		return nil
	}
	return &ast.VarDeclaration{Token: tok, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}, Type: t}
}

func (p *Parser) parseReturnType() types.Type {
	if p.curTokenIs(lexer.VOID) {
		return types.Null{}
	}
	return p.parseType()
}

// parseType parses a type starting at the current token and leaves the
// current token on its last token.
func (p *Parser) parseType() types.Type {
	switch p.curToken.Type {
	case lexer.INT:
		return types.Int{}
	case lexer.BOOL:
		return types.Bool{}
	case lexer.STRING:
		return types.String{}
	case lexer.IDENT:
		return &types.Class{Name: p.curToken.Literal}
	case lexer.LIST:
		return p.parseListType()
	case lexer.FPTR:
		return p.parseFptrType()
	}
	p.errorf("Expected a type, got %s", p.curToken.Type)
	return nil
}

// list(N # T) | list(T [name], ...)
func (p *Parser) parseListType() types.Type {
	if !p.expectAndPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()

	if p.curTokenIs(lexer.INT_CONST) && p.peekTokenIs(lexer.HASH) {
		n, err := strconv.Atoi(p.curToken.Literal)
		if err != nil || n <= 0 {
			p.errorf("Invalid list size %s", p.curToken.Literal)
			return nil
		}
		p.nextToken() // #
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		if !p.expectAndPeek(lexer.RPAREN) {
			return nil
		}
		return types.Repeat(n, elem)
	}

	l := &types.List{}
	for {
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		nt := types.ListNameType{Type: elem}
		if p.peekTokenIs(lexer.IDENT) {
			p.nextToken()
			nt.Name = p.curToken.Literal
		}
		l.Elements = append(l.Elements, nt)

		if p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			return l
		}
		if !p.expectAndPeek(lexer.COMMA) {
			return nil
		}
		p.nextToken()
	}
}

// fptr<void -> T> | fptr<T, ... -> T>
func (p *Parser) parseFptrType() types.Type {
	if !p.expectAndPeek(lexer.LT) {
		return nil
	}
	p.nextToken()

	f := &types.Fptr{Args: []types.Type{}}
	if p.curTokenIs(lexer.VOID) {
		p.nextToken()
	} else {
		for {
			arg := p.parseType()
			if arg == nil {
				return nil
			}
			f.Args = append(f.Args, arg)
			p.nextToken()
			if !p.curTokenIs(lexer.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if !p.expectCurrent(lexer.ARROW) {
		return nil
	}
	f.Return = p.parseReturnType()
	if f.Return == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.GT) {
		return nil
	}
	return f
}

// parseBlockBody parses statements up to the closing brace. The current
// token is the opening brace on entry and the closing brace on return.
func (p *Parser) parseBlockBody() []ast.Statement {
	stmts := []ast.Statement{}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			p.errorf("Expected closing brace, got EOF")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
		p.nextToken()
	}
	return stmts
}

// parseStatement leaves the current token on the statement's last token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.LBRACE:
		block := &ast.BlockStmt{Token: p.curToken}
		block.Statements = p.parseBlockBody()
		if block.Statements == nil {
			return nil
		}
		return block
	case lexer.IF:
		return p.parseConditional()
	case lexer.FOR:
		return p.parseFor()
	case lexer.FOREACH:
		return p.parseForeach()
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		s := &ast.BreakStmt{Token: p.curToken}
		if !p.expectAndPeek(lexer.SEMI) {
			return nil
		}
		return s
	case lexer.CONTINUE:
		s := &ast.ContinueStmt{Token: p.curToken}
		if !p.expectAndPeek(lexer.SEMI) {
			return nil
		}
		return s
	case lexer.INT, lexer.BOOL, lexer.STRING, lexer.LIST, lexer.FPTR:
		return p.parseVarDeclaration()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.IDENT) {
			return p.parseVarDeclaration()
		}
	}

	stmt := p.parseSimpleStatement()
	if stmt == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.SEMI) {
		return nil
	}
	return stmt
}

func (p *Parser) parseVarDeclaration() ast.Statement {
	tok := p.curToken
	t := p.parseType()
	if t == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.IDENT) {
		return nil
	}
	vd := &ast.VarDeclaration{Token: tok, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}, Type: t}
	if !p.expectAndPeek(lexer.SEMI) {
		return nil
	}
	return vd
}

// parseSimpleStatement parses an assignment, an increment or a call. Other
// expressions are not statements.
func (p *Parser) parseSimpleStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	switch e := expr.(type) {
	case *ast.BinaryExpression:
		if e.Operator == ast.Assign {
			return &ast.AssignmentStmt{Token: tok, LValue: e.Left, RValue: e.Right}
		}
	case *ast.UnaryExpression:
		if e.Operator.IsIncDec() {
			return &ast.IncDecStmt{Token: tok, Expr: e}
		}
	case *ast.MethodCall:
		return &ast.MethodCallStmt{Token: tok, Call: e}
	}
	p.errors = append(p.errors, fmt.Sprintf("%s is not a statement line %d col %d", expr.String(), tok.Line, tok.Column))
	return nil
}

// if (cond) stmt [else stmt]
func (p *Parser) parseConditional() ast.Statement {
	cs := &ast.ConditionalStmt{Token: p.curToken}

	if !p.expectAndPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	cs.Condition = p.parseExpression(LOWEST)
	if cs.Condition == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	cs.Then = p.parseStatement()
	if cs.Then == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // consume 'else'
		p.nextToken() // move to start of alternative
		cs.Else = p.parseStatement()
		if cs.Else == nil {
			return nil
		}
	}
	return cs
}

// for ([init]; [cond]; [update]) stmt
func (p *Parser) parseFor() ast.Statement {
	fs := &ast.ForStmt{Token: p.curToken}

	if !p.expectAndPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()

	if !p.curTokenIs(lexer.SEMI) {
		fs.Init = p.parseSimpleStatement()
		if fs.Init == nil {
			return nil
		}
		if !p.expectAndPeek(lexer.SEMI) {
			return nil
		}
	}
	p.nextToken()

	if !p.curTokenIs(lexer.SEMI) {
		fs.Condition = p.parseExpression(LOWEST)
		if fs.Condition == nil {
			return nil
		}
		if !p.expectAndPeek(lexer.SEMI) {
			return nil
		}
	}
	p.nextToken()

	if !p.curTokenIs(lexer.RPAREN) {
		fs.Update = p.parseSimpleStatement()
		if fs.Update == nil {
			return nil
		}
		if !p.expectAndPeek(lexer.RPAREN) {
			return nil
		}
	}

	p.nextToken()
	fs.Body = p.parseStatement()
	if fs.Body == nil {
		return nil
	}
	return fs
}

// foreach (x in expr) stmt
func (p *Parser) parseForeach() ast.Statement {
	fs := &ast.ForeachStmt{Token: p.curToken}

	if !p.expectAndPeek(lexer.LPAREN) {
		return nil
	}
	if !p.expectAndPeek(lexer.IDENT) {
		return nil
	}
	fs.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectAndPeek(lexer.IN) {
		return nil
	}
	p.nextToken()
	fs.List = p.parseExpression(LOWEST)
	if fs.List == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	fs.Body = p.parseStatement()
	if fs.Body == nil {
		return nil
	}
	return fs
}

func (p *Parser) parsePrint() ast.Statement {
	ps := &ast.PrintStmt{Token: p.curToken}
	if !p.expectAndPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	ps.Arg = p.parseExpression(LOWEST)
	if ps.Arg == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectAndPeek(lexer.SEMI) {
		return nil
	}
	return ps
}

func (p *Parser) parseReturn() ast.Statement {
	rs := &ast.ReturnStmt{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMI) {
		p.nextToken()
		return rs
	}
	p.nextToken()
	rs.Value = p.parseExpression(LOWEST)
	if rs.Value == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.SEMI) {
		return nil
	}
	return rs
}

// parseExpression implements Pratt parsing to handle operator precedence
// while building the expression AST
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}

	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMI) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// (expr)
func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken() // move past the opening parenthesis

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectAndPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	exp := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: binaryOperators[p.curToken.Type],
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	exp.Right = p.parseExpression(precedence)
	if exp.Right == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.MemberAccess, *ast.ListAccessByIndex:
	default:
		p.errorf("Left side of assignment must be a variable, member or list element")
		return nil
	}

	a := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: ast.Assign,
		Left:     left,
	}

	p.nextToken()
	a.Right = p.parseExpression(ASSIGN - 1)
	if a.Right == nil {
		return nil
	}
	return a
}

// -x | !x | ++x | --x
func (p *Parser) parsePrefixExpression() ast.Expression {
	ue := &ast.UnaryExpression{Token: p.curToken}
	switch p.curToken.Type {
	case lexer.MINUS:
		ue.Operator = ast.Minus
	case lexer.NOT:
		ue.Operator = ast.Not
	case lexer.INC:
		ue.Operator = ast.PreInc
	case lexer.DEC:
		ue.Operator = ast.PreDec
	}

	p.nextToken()
	ue.Operand = p.parseExpression(PREFIX)
	if ue.Operand == nil {
		return nil
	}
	return ue
}

// x++ | x--
func (p *Parser) parsePostfixExpression(operand ast.Expression) ast.Expression {
	ue := &ast.UnaryExpression{Token: p.curToken, Operand: operand, Operator: ast.PostInc}
	if p.curTokenIs(lexer.DEC) {
		ue.Operator = ast.PostDec
	}
	return ue
}

// x.member
func (p *Parser) parseMemberAccess(instance ast.Expression) ast.Expression {
	ma := &ast.MemberAccess{Token: p.curToken, Instance: instance}
	if !p.expectAndPeek(lexer.IDENT) {
		return nil
	}
	ma.Member = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return ma
}

// x[index]
func (p *Parser) parseIndexExpression(instance ast.Expression) ast.Expression {
	la := &ast.ListAccessByIndex{Token: p.curToken, Instance: instance}
	p.nextToken()
	la.Index = p.parseExpression(LOWEST)
	if la.Index == nil {
		return nil
	}
	if !p.expectAndPeek(lexer.RBRACKET) {
		return nil
	}
	return la
}

// f(args)
func (p *Parser) parseMethodCall(instance ast.Expression) ast.Expression {
	mc := &ast.MethodCall{Token: p.curToken, Instance: instance}
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	mc.Args = args
	return mc
}

// new NAME(args)
func (p *Parser) parseNewExpression() ast.Expression {
	ne := &ast.NewClassInstance{Token: p.curToken}

	if !p.expectAndPeek(lexer.IDENT) {
		return nil
	}
	ne.ClassName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectAndPeek(lexer.LPAREN) {
		return nil
	}
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	ne.Args = args
	return ne
}

// [expr, expr, ...]
func (p *Parser) parseListExpression() ast.Expression {
	lv := &ast.ListValue{Token: p.curToken}
	elems, ok := p.parseExpressionList(lexer.RBRACKET)
	if !ok {
		return nil
	}
	lv.Elements = elems
	return lv
}

func (p *Parser) parseExpressionList(end lexer.TokenType) ([]ast.Expression, bool) {
	exps := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return exps, true
	}

	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil, false
	}
	exps = append(exps, exp)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil, false
		}
		exps = append(exps, exp)
	}

	if !p.expectAndPeek(end) {
		return nil, false
	}
	return exps, true
}

// | INT
func (p *Parser) parseIntegerExpression() ast.Expression {
	ie := &ast.IntValue{Token: p.curToken}
	value, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		p.errorf("could not parse integer: %v", p.curToken.Literal)
		return nil
	}
	ie.Value = value
	return ie
}

// | STRING
func (p *Parser) parseStringExpression() ast.Expression {
	return &ast.StringValue{Token: p.curToken, Value: p.curToken.Literal}
}

// | true | false
func (p *Parser) parseBoolExpression() ast.Expression {
	return &ast.BoolValue{Token: p.curToken, Value: p.curToken.Literal == "true"}
}

func (p *Parser) parseNullExpression() ast.Expression {
	return &ast.NullValue{Token: p.curToken}
}

func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.ThisClass{Token: p.curToken}
}

// | ID
func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) noPrefixParseFnError(t lexer.TokenType) {
	msg := fmt.Sprintf("no prefix parse function for %s found at line %d, col %d",
		t, p.curToken.Line, p.curToken.Column)
	p.errors = append(p.errors, msg)
}
