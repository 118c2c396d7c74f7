package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type TokenType int

// The list of token types
const (
	EOF TokenType = iota
	ERROR

	// Keywords
	CLASS
	EXTENDS
	INITIALIZE
	INT
	BOOL
	STRING
	LIST
	FPTR
	VOID
	NULL
	THIS
	NEW
	IF
	ELSE
	FOR
	FOREACH
	IN
	BREAK
	CONTINUE
	RETURN
	PRINT

	// Data types
	STR_CONST
	BOOL_CONST
	INT_CONST

	// Identifiers
	IDENT

	// Operators
	ASSIGN   // =
	EQ       // ==
	NEQ      // !=
	LT       // <
	GT       // >
	PLUS     // +
	MINUS    // -
	TIMES    // *
	DIVIDE   // /
	MOD      // %
	AND      // &&
	OR       // ||
	NOT      // !
	INC      // ++
	DEC      // --
	ARROW    // ->
	HASH     // #
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	SEMI     // ;
	COMMA    // ,
	DOT      // .
)

func (tt TokenType) String() string {
	return [...]string{
		"EOF", "ERROR",
		// Keywords
		"CLASS", "EXTENDS", "INITIALIZE", "INT", "BOOL", "STRING", "LIST",
		"FPTR", "VOID", "NULL", "THIS", "NEW", "IF", "ELSE", "FOR", "FOREACH",
		"IN", "BREAK", "CONTINUE", "RETURN", "PRINT",
		// Data types
		"STR_CONST", "BOOL_CONST", "INT_CONST",
		// Identifiers
		"IDENT",
		// Operators and Punctuation
		"ASSIGN", "EQ", "NEQ", "LT", "GT", "PLUS", "MINUS", "TIMES",
		"DIVIDE", "MOD", "AND", "OR", "NOT", "INC", "DEC", "ARROW", "HASH",
		"LPAREN", "RPAREN", "LBRACE", "RBRACE", "LBRACKET", "RBRACKET",
		"SEMI", "COMMA", "DOT",
	}[tt]
}

var keywords = map[string]TokenType{
	"class":      CLASS,
	"extends":    EXTENDS,
	"initialize": INITIALIZE,
	"int":        INT,
	"bool":       BOOL,
	"string":     STRING,
	"list":       LIST,
	"fptr":       FPTR,
	"void":       VOID,
	"null":       NULL,
	"this":       THIS,
	"new":        NEW,
	"if":         IF,
	"else":       ELSE,
	"for":        FOR,
	"foreach":    FOREACH,
	"in":         IN,
	"break":      BREAK,
	"continue":   CONTINUE,
	"return":     RETURN,
	"print":      PRINT,
	"true":       BOOL_CONST,
	"false":      BOOL_CONST,
}

// Token represents a lexical token with its type, value, and position.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// Lexer is the lexical analyzer.
type Lexer struct {
	reader *bufio.Reader
	line   int
	column int
	char   rune
}

// NewLexer creates a new lexer from an io.Reader
func NewLexer(reader io.Reader) *Lexer {
	l := &Lexer{
		reader: bufio.NewReader(reader),
		line:   1,
		column: 0,
		char:   ' ',
	}
	return l
}

// readChar reads the next character from the input.
func (l *Lexer) readChar() {
	var err error
	l.char, _, err = l.reader.ReadRune()
	if err != nil {
		l.char = 0 // EOF
	}

	l.column++
	if l.char == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar returns the next character without advancing the stream.
func (l *Lexer) peekChar() rune {
	char, _, err := l.reader.ReadRune()
	if err != nil {
		return 0
	}
	l.reader.UnreadRune()
	return char
}

func (l *Lexer) skipWhiteSpace() {
	for unicode.IsSpace(l.char) {
		l.readChar()
	}
}

func (l *Lexer) readNumber() string {
	var sb strings.Builder
	for unicode.IsDigit(l.char) {
		sb.WriteRune(l.char)
		l.readChar()
	}
	return sb.String()
}

func isIdentifierStart(char rune) bool {
	return unicode.IsLetter(char) || char == '_'
}

func isIdentifierPart(char rune) bool {
	return isIdentifierStart(char) || unicode.IsDigit(char)
}

func (l *Lexer) readIdentifier() string {
	var sb strings.Builder
	for isIdentifierPart(l.char) {
		sb.WriteRune(l.char)
		l.readChar()
	}
	return sb.String()
}

func (l *Lexer) readString() (string, error) {
	var sb strings.Builder
	startLine := l.line
	startCol := l.column

	l.readChar() // consume opening quote
	for l.char != '"' {
		if l.char == 0 {
			return "", fmt.Errorf("EOF in string constant at line %d, column %d", startLine, startCol)
		}
		if l.char == '\n' {
			return "", fmt.Errorf("Unterminated string constant at line %d, column %d", startLine, startCol)
		}

		if l.char == '\\' {
			l.readChar()
			switch l.char {
			case 't':
				sb.WriteRune('\t')
			case 'n':
				sb.WriteRune('\n')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			default:
				sb.WriteRune(l.char)
			}
		} else {
			sb.WriteRune(l.char)
		}

		l.readChar()
	}

	l.readChar() // consume closing quote
	return sb.String(), nil
}

// skipComment consumes a // line comment or a /* */ block comment.
func (l *Lexer) skipComment() error {
	if l.peekChar() == '/' {
		for l.char != '\n' && l.char != 0 {
			l.readChar()
		}
		return nil
	}

	startLine := l.line
	l.readChar() // consume /
	l.readChar() // consume *
	for {
		if l.char == 0 {
			return fmt.Errorf("EOF in comment starting at line %d", startLine)
		}
		if l.char == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return nil
		}
		l.readChar()
	}
}

// twoChar emits a two-character token when the next character matches,
// and the single-character fallback otherwise.
func (l *Lexer) twoChar(tok *Token, next rune, double TokenType, single TokenType) {
	first := l.char
	if l.peekChar() == next {
		l.readChar()
		tok.Type = double
		tok.Literal = string([]rune{first, next})
	} else {
		tok.Type = single
		tok.Literal = string(first)
	}
	l.readChar()
}

func (l *Lexer) NextToken() Token {
	l.skipWhiteSpace()

	tok := Token{
		Line:   l.line,
		Column: l.column,
	}

	switch {
	case l.char == 0:
		tok.Type = EOF
		tok.Literal = ""
	case l.char == '/' && (l.peekChar() == '/' || l.peekChar() == '*'):
		if err := l.skipComment(); err != nil {
			tok.Type = ERROR
			tok.Literal = err.Error()
			return tok
		}
		return l.NextToken()
	case l.char == '(':
		tok.Type, tok.Literal = LPAREN, "("
		l.readChar()
	case l.char == ')':
		tok.Type, tok.Literal = RPAREN, ")"
		l.readChar()
	case l.char == '{':
		tok.Type, tok.Literal = LBRACE, "{"
		l.readChar()
	case l.char == '}':
		tok.Type, tok.Literal = RBRACE, "}"
		l.readChar()
	case l.char == '[':
		tok.Type, tok.Literal = LBRACKET, "["
		l.readChar()
	case l.char == ']':
		tok.Type, tok.Literal = RBRACKET, "]"
		l.readChar()
	case l.char == ';':
		tok.Type, tok.Literal = SEMI, ";"
		l.readChar()
	case l.char == ',':
		tok.Type, tok.Literal = COMMA, ","
		l.readChar()
	case l.char == '.':
		tok.Type, tok.Literal = DOT, "."
		l.readChar()
	case l.char == '#':
		tok.Type, tok.Literal = HASH, "#"
		l.readChar()
	case l.char == '*':
		tok.Type, tok.Literal = TIMES, "*"
		l.readChar()
	case l.char == '/':
		tok.Type, tok.Literal = DIVIDE, "/"
		l.readChar()
	case l.char == '%':
		tok.Type, tok.Literal = MOD, "%"
		l.readChar()
	case l.char == '<':
		tok.Type, tok.Literal = LT, "<"
		l.readChar()
	case l.char == '>':
		tok.Type, tok.Literal = GT, ">"
		l.readChar()
	case l.char == '+':
		l.twoChar(&tok, '+', INC, PLUS)
	case l.char == '-':
		switch l.peekChar() {
		case '>':
			l.twoChar(&tok, '>', ARROW, MINUS)
		default:
			l.twoChar(&tok, '-', DEC, MINUS)
		}
	case l.char == '=':
		l.twoChar(&tok, '=', EQ, ASSIGN)
	case l.char == '!':
		l.twoChar(&tok, '=', NEQ, NOT)
	case l.char == '&':
		if l.peekChar() != '&' {
			tok.Type = ERROR
			tok.Literal = "Unexpected character: &"
			l.readChar()
			break
		}
		l.twoChar(&tok, '&', AND, ERROR)
	case l.char == '|':
		if l.peekChar() != '|' {
			tok.Type = ERROR
			tok.Literal = "Unexpected character: |"
			l.readChar()
			break
		}
		l.twoChar(&tok, '|', OR, ERROR)
	case l.char == '"':
		str, err := l.readString()
		if err != nil {
			tok.Type = ERROR
			tok.Literal = err.Error()
		} else {
			tok.Type = STR_CONST
			tok.Literal = str
		}
	case unicode.IsDigit(l.char):
		num := l.readNumber()
		if _, err := strconv.ParseInt(num, 10, 32); err != nil {
			tok.Type = ERROR
			tok.Literal = "Number out of range"
		} else {
			tok.Type = INT_CONST
			tok.Literal = num
		}
	case isIdentifierStart(l.char):
		identifier := l.readIdentifier()
		tok.Literal = identifier
		if kw, ok := keywords[identifier]; ok {
			tok.Type = kw
		} else {
			tok.Type = IDENT
		}
	default:
		tok.Type = ERROR
		tok.Literal = fmt.Sprintf("Unexpected character: %c", l.char)
		l.readChar()
	}

	return tok
}
