// Package jasmin models Jasmin assembly units and prints them in the
// layout the Jasmin assembler accepts.
package jasmin

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Instruction is one line of a method body: either a label definition or
// an opcode with its operands.
type Instruction struct {
	Label  string
	Opcode string
	Args   []string
}

func Op(opcode string, args ...string) Instruction {
	return Instruction{Opcode: opcode, Args: args}
}

// Mark defines label at the current position.
func Mark(label string) Instruction {
	return Instruction{Label: label}
}

func (i Instruction) IsLabel() bool { return i.Label != "" }

func (i Instruction) String() string {
	if i.IsLabel() {
		return "\t" + i.Label + ":"
	}
	if len(i.Args) == 0 {
		return "\t\t" + i.Opcode
	}
	return "\t\t" + i.Opcode + " " + strings.Join(i.Args, " ")
}

var branchOps = map[string]bool{
	"goto": true, "ifeq": true, "ifne": true, "iflt": true, "ifge": true, "ifgt": true, "ifle": true,
	"if_icmpeq": true, "if_icmpne": true, "if_icmplt": true, "if_icmpge": true, "if_icmpgt": true, "if_icmple": true,
	"if_acmpeq": true, "if_acmpne": true, "ifnull": true, "ifnonnull": true,
}

// Target returns the label a branch instruction jumps to.
func (i Instruction) Target() (string, bool) {
	if !branchOps[i.Opcode] || len(i.Args) != 1 {
		return "", false
	}
	return i.Args[0], true
}

// Terminal reports whether control never falls through i.
func (i Instruction) Terminal() bool {
	switch i.Opcode {
	case "goto", "return", "areturn", "ireturn", "athrow":
		return true
	}
	return false
}

type Field struct {
	Name       string
	Descriptor string
}

type Method struct {
	Name        string
	Descriptor  string
	Static      bool
	StackLimit  int
	LocalsLimit int
	Code        []Instruction
}

// Class is one assembly unit. Super is an internal name such as
// java/lang/Object.
type Class struct {
	Name    string
	Super   string
	Fields  []Field
	Methods []*Method
}

// Method returns the method called name with the given descriptor.
func (c *Class) Method(name, descriptor string) (*Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name && m.Descriptor == descriptor {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, ".class public %s\n", c.Name)
	fmt.Fprintf(&sb, ".super %s\n", c.Super)
	if len(c.Fields) > 0 {
		sb.WriteString("\n")
	}
	for _, f := range c.Fields {
		fmt.Fprintf(&sb, ".field public %s %s\n", f.Name, f.Descriptor)
	}
	for _, m := range c.Methods {
		sb.WriteString("\n")
		sb.WriteString(m.String())
	}
	return sb.String()
}

func (m *Method) String() string {
	var sb strings.Builder
	modifiers := "public"
	if m.Static {
		modifiers = "public static"
	}
	fmt.Fprintf(&sb, ".method %s %s%s\n", modifiers, m.Name, m.Descriptor)
	fmt.Fprintf(&sb, ".limit stack %d\n", m.StackLimit)
	fmt.Fprintf(&sb, ".limit locals %d\n", m.LocalsLimit)
	for _, in := range m.Code {
		sb.WriteString(in.String())
		sb.WriteString("\n")
	}
	sb.WriteString(".end method\n")
	return sb.String()
}

// WriteTo prints the unit to w.
func (c *Class) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, c.String())
	return int64(n), err
}

// Labels returns the labels code defines and the labels it jumps to.
func Labels(code []Instruction) (defined, referenced map[string]bool) {
	defined = map[string]bool{}
	referenced = map[string]bool{}
	for _, in := range code {
		if in.IsLabel() {
			defined[in.Label] = true
		} else if target, ok := in.Target(); ok {
			referenced[target] = true
		}
	}
	return defined, referenced
}

// Quote renders s as a Jasmin string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			switch {
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
			case r < 0x20 || r > 0x7e:
				fmt.Fprintf(&sb, `\u%04x`, r)
			default:
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Unquote reverses Quote.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return "", fmt.Errorf("not a string literal: %s", lit)
	}
	body := lit[1 : len(lit)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			sb.WriteByte(body[i])
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in %s", lit)
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'u':
			r, err := unicodeEscape(body, i)
			if err != nil {
				return "", fmt.Errorf("%w in %s", err, lit)
			}
			i += 4
			if utf16.IsSurrogate(r) {
				lo, err := unicodeEscape(body, i+2)
				if err == nil && i+1 < len(body) && body[i+1] == '\\' {
					if pair := utf16.DecodeRune(r, lo); pair != unicode.ReplacementChar {
						r = pair
						i += 6
					}
				}
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), nil
}

// unicodeEscape decodes the four hex digits after the 'u' at body[u].
func unicodeEscape(body string, u int) (rune, error) {
	if u < 0 || u >= len(body) || body[u] != 'u' {
		return 0, fmt.Errorf("missing unicode escape")
	}
	if u+5 > len(body) {
		return 0, fmt.Errorf("short unicode escape")
	}
	code, err := strconv.ParseUint(body[u+1:u+5], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad unicode escape")
	}
	return rune(code), nil
}
