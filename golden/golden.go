// Package golden reads markdown files that describe compiler test cases.
//
// Each case starts with a heading of the form "## Test: name", followed by
// one fenced "sophia" block holding the program and any number of
// assertion blocks:
//
//	```jasmin Main
//	iconst_1
//	ireturn
//	```
//
// A jasmin fence names the class whose unit must contain the listed
// instruction lines contiguously. A compile-error fence holds a message
// fragment that the front end or the semantic analyzer must report.
package golden

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const inputLanguage = "sophia"

type AssertionKind string

const (
	KindJasmin       AssertionKind = "jasmin"
	KindCompileError AssertionKind = "compile-error"
)

type Assertion struct {
	Kind AssertionKind
	// Target is the class name of a jasmin assertion.
	Target  string
	Content string
	Line    int
}

type TestCase struct {
	Name       string
	Input      string
	Assertions []Assertion
	Line       int
}

// ExtractTestCases parses a markdown document and returns its test cases in
// document order.
func ExtractTestCases(markdown string) ([]TestCase, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := textOf(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &TestCase{
				Name: strings.TrimSpace(strings.TrimPrefix(heading, "Test: ")),
				Line: lineOf(n, source),
			}

		case *ast.FencedCodeBlock:
			info := ""
			if n.Info != nil {
				info = strings.TrimSpace(string(n.Info.Segment.Value(source)))
			}
			line := lineOf(n, source)
			fields := strings.Fields(info)
			if len(fields) == 0 {
				return ast.WalkContinue, nil
			}
			if current == nil {
				return ast.WalkStop, errors.Errorf("line %d: %s fence found outside of a test case", line, fields[0])
			}
			content := blockContent(n, source)

			switch fields[0] {
			case inputLanguage:
				if current.Input != "" {
					return ast.WalkStop, errors.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}
				current.Input = strings.TrimRight(content, "\n")
			case string(KindJasmin):
				if len(fields) != 2 {
					return ast.WalkStop, errors.Errorf("line %d: jasmin fence in test '%s' must name one class", line, current.Name)
				}
				current.Assertions = append(current.Assertions, Assertion{
					Kind: KindJasmin, Target: fields[1], Content: content, Line: line,
				})
			case string(KindCompileError):
				current.Assertions = append(current.Assertions, Assertion{
					Kind: KindCompileError, Content: strings.TrimSpace(content), Line: line,
				})
			default:
				return ast.WalkStop, errors.Errorf("line %d: unknown fence language '%s' in test '%s'", line, fields[0], current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

// Lines returns the non-blank lines of an assertion with surrounding
// whitespace removed.
func (a Assertion) Lines() []string {
	var lines []string
	for _, l := range strings.Split(a.Content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ContainsLines reports whether want appears as a contiguous run of
// trimmed lines in unit.
func ContainsLines(unit string, want []string) bool {
	var have []string
	for _, l := range strings.Split(unit, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			have = append(have, l)
		}
	}
	if len(want) == 0 {
		return true
	}
	for i := 0; i+len(want) <= len(have); i++ {
		match := true
		for j := range want {
			if have[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func validate(tc *TestCase) error {
	if tc.Input == "" {
		return errors.Errorf("test '%s' has no %s fence", tc.Name, inputLanguage)
	}
	if len(tc.Assertions) == 0 {
		return errors.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	return nil
}

func textOf(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	start := -1
	if node.Type() == ast.TypeBlock && node.Lines().Len() > 0 {
		start = node.Lines().At(0).Start
	}
	if start < 0 {
		return 1
	}
	return bytes.Count(source[:start], []byte("\n")) + 1
}
