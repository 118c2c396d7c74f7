// Package codegen lowers a checked Sophia program into Jasmin assembly,
// one unit per class.
package codegen

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"sophia-compiler/jasmin"
	"sophia-compiler/semant"
)

// Sink receives one finished unit per class. A unit is either written in
// full or reported as failed.
type Sink interface {
	WriteUnit(name string, write func(io.Writer) error) error
}

type Options struct {
	// EntryClass gets the static main method.
	EntryClass  string
	StackLimit  int
	LocalsLimit int
	Logger      *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		EntryClass:  "Main",
		StackLimit:  128,
		LocalsLimit: 128,
	}
}

type CodeGenerator struct {
	info    *semant.Info
	options Options
}

// NewCodeGenerator expects info from an analysis that reported no errors.
func NewCodeGenerator(info *semant.Info, options Options) *CodeGenerator {
	defaults := DefaultOptions()
	if options.EntryClass == "" {
		options.EntryClass = defaults.EntryClass
	}
	if options.StackLimit <= 0 {
		options.StackLimit = defaults.StackLimit
	}
	if options.LocalsLimit <= 0 {
		options.LocalsLimit = defaults.LocalsLimit
	}
	return &CodeGenerator{info: info, options: options}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (g *CodeGenerator) logger() *slog.Logger {
	if g.options.Logger != nil {
		return g.options.Logger
	}
	return discard
}

// GenerateClass lowers the class called name.
func (g *CodeGenerator) GenerateClass(name string) (*jasmin.Class, error) {
	class, ok := g.info.Class(name)
	if !ok {
		return nil, &InternalError{Kind: KindUnresolved, Node: "ClassDeclaration", Class: name, Msg: "class was not collected"}
	}
	return g.generateClassUnit(g.info, class)
}

// Generate writes every class of the program to sink in declaration order
// and stops at the first failure.
func (g *CodeGenerator) Generate(sink Sink) error {
	for _, decl := range g.info.Program.Classes {
		name := decl.Name.Value
		unit, err := g.GenerateClass(name)
		if err != nil {
			return errors.Wrapf(err, "generating class %s", name)
		}
		err = sink.WriteUnit(name, func(w io.Writer) error {
			_, err := unit.WriteTo(w)
			return err
		})
		if err != nil {
			return errors.Wrapf(err, "writing class %s", name)
		}
		g.logger().Info("wrote class", "class", name, "methods", len(unit.Methods))
	}
	return nil
}
