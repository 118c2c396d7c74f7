package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sophia-compiler/codegen"
	"sophia-compiler/launcher"
	"sophia-compiler/lexer"
	"sophia-compiler/output"
	"sophia-compiler/parser"
	"sophia-compiler/semant"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run compiles one source file and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("sophia-compiler", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilePath := flags.String("i", "", "Path to the source file")
	outDir := flags.String("o", "output", "Directory that receives the .j units; units recorded in its "+output.ManifestName+" file by an earlier run are removed first")
	entryClass := flags.String("main", codegen.DefaultOptions().EntryClass, "Class whose constructor is the program body")
	emitLauncher := flags.Bool("launcher", false, "Also write "+launcher.FileName+" into the output directory")
	dumpAST := flags.Bool("dump-ast", false, "Print the parsed program tree")
	verbose := flags.Bool("v", false, "Log every generated class and method")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *inputFilePath == "" {
		fmt.Fprintln(stderr, "Error: Input file path is required. Use -i <file>")
		return 1
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	codeBytes, err := os.ReadFile(*inputFilePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file %s: %v\n", *inputFilePath, err)
		return 1
	}

	code, err := parser.PreprocessImports(string(codeBytes), filepath.Dir(*inputFilePath))
	if err != nil {
		fmt.Fprintf(stderr, "Error processing imports: %v\n", err)
		return 1
	}

	p := parser.New(lexer.NewLexer(strings.NewReader(code)))
	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		printErrors(stderr, "Parser Errors", p.Errors())
		return 1
	}
	if *dumpAST {
		fmt.Fprintln(stdout, parser.PrintAST(program))
	}

	analyzer := semant.NewSemanticAnalyzer(*entryClass)
	info := analyzer.Analyze(program)
	if len(analyzer.Errors()) != 0 {
		printErrors(stderr, "Semantic Errors", analyzer.Errors())
		return 1
	}
	logger.Info("semantic analysis successful", "classes", len(program.Classes))

	sink, err := output.NewSink(*outDir, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error preparing output: %v\n", err)
		return 1
	}

	options := codegen.DefaultOptions()
	options.EntryClass = *entryClass
	options.Logger = logger
	if err := codegen.NewCodeGenerator(info, options).Generate(sink); err != nil {
		fmt.Fprintf(stderr, "Error generating code: %v\n", err)
		return 1
	}

	if *emitLauncher {
		path := filepath.Join(*outDir, launcher.FileName)
		if err := launcher.Write(path, launcher.Build(*outDir, *entryClass)); err != nil {
			fmt.Fprintf(stderr, "Error writing launcher: %v\n", err)
			return 1
		}
		logger.Info("wrote launcher", "path", path)
	}

	for _, path := range sink.Written() {
		fmt.Fprintln(stdout, path)
	}
	return 0
}

func printErrors(w io.Writer, title string, errs []string) {
	fmt.Fprintf(w, "=== %s ===\n", title)
	for _, err := range errs {
		fmt.Fprintln(w, err)
	}
}
