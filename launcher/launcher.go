// Package launcher builds a small native program that starts the JVM on
// the compiled entry class. It is emitted as LLVM IR so any clang can turn
// it into an executable.
package launcher

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

// FileName is the name the CLI gives the launcher inside the output
// directory.
const FileName = "launcher.ll"

var i8Ptr = types.NewPointer(types.I8)

type builder struct {
	module  *ir.Module
	strings map[string]*ir.Global
}

// Build returns a module whose main runs `java -cp classPath entryClass`.
// When the exec fails, main reports the reason through perror and returns 1.
func Build(classPath, entryClass string) *ir.Module {
	b := &builder{module: ir.NewModule(), strings: map[string]*ir.Global{}}

	execvp := b.module.NewFunc("execvp", types.I32,
		ir.NewParam("file", i8Ptr),
		ir.NewParam("argv", types.NewPointer(i8Ptr)),
	)
	perror := b.module.NewFunc("perror", types.Void, ir.NewParam("s", i8Ptr))

	argv := []string{"java", "-cp", classPath, entryClass}
	argvType := types.NewArray(uint64(len(argv)+1), i8Ptr)

	mainFn := b.module.NewFunc("main", types.I32)
	entry := mainFn.NewBlock("entry")
	failed := mainFn.NewBlock("exec.failed")
	done := mainFn.NewBlock("exec.returned")

	args := entry.NewAlloca(argvType)
	for i, arg := range argv {
		slot := entry.NewGetElementPtr(argvType, args,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(i)))
		entry.NewStore(b.stringPtr(arg), slot)
	}
	last := entry.NewGetElementPtr(argvType, args,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(len(argv))))
	entry.NewStore(constant.NewNull(i8Ptr), last)

	first := entry.NewGetElementPtr(argvType, args,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
	result := entry.NewCall(execvp, b.stringPtr("java"), first)
	isError := entry.NewICmp(enum.IPredSLT, result, constant.NewInt(types.I32, 0))
	entry.NewCondBr(isError, failed, done)

	failed.NewCall(perror, b.stringPtr("java"))
	failed.NewRet(constant.NewInt(types.I32, 1))

	done.NewRet(constant.NewInt(types.I32, 0))
	return b.module
}

// stringPtr returns an i8* to a private NUL terminated copy of s. Equal
// strings share one global.
func (b *builder) stringPtr(s string) value.Value {
	global, ok := b.strings[s]
	if !ok {
		data := constant.NewCharArrayFromString(s + "\x00")
		global = b.module.NewGlobalDef(fmt.Sprintf(".str.%d.%s", len(b.strings), sanitize(s)), data)
		global.Linkage = enum.LinkagePrivate
		global.Immutable = true
		b.strings[s] = global
	}
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(global.ContentType, global, zero, zero)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return '_'
		}
		return r
	}, s)
}

// Write renders m as textual IR at path.
func Write(path string, m *ir.Module) error {
	if err := os.WriteFile(path, []byte(m.String()), 0o644); err != nil {
		return errors.Wrapf(err, "write launcher %s", path)
	}
	return nil
}
