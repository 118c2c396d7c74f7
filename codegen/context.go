package codegen

import (
	"strconv"

	"sophia-compiler/ast"
	"sophia-compiler/jasmin"
	"sophia-compiler/semant"
)

// classContext is shared by the methods of one class. Labels are numbered
// per class.
type classContext struct {
	info   *semant.Info
	class  *semant.ClassSymbol
	labels int
}

func (cc *classContext) newLabel() string {
	l := "Label" + strconv.Itoa(cc.labels)
	cc.labels++
	return l
}

type local struct {
	name string
	slot int
}

// loopFrame holds the jump targets of one enclosing loop.
type loopFrame struct {
	breakLabel    string
	continueLabel string
}

// methodContext is the state of one method body being lowered. It is
// passed explicitly through every lowering call.
type methodContext struct {
	*classContext
	className  string
	methodName string
	void       bool

	locals    []local
	nextLocal int
	nextTemp  int
	loops     []loopFrame

	code       []jasmin.Instruction
	referenced map[string]bool
}

// newMethodContext reserves slot 0 for this, then the parameters, then
// one slot per local declared anywhere in body. Temporaries follow.
func newMethodContext(cc *classContext, name string, params []*ast.VarDeclaration, body []ast.Statement) *methodContext {
	ctx := &methodContext{
		classContext: cc,
		className:    cc.class.Name,
		methodName:   name,
		referenced:   map[string]bool{},
	}
	ctx.nextLocal = 1
	for _, p := range params {
		ctx.declare(p.Name.Value)
	}
	ctx.nextTemp = ctx.nextLocal + countDeclarations(body)
	return ctx
}

func countDeclarations(stmts []ast.Statement) int {
	n := 0
	for _, s := range stmts {
		n += countDeclaration(s)
	}
	return n
}

func countDeclaration(s ast.Statement) int {
	switch s := s.(type) {
	case *ast.VarDeclaration:
		return 1
	case *ast.BlockStmt:
		return countDeclarations(s.Statements)
	case *ast.ConditionalStmt:
		n := countDeclaration(s.Then)
		if s.Else != nil {
			n += countDeclaration(s.Else)
		}
		return n
	case *ast.ForStmt:
		n := countDeclaration(s.Body)
		if s.Init != nil {
			n += countDeclaration(s.Init)
		}
		if s.Update != nil {
			n += countDeclaration(s.Update)
		}
		return n
	case *ast.ForeachStmt:
		return countDeclaration(s.Body)
	}
	return 0
}

// declare gives name the next local slot.
func (ctx *methodContext) declare(name string) int {
	slot := ctx.nextLocal
	ctx.locals = append(ctx.locals, local{name: name, slot: slot})
	ctx.nextLocal++
	return slot
}

// slotOf finds the most recent declaration of name.
func (ctx *methodContext) slotOf(name string) (int, bool) {
	for i := len(ctx.locals) - 1; i >= 0; i-- {
		if ctx.locals[i].name == name {
			return ctx.locals[i].slot, true
		}
	}
	return 0, false
}

// temp returns a fresh slot that no other expression uses.
func (ctx *methodContext) temp() int {
	slot := ctx.nextTemp
	ctx.nextTemp++
	return slot
}

// slotsUsed is the number of local slots the method touches.
func (ctx *methodContext) slotsUsed() int {
	if ctx.nextTemp > ctx.nextLocal {
		return ctx.nextTemp
	}
	return ctx.nextLocal
}

func (ctx *methodContext) emit(ins ...jasmin.Instruction) {
	ctx.code = append(ctx.code, ins...)
}

func (ctx *methodContext) jump(opcode, label string) {
	ctx.referenced[label] = true
	ctx.emit(jasmin.Op(opcode, label))
}

func (ctx *methodContext) mark(label string) {
	ctx.emit(jasmin.Mark(label))
}

// markIfUsed defines label only when some jump targets it.
func (ctx *methodContext) markIfUsed(label string) {
	if ctx.referenced[label] {
		ctx.mark(label)
	}
}

// terminated reports whether the code emitted so far cannot fall through.
func (ctx *methodContext) terminated() bool {
	if len(ctx.code) == 0 {
		return false
	}
	return ctx.code[len(ctx.code)-1].Terminal()
}

func (ctx *methodContext) pushLoop(breakLabel, continueLabel string) {
	ctx.loops = append(ctx.loops, loopFrame{breakLabel: breakLabel, continueLabel: continueLabel})
}

func (ctx *methodContext) popLoop() {
	ctx.loops = ctx.loops[:len(ctx.loops)-1]
}

func (ctx *methodContext) innermostLoop() (loopFrame, bool) {
	if len(ctx.loops) == 0 {
		return loopFrame{}, false
	}
	return ctx.loops[len(ctx.loops)-1], true
}
