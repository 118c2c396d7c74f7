package jasmin

import "strconv"

func slotOp(opcode string, slot int) Instruction {
	if slot <= 3 {
		return Op(opcode + "_" + strconv.Itoa(slot))
	}
	return Op(opcode, strconv.Itoa(slot))
}

func ALoad(slot int) Instruction  { return slotOp("aload", slot) }
func AStore(slot int) Instruction { return slotOp("astore", slot) }
func ILoad(slot int) Instruction  { return slotOp("iload", slot) }
func IStore(slot int) Instruction { return slotOp("istore", slot) }

func IInc(slot, delta int) Instruction {
	return Op("iinc", strconv.Itoa(slot), strconv.Itoa(delta))
}

// IntConst pushes v using the shortest encoding.
func IntConst(v int) Instruction {
	switch {
	case v == -1:
		return Op("iconst_m1")
	case v >= 0 && v <= 5:
		return Op("iconst_" + strconv.Itoa(v))
	case v >= -128 && v <= 127:
		return Op("bipush", strconv.Itoa(v))
	case v >= -32768 && v <= 32767:
		return Op("sipush", strconv.Itoa(v))
	}
	return Op("ldc", strconv.Itoa(v))
}

// LdcString pushes a string constant.
func LdcString(s string) Instruction {
	return Op("ldc", Quote(s))
}

// Slot extracts the local variable index of a load or store instruction.
func (i Instruction) Slot() (int, bool) {
	op := i.Opcode
	if len(op) > 2 && op[len(op)-2] == '_' {
		n, err := strconv.Atoi(op[len(op)-1:])
		return n, err == nil && isSlotOpcode(op[:len(op)-2])
	}
	if !isSlotOpcode(op) && op != "iinc" || len(i.Args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(i.Args[0])
	return n, err == nil
}

func isSlotOpcode(op string) bool {
	switch op {
	case "aload", "astore", "iload", "istore":
		return true
	}
	return false
}
