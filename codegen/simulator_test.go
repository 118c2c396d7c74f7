package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"sophia-compiler/jasmin"
)

// machine interprets generated units closely enough to observe program
// behavior in tests. It understands the runtime support classes natively.
// out holds one line per PrintStream.print call.
type machine struct {
	classes map[string]*jasmin.Class
	out     strings.Builder
	steps   int
}

type object struct {
	class  string
	fields map[string]interface{}
	value  interface{}
	items  []interface{}
	list   *object
}

func newMachine(units map[string]*jasmin.Class) *machine {
	return &machine{classes: units}
}

// runMain executes the static entry point of class.
func (vm *machine) runMain(class string) error {
	c, ok := vm.classes[class]
	if !ok {
		return fmt.Errorf("no class %s", class)
	}
	m, ok := c.Method("main", "([Ljava/lang/String;)V")
	if !ok {
		return fmt.Errorf("%s has no main", class)
	}
	_, err := vm.exec(c, m, []interface{}{nil})
	return err
}

// newInstance runs the no-argument constructor of class.
func (vm *machine) newInstance(class string) (*object, error) {
	obj := &object{class: class, fields: map[string]interface{}{}}
	if err := vm.construct(class, obj, "()V", nil); err != nil {
		return nil, err
	}
	return obj, nil
}

// call runs method name on receiver the way a function pointer would.
func (vm *machine) call(receiver *object, name string, args ...interface{}) (interface{}, error) {
	for cname := receiver.class; cname != objectClass; {
		c, ok := vm.classes[cname]
		if !ok {
			break
		}
		for _, m := range c.Methods {
			if m.Name == name && !m.Static && argCount(m.Descriptor) == len(args) {
				return vm.exec(c, m, append([]interface{}{receiver}, args...))
			}
		}
		cname = c.Super
	}
	return nil, fmt.Errorf("no method %s on %s", name, receiver.class)
}

func (vm *machine) construct(class string, obj *object, desc string, args []interface{}) error {
	if class == objectClass {
		return nil
	}
	c, ok := vm.classes[class]
	if !ok {
		return fmt.Errorf("no class %s", class)
	}
	m, ok := c.Method("<init>", desc)
	if !ok {
		return fmt.Errorf("%s has no <init>%s", class, desc)
	}
	_, err := vm.exec(c, m, append([]interface{}{obj}, args...))
	return err
}

func argCount(desc string) int {
	n := 0
	for i := 1; i < len(desc) && desc[i] != ')'; i++ {
		for desc[i] == '[' {
			i++
		}
		if desc[i] == 'L' {
			i = strings.IndexByte(desc[i:], ';') + i
		}
		n++
	}
	return n
}

// splitMember turns Owner/name(desc) into its parts.
func splitMember(ref string) (owner, name, desc string) {
	if p := strings.IndexByte(ref, '('); p >= 0 {
		ref, desc = ref[:p], ref[p:]
	}
	slash := strings.LastIndexByte(ref, '/')
	return ref[:slash], ref[slash+1:], desc
}

func asInt(v interface{}) int {
	switch v := v.(type) {
	case int:
		return v
	case *object:
		if i, ok := v.value.(int); ok {
			return i
		}
	}
	panic(fmt.Sprintf("not an int: %#v", v))
}

func asString(v interface{}) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case *object:
		if s, ok := v.value.(string); ok && v.class == stringClass {
			return s, true
		}
	}
	return "", false
}

func copyList(src *object) *object {
	backing := &object{class: arrayListClass}
	for _, item := range src.list.items {
		if nested, ok := item.(*object); ok && nested.class == listClass {
			item = copyList(nested)
		}
		backing.items = append(backing.items, item)
	}
	return &object{class: listClass, list: backing}
}

func (vm *machine) exec(class *jasmin.Class, m *jasmin.Method, args []interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s.%s: %v", class.Name, m.Name, r)
		}
	}()

	labels := map[string]int{}
	for i, in := range m.Code {
		if in.IsLabel() {
			labels[in.Label] = i
		}
	}
	locals := make([]interface{}, m.LocalsLimit)
	copy(locals, args)
	var stack []interface{}
	push := func(v interface{}) { stack = append(stack, v) }
	pop := func() interface{} {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	popN := func(n int) []interface{} {
		vs := append([]interface{}(nil), stack[len(stack)-n:]...)
		stack = stack[:len(stack)-n]
		return vs
	}
	branch := func(taken bool, in jasmin.Instruction) (int, bool) {
		if !taken {
			return 0, false
		}
		target, ok := labels[in.Args[0]]
		if !ok {
			panic("undefined label " + in.Args[0])
		}
		return target, true
	}

	for pc := 0; pc < len(m.Code); pc++ {
		vm.steps++
		if vm.steps > 1_000_000 {
			return nil, fmt.Errorf("step limit exceeded")
		}
		in := m.Code[pc]
		if in.IsLabel() {
			continue
		}
		op := in.Opcode
		if base := strings.SplitN(op, "_", 2)[0]; base != op && (base == "aload" || base == "astore" || base == "iload" || base == "istore") {
			op = base
		}

		jumpTo, jumped := 0, false
		switch op {
		case "aload", "iload":
			slot, _ := in.Slot()
			push(locals[slot])
		case "astore", "istore":
			slot, _ := in.Slot()
			locals[slot] = pop()
		case "iinc":
			slot, _ := in.Slot()
			delta, _ := strconv.Atoi(in.Args[1])
			locals[slot] = asInt(locals[slot]) + delta
		case "iconst_m1":
			push(-1)
		case "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4", "iconst_5":
			push(int(op[len(op)-1] - '0'))
		case "bipush", "sipush":
			v, _ := strconv.Atoi(in.Args[0])
			push(v)
		case "ldc":
			if strings.HasPrefix(in.Args[0], `"`) {
				s, err := jasmin.Unquote(in.Args[0])
				if err != nil {
					return nil, err
				}
				push(s)
			} else {
				v, _ := strconv.Atoi(in.Args[0])
				push(v)
			}
		case "aconst_null":
			push(nil)
		case "dup":
			push(stack[len(stack)-1])
		case "pop":
			pop()
		case "swap":
			b, a := pop(), pop()
			push(b)
			push(a)

		case "iadd", "isub", "imul", "idiv", "irem", "iand", "ior":
			b, a := asInt(pop()), asInt(pop())
			push(map[string]func() int{
				"iadd": func() int { return a + b },
				"isub": func() int { return a - b },
				"imul": func() int { return a * b },
				"idiv": func() int { return a / b },
				"irem": func() int { return a % b },
				"iand": func() int { return a & b },
				"ior":  func() int { return a | b },
			}[op]())
		case "ineg":
			push(-asInt(pop()))

		case "goto":
			jumpTo, jumped = branch(true, in)
		case "ifeq":
			jumpTo, jumped = branch(asInt(pop()) == 0, in)
		case "ifne":
			jumpTo, jumped = branch(asInt(pop()) != 0, in)
		case "if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpgt", "if_icmpge", "if_icmple":
			b, a := asInt(pop()), asInt(pop())
			taken := map[string]bool{
				"if_icmpeq": a == b, "if_icmpne": a != b, "if_icmplt": a < b,
				"if_icmpgt": a > b, "if_icmpge": a >= b, "if_icmple": a <= b,
			}[op]
			jumpTo, jumped = branch(taken, in)
		case "if_acmpeq", "if_acmpne":
			b, a := pop(), pop()
			jumpTo, jumped = branch((a == b) == (op == "if_acmpeq"), in)

		case "new":
			push(&object{class: in.Args[0], fields: map[string]interface{}{}})
		case "checkcast":
			v := pop()
			if obj, ok := v.(*object); ok && !vm.isInstance(obj.class, in.Args[0]) {
				return nil, fmt.Errorf("checkcast %s on %s", in.Args[0], obj.class)
			}
			if _, ok := v.(string); ok && in.Args[0] != stringClass {
				return nil, fmt.Errorf("checkcast %s on string", in.Args[0])
			}
			push(v)
		case "getfield":
			obj := pop().(*object)
			push(obj.fields[in.Args[0]])
		case "putfield":
			v := pop()
			obj := pop().(*object)
			obj.fields[in.Args[0]] = v
		case "getstatic":
			push("System.out")

		case "invokestatic":
			owner, name, _ := splitMember(in.Args[0])
			if owner != "java/util/Objects" || name != "equals" {
				return nil, fmt.Errorf("unknown static %s", in.Args[0])
			}
			b, a := pop(), pop()
			as, aok := asString(a)
			bs, bok := asString(b)
			push(map[bool]int{true: 1, false: 0}[(aok && bok && as == bs) || (a == nil && b == nil)])

		case "invokespecial":
			if err := vm.invokeSpecial(in.Args[0], pop, popN); err != nil {
				return nil, err
			}
		case "invokevirtual":
			if err := vm.invokeVirtual(in.Args[0], push, pop, popN); err != nil {
				return nil, err
			}

		case "return":
			return nil, nil
		case "areturn":
			return pop(), nil
		default:
			return nil, fmt.Errorf("unsupported opcode %s", in.Opcode)
		}
		if jumped {
			pc = jumpTo
		}
	}
	return nil, fmt.Errorf("fell off the end of %s.%s", class.Name, m.Name)
}

func (vm *machine) isInstance(class, target string) bool {
	for c := class; ; {
		if c == target || target == objectClass {
			return true
		}
		unit, ok := vm.classes[c]
		if !ok {
			return false
		}
		c = unit.Super
	}
}

func (vm *machine) invokeSpecial(ref string, pop func() interface{}, popN func(int) []interface{}) error {
	owner, name, desc := splitMember(ref)
	args := popN(argCount(desc))
	obj := pop().(*object)
	if name != "<init>" {
		return fmt.Errorf("unsupported invokespecial %s", ref)
	}
	switch owner {
	case integerClass, booleanClass:
		obj.value = args[0]
	case stringClass:
		s, _ := asString(args[0])
		obj.value = s
	case arrayListClass:
		obj.items = nil
	case listClass:
		src := args[0].(*object)
		if src.class == listClass {
			obj.list = copyList(src).list
		} else {
			obj.list = src
		}
	case fptrClass:
		obj.fields["instance"] = args[0]
		obj.fields["methodName"] = args[1]
	default:
		return vm.construct(owner, obj, desc, args)
	}
	return nil
}

func (vm *machine) invokeVirtual(ref string, push func(interface{}), pop func() interface{}, popN func(int) []interface{}) error {
	owner, name, desc := splitMember(ref)
	args := popN(argCount(desc))
	receiver := pop()
	switch owner + "." + name {
	case "java/io/PrintStream.print":
		switch desc {
		case "(I)V":
			fmt.Fprintf(&vm.out, "%d\n", asInt(args[0]))
		case "(Ljava/lang/String;)V":
			s, _ := asString(args[0])
			fmt.Fprintf(&vm.out, "%s\n", s)
		default:
			return fmt.Errorf("no PrintStream.print%s", desc)
		}
	case integerClass + ".intValue", booleanClass + ".booleanValue":
		push(asInt(receiver))
	case arrayListClass + ".add":
		list := receiver.(*object)
		list.items = append(list.items, args[0])
		push(1)
	case listClass + ".getElement":
		push(receiver.(*object).list.items[asInt(args[0])])
	case listClass + ".setElement":
		receiver.(*object).list.items[asInt(args[0])] = args[1]
	case listClass + ".getSize":
		push(len(receiver.(*object).list.items))
	case fptrClass + ".invoke":
		fp := receiver.(*object)
		result, err := vm.call(fp.fields["instance"].(*object), fp.fields["methodName"].(string), args[0].(*object).items...)
		if err != nil {
			return err
		}
		push(result)
	default:
		return fmt.Errorf("unsupported invokevirtual %s", ref)
	}
	return nil
}
