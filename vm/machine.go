// Package vm implements the stack-based virtual machine: a value stack of
// machine words, a byte-addressable memory region carrying a frame stack
// carved from its low end plus the initialized/uninitialized data image
// above it, and an instruction dispatcher over the IR opcode set.
package vm

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"

	"github.com/avanasov/stackc/ir"
)

// WordSize is the machine word width in bytes.
const WordSize = 8

// Machine is the interpreter: its memory, stacks, registers, and a
// borrowed reference to the program it executes.
type Machine struct {
	prog *ir.Program

	memory    []byte
	dataStart int

	valueStack []uint64

	ip        int
	fp1       int
	fp2sp     int
	fp2bp     int
	callDepth int

	stdout *bufio.Writer
	stdin  io.Reader

	preStep      PreStepFunc
	stepOverAt   int
	suppressStep bool

	halted bool
}

// New builds a Machine for prog with a frame stack of frameStackSize bytes.
func New(prog *ir.Program, frameStackSize int, stdout io.Writer, stdin io.Reader) *Machine {
	dataStart := frameStackSize
	mem := make([]byte, frameStackSize+len(prog.InitData)+prog.UninitDataSize)
	copy(mem[dataStart:], prog.InitData)

	m := &Machine{
		prog:      prog,
		memory:    mem,
		dataStart: dataStart,
		fp2sp:     dataStart,
		fp2bp:     dataStart,
		ip:        prog.EntryOffset,
		stdout:    bufio.NewWriter(stdout),
		stdin:     stdin,
	}
	// Seed the sentinel return address for the outermost call; Return halts
	// on zero call depth regardless, so this is never actually popped.
	m.valueStack = append(m.valueStack, uint64(prog.Len()))
	return m
}

// SetPreStep installs a debugger pre-step callback.
func (m *Machine) SetPreStep(fn PreStepFunc) {
	m.preStep = fn
}

// DataStart returns the memory offset at which the initialized/uninitialized
// data image begins, i.e. one past the end of the frame stack region. A
// debugger combines this with an ir.Program's InitData length and a symbol
// table's variable offsets to resolve a variable name to an absolute address.
func (m *Machine) DataStart() int {
	return m.dataStart
}

// Run executes until halt or a runtime error.
func (m *Machine) Run() error {
	defer m.stdout.Flush()
	for !m.halted {
		if err := m.step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) step() error {
	if m.ip < 0 || m.ip >= m.prog.Len() {
		m.halted = true
		return nil
	}
	instr := m.prog.Instructions[m.ip]

	if m.suppressStep && m.callDepth <= m.stepOverAt {
		m.suppressStep = false
	}
	if m.preStep != nil && !m.suppressStep {
		view := View{
			IP: m.ip, Instr: instr, ValueStack: m.valueStack, Memory: m.memory,
			FP2SP: m.fp2sp, FP2BP: m.fp2bp, CallDepth: m.callDepth,
		}
		switch m.preStep(view) {
		case Quit:
			m.halted = true
			return nil
		case StepOver:
			m.stepOverAt = m.callDepth
			m.suppressStep = true
		}
	}

	return m.exec(instr)
}

func (m *Machine) push(v uint64)  { m.valueStack = append(m.valueStack, v) }
func (m *Machine) pop(instr ir.Instruction) (uint64, error) {
	if len(m.valueStack) == 0 {
		return 0, newRuntimeError(instr.Location, instr.Op, "value stack underflow")
	}
	v := m.valueStack[len(m.valueStack)-1]
	m.valueStack = m.valueStack[:len(m.valueStack)-1]
	return v, nil
}

func (m *Machine) checkRange(instr ir.Instruction, addr, length int) error {
	if addr < m.fp2sp || addr+length > len(m.memory) || length < 0 {
		return newRuntimeError(instr.Location, instr.Op, "memory access out of range [%d,%d)", addr, addr+length)
	}
	return nil
}

func (m *Machine) exec(instr ir.Instruction) error {
	ip := m.ip
	advance := true

	switch instr.Op {
	case ir.Nop:
		// no effect

	case ir.Pop:
		if _, err := m.pop(instr); err != nil {
			return err
		}
	case ir.Dup:
		if len(m.valueStack) == 0 {
			return newRuntimeError(instr.Location, instr.Op, "value stack underflow")
		}
		m.push(m.valueStack[len(m.valueStack)-1])

	case ir.PushInt:
		m.push(uint64(instr.Imm))
	case ir.PushInitDataPointer:
		m.push(uint64(m.dataStart) + uint64(instr.Imm))
	case ir.PushUninitDataPointer:
		m.push(uint64(m.dataStart) + uint64(len(m.prog.InitData)) + uint64(instr.Imm))

	case ir.AllocOnStack:
		m.fp2sp -= int(instr.Imm)
		if m.fp2sp < 0 {
			return newRuntimeError(instr.Location, instr.Op, "frame-stack underflow")
		}
	case ir.FreeFromStack:
		m.fp2sp += int(instr.Imm)
		if m.fp2sp > m.dataStart {
			return newRuntimeError(instr.Location, instr.Op, "frame-stack overflow")
		}

	case ir.StackTop:
		m.push(uint64(int64(m.fp2sp) + instr.Imm))
	case ir.Frame:
		m.push(uint64(int64(m.fp2bp) + instr.Imm))

	case ir.SaveFrame:
		m.fp2sp -= WordSize
		if m.fp2sp < 0 {
			return newRuntimeError(instr.Location, instr.Op, "frame-stack underflow")
		}
		binary.LittleEndian.PutUint64(m.memory[m.fp2sp:], uint64(m.fp2bp))
		m.fp2bp = m.fp2sp
	case ir.RestoreFrame:
		if err := m.checkRange(instr, m.fp2bp, WordSize); err != nil {
			return err
		}
		old := binary.LittleEndian.Uint64(m.memory[m.fp2bp:])
		m.fp2sp = m.fp2bp + WordSize
		m.fp2bp = int(old)

	case ir.ArgOntoFrame:
		v, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.fp2sp -= WordSize
		if m.fp2sp < 0 {
			return newRuntimeError(instr.Location, instr.Op, "frame-stack underflow")
		}
		binary.LittleEndian.PutUint64(m.memory[m.fp2sp:], v)
	case ir.ArgFromFrame:
		if err := m.checkRange(instr, m.fp2sp, WordSize); err != nil {
			return err
		}
		v := binary.LittleEndian.Uint64(m.memory[m.fp2sp:])
		m.fp2sp += WordSize
		m.push(v)

	case ir.Store8, ir.Store16, ir.Store32, ir.Store64:
		if err := m.execStore(instr); err != nil {
			return err
		}
	case ir.LoadU8, ir.LoadU16, ir.LoadU32, ir.LoadS8, ir.LoadS16, ir.LoadS32, ir.Load64:
		if err := m.execLoad(instr); err != nil {
			return err
		}

	case ir.MemCopy:
		if err := m.execMemCopy(instr); err != nil {
			return err
		}
	case ir.MemEq:
		if err := m.execMemEq(instr); err != nil {
			return err
		}

	case ir.NatLt, ir.NatLe, ir.NatGt, ir.NatGe, ir.NatEq,
		ir.NatAdd, ir.NatSub, ir.NatMul, ir.NatDiv, ir.NatMod,
		ir.IntLt, ir.IntLe, ir.IntGt, ir.IntGe, ir.IntMul, ir.IntMod:
		if err := m.execBinaryArith(instr); err != nil {
			return err
		}
	case ir.IntNeg:
		a, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.push(uint64(-int64(a)))

	case ir.Nat64ToF32:
		a, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.push(uint64(math.Float32bits(float32(a))))
	case ir.Int64ToF32:
		a, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.push(uint64(math.Float32bits(float32(int64(a)))))
	case ir.F32ToNat64:
		a, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.push(uint64(math.Float32frombits(uint32(a))))
	case ir.F32ToInt64:
		a, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.push(uint64(int64(math.Float32frombits(uint32(a)))))

	case ir.F32Mul, ir.F32Div, ir.F32Add, ir.F32Lt, ir.F32Le, ir.F32Gt, ir.F32Ge:
		if err := m.execFloatBinary(instr); err != nil {
			return err
		}
	case ir.F32Neg:
		a, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.push(uint64(math.Float32bits(-math.Float32frombits(uint32(a)))))

	case ir.LogicalNot:
		a, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.push(boolWord(a == 0))
	case ir.LogicalAnd:
		b, a, err := m.pop2(instr)
		if err != nil {
			return err
		}
		m.push(boolWord(a != 0 && b != 0))
	case ir.LogicalOr:
		b, a, err := m.pop2(instr)
		if err != nil {
			return err
		}
		m.push(boolWord(a != 0 || b != 0))

	case ir.BitOr:
		b, a, err := m.pop2(instr)
		if err != nil {
			return err
		}
		m.push(a | b)
	case ir.BitAnd:
		b, a, err := m.pop2(instr)
		if err != nil {
			return err
		}
		m.push(a & b)
	case ir.BitXor:
		b, a, err := m.pop2(instr)
		if err != nil {
			return err
		}
		m.push(a ^ b)
	case ir.ShiftLeft:
		b, a, err := m.pop2(instr)
		if err != nil {
			return err
		}
		m.push(a << (b & 63))
	case ir.ShiftRight:
		b, a, err := m.pop2(instr)
		if err != nil {
			return err
		}
		m.push(a >> (b & 63))

	case ir.Jump:
		m.ip = int(instr.Imm)
		advance = false
	case ir.CondJump:
		cond, err := m.pop(instr)
		if err != nil {
			return err
		}
		if cond != 0 {
			m.ip = int(instr.Imm)
			advance = false
		}

	case ir.PrintString:
		if err := m.execPrintString(instr); err != nil {
			return err
		}
	case ir.PrintInt:
		v, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.stdout.WriteString(strconv.FormatUint(v, 10))
		m.stdout.Flush()
	case ir.PrintBool:
		v, err := m.pop(instr)
		if err != nil {
			return err
		}
		if v != 0 {
			m.stdout.WriteString("true")
		} else {
			m.stdout.WriteString("false")
		}
		m.stdout.Flush()

	case ir.ReadInput:
		if err := m.execReadInput(instr); err != nil {
			return err
		}

	case ir.Return:
		if m.callDepth == 0 {
			m.halted = true
			advance = false
			break
		}
		addr, err := m.pop(instr)
		if err != nil {
			return err
		}
		m.callDepth--
		m.ip = int(addr)
		advance = false

	case ir.InternalCall:
		m.push(uint64(ip + 1))
		m.callDepth++
		m.ip = int(instr.Imm)
		advance = false

	case ir.ExternalCall, ir.SysCall:
		return newRuntimeError(instr.Location, instr.Op, "external/syscall instructions are rejected in interpret mode")

	default:
		return newRuntimeError(instr.Location, instr.Op, "unsupported instruction")
	}

	if advance {
		m.ip = ip + 1
	}
	return nil
}

func (m *Machine) pop2(instr ir.Instruction) (b, a uint64, err error) {
	b, err = m.pop(instr)
	if err != nil {
		return 0, 0, err
	}
	a, err = m.pop(instr)
	if err != nil {
		return 0, 0, err
	}
	return b, a, nil
}

func boolWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) execStore(instr ir.Instruction) error {
	addr64, err := m.pop(instr)
	if err != nil {
		return err
	}
	val, err := m.pop(instr)
	if err != nil {
		return err
	}
	addr := int(addr64)

	var width int
	switch instr.Op {
	case ir.Store8:
		width = 1
	case ir.Store16:
		return newRuntimeError(instr.Location, instr.Op, "Store16 is not yet implemented")
	case ir.Store32:
		width = 4
	case ir.Store64:
		width = 8
	}
	if err := m.checkRange(instr, addr, width); err != nil {
		return err
	}
	switch width {
	case 1:
		m.memory[addr] = byte(val)
	case 4:
		binary.LittleEndian.PutUint32(m.memory[addr:], uint32(val))
	case 8:
		binary.LittleEndian.PutUint64(m.memory[addr:], val)
	}
	return nil
}

func (m *Machine) execLoad(instr ir.Instruction) error {
	addr64, err := m.pop(instr)
	if err != nil {
		return err
	}
	addr := int(addr64)

	switch instr.Op {
	case ir.LoadU8:
		if err := m.checkRange(instr, addr, 1); err != nil {
			return err
		}
		m.push(uint64(m.memory[addr]))
	case ir.LoadU16:
		return newRuntimeError(instr.Location, instr.Op, "LoadU16 is not yet implemented")
	case ir.LoadU32:
		if err := m.checkRange(instr, addr, 4); err != nil {
			return err
		}
		m.push(uint64(binary.LittleEndian.Uint32(m.memory[addr:])))
	case ir.LoadS8:
		if err := m.checkRange(instr, addr, 1); err != nil {
			return err
		}
		m.push(uint64(int64(int8(m.memory[addr]))))
	case ir.LoadS16:
		return newRuntimeError(instr.Location, instr.Op, "LoadS16 is not yet implemented")
	case ir.LoadS32:
		if err := m.checkRange(instr, addr, 4); err != nil {
			return err
		}
		m.push(uint64(int64(int32(binary.LittleEndian.Uint32(m.memory[addr:])))))
	case ir.Load64:
		if err := m.checkRange(instr, addr, 8); err != nil {
			return err
		}
		m.push(binary.LittleEndian.Uint64(m.memory[addr:]))
	}
	return nil
}

func (m *Machine) execMemCopy(instr ir.Instruction) error {
	n, err := m.pop(instr)
	if err != nil {
		return err
	}
	dst, err := m.pop(instr)
	if err != nil {
		return err
	}
	src, err := m.pop(instr)
	if err != nil {
		return err
	}
	length := int(n)
	if err := m.checkRange(instr, int(src), length); err != nil {
		return err
	}
	if err := m.checkRange(instr, int(dst), length); err != nil {
		return err
	}
	copy(m.memory[int(dst):int(dst)+length], m.memory[int(src):int(src)+length])
	return nil
}

func (m *Machine) execMemEq(instr ir.Instruction) error {
	n, err := m.pop(instr)
	if err != nil {
		return err
	}
	dst, err := m.pop(instr)
	if err != nil {
		return err
	}
	src, err := m.pop(instr)
	if err != nil {
		return err
	}
	length := int(n)
	if err := m.checkRange(instr, int(src), length); err != nil {
		return err
	}
	if err := m.checkRange(instr, int(dst), length); err != nil {
		return err
	}
	eq := true
	for i := 0; i < length; i++ {
		if m.memory[int(src)+i] != m.memory[int(dst)+i] {
			eq = false
			break
		}
	}
	m.push(boolWord(eq))
	return nil
}

func (m *Machine) execBinaryArith(instr ir.Instruction) error {
	b, a, err := m.pop2(instr)
	if err != nil {
		return err
	}
	switch instr.Op {
	case ir.NatLt:
		m.push(boolWord(a < b))
	case ir.NatLe:
		m.push(boolWord(a <= b))
	case ir.NatGt:
		m.push(boolWord(a > b))
	case ir.NatGe:
		m.push(boolWord(a >= b))
	case ir.NatEq:
		m.push(boolWord(a == b))
	case ir.NatAdd:
		m.push(a + b)
	case ir.NatSub:
		m.push(a - b)
	case ir.NatMul:
		m.push(a * b)
	case ir.NatDiv:
		if b == 0 {
			return newRuntimeError(instr.Location, instr.Op, "division by zero")
		}
		m.push(a / b)
	case ir.NatMod:
		if b == 0 {
			return newRuntimeError(instr.Location, instr.Op, "division by zero")
		}
		m.push(a % b)
	case ir.IntLt:
		m.push(boolWord(int64(a) < int64(b)))
	case ir.IntLe:
		m.push(boolWord(int64(a) <= int64(b)))
	case ir.IntGt:
		m.push(boolWord(int64(a) > int64(b)))
	case ir.IntGe:
		m.push(boolWord(int64(a) >= int64(b)))
	case ir.IntMul:
		m.push(uint64(int64(a) * int64(b)))
	case ir.IntMod:
		if int64(b) == 0 {
			return newRuntimeError(instr.Location, instr.Op, "division by zero")
		}
		m.push(uint64(int64(a) % int64(b)))
	}
	return nil
}

func (m *Machine) execFloatBinary(instr ir.Instruction) error {
	b, a, err := m.pop2(instr)
	if err != nil {
		return err
	}
	af := math.Float32frombits(uint32(a))
	bf := math.Float32frombits(uint32(b))
	switch instr.Op {
	case ir.F32Mul:
		m.push(uint64(math.Float32bits(af * bf)))
	case ir.F32Div:
		if bf == 0 {
			return newRuntimeError(instr.Location, instr.Op, "division by zero")
		}
		m.push(uint64(math.Float32bits(af / bf)))
	case ir.F32Add:
		m.push(uint64(math.Float32bits(af + bf)))
	case ir.F32Lt:
		m.push(boolWord(af < bf))
	case ir.F32Le:
		m.push(boolWord(af <= bf))
	case ir.F32Gt:
		m.push(boolWord(af > bf))
	case ir.F32Ge:
		m.push(boolWord(af >= bf))
	}
	return nil
}

// execPrintString consumes the two-word {length, pointer} descriptor left on
// the value stack by string-literal lowering (pointer on top, length
// beneath) and writes the raw bytes at that address to stdout.
func (m *Machine) execPrintString(instr ir.Instruction) error {
	ptr, err := m.pop(instr)
	if err != nil {
		return err
	}
	length, err := m.pop(instr)
	if err != nil {
		return err
	}
	if err := m.checkRange(instr, int(ptr), int(length)); err != nil {
		return err
	}
	m.stdout.Write(m.memory[int(ptr) : int(ptr)+int(length)])
	m.stdout.Flush()
	return nil
}

func (m *Machine) execReadInput(instr ir.Instruction) error {
	length, err := m.pop(instr)
	if err != nil {
		return err
	}
	ptr, err := m.pop(instr)
	if err != nil {
		return err
	}
	if err := m.checkRange(instr, int(ptr), int(length)); err != nil {
		return err
	}
	n, _ := m.stdin.Read(m.memory[int(ptr) : int(ptr)+int(length)])
	m.push(uint64(n))
	return nil
}
