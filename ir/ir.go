// Package ir defines the linear instruction stream the resolver/compiler
// emits and the virtual machine executes: a flat, append-only sequence of
// typed instructions plus the static data image. A handful of positions are
// patched after emission once a forward jump's target becomes known.
package ir

import "github.com/avanasov/stackc/diag"

// Op is the closed enumeration of instruction kinds.
type Op int

const (
	Nop Op = iota
	Pop
	Dup
	PushInt
	PushInitDataPointer
	PushUninitDataPointer
	AllocOnStack
	FreeFromStack
	StackTop
	SaveFrame
	RestoreFrame
	Frame
	ArgOntoFrame
	ArgFromFrame
	Store8
	Store16
	Store32
	Store64
	LoadU8
	LoadU16
	LoadU32
	LoadS8
	LoadS16
	LoadS32
	Load64
	MemCopy
	MemEq
	NatLt
	NatLe
	NatGt
	NatGe
	NatEq
	NatAdd
	NatSub
	NatMul
	NatDiv
	NatMod
	IntLt
	IntLe
	IntGt
	IntGe
	IntNeg
	IntMul
	IntMod
	Nat64ToF32
	Int64ToF32
	F32ToNat64
	F32ToInt64
	F32Mul
	F32Div
	F32Add
	F32Lt
	F32Le
	F32Gt
	F32Ge
	F32Neg
	LogicalNot
	LogicalAnd
	LogicalOr
	BitOr
	BitAnd
	BitXor
	ShiftLeft
	ShiftRight
	Jump
	CondJump
	PrintString
	PrintInt
	PrintBool
	ReadInput
	Return
	InternalCall
	ExternalCall
	SysCall
)

var opNames = map[Op]string{
	Nop: "Nop", Pop: "Pop", Dup: "Dup", PushInt: "PushInt",
	PushInitDataPointer: "PushInitDataPointer", PushUninitDataPointer: "PushUninitDataPointer",
	AllocOnStack: "AllocOnStack", FreeFromStack: "FreeFromStack", StackTop: "StackTop",
	SaveFrame: "SaveFrame", RestoreFrame: "RestoreFrame", Frame: "Frame",
	ArgOntoFrame: "ArgOntoFrame", ArgFromFrame: "ArgFromFrame",
	Store8: "Store8", Store16: "Store16", Store32: "Store32", Store64: "Store64",
	LoadU8: "LoadU8", LoadU16: "LoadU16", LoadU32: "LoadU32",
	LoadS8: "LoadS8", LoadS16: "LoadS16", LoadS32: "LoadS32", Load64: "Load64",
	MemCopy: "MemCopy", MemEq: "MemEq",
	NatLt: "NatLt", NatLe: "NatLe", NatGt: "NatGt", NatGe: "NatGe", NatEq: "NatEq",
	NatAdd: "NatAdd", NatSub: "NatSub", NatMul: "NatMul", NatDiv: "NatDiv", NatMod: "NatMod",
	IntLt: "IntLt", IntLe: "IntLe", IntGt: "IntGt", IntGe: "IntGe",
	IntNeg: "IntNeg", IntMul: "IntMul", IntMod: "IntMod",
	Nat64ToF32: "Nat64ToF32", Int64ToF32: "Int64ToF32", F32ToNat64: "F32ToNat64", F32ToInt64: "F32ToInt64",
	F32Mul: "F32Mul", F32Div: "F32Div", F32Add: "F32Add",
	F32Lt: "F32Lt", F32Le: "F32Le", F32Gt: "F32Gt", F32Ge: "F32Ge", F32Neg: "F32Neg",
	LogicalNot: "LogicalNot", LogicalAnd: "LogicalAnd", LogicalOr: "LogicalOr",
	BitOr: "BitOr", BitAnd: "BitAnd", BitXor: "BitXor", ShiftLeft: "ShiftLeft", ShiftRight: "ShiftRight",
	Jump: "Jump", CondJump: "CondJump",
	PrintString: "PrintString", PrintInt: "PrintInt", PrintBool: "PrintBool", ReadInput: "ReadInput",
	Return: "Return", InternalCall: "InternalCall", ExternalCall: "ExternalCall", SysCall: "SysCall",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "Op(?)"
}

// Instruction is one IR opcode plus its operands and source anchor.
// Operand fields are interpreted according to Op; unused fields are zero.
type Instruction struct {
	Op       Op
	Location diag.Location

	// Imm is used by PushInt (value), PushInitDataPointer/PushUninitDataPointer
	// (byte offset), AllocOnStack/FreeFromStack (size), StackTop/Frame (signed
	// offset), Jump/CondJump/InternalCall (target instruction index).
	Imm int64

	// Str names the external symbol for ExternalCall/SysCall.
	Str string
}

// Program is the output of lowering: the instruction stream plus the data
// image it addresses into. EntryOffset is the first instruction of the
// procedure named "главная" by convention (see compiler.EntryProcName).
type Program struct {
	Instructions   []Instruction
	InitData       []byte
	UninitDataSize int
	EntryOffset    int
}

// Len reports the current instruction count; also the sentinel "just past
// the end" target used as the return address for the outermost call.
func (p *Program) Len() int { return len(p.Instructions) }

// Emit appends an instruction and returns its index.
func (p *Program) Emit(op Op, loc diag.Location) int {
	p.Instructions = append(p.Instructions, Instruction{Op: op, Location: loc})
	return len(p.Instructions) - 1
}

// EmitImm appends an instruction carrying an immediate operand.
func (p *Program) EmitImm(op Op, imm int64, loc diag.Location) int {
	p.Instructions = append(p.Instructions, Instruction{Op: op, Imm: imm, Location: loc})
	return len(p.Instructions) - 1
}

// EmitStr appends an instruction carrying a symbol-name operand
// (ExternalCall/SysCall).
func (p *Program) EmitStr(op Op, name string, loc diag.Location) int {
	p.Instructions = append(p.Instructions, Instruction{Op: op, Str: name, Location: loc})
	return len(p.Instructions) - 1
}

// Patch overwrites an already-emitted instruction in place, used to resolve
// forward jumps once their target index is known.
func (p *Program) Patch(index int, op Op, imm int64) {
	p.Instructions[index].Op = op
	p.Instructions[index].Imm = imm
}

// AppendInitData appends bytes to the initialized-data image and returns the
// offset at which they were placed.
func (p *Program) AppendInitData(b []byte) int {
	off := len(p.InitData)
	p.InitData = append(p.InitData, b...)
	return off
}
