// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package asm

// Legalize rewrites every instruction whose operand combination violates
// an x86-64 constraint, shuttling one side through a scratch register,
// and prepends an AllocateStack(stackBytes) prologue instruction.
// %R10 is the convention for shuttling sources, %R11 for destinations;
// the two never collide because no single rule here needs both at once.
func Legalize(fn *Function, stackBytes int) {
	var legal []Instruction
	for _, instr := range fn.Instructions {
		legal = append(legal, legalizeOne(instr)...)
	}
	fn.Instructions = append([]Instruction{&AllocateStack{Bytes: stackBytes}}, legal...)
}

func legalizeOne(instr Instruction) []Instruction {
	switch instr := instr.(type) {
	case *Mov:
		if isMem(instr.Src) && isMem(instr.Dst) {
			return []Instruction{
				&Mov{Src: instr.Src, Dst: scratchSrc()},
				&Mov{Src: scratchSrc(), Dst: instr.Dst},
			}
		}

	case *BinaryOp:
		switch instr.Op {
		case Add, Sub:
			if isMem(instr.Src) && isMem(instr.Dst) {
				return []Instruction{
					&Mov{Src: instr.Src, Dst: scratchSrc()},
					&BinaryOp{Op: instr.Op, Src: scratchSrc(), Dst: instr.Dst},
				}
			}
		case Mul:
			// imul cannot write to memory, regardless of its source.
			if isMem(instr.Dst) {
				return []Instruction{
					&Mov{Src: instr.Dst, Dst: scratchDst()},
					&BinaryOp{Op: Mul, Src: instr.Src, Dst: scratchDst()},
					&Mov{Src: scratchDst(), Dst: instr.Dst},
				}
			}
		}

	case *Idiv:
		// idiv requires a register/memory operand, never an immediate.
		if isImm(instr.Operand) {
			return []Instruction{
				&Mov{Src: instr.Operand, Dst: scratchSrc()},
				&Idiv{Operand: scratchSrc()},
			}
		}

	case *Cmp:
		if isMem(instr.A) && isMem(instr.B) {
			return []Instruction{
				&Mov{Src: instr.A, Dst: scratchSrc()},
				&Cmp{A: scratchSrc(), B: instr.B},
			}
		}
		// The second operand of cmp can never be an immediate.
		if isImm(instr.B) {
			return []Instruction{
				&Mov{Src: instr.B, Dst: scratchDst()},
				&Cmp{A: instr.A, B: scratchDst()},
			}
		}
	}
	return []Instruction{instr}
}

func isMem(op Operand) bool {
	_, ok := op.(*Stack)
	return ok
}

func isImm(op Operand) bool {
	_, ok := op.(*Imm)
	return ok
}

func scratchSrc() Operand { return &Reg{Name: R10} }
func scratchDst() Operand { return &Reg{Name: R11} }
