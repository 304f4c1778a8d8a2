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

// ReplacePseudos visits every Pseudo operand in fn and replaces it with a
// Stack slot, interning each distinct identifier to a positive multiple
// of 4 bytes: the first gets offset 4, each subsequent distinct
// identifier gets max_current_offset + 4. It returns the maximum offset
// assigned - the total stack bytes needed for locals and temporaries.
func ReplacePseudos(fn *Function) int {
	offsets := make(map[string]int)
	max := 0
	intern := func(name string) int {
		if off, ok := offsets[name]; ok {
			return off
		}
		max += 4
		offsets[name] = max
		return max
	}

	for _, instr := range fn.Instructions {
		replaceOperandsIn(instr, intern)
	}
	return max
}

func replaceOperand(op Operand, intern func(string) int) Operand {
	if p, ok := op.(*Pseudo); ok {
		return &Stack{Offset: intern(p.Name)}
	}
	return op
}

func replaceOperandsIn(instr Instruction, intern func(string) int) {
	switch instr := instr.(type) {
	case *Mov:
		instr.Src = replaceOperand(instr.Src, intern)
		instr.Dst = replaceOperand(instr.Dst, intern)
	case *UnaryOp:
		instr.Operand = replaceOperand(instr.Operand, intern)
	case *BinaryOp:
		instr.Src = replaceOperand(instr.Src, intern)
		instr.Dst = replaceOperand(instr.Dst, intern)
	case *Idiv:
		instr.Operand = replaceOperand(instr.Operand, intern)
	case *Cmp:
		instr.A = replaceOperand(instr.A, intern)
		instr.B = replaceOperand(instr.B, intern)
	case *SetCC:
		instr.Dst = replaceOperand(instr.Dst, intern)
	case *Cdq, *Jmp, *JmpCC, *Label, *Ret, *AllocateStack:
		// no operands
	}
}
