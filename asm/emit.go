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

import (
	"fmt"
	"strings"

	"nanoc/utils"
)

// Emit serializes an assembly tree to AT&T-syntax text: macOS calling
// conventions (leading-underscore function symbol), 32-bit operand width
// throughout, L-prefixed jump labels.
func Emit(prog *Program) string {
	var b strings.Builder
	emitFunction(&b, prog.Function)
	return b.String()
}

func emitFunction(b *strings.Builder, fn *Function) {
	fmt.Fprintf(b, ".globl _%s\n_%s :\n", fn.Name, fn.Name)
	b.WriteString("pushq %rbp\n")
	b.WriteString("movq %rsp, %rbp\n")
	for _, instr := range fn.Instructions {
		emitInstruction(b, instr)
	}
}

func emitInstruction(b *strings.Builder, instr Instruction) {
	switch instr := instr.(type) {
	case *AllocateStack:
		fmt.Fprintf(b, "subq $%d, %%rsp\n", instr.Bytes)

	case *Mov:
		fmt.Fprintf(b, "movl %s, %s\n", operand32(instr.Src), operand32(instr.Dst))

	case *UnaryOp:
		fmt.Fprintf(b, "%s %s\n", unaryMnemonic(instr.Op), operand32(instr.Operand))

	case *BinaryOp:
		fmt.Fprintf(b, "%s %s, %s\n", binaryMnemonic(instr.Op), operand32(instr.Src), operand32(instr.Dst))

	case *Idiv:
		fmt.Fprintf(b, "idivl %s\n", operand32(instr.Operand))

	case *Cdq:
		b.WriteString("cdq\n")

	case *Cmp:
		fmt.Fprintf(b, "cmpl %s, %s\n", operand32(instr.A), operand32(instr.B))

	case *Jmp:
		fmt.Fprintf(b, "jmp L%s\n", instr.Target)

	case *JmpCC:
		fmt.Fprintf(b, "j%s L%s\n", ccSuffix(instr.CC), instr.Target)

	case *SetCC:
		fmt.Fprintf(b, "set%s %s\n", ccSuffix(instr.CC), operand8(instr.Dst))

	case *Label:
		fmt.Fprintf(b, "L%s:\n", instr.Name)

	case *Ret:
		b.WriteString("movq %rbp, %rsp\n")
		b.WriteString("popq %rbp\n")
		b.WriteString("ret\n")

	default:
		utils.ShouldNotReachHere()
	}
}

func operand32(op Operand) string {
	switch op := op.(type) {
	case *Imm:
		return fmt.Sprintf("$%d", op.Value)
	case *Reg:
		return "%" + reg32(op.Name)
	case *Stack:
		return fmt.Sprintf("-%d(%%rbp)", op.Offset)
	case *Pseudo:
		utils.ShouldNotReachHere()
		return ""
	default:
		utils.ShouldNotReachHere()
		return ""
	}
}

func operand8(op Operand) string {
	switch op := op.(type) {
	case *Imm:
		return fmt.Sprintf("$%d", op.Value)
	case *Reg:
		return "%" + reg8(op.Name)
	case *Stack:
		return fmt.Sprintf("-%d(%%rbp)", op.Offset)
	case *Pseudo:
		utils.ShouldNotReachHere()
		return ""
	default:
		utils.ShouldNotReachHere()
		return ""
	}
}

func unaryMnemonic(op UnaryOperator) string {
	switch op {
	case Neg:
		return "negl"
	case Not:
		return "notl"
	}
	utils.ShouldNotReachHere()
	return ""
}

func binaryMnemonic(op BinaryOperator) string {
	switch op {
	case Add:
		return "addl"
	case Sub:
		return "subl"
	case Mul:
		return "imull"
	}
	utils.ShouldNotReachHere()
	return ""
}

func ccSuffix(cc ConditionCode) string {
	switch cc {
	case E:
		return "e"
	case NE:
		return "ne"
	case L:
		return "l"
	case LE:
		return "le"
	case G:
		return "g"
	case GE:
		return "ge"
	}
	utils.ShouldNotReachHere()
	return ""
}
