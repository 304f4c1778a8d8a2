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
	"nanoc/ir"
	"nanoc/utils"
)

// Generate lowers each IR instruction to a short, fixed sequence of
// assembly-tree instructions, using Pseudo operands in place of IR Vars
// and Imm in place of IR constants.
func Generate(prog *ir.Program) (*Program, error) {
	fn, err := generateFunction(prog.Function)
	if err != nil {
		return nil, err
	}
	return &Program{Function: fn}, nil
}

func generateFunction(fn *ir.Function) (*Function, error) {
	var instrs []Instruction
	for _, ins := range fn.Body {
		lowered, err := lowerInstruction(ins)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, lowered...)
	}
	return &Function{Name: fn.Name, Instructions: instrs}, nil
}

func lowerInstruction(ins ir.Instruction) ([]Instruction, error) {
	switch ins := ins.(type) {
	case *ir.Return:
		return []Instruction{
			&Mov{Src: operandOf(ins.Val), Dst: &Reg{Name: AX}},
			&Ret{},
		}, nil

	case *ir.Unary:
		return lowerUnary(ins)

	case *ir.Binary:
		return lowerBinary(ins)

	case *ir.Copy:
		return []Instruction{&Mov{Src: operandOf(ins.Src), Dst: operandOf(ins.Dst)}}, nil

	case *ir.Jump:
		return []Instruction{&Jmp{Target: ins.Target}}, nil

	case *ir.JumpIfZero:
		return []Instruction{
			&Cmp{A: &Imm{Value: 0}, B: operandOf(ins.Cond)},
			&JmpCC{CC: E, Target: ins.Target},
		}, nil

	case *ir.JumpIfNotZero:
		return []Instruction{
			&Cmp{A: &Imm{Value: 0}, B: operandOf(ins.Cond)},
			&JmpCC{CC: NE, Target: ins.Target},
		}, nil

	case *ir.Label:
		return []Instruction{&Label{Name: ins.Name}}, nil

	default:
		return nil, utils.NewInternalError("unreachable IR instruction kind %T", ins)
	}
}

func lowerUnary(ins *ir.Unary) ([]Instruction, error) {
	src, dst := operandOf(ins.Src), operandOf(ins.Dst)
	switch ins.Op {
	case ir.Complement:
		return []Instruction{&Mov{Src: src, Dst: dst}, &UnaryOp{Op: Not, Operand: dst}}, nil
	case ir.Negate:
		return []Instruction{&Mov{Src: src, Dst: dst}, &UnaryOp{Op: Neg, Operand: dst}}, nil
	case ir.Not:
		return []Instruction{
			&Cmp{A: &Imm{Value: 0}, B: src},
			&Mov{Src: &Imm{Value: 0}, Dst: dst},
			&SetCC{CC: E, Dst: dst},
		}, nil
	default:
		return nil, utils.NewInternalError("unreachable unary IR op %v", ins.Op)
	}
}

func lowerBinary(ins *ir.Binary) ([]Instruction, error) {
	src1, src2, dst := operandOf(ins.Src1), operandOf(ins.Src2), operandOf(ins.Dst)
	switch ins.Op {
	case ir.Add:
		return []Instruction{&Mov{Src: src1, Dst: dst}, &BinaryOp{Op: Add, Src: src2, Dst: dst}}, nil
	case ir.Sub:
		return []Instruction{&Mov{Src: src1, Dst: dst}, &BinaryOp{Op: Sub, Src: src2, Dst: dst}}, nil
	case ir.Mul:
		return []Instruction{&Mov{Src: src1, Dst: dst}, &BinaryOp{Op: Mul, Src: src2, Dst: dst}}, nil

	case ir.Div:
		return []Instruction{
			&Mov{Src: src1, Dst: &Reg{Name: AX}},
			&Cdq{},
			&Idiv{Operand: src2},
			&Mov{Src: &Reg{Name: AX}, Dst: dst},
		}, nil

	case ir.Rem:
		return []Instruction{
			&Mov{Src: src1, Dst: &Reg{Name: AX}},
			&Cdq{},
			&Idiv{Operand: src2},
			&Mov{Src: &Reg{Name: DX}, Dst: dst},
		}, nil

	case ir.Eq, ir.Ne, ir.Lt, ir.Le, ir.Gt, ir.Ge:
		cc, err := conditionCodeOf(ins.Op)
		if err != nil {
			return nil, err
		}
		// AT&T `cmp src, dst` sets flags per dst - src; to test
		// src1 < src2 the comparison operands must be swapped so setl
		// reads the flags correctly, hence Cmp(src2, src1) here.
		return []Instruction{
			&Cmp{A: src2, B: src1},
			&Mov{Src: &Imm{Value: 0}, Dst: dst},
			&SetCC{CC: cc, Dst: dst},
		}, nil

	default:
		return nil, utils.NewInternalError("unreachable binary IR op %v", ins.Op)
	}
}

func conditionCodeOf(op ir.BinaryOp) (ConditionCode, error) {
	switch op {
	case ir.Eq:
		return E, nil
	case ir.Ne:
		return NE, nil
	case ir.Lt:
		return L, nil
	case ir.Le:
		return LE, nil
	case ir.Gt:
		return G, nil
	case ir.Ge:
		return GE, nil
	default:
		return 0, utils.NewInternalError("unreachable comparison IR op %v", op)
	}
}

func operandOf(v ir.Value) Operand {
	switch v := v.(type) {
	case *ir.Constant:
		return &Imm{Value: v.Value}
	case *ir.Var:
		return &Pseudo{Name: v.Name}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}
