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
package ir

import (
	"fmt"

	"nanoc/parse"
	"nanoc/utils"
)

// Generator walks a source AST and produces IR. One Generator is created
// per compilation; its name generator and label set are never shared
// across compilations.
type Generator struct {
	names  *utils.NameGenerator
	labels *utils.Set[string]
}

func NewGenerator() *Generator {
	return &Generator{
		names:  utils.NewNameGenerator(),
		labels: utils.NewSet[string](),
	}
}

// Generate lowers a full program.
func Generate(prog *parse.Program) (*Program, error) {
	return NewGenerator().generateProgram(prog)
}

func (g *Generator) generateProgram(prog *parse.Program) (*Program, error) {
	fn, err := g.generateFunction(prog.Function)
	if err != nil {
		return nil, err
	}
	return &Program{Function: fn}, nil
}

func (g *Generator) generateFunction(fn *parse.Function) (*Function, error) {
	var body []Instruction
	for _, item := range fn.Body {
		instrs, err := g.generateBlockItem(item)
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}
	return &Function{Name: fn.Name, Body: body}, nil
}

func (g *Generator) generateBlockItem(item parse.BlockItem) ([]Instruction, error) {
	switch item := item.(type) {
	case *parse.Declaration:
		if item.Init == nil {
			// Reading an uninitialized variable is undefined in C; this
			// compiler does not diagnose it, so there is nothing to emit.
			return nil, nil
		}
		instrs, val, err := g.generateExpr(item.Init)
		if err != nil {
			return nil, err
		}
		dst := &Var{Name: item.Name}
		return append(instrs, &Copy{Src: val, Dst: dst}), nil

	case *parse.ReturnStmt:
		instrs, val, err := g.generateExpr(item.Exp)
		if err != nil {
			return nil, err
		}
		return append(instrs, &Return{Val: val}), nil

	case *parse.ExprStmt:
		instrs, _, err := g.generateExpr(item.Exp)
		return instrs, err

	case *parse.NullStmt:
		return nil, nil

	default:
		return nil, utils.NewInternalError("unreachable block item kind %T", item)
	}
}

// generateExpr returns the instructions needed to compute e, plus the
// value (Constant or Var) that holds the result.
func (g *Generator) generateExpr(e parse.Expr) ([]Instruction, Value, error) {
	switch e := e.(type) {
	case *parse.Constant:
		return nil, &Constant{Value: e.Value}, nil

	case *parse.Var:
		return nil, &Var{Name: e.Name}, nil

	case *parse.Unary:
		return g.generateUnary(e)

	case *parse.Binary:
		switch e.Op {
		case parse.And:
			return g.generateShortCircuitAnd(e)
		case parse.Or:
			return g.generateShortCircuitOr(e)
		default:
			return g.generateBinary(e)
		}

	case *parse.Assignment:
		return g.generateAssignment(e)

	default:
		return nil, nil, utils.NewInternalError("unreachable expression kind %T", e)
	}
}

func (g *Generator) generateUnary(e *parse.Unary) ([]Instruction, Value, error) {
	instrs, val, err := g.generateExpr(e.Operand)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: g.names.Next()}
	op, err := unaryOpOf(e.Op)
	if err != nil {
		return nil, nil, err
	}
	instrs = append(instrs, &Unary{Op: op, Src: val, Dst: dst})
	return instrs, dst, nil
}

func (g *Generator) generateBinary(e *parse.Binary) ([]Instruction, Value, error) {
	lhsInstrs, lhsVal, err := g.generateExpr(e.Left)
	if err != nil {
		return nil, nil, err
	}
	rhsInstrs, rhsVal, err := g.generateExpr(e.Right)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: g.names.Next()}
	op, err := binaryOpOf(e.Op)
	if err != nil {
		return nil, nil, err
	}
	instrs := append(lhsInstrs, rhsInstrs...)
	instrs = append(instrs, &Binary{Op: op, Src1: lhsVal, Src2: rhsVal, Dst: dst})
	return instrs, dst, nil
}

func (g *Generator) generateAssignment(e *parse.Assignment) ([]Instruction, Value, error) {
	v, ok := e.Left.(*parse.Var)
	if !ok {
		return nil, nil, utils.NewBadDestinationError(fmt.Sprintf("%T", e.Left))
	}
	instrs, val, err := g.generateExpr(e.Right)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: v.Name}
	instrs = append(instrs, &Copy{Src: val, Dst: dst})
	return instrs, dst, nil
}

// generateShortCircuitAnd lowers `a && b` per the fixed instruction
// sequence this core pins down: evaluate a, jump past b when a is already
// false, evaluate b, jump to the false branch when b is false, otherwise
// fall through to the true branch.
func (g *Generator) generateShortCircuitAnd(e *parse.Binary) ([]Instruction, Value, error) {
	lhsInstrs, lhsVal, err := g.generateExpr(e.Left)
	if err != nil {
		return nil, nil, err
	}
	rhsInstrs, rhsVal, err := g.generateExpr(e.Right)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: g.names.Next()}
	falseLabel := g.freshLabel("_false")
	endLabel := g.freshLabel("_end")

	var instrs []Instruction
	instrs = append(instrs, lhsInstrs...)
	instrs = append(instrs, &JumpIfZero{Cond: lhsVal, Target: falseLabel})
	instrs = append(instrs, rhsInstrs...)
	instrs = append(instrs,
		&JumpIfZero{Cond: rhsVal, Target: falseLabel},
		&Copy{Src: &Constant{Value: 1}, Dst: dst},
		&Jump{Target: endLabel},
		&Label{Name: falseLabel},
		&Copy{Src: &Constant{Value: 0}, Dst: dst},
		&Label{Name: endLabel},
	)
	return instrs, dst, nil
}

// generateShortCircuitOr is the symmetric lowering of `a || b`.
func (g *Generator) generateShortCircuitOr(e *parse.Binary) ([]Instruction, Value, error) {
	lhsInstrs, lhsVal, err := g.generateExpr(e.Left)
	if err != nil {
		return nil, nil, err
	}
	rhsInstrs, rhsVal, err := g.generateExpr(e.Right)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: g.names.Next()}
	trueLabel := g.freshLabel("_true")
	endLabel := g.freshLabel("_end")

	var instrs []Instruction
	instrs = append(instrs, lhsInstrs...)
	instrs = append(instrs, &JumpIfNotZero{Cond: lhsVal, Target: trueLabel})
	instrs = append(instrs, rhsInstrs...)
	instrs = append(instrs,
		&JumpIfNotZero{Cond: rhsVal, Target: trueLabel},
		&Copy{Src: &Constant{Value: 0}, Dst: dst},
		&Jump{Target: endLabel},
		&Label{Name: trueLabel},
		&Copy{Src: &Constant{Value: 1}, Dst: dst},
		&Label{Name: endLabel},
	)
	return instrs, dst, nil
}

// freshLabel mints a label with the given prefix and asserts it has never
// been handed out before in this compilation - labels must be globally
// unique within the function.
func (g *Generator) freshLabel(prefix string) string {
	label := prefix + g.names.Next()
	utils.Assert(g.labels.Add(label), "label %q generated twice", label)
	return label
}

func unaryOpOf(op parse.UnaryOp) (UnaryOp, error) {
	switch op {
	case parse.Negate:
		return Negate, nil
	case parse.Complement:
		return Complement, nil
	case parse.Not:
		return Not, nil
	default:
		return 0, utils.NewInternalError("unreachable unary operator %v", op)
	}
}

func binaryOpOf(op parse.BinaryOp) (BinaryOp, error) {
	switch op {
	case parse.Add:
		return Add, nil
	case parse.Sub:
		return Sub, nil
	case parse.Mul:
		return Mul, nil
	case parse.Div:
		return Div, nil
	case parse.Rem:
		return Rem, nil
	case parse.Eq:
		return Eq, nil
	case parse.Ne:
		return Ne, nil
	case parse.Lt:
		return Lt, nil
	case parse.Le:
		return Le, nil
	case parse.Gt:
		return Gt, nil
	case parse.Ge:
		return Ge, nil
	default:
		return 0, utils.NewInternalError("unreachable binary operator %v", op)
	}
}
