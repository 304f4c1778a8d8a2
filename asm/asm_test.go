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
package asm_test

import (
	"strings"
	"testing"

	"nanoc/asm"
	"nanoc/ir"
	"nanoc/parse"
)

func buildAssembly(t *testing.T, src string) *asm.Function {
	t.Helper()
	prog, err := parse.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	irProg, err := ir.Generate(prog)
	if err != nil {
		t.Fatalf("ir generation error: %v", err)
	}
	asmProg, err := asm.Generate(irProg)
	if err != nil {
		t.Fatalf("assembly generation error: %v", err)
	}
	return asmProg.Function
}

func TestS1MinimalReturn(t *testing.T) {
	fn := buildAssembly(t, "int main(void) { return 0; }")
	bytes := asm.ReplacePseudos(fn)
	if bytes != 0 {
		t.Fatalf("got %d stack bytes, want 0 (no locals or temporaries)", bytes)
	}
	asm.Legalize(fn, bytes)
	got := asm.Emit(&asm.Program{Function: fn})
	want := strings.Join([]string{
		".globl _main",
		"_main :",
		"pushq %rbp",
		"movq %rsp, %rbp",
		"subq $0, %rsp",
		"movl $0, %eax",
		"movq %rbp, %rsp",
		"popq %rbp",
		"ret",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestS4DivisionAndRemainder(t *testing.T) {
	fn := buildAssembly(t, "int main(void) { return 17 % 5; }")
	bytes := asm.ReplacePseudos(fn)
	asm.Legalize(fn, bytes)
	got := asm.Emit(&asm.Program{Function: fn})

	cdqIdx := strings.Index(got, "cdq\n")
	idivIdx := strings.Index(got, "idivl ")
	movEdxIdx := strings.Index(got, "movl %edx,")
	if cdqIdx < 0 || idivIdx < 0 || movEdxIdx < 0 {
		t.Fatalf("missing cdq/idivl/movl %%edx in:\n%s", got)
	}
	if !(cdqIdx < idivIdx && idivIdx < movEdxIdx) {
		t.Fatalf("expected cdq, then idivl, then movl %%edx in order, got:\n%s", got)
	}
}

func TestS6LegalizesMemMemMov(t *testing.T) {
	fn := &asm.Function{
		Name: "main",
		Instructions: []asm.Instruction{
			&asm.Mov{Src: &asm.Pseudo{Name: "a"}, Dst: &asm.Pseudo{Name: "b"}},
			&asm.Ret{},
		},
	}
	bytes := asm.ReplacePseudos(fn)
	if bytes != 8 {
		t.Fatalf("got %d stack bytes, want 8 (two distinct pseudos)", bytes)
	}
	asm.Legalize(fn, bytes)
	got := asm.Emit(&asm.Program{Function: fn})
	if !strings.Contains(got, "movl -4(%rbp), %r10d\nmovl %r10d, -8(%rbp)\n") {
		t.Fatalf("expected a mem-mem mov shuttled through %%r10d, got:\n%s", got)
	}
}

func TestReplacePseudosInternsOffsetsInFirstSeenOrder(t *testing.T) {
	fn := &asm.Function{
		Instructions: []asm.Instruction{
			&asm.Mov{Src: &asm.Imm{Value: 1}, Dst: &asm.Pseudo{Name: "x"}},
			&asm.Mov{Src: &asm.Pseudo{Name: "y"}, Dst: &asm.Pseudo{Name: "x"}},
		},
	}
	total := asm.ReplacePseudos(fn)
	if total != 8 {
		t.Fatalf("got %d total bytes, want 8", total)
	}
	mov0 := fn.Instructions[0].(*asm.Mov)
	if dst, ok := mov0.Dst.(*asm.Stack); !ok || dst.Offset != 4 {
		t.Fatalf("first-seen pseudo %q should get offset 4, got %#v", "x", mov0.Dst)
	}
	mov1 := fn.Instructions[1].(*asm.Mov)
	if src, ok := mov1.Src.(*asm.Stack); !ok || src.Offset != 8 {
		t.Fatalf("second-seen pseudo %q should get offset 8, got %#v", "y", mov1.Src)
	}
	if dst, ok := mov1.Dst.(*asm.Stack); !ok || dst.Offset != 4 {
		t.Fatalf("repeated pseudo %q should reuse offset 4, got %#v", "x", mov1.Dst)
	}
}

func TestLegalizeMulIntoMemoryDestination(t *testing.T) {
	fn := &asm.Function{
		Instructions: []asm.Instruction{
			&asm.BinaryOp{Op: asm.Mul, Src: &asm.Imm{Value: 2}, Dst: &asm.Pseudo{Name: "x"}},
		},
	}
	bytes := asm.ReplacePseudos(fn)
	asm.Legalize(fn, bytes)
	got := asm.Emit(&asm.Program{Function: fn})
	if !strings.Contains(got, "%r11d") {
		t.Fatalf("expected imul's memory destination to be shuttled through %%r11d, got:\n%s", got)
	}
}

func TestLegalizeIdivImmediate(t *testing.T) {
	fn := &asm.Function{
		Instructions: []asm.Instruction{
			&asm.Idiv{Operand: &asm.Imm{Value: 3}},
		},
	}
	asm.Legalize(fn, 0)
	got := asm.Emit(&asm.Program{Function: fn})
	if !strings.Contains(got, "movl $3, %r10d\nidivl %r10d\n") {
		t.Fatalf("expected idiv's immediate operand shuttled through %%r10d, got:\n%s", got)
	}
}

func TestNoPseudoSurvivesReplacement(t *testing.T) {
	fn := buildAssembly(t, "int main(void) { int a = 1; int b = 2; return a + b * (a - b); }")
	asm.ReplacePseudos(fn)
	for _, instr := range fn.Instructions {
		walkOperands(t, instr)
	}
}

func walkOperands(t *testing.T, instr asm.Instruction) {
	t.Helper()
	check := func(op asm.Operand) {
		if op == nil {
			return
		}
		if _, ok := op.(*asm.Pseudo); ok {
			t.Fatalf("found a surviving Pseudo operand in %#v", instr)
		}
	}
	switch instr := instr.(type) {
	case *asm.Mov:
		check(instr.Src)
		check(instr.Dst)
	case *asm.UnaryOp:
		check(instr.Operand)
	case *asm.BinaryOp:
		check(instr.Src)
		check(instr.Dst)
	case *asm.Idiv:
		check(instr.Operand)
	case *asm.Cmp:
		check(instr.A)
		check(instr.B)
	case *asm.SetCC:
		check(instr.Dst)
	}
}
