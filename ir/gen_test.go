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
package ir_test

import (
	"testing"

	"nanoc/ir"
	"nanoc/parse"
)

func generate(t *testing.T, src string) *ir.Function {
	t.Helper()
	prog, err := parse.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	irProg, err := ir.Generate(prog)
	if err != nil {
		t.Fatalf("ir generation error: %v", err)
	}
	return irProg.Function
}

// TestNestedUnary is scenario S2: return ~(-10) must lower to
// Negate(10) -> t0, Complement(t0) -> t1, Return(t1).
func TestNestedUnary(t *testing.T) {
	fn := generate(t, "int main(void) { return ~(-10); }")
	if len(fn.Body) != 3 {
		t.Fatalf("got %d instructions, want 3: %#v", len(fn.Body), fn.Body)
	}

	neg, ok := fn.Body[0].(*ir.Unary)
	if !ok || neg.Op != ir.Negate {
		t.Fatalf("instruction 0: got %#v, want Unary(Negate, ...)", fn.Body[0])
	}
	if c, ok := neg.Src.(*ir.Constant); !ok || c.Value != 10 {
		t.Fatalf("instruction 0 src: got %#v, want Constant(10)", neg.Src)
	}

	comp, ok := fn.Body[1].(*ir.Unary)
	if !ok || comp.Op != ir.Complement {
		t.Fatalf("instruction 1: got %#v, want Unary(Complement, ...)", fn.Body[1])
	}
	if v, ok := comp.Src.(*ir.Var); !ok || v.Name != neg.Dst.Name {
		t.Fatalf("instruction 1 src: got %#v, want Var(%s)", comp.Src, neg.Dst.Name)
	}

	ret, ok := fn.Body[2].(*ir.Return)
	if !ok {
		t.Fatalf("instruction 2: got %#v, want Return", fn.Body[2])
	}
	if v, ok := ret.Val.(*ir.Var); !ok || v.Name != comp.Dst.Name {
		t.Fatalf("return value: got %#v, want Var(%s)", ret.Val, comp.Dst.Name)
	}
}

// TestShortCircuitAnd is scenario S5: the lowering of `1 && 0` must
// contain a JumpIfZero to a _false-prefixed label and a terminal
// Copy(Constant(1), t) that is only reached when neither jump fires.
func TestShortCircuitAnd(t *testing.T) {
	fn := generate(t, "int main(void) { return 1 && 0; }")

	var sawJumpIfZeroToFalse bool
	var falseLabel string
	lastJumpIdx := -1
	for i, instr := range fn.Body {
		if jz, ok := instr.(*ir.JumpIfZero); ok {
			sawJumpIfZeroToFalse = true
			falseLabel = jz.Target
			lastJumpIdx = i
		}
	}
	if !sawJumpIfZeroToFalse {
		t.Fatalf("expected at least one JumpIfZero, got %#v", fn.Body)
	}
	if len(falseLabel) < 6 || falseLabel[:6] != "_false" {
		t.Fatalf("got jump target %q, want a _false-prefixed label", falseLabel)
	}

	var sawTerminalCopyOne bool
	for i, instr := range fn.Body {
		if cp, ok := instr.(*ir.Copy); ok {
			if c, ok := cp.Src.(*ir.Constant); ok && c.Value == 1 {
				sawTerminalCopyOne = true
				if i < lastJumpIdx {
					t.Fatalf("Copy(Constant(1), t) at %d precedes the JumpIfZero at %d", i, lastJumpIdx)
				}
			}
		}
	}
	if !sawTerminalCopyOne {
		t.Fatalf("expected a Copy(Constant(1), t) in the lowering, got %#v", fn.Body)
	}
}

func TestLabelsAreUniqueAcrossMultipleShortCircuits(t *testing.T) {
	fn := generate(t, "int main(void) { return (1 && 0) || (0 && 1); }")
	seen := map[string]bool{}
	for _, instr := range fn.Body {
		if l, ok := instr.(*ir.Label); ok {
			if seen[l.Name] {
				t.Fatalf("label %q emitted twice", l.Name)
			}
			seen[l.Name] = true
		}
	}
	if len(seen) == 0 {
		t.Fatalf("expected at least one label, got none")
	}
}

func TestAssignmentToNonVarIsBadDestination(t *testing.T) {
	prog, err := parse.Parse("int main(void) { return 1 = 2; }")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = ir.Generate(prog)
	if err == nil {
		t.Fatalf("expected a BadDestination error")
	}
}

func TestDeclarationWithoutInitializerEmitsNothing(t *testing.T) {
	fn := generate(t, "int main(void) { int x; return 0; }")
	if len(fn.Body) != 1 {
		t.Fatalf("got %d instructions, want 1 (just the Return): %#v", len(fn.Body), fn.Body)
	}
}
