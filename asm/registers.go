// Copyright (c) 2024 The Sprite Programming Language
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

import "nanoc/utils"

// RegisterName is an abstract register identity; the concrete width
// (32-bit for arithmetic, 8-bit for SetCC destinations) is chosen at
// emit time, never baked into the assembly tree.
type RegisterName int

const (
	AX RegisterName = iota
	DX
	R10
	R11
)

// width32 and width8 are the only two register widths this compiler ever
// emits - there is no general register bank here, unlike a compiler that
// also allocates registers for user variables.
var width32 = map[RegisterName]string{
	AX:  "eax",
	DX:  "edx",
	R10: "r10d",
	R11: "r11d",
}

var width8 = map[RegisterName]string{
	AX:  "al",
	DX:  "dl",
	R10: "r10b",
	R11: "r11b",
}

func reg32(name RegisterName) string {
	s, ok := width32[name]
	utils.Assert(ok, "no 32-bit alias for register %d", name)
	return s
}

func reg8(name RegisterName) string {
	s, ok := width8[name]
	utils.Assert(ok, "no 8-bit alias for register %d", name)
	return s
}
