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
package utils

import "strconv"

// NameGenerator hands out fresh decimal strings, one per call. It is created
// once per compilation and threaded explicitly into every pass that needs
// fresh names - never a package-level counter, so two compilations never
// interfere with each other.
type NameGenerator struct {
	next int
}

func NewNameGenerator() *NameGenerator {
	return &NameGenerator{next: 0}
}

func (g *NameGenerator) Next() string {
	n := g.next
	g.next++
	return strconv.Itoa(n)
}
