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
package compile

import (
	"fmt"
	"os"
	"strings"

	"nanoc/utils"
)

// RunDriver is the external-collaborator shell around Compile: it invokes
// the system C preprocessor on inputPath, feeds the result to the core,
// and - only in Full mode - invokes the system assembler/linker. For
// input foo.c: preprocessor output lands at foo.i, assembly at foo.s,
// the executable at foo.
func RunDriver(inputPath string, mode Mode) error {
	if !strings.HasSuffix(inputPath, ".c") {
		return fmt.Errorf("input path %q must end in .c", inputPath)
	}
	base := inputPath[:len(inputPath)-len(".c")]
	preprocessedPath := base + ".i"
	assemblyPath := base + ".s"
	executablePath := base

	if _, err := utils.ExecuteCmd("", "gcc", "-E", "-P", inputPath, "-o", preprocessedPath); err != nil {
		return fmt.Errorf("preprocessing %s: %w", inputPath, err)
	}
	defer os.Remove(preprocessedPath)

	src, err := os.ReadFile(preprocessedPath)
	if err != nil {
		return fmt.Errorf("reading preprocessed source: %w", err)
	}

	result, err := Compile(string(src), mode)
	if err != nil {
		return err
	}
	if mode < EmitAssembly {
		// An inspection-only mode: nothing to write, nothing to link.
		return nil
	}

	if err := os.WriteFile(assemblyPath, []byte(result.Text), 0o644); err != nil {
		return fmt.Errorf("writing assembly to %s: %w", assemblyPath, err)
	}
	if mode == EmitAssembly {
		return nil
	}

	if _, err := utils.ExecuteCmd("", "gcc", assemblyPath, "-o", executablePath); err != nil {
		return fmt.Errorf("assembling/linking %s: %w", assemblyPath, err)
	}
	return nil
}
