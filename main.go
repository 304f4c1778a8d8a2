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
package main

import (
	"fmt"
	"os"

	"github.com/teris-io/cli"

	"nanoc/compile"
)

var modeFlags = []string{"lex", "parse", "tacky", "codegen", "S"}

var Description = "Compiles a restricted subset of C to x86-64 assembly, then assembles and links it."

var Nanoc = cli.New(Description).
	WithArg(cli.NewArg("input", "The .c source file to compile").WithType(cli.TypeString)).
	WithOption(cli.NewOption("lex", "Stop after lexing").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("parse", "Stop after parsing").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("tacky", "Stop after IR generation").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("codegen", "Stop after assembly-tree generation").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("S", "Emit assembly text only, do not assemble or link").WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) != 1 {
		fmt.Printf("ERROR: expected exactly one input path, use --help\n")
		return 1
	}

	mode, err := modeFromOptions(options)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return 1
	}

	if err := compile.RunDriver(args[0], mode); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return 1
	}
	return 0
}

func modeFromOptions(options map[string]string) (compile.Mode, error) {
	set := 0
	for _, flag := range modeFlags {
		if _, enabled := options[flag]; enabled {
			set++
		}
	}
	if set > 1 {
		return 0, fmt.Errorf("at most one of --lex, --parse, --tacky, --codegen, -S may be given")
	}

	if _, ok := options["lex"]; ok {
		return compile.StopLex, nil
	}
	if _, ok := options["parse"]; ok {
		return compile.StopParse, nil
	}
	if _, ok := options["tacky"]; ok {
		return compile.StopTacky, nil
	}
	if _, ok := options["codegen"]; ok {
		return compile.StopCodegen, nil
	}
	if _, ok := options["S"]; ok {
		return compile.EmitAssembly, nil
	}
	return compile.Full, nil
}

func main() { os.Exit(Nanoc.Run(os.Args, os.Stdout)) }
