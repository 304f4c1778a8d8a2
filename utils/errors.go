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

import "fmt"

// ErrorKind tags the four flat, unrecovered failure modes the core can
// report. Nothing here is recoverable: the first failure aborts the whole
// compilation.
type ErrorKind int

const (
	UnknownToken ErrorKind = iota
	BadSyntax
	BadDestination
	InternalError
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownToken:
		return "UnknownToken"
	case BadSyntax:
		return "BadSyntax"
	case BadDestination:
		return "BadDestination"
	case InternalError:
		return "InternalError"
	}
	return "UnknownErrorKind"
}

// CompileError is the single error type returned out of the core. It
// carries enough context - kind plus offending token or node description -
// to diagnose the first (and only) failure.
type CompileError struct {
	Kind    ErrorKind
	Offset  int
	Message string
}

func (e *CompileError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewUnknownTokenError(offset int, prefix string) error {
	return &CompileError{Kind: UnknownToken, Offset: offset, Message: fmt.Sprintf("no token matches starting at %q", prefix)}
}

func NewBadSyntaxError(expected, actual string) error {
	return &CompileError{Kind: BadSyntax, Offset: -1, Message: fmt.Sprintf("expected %s, got %s", expected, actual)}
}

func NewBadDestinationError(description string) error {
	return &CompileError{Kind: BadDestination, Offset: -1, Message: fmt.Sprintf("invalid assignment target: %s", description)}
}

func NewInternalError(format string, args ...interface{}) error {
	return &CompileError{Kind: InternalError, Offset: -1, Message: fmt.Sprintf(format, args...)}
}
