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

// Package lex turns preprocessed C source text into a lazy stream of
// tokens. The recognizer is a single alternation of regular expressions
// tried in order at the current cursor; the first alternative whose
// pattern matches a prefix wins. Ordering is significant: a longer
// punctuation sequence must be listed before its shorter prefix (`==`
// before `=`, `<=` before `<`, and so on) or the shorter alternative would
// always win first.
package lex

import (
	"regexp"
	"strings"

	"nanoc/utils"
)

type tokenDef struct {
	pattern string
	kind    Kind
}

// order matters: see the package doc comment.
var tokenDefs = []tokenDef{
	{`\s+`, Whitespace},
	{`[a-zA-Z_][a-zA-Z0-9_]*\b`, Identifier},
	{`[0-9]+\b`, Constant},
	{`\(`, LParen},
	{`\)`, RParen},
	{`\{`, LBrace},
	{`\}`, RBrace},
	{`;`, Semicolon},
	{`~`, Tilde},
	{`\+`, Plus},
	{`\*`, Asterisk},
	{`/`, Slash},
	{`%`, Percent},
	{`&&`, TwoAmpersands},
	{`\|\|`, TwoPipes},
	{`==`, TwoEqualSigns},
	{`!=`, ExclaimEqual},
	{`!`, Exclaim},
	{`<=`, LessEqual},
	{`>=`, GreaterEqual},
	{`<`, Less},
	{`>`, Greater},
	{`=`, Equal},
	{`-`, Hyphen},
}

var recognizer = regexp.MustCompile(buildPattern())

func buildPattern() string {
	groups := make([]string, len(tokenDefs))
	for i, d := range tokenDefs {
		groups[i] = "(" + d.pattern + ")"
	}
	return "^(?:" + strings.Join(groups, "|") + ")"
}

// Lexer is a peekable, single-pass iterator over a source string's token
// stream. It holds a cursor position and, once populated, one token of
// lookahead - enough for the parser's precedence climbing.
type Lexer struct {
	src    string
	pos    int
	peeked *Token
}

func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Peek returns the next non-whitespace token without consuming it. ok is
// false at end of input.
func (l *Lexer) Peek() (tok Token, ok bool, err error) {
	if l.peeked != nil {
		return *l.peeked, true, nil
	}
	tok, ok, err = l.scan()
	if err != nil || !ok {
		return Token{}, false, err
	}
	l.peeked = &tok
	return tok, true, nil
}

// Next consumes and returns the next non-whitespace token. ok is false at
// end of input.
func (l *Lexer) Next() (tok Token, ok bool, err error) {
	if l.peeked != nil {
		tok, l.peeked = *l.peeked, nil
		return tok, true, nil
	}
	return l.scan()
}

// scan advances the cursor past any number of whitespace tokens and
// returns the first non-whitespace token it finds, or ok=false at end of
// input.
func (l *Lexer) scan() (Token, bool, error) {
	for {
		if l.pos >= len(l.src) {
			return Token{}, false, nil
		}
		remaining := l.src[l.pos:]
		loc := recognizer.FindStringSubmatchIndex(remaining)
		if loc == nil {
			return Token{}, false, utils.NewUnknownTokenError(l.pos, offendingPrefix(remaining))
		}
		matchLen := loc[1]
		kind, lexeme := classify(remaining, loc)
		offset := l.pos
		l.pos += matchLen
		if kind == Whitespace {
			continue
		}
		if kind == Identifier && Keywords[lexeme] {
			kind = Keyword
		}
		return Token{Kind: kind, Lexeme: lexeme, Offset: offset}, true, nil
	}
}

// classify inspects which alternative group matched loc and returns its
// kind together with the matched lexeme text.
func classify(remaining string, loc []int) (Kind, string) {
	for i, d := range tokenDefs {
		g := 2 * (i + 1)
		if loc[g] != -1 {
			return d.kind, remaining[loc[g]:loc[g+1]]
		}
	}
	utils.ShouldNotReachHere()
	return Whitespace, ""
}

func offendingPrefix(remaining string) string {
	const max = 16
	if len(remaining) > max {
		return remaining[:max]
	}
	return remaining
}

// Tokenize runs the recognizer over src to completion and returns every
// non-whitespace token, or the first error encountered.
func Tokenize(src string) ([]Token, error) {
	l := New(src)
	var toks []Token
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}
