package main

import (
	"strconv"

	"github.com/corthlang/corth/internal/fileinput"
)

var keywordKinds = map[string]opKind{
	"if":    opIf,
	"else":  opElse,
	"end":   opEnd,
	"while": opWhile,
	"do":    opDo,
	"dup":   opDup,
}

// parseFile reads name and lexes it into a program. Diagnostics for every
// Unknown token in the file are batched and returned together; the parser
// still scans the whole file before reporting them, per the "report as many
// such errors per file as possible" policy.
func parseFile(name string) (*program, error) {
	lines, err := fileinput.ReadLines(name)
	if err != nil {
		return nil, err
	}
	return parseLines(lines)
}

func parseLines(lines []fileinput.Line) (*program, error) {
	var b programBuilder
	var errs diagnostics
	for _, ln := range lines {
		lexLine(&b, ln, &errs)
	}
	if err := errs.asError(); err != nil {
		return nil, err
	}
	return b.build(), nil
}

func lexLine(b *programBuilder, ln fileinput.Line, errs *diagnostics) {
	runes := []rune(ln.Text)
	col := 0 // 0-based index into runes; reported 1-based
	for col < len(runes) {
		if isSpace(runes[col]) {
			col++
			continue
		}
		if runes[col] == '#' {
			return // line comment runs to end of line
		}

		start := col
		word, next := scanWord(runes, col)
		col = next

		if o, ok := lexWord(word, ln.Name, ln.Line, start+1); ok {
			b.append(o)
		} else {
			errs.add(errAt(ln.Name, ln.Line, start+1, "unknown token %q", word))
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\v' || r == '\f'
}

// scanWord returns the maximal run of non-whitespace runes starting at col,
// and the index just past it.
func scanWord(runes []rune, col int) (string, int) {
	start := col
	for col < len(runes) && !isSpace(runes[col]) {
		col++
	}
	return string(runes[start:col]), col
}

// lexWord classifies a single whitespace-delimited word into an op. The
// returned bool is false for an Unknown token.
func lexWord(word, file string, line, col int) (op, bool) {
	switch word {
	case "+":
		return op{kind: opPlus, line: line, col: col}, true
	case "-":
		return op{kind: opMinus, line: line, col: col}, true
	case ".":
		return op{kind: opDump, line: line, col: col}, true
	case "=":
		return op{kind: opEquals, line: line, col: col}, true
	}

	if kind, isKeyword := keywordKinds[word]; isKeyword {
		return op{kind: kind, line: line, col: col}, true
	}

	if isDigitRun(word) {
		n, err := strconv.ParseUint(word, 10, 64)
		if err != nil {
			// overflow of u64 is detected and reported as an unknown token
			return op{}, false
		}
		return op{kind: opPush, line: line, col: col, operand: n}, true
	}

	if kind, ok := lexRelational(word); ok {
		return op{kind: kind, line: line, col: col}, true
	}

	return op{}, false
}

func isDigitRun(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// lexRelational matches "<", "<=", ">", ">=" with longest match.
func lexRelational(word string) (opKind, bool) {
	switch {
	case word == "<":
		return opLess, true
	case word == "<=":
		return opLessEq, true
	case word == ">":
		return opGreater, true
	case word == ">=":
		return opGreaterEq, true
	}
	return opUnknown, false
}
