package main

import "fmt"

// diagnostic is a single located error, formatted uniformly as
// "file:line:col: ERROR: msg" per the toolchain's one diagnostic format.
type diagnostic struct {
	file string
	line int
	col  int
	msg  string
}

func (d diagnostic) Error() string {
	return fmt.Sprintf("%v:%v:%v: ERROR: %v", d.file, d.line, d.col, d.msg)
}

func errAt(file string, line, col int, format string, args ...interface{}) diagnostic {
	return diagnostic{file: file, line: line, col: col, msg: fmt.Sprintf(format, args...)}
}

// diagnostics collects multiple diagnostics, used by the lexer to batch all
// Unknown-token errors found in a single scan before aborting, per the
// parser's "report as many errors per file as possible" policy.
type diagnostics []diagnostic

func (ds diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	if len(ds) == 1 {
		return ds[0].Error()
	}
	s := ds[0].Error()
	for _, d := range ds[1:] {
		s += "\n" + d.Error()
	}
	return s
}

func (ds *diagnostics) add(d diagnostic) {
	*ds = append(*ds, d)
}

func (ds diagnostics) asError() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}
