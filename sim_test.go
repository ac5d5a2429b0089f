package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileAndRun(t *testing.T, source string, opts ...simOption) string {
	t.Helper()
	prog := parseText(t, source)
	require.NoError(t, crossref(prog, "<test>"))

	var out bytes.Buffer
	allOpts := append([]simOption{withOutput(&out)}, opts...)
	sim := newSimulator("<test>", prog, allOpts...)
	require.NoError(t, sim.Run(context.Background()))
	return out.String()
}

func TestSimArithmetic(t *testing.T) {
	assert.Equal(t, "69\n", compileAndRun(t, "34 35 + ."))
}

func TestSimMinusOrder(t *testing.T) {
	assert.Equal(t, "3\n", compileAndRun(t, "5 2 - ."))
}

func TestSimDup(t *testing.T) {
	assert.Equal(t, "7\n7\n", compileAndRun(t, "7 dup . ."))
}

func TestSimComparisons(t *testing.T) {
	assert.Equal(t, "1\n", compileAndRun(t, "3 5 < ."))
	assert.Equal(t, "0\n", compileAndRun(t, "5 3 < ."))
	assert.Equal(t, "1\n", compileAndRun(t, "5 5 = ."))
	assert.Equal(t, "1\n", compileAndRun(t, "5 5 <= ."))
	assert.Equal(t, "1\n", compileAndRun(t, "6 5 > ."))
	assert.Equal(t, "1\n", compileAndRun(t, "5 5 >= ."))
}

func TestSimIfTrue(t *testing.T) {
	assert.Equal(t, "2\n", compileAndRun(t, "1 if 2 . else 3 . end"))
}

func TestSimIfFalse(t *testing.T) {
	assert.Equal(t, "3\n", compileAndRun(t, "0 if 2 . else 3 . end"))
}

func TestSimIfNoElse(t *testing.T) {
	assert.Equal(t, "", compileAndRun(t, "0 if 2 . end"))
	assert.Equal(t, "2\n", compileAndRun(t, "1 if 2 . end"))
}

func TestSimWhileLoop(t *testing.T) {
	got := compileAndRun(t, "1 while dup 5 <= do dup . 1 + end .")
	assert.Equal(t, "1\n2\n3\n4\n5\n6\n", got)
}

func TestSimWhileNeverRuns(t *testing.T) {
	got := compileAndRun(t, "10 while dup 5 <= do dup . 1 + end .")
	assert.Equal(t, "10\n", got)
}

func TestSimStackOverflow(t *testing.T) {
	var source string
	for i := 0; i < 5; i++ {
		source += "1 "
	}
	prog := parseText(t, source)
	require.NoError(t, crossref(prog, "<test>"))

	var out bytes.Buffer
	sim := newSimulator("<test>", prog, withOutput(&out), withStackLimit(4))
	err := sim.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
}

func TestSimStackOverflowAt1025(t *testing.T) {
	var source string
	for i := 0; i < 1025; i++ {
		source += "1 "
	}
	prog := parseText(t, source)
	require.NoError(t, crossref(prog, "<test>"))

	var out bytes.Buffer
	sim := newSimulator("<test>", prog, withOutput(&out))
	err := sim.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
}

func TestSimStackOk1024(t *testing.T) {
	var source string
	for i := 0; i < 1024; i++ {
		source += "1 "
	}
	prog := parseText(t, source)
	require.NoError(t, crossref(prog, "<test>"))

	var out bytes.Buffer
	sim := newSimulator("<test>", prog, withOutput(&out))
	require.NoError(t, sim.Run(context.Background()))
}

func TestSimDumpUnderflow(t *testing.T) {
	prog := parseText(t, ".")
	require.NoError(t, crossref(prog, "<test>"))

	var out bytes.Buffer
	sim := newSimulator("<test>", prog, withOutput(&out))
	err := sim.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "underflow")
}

func TestSimContextCancellation(t *testing.T) {
	prog := parseText(t, "1 while dup do dup . end")
	require.NoError(t, crossref(prog, "<test>"))

	var out bytes.Buffer
	sim := newSimulator("<test>", prog, withOutput(&out))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sim.Run(ctx)
	require.Error(t, err)
}

func TestSimTrace(t *testing.T) {
	var traced []string
	logf := func(mess string, args ...interface{}) {
		traced = append(traced, mess)
	}
	out := compileAndRun(t, "1 1 + .", withLogf(logf))
	assert.Equal(t, "2\n", out)
	assert.NotEmpty(t, traced)
}
