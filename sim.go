package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/corthlang/corth/internal/flushio"
	"github.com/corthlang/corth/internal/panicerr"
)

// defaultStackLimit is the maximum value-stack depth.
const defaultStackLimit = 1024

// simulator executes a crossreferenced program directly against an
// in-memory value stack. It borrows the program read-only; the program
// must already have been crossreferenced.
type simulator struct {
	file  string
	prog  *program
	stack []uint64
	ip    int

	stackLimit int
	out        flushio.WriteFlusher
	logfn      func(mess string, args ...interface{})
	closers    []io.Closer
}

// newSimulator builds a simulator for prog (sourced from file, used only
// for diagnostic messages) with the given options applied.
func newSimulator(file string, prog *program, opts ...simOption) *simulator {
	sim := &simulator{file: file, prog: prog, stackLimit: defaultStackLimit}
	defaultSimOptions.apply(sim)
	simOptions(opts...).apply(sim)
	return sim
}

// Run executes the program to completion (or a fatal error), recovering an
// internal halt panic back into a plain error return -- the teacher's
// halt/panicerr.Recover idiom, which lets deeply nested step code abort
// without threading error through every call.
func (sim *simulator) Run(ctx context.Context) error {
	err := panicerr.Recover("simulate", func() error {
		return sim.run(ctx)
	})
	if err == nil {
		return nil
	}
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return err
}

func (sim *simulator) run(ctx context.Context) error {
	defer func() {
		if sim.out != nil {
			sim.out.Flush()
		}
		for i := len(sim.closers) - 1; i >= 0; i-- {
			sim.closers[i].Close()
		}
	}()

	for sim.ip < sim.prog.length() {
		if err := ctx.Err(); err != nil {
			sim.halt(err)
		}
		sim.step()
	}
	return nil
}

func (sim *simulator) halt(err error) {
	if sim.out != nil {
		sim.out.Flush()
	}
	panic(haltError{err})
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("simulate halted: %v", err.error)
	}
	return "simulate halted"
}
func (err haltError) Unwrap() error { return err.error }

func (sim *simulator) errAt(o op, format string, args ...interface{}) diagnostic {
	return errAt(sim.file, o.line, o.col, format, args...)
}

func (sim *simulator) logStep(o op) {
	if sim.logfn == nil {
		return
	}
	sim.logfn("@%-4d %-5v stack:%v", sim.ip, o, sim.stack)
}

func (sim *simulator) push(v uint64) {
	if len(sim.stack) >= sim.stackLimit {
		o := sim.prog.at(sim.ip)
		sim.halt(sim.errAt(o, "stack overflow (limit %d)", sim.stackLimit))
	}
	sim.stack = append(sim.stack, v)
}

// pop2 returns the two topmost elements as (second, top), underflowing if
// fewer than two values are present.
func (sim *simulator) pop2(o op) (uint64, uint64) {
	if len(sim.stack) < 2 {
		sim.halt(sim.errAt(o, "stack underflow: %v needs 2 operands", o.kind))
	}
	i := len(sim.stack) - 1
	a, b := sim.stack[i-1], sim.stack[i]
	sim.stack = sim.stack[:i-1]
	return a, b
}

func (sim *simulator) pop1(o op) uint64 {
	if len(sim.stack) < 1 {
		sim.halt(sim.errAt(o, "stack underflow: %v needs 1 operand", o.kind))
	}
	i := len(sim.stack) - 1
	v := sim.stack[i]
	sim.stack = sim.stack[:i]
	return v
}

func (sim *simulator) step() {
	o := sim.prog.at(sim.ip)
	sim.logStep(o)

	switch o.kind {
	case opPush:
		sim.push(o.operand)
		sim.ip++

	case opPlus:
		a, b := sim.pop2(o)
		sim.push(a + b)
		sim.ip++

	case opMinus:
		a, b := sim.pop2(o)
		sim.push(a - b)
		sim.ip++

	case opEquals, opLess, opLessEq, opGreater, opGreaterEq:
		a, b := sim.pop2(o)
		sim.push(boolUint64(compare(o.kind, a, b)))
		sim.ip++

	case opDup:
		v := sim.pop1(o)
		sim.push(v)
		sim.push(v)
		sim.ip++

	case opDump:
		v := sim.pop1(o)
		if _, err := fmt.Fprintf(sim.out, "%d\n", v); err != nil {
			sim.halt(err)
		}
		sim.ip++

	case opIf:
		c := sim.pop1(o)
		if c == 0 {
			// A false If resumes just past its Else (entering the
			// else-body) or at its End.
			target := int(o.jumpLoc)
			if sim.prog.at(target).kind == opElse {
				target++
			}
			sim.ip = target
		} else {
			sim.ip++
		}

	case opElse:
		sim.ip = int(o.jumpLoc)

	case opWhile:
		sim.ip++

	case opDo:
		c := sim.pop1(o)
		if c == 0 {
			// Jump past the matching End entirely: that End (the
			// While's jumpLoc) is the unconditional loop-back
			// instruction, which a loop exit must never execute.
			sim.ip = int(sim.prog.at(int(o.whileStart)).jumpLoc) + 1
		} else {
			sim.ip++
		}

	case opEnd:
		if o.isWhileEnd {
			// Reached only by the loop body completing normally, so the
			// loop-back is unconditional; Do's false branch skips this op.
			sim.ip = int(o.whileStart)
		} else {
			sim.ip++
		}

	default:
		sim.halt(sim.errAt(o, "unknown op %v", o.kind))
	}
}

func compare(kind opKind, a, b uint64) bool {
	switch kind {
	case opEquals:
		return a == b
	case opLess:
		return a < b
	case opLessEq:
		return a <= b
	case opGreater:
		return a > b
	case opGreaterEq:
		return a >= b
	}
	return false
}

func boolUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
