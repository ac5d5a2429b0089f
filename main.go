/*
Package main implements corth, a toolchain for a tiny stack-oriented
programming language: source is a stream of whitespace-separated tokens
that push integers onto a value stack and apply operations to its top.

The toolchain offers two modes on the same parsed intermediate
representation: "s" simulates a program directly against an in-memory
stack, and "c" compiles it to x86-64 NASM assembly, assembling and linking
it into a native executable via the host's nasm and ld.

Usage:

	corth help
	corth s <path>
	corth c <path> [<path> ...]

See SPEC_FULL.md for the full language and toolchain specification.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corthlang/corth/internal/fileinput"
	"github.com/corthlang/corth/internal/logio"
)

const usage = `usage:
  corth help             print this message
  corth s <path>          simulate a program
  corth c <path> [...]    compile one or more programs to native executables

keywords: if else end while do dup
operators: + - . = < <= > >=
literals:  unsigned decimal integers up to 2^64-1
comments:  # to end of line
`

func main() {
	var (
		trace   bool
		dump    bool
		timeout time.Duration
	)
	flag.BoolVar(&trace, "trace", false, "enable step trace logging")
	flag.BoolVar(&dump, "dump", false, "print an IR dump after parsing")
	flag.DurationVar(&timeout, "timeout", 0, "time limit for simulation")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	args := flag.Args()
	if len(args) == 0 {
		log.Errorf("missing subcommand")
		flag.Usage()
		return
	}

	switch cmd := args[0]; cmd {
	case "help":
		flag.Usage()

	case "s":
		if len(args) != 2 {
			log.Errorf("s requires exactly one <path>")
			flag.Usage()
			return
		}
		runSimulate(&log, args[1], trace, dump, timeout)

	case "c":
		if len(args) < 2 {
			log.Errorf("c requires at least one <path>")
			flag.Usage()
			return
		}
		runCompile(&log, args[1:], dump)

	default:
		log.Errorf("unknown subcommand %q", cmd)
		flag.Usage()
	}
}

func runSimulate(log *logio.Logger, path string, trace, dump bool, timeout time.Duration) {
	prog, err := loadProgram(log, path, dump)
	if err != nil {
		return
	}

	var opts []simOption
	opts = append(opts, withOutput(os.Stdout))
	if trace {
		opts = append(opts, withLogf(log.Leveledf("TRACE")))
	}
	sim := newSimulator(path, prog, opts...)

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.ErrorIf(sim.Run(ctx))
}

func runCompile(log *logio.Logger, paths []string, dump bool) {
	ctx := context.Background()
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			return compileOne(log, ctx, path, dump)
		})
	}
	log.ErrorIf(g.Wait())
}

func compileOne(log *logio.Logger, ctx context.Context, path string, dump bool) error {
	prog, err := loadProgram(log, path, dump)
	if err != nil {
		return err
	}

	cg := newCodegen(path, prog)
	asm, err := cg.generate()
	if err != nil {
		return err
	}

	names := outputNames(path)
	if err := os.WriteFile(names.asm, []byte(asm), 0o644); err != nil {
		return fileinput.IOError{Name: names.asm, Op: "write", Err: err}
	}
	if err := assemble(ctx, names.asm, names.obj); err != nil {
		return err
	}
	return link(ctx, names.obj, names.exe)
}

func loadProgram(log *logio.Logger, path string, dump bool) (*program, error) {
	prog, err := parseFile(path)
	if err != nil {
		log.ErrorIf(err)
		return nil, err
	}
	if err := crossref(prog, path); err != nil {
		log.ErrorIf(err)
		return nil, err
	}
	if dump {
		(&irDumper{prog: prog, out: os.Stderr}).dump()
	}
	return prog, nil
}

type outputFiles struct {
	asm, obj, exe string
}

// outputNames derives output.asm/output.o/a.out-style file names for path
// in the current directory, namespaced by path's base name (without its
// extension) so that batch compilation of multiple files does not clobber a
// shared "output".
func outputNames(path string) outputFiles {
	base := baseNoExt(path)
	return outputFiles{
		asm: base + ".asm",
		obj: base + ".o",
		exe: "./" + base,
	}
}

func baseNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
