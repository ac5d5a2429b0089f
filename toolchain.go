package main

import (
	"fmt"
	"os"
	"os/exec"

	// golang.org/x/net/context.Context is a type alias for the stdlib
	// context.Context, so it composes transparently with the rest of the
	// toolchain; kept here to exercise the teacher's own pairing of
	// x/net/context with x/sync/errgroup for process-invocation code (see
	// DESIGN.md).
	"golang.org/x/net/context"
)

// toolchainError reports a non-zero exit from an external tool invocation.
type toolchainError struct {
	cmd  string
	args []string
	err  error
}

func (e toolchainError) Error() string {
	return fmt.Sprintf("command failed: %v %v: %v", e.cmd, e.args, e.err)
}
func (e toolchainError) Unwrap() error { return e.err }

// runTool runs name with args, inheriting stdout and stderr (stdin is not
// connected), echoing the command line first. A non-zero exit is reported as a toolchainError; stdout/stderr are
// never parsed.
func runTool(ctx context.Context, name string, args ...string) error {
	fmt.Fprintln(os.Stderr, "+", name, joinArgs(args))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return toolchainError{cmd: name, args: args, err: err}
	}
	return nil
}

func joinArgs(args []string) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += a
	}
	return s
}

// assemble invokes nasm to produce an ELF64 object file with DWARF debug
// info.
func assemble(ctx context.Context, asmPath, objPath string) error {
	return runTool(ctx, "nasm", "-felf64", "-g", "-F", "dwarf", asmPath, "-o", objPath)
}

// link invokes ld to produce the final executable.
func link(ctx context.Context, objPath, outPath string) error {
	return runTool(ctx, "ld", objPath, "-o", outPath)
}
