package main

import (
	"fmt"
	"io"
	"strconv"
)

// irDumper prints a crossreferenced program for diagnostic -dump output,
// adapted from the teacher's vmDumper (which dumped VM memory) to instead
// walk the IR: address, op, and -- for branch ops -- the jump target and
// the label codegen would emit for it.
type irDumper struct {
	prog *program
	out  io.Writer

	addrWidth int
}

func (d *irDumper) dump() {
	fmt.Fprintf(d.out, "# program dump (%d ops)\n", d.prog.length())

	if d.addrWidth == 0 {
		d.addrWidth = len(strconv.Itoa(d.prog.length()))
	}

	for ip := 0; ip < d.prog.length(); ip++ {
		o := d.prog.at(ip)
		fmt.Fprintf(d.out, "  @%*d  %v", d.addrWidth, ip, o)
		if label := d.label(ip, o); label != "" {
			fmt.Fprintf(d.out, "  ; %v", label)
		}
		fmt.Fprintln(d.out)
	}
}

// label returns the assembly label codegen attaches at ip for While and Else
// ops, and the label that If and Do ops jump to ("-> ..."), using
// codegen.emit's naming discipline so a -dump listing can be diffed against
// emitted assembly. End ops get no annotation, although codegen emits
// closing labels at them.
func (d *irDumper) label(ip int, o op) string {
	switch o.kind {
	case opWhile:
		return fmt.Sprintf("br%d_loop:", ip)
	case opDo:
		target := d.prog.at(int(o.whileStart)).jumpLoc
		return fmt.Sprintf("-> br%d_loop", target)
	case opIf:
		return fmt.Sprintf("-> br%delse", o.jumpLoc)
	case opElse:
		return fmt.Sprintf("br%delse: -> br%d", ip, ip)
	}
	return ""
}
