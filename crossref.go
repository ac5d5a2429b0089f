package main

// crossref resolves every structured control op (if/else/while/do/end) to
// the instruction-pointer index of its partner, back-patching jumpLoc
// fields on prog in place. It is a single forward pass maintaining a LIFO
// stack of "open" ops' indices -- an explicit stack of small records, never
// a scalar "last while" global, so that nested while/end pairs resolve
// correctly.
func crossref(prog *program, file string) error {
	var openers openerStack
	var errs diagnostics

	for ip := 0; ip < prog.length(); ip++ {
		o := prog.at(ip)
		switch o.kind {
		case opIf:
			openers.push(opener{kind: opIf, ip: ip})

		case opWhile:
			openers.push(opener{kind: opWhile, ip: ip})

		case opDo:
			top, ok := openers.peek()
			if !ok || top.kind != opWhile {
				errs.add(errAt(file, o.line, o.col, "do without enclosing while"))
				continue
			}
			prog.setDoWhileStart(ip, uint64(top.ip))

		case opElse:
			top, ok := openers.peek()
			if !ok || top.kind != opIf {
				errs.add(errAt(file, o.line, o.col, "else without matching if"))
				continue
			}
			prog.setJumpLoc(top.ip, uint64(ip))
			openers.replaceTop(opener{kind: opElse, ip: ip})

		case opEnd:
			top, ok := openers.pop()
			if !ok {
				errs.add(errAt(file, o.line, o.col, "end without opener"))
				continue
			}
			switch top.kind {
			case opIf:
				if prog.at(top.ip).jumpLoc == noJumpLoc {
					prog.setJumpLoc(top.ip, uint64(ip))
				}
			case opElse:
				prog.setJumpLoc(top.ip, uint64(ip))
			case opWhile:
				prog.setJumpLoc(top.ip, uint64(ip))
				prog.setEndWhileStart(ip, uint64(top.ip))
			}
		}
	}

	for _, top := range openers.stack {
		o := prog.at(top.ip)
		errs.add(errAt(file, o.line, o.col, "unclosed %v", o.kind))
	}

	return errs.asError()
}

// opener records an open If/While/Else context by the index of the op that
// opened it, tagged with the kind currently occupying the top of stack (an
// If is replaced by its Else at the matching else, so that the closing End
// sees an Else on top).
type opener struct {
	kind opKind
	ip   int
}

// openerStack is the LIFO of open control-flow regions used by both
// crossref and codegen.
type openerStack struct {
	stack []opener
}

func (s *openerStack) push(o opener) {
	s.stack = append(s.stack, o)
}

func (s *openerStack) pop() (opener, bool) {
	if len(s.stack) == 0 {
		return opener{}, false
	}
	i := len(s.stack) - 1
	o := s.stack[i]
	s.stack = s.stack[:i]
	return o, true
}

func (s *openerStack) peek() (opener, bool) {
	if len(s.stack) == 0 {
		return opener{}, false
	}
	return s.stack[len(s.stack)-1], true
}

func (s *openerStack) replaceTop(o opener) {
	s.stack[len(s.stack)-1] = o
}
