package main

import (
	"io"
	"io/ioutil"

	"github.com/corthlang/corth/internal/flushio"
)

// simOption configures a simulator, following the teacher's functional
// options idiom: small apply-able value types combined through simOptions.
type simOption interface{ apply(sim *simulator) }

var defaultSimOptions = simOptions(
	withOutput(ioutil.Discard),
)

func simOptions(opts ...simOption) simOption {
	var res simOptionList
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noSimOption:
		case simOptionList:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noSimOption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noSimOption struct{}

func (noSimOption) apply(*simulator) {}

type simOptionList []simOption

func (opts simOptionList) apply(sim *simulator) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(sim)
		}
	}
}

type withOutputOpt struct{ io.Writer }
type withLogfOpt func(mess string, args ...interface{})
type withStackLimitOpt int

// withOutput directs Dump output to w, wrapping it in a flushio.WriteFlusher
// so buffered writers are only flushed once at halt.
func withOutput(w io.Writer) simOption { return withOutputOpt{w} }

// withLogf enables step tracing through logf, called once per executed op.
func withLogf(logf func(mess string, args ...interface{})) simOption {
	return withLogfOpt(logf)
}

// withStackLimit overrides the default 1024-deep value stack limit; used by
// tests that want to exercise StackOverflow without pushing 1024 values.
func withStackLimit(n int) simOption { return withStackLimitOpt(n) }

func (o withOutputOpt) apply(sim *simulator) {
	if sim.out != nil {
		sim.out.Flush()
	}
	sim.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		sim.closers = append(sim.closers, cl)
	}
}

func (logf withLogfOpt) apply(sim *simulator) {
	sim.logfn = logf
}

func (n withStackLimitOpt) apply(sim *simulator) {
	sim.stackLimit = int(n)
}
